package sensitivity

import (
	"math"

	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/models"
)

// maxAxisPoints bounds a single axis.
const maxAxisPoints = 201

func round4(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}

// Range builds an axis from start to stop inclusive in step increments.
// Values are rounded to four decimals.
func Range(p models.Parameter, start, stop, step float64) (models.Axis, error) {
	for _, f := range []struct {
		name string
		v    float64
	}{{"start", start}, {"stop", stop}, {"step", step}} {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return models.Axis{}, verrors.NewValidationError(f.name, f.v, "must be a finite number")
		}
	}
	if step <= 0 {
		return models.Axis{}, verrors.NewValidationError("step", step, "step must be positive")
	}
	if stop < start {
		return models.Axis{}, verrors.NewValidationError("stop", stop, "stop must not be below start")
	}
	count := math.Floor((stop-start)/step+1e-9) + 1
	if math.IsNaN(count) || count > maxAxisPoints {
		return models.Axis{}, verrors.NewValidationError("step", step, "axis has too many points")
	}
	n := int(count)

	values := make([]float64, n)
	for i := range values {
		values[i] = round4(start + float64(i)*step)
	}
	return models.Axis{Parameter: p, Values: values}, nil
}

// Around builds a symmetric axis of center ± span in step increments.
func Around(p models.Parameter, center, span, step float64) (models.Axis, error) {
	if math.IsNaN(center) || math.IsInf(center, 0) {
		return models.Axis{}, verrors.NewValidationError("center", center, "must be a finite number")
	}
	if !(span >= 0) {
		return models.Axis{}, verrors.NewValidationError("span", span, "span must be non-negative")
	}
	return Range(p, center-span, center+span, step)
}
