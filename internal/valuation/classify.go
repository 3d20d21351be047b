package valuation

import (
	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/models"
)

// Thresholds are upside boundaries. Upside strictly above Undervalued is
// undervalued, strictly below Overvalued is overvalued, anything between
// (inclusive) is fair value. The significant bands are optional; zero
// disables them.
type Thresholds struct {
	Undervalued            float64 `mapstructure:"undervalued"`
	Overvalued             float64 `mapstructure:"overvalued"`
	SignificantUndervalued float64 `mapstructure:"significantly_undervalued"`
	SignificantOvervalued  float64 `mapstructure:"significantly_overvalued"`
}

// DefaultThresholds is the three-band ±10% scheme.
func DefaultThresholds() Thresholds {
	return Thresholds{Undervalued: 0.10, Overvalued: -0.10}
}

// FiveBandThresholds is the ±5% / ±15% scheme.
func FiveBandThresholds() Thresholds {
	return Thresholds{
		Undervalued:            0.05,
		Overvalued:             -0.05,
		SignificantUndervalued: 0.15,
		SignificantOvervalued:  -0.15,
	}
}

// Validate checks the bands are ordered.
func (t Thresholds) Validate() error {
	if t.Overvalued > t.Undervalued {
		return verrors.NewValidationError("classification.overvalued", t.Overvalued, "must not exceed the undervalued threshold")
	}
	if t.SignificantUndervalued != 0 && t.SignificantUndervalued <= t.Undervalued {
		return verrors.NewValidationError("classification.significantly_undervalued", t.SignificantUndervalued, "must exceed the undervalued threshold")
	}
	if t.SignificantOvervalued != 0 && t.SignificantOvervalued >= t.Overvalued {
		return verrors.NewValidationError("classification.significantly_overvalued", t.SignificantOvervalued, "must be below the overvalued threshold")
	}
	return nil
}

// Classifier assigns a status from fair value and price. It is the single
// place status thresholds are applied.
type Classifier struct {
	Thresholds Thresholds
}

// NewClassifier creates a classifier.
func NewClassifier(t Thresholds) Classifier {
	return Classifier{Thresholds: t}
}

// Upside returns (fair - price) / price, or 0 for a zero price.
func Upside(fair, price float64) float64 {
	if price == 0 {
		return 0
	}
	return (fair - price) / price
}

// Classify returns the upside and its status.
func (c Classifier) Classify(fair, price float64) (float64, models.Status) {
	if price == 0 {
		return 0, models.StatusUnpriced
	}
	upside := Upside(fair, price)
	t := c.Thresholds
	switch {
	case t.SignificantUndervalued != 0 && upside > t.SignificantUndervalued:
		return upside, models.StatusSignificantlyUndervalued
	case upside > t.Undervalued:
		return upside, models.StatusUndervalued
	case t.SignificantOvervalued != 0 && upside < t.SignificantOvervalued:
		return upside, models.StatusSignificantlyOvervalued
	case upside < t.Overvalued:
		return upside, models.StatusOvervalued
	}
	return upside, models.StatusFairValue
}
