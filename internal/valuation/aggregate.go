package valuation

import (
	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/models"
)

// Blend combines model results into one weighted fair value. With no weights
// every result counts equally; otherwise weights are renormalised over the
// methods actually present, and methods without a weight are left out.
func Blend(results []models.ValuationResult, weights map[models.Method]float64, c Classifier) (*models.BlendedValue, error) {
	if len(results) == 0 {
		return nil, verrors.NewMissingDataError("blend", "results")
	}

	used := make(map[models.Method]float64, len(results))
	var total, weighted float64
	for _, r := range results {
		w := 1.0
		if len(weights) > 0 {
			w = weights[r.Method]
		}
		if w < 0 {
			return nil, verrors.NewDomainError("blend", string(r.Method), w, "weight must be non-negative")
		}
		if w == 0 {
			continue
		}
		used[r.Method] += w
		total += w
		weighted += r.FairValue * w
	}
	if total <= 0 {
		return nil, verrors.NewDomainError("blend", "weights", total, "no positive weight matches the available results")
	}

	fair := weighted / total
	for m, w := range used {
		used[m] = w / total
	}

	price := results[0].Price
	upside, status := c.Classify(fair, price)
	return &models.BlendedValue{
		FairValue: fair,
		Price:     price,
		Upside:    upside,
		Status:    status,
		Weights:   used,
	}, nil
}
