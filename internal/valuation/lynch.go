package valuation

import (
	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/models"
)

// PeterLynch is the PEG fair value heuristic.
//
// FORMULA: fair = EPS × (g × 100) × PEG
//
// Growth is carried as a decimal like every other rate and converted to a
// whole-number percentage here, so EPS 5, g 0.15, PEG 1 yields 75.
type PeterLynch struct {
	GrowthRate    float64
	PEGRatio      float64
	UseForwardEPS bool
}

// Method implements Model.
func (PeterLynch) Method() models.Method { return models.MethodPeterLynch }

func (m PeterLynch) value(s *models.FinancialSnapshot) (outcome, error) {
	if m.GrowthRate < 0 {
		return outcome{}, verrors.NewDomainError("", "growth_rate", m.GrowthRate, "PEG valuation requires non-negative earnings growth")
	}
	if m.PEGRatio <= 0 {
		return outcome{}, verrors.NewDomainError("", "peg_ratio", m.PEGRatio, "PEG ratio must be positive")
	}
	eps, err := s.EPS(m.UseForwardEPS)
	if err != nil {
		return outcome{}, err
	}
	if eps <= 0 {
		return outcome{}, verrors.NewDomainError("", "eps", eps, "PEG valuation requires positive earnings")
	}

	growthPct := m.GrowthRate * 100
	return outcome{
		fairValue: eps * growthPct * m.PEGRatio,
		detail: models.ValuationDetail{
			Basis:         eps,
			Multiple:      m.PEGRatio,
			GrowthPercent: growthPct,
		},
	}, nil
}
