package valuation

import (
	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/models"
)

// ProjectionInput describes one explicit forecast.
type ProjectionInput struct {
	Base              float64
	GrowthRate        float64
	TerminalGrowth    float64
	Horizon           int
	DiscountRate      float64
	Decay             models.DecayPolicy
	Terminal          models.TerminalMethod
	TerminalYears     int
	AllowNegativeBase bool
}

// GrowthAt returns the growth rate applied in period k (1-based).
func GrowthAt(policy models.DecayPolicy, g1, gt float64, horizon, k int) float64 {
	if policy == models.DecayLinearFade {
		return g1 - (g1-gt)*float64(k-1)/float64(horizon)
	}
	return g1
}

// Project grows the base across the horizon, discounts every period and
// anchors the terminal value at period N using the terminal growth rate.
func Project(in ProjectionInput) (models.CashFlowProjection, error) {
	if in.Horizon < 1 {
		return models.CashFlowProjection{}, verrors.NewDomainError("", "horizon", float64(in.Horizon), "horizon must be at least one period")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"base", in.Base},
		{"growth_rate", in.GrowthRate},
		{"terminal_growth", in.TerminalGrowth},
		{"discount_rate", in.DiscountRate},
	} {
		if !finite(f.v) {
			return models.CashFlowProjection{}, verrors.NewDomainError("", f.name, f.v, "value must be finite")
		}
	}
	if in.Base < 0 && !in.AllowNegativeBase {
		return models.CashFlowProjection{}, verrors.NewDomainError("", "base", in.Base, "negative base value is not meaningful for this model")
	}

	decay := in.Decay
	switch decay {
	case "":
		decay = models.DecayConstant
	case models.DecayConstant, models.DecayLinearFade:
	default:
		return models.CashFlowProjection{}, verrors.NewValidationError("decay", string(decay), "unknown decay policy")
	}
	terminal := in.Terminal
	switch terminal {
	case "":
		terminal = models.TerminalPerpetuity
	case models.TerminalPerpetuity, models.TerminalFinite:
	default:
		return models.CashFlowProjection{}, verrors.NewValidationError("terminal", string(terminal), "unknown terminal method")
	}

	proj := models.CashFlowProjection{
		Periods:      make([]models.ProjectedPeriod, 0, in.Horizon),
		DiscountRate: in.DiscountRate,
		Decay:        decay,
		Terminal:     terminal,
	}

	value := in.Base
	for k := 1; k <= in.Horizon; k++ {
		g := GrowthAt(decay, in.GrowthRate, in.TerminalGrowth, in.Horizon, k)
		value *= 1 + g
		df, err := DiscountFactor(in.DiscountRate, k)
		if err != nil {
			return models.CashFlowProjection{}, err
		}
		pv, err := PresentValue(value, in.DiscountRate, k)
		if err != nil {
			return models.CashFlowProjection{}, err
		}
		proj.Periods = append(proj.Periods, models.ProjectedPeriod{
			Period:         k,
			Growth:         g,
			Value:          value,
			DiscountFactor: df,
			PresentValue:   pv,
		})
	}

	var (
		tv  float64
		err error
	)
	if terminal == models.TerminalFinite {
		tv, err = FiniteTerminalValue(value, in.TerminalGrowth, in.DiscountRate, in.TerminalYears)
	} else {
		tv, err = TerminalValue(value, in.TerminalGrowth, in.DiscountRate)
	}
	if err != nil {
		return models.CashFlowProjection{}, err
	}
	tvPV, err := PresentValue(tv, in.DiscountRate, in.Horizon)
	if err != nil {
		return models.CashFlowProjection{}, err
	}

	proj.TerminalValue = tv
	proj.TerminalPresentValue = tvPV
	return proj, nil
}
