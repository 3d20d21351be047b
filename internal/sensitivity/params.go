package sensitivity

import (
	"math"

	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/models"
)

// ParseParameter converts an axis name to a Parameter.
func ParseParameter(s string) (models.Parameter, error) {
	for _, p := range models.AllParameters {
		if string(p) == s {
			return p, nil
		}
	}
	return "", verrors.NewValidationError("parameter", s, "unknown sensitivity parameter")
}

// Apply returns a copy of a with parameter p set to v. Varying one of the
// cost-of-capital inputs clears any discount-rate override so the axis
// actually moves the rate.
func Apply(a models.ValuationAssumptions, p models.Parameter, v float64) (models.ValuationAssumptions, error) {
	switch p {
	case models.ParamGrowthRate:
		a.GrowthRate = v
	case models.ParamTerminalGrowth:
		a.TerminalGrowth = v
	case models.ParamDiscountRate:
		a = a.WithDiscountRate(v)
	case models.ParamRiskFreeRate:
		a.RiskFreeRate = v
		a.DiscountRateOverride = nil
	case models.ParamBeta:
		a = a.WithBeta(v)
		a.DiscountRateOverride = nil
	case models.ParamEquityRiskPremium:
		a.EquityRiskPremium = v
		a.DiscountRateOverride = nil
	case models.ParamCostOfDebt:
		a.CostOfDebt = v
		a.DiscountRateOverride = nil
	case models.ParamTaxRate:
		a.TaxRate = v
		a.DiscountRateOverride = nil
	case models.ParamWeightEquity:
		a.WeightEquity = v
		a.WeightDebt = 1 - v
		a.DiscountRateOverride = nil
	case models.ParamHorizon:
		n := math.Round(v)
		if n != v {
			return a, verrors.NewValidationError(string(p), v, "horizon must be a whole number of periods")
		}
		a.Horizon = int(n)
	default:
		return a, verrors.NewValidationError("parameter", string(p), "unknown sensitivity parameter")
	}
	return a, nil
}

// Lookup returns the current value of parameter p in a. The discount rate is
// only known when overridden.
func Lookup(a models.ValuationAssumptions, p models.Parameter) (float64, bool) {
	switch p {
	case models.ParamGrowthRate:
		return a.GrowthRate, true
	case models.ParamTerminalGrowth:
		return a.TerminalGrowth, true
	case models.ParamDiscountRate:
		if a.DiscountRateOverride == nil {
			return 0, false
		}
		return *a.DiscountRateOverride, true
	case models.ParamRiskFreeRate:
		return a.RiskFreeRate, true
	case models.ParamBeta:
		if a.Beta == nil {
			return 0, false
		}
		return *a.Beta, true
	case models.ParamEquityRiskPremium:
		return a.EquityRiskPremium, true
	case models.ParamCostOfDebt:
		return a.CostOfDebt, true
	case models.ParamTaxRate:
		return a.TaxRate, true
	case models.ParamWeightEquity:
		return a.WeightEquity, true
	case models.ParamHorizon:
		return float64(a.Horizon), true
	}
	return 0, false
}
