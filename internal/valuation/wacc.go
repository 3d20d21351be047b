package valuation

import (
	"math"

	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/models"
)

// weightTolerance is how far w_e + w_d may drift from 1 before normalisation.
const weightTolerance = 1e-6

// WACCInput holds the cost-of-capital inputs. Beta has no default here; the
// assumption builder decides what to substitute when the snapshot has none.
type WACCInput struct {
	RiskFreeRate      float64
	Beta              *float64
	EquityRiskPremium float64
	CostOfDebt        float64
	TaxRate           float64
	WeightEquity      float64
	WeightDebt        float64
}

// WACCInputFrom extracts the WACC inputs from an assumption set.
func WACCInputFrom(a models.ValuationAssumptions) WACCInput {
	return WACCInput{
		RiskFreeRate:      a.RiskFreeRate,
		Beta:              a.Beta,
		EquityRiskPremium: a.EquityRiskPremium,
		CostOfDebt:        a.CostOfDebt,
		TaxRate:           a.TaxRate,
		WeightEquity:      a.WeightEquity,
		WeightDebt:        a.WeightDebt,
	}
}

// CostOfEquity returns the CAPM cost of equity.
//
// FORMULA: r_e = r_f + β × ERP
func CostOfEquity(riskFreeRate, beta, equityRiskPremium float64) float64 {
	return riskFreeRate + beta*equityRiskPremium
}

// CalculateWACC derives the weighted average cost of capital.
//
// FORMULA: WACC = w_e × r_e + w_d × r_d × (1 - τ)
func CalculateWACC(in WACCInput) (models.WACCResult, error) {
	if in.Beta == nil {
		return models.WACCResult{}, verrors.NewMissingDataError("wacc", "beta")
	}
	for _, f := range []struct {
		name string
		v    float64
	}{
		{"risk_free_rate", in.RiskFreeRate},
		{"beta", *in.Beta},
		{"equity_risk_premium", in.EquityRiskPremium},
		{"cost_of_debt", in.CostOfDebt},
		{"weight_equity", in.WeightEquity},
		{"weight_debt", in.WeightDebt},
	} {
		if !finite(f.v) {
			return models.WACCResult{}, verrors.NewDomainError("wacc", f.name, f.v, "value must be finite")
		}
	}
	if math.IsNaN(in.TaxRate) || in.TaxRate < 0 || in.TaxRate >= 1 {
		return models.WACCResult{}, verrors.NewDomainError("wacc", "tax_rate", in.TaxRate, "tax rate must be in [0, 1)")
	}
	if in.WeightEquity < 0 {
		return models.WACCResult{}, verrors.NewDomainError("wacc", "weight_equity", in.WeightEquity, "weight must be non-negative")
	}
	if in.WeightDebt < 0 {
		return models.WACCResult{}, verrors.NewDomainError("wacc", "weight_debt", in.WeightDebt, "weight must be non-negative")
	}
	sum := in.WeightEquity + in.WeightDebt
	if sum <= 0 {
		return models.WACCResult{}, verrors.NewDomainError("wacc", "weight_equity", sum, "capital structure weights must sum to a positive value")
	}

	res := models.WACCResult{
		RiskFreeRate:      in.RiskFreeRate,
		Beta:              *in.Beta,
		EquityRiskPremium: in.EquityRiskPremium,
		PreTaxCostOfDebt:  in.CostOfDebt,
		TaxRate:           in.TaxRate,
		WeightEquity:      in.WeightEquity,
		WeightDebt:        in.WeightDebt,
	}

	if math.Abs(sum-1) > weightTolerance {
		res.WeightEquity = in.WeightEquity / sum
		res.WeightDebt = in.WeightDebt / sum
		res.Warnings = append(res.Warnings, verrors.NewWarning(verrors.WarnWeightsNormalized,
			"equity/debt weights summed to %.4f; scaled to %.4f/%.4f", sum, res.WeightEquity, res.WeightDebt))
	}

	res.CostOfEquity = CostOfEquity(in.RiskFreeRate, *in.Beta, in.EquityRiskPremium)
	res.AfterTaxCostOfDebt = in.CostOfDebt * (1 - in.TaxRate)
	res.EquityComponent = res.WeightEquity * res.CostOfEquity
	res.DebtComponent = res.WeightDebt * res.AfterTaxCostOfDebt
	res.WACC = res.EquityComponent + res.DebtComponent

	return res, nil
}
