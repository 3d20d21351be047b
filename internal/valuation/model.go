package valuation

import (
	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/models"
)

// Model is one of the supported valuation kinds: TwoStageDCF, EarningsDCF,
// FreeCashFlowDCF, PeterLynch, EVEBITDA or MarketMultiple. Each carries only
// the assumptions it needs. The interface is sealed.
type Model interface {
	Method() models.Method
	value(s *models.FinancialSnapshot) (outcome, error)
}

type outcome struct {
	fairValue  float64
	detail     models.ValuationDetail
	valueRange *models.ValueRange
	projection *models.CashFlowProjection
}

// Build turns an assumption set into the model for method. For the WACC
// discounted models it also returns the cost-of-capital breakdown it used;
// the result is nil when the discount rate was overridden.
func Build(method models.Method, a models.ValuationAssumptions) (Model, *models.WACCResult, error) {
	switch method {
	case models.MethodTwoStageDCF, models.MethodFreeCashFlowDCF:
		params, wacc, err := firmParams(a)
		if err != nil {
			return nil, nil, withModel(err, method)
		}
		if method == models.MethodTwoStageDCF {
			return TwoStageDCF{DCFParams: params, IncludeTangibleBook: a.IncludeTangibleBook}, wacc, nil
		}
		return FreeCashFlowDCF{DCFParams: params}, wacc, nil

	case models.MethodEarningsDCF:
		rate, err := equityRate(a)
		if err != nil {
			return nil, nil, withModel(err, method)
		}
		return EarningsDCF{DCFParams: dcfParams(a, rate), UseForwardEPS: a.UseForwardEPS}, nil, nil

	case models.MethodPeterLynch:
		return PeterLynch{GrowthRate: a.GrowthRate, PEGRatio: a.PEGRatio, UseForwardEPS: a.UseForwardEPS}, nil, nil
	case models.MethodEVEBITDA:
		return EVEBITDA{Benchmark: a.Multiples.EVEBITDA}, nil, nil
	case models.MethodPEMultiple:
		return MarketMultiple{Basis: BasisEarnings, Benchmark: a.Multiples.PE, UseForwardEPS: a.UseForwardEPS}, nil, nil
	case models.MethodPBMultiple:
		return MarketMultiple{Basis: BasisBook, Benchmark: a.Multiples.PB}, nil, nil
	case models.MethodPSMultiple:
		return MarketMultiple{Basis: BasisSales, Benchmark: a.Multiples.PS}, nil, nil
	}
	return nil, nil, verrors.Wrapf(verrors.ErrUnknownMethod, "%q", string(method))
}

func dcfParams(a models.ValuationAssumptions, rate float64) DCFParams {
	return DCFParams{
		Horizon:        a.Horizon,
		GrowthRate:     a.GrowthRate,
		TerminalGrowth: a.TerminalGrowth,
		DiscountRate:   rate,
		Decay:          a.Decay,
		Terminal:       a.Terminal,
		TerminalYears:  a.TerminalYears,
	}
}

func firmParams(a models.ValuationAssumptions) (DCFParams, *models.WACCResult, error) {
	if a.DiscountRateOverride != nil {
		return dcfParams(a, *a.DiscountRateOverride), nil, nil
	}
	res, err := CalculateWACC(WACCInputFrom(a))
	if err != nil {
		return DCFParams{}, nil, err
	}
	return dcfParams(a, res.WACC), &res, nil
}

func equityRate(a models.ValuationAssumptions) (float64, error) {
	if a.DiscountRateOverride != nil {
		return *a.DiscountRateOverride, nil
	}
	if a.Beta == nil {
		return 0, verrors.NewMissingDataError("", "beta")
	}
	return CostOfEquity(a.RiskFreeRate, *a.Beta, a.EquityRiskPremium), nil
}

// Evaluate runs m against the snapshot and classifies the result.
func Evaluate(m Model, s *models.FinancialSnapshot, c Classifier) (models.ValuationResult, error) {
	if err := s.Validate(); err != nil {
		return models.ValuationResult{}, withModel(err, m.Method())
	}
	out, err := m.value(s)
	if err != nil {
		return models.ValuationResult{}, withModel(err, m.Method())
	}
	if !finite(out.fairValue) {
		return models.ValuationResult{}, verrors.NewDomainError(string(m.Method()), "fair_value", out.fairValue,
			"assumptions produce a non-finite fair value")
	}

	upside, status := c.Classify(out.fairValue, s.Price)
	return models.ValuationResult{
		Method:     m.Method(),
		Ticker:     s.Ticker,
		FairValue:  out.fairValue,
		Price:      s.Price,
		Upside:     upside,
		Status:     status,
		Range:      out.valueRange,
		Detail:     out.detail,
		Projection: out.projection,
	}, nil
}

// Value is Build followed by Evaluate.
func Value(method models.Method, s *models.FinancialSnapshot, a models.ValuationAssumptions, c Classifier) (models.ValuationResult, error) {
	m, _, err := Build(method, a)
	if err != nil {
		return models.ValuationResult{}, err
	}
	return Evaluate(m, s, c)
}

// withModel stamps the model name on domain and missing-data errors raised by
// shared helpers that do not know which model called them.
func withModel(err error, method models.Method) error {
	var de *verrors.DomainError
	if verrors.As(err, &de) && de.Model == "" {
		de.Model = string(method)
		return err
	}
	var me *verrors.MissingDataError
	if verrors.As(err, &me) && me.Model == "" {
		me.Model = string(method)
	}
	return err
}
