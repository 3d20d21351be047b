package models

import (
	verrors "intrinsic-valuator/internal/errors"
)

// Method identifies a valuation methodology.
type Method string

const (
	MethodTwoStageDCF     Method = "two_stage_dcf"
	MethodEarningsDCF     Method = "earnings_dcf"
	MethodFreeCashFlowDCF Method = "fcf_dcf"
	MethodPeterLynch      Method = "peter_lynch"
	MethodEVEBITDA        Method = "ev_ebitda"
	MethodPEMultiple      Method = "pe_multiple"
	MethodPBMultiple      Method = "pb_multiple"
	MethodPSMultiple      Method = "ps_multiple"
)

// AllMethods lists every supported method in display order.
var AllMethods = []Method{
	MethodTwoStageDCF,
	MethodEarningsDCF,
	MethodFreeCashFlowDCF,
	MethodPeterLynch,
	MethodEVEBITDA,
	MethodPEMultiple,
	MethodPBMultiple,
	MethodPSMultiple,
}

// IsDCF reports whether the method discounts projected flows.
func (m Method) IsDCF() bool {
	switch m {
	case MethodTwoStageDCF, MethodEarningsDCF, MethodFreeCashFlowDCF:
		return true
	}
	return false
}

// Label returns a human readable name.
func (m Method) Label() string {
	switch m {
	case MethodTwoStageDCF:
		return "Two-Stage DCF"
	case MethodEarningsDCF:
		return "DCF (Earnings Based)"
	case MethodFreeCashFlowDCF:
		return "DCF (FCF Based)"
	case MethodPeterLynch:
		return "Peter Lynch Fair Value"
	case MethodEVEBITDA:
		return "EV/EBITDA"
	case MethodPEMultiple:
		return "P/E Multiple"
	case MethodPBMultiple:
		return "P/B Multiple"
	case MethodPSMultiple:
		return "P/S Multiple"
	}
	return string(m)
}

// ParseMethod converts a string to a Method.
func ParseMethod(s string) (Method, error) {
	for _, m := range AllMethods {
		if string(m) == s {
			return m, nil
		}
	}
	return "", verrors.Wrapf(verrors.ErrUnknownMethod, "%q", s)
}

// Status is the classification of fair value against market price.
type Status string

const (
	StatusSignificantlyUndervalued Status = "SIGNIFICANTLY_UNDERVALUED"
	StatusUndervalued              Status = "UNDERVALUED"
	StatusFairValue                Status = "FAIR_VALUE"
	StatusOvervalued               Status = "OVERVALUED"
	StatusSignificantlyOvervalued  Status = "SIGNIFICANTLY_OVERVALUED"
	StatusUnpriced                 Status = "UNPRICED" // price is zero, upside undefined
)

// WACCResult is the cost-of-capital breakdown of one run.
type WACCResult struct {
	RiskFreeRate       float64                        `json:"risk_free_rate"`
	Beta               float64                        `json:"beta"`
	EquityRiskPremium  float64                        `json:"equity_risk_premium"`
	CostOfEquity       float64                        `json:"cost_of_equity"`
	PreTaxCostOfDebt   float64                        `json:"pre_tax_cost_of_debt"`
	TaxRate            float64                        `json:"tax_rate"`
	AfterTaxCostOfDebt float64                        `json:"after_tax_cost_of_debt"`
	WeightEquity       float64                        `json:"weight_equity"`
	WeightDebt         float64                        `json:"weight_debt"`
	EquityComponent    float64                        `json:"equity_component"`
	DebtComponent      float64                        `json:"debt_component"`
	WACC               float64                        `json:"wacc"`
	Warnings           []verrors.ConfigurationWarning `json:"warnings,omitempty"`
}

// ProjectedPeriod is one explicit-forecast period.
type ProjectedPeriod struct {
	Period         int     `json:"period"`
	Growth         float64 `json:"growth"`
	Value          float64 `json:"value"`
	DiscountFactor float64 `json:"discount_factor"`
	PresentValue   float64 `json:"present_value"`
}

// CashFlowProjection is the explicit forecast plus terminal value of a DCF run.
type CashFlowProjection struct {
	Periods              []ProjectedPeriod `json:"periods"`
	DiscountRate         float64           `json:"discount_rate"`
	Decay                DecayPolicy       `json:"decay"`
	Terminal             TerminalMethod    `json:"terminal"`
	TerminalValue        float64           `json:"terminal_value"`
	TerminalPresentValue float64           `json:"terminal_present_value"`
}

// ExplicitPresentValue sums the present values of the explicit periods.
func (p *CashFlowProjection) ExplicitPresentValue() float64 {
	var sum float64
	for _, period := range p.Periods {
		sum += period.PresentValue
	}
	return sum
}

// Total is the explicit plus terminal present value.
func (p *CashFlowProjection) Total() float64 {
	return p.ExplicitPresentValue() + p.TerminalPresentValue
}

// ValueRange is a low/high fair value interval.
type ValueRange struct {
	Low  float64 `json:"low"`
	High float64 `json:"high"`
}

// ValuationDetail carries the intermediate figures of a model.
type ValuationDetail struct {
	DiscountRate    float64 `json:"discount_rate,omitempty"`
	EnterpriseValue float64 `json:"enterprise_value,omitempty"`
	EquityValue     float64 `json:"equity_value,omitempty"`
	NetDebt         float64 `json:"net_debt,omitempty"`
	TangibleBook    float64 `json:"tangible_book,omitempty"`
	Basis           float64 `json:"basis,omitempty"` // EPS, BVPS, EBITDA... the quantity the model starts from
	Multiple        float64 `json:"multiple,omitempty"`
	CurrentMultiple float64 `json:"current_multiple,omitempty"`
	GrowthPercent   float64 `json:"growth_percent,omitempty"`
}

// ValuationResult is the immutable outcome of one model.
type ValuationResult struct {
	Method     Method              `json:"method"`
	Ticker     string              `json:"ticker"`
	FairValue  float64             `json:"fair_value"`
	Price      float64             `json:"price"`
	Upside     float64             `json:"upside"`
	Status     Status              `json:"status"`
	Range      *ValueRange         `json:"range,omitempty"`
	Detail     ValuationDetail     `json:"detail"`
	Projection *CashFlowProjection `json:"projection,omitempty"`
}

// MethodFailure records a model that could not produce a result.
type MethodFailure struct {
	Method Method `json:"method"`
	Error  string `json:"error"`
	Err    error  `json:"-"`
}

// BlendedValue is a weighted combination of several model results.
type BlendedValue struct {
	FairValue float64            `json:"fair_value"`
	Price     float64            `json:"price"`
	Upside    float64            `json:"upside"`
	Status    Status             `json:"status"`
	Weights   map[Method]float64 `json:"weights"`
}

// ValuationRun is the output of valuing one snapshot with several methods.
type ValuationRun struct {
	ID          string                         `json:"id"`
	Ticker      string                         `json:"ticker"`
	Assumptions ValuationAssumptions           `json:"assumptions"`
	WACC        *WACCResult                    `json:"wacc,omitempty"`
	Results     []ValuationResult              `json:"results"`
	Failures    []MethodFailure                `json:"failures,omitempty"`
	Blended     *BlendedValue                  `json:"blended,omitempty"`
	Warnings    []verrors.ConfigurationWarning `json:"warnings,omitempty"`
}

// Result returns the result for method, if present.
func (r *ValuationRun) Result(method Method) (ValuationResult, bool) {
	for _, res := range r.Results {
		if res.Method == method {
			return res, true
		}
	}
	return ValuationResult{}, false
}
