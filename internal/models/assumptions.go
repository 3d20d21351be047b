package models

// DecayPolicy controls how explicit-phase growth evolves across the horizon.
type DecayPolicy string

const (
	// DecayConstant grows every explicit period at the explicit growth rate.
	DecayConstant DecayPolicy = "constant"
	// DecayLinearFade moves growth linearly from g1 in period 1 toward the
	// terminal rate, which it reaches at period N+1.
	DecayLinearFade DecayPolicy = "linear_fade"
)

// TerminalMethod selects how value beyond the explicit horizon is computed.
type TerminalMethod string

const (
	TerminalPerpetuity TerminalMethod = "perpetuity" // Gordon growth
	TerminalFinite     TerminalMethod = "finite"     // fixed number of further years
)

// MultipleBand is a benchmark multiple with an optional low/high range.
type MultipleBand struct {
	Target float64 `json:"target" yaml:"target" mapstructure:"target"`
	Low    float64 `json:"low,omitempty" yaml:"low,omitempty" mapstructure:"low"`
	High   float64 `json:"high,omitempty" yaml:"high,omitempty" mapstructure:"high"`
}

// HasRange reports whether both ends of the band are set.
func (b MultipleBand) HasRange() bool {
	return b.Low > 0 && b.High > 0
}

// Multiples holds the benchmark bands used by the relative models.
type Multiples struct {
	PE       MultipleBand `json:"pe" yaml:"pe" mapstructure:"pe"`
	PB       MultipleBand `json:"pb" yaml:"pb" mapstructure:"pb"`
	PS       MultipleBand `json:"ps" yaml:"ps" mapstructure:"ps"`
	EVEBITDA MultipleBand `json:"ev_ebitda" yaml:"ev_ebitda" mapstructure:"ev_ebitda"`
}

// ValuationAssumptions is the fully-populated, user-adjustable input of one
// valuation run. It is produced by the assumption builder; the engine never
// fills gaps in it.
type ValuationAssumptions struct {
	Horizon        int     `json:"horizon"`
	GrowthRate     float64 `json:"growth_rate"`
	TerminalGrowth float64 `json:"terminal_growth"`

	RiskFreeRate      float64  `json:"risk_free_rate"`
	Beta              *float64 `json:"beta,omitempty"`
	EquityRiskPremium float64  `json:"equity_risk_premium"`
	CostOfDebt        float64  `json:"cost_of_debt"`
	TaxRate           float64  `json:"tax_rate"`
	WeightEquity      float64  `json:"weight_equity"`
	WeightDebt        float64  `json:"weight_debt"`

	// DiscountRateOverride replaces the derived discount rate (WACC, or cost
	// of equity for the EPS model) when set.
	DiscountRateOverride *float64 `json:"discount_rate_override,omitempty"`

	PEGRatio  float64   `json:"peg_ratio"`
	Multiples Multiples `json:"multiples"`

	Decay               DecayPolicy    `json:"decay"`
	Terminal            TerminalMethod `json:"terminal"`
	TerminalYears       int            `json:"terminal_years,omitempty"`
	UseForwardEPS       bool           `json:"use_forward_eps,omitempty"`
	IncludeTangibleBook bool           `json:"include_tangible_book,omitempty"`
}

// WithDiscountRate returns a copy with the discount rate pinned to rate.
func (a ValuationAssumptions) WithDiscountRate(rate float64) ValuationAssumptions {
	a.DiscountRateOverride = &rate
	return a
}

// WithBeta returns a copy with beta set.
func (a ValuationAssumptions) WithBeta(beta float64) ValuationAssumptions {
	a.Beta = &beta
	return a
}
