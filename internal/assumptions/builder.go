// Package assumptions derives a fully-populated assumption set from a
// financial snapshot. It is the only place defaults are substituted; every
// substitution is reported as a ConfigurationWarning.
package assumptions

import (
	"math"

	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/models"
)

// GrowthSource selects which historical growth rate seeds the explicit phase.
type GrowthSource string

const (
	GrowthFromEarnings GrowthSource = "earnings"
	GrowthFromEBITDA   GrowthSource = "ebitda"
	GrowthFromRevenue  GrowthSource = "revenue"
)

// Policy holds the defaults and bounds used when the snapshot is incomplete.
type Policy struct {
	RiskFreeRate      float64      `mapstructure:"risk_free_rate"`
	EquityRiskPremium float64      `mapstructure:"equity_risk_premium"`
	DefaultBeta       float64      `mapstructure:"default_beta"`
	DefaultTaxRate    float64      `mapstructure:"default_tax_rate"`
	MaxTaxRate        float64      `mapstructure:"max_tax_rate"`
	DebtSpread        float64      `mapstructure:"debt_spread"`
	MinDebtSpread     float64      `mapstructure:"min_debt_spread"`
	MaxCostOfDebt     float64      `mapstructure:"max_cost_of_debt"`
	WeightEquity      float64      `mapstructure:"weight_equity"`
	WeightDebt        float64      `mapstructure:"weight_debt"`
	GrowthSource      GrowthSource `mapstructure:"growth_source"`
	DefaultGrowth     float64      `mapstructure:"default_growth"`
	MaxGrowth         float64      `mapstructure:"max_growth"` // 0 disables the cap
	TerminalGrowth    float64      `mapstructure:"terminal_growth"`
	PEGRatio          float64      `mapstructure:"peg_ratio"`

	Horizon       int                   `mapstructure:"horizon"`
	Decay         models.DecayPolicy    `mapstructure:"decay"`
	Terminal      models.TerminalMethod `mapstructure:"terminal"`
	TerminalYears int                   `mapstructure:"terminal_years"`

	Multiples models.Multiples `mapstructure:"multiples"`
}

// DefaultPolicy returns the stock policy.
func DefaultPolicy() Policy {
	return Policy{
		RiskFreeRate:      0.04,
		EquityRiskPremium: 0.06,
		DefaultBeta:       1.0,
		DefaultTaxRate:    0.21,
		MaxTaxRate:        0.5,
		DebtSpread:        0.02,
		MinDebtSpread:     0.01,
		MaxCostOfDebt:     0.20,
		WeightEquity:      0.7,
		WeightDebt:        0.3,
		GrowthSource:      GrowthFromEarnings,
		DefaultGrowth:     0.05,
		MaxGrowth:         0.25,
		TerminalGrowth:    0.025,
		PEGRatio:          1.0,
		Horizon:           5,
		Decay:             models.DecayConstant,
		Terminal:          models.TerminalPerpetuity,
		TerminalYears:     10,
		Multiples: models.Multiples{
			PE:       models.MultipleBand{Target: 15, Low: 12, High: 20},
			PB:       models.MultipleBand{Target: 2, Low: 1.5, High: 3},
			PS:       models.MultipleBand{Target: 2, Low: 1, High: 3},
			EVEBITDA: models.MultipleBand{Target: 10, Low: 8, High: 12},
		},
	}
}

// Validate checks the policy is usable.
func (p Policy) Validate() error {
	if p.Horizon < 1 {
		return verrors.NewValidationError("policy.horizon", p.Horizon, "horizon must be at least 1")
	}
	if p.DefaultBeta < 0 {
		return verrors.NewValidationError("policy.default_beta", p.DefaultBeta, "beta must be non-negative")
	}
	if p.DefaultTaxRate < 0 || p.DefaultTaxRate >= 1 {
		return verrors.NewValidationError("policy.default_tax_rate", p.DefaultTaxRate, "tax rate must be in [0, 1)")
	}
	if p.MaxTaxRate <= 0 || p.MaxTaxRate >= 1 {
		return verrors.NewValidationError("policy.max_tax_rate", p.MaxTaxRate, "max tax rate must be in (0, 1)")
	}
	if p.WeightEquity < 0 || p.WeightDebt < 0 || p.WeightEquity+p.WeightDebt <= 0 {
		return verrors.NewValidationError("policy.weight_equity", p.WeightEquity, "weights must be non-negative with a positive sum")
	}
	if p.MaxCostOfDebt <= 0 {
		return verrors.NewValidationError("policy.max_cost_of_debt", p.MaxCostOfDebt, "must be positive")
	}
	if p.PEGRatio <= 0 {
		return verrors.NewValidationError("policy.peg_ratio", p.PEGRatio, "PEG ratio must be positive")
	}
	switch p.GrowthSource {
	case GrowthFromEarnings, GrowthFromEBITDA, GrowthFromRevenue:
	default:
		return verrors.NewValidationError("policy.growth_source", string(p.GrowthSource), "must be earnings, ebitda or revenue")
	}
	switch p.Decay {
	case models.DecayConstant, models.DecayLinearFade:
	default:
		return verrors.NewValidationError("policy.decay", string(p.Decay), "must be constant or linear_fade")
	}
	switch p.Terminal {
	case models.TerminalPerpetuity:
	case models.TerminalFinite:
		if p.TerminalYears < 1 {
			return verrors.NewValidationError("policy.terminal_years", p.TerminalYears, "finite terminal stage needs at least one year")
		}
	default:
		return verrors.NewValidationError("policy.terminal", string(p.Terminal), "must be perpetuity or finite")
	}
	return nil
}

// Overrides are user-supplied values that win over anything derived.
type Overrides struct {
	Horizon             *int
	GrowthRate          *float64
	TerminalGrowth      *float64
	RiskFreeRate        *float64
	Beta                *float64
	EquityRiskPremium   *float64
	CostOfDebt          *float64
	TaxRate             *float64
	WeightEquity        *float64
	WeightDebt          *float64
	DiscountRate        *float64
	PEGRatio            *float64
	Decay               *models.DecayPolicy
	Terminal            *models.TerminalMethod
	TerminalYears       *int
	UseForwardEPS       *bool
	IncludeTangibleBook *bool
}

// Builder turns snapshots into assumption sets under a policy.
type Builder struct {
	policy Policy
}

// NewBuilder creates a builder.
func NewBuilder(policy Policy) *Builder {
	return &Builder{policy: policy}
}

// Policy returns the builder's policy.
func (b *Builder) Policy() Policy {
	return b.policy
}

// Build derives the assumptions for s. The returned warnings list every
// default substituted for a value the snapshot did not carry.
func (b *Builder) Build(s *models.FinancialSnapshot, o Overrides) (models.ValuationAssumptions, []verrors.ConfigurationWarning, error) {
	if err := s.Validate(); err != nil {
		return models.ValuationAssumptions{}, nil, err
	}

	p := b.policy
	var warnings []verrors.ConfigurationWarning
	warn := func(code, format string, args ...interface{}) {
		warnings = append(warnings, verrors.NewWarning(code, format, args...))
	}

	a := models.ValuationAssumptions{
		Horizon:           pick(o.Horizon, p.Horizon),
		TerminalGrowth:    pick(o.TerminalGrowth, p.TerminalGrowth),
		RiskFreeRate:      pick(o.RiskFreeRate, p.RiskFreeRate),
		EquityRiskPremium: pick(o.EquityRiskPremium, p.EquityRiskPremium),
		PEGRatio:          pick(o.PEGRatio, p.PEGRatio),
		Multiples:         p.Multiples,
		Decay:             pick(o.Decay, p.Decay),
		Terminal:          pick(o.Terminal, p.Terminal),
		TerminalYears:     pick(o.TerminalYears, p.TerminalYears),
		UseForwardEPS:     pick(o.UseForwardEPS, false),

		IncludeTangibleBook: pick(o.IncludeTangibleBook, false),
	}
	if o.DiscountRate != nil {
		a = a.WithDiscountRate(*o.DiscountRate)
	}

	// Beta
	switch {
	case o.Beta != nil:
		a = a.WithBeta(*o.Beta)
	case s.Beta != nil:
		a = a.WithBeta(*s.Beta)
	default:
		a = a.WithBeta(p.DefaultBeta)
		warn(verrors.WarnDefaultBeta, "no beta for %s; using %.2f", s.Ticker, p.DefaultBeta)
	}

	// Tax rate
	switch {
	case o.TaxRate != nil:
		a.TaxRate = *o.TaxRate
	case s.EffectiveTaxRate != nil:
		a.TaxRate = clamp(*s.EffectiveTaxRate, 0, p.MaxTaxRate)
		if a.TaxRate != *s.EffectiveTaxRate {
			warn(verrors.WarnClamped, "effective tax rate %.4f clamped to %.4f", *s.EffectiveTaxRate, a.TaxRate)
		}
	default:
		a.TaxRate = p.DefaultTaxRate
		warn(verrors.WarnDefaultTaxRate, "no effective tax rate; using %.4f", p.DefaultTaxRate)
	}

	// Cost of debt
	if o.CostOfDebt != nil {
		a.CostOfDebt = *o.CostOfDebt
	} else {
		a.CostOfDebt = b.costOfDebt(s, a.RiskFreeRate, warn)
	}

	// Capital structure
	switch {
	case o.WeightEquity != nil && o.WeightDebt != nil:
		a.WeightEquity, a.WeightDebt = *o.WeightEquity, *o.WeightDebt
	case o.WeightEquity != nil:
		a.WeightEquity, a.WeightDebt = *o.WeightEquity, 1-*o.WeightEquity
	case o.WeightDebt != nil:
		a.WeightEquity, a.WeightDebt = 1-*o.WeightDebt, *o.WeightDebt
	default:
		a.WeightEquity, a.WeightDebt = b.weights(s, warn)
	}

	// Growth
	if o.GrowthRate != nil {
		a.GrowthRate = *o.GrowthRate
	} else {
		a.GrowthRate = b.growth(s, warn)
	}

	if a.Horizon < 1 {
		return models.ValuationAssumptions{}, warnings, verrors.NewValidationError("horizon", a.Horizon, "horizon must be at least 1")
	}
	if a.Terminal == models.TerminalFinite && a.TerminalYears < 1 {
		return models.ValuationAssumptions{}, warnings, verrors.NewValidationError("terminal_years", a.TerminalYears, "finite terminal stage needs at least one year")
	}
	return a, warnings, nil
}

// costOfDebt is interest over debt when both are known, else the risk-free
// rate plus a spread; always kept within [r_f + min spread, max].
func (b *Builder) costOfDebt(s *models.FinancialSnapshot, rf float64, warn func(string, string, ...interface{})) float64 {
	p := b.policy
	var rd float64
	if s.InterestExpense != nil && s.TotalDebt != nil && *s.TotalDebt > 0 && math.Abs(*s.InterestExpense) > 0 {
		rd = math.Abs(*s.InterestExpense) / *s.TotalDebt
		if rd < rf {
			rd = rf + p.DebtSpread
			warn(verrors.WarnDefaultCostOfDebt, "implied cost of debt below the risk-free rate; using r_f + %.4f", p.DebtSpread)
		}
	} else {
		rd = rf + p.DebtSpread
		warn(verrors.WarnDefaultCostOfDebt, "no interest expense or debt; using r_f + %.4f", p.DebtSpread)
	}

	bounded := clamp(rd, rf+p.MinDebtSpread, p.MaxCostOfDebt)
	if bounded != rd {
		warn(verrors.WarnClamped, "cost of debt %.4f clamped to %.4f", rd, bounded)
	}
	return bounded
}

func (b *Builder) weights(s *models.FinancialSnapshot, warn func(string, string, ...interface{})) (float64, float64) {
	p := b.policy
	if s.TotalDebt != nil {
		debt := math.Max(0, *s.TotalDebt)
		equity := math.Max(0, s.MarketCapValue())
		if total := debt + equity; total > 0 {
			return equity / total, debt / total
		}
	}
	warn(verrors.WarnDefaultWeights, "no capital structure; using %.2f/%.2f", p.WeightEquity, p.WeightDebt)
	return p.WeightEquity, p.WeightDebt
}

func (b *Builder) growth(s *models.FinancialSnapshot, warn func(string, string, ...interface{})) float64 {
	p := b.policy
	var src *float64
	switch p.GrowthSource {
	case GrowthFromEBITDA:
		src = s.EBITDAGrowth
	case GrowthFromRevenue:
		src = s.RevenueGrowth
	default:
		src = s.EarningsGrowth
	}
	if src == nil {
		warn(verrors.WarnDefaultGrowth, "no %s growth history; using %.4f", p.GrowthSource, p.DefaultGrowth)
		return p.DefaultGrowth
	}
	g := *src
	if p.MaxGrowth > 0 && g > p.MaxGrowth {
		warn(verrors.WarnClamped, "%s growth %.4f capped at %.4f", p.GrowthSource, g, p.MaxGrowth)
		g = p.MaxGrowth
	}
	return g
}

func pick[T any](override *T, fallback T) T {
	if override != nil {
		return *override
	}
	return fallback
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(math.Max(v, lo), hi)
}
