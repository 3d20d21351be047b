package assumptions

import (
	"math"
	"testing"

	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/models"
)

func hasWarning(warnings []verrors.ConfigurationWarning, code string) bool {
	for _, w := range warnings {
		if w.Code == code {
			return true
		}
	}
	return false
}

func fullSnapshot() *models.FinancialSnapshot {
	return &models.FinancialSnapshot{
		Ticker:            "ACME",
		Price:             50,
		SharesOutstanding: 100,
		TotalDebt:         models.Float(3000),
		InterestExpense:   models.Float(-180),
		Beta:              models.Float(1.3),
		EffectiveTaxRate:  models.Float(0.19),
		EarningsGrowth:    models.Float(0.12),
		RevenueGrowth:     models.Float(0.07),
	}
}

func TestBuild_FromCompleteSnapshot(t *testing.T) {
	b := NewBuilder(DefaultPolicy())

	a, warnings, err := b.Build(fullSnapshot(), Overrides{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
	if a.Beta == nil || *a.Beta != 1.3 {
		t.Errorf("beta = %v, want 1.3", a.Beta)
	}
	if a.TaxRate != 0.19 {
		t.Errorf("tax rate = %v, want 0.19", a.TaxRate)
	}
	if math.Abs(a.CostOfDebt-0.06) > 1e-12 {
		t.Errorf("cost of debt = %v, want 180/3000 = 0.06", a.CostOfDebt)
	}
	// market cap 5000 vs debt 3000
	if math.Abs(a.WeightEquity-0.625) > 1e-12 || math.Abs(a.WeightDebt-0.375) > 1e-12 {
		t.Errorf("weights = %v/%v, want 0.625/0.375", a.WeightEquity, a.WeightDebt)
	}
	if a.GrowthRate != 0.12 {
		t.Errorf("growth = %v, want 0.12", a.GrowthRate)
	}
	if a.PEGRatio != 1.0 {
		t.Errorf("PEG = %v, want 1.0", a.PEGRatio)
	}
	if a.DiscountRateOverride != nil {
		t.Error("no discount rate override expected")
	}
}

func TestBuild_DefaultsProduceWarnings(t *testing.T) {
	b := NewBuilder(DefaultPolicy())
	s := &models.FinancialSnapshot{Ticker: "BARE", Price: 10, SharesOutstanding: 1000}

	a, warnings, err := b.Build(s, Overrides{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, code := range []string{
		verrors.WarnDefaultBeta,
		verrors.WarnDefaultTaxRate,
		verrors.WarnDefaultCostOfDebt,
		verrors.WarnDefaultWeights,
		verrors.WarnDefaultGrowth,
	} {
		if !hasWarning(warnings, code) {
			t.Errorf("missing %s warning in %v", code, warnings)
		}
	}
	if a.Beta == nil || *a.Beta != 1.0 {
		t.Errorf("default beta = %v, want 1.0", a.Beta)
	}
	if math.Abs(a.CostOfDebt-0.06) > 1e-12 {
		t.Errorf("default cost of debt = %v, want r_f + 0.02 = 0.06", a.CostOfDebt)
	}
	if a.WeightEquity != 0.7 || a.WeightDebt != 0.3 {
		t.Errorf("default weights = %v/%v", a.WeightEquity, a.WeightDebt)
	}
}

func TestBuild_Bounds(t *testing.T) {
	b := NewBuilder(DefaultPolicy())
	s := fullSnapshot()
	s.EffectiveTaxRate = models.Float(0.8)
	s.InterestExpense = models.Float(900) // 30% implied
	s.EarningsGrowth = models.Float(0.60)

	a, warnings, err := b.Build(s, Overrides{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.TaxRate != 0.5 {
		t.Errorf("tax rate = %v, want clamp at 0.5", a.TaxRate)
	}
	if a.CostOfDebt != 0.20 {
		t.Errorf("cost of debt = %v, want cap at 0.20", a.CostOfDebt)
	}
	if a.GrowthRate != 0.25 {
		t.Errorf("growth = %v, want cap at 0.25", a.GrowthRate)
	}
	if !hasWarning(warnings, verrors.WarnClamped) {
		t.Errorf("expected clamped warnings, got %v", warnings)
	}
}

func TestBuild_OverridesWin(t *testing.T) {
	b := NewBuilder(DefaultPolicy())
	s := &models.FinancialSnapshot{Ticker: "BARE", Price: 10, SharesOutstanding: 1000}

	beta := 0.9
	we := 0.8
	rate := 0.11
	horizon := 8
	decay := models.DecayLinearFade

	a, warnings, err := b.Build(s, Overrides{
		Beta:         &beta,
		WeightEquity: &we,
		DiscountRate: &rate,
		Horizon:      &horizon,
		Decay:        &decay,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasWarning(warnings, verrors.WarnDefaultBeta) {
		t.Error("overridden beta must not warn")
	}
	if hasWarning(warnings, verrors.WarnDefaultWeights) {
		t.Error("overridden weights must not warn")
	}
	if *a.Beta != 0.9 || a.WeightEquity != 0.8 || math.Abs(a.WeightDebt-0.2) > 1e-12 {
		t.Errorf("overrides not applied: beta=%v weights=%v/%v", *a.Beta, a.WeightEquity, a.WeightDebt)
	}
	if a.DiscountRateOverride == nil || *a.DiscountRateOverride != 0.11 {
		t.Errorf("discount override = %v", a.DiscountRateOverride)
	}
	if a.Horizon != 8 || a.Decay != models.DecayLinearFade {
		t.Errorf("horizon/decay = %d/%s", a.Horizon, a.Decay)
	}
}

func TestBuild_GrowthSource(t *testing.T) {
	p := DefaultPolicy()
	p.GrowthSource = GrowthFromRevenue

	a, _, err := NewBuilder(p).Build(fullSnapshot(), Overrides{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.GrowthRate != 0.07 {
		t.Errorf("growth = %v, want revenue growth 0.07", a.GrowthRate)
	}
}

func TestBuild_Invalid(t *testing.T) {
	b := NewBuilder(DefaultPolicy())

	s := fullSnapshot()
	s.SharesOutstanding = 0
	if _, _, err := b.Build(s, Overrides{}); !verrors.Is(err, verrors.ErrDomain) {
		t.Errorf("expected domain error for zero shares, got %v", err)
	}

	zero := 0
	if _, _, err := b.Build(fullSnapshot(), Overrides{Horizon: &zero}); !verrors.Is(err, verrors.ErrConfigInvalid) {
		t.Errorf("expected invalid horizon, got %v", err)
	}
}

func TestPolicyValidate(t *testing.T) {
	if err := DefaultPolicy().Validate(); err != nil {
		t.Fatalf("default policy should validate: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(*Policy)
	}{
		{"zero horizon", func(p *Policy) { p.Horizon = 0 }},
		{"tax rate of one", func(p *Policy) { p.DefaultTaxRate = 1 }},
		{"negative weight", func(p *Policy) { p.WeightDebt = -1 }},
		{"bad growth source", func(p *Policy) { p.GrowthSource = "dividends" }},
		{"bad decay", func(p *Policy) { p.Decay = "step" }},
		{"finite without years", func(p *Policy) { p.Terminal = models.TerminalFinite; p.TerminalYears = 0 }},
		{"zero PEG", func(p *Policy) { p.PEGRatio = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultPolicy()
			tt.mutate(&p)
			if err := p.Validate(); !verrors.Is(err, verrors.ErrConfigInvalid) {
				t.Errorf("expected invalid policy, got %v", err)
			}
		})
	}
}
