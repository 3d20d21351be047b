package sensitivity

import (
	"context"
	"math"
	"strings"
	"testing"

	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/models"
	"intrinsic-valuator/internal/valuation"
)

func testSnapshot() *models.FinancialSnapshot {
	return &models.FinancialSnapshot{
		Ticker:            "ACME",
		Price:             40,
		SharesOutstanding: 50,
		FreeCashFlow:      models.Float(100),
		NetDebt:           models.Float(200),
		TrailingEPS:       models.Float(5),
	}
}

func testAssumptions() models.ValuationAssumptions {
	return models.ValuationAssumptions{
		Horizon:           5,
		GrowthRate:        0.08,
		TerminalGrowth:    0.025,
		RiskFreeRate:      0.04,
		Beta:              models.Float(1.1),
		EquityRiskPremium: 0.05,
		CostOfDebt:        0.05,
		TaxRate:           0.21,
		WeightEquity:      0.7,
		WeightDebt:        0.3,
		Decay:             models.DecayConstant,
		Terminal:          models.TerminalPerpetuity,
	}
}

func TestGenerate_InvalidCellsMatchDomain(t *testing.T) {
	s := testSnapshot()
	base := testAssumptions()
	classifier := valuation.NewClassifier(valuation.DefaultThresholds())

	rates := models.Axis{Parameter: models.ParamDiscountRate, Values: []float64{0.07, 0.08, 0.09, 0.10}}
	growth := models.Axis{Parameter: models.ParamTerminalGrowth, Values: []float64{0.02, 0.08, 0.09, 0.095}}

	grid, err := NewGenerator(3, classifier).Generate(context.Background(), s, base, models.MethodTwoStageDCF, rates, growth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i, rate := range rates.Values {
		for j, gt := range growth.Values {
			cell := grid.Cell(i, j)
			if cell.Row != rate || cell.Column != gt {
				t.Fatalf("cell (%d,%d) holds (%v,%v), want (%v,%v)", i, j, cell.Row, cell.Column, rate, gt)
			}

			if gt >= rate {
				if cell.Valid {
					t.Errorf("cell rate=%v g=%v should be invalid", rate, gt)
				}
				if !strings.Contains(cell.Error, "terminal_growth") {
					t.Errorf("invalid cell error %q should name terminal_growth", cell.Error)
				}
				continue
			}

			a := base.WithDiscountRate(rate)
			a.TerminalGrowth = gt
			direct, err := valuation.Value(models.MethodTwoStageDCF, s, a, classifier)
			if err != nil {
				t.Fatalf("direct call failed for rate=%v g=%v: %v", rate, gt, err)
			}
			if !cell.Valid || cell.FairValue != direct.FairValue {
				t.Errorf("cell rate=%v g=%v = %v (valid=%v), direct = %v", rate, gt, cell.FairValue, cell.Valid, direct.FairValue)
			}
		}
	}

	// 0.08, 0.09 and 0.095 against 0.07; 0.08, 0.09, 0.095 against 0.08; 0.09, 0.095 against 0.09
	if got := grid.InvalidCount(); got != 8 {
		t.Errorf("invalid cells = %d, want 8", got)
	}
}

func TestGenerate_WACCInputAxis(t *testing.T) {
	s := testSnapshot()
	base := testAssumptions().WithDiscountRate(0.5)
	classifier := valuation.NewClassifier(valuation.DefaultThresholds())

	betas := models.Axis{Parameter: models.ParamBeta, Values: []float64{0.8, 1.2}}
	growth := models.Axis{Parameter: models.ParamGrowthRate, Values: []float64{0.05}}

	grid, err := NewGenerator(2, classifier).Generate(context.Background(), s, base, models.MethodTwoStageDCF, betas, growth)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	low, high := grid.Cell(0, 0), grid.Cell(1, 0)
	if !low.Valid || !high.Valid {
		t.Fatalf("expected valid cells, got %+v %+v", low, high)
	}
	if high.FairValue >= low.FairValue {
		t.Errorf("higher beta should lower fair value: %v >= %v", high.FairValue, low.FairValue)
	}
}

func TestGenerate_Rejects(t *testing.T) {
	gen := NewGenerator(1, valuation.NewClassifier(valuation.DefaultThresholds()))
	rows := models.Axis{Parameter: models.ParamGrowthRate, Values: []float64{0.05}}
	cols := models.Axis{Parameter: models.ParamTerminalGrowth, Values: []float64{0.02}}

	if _, err := gen.Generate(context.Background(), testSnapshot(), testAssumptions(), models.MethodPeterLynch, rows, cols); !verrors.Is(err, verrors.ErrConfigInvalid) {
		t.Errorf("expected non-DCF method rejected, got %v", err)
	}
	if _, err := gen.Generate(context.Background(), testSnapshot(), testAssumptions(), models.MethodTwoStageDCF, rows, rows); !verrors.Is(err, verrors.ErrConfigInvalid) {
		t.Errorf("expected duplicate parameter rejected, got %v", err)
	}
	empty := models.Axis{Parameter: models.ParamTerminalGrowth}
	if _, err := gen.Generate(context.Background(), testSnapshot(), testAssumptions(), models.MethodTwoStageDCF, rows, empty); !verrors.Is(err, verrors.ErrConfigInvalid) {
		t.Errorf("expected empty axis rejected, got %v", err)
	}
}

func TestGenerate_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rows, _ := Range(models.ParamGrowthRate, 0.01, 0.10, 0.01)
	cols, _ := Range(models.ParamTerminalGrowth, 0.01, 0.03, 0.01)

	grid, err := NewGenerator(2, valuation.NewClassifier(valuation.DefaultThresholds())).
		Generate(ctx, testSnapshot(), testAssumptions(), models.MethodTwoStageDCF, rows, cols)
	if err != context.Canceled {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if grid == nil {
		t.Fatal("expected partial grid")
	}
	for _, row := range grid.Cells {
		for _, c := range row {
			if c.Valid || c.Error != abandoned {
				t.Errorf("cell %+v should be abandoned", c)
			}
		}
	}
}

func TestApply(t *testing.T) {
	base := testAssumptions().WithDiscountRate(0.09)

	a, err := Apply(base, models.ParamRiskFreeRate, 0.05)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a.RiskFreeRate != 0.05 || a.DiscountRateOverride != nil {
		t.Errorf("risk-free axis should set the rate and clear the override: %+v", a)
	}
	if base.DiscountRateOverride == nil {
		t.Error("Apply must not modify its input")
	}

	a, _ = Apply(base, models.ParamWeightEquity, 0.6)
	if a.WeightEquity != 0.6 || a.WeightDebt != 1-0.6 {
		t.Errorf("weights = %v/%v", a.WeightEquity, a.WeightDebt)
	}

	a, _ = Apply(base, models.ParamHorizon, 7)
	if a.Horizon != 7 {
		t.Errorf("horizon = %d, want 7", a.Horizon)
	}
	if _, err := Apply(base, models.ParamHorizon, 7.5); !verrors.Is(err, verrors.ErrConfigInvalid) {
		t.Errorf("expected fractional horizon rejected, got %v", err)
	}
	if _, err := Apply(base, "peg_ratio", 1); !verrors.Is(err, verrors.ErrConfigInvalid) {
		t.Errorf("expected unknown parameter rejected, got %v", err)
	}
	if v, ok := Lookup(base, models.ParamDiscountRate); !ok || v != 0.09 {
		t.Errorf("Lookup discount rate = %v, %v", v, ok)
	}
}

func TestAxisBuilders(t *testing.T) {
	axis, err := Range(models.ParamDiscountRate, 0.07, 0.11, 0.01)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []float64{0.07, 0.08, 0.09, 0.10, 0.11}
	if len(axis.Values) != len(want) {
		t.Fatalf("values = %v, want %v", axis.Values, want)
	}
	for i := range want {
		if axis.Values[i] != want[i] {
			t.Errorf("value %d = %v, want %v", i, axis.Values[i], want[i])
		}
	}

	around, err := Around(models.ParamTerminalGrowth, 0.025, 0.01, 0.005)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(around.Values) != 5 || around.Values[0] != 0.015 || around.Values[4] != 0.035 {
		t.Errorf("around = %v", around.Values)
	}

	invalid := []struct {
		name              string
		start, stop, step float64
	}{
		{"stop below start", 0.1, 0.0, 0.01},
		{"zero step", 0, 1, 0},
		{"oversized axis", 0, 100, 0.01},
		{"tiny step", 0, 1, 1e-300},
		{"NaN step", 0, 1, math.NaN()},
		{"NaN start", math.NaN(), 1, 0.01},
		{"infinite stop", 0, math.Inf(1), 0.01},
	}
	for _, tc := range invalid {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Range(models.ParamGrowthRate, tc.start, tc.stop, tc.step); !verrors.Is(err, verrors.ErrConfigInvalid) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}

	if _, err := Around(models.ParamTerminalGrowth, math.NaN(), 0.01, 0.005); !verrors.Is(err, verrors.ErrConfigInvalid) {
		t.Errorf("expected validation error for NaN center, got %v", err)
	}
	if _, err := Around(models.ParamTerminalGrowth, 0.025, math.NaN(), 0.005); !verrors.Is(err, verrors.ErrConfigInvalid) {
		t.Errorf("expected validation error for NaN span, got %v", err)
	}
}
