package valuation

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"intrinsic-valuator/internal/models"
)

func propertyParameters() *gopter.TestParameters {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())
	parameters.MaxShrinkCount = 0
	return parameters
}

func dcfFairValue(base, g1, gt, rate float64, decay models.DecayPolicy) (float64, error) {
	s := &models.FinancialSnapshot{
		Ticker:            "PROP",
		Price:             10,
		SharesOutstanding: 100,
		FreeCashFlow:      models.Float(base),
		NetDebt:           models.Float(250),
	}
	a := models.ValuationAssumptions{
		Horizon:        7,
		GrowthRate:     g1,
		TerminalGrowth: gt,
		Decay:          decay,
	}.WithDiscountRate(rate)

	res, err := Value(models.MethodTwoStageDCF, s, a, NewClassifier(DefaultThresholds()))
	if err != nil {
		return 0, err
	}
	return res.FairValue, nil
}

func TestProperty_PresentValueZeroPeriodIsIdentity(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("PresentValue(x, r, 0) == x", prop.ForAll(
		func(amount, rate float64) bool {
			pv, err := PresentValue(amount, rate, 0)
			return err == nil && pv == amount
		},
		gen.Float64Range(-1e9, 1e9),
		gen.Float64Range(-0.999, 5),
	))

	properties.TestingRun(t)
}

func TestProperty_TerminalValueMonotonic(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	// growth in [-0.03, 0.02] plus a step of at most 0.01 stays below the
	// smallest discount rate.
	properties.Property("terminal value is positive", prop.ForAll(
		func(last, g, r float64) bool {
			tv, err := TerminalValue(last, g, r)
			return err == nil && tv > 0
		},
		gen.Float64Range(0.01, 1e6),
		gen.Float64Range(-0.03, 0.02),
		gen.Float64Range(0.04, 0.25),
	))

	properties.Property("terminal value strictly increases with growth", prop.ForAll(
		func(last, g, r, step float64) bool {
			lo, err1 := TerminalValue(last, g, r)
			hi, err2 := TerminalValue(last, g+step, r)
			return err1 == nil && err2 == nil && hi > lo
		},
		gen.Float64Range(0.01, 1e6),
		gen.Float64Range(-0.03, 0.02),
		gen.Float64Range(0.04, 0.25),
		gen.Float64Range(0.0005, 0.01),
	))

	properties.Property("terminal value strictly decreases with discount rate", prop.ForAll(
		func(last, g, r, step float64) bool {
			lo, err1 := TerminalValue(last, g, r+step)
			hi, err2 := TerminalValue(last, g, r)
			return err1 == nil && err2 == nil && hi > lo
		},
		gen.Float64Range(0.01, 1e6),
		gen.Float64Range(-0.03, 0.02),
		gen.Float64Range(0.04, 0.25),
		gen.Float64Range(0.0005, 0.05),
	))

	properties.TestingRun(t)
}

func TestProperty_DCFMonotonicity(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	for _, decay := range []models.DecayPolicy{models.DecayConstant, models.DecayLinearFade} {
		decay := decay

		properties.Property(string(decay)+": fair value non-increasing in discount rate", prop.ForAll(
			func(base, g1, gt, r, step float64) bool {
				lo, err1 := dcfFairValue(base, g1, gt, r+step, decay)
				hi, err2 := dcfFairValue(base, g1, gt, r, decay)
				return err1 == nil && err2 == nil && lo <= hi+tolerance*abs(hi)
			},
			gen.Float64Range(1, 1e5),
			gen.Float64Range(-0.10, 0.30),
			gen.Float64Range(0, 0.03),
			gen.Float64Range(0.05, 0.20),
			gen.Float64Range(0.0005, 0.05),
		))

		properties.Property(string(decay)+": fair value non-decreasing in explicit growth", prop.ForAll(
			func(base, g1, gt, r, step float64) bool {
				lo, err1 := dcfFairValue(base, g1, gt, r, decay)
				hi, err2 := dcfFairValue(base, g1+step, gt, r, decay)
				return err1 == nil && err2 == nil && hi >= lo-tolerance*abs(lo)
			},
			gen.Float64Range(1, 1e5),
			gen.Float64Range(-0.10, 0.30),
			gen.Float64Range(0, 0.03),
			gen.Float64Range(0.05, 0.20),
			gen.Float64Range(0.0005, 0.05),
		))

		properties.Property(string(decay)+": fair value non-decreasing in terminal growth", prop.ForAll(
			func(base, g1, gt, r, step float64) bool {
				lo, err1 := dcfFairValue(base, g1, gt, r, decay)
				hi, err2 := dcfFairValue(base, g1, gt+step, r, decay)
				return err1 == nil && err2 == nil && hi >= lo-tolerance*abs(lo)
			},
			gen.Float64Range(1, 1e5),
			gen.Float64Range(-0.10, 0.30),
			gen.Float64Range(0, 0.03),
			gen.Float64Range(0.05, 0.20),
			gen.Float64Range(0.0005, 0.01),
		))
	}

	properties.TestingRun(t)
}

func TestProperty_EVEBITDAIdentity(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())

	properties.Property("own multiple reproduces market price", prop.ForAll(
		func(price, shares, ebitda, netDebt float64) bool {
			s := &models.FinancialSnapshot{
				Ticker:            "PROP",
				Price:             price,
				SharesOutstanding: shares,
				EBITDA:            models.Float(ebitda),
				NetDebt:           models.Float(netDebt),
			}
			own := (s.MarketCapValue() + netDebt) / ebitda
			if own <= 0 {
				return true
			}
			m := EVEBITDA{Benchmark: models.MultipleBand{Target: own}}
			res, err := Evaluate(m, s, NewClassifier(DefaultThresholds()))
			if err != nil {
				return false
			}
			return approxRel(res.FairValue, price, 1e-6)
		},
		gen.Float64Range(1, 500),
		gen.Float64Range(1, 1e4),
		gen.Float64Range(1, 1e5),
		gen.Float64Range(-1e4, 1e4),
	))

	properties.TestingRun(t)
}

func TestProperty_UpsideClassification(t *testing.T) {
	properties := gopter.NewProperties(propertyParameters())
	c := NewClassifier(DefaultThresholds())

	properties.Property("status agrees with upside bands", prop.ForAll(
		func(fair, price float64) bool {
			upside, status := c.Classify(fair, price)
			switch {
			case upside > 0.10:
				return status == models.StatusUndervalued
			case upside < -0.10:
				return status == models.StatusOvervalued
			default:
				return status == models.StatusFairValue
			}
		},
		gen.Float64Range(-100, 1000),
		gen.Float64Range(0.01, 1000),
	))

	properties.TestingRun(t)
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}

func approxRel(a, b, tol float64) bool {
	scale := abs(b)
	if scale < 1 {
		scale = 1
	}
	return abs(a-b) <= tol*scale
}
