// Package valuation implements the intrinsic valuation models: discounting
// primitives, cost of capital, cash-flow projection, the DCF family, the
// relative models and the classification of results against market price.
//
// Everything in this package is pure. Errors are scoped to the single model
// that raised them and are never logged here.
package valuation

import (
	"math"

	verrors "intrinsic-valuator/internal/errors"
)

// PresentValue discounts amount back period periods at rate.
//
// FORMULA: PV = CF / (1 + r)^t
func PresentValue(amount, rate float64, period int) (float64, error) {
	if !finite(amount) || !finite(rate) {
		return 0, verrors.NewArithmeticError("present_value", "amount and rate must be finite")
	}
	if rate <= -1 {
		return 0, verrors.NewArithmeticError("present_value", "discount rate must be greater than -1")
	}
	if period < 0 {
		return 0, verrors.NewArithmeticError("present_value", "period must be non-negative")
	}
	if period == 0 {
		return amount, nil
	}
	return amount / math.Pow(1+rate, float64(period)), nil
}

// DiscountFactor returns 1/(1+rate)^period.
func DiscountFactor(rate float64, period int) (float64, error) {
	return PresentValue(1, rate, period)
}

// TerminalValue capitalises the cash flow following lastCashFlow in perpetuity.
//
// FORMULA: TV = CF_N × (1 + g) / (r - g), requires r > g
func TerminalValue(lastCashFlow, growth, discountRate float64) (float64, error) {
	if err := finiteInputs(lastCashFlow, growth, discountRate); err != nil {
		return 0, err
	}
	if discountRate <= growth {
		return 0, verrors.NewDomainError("", "terminal_growth", growth,
			"terminal growth must be strictly below the discount rate")
	}
	return lastCashFlow * (1 + growth) / (discountRate - growth), nil
}

// FiniteTerminalValue values years further cash flows growing at growth,
// expressed at the end of the explicit horizon. It keeps the perpetuity
// contract (discountRate > growth) so switching terminal methods never turns
// an invalid assumption set into a valid one.
func FiniteTerminalValue(lastCashFlow, growth, discountRate float64, years int) (float64, error) {
	if err := finiteInputs(lastCashFlow, growth, discountRate); err != nil {
		return 0, err
	}
	if discountRate <= growth {
		return 0, verrors.NewDomainError("", "terminal_growth", growth,
			"terminal growth must be strictly below the discount rate")
	}
	if years < 1 {
		return 0, verrors.NewDomainError("", "terminal_years", float64(years),
			"finite terminal stage needs at least one year")
	}

	var total float64
	cf := lastCashFlow
	for j := 1; j <= years; j++ {
		cf *= 1 + growth
		pv, err := PresentValue(cf, discountRate, j)
		if err != nil {
			return 0, err
		}
		total += pv
	}
	return total, nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// finiteInputs rejects NaN or infinite terminal inputs, which would otherwise
// slip past the r > g comparison.
func finiteInputs(lastCashFlow, growth, discountRate float64) error {
	switch {
	case !finite(lastCashFlow):
		return verrors.NewDomainError("", "base", lastCashFlow, "cash flow must be finite")
	case !finite(growth):
		return verrors.NewDomainError("", "terminal_growth", growth, "growth must be finite")
	case !finite(discountRate):
		return verrors.NewDomainError("", "discount_rate", discountRate, "discount rate must be finite")
	}
	return nil
}
