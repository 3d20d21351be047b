// Package report turns valuation results into rounded, display-ready values.
// Calculations stay in float64; rounding happens once, here, in decimal.
package report

import (
	"math"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"

	verrors "intrinsic-valuator/internal/errors"
)

// Formatter renders amounts in one currency.
type Formatter struct {
	code     string
	currency *money.Currency
}

// NewFormatter returns a formatter for an ISO 4217 currency code.
func NewFormatter(code string) (Formatter, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	cur := money.GetCurrency(code)
	if cur == nil {
		return Formatter{}, verrors.NewValidationError("currency", code, "unknown currency code")
	}
	return Formatter{code: code, currency: cur}, nil
}

// Code returns the currency code.
func (f Formatter) Code() string {
	return f.code
}

// Money formats v with the currency's symbol and minor-unit precision.
func (f Formatter) Money(v float64) string {
	if !finite(v) {
		return notAvailable
	}
	places := int32(f.currency.Fraction)
	minor := decimal.NewFromFloat(v).Round(places).Shift(places)
	return f.currency.Formatter().Format(minor.IntPart())
}

// Round rounds v to the currency's minor unit.
func (f Formatter) Round(v float64) float64 {
	return Round(v, int32(f.currency.Fraction))
}

// Round rounds v half away from zero to places decimals.
func Round(v float64, places int32) float64 {
	if !finite(v) {
		return v
	}
	return decimal.NewFromFloat(v).Round(places).InexactFloat64()
}

// Percent formats a decimal ratio as a signed percentage, 0.125 -> "+12.5%".
func Percent(v float64) string {
	if !finite(v) {
		return notAvailable
	}
	d := decimal.NewFromFloat(v).Shift(2).Round(1)
	if d.IsPositive() {
		return "+" + d.StringFixed(1) + "%"
	}
	return d.StringFixed(1) + "%"
}

// Rate formats a decimal rate without a sign, 0.078 -> "7.80%".
func Rate(v float64) string {
	if !finite(v) {
		return notAvailable
	}
	return decimal.NewFromFloat(v).Shift(2).StringFixed(2) + "%"
}

// Multiple formats a valuation multiple, 12.5 -> "12.5x".
func Multiple(v float64) string {
	if !finite(v) {
		return notAvailable
	}
	return decimal.NewFromFloat(v).StringFixed(1) + "x"
}

const notAvailable = "n/a"

// finite reports whether v can be converted to a decimal.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
