package report

import (
	"math"
	"regexp"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// For any amount, Money renders a $-prefixed value with two decimals and
// comma-separated thousands that parses back to the amount rounded to cents.
func TestProperty_MoneyFormatting(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200
	parameters.Rng.Seed(time.Now().UnixNano())
	properties := gopter.NewProperties(parameters)

	f, err := NewFormatter("USD")
	if err != nil {
		t.Fatalf("NewFormatter failed: %v", err)
	}
	grouping := regexp.MustCompile(`^\d{1,3}(,\d{3})*$`)

	properties.Property("Money uses currency symbol, grouping and two decimals", prop.ForAll(
		func(amount float64) bool {
			formatted := f.Money(amount)

			numPart := strings.TrimPrefix(formatted, "-")
			if !strings.HasPrefix(numPart, "$") {
				t.Logf("Expected $ prefix for %f, got %s", amount, formatted)
				return false
			}
			numPart = strings.TrimPrefix(numPart, "$")

			parts := strings.Split(numPart, ".")
			if len(parts) != 2 || len(parts[1]) != 2 {
				t.Logf("Expected 2 decimal places for %f, got %s", amount, formatted)
				return false
			}
			if !grouping.MatchString(parts[0]) {
				t.Logf("Invalid grouping for %f: %s", amount, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-1e12, 1e12),
	))

	properties.Property("Money preserves value to the cent", prop.ForAll(
		func(amount float64) bool {
			formatted := f.Money(amount)
			parsed := parseUSD(formatted)
			if diff := math.Abs(parsed - amount); diff > 0.005+1e-6 {
				t.Logf("Value not preserved: original=%f, formatted=%s, parsed=%f", amount, formatted, parsed)
				return false
			}
			return true
		},
		gen.Float64Range(-1e9, 1e9),
	))

	properties.Property("Percent is signed and ends with %", prop.ForAll(
		func(value float64) bool {
			formatted := Percent(value)
			if !strings.HasSuffix(formatted, "%") {
				return false
			}
			if value >= 0.0005 && !strings.HasPrefix(formatted, "+") {
				t.Logf("Expected + prefix for %f, got %s", value, formatted)
				return false
			}
			if value <= -0.0005 && !strings.HasPrefix(formatted, "-") {
				t.Logf("Expected - prefix for %f, got %s", value, formatted)
				return false
			}
			return true
		},
		gen.Float64Range(-10, 10),
	))

	properties.TestingRun(t)
}

func parseUSD(s string) float64 {
	negative := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	s = strings.TrimPrefix(s, "$")
	s = strings.ReplaceAll(s, ",", "")
	v, _ := strconv.ParseFloat(s, 64)
	if negative {
		return -v
	}
	return v
}
