// Package models provides the data types shared by the valuation engine:
// snapshots, assumptions, results and sensitivity grids.
package models

import (
	"math"
	"time"

	verrors "intrinsic-valuator/internal/errors"
)

// FinancialSnapshot is the externally supplied, read-only view of a company's
// market and statement data. Amounts are in the reporting currency and rates
// are decimals. Pointer fields are optional; nil means the provider did not
// supply the value.
type FinancialSnapshot struct {
	Ticker            string    `json:"ticker" yaml:"ticker"`
	Name              string    `json:"name,omitempty" yaml:"name,omitempty"`
	Currency          string    `json:"currency,omitempty" yaml:"currency,omitempty"`
	AsOf              time.Time `json:"as_of" yaml:"as_of"`
	Price             float64   `json:"price" yaml:"price"`
	SharesOutstanding float64   `json:"shares_outstanding" yaml:"shares_outstanding"`

	// Capital structure
	TotalDebt *float64 `json:"total_debt,omitempty" yaml:"total_debt,omitempty"`
	Cash      *float64 `json:"cash,omitempty" yaml:"cash,omitempty"`
	NetDebt   *float64 `json:"net_debt,omitempty" yaml:"net_debt,omitempty"`
	MarketCap *float64 `json:"market_cap,omitempty" yaml:"market_cap,omitempty"`

	// Earnings and cash flow
	TrailingEPS        *float64 `json:"trailing_eps,omitempty" yaml:"trailing_eps,omitempty"`
	ForwardEPS         *float64 `json:"forward_eps,omitempty" yaml:"forward_eps,omitempty"`
	FreeCashFlow       *float64 `json:"free_cash_flow,omitempty" yaml:"free_cash_flow,omitempty"`
	OperatingCashFlow  *float64 `json:"operating_cash_flow,omitempty" yaml:"operating_cash_flow,omitempty"`
	CapitalExpenditure *float64 `json:"capital_expenditure,omitempty" yaml:"capital_expenditure,omitempty"`
	EBITDA             *float64 `json:"ebitda,omitempty" yaml:"ebitda,omitempty"`
	InterestExpense    *float64 `json:"interest_expense,omitempty" yaml:"interest_expense,omitempty"`

	// Per-share balance sheet and revenue
	BookValuePerShare *float64 `json:"book_value_per_share,omitempty" yaml:"book_value_per_share,omitempty"`
	TangibleBookValue *float64 `json:"tangible_book_value,omitempty" yaml:"tangible_book_value,omitempty"`
	RevenuePerShare   *float64 `json:"revenue_per_share,omitempty" yaml:"revenue_per_share,omitempty"`

	// Risk and tax
	Beta             *float64 `json:"beta,omitempty" yaml:"beta,omitempty"`
	EffectiveTaxRate *float64 `json:"effective_tax_rate,omitempty" yaml:"effective_tax_rate,omitempty"`

	// Historical growth derived from prior periods
	EarningsGrowth *float64 `json:"earnings_growth,omitempty" yaml:"earnings_growth,omitempty"`
	EBITDAGrowth   *float64 `json:"ebitda_growth,omitempty" yaml:"ebitda_growth,omitempty"`
	RevenueGrowth  *float64 `json:"revenue_growth,omitempty" yaml:"revenue_growth,omitempty"`
}

// Validate checks the snapshot invariants: shares outstanding > 0, price >= 0.
func (s *FinancialSnapshot) Validate() error {
	if s.Ticker == "" {
		return verrors.NewValidationError("ticker", s.Ticker, "ticker is required")
	}
	if math.IsNaN(s.Price) || math.IsInf(s.Price, 0) || s.Price < 0 {
		return verrors.NewDomainError("", "price", s.Price, "price must be non-negative")
	}
	if math.IsNaN(s.SharesOutstanding) || math.IsInf(s.SharesOutstanding, 0) || s.SharesOutstanding <= 0 {
		return verrors.NewDomainError("", "shares_outstanding", s.SharesOutstanding, "shares outstanding must be positive")
	}
	return nil
}

// NetDebtValue returns net debt, falling back to total debt minus cash.
func (s *FinancialSnapshot) NetDebtValue() (float64, error) {
	if s.NetDebt != nil {
		return *s.NetDebt, nil
	}
	if s.TotalDebt != nil && s.Cash != nil {
		return *s.TotalDebt - *s.Cash, nil
	}
	return 0, verrors.NewMissingDataError("", "net_debt")
}

// FreeCashFlowValue returns free cash flow, derived from operating cash flow
// minus capital expenditure when not supplied directly. Capex is accepted with
// either sign.
func (s *FinancialSnapshot) FreeCashFlowValue() (float64, error) {
	if s.FreeCashFlow != nil {
		return *s.FreeCashFlow, nil
	}
	if s.OperatingCashFlow == nil {
		return 0, verrors.NewMissingDataError("", "operating_cash_flow")
	}
	if s.CapitalExpenditure == nil {
		return 0, verrors.NewMissingDataError("", "capital_expenditure")
	}
	return *s.OperatingCashFlow - math.Abs(*s.CapitalExpenditure), nil
}

// MarketCapValue returns market capitalisation, defaulting to price times shares.
func (s *FinancialSnapshot) MarketCapValue() float64 {
	if s.MarketCap != nil {
		return *s.MarketCap
	}
	return s.Price * s.SharesOutstanding
}

// EPS returns forward or trailing EPS.
func (s *FinancialSnapshot) EPS(forward bool) (float64, error) {
	if forward {
		if s.ForwardEPS == nil {
			return 0, verrors.NewMissingDataError("", "forward_eps")
		}
		return *s.ForwardEPS, nil
	}
	if s.TrailingEPS == nil {
		return 0, verrors.NewMissingDataError("", "trailing_eps")
	}
	return *s.TrailingEPS, nil
}

// Float returns a pointer to v. Handy for building snapshots in code.
func Float(v float64) *float64 {
	return &v
}
