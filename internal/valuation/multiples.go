package valuation

import (
	"fmt"

	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/models"
)

// EVEBITDA back-solves equity value per share from a benchmark enterprise
// multiple.
//
// FORMULA: fair = (benchmark × EBITDA - net debt) / shares
type EVEBITDA struct {
	Benchmark models.MultipleBand
}

// Method implements Model.
func (EVEBITDA) Method() models.Method { return models.MethodEVEBITDA }

func (m EVEBITDA) value(s *models.FinancialSnapshot) (outcome, error) {
	if m.Benchmark.Target <= 0 {
		return outcome{}, verrors.NewMissingDataError("", "ev_ebitda_benchmark")
	}
	if s.EBITDA == nil {
		return outcome{}, verrors.NewMissingDataError("", "ebitda")
	}
	ebitda := *s.EBITDA
	if ebitda <= 0 {
		return outcome{}, verrors.NewDomainError("", "ebitda", ebitda, "EV/EBITDA is undefined for non-positive EBITDA")
	}
	netDebt, err := s.NetDebtValue()
	if err != nil {
		return outcome{}, err
	}
	if s.SharesOutstanding <= 0 {
		return outcome{}, verrors.NewDomainError("", "shares_outstanding", s.SharesOutstanding, "shares outstanding must be positive")
	}

	perShare := func(multiple float64) float64 {
		return (multiple*ebitda - netDebt) / s.SharesOutstanding
	}

	ev := m.Benchmark.Target * ebitda
	out := outcome{
		fairValue: perShare(m.Benchmark.Target),
		detail: models.ValuationDetail{
			EnterpriseValue: ev,
			EquityValue:     ev - netDebt,
			NetDebt:         netDebt,
			Basis:           ebitda,
			Multiple:        m.Benchmark.Target,
			CurrentMultiple: (s.MarketCapValue() + netDebt) / ebitda,
		},
	}
	if m.Benchmark.HasRange() {
		out.valueRange = &models.ValueRange{Low: perShare(m.Benchmark.Low), High: perShare(m.Benchmark.High)}
	}
	return out, nil
}

// MultipleBasis selects the per-share quantity a market multiple applies to.
type MultipleBasis string

const (
	BasisEarnings MultipleBasis = "pe"
	BasisBook     MultipleBasis = "pb"
	BasisSales    MultipleBasis = "ps"
)

// MarketMultiple applies a benchmark P/E, P/B or P/S to the matching
// per-share figure.
//
// FORMULA: fair = benchmark × (EPS | BVPS | revenue per share)
type MarketMultiple struct {
	Basis         MultipleBasis
	Benchmark     models.MultipleBand
	UseForwardEPS bool
}

// Method implements Model.
func (m MarketMultiple) Method() models.Method {
	switch m.Basis {
	case BasisBook:
		return models.MethodPBMultiple
	case BasisSales:
		return models.MethodPSMultiple
	}
	return models.MethodPEMultiple
}

func (m MarketMultiple) basis(s *models.FinancialSnapshot) (float64, string, error) {
	switch m.Basis {
	case BasisEarnings:
		v, err := s.EPS(m.UseForwardEPS)
		return v, "eps", err
	case BasisBook:
		if s.BookValuePerShare == nil {
			return 0, "book_value_per_share", verrors.NewMissingDataError("", "book_value_per_share")
		}
		return *s.BookValuePerShare, "book_value_per_share", nil
	case BasisSales:
		if s.RevenuePerShare == nil {
			return 0, "revenue_per_share", verrors.NewMissingDataError("", "revenue_per_share")
		}
		return *s.RevenuePerShare, "revenue_per_share", nil
	}
	return 0, "", verrors.Wrapf(verrors.ErrUnknownMethod, "multiple basis %q", string(m.Basis))
}

func (m MarketMultiple) value(s *models.FinancialSnapshot) (outcome, error) {
	if m.Benchmark.Target <= 0 {
		return outcome{}, verrors.NewMissingDataError("", fmt.Sprintf("%s_benchmark", m.Basis))
	}
	basis, field, err := m.basis(s)
	if err != nil {
		return outcome{}, err
	}
	if basis <= 0 {
		return outcome{}, verrors.NewDomainError("", field, basis, "multiple is undefined for a non-positive basis")
	}

	out := outcome{
		fairValue: m.Benchmark.Target * basis,
		detail: models.ValuationDetail{
			Basis:           basis,
			Multiple:        m.Benchmark.Target,
			CurrentMultiple: s.Price / basis,
		},
	}
	if m.Benchmark.HasRange() {
		out.valueRange = &models.ValueRange{Low: m.Benchmark.Low * basis, High: m.Benchmark.High * basis}
	}
	return out, nil
}
