package valuation

import (
	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/models"
)

// DCFParams are the projection assumptions shared by the DCF family.
type DCFParams struct {
	Horizon        int
	GrowthRate     float64
	TerminalGrowth float64
	DiscountRate   float64
	Decay          models.DecayPolicy
	Terminal       models.TerminalMethod
	TerminalYears  int
}

func (p DCFParams) projection(base float64, allowNegative bool) ProjectionInput {
	return ProjectionInput{
		Base:              base,
		GrowthRate:        p.GrowthRate,
		TerminalGrowth:    p.TerminalGrowth,
		Horizon:           p.Horizon,
		DiscountRate:      p.DiscountRate,
		Decay:             p.Decay,
		Terminal:          p.Terminal,
		TerminalYears:     p.TerminalYears,
		AllowNegativeBase: allowNegative,
	}
}

// TwoStageDCF projects free cash flow to the firm, discounts it at WACC and
// bridges enterprise value to equity per share. A negative starting cash flow
// is accepted as a distressed-company input.
type TwoStageDCF struct {
	DCFParams
	IncludeTangibleBook bool
}

// Method implements Model.
func (TwoStageDCF) Method() models.Method { return models.MethodTwoStageDCF }

func (m TwoStageDCF) value(s *models.FinancialSnapshot) (outcome, error) {
	if s.FreeCashFlow == nil {
		return outcome{}, verrors.NewMissingDataError("", "free_cash_flow")
	}
	var tangible float64
	if m.IncludeTangibleBook {
		if s.TangibleBookValue == nil {
			return outcome{}, verrors.NewMissingDataError("", "tangible_book_value")
		}
		if *s.TangibleBookValue > 0 {
			tangible = *s.TangibleBookValue
		}
	}
	return firmDCF(s, m.DCFParams, *s.FreeCashFlow, true, tangible)
}

// FreeCashFlowDCF is the two-stage model on free cash flow derived from
// operating cash flow minus capital expenditure when not supplied directly.
type FreeCashFlowDCF struct {
	DCFParams
}

// Method implements Model.
func (FreeCashFlowDCF) Method() models.Method { return models.MethodFreeCashFlowDCF }

func (m FreeCashFlowDCF) value(s *models.FinancialSnapshot) (outcome, error) {
	fcf, err := s.FreeCashFlowValue()
	if err != nil {
		return outcome{}, err
	}
	return firmDCF(s, m.DCFParams, fcf, false, 0)
}

// EarningsDCF projects EPS and discounts it at the cost of equity. The
// result is already per share and carries no net-debt adjustment.
type EarningsDCF struct {
	DCFParams
	UseForwardEPS bool
}

// Method implements Model.
func (EarningsDCF) Method() models.Method { return models.MethodEarningsDCF }

func (m EarningsDCF) value(s *models.FinancialSnapshot) (outcome, error) {
	eps, err := s.EPS(m.UseForwardEPS)
	if err != nil {
		return outcome{}, err
	}
	proj, err := Project(m.projection(eps, false))
	if err != nil {
		return outcome{}, err
	}
	fair := proj.Total()
	return outcome{
		fairValue: fair,
		detail: models.ValuationDetail{
			DiscountRate: m.DiscountRate,
			Basis:        eps,
		},
		projection: &proj,
	}, nil
}

func firmDCF(s *models.FinancialSnapshot, p DCFParams, base float64, allowNegative bool, tangible float64) (outcome, error) {
	netDebt, err := s.NetDebtValue()
	if err != nil {
		return outcome{}, err
	}
	if s.SharesOutstanding <= 0 {
		return outcome{}, verrors.NewDomainError("", "shares_outstanding", s.SharesOutstanding, "shares outstanding must be positive")
	}
	proj, err := Project(p.projection(base, allowNegative))
	if err != nil {
		return outcome{}, err
	}

	ev := proj.Total() + tangible
	equity := ev - netDebt
	return outcome{
		fairValue: equity / s.SharesOutstanding,
		detail: models.ValuationDetail{
			DiscountRate:    p.DiscountRate,
			EnterpriseValue: ev,
			EquityValue:     equity,
			NetDebt:         netDebt,
			TangibleBook:    tangible,
			Basis:           base,
		},
		projection: &proj,
	}, nil
}
