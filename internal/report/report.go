package report

import (
	"fmt"

	"intrinsic-valuator/internal/models"
)

// Line is one method row of a valuation summary.
type Line struct {
	Method    models.Method
	Label     string
	FairValue string
	Range     string
	Upside    string
	Status    models.Status
}

// Summary is the display form of a valuation run.
type Summary struct {
	RunID    string
	Ticker   string
	Price    string
	Lines    []Line
	Failures []models.MethodFailure
	Blended  *Line
	Warnings []string
}

// Summarize renders a run with f.
func Summarize(run *models.ValuationRun, price float64, f Formatter) Summary {
	s := Summary{
		RunID:    run.ID,
		Ticker:   run.Ticker,
		Price:    f.Money(price),
		Failures: run.Failures,
	}

	for _, r := range run.Results {
		line := Line{
			Method:    r.Method,
			Label:     r.Method.Label(),
			FairValue: f.Money(r.FairValue),
			Upside:    upside(r.Upside, r.Status),
			Status:    r.Status,
		}
		if r.Range != nil {
			line.Range = f.Money(r.Range.Low) + " - " + f.Money(r.Range.High)
		}
		s.Lines = append(s.Lines, line)
	}

	if b := run.Blended; b != nil {
		s.Blended = &Line{
			Label:     "Blended",
			FairValue: f.Money(b.FairValue),
			Upside:    upside(b.Upside, b.Status),
			Status:    b.Status,
		}
	}

	for _, w := range run.Warnings {
		s.Warnings = append(s.Warnings, w.Message)
	}
	return s
}

func upside(v float64, status models.Status) string {
	if status == models.StatusUnpriced {
		return "n/a"
	}
	return Percent(v)
}

// WACCLines returns label/value pairs for a WACC breakdown.
func WACCLines(w *models.WACCResult) [][2]string {
	return [][2]string{
		{"Risk-free rate", Rate(w.RiskFreeRate)},
		{"Beta", fmt.Sprintf("%.2f", w.Beta)},
		{"Equity risk premium", Rate(w.EquityRiskPremium)},
		{"Cost of equity", Rate(w.CostOfEquity)},
		{"Pre-tax cost of debt", Rate(w.PreTaxCostOfDebt)},
		{"Tax rate", Rate(w.TaxRate)},
		{"After-tax cost of debt", Rate(w.AfterTaxCostOfDebt)},
		{"Equity weight", Rate(w.WeightEquity)},
		{"Debt weight", Rate(w.WeightDebt)},
		{"Equity component", Rate(w.EquityComponent)},
		{"Debt component", Rate(w.DebtComponent)},
		{"WACC", Rate(w.WACC)},
	}
}

// ProjectionRows returns one display row per explicit period plus a terminal row.
func ProjectionRows(p *models.CashFlowProjection, f Formatter) [][]string {
	rows := make([][]string, 0, len(p.Periods)+1)
	for _, period := range p.Periods {
		rows = append(rows, []string{
			fmt.Sprintf("%d", period.Period),
			Rate(period.Growth),
			f.Money(period.Value),
			fmt.Sprintf("%.4f", period.DiscountFactor),
			f.Money(period.PresentValue),
		})
	}
	rows = append(rows, []string{
		"TV (" + string(p.Terminal) + ")",
		"",
		f.Money(p.TerminalValue),
		"",
		f.Money(p.TerminalPresentValue),
	})
	return rows
}

// GridRows renders a sensitivity grid. The first row is the header; each
// following row starts with its row-axis value. Invalid cells show "n/a".
func GridRows(g *models.SensitivityGrid, f Formatter) [][]string {
	header := []string{string(g.Rows.Parameter) + " \\ " + string(g.Columns.Parameter)}
	for _, v := range g.Columns.Values {
		header = append(header, axisValue(g.Columns.Parameter, v))
	}

	rows := [][]string{header}
	for i, rv := range g.Rows.Values {
		row := []string{axisValue(g.Rows.Parameter, rv)}
		for j := range g.Columns.Values {
			cell := g.Cell(i, j)
			if !cell.Valid {
				row = append(row, "n/a")
				continue
			}
			row = append(row, f.Money(cell.FairValue))
		}
		rows = append(rows, row)
	}
	return rows
}

func axisValue(p models.Parameter, v float64) string {
	switch p {
	case models.ParamHorizon:
		return fmt.Sprintf("%.0f", v)
	case models.ParamBeta, models.ParamWeightEquity:
		return fmt.Sprintf("%.2f", v)
	}
	return Rate(v)
}
