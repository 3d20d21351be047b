package models

// Parameter names an assumption a sensitivity axis substitutes.
type Parameter string

const (
	ParamGrowthRate        Parameter = "growth_rate"
	ParamTerminalGrowth    Parameter = "terminal_growth"
	ParamDiscountRate      Parameter = "discount_rate"
	ParamRiskFreeRate      Parameter = "risk_free_rate"
	ParamBeta              Parameter = "beta"
	ParamEquityRiskPremium Parameter = "equity_risk_premium"
	ParamCostOfDebt        Parameter = "cost_of_debt"
	ParamTaxRate           Parameter = "tax_rate"
	ParamWeightEquity      Parameter = "weight_equity"
	ParamHorizon           Parameter = "horizon"
)

// AllParameters lists the parameters a grid axis may vary.
var AllParameters = []Parameter{
	ParamGrowthRate,
	ParamTerminalGrowth,
	ParamDiscountRate,
	ParamRiskFreeRate,
	ParamBeta,
	ParamEquityRiskPremium,
	ParamCostOfDebt,
	ParamTaxRate,
	ParamWeightEquity,
	ParamHorizon,
}

// Axis is one dimension of a sensitivity grid.
type Axis struct {
	Parameter Parameter `json:"parameter"`
	Values    []float64 `json:"values"`
}

// Len returns the number of points on the axis.
func (a Axis) Len() int {
	return len(a.Values)
}

// SensitivityCell is the outcome of one (row, column) substitution.
type SensitivityCell struct {
	Row       float64 `json:"row"`
	Column    float64 `json:"column"`
	FairValue float64 `json:"fair_value"`
	Upside    float64 `json:"upside"`
	Valid     bool    `json:"valid"`
	Error     string  `json:"error,omitempty"`
}

// SensitivityGrid is a full recomputation of one DCF model across two axes.
// Cells is indexed [row][column].
type SensitivityGrid struct {
	Method  Method              `json:"method"`
	Ticker  string              `json:"ticker"`
	Rows    Axis                `json:"rows"`
	Columns Axis                `json:"columns"`
	Cells   [][]SensitivityCell `json:"cells"`
}

// Cell returns the cell at (i, j).
func (g *SensitivityGrid) Cell(i, j int) SensitivityCell {
	return g.Cells[i][j]
}

// InvalidCount returns the number of invalid cells.
func (g *SensitivityGrid) InvalidCount() int {
	n := 0
	for _, row := range g.Cells {
		for _, c := range row {
			if !c.Valid {
				n++
			}
		}
	}
	return n
}
