package cli

import (
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/logging"
	"intrinsic-valuator/internal/models"
	"intrinsic-valuator/internal/report"
	"intrinsic-valuator/internal/sensitivity"
	"intrinsic-valuator/internal/valuation"
)

func addSensitivityCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newSensitivityCmd(app))
}

func newSensitivityCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "sensitivity [ticker]",
		Aliases: []string{"grid"},
		Short:   "Fair value grid over two assumptions",
		Long: `Recompute a DCF model for every combination of two assumptions.
Cells where the model is undefined (for example terminal growth at or
above the discount rate) are shown as n/a.

Parameters: growth_rate, terminal_growth, discount_rate, risk_free_rate,
beta, equity_risk_premium, cost_of_debt, tax_rate, weight_equity, horizon.

Axes default to a span around the base assumption; pass explicit values
with --row-values / --col-values.`,
		Example: `  valuator sensitivity ACME
  valuator sensitivity ACME --rows growth_rate --row-values 0.04,0.06,0.08 --cols horizon --col-values 5,7,10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			ctx = logging.WithLogger(ctx, app.Logger)

			snap, err := app.loadSnapshot(ctx, cmd, args)
			if err != nil {
				return err
			}
			base, warnings, err := app.buildAssumptions(cmd, snap)
			if err != nil {
				return err
			}

			sc := app.Config.Sensitivity
			methodName, _ := cmd.Flags().GetString("method")
			if methodName == "" {
				methodName = sc.Method
			}
			method, err := models.ParseMethod(methodName)
			if err != nil {
				return err
			}

			rows, err := resolveAxis(cmd, "rows", "row-values", sc.RowParameter, sc.RowSpan, sc.RowStep, method, base)
			if err != nil {
				return err
			}
			cols, err := resolveAxis(cmd, "cols", "col-values", sc.ColumnParameter, sc.ColumnSpan, sc.ColumnStep, method, base)
			if err != nil {
				return err
			}

			classifier, err := app.Classifier()
			if err != nil {
				return err
			}

			grid, err := sensitivity.NewGenerator(app.Config.Engine.Workers, classifier).
				Generate(ctx, snap, base, method, rows, cols)
			if err != nil && grid == nil {
				return err
			}

			if output.IsJSON() {
				if jerr := output.JSON(grid); jerr != nil {
					return jerr
				}
				return err
			}

			f, ferr := app.Formatter()
			if ferr != nil {
				return ferr
			}
			output.Bold("%s sensitivity for %s (price %s)", method.Label(), snap.Ticker, f.Money(snap.Price))
			lines := report.GridRows(grid, f)
			table := NewTable(output, lines[0]...)
			for _, line := range lines[1:] {
				table.AddRow(line...)
			}
			table.Render()

			if n := grid.InvalidCount(); n > 0 {
				output.Dim("%d of %d cells undefined", n, rows.Len()*cols.Len())
			}
			printWarnings(output, warnings)
			return err
		},
	}

	cmd.Flags().String("method", "", "DCF method (default: sensitivity.method)")
	cmd.Flags().String("rows", "", "row parameter (default: sensitivity.row_parameter)")
	cmd.Flags().String("cols", "", "column parameter (default: sensitivity.column_parameter)")
	cmd.Flags().String("row-values", "", "comma-separated row values")
	cmd.Flags().String("col-values", "", "comma-separated column values")
	addSnapshotFlags(cmd)
	addOverrideFlags(cmd)

	return cmd
}

// resolveAxis builds an axis from explicit values, or a span around the base
// value of the parameter.
func resolveAxis(cmd *cobra.Command, paramFlag, valuesFlag, defaultParam string, span, step float64, method models.Method, base models.ValuationAssumptions) (models.Axis, error) {
	name, _ := cmd.Flags().GetString(paramFlag)
	if name == "" {
		name = defaultParam
	}
	p, err := sensitivity.ParseParameter(name)
	if err != nil {
		return models.Axis{}, err
	}

	if raw, _ := cmd.Flags().GetString(valuesFlag); raw != "" {
		values, err := parseValues(raw)
		if err != nil {
			return models.Axis{}, verrors.Wrapf(err, "--%s", valuesFlag)
		}
		return models.Axis{Parameter: p, Values: values}, nil
	}

	center, err := baseValue(method, base, p)
	if err != nil {
		return models.Axis{}, err
	}
	if p == models.ParamHorizon && step < 1 {
		span, step = 2, 1
	}
	return sensitivity.Around(p, center, span, step)
}

// baseValue is the current value of p. Without an override the discount rate
// is the one the method would use.
func baseValue(method models.Method, a models.ValuationAssumptions, p models.Parameter) (float64, error) {
	if v, ok := sensitivity.Lookup(a, p); ok {
		return v, nil
	}
	if p != models.ParamDiscountRate || a.Beta == nil {
		return 0, verrors.NewMissingDataError(string(method), string(p))
	}
	if method == models.MethodEarningsDCF {
		return valuation.CostOfEquity(a.RiskFreeRate, *a.Beta, a.EquityRiskPremium), nil
	}
	wacc, err := valuation.CalculateWACC(valuation.WACCInputFrom(a))
	if err != nil {
		return 0, err
	}
	return wacc.WACC, nil
}

func parseValues(raw string) ([]float64, error) {
	parts := strings.Split(raw, ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, verrors.NewValidationError("value", part, "not a number")
		}
		values = append(values, v)
	}
	return values, nil
}
