package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"intrinsic-valuator/internal/assumptions"
	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/logging"
	"intrinsic-valuator/internal/models"
	"intrinsic-valuator/internal/report"
	"intrinsic-valuator/internal/store"
	"intrinsic-valuator/internal/valuation"
)

func addValuationCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newValueCmd(app))
	rootCmd.AddCommand(newWACCCmd(app))
}

func newValueCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "value [ticker]",
		Short: "Estimate fair value with one or more methods",
		Long: `Run valuation methods over a snapshot and classify each estimate
against the market price. A method that cannot run is reported and the
others carry on.

Methods: two_stage_dcf, earnings_dcf, fcf_dcf, peter_lynch, ev_ebitda,
pe_multiple, pb_multiple, ps_multiple.`,
		Example: `  valuator value --file acme.yaml
  valuator value ACME --method two_stage_dcf,pe_multiple --growth 0.08
  valuator value ACME --discount-rate 0.09 --decay linear_fade --detail`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := logging.WithLogger(cmd.Context(), app.Logger)

			snap, err := app.loadSnapshot(ctx, cmd, args)
			if err != nil {
				return err
			}
			logger := logging.WithOperation(logging.WithTicker(app.Logger, snap.Ticker), "value")

			a, warnings, err := app.buildAssumptions(cmd, snap)
			if err != nil {
				return err
			}

			methods, err := app.selectedMethods(cmd)
			if err != nil {
				return err
			}
			classifier, err := app.Classifier()
			if err != nil {
				return err
			}
			weights, err := app.Config.BlendWeights()
			if err != nil {
				return err
			}
			noBlend, _ := cmd.Flags().GetBool("no-blend")

			run, err := valuation.Run(snap, a, valuation.RunOptions{
				Methods:      methods,
				Classifier:   classifier,
				BlendWeights: weights,
				Blend:        app.Config.Blend.Enabled && !noBlend,
			})
			if err != nil {
				return err
			}
			run.Warnings = append(warnings, run.Warnings...)

			logger = logging.WithRunID(logger, run.ID)
			for _, r := range run.Results {
				logging.LogValuation(logger, string(r.Method), r.FairValue, r.Price, r.Upside, string(r.Status))
			}
			for _, f := range run.Failures {
				logging.LogValuationFailure(logger, string(f.Method), f.Err)
			}
			for _, w := range run.Warnings {
				logging.LogWarning(logger, w.Code, w.Message)
			}

			if output.IsJSON() {
				return output.JSON(run)
			}

			f, err := app.Formatter()
			if err != nil {
				return err
			}
			detail, _ := cmd.Flags().GetBool("detail")
			displayRun(output, run, snap, f, detail)

			if len(run.Results) == 0 {
				return fmt.Errorf("no valuation method produced a result for %s", snap.Ticker)
			}
			return nil
		},
	}

	cmd.Flags().StringSlice("method", nil, "methods to run (default: all, or engine.methods)")
	cmd.Flags().Bool("no-blend", false, "skip the blended estimate")
	cmd.Flags().Bool("detail", false, "show DCF projections and model inputs")
	addSnapshotFlags(cmd)
	addOverrideFlags(cmd)

	return cmd
}

func newWACCCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "wacc [ticker]",
		Short: "Show the weighted average cost of capital breakdown",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := logging.WithLogger(cmd.Context(), app.Logger)

			snap, err := app.loadSnapshot(ctx, cmd, args)
			if err != nil {
				return err
			}
			a, warnings, err := app.buildAssumptions(cmd, snap)
			if err != nil {
				return err
			}

			wacc, err := valuation.CalculateWACC(valuation.WACCInputFrom(a))
			if err != nil {
				return err
			}
			wacc.Warnings = append(warnings, wacc.Warnings...)

			if output.IsJSON() {
				return output.JSON(wacc)
			}

			output.Bold("WACC for %s", snap.Ticker)
			table := NewTable(output, "Component", "Value")
			for _, line := range report.WACCLines(&wacc) {
				table.AddRow(line[0], line[1])
			}
			table.Render()
			printWarnings(output, wacc.Warnings)
			return nil
		},
	}

	addSnapshotFlags(cmd)
	addOverrideFlags(cmd)
	return cmd
}

func displayRun(output *Output, run *models.ValuationRun, snap *models.FinancialSnapshot, f report.Formatter, detail bool) {
	summary := report.Summarize(run, snap.Price, f)

	title := snap.Ticker
	if snap.Name != "" {
		title += " - " + snap.Name
	}
	info := []string{
		fmt.Sprintf("Price:    %s", summary.Price),
		fmt.Sprintf("Run:      %s", output.DimText(summary.RunID)),
	}
	if !snap.AsOf.IsZero() {
		info = append(info, fmt.Sprintf("As of:    %s", snap.AsOf.Format("2006-01-02")))
	}
	if run.WACC != nil {
		info = append(info, fmt.Sprintf("WACC:     %s", report.Rate(run.WACC.WACC)))
	}
	output.Box(title, info)
	output.Println()

	table := NewTable(output, "Method", "Fair Value", "Range", "Upside", "Status")
	for _, line := range summary.Lines {
		table.AddRow(line.Label, line.FairValue, line.Range, output.Upside(line.Upside), output.Status(line.Status))
	}
	if b := summary.Blended; b != nil {
		table.AddRow(output.BoldText(b.Label), output.BoldText(b.FairValue), "", output.Upside(b.Upside), output.Status(b.Status))
	}
	table.Render()

	if len(summary.Failures) > 0 {
		output.Println()
		output.Bold("Not available")
		for _, fail := range summary.Failures {
			output.Printf("  %s: %s\n", fail.Method.Label(), output.Red(fail.Error))
		}
	}

	if detail {
		for _, r := range run.Results {
			displayDetail(output, r, f)
		}
	}

	printWarnings(output, run.Warnings)
}

func displayDetail(output *Output, r models.ValuationResult, f report.Formatter) {
	output.Println()
	output.Bold("%s", r.Method.Label())

	d := r.Detail
	if d.DiscountRate != 0 {
		output.Printf("  Discount rate:    %s\n", report.Rate(d.DiscountRate))
	}
	if d.EnterpriseValue != 0 {
		output.Printf("  Enterprise value: %s\n", f.Money(d.EnterpriseValue))
		output.Printf("  Net debt:         %s\n", f.Money(d.NetDebt))
		output.Printf("  Equity value:     %s\n", f.Money(d.EquityValue))
	}
	if d.TangibleBook != 0 {
		output.Printf("  Tangible book:    %s\n", f.Money(d.TangibleBook))
	}
	if d.Multiple != 0 {
		output.Printf("  Benchmark:        %s (current %s)\n", report.Multiple(d.Multiple), report.Multiple(d.CurrentMultiple))
	}
	if d.GrowthPercent != 0 {
		output.Printf("  Growth:           %.1f%%\n", d.GrowthPercent)
	}

	if r.Projection != nil {
		table := NewTable(output, "Year", "Growth", "Cash Flow", "Factor", "Present Value")
		for _, row := range report.ProjectionRows(r.Projection, f) {
			table.AddRow(row...)
		}
		table.Render()
	}
}

func printWarnings(output *Output, warnings []verrors.ConfigurationWarning) {
	if len(warnings) == 0 {
		return
	}
	output.Println()
	for _, w := range warnings {
		output.Warning("⚠ %s", w.Message)
	}
}

func addSnapshotFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("file", "f", "", "snapshot file (YAML or JSON)")
	cmd.Flags().StringP("ticker", "t", "", "ticker to load from the snapshot store or to pick from --file")
	cmd.Flags().String("as-of", "", "snapshot date (YYYY-MM-DD); default is the latest")
}

// loadSnapshot resolves the snapshot from --file, or from the store by ticker.
func (app *App) loadSnapshot(ctx context.Context, cmd *cobra.Command, args []string) (*models.FinancialSnapshot, error) {
	file, _ := cmd.Flags().GetString("file")
	ticker, _ := cmd.Flags().GetString("ticker")
	if ticker == "" && len(args) > 0 {
		ticker = args[0]
	}

	if file != "" {
		snaps, err := store.LoadFile(file)
		if err != nil {
			return nil, err
		}
		return pickSnapshot(snaps, ticker)
	}

	if ticker == "" {
		return nil, verrors.NewValidationError("ticker", "", "provide a ticker or --file")
	}

	s, err := app.Store()
	if err != nil {
		return nil, err
	}

	asOf, _ := cmd.Flags().GetString("as-of")
	if asOf == "" {
		return s.Latest(ctx, ticker)
	}
	day, err := time.Parse("2006-01-02", asOf)
	if err != nil {
		return nil, verrors.NewValidationError("as-of", asOf, "expected YYYY-MM-DD")
	}
	return s.Get(ctx, ticker, day)
}

func pickSnapshot(snaps []models.FinancialSnapshot, ticker string) (*models.FinancialSnapshot, error) {
	if ticker == "" {
		if len(snaps) > 1 {
			return nil, verrors.NewValidationError("ticker", "", fmt.Sprintf("file holds %d snapshots, choose one with --ticker", len(snaps)))
		}
		return &snaps[0], nil
	}
	for i := range snaps {
		if strings.EqualFold(snaps[i].Ticker, ticker) {
			return &snaps[i], nil
		}
	}
	return nil, verrors.Wrapf(verrors.ErrNotFound, "no snapshot for %s in file", ticker)
}

func (app *App) selectedMethods(cmd *cobra.Command) ([]models.Method, error) {
	names, _ := cmd.Flags().GetStringSlice("method")
	if len(names) == 0 {
		return app.Config.Methods()
	}
	methods := make([]models.Method, 0, len(names))
	for _, name := range names {
		m, err := models.ParseMethod(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		methods = append(methods, m)
	}
	return methods, nil
}

func (app *App) buildAssumptions(cmd *cobra.Command, snap *models.FinancialSnapshot) (models.ValuationAssumptions, []verrors.ConfigurationWarning, error) {
	o, err := readOverrides(cmd)
	if err != nil {
		return models.ValuationAssumptions{}, nil, err
	}
	return app.Builder.Build(snap, o)
}

func addOverrideFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.Int("horizon", 0, "explicit projection years")
	f.Float64("growth", 0, "first-year growth rate (decimal)")
	f.Float64("terminal-growth", 0, "terminal growth rate (decimal)")
	f.Float64("discount-rate", 0, "discount rate, replaces WACC / cost of equity")
	f.Float64("risk-free-rate", 0, "risk-free rate (decimal)")
	f.Float64("beta", 0, "equity beta")
	f.Float64("erp", 0, "equity risk premium (decimal)")
	f.Float64("cost-of-debt", 0, "pre-tax cost of debt (decimal)")
	f.Float64("tax-rate", 0, "tax rate (decimal)")
	f.Float64("weight-equity", 0, "equity weight in WACC")
	f.Float64("weight-debt", 0, "debt weight in WACC")
	f.Float64("peg", 0, "PEG ratio for the Peter Lynch model")
	f.String("decay", "", "growth path: constant or linear_fade")
	f.String("terminal", "", "terminal value: perpetuity or finite")
	f.Int("terminal-years", 0, "years of terminal growth when --terminal finite")
	f.Bool("forward-eps", false, "use forward instead of trailing EPS")
	f.Bool("tangible-book", false, "add tangible book value to the two-stage DCF")
}

// readOverrides collects the override flags the user actually set.
func readOverrides(cmd *cobra.Command) (assumptions.Overrides, error) {
	f := cmd.Flags()
	var o assumptions.Overrides

	floats := []struct {
		name   string
		target **float64
	}{
		{"growth", &o.GrowthRate},
		{"terminal-growth", &o.TerminalGrowth},
		{"discount-rate", &o.DiscountRate},
		{"risk-free-rate", &o.RiskFreeRate},
		{"beta", &o.Beta},
		{"erp", &o.EquityRiskPremium},
		{"cost-of-debt", &o.CostOfDebt},
		{"tax-rate", &o.TaxRate},
		{"weight-equity", &o.WeightEquity},
		{"weight-debt", &o.WeightDebt},
		{"peg", &o.PEGRatio},
	}
	for _, fl := range floats {
		if !f.Changed(fl.name) {
			continue
		}
		v, err := f.GetFloat64(fl.name)
		if err != nil {
			return o, err
		}
		*fl.target = &v
	}

	ints := []struct {
		name   string
		target **int
	}{
		{"horizon", &o.Horizon},
		{"terminal-years", &o.TerminalYears},
	}
	for _, fl := range ints {
		if !f.Changed(fl.name) {
			continue
		}
		v, err := f.GetInt(fl.name)
		if err != nil {
			return o, err
		}
		*fl.target = &v
	}

	if f.Changed("decay") {
		v, _ := f.GetString("decay")
		d := models.DecayPolicy(v)
		o.Decay = &d
	}
	if f.Changed("terminal") {
		v, _ := f.GetString("terminal")
		t := models.TerminalMethod(v)
		o.Terminal = &t
	}
	if f.Changed("forward-eps") {
		v, _ := f.GetBool("forward-eps")
		o.UseForwardEPS = &v
	}
	if f.Changed("tangible-book") {
		v, _ := f.GetBool("tangible-book")
		o.IncludeTangibleBook = &v
	}

	return o, nil
}
