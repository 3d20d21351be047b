package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"intrinsic-valuator/internal/logging"
	"intrinsic-valuator/internal/report"
	"intrinsic-valuator/internal/store"
)

func addSnapshotCommands(rootCmd *cobra.Command, app *App) {
	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Manage stored financial snapshots",
		Long: `Snapshots are the financial inputs a valuation reads: price, shares,
cash flows, earnings, debt and growth history. Import them from YAML or JSON
files produced by your data provider; valuations always recompute from them.`,
	}

	cmd.AddCommand(newSnapshotImportCmd(app))
	cmd.AddCommand(newSnapshotListCmd(app))
	cmd.AddCommand(newSnapshotShowCmd(app))
	cmd.AddCommand(newSnapshotDeleteCmd(app))

	rootCmd.AddCommand(cmd)
}

func newSnapshotImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>...",
		Short: "Import snapshots from YAML or JSON files",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			ctx := cmd.Context()
			logger := logging.WithOperation(app.Logger, "snapshot_import")

			s, err := app.Store()
			if err != nil {
				return err
			}

			var imported []string
			for _, path := range args {
				snaps, err := store.LoadFile(path)
				if err != nil {
					return fmt.Errorf("%s: %w", path, err)
				}
				for i := range snaps {
					if err := s.Save(ctx, &snaps[i]); err != nil {
						return err
					}
					imported = append(imported, snaps[i].Ticker)
					logger.Info().Str("ticker", snaps[i].Ticker).Str("file", path).Msg("Snapshot imported")
				}
			}

			if output.IsJSON() {
				return output.JSON(map[string]interface{}{"imported": imported})
			}
			output.Success("✓ Imported %d snapshot(s)", len(imported))
			return nil
		},
	}
}

func newSnapshotListCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored snapshots",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			s, err := app.Store()
			if err != nil {
				return err
			}

			ticker, _ := cmd.Flags().GetString("ticker")
			limit, _ := cmd.Flags().GetInt("limit")
			rows, err := s.List(cmd.Context(), store.SnapshotFilter{Ticker: ticker, Limit: limit})
			if err != nil {
				return err
			}

			if output.IsJSON() {
				return output.JSON(rows)
			}
			if len(rows) == 0 {
				output.Dim("No snapshots stored. Use 'valuator snapshot import <file>'.")
				return nil
			}

			f, err := app.Formatter()
			if err != nil {
				return err
			}
			table := NewTable(output, "Ticker", "Name", "As Of", "Price", "Shares", "Updated")
			for _, r := range rows {
				table.AddRow(r.Ticker, r.Name, formatDay(r.AsOf), f.Money(r.Price), fmt.Sprintf("%.0f", r.Shares), r.UpdatedAt.Local().Format("2006-01-02 15:04"))
			}
			table.Render()
			return nil
		},
	}

	cmd.Flags().StringP("ticker", "t", "", "only this ticker")
	cmd.Flags().Int("limit", 0, "maximum rows")
	return cmd
}

func newSnapshotShowCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <ticker>",
		Short: "Show a stored snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			snap, err := app.loadSnapshot(cmd.Context(), cmd, args)
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(snap)
			}

			f, err := app.Formatter()
			if err != nil {
				return err
			}
			money := func(v *float64) string {
				if v == nil {
					return output.DimText("-")
				}
				return f.Money(*v)
			}
			rate := func(v *float64) string {
				if v == nil {
					return output.DimText("-")
				}
				return report.Rate(*v)
			}
			plain := func(v *float64) string {
				if v == nil {
					return output.DimText("-")
				}
				return fmt.Sprintf("%.2f", *v)
			}

			table := NewTable(output, "Field", "Value")
			table.AddRow("As of", formatDay(snap.AsOf))
			table.AddRow("Price", f.Money(snap.Price))
			table.AddRow("Shares outstanding", fmt.Sprintf("%.0f", snap.SharesOutstanding))
			table.AddRow("Market cap", f.Money(snap.MarketCapValue()))
			table.AddRow("Total debt", money(snap.TotalDebt))
			table.AddRow("Cash", money(snap.Cash))
			table.AddRow("Net debt", money(snap.NetDebt))
			table.AddRow("Free cash flow", money(snap.FreeCashFlow))
			table.AddRow("Operating cash flow", money(snap.OperatingCashFlow))
			table.AddRow("Capital expenditure", money(snap.CapitalExpenditure))
			table.AddRow("EBITDA", money(snap.EBITDA))
			table.AddRow("Interest expense", money(snap.InterestExpense))
			table.AddRow("Trailing EPS", money(snap.TrailingEPS))
			table.AddRow("Forward EPS", money(snap.ForwardEPS))
			table.AddRow("Book value / share", money(snap.BookValuePerShare))
			table.AddRow("Tangible book", money(snap.TangibleBookValue))
			table.AddRow("Revenue / share", money(snap.RevenuePerShare))
			table.AddRow("Beta", plain(snap.Beta))
			table.AddRow("Effective tax rate", rate(snap.EffectiveTaxRate))
			table.AddRow("Earnings growth", rate(snap.EarningsGrowth))
			table.AddRow("EBITDA growth", rate(snap.EBITDAGrowth))
			table.AddRow("Revenue growth", rate(snap.RevenueGrowth))

			title := snap.Ticker
			if snap.Name != "" {
				title += " - " + snap.Name
			}
			output.Bold("%s", title)
			table.Render()
			return nil
		},
	}

	cmd.Flags().String("as-of", "", "snapshot date (YYYY-MM-DD); default is the latest")
	return cmd
}

func newSnapshotDeleteCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "delete <ticker>",
		Short: "Delete every stored snapshot for a ticker",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)

			s, err := app.Store()
			if err != nil {
				return err
			}
			n, err := s.Delete(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if output.IsJSON() {
				return output.JSON(map[string]int64{"deleted": n})
			}
			output.Success("✓ Deleted %d snapshot(s) for %s", n, args[0])
			return nil
		},
	}
}

func formatDay(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02")
}
