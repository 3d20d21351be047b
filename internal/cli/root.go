package cli

import (
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"intrinsic-valuator/internal/assumptions"
	"intrinsic-valuator/internal/config"
	"intrinsic-valuator/internal/logging"
	"intrinsic-valuator/internal/report"
	"intrinsic-valuator/internal/store"
	"intrinsic-valuator/internal/valuation"
)

// Version information
const (
	Version   = "0.3.0"
	BuildDate = "2026-10-01"
)

// App holds the application dependencies.
type App struct {
	Config  *config.Config
	Logger  zerolog.Logger
	Builder *assumptions.Builder

	snapshots store.SnapshotStore
}

// NewRootCmd creates the root command for the CLI.
func NewRootCmd(cfg *config.Config, logger zerolog.Logger) *cobra.Command {
	app := &App{
		Config:  cfg,
		Logger:  logger,
		Builder: assumptions.NewBuilder(cfg.AssumptionPolicy()),
	}

	rootCmd := &cobra.Command{
		Use:   "valuator",
		Short: "Intrinsic Valuator - equity fair value estimates",
		Long: `Intrinsic Valuator estimates the fair value per share of a listed company.

It runs discounted cash flow, Peter Lynch and market multiple models over a
financial snapshot, classifies the result against the market price and
explores how the estimate moves with its assumptions.

Snapshots are read from YAML/JSON files (--file) or from the local snapshot
store (--ticker). Use 'valuator snapshot import' to populate the store.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if dir, _ := cmd.Flags().GetString("config"); dir != "" {
				cfg, err := config.Load(dir)
				if err != nil {
					return err
				}
				app.Config = cfg
				app.Logger = logging.NewLoggerWithConfig(cfg.LogConfig())
				app.Builder = assumptions.NewBuilder(cfg.AssumptionPolicy())
			}

			debug, _ := cmd.Flags().GetBool("debug")
			if debug {
				logging.SetDebugLevel()
				app.Logger = app.Logger.Level(zerolog.DebugLevel)
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return app.Close()
		},
	}

	rootCmd.PersistentFlags().String("config", "", "config directory (default: ~/.config/intrinsic-valuator)")
	rootCmd.PersistentFlags().Bool("json", false, "output in JSON format")
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")

	addCoreCommands(rootCmd, app)
	addValuationCommands(rootCmd, app)
	addSensitivityCommands(rootCmd, app)
	addSnapshotCommands(rootCmd, app)

	return rootCmd
}

// Store opens the snapshot store on first use.
func (app *App) Store() (store.SnapshotStore, error) {
	if app.snapshots != nil {
		return app.snapshots, nil
	}

	path := app.Config.Store.Path
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	s, err := store.NewSQLiteStore(path)
	if err != nil {
		return nil, err
	}
	app.Logger.Debug().Str("path", path).Msg("SQLite snapshot store initialized")
	app.snapshots = s
	return s, nil
}

// Close releases the snapshot store if it was opened.
func (app *App) Close() error {
	if app.snapshots == nil {
		return nil
	}
	err := app.snapshots.Close()
	app.snapshots = nil
	return err
}

// Classifier builds the status classifier from config.
func (app *App) Classifier() (valuation.Classifier, error) {
	t, err := app.Config.Thresholds()
	if err != nil {
		return valuation.Classifier{}, err
	}
	return valuation.NewClassifier(t), nil
}

// Formatter builds the money formatter for the configured currency.
func (app *App) Formatter() (report.Formatter, error) {
	return report.NewFormatter(app.Config.UI.Currency)
}

func addCoreCommands(rootCmd *cobra.Command, app *App) {
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newConfigCmd(app))
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{
					"version":    Version,
					"build_date": BuildDate,
				})
			} else {
				output.Printf("Intrinsic Valuator v%s\n", Version)
				output.Dim("Build date: %s", BuildDate)
			}
		},
	}
}

func newConfigCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration management",
		Long:  "View and validate application configuration.",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if output.IsJSON() {
				return output.JSON(app.Config)
			}
			return showConfig(output, app.Config)
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		Run: func(cmd *cobra.Command, args []string) {
			output := NewOutput(cmd)
			if output.IsJSON() {
				output.JSON(map[string]string{"path": app.Config.Path()})
			} else {
				output.Println(app.Config.Path())
			}
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			output := NewOutput(cmd)
			if err := app.Config.Validate(); err != nil {
				output.Error("Configuration validation failed: %v", err)
				return err
			}
			if output.IsJSON() {
				output.JSON(map[string]bool{"valid": true})
			} else {
				output.Success("✓ Configuration is valid")
			}
			return nil
		},
	})

	return cmd
}

func showConfig(output *Output, cfg *config.Config) error {
	e := cfg.Engine
	output.Bold("Engine")
	output.Printf("  Horizon:         %d years\n", e.Horizon)
	output.Printf("  Decay:           %s\n", e.Decay)
	output.Printf("  Terminal:        %s\n", e.Terminal)
	if e.Terminal == "finite" {
		output.Printf("  Terminal Years:  %d\n", e.TerminalYears)
	}
	output.Printf("  Workers:         %d\n", e.Workers)
	output.Println()

	p := cfg.Policy
	output.Bold("Assumption Policy")
	output.Printf("  Risk-free Rate:  %s\n", report.Rate(p.RiskFreeRate))
	output.Printf("  Equity Premium:  %s\n", report.Rate(p.EquityRiskPremium))
	output.Printf("  Default Beta:    %.2f\n", p.DefaultBeta)
	output.Printf("  Default Tax:     %s\n", report.Rate(p.DefaultTaxRate))
	output.Printf("  Weights (E/D):   %.2f / %.2f\n", p.WeightEquity, p.WeightDebt)
	output.Printf("  Growth Source:   %s (cap %s)\n", p.GrowthSource, report.Rate(p.MaxGrowth))
	output.Printf("  Terminal Growth: %s\n", report.Rate(p.TerminalGrowth))
	output.Printf("  PEG:             %.2f\n", p.PEGRatio)
	output.Println()

	m := cfg.Multiples
	output.Bold("Benchmark Multiples")
	output.Printf("  P/E:             %s (%s - %s)\n", report.Multiple(m.PE.Target), report.Multiple(m.PE.Low), report.Multiple(m.PE.High))
	output.Printf("  P/B:             %s (%s - %s)\n", report.Multiple(m.PB.Target), report.Multiple(m.PB.Low), report.Multiple(m.PB.High))
	output.Printf("  P/S:             %s (%s - %s)\n", report.Multiple(m.PS.Target), report.Multiple(m.PS.Low), report.Multiple(m.PS.High))
	output.Printf("  EV/EBITDA:       %s (%s - %s)\n", report.Multiple(m.EVEBITDA.Target), report.Multiple(m.EVEBITDA.Low), report.Multiple(m.EVEBITDA.High))
	output.Println()

	output.Bold("Classification")
	output.Printf("  Scheme:          %s\n", cfg.Classification.Scheme)
	output.Printf("  Blend:           %v\n", cfg.Blend.Enabled)
	output.Println()

	output.Bold("Storage")
	output.Printf("  Snapshots:       %s\n", cfg.Store.Path)
	output.Printf("  Log Level:       %s\n", cfg.Logging.Level)

	return nil
}
