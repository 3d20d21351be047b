// Package config provides configuration management for the valuator.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/spf13/viper"

	"intrinsic-valuator/internal/assumptions"
	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/logging"
	"intrinsic-valuator/internal/models"
	"intrinsic-valuator/internal/valuation"
)

// Config holds all application configuration.
type Config struct {
	Engine         EngineConfig         `mapstructure:"engine" json:"engine"`
	Classification ClassificationConfig `mapstructure:"classification" json:"classification"`
	Policy         PolicyConfig         `mapstructure:"policy" json:"policy"`
	Multiples      models.Multiples     `mapstructure:"multiples" json:"multiples"`
	Blend          BlendConfig          `mapstructure:"blend" json:"blend"`
	Sensitivity    SensitivityConfig    `mapstructure:"sensitivity" json:"sensitivity"`
	Logging        LoggingConfig        `mapstructure:"logging" json:"logging"`
	Store          StoreConfig          `mapstructure:"store" json:"store"`
	UI             UIConfig             `mapstructure:"ui" json:"ui"`

	path string
}

// EngineConfig holds projection and evaluation settings.
type EngineConfig struct {
	Workers       int      `mapstructure:"workers" json:"workers"`
	Methods       []string `mapstructure:"methods" json:"methods"`
	Horizon       int      `mapstructure:"horizon" json:"horizon"`
	Decay         string   `mapstructure:"decay" json:"decay"`       // constant, linear_fade
	Terminal      string   `mapstructure:"terminal" json:"terminal"` // perpetuity, finite
	TerminalYears int      `mapstructure:"terminal_years" json:"terminal_years"`
}

// ClassificationConfig holds the status thresholds.
type ClassificationConfig struct {
	Scheme                 string  `mapstructure:"scheme" json:"scheme"` // three_band, five_band, custom
	Undervalued            float64 `mapstructure:"undervalued" json:"undervalued"`
	Overvalued             float64 `mapstructure:"overvalued" json:"overvalued"`
	SignificantUndervalued float64 `mapstructure:"significantly_undervalued" json:"significantly_undervalued"`
	SignificantOvervalued  float64 `mapstructure:"significantly_overvalued" json:"significantly_overvalued"`
}

// PolicyConfig holds assumption-builder defaults.
type PolicyConfig struct {
	RiskFreeRate      float64 `mapstructure:"risk_free_rate" json:"risk_free_rate"`
	EquityRiskPremium float64 `mapstructure:"equity_risk_premium" json:"equity_risk_premium"`
	DefaultBeta       float64 `mapstructure:"default_beta" json:"default_beta"`
	DefaultTaxRate    float64 `mapstructure:"default_tax_rate" json:"default_tax_rate"`
	MaxTaxRate        float64 `mapstructure:"max_tax_rate" json:"max_tax_rate"`
	DebtSpread        float64 `mapstructure:"debt_spread" json:"debt_spread"`
	MinDebtSpread     float64 `mapstructure:"min_debt_spread" json:"min_debt_spread"`
	MaxCostOfDebt     float64 `mapstructure:"max_cost_of_debt" json:"max_cost_of_debt"`
	WeightEquity      float64 `mapstructure:"weight_equity" json:"weight_equity"`
	WeightDebt        float64 `mapstructure:"weight_debt" json:"weight_debt"`
	GrowthSource      string  `mapstructure:"growth_source" json:"growth_source"`
	DefaultGrowth     float64 `mapstructure:"default_growth" json:"default_growth"`
	MaxGrowth         float64 `mapstructure:"max_growth" json:"max_growth"`
	TerminalGrowth    float64 `mapstructure:"terminal_growth" json:"terminal_growth"`
	PEGRatio          float64 `mapstructure:"peg_ratio" json:"peg_ratio"`
}

// BlendConfig holds the blended estimate settings.
type BlendConfig struct {
	Enabled bool               `mapstructure:"enabled" json:"enabled"`
	Weights map[string]float64 `mapstructure:"weights" json:"weights"`
}

// SensitivityConfig holds the default grid axes.
type SensitivityConfig struct {
	Method          string  `mapstructure:"method" json:"method"`
	RowParameter    string  `mapstructure:"row_parameter" json:"row_parameter"`
	RowSpan         float64 `mapstructure:"row_span" json:"row_span"`
	RowStep         float64 `mapstructure:"row_step" json:"row_step"`
	ColumnParameter string  `mapstructure:"column_parameter" json:"column_parameter"`
	ColumnSpan      float64 `mapstructure:"column_span" json:"column_span"`
	ColumnStep      float64 `mapstructure:"column_step" json:"column_step"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level      string `mapstructure:"level" json:"level"`
	Console    bool   `mapstructure:"console" json:"console"`
	File       bool   `mapstructure:"file" json:"file"`
	FilePath   string `mapstructure:"file_path" json:"file_path"`
	MaxSize    int    `mapstructure:"max_size" json:"max_size"`
	MaxBackups int    `mapstructure:"max_backups" json:"max_backups"`
	MaxAge     int    `mapstructure:"max_age" json:"max_age"`
}

// StoreConfig holds the snapshot store location.
type StoreConfig struct {
	Path string `mapstructure:"path" json:"path"`
}

// UIConfig holds UI-related configuration.
type UIConfig struct {
	ColorEnabled bool   `mapstructure:"color_enabled" json:"color_enabled"`
	Currency     string `mapstructure:"currency" json:"currency"`
}

// DefaultConfigDir returns the default configuration directory.
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".config/intrinsic-valuator"
	}
	return filepath.Join(home, ".config", "intrinsic-valuator")
}

// Load loads config.toml from the specified directory.
// If configDir is empty, uses the default config directory. A missing file is
// replaced by a commented template and the defaults are used.
func Load(configDir string) (*Config, error) {
	if configDir == "" {
		configDir = DefaultConfigDir()
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(configDir)
	setDefaults(v, configDir)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config.toml: %w", err)
		}
		if err := createTemplateConfig(configDir); err != nil {
			return nil, fmt.Errorf("creating config template: %w", err)
		}
	}

	cfg := &Config{path: filepath.Join(configDir, "config.toml")}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("decoding config.toml: %w", err)
	}

	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	v := viper.New()
	setDefaults(v, DefaultConfigDir())
	cfg := &Config{path: filepath.Join(DefaultConfigDir(), "config.toml")}
	if err := v.Unmarshal(cfg); err != nil {
		panic(fmt.Sprintf("config: decoding built-in defaults: %v", err))
	}
	return cfg
}

func setDefaults(v *viper.Viper, configDir string) {
	policy := assumptions.DefaultPolicy()
	logCfg := logging.DefaultLogConfig()

	v.SetDefault("engine.workers", 0)
	v.SetDefault("engine.methods", []string{})
	v.SetDefault("engine.horizon", policy.Horizon)
	v.SetDefault("engine.decay", string(policy.Decay))
	v.SetDefault("engine.terminal", string(policy.Terminal))
	v.SetDefault("engine.terminal_years", policy.TerminalYears)

	v.SetDefault("classification.scheme", "three_band")
	v.SetDefault("classification.undervalued", 0.10)
	v.SetDefault("classification.overvalued", -0.10)
	v.SetDefault("classification.significantly_undervalued", 0.0)
	v.SetDefault("classification.significantly_overvalued", 0.0)

	v.SetDefault("policy.risk_free_rate", policy.RiskFreeRate)
	v.SetDefault("policy.equity_risk_premium", policy.EquityRiskPremium)
	v.SetDefault("policy.default_beta", policy.DefaultBeta)
	v.SetDefault("policy.default_tax_rate", policy.DefaultTaxRate)
	v.SetDefault("policy.max_tax_rate", policy.MaxTaxRate)
	v.SetDefault("policy.debt_spread", policy.DebtSpread)
	v.SetDefault("policy.min_debt_spread", policy.MinDebtSpread)
	v.SetDefault("policy.max_cost_of_debt", policy.MaxCostOfDebt)
	v.SetDefault("policy.weight_equity", policy.WeightEquity)
	v.SetDefault("policy.weight_debt", policy.WeightDebt)
	v.SetDefault("policy.growth_source", string(policy.GrowthSource))
	v.SetDefault("policy.default_growth", policy.DefaultGrowth)
	v.SetDefault("policy.max_growth", policy.MaxGrowth)
	v.SetDefault("policy.terminal_growth", policy.TerminalGrowth)
	v.SetDefault("policy.peg_ratio", policy.PEGRatio)

	setBandDefaults(v, "multiples.pe", policy.Multiples.PE)
	setBandDefaults(v, "multiples.pb", policy.Multiples.PB)
	setBandDefaults(v, "multiples.ps", policy.Multiples.PS)
	setBandDefaults(v, "multiples.ev_ebitda", policy.Multiples.EVEBITDA)

	v.SetDefault("blend.enabled", true)
	v.SetDefault("blend.weights", map[string]float64{})

	v.SetDefault("sensitivity.method", string(models.MethodTwoStageDCF))
	v.SetDefault("sensitivity.row_parameter", string(models.ParamDiscountRate))
	v.SetDefault("sensitivity.row_span", 0.02)
	v.SetDefault("sensitivity.row_step", 0.01)
	v.SetDefault("sensitivity.column_parameter", string(models.ParamTerminalGrowth))
	v.SetDefault("sensitivity.column_span", 0.01)
	v.SetDefault("sensitivity.column_step", 0.005)

	v.SetDefault("logging.level", logCfg.Level)
	v.SetDefault("logging.console", logCfg.Console)
	v.SetDefault("logging.file", logCfg.File)
	v.SetDefault("logging.file_path", filepath.Join(configDir, "logs", "valuator.log"))
	v.SetDefault("logging.max_size", logCfg.MaxSize)
	v.SetDefault("logging.max_backups", logCfg.MaxBackups)
	v.SetDefault("logging.max_age", logCfg.MaxAge)

	v.SetDefault("store.path", filepath.Join(configDir, "snapshots.db"))

	v.SetDefault("ui.color_enabled", true)
	v.SetDefault("ui.currency", "USD")
}

func setBandDefaults(v *viper.Viper, key string, band models.MultipleBand) {
	v.SetDefault(key+".target", band.Target)
	v.SetDefault(key+".low", band.Low)
	v.SetDefault(key+".high", band.High)
}

func applyEnvOverrides(cfg *Config) error {
	if v := os.Getenv("VALUATOR_RISK_FREE_RATE"); v != "" {
		rate, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return verrors.NewValidationError("VALUATOR_RISK_FREE_RATE", v, "not a number")
		}
		cfg.Policy.RiskFreeRate = rate
	}
	if v := os.Getenv("VALUATOR_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("VALUATOR_DB_PATH"); v != "" {
		cfg.Store.Path = v
	}
	return nil
}

// Path returns the config file location.
func (c *Config) Path() string {
	return c.path
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Engine.Workers < 0 {
		return verrors.NewValidationError("engine.workers", c.Engine.Workers, "must be non-negative")
	}
	if _, err := c.Methods(); err != nil {
		return err
	}
	if err := c.AssumptionPolicy().Validate(); err != nil {
		return err
	}
	thresholds, err := c.Thresholds()
	if err != nil {
		return err
	}
	if err := thresholds.Validate(); err != nil {
		return err
	}
	if _, err := c.BlendWeights(); err != nil {
		return err
	}
	if _, err := models.ParseMethod(c.Sensitivity.Method); err != nil {
		return verrors.NewValidationError("sensitivity.method", c.Sensitivity.Method, err.Error())
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return verrors.NewValidationError("logging.level", c.Logging.Level, "must be debug, info, warn or error")
	}
	return nil
}

// Methods returns the configured default methods; empty means all.
func (c *Config) Methods() ([]models.Method, error) {
	methods := make([]models.Method, 0, len(c.Engine.Methods))
	for _, name := range c.Engine.Methods {
		m, err := models.ParseMethod(name)
		if err != nil {
			return nil, verrors.NewValidationError("engine.methods", name, "unknown valuation method")
		}
		methods = append(methods, m)
	}
	return methods, nil
}

// AssumptionPolicy assembles the assumption-builder policy.
func (c *Config) AssumptionPolicy() assumptions.Policy {
	p := c.Policy
	return assumptions.Policy{
		RiskFreeRate:      p.RiskFreeRate,
		EquityRiskPremium: p.EquityRiskPremium,
		DefaultBeta:       p.DefaultBeta,
		DefaultTaxRate:    p.DefaultTaxRate,
		MaxTaxRate:        p.MaxTaxRate,
		DebtSpread:        p.DebtSpread,
		MinDebtSpread:     p.MinDebtSpread,
		MaxCostOfDebt:     p.MaxCostOfDebt,
		WeightEquity:      p.WeightEquity,
		WeightDebt:        p.WeightDebt,
		GrowthSource:      assumptions.GrowthSource(p.GrowthSource),
		DefaultGrowth:     p.DefaultGrowth,
		MaxGrowth:         p.MaxGrowth,
		TerminalGrowth:    p.TerminalGrowth,
		PEGRatio:          p.PEGRatio,
		Horizon:           c.Engine.Horizon,
		Decay:             models.DecayPolicy(c.Engine.Decay),
		Terminal:          models.TerminalMethod(c.Engine.Terminal),
		TerminalYears:     c.Engine.TerminalYears,
		Multiples:         c.Multiples,
	}
}

// Thresholds returns the classification thresholds for the configured scheme.
func (c *Config) Thresholds() (valuation.Thresholds, error) {
	switch c.Classification.Scheme {
	case "", "three_band":
		return valuation.DefaultThresholds(), nil
	case "five_band":
		return valuation.FiveBandThresholds(), nil
	case "custom":
		cl := c.Classification
		return valuation.Thresholds{
			Undervalued:            cl.Undervalued,
			Overvalued:             cl.Overvalued,
			SignificantUndervalued: cl.SignificantUndervalued,
			SignificantOvervalued:  cl.SignificantOvervalued,
		}, nil
	}
	return valuation.Thresholds{}, verrors.NewValidationError("classification.scheme", c.Classification.Scheme, "must be three_band, five_band or custom")
}

// BlendWeights returns the configured per-method blend weights.
func (c *Config) BlendWeights() (map[models.Method]float64, error) {
	weights := make(map[models.Method]float64, len(c.Blend.Weights))
	for name, w := range c.Blend.Weights {
		m, err := models.ParseMethod(name)
		if err != nil {
			return nil, verrors.NewValidationError("blend.weights", name, "unknown valuation method")
		}
		if w < 0 {
			return nil, verrors.NewValidationError("blend.weights."+name, w, "weight must be non-negative")
		}
		weights[m] = w
	}
	return weights, nil
}

// LogConfig converts the logging section.
func (c *Config) LogConfig() logging.LogConfig {
	l := c.Logging
	return logging.LogConfig{
		Level:      l.Level,
		Console:    l.Console,
		File:       l.File,
		FilePath:   l.FilePath,
		MaxSize:    l.MaxSize,
		MaxBackups: l.MaxBackups,
		MaxAge:     l.MaxAge,
	}
}
