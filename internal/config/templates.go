package config

import (
	"fmt"
	"os"
	"path/filepath"
)

const configTemplate = `# Intrinsic Valuator Configuration
# Rates are decimals: 0.05 means five percent.

[engine]
# Concurrent workers for sensitivity grids (0 = number of CPUs)
workers = 0
# Methods run by "valuator value" when --method is not given (empty = all)
# two_stage_dcf, earnings_dcf, fcf_dcf, peter_lynch, ev_ebitda, pe_multiple, pb_multiple, ps_multiple
methods = []
# Explicit projection horizon in years
horizon = 5
# Growth path over the horizon: "constant" or "linear_fade"
decay = "constant"
# Terminal value: "perpetuity" or "finite"
terminal = "perpetuity"
# Years of terminal growth when terminal = "finite"
terminal_years = 10

[classification]
# "three_band" (+/-10%), "five_band" (+/-5%, +/-15%) or "custom"
scheme = "three_band"
# Used only when scheme = "custom"
undervalued = 0.10
overvalued = -0.10
# 0 disables the significant bands
significantly_undervalued = 0.0
significantly_overvalued = 0.0

[policy]
risk_free_rate = 0.04
equity_risk_premium = 0.06
# Used when the snapshot carries no beta
default_beta = 1.0
default_tax_rate = 0.21
max_tax_rate = 0.5
# Cost of debt = risk-free rate + spread when interest expense is unknown
debt_spread = 0.02
min_debt_spread = 0.01
max_cost_of_debt = 0.20
# Capital weights when market cap or debt is unknown
weight_equity = 0.7
weight_debt = 0.3
# Growth estimate source: "earnings", "ebitda" or "revenue"
growth_source = "earnings"
default_growth = 0.05
max_growth = 0.25
terminal_growth = 0.025
peg_ratio = 1.0

# Benchmark multiples: target value with an optional low/high band
[multiples.pe]
target = 15.0
low = 12.0
high = 20.0

[multiples.pb]
target = 2.0
low = 1.5
high = 3.0

[multiples.ps]
target = 2.0
low = 1.0
high = 3.0

[multiples.ev_ebitda]
target = 10.0
low = 8.0
high = 12.0

[blend]
enabled = true
# Per-method weights; methods left out get weight 0. Empty = equal weights.
# [blend.weights]
# two_stage_dcf = 0.5
# pe_multiple = 0.25
# ev_ebitda = 0.25

[sensitivity]
method = "two_stage_dcf"
row_parameter = "discount_rate"
row_span = 0.02
row_step = 0.01
column_parameter = "terminal_growth"
column_span = 0.01
column_step = 0.005

[logging]
# debug, info, warn, error
level = "info"
console = true
file = false
# file_path = "~/.config/intrinsic-valuator/logs/valuator.log"
# Rotation: size in MB, number of backups, age in days
max_size = 20
max_backups = 5
max_age = 30

[store]
# SQLite database for saved snapshots
# path = "~/.config/intrinsic-valuator/snapshots.db"

[ui]
color_enabled = true
# ISO 4217 code used for money formatting
currency = "USD"
`

func createTemplateConfig(configDir string) error {
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	path := filepath.Join(configDir, "config.toml")
	if err := os.WriteFile(path, []byte(configTemplate), 0644); err != nil {
		return fmt.Errorf("writing template: %w", err)
	}

	return nil
}
