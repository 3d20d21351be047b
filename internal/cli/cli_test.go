package cli

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"intrinsic-valuator/internal/config"
	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/models"
)

const acmeYAML = `
snapshots:
  - ticker: ACME
    name: Acme Corp
    price: 40
    shares_outstanding: 50
    free_cash_flow: 100
    net_debt: 200
    trailing_eps: 5
    ebitda: 220
    book_value_per_share: 20
    revenue_per_share: 80
    beta: 1.0
  - ticker: GLOBEX
    price: 12
    shares_outstanding: 900
    trailing_eps: 1
`

func writeSnapshots(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshots.yaml")
	if err := os.WriteFile(path, []byte(acmeYAML), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Store.Path = filepath.Join(t.TempDir(), "snapshots.db")
	return cfg
}

func execute(t *testing.T, cfg *config.Config, args ...string) ([]byte, error) {
	t.Helper()
	root := NewRootCmd(cfg, zerolog.Nop())
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.Bytes(), err
}

func TestValueCommand_JSON(t *testing.T) {
	file := writeSnapshots(t)

	out, err := execute(t, testConfig(t), "value", "ACME", "--file", file, "--json",
		"--method", "pe_multiple,peter_lynch,ev_ebitda", "--growth", "0.15", "--peg", "1")
	if err != nil {
		t.Fatalf("value failed: %v\n%s", err, out)
	}

	var run models.ValuationRun
	if err := json.Unmarshal(out, &run); err != nil {
		t.Fatalf("decoding output: %v\n%s", err, out)
	}
	if run.ID == "" || run.Ticker != "ACME" {
		t.Errorf("run header = %q/%q", run.ID, run.Ticker)
	}

	want := map[models.Method]float64{
		models.MethodPEMultiple: 75, // 5 x 15
		models.MethodPeterLynch: 75, // 5 x 15 x 1
		models.MethodEVEBITDA:   40, // (220 x 10 - 200) / 50
	}
	for method, fair := range want {
		res, ok := run.Result(method)
		if !ok {
			t.Errorf("missing %s result", method)
			continue
		}
		if math.Abs(res.FairValue-fair) > 1e-9 {
			t.Errorf("%s fair value = %v, want %v", method, res.FairValue, fair)
		}
	}
	if run.Blended == nil {
		t.Error("expected a blended estimate")
	}
}

func TestValueCommand_TextReportsFailures(t *testing.T) {
	file := writeSnapshots(t)

	out, err := execute(t, testConfig(t), "value", "--file", file, "--ticker", "globex", "--method", "two_stage_dcf,pe_multiple")
	if err != nil {
		t.Fatalf("value failed: %v\n%s", err, out)
	}
	text := string(out)
	if !bytes.Contains(out, []byte("GLOBEX")) || !bytes.Contains(out, []byte("$15.00")) {
		t.Errorf("expected GLOBEX P/E value in output:\n%s", text)
	}
	if !bytes.Contains(out, []byte("Not available")) {
		t.Errorf("expected the DCF failure to be listed:\n%s", text)
	}
}

func TestValueCommand_AmbiguousFile(t *testing.T) {
	_, err := execute(t, testConfig(t), "value", "--file", writeSnapshots(t), "--json")
	if !verrors.Is(err, verrors.ErrConfigInvalid) {
		t.Errorf("expected a ticker to be required, got %v", err)
	}
}

func TestSnapshotImportThenValue(t *testing.T) {
	cfg := testConfig(t)
	file := writeSnapshots(t)

	if out, err := execute(t, cfg, "snapshot", "import", file); err != nil {
		t.Fatalf("import failed: %v\n%s", err, out)
	}

	out, err := execute(t, cfg, "snapshot", "list", "--json")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	var rows []map[string]interface{}
	if err := json.Unmarshal(out, &rows); err != nil || len(rows) != 2 {
		t.Fatalf("list = %s, %v", out, err)
	}

	out, err = execute(t, cfg, "value", "acme", "--json", "--method", "pb_multiple")
	if err != nil {
		t.Fatalf("value from store failed: %v\n%s", err, out)
	}
	var run models.ValuationRun
	if err := json.Unmarshal(out, &run); err != nil {
		t.Fatal(err)
	}
	if res, ok := run.Result(models.MethodPBMultiple); !ok || res.FairValue != 40 {
		t.Errorf("P/B result = %+v, %v", res, ok)
	}

	if _, err := execute(t, cfg, "value", "NOPE", "--json"); !verrors.Is(err, verrors.ErrNotFound) {
		t.Errorf("expected not found for unknown ticker, got %v", err)
	}
}

func TestSensitivityCommand_JSON(t *testing.T) {
	file := writeSnapshots(t)

	out, err := execute(t, testConfig(t), "sensitivity", "ACME", "--file", file, "--json",
		"--rows", "discount_rate", "--row-values", "0.08,0.09,0.10",
		"--cols", "terminal_growth", "--col-values", "0.02,0.09")
	if err != nil {
		t.Fatalf("sensitivity failed: %v\n%s", err, out)
	}

	var grid models.SensitivityGrid
	if err := json.Unmarshal(out, &grid); err != nil {
		t.Fatalf("decoding grid: %v\n%s", err, out)
	}
	if len(grid.Cells) != 3 || len(grid.Cells[0]) != 2 {
		t.Fatalf("grid shape = %dx%d", len(grid.Cells), len(grid.Cells[0]))
	}
	// g = 0.09 is undefined against 0.08 and 0.09
	if got := grid.InvalidCount(); got != 2 {
		t.Errorf("invalid cells = %d, want 2", got)
	}
	if grid.Cells[0][0].FairValue <= grid.Cells[2][0].FairValue {
		t.Error("fair value should fall as the discount rate rises")
	}
}

func TestSensitivityCommand_DefaultAxesAroundWACC(t *testing.T) {
	out, err := execute(t, testConfig(t), "sensitivity", "ACME", "--file", writeSnapshots(t), "--json")
	if err != nil {
		t.Fatalf("sensitivity failed: %v\n%s", err, out)
	}
	var grid models.SensitivityGrid
	if err := json.Unmarshal(out, &grid); err != nil {
		t.Fatal(err)
	}
	if grid.Rows.Parameter != models.ParamDiscountRate || len(grid.Rows.Values) != 5 {
		t.Errorf("rows = %+v", grid.Rows)
	}
	if grid.Columns.Parameter != models.ParamTerminalGrowth || len(grid.Columns.Values) != 5 {
		t.Errorf("columns = %+v", grid.Columns)
	}
}

func TestSensitivityCommand_NonFiniteCenter(t *testing.T) {
	_, err := execute(t, testConfig(t), "sensitivity", "ACME", "--file", writeSnapshots(t), "--json",
		"--rows", "growth_rate", "--growth", "NaN")
	if !verrors.Is(err, verrors.ErrConfigInvalid) {
		t.Errorf("expected a validation error for a NaN growth axis, got %v", err)
	}
}

func TestReadOverrides_OnlyChangedFlags(t *testing.T) {
	cmd := newValueCmd(&App{})
	if err := cmd.ParseFlags([]string{"--beta", "0", "--decay", "linear_fade", "--horizon", "8"}); err != nil {
		t.Fatal(err)
	}
	o, err := readOverrides(cmd)
	if err != nil {
		t.Fatalf("readOverrides failed: %v", err)
	}
	if o.Beta == nil || *o.Beta != 0 {
		t.Errorf("explicit zero beta should be kept, got %v", o.Beta)
	}
	if o.Decay == nil || *o.Decay != models.DecayLinearFade || o.Horizon == nil || *o.Horizon != 8 {
		t.Errorf("overrides = %+v", o)
	}
	if o.GrowthRate != nil || o.DiscountRate != nil || o.UseForwardEPS != nil {
		t.Errorf("unset flags must stay nil: %+v", o)
	}
}
