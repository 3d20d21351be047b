package report

import (
	"math"
	"testing"

	verrors "intrinsic-valuator/internal/errors"
	"intrinsic-valuator/internal/models"
)

func usd(t *testing.T) Formatter {
	t.Helper()
	f, err := NewFormatter("usd")
	if err != nil {
		t.Fatalf("NewFormatter failed: %v", err)
	}
	return f
}

func TestFormatter_Money(t *testing.T) {
	f := usd(t)
	tests := []struct {
		value    float64
		expected string
	}{
		{40, "$40.00"},
		{1234.567, "$1,234.57"},
		{0.005, "$0.01"},
		{-12.5, "-$12.50"},
		{math.NaN(), "n/a"},
		{math.Inf(1), "n/a"},
	}
	for _, tt := range tests {
		if got := f.Money(tt.value); got != tt.expected {
			t.Errorf("Money(%v) = %q, want %q", tt.value, got, tt.expected)
		}
	}
	if f.Round(75.555) != 75.56 {
		t.Errorf("Round(75.555) = %v", f.Round(75.555))
	}
}

func TestNewFormatter_Unknown(t *testing.T) {
	if _, err := NewFormatter("XXQ"); !verrors.Is(err, verrors.ErrConfigInvalid) {
		t.Errorf("expected unknown currency rejected, got %v", err)
	}
}

func TestPercentAndRate(t *testing.T) {
	tests := []struct {
		got, expected string
	}{
		{Percent(0.125), "+12.5%"},
		{Percent(-0.5), "-50.0%"},
		{Percent(0), "0.0%"},
		{Rate(0.078), "7.80%"},
		{Rate(0.0795), "7.95%"},
		{Multiple(12.46), "12.5x"},
		{Percent(math.NaN()), "n/a"},
		{Rate(math.Inf(-1)), "n/a"},
	}
	for _, tt := range tests {
		if tt.got != tt.expected {
			t.Errorf("got %q, want %q", tt.got, tt.expected)
		}
	}
}

func TestSummarize(t *testing.T) {
	f := usd(t)
	run := &models.ValuationRun{
		ID:     "run-1",
		Ticker: "ACME",
		Results: []models.ValuationResult{
			{Method: models.MethodPEMultiple, FairValue: 75, Upside: 0.875, Status: models.StatusUndervalued, Range: &models.ValueRange{Low: 60, High: 90}},
			{Method: models.MethodPeterLynch, FairValue: 30, Status: models.StatusUnpriced},
		},
		Blended:  &models.BlendedValue{FairValue: 52.5, Upside: 0.3125, Status: models.StatusUndervalued},
		Warnings: []verrors.ConfigurationWarning{verrors.NewWarning(verrors.WarnDefaultBeta, "beta defaulted to %.1f", 1.0)},
	}

	s := Summarize(run, 40, f)
	if s.Price != "$40.00" || len(s.Lines) != 2 {
		t.Fatalf("summary = %+v", s)
	}
	if s.Lines[0].FairValue != "$75.00" || s.Lines[0].Range != "$60.00 - $90.00" || s.Lines[0].Upside != "+87.5%" {
		t.Errorf("P/E line = %+v", s.Lines[0])
	}
	if s.Lines[1].Upside != "n/a" || s.Lines[1].Range != "" {
		t.Errorf("unpriced line = %+v", s.Lines[1])
	}
	if s.Blended == nil || s.Blended.FairValue != "$52.50" {
		t.Errorf("blended = %+v", s.Blended)
	}
	if len(s.Warnings) != 1 || s.Warnings[0] != "beta defaulted to 1.0" {
		t.Errorf("warnings = %v", s.Warnings)
	}
}

func TestGridRows(t *testing.T) {
	g := &models.SensitivityGrid{
		Rows:    models.Axis{Parameter: models.ParamDiscountRate, Values: []float64{0.08, 0.09}},
		Columns: models.Axis{Parameter: models.ParamHorizon, Values: []float64{5, 7}},
		Cells: [][]models.SensitivityCell{
			{{FairValue: 10, Valid: true}, {FairValue: 12, Valid: true}},
			{{FairValue: 9, Valid: true}, {Error: "terminal_growth"}},
		},
	}
	rows := GridRows(g, usd(t))
	if len(rows) != 3 || len(rows[0]) != 3 {
		t.Fatalf("rows = %v", rows)
	}
	if rows[0][1] != "5" || rows[1][0] != "8.00%" || rows[1][2] != "$12.00" || rows[2][2] != "n/a" {
		t.Errorf("rows = %v", rows)
	}
}
