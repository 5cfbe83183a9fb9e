package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/seenimoa/openstress/internal/report"
	"github.com/seenimoa/openstress/pkg/models"
)

const examplePortfolio = "../../examples/portfolio_example.csv"

// runCLI executes the root command with a quiet config file and returns
// what it printed.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "config.yaml")
	yaml := "data:\n  cache_dir: " + filepath.Join(dir, "data") + "\nlogging:\n  level: error\n"
	if err := os.WriteFile(cfgPath, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(append([]string{"--config", cfgPath}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func TestStressSynthPreset(t *testing.T) {
	outDir := t.TempDir()
	got, err := runCLI(t, "stress-synth", "--portfolio", examplePortfolio, "--preset", "--out", outDir)
	if err != nil {
		t.Fatalf("stress-synth: %v\n%s", err, got)
	}
	for _, want := range []string{"STRESS RESULT: synthetic", "Total MV:    6,150,000", "Total PnL:   -971,600", "Top5 Greatest Losses"} {
		if !strings.Contains(got, want) {
			t.Errorf("output missing %q:\n%s", want, got)
		}
	}
	for _, name := range []string{report.DetailCSVFile, report.AggregateCSVFile, "stress_report.md", report.HTMLFile} {
		if _, err := os.Stat(filepath.Join(outDir, name)); err != nil {
			t.Errorf("expected %s: %v", name, err)
		}
	}
}

func TestStressCustom(t *testing.T) {
	dir := t.TempDir()
	shockPath := filepath.Join(dir, "shock.yaml")
	if err := os.WriteFile(shockPath, []byte("UST: {dy_bp: 100}\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	outDir := filepath.Join(dir, "out")
	got, err := runCLI(t, "stress-custom", "--portfolio", examplePortfolio, "--shock", shockPath, "--out", outDir)
	if err != nil {
		t.Fatalf("stress-custom: %v\n%s", err, got)
	}
	if !strings.Contains(got, "STRESS RESULT: custom") {
		t.Errorf("unexpected output:\n%s", got)
	}

	data, err := os.ReadFile(filepath.Join(outDir, report.AggregateCSVFile))
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "IG,3000000,0,0,0,") {
		t.Errorf("unshocked IG bucket should have zero pnl:\n%s", data)
	}
}

func TestStressHistMissingCache(t *testing.T) {
	_, err := runCLI(t, "stress-hist", "--portfolio", examplePortfolio, "--out", t.TempDir())
	if err == nil || !strings.Contains(err.Error(), "openstress fetch") {
		t.Errorf("expected missing cache error, got %v", err)
	}
}

func TestStressAllWithoutCacheRunsSynthetic(t *testing.T) {
	outDir := t.TempDir()
	got, err := runCLI(t, "stress-all", "--portfolio", examplePortfolio, "--out", outDir)
	if err != nil {
		t.Fatalf("stress-all: %v\n%s", err, got)
	}
	if !strings.Contains(got, "SCENARIO COMPARISON") {
		t.Errorf("missing comparison table:\n%s", got)
	}
	if _, err := os.Stat(filepath.Join(outDir, "synthetic", report.HTMLFile)); err != nil {
		t.Errorf("synthetic report not written: %v", err)
	}
	if _, err := os.Stat(filepath.Join(outDir, comparisonFile)); err != nil {
		t.Errorf("comparison not written: %v", err)
	}
}

func TestSummaryJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pnl.csv")
	if err := os.WriteFile(path, []byte("date,pnl\n2024-01-02,1\n2024-01-03,\n2024-01-04,2\n2024-01-05,3\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := runCLI(t, "summary", "--pnl", path, "--json")
	if err != nil {
		t.Fatalf("summary: %v\n%s", err, got)
	}
	var s models.Summary
	if err := json.Unmarshal([]byte(got), &s); err != nil {
		t.Fatalf("decoding %q: %v", got, err)
	}
	if s.MeanPA != 504 || s.MaxDrawdown != 0 {
		t.Errorf("summary: %+v", s)
	}
}

func TestVersion(t *testing.T) {
	got, err := runCLI(t, "version")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(got, "openstress dev") {
		t.Errorf("version output: %q", got)
	}
}
