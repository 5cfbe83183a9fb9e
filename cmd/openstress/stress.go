package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/seenimoa/openstress/internal/marketdata"
	"github.com/seenimoa/openstress/internal/portfolio"
	"github.com/seenimoa/openstress/internal/report"
	"github.com/seenimoa/openstress/internal/scenario"
	"github.com/seenimoa/openstress/internal/stress"
	"github.com/seenimoa/openstress/pkg/models"
)

// comparisonFile is written by stress-all next to the per-scenario folders.
const comparisonFile = "scenario_comparison.md"

// scenarioRun is one shock ready to apply.
type scenarioRun struct {
	Name        string
	Preset      string // historical preset name, drives the Markdown file name
	Description string
	Window      *scenario.Window
	Shock       models.Shock
}

// execute stresses positions, exports the report set into outDir and
// returns the report without printing it.
func execute(positions []models.AssetPosition, run scenarioRun, outDir string, opts report.Options) (*report.Report, error) {
	rep := report.New(run.Name, run.Shock, stress.Run(positions, run.Shock))
	rep.Preset = run.Preset
	rep.Description = run.Description
	if run.Window != nil {
		rep.Window = run.Window.String()
	}

	files, err := report.Export(outDir, rep, opts)
	if err != nil {
		return nil, err
	}
	log.Info("reports written",
		"scenario", run.Name,
		"run_id", rep.RunID,
		"detail_csv", files.DetailCSV,
		"aggregate_csv", files.AggregateCSV,
		"markdown", files.Markdown,
		"html", files.HTML,
		"shock", files.Shock,
		"pdf", files.PDF,
	)
	return rep, nil
}

// runAndPrint is the single-scenario flow shared by the stress commands.
func runAndPrint(cmd *cobra.Command, positions []models.AssetPosition, run scenarioRun) error {
	outDir := stringFlagOr(cmd, "out", cfg.Stress.OutDir)
	rep, err := execute(positions, run, outDir, reportOptions(cmd))
	if err != nil {
		return err
	}
	return report.WriteConsole(cmd.OutOrStdout(), rep, cfg.Stress.TopN)
}

func reportOptions(cmd *cobra.Command) report.Options {
	pdf, _ := cmd.Flags().GetBool("pdf")
	return report.Options{PDF: pdf}
}

func loadPositions(cmd *cobra.Command) ([]models.AssetPosition, error) {
	path, _ := cmd.Flags().GetString("portfolio")
	positions, err := portfolio.Load(path)
	if err != nil {
		return nil, err
	}
	log.Debug("portfolio loaded", "path", path, "positions", len(positions))
	return positions, nil
}

// historicRun derives a historical scenario and warns when the window had
// to be clamped to the cached coverage.
func historicRun(ts *models.TimeSeries, p scenario.Preset) (scenarioRun, error) {
	shock, win, err := scenario.HistoricPreset(ts, p.Name)
	if err != nil {
		return scenarioRun{}, err
	}
	if win.Clamped {
		log.Warn("historical window clamped to data coverage", "preset", p.Name, "window", win.String())
	}
	return scenarioRun{Name: p.Name, Preset: p.Name, Description: p.Description, Window: &win, Shock: shock}, nil
}

func addStressFlags(cmd *cobra.Command) {
	cmd.Flags().String("portfolio", "", "portfolio CSV (asset, mv, duration, convexity, spread_dur, bucket)")
	cmd.Flags().String("out", "", "output directory (default from config: out)")
	cmd.Flags().Bool("pdf", false, "also export the HTML report as PDF")
	_ = cmd.MarkFlagRequired("portfolio")
}

// --- Synthetic ---

var stressSynthCmd = &cobra.Command{
	Use:   "stress-synth",
	Short: "Apply a synthetic parallel rate/spread shock",
	Long: `Apply a parallel shock: UST gets the rate shift only, IG and HY get the
rate shift plus their own spread shift. The rate shift defaults to --ust-bp
and can be overridden with --rates-bp. --preset uses the canonical shock
(UST +150bp, IG +150/+200bp, HY +150/+400bp).`,
	RunE: func(cmd *cobra.Command, args []string) error {
		positions, err := loadPositions(cmd)
		if err != nil {
			return err
		}

		run := scenarioRun{Name: "synthetic", Description: "Synthetic parallel shock"}
		if preset, _ := cmd.Flags().GetBool("preset"); preset {
			run.Shock = scenario.SynthParallel()
		} else {
			var rates *float64
			if cmd.Flags().Changed("rates-bp") {
				v, _ := cmd.Flags().GetFloat64("rates-bp")
				rates = &v
			}
			run.Shock = scenario.SyntheticParallel(
				floatFlagOr(cmd, "ust-bp", cfg.Stress.UstBP),
				floatFlagOr(cmd, "ig-bp", cfg.Stress.IgBP),
				floatFlagOr(cmd, "hy-bp", cfg.Stress.HyBP),
				rates,
			)
		}
		return runAndPrint(cmd, positions, run)
	},
}

func init() {
	addStressFlags(stressSynthCmd)
	stressSynthCmd.Flags().Bool("preset", false, "use the canonical shock: UST +150bp, IG +200bp, HY +400bp")
	stressSynthCmd.Flags().Float64("rates-bp", 0, "common rate shift in bp (default: --ust-bp)")
	stressSynthCmd.Flags().Float64("ust-bp", 150, "UST rate shift in bp")
	stressSynthCmd.Flags().Float64("ig-bp", 200, "IG spread shift in bp")
	stressSynthCmd.Flags().Float64("hy-bp", 400, "HY spread shift in bp")
}

// --- Historical ---

var stressHistCmd = &cobra.Command{
	Use:   "stress-hist",
	Short: "Replay a historical FRED window as a shock",
	Long: `Derive the shock from the change in the 10Y Treasury yield and the IG/HY
OAS over a historical window, using the cache written by 'openstress fetch'.
Use --preset for a named window or --start/--end for any other.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")
		presetName, _ := cmd.Flags().GetString("preset")
		custom := start != "" || end != ""
		if custom && (start == "" || end == "") {
			return errors.New("--start and --end must be given together")
		}

		var p scenario.Preset
		if !custom {
			var err error
			if p, err = scenario.LookupPreset(presetName); err != nil {
				return fmt.Errorf("%w (available: %v)", err, scenario.PresetNames())
			}
		}

		ts, err := marketdata.Load(stringFlagOr(cmd, "cache", cfg.Data.CacheDir))
		if err != nil {
			return err
		}
		positions, err := loadPositions(cmd)
		if err != nil {
			return err
		}

		var run scenarioRun
		if custom {
			shock, win, err := scenario.ParseWindow(ts, start, end)
			if err != nil {
				return err
			}
			if win.Clamped {
				log.Warn("historical window clamped to data coverage", "window", win.String())
			}
			run = scenarioRun{Name: "window", Description: "Historical window", Window: &win, Shock: shock}
		} else if run, err = historicRun(ts, p); err != nil {
			return err
		}
		return runAndPrint(cmd, positions, run)
	},
}

func init() {
	addStressFlags(stressHistCmd)
	stressHistCmd.Flags().String("cache", "", "market data cache directory (default from config: data)")
	stressHistCmd.Flags().String("preset", scenario.DefaultPreset, "historical preset: covid2020, gfc2008 or energy2022")
	stressHistCmd.Flags().String("start", "", "custom window start, YYYY-MM-DD")
	stressHistCmd.Flags().String("end", "", "custom window end, YYYY-MM-DD")
}

// --- Custom ---

var stressCustomCmd = &cobra.Command{
	Use:   "stress-custom",
	Short: "Apply a shock read from a YAML file",
	Long: `Apply a per-bucket shock from YAML, for example:

  UST: {dy_bp: 100}
  IG:  {dy_bp: 100, ds_bp: 150}
  EM:  {dy_bp: 50,  ds_bp: 300}

Buckets absent from the file are not shocked.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		shockPath, _ := cmd.Flags().GetString("shock")
		shock, err := scenario.LoadShockFile(shockPath)
		if err != nil {
			return err
		}
		positions, err := loadPositions(cmd)
		if err != nil {
			return err
		}
		return runAndPrint(cmd, positions, scenarioRun{
			Name:        "custom",
			Description: "Custom shock from " + filepath.Base(shockPath),
			Shock:       shock,
		})
	},
}

func init() {
	addStressFlags(stressCustomCmd)
	stressCustomCmd.Flags().String("shock", "", "YAML shock file")
	_ = stressCustomCmd.MarkFlagRequired("shock")
}

// --- All scenarios ---

var stressAllCmd = &cobra.Command{
	Use:   "stress-all",
	Short: "Run the canonical synthetic shock and every historical preset",
	Long: `Run the canonical synthetic shock and each historical preset concurrently.
Each scenario writes its reports to <out>/<scenario>/; a comparison table
is printed and written to <out>/scenario_comparison.md. Historical presets
are skipped with a warning when the cache is missing or does not cover them.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		positions, err := loadPositions(cmd)
		if err != nil {
			return err
		}
		outDir := stringFlagOr(cmd, "out", cfg.Stress.OutDir)

		runs := []scenarioRun{{Name: "synthetic", Description: "Canonical synthetic parallel shock", Shock: scenario.SynthParallel()}}
		ts, err := marketdata.Load(stringFlagOr(cmd, "cache", cfg.Data.CacheDir))
		switch {
		case errors.Is(err, marketdata.ErrCacheNotFound):
			log.Warn("skipping historical presets", "reason", err)
		case err != nil:
			return err
		default:
			for _, p := range scenario.Presets() {
				run, err := historicRun(ts, p)
				if errors.Is(err, scenario.ErrOutsideCoverage) || errors.Is(err, scenario.ErrEmptyWindow) {
					log.Warn("skipping historical preset", "preset", p.Name, "reason", err)
					continue
				}
				if err != nil {
					return err
				}
				runs = append(runs, run)
			}
		}

		opts := reportOptions(cmd)
		reports := make([]*report.Report, len(runs))
		var g errgroup.Group
		for i, run := range runs {
			g.Go(func() error {
				rep, err := execute(positions, run, filepath.Join(outDir, run.Name), opts)
				if err != nil {
					return fmt.Errorf("%s: %w", run.Name, err)
				}
				reports[i] = rep
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		for _, rep := range reports {
			if err := report.WriteConsole(out, rep, cfg.Stress.TopN); err != nil {
				return err
			}
			fmt.Fprintln(out)
		}
		rows := report.Compare(reports)
		if err := report.WriteComparisonConsole(out, rows); err != nil {
			return err
		}
		return writeComparison(filepath.Join(outDir, comparisonFile), rows)
	},
}

func init() {
	addStressFlags(stressAllCmd)
	stressAllCmd.Flags().String("cache", "", "market data cache directory (default from config: data)")
}

func writeComparison(path string, rows []report.ComparisonRow) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := report.WriteComparisonMarkdown(f, rows); err != nil {
		f.Close()
		return err
	}
	log.Info("comparison written", "path", path)
	return f.Close()
}
