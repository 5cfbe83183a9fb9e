// Package report renders stress results for people and downstream tools:
// a console summary, CSV tables, a Markdown report, a standalone HTML page
// with an SVG chart, and an optional PDF export of that page.
package report

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/seenimoa/openstress/internal/scenario"
	"github.com/seenimoa/openstress/pkg/models"
)

// ════════════════════════════════════════════════════════════════════
// Report
// ════════════════════════════════════════════════════════════════════

// File names written by Export.
const (
	DetailCSVFile    = "stress_detail.csv"
	AggregateCSVFile = "stress_agg.csv"
	HTMLFile         = "stress_report.html"
	PDFFile          = "stress_report.pdf"
	ShockFile        = "shock.yaml"
)

// DefaultTopN is the number of largest losers shown on the console.
const DefaultTopN = 5

// markdownTopN is the number of largest losers listed in the Markdown report.
const markdownTopN = 10

// Report is one scenario run ready to render. Renderers treat it read-only.
type Report struct {
	RunID       string
	Scenario    string // e.g. "synthetic", "covid2020", "custom"
	Preset      string // historical preset name, empty otherwise
	Description string
	Window      string // effective window of a historical scenario
	Shock       models.Shock
	Result      models.StressResult
	GeneratedAt time.Time
}

// New stamps a result with a fresh run ID and the current time. The report
// keeps its own copy of shock.
func New(name string, shock models.Shock, result models.StressResult) *Report {
	return &Report{
		RunID:       uuid.NewString(),
		Scenario:    name,
		Shock:       shock.Clone(),
		Result:      result,
		GeneratedAt: time.Now().UTC(),
	}
}

// MarkdownFile returns stress_report.md, or stress_report_<preset>.md for a
// historical preset.
func (r *Report) MarkdownFile() string {
	if r.Preset == "" {
		return "stress_report.md"
	}
	return "stress_report_" + r.Preset + ".md"
}

// Options controls Export.
type Options struct {
	PDF       bool      // also convert the HTML report to PDF
	PDFConfig PDFConfig // zero value means DefaultPDFConfig
}

// Files lists the paths Export wrote.
type Files struct {
	DetailCSV    string `json:"detail_csv"`
	AggregateCSV string `json:"aggregate_csv"`
	Markdown     string `json:"markdown"`
	HTML         string `json:"html"`
	Shock        string `json:"shock"`
	PDF          string `json:"pdf,omitempty"`
}

// Export writes the CSV, Markdown and HTML reports (and the PDF when
// requested) into dir, creating it if needed. The applied shock is saved as
// shock.yaml so the run can be repeated with stress-custom.
func Export(dir string, r *Report, opts Options) (Files, error) {
	if r == nil {
		return Files{}, errors.New("report is nil")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Files{}, fmt.Errorf("creating output directory: %w", err)
	}

	var files Files
	var err error
	if files.DetailCSV, files.AggregateCSV, err = ExportCSV(dir, r.Result); err != nil {
		return files, err
	}

	files.Markdown = filepath.Join(dir, r.MarkdownFile())
	if err := writeFile(files.Markdown, func(f *os.File) error { return WriteMarkdown(f, r) }); err != nil {
		return files, err
	}

	html, err := GenerateHTML(r)
	if err != nil {
		return files, err
	}
	files.HTML = filepath.Join(dir, HTMLFile)
	if err := os.WriteFile(files.HTML, []byte(html), 0o644); err != nil {
		return files, fmt.Errorf("writing HTML report: %w", err)
	}

	shockYAML, err := scenario.MarshalShock(r.Shock)
	if err != nil {
		return files, fmt.Errorf("encoding shock: %w", err)
	}
	files.Shock = filepath.Join(dir, ShockFile)
	if err := os.WriteFile(files.Shock, shockYAML, 0o644); err != nil {
		return files, fmt.Errorf("writing shock file: %w", err)
	}

	if opts.PDF {
		cfg := opts.PDFConfig
		if cfg.PageSize == "" {
			cfg = DefaultPDFConfig()
			cfg.Engine = opts.PDFConfig.Engine
		}
		cfg.OutputPath = filepath.Join(dir, PDFFile)
		written, err := GeneratePDF(html, cfg)
		if err != nil {
			return files, err
		}
		files.PDF = written
	}
	return files, nil
}

// writeFile creates path and hands it to fn, closing it afterwards.
func writeFile(path string, fn func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := fn(f); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
