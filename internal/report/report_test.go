package report

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"

	"github.com/seenimoa/openstress/internal/scenario"
	"github.com/seenimoa/openstress/pkg/models"
)

func pct(v float64) *float64 { return &v }

func sampleResult() models.StressResult {
	return models.StressResult{
		Detail: []models.DetailRow{
			{Asset: "UST10", Bucket: "UST", MV: 1000000, PnLRates: -96375, PnL: -96375, DV01: 650, DyBP: 150},
			{Asset: "IG_A", Bucket: "IG", MV: 500000, PnLRates: -37500, PnLSpread: -48000, PnL: -85500, DV01: 250, CS01: 240, DyBP: 150, DsBP: 200},
			{Asset: "SWAP", Bucket: "GEN"},
		},
		Aggregate: []models.AggregateRow{
			{Bucket: "UST", MV: 1000000, PnL: -96375, PnLRates: -96375, DV01: 650, PnLPct: pct(-0.096375)},
			{Bucket: "IG", MV: 500000, PnL: -85500, PnLRates: -37500, PnLSpread: -48000, DV01: 250, CS01: 240, PnLPct: pct(-0.171)},
			{Bucket: "GEN"},
		},
	}
}

func sampleReport() *Report {
	shock := models.Shock{"UST": {DyBP: 150}, "IG": {DyBP: 150, DsBP: 200}}
	return New("synthetic", shock, sampleResult())
}

func TestNew(t *testing.T) {
	r := sampleReport()
	if _, err := uuid.Parse(r.RunID); err != nil {
		t.Errorf("RunID %q is not a uuid: %v", r.RunID, err)
	}
	if r.GeneratedAt.IsZero() || r.GeneratedAt.Location().String() != "UTC" {
		t.Errorf("GeneratedAt: got %v", r.GeneratedAt)
	}
	if got := r.MarkdownFile(); got != "stress_report.md" {
		t.Errorf("MarkdownFile: got %q", got)
	}
	r.Preset = "covid2020"
	if got := r.MarkdownFile(); got != "stress_report_covid2020.md" {
		t.Errorf("MarkdownFile: got %q", got)
	}
}

func TestNewCopiesShock(t *testing.T) {
	shock := models.Shock{"UST": {DyBP: 150}}
	r := New("synthetic", shock, sampleResult())
	shock["UST"] = models.BucketShock{DyBP: -1}
	shock["HY"] = models.BucketShock{DsBP: 400}
	if got := r.Shock["UST"].DyBP; got != 150 {
		t.Errorf("report shock changed with caller's map: UST dy = %v", got)
	}
	if len(r.Shock) != 1 {
		t.Errorf("report shock: got %d buckets, want 1", len(r.Shock))
	}
}

// ════════════════════════════════════════════════════════════════════
// Console
// ════════════════════════════════════════════════════════════════════

func TestWriteConsole(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteConsole(&buf, sampleReport(), 2); err != nil {
		t.Fatalf("WriteConsole: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"STRESS RESULT: synthetic",
		"Total MV:    1,500,000",
		"Total PnL:   -181,875",
		"Total PnL %:",
		"Top2 Greatest Losses",
		"-96375.00",
		"n/a",
		"UST10",
		"IG_A",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("console output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "SWAP") {
		t.Errorf("only the top 2 losers should be listed:\n%s", out)
	}
}

func TestWriteConsole_DefaultTopNAndZeroMV(t *testing.T) {
	r := New("custom", nil, models.StressResult{
		Detail:    []models.DetailRow{{Asset: "X", Bucket: "GEN"}},
		Aggregate: []models.AggregateRow{{Bucket: "GEN"}},
	})
	var buf bytes.Buffer
	if err := WriteConsole(&buf, r, 0); err != nil {
		t.Fatalf("WriteConsole: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Top5 Greatest Losses") {
		t.Errorf("expected default top 5 heading:\n%s", out)
	}
	if strings.Contains(out, "Total PnL %") {
		t.Errorf("total pct must be omitted for zero MV:\n%s", out)
	}
}

// ════════════════════════════════════════════════════════════════════
// CSV
// ════════════════════════════════════════════════════════════════════

func TestWriteAggregateCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteAggregateCSV(&buf, sampleResult().Aggregate); err != nil {
		t.Fatalf("WriteAggregateCSV: %v", err)
	}
	want := "bucket,mv,pnl,pnl_rates,pnl_spread,dv01,cs01,pnl_pct\n" +
		"UST,1000000,-96375,-96375,0,650,0,-0.096375\n" +
		"IG,500000,-85500,-37500,-48000,250,240,-0.171\n" +
		"GEN,0,0,0,0,0,0,\n"
	if got := buf.String(); got != want {
		t.Errorf("aggregate csv:\ngot  %q\nwant %q", got, want)
	}
}

func TestWriteDetailCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteDetailCSV(&buf, sampleResult().Detail[:1]); err != nil {
		t.Fatalf("WriteDetailCSV: %v", err)
	}
	want := "asset,bucket,mv,pnl_rates,pnl_spread,pnl,dv01,cs01,dy_bp,ds_bp\n" +
		"UST10,UST,1000000,-96375,0,-96375,650,0,150,0\n"
	if got := buf.String(); got != want {
		t.Errorf("detail csv:\ngot  %q\nwant %q", got, want)
	}
}

// ════════════════════════════════════════════════════════════════════
// Markdown
// ════════════════════════════════════════════════════════════════════

func TestWriteMarkdown(t *testing.T) {
	r := sampleReport()
	r.Window = "2020-02-20 → 2020-03-20"
	var buf bytes.Buffer
	if err := WriteMarkdown(&buf, r); err != nil {
		t.Fatalf("WriteMarkdown: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"# Stress Report",
		"- **Window:** 2020-02-20 → 2020-03-20",
		"| UST | 1000000.000 | -96375.000 | -96375.000 | 0.000 | 650.000 | 0.000 | -0.096 |",
		"| GEN | 0.000 | 0.000 | 0.000 | 0.000 | 0.000 | 0.000 | n/a |",
		"## Top 10 Losers",
		"| UST10 | UST | 1000000.00 |",
		"| IG | 150.00 | 200.00 |",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("markdown missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "| UST |") > strings.Index(out, "| IG | 500000.000") {
		t.Error("aggregate rows must keep ascending P&L order")
	}
}

// ════════════════════════════════════════════════════════════════════
// HTML
// ════════════════════════════════════════════════════════════════════

func parseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parsing html: %v", err)
	}
	return doc
}

func TestGenerateHTML(t *testing.T) {
	r := sampleReport()
	html, err := GenerateHTML(r)
	if err != nil {
		t.Fatalf("GenerateHTML: %v", err)
	}
	doc := parseHTML(t, html)

	if got := doc.Find("#run-id").Text(); got != r.RunID {
		t.Errorf("run id: got %q, want %q", got, r.RunID)
	}
	if got := doc.Find("#total-mv").Text(); got != "1,500,000" {
		t.Errorf("total mv: got %q", got)
	}
	if !doc.Find("#total-pnl").HasClass("loss") {
		t.Error("negative total should carry the loss class")
	}
	rows := doc.Find("#aggregate tbody tr")
	if rows.Length() != 3 {
		t.Fatalf("aggregate rows: got %d, want 3", rows.Length())
	}
	if got := rows.First().Find("td").First().Text(); got != "UST" {
		t.Errorf("first bucket: got %q, want UST", got)
	}
	if got := rows.Last().Find("td").Last().Text(); got != "n/a" {
		t.Errorf("zero-MV pct: got %q, want n/a", got)
	}
	if got := doc.Find("#losers tbody tr").Length(); got != 3 {
		t.Errorf("loser rows: got %d, want 3", got)
	}
	if got := doc.Find("#shock tbody tr").Length(); got != 2 {
		t.Errorf("shock rows: got %d, want 2", got)
	}
	if got := doc.Find(".chart svg rect.bar").Length(); got != 3 {
		t.Errorf("chart bars: got %d, want 3", got)
	}
	if doc.Find("#window").Length() != 0 {
		t.Error("window line should be omitted for a synthetic run")
	}
}

func TestGenerateHTML_EscapesText(t *testing.T) {
	r := sampleReport()
	r.Scenario = "<b>bold</b>"
	html, err := GenerateHTML(r)
	if err != nil {
		t.Fatalf("GenerateHTML: %v", err)
	}
	doc := parseHTML(t, html)
	if doc.Find("h1 b").Length() != 0 {
		t.Error("scenario name must be escaped")
	}
	if got := doc.Find("h1").Text(); got != "Stress Report: <b>bold</b>" {
		t.Errorf("h1: got %q", got)
	}
}

func TestHorizontalBarChart(t *testing.T) {
	if got := HorizontalBarChart(nil, ChartConfig{}); !strings.Contains(got, "No data") {
		t.Errorf("empty chart: got %q", got)
	}
	svg := HorizontalBarChart([]BarItem{{Label: "A&B", Value: -10}, {Label: "C", Value: 5}}, DefaultChartConfig())
	if !strings.Contains(svg, "A&amp;B") {
		t.Error("labels must be XML-escaped")
	}
	if !strings.Contains(svg, "#dc2626") || !strings.Contains(svg, "#16a34a") {
		t.Error("expected loss and gain colours")
	}
	bars := BucketPnLBars(sampleResult().Aggregate)
	if len(bars) != 3 || bars[0].Label != "UST" || bars[0].Value != -96375 {
		t.Errorf("BucketPnLBars: got %+v", bars)
	}
}

// ════════════════════════════════════════════════════════════════════
// Export and PDF
// ════════════════════════════════════════════════════════════════════

func TestExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	files, err := Export(dir, sampleReport(), Options{})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	for _, p := range []string{files.DetailCSV, files.AggregateCSV, files.Markdown, files.HTML, files.Shock} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("expected %s: %v", p, err)
		}
	}
	if files.Markdown != filepath.Join(dir, "stress_report.md") {
		t.Errorf("markdown path: got %q", files.Markdown)
	}
	if files.PDF != "" {
		t.Errorf("pdf should not be written, got %q", files.PDF)
	}

	shock, err := scenario.LoadShockFile(files.Shock)
	if err != nil {
		t.Fatalf("LoadShockFile(%s): %v", files.Shock, err)
	}
	if len(shock) != 2 || shock["IG"].DsBP != 200 || shock["UST"].DyBP != 150 {
		t.Errorf("saved shock: got %+v", shock)
	}
}

func TestExport_PDFFallsBackToHTML(t *testing.T) {
	dir := t.TempDir()
	files, err := Export(dir, sampleReport(), Options{PDF: true, PDFConfig: PDFConfig{Engine: EngineNone}})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if files.PDF != filepath.Join(dir, HTMLFile) {
		t.Errorf("pdf fallback path: got %q", files.PDF)
	}
}

func TestExport_NilReport(t *testing.T) {
	if _, err := Export(t.TempDir(), nil, Options{}); err == nil {
		t.Error("expected error for nil report")
	}
}

func TestGeneratePDF(t *testing.T) {
	if _, err := GeneratePDF("<p>x</p>", PDFConfig{}); err == nil {
		t.Error("expected error without output path")
	}

	out := filepath.Join(t.TempDir(), "nested", "r.PDF")
	got, err := GeneratePDF("<p>x</p>", PDFConfig{Engine: EngineNone, OutputPath: out})
	if err != nil {
		t.Fatalf("GeneratePDF: %v", err)
	}
	if want := strings.TrimSuffix(out, ".PDF") + ".html"; got != want {
		t.Errorf("fallback path: got %q, want %q", got, want)
	}
	data, err := os.ReadFile(got)
	if err != nil || string(data) != "<p>x</p>" {
		t.Errorf("fallback content: %q, %v", data, err)
	}

	if _, err := GeneratePDF("", PDFConfig{Engine: "prince", OutputPath: out}); err == nil {
		t.Error("expected error for unknown engine")
	}
}

// ════════════════════════════════════════════════════════════════════
// Comparison
// ════════════════════════════════════════════════════════════════════

func TestCompare(t *testing.T) {
	mild := New("synthetic", nil, models.StressResult{
		Detail:    []models.DetailRow{{Asset: "A", Bucket: "IG", MV: 100, PnL: -1}},
		Aggregate: []models.AggregateRow{{Bucket: "IG", MV: 100, PnL: -1}},
	})
	severe := sampleReport()
	severe.Scenario = "covid2020"
	severe.Window = "2020-02-20 → 2020-03-20"

	rows := Compare([]*Report{mild, nil, severe})
	if len(rows) != 2 {
		t.Fatalf("rows: got %d, want 2", len(rows))
	}
	if rows[0].Scenario != "covid2020" || rows[1].Scenario != "synthetic" {
		t.Errorf("order: got %s, %s", rows[0].Scenario, rows[1].Scenario)
	}
	if rows[0].WorstBucket != "UST" || rows[0].WorstPnL != -96375 || rows[0].WorstAsset != "UST10" {
		t.Errorf("worst fields: %+v", rows[0])
	}
	if rows[0].TotalPnL != -181875 || rows[0].TotalMV != 1500000 {
		t.Errorf("totals: %+v", rows[0])
	}

	var md bytes.Buffer
	if err := WriteComparisonMarkdown(&md, rows); err != nil {
		t.Fatalf("WriteComparisonMarkdown: %v", err)
	}
	if !strings.Contains(md.String(), "- **covid2020:** 2020-02-20 → 2020-03-20") {
		t.Errorf("markdown missing window:\n%s", md.String())
	}
	if strings.Count(md.String(), "## Windows") != 1 {
		t.Errorf("windows heading should appear once:\n%s", md.String())
	}

	var con bytes.Buffer
	if err := WriteComparisonConsole(&con, rows); err != nil {
		t.Fatalf("WriteComparisonConsole: %v", err)
	}
	if !strings.Contains(con.String(), "SCENARIO COMPARISON") || !strings.Contains(con.String(), "-181,875") {
		t.Errorf("console comparison:\n%s", con.String())
	}
}
