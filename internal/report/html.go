package report

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/seenimoa/openstress/pkg/models"
	"github.com/seenimoa/openstress/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// HTML report
// ════════════════════════════════════════════════════════════════════

type htmlShockRow struct {
	Bucket     string
	DyBP, DsBP string
}

type htmlAggRow struct {
	Bucket                                   string
	MV, PnL, PnLRates, PnLSpread, DV01, CS01 string
	PnLPct                                   string
	Loss                                     bool
}

type htmlDetailRow struct {
	Asset, Bucket               string
	MV, PnLRates, PnLSpread     string
	PnL, DV01, CS01, DyBP, DsBP string
	Loss                        bool
}

type htmlData struct {
	Title       string
	RunID       string
	Scenario    string
	Description string
	Window      string
	GeneratedAt string

	TotalMV     string
	TotalPnL    string
	TotalPnLPct string
	TotalLoss   bool

	Shock     []htmlShockRow
	Aggregate []htmlAggRow
	Losers    []htmlDetailRow
	TopN      int
	Chart     template.HTML
}

var htmlTmpl = template.Must(template.New("report").Parse(htmlTemplate))

// GenerateHTML renders a standalone page with the shock, the bucket P&L
// chart, the aggregate table and the top losers.
func GenerateHTML(r *Report) (string, error) {
	data := buildHTMLData(r)
	var buf bytes.Buffer
	if err := htmlTmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering html report: %w", err)
	}
	return buf.String(), nil
}

func buildHTMLData(r *Report) htmlData {
	res := r.Result
	d := htmlData{
		Title:       "Stress Report: " + r.Scenario,
		RunID:       r.RunID,
		Scenario:    r.Scenario,
		Description: r.Description,
		Window:      r.Window,
		GeneratedAt: utils.FormatTimestamp(r.GeneratedAt),
		TotalMV:     utils.FormatNumber(res.TotalMV(), 0),
		TotalPnL:    utils.FormatNumber(res.TotalPnL(), 0),
		TotalPnLPct: utils.FormatPctPtr(res.TotalPnLPct()),
		TotalLoss:   res.TotalPnL() < 0,
		TopN:        markdownTopN,
	}

	for _, b := range r.Shock.Buckets() {
		s := r.Shock[b]
		d.Shock = append(d.Shock, htmlShockRow{
			Bucket: b,
			DyBP:   utils.FormatFixed(s.DyBP, 2),
			DsBP:   utils.FormatFixed(s.DsBP, 2),
		})
	}
	for _, a := range res.Aggregate {
		d.Aggregate = append(d.Aggregate, htmlAggRow{
			Bucket:    a.Bucket,
			MV:        utils.FormatNumber(a.MV, 2),
			PnL:       utils.FormatNumber(a.PnL, 2),
			PnLRates:  utils.FormatNumber(a.PnLRates, 2),
			PnLSpread: utils.FormatNumber(a.PnLSpread, 2),
			DV01:      utils.FormatNumber(a.DV01, 2),
			CS01:      utils.FormatNumber(a.CS01, 2),
			PnLPct:    utils.FormatPctPtr(a.PnLPct),
			Loss:      a.PnL < 0,
		})
	}
	for _, l := range res.TopLosers(markdownTopN) {
		d.Losers = append(d.Losers, detailHTMLRow(l))
	}

	cfg := DefaultChartConfig()
	cfg.Title = "P&L by Bucket"
	// Generated by HorizontalBarChart with every label escaped.
	d.Chart = template.HTML(HorizontalBarChart(BucketPnLBars(res.Aggregate), cfg))
	return d
}

func detailHTMLRow(r models.DetailRow) htmlDetailRow {
	return htmlDetailRow{
		Asset:     r.Asset,
		Bucket:    r.Bucket,
		MV:        utils.FormatNumber(r.MV, 2),
		PnLRates:  utils.FormatNumber(r.PnLRates, 2),
		PnLSpread: utils.FormatNumber(r.PnLSpread, 2),
		PnL:       utils.FormatNumber(r.PnL, 2),
		DV01:      utils.FormatNumber(r.DV01, 2),
		CS01:      utils.FormatNumber(r.CS01, 2),
		DyBP:      utils.FormatFixed(r.DyBP, 2),
		DsBP:      utils.FormatFixed(r.DsBP, 2),
		Loss:      r.PnL < 0,
	}
}

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>{{.Title}}</title>
<style>
  :root { --text: #1a1a2e; --muted: #6b7280; --border: #e5e7eb; --accent: #2563eb; --green: #16a34a; --red: #dc2626; }
  * { margin: 0; padding: 0; box-sizing: border-box; }
  body { font-family: -apple-system, 'Segoe UI', Roboto, sans-serif; color: var(--text); line-height: 1.5; max-width: 960px; margin: 0 auto; padding: 20px; }
  h1 { font-size: 1.5rem; color: var(--accent); }
  h2 { font-size: 1.15rem; margin: 24px 0 10px; padding-bottom: 4px; border-bottom: 2px solid var(--accent); }
  .muted { color: var(--muted); font-size: 0.85rem; }
  .header { border-bottom: 3px solid var(--accent); padding-bottom: 10px; margin-bottom: 16px; }
  .totals { display: flex; gap: 16px; margin: 12px 0; }
  .totals div { flex: 1; border: 1px solid var(--border); border-radius: 6px; padding: 10px; }
  .totals .value { font-size: 1.2rem; font-weight: 600; }
  table { width: 100%; border-collapse: collapse; font-size: 0.85rem; }
  th, td { padding: 5px 8px; border-bottom: 1px solid var(--border); text-align: right; }
  th:first-child, td:first-child { text-align: left; }
  th { background: #f8fafc; font-weight: 600; }
  .loss { color: var(--red); }
  .gain { color: var(--green); }
  .chart { margin: 12px 0; }
  @media print { body { padding: 0; } }
</style>
</head>
<body>
<div class="header">
  <h1>{{.Title}}</h1>
  {{if .Description}}<p>{{.Description}}</p>{{end}}
  {{if .Window}}<p class="muted" id="window">Window: {{.Window}}</p>{{end}}
  <p class="muted">Run <code id="run-id">{{.RunID}}</code> | {{.GeneratedAt}}</p>
</div>

<div class="totals">
  <div><div class="muted">Total MV</div><div class="value" id="total-mv">{{.TotalMV}}</div></div>
  <div><div class="muted">Total P&amp;L</div><div class="value {{if .TotalLoss}}loss{{else}}gain{{end}}" id="total-pnl">{{.TotalPnL}}</div></div>
  <div><div class="muted">Total P&amp;L %</div><div class="value" id="total-pnl-pct">{{.TotalPnLPct}}</div></div>
</div>

{{if .Shock}}
<h2>Shock</h2>
<table id="shock">
  <thead><tr><th>Bucket</th><th>dy (bp)</th><th>ds (bp)</th></tr></thead>
  <tbody>
  {{range .Shock}}<tr><td>{{.Bucket}}</td><td>{{.DyBP}}</td><td>{{.DsBP}}</td></tr>
  {{end}}
  </tbody>
</table>
{{end}}

<h2>P&amp;L by Bucket</h2>
<div class="chart">{{.Chart}}</div>
<table id="aggregate">
  <thead><tr><th>Bucket</th><th>MV</th><th>P&amp;L</th><th>Rates</th><th>Spread</th><th>DV01</th><th>CS01</th><th>P&amp;L %</th></tr></thead>
  <tbody>
  {{range .Aggregate}}<tr><td>{{.Bucket}}</td><td>{{.MV}}</td><td class="{{if .Loss}}loss{{else}}gain{{end}}">{{.PnL}}</td><td>{{.PnLRates}}</td><td>{{.PnLSpread}}</td><td>{{.DV01}}</td><td>{{.CS01}}</td><td>{{.PnLPct}}</td></tr>
  {{end}}
  </tbody>
</table>

<h2>Top {{.TopN}} Losers</h2>
<table id="losers">
  <thead><tr><th>Asset</th><th>Bucket</th><th>MV</th><th>Rates</th><th>Spread</th><th>P&amp;L</th><th>DV01</th><th>CS01</th><th>dy</th><th>ds</th></tr></thead>
  <tbody>
  {{range .Losers}}<tr><td>{{.Asset}}</td><td>{{.Bucket}}</td><td>{{.MV}}</td><td>{{.PnLRates}}</td><td>{{.PnLSpread}}</td><td class="{{if .Loss}}loss{{else}}gain{{end}}">{{.PnL}}</td><td>{{.DV01}}</td><td>{{.CS01}}</td><td>{{.DyBP}}</td><td>{{.DsBP}}</td></tr>
  {{end}}
  </tbody>
</table>

<p class="muted" style="margin-top:24px">Generated by openstress</p>
</body>
</html>
`
