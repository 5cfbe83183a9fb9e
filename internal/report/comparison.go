package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/tabwriter"

	"github.com/seenimoa/openstress/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Scenario comparison
// ════════════════════════════════════════════════════════════════════

// ComparisonRow summarizes one scenario run.
type ComparisonRow struct {
	Scenario    string   `json:"scenario"`
	Window      string   `json:"window,omitempty"`
	TotalMV     float64  `json:"total_mv"`
	TotalPnL    float64  `json:"total_pnl"`
	TotalPnLPct *float64 `json:"total_pnl_pct"`
	WorstBucket string   `json:"worst_bucket"`
	WorstPnL    float64  `json:"worst_bucket_pnl"`
	WorstAsset  string   `json:"worst_asset"`
}

// Compare builds one row per report, sorted by total P&L ascending so the
// most severe scenario comes first. Ties keep input order.
func Compare(reports []*Report) []ComparisonRow {
	rows := make([]ComparisonRow, 0, len(reports))
	for _, r := range reports {
		if r == nil {
			continue
		}
		row := ComparisonRow{
			Scenario:    r.Scenario,
			Window:      r.Window,
			TotalMV:     r.Result.TotalMV(),
			TotalPnL:    r.Result.TotalPnL(),
			TotalPnLPct: r.Result.TotalPnLPct(),
		}
		if len(r.Result.Aggregate) > 0 {
			worst := r.Result.Aggregate[0]
			row.WorstBucket, row.WorstPnL = worst.Bucket, worst.PnL
		}
		if losers := r.Result.TopLosers(1); len(losers) > 0 {
			row.WorstAsset = losers[0].Asset
		}
		rows = append(rows, row)
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].TotalPnL < rows[j].TotalPnL })
	return rows
}

var comparisonHeader = []string{"scenario", "total_mv", "total_pnl", "total_pnl_pct", "worst_bucket", "worst_bucket_pnl", "worst_asset"}

func comparisonCells(c ComparisonRow) []string {
	return []string{
		c.Scenario,
		utils.FormatNumber(c.TotalMV, 0),
		utils.FormatNumber(c.TotalPnL, 0),
		utils.FormatPctPtr(c.TotalPnLPct),
		c.WorstBucket,
		utils.FormatNumber(c.WorstPnL, 0),
		c.WorstAsset,
	}
}

// WriteComparisonConsole prints the comparison as an aligned table.
func WriteComparisonConsole(w io.Writer, rows []ComparisonRow) error {
	if _, err := fmt.Fprintf(w, "%s\n  SCENARIO COMPARISON\n%s\n", strings.Repeat("═", 72), strings.Repeat("═", 72)); err != nil {
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(comparisonHeader, "\t")+"\t")
	for _, c := range rows {
		fmt.Fprintln(tw, strings.Join(comparisonCells(c), "\t")+"\t")
	}
	return tw.Flush()
}

// WriteComparisonMarkdown renders the comparison as a Markdown page.
func WriteComparisonMarkdown(w io.Writer, rows []ComparisonRow) error {
	var sb strings.Builder
	sb.WriteString("# Scenario Comparison\n\n")
	writePipeRow(&sb, comparisonHeader)
	writePipeSep(&sb, len(comparisonHeader))
	for _, c := range rows {
		writePipeRow(&sb, comparisonCells(c))
	}
	header := false
	for _, c := range rows {
		if c.Window == "" {
			continue
		}
		if !header {
			sb.WriteString("\n## Windows\n\n")
			header = true
		}
		fmt.Fprintf(&sb, "- **%s:** %s\n", c.Scenario, c.Window)
	}
	_, err := io.WriteString(w, sb.String())
	return err
}
