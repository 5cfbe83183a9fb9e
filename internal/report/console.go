package report

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/seenimoa/openstress/pkg/models"
	"github.com/seenimoa/openstress/pkg/utils"
)

// ════════════════════════════════════════════════════════════════════
// Console
// ════════════════════════════════════════════════════════════════════

var (
	aggregateHeader = []string{"bucket", "mv", "pnl", "pnl_rates", "pnl_spread", "dv01", "cs01", "pnl_pct"}
	detailHeader    = []string{"asset", "bucket", "mv", "pnl_rates", "pnl_spread", "pnl", "dv01", "cs01", "dy_bp", "ds_bp"}
)

// WriteConsole prints the aggregate table at 2 decimals, portfolio totals
// and the topN largest losers. topN <= 0 means DefaultTopN.
func WriteConsole(w io.Writer, r *Report, topN int) error {
	if topN <= 0 {
		topN = DefaultTopN
	}
	line := strings.Repeat("═", 72)
	thin := strings.Repeat("─", 72)
	res := r.Result

	var sb strings.Builder
	sb.WriteString(line + "\n")
	sb.WriteString(fmt.Sprintf("  STRESS RESULT: %s\n", r.Scenario))
	if r.Window != "" {
		sb.WriteString(fmt.Sprintf("  Window: %s\n", r.Window))
	}
	sb.WriteString(fmt.Sprintf("  Run: %s | %s\n", r.RunID, utils.FormatTimestamp(r.GeneratedAt)))
	sb.WriteString(line + "\n")
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}

	if err := writeAggregateTable(w, res.Aggregate); err != nil {
		return err
	}

	sb.Reset()
	sb.WriteString(thin + "\n")
	sb.WriteString(fmt.Sprintf("  Total MV:    %s\n", utils.FormatNumber(res.TotalMV(), 0)))
	sb.WriteString(fmt.Sprintf("  Total PnL:   %s\n", utils.FormatNumber(res.TotalPnL(), 0)))
	if pct := res.TotalPnLPct(); pct != nil {
		sb.WriteString(fmt.Sprintf("  Total PnL %%: %s%%\n", utils.FormatNumber(*pct*100, 2)))
	}
	sb.WriteString(thin + "\n")
	sb.WriteString(fmt.Sprintf("  Top%d Greatest Losses\n", topN))
	if _, err := io.WriteString(w, sb.String()); err != nil {
		return err
	}
	return writeDetailTable(w, res.TopLosers(topN))
}

func writeAggregateTable(w io.Writer, rows []models.AggregateRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(aggregateHeader, "\t")+"\t")
	for _, a := range rows {
		fmt.Fprintln(tw, strings.Join(aggregateCells(a, 2), "\t")+"\t")
	}
	return tw.Flush()
}

func writeDetailTable(w io.Writer, rows []models.DetailRow) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', tabwriter.AlignRight)
	fmt.Fprintln(tw, strings.Join(detailHeader, "\t")+"\t")
	for _, d := range rows {
		fmt.Fprintln(tw, strings.Join(detailCells(d, 2), "\t")+"\t")
	}
	return tw.Flush()
}

func detailCells(d models.DetailRow, places int32) []string {
	return []string{
		d.Asset,
		d.Bucket,
		utils.FormatFixed(d.MV, places),
		utils.FormatFixed(d.PnLRates, places),
		utils.FormatFixed(d.PnLSpread, places),
		utils.FormatFixed(d.PnL, places),
		utils.FormatFixed(d.DV01, places),
		utils.FormatFixed(d.CS01, places),
		utils.FormatFixed(d.DyBP, places),
		utils.FormatFixed(d.DsBP, places),
	}
}

// ratioOrNA renders a P&L/MV ratio rounded to places, or "n/a".
func ratioOrNA(v *float64, places int32) string {
	if v == nil {
		return "n/a"
	}
	return utils.FormatFixed(*v, places)
}
