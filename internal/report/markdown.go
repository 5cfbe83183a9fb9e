package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/seenimoa/openstress/pkg/models"
	"github.com/seenimoa/openstress/pkg/utils"
)

// WriteMarkdown renders the aggregate table at 3 decimals and the ten
// largest losers at 2 decimals as GitHub-flavoured Markdown.
func WriteMarkdown(w io.Writer, r *Report) error {
	var sb strings.Builder

	sb.WriteString("# Stress Report\n\n")
	fmt.Fprintf(&sb, "- **Scenario:** %s\n", r.Scenario)
	if r.Description != "" {
		fmt.Fprintf(&sb, "- **Description:** %s\n", r.Description)
	}
	if r.Window != "" {
		fmt.Fprintf(&sb, "- **Window:** %s\n", r.Window)
	}
	fmt.Fprintf(&sb, "- **Run:** `%s`\n", r.RunID)
	fmt.Fprintf(&sb, "- **Generated:** %s\n\n", utils.FormatTimestamp(r.GeneratedAt))

	if len(r.Shock) > 0 {
		sb.WriteString("## Shock\n\n")
		writePipeRow(&sb, []string{"bucket", "dy_bp", "ds_bp"})
		writePipeSep(&sb, 3)
		for _, b := range r.Shock.Buckets() {
			s := r.Shock[b]
			writePipeRow(&sb, []string{b, utils.FormatFixed(s.DyBP, 2), utils.FormatFixed(s.DsBP, 2)})
		}
		sb.WriteString("\n")
	}

	sb.WriteString("## Aggregate by Bucket\n\n")
	writePipeRow(&sb, aggregateHeader)
	writePipeSep(&sb, len(aggregateHeader))
	for _, a := range r.Result.Aggregate {
		writePipeRow(&sb, aggregateCells(a, 3))
	}

	fmt.Fprintf(&sb, "\n**Total MV:** %s | **Total PnL:** %s",
		utils.FormatNumber(r.Result.TotalMV(), 0), utils.FormatNumber(r.Result.TotalPnL(), 0))
	if pct := r.Result.TotalPnLPct(); pct != nil {
		fmt.Fprintf(&sb, " | **Total PnL %%:** %s", utils.FormatPctPtr(pct))
	}
	sb.WriteString("\n\n")

	fmt.Fprintf(&sb, "## Top %d Losers\n\n", markdownTopN)
	writePipeRow(&sb, detailHeader)
	writePipeSep(&sb, len(detailHeader))
	for _, d := range r.Result.TopLosers(markdownTopN) {
		writePipeRow(&sb, detailCells(d, 2))
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func aggregateCells(a models.AggregateRow, places int32) []string {
	return []string{
		a.Bucket,
		utils.FormatFixed(a.MV, places),
		utils.FormatFixed(a.PnL, places),
		utils.FormatFixed(a.PnLRates, places),
		utils.FormatFixed(a.PnLSpread, places),
		utils.FormatFixed(a.DV01, places),
		utils.FormatFixed(a.CS01, places),
		ratioOrNA(a.PnLPct, places),
	}
}

func writePipeRow(sb *strings.Builder, cells []string) {
	sb.WriteString("| ")
	for i, c := range cells {
		if i > 0 {
			sb.WriteString(" | ")
		}
		sb.WriteString(strings.ReplaceAll(c, "|", `\|`))
	}
	sb.WriteString(" |\n")
}

func writePipeSep(sb *strings.Builder, n int) {
	sb.WriteString("|")
	sb.WriteString(strings.Repeat("---|", n))
	sb.WriteString("\n")
}
