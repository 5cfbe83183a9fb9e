package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/seenimoa/openstress/internal/metrics"
	"github.com/seenimoa/openstress/pkg/utils"
)

// --- Summary Command ---

var summaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Annualized mean, volatility, Sharpe and max drawdown of a P&L series",
	Long: `Read one numeric column from a CSV file and summarize it. The series is
additive P&L: drawdown is measured on its running sum. Blank cells are
treated as missing.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("pnl")
		column, _ := cmd.Flags().GetString("column")
		scale := intFlagOr(cmd, "scale", cfg.Stress.ScalePerYear)
		asJSON, _ := cmd.Flags().GetBool("json")

		series, err := metrics.LoadSeries(path, column)
		if err != nil {
			return err
		}
		s := metrics.Summarize(series, scale)
		n := len(metrics.DropMissing(series))
		log.Debug("pnl series summarized", "path", path, "column", column, "observations", n, "scale", scale)

		out := cmd.OutOrStdout()
		if asJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(s)
		}
		fmt.Fprintf(out, "Observations:  %d\n", n)
		fmt.Fprintf(out, "Mean (p.a.):   %s\n", utils.FormatNumber(s.MeanPA, 2))
		fmt.Fprintf(out, "Vol (p.a.):    %s\n", utils.FormatNumber(s.VolPA, 2))
		fmt.Fprintf(out, "Sharpe:        %s\n", utils.FormatFixed(s.Sharpe, 3))
		fmt.Fprintf(out, "Max drawdown:  %s\n", utils.FormatNumber(s.MaxDrawdown, 2))
		return nil
	},
}

func init() {
	summaryCmd.Flags().String("pnl", "", "CSV file holding the P&L series")
	summaryCmd.Flags().String("column", "pnl", "column to summarize")
	summaryCmd.Flags().Int("scale", 0, "periods per year (default from config: 252)")
	summaryCmd.Flags().Bool("json", false, "print the summary as JSON")
	_ = summaryCmd.MarkFlagRequired("pnl")
}
