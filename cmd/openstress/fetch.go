package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/seenimoa/openstress/internal/marketdata"
	"github.com/seenimoa/openstress/internal/provider"
	"github.com/seenimoa/openstress/internal/providers"
	"github.com/seenimoa/openstress/pkg/utils"
)

// --- Fetch Command ---

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download FRED yields and OAS and cache them as CSV",
	Long: `Download DGS2, DGS10, ICE BofA IG OAS and HY OAS from FRED and
write them to <cache>/fred_timeseries.csv. Requires FRED_API_KEY.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cacheDir := stringFlagOr(cmd, "cache", cfg.Data.CacheDir)
		start, _ := cmd.Flags().GetString("start")
		end, _ := cmd.Flags().GetString("end")

		reg, err := providers.NewRegistry(cfg.Data, true)
		if err != nil {
			return err
		}
		f, err := reg.Fetcher(provider.ModelFredSeries)
		if err != nil {
			return err
		}

		path, ts, err := marketdata.Download(cmd.Context(), f, cacheDir,
			marketdata.FetchOptions{Start: start, End: end}, log)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Saved: %s rows: %d\n", path, ts.Len())
		return nil
	},
}

func init() {
	fetchCmd.Flags().String("cache", "", "cache directory (default from config: data)")
	fetchCmd.Flags().String("start", "", "first observation date, YYYY-MM-DD (optional)")
	fetchCmd.Flags().String("end", "", "last observation date, YYYY-MM-DD (optional)")
}

// cacheStatus describes the market data cache for the status command.
func cacheStatus(cacheDir string) string {
	path := marketdata.CachePath(cacheDir)
	st, err := os.Stat(path)
	if err != nil {
		return path + ": not found (run `openstress fetch`)"
	}
	ts, err := marketdata.Load(cacheDir)
	if err != nil {
		return fmt.Sprintf("%s: unreadable: %v", path, err)
	}
	first, last, ok := ts.Span()
	if !ok {
		return path + ": empty"
	}
	return fmt.Sprintf("%s: %d rows, %s → %s (updated %s)", path, ts.Len(),
		utils.FormatDate(first), utils.FormatDate(last), utils.FormatTimestamp(st.ModTime()))
}

// stringFlagOr returns the flag value when set on the command line,
// otherwise fallback.
func stringFlagOr(cmd *cobra.Command, name, fallback string) string {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetString(name)
		return v
	}
	return fallback
}

func floatFlagOr(cmd *cobra.Command, name string, fallback float64) float64 {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetFloat64(name)
		return v
	}
	return fallback
}

func intFlagOr(cmd *cobra.Command, name string, fallback int) int {
	if cmd.Flags().Changed(name) {
		v, _ := cmd.Flags().GetInt(name)
		return v
	}
	return fallback
}
