// openstress: credit and rates stress testing for bond portfolios.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/seenimoa/openstress/api"
	"github.com/seenimoa/openstress/internal/config"
	"github.com/seenimoa/openstress/internal/infra"
	"github.com/seenimoa/openstress/internal/logger"
	"github.com/seenimoa/openstress/internal/providers"
	"github.com/seenimoa/openstress/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

var (
	cfg     *config.Config
	log     = logger.OrDiscard(nil)
	syncLog = func() error { return nil }
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "openstress",
	Short: "Credit & rates stress testing toolkit",
	Long: `openstress applies parallel rate and credit-spread shocks to a bond
portfolio and reports P&L by asset and by bucket (UST, IG, HY, ...).

Shocks come from a synthetic preset, from historical FRED windows
(covid2020, gfc2008, energy2022) or from a YAML file.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		level := cfg.Logging.Level
		if l, _ := cmd.Flags().GetString("log-level"); l != "" {
			level = l
		}
		var l *slog.Logger
		l, syncLog, err = logger.New(level, cfg.Logging.Format)
		if err != nil {
			return err
		}
		log = l

		infra.SetTimeout(time.Duration(cfg.Data.FetchTimeoutSec) * time.Second)
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = syncLog()
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(fetchCmd)
	rootCmd.AddCommand(stressSynthCmd)
	rootCmd.AddCommand(stressHistCmd)
	rootCmd.AddCommand(stressCustomCmd)
	rootCmd.AddCommand(stressAllCmd)
	rootCmd.AddCommand(summaryCmd)
	rootCmd.AddCommand(serveCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "openstress %s\n", version)
		fmt.Fprintf(out, "  commit:  %s\n", commit)
		fmt.Fprintf(out, "  built:   %s\n", date)
	},
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration, data cache and provider status",
	RunE: func(cmd *cobra.Command, args []string) error {
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintln(out, "  openstress: System Status")
		fmt.Fprintln(out, "═══════════════════════════════════════")
		fmt.Fprintf(out, "  Version:       %s (%s)\n", version, commit)
		fmt.Fprintf(out, "  Time:          %s\n", utils.FormatTimestamp(time.Now()))
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Configuration:")
		fmt.Fprintf(out, "    Cache dir:     %s\n", cfg.Data.CacheDir)
		fmt.Fprintf(out, "    Output dir:    %s\n", cfg.Stress.OutDir)
		fmt.Fprintf(out, "    Synthetic bp:  UST %s / IG %s / HY %s\n",
			utils.FormatFixed(cfg.Stress.UstBP, 0), utils.FormatFixed(cfg.Stress.IgBP, 0), utils.FormatFixed(cfg.Stress.HyBP, 0))
		fmt.Fprintf(out, "    API Server:    %s\n", cfg.API.Addr())
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  Market data:")
		fmt.Fprintf(out, "    %s\n", cacheStatus(cfg.Data.CacheDir))
		fmt.Fprintln(out)

		fmt.Fprintln(out, "  API Keys:")
		for _, k := range config.CheckAPIKeys(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Fprintf(out, "    %-25s %s\n", k.Name+":", status)
		}
		fmt.Fprintln(out)

		reg, err := providers.NewRegistry(cfg.Data, false)
		if err != nil {
			return err
		}
		ping, _ := cmd.Flags().GetBool("ping")
		fmt.Fprintln(out, "  Providers:")
		for _, info := range reg.List() {
			line := fmt.Sprintf("    %-10s %s", info.Name, info.Description)
			if ping {
				p, _ := reg.Get(info.Name)
				if err := p.Ping(cmd.Context()); err != nil {
					line += fmt.Sprintf(" [unreachable: %v]", err)
				} else {
					line += " [ok]"
				}
			}
			fmt.Fprintln(out, line)
		}
		fmt.Fprintln(out, "═══════════════════════════════════════")
		return nil
	},
}

func init() {
	statusCmd.Flags().Bool("ping", false, "check connectivity to each data provider")
}

// --- Serve Command (API Server) ---

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		if port, _ := cmd.Flags().GetInt("port"); port > 0 {
			cfg.API.Port = port
		}
		api.Version = version
		srv := api.NewServer(cfg, log)
		return srv.ListenAndServe(cmd.Context(), cfg.API.Addr())
	},
}

func init() {
	serveCmd.Flags().Int("port", 0, "listen port (default from config)")
}
