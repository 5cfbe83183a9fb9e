package api

import (
	"net/http"

	"github.com/seenimoa/openstress/internal/config"
)

// ConfigView is the running configuration as exposed over HTTP. The FRED
// API key is never included; see /api/v1/config/keys for its status.
type ConfigView struct {
	CacheDir        string   `json:"cache_dir"`
	FredBaseURL     string   `json:"fred_base_url"`
	FetchTimeoutSec int      `json:"fetch_timeout_sec"`
	RateLimitPerMin int      `json:"rate_limit_per_min"`
	OutDir          string   `json:"out_dir"`
	SynthUstBP      float64  `json:"ust_bp"`
	SynthIgBP       float64  `json:"ig_bp"`
	SynthHyBP       float64  `json:"hy_bp"`
	ScalePerYear    int      `json:"scale_per_year"`
	TopN            int      `json:"top_n"`
	CORSOrigins     []string `json:"cors_origins"`
	LogLevel        string   `json:"log_level"`
	LogFormat       string   `json:"log_format"`
}

func newConfigView(c *config.Config) ConfigView {
	return ConfigView{
		CacheDir:        c.Data.CacheDir,
		FredBaseURL:     c.Data.FredBaseURL,
		FetchTimeoutSec: c.Data.FetchTimeoutSec,
		RateLimitPerMin: c.Data.RateLimitPerMin,
		OutDir:          c.Stress.OutDir,
		SynthUstBP:      c.Stress.UstBP,
		SynthIgBP:       c.Stress.IgBP,
		SynthHyBP:       c.Stress.HyBP,
		ScalePerYear:    c.Stress.ScalePerYear,
		TopN:            c.Stress.TopN,
		CORSOrigins:     c.API.CORSOrigins,
		LogLevel:        c.Logging.Level,
		LogFormat:       c.Logging.Format,
	}
}

// handleGetConfig returns the running configuration without secrets.
func (s *Server) handleGetConfig(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    newConfigView(s.cfg),
	})
}

// handleGetConfigKeys returns the masked status of every API key.
func (s *Server) handleGetConfigKeys(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, APIResponse{
		Success: true,
		Data:    config.CheckAPIKeys(s.cfg),
	})
}
