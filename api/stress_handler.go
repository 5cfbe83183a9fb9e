package api

import (
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/seenimoa/openstress/internal/marketdata"
	"github.com/seenimoa/openstress/internal/metrics"
	"github.com/seenimoa/openstress/internal/portfolio"
	"github.com/seenimoa/openstress/internal/report"
	"github.com/seenimoa/openstress/internal/scenario"
	"github.com/seenimoa/openstress/internal/stress"
	"github.com/seenimoa/openstress/pkg/models"
)

// PresetSynthetic selects the canonical parallel shock.
const PresetSynthetic = "synthetic"

const historyKey = "fred_timeseries"

// StressRequest is the body for POST /api/v1/stress. Exactly one of Preset,
// Shock or Start/End selects the scenario.
type StressRequest struct {
	Positions []PositionInput `json:"positions" validate:"required,min=1,dive"`
	Preset    string          `json:"preset,omitempty"`
	Shock     models.Shock    `json:"shock,omitempty"`
	Start     string          `json:"start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	End       string          `json:"end,omitempty"   validate:"omitempty,datetime=2006-01-02"`
	TopN      int             `json:"top_n,omitempty" validate:"gte=0"`
}

// PositionInput is one portfolio row in a stress request. Asset and mv are
// required, as in the portfolio CSV; the sensitivities default to 0.
type PositionInput struct {
	Asset     string   `json:"asset"      validate:"required"`
	MV        *float64 `json:"mv"         validate:"required"`
	Duration  float64  `json:"duration"`
	Convexity float64  `json:"convexity"`
	SpreadDur float64  `json:"spread_dur"`
	Bucket    string   `json:"bucket"`
}

func toPositions(in []PositionInput) []models.AssetPosition {
	out := make([]models.AssetPosition, len(in))
	for i, p := range in {
		out[i] = models.AssetPosition{
			Asset:     p.Asset,
			MV:        *p.MV,
			Duration:  p.Duration,
			Convexity: p.Convexity,
			SpreadDur: p.SpreadDur,
			Bucket:    p.Bucket,
		}
	}
	return out
}

// WindowInfo describes the effective window of a historical scenario.
type WindowInfo struct {
	RequestedStart string `json:"requested_start"`
	RequestedEnd   string `json:"requested_end"`
	EffectiveStart string `json:"effective_start"`
	EffectiveEnd   string `json:"effective_end"`
	BusinessDays   int    `json:"business_days"`
	Clamped        bool   `json:"clamped"`
}

// Totals are portfolio-level sums. PnLPct is null for zero market value.
type Totals struct {
	MV     float64  `json:"mv"`
	PnL    float64  `json:"pnl"`
	PnLPct *float64 `json:"pnl_pct"`
}

// StressResponse is returned by POST /api/v1/stress.
type StressResponse struct {
	RunID     string                `json:"run_id"`
	Scenario  string                `json:"scenario"`
	Window    *WindowInfo           `json:"window,omitempty"`
	Shock     models.Shock          `json:"shock"`
	Detail    []models.DetailRow    `json:"detail"`
	Aggregate []models.AggregateRow `json:"aggregate"`
	Totals    Totals                `json:"totals"`
	TopLosers []models.DetailRow    `json:"top_losers"`
}

// ScenarioInfo lists one scenario available to POST /api/v1/stress.
type ScenarioInfo struct {
	Name        string       `json:"name"`
	Kind        string       `json:"kind"` // "synthetic" or "historical"
	Description string       `json:"description"`
	Start       string       `json:"start,omitempty"`
	End         string       `json:"end,omitempty"`
	Shock       models.Shock `json:"shock,omitempty"`
}

// SummaryRequest is the body for POST /api/v1/summary. Null entries are
// treated as missing; an empty series summarizes to zeros.
type SummaryRequest struct {
	PnL          []*float64 `json:"pnl" validate:"required"`
	ScalePerYear int        `json:"scale_per_year,omitempty" validate:"gte=0"`
}

func (s *Server) handleScenarios(w http.ResponseWriter, r *http.Request) {
	out := []ScenarioInfo{{
		Name:        PresetSynthetic,
		Kind:        "synthetic",
		Description: "Parallel shift: UST +150bp, IG +150/+200bp, HY +150/+400bp",
		Shock:       scenario.SynthParallel(),
	}}
	for _, p := range scenario.Presets() {
		out = append(out, ScenarioInfo{
			Name:        p.Name,
			Kind:        "historical",
			Description: p.Description,
			Start:       p.Start,
			End:         p.End,
		})
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: out})
}

func (s *Server) handleStress(w http.ResponseWriter, r *http.Request) {
	var req StressRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	name, shock, win, err := s.resolveShock(req)
	if err != nil {
		writeError(w, statusFor(err), err.Error())
		return
	}

	positions := portfolio.Normalize(toPositions(req.Positions))
	result := stress.Run(positions, shock)
	rep := report.New(name, shock, result)

	topN := req.TopN
	if topN == 0 {
		topN = s.cfg.Stress.TopN
	}
	if topN <= 0 {
		topN = report.DefaultTopN
	}

	resp := StressResponse{
		RunID:     rep.RunID,
		Scenario:  name,
		Window:    win,
		Shock:     shock,
		Detail:    result.Detail,
		Aggregate: result.Aggregate,
		Totals: Totals{
			MV:     result.TotalMV(),
			PnL:    result.TotalPnL(),
			PnLPct: result.TotalPnLPct(),
		},
		TopLosers: result.TopLosers(topN),
	}
	s.log.Info("stress run", "run_id", rep.RunID, "scenario", name,
		"positions", len(positions), "total_pnl", resp.Totals.PnL)
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: resp})
}

// resolveShock picks the scenario named by the request.
func (s *Server) resolveShock(req StressRequest) (string, models.Shock, *WindowInfo, error) {
	if (req.Start == "") != (req.End == "") {
		return "", nil, nil, errBadRequest("start and end must be given together")
	}
	selectors := 0
	for _, set := range []bool{req.Preset != "", len(req.Shock) > 0, req.Start != ""} {
		if set {
			selectors++
		}
	}
	if selectors != 1 {
		return "", nil, nil, errBadRequest("exactly one of preset, shock or start/end is required")
	}

	switch {
	case len(req.Shock) > 0:
		shock := make(models.Shock, len(req.Shock))
		for b, v := range req.Shock {
			key := models.NormalizeBucket(b)
			if _, dup := shock[key]; dup {
				return "", nil, nil, errBadRequest(fmt.Sprintf("duplicate bucket %q in shock", key))
			}
			shock[key] = v
		}
		return "custom", shock, nil, nil

	case strings.EqualFold(req.Preset, PresetSynthetic):
		return PresetSynthetic, scenario.SynthParallel(), nil, nil
	}

	ts, err := s.marketHistory()
	if err != nil {
		return "", nil, nil, err
	}

	var (
		name  string
		shock models.Shock
		win   scenario.Window
	)
	if req.Preset != "" {
		name = req.Preset
		shock, win, err = scenario.HistoricPreset(ts, req.Preset)
	} else {
		name = "window"
		shock, win, err = scenario.ParseWindow(ts, req.Start, req.End)
	}
	if err != nil {
		return "", nil, nil, err
	}
	if win.Clamped {
		s.log.Warn("historical window clamped to data coverage", "scenario", name, "window", win.String())
	}
	return name, shock, &WindowInfo{
		RequestedStart: win.RequestedStart.Format(scenario.DateLayout),
		RequestedEnd:   win.RequestedEnd.Format(scenario.DateLayout),
		EffectiveStart: win.EffectiveStart.Format(scenario.DateLayout),
		EffectiveEnd:   win.EffectiveEnd.Format(scenario.DateLayout),
		BusinessDays:   win.BusinessDays(),
		Clamped:        win.Clamped,
	}, nil
}

// marketHistory returns the cached FRED history, reloading it from disk
// after historyTTL.
func (s *Server) marketHistory() (*models.TimeSeries, error) {
	if v, ok := s.history.Get(historyKey); ok {
		return v.(*models.TimeSeries), nil
	}
	ts, err := s.loadHistory()
	if err != nil {
		return nil, err
	}
	s.history.Set(historyKey, ts)
	return ts, nil
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	var req SummaryRequest
	if err := s.decodeAndValidate(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	series := make([]float64, len(req.PnL))
	for i, v := range req.PnL {
		if v == nil {
			series[i] = math.NaN()
			continue
		}
		series[i] = *v
	}
	scale := req.ScalePerYear
	if scale == 0 {
		scale = s.cfg.Stress.ScalePerYear
	}
	writeJSON(w, http.StatusOK, APIResponse{Success: true, Data: metrics.Summarize(series, scale)})
}

// badRequestError marks request-shape problems found after validation.
type badRequestError struct{ msg string }

func (e *badRequestError) Error() string { return e.msg }

func errBadRequest(msg string) error { return &badRequestError{msg: msg} }

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	var bad *badRequestError
	switch {
	case errors.As(err, &bad),
		errors.Is(err, scenario.ErrUnknownPreset):
		return http.StatusBadRequest
	case errors.Is(err, scenario.ErrOutsideCoverage),
		errors.Is(err, scenario.ErrEmptyWindow):
		return http.StatusUnprocessableEntity
	case errors.Is(err, marketdata.ErrCacheNotFound):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}
