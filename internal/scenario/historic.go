package scenario

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/seenimoa/openstress/pkg/models"
	"github.com/seenimoa/openstress/pkg/utils"
)

// DateLayout is the date format accepted for window bounds.
const DateLayout = utils.DateLayout

var (
	// ErrMissingColumn is returned when the history lacks a series needed to
	// derive a shock.
	ErrMissingColumn = errors.New("missing column in FRED cache")
	// ErrOutsideCoverage is returned when the requested window collapses after
	// clamping it to the data coverage.
	ErrOutsideCoverage = errors.New("requested window is outside data coverage")
	// ErrEmptyWindow is returned when the clamped window holds no usable data.
	ErrEmptyWindow = errors.New("no data in the selected window after resampling")
	// ErrUnknownPreset is returned for an unregistered historical preset.
	ErrUnknownPreset = errors.New("unknown preset")
)

// historicColumns are the series a historical shock is derived from.
var historicColumns = []string{models.ColDGS10, models.ColIGOAS, models.ColHYOAS}

// Window describes the requested and effective bounds of a historical shock.
type Window struct {
	RequestedStart time.Time `json:"requested_start"`
	RequestedEnd   time.Time `json:"requested_end"`
	EffectiveStart time.Time `json:"effective_start"`
	EffectiveEnd   time.Time `json:"effective_end"`
	Clamped        bool      `json:"clamped"` // effective bounds differ from the request
}

func (w Window) String() string {
	s := fmt.Sprintf("%s → %s", w.EffectiveStart.Format(DateLayout), w.EffectiveEnd.Format(DateLayout))
	if w.Clamped {
		s += fmt.Sprintf(" (requested %s → %s)", w.RequestedStart.Format(DateLayout), w.RequestedEnd.Format(DateLayout))
	}
	return s
}

// BusinessDays is the number of business days the shock spans, from the
// effective start up to the effective end.
func (w Window) BusinessDays() int {
	return utils.BusinessDaysBetween(w.EffectiveStart, w.EffectiveEnd)
}

// HistoricWindow derives a synthetic parallel shock from the change in the
// 10Y yield and the IG/HY OAS between the start and end of a window.
//
// The history is resampled to business days with forward fill, and the
// window is clamped to that coverage. The 10Y move becomes the common rate
// shift; OAS moves become the IG and HY spread shifts.
func HistoricWindow(ts *models.TimeSeries, start, end time.Time) (models.Shock, Window, error) {
	win := Window{RequestedStart: utils.Day(start), RequestedEnd: utils.Day(end)}

	if ts == nil {
		return nil, win, ErrOutsideCoverage
	}
	for _, c := range historicColumns {
		if !ts.HasColumn(c) {
			return nil, win, fmt.Errorf("%w: %s", ErrMissingColumn, c)
		}
	}

	obs := sortedObservations(ts)
	if len(obs) == 0 {
		return nil, win, ErrOutsideCoverage
	}

	covStart := utils.RollForward(utils.Day(obs[0].Date))
	covEnd := utils.RollBack(utils.Day(obs[len(obs)-1].Date))

	s0, s1 := win.RequestedStart, win.RequestedEnd
	if s0.Before(covStart) {
		s0 = covStart
	}
	if s1.After(covEnd) {
		s1 = covEnd
	}
	if !s0.Before(s1) {
		return nil, win, fmt.Errorf("%w: requested %s → %s, data covers %s → %s", ErrOutsideCoverage,
			win.RequestedStart.Format(DateLayout), win.RequestedEnd.Format(DateLayout),
			covStart.Format(DateLayout), covEnd.Format(DateLayout))
	}

	first, last := utils.RollForward(s0), utils.RollBack(s1)
	if first.After(last) {
		return nil, win, ErrEmptyWindow
	}
	win.EffectiveStart, win.EffectiveEnd = first, last
	win.Clamped = !first.Equal(win.RequestedStart) || !last.Equal(win.RequestedEnd)

	deltas := make(map[string]float64, len(historicColumns))
	for _, c := range historicColumns {
		v0, ok0 := valueAsOf(obs, c, first)
		v1, ok1 := valueAsOf(obs, c, last)
		if !ok0 || !ok1 {
			return nil, win, fmt.Errorf("%w: %s has no observation at %s or %s", ErrEmptyWindow, c,
				first.Format(DateLayout), last.Format(DateLayout))
		}
		deltas[c] = (v1 - v0) * 100 // percent → bp
	}

	dy := deltas[models.ColDGS10]
	return SyntheticParallel(dy, deltas[models.ColIGOAS], deltas[models.ColHYOAS], &dy), win, nil
}

// ParseWindow parses YYYY-MM-DD bounds and calls HistoricWindow.
func ParseWindow(ts *models.TimeSeries, start, end string) (models.Shock, Window, error) {
	s, err := utils.ParseDate(start)
	if err != nil {
		return nil, Window{}, fmt.Errorf("start: %w", err)
	}
	e, err := utils.ParseDate(end)
	if err != nil {
		return nil, Window{}, fmt.Errorf("end: %w", err)
	}
	return HistoricWindow(ts, s, e)
}

func sortedObservations(ts *models.TimeSeries) []models.Observation {
	obs := make([]models.Observation, len(ts.Observations))
	copy(obs, ts.Observations)
	sort.SliceStable(obs, func(i, j int) bool { return obs[i].Date.Before(obs[j].Date) })
	return obs
}

// valueAsOf returns the latest value of col observed on or before d.
func valueAsOf(obs []models.Observation, col string, d time.Time) (float64, bool) {
	// first index strictly after d
	i := sort.Search(len(obs), func(i int) bool { return utils.Day(obs[i].Date).After(d) })
	for i--; i >= 0; i-- {
		if v, ok := obs[i].Values[col]; ok {
			return v, true
		}
	}
	return 0, false
}
