package scenario

import (
	"fmt"
	"sort"
	"time"

	"github.com/seenimoa/openstress/pkg/models"
	"github.com/seenimoa/openstress/pkg/utils"
)

// Preset is a named historical stress window.
type Preset struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Start       string `json:"start"` // YYYY-MM-DD
	End         string `json:"end"`
}

// historicPresets holds the built-in historical windows.
var historicPresets = map[string]Preset{
	"covid2020": {
		Name:        "covid2020",
		Description: "Covid crash",
		Start:       "2020-02-20",
		End:         "2020-03-20",
	},
	"gfc2008": {
		Name:        "gfc2008",
		Description: "GFC, Lehman weeks",
		Start:       "2008-09-08",
		End:         "2008-10-10",
	},
	"energy2022": {
		Name:        "energy2022",
		Description: "Energy and inflation shock",
		Start:       "2022-06-01",
		End:         "2022-10-01",
	},
}

// DefaultPreset is used by the CLI when no preset is given.
const DefaultPreset = "covid2020"

// PresetNames returns the historical preset names in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(historicPresets))
	for n := range historicPresets {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Presets returns all historical presets sorted by name.
func Presets() []Preset {
	out := make([]Preset, 0, len(historicPresets))
	for _, n := range PresetNames() {
		out = append(out, historicPresets[n])
	}
	return out
}

// LookupPreset returns the preset registered under name.
func LookupPreset(name string) (Preset, error) {
	p, ok := historicPresets[name]
	if !ok {
		return Preset{}, fmt.Errorf("%w: %s", ErrUnknownPreset, name)
	}
	return p, nil
}

// Bounds parses the preset window.
func (p Preset) Bounds() (start, end time.Time, err error) {
	if start, err = utils.ParseDate(p.Start); err != nil {
		return start, end, fmt.Errorf("preset %s start: %w", p.Name, err)
	}
	if end, err = utils.ParseDate(p.End); err != nil {
		return start, end, fmt.Errorf("preset %s end: %w", p.Name, err)
	}
	return start, end, nil
}

// HistoricPreset derives the shock for a named historical window.
func HistoricPreset(ts *models.TimeSeries, name string) (models.Shock, Window, error) {
	p, err := LookupPreset(name)
	if err != nil {
		return nil, Window{}, err
	}
	start, end, err := p.Bounds()
	if err != nil {
		return nil, Window{}, err
	}
	return HistoricWindow(ts, start, end)
}
