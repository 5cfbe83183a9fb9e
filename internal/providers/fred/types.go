package fred

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/seenimoa/openstress/pkg/models"
)

// missingValue is how FRED marks a date without an observation.
const missingValue = "."

type observationsResponse struct {
	ObservationStart string        `json:"observation_start"`
	ObservationEnd   string        `json:"observation_end"`
	Units            string        `json:"units"`
	Count            int           `json:"count"`
	Observations     []observation `json:"observations"`
}

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type seriesInfoResponse struct {
	Seriess []struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	} `json:"seriess"`
}

// points converts observations, skipping missing values.
func (r observationsResponse) points() ([]models.SeriesPoint, error) {
	out := make([]models.SeriesPoint, 0, len(r.Observations))
	for _, o := range r.Observations {
		raw := strings.TrimSpace(o.Value)
		if raw == "" || raw == missingValue {
			continue
		}
		d, err := parseFredDate(o.Date)
		if err != nil {
			return nil, err
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("observation %s: invalid value %q", o.Date, o.Value)
		}
		out = append(out, models.SeriesPoint{Date: d, Value: v})
	}
	return out, nil
}

func parseFredDate(s string) (time.Time, error) {
	for _, layout := range []string{
		"2006-01-02",
		"2006-01-02T15:04:05",
		time.RFC3339,
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid FRED date %q", s)
}
