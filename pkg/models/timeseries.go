package models

import (
	"sort"
	"time"
)

// Column names of the cached FRED history. Yields and spreads are in percent.
const (
	ColDGS2  = "DGS2"   // 2Y Treasury constant maturity
	ColDGS10 = "DGS10"  // 10Y Treasury constant maturity
	ColIGOAS = "IG_OAS" // ICE BofA US Corporate Index OAS
	ColHYOAS = "HY_OAS" // ICE BofA US High Yield Index OAS
)

// SeriesPoint is a single dated value of one series.
type SeriesPoint struct {
	Date  time.Time `json:"date"`
	Value float64   `json:"value"`
}

// Observation is one dated row of a multi-column time series. A column
// missing from Values has no observation on that date.
type Observation struct {
	Date   time.Time          `json:"date"`
	Values map[string]float64 `json:"values"`
}

// Value returns the column value and whether it was observed.
func (o Observation) Value(col string) (float64, bool) {
	v, ok := o.Values[col]
	return v, ok
}

// TimeSeries is a date-indexed table of numeric columns.
type TimeSeries struct {
	Columns      []string      `json:"columns"`
	Observations []Observation `json:"observations"`
}

// HasColumn reports whether col is part of the series.
func (ts *TimeSeries) HasColumn(col string) bool {
	for _, c := range ts.Columns {
		if c == col {
			return true
		}
	}
	return false
}

// Len returns the number of observations.
func (ts *TimeSeries) Len() int { return len(ts.Observations) }

// SortByDate orders observations ascending by date.
func (ts *TimeSeries) SortByDate() {
	sort.SliceStable(ts.Observations, func(i, j int) bool {
		return ts.Observations[i].Date.Before(ts.Observations[j].Date)
	})
}

// Span returns the first and last observation dates. ok is false for an
// empty series.
func (ts *TimeSeries) Span() (first, last time.Time, ok bool) {
	if len(ts.Observations) == 0 {
		return time.Time{}, time.Time{}, false
	}
	first = ts.Observations[0].Date
	last = first
	for _, o := range ts.Observations[1:] {
		if o.Date.Before(first) {
			first = o.Date
		}
		if o.Date.After(last) {
			last = o.Date
		}
	}
	return first, last, true
}

// Merge outer-joins a single column into the series by date. Dates not yet
// present are appended; callers sort afterwards.
func (ts *TimeSeries) Merge(col string, points map[time.Time]float64) {
	if !ts.HasColumn(col) {
		ts.Columns = append(ts.Columns, col)
	}
	index := make(map[time.Time]int, len(ts.Observations))
	for i, o := range ts.Observations {
		index[o.Date] = i
	}
	for d, v := range points {
		if i, ok := index[d]; ok {
			ts.Observations[i].Values[col] = v
			continue
		}
		ts.Observations = append(ts.Observations, Observation{
			Date:   d,
			Values: map[string]float64{col: v},
		})
		index[d] = len(ts.Observations) - 1
	}
}
