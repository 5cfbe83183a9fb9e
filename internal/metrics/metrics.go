// Package metrics summarizes P&L time series into annualized statistics.
package metrics

import (
	"math"

	"github.com/seenimoa/openstress/pkg/models"
)

// DefaultScalePerYear is the number of trading days used to annualize.
const DefaultScalePerYear = 252

// ════════════════════════════════════════════════════════════════════
// Summary
// ════════════════════════════════════════════════════════════════════

// Summarize computes annualized mean, volatility, Sharpe ratio and maximum
// drawdown of a P&L series. NaN entries are treated as missing and dropped.
// An empty series yields a zero Summary. scalePerYear <= 0 means
// DefaultScalePerYear.
//
// The series is additive P&L, not returns: MaxDrawdown is the deepest fall
// of the cumulative P&L below its running peak, in the input's units.
func Summarize(pnl []float64, scalePerYear int) models.Summary {
	if scalePerYear <= 0 {
		scalePerYear = DefaultScalePerYear
	}

	series := DropMissing(pnl)
	if len(series) == 0 {
		return models.Summary{}
	}

	scale := float64(scalePerYear)
	mu := mean(series) * scale
	sigma := stddev(series) * math.Sqrt(scale)

	sharpe := 0.0
	if sigma > 0 {
		sharpe = mu / sigma
	}

	return models.Summary{
		MeanPA:      mu,
		VolPA:       sigma,
		Sharpe:      sharpe,
		MaxDrawdown: MaxDrawdown(series),
	}
}

// ────────────────────────────────────────────────────────────────────
// Drawdown
// ────────────────────────────────────────────────────────────────────

// Cumulative returns the running sum of the series.
func Cumulative(series []float64) []float64 {
	out := make([]float64, len(series))
	var sum float64
	for i, v := range series {
		sum += v
		out[i] = sum
	}
	return out
}

// Drawdowns returns cumulative P&L minus its running maximum at each point.
// Every value is <= 0.
func Drawdowns(series []float64) []float64 {
	cum := Cumulative(series)
	out := make([]float64, len(cum))
	peak := math.Inf(-1)
	for i, c := range cum {
		peak = math.Max(peak, c)
		out[i] = c - peak
	}
	return out
}

// MaxDrawdown returns the minimum of Drawdowns, 0 for an empty series.
func MaxDrawdown(series []float64) float64 {
	maxDD := 0.0
	for _, dd := range Drawdowns(series) {
		if dd < maxDD {
			maxDD = dd
		}
	}
	return maxDD
}

// ════════════════════════════════════════════════════════════════════
// Helpers
// ════════════════════════════════════════════════════════════════════

// DropMissing returns the series without NaN entries.
func DropMissing(series []float64) []float64 {
	out := make([]float64, 0, len(series))
	for _, v := range series {
		if !math.IsNaN(v) {
			out = append(out, v)
		}
	}
	return out
}

func mean(data []float64) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += v
	}
	return sum / float64(len(data))
}

func stddev(data []float64) float64 {
	if len(data) < 2 {
		return 0
	}
	m := mean(data)
	sumSq := 0.0
	for _, v := range data {
		diff := v - m
		sumSq += diff * diff
	}
	return math.Sqrt(sumSq / float64(len(data)-1)) // sample stddev
}
