package models

import (
	"sort"
	"strings"
)

// DefaultBucket is the bucket assigned to positions with a blank bucket label.
const DefaultBucket = "GEN"

// NormalizeBucket trims a bucket label and maps a blank label to DefaultBucket.
func NormalizeBucket(b string) string {
	b = strings.TrimSpace(b)
	if b == "" {
		return DefaultBucket
	}
	return b
}

// --- Portfolio input ---

// AssetPosition is one row of portfolio input. Optional sensitivities are
// zero when the source omits them; Bucket is already trimmed and defaulted.
type AssetPosition struct {
	Asset     string  `json:"asset"      yaml:"asset"`
	MV        float64 `json:"mv"         yaml:"mv"`
	Duration  float64 `json:"duration"   yaml:"duration"`
	Convexity float64 `json:"convexity"  yaml:"convexity"`
	SpreadDur float64 `json:"spread_dur" yaml:"spread_dur"`
	Bucket    string  `json:"bucket"     yaml:"bucket"`
}

// --- Shock definition ---

// BucketShock is the parallel shift applied to one bucket, in basis points.
type BucketShock struct {
	DyBP float64 `json:"dy_bp" yaml:"dy_bp"` // rate shift
	DsBP float64 `json:"ds_bp" yaml:"ds_bp"` // spread shift
}

// Shock maps a bucket label to its shift.
type Shock map[string]BucketShock

// For returns the shift for bucket. Unknown buckets get a zero shift.
func (s Shock) For(bucket string) BucketShock {
	if bs, ok := s[bucket]; ok {
		return bs
	}
	return BucketShock{}
}

// Buckets returns the bucket labels in sorted order.
func (s Shock) Buckets() []string {
	out := make([]string, 0, len(s))
	for b := range s {
		out = append(out, b)
	}
	sort.Strings(out)
	return out
}

// Clone returns an independent copy of the shock.
func (s Shock) Clone() Shock {
	out := make(Shock, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// --- Stress output ---

// DetailRow is the stress result for a single position.
type DetailRow struct {
	Asset     string  `json:"asset"`
	Bucket    string  `json:"bucket"`
	MV        float64 `json:"mv"`
	PnLRates  float64 `json:"pnl_rates"`
	PnLSpread float64 `json:"pnl_spread"`
	PnL       float64 `json:"pnl"`
	DV01      float64 `json:"dv01"`
	CS01      float64 `json:"cs01"`
	DyBP      float64 `json:"dy_bp"`
	DsBP      float64 `json:"ds_bp"`
}

// AggregateRow holds per-bucket sums. PnLPct is nil when MV is zero.
type AggregateRow struct {
	Bucket    string   `json:"bucket"`
	MV        float64  `json:"mv"`
	PnL       float64  `json:"pnl"`
	PnLRates  float64  `json:"pnl_rates"`
	PnLSpread float64  `json:"pnl_spread"`
	DV01      float64  `json:"dv01"`
	CS01      float64  `json:"cs01"`
	PnLPct    *float64 `json:"pnl_pct"`
}

// StressResult bundles the detail table (input order) and the aggregate
// table (ascending by PnL).
type StressResult struct {
	Detail    []DetailRow    `json:"detail"`
	Aggregate []AggregateRow `json:"aggregate"`
}

// TotalMV sums market value across all buckets.
func (r StressResult) TotalMV() float64 {
	var sum float64
	for _, a := range r.Aggregate {
		sum += a.MV
	}
	return sum
}

// TotalPnL sums P&L across all buckets.
func (r StressResult) TotalPnL() float64 {
	var sum float64
	for _, a := range r.Aggregate {
		sum += a.PnL
	}
	return sum
}

// TotalPnLPct returns total P&L over total market value, or nil for a zero
// market value.
func (r StressResult) TotalPnLPct() *float64 {
	mv := r.TotalMV()
	if mv == 0 {
		return nil
	}
	pct := r.TotalPnL() / mv
	return &pct
}

// TopLosers returns up to n detail rows with the lowest P&L, worst first.
// The receiver is left untouched.
func (r StressResult) TopLosers(n int) []DetailRow {
	rows := make([]DetailRow, len(r.Detail))
	copy(rows, r.Detail)
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].PnL < rows[j].PnL })
	if n >= 0 && n < len(rows) {
		rows = rows[:n]
	}
	return rows
}

// --- Metrics ---

// Summary holds annualized statistics of a P&L series.
type Summary struct {
	MeanPA      float64 `json:"mean_pa"`
	VolPA       float64 `json:"vol_pa"`
	Sharpe      float64 `json:"sharpe"`
	MaxDrawdown float64 `json:"max_drawdown"`
}
