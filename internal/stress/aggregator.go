package stress

import (
	"sort"

	"github.com/seenimoa/openstress/pkg/models"
)

// Run applies shock to every position and returns the detail table in input
// order together with the per-bucket aggregate sorted by P&L, worst first.
func Run(positions []models.AssetPosition, shock models.Shock) models.StressResult {
	detail := make([]models.DetailRow, 0, len(positions))
	for _, p := range positions {
		detail = append(detail, Apply(p, shock))
	}
	return models.StressResult{
		Detail:    detail,
		Aggregate: Aggregate(detail),
	}
}

// Apply computes the detail row of a single position.
func Apply(p models.AssetPosition, shock models.Shock) models.DetailRow {
	bucket := models.NormalizeBucket(p.Bucket)
	s := shock.For(bucket)
	rates, spread := PnLComponents(p, s.DyBP, s.DsBP)
	rates, spread = unsignedZero(rates), unsignedZero(spread)

	return models.DetailRow{
		Asset:     p.Asset,
		Bucket:    bucket,
		MV:        p.MV,
		PnLRates:  rates,
		PnLSpread: spread,
		PnL:       unsignedZero(rates + spread),
		DV01:      unsignedZero(DV01(p)),
		CS01:      unsignedZero(CS01(p)),
		DyBP:      s.DyBP,
		DsBP:      s.DsBP,
	}
}

// Aggregate groups detail rows by bucket and sums every numeric column.
// Rows are sorted ascending by P&L; equal P&L keeps first-seen bucket order.
func Aggregate(detail []models.DetailRow) []models.AggregateRow {
	totals := make(map[string]*models.AggregateRow)
	var order []string

	for _, d := range detail {
		acc, ok := totals[d.Bucket]
		if !ok {
			acc = &models.AggregateRow{Bucket: d.Bucket}
			totals[d.Bucket] = acc
			order = append(order, d.Bucket)
		}
		acc.MV += d.MV
		acc.PnL += d.PnL
		acc.PnLRates += d.PnLRates
		acc.PnLSpread += d.PnLSpread
		acc.DV01 += d.DV01
		acc.CS01 += d.CS01
	}

	out := make([]models.AggregateRow, 0, len(order))
	for _, b := range order {
		row := *totals[b]
		if row.MV != 0 {
			pct := row.PnL / row.MV
			row.PnLPct = &pct
		}
		out = append(out, row)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].PnL < out[j].PnL })
	return out
}

// unsignedZero maps -0 to 0 so unshocked rows never render as "-0".
func unsignedZero(v float64) float64 {
	if v == 0 {
		return 0
	}
	return v
}
