// Package stress applies bucketed parallel rate and spread shocks to a
// fixed-income portfolio.
//
// Rates P&L uses a second-order Taylor expansion in yield (duration plus
// convexity); credit P&L uses spread duration only. Linear exposures
// (DV01, CS01) are reported per basis point and are not part of the P&L.
package stress

import "github.com/seenimoa/openstress/pkg/models"

// bpPerUnit converts basis points to decimal.
const bpPerUnit = 1e4

// PnLComponents returns the rates and spread P&L of one position for a shift
// of dyBP (yield) and dsBP (spread), both in basis points.
func PnLComponents(p models.AssetPosition, dyBP, dsBP float64) (rates, spread float64) {
	dy := dyBP / bpPerUnit
	ds := dsBP / bpPerUnit

	rates = -p.MV * (p.Duration*dy + 0.5*p.Convexity*dy*dy)
	spread = -p.MV * (p.SpreadDur * ds)
	return rates, spread
}

// PnLTotal returns the combined rates and spread P&L.
func PnLTotal(p models.AssetPosition, dyBP, dsBP float64) float64 {
	r, s := PnLComponents(p, dyBP, dsBP)
	return r + s
}

// DV01 is the price change per 1bp move in yield.
func DV01(p models.AssetPosition) float64 {
	return p.MV * p.Duration / bpPerUnit
}

// CS01 is the price change per 1bp move in spread.
func CS01(p models.AssetPosition) float64 {
	return p.MV * p.SpreadDur / bpPerUnit
}
