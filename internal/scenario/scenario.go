// Package scenario builds bucketed shock definitions: synthetic parallel
// shifts, historical windows derived from FRED data, and custom YAML files.
package scenario

import "github.com/seenimoa/openstress/pkg/models"

// Bucket labels used by the built-in scenarios.
const (
	BucketUST = "UST"
	BucketIG  = "IG"
	BucketHY  = "HY"
)

// Canonical synthetic stress, in basis points.
const (
	DefaultRatesBP = 150.0
	DefaultIGBP    = 200.0
	DefaultHYBP    = 400.0
)

// SyntheticParallel builds a three-bucket shock. Every bucket shares the same
// rate shift: ratesBP when non-nil, otherwise ustBP. Treasuries carry no
// spread shift. Inputs are not validated.
func SyntheticParallel(ustBP, igBP, hyBP float64, ratesBP *float64) models.Shock {
	dy := ustBP
	if ratesBP != nil {
		dy = *ratesBP
	}
	return models.Shock{
		BucketUST: {DyBP: dy, DsBP: 0},
		BucketIG:  {DyBP: dy, DsBP: igBP},
		BucketHY:  {DyBP: dy, DsBP: hyBP},
	}
}

// SynthParallel returns the canonical preset: rates +150bp everywhere,
// IG spreads +200bp, HY spreads +400bp.
func SynthParallel() models.Shock {
	return SyntheticParallel(DefaultRatesBP, DefaultIGBP, DefaultHYBP, nil)
}
