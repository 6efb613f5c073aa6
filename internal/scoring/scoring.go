// Package scoring implements the final-ranking score formula
// (spec.md §4.8.3), kept as its own pure-function file per the
// expectation that the seed-type corrections will keep changing
// independently of the beam-search loop that calls it.
package scoring

import "math"

// Params are the configured constants the formula is built from.
type Params struct {
	ValidHitBonus     float64
	MissingHitPenalty float64
	MaxChi2ForRanking float64
}

// Score computes a candidate's final ranking score exactly as
// spec.md §4.8.3 enumerates it: a base term from found/missed hits and
// clamped chi², then one of five seed-type corrections.
func Score(p Params, seedType int, nFound, nMiss int, chi2 float64) float64 {
	clampedChi2 := math.Max(0, math.Min(chi2, p.MaxChi2ForRanking))
	base := p.ValidHitBonus*float64(nFound) - p.MissingHitPenalty*float64(nMiss) - clampedChi2

	nf := float64(nFound)
	if seedType == 2 {
		base -= 0.5 * p.ValidHitBonus * nf
	}
	if seedType == 2 || seedType == 3 {
		switch {
		case nFound <= 8:
			base -= 0.06 * p.ValidHitBonus * nf
		case nFound > 12:
			base += 0.08 * p.ValidHitBonus * nf
		}
	} else {
		switch {
		case nFound <= 8:
			base -= 0.15 * p.ValidHitBonus * nf
		case nFound > 12:
			base += 0.20 * p.ValidHitBonus * nf
		}
	}
	return base
}
