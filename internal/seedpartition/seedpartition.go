// Package seedpartition classifies seeds into one of the detector's
// five η-regions and assigns a sort score so seeds in the same region
// are processed together (spec.md §4.7).
package seedpartition

import (
	"math"

	"github.com/banshee-data/trackfind/internal/geometry"
	"github.com/banshee-data/trackfind/internal/trackstate"
)

// SeedType ranks a seed by kinematics, assigned once up front and
// reused by both scoring and per-iteration configuration (spec.md
// §4.8.5).
type SeedType int

const (
	SeedTypeHighPtCentral SeedType = 1
	SeedTypeLowPtEndcap   SeedType = 2
	SeedTypeLowPtBarrel   SeedType = 3
	SeedTypeOther         SeedType = 4
)

// AssignSeedType implements spec.md §4.8.5's exact ordering of checks.
func AssignSeedType(pt, eta float64) SeedType {
	absEta := math.Abs(eta)
	switch {
	case pt > 2.0 && absEta < 1.5:
		return SeedTypeHighPtCentral
	case pt < 0.9 && absEta > 0.9:
		return SeedTypeLowPtEndcap
	case pt < 0.9 && absEta <= 0.9:
		return SeedTypeLowPtBarrel
	default:
		return SeedTypeOther
	}
}

// Classification is the per-seed output of Classify: its region and
// the sort score that packs seeds first by region, then by η within
// it (spec.md §4.7 step 4).
type Classification struct {
	Region    geometry.Region
	SortScore float64
}

// Classify implements spec.md §4.7's region-decision tree. outerEta is
// η evaluated at the seed's outermost hit, per the spec's note that
// region assignment uses the outermost-hit η rather than the
// momentum-direction η because short, curved seeds make the latter
// unreliable.
func Classify(ti *geometry.TrackerInfo, state *trackstate.State, outerEta float64, bFieldTesla float64) Classification {
	_, _, pz := state.Momentum()
	zDirPos := pz > 0

	outerBrl := ti.OuterBarrelLayer()
	tecFirst, haveTec := ti.FirstEndcapLayer(zDirPos)

	var zAtOuterBrl float64
	if state.CanReachRadius(outerBrl.ROut, bFieldTesla) {
		zAtOuterBrl, _ = state.ZAtR(outerBrl.ROut, bFieldTesla)
	} else {
		maxR := state.MaxReachRadius(bFieldTesla)
		zAtOuterBrl, _ = state.ZAtR(maxR, bFieldTesla)
	}

	missesFirstTec := true
	if haveTec {
		if zDirPos {
			missesFirstTec = zAtOuterBrl < tecFirst.ZMin
		} else {
			missesFirstTec = zAtOuterBrl > tecFirst.ZMax
		}
	}

	var region geometry.Region
	switch {
	case missesFirstTec:
		region = geometry.RegionBarrel
	case reachesInnerTransitionLayer(ti, state, bFieldTesla):
		if zDirPos {
			region = geometry.RegionTransitionPos
		} else {
			region = geometry.RegionTransitionNeg
		}
	default:
		if zDirPos {
			region = geometry.RegionEndcapPos
		} else {
			region = geometry.RegionEndcapNeg
		}
	}

	score := 5*(float64(region)-2) + outerEta
	return Classification{Region: region, SortScore: score}
}

// reachesInnerTransitionLayer tests the two named pivot layers from
// spec.md §4.7: innermost TIB (layer 4) and innermost TOB (layer 10).
func reachesInnerTransitionLayer(ti *geometry.TrackerInfo, state *trackstate.State, bFieldTesla float64) bool {
	for _, id := range []int{geometry.LayerInnermostTIB, geometry.LayerInnermostTOB} {
		l, ok := ti.Layer(id)
		if !ok {
			continue
		}
		if !state.CanReachRadius(l.ROut, bFieldTesla) {
			continue
		}
		z, ok := state.ZAtR(l.ROut, bFieldTesla)
		if ok && l.IsWithinZLimits(z) {
			return true
		}
	}
	return false
}
