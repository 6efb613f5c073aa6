package event

import "math"

// Hit is an immutable 3D position measurement with its covariance, an
// opaque detector identifier, and the layer it was read from (spec.md
// §3 "Hit"). Identity within a layer is the hit's position in that
// layer's slice — callers address hits by (layer, index), never by
// pointer.
type Hit struct {
	Layer int
	DetID uint32

	X, Y, Z float64

	// Cov is the packed upper triangle of the 3x3 position covariance:
	// (xx, xy, xz, yy, yz, zz).
	Cov [6]float64
}

// Eta is the hit's pseudorapidity, used both to bucket it into a
// binindex.BinInfo and to seed region classification from a track's
// outermost hit (spec.md §4.2, §4.7).
func (h Hit) Eta() float64 {
	r := math.Hypot(h.X, h.Y)
	theta := math.Atan2(r, h.Z)
	return -math.Log(math.Tan(theta / 2))
}

// Sentinel HitOnTrack indices (spec.md §3 "HitOnTrack").
const (
	HitMissed            = -1 // slot traversed, no compatible hit found
	HitStopped           = -2 // candidate stopped before reaching this slot
	HitInvalidLayerFound = -9 // invalid layer for this seed, counted as found
)

// HitOnTrack identifies a hit by (layer, index), or carries one of the
// sentinel index values above. The i-th entry in a Track's sequence
// records the outcome of the i-th step of that seed's plan.
type HitOnTrack struct {
	Layer int32
	Index int32
}

// Found reports whether this entry counts toward nFoundHits: an
// actual hit, or the "invalid layer, count as found" sentinel.
func (h HitOnTrack) Found() bool {
	return h.Index >= 0 || h.Index == HitInvalidLayerFound
}
