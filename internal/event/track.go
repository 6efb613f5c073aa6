package event

import "github.com/banshee-data/trackfind/internal/trackstate"

// Status bit layout: low 3 bits are independent flags, the next
// nibble holds the seed-type-for-ranking (spec.md §4.8.5), the one
// after that the production type. Composed by OR exactly as
// config.PropagationFlags is (Design Note "bitfield composition").
const (
	StatusFindable  uint32 = 1 << 0
	StatusStopped   uint32 = 1 << 1
	StatusDuplicate uint32 = 1 << 2

	seedTypeShift = 4
	seedTypeBits  = 0x7
	prodTypeShift = 8
	prodTypeBits  = 0x7
)

// Track is a TrackState plus the bookkeeping accumulated while it was
// built: running chi², running score, an integer label, the Status
// bitfield, and the ordered sequence of per-step outcomes (spec.md §3
// "Track").
type Track struct {
	State  *trackstate.State
	Chi2   float64
	Score  float64
	Label  int
	Status uint32
	Hots   []HitOnTrack
}

// LastHitIdx is the index of the last entry in Hots, or -1 if empty.
func (t *Track) LastHitIdx() int {
	return len(t.Hots) - 1
}

// NFoundHits counts entries with index ≥ 0 or the "invalid layer,
// count as found" sentinel. Invariant: NFoundHits() ≤ LastHitIdx()+1.
func (t *Track) NFoundHits() int {
	n := 0
	for _, h := range t.Hots {
		if h.Found() {
			n++
		}
	}
	return n
}

// NMissedHits counts entries recorded as a plain miss.
func (t *Track) NMissedHits() int {
	n := 0
	for _, h := range t.Hots {
		if h.Index == HitMissed {
			n++
		}
	}
	return n
}

// SeedType returns the seed-type-for-ranking packed into Status.
func (t *Track) SeedType() int {
	return int((t.Status >> seedTypeShift) & seedTypeBits)
}

// SetSeedType packs v into Status, replacing any previous value.
func (t *Track) SetSeedType(v int) {
	t.Status &^= seedTypeBits << seedTypeShift
	t.Status |= uint32(v&seedTypeBits) << seedTypeShift
}

// ProductionType returns the production-type classification packed
// into Status.
func (t *Track) ProductionType() int {
	return int((t.Status >> prodTypeShift) & prodTypeBits)
}

// SetProductionType packs v into Status, replacing any previous value.
func (t *Track) SetProductionType(v int) {
	t.Status &^= prodTypeBits << prodTypeShift
	t.Status |= uint32(v&prodTypeBits) << prodTypeShift
}

// IdxChi2Entry is a sortable surrogate for a candidate during one
// layer's branching step (spec.md §3 "IdxChi2List"). It exists
// transiently within the finder's loop and is never persisted.
type IdxChi2Entry struct {
	CandIdx  int
	HitIdx   int
	NHits    int
	NHoles   int
	SeedType int
	Pt       float64
	Chi2     float64
	Score    float64
}
