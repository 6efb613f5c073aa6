// Package event holds the per-event hit storage and track vectors
// that the candidate finder reads from and writes into (spec.md §3
// "Event"). Candidate growth is append-only and mutex-protected;
// everything else is built once, before the parallel phase, and
// shared read-only afterwards (spec.md §5).
package event

import (
	"sync"
	"sync/atomic"
)

// Event owns the per-layer hit vectors, the seed/candidate/fit track
// vectors, and the per-event counters for one collision event.
type Event struct {
	LayerHits [][]Hit

	SeedTracks      []Track
	CandidateTracks []Track
	FitTracks       []Track

	// SimTrackStates and CmsswTracks are optional reference track
	// vectors carried only when an event file's header requests them
	// (eventio.ExtraSimTrackStates / eventio.ExtraCmsswTracks); nil
	// otherwise.
	SimTrackStates []Track
	CmsswTracks    []Track

	// HitIterMasks is an optional per-layer, per-hit iteration bitmask,
	// index-parallel to LayerHits, carried only when an event file's
	// header requests it (eventio.ExtraHitIterMasks); nil otherwise.
	HitIterMasks [][]uint32

	mu sync.Mutex // guards CandidateTracks growth only

	// MCHitIDCounter is a monotonically increasing id source for
	// simulated hits; relaxed increments because the final value is a
	// statistic, not control (spec.md §5).
	MCHitIDCounter atomic.Int64

	// NanSillyPerLayer is a per-layer atomic bad-candidate counter.
	// original_source/Event.h carries this per layer rather than as one
	// per-event scalar; a single counter would blur which layer's
	// propagation/update step is actually degenerate.
	NanSillyPerLayer []atomic.Int64
}

// New builds an empty Event sized for nLayers layers.
func New(nLayers int) *Event {
	return &Event{
		LayerHits:        make([][]Hit, nLayers),
		NanSillyPerLayer: make([]atomic.Int64, nLayers),
	}
}

// CloneHits builds a fresh Event sharing no state with e: same
// per-layer hits, empty track vectors. Used by sweep to re-run the
// finder over the same input hits under a different FinderConfig
// without one variant's committed candidates leaking into the next.
func (e *Event) CloneHits() *Event {
	cp := New(len(e.LayerHits))
	for i, layer := range e.LayerHits {
		cp.LayerHits[i] = append([]Hit(nil), layer...)
	}
	return cp
}

// AddHit appends a hit to its owning layer and returns its index
// within that layer (its identity, per spec.md §3 "Hit").
func (e *Event) AddHit(h Hit) int {
	e.LayerHits[h.Layer] = append(e.LayerHits[h.Layer], h)
	return len(e.LayerHits[h.Layer]) - 1
}

// CommitCandidate appends a finished candidate to CandidateTracks.
// Locks are taken only here, at end-of-seed — O(number of seeds)
// acquisitions per event, not O(hits) (spec.md §5).
func (e *Event) CommitCandidate(t Track) {
	e.mu.Lock()
	e.CandidateTracks = append(e.CandidateTracks, t)
	e.mu.Unlock()
}

// RecordNanSilly bumps the bad-candidate counter for layer, the
// statistic spec.md §7 calls nan_n_silly_per_layer_count_.
func (e *Event) RecordNanSilly(layer int) {
	if layer < 0 || layer >= len(e.NanSillyPerLayer) {
		return
	}
	e.NanSillyPerLayer[layer].Add(1)
}

// NextMCHitID returns the next monotonically increasing simulated hit
// identifier.
func (e *Event) NextMCHitID() int64 {
	return e.MCHitIDCounter.Add(1)
}
