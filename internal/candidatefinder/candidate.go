package candidatefinder

import (
	"github.com/banshee-data/trackfind/internal/event"
	"github.com/banshee-data/trackfind/internal/trackstate"
)

// candidate is one live branch of a seed's beam search (spec.md §4.8).
// Beams are slices of these, grown and pruned step by step; nothing
// here is shared between branches after clone.
type candidate struct {
	state *trackstate.State
	hots  []event.HitOnTrack

	chi2        float64
	nFoundHits  int
	nMissedHits int
	consecHoles int

	seedType int
	label    int
}

func (c *candidate) clone() *candidate {
	cp := *c
	cp.state = c.state.Clone()
	cp.hots = append([]event.HitOnTrack(nil), c.hots...)
	return &cp
}

// extend returns a new candidate with a found hit appended, its chi²
// accumulated and its consecutive-hole run reset (spec.md §4.8.4).
func (c *candidate) extend(updated *trackstate.State, layerID, hitIdx int, chi2 float64) *candidate {
	next := c.clone()
	next.state = updated
	next.hots = append(next.hots, event.HitOnTrack{Layer: int32(layerID), Index: int32(hitIdx)})
	next.nFoundHits++
	next.chi2 += chi2
	next.consecHoles = 0
	return next
}

// miss returns a new candidate with a missed-hit marker appended, or
// nil if doing so would exceed the configured hole caps, in which case
// the candidate is dropped rather than emitted (spec.md §4.8.4).
func (c *candidate) miss(layerID int, maxConsecHoles, maxHolesPerCand int) *candidate {
	next := c.clone()
	next.hots = append(next.hots, event.HitOnTrack{Layer: int32(layerID), Index: event.HitMissed})
	next.consecHoles++
	next.nMissedHits++
	if next.consecHoles > maxConsecHoles || next.nMissedHits > maxHolesPerCand {
		return nil
	}
	return next
}
