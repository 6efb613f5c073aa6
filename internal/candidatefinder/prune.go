package candidatefinder

import (
	"sort"

	"github.com/banshee-data/trackfind/internal/event"
)

// prune keeps at most maxCand candidates: partial-sort descending by
// found-hit count, tiebreak ascending by χ², then truncate (spec.md
// §4.8.2). The sort runs over event.IdxChi2Entry, the transient
// per-layer sort surrogate spec.md §3 names for this step, rather than
// the candidates themselves, so the comparator only ever touches the
// small fixed set of fields a ranking decision needs.
func prune(cands []*candidate, maxCand int) []*candidate {
	entries := make([]event.IdxChi2Entry, len(cands))
	for i, c := range cands {
		entries[i] = idxChi2EntryFor(c, i)
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].NHits != entries[j].NHits {
			return entries[i].NHits > entries[j].NHits
		}
		return entries[i].Chi2 < entries[j].Chi2
	})

	if maxCand >= 0 && len(entries) > maxCand {
		entries = entries[:maxCand]
	}

	out := make([]*candidate, len(entries))
	for i, e := range entries {
		out[i] = cands[e.CandIdx]
	}
	return out
}

// idxChi2EntryFor builds the sort surrogate for one candidate, its
// CandIdx recording the candidate's position in the beam being pruned
// so the sorted entries can be mapped back afterwards.
func idxChi2EntryFor(c *candidate, candIdx int) event.IdxChi2Entry {
	hitIdx := event.HitMissed
	if n := len(c.hots); n > 0 {
		hitIdx = int(c.hots[n-1].Index)
	}
	var pt float64
	if c.state != nil {
		pt = c.state.PT()
	}
	return event.IdxChi2Entry{
		CandIdx:  candIdx,
		HitIdx:   hitIdx,
		NHits:    c.nFoundHits,
		NHoles:   c.nMissedHits,
		SeedType: c.seedType,
		Pt:       pt,
		Chi2:     c.chi2,
	}
}
