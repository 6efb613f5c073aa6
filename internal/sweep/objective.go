package sweep

import "github.com/banshee-data/trackfind/internal/event"

// Weights scores a swept variant's outcome. Positive FoundHits rewards
// more hits picked up; negative Chi2 penalizes poorly-fit candidates,
// mirroring the teacher's sign convention in ObjectiveWeights.
type Weights struct {
	FoundHits float64 `json:"found_hits"`
	Chi2      float64 `json:"chi2"`
}

// DefaultWeights favors more found hits over chi2 quality by two
// orders of magnitude, since chi2 accumulates across every hit on a
// track while found-hit count does not.
func DefaultWeights() Weights {
	return Weights{FoundHits: 1.0, Chi2: -0.01}
}

// Metrics summarizes one variant's run over an event's candidate
// tracks.
type Metrics struct {
	NTracks        int
	TotalFoundHits int
	TotalChi2      float64
	Score          float64
}

// ScoreEvent sums found-hits and chi2 across ev.CandidateTracks and
// combines them into a single scalar score via w.
func ScoreEvent(ev *event.Event, w Weights) Metrics {
	var m Metrics
	m.NTracks = len(ev.CandidateTracks)
	for _, tr := range ev.CandidateTracks {
		m.TotalFoundHits += tr.NFoundHits()
		m.TotalChi2 += tr.Chi2
	}
	m.Score = w.FoundHits*float64(m.TotalFoundHits) + w.Chi2*m.TotalChi2
	return m
}
