package main

import (
	"math"
	"testing"

	"github.com/banshee-data/trackfind/internal/event"
	"github.com/banshee-data/trackfind/internal/geometry"
	"github.com/banshee-data/trackfind/internal/propagator"
	"github.com/banshee-data/trackfind/internal/seedpartition"
	"github.com/banshee-data/trackfind/internal/trackstate"
	"github.com/stretchr/testify/require"
)

func loadGeom(t *testing.T) *geometry.TrackerInfo {
	t.Helper()
	ti, err := geometry.Load("../../testdata/geometry.cms2017.json")
	require.NoError(t, err)
	return ti
}

// regionOf must agree with seedpartition.Classify exactly: it is only
// ever a thin wrapper that supplies the outer-hit η.
func TestRegionOfAgreesWithClassify(t *testing.T) {
	ti := loadGeom(t)

	flat := trackstate.New(0, 0, 0, 0.1, 0.1, math.Pi/2, trackstate.Positive, 1e-3)
	steep := trackstate.New(0, 0, 0, 0.1, 0.1, 0.2, trackstate.Positive, 1e-3)

	ev := event.New(2)
	ev.LayerHits[0] = []event.Hit{{Layer: 0, X: 1, Y: 0, Z: 0}}
	ev.LayerHits[1] = []event.Hit{{Layer: 1, X: 1, Y: 1, Z: 30}}

	cases := []struct {
		name  string
		state *trackstate.State
		hots  []event.HitOnTrack
	}{
		{"barrel, with outer hit", flat, []event.HitOnTrack{{Layer: 0, Index: 0}, {Layer: 1, Index: 0}}},
		{"steep, with outer hit", steep, []event.HitOnTrack{{Layer: 1, Index: 0}}},
		{"no found hits falls back to state eta", flat, []event.HitOnTrack{{Layer: 0, Index: event.HitMissed}}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			seed := event.Track{State: tc.state, Hots: tc.hots}

			got := regionOf(ti, ev, seed)

			want := seedpartition.Classify(ti, tc.state, outerHitEta(ev, seed), propagator.BFieldTesla).Region
			require.Equal(t, want, got)
		})
	}
}

func TestOuterHitEtaUsesLastFoundHit(t *testing.T) {
	ev := event.New(2)
	ev.LayerHits[0] = []event.Hit{{Layer: 0, X: 1, Y: 0, Z: 0}}
	ev.LayerHits[1] = []event.Hit{{Layer: 1, X: 1, Y: 1, Z: 50}}

	state := trackstate.New(0, 0, 0, 0.1, 0.1, math.Pi/2, trackstate.Positive, 1e-3)
	seed := event.Track{
		State: state,
		Hots: []event.HitOnTrack{
			{Layer: 0, Index: 0},
			{Layer: 1, Index: event.HitMissed},
		},
	}

	got := outerHitEta(ev, seed)
	require.Equal(t, ev.LayerHits[0][0].Eta(), got)
}

func TestOuterHitEtaFallsBackToStateEta(t *testing.T) {
	ev := event.New(1)
	state := trackstate.New(0, 0, 0, 0.1, 0.1, math.Pi/2, trackstate.Positive, 1e-3)
	seed := event.Track{State: state}

	require.Equal(t, state.Eta(), outerHitEta(ev, seed))
}
