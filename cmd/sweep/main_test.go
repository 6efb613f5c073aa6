package main

import (
	"math"
	"testing"

	"github.com/banshee-data/trackfind/internal/config"
	"github.com/banshee-data/trackfind/internal/event"
	"github.com/banshee-data/trackfind/internal/geometry"
	"github.com/banshee-data/trackfind/internal/trackstate"
	"github.com/stretchr/testify/require"
)

func loadGeom(t *testing.T) *geometry.TrackerInfo {
	t.Helper()
	ti, err := geometry.Load("../../testdata/geometry.cms2017.json")
	require.NoError(t, err)
	return ti
}

func TestBuildAxesSkipsEmptyRanges(t *testing.T) {
	axes := buildAxes(0, 0, 1, 0, 0, 1)
	require.Empty(t, axes)
}

func TestBuildAxesChi2AndMaxCand(t *testing.T) {
	axes := buildAxes(1, 3, 1, 10, 20, 5)
	require.Len(t, axes, 2)
	require.Equal(t, "chi2_cut", axes[0].Name)
	require.Equal(t, []float64{1, 2, 3}, axes[0].Values)
	require.Equal(t, "max_cand", axes[1].Name)
	require.Equal(t, []float64{10, 15, 20}, axes[1].Values)

	cfg := config.EmptyFinderConfig()
	axes[0].Apply(cfg, 2.5)
	require.Equal(t, 2.5, *cfg.Chi2Cut)
	axes[1].Apply(cfg, 12)
	require.Equal(t, 12, *cfg.MaxCand)
}

func TestBuildJobsClassifiesAndSkipsInvalidSeeds(t *testing.T) {
	ti := loadGeom(t)

	flat := trackstate.New(0, 0, 0, 0.1, 0.1, math.Pi/2, trackstate.Positive, 1e-3)
	invalid := trackstate.New(0, 0, 0, 0.1, 0.1, math.Pi/2, trackstate.Positive, 1e-3)
	invalid.Valid = false

	ev := event.New(1)
	ev.LayerHits[0] = []event.Hit{{Layer: 0, X: 1, Y: 0, Z: 0}}
	ev.SeedTracks = []event.Track{
		{State: flat, Hots: []event.HitOnTrack{{Layer: 0, Index: 0}}},
		{State: invalid},
		{State: nil},
	}

	jobs := buildJobs(ti, ev)
	require.Len(t, jobs, 1)
	require.Equal(t, flat, jobs[0].Seed)
}

func TestOuterHitEtaFallsBackToStateEta(t *testing.T) {
	ev := event.New(1)
	state := trackstate.New(0, 0, 0, 0.1, 0.1, math.Pi/2, trackstate.Positive, 1e-3)
	seed := event.Track{State: state}

	require.Equal(t, state.Eta(), outerHitEta(ev, seed))
}
