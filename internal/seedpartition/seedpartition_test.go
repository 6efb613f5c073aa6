package seedpartition

import (
	"math"
	"testing"

	"github.com/banshee-data/trackfind/internal/geometry"
	"github.com/banshee-data/trackfind/internal/trackstate"
	"github.com/stretchr/testify/require"
)

const bField = 3.8

func loadGeom(t *testing.T) *geometry.TrackerInfo {
	t.Helper()
	ti, err := geometry.Load("../../testdata/geometry.cms2017.json")
	require.NoError(t, err)
	return ti
}

func TestAssignSeedTypeExactOrdering(t *testing.T) {
	require.Equal(t, SeedTypeHighPtCentral, AssignSeedType(3.0, 0.5))
	require.Equal(t, SeedTypeLowPtEndcap, AssignSeedType(0.5, 1.2))
	require.Equal(t, SeedTypeLowPtBarrel, AssignSeedType(0.5, 0.5))
	require.Equal(t, SeedTypeOther, AssignSeedType(1.5, 2.0))
}

func TestClassifyHighPtFlatTrackStaysBarrel(t *testing.T) {
	ti := loadGeom(t)
	s := trackstate.New(0, 0, 0, 0.1, 0.1, math.Pi/2, trackstate.Positive, 1e-3)
	c := Classify(ti, s, 0.0, bField)
	require.Equal(t, geometry.RegionBarrel, c.Region)
}

func TestClassifySteepTrackReachesEndcap(t *testing.T) {
	ti := loadGeom(t)
	// theta close to 0: nearly along +z, reaches the positive endcap well
	// before the outer barrel layer's z-extent.
	s := trackstate.New(0, 0, 0, 0.1, 0.1, 0.2, trackstate.Positive, 1e-3)
	c := Classify(ti, s, 3.0, bField)
	require.Contains(t, []geometry.Region{geometry.RegionEndcapPos, geometry.RegionTransitionPos}, c.Region)
}

func TestClassifySortScoreOrdersByRegionThenEta(t *testing.T) {
	ti := loadGeom(t)
	flat := trackstate.New(0, 0, 0, 0.1, 0.1, math.Pi/2, trackstate.Positive, 1e-3)
	steep := trackstate.New(0, 0, 0, 0.1, 0.1, 0.2, trackstate.Positive, 1e-3)

	barrel := Classify(ti, flat, 0.0, bField)
	endcap := Classify(ti, steep, 3.0, bField)
	require.Less(t, barrel.SortScore, endcap.SortScore)
}
