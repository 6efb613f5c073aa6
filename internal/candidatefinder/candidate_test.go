package candidatefinder

import (
	"math"
	"testing"

	"github.com/banshee-data/trackfind/internal/event"
	"github.com/banshee-data/trackfind/internal/trackstate"
	"github.com/stretchr/testify/require"
)

func baseCandidate() *candidate {
	return &candidate{
		state:    trackstate.New(0, 0, 0, 0.1, 0, math.Pi/2, trackstate.Positive, 1e-3),
		seedType: 1,
		label:    7,
	}
}

func TestCloneIsIndependent(t *testing.T) {
	c := baseCandidate()
	c.hots = []event.HitOnTrack{{Layer: 0, Index: 1}}
	cp := c.clone()
	cp.hots[0].Index = 99
	cp.state.X = 42
	require.Equal(t, int32(1), c.hots[0].Index)
	require.Equal(t, 0.0, c.state.X)
}

func TestExtendIncrementsFoundHitsAndResetsHoles(t *testing.T) {
	c := baseCandidate()
	c.consecHoles = 1
	updated := c.state.Clone()
	next := c.extend(updated, 3, 5, 2.5)
	require.Equal(t, 1, next.nFoundHits)
	require.Equal(t, 2.5, next.chi2)
	require.Equal(t, 0, next.consecHoles)
	require.Equal(t, []event.HitOnTrack{{Layer: 3, Index: 5}}, next.hots)
}

func TestMissIncrementsCountersAndDropsOverCap(t *testing.T) {
	c := baseCandidate()
	next := c.miss(2, 1, 2)
	require.NotNil(t, next)
	require.Equal(t, 1, next.consecHoles)
	require.Equal(t, 1, next.nMissedHits)

	dropped := next.miss(2, 1, 2)
	require.Nil(t, dropped) // consecHoles would become 2 > maxConsecHoles(1)
}
