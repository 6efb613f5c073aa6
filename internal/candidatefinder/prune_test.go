package candidatefinder

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPruneOrdersByFoundHitsThenChi2(t *testing.T) {
	cands := []*candidate{
		{label: 1, nFoundHits: 2, chi2: 5},
		{label: 2, nFoundHits: 3, chi2: 9},
		{label: 3, nFoundHits: 3, chi2: 1},
	}
	got := prune(cands, 10)
	require.Equal(t, []int{3, 2, 1}, labelsOf(got))
}

func TestPruneTruncatesToMaxCand(t *testing.T) {
	cands := []*candidate{
		{label: 1, nFoundHits: 1, chi2: 1},
		{label: 2, nFoundHits: 2, chi2: 1},
		{label: 3, nFoundHits: 3, chi2: 1},
	}
	got := prune(cands, 2)
	require.Len(t, got, 2)
	require.Equal(t, []int{3, 2}, labelsOf(got))
}

func labelsOf(cands []*candidate) []int {
	out := make([]int, len(cands))
	for i, c := range cands {
		out[i] = c.label
	}
	return out
}
