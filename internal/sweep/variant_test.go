package sweep

import (
	"testing"

	"github.com/banshee-data/trackfind/internal/config"
	"github.com/stretchr/testify/require"
)

func ptr(v float64) *float64 { return &v }

func TestExpandGridNoAxesReturnsBase(t *testing.T) {
	base := &config.FinderConfig{Chi2Cut: ptr(10)}
	variants := ExpandGrid(base, nil)
	require.Len(t, variants, 1)
	require.Equal(t, "base", variants[0].Name)
	require.Equal(t, 10.0, *variants[0].Config.Chi2Cut)
}

func TestExpandGridSingleAxisProducesOneVariantPerValue(t *testing.T) {
	base := &config.FinderConfig{Chi2Cut: ptr(10)}
	axis := ParamAxis{
		Name:   "chi2_cut",
		Values: []float64{5, 10, 15},
		Apply:  func(cfg *config.FinderConfig, v float64) { cfg.Chi2Cut = ptr(v) },
	}
	variants := ExpandGrid(base, []ParamAxis{axis})
	require.Len(t, variants, 3)
	for i, want := range []float64{5, 10, 15} {
		require.Equal(t, want, *variants[i].Config.Chi2Cut)
		require.Contains(t, variants[i].Name, "chi2_cut=")
	}
	// base is untouched by the expansion
	require.Equal(t, 10.0, *base.Chi2Cut)
}

func TestExpandGridCartesianProductOfTwoAxes(t *testing.T) {
	base := &config.FinderConfig{}
	axes := []ParamAxis{
		{Name: "nsigma", Values: []float64{2, 3}, Apply: func(cfg *config.FinderConfig, v float64) { cfg.NSigma = ptr(v) }},
		{Name: "chi2_cut", Values: []float64{10, 20}, Apply: func(cfg *config.FinderConfig, v float64) { cfg.Chi2Cut = ptr(v) }},
	}
	variants := ExpandGrid(base, axes)
	require.Len(t, variants, 4)

	seen := map[string]bool{}
	for _, v := range variants {
		seen[v.Name] = true
		require.NotNil(t, v.Config.NSigma)
		require.NotNil(t, v.Config.Chi2Cut)
	}
	require.Len(t, seen, 4)
}
