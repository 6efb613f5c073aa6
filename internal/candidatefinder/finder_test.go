package candidatefinder

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/banshee-data/trackfind/internal/config"
	"github.com/banshee-data/trackfind/internal/event"
	"github.com/banshee-data/trackfind/internal/geometry"
	"github.com/banshee-data/trackfind/internal/trackstate"
	"github.com/stretchr/testify/require"
)

const threeBarrelLayersGeometry = `{
  "layers": [
    {"layer_id": 0, "r_in": 9.9, "r_out": 10.0, "z_min": -50, "z_max": 50, "is_barrel": true},
    {"layer_id": 1, "r_in": 19.9, "r_out": 20.0, "z_min": -50, "z_max": 50, "is_barrel": true},
    {"layer_id": 2, "r_in": 29.9, "r_out": 30.0, "z_min": -50, "z_max": 50, "is_barrel": true}
  ],
  "regions": {
    "barrel_edge": 1.0,
    "transition_pos_lo": 1.0, "transition_pos_hi": 1.7,
    "transition_neg_lo": -1.7, "transition_neg_hi": -1.0,
    "endcap_outer_cut": 2.5
  }
}`

func loadThreeLayerGeometry(t *testing.T) *geometry.TrackerInfo {
	t.Helper()
	path := filepath.Join(t.TempDir(), "geom.json")
	require.NoError(t, os.WriteFile(path, []byte(threeBarrelLayersGeometry), 0o644))
	ti, err := geometry.Load(path)
	require.NoError(t, err)
	return ti
}

// lenientConfig widens every gate so the test exercises the beam-search
// control flow without depending on exact propagated covariance scale.
func lenientConfig() *config.FinderConfig {
	return &config.FinderConfig{
		MaxCand:         ptrInt(5),
		MaxHolesPerCand: ptrInt(2),
		MaxConsecHoles:  ptrInt(2),
		Chi2Cut:         ptrFloat(1e9),
		NSigma:          ptrFloat(5.0),
		MinDEta:         ptrFloat(0.0),
		MaxDEta:         ptrFloat(1.0),
		MinDPhi:         ptrFloat(0.0),
		MaxDPhi:         ptrFloat(0.5),
	}
}

func ptrInt(v int) *int { return &v }

func TestFindSeedCollectsAHitOnEveryBarrelLayer(t *testing.T) {
	ti := loadThreeLayerGeometry(t)
	ev := event.New(3)

	// A near-straight track along +x (tiny curvature via a huge pT) so
	// each layer's landing point sits at (R, ~0, 0).
	ev.AddHit(event.Hit{Layer: 0, X: 10.0, Y: 0.01, Z: 0, Cov: [6]float64{1e-4, 0, 0, 1e-4, 0, 1e-4}})
	ev.AddHit(event.Hit{Layer: 1, X: 20.0, Y: 0.01, Z: 0, Cov: [6]float64{1e-4, 0, 0, 1e-4, 0, 1e-4}})
	ev.AddHit(event.Hit{Layer: 2, X: 30.0, Y: 0.01, Z: 0, Cov: [6]float64{1e-4, 0, 0, 1e-4, 0, 1e-4}})

	layerIndex := BuildLayerIndices(ev, 10, 64, -3, 3)

	seed := trackstate.New(0, 0, 0, 1e-6, 0, math.Pi/2, trackstate.Positive, 1e-3)
	cfg := lenientConfig()

	err := FindSeed(ti, ev, layerIndex, seed, 1, geometry.RegionBarrel, cfg, config.FlagNone)
	require.NoError(t, err)
	require.Len(t, ev.CandidateTracks, 1)

	tr := ev.CandidateTracks[0]
	require.Equal(t, 3, tr.NFoundHits())
	require.Equal(t, 0, tr.NMissedHits())
	require.Greater(t, tr.Chi2, 0.0)
}

func TestFindSeedRejectsNilState(t *testing.T) {
	ti := loadThreeLayerGeometry(t)
	ev := event.New(3)
	layerIndex := BuildLayerIndices(ev, 10, 64, -3, 3)
	err := FindSeed(ti, ev, layerIndex, trackstate.Invalid(), 1, geometry.RegionBarrel, lenientConfig(), config.FlagNone)
	require.Error(t, err)
}

func TestRunAllProcessesEverySeedConcurrently(t *testing.T) {
	ti := loadThreeLayerGeometry(t)
	ev := event.New(3)
	ev.AddHit(event.Hit{Layer: 0, X: 10.0, Y: 0.01, Z: 0, Cov: [6]float64{1e-4, 0, 0, 1e-4, 0, 1e-4}})
	ev.AddHit(event.Hit{Layer: 1, X: 20.0, Y: 0.01, Z: 0, Cov: [6]float64{1e-4, 0, 0, 1e-4, 0, 1e-4}})
	ev.AddHit(event.Hit{Layer: 2, X: 30.0, Y: 0.01, Z: 0, Cov: [6]float64{1e-4, 0, 0, 1e-4, 0, 1e-4}})
	layerIndex := BuildLayerIndices(ev, 10, 64, -3, 3)

	jobs := make([]SeedJob, 8)
	for i := range jobs {
		jobs[i] = SeedJob{
			Seed:   trackstate.New(0, 0, 0, 1e-6, 0, math.Pi/2, trackstate.Positive, 1e-3),
			Label:  i,
			Region: geometry.RegionBarrel,
		}
	}

	errs := RunAll(context.Background(), ti, ev, layerIndex, jobs, lenientConfig(), config.FlagNone, 4)
	require.Empty(t, errs)
	require.Len(t, ev.CandidateTracks, len(jobs))
}
