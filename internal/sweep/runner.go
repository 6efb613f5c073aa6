package sweep

import (
	"context"
	"fmt"

	"github.com/banshee-data/trackfind/internal/candidatefinder"
	"github.com/banshee-data/trackfind/internal/config"
	"github.com/banshee-data/trackfind/internal/event"
	"github.com/banshee-data/trackfind/internal/geometry"
)

// Result pairs one Variant's evaluated metrics with its run-scoped
// identity, ready for persistence.
type Result struct {
	RunID   string
	Variant string
	Metrics Metrics
}

// Runner re-runs the candidate finder over one event's hits for each
// of a list of Variants, isolating each run's committed candidates
// from the next by finding against a fresh event.CloneHits() per
// variant (mirrors the teacher Runner's per-combo isolation in
// internal/lidar/sweep/runner.go, minus the live-sensor sampling loop
// this domain has no analogue for).
type Runner struct {
	TI      *geometry.TrackerInfo
	Jobs    []candidatefinder.SeedJob
	Flags   config.PropagationFlags
	Weights Weights
	Workers int
}

// RunVariant finds every job in v's config against a clone of base and
// scores the outcome.
func (r *Runner) RunVariant(ctx context.Context, base *event.Event, v Variant, runID string) (Result, error) {
	workers := r.Workers
	if workers < 1 {
		workers = 1
	}
	ev := base.CloneHits()
	layerIndex := candidatefinder.BuildLayerIndices(ev, 20, 64, -3.5, 3.5)

	errs := candidatefinder.RunAll(ctx, r.TI, ev, layerIndex, r.Jobs, v.Config, r.Flags, workers)
	if n := countNonNil(errs); n > 0 {
		return Result{}, fmt.Errorf("sweep: variant %q: %d of %d seeds failed", v.Name, n, len(r.Jobs))
	}

	return Result{
		RunID:   runID,
		Variant: v.Name,
		Metrics: ScoreEvent(ev, r.Weights),
	}, nil
}

// RunGrid evaluates every variant in order, stopping at the first
// variant-level error.
func (r *Runner) RunGrid(ctx context.Context, base *event.Event, variants []Variant, runID string) ([]Result, error) {
	results := make([]Result, 0, len(variants))
	for _, v := range variants {
		res, err := r.RunVariant(ctx, base, v, runID)
		if err != nil {
			return results, err
		}
		results = append(results, res)
	}
	return results, nil
}

func countNonNil(errs []error) int {
	n := 0
	for _, e := range errs {
		if e != nil {
			n++
		}
	}
	return n
}
