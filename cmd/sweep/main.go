// Command sweep re-runs the candidate finder over one recorded event
// for a grid of config.FinderConfig variants, scores each variant, and
// persists the results to a sweep.Store database for cmd/sweepreport
// to render — completing the sweep/tune/visualize loop the teacher
// drives for its own tracker via cmd/bg-sweep and cmd/bg-multisweep.
package main

import (
	"context"
	"flag"
	"log"

	"github.com/banshee-data/trackfind/internal/candidatefinder"
	"github.com/banshee-data/trackfind/internal/config"
	"github.com/banshee-data/trackfind/internal/event"
	"github.com/banshee-data/trackfind/internal/eventio"
	"github.com/banshee-data/trackfind/internal/geometry"
	"github.com/banshee-data/trackfind/internal/propagator"
	"github.com/banshee-data/trackfind/internal/seedpartition"
	"github.com/banshee-data/trackfind/internal/sweep"
	"github.com/google/uuid"
)

func main() {
	geomPath := flag.String("geometry", "testdata/geometry.cms2017.json", "tracker geometry JSON file")
	configPath := flag.String("config", "", "base FinderConfig JSON override file (defaults to config.MustLoadDefaultConfig)")
	eventPath := flag.String("event", "", "event file (eventio format); only its first event is swept")
	dbPath := flag.String("db", "sweep.db", "sweep.Store SQLite database to append results to")
	workers := flag.Int("workers", 4, "worker pool size per variant")

	chi2Start := flag.Float64("chi2-cut-start", 0, "chi2_cut sweep range start (axis is swept only when end > start)")
	chi2End := flag.Float64("chi2-cut-end", 0, "chi2_cut sweep range end")
	chi2Step := flag.Float64("chi2-cut-step", 1, "chi2_cut sweep step")

	maxCandStart := flag.Int("max-cand-start", 0, "max_cand sweep range start (axis is swept only when end > start)")
	maxCandEnd := flag.Int("max-cand-end", 0, "max_cand sweep range end")
	maxCandStep := flag.Int("max-cand-step", 1, "max_cand sweep step")
	flag.Parse()

	if *eventPath == "" {
		log.Fatalf("sweep: -event is required")
	}

	runID := uuid.NewString()
	log.Printf("sweep: run %s starting", runID)

	ti, err := geometry.Load(*geomPath)
	if err != nil {
		log.Fatalf("sweep: run %s: load geometry: %v", runID, err)
	}

	base := config.MustLoadDefaultConfig()
	if *configPath != "" {
		base, err = config.LoadFinderConfig(*configPath)
		if err != nil {
			log.Fatalf("sweep: run %s: load config: %v", runID, err)
		}
	}

	reader, err := eventio.Open(*eventPath)
	if err != nil {
		log.Fatalf("sweep: run %s: open %q: %v", runID, *eventPath, err)
	}
	defer reader.Close()
	ev, err := reader.Next()
	if err != nil {
		log.Fatalf("sweep: run %s: read first event: %v", runID, err)
	}

	axes := buildAxes(*chi2Start, *chi2End, *chi2Step, *maxCandStart, *maxCandEnd, *maxCandStep)
	variants := sweep.ExpandGrid(base, axes)
	log.Printf("sweep: run %s evaluating %d variants", runID, len(variants))

	jobs := buildJobs(ti, ev)

	runner := &sweep.Runner{
		TI:      ti,
		Jobs:    jobs,
		Flags:   base.GetFlags().FindingInterLayer,
		Weights: sweep.DefaultWeights(),
		Workers: *workers,
	}

	results, err := runner.RunGrid(context.Background(), ev, variants, runID)
	if err != nil {
		log.Fatalf("sweep: run %s: %v", runID, err)
	}

	store, err := sweep.OpenStore(*dbPath)
	if err != nil {
		log.Fatalf("sweep: run %s: open store: %v", runID, err)
	}
	defer store.Close()

	if err := store.SaveResults(results); err != nil {
		log.Fatalf("sweep: run %s: save results: %v", runID, err)
	}

	log.Printf("sweep: run %s complete, %d variants persisted", runID, len(results))
}

// buildAxes assembles the ParamAxis list the CLI flags describe. An
// axis is added only when its end exceeds its start, so a range left at
// its zero defaults is skipped and the grid can be swept on either or
// both parameters independently.
func buildAxes(chi2Start, chi2End, chi2Step float64, maxCandStart, maxCandEnd, maxCandStep int) []sweep.ParamAxis {
	var axes []sweep.ParamAxis
	if chi2End > chi2Start {
		axes = append(axes, sweep.ParamAxis{
			Name:   "chi2_cut",
			Values: sweep.GenerateRange(chi2Start, chi2End, chi2Step),
			Apply: func(cfg *config.FinderConfig, v float64) {
				cfg.Chi2Cut = &v
			},
		})
	}
	if maxCandEnd > maxCandStart {
		ints := sweep.GenerateIntRange(maxCandStart, maxCandEnd, maxCandStep)
		values := make([]float64, len(ints))
		for i, v := range ints {
			values[i] = float64(v)
		}
		axes = append(axes, sweep.ParamAxis{
			Name:   "max_cand",
			Values: values,
			Apply: func(cfg *config.FinderConfig, v float64) {
				n := int(v)
				cfg.MaxCand = &n
			},
		})
	}
	return axes
}

// buildJobs converts an event's valid seed tracks into SeedJobs,
// classifying each one's steering region the same way cmd/trackfind
// does (spec.md §4.7), so a swept config is exercised by the same
// region assignment the production finder uses.
func buildJobs(ti *geometry.TrackerInfo, ev *event.Event) []candidatefinder.SeedJob {
	jobs := make([]candidatefinder.SeedJob, 0, len(ev.SeedTracks))
	for i, seed := range ev.SeedTracks {
		state := seed.State
		if state == nil || !state.Valid {
			continue
		}
		c := seedpartition.Classify(ti, state, outerHitEta(ev, seed), propagator.BFieldTesla)
		jobs = append(jobs, candidatefinder.SeedJob{
			Seed:   state,
			Label:  i,
			Region: c.Region,
		})
	}
	return jobs
}

// outerHitEta mirrors cmd/trackfind's helper of the same name: the η
// of a seed's last actually-found hit, falling back to its state η.
func outerHitEta(ev *event.Event, seed event.Track) float64 {
	for i := len(seed.Hots) - 1; i >= 0; i-- {
		hot := seed.Hots[i]
		if hot.Index < 0 {
			continue
		}
		layer, idx := int(hot.Layer), int(hot.Index)
		if layer < 0 || layer >= len(ev.LayerHits) || idx < 0 || idx >= len(ev.LayerHits[layer]) {
			continue
		}
		return ev.LayerHits[layer][idx].Eta()
	}
	return seed.State.Eta()
}
