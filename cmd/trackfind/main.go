// Command trackfind runs the combinatorial candidate finder over a
// recorded event file and writes the resulting candidate tracks back
// to a new event file (spec.md §4.8, §9).
package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/banshee-data/trackfind/internal/candidatefinder"
	"github.com/banshee-data/trackfind/internal/config"
	"github.com/banshee-data/trackfind/internal/event"
	"github.com/banshee-data/trackfind/internal/eventio"
	"github.com/banshee-data/trackfind/internal/geometry"
	"github.com/banshee-data/trackfind/internal/propagator"
	"github.com/banshee-data/trackfind/internal/seedpartition"
	"github.com/google/uuid"
)

func main() {
	geomPath := flag.String("geometry", "testdata/geometry.cms2017.json", "tracker geometry JSON file")
	configPath := flag.String("config", "", "FinderConfig JSON override file (defaults to config.MustLoadDefaultConfig)")
	inPath := flag.String("in", "", "input event file (eventio format)")
	outPath := flag.String("out", "", "output event file (eventio format)")
	workers := flag.Int("workers", 4, "worker pool size for candidate finding")
	etaBins := flag.Int("eta-bins", 20, "eta bins per layer spatial index")
	phiBins := flag.Int("phi-bins", 64, "phi bins per layer spatial index")
	flag.Parse()

	if *inPath == "" || *outPath == "" {
		log.Fatalf("trackfind: -in and -out are required")
	}

	runID := uuid.NewString()
	log.Printf("trackfind: run %s starting", runID)

	ti, err := geometry.Load(*geomPath)
	if err != nil {
		log.Fatalf("trackfind: run %s: load geometry: %v", runID, err)
	}

	cfg := config.MustLoadDefaultConfig()
	if *configPath != "" {
		cfg, err = config.LoadFinderConfig(*configPath)
		if err != nil {
			log.Fatalf("trackfind: run %s: load config: %v", runID, err)
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("trackfind: run %s: invalid config: %v", runID, err)
	}

	reader, err := eventio.Open(*inPath)
	if err != nil {
		log.Fatalf("trackfind: run %s: open %q: %v", runID, *inPath, err)
	}
	defer reader.Close()

	writer, err := eventio.Create(*outPath, reader.Header.NLayers, eventio.ExtraSeeds)
	if err != nil {
		log.Fatalf("trackfind: run %s: create %q: %v", runID, *outPath, err)
	}
	defer writer.Close()

	ctx := context.Background()
	flags := cfg.GetFlags()
	nEvents := 0
	for {
		ev, err := reader.Next()
		if err != nil {
			break
		}
		nEvents++
		if err := findEvent(ctx, ti, ev, cfg, flags.FindingInterLayer, *etaBins, *phiBins, *workers); err != nil {
			log.Fatalf("trackfind: run %s: event %d: %v", runID, nEvents, err)
		}
		if err := writer.WriteEvent(ev); err != nil {
			log.Fatalf("trackfind: run %s: write event %d: %v", runID, nEvents, err)
		}
	}

	log.Printf("trackfind: run %s complete, %d events processed", runID, nEvents)
}

// findEvent builds per-layer spatial indices and dispatches every
// seed track in ev that carries a valid state through the worker pool;
// seeds with a nil or invalid state are skipped.
func findEvent(
	ctx context.Context,
	ti *geometry.TrackerInfo,
	ev *event.Event,
	cfg *config.FinderConfig,
	flags config.PropagationFlags,
	etaBins, phiBins, workers int,
) error {
	layerIndex := candidatefinder.BuildLayerIndices(ev, etaBins, phiBins, -3.5, 3.5)

	jobs := make([]candidatefinder.SeedJob, 0, len(ev.SeedTracks))
	for i, seed := range ev.SeedTracks {
		state := seed.State
		if state == nil || !state.Valid {
			continue
		}
		jobs = append(jobs, candidatefinder.SeedJob{
			Seed:   state,
			Label:  i,
			Region: regionOf(ti, ev, seed),
		})
	}

	errs := candidatefinder.RunAll(ctx, ti, ev, layerIndex, jobs, cfg, flags, workers)
	for _, err := range errs {
		if err != nil {
			return fmt.Errorf("findEvent: %w", err)
		}
	}
	return nil
}

// regionOf runs spec.md §4.7's actual region-decision tree
// (seedpartition.Classify) rather than a bare η threshold, so endcap
// seeds route to endcap steering plans instead of being permanently
// misclassified as transition.
func regionOf(ti *geometry.TrackerInfo, ev *event.Event, seed event.Track) geometry.Region {
	c := seedpartition.Classify(ti, seed.State, outerHitEta(ev, seed), propagator.BFieldTesla)
	return c.Region
}

// outerHitEta walks a seed's HitOnTrack sequence from the end for the
// last actually-found hit and returns that hit's η — the outermost-hit
// η spec.md §4.7 calls for, since a short curved seed's momentum-
// direction η is not a reliable stand-in.
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
