package candidatefinder

import (
	"context"

	channerics "github.com/niceyeti/channerics/channels"

	"github.com/banshee-data/trackfind/internal/binindex"
	"github.com/banshee-data/trackfind/internal/config"
	"github.com/banshee-data/trackfind/internal/event"
	"github.com/banshee-data/trackfind/internal/geometry"
	"github.com/banshee-data/trackfind/internal/trackstate"
)

// SeedJob is one seed ready for finding: its initial state, its
// assigned label, and the region whose SteeringPlan it should walk
// (spec.md §4.7/§4.8).
type SeedJob struct {
	Seed   *trackstate.State
	Label  int
	Region geometry.Region
}

// RunAll fans jobs out across workers goroutines, one task per seed,
// and blocks until every job has been attempted (spec.md §5: "one task
// per seed or per small batch of seeds from the same region"). ti, ev
// and layerIndex are shared read-only; the only mutation is
// Event.CommitCandidate's own internal mutex, acquired once per seed.
func RunAll(
	ctx context.Context,
	ti *geometry.TrackerInfo,
	ev *event.Event,
	layerIndex map[int]*binindex.BinInfo,
	jobs []SeedJob,
	cfg *config.FinderConfig,
	flags config.PropagationFlags,
	workers int,
) []error {
	if workers < 1 {
		workers = 1
	}

	jobCh := make(chan SeedJob)
	go func() {
		defer close(jobCh)
		for _, j := range jobs {
			select {
			case jobCh <- j:
			case <-ctx.Done():
				return
			}
		}
	}()

	errChans := make([]<-chan error, workers)
	for i := 0; i < workers; i++ {
		errCh := make(chan error, len(jobs))
		errChans[i] = errCh
		go func() {
			defer close(errCh)
			for job := range channerics.OrDone[SeedJob](ctx.Done(), jobCh) {
				if err := FindSeed(ti, ev, layerIndex, job.Seed, job.Label, job.Region, cfg, flags); err != nil {
					errCh <- err
				}
			}
		}()
	}

	var errs []error
	for err := range channerics.Merge[error](errChans) {
		errs = append(errs, err)
	}
	return errs
}
