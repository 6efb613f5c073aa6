// Package candidatefinder implements the combinatorial beam search
// that walks each seed through its region's SteeringPlan, gating
// candidate hits by chi² and emitting the surviving beam's best entry
// into the event's candidate track vector (spec.md §4.8).
package candidatefinder

import (
	"fmt"

	"github.com/banshee-data/trackfind/internal/binindex"
	"github.com/banshee-data/trackfind/internal/config"
	"github.com/banshee-data/trackfind/internal/event"
	"github.com/banshee-data/trackfind/internal/geometry"
	"github.com/banshee-data/trackfind/internal/kalman"
	"github.com/banshee-data/trackfind/internal/propagator"
	"github.com/banshee-data/trackfind/internal/scoring"
	"github.com/banshee-data/trackfind/internal/seedpartition"
	"github.com/banshee-data/trackfind/internal/trackstate"
)

// FindSeed runs one seed's beam search to completion and commits its
// best surviving candidate to ev (spec.md §4.8). It is the unit of
// work fanned out by RunAll: strictly sequential, no shared mutable
// state besides ev.CommitCandidate's own lock.
func FindSeed(
	ti *geometry.TrackerInfo,
	ev *event.Event,
	layerIndex map[int]*binindex.BinInfo,
	seed *trackstate.State,
	label int,
	region geometry.Region,
	cfg *config.FinderConfig,
	flags config.PropagationFlags,
) error {
	if seed == nil || !seed.Valid {
		return fmt.Errorf("candidatefinder: seed %d has no valid initial state", label)
	}

	seedType := int(seedpartition.AssignSeedType(seed.PT(), seed.Eta()))
	beam := []*candidate{{state: seed.Clone(), seedType: seedType, label: label}}
	prevBeam := beam

	steps := ti.Plan(region).ForwardSteps()
	for stepIdx, step := range steps {
		layer, ok := ti.Layer(step.LayerID)
		if !ok {
			continue
		}
		proj := buildProjector(layer.IsBarrel)
		surf := surfaceFor(layer)
		bi := layerIndex[step.LayerID]
		hits := ev.LayerHits[step.LayerID]

		var newBeam []*candidate
		for _, c := range beam {
			ps := propagator.Propagate(c.state, surf, flags)
			if !ps.Valid {
				if !step.PickupOnly {
					if m := c.miss(step.LayerID, cfg.GetMaxConsecHoles(), cfg.GetMaxHolesPerCand()); m != nil {
						newBeam = append(newBeam, m)
					}
				}
				continue
			}

			etaLo, etaHi := etaWindow(ps, cfg)
			phiLo, phiHi := phiWindow(ps, cfg)
			var hitIdxs []int
			if bi != nil {
				hitIdxs = bi.GetCandHitIndices(etaLo, etaHi, phiLo, phiHi)
			}

			branched := 0
			for _, hIdx := range hitIdxs {
				m := measurementFromHit(hits[hIdx], layer.IsBarrel)
				chi2 := kalman.ComputeChi2(ps, proj, m)
				if chi2 > 0 && chi2 < cfg.GetChi2Cut() {
					updated := kalman.UpdateParameters(ps, proj, m)
					newBeam = append(newBeam, c.extend(updated, step.LayerID, hIdx, chi2))
					branched++
				}
			}
			if !step.PickupOnly && branched == 0 && c.nFoundHits == stepIdx {
				if m := c.miss(step.LayerID, cfg.GetMaxConsecHoles(), cfg.GetMaxHolesPerCand()); m != nil {
					newBeam = append(newBeam, m)
				}
			}
		}

		if len(newBeam) == 0 && len(prevBeam) > 0 {
			emitBest(ev, prevBeam, cfg)
			return nil
		}
		beam = prune(newBeam, cfg.GetMaxCand())
		prevBeam = beam
	}

	emitBest(ev, beam, cfg)
	return nil
}

// surfaceFor returns the propagation target for a layer: its outer
// barrel radius, or the midpoint z of its endcap disk extent.
func surfaceFor(l geometry.LayerInfo) propagator.Surface {
	if l.IsBarrel {
		return propagator.BarrelSurface(l.ROut)
	}
	return propagator.EndcapSurface((l.ZMin + l.ZMax) / 2)
}

// emitBest ranks the surviving beam by the same ordering prune uses
// and commits its top entry, scored per spec.md §4.8.3.
func emitBest(ev *event.Event, beam []*candidate, cfg *config.FinderConfig) {
	if len(beam) == 0 {
		return
	}
	best := prune(beam, 1)[0]

	params := scoring.Params{
		ValidHitBonus:     cfg.GetValidHitBonus(),
		MissingHitPenalty: cfg.GetMissingHitPenalty(),
		MaxChi2ForRanking: cfg.GetMaxChi2ForRanking(),
	}
	score := scoring.Score(params, best.seedType, best.nFoundHits, best.nMissedHits, best.chi2)

	tr := event.Track{
		State: best.state,
		Chi2:  best.chi2,
		Score: score,
		Label: best.label,
		Hots:  best.hots,
	}
	tr.SetSeedType(best.seedType)
	ev.CommitCandidate(tr)
}
