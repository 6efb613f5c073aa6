package candidatefinder

import (
	"math"

	"github.com/banshee-data/trackfind/internal/binindex"
	"github.com/banshee-data/trackfind/internal/event"
)

// BuildLayerIndices builds one BinInfo per layer from an event's hits,
// projecting each hit's global position into (η, φ) (spec.md §4.2).
// Built once, after hits are read and before any seed is found; safe
// to share read-only across the worker pool afterwards.
func BuildLayerIndices(ev *event.Event, nEtaBins, nPhiBins int, etaMin, etaMax float64) map[int]*binindex.BinInfo {
	idx := make(map[int]*binindex.BinInfo, len(ev.LayerHits))
	for layer, hits := range ev.LayerHits {
		pts := make([]binindex.Point, len(hits))
		for i, h := range hits {
			pts[i] = binindex.Point{Eta: h.Eta(), Phi: math.Atan2(h.Y, h.X)}
		}
		idx[layer] = binindex.Build(pts, nEtaBins, nPhiBins, etaMin, etaMax)
	}
	return idx
}
