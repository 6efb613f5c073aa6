// Package binindex implements the per-layer spatial hit index
// (spec.md §4.2): hits on a layer are bucketed by (η, φ) and a range
// query returns the union of hits whose bucket falls in a given
// window, honoring φ wrap-around.
package binindex

import (
	"math"
	"sort"
)

// Point is the minimal (η, φ) projection of a hit needed to bucket it.
// Callers (package event) project their Hit positions into this shape
// before calling Build.
type Point struct {
	Eta float64
	Phi float64 // radians, in (-π, π]
}

// BinInfo is the built spatial index for one layer. Built once per
// event after hits are read (spec.md §4.2); safe to share read-only
// across goroutines afterwards (spec.md §5).
type BinInfo struct {
	nEtaBins int
	nPhiBins int
	etaMin   float64
	etaMax   float64

	// bins[etaBin][phiBin] holds the hit indices (into the caller's
	// original hit slice) that fall in that bucket, sorted ascending.
	bins [][][]int
}

// Build partitions pts (in original-hit-index order) into an
// nEtaBins × nPhiBins grid. etaMin/etaMax bound the η axis; the φ axis
// always covers the full (-π, π] wrap.
func Build(pts []Point, nEtaBins, nPhiBins int, etaMin, etaMax float64) *BinInfo {
	bi := &BinInfo{
		nEtaBins: nEtaBins,
		nPhiBins: nPhiBins,
		etaMin:   etaMin,
		etaMax:   etaMax,
	}
	bi.bins = make([][][]int, nEtaBins)
	for i := range bi.bins {
		bi.bins[i] = make([][]int, nPhiBins)
	}
	for idx, p := range pts {
		eb := bi.etaBin(p.Eta)
		pb := bi.phiBin(p.Phi)
		bi.bins[eb][pb] = append(bi.bins[eb][pb], idx)
	}
	return bi
}

func (bi *BinInfo) etaBin(eta float64) int {
	if bi.etaMax <= bi.etaMin {
		return 0
	}
	frac := (eta - bi.etaMin) / (bi.etaMax - bi.etaMin)
	b := int(frac * float64(bi.nEtaBins))
	return clamp(b, 0, bi.nEtaBins-1)
}

func (bi *BinInfo) phiBin(phi float64) int {
	norm := normalizePhi(phi) // [0, 2π)
	b := int(norm / (2 * math.Pi) * float64(bi.nPhiBins))
	return clamp(b, 0, bi.nPhiBins-1)
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizePhi maps any φ into [0, 2π).
func normalizePhi(phi float64) float64 {
	const twoPi = 2 * math.Pi
	phi = math.Mod(phi, twoPi)
	if phi < 0 {
		phi += twoPi
	}
	return phi
}

// GetCandHitIndices returns the union of hit indices whose bucket
// falls in [etaMin, etaMax] × [phiMin, phiMax]. When phiMax < phiMin
// the φ range wraps: it is interpreted as [phiMin, 2π) ∪ [0, phiMax]
// (spec.md §4.2). The returned order is unspecified.
func (bi *BinInfo) GetCandHitIndices(etaMin, etaMax, phiMin, phiMax float64) []int {
	eLo := bi.etaBin(etaMin)
	eHi := bi.etaBin(etaMax)
	if eLo > eHi {
		eLo, eHi = eHi, eLo
	}

	pLo := bi.phiBin(normalizePhi(phiMin))
	pHi := bi.phiBin(normalizePhi(phiMax))

	var out []int
	addRange := func(pFrom, pTo int) {
		for eb := eLo; eb <= eHi; eb++ {
			for pb := pFrom; pb <= pTo; pb++ {
				out = append(out, bi.bins[eb][pb]...)
			}
		}
	}

	if pLo <= pHi {
		addRange(pLo, pHi)
	} else {
		// Wrap-around: [pLo, nPhiBins) ∪ [0, pHi].
		addRange(pLo, bi.nPhiBins-1)
		addRange(0, pHi)
	}

	sort.Ints(out)
	return out
}
