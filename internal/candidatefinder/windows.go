package candidatefinder

import (
	"math"

	"github.com/banshee-data/trackfind/internal/config"
	"github.com/banshee-data/trackfind/internal/trackstate"
)

// etaWindow returns the search window around a propagated state's η,
// half-width n_sigma·σ_η clamped into [minDEta, maxDEta] (spec.md
// §4.8.1). η is carried directly by θ in this state basis, so σ_η
// comes from propagating θ's variance through dη/dθ = -1/sin(θ)
// rather than from a separate position-covariance projection.
func etaWindow(s *trackstate.State, cfg *config.FinderConfig) (lo, hi float64) {
	sigmaTheta := math.Sqrt(s.Cov.At(5, 5))
	sigmaEta := sigmaTheta / math.Abs(math.Sin(s.Theta))
	half := clamp(cfg.GetNSigma()*sigmaEta, cfg.GetMinDEta(), cfg.GetMaxDEta())
	eta := s.Eta()
	return eta - half, eta + half
}

// phiWindow returns the search window around a propagated state's φ,
// half-width n_sigma·σ_φ clamped into [minDPhi, maxDPhi] (spec.md
// §4.8.1). φ is a state component directly, so its variance is read
// straight off the diagonal.
func phiWindow(s *trackstate.State, cfg *config.FinderConfig) (lo, hi float64) {
	sigmaPhi := math.Sqrt(s.Cov.At(4, 4))
	half := clamp(cfg.GetNSigma()*sigmaPhi, cfg.GetMinDPhi(), cfg.GetMaxDPhi())
	return s.Phi - half, s.Phi + half
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
