// Package kalman implements the gating chi² and state update of the
// combinatorial Kalman filter (spec.md §4.5), generalized from the
// teacher's hand-rolled 2-position measurement model
// (l5tracks/tracking.go's mahalanobisDistanceSquared/update) to this
// spec's fixed 6-state / layer-local 2D measurement model.
package kalman

import (
	"math"

	"github.com/banshee-data/trackfind/internal/trackstate"
	"gonum.org/v1/gonum/mat"
)

// SingularChi2 is the sentinel chi² value signaling a degenerate
// innovation covariance; gating must always reject it (spec.md §4.5).
const SingularChi2 = math.MaxFloat64

// Measurement is a layer-local 2D hit position with its 2×2 covariance
// (e.g. (r·φ, z) on a barrel layer, (x, y) on an endcap disk).
type Measurement struct {
	U, V     float64
	CovUU    float64
	CovUV    float64
	CovVV    float64
}

// Projector maps a TrackState to its predicted local-2D coordinates
// and the 2×6 Jacobian H of that projection, layer-geometry-dependent
// and therefore supplied by the caller rather than fixed here.
type Projector func(s *trackstate.State) (u, v float64, h *mat.Dense)

// innovation computes r = m - H·x̂ and S = H·P·Hᵀ + V for one
// candidate/measurement pair.
func innovation(s *trackstate.State, proj Projector, m Measurement) (rU, rV float64, s00, s01, s11 float64, h *mat.Dense) {
	predU, predV, hJac := proj(s)
	rU = m.U - predU
	rV = m.V - predV

	var hp mat.Dense
	hp.Mul(hJac, s.Cov)
	var hpht mat.Dense
	hpht.Mul(&hp, hJac.T())

	s00 = hpht.At(0, 0) + m.CovUU
	s01 = hpht.At(0, 1) + m.CovUV
	s11 = hpht.At(1, 1) + m.CovVV
	return rU, rV, s00, s01, s11, hJac
}

// ComputeChi2 forms the residual and its covariance and returns
// rᵀ·S⁻¹·r, or SingularChi2 when S is not invertible (spec.md §4.5).
// Both ComputeChi2 and UpdateParameters are pure functions of their
// inputs, so they are bit-stable across goroutines by construction —
// required for reproducibility across threads.
func ComputeChi2(s *trackstate.State, proj Projector, m Measurement) float64 {
	rU, rV, s00, s01, s11, _ := innovation(s, proj, m)
	det := s00*s11 - s01*s01
	if det < 1e-12 {
		return SingularChi2
	}
	invS00 := s11 / det
	invS01 := -s01 / det
	invS11 := s00 / det
	return rU*rU*invS00 + 2*rU*rV*invS01 + rV*rV*invS11
}

// UpdateParameters returns the Kalman-updated state and covariance.
// When S is singular it returns s unchanged (still Valid) — the
// caller is expected to have already rejected the branch via
// ComputeChi2 returning SingularChi2.
func UpdateParameters(s *trackstate.State, proj Projector, m Measurement) *trackstate.State {
	rU, rV, s00, s01, s11, h := innovation(s, proj, m)
	det := s00*s11 - s01*s01
	if det < 1e-12 {
		return s
	}
	invS00 := s11 / det
	invS01 := -s01 / det
	invS11 := s00 / det

	// Kalman gain K = P·Hᵀ·S⁻¹ (6x2).
	var pht mat.Dense
	pht.Mul(s.Cov, h.T())
	k := mat.NewDense(trackstate.NDim, 2, nil)
	for i := 0; i < trackstate.NDim; i++ {
		p0, p1 := pht.At(i, 0), pht.At(i, 1)
		k.Set(i, 0, p0*invS00+p1*invS01)
		k.Set(i, 1, p0*invS01+p1*invS11)
	}

	next := s.Clone()
	delta := [trackstate.NDim]float64{}
	for i := 0; i < trackstate.NDim; i++ {
		delta[i] = k.At(i, 0)*rU + k.At(i, 1)*rV
	}
	next.X += delta[0]
	next.Y += delta[1]
	next.Z += delta[2]
	next.InvPt += delta[3]
	next.Phi += delta[4]
	next.Theta += delta[5]

	// Covariance update: P' = (I - K·H)·P
	var kh mat.Dense
	kh.Mul(k, h)
	ikh := mat.NewDense(trackstate.NDim, trackstate.NDim, nil)
	for i := 0; i < trackstate.NDim; i++ {
		for j := 0; j < trackstate.NDim; j++ {
			id := 0.0
			if i == j {
				id = 1.0
			}
			ikh.Set(i, j, id-kh.At(i, j))
		}
	}
	var newP mat.Dense
	newP.Mul(ikh, s.Cov)

	cov := mat.NewSymDense(trackstate.NDim, nil)
	for i := 0; i < trackstate.NDim; i++ {
		for j := i; j < trackstate.NDim; j++ {
			cov.SetSym(i, j, 0.5*(newP.At(i, j)+newP.At(j, i)))
		}
	}
	next.Cov = cov
	next.Valid = true
	return next
}
