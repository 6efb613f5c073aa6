// Package propagator transports a TrackState from one detector
// surface to another — barrel cylinder (fixed R) or endcap disk
// (fixed z) — propagating both the helix position and its covariance
// (spec.md §4.4).
package propagator

import (
	"math"

	"github.com/banshee-data/trackfind/internal/config"
	"github.com/banshee-data/trackfind/internal/trackstate"
	"gonum.org/v1/gonum/mat"
)

// Surface is a target to propagate to: a barrel cylinder at radius R,
// or an endcap disk at longitudinal position Z.
type Surface struct {
	Barrel bool
	R      float64 // meaningful when Barrel
	Z      float64 // meaningful when !Barrel
}

// BarrelSurface builds a cylinder target.
func BarrelSurface(r float64) Surface { return Surface{Barrel: true, R: r} }

// EndcapSurface builds a disk target.
func EndcapSurface(z float64) Surface { return Surface{Barrel: false, Z: z} }

// BFieldTesla is the uniform-field approximation used when a step's
// flags don't request the parameterized field.
const BFieldTesla = 3.8

// fieldAt returns the field to use for this step, uniform unless
// UseParamBField is set, in which case it is attenuated radially —
// the simple r-dependent parameterization original_source/Geoms
// tabulates per layer, reduced here to one closed-form curve since we
// do not carry the full per-layer field map (an Open Question decision
// recorded in DESIGN.md).
func fieldAt(r float64, flags config.PropagationFlags) float64 {
	if !flags.Has(config.FlagUseParamBField) {
		return BFieldTesla
	}
	const falloffPerCmSquared = 2e-5
	b := BFieldTesla / (1 + falloffPerCmSquared*r*r)
	return b
}

// Propagate transports src to surf, honoring flags, and returns the
// new state with transported covariance. On any numerical failure
// (surface unreachable, degenerate pitch) it returns an invalid state;
// callers must check Valid before using the result (spec.md §4.4).
func Propagate(src *trackstate.State, surf Surface, flags config.PropagationFlags) *trackstate.State {
	if src == nil || !src.Valid {
		return trackstate.Invalid()
	}

	b := fieldAt(approxRadius(src, surf), flags)

	var s3d float64
	var ok bool
	if surf.Barrel {
		s3d, ok = src.ArcLengthToRadius(surf.R, b)
	} else {
		s3d, ok = arcLengthToZ(src, surf.Z)
	}
	if !ok {
		return trackstate.Invalid()
	}

	next := src.Advance(s3d, b)
	next.Cov = transportCovariance(src, next, s3d, b)

	if flags.Has(config.FlagApplyMaterial) {
		applyMaterial(next, s3d)
	}

	if !finite6(next) {
		return trackstate.Invalid()
	}
	return next
}

// approxRadius picks a representative radius for field lookup: the
// target radius for a barrel step, or the source radius for an
// endcap step (the field only needs to be roughly right to pick
// between the uniform and parameterized branches).
func approxRadius(src *trackstate.State, surf Surface) float64 {
	if surf.Barrel {
		return surf.R
	}
	return math.Hypot(src.X, src.Y)
}

// arcLengthToZ is the endcap-type analogue of
// trackstate.ArcLengthToRadius: dz/ds = cos(θ) exactly along a helix,
// so the 3D path length to a target z is a direct ratio, not a search.
func arcLengthToZ(src *trackstate.State, targetZ float64) (float64, bool) {
	cosTheta := math.Cos(src.Theta)
	const minCosTheta = 1e-9
	if math.Abs(cosTheta) < minCosTheta {
		return 0, false // purely transverse track never changes z
	}
	s3d := (targetZ - src.Z) / cosTheta
	if s3d < 0 {
		return 0, false // target is behind the current state
	}
	return s3d, true
}

// transportCovariance computes P' = F·P·Fᵀ via a central-difference
// numerical Jacobian of the position-and-direction transport map,
// mirroring the teacher's
// predict() in l5tracks/tracking.go (which forms F·P·Fᵀ by hand for
// its 4×4 constant-velocity model) generalized to 6 dimensions and a
// nonlinear transport function.
func transportCovariance(src, next *trackstate.State, s3d, bFieldTesla float64) *mat.SymDense {
	if src.Cov == nil {
		return nil
	}
	const h = 1e-6

	f := mat.NewDense(trackstate.NDim, trackstate.NDim, nil)
	for j := 0; j < trackstate.NDim; j++ {
		fwd := stateVector(perturb(src, j, h).Advance(s3d, bFieldTesla))
		bwd := stateVector(perturb(src, j, -h).Advance(s3d, bFieldTesla))
		for i := 0; i < trackstate.NDim; i++ {
			f.Set(i, j, (fwd[i]-bwd[i])/(2*h))
		}
	}

	var fp mat.Dense
	fp.Mul(f, src.Cov)
	var fpft mat.Dense
	fpft.Mul(&fp, f.T())

	out := mat.NewSymDense(trackstate.NDim, nil)
	for i := 0; i < trackstate.NDim; i++ {
		for j := i; j < trackstate.NDim; j++ {
			out.SetSym(i, j, fpft.At(i, j))
		}
	}
	return out
}

// stateVector linearizes a State into the (x, y, z, invPt, phi, theta)
// ordering used by the covariance.
func stateVector(s *trackstate.State) [trackstate.NDim]float64 {
	return [trackstate.NDim]float64{s.X, s.Y, s.Z, s.InvPt, s.Phi, s.Theta}
}

// perturb returns a copy of s with state-vector component j bumped by
// h, used for the finite-difference Jacobian columns.
func perturb(s *trackstate.State, j int, h float64) *trackstate.State {
	c := *s
	switch j {
	case 0:
		c.X += h
	case 1:
		c.Y += h
	case 2:
		c.Z += h
	case 3:
		c.InvPt += h
	case 4:
		c.Phi += h
	case 5:
		c.Theta += h
	}
	return &c
}

// applyMaterial inflates the covariance diagonal to model multiple
// scattering and energy loss at the layer boundary just crossed,
// scaled by path length, the way the teacher scales process noise by
// dt in predict(): "Add process noise Q, scaled by dt for correct
// uncertainty growth regardless of frame rate."
func applyMaterial(s *trackstate.State, s3d float64) {
	if s.Cov == nil {
		return
	}
	const scatteringPerCm = 1e-6
	const energyLossPerCm = 5e-7
	inflatePhi := s.Cov.At(4, 4) + scatteringPerCm*math.Abs(s3d)
	inflateTheta := s.Cov.At(5, 5) + scatteringPerCm*math.Abs(s3d)
	inflateInvPt := s.Cov.At(3, 3) + energyLossPerCm*math.Abs(s3d)
	s.Cov.SetSym(4, 4, inflatePhi)
	s.Cov.SetSym(5, 5, inflateTheta)
	s.Cov.SetSym(3, 3, inflateInvPt)
}

func finite6(s *trackstate.State) bool {
	for _, v := range stateVector(s) {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
