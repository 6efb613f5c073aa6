package candidatefinder

import (
	"math"

	"github.com/banshee-data/trackfind/internal/event"
	"github.com/banshee-data/trackfind/internal/kalman"
	"github.com/banshee-data/trackfind/internal/trackstate"
	"gonum.org/v1/gonum/mat"
)

// jacobianStep is the finite-difference step used for both the
// measurement Jacobian below and, in package propagator, the
// covariance transport Jacobian — the same numerical-differentiation
// idiom applied to a second nonlinear map instead of a second
// hand-derived partial set.
const jacobianStep = 1e-6

// localProjection maps a global position onto a layer's local 2D
// readout plane: (r·φ, z) for a barrel layer's cylindrical strips, or
// (x, y) for an endcap disk's planar strips.
func localProjection(x, y, z float64, isBarrel bool) (u, v float64) {
	if isBarrel {
		r := math.Hypot(x, y)
		return r * math.Atan2(y, x), z
	}
	return x, y
}

// buildProjector adapts localProjection into a kalman.Projector,
// finite-differencing its Jacobian with respect to the full 6-state
// vector (only the position components have nonzero partials).
func buildProjector(isBarrel bool) kalman.Projector {
	return func(s *trackstate.State) (float64, float64, *mat.Dense) {
		u, v := localProjection(s.X, s.Y, s.Z, isBarrel)
		h := mat.NewDense(2, trackstate.NDim, nil)
		base := [3]float64{s.X, s.Y, s.Z}
		for dim := 0; dim < 3; dim++ {
			p := base
			p[dim] += jacobianStep
			u1, v1 := localProjection(p[0], p[1], p[2], isBarrel)
			p[dim] -= 2 * jacobianStep
			u0, v0 := localProjection(p[0], p[1], p[2], isBarrel)
			h.Set(0, dim, (u1-u0)/(2*jacobianStep))
			h.Set(1, dim, (v1-v0)/(2*jacobianStep))
		}
		return u, v, h
	}
}

// measurementFromHit builds a kalman.Measurement for a hit, projecting
// its packed 3×3 global position covariance into the same local (u, v)
// plane the matching Projector predicts into.
func measurementFromHit(h event.Hit, isBarrel bool) kalman.Measurement {
	u, v := localProjection(h.X, h.Y, h.Z, isBarrel)
	j := hitJacobian(h.X, h.Y, h.Z, isBarrel)

	cxx, cxy, cxz := h.Cov[0], h.Cov[1], h.Cov[2]
	cyy, cyz, czz := h.Cov[3], h.Cov[4], h.Cov[5]

	quad := func(row [3]float64) float64 {
		return row[0]*row[0]*cxx + row[1]*row[1]*cyy + row[2]*row[2]*czz +
			2*row[0]*row[1]*cxy + 2*row[0]*row[2]*cxz + 2*row[1]*row[2]*cyz
	}
	bilinear := func(a, b [3]float64) float64 {
		return a[0]*b[0]*cxx + a[1]*b[1]*cyy + a[2]*b[2]*czz +
			(a[0]*b[1]+a[1]*b[0])*cxy +
			(a[0]*b[2]+a[2]*b[0])*cxz +
			(a[1]*b[2]+a[2]*b[1])*cyz
	}

	return kalman.Measurement{
		U:     u,
		V:     v,
		CovUU: quad(j[0]),
		CovVV: quad(j[1]),
		CovUV: bilinear(j[0], j[1]),
	}
}

// hitJacobian finite-differences the local-plane Jacobian at a hit's
// own position, used to project its position covariance.
func hitJacobian(x, y, z float64, isBarrel bool) [2][3]float64 {
	var j [2][3]float64
	base := [3]float64{x, y, z}
	for dim := 0; dim < 3; dim++ {
		p := base
		p[dim] += jacobianStep
		u1, v1 := localProjection(p[0], p[1], p[2], isBarrel)
		p[dim] -= 2 * jacobianStep
		u0, v0 := localProjection(p[0], p[1], p[2], isBarrel)
		j[0][dim] = (u1 - u0) / (2 * jacobianStep)
		j[1][dim] = (v1 - v0) / (2 * jacobianStep)
	}
	return j
}
