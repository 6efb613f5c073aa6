// Package trackstate implements the fixed six-parameter curvilinear
// track state and the helix predicates used to decide, cheaply,
// whether a full propagation is worth attempting (spec.md §4.3).
package trackstate

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// NDim is the dimensionality of the state vector and its covariance.
const NDim = 6

// Charge is the sign of a particle's electric charge.
type Charge int8

const (
	Negative Charge = -1
	Positive Charge = 1
)

// State is the curvilinear track state (x, y, z, 1/pT, φ, θ) plus its
// 6×6 symmetric covariance (spec.md §3 "TrackState"). 1/pT, φ and θ
// decouple charge and momentum sign from position, which is why the
// propagator and Kalman updater both operate in this basis rather than
// Cartesian momentum.
type State struct {
	X, Y, Z float64
	InvPt   float64 // 1/pT, always > 0
	Phi     float64
	Theta   float64 // polar angle from +z, in (0, π)

	Q     Charge
	Valid bool

	Cov *mat.SymDense // 6x6, ordered (x, y, z, invPt, phi, theta)
}

// New builds a valid state with the given parameters and a diagonal
// covariance holding the variance sigma² on each diagonal entry.
func New(x, y, z, invPt, phi, theta float64, q Charge, sigma float64) *State {
	cov := mat.NewSymDense(NDim, nil)
	for i := 0; i < NDim; i++ {
		cov.SetSym(i, i, sigma*sigma)
	}
	return &State{X: x, Y: y, Z: z, InvPt: invPt, Phi: phi, Theta: theta, Q: q, Valid: true, Cov: cov}
}

// Invalid returns a zero state marked invalid, the value propagate and
// update return on failure (spec.md §4.4, §4.5).
func Invalid() *State {
	return &State{Valid: false}
}

// Clone deep-copies s, including its covariance.
func (s *State) Clone() *State {
	cov := mat.NewSymDense(NDim, nil)
	if s.Cov != nil {
		cov.CopySym(s.Cov)
	}
	c := *s
	c.Cov = cov
	return &c
}

// PT returns the transverse momentum.
func (s *State) PT() float64 {
	if s.InvPt == 0 {
		return math.Inf(1)
	}
	return 1 / s.InvPt
}

// Eta returns the pseudorapidity derived from θ.
func (s *State) Eta() float64 {
	return -math.Log(math.Tan(s.Theta / 2))
}

// Momentum returns the Cartesian momentum components.
func (s *State) Momentum() (px, py, pz float64) {
	pt := s.PT()
	px = pt * math.Cos(s.Phi)
	py = pt * math.Sin(s.Phi)
	pz = pt / math.Tan(s.Theta)
	return
}

// CurvatureRadius is the radius of the helix's transverse (x,y)
// circular projection, in cm, for the given uniform field in Tesla.
// Grounded in the standard curvature relation used throughout
// original_source/Propagation.cc: r = pT / (c_light · B).
func (s *State) CurvatureRadius(bFieldTesla float64) float64 {
	const speedOfLightBend = 0.0029979251 // GeV / (T·cm)
	if bFieldTesla == 0 {
		return math.Inf(1)
	}
	return s.PT() / (speedOfLightBend * bFieldTesla)
}

// transverseCircle returns the center (cx, cy) of the helix's
// transverse projection and its radius, for the given field. A positive
// charge turns clockwise, so its center lies to the right of the
// direction of motion φ.
func (s *State) transverseCircle(bFieldTesla float64) (cx, cy, rc float64) {
	rc = s.CurvatureRadius(bFieldTesla)
	h := float64(s.Q)
	cx = s.X + h*rc*math.Sin(s.Phi)
	cy = s.Y - h*rc*math.Cos(s.Phi)
	return
}

// CanReachRadius reports whether the helix's transverse circle ever
// touches radius R, algebraically, without propagating (spec.md §4.3).
func (s *State) CanReachRadius(R, bFieldTesla float64) bool {
	cx, cy, rc := s.transverseCircle(bFieldTesla)
	if math.IsInf(rc, 1) {
		return true // straight line in an unset field always reaches any R
	}
	d := math.Hypot(cx, cy)
	lo, hi := math.Abs(d-rc), d+rc
	return R >= lo && R <= hi
}

// MaxReachRadius returns the apex radius of the helix's transverse
// projection: the farthest transverse distance from the beam axis the
// track ever reaches.
func (s *State) MaxReachRadius(bFieldTesla float64) float64 {
	cx, cy, rc := s.transverseCircle(bFieldTesla)
	if math.IsInf(rc, 1) {
		return math.Inf(1)
	}
	return math.Hypot(cx, cy) + rc
}

// ArcLengthToRadius returns the 3D path length along the helix to its
// first outward-going intersection with radius R, and whether that
// intersection exists at all (i.e. CanReachRadius(R)). Used both by
// ZAtR and by package propagator to drive a barrel-type step to its
// target surface.
func (s *State) ArcLengthToRadius(R, bFieldTesla float64) (float64, bool) {
	if !s.CanReachRadius(R, bFieldTesla) {
		return 0, false
	}
	sinTheta := math.Sin(s.Theta)
	cx, cy, rc := s.transverseCircle(bFieldTesla)
	if math.IsInf(rc, 1) {
		dr := R - math.Hypot(s.X, s.Y)
		if dr < 0 {
			return 0, false
		}
		return dr / sinTheta, true
	}

	h := float64(s.Q)
	d := math.Hypot(cx, cy)

	cosGamma := (d*d + rc*rc - R*R) / (2 * d * rc)
	cosGamma = math.Max(-1, math.Min(1, cosGamma))
	gamma := math.Acos(cosGamma)

	thetaC := math.Atan2(cy, cx)
	beta0 := math.Atan2(s.Y-cy, s.X-cx)

	cand1 := normalizeAngle(thetaC + math.Pi + gamma)
	cand2 := normalizeAngle(thetaC + math.Pi - gamma)

	traveled1 := normalizeNonNegative(h * (beta0 - cand1))
	traveled2 := normalizeNonNegative(h * (beta0 - cand2))

	traveled := traveled1
	if traveled2 < traveled1 {
		traveled = traveled2
	}
	return traveled * rc / sinTheta, true
}

// ZAtR returns the z coordinate of the first intersection of the helix
// with the cylinder of radius R, on the outward-going side, and
// whether that intersection exists at all (i.e. CanReachRadius(R)).
func (s *State) ZAtR(R, bFieldTesla float64) (float64, bool) {
	s3d, ok := s.ArcLengthToRadius(R, bFieldTesla)
	if !ok {
		return 0, false
	}
	return s.Z + s3d*math.Cos(s.Theta), true
}

// Advance moves the state forward by 3D path length s3d along its
// helix, returning the new position and direction with InvPt, Q and Θ
// unchanged (no material effects — a pure helix step). The returned
// state carries no covariance; the caller (package propagator)
// transports that separately via the Jacobian.
func (s *State) Advance(s3d, bFieldTesla float64) *State {
	sinTheta, cosTheta := math.Sin(s.Theta), math.Cos(s.Theta)
	out := &State{InvPt: s.InvPt, Theta: s.Theta, Q: s.Q, Valid: true}
	out.Z = s.Z + s3d*cosTheta

	rc := s.CurvatureRadius(bFieldTesla)
	if math.IsInf(rc, 1) {
		out.X = s.X + s3d*sinTheta*math.Cos(s.Phi)
		out.Y = s.Y + s3d*sinTheta*math.Sin(s.Phi)
		out.Phi = s.Phi
		return out
	}

	h := float64(s.Q)
	cx, cy, _ := s.transverseCircle(bFieldTesla)
	beta0 := math.Atan2(s.Y-cy, s.X-cx)
	traveled := s3d * sinTheta / rc
	betaNew := beta0 - h*traveled

	out.X = cx + rc*math.Cos(betaNew)
	out.Y = cy + rc*math.Sin(betaNew)
	out.Phi = normalizeAngle(s.Phi - h*traveled)
	return out
}

func normalizeAngle(a float64) float64 {
	for a > math.Pi {
		a -= 2 * math.Pi
	}
	for a < -math.Pi {
		a += 2 * math.Pi
	}
	return a
}

func normalizeNonNegative(a float64) float64 {
	const twoPi = 2 * math.Pi
	a = math.Mod(a, twoPi)
	if a < 0 {
		a += twoPi
	}
	return a
}

// ChargeFromHits derives the charge sign from the curvature implied by
// three (x, y) hit positions along a track's path, in the same way
// original_source/Track.h's calculateCharge uses the first three hits
// of a seed: the sign of the cross product of the two chords.
func ChargeFromHits(x0, y0, x1, y1, x2, y2 float64) Charge {
	cross := (x1-x0)*(y2-y0) - (y1-y0)*(x2-x0)
	if cross > 0 {
		return Negative
	}
	return Positive
}
