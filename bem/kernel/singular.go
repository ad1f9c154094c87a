package kernel

import (
	"math"

	"github.com/thomtron/bem-bubbles/bem/interp"
)

// polarSelfIntegral splits the reference triangle into the three
// wedges formed by connecting an interior point (u0, v0) to pairs of
// its corners, and polar-decomposes a singular self-integral the way Duffy's
// transformation does, generalized here to an arbitrary interior
// singular point rather than only a corner (IdenticalColoc in
// integrator.go handles the corner-singular collocation case
// directly; this is the Galerkin analogue needed when the singular
// point is the quadrature-sampled y rather than a fixed vertex).
func (in Integrator) polarSelfIntegral(tri interp.Linear, u0, v0 float64, shapeFunc func(u, v float64) float64) float64 {
	corners := [3][2]float64{{0, 0}, {1, 0}, {0, 1}}
	jy := tri.Jacobian()
	quad1D := in.Quad1D

	total := 0.0
	for e := 0; e < 3; e++ {
		ca := corners[e]
		cb := corners[(e+1)%3]
		angA := math.Atan2(ca[1]-v0, ca[0]-u0)
		angB := math.Atan2(cb[1]-v0, cb[0]-u0)
		for angB < angA {
			angB += 2 * math.Pi
		}
		if angB-angA > math.Pi {
			// picked the reflex wedge; swap to the other winding
			angA, angB = angB-2*math.Pi, angA
		}
		for _, qt := range quad1D {
			theta := angA + qt.X*(angB-angA)
			ct, st := math.Cos(theta), math.Sin(theta)
			// distance from (u0,v0) to the far edge (ca,cb) along (ct,st)
			rMax, ok := rayEdgeDistance(u0, v0, ct, st, ca, cb)
			if !ok || rMax <= 0 {
				continue
			}
			dir := tri.InterpRelative(ct, st)
			length := dir.Norm()
			if length < 1e-300 {
				continue
			}
			inner := 0.0
			for _, qr := range quad1D {
				rho := qr.X * rMax
				u := u0 + rho*ct
				v := v0 + rho*st
				inner += qr.W * rMax * shapeFunc(u, v)
			}
			total += qt.W * (angB - angA) * inner * jy / (fourPi * length)
		}
	}
	return total
}

// rayEdgeDistance finds the parameter s>=0 such that (u0,v0)+s*(ct,st)
// lies on the segment (ca,cb); returns (s, true) if it does.
func rayEdgeDistance(u0, v0, ct, st float64, ca, cb [2]float64) (float64, bool) {
	ex := cb[0] - ca[0]
	ey := cb[1] - ca[1]
	denom := ct*ey - st*ex
	if math.Abs(denom) < 1e-300 {
		return 0, false
	}
	// solve (u0,v0) + s*(ct,st) = ca + t*(ex,ey)
	t := ((u0-ca[0])*st - (v0-ca[1])*ct) / denom
	if t < -1e-9 || t > 1+1e-9 {
		return 0, false
	}
	var s float64
	if math.Abs(ct) > math.Abs(st) {
		s = (ca[0] + t*ex - u0) / ct
	} else {
		s = (ca[1] + t*ey - v0) / st
	}
	return s, true
}

// IdenticalLinLin integrates the Galerkin identical-pair case (both
// triangles are the same element) for the linear-linear pairing. G is
// computed by an outer ordinary quadrature over y combined with the
// polar self-integral over x centered at each y sample (regular after
// the rho-Jacobian cancels the 1/r singularity). H uses the closed-form
// identical-pair prefactor table (spec.md 4.2: "the H block in the
// identical case reduces to a universal prefactor table"), scaled by
// the triangle's own Jacobian.
func (in Integrator) IdenticalLinLin(tri interp.Linear) (g, h Mat3Block) {
	jy := tri.Jacobian()
	for _, qy := range in.Quad2D {
		shpy := linShape(qy.U, qy.V)
		for i := 0; i < 3; i++ {
			inner := in.polarSelfIntegral(tri, qy.U, qy.V, func(u, v float64) float64 {
				return linShape(u, v)[i]
			})
			for j := 0; j < 3; j++ {
				g[i][j] += qy.W * jy * shpy[j] * inner
			}
		}
	}
	hPref := Mat3IdenticalHFactor.Scale(-jy).(Mat3Block)
	return g, hPref
}

// IdenticalConCon is the constant-element analogue of IdenticalLinLin.
func (in Integrator) IdenticalConCon(tri interp.Linear) (g, h float64) {
	jy := tri.Jacobian()
	for _, qy := range in.Quad2D {
		inner := in.polarSelfIntegral(tri, qy.U, qy.V, func(u, v float64) float64 { return 1 })
		g += qy.W * jy * inner
	}
	h = -ScalarIdenticalHFactor * jy
	return g, h
}
