package kernel

import (
	"math"

	"github.com/thomtron/bem-bubbles/bem/geo"
	"github.com/thomtron/bem-bubbles/bem/interp"
)

// DisjointColocLin integrates the linear-linear collocation pairing
// for a collocation point x that does not touch trial triangle y: both
// G and H come back nodally weighted (LinElm in the original), unlike
// DisjointColoc's constant-test/linear-trial scalar G, matching
// integrand_coloc<HomoPair<LinElm>>(x, y0, y1, Interpolator).
func (in Integrator) DisjointColocLin(x geo.Vec3, y interp.Linear) (g, h Vec3Block) {
	jy := y.Jacobian()
	ny := y.Normal()
	for _, qy := range in.Quad2D {
		py := y.Interpolate(qy.U, qy.V)
		w := qy.W * jy
		shp := linShape(qy.U, qy.V)
		gv := gPoint(x, py) * w
		hv := hPoint(x, py, ny) * w
		g[0] += gv * shp[0]
		g[1] += gv * shp[1]
		g[2] += gv * shp[2]
		h[0] += hv * shp[0]
		h[1] += hv * shp[1]
		h[2] += hv * shp[2]
	}
	return g, h
}

// IdenticalColocLin integrates the linear-linear collocation case
// where the collocation point sits at corner a of trial triangle y
// (already cyclically reordered). H is identically zero, since (y-x)
// is tangent to the flat triangle at its own corner; G is the nodal
// 3-vector from the polar Duffy substitution x=theta*pi/4,
// grounded line for line on
// Integrator::integrate_identical_coloc<LinElm>(Interpolator, LinElm&).
func (in Integrator) IdenticalColocLin(y interp.Linear) (g Vec3Block) {
	jacFactor := 0.25 * y.Jacobian() * (math.Pi / 4) / fourPi
	for _, p := range in.Quad1D {
		x := p.X * (math.Pi / 4)
		cosx, sinx := math.Cos(x), math.Sin(x)
		dist := y.InterpRelative(cosx, sinx).Norm()
		if dist < 1e-300 {
			continue
		}
		overall := jacFactor * p.W / dist
		factor := 1.0 / (cosx * cosx)
		g[0] += overall * cosx * factor
		g[1] += overall * (cosx - sinx) * factor
		g[2] += overall * sinx * factor
	}
	return g
}
