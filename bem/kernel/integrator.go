package kernel

import (
	"math"

	"github.com/thomtron/bem-bubbles/bem/geo"
	"github.com/thomtron/bem-bubbles/bem/interp"
	"github.com/thomtron/bem-bubbles/bem/quad"
)

// Integrator computes single- and double-layer contributions over a
// pair of triangles, dispatching by how many vertices the pair shares
// (spec.md 4.2, Design Notes 9's "five-arm sum"). It is safe to copy:
// all state is the two fixed quadrature-rule slices, matching the
// per-thread private-copy pattern spec.md 5 requires of assembly.
type Integrator struct {
	Quad2D []quad.Node2D
	Quad1D []quad.Node1D
}

// NewIntegrator builds an integrator with the default rules
// (the order-7 triangle rule, order-7 Gauss for Duffy nesting) the
// original's Simulation constructor selects.
func NewIntegrator() Integrator {
	return Integrator{
		Quad2D: quad.Triangle7,
		Quad1D: quad.Gauss1D(7),
	}
}

// SetTriangleRule overrides the 2-D quadrature rule (e.g. quad.Triangle19
// for exterior-potential evaluation).
func (in *Integrator) SetTriangleRule(r []quad.Node2D) { in.Quad2D = r }

// SetGaussOrder overrides the 1-D Duffy-nesting rule order.
func (in *Integrator) SetGaussOrder(n int) { in.Quad1D = quad.Gauss1D(n) }

// linShape evaluates the 3 linear nodal basis functions at (u, v),
// w = 1-u-v, in the order (a, b, c).
func linShape(u, v float64) [3]float64 {
	return [3]float64{u, v, 1 - u - v}
}

// --- Disjoint pair (ordinary product quadrature, no singularity) ---

// DisjointConCon integrates the constant-constant pairing: G, H are
// single numbers, the triangle's own Jacobians/areas folded in.
func (in Integrator) DisjointConCon(x, y interp.Linear) (g, h float64) {
	jx, jy := x.Jacobian(), y.Jacobian()
	ny := y.Normal()
	for _, qx := range in.Quad2D {
		px := x.Interpolate(qx.U, qx.V)
		for _, qy := range in.Quad2D {
			py := y.Interpolate(qy.U, qy.V)
			w := qx.W * qy.W * jx * jy
			g += gPoint(px, py) * w
			h += hPoint(px, py, ny) * w
		}
	}
	return g, h
}

// DisjointConLin integrates the constant test / linear trial pairing:
// G is a scalar (trial integrated against the constant test function,
// i.e. summed), H is the 3-vector of nodal contributions.
func (in Integrator) DisjointConLin(x, y interp.Linear) (g float64, h Vec3Block) {
	jx, jy := x.Jacobian(), y.Jacobian()
	ny := y.Normal()
	for _, qx := range in.Quad2D {
		px := x.Interpolate(qx.U, qx.V)
		for _, qy := range in.Quad2D {
			py := y.Interpolate(qy.U, qy.V)
			w := qx.W * qy.W * jx * jy
			shp := linShape(qy.U, qy.V)
			gv := gPoint(px, py) * w
			hv := hPoint(px, py, ny) * w
			g += gv
			h[0] += hv * shp[0]
			h[1] += hv * shp[1]
			h[2] += hv * shp[2]
		}
	}
	return g, h
}

// DisjointLinLin integrates the linear-linear (Galerkin) pairing: both
// G and H are 3x3 blocks, row = test node, column = trial node.
func (in Integrator) DisjointLinLin(x, y interp.Linear) (g, h Mat3Block) {
	jx, jy := x.Jacobian(), y.Jacobian()
	ny := y.Normal()
	for _, qx := range in.Quad2D {
		px := x.Interpolate(qx.U, qx.V)
		shpx := linShape(qx.U, qx.V)
		for _, qy := range in.Quad2D {
			py := y.Interpolate(qy.U, qy.V)
			shpy := linShape(qy.U, qy.V)
			w := qx.W * qy.W * jx * jy
			gv := gPoint(px, py) * w
			hv := hPoint(px, py, ny) * w
			for i := 0; i < 3; i++ {
				for j := 0; j < 3; j++ {
					g[i][j] += gv * shpx[i] * shpy[j]
					h[i][j] += hv * shpx[i] * shpy[j]
				}
			}
		}
	}
	return g, h
}

// --- Collocation (x is a fixed point, no test quadrature) ---

// DisjointColoc integrates a single 2-D rule over the trial triangle
// y for a collocation point x that does not touch y: G is scalar, H
// is the linear nodal 3-block.
func (in Integrator) DisjointColoc(x geo.Vec3, y interp.Linear) (g float64, h Vec3Block) {
	jy := y.Jacobian()
	ny := y.Normal()
	for _, qy := range in.Quad2D {
		py := y.Interpolate(qy.U, qy.V)
		w := qy.W * jy
		shp := linShape(qy.U, qy.V)
		gv := gPoint(x, py) * w
		hv := hPoint(x, py, ny) * w
		g += gv
		h[0] += hv * shp[0]
		h[1] += hv * shp[1]
		h[2] += hv * shp[2]
	}
	return g, h
}

// IdenticalColoc integrates the singular case where the collocation
// point x coincides with corner `a` of triangle y (the triplet must
// already be cyclically reordered so the shared vertex is at position
// a). It uses the polar-like Duffy substitution of spec.md 4.2: over
// the reference triangle with a at the origin, (rho, theta) in
// [0, r(theta)] x [0, pi/2] where rho absorbs the 1/r singularity
// (Jacobian rho), making the integrand regular; H is identically zero
// here since (y-x) is tangent to the surface at the singular corner.
func (in Integrator) IdenticalColoc(y interp.Linear) (g float64) {
	jy := y.Jacobian()
	// The reference triangle in (u,v) has corner a at (0,0); the edge
	// u+v=1 is the far edge. For an angle theta in [0, pi/2], the ray
	// from the origin exits the unit reference triangle at
	// rMax(theta) = 1/(cos(theta)+sin(theta)). Since the map (u,v) -> x
	// is affine, p(rho,theta)-a = rho*(cos(theta)*ab + sin(theta)*bc),
	// so |p-a| = rho*L(theta) and the 1/r singularity cancels exactly
	// against the polar Jacobian rho, leaving a regular integrand.
	for _, qt := range in.Quad1D {
		theta := qt.X * (math.Pi / 2)
		ct, st := math.Cos(theta), math.Sin(theta)
		rMax := 1.0 / (ct + st)
		dir := y.InterpRelative(ct, st) // = cos(theta)*ab + sin(theta)*bc
		length := dir.Norm()
		if length < 1e-300 {
			continue
		}
		// integral over rho of the regular integrand jy/(4*pi*length)
		// is just rMax * jy/(4*pi*length) (integrand independent of rho).
		g += qt.W * (math.Pi / 2) * rMax * jy / (fourPi * length)
	}
	return g
}
