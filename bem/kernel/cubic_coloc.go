package kernel

import (
	"github.com/thomtron/bem-bubbles/bem/geo"
	"github.com/thomtron/bem-bubbles/bem/interp"
)

// DisjointColocCubic is DisjointColoc's cubic-trial counterpart: y is a
// Bezier-triangle patch rather than a flat triangle, so its Jacobian
// varies over the patch and is folded in per sample via the norm of
// GetSurfaceVector instead of a single constant (matching
// Integrator::integrate_disjoint_coloc(vec3, Cubic const&, result_t&),
// which likewise has no outer *tri_y.jacobian() the flat-triangle
// overload applies).
func (in Integrator) DisjointColocCubic(x geo.Vec3, y interp.Cubic) (g float64, h Vec3Block) {
	for _, qy := range in.Quad2D {
		py := y.Interpolate(qy.U, qy.V)
		sv := y.GetSurfaceVector(qy.U, qy.V)
		jac := sv.Norm()
		if jac < 1e-300 {
			continue
		}
		ny := sv.Scale(1 / jac)
		w := qy.W * jac
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

// IdenticalColocCubic integrates the singular case where the
// collocation point sits at corner a of the cubic patch y (the patch
// must already be built so the collocation vertex is y.A()). Unlike
// the flat-triangle IdenticalColoc, H is not identically zero here: a
// cubic patch is only tangent-plane flat in the limit, so both G and H
// get a genuine (regular, once desingularized) integrand. The Duffy
// substitution e1=u, e2=u*v with Jacobian u, mapped through
// (1-e1, e2) to match Cubic's corner-a convention, follows
// Integrator::integrate_identical_coloc(Cubic const&, result_t&)
// exactly.
func (in Integrator) IdenticalColocCubic(y interp.Cubic) (g, h Vec3Block) {
	x := y.A()
	for _, p := range in.Quad1D {
		for _, q := range in.Quad1D {
			u, v := p.X, q.X
			e1 := u
			e2 := u * v
			y0, y1 := 1-e1, e2

			py := y.Interpolate(y0, y1)
			sv := y.GetSurfaceVector(y0, y1)
			jac := sv.Norm()
			if jac < 1e-300 {
				continue
			}
			ny := sv.Scale(1 / jac)
			w := p.W * q.W * u * jac
			shp := linShape(y0, y1)

			gv := gPoint(x, py) * w
			hv := hPoint(x, py, ny) * w
			g[0] += gv * shp[0]
			g[1] += gv * shp[1]
			g[2] += gv * shp[2]
			h[0] += hv * shp[0]
			h[1] += hv * shp[1]
			h[2] += hv * shp[2]
		}
	}
	return g, h
}
