package kernel

import (
	"github.com/thomtron/bem-bubbles/bem/geo"
	"github.com/thomtron/bem-bubbles/bem/interp"
)

// shape45 evaluates the three linear nodal basis functions at (u, v)
// in a Linear's own 0<=v<=u<=1 domain, in the order (a, b, c): weight
// 1-u at a, u-v at b, v at c. These satisfy
// a*(1-u) + b*(u-v) + c*v == a + u*(b-a) + v*(c-b), matching
// Linear.Interpolate exactly, so they are the correct nodal weights
// to pair with a Duffy sample taken directly in this domain (unlike
// the ordinary-quadrature paths above, which sample in Quad2D's
// barycentric domain instead).
func shape45(u, v float64) [3]float64 {
	return [3]float64{1 - u, u - v, v}
}

// galerkinPoint evaluates the linear-linear G/H kernel for one sample:
// a test point (x0, x1) on x and a trial point (y0, y1) on y, both
// given in the 0<=v<=u<=1 domain. It is the building block both
// SharedEdgeLinLin and SharedVertexLinLin sum over their nested Duffy
// quadrature.
func galerkinPoint(x, y interp.Linear, x0, x1, y0, y1 float64) (g, h Mat3Block) {
	px := x.Interpolate(x0, x1)
	py := y.Interpolate(y0, y1)
	ny := y.Normal()
	gv := gPoint(px, py)
	hv := hPoint(px, py, ny)
	shpx := shape45(x0, x1)
	shpy := shape45(y0, y1)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			g[i][j] = gv * shpx[i] * shpy[j]
			h[i][j] = hv * shpx[i] * shpy[j]
		}
	}
	return g, h
}

// SharedEdgeLinLin integrates the Galerkin weakly-singular case where
// x and y share an edge (both already cyclically reordered so the
// shared edge runs a->b in each). It desingularizes the 1/r kernel by
// a four-fold nested Duffy substitution over [0,1]^4 (xi, eta1, eta2,
// eta3): with A=xi, B=A*eta1, C=B*eta2, D=C*eta3, the shared-edge
// region splits into five sub-integrand evaluations, four of which
// share a common eta2 factor and one (the last) that does not -
// omitting it is what keeps the split exact rather than an
// approximation.
func (in Integrator) SharedEdgeLinLin(x, y interp.Linear) (g, h Mat3Block) {
	jac := x.Jacobian() * y.Jacobian()
	for _, xi := range in.Quad1D {
		for _, eta1 := range in.Quad1D {
			for _, eta2 := range in.Quad1D {
				for _, eta3 := range in.Quad1D {
					weight := xi.W * eta1.W * eta2.W * eta3.W *
						xi.X * xi.X * xi.X * eta1.X * eta1.X

					A := xi.X
					B := A * eta1.X
					C := B * eta2.X
					D := C * eta3.X

					tg, th := galerkinPoint(x, y, A, B, A-D, C-D)
					g2, h2 := galerkinPoint(x, y, A-C, B-C, A, D)
					g3, h3 := galerkinPoint(x, y, A-D, C-D, A, B)
					g4, h4 := galerkinPoint(x, y, A-D, B-D, A, C)
					tg = tg.Add(g2).(Mat3Block).Add(g3).(Mat3Block).Add(g4).(Mat3Block)
					th = th.Add(h2).(Mat3Block).Add(h3).(Mat3Block).Add(h4).(Mat3Block)
					tg = tg.Scale(eta2.X).(Mat3Block)
					th = th.Scale(eta2.X).(Mat3Block)

					g5, h5 := galerkinPoint(x, y, A, B*eta3.X, A-C, B-C)
					tg = tg.Add(g5).(Mat3Block)
					th = th.Add(h5).(Mat3Block)

					g = g.Add(tg.Scale(weight)).(Mat3Block)
					h = h.Add(th.Scale(weight)).(Mat3Block)
				}
			}
		}
	}
	g = g.Scale(jac).(Mat3Block)
	h = h.Scale(jac).(Mat3Block)
	return g, h
}

// SharedVertexLinLin integrates the Galerkin weakly-singular case
// where x and y share only a vertex (both reordered so it sits at
// position a). The same four-fold Duffy substitution applies, but
// with C=A*eta2 (rather than B*eta2 as in the shared-edge case) and
// only two sub-integrand evaluations, one for each triangle's role as
// the inner singular wedge.
func (in Integrator) SharedVertexLinLin(x, y interp.Linear) (g, h Mat3Block) {
	jac := x.Jacobian() * y.Jacobian()
	for _, xi := range in.Quad1D {
		for _, eta1 := range in.Quad1D {
			for _, eta2 := range in.Quad1D {
				for _, eta3 := range in.Quad1D {
					weight := xi.W * eta1.W * eta2.W * eta3.W *
						xi.X * xi.X * xi.X * eta2.X

					A := xi.X
					B := A * eta1.X
					C := A * eta2.X
					D := C * eta3.X

					g1, h1 := galerkinPoint(x, y, A, B, C, D)
					g2, h2 := galerkinPoint(x, y, C, D, A, B)
					tg := g1.Add(g2).(Mat3Block)
					th := h1.Add(h2).(Mat3Block)

					g = g.Add(tg.Scale(weight)).(Mat3Block)
					h = h.Add(th.Scale(weight)).(Mat3Block)
				}
			}
		}
	}
	g = g.Scale(jac).(Mat3Block)
	h = h.Scale(jac).(Mat3Block)
	return g, h
}

// Reorder cyclically reorders both triplets and their vertex lookups
// so that shared indices land at matching leading positions (a shared
// edge runs a.A->a.B, with b.A == a.A), and reports whether a shared
// edge is traversed in opposite directions between the two triangles
// (the sign-flip condition of spec.md 4.2).
func Reorder(ti, tj geo.Triplet) (a, b geo.Triplet, shared int, flip bool, err error) {
	shared = ti.SharedCount(tj)
	switch shared {
	case 0:
		return ti, tj, 0, false, nil
	case 1:
		var common uint32
		for _, x := range [...]uint32{ti.A, ti.B, ti.C} {
			if tj.Has(x) {
				common = x
				break
			}
		}
		a, err = ti.CyclicReorder(common)
		if err != nil {
			return
		}
		b, err = tj.CyclicReorder(common)
		return a, b, 1, false, err
	case 2:
		// find the two shared indices, in ti's order
		var first, second uint32
		found := 0
		for _, x := range [...]uint32{ti.A, ti.B, ti.C} {
			if tj.Has(x) {
				if found == 0 {
					first = x
				} else {
					second = x
				}
				found++
			}
		}
		// a shared pair at ti's A and C is ti's edge C->A: start from
		// C so the shared edge lands at a.A->a.B.
		if first == ti.A && second == ti.C {
			first, second = second, first
		}
		a, err = ti.CyclicReorder(first)
		if err != nil {
			return
		}
		b, err = tj.CyclicReorder(first)
		if err != nil {
			return
		}
		// same orientation iff b.B == second (i.e. the edge a->second
		// runs the same way in both triangles); opposite orientation
		// (the expected, correctly-oriented-manifold case) means
		// b.C == second, and swapping b's B and C aligns the edge.
		flip = b.C == second
		return a, b, 2, flip, nil
	default:
		return ti, tj, 3, false, nil
	}
}
