package interp

import "github.com/thomtron/bem-bubbles/bem/geo"

// Cubic is a 10-control-point Bezier-triangle patch built from three
// corners and three vertex normals (spec.md 4.1). Control points are
// named pIJK where i+j+k=3 following the usual Bezier-triangle
// indexing: p300=a, p030=b, p003=c.
type Cubic struct {
	p300, p030, p003 geo.Vec3
	p210, p120       geo.Vec3
	p021, p012       geo.Vec3
	p102, p201       geo.Vec3
	p111             geo.Vec3
}

// NewCubic builds the patch from the three corners (a, b, c) and
// their vertex normals (na, nb, nc).
func NewCubic(a, b, c, na, nb, nc geo.Vec3) Cubic {
	proj := func(p1, p2, n1 geo.Vec3) geo.Vec3 {
		w := p1.Sub(p2).Dot(n1)
		return p1.Scale(2).Add(p2).Add(n1.Scale(w)).Scale(1.0 / 3.0)
	}
	p210 := proj(a, b, na)
	p120 := proj(b, a, nb)
	p021 := proj(b, c, nb)
	p012 := proj(c, b, nc)
	p102 := proj(c, a, nc)
	p201 := proj(a, c, na)

	e := p210.Add(p120).Add(p021).Add(p012).Add(p102).Add(p201).Scale(1.0 / 6.0)
	v := a.Add(b).Add(c).Scale(1.0 / 3.0)
	p111 := e.Add(e.Sub(v).Scale(0.5))

	return Cubic{
		p300: a, p030: b, p003: c,
		p210: p210, p120: p120,
		p021: p021, p012: p012,
		p102: p102, p201: p201,
		p111: p111,
	}
}

// Interpolate evaluates the patch at barycentric (u, v), w = 1-u-v.
func (c Cubic) Interpolate(u, v float64) geo.Vec3 {
	w := 1.0 - u - v
	u2, v2, w2 := u*u, v*v, w*w

	pt := c.p300.Scale(u * u2)
	pt = pt.Add(c.p030.Scale(v * v2))
	pt = pt.Add(c.p003.Scale(w * w2))
	pt = pt.Add(c.p210.Scale(3 * u2 * v))
	pt = pt.Add(c.p201.Scale(3 * u2 * w))
	pt = pt.Add(c.p120.Scale(3 * u * v2))
	pt = pt.Add(c.p021.Scale(3 * v2 * w))
	pt = pt.Add(c.p012.Scale(3 * v * w2))
	pt = pt.Add(c.p102.Scale(3 * u * w2))
	pt = pt.Add(c.p111.Scale(6 * u * v * w))
	return pt
}

func (c Cubic) dudx(u, v float64) geo.Vec3 {
	w := 1.0 - u - v
	u2, v2, w2 := u*u, v*v, w*w

	t := c.p300.Scale(u2).Sub(c.p003.Scale(w2)).Add(c.p120.Sub(c.p021).Scale(v2)).Scale(3.0)
	t = t.Add(c.p201.Scale(6*u*w - 3*u2))
	t = t.Add(c.p102.Scale(3*w2 - 6*u*w))
	t = t.Add(c.p111.Scale(v*w - u*v).Scale(6))
	t = t.Add(c.p210.Scale(6 * u * v))
	t = t.Add(c.p012.Scale(-6 * v * w))
	return t
}

func (c Cubic) dvdx(u, v float64) geo.Vec3 {
	w := 1.0 - u - v
	u2, v2, w2 := u*u, v*v, w*w

	t := c.p030.Scale(v2).Sub(c.p003.Scale(w2)).Add(c.p210.Sub(c.p201).Scale(u2)).Scale(3.0)
	t = t.Add(c.p021.Scale(6*v*w - 3*v2))
	t = t.Add(c.p012.Scale(3*w2 - 6*v*w))
	t = t.Add(c.p111.Scale(u*w - u*v).Scale(6))
	t = t.Add(c.p120.Scale(6 * u * v))
	t = t.Add(c.p102.Scale(-6 * u * w))
	return t
}

// GetSurfaceVector returns the cross of the two parametric tangents;
// its norm is the local Jacobian.
func (c Cubic) GetSurfaceVector(u, v float64) geo.Vec3 {
	return c.dudx(u, v).Cross(c.dvdx(u, v))
}

// GetNormal is the unit normal at (u, v).
func (c Cubic) GetNormal(u, v float64) geo.Vec3 {
	return c.GetSurfaceVector(u, v).Unit()
}

// cornerTangentGradient is the shared body of TangentDerivativeAtA/B/C:
// given the two parametric tangents at a corner (degenerate u,v there),
// it builds the constant-gradient formula for a linear scalar field
// exactly as the flat-triangle case does, removing the 0/0 singularity
// the generic tangent_derivative formula has at the corners.
func cornerTangentGradient(dudx, dvdx geo.Vec3, pa, pb, pc float64) geo.Vec3 {
	ab := dvdx.Sub(dudx)
	bc := dvdx.Neg()
	n := ab.Cross(bc)
	n = n.Scale(1.0 / n.Norm2())

	grad := n.Cross(ab).Scale(pc - pb)
	grad = grad.Add(n.Cross(bc).Scale(pa - pb))
	return grad
}

// TangentDerivativeAtA is the closed-form tangential gradient of the
// linear field (pa, pb, pc) at corner a (u=1, v=w=0).
func (c Cubic) TangentDerivativeAtA(pa, pb, pc float64) geo.Vec3 {
	dudx := c.p300.Sub(c.p201).Scale(3)
	dvdx := c.p210.Sub(c.p201).Scale(3)
	return cornerTangentGradient(dudx, dvdx, pa, pb, pc)
}

// TangentDerivativeAtB is the same at corner b (v=1, u=w=0).
func (c Cubic) TangentDerivativeAtB(pa, pb, pc float64) geo.Vec3 {
	dudx := c.p120.Sub(c.p021).Scale(3)
	dvdx := c.p030.Sub(c.p021).Scale(3)
	return cornerTangentGradient(dudx, dvdx, pa, pb, pc)
}

// TangentDerivativeAtC is the same at corner c (w=1, u=v=0).
func (c Cubic) TangentDerivativeAtC(pa, pb, pc float64) geo.Vec3 {
	dudx := c.p102.Sub(c.p003).Scale(3)
	dvdx := c.p012.Sub(c.p003).Scale(3)
	return cornerTangentGradient(dudx, dvdx, pa, pb, pc)
}

func (c Cubic) A() geo.Vec3 { return c.p300 }
func (c Cubic) B() geo.Vec3 { return c.p030 }
func (c Cubic) C() geo.Vec3 { return c.p003 }
