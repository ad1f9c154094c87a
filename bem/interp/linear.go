// Package interp provides the reference-triangle interpolators used
// to map quadrature parameters to points on a physical triangle: a
// flat linear interpolant and a cubic Bezier-triangle patch built from
// corner positions and normals.
package interp

import "github.com/thomtron/bem-bubbles/bem/geo"

// Linear interpolates a flat triangle (a, b, c). Its own native domain
// is the "45-degree" unit triangle 0<=v<=u<=1 (a at (0,0), b at (1,0),
// c at (1,1)), matching Interpolator.hpp's interpolate(u,v) exactly.
// Quad2D's barycentric (U,V) nodes (u,v>=0, u+v<=1) must be remapped
// to this domain via ToUV before being passed in here; the kernel
// integrators do that at the call site (see integrator.go's qUV).
type Linear struct {
	a, b, c geo.Vec3
	ab, bc  geo.Vec3
	normal  geo.Vec3 // unnormalized: (b-a) x (c-b)
	jac     float64
}

// NewLinear builds the interpolator from the three corners.
func NewLinear(a, b, c geo.Vec3) Linear {
	ab := b.Sub(a)
	bc := c.Sub(b)
	n := ab.Cross(bc)
	return Linear{a: a, b: b, c: c, ab: ab, bc: bc, normal: n, jac: n.Norm()}
}

// Interpolate evaluates the point at (u, v) in the 0<=v<=u<=1 domain.
func (l Linear) Interpolate(u, v float64) geo.Vec3 {
	return l.a.AddScaled(l.ab, u).AddScaled(l.bc, v)
}

// InterpRelative returns the point relative to corner a (used by the
// singular-kernel formulas, which only ever need y-x or y-a).
func (l Linear) InterpRelative(u, v float64) geo.Vec3 {
	return l.ab.Scale(u).Add(l.bc.Scale(v))
}

// Jacobian is the constant surface Jacobian ||(b-a)x(c-b)||.
func (l Linear) Jacobian() float64 { return l.jac }

// Normal is the constant outward unit normal.
func (l Linear) Normal() geo.Vec3 { return l.normal.Unit() }

func (l Linear) A() geo.Vec3 { return l.a }
func (l Linear) B() geo.Vec3 { return l.b }
func (l Linear) C() geo.Vec3 { return l.c }
