// Package geo holds the primitive geometric types shared across the
// simulator: a 3-vector and an index triplet naming a triangle's
// corners.
package geo

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a point or direction in R^3. It is built directly on
// gonum's r3.Vec so the arithmetic below is a thin, domain-named
// layer over well-tested vector algebra rather than a reimplementation.
type Vec3 struct {
	X, Y, Z float64
}

func V(x, y, z float64) Vec3 { return Vec3{x, y, z} }

func (v Vec3) r3() r3.Vec { return r3.Vec{X: v.X, Y: v.Y, Z: v.Z} }

func fromR3(u r3.Vec) Vec3 { return Vec3{u.X, u.Y, u.Z} }

func (v Vec3) Add(u Vec3) Vec3 { return fromR3(r3.Add(v.r3(), u.r3())) }
func (v Vec3) Sub(u Vec3) Vec3 { return fromR3(r3.Sub(v.r3(), u.r3())) }
func (v Vec3) Scale(s float64) Vec3 { return fromR3(r3.Scale(s, v.r3())) }
func (v Vec3) Neg() Vec3 { return v.Scale(-1) }

func (v Vec3) Dot(u Vec3) float64 { return r3.Dot(v.r3(), u.r3()) }
func (v Vec3) Cross(u Vec3) Vec3  { return fromR3(r3.Cross(v.r3(), u.r3())) }

// Norm2 is the squared Euclidean length, cheaper than Norm when only
// used for comparisons.
func (v Vec3) Norm2() float64 { return v.Dot(v) }
func (v Vec3) Norm() float64  { return r3.Norm(v.r3()) }

// Unit returns the normalized vector; the zero vector is returned
// unchanged (mirrors vector3d.hpp's null-guarded normalize).
func (v Vec3) Unit() Vec3 {
	n := v.Norm()
	if n < 1e-300 {
		return v
	}
	return v.Scale(1.0 / n)
}

// IsNull reports whether every component is within eps of zero.
func (v Vec3) IsNull(eps float64) bool {
	return math.Abs(v.X) < eps && math.Abs(v.Y) < eps && math.Abs(v.Z) < eps
}

func (v Vec3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// Lerp linearly interpolates between v and u at parameter t.
func Lerp(v, u Vec3, t float64) Vec3 {
	return v.Scale(1 - t).Add(u.Scale(t))
}

// AddScaled adds u scaled by s to v, a common fused accumulation in
// the quadrature loops.
func (v Vec3) AddScaled(u Vec3, s float64) Vec3 {
	return v.Add(u.Scale(s))
}
