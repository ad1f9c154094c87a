package mesh

import (
	"math"

	"github.com/thomtron/bem-bubbles/bem/geo"
	"gonum.org/v1/gonum/mat"
)

// CoordSystem is a local orthonormal frame (origin O, axes X, Y, Z)
// used to express ring neighbours relative to a fit centre.
type CoordSystem struct {
	O, X, Y, Z geo.Vec3
}

// NewCoordSystem builds a frame with Z = normal (n need not be unit),
// X = a fixed coordinate axis orthogonalized against Z, Y completing
// the right-handed frame.
func NewCoordSystem(origin, normal geo.Vec3) CoordSystem {
	z := normal.Unit()
	x := geo.V(1, 0, 0)
	if math.Abs(z.Dot(x)) > 0.9 {
		x = geo.V(0, 1, 0)
	}
	x = x.Sub(z.Scale(x.Dot(z))).Unit()
	y := z.Cross(x)
	return CoordSystem{O: origin, X: x, Y: y, Z: z}
}

// Transform expresses a world point in the local frame's (x, y, z)
// coordinates relative to the origin.
func (cs CoordSystem) Transform(p geo.Vec3) geo.Vec3 {
	d := p.Sub(cs.O)
	return geo.V(d.Dot(cs.X), d.Dot(cs.Y), d.Dot(cs.Z))
}

// WorldCoords maps local (x, y, z) back to world space, relative to
// the origin.
func (cs CoordSystem) WorldCoords(x, y, z float64) geo.Vec3 {
	return cs.O.Add(cs.X.Scale(x)).Add(cs.Y.Scale(y)).Add(cs.Z.Scale(z))
}

// WorldCoordsRelative is the same but without the origin offset (a
// pure direction transform), used when composing displacements.
func (cs CoordSystem) WorldCoordsRelative(x, y, z float64) geo.Vec3 {
	return cs.X.Scale(x).Add(cs.Y.Scale(y)).Add(cs.Z.Scale(z))
}

// QuadraticFit holds the 6 coefficients (a0..a5) of a local quadratic
// height field z = a0 + a1*x + a2*y + a3*x^2 + a4*x*y + a5*y^2 fit by
// weighted least squares over a vertex's 1-ring (spec.md 4.8), plus
// the frame it was fit in.
type QuadraticFit struct {
	Params [6]float64
	System CoordSystem
}

// ComputeQuadraticFit fits the local height field at centre (with unit
// normal) against the 1-ring positions, weighting each neighbour by
// exp(-||p||/(2*dbar)) where dbar is the mean ring distance (spec.md
// 4.8). Degrades to a planar (a3=a4=a5=0, effectively linear) fit when
// fewer than 6 neighbours are available, since the quadratic system is
// then underdetermined (spec.md 9's open-question resolution).
func ComputeQuadraticFit(center, normal geo.Vec3, ring []geo.Vec3) QuadraticFit {
	sys := NewCoordSystem(center, normal)

	n := len(ring)
	local := make([]geo.Vec3, n)
	dbar := 0.0
	for i, p := range ring {
		local[i] = sys.Transform(p)
		dbar += local[i].Norm()
	}
	if n > 0 {
		dbar /= float64(n)
	}
	if dbar < 1e-12 {
		dbar = 1
	}

	degree := 6
	if n < 6 {
		degree = 3 // degrade to a linear fit: a0, a1, a2 only
	}

	A := mat.NewDense(n, degree, nil)
	y := mat.NewVecDense(n, nil)
	w := mat.NewDiagDense(n, nil)
	for i, p := range local {
		x, yy := p.X, p.Y
		row := []float64{1, x, yy, x * x, x * yy, yy * yy}
		A.SetRow(i, row[:degree])
		y.SetVec(i, p.Z)
		weight := math.Exp(-local[i].Norm() / (2 * dbar))
		w.SetDiag(i, weight)
	}

	var wa mat.Dense
	wa.Mul(w, A)
	var ata mat.Dense
	ata.Mul(A.T(), &wa)
	var wy mat.Dense
	wy.Mul(w, y)
	var aty mat.Dense
	aty.Mul(A.T(), &wy)

	var x mat.Dense
	if err := x.Solve(&ata, &aty); err != nil {
		return QuadraticFit{System: sys}
	}

	var out QuadraticFit
	out.System = sys
	for i := 0; i < degree; i++ {
		out.Params[i] = x.At(i, 0)
	}
	return out
}

// GetPosition evaluates the fitted patch at local (x, y) and returns
// the world-space point.
func (q QuadraticFit) GetPosition(x, y float64) geo.Vec3 {
	p := q.Params
	z := p[0] + p[1]*x + p[2]*y + p[3]*x*x + p[4]*x*y + p[5]*y*y
	return q.System.WorldCoords(x, y, z)
}

// GetNormal returns the fitted surface's unit normal at local (x, y).
func (q QuadraticFit) GetNormal(x, y float64) geo.Vec3 {
	p := q.Params
	dzdx := p[1] + 2*p[3]*x + p[4]*y
	dzdy := p[2] + p[4]*x + 2*p[5]*y
	tx := geo.V(1, 0, dzdx)
	ty := geo.V(0, 1, dzdy)
	localN := tx.Cross(ty).Unit()
	return q.System.WorldCoordsRelative(localN.X, localN.Y, localN.Z).Unit()
}

// GetCurvature returns the mean curvature of the fitted patch at the
// origin (x=y=0), where it reduces to (a3+a5) for a unit-normal fit
// (Wang 2014's closed form for the quadratic-patch curvature at the
// fit centre).
func (q QuadraticFit) GetCurvature() float64 {
	return q.Params[3] + q.Params[5]
}
