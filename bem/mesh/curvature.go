package mesh

import (
	"math"

	"github.com/thomtron/bem-bubbles/bem/geo"
	"gonum.org/v1/gonum/mat"
)

// Curvatures fits a per-triangle curvature tensor (Rusinkiewicz 2004)
// from the differences of vertex normals along the triangle's three
// edges, in a local (u, v, n) frame, then returns the per-triangle
// mean (kappa = (e+g)/2) and Gaussian (K = e*g - f^2) curvature.
func Curvatures(m *Mesh, vnormals []geo.Vec3) (kappa, gaussian []float64) {
	kappa = make([]float64, len(m.Trigs))
	gaussian = make([]float64, len(m.Trigs))
	for i, t := range m.Trigs {
		e, f, g := triangleCurvatureTensor(
			m.Verts[t.A], m.Verts[t.B], m.Verts[t.C],
			vnormals[t.A], vnormals[t.B], vnormals[t.C],
		)
		kappa[i] = (e + g) / 2
		gaussian[i] = e*g - f*f
	}
	return kappa, gaussian
}

// triangleCurvatureTensor solves the 6x3 overdetermined least-squares
// system relating the three edge-wise vertex-normal differences to the
// curvature tensor components (e, f, g), in the local frame where u is
// along edge a->b and n is the triangle's own face normal.
func triangleCurvatureTensor(a, b, c, na, nb, nc geo.Vec3) (e, f, g float64) {
	n := b.Sub(a).Cross(c.Sub(a)).Unit()
	u := b.Sub(a).Unit()
	v := n.Cross(u)

	frame := func(d geo.Vec3) (float64, float64) { return d.Dot(u), d.Dot(v) }

	eAB := b.Sub(a)
	eBC := c.Sub(b)
	eCA := a.Sub(c)

	dnAB := nb.Sub(na)
	dnBC := nc.Sub(nb)
	dnCA := na.Sub(nc)

	// Each edge contributes 2 rows (projection of dn onto u and v),
	// giving a 6x3 system A*x = y with x = (e, f, g).
	A := mat.NewDense(6, 3, nil)
	y := mat.NewVecDense(6, nil)

	rows := [3]struct {
		edge, dn geo.Vec3
	}{
		{eAB, dnAB}, {eBC, dnBC}, {eCA, dnCA},
	}
	for i, r := range rows {
		du, dv := frame(r.edge)
		yu, yv := frame(r.dn)
		A.SetRow(2*i, []float64{du, dv, 0})
		A.SetRow(2*i+1, []float64{0, du, dv})
		y.SetVec(2*i, yu)
		y.SetVec(2*i+1, yv)
	}

	var ata mat.Dense
	ata.Mul(A.T(), A)
	var aty mat.VecDense
	aty.MulVec(A.T(), y)

	var x mat.VecDense
	if err := x.SolveVec(&ata, &aty); err != nil {
		return 0, 0, 0
	}
	return x.AtVec(0), x.AtVec(1), x.AtVec(2)
}

// MaxCurvature returns, for each vertex, the larger-magnitude
// principal curvature derived from the per-triangle tensor fit
// (mean +/- sqrt(mean^2 - gaussian)), averaged over incident
// triangles; used to drive the remesher's target edge length
// (spec.md 4.7).
func MaxCurvature(m *Mesh) []float64 {
	vn := VertexNormals(m)
	kappa, gauss := Curvatures(m, vn)
	sum := make([]float64, len(m.Verts))
	count := make([]float64, len(m.Verts))
	for i, t := range m.Trigs {
		disc := kappa[i]*kappa[i] - gauss[i]
		if disc < 0 {
			disc = 0
		}
		s := kappa[i]
		if d := math.Sqrt(disc); d > 0 {
			k1 := kappa[i] + d
			k2 := kappa[i] - d
			s = maxAbs(k1, k2)
		}
		for _, idx := range [...]uint32{t.A, t.B, t.C} {
			sum[idx] += s
			count[idx]++
		}
	}
	out := make([]float64, len(m.Verts))
	for i := range out {
		if count[i] > 0 {
			out[i] = sum[i] / count[i]
		}
	}
	return out
}

func maxAbs(a, b float64) float64 {
	aa, bb := a, b
	if aa < 0 {
		aa = -aa
	}
	if bb < 0 {
		bb = -bb
	}
	if aa > bb {
		return a
	}
	return b
}

// VertexCurvature averages the per-triangle mean curvature over
// incident triangles to produce the per-vertex field used in the
// Bernoulli equation (spec.md 4.5).
func VertexCurvature(m *Mesh) []float64 {
	vn := VertexNormals(m)
	kappa, _ := Curvatures(m, vn)
	sum := make([]float64, len(m.Verts))
	count := make([]float64, len(m.Verts))
	for i, t := range m.Trigs {
		for _, idx := range [...]uint32{t.A, t.B, t.C} {
			sum[idx] += kappa[i]
			count[idx]++
		}
	}
	out := make([]float64, len(m.Verts))
	for i := range out {
		if count[i] > 0 {
			out[i] = sum[i] / count[i]
		}
	}
	return out
}
