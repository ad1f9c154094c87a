package sim

import (
	"github.com/thomtron/bem-bubbles/bem/geo"
	"github.com/thomtron/bem-bubbles/bem/interp"
	"github.com/thomtron/bem-bubbles/bem/mesh"
)

// Velocities reconstructs the full 3-D velocity field at every vertex
// from the nodal potential phi (tangential component, via the
// in-plane gradient of the linear hat functions) and the nodal normal
// derivative psi (normal component), area-weight-averaging the
// per-triangle tangential gradient to vertices (spec.md 4.4).
func Velocities(m *mesh.Mesh, phi, psi []float64) []geo.Vec3 {
	normals := mesh.VertexNormals(m)
	sum := make([]geo.Vec3, len(m.Verts))
	weight := make([]float64, len(m.Verts))

	for _, t := range m.Trigs {
		a, b, c := m.Verts[t.A], m.Verts[t.B], m.Verts[t.C]
		n := b.Sub(a).Cross(c.Sub(a))
		area2 := n.Norm() // = 2*area
		if area2 < 1e-300 {
			continue
		}
		unitN := n.Scale(1.0 / area2)

		// gradient of the linear hat function at vertex i of a
		// triangle with the opposite edge (vj - vk), standard linear
		// FEM identity grad(N_i) = (vj-vk) x n_hat / (2*Area).
		gradA := b.Sub(c).Cross(unitN).Scale(1.0 / area2)
		gradB := c.Sub(a).Cross(unitN).Scale(1.0 / area2)
		gradC := a.Sub(b).Cross(unitN).Scale(1.0 / area2)

		tang := gradA.Scale(phi[t.A]).Add(gradB.Scale(phi[t.B])).Add(gradC.Scale(phi[t.C]))

		area := 0.5 * area2
		for _, idx := range [...]uint32{t.A, t.B, t.C} {
			sum[idx] = sum[idx].Add(tang.Scale(area))
			weight[idx] += area
		}
	}

	out := make([]geo.Vec3, len(m.Verts))
	for i := range out {
		tangential := geo.Vec3{}
		if weight[i] > 1e-300 {
			tangential = sum[i].Scale(1.0 / weight[i])
		}
		out[i] = tangential.Add(normals[i].Scale(psi[i]))
	}
	return out
}

// CubicVelocities reconstructs the velocity field using cubic
// Bezier-triangle patches (spec.md 4.4's cubic branch): each triangle
// is built into a patch from Max's vertex normals, and the closed-form
// corner tangent-derivative formula (Cubic.TangentDerivativeAtA/B/C)
// supplies the tangential gradient at each of its own three corners.
// Per-vertex velocity is the equally-weighted mean of that gradient
// over incident triangles - not area-weighted, unlike Velocities -
// plus psi_v*n_v, matching LinLinSim.cpp's position_t non-linear
// branch.
func CubicVelocities(m *mesh.Mesh, phi, psi []float64) []geo.Vec3 {
	normals := mesh.VertexNormals(m)
	sum := make([]geo.Vec3, len(m.Verts))
	count := make([]int, len(m.Verts))

	for _, t := range m.Trigs {
		a, b, c := m.Verts[t.A], m.Verts[t.B], m.Verts[t.C]
		na, nb, nc := normals[t.A], normals[t.B], normals[t.C]
		patch := interp.NewCubic(a, b, c, na, nb, nc)
		pa, pb, pc := phi[t.A], phi[t.B], phi[t.C]

		sum[t.A] = sum[t.A].Add(patch.TangentDerivativeAtA(pa, pb, pc))
		sum[t.B] = sum[t.B].Add(patch.TangentDerivativeAtB(pa, pb, pc))
		sum[t.C] = sum[t.C].Add(patch.TangentDerivativeAtC(pa, pb, pc))
		count[t.A]++
		count[t.B]++
		count[t.C]++
	}

	out := make([]geo.Vec3, len(m.Verts))
	for i := range out {
		tangential := geo.Vec3{}
		if count[i] > 0 {
			tangential = sum[i].Scale(1.0 / float64(count[i]))
		}
		out[i] = tangential.Add(normals[i].Scale(psi[i]))
	}
	return out
}

// SpeedSquared returns ||u||^2 at every vertex, the grad_squared term
// of the Bernoulli right-hand side (spec.md 4.5).
func SpeedSquared(vel []geo.Vec3) []float64 {
	out := make([]float64, len(vel))
	for i, v := range vel {
		out[i] = v.Norm2()
	}
	return out
}
