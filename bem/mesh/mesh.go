// Package mesh holds the triangulated-surface ground truth (Mesh), the
// half-edge topological editor used for remeshing, curvature and
// vertex-normal estimators, a local quadratic surface fitter, and the
// connected-component and project-and-interpolate transfer helpers.
package mesh

import (
	"fmt"
	"math"

	"github.com/thomtron/bem-bubbles/bem/geo"
)

// Mesh is the ordered vertex array + ordered triangle array ground
// truth (spec.md 3): vertex index is identity, and each triangle is
// oriented so its outward normal is (b-a)x(c-a) normalized.
type Mesh struct {
	Verts []geo.Vec3
	Trigs []geo.Triplet
}

// New builds a mesh from raw vertex and triangle slices (no copy).
func New(verts []geo.Vec3, trigs []geo.Triplet) *Mesh {
	return &Mesh{Verts: verts, Trigs: trigs}
}

// Clone makes a deep copy, the unit of work handed to each assembly or
// projection worker (spec.md 5's "private copy" pattern).
func (m *Mesh) Clone() *Mesh {
	v := make([]geo.Vec3, len(m.Verts))
	copy(v, m.Verts)
	t := make([]geo.Triplet, len(m.Trigs))
	copy(t, m.Trigs)
	return &Mesh{Verts: v, Trigs: t}
}

// CheckValid runs the basic non-degeneracy checks spec.md 3 requires:
// every vertex used by at least one triangle, no triangle with near-
// zero area, and all indices in range.
func (m *Mesh) CheckValid(epsArea float64) error {
	used := make([]bool, len(m.Verts))
	for i, t := range m.Trigs {
		for _, idx := range [...]uint32{t.A, t.B, t.C} {
			if int(idx) >= len(m.Verts) {
				return fmt.Errorf("mesh: triangle %d references out-of-range vertex %d", i, idx)
			}
			used[idx] = true
		}
		a, b, c := m.Verts[t.A], m.Verts[t.B], m.Verts[t.C]
		n := b.Sub(a).Cross(c.Sub(a))
		edge2 := b.Sub(a).Norm2()
		if n.Norm2() < epsArea*epsArea*edge2*edge2 {
			return fmt.Errorf("mesh: triangle %d is degenerate (near-zero area)", i)
		}
	}
	for i, u := range used {
		if !u {
			return fmt.Errorf("mesh: vertex %d is not referenced by any triangle", i)
		}
	}
	return nil
}

// Add translates every vertex by d.
func (m *Mesh) Add(d geo.Vec3) {
	for i := range m.Verts {
		m.Verts[i] = m.Verts[i].Add(d)
	}
}

// Scale multiplies every vertex by s (about the origin).
func (m *Mesh) Scale(s float64) {
	for i := range m.Verts {
		m.Verts[i] = m.Verts[i].Scale(s)
	}
}

// CenterOfMass returns the area-weighted centroid of the surface.
func CenterOfMass(m *Mesh) geo.Vec3 {
	var sum geo.Vec3
	area := 0.0
	for _, t := range m.Trigs {
		a, b, c := m.Verts[t.A], m.Verts[t.B], m.Verts[t.C]
		centroid := a.Add(b).Add(c).Scale(1.0 / 3.0)
		ta := b.Sub(a).Cross(c.Sub(a)).Norm() * 0.5
		sum = sum.Add(centroid.Scale(ta))
		area += ta
	}
	if area == 0 {
		return geo.Vec3{}
	}
	return sum.Scale(1.0 / area)
}

// Volume is the signed volume enclosed by the (assumed closed,
// outward-oriented) surface, computed as the sum of signed
// origin-to-triangle tetrahedra (spec.md 4.5).
func Volume(m *Mesh) float64 {
	v := 0.0
	for _, t := range m.Trigs {
		a, b, c := m.Verts[t.A], m.Verts[t.B], m.Verts[t.C]
		v += a.Dot(b.Cross(c)) / 6.0
	}
	return v
}

// TriangleNormals returns the unit outward normal of every triangle.
func TriangleNormals(m *Mesh) []geo.Vec3 {
	out := make([]geo.Vec3, len(m.Trigs))
	for i, t := range m.Trigs {
		a, b, c := m.Verts[t.A], m.Verts[t.B], m.Verts[t.C]
		out[i] = b.Sub(a).Cross(c.Sub(a)).Unit()
	}
	return out
}

// TriangleIndices returns, for each vertex, the list of incident
// triangle indices.
func TriangleIndices(m *Mesh) [][]int {
	out := make([][]int, len(m.Verts))
	for i, t := range m.Trigs {
		out[t.A] = append(out[t.A], i)
		out[t.B] = append(out[t.B], i)
		out[t.C] = append(out[t.C], i)
	}
	return out
}

// VertexNeighbours returns, for each vertex, its 1-ring neighbour
// indices (deduplicated, unordered).
func VertexNeighbours(m *Mesh) [][]uint32 {
	out := make([][]uint32, len(m.Verts))
	seen := make([]map[uint32]bool, len(m.Verts))
	for i := range seen {
		seen[i] = map[uint32]bool{}
	}
	addEdge := func(a, b uint32) {
		if !seen[a][b] {
			seen[a][b] = true
			out[a] = append(out[a], b)
		}
	}
	for _, t := range m.Trigs {
		addEdge(t.A, t.B)
		addEdge(t.B, t.A)
		addEdge(t.B, t.C)
		addEdge(t.C, t.B)
		addEdge(t.C, t.A)
		addEdge(t.A, t.C)
	}
	return out
}

// TwoRing returns, for each vertex, the union of its 1-ring and the
// 1-rings of its 1-ring neighbours (used to smooth the curvature
// parameter, spec.md 4.7).
func TwoRing(m *Mesh) [][]uint32 {
	one := VertexNeighbours(m)
	out := make([][]uint32, len(m.Verts))
	for i := range one {
		seen := map[uint32]bool{uint32(i): true}
		var ring []uint32
		for _, n := range one[i] {
			if !seen[n] {
				seen[n] = true
				ring = append(ring, n)
			}
			for _, n2 := range one[n] {
				if !seen[n2] {
					seen[n2] = true
					ring = append(ring, n2)
				}
			}
		}
		out[i] = ring
	}
	return out
}

// VertexNormals computes Max's exact-for-sphere weighting (spec.md
// 4.4): for every triangle incident to vertex v, reorder the triangle
// so v is at position a, then accumulate (b-a)x(c-a) / (|b-a|^2*|c-a|^2).
func VertexNormals(m *Mesh) []geo.Vec3 {
	out := make([]geo.Vec3, len(m.Verts))
	for _, t := range m.Trigs {
		accumulate := func(a, b, c uint32) {
			va, vb, vc := m.Verts[a], m.Verts[b], m.Verts[c]
			B := vb.Sub(va)
			C := vc.Sub(va)
			denom := B.Norm2() * C.Norm2()
			if denom < 1e-300 {
				return
			}
			out[a] = out[a].Add(B.Cross(C).Scale(1.0 / denom))
		}
		accumulate(t.A, t.B, t.C)
		accumulate(t.B, t.C, t.A)
		accumulate(t.C, t.A, t.B)
	}
	for i := range out {
		out[i] = out[i].Unit()
	}
	return out
}

// SolidAngleAtVertex estimates the solid angle subtended by the
// surface at vertex i from the fan of incident triangles, via the
// standard spherical-excess (Van Oosterom-Strackee-style) formula
// summed triangle by triangle around the vertex.
func SolidAngleAtVertex(m *Mesh, vertexIdx uint32, incident []int) float64 {
	omega := 0.0
	p := m.Verts[vertexIdx]
	for _, ti := range incident {
		t := m.Trigs[ti]
		var b, c uint32
		switch vertexIdx {
		case t.A:
			b, c = t.B, t.C
		case t.B:
			b, c = t.C, t.A
		case t.C:
			b, c = t.A, t.B
		default:
			continue
		}
		vb := m.Verts[b].Sub(p)
		vc := m.Verts[c].Sub(p)
		nb, nc := vb.Norm(), vc.Norm()
		y := vb.Cross(vc).Norm()
		x := nb*nc + vb.Dot(vc)
		omega += 2 * math.Atan2(y, x)
	}
	return omega
}
