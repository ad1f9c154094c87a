package mesh

import (
	"math"

	"github.com/thomtron/bem-bubbles/bem/geo"
)

// Icosphere builds a triangulated sphere of the given radius centered
// at the origin by recursively subdividing a regular icosahedron and
// pushing new vertices out to the radius. subdivisions 0 returns the
// bare 12-vertex/20-triangle icosahedron; each further subdivision
// quadruples the triangle count.
func Icosphere(radius float64, subdivisions int) *Mesh {
	t := (1.0 + math.Sqrt(5.0)) / 2.0
	raw := []geo.Vec3{
		geo.V(-1, t, 0), geo.V(1, t, 0), geo.V(-1, -t, 0), geo.V(1, -t, 0),
		geo.V(0, -1, t), geo.V(0, 1, t), geo.V(0, -1, -t), geo.V(0, 1, -t),
		geo.V(t, 0, -1), geo.V(t, 0, 1), geo.V(-t, 0, -1), geo.V(-t, 0, 1),
	}
	verts := make([]geo.Vec3, len(raw))
	for i, v := range raw {
		verts[i] = v.Unit().Scale(radius)
	}
	trigs := []geo.Triplet{
		{A: 0, B: 11, C: 5}, {A: 0, B: 5, C: 1}, {A: 0, B: 1, C: 7}, {A: 0, B: 7, C: 10}, {A: 0, B: 10, C: 11},
		{A: 1, B: 5, C: 9}, {A: 5, B: 11, C: 4}, {A: 11, B: 10, C: 2}, {A: 10, B: 7, C: 6}, {A: 7, B: 1, C: 8},
		{A: 3, B: 9, C: 4}, {A: 3, B: 4, C: 2}, {A: 3, B: 2, C: 6}, {A: 3, B: 6, C: 8}, {A: 3, B: 8, C: 9},
		{A: 4, B: 9, C: 5}, {A: 2, B: 4, C: 11}, {A: 6, B: 2, C: 10}, {A: 8, B: 6, C: 7}, {A: 9, B: 8, C: 1},
	}

	for s := 0; s < subdivisions; s++ {
		midCache := map[edgeKey]uint32{}
		midpoint := func(a, b uint32) uint32 {
			k := canon(a, b)
			if idx, ok := midCache[k]; ok {
				return idx
			}
			mid := verts[a].Add(verts[b]).Scale(0.5).Unit().Scale(radius)
			idx := uint32(len(verts))
			verts = append(verts, mid)
			midCache[k] = idx
			return idx
		}
		next := make([]geo.Triplet, 0, len(trigs)*4)
		for _, tr := range trigs {
			ab := midpoint(tr.A, tr.B)
			bc := midpoint(tr.B, tr.C)
			ca := midpoint(tr.C, tr.A)
			next = append(next,
				geo.Triplet{A: tr.A, B: ab, C: ca},
				geo.Triplet{A: tr.B, B: bc, C: ab},
				geo.Triplet{A: tr.C, B: ca, C: bc},
				geo.Triplet{A: ab, B: bc, C: ca},
			)
		}
		trigs = next
	}

	return New(verts, trigs)
}
