package mesh

import (
	"gonum.org/v1/gonum/graph"
	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/traverse"

	"github.com/thomtron/bem-bubbles/bem/geo"
)

// connectedComponents builds an undirected adjacency graph over m's
// vertices (one node per vertex, one edge per mesh edge) and returns
// each vertex's component label via repeated breadth-first search,
// grounded on gonum/graph/traverse's BreadthFirst walker.
func connectedComponents(m *Mesh) []int {
	g := simple.NewUndirectedGraph()
	for i := range m.Verts {
		g.AddNode(simple.Node(i))
	}
	neigh := VertexNeighbours(m)
	for v, nbs := range neigh {
		for _, n := range nbs {
			if !g.HasEdgeBetween(int64(v), int64(n)) {
				g.SetEdge(simple.Edge{F: simple.Node(v), T: simple.Node(n)})
			}
		}
	}

	label := make([]int, len(m.Verts))
	for i := range label {
		label[i] = -1
	}
	var bf traverse.BreadthFirst
	comp := 0
	for start := 0; start < len(m.Verts); start++ {
		if label[start] != -1 {
			continue
		}
		bf.Reset()
		bf.Walk(g, simple.Node(start), func(n graph.Node, depth int) bool {
			label[int(n.ID())] = comp
			return false
		})
		comp++
	}
	return label
}

// SplitComponents partitions a (possibly disconnected) mesh into its
// connected components, each returned as an independent Mesh with
// vertex indices renumbered from zero (spec.md 4.9: used after a
// topology change such as bubble pinch-off or coalescence produces
// more than one closed surface).
func SplitComponents(m *Mesh) []*Mesh {
	label := connectedComponents(m)
	numComp := 0
	for _, l := range label {
		if l+1 > numComp {
			numComp = l + 1
		}
	}
	if numComp <= 1 {
		return []*Mesh{m}
	}

	remap := make([][]int32, numComp)
	verts := make([][]geo.Vec3, numComp)
	for i := range remap {
		remap[i] = make([]int32, len(m.Verts))
		for j := range remap[i] {
			remap[i][j] = -1
		}
	}
	for v, l := range label {
		remap[l][v] = int32(len(verts[l]))
		verts[l] = append(verts[l], m.Verts[v])
	}

	trigs := make([][]geo.Triplet, numComp)
	for _, t := range m.Trigs {
		l := label[t.A]
		trigs[l] = append(trigs[l], geo.Triplet{
			A: uint32(remap[l][t.A]),
			B: uint32(remap[l][t.B]),
			C: uint32(remap[l][t.C]),
		})
	}

	out := make([]*Mesh, numComp)
	for i := 0; i < numComp; i++ {
		out[i] = &Mesh{Verts: verts[i], Trigs: trigs[i]}
	}
	return out
}

// ComponentVolumes returns, for every vertex, the enclosed volume of
// the connected component it belongs to (MeshGroup.cpp's
// volume_per_vertex): a bubble cloud's gas term is applied per
// connected component rather than against the mesh's combined volume,
// since disjoint bubbles share no interior.
func ComponentVolumes(m *Mesh) []float64 {
	label := connectedComponents(m)
	numComp := 0
	for _, l := range label {
		if l+1 > numComp {
			numComp = l + 1
		}
	}
	vols := make([]float64, numComp)
	for _, t := range m.Trigs {
		a, b, c := m.Verts[t.A], m.Verts[t.B], m.Verts[t.C]
		vols[label[t.A]] += a.Dot(b.Cross(c)) / 6.0
	}
	out := make([]float64, len(m.Verts))
	for v, l := range label {
		out[v] = vols[l]
	}
	return out
}

// NumComponents reports how many connected components m has, without
// building the split meshes (a cheap check used before deciding
// whether a topology-change event occurred).
func NumComponents(m *Mesh) int {
	label := connectedComponents(m)
	n := 0
	for _, l := range label {
		if l+1 > n {
			n = l + 1
		}
	}
	return n
}
