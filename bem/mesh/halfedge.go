package mesh

import (
	"fmt"
	"sort"

	"github.com/thomtron/bem-bubbles/bem/geo"
)

// Handle is an arena index. Arenas are 0-indexed, so the zero value
// is a valid handle; "unset" is marked by the invalid sentinel below.
type Handle int32

const invalidHandle Handle = -1

// HalfedgeView is the topological editor built from a Mesh (spec.md
// 3). Per Design Notes 9, it uses an arena + integer-handle design
// instead of the original's raw-pointer structure: half-edges,
// vertices and edges each live in a resizable slice indexed by Handle,
// and every cross-reference is a Handle rather than a pointer, so no
// reference can dangle across a swap-remove.
type HalfedgeView struct {
	pos     []geo.Vec3 // per-vertex-handle position
	vHalf   []Handle   // per-vertex-handle: one incident half-edge
	vAlive  []bool

	twin  []Handle
	next  []Handle
	vert  []Handle // origin vertex handle
	edge  []Handle
	face  []Handle // invalidHandle for boundary half-edges
	heAlive []bool

	// edgeHalf[e] is one of the (up to two) half-edges bounding edge e;
	// used only for iteration/debug, not for topology.
	edgeHalf []Handle

	faceAlive []bool
	faceCount int
	faceHalf  []Handle // one incident half-edge per face handle
}

// Build constructs a HalfedgeView from a Mesh, matching the original's
// generate_halfedges: walk every triangle's three directed edges,
// glue interior edges by sorting (a,b) pairs, and synthesize boundary
// half-edges (twin = a distinct boundary half-edge, face = invalid)
// for any edge seen only once.
func Build(m *Mesh) (*HalfedgeView, error) {
	h := &HalfedgeView{}
	nv := len(m.Verts)
	h.pos = append([]geo.Vec3(nil), m.Verts...)
	h.vHalf = make([]Handle, nv)
	h.vAlive = make([]bool, nv)
	for i := range h.vAlive {
		h.vAlive[i] = true
		h.vHalf[i] = invalidHandle
	}

	type dirEdge struct {
		a, b uint32
		he   Handle
	}
	var edges []dirEdge

	nt := len(m.Trigs)
	h.twin = make([]Handle, 3*nt)
	h.next = make([]Handle, 3*nt)
	h.vert = make([]Handle, 3*nt)
	h.edge = make([]Handle, 3*nt)
	h.face = make([]Handle, 3*nt)
	h.heAlive = make([]bool, 3*nt)
	h.faceAlive = make([]bool, nt)
	h.faceCount = nt
	h.faceHalf = make([]Handle, nt)

	for i, t := range m.Trigs {
		base := Handle(3 * i)
		h.faceHalf[i] = base
		corners := [3]uint32{t.A, t.B, t.C}
		for k := 0; k < 3; k++ {
			he := base + Handle(k)
			h.next[he] = base + Handle((k+1)%3)
			h.vert[he] = Handle(corners[k])
			h.face[he] = Handle(i)
			h.twin[he] = invalidHandle
			h.edge[he] = invalidHandle
			h.heAlive[he] = true
			h.vHalf[corners[k]] = he
		}
		h.faceAlive[i] = true
		edges = append(edges,
			dirEdge{corners[0], corners[1], base},
			dirEdge{corners[1], corners[2], base + 1},
			dirEdge{corners[2], corners[0], base + 2},
		)
	}

	// Sort by the undirected key (min, max) so that (a,b) and its twin
	// (b,a) end up adjacent.
	lo := func(e dirEdge) uint32 { return min(e.a, e.b) }
	hi := func(e dirEdge) uint32 { return max(e.a, e.b) }
	sort.Slice(edges, func(i, j int) bool {
		if lo(edges[i]) != lo(edges[j]) {
			return lo(edges[i]) < lo(edges[j])
		}
		if hi(edges[i]) != hi(edges[j]) {
			return hi(edges[i]) < hi(edges[j])
		}
		return edges[i].a < edges[j].a
	})

	for i := 0; i < len(edges); i++ {
		if i+1 < len(edges) && edges[i].a == edges[i+1].b && edges[i].b == edges[i+1].a {
			a, b := edges[i].he, edges[i+1].he
			eh := Handle(len(h.edgeHalf))
			h.edgeHalf = append(h.edgeHalf, a)
			h.twin[a] = b
			h.twin[b] = a
			h.edge[a] = eh
			h.edge[b] = eh
			i++
		} else {
			a := edges[i].he
			eh := Handle(len(h.edgeHalf))
			h.edgeHalf = append(h.edgeHalf, a)
			h.twin[a] = a // temporary self-twin marks "needs a boundary mate"
			h.edge[a] = eh
		}
	}

	// Synthesize boundary half-edges for every self-twinned interior
	// half-edge so every vertex ring closes, mirroring
	// HalfedgeMesh.cpp's boundary-stitching loop.
	for a := range h.twin {
		a := Handle(a)
		if int(a) >= len(h.heAlive) || !h.heAlive[a] {
			continue
		}
		if h.twin[a] == a {
			b := h.newHalfedge()
			h.twin[a] = b
			h.twin[b] = a
			h.edge[b] = h.edge[a]
			h.face[b] = invalidHandle
			h.vert[b] = invalidHandle // origin fixed up below via next-chain
		}
	}
	// Link boundary half-edges into closed loops: for a boundary
	// half-edge b = twin(a), next(b) should be twin(prev-around-origin).
	for a := range h.twin {
		a := Handle(a)
		if !h.isAlive(a) || h.face[a] == invalidHandle {
			continue
		}
		// a is interior; nothing to do here, boundary linking below.
	}
	h.linkBoundaryLoops()
	h.fixupVertexRings()

	return h, nil
}

func (h *HalfedgeView) newHalfedge() Handle {
	id := Handle(len(h.heAlive))
	h.twin = append(h.twin, invalidHandle)
	h.next = append(h.next, invalidHandle)
	h.vert = append(h.vert, invalidHandle)
	h.edge = append(h.edge, invalidHandle)
	h.face = append(h.face, invalidHandle)
	h.heAlive = append(h.heAlive, true)
	return id
}

func (h *HalfedgeView) isAlive(he Handle) bool {
	return he >= 0 && int(he) < len(h.heAlive) && h.heAlive[he]
}

// linkBoundaryLoops walks each vertex's incoming boundary half-edge
// and threads next-pointers so boundary half-edges form closed loops
// disjoint from the interior face cycles (spec.md 3's HalfedgeView
// invariant).
func (h *HalfedgeView) linkBoundaryLoops() {
	n := len(h.pos)
	for v := 0; v < n; v++ {
		start := h.vHalf[v]
		if start == invalidHandle {
			continue
		}
		// walk the ring of half-edges leaving v until we find the one
		// whose twin is a boundary half-edge (face == invalid); that
		// twin's next is this vertex's outgoing boundary half-edge.
		he := start
		for {
			tw := h.twin[he]
			if h.face[tw] == invalidHandle {
				// tw originates at v going along the boundary inward;
				// its origin must be v for next-chain purposes.
				h.vert[tw] = Handle(v)
				break
			}
			he = h.next[tw]
			if he == start {
				break
			}
		}
	}
	// Now that every boundary half-edge has a correct origin vertex,
	// set next(b) = the boundary half-edge leaving b's destination.
	for he := range h.face {
		he := Handle(he)
		if !h.isAlive(he) || h.face[he] != invalidHandle {
			continue
		}
		dst := h.vert[h.twin[he]]
		// find boundary half-edge with origin == dst
		cur := h.vHalf[dst]
		start := cur
		for {
			tw := h.twin[cur]
			if h.face[tw] == invalidHandle && h.vert[tw] == dst {
				h.next[he] = tw
				break
			}
			cur = h.next[h.twin[cur]]
			if cur == start {
				break
			}
		}
	}
}

func (h *HalfedgeView) fixupVertexRings() {
	// Ensure each vertex's stored half-edge is one that actually
	// originates there (interior preferred).
	for v, he := range h.vHalf {
		if he == invalidHandle {
			continue
		}
		if int(h.vert[he]) != v {
			h.vHalf[v] = h.twin[he]
		}
	}
}

// CheckValid verifies the half-edge invariants spec.md 8.1 lists:
// next^3 = id on every face, twin^2 = id, edge back-pointer
// consistency, and vertex-ring valence equals triangle incidence.
func (h *HalfedgeView) CheckValid() error {
	for he := range h.heAlive {
		he := Handle(he)
		if !h.isAlive(he) {
			continue
		}
		if h.face[he] != invalidHandle {
			n3 := h.next[h.next[h.next[he]]]
			if n3 != he {
				return fmt.Errorf("mesh: invalid-topology: next^3 != id at halfedge %d", he)
			}
		}
		tw := h.twin[he]
		if h.twin[tw] != he {
			return fmt.Errorf("mesh: invalid-topology: twin^2 != id at halfedge %d", he)
		}
		if h.edge[tw] != h.edge[he] {
			return fmt.Errorf("mesh: invalid-topology: edge back-pointer mismatch at halfedge %d", he)
		}
	}

	// Vertex-ring valence must equal the number of distinct triangle
	// incidences counted by walking incident half-edges directly.
	for v, alive := range h.vAlive {
		if !alive {
			continue
		}
		start := h.vHalf[v]
		if start == invalidHandle {
			return fmt.Errorf("mesh: invalid-topology: vertex %d has no incident halfedge", v)
		}
		seen := map[Handle]bool{}
		he := start
		for {
			if seen[he] {
				return fmt.Errorf("mesh: invalid-topology: vertex %d ring does not close", v)
			}
			seen[he] = true
			if int(h.vert[he]) != v {
				return fmt.Errorf("mesh: invalid-topology: halfedge %d in vertex %d ring has wrong origin", he, v)
			}
			he = h.next[h.twin[he]]
			if he == start {
				break
			}
		}
	}
	return nil
}

// ToMesh extracts a new Mesh from the current topology (generate_mesh
// in the original), reindexing vertices to exclude any removed in
// this editing pass.
func (h *HalfedgeView) ToMesh() *Mesh {
	remap := make([]int32, len(h.vAlive))
	var verts []geo.Vec3
	for i, alive := range h.vAlive {
		if alive {
			remap[i] = int32(len(verts))
			verts = append(verts, h.pos[i])
		} else {
			remap[i] = -1
		}
	}
	var trigs []geo.Triplet
	for f, alive := range h.faceAlive {
		if !alive {
			continue
		}
		he := h.faceHalfedge(f)
		a := uint32(remap[h.vert[he]])
		b := uint32(remap[h.vert[h.next[he]]])
		c := uint32(remap[h.vert[h.next[h.next[he]]]])
		trigs = append(trigs, geo.Triplet{A: a, B: b, C: c})
	}
	return &Mesh{Verts: verts, Trigs: trigs}
}

func (h *HalfedgeView) faceHalfedge(f int) Handle {
	if f >= 0 && f < len(h.faceHalf) {
		he := h.faceHalf[f]
		if h.isAlive(he) && int(h.face[he]) == f {
			return he
		}
	}
	for he := range h.face {
		if h.heAlive[he] && int(h.face[he]) == f {
			return Handle(he)
		}
	}
	return invalidHandle
}

// Valence returns the number of edges incident to vertex v.
func (h *HalfedgeView) Valence(v Handle) int {
	start := h.vHalf[v]
	if start == invalidHandle {
		return 0
	}
	n := 0
	he := start
	for {
		n++
		he = h.next[h.twin[he]]
		if he == start {
			break
		}
	}
	return n
}

// Neighbours returns the 1-ring neighbour vertex handles of v in ring
// order.
func (h *HalfedgeView) Neighbours(v Handle) []Handle {
	start := h.vHalf[v]
	if start == invalidHandle {
		return nil
	}
	var out []Handle
	he := start
	for {
		out = append(out, h.vert[h.twin[he]])
		he = h.next[h.twin[he]]
		if he == start {
			break
		}
	}
	return out
}

// IsBoundary reports whether half-edge he or its twin has no face.
func (h *HalfedgeView) IsBoundary(he Handle) bool {
	return h.face[he] == invalidHandle || h.face[h.twin[he]] == invalidHandle
}

// Position returns the current position of vertex v.
func (h *HalfedgeView) Position(v Handle) geo.Vec3 { return h.pos[v] }

// SetPosition updates the position of vertex v (used by Relax).
func (h *HalfedgeView) SetPosition(v Handle, p geo.Vec3) { h.pos[v] = p }

// NumVertices/NumFaces report current (possibly edited) counts.
func (h *HalfedgeView) NumVertices() int {
	n := 0
	for _, a := range h.vAlive {
		if a {
			n++
		}
	}
	return n
}
func (h *HalfedgeView) NumFaces() int {
	n := 0
	for _, a := range h.faceAlive {
		if a {
			n++
		}
	}
	return n
}
