package sim

import (
	"runtime"
	"sync"
	"time"

	"github.com/thomtron/bem-bubbles/bem/geo"
	"github.com/thomtron/bem-bubbles/bem/interp"
	"github.com/thomtron/bem-bubbles/bem/kernel"
	"github.com/thomtron/bem-bubbles/bem/logx"
	"github.com/thomtron/bem-bubbles/bem/mesh"
	"gonum.org/v1/gonum/mat"
)

// Wall is an infinite flat rigid boundary, represented by a point on
// the plane and its outward unit normal (pointing into the fluid).
type Wall struct {
	Point  geo.Vec3
	Normal geo.Vec3
}

func (w Wall) mirror(p geo.Vec3) geo.Vec3 {
	n := w.Normal.Unit()
	d := p.Sub(w.Point).Dot(n)
	return p.Sub(n.Scale(2 * d))
}

// PinnedSimulation is a Simulation whose mesh sits above a rigid flat
// Wall, handled by the method of images: every collocation and trial
// triangle gets a mirrored counterpart reflected across the wall
// plane, contributing its kernel integral back into the SAME
// row/column as its real vertex (since the image and its source are
// assumed to share potential and flux by the rigid-wall symmetry
// condition), so no explicit wall panels are ever meshed (spec.md 9's
// supplemented pinned-wall feature).
type PinnedSimulation struct {
	*Simulation
	Wall Wall

	// WallRing lists the vertices found within eps of the wall plane
	// at construction; NoPenetration projects them back onto it.
	// AssemblePinned does not read WallRing: it does no column surgery,
	// and these vertices' psi is not prescribed but solved like any
	// other vertex's.
	WallRing []int
}

// NewPinnedSimulation builds a PinnedSimulation, auto-detecting the
// wall-ring vertices as those within eps of the wall plane.
func NewPinnedSimulation(m *mesh.Mesh, w Wall, eps float64) *PinnedSimulation {
	s := NewSimulation(m)
	ps := &PinnedSimulation{Simulation: s, Wall: w}
	n := w.Normal.Unit()
	for i, v := range m.Verts {
		if d := v.Sub(w.Point).Dot(n); d < 0 {
			if -d < eps {
				ps.WallRing = append(ps.WallRing, i)
			}
		} else if d < eps {
			ps.WallRing = append(ps.WallRing, i)
		}
	}
	return ps
}

// NoPenetration projects every wall-ring vertex back onto the wall
// plane, undoing any drift a finite time step introduces (spec.md 9's
// nopenetration helper).
func (ps *PinnedSimulation) NoPenetration() {
	n := ps.Wall.Normal.Unit()
	for _, idx := range ps.WallRing {
		v := ps.Mesh.Verts[idx]
		d := v.Sub(ps.Wall.Point).Dot(n)
		ps.Mesh.Verts[idx] = v.Sub(n.Scale(d))
	}
}

// AssemblePinned builds the mirrored G/H system: the ordinary
// Galerkin assembly of m (Assemble's logic) plus, for every trial
// triangle, the contribution of its mirror image scattered into the
// SAME columns as the real triangle's vertices.
func AssemblePinned(m *mesh.Mesh, w Wall, numThreads int) System {
	if numThreads <= 0 {
		numThreads = runtime.NumCPU()
	}
	nv := len(m.Verts)
	nt := len(m.Trigs)
	if numThreads > nt {
		numThreads = nt
	}
	if numThreads < 1 {
		numThreads = 1
	}

	mirrorVerts := make([]geo.Vec3, nv)
	for i, v := range m.Verts {
		mirrorVerts[i] = w.mirror(v)
	}

	type partial struct{ g, h *mat.Dense }
	results := make(chan partial, numThreads)
	chunk := (nt + numThreads - 1) / numThreads
	var wg sync.WaitGroup
	start := time.Now()
	for wk := 0; wk < numThreads; wk++ {
		lo := wk * chunk
		hi := lo + chunk
		if hi > nt {
			hi = nt
		}
		if lo >= hi {
			continue
		}
		wg.Add(1)
		go func(lo, hi int) {
			defer wg.Done()
			localMesh := m.Clone()
			in := kernel.NewIntegrator()
			g := mat.NewDense(nv, nv, nil)
			h := mat.NewDense(nv, nv, nil)
			assembleTriangleRange(localMesh, in, g, h, lo, hi)
			assembleMirrorRange(localMesh, mirrorVerts, in, g, h, lo, hi)
			results <- partial{g, h}
		}(lo, hi)
	}
	go func() { wg.Wait(); close(results) }()

	G := mat.NewDense(nv, nv, nil)
	H := mat.NewDense(nv, nv, nil)
	for p := range results {
		G.Add(G, p.g)
		H.Add(H, p.h)
	}
	logx.Assembly(nv, nt, numThreads, time.Since(start).Seconds())
	return System{G: G, H: H}
}

// assembleMirrorRange adds the disjoint contribution of every mirror
// image triangle (reflected positions, reversed winding so its
// outward normal still points into the fluid) to the source
// triangles [lo, hi), scattered back into the real vertex columns.
// Mirror and real triangles never share an index by construction, so
// every pairing is the ordinary disjoint kernel, never a singular arm
// (a real vertex exactly on the wall plane coincides with its own
// mirror image; that pairing is still integrated with the disjoint
// kernel).
func assembleMirrorRange(m *mesh.Mesh, mirrorVerts []geo.Vec3, in kernel.Integrator, g, h *mat.Dense, lo, hi int) {
	for i := lo; i < hi; i++ {
		ti := m.Trigs[i]
		tx := interp.NewLinear(m.Verts[ti.A], m.Verts[ti.B], m.Verts[ti.C])
		for _, tj := range m.Trigs {
			// reversed winding (B, A, C) keeps the mirrored triangle's
			// outward normal pointing back toward the fluid.
			ya := mirrorVerts[tj.B]
			yb := mirrorVerts[tj.A]
			yc := mirrorVerts[tj.C]
			ty := interp.NewLinear(ya, yb, yc)
			gb, hb := in.DisjointLinLin(tx, ty)
			// column order must match (B, A, C) above.
			scatter(g, h, ti, geo.Triplet{A: tj.B, B: tj.A, C: tj.C}, gb, hb)
		}
	}
}
