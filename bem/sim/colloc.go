package sim

import (
	"math"
	"runtime"
	"sync"

	"github.com/thomtron/bem-bubbles/bem/geo"
	"github.com/thomtron/bem-bubbles/bem/interp"
	"github.com/thomtron/bem-bubbles/bem/kernel"
	"github.com/thomtron/bem-bubbles/bem/mesh"
	"gonum.org/v1/gonum/mat"
)

// AssembleColloc builds the linear-linear (or cubic-trial) collocation
// system (spec.md 4.3's "linear-linear collocation" sizing: G, H both
// nv x nv): row i is the collocation point sitting at vertex i, and
// every trial triangle contributes to the three columns of its own
// corners, matching ColocSim::assemble_matrices. cubic selects cubic
// Bezier-triangle trial elements, built from Max's vertex normals,
// over flat linear trial elements; Assemble (the package's default) is
// the linear-linear Galerkin discretization instead - this is the
// alternate collocation discretization spec.md 4.3 lists alongside it.
func AssembleColloc(m *mesh.Mesh, p Params, cubic bool) System {
	numThreads := p.NumThreads
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

	normals := mesh.VertexNormals(m)

	type partial struct{ g, h *mat.Dense }
	results := make(chan partial, numThreads)

	chunk := (nt + numThreads - 1) / numThreads
	var wg sync.WaitGroup
	for w := 0; w < numThreads; w++ {
		lo := w * chunk
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
			in := kernel.NewIntegrator()
			g := mat.NewDense(nv, nv, nil)
			h := mat.NewDense(nv, nv, nil)
			for j := lo; j < hi; j++ {
				collocTriangleColumn(m, normals, in, g, h, j, cubic)
			}
			results <- partial{g, h}
		}(lo, hi)
	}
	go func() {
		wg.Wait()
		close(results)
	}()

	G := mat.NewDense(nv, nv, nil)
	H := mat.NewDense(nv, nv, nil)
	for r := range results {
		G.Add(G, r.g)
		H.Add(H, r.h)
	}

	applyColocDiagonal(H, cubic)
	return System{G: G, H: H}
}

// collocTriangleColumn accumulates, into columns trip.A/B/C of g and
// h, trial triangle j's contribution against every collocation vertex
// i: when i is one of the triangle's own corners, the singular
// identical-coloc formula applies (after cyclically reordering so i
// sits at corner a); otherwise the ordinary disjoint collocation
// quadrature applies. Mirrors
// Integrator::integrate_Lin_coloc_local[_cubic]'s per-(i, tri_j) loop.
func collocTriangleColumn(m *mesh.Mesh, normals []geo.Vec3, in kernel.Integrator, g, h *mat.Dense, j int, cubic bool) {
	trip := m.Trigs[j]
	cols := [3]uint32{trip.A, trip.B, trip.C}

	for i := 0; i < len(m.Verts); i++ {
		shift, reordered, onTriangle := shiftFor(trip, uint32(i))

		var gv, hv kernel.Vec3Block
		shiftOut := 0
		if onTriangle {
			shiftOut = shift
			if cubic {
				y := cubicPatch(m, normals, reordered)
				gv, hv = in.IdenticalColocCubic(y)
			} else {
				y := interp.NewLinear(m.Verts[reordered.A], m.Verts[reordered.B], m.Verts[reordered.C])
				gv = in.IdenticalColocLin(y)
			}
		} else {
			if cubic {
				y := cubicPatch(m, normals, trip)
				gv, hv = in.DisjointColocCubic(m.Verts[i], y)
			} else {
				y := interp.NewLinear(m.Verts[trip.A], m.Verts[trip.B], m.Verts[trip.C])
				gv, hv = in.DisjointColocLin(m.Verts[i], y)
			}
		}

		for k := 0; k < 3; k++ {
			col := cols[(k+shiftOut)%3]
			g.Set(i, int(col), g.At(i, int(col))+gv[k])
			h.Set(i, int(col), h.At(i, int(col))+hv[k])
		}
	}
}

// shiftFor cyclically reorders trip so vertex i sits at position a,
// reporting how many steps the rotation took (0 if i==trip.A, 1 if
// i==trip.B, 2 if i==trip.C) so a caller can map the reordered result
// back onto the triangle's original column order, and whether i lies
// on the triangle at all.
func shiftFor(trip geo.Triplet, i uint32) (shift int, reordered geo.Triplet, onTriangle bool) {
	switch i {
	case trip.A:
		return 0, trip, true
	case trip.B:
		return 1, geo.Triplet{A: trip.B, B: trip.C, C: trip.A}, true
	case trip.C:
		return 2, geo.Triplet{A: trip.C, B: trip.A, C: trip.B}, true
	default:
		return 0, geo.Triplet{}, false
	}
}

func cubicPatch(m *mesh.Mesh, normals []geo.Vec3, t geo.Triplet) interp.Cubic {
	return interp.NewCubic(
		m.Verts[t.A], m.Verts[t.B], m.Verts[t.C],
		normals[t.A], normals[t.B], normals[t.C],
	)
}

// applyColocDiagonal fills in the solid-angle part of H left out of
// the direct-integration sweep (spec.md 4.3): for linear trial
// elements the diagonal is set so each full row sums to -4*pi (the
// "4-pi rule", computed here from the already-assembled row rather
// than an independent solid-angle quadrature); for cubic trial
// elements the collocation point's local geometry is always C1-smooth,
// so the correction is the fixed -2*pi a flat vertex plane subtends,
// applied on top of the already-integrated identical-coloc diagonal
// instead of replacing it (matching ColocSim::assemble_matrices's
// "#else H(i,i) -= 2.0*M_PI" branch exactly).
func applyColocDiagonal(H *mat.Dense, cubic bool) {
	nv, _ := H.Dims()
	for i := 0; i < nv; i++ {
		if cubic {
			H.Set(i, i, H.At(i, i)-2*math.Pi)
			continue
		}
		rowSum := 0.0
		for j := 0; j < nv; j++ {
			rowSum -= H.At(i, j)
		}
		H.Set(i, i, H.At(i, i)-(4*math.Pi-rowSum))
	}
}
