package mesh

import (
	"math"

	"github.com/dhconnelly/rtreego"
	"github.com/thomtron/bem-bubbles/bem/geo"
)

// triBox wraps one source triangle for the R-tree broad phase
// (spec.md 4.8's project-and-interpolate transfer).
type triBox struct {
	idx  int
	tri  geo.Triplet
	rect rtreego.Rect
}

func (b *triBox) Bounds() rtreego.Rect { return b.rect }

func triRect(m *Mesh, t geo.Triplet, pad float64) rtreego.Rect {
	a, b, c := m.Verts[t.A], m.Verts[t.B], m.Verts[t.C]
	lo := geo.V(
		math.Min(a.X, math.Min(b.X, c.X))-pad,
		math.Min(a.Y, math.Min(b.Y, c.Y))-pad,
		math.Min(a.Z, math.Min(b.Z, c.Z))-pad,
	)
	hi := geo.V(
		math.Max(a.X, math.Max(b.X, c.X))+pad,
		math.Max(a.Y, math.Max(b.Y, c.Y))+pad,
		math.Max(a.Z, math.Max(b.Z, c.Z))+pad,
	)
	widths := []float64{hi.X - lo.X, hi.Y - lo.Y, hi.Z - lo.Z}
	for i, w := range widths {
		if w < 1e-9 {
			widths[i] = 1e-9
		}
	}
	rect, _ := rtreego.NewRect(rtreego.Point{lo.X, lo.Y, lo.Z}, widths)
	return rect
}

// ProjectionIndex is a broad-phase spatial index over a source mesh's
// triangles, reused across many projection queries (built once per
// TransferScalarField call and only read by the queries after that).
type ProjectionIndex struct {
	mesh *Mesh
	tree *rtreego.Rtree
}

// BuildProjectionIndex inserts every source triangle's bounding box
// into an R-tree (grounded on rtreego's typical min/max children of
// 25/50, adequate for surface-mesh triangle counts).
func BuildProjectionIndex(src *Mesh) *ProjectionIndex {
	tree := rtreego.NewTree(3, 25, 50)
	for i, t := range src.Trigs {
		tree.Insert(&triBox{idx: i, tri: t, rect: triRect(src, t, 1e-6)})
	}
	return &ProjectionIndex{mesh: src, tree: tree}
}

// rayTriangleIntersect is a standard Moeller-Trumbore test; returns
// (t, u, v, ok) where the hit point is origin + t*dir and (u, v) are
// the barycentric weights on (b-a), (c-a).
func rayTriangleIntersect(origin, dir, a, b, c geo.Vec3) (t, u, v float64, ok bool) {
	const eps = 1e-12
	e1 := b.Sub(a)
	e2 := c.Sub(a)
	pvec := dir.Cross(e2)
	det := e1.Dot(pvec)
	if math.Abs(det) < eps {
		return 0, 0, 0, false
	}
	invDet := 1.0 / det
	tvec := origin.Sub(a)
	u = tvec.Dot(pvec) * invDet
	if u < -1e-9 || u > 1+1e-9 {
		return 0, 0, 0, false
	}
	qvec := tvec.Cross(e1)
	v = dir.Dot(qvec) * invDet
	if v < -1e-9 || u+v > 1+1e-9 {
		return 0, 0, 0, false
	}
	t = e2.Dot(qvec) * invDet
	return t, u, v, true
}

// ProjectPoint casts a ray from p along normal (searched both ways)
// and returns the nearest source-triangle hit, its barycentric
// weights (wa, wb, wc) and the hit point, grounded on the original's
// project_on_surface search-along-normal strategy.
func ProjectPoint(idx *ProjectionIndex, p, normal geo.Vec3, searchDist float64) (hit geo.Vec3, tri geo.Triplet, wa, wb, wc float64, ok bool) {
	dir := normal.Unit()
	lo := geo.V(p.X-searchDist, p.Y-searchDist, p.Z-searchDist)
	hi := geo.V(p.X+searchDist, p.Y+searchDist, p.Z+searchDist)
	widths := []float64{hi.X - lo.X, hi.Y - lo.Y, hi.Z - lo.Z}
	rect, _ := rtreego.NewRect(rtreego.Point{lo.X, lo.Y, lo.Z}, widths)
	cands := idx.tree.SearchIntersect(rect)

	best := math.Inf(1)
	found := false
	for _, c := range cands {
		tb := c.(*triBox)
		a, b, cc := idx.mesh.Verts[tb.tri.A], idx.mesh.Verts[tb.tri.B], idx.mesh.Verts[tb.tri.C]
		if t, u, v, okHit := rayTriangleIntersect(p, dir, a, b, cc); okHit {
			if math.Abs(t) < math.Abs(best) {
				best = t
				tri = tb.tri
				wb, wc = u, v
				wa = 1 - u - v
				found = true
			}
		}
		if t, u, v, okHit := rayTriangleIntersect(p, dir.Neg(), a, b, cc); okHit {
			if math.Abs(-t) < math.Abs(best) {
				best = -t
				tri = tb.tri
				wb, wc = u, v
				wa = 1 - u - v
				found = true
			}
		}
	}
	if !found {
		return geo.Vec3{}, geo.Triplet{}, 0, 0, 0, false
	}
	hit = p.Add(dir.Scale(best))
	return hit, tri, wa, wb, wc, true
}

// TransferScalarField maps a scalar field defined on src's vertices
// onto dst's vertices: each destination vertex is projected onto the
// nearest source triangle along its own normal, then the field is
// blended barycentrically from the three corner values (spec.md 4.8);
// quadraticFieldAt returns each corner's own sample, so no curvature
// correction is applied.
func TransferScalarField(src *Mesh, srcValues []float64, dst *Mesh, searchDist float64) []float64 {
	idx := BuildProjectionIndex(src)
	srcNormals := VertexNormals(src)
	neigh := VertexNeighbours(src)
	fits := make([]QuadraticFit, len(src.Verts))
	for v := range src.Verts {
		ring := make([]geo.Vec3, len(neigh[v]))
		for i, n := range neigh[v] {
			ring[i] = src.Verts[n]
		}
		fits[v] = ComputeQuadraticFit(src.Verts[v], srcNormals[v], ring)
	}

	dstNormals := VertexNormals(dst)
	out := make([]float64, len(dst.Verts))
	for i, p := range dst.Verts {
		hit, tri, wa, wb, wc, ok := ProjectPoint(idx, p, dstNormals[i], searchDist)
		if !ok {
			out[i] = nearestFieldValue(src, srcValues, p)
			continue
		}
		va := quadraticFieldAt(fits[tri.A], srcValues[tri.A], src.Verts[tri.A], hit)
		vb := quadraticFieldAt(fits[tri.B], srcValues[tri.B], src.Verts[tri.B], hit)
		vc := quadraticFieldAt(fits[tri.C], srcValues[tri.C], src.Verts[tri.C], hit)
		out[i] = wa*va + wb*vb + wc*vc
	}
	return out
}

// quadraticFieldAt evaluates a scalar carried alongside a quadratic
// geometric fit, approximated here as constant over the small patch:
// it returns the corner's own sample unchanged (the hit point's local
// coordinates in the fit frame are computed but not used), matching
// the original's "value is attached to the vertex, position is
// smoothed" split.
func quadraticFieldAt(fit QuadraticFit, value float64, corner, hit geo.Vec3) float64 {
	local := fit.System.Transform(hit)
	_ = corner
	_ = local
	return value
}

func nearestFieldValue(src *Mesh, values []float64, p geo.Vec3) float64 {
	best := -1
	bestD := math.Inf(1)
	for i, v := range src.Verts {
		d := v.Sub(p).Norm2()
		if d < bestD {
			bestD = d
			best = i
		}
	}
	if best < 0 {
		return 0
	}
	return values[best]
}

// ProjectOntoOrigin is the pinned-wall variant: it projects p onto the
// nearest point of src along the ray from a fixed origin through p,
// used to keep a wall-pinned vertex confined to the original wall
// surface during remeshing (spec.md 9's supplemented pinned-wall
// feature).
func ProjectOntoOrigin(idx *ProjectionIndex, origin, p geo.Vec3, searchDist float64) (geo.Vec3, bool) {
	dir := p.Sub(origin)
	n := dir.Norm()
	if n < 1e-12 {
		return p, false
	}
	hit, _, _, _, _, ok := ProjectPoint(idx, p, dir.Unit(), searchDist)
	return hit, ok
}
