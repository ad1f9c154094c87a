package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thomtron/bem-bubbles/bem/geo"
)

func TestSplitComponentsSingleMeshIsOneComponent(t *testing.T) {
	m := tetrahedron()
	assert.Equal(t, 1, NumComponents(m))
	parts := SplitComponents(m)
	assert.Len(t, parts, 1)
}

func TestSplitComponentsTwoDisjointTetrahedra(t *testing.T) {
	a := tetrahedron()
	b := tetrahedron()
	b.Add(geo.V(100, 0, 0))

	verts := append([]geo.Vec3(nil), a.Verts...)
	verts = append(verts, b.Verts...)
	trigs := append([]geo.Triplet(nil), a.Trigs...)
	offset := uint32(len(a.Verts))
	for _, t := range b.Trigs {
		trigs = append(trigs, geo.Triplet{A: t.A + offset, B: t.B + offset, C: t.C + offset})
	}
	combined := New(verts, trigs)

	assert.Equal(t, 2, NumComponents(combined))
	parts := SplitComponents(combined)
	assert.Len(t, parts, 2)
	for _, p := range parts {
		assert.Equal(t, 4, len(p.Verts))
		assert.Equal(t, 4, len(p.Trigs))
		assert.NoError(t, p.CheckValid(1e-9))
	}
}
