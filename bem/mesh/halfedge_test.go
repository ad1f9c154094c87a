package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thomtron/bem-bubbles/bem/geo"
)

// tetrahedron returns a small closed, outward-oriented triangle mesh:
// a regular tetrahedron, the simplest nontrivial manifold fixture for
// topology invariant tests (spec.md 8.1).
func tetrahedron() *Mesh {
	verts := []geo.Vec3{
		geo.V(1, 1, 1),
		geo.V(1, -1, -1),
		geo.V(-1, 1, -1),
		geo.V(-1, -1, 1),
	}
	trigs := []geo.Triplet{
		{A: 0, B: 1, C: 2},
		{A: 0, B: 3, C: 1},
		{A: 0, B: 2, C: 3},
		{A: 1, B: 3, C: 2},
	}
	return New(verts, trigs)
}

func TestHalfedgeBuildValidClosedManifold(t *testing.T) {
	m := tetrahedron()
	assert.NoError(t, m.CheckValid(1e-9))

	hv, err := Build(m)
	assert.NoError(t, err)
	assert.NoError(t, hv.CheckValid())

	for v := 0; v < 4; v++ {
		assert.Equal(t, 3, hv.Valence(Handle(v)))
		assert.False(t, hv.IsBoundary(hv.vHalf[v]))
	}
}

func TestHalfedgeToMeshRoundTrip(t *testing.T) {
	m := tetrahedron()
	hv, err := Build(m)
	assert.NoError(t, err)

	out := hv.ToMesh()
	assert.Equal(t, len(m.Verts), len(out.Verts))
	assert.Equal(t, len(m.Trigs), len(out.Trigs))
	assert.NoError(t, out.CheckValid(1e-9))
}

func TestVolumeAndCenterOfMassOfTetrahedron(t *testing.T) {
	m := tetrahedron()
	vol := Volume(m)
	assert.Greater(t, vol, 0.0)

	com := CenterOfMass(m)
	assert.InDelta(t, 0, com.X, 1e-9)
	assert.InDelta(t, 0, com.Y, 1e-9)
	assert.InDelta(t, 0, com.Z, 1e-9)
}
