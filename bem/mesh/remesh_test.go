package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLongEdgesIncreasesCounts(t *testing.T) {
	m := tetrahedron()
	target := make([]float64, len(m.Verts))
	for i := range target {
		target[i] = 0.1 // much shorter than any edge: every edge splits
	}
	out, newLen := SplitLongEdges(m, target)
	assert.Greater(t, len(out.Trigs), len(m.Trigs))
	assert.Greater(t, len(out.Verts), len(m.Verts))
	assert.Equal(t, len(out.Verts), len(newLen))
}

func TestSplitLongEdgesNoOpWhenTargetIsLarge(t *testing.T) {
	m := tetrahedron()
	target := make([]float64, len(m.Verts))
	for i := range target {
		target[i] = 1000 // no edge exceeds this: split is a no-op
	}
	out, newLen := SplitLongEdges(m, target)
	assert.Equal(t, len(m.Trigs), len(out.Trigs))
	assert.Equal(t, len(m.Verts), len(out.Verts))
	assert.Equal(t, len(target), len(newLen))
}

func TestRelaxVerticesPreservesClosedTopology(t *testing.T) {
	m := tetrahedron()
	out := RelaxVertices(m)
	assert.Equal(t, len(m.Verts), len(out.Verts))
	assert.Equal(t, len(m.Trigs), len(out.Trigs))
	assert.NoError(t, out.CheckValid(1e-9))
}

func TestFlipEdgesPreservesCounts(t *testing.T) {
	m := tetrahedron()
	out := FlipEdges(m, true)
	assert.Equal(t, len(m.Verts), len(out.Verts))
	assert.Equal(t, len(m.Trigs), len(out.Trigs))
}

func TestRemeshOnSubdividedMeshStaysValid(t *testing.T) {
	m := tetrahedron()
	target := make([]float64, len(m.Verts))
	for i := range target {
		target[i] = 0.3
	}
	dense, _ := SplitLongEdges(m, target)
	target2 := make([]float64, len(dense.Verts))
	for i := range target2 {
		target2[i] = 1.2 // coarsen back down, exercising collapse
	}
	out := Remesh(dense, target2)
	assert.NoError(t, out.CheckValid(1e-6))
	assert.Greater(t, len(out.Verts), 0)
}
