package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gonum.org/v1/gonum/mat"
)

// TestBicgstabMatchesKnownSolution checks the hand-rolled iterative
// solver against a small, well-conditioned symmetric positive-definite
// system with a known exact solution.
func TestBicgstabMatchesKnownSolution(t *testing.T) {
	A := mat.NewDense(3, 3, []float64{
		4, 1, 0,
		1, 3, 1,
		0, 1, 5,
	})
	want := mat.NewVecDense(3, []float64{1, -2, 0.5})
	var b mat.VecDense
	b.MulVec(A, want)

	x, iters, err := bicgstab(A, &b, 100, 1e-12)
	assert.NoError(t, err)
	assert.Greater(t, iters, 0)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, want.AtVec(i), x.AtVec(i), 1e-6)
	}
}

func TestSolveForPsiDenseLUMatchesBicgstab(t *testing.T) {
	G := mat.NewDense(3, 3, []float64{
		5, 1, 0,
		1, 4, 1,
		0, 1, 6,
	})
	H := mat.NewDense(3, 3, []float64{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	})
	sys := System{G: G, H: H}
	phi := []float64{1, 2, 3}

	psiIter, _, err := SolveForPsi(sys, phi, true)
	assert.NoError(t, err)
	psiLU, _, err := SolveForPsi(sys, phi, false)
	assert.NoError(t, err)

	for i := range psiIter {
		assert.InDelta(t, psiLU[i], psiIter[i], 1e-6)
	}
}
