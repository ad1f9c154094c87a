// Package quad supplies the fixed quadrature rules the singular
// integrator needs: 1-D Gauss-Legendre rules for the Duffy-transformed
// nested integrals, and symmetric 2-D triangle rules for ordinary
// (non-singular) integration.
package quad

import (
	"sync"

	"gonum.org/v1/gonum/integrate/quad"
)

// Node1D is one quadrature node/weight pair on the reference interval
// [0,1].
type Node1D struct {
	X, W float64
}

// gauss1D builds an n-point Gauss-Legendre rule on [0,1] by rescaling
// gonum's [-1,1] rule, rather than re-deriving the node/weight tables
// by hand.
func gauss1D(n int) []Node1D {
	xs := make([]float64, n)
	ws := make([]float64, n)
	quad.Legendre{}.FixedLocations(xs, ws, 0, 1)
	out := make([]Node1D, n)
	for i := range xs {
		out[i] = Node1D{X: xs[i], W: ws[i]}
	}
	return out
}

var (
	gauss1Mu    sync.Mutex
	gauss1Cache = map[int][]Node1D{}
)

// Gauss1D returns (and caches) the n-point 1-D Gauss rule on [0,1].
// Orders up to 7 are used by the Duffy-transformed singular integrals.
// Safe for concurrent use.
func Gauss1D(n int) []Node1D {
	gauss1Mu.Lock()
	defer gauss1Mu.Unlock()
	if r, ok := gauss1Cache[n]; ok {
		return r
	}
	r := gauss1D(n)
	gauss1Cache[n] = r
	return r
}
