// Package sim assembles and evolves the boundary-integral system for a
// single (or multi-) bubble free surface: dense G/H matrix assembly
// over a worker pool, BiCGSTAB/LU solve dispatch, velocity
// reconstruction, the unsteady Bernoulli right-hand side and adaptive
// Euler/RK4 time stepping (spec.md 4.3-4.6).
package sim

import "github.com/thomtron/bem-bubbles/bem/geo"

// Waveform is the external driving-pressure closure w(x, t) added to
// the Bernoulli right-hand side (spec.md 4.5); a nil Waveform is
// treated as always zero.
type Waveform func(pos geo.Vec3, t float64) float64

// Params holds the physical constants of the unsteady Bernoulli
// equation dphi/dt = 2*sigma*kappa + ||u||^2/2 + p_inf
// - epsilon*(V_0/V)^gamma + w(x,t), matching Simulation.cpp's
// potential_t exactly.
type Params struct {
	PInf    float64 // ambient pressure at infinity
	Sigma   float64 // surface tension coefficient
	Epsilon float64 // polytropic gas-law prefactor
	Gamma   float64 // polytropic exponent
	V0      float64 // reference (initial) bubble volume

	// V0PerVertex, when set (length len(mesh.Verts)), holds the
	// reference volume of each vertex's own connected component
	// instead of a single global V0 - the bubble-cloud case of
	// Simulation-group.cpp's potential_t, where the gas term is
	// applied per component rather than against the mesh's total
	// volume. Populated by Simulation.SetV0Components; nil (the
	// default) keeps the single-bubble V0/Volume(m) behavior.
	V0PerVertex []float64

	Waveform Waveform

	// Discretization selects which boundary-system assembly ComputePsi
	// uses: "" (default) is the linear-linear Galerkin discretization
	// (Assemble, spec.md 4.2's dispatch over shared-vertex count);
	// "colloc" is linear-linear collocation (AssembleColloc);
	// "colloc_cubic" is the cubic-trial collocation variant, matching
	// spec.md 4.3's "For a chosen discretization" list.
	Discretization string

	// CubicVelocity selects the cubic Bezier-triangle surface-velocity
	// reconstruction (CubicVelocities, spec.md 4.4's cubic branch) over
	// the default flat-linear one (Velocities); independent of
	// Discretization, since the original applies it to LinLinSim's own
	// Galerkin solve too.
	CubicVelocity bool

	// NumThreads is the assembly/exterior-potential worker pool size;
	// 0 means runtime.NumCPU().
	NumThreads int

	// UseBiCGStab selects the iterative solver (default) over the
	// dense partial-pivot LU direct solve (spec.md 4.3).
	UseBiCGStab bool

	// MinDt, if > 0, clamps get_dt's adaptive step from above
	// (spec.md 4.6).
	MinDt float64

	// DpBalance weights the velocity-magnitude term in get_dt's
	// denominator against the potential-derivative term.
	DpBalance float64

	// QuadOrder overrides the 2-D quadrature rule used for the
	// exterior-potential evaluation (spec.md 4.8's order-19 default).
	QuadOrder int
}

// DefaultParams mirrors the original's constructor defaults: BiCGSTAB
// on, no minimum step clamp, dp_balance disabled (pure potential-rate
// step control).
func DefaultParams() Params {
	return Params{
		PInf:        0,
		Sigma:       0,
		Epsilon:     0,
		Gamma:       1.4,
		V0:          0,
		UseBiCGStab: true,
		MinDt:       0,
		DpBalance:   0,
		QuadOrder:   19,
	}
}
