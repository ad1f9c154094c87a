package sim

import (
	"fmt"

	"github.com/thomtron/bem-bubbles/bem/geo"
	"github.com/thomtron/bem-bubbles/bem/mesh"
)

// Simulation drives one bubble's surface through time: it owns the
// mesh, the nodal potential (Phi) and its normal derivative (Psi),
// and the physical/solver parameters, matching Simulation.cpp's
// public surface (spec.md 6's external interface).
type Simulation struct {
	Mesh *mesh.Mesh
	Phi  []float64
	Psi  []float64

	Params Params
	time   float64

	// DpTarget is the target potential-rate change per step used by
	// AdaptiveDt (the "dp" in get_dt); Evolve derives dt from it
	// unless FixDt is set.
	DpTarget float64
	FixDt    float64 // if > 0, evolve_system uses this fixed step instead
}

// NewSimulation builds a simulation over m with phi and psi
// initialized to zero and default parameters.
func NewSimulation(m *mesh.Mesh) *Simulation {
	return &Simulation{
		Mesh:     m,
		Phi:      make([]float64, len(m.Verts)),
		Psi:      make([]float64, len(m.Verts)),
		Params:   DefaultParams(),
		DpTarget: 0.1,
	}
}

// --- spec.md 6 setters ---

func (s *Simulation) SetPhi(phi []float64)        { s.Phi = phi }
func (s *Simulation) SetPsi(psi []float64)        { s.Psi = psi }
func (s *Simulation) SetV0(v0 float64)            { s.Params.V0 = v0 }

// SetV0Components captures the current per-connected-component
// volumes as the reference volumes for the bubble-cloud Bernoulli
// term (Params.V0PerVertex), matching MeshGroup's group.volumes()
// snapshot at construction time. Call this once the mesh has its
// initial shape; PotentialRate then applies each component's own
// V_0/V ratio to the vertices that belong to it instead of the
// mesh's combined volume.
func (s *Simulation) SetV0Components() {
	s.Params.V0PerVertex = mesh.ComponentVolumes(s.Mesh)
}
func (s *Simulation) SetMinDt(dt float64)         { s.Params.MinDt = dt }
func (s *Simulation) SetDpBalance(b float64)      { s.Params.DpBalance = b }
func (s *Simulation) SetNumThreads(n int)         { s.Params.NumThreads = n }
func (s *Simulation) SetBicgstab(on bool)         { s.Params.UseBiCGStab = on }
func (s *Simulation) SetQuadrature(order int)     { s.Params.QuadOrder = order }
func (s *Simulation) SetFixedDt(dt float64)       { s.FixDt = dt }
func (s *Simulation) SetDpTarget(dp float64)      { s.DpTarget = dp }

// --- spec.md 6 getters ---

func (s *Simulation) GetTime() float64        { return s.time }
func (s *Simulation) GetVolume() float64      { return mesh.Volume(s.Mesh) }
func (s *Simulation) GetPhi() []float64       { return s.Phi }
func (s *Simulation) GetPsi() []float64       { return s.Psi }
func (s *Simulation) GetVertices() []geo.Vec3 { return s.Mesh.Verts }

// ComputePsi assembles the boundary system for the current geometry
// and solves G*psi = H*phi for Psi in place (spec.md 4.3), returning
// the solver's residual norm.
func (s *Simulation) ComputePsi() (float64, error) {
	var sys System
	switch s.Params.Discretization {
	case "colloc":
		sys = AssembleColloc(s.Mesh, s.Params, false)
	case "colloc_cubic":
		sys = AssembleColloc(s.Mesh, s.Params, true)
	default:
		sys = Assemble(s.Mesh, s.Params.NumThreads)
	}
	psi, residual, err := SolveForPsi(sys, s.Phi, s.Params.UseBiCGStab)
	if err != nil {
		return 0, fmt.Errorf("sim: compute_psi: %w", err)
	}
	s.Psi = psi
	return residual, nil
}

// derivatives returns (dx/dt, dphi/dt) at the current geometry/phi,
// solving for psi along the way.
func (s *Simulation) derivatives() ([]geo.Vec3, []float64, error) {
	if _, err := s.ComputePsi(); err != nil {
		return nil, nil, err
	}
	vel := Velocities(s.Mesh, s.Phi, s.Psi)
	if s.Params.CubicVelocity {
		vel = CubicVelocities(s.Mesh, s.Phi, s.Psi)
	}
	rate := PotentialRate(s.Mesh, vel, s.Params, s.time)
	return vel, rate, nil
}

// nextDt picks the step used for the upcoming advance: FixDt if set,
// otherwise the adaptive formula driven by the current state.
func (s *Simulation) nextDt(vel []geo.Vec3, rate []float64) float64 {
	if s.FixDt > 0 {
		return s.FixDt
	}
	return AdaptiveDt(rate, vel, s.DpTarget, s.Params)
}

// EvolveSystem advances the mesh and potential by one explicit Euler
// step and returns the step actually taken (spec.md 4.6).
func (s *Simulation) EvolveSystem() (float64, error) {
	vel, rate, err := s.derivatives()
	if err != nil {
		return 0, err
	}
	dt := s.nextDt(vel, rate)

	for i := range s.Mesh.Verts {
		s.Mesh.Verts[i] = s.Mesh.Verts[i].Add(vel[i].Scale(dt))
		s.Phi[i] += rate[i] * dt
	}
	s.time += dt
	return dt, nil
}

// EvolveSystemRK4 advances by one classical 4th-order Runge-Kutta
// step over the coupled (position, phi) state, re-solving psi at each
// of the four stages (spec.md 4.6's higher-order integrator).
func (s *Simulation) EvolveSystemRK4() (float64, error) {
	vel0, rate0, err := s.derivatives()
	if err != nil {
		return 0, err
	}
	dt := s.nextDt(vel0, rate0)

	base := s.snapshot()

	k1x, k1p := vel0, rate0
	s.applyStage(base, k1x, k1p, dt/2)
	k2x, k2p, err := s.derivatives()
	if err != nil {
		s.restore(base)
		return 0, err
	}

	s.applyStage(base, k2x, k2p, dt/2)
	k3x, k3p, err := s.derivatives()
	if err != nil {
		s.restore(base)
		return 0, err
	}

	s.applyStage(base, k3x, k3p, dt)
	k4x, k4p, err := s.derivatives()
	if err != nil {
		s.restore(base)
		return 0, err
	}

	for i := range s.Mesh.Verts {
		dx := k1x[i].Add(k2x[i].Scale(2)).Add(k3x[i].Scale(2)).Add(k4x[i]).Scale(dt / 6)
		s.Mesh.Verts[i] = base.verts[i].Add(dx)
		s.Phi[i] = base.phi[i] + dt/6*(k1p[i]+2*k2p[i]+2*k3p[i]+k4p[i])
	}
	s.time = base.time + dt
	return dt, nil
}

type stateSnapshot struct {
	verts []geo.Vec3
	phi   []float64
	time  float64
}

func (s *Simulation) snapshot() stateSnapshot {
	return stateSnapshot{
		verts: append([]geo.Vec3(nil), s.Mesh.Verts...),
		phi:   append([]float64(nil), s.Phi...),
		time:  s.time,
	}
}

func (s *Simulation) restore(base stateSnapshot) {
	copy(s.Mesh.Verts, base.verts)
	copy(s.Phi, base.phi)
	s.time = base.time
}

func (s *Simulation) applyStage(base stateSnapshot, vel []geo.Vec3, rate []float64, dt float64) {
	for i := range s.Mesh.Verts {
		s.Mesh.Verts[i] = base.verts[i].Add(vel[i].Scale(dt))
		s.Phi[i] = base.phi[i] + rate[i]*dt
	}
}

// Remesh runs the curvature-adaptive remesh pass (spec.md 4.7),
// replacing s.Mesh with the result and projecting Phi/Psi from the
// old surface onto the new one via the project-and-interpolate
// transfer (spec.md 4.8).
func (s *Simulation) Remesh(targetLen []float64) {
	old := s.Mesh
	next := mesh.Remesh(old, targetLen)

	searchDist := 0.0
	for _, l := range targetLen {
		if l > searchDist {
			searchDist = l
		}
	}
	searchDist *= 2

	newPhi := mesh.TransferScalarField(old, s.Phi, next, searchDist)
	newPsi := mesh.TransferScalarField(old, s.Psi, next, searchDist)

	s.Mesh = next
	s.Phi = newPhi
	s.Psi = newPsi
}
