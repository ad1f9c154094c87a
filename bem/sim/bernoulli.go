package sim

import (
	"math"

	"github.com/thomtron/bem-bubbles/bem/geo"
	"github.com/thomtron/bem-bubbles/bem/mesh"
)

// PotentialRate evaluates the unsteady Bernoulli right-hand side at
// every vertex:
//
//	dphi/dt = 2*sigma*kappa + 0.5*||u||^2 + p_inf
//	          - epsilon*(V_0/V)^gamma + w(x, t)
//
// exactly matching Simulation.cpp's potential_t, with kappa the mean
// curvature and V the current enclosed volume (spec.md 4.5). For a
// disconnected mesh (a bubble cloud), V and V_0 are taken per
// connected component and applied to each vertex by membership
// (Params.V0PerVertex, set by Simulation.SetV0Components), matching
// Simulation-group.cpp's group potential_t; a nil V0PerVertex falls
// back to the single global Params.V0 against the mesh's total volume.
func PotentialRate(m *mesh.Mesh, vel []geo.Vec3, p Params, t float64) []float64 {
	kappa := mesh.VertexCurvature(m)
	gas := gasTermPerVertex(m, p)

	out := make([]float64, len(m.Verts))
	for i, v := range m.Verts {
		w := 0.0
		if p.Waveform != nil {
			w = p.Waveform(v, t)
		}
		out[i] = 2*p.Sigma*kappa[i] + 0.5*vel[i].Norm2() + p.PInf - gas[i] + w
	}
	return out
}

// gasTermPerVertex computes epsilon*(V_0/V)^gamma at every vertex,
// per connected component when Params.V0PerVertex is populated, or
// against the mesh's single total volume otherwise.
func gasTermPerVertex(m *mesh.Mesh, p Params) []float64 {
	out := make([]float64, len(m.Verts))
	if len(p.V0PerVertex) == len(m.Verts) {
		vols := mesh.ComponentVolumes(m)
		for i := range out {
			v0 := p.V0PerVertex[i]
			if v0 > 0 && vols[i] > 0 {
				out[i] = p.Epsilon * math.Pow(v0/vols[i], p.Gamma)
			}
		}
		return out
	}
	volume := mesh.Volume(m)
	if p.V0 > 0 && volume > 0 {
		g := p.Epsilon * math.Pow(p.V0/volume, p.Gamma)
		for i := range out {
			out[i] = g
		}
	}
	return out
}

// AdaptiveDt computes the next time step from the current potential
// rate and velocity fields:
//
//	dt = dp / (max|dphi/dt| + dp_balance * max||u||)
//
// clamped above by MinDt when MinDt > 0, exactly matching
// Simulation.cpp's get_dt (spec.md 4.6).
func AdaptiveDt(potRate []float64, vel []geo.Vec3, dp float64, p Params) float64 {
	maxPot := 0.0
	for _, r := range potRate {
		if a := math.Abs(r); a > maxPot {
			maxPot = a
		}
	}
	maxVel := 0.0
	for _, v := range vel {
		if n := v.Norm(); n > maxVel {
			maxVel = n
		}
	}
	denom := maxPot + p.DpBalance*maxVel
	if denom < 1e-300 {
		if p.MinDt > 0 {
			return p.MinDt
		}
		return dp
	}
	dt := dp / denom
	if p.MinDt > 0 && dt > p.MinDt {
		dt = p.MinDt
	}
	return dt
}
