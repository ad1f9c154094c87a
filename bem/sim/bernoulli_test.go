package sim

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/thomtron/bem-bubbles/bem/geo"
	"github.com/thomtron/bem-bubbles/bem/mesh"
)

func tetrahedron() *mesh.Mesh {
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
	return mesh.New(verts, trigs)
}

// TestPotentialRateAtRestEqualsAmbientPressure matches spec.md 8's
// scenario A: a stationary bubble (zero velocity) with no surface
// tension, no gas term and no driving field has a uniform dphi/dt
// equal to p_inf everywhere.
func TestPotentialRateAtRestEqualsAmbientPressure(t *testing.T) {
	m := tetrahedron()
	vel := make([]geo.Vec3, len(m.Verts))
	p := DefaultParams()
	p.PInf = 2.5

	rate := PotentialRate(m, vel, p, 0)
	for _, r := range rate {
		assert.InDelta(t, 2.5, r, 1e-9)
	}
}

// cloudOfTwoTetrahedra returns two disjoint tetrahedra as a single
// mesh (a minimal bubble cloud), the first centered near the origin,
// the second translated far enough away that they share no vertices.
func cloudOfTwoTetrahedra() *mesh.Mesh {
	a := tetrahedron()
	shift := geo.V(20, 0, 0)
	verts := append([]geo.Vec3{}, a.Verts...)
	for _, v := range a.Verts {
		verts = append(verts, v.Add(shift))
	}
	trigs := append([]geo.Triplet{}, a.Trigs...)
	for _, t := range a.Trigs {
		trigs = append(trigs, geo.Triplet{A: t.A + 4, B: t.B + 4, C: t.C + 4})
	}
	return mesh.New(verts, trigs)
}

// TestPotentialRateAppliesGasTermPerComponent matches spec.md 4.5's
// cloud case (Simulation-group.cpp's group potential_t): each
// connected component's gas term is driven by its own V_0/V ratio, not
// the cloud's combined volume, so two components with different
// reference volumes see different gas-term contributions even though
// their current volumes are identical.
func TestPotentialRateAppliesGasTermPerComponent(t *testing.T) {
	m := cloudOfTwoTetrahedra()
	vol := mesh.ComponentVolumes(m)

	p := DefaultParams()
	p.Epsilon = 1.0
	p.Gamma = 1.0
	p.V0PerVertex = make([]float64, len(m.Verts))
	for i := 0; i < 4; i++ {
		p.V0PerVertex[i] = vol[i] // component 0: ratio 1 -> gas term = epsilon
	}
	for i := 4; i < 8; i++ {
		p.V0PerVertex[i] = 2 * vol[i] // component 1: ratio 2 -> gas term = 2*epsilon
	}

	vel := make([]geo.Vec3, len(m.Verts))
	rate := PotentialRate(m, vel, p, 0)

	for i := 0; i < 4; i++ {
		assert.InDelta(t, -1.0, rate[i], 1e-9)
	}
	for i := 4; i < 8; i++ {
		assert.InDelta(t, -2.0, rate[i], 1e-9)
	}
}

func TestAdaptiveDtShrinksWithLargerRate(t *testing.T) {
	p := DefaultParams()
	vel := []geo.Vec3{geo.V(1, 0, 0)}
	dtSlow := AdaptiveDt([]float64{1}, vel, 1.0, p)
	dtFast := AdaptiveDt([]float64{10}, vel, 1.0, p)
	assert.Greater(t, dtSlow, dtFast)
}

func TestAdaptiveDtRespectsMinDtClamp(t *testing.T) {
	p := DefaultParams()
	p.MinDt = 0.01
	vel := []geo.Vec3{geo.V(0, 0, 0)}
	dt := AdaptiveDt([]float64{0.001}, vel, 1.0, p)
	assert.LessOrEqual(t, dt, p.MinDt)
}
