package sim

import (
	"fmt"
	"math"

	"github.com/thomtron/bem-bubbles/bem/logx"
	"gonum.org/v1/gonum/mat"
)

// SolveForPsi solves G*psi = H*phi for the nodal normal derivative
// psi given the nodal potential phi, dispatching between BiCGSTAB
// (default) and a dense partial-pivot LU factorization exactly as
// Simulation.cpp's solve_system does, and reports the infinity-norm
// residual ||G*psi - H*phi||_inf (spec.md 4.3).
func SolveForPsi(sys System, phi []float64, useBiCGStab bool) (psi []float64, residual float64, err error) {
	nv := len(phi)
	phiVec := mat.NewVecDense(nv, phi)
	var b mat.VecDense
	b.MulVec(sys.H, phiVec)

	var x *mat.VecDense
	iterations := 0
	if useBiCGStab {
		x, iterations, err = bicgstab(sys.G, &b, 2*nv+50, 1e-10)
		if err != nil {
			return nil, 0, err
		}
	} else {
		var xd mat.Dense
		if err := xd.Solve(sys.G, &b); err != nil {
			return nil, 0, fmt.Errorf("sim: dense LU solve failed: %w", err)
		}
		x = mat.NewVecDense(nv, nil)
		for i := 0; i < nv; i++ {
			x.SetVec(i, xd.At(i, 0))
		}
	}

	var resid mat.VecDense
	resid.MulVec(sys.G, x)
	resid.SubVec(&resid, &b)
	residual = infNorm(&resid)

	method := "bicgstab"
	if !useBiCGStab {
		method = "dense-lu"
	}
	logx.Solve(method, iterations, residual)

	psi = make([]float64, nv)
	for i := 0; i < nv; i++ {
		psi[i] = x.AtVec(i)
	}
	return psi, residual, nil
}

func infNorm(v *mat.VecDense) float64 {
	m := 0.0
	for i := 0; i < v.Len(); i++ {
		if a := math.Abs(v.AtVec(i)); a > m {
			m = a
		}
	}
	return m
}

// bicgstab is the stabilized biconjugate-gradient iterative solver
// for A*x = b (A need not be symmetric), matching the original's
// default solver choice. No third-party sparse/iterative linear
// solver appears anywhere in the example corpus, so this is a direct
// implementation built only on gonum/mat's dense vector/matrix
// arithmetic (see DESIGN.md).
func bicgstab(A mat.Matrix, b *mat.VecDense, maxIter int, tol float64) (*mat.VecDense, int, error) {
	n, _ := A.Dims()
	x := mat.NewVecDense(n, nil) // x0 = 0

	r := mat.NewVecDense(n, nil)
	r.CloneFromVec(b)
	rHat := mat.NewVecDense(n, nil)
	rHat.CloneFromVec(r)

	bNorm := infNorm(b)
	if bNorm < 1e-300 {
		return x, 0, nil
	}

	rho, alpha, omega := 1.0, 1.0, 1.0
	v := mat.NewVecDense(n, nil)
	p := mat.NewVecDense(n, nil)

	for iter := 0; iter < maxIter; iter++ {
		rhoNew := mat.Dot(rHat, r)
		if math.Abs(rhoNew) < 1e-300 {
			return x, iter, fmt.Errorf("sim: bicgstab breakdown (rho~0) at iteration %d", iter)
		}
		if iter == 0 {
			p.CloneFromVec(r)
		} else {
			beta := (rhoNew / rho) * (alpha / omega)
			var tmp mat.VecDense
			tmp.ScaleVec(omega, v)
			p.SubVec(p, &tmp)
			p.ScaleVec(beta, p)
			p.AddVec(p, r)
		}
		rho = rhoNew

		v.MulVec(A, p)
		alphaDenom := mat.Dot(rHat, v)
		if math.Abs(alphaDenom) < 1e-300 {
			return x, iter, fmt.Errorf("sim: bicgstab breakdown (alpha denom~0) at iteration %d", iter)
		}
		alpha = rho / alphaDenom

		s := mat.NewVecDense(n, nil)
		var av mat.VecDense
		av.ScaleVec(alpha, v)
		s.SubVec(r, &av)

		if infNorm(s)/bNorm < tol {
			var ap mat.VecDense
			ap.ScaleVec(alpha, p)
			x.AddVec(x, &ap)
			return x, iter + 1, nil
		}

		t := mat.NewVecDense(n, nil)
		t.MulVec(A, s)
		tDotS := mat.Dot(t, s)
		tDotT := mat.Dot(t, t)
		if tDotT < 1e-300 {
			omega = 0
		} else {
			omega = tDotS / tDotT
		}

		var ap, os mat.VecDense
		ap.ScaleVec(alpha, p)
		os.ScaleVec(omega, s)
		x.AddVec(x, &ap)
		x.AddVec(x, &os)

		var ot mat.VecDense
		ot.ScaleVec(omega, t)
		r.SubVec(s, &ot)

		if infNorm(r)/bNorm < tol {
			return x, iter + 1, nil
		}
		if math.Abs(omega) < 1e-300 {
			return x, iter, fmt.Errorf("sim: bicgstab breakdown (omega~0) at iteration %d", iter)
		}
	}
	return x, maxIter, nil
}
