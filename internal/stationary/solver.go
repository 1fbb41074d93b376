// Package stationary computes stationary distributions of discretized
// diffusion generators.
//
// Two routes are available through [Distribution]: a resolvent solve
// against a discounted generator for delta > 0, and a principal
// eigenvector extraction at delta == 0. As delta shrinks to zero with a
// uniform reference measure, the two agree.
package stationary

import (
	"fmt"
	"math"
	"math/cmplx"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/diffgrid/internal/diffusion"
	"github.com/san-kum/diffgrid/internal/operator"
)

const (
	// EigenvalueTol bounds how far from zero the principal eigenvalue of a
	// valid generator transpose may sit before the result is flagged.
	EigenvalueTol = 1e-5

	// massTol bounds how negative pre-normalization entries may be before
	// the defensive absolute value is considered to be masking a genuinely
	// wrong solve.
	massTol = 1e-8
)

// Result carries a stationary density aligned index-for-index with the
// grid, plus structured diagnostics. Warning is non-empty when the
// computation succeeded but the numbers are suspect; callers decide
// whether to surface it.
type Result struct {
	Density    []float64
	Eigenvalue float64 // principal eigenvalue, delta == 0 route only
	Warning    string
}

// Distribution computes the stationary (delta == 0) or discounted
// quasi-stationary (delta > 0) distribution of the generator gen.
//
// For delta > 0 it solves (delta*I - gen^T) g = delta*psi, the resolvent
// formulation; psi is a reference measure and defaults to zeros when nil.
// For delta == 0 it extracts the eigenvector of gen^T whose eigenvalue is
// closest to zero. Either way the result is normalized to sum to one.
func Distribution(gen *mat.Tridiag, delta float64, psi []float64) (*Result, error) {
	n, _ := gen.Dims()
	if delta < 0 {
		return nil, fmt.Errorf("%w: delta must be non-negative, got %g", diffusion.ErrInvalidArgument, delta)
	}
	if psi == nil {
		psi = make([]float64, n)
	}
	if len(psi) != n {
		return nil, fmt.Errorf("%w: psi has length %d, generator is %dx%d",
			diffusion.ErrInvalidArgument, len(psi), n, n)
	}

	res := &Result{}
	var warnings []string
	var g []float64
	var err error

	if delta > 0 {
		g, err = resolvent(gen, delta, psi)
	} else {
		g, res.Eigenvalue, err = principal(gen, &warnings)
	}
	if err != nil {
		return nil, err
	}

	// The solve can leave tiny negative entries from rounding; anything
	// beyond noise level means the discretization lost the M-matrix
	// property and deserves a flag rather than a silent abs.
	if min := floats.Min(g); min < -massTol {
		warnings = append(warnings, fmt.Sprintf("negative mass %g below tolerance %g before abs", min, -massTol))
	}
	for i, v := range g {
		g[i] = math.Abs(v)
	}

	total := floats.Sum(g)
	if total == 0 || math.IsNaN(total) || math.IsInf(total, 0) {
		return nil, fmt.Errorf("%w: distribution mass is %g, cannot normalize", diffusion.ErrNumericalFailure, total)
	}
	floats.Scale(1/total, g)

	res.Density = g
	res.Warning = strings.Join(warnings, "; ")
	return res, nil
}

// ForProcess builds the generator of p and computes its stationary
// distribution.
func ForProcess(p *diffusion.Process, delta float64, psi []float64) (*Result, error) {
	gen, err := operator.FromProcess(p)
	if err != nil {
		return nil, err
	}
	return Distribution(gen, delta, psi)
}

// resolvent solves (delta*I - gen^T) g = delta*psi using the tridiagonal
// transpose solve.
func resolvent(gen *mat.Tridiag, delta float64, psi []float64) ([]float64, error) {
	n, _ := gen.Dims()
	dl := make([]float64, n-1)
	d := make([]float64, n)
	du := make([]float64, n-1)
	for i := 0; i < n; i++ {
		d[i] = delta - gen.At(i, i)
		if i < n-1 {
			du[i] = -gen.At(i, i+1)
			dl[i] = -gen.At(i+1, i)
		}
	}
	a := mat.NewTridiag(n, dl, d, du)

	rhs := mat.NewVecDense(n, nil)
	for i, v := range psi {
		rhs.SetVec(i, delta*v)
	}

	var sol mat.VecDense
	if err := a.SolveVecTo(&sol, true, rhs); err != nil {
		return nil, fmt.Errorf("%w: resolvent solve at delta=%g: %v", diffusion.ErrNumericalFailure, delta, err)
	}

	g := make([]float64, n)
	for i := range g {
		g[i] = sol.AtVec(i)
	}
	return g, nil
}

// principal extracts the eigenvector of gen^T whose eigenvalue has the
// smallest magnitude. A valid generator has an exact zero eigenvalue;
// conditioning can push the computed one slightly off, which is reported
// as a warning, not an error.
func principal(gen *mat.Tridiag, warnings *[]string) ([]float64, float64, error) {
	n, _ := gen.Dims()
	t := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			t.Set(j, i, gen.At(i, j))
		}
	}

	var eig mat.Eigen
	if ok := eig.Factorize(t, mat.EigenRight); !ok {
		return nil, 0, fmt.Errorf("%w: eigendecomposition of the generator transpose did not converge",
			diffusion.ErrNumericalFailure)
	}

	values := eig.Values(nil)
	best := 0
	for i, v := range values {
		if cmplx.Abs(v) < cmplx.Abs(values[best]) {
			best = i
		}
	}
	eta := values[best]
	if cmplx.Abs(eta) > EigenvalueTol {
		*warnings = append(*warnings,
			fmt.Sprintf("principal eigenvalue %g exceeds tolerance %g", cmplx.Abs(eta), EigenvalueTol))
	}

	var vectors mat.CDense
	eig.VectorsTo(&vectors)

	g := make([]float64, n)
	for i := range g {
		g[i] = real(vectors.At(i, best))
	}
	// The eigensolver fixes the vector only up to sign.
	if floats.Sum(g) < 0 {
		floats.Scale(-1, g)
	}
	return g, real(eta), nil
}
