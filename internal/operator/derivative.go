package operator

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/diffgrid/internal/diffusion"
	"github.com/san-kum/diffgrid/internal/grid"
)

// DerivativeRaw returns the pure upwind first-derivative operator:
// diag(mu)^-1 times the generator built with zero volatility. The upwind
// direction still follows the sign of mu, so rows with positive drift hold
// a forward difference and rows with negative drift a backward one.
//
// Known edge case: a row with mu[i] == 0 is undefined; its entries come
// out as IEEE Inf/NaN from the division and are not guarded here.
func DerivativeRaw(x, mu []float64) (*mat.Tridiag, error) {
	n := len(x)
	if len(mu) != n {
		return nil, fmt.Errorf("%w: x and mu must have equal length, got %d/%d",
			diffusion.ErrInvalidArgument, n, len(mu))
	}
	if n < 2 {
		return nil, fmt.Errorf("%w: derivative operator needs at least 2 grid points, got %d",
			diffusion.ErrInvalidArgument, n)
	}
	if !grid.IsIncreasing(x) {
		return nil, fmt.Errorf("%w: grid must be finite and strictly increasing", diffusion.ErrInvalidArgument)
	}

	dl, d, du := assemble(x, mu, make([]float64, n))
	for i := 0; i < n; i++ {
		if i > 0 {
			dl[i-1] /= mu[i]
		}
		d[i] /= mu[i]
		if i < n-1 {
			du[i] /= mu[i]
		}
	}
	return mat.NewTridiag(n, dl, d, du), nil
}

// Derivative builds the first-derivative operator of p.
func Derivative(p *diffusion.Process) (*mat.Tridiag, error) {
	return DerivativeRaw(p.X, p.Mu)
}
