package diffusion

import (
	"errors"
	"fmt"
	"math"
)

// Sentinel error kinds shared across the numerical packages.
var (
	// ErrInvalidArgument marks malformed input: mismatched lengths,
	// non-increasing grids, out-of-range parameters.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrNumericalFailure marks a solver-level failure: singular systems,
	// eigensolver non-convergence, zero-mass distributions.
	ErrNumericalFailure = errors.New("numerical failure")
)

// Process is a diffusion sampled on a finite grid: X is the state grid,
// Mu and Sigma the drift and volatility evaluated at each grid point.
// Treat it as immutable after construction.
type Process struct {
	X     []float64
	Mu    []float64
	Sigma []float64
}

// New builds a Process from same-length coefficient slices.
func New(x, mu, sigma []float64) (*Process, error) {
	if len(x) != len(mu) || len(x) != len(sigma) {
		return nil, fmt.Errorf("%w: x, mu, sigma must have equal length, got %d/%d/%d",
			ErrInvalidArgument, len(x), len(mu), len(sigma))
	}
	return &Process{X: x, Mu: mu, Sigma: sigma}, nil
}

// Len returns the number of grid points.
func (p *Process) Len() int { return len(p.X) }

// StateSpace returns a copy of the grid.
func (p *Process) StateSpace() []float64 {
	x := make([]float64, len(p.X))
	copy(x, p.X)
	return x
}

// IsValid reports whether all coefficients are finite.
func (p *Process) IsValid() bool {
	for _, s := range [][]float64{p.X, p.Mu, p.Sigma} {
		for _, v := range s {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return false
			}
		}
	}
	return true
}
