package operator

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/diffgrid/internal/diffusion"
	"github.com/san-kum/diffgrid/internal/grid"
)

// Build assembles the discretized generator for a diffusion with drift mu
// and volatility sigma sampled on the strictly increasing grid x.
//
// Upwind rule: the drift term uses the forward difference when mu[i] >= 0
// and at the first grid point (where the backward stencil would leave the
// grid), the backward difference otherwise. Exact zero drift therefore
// takes the forward branch.
//
// A single-point grid yields the 1x1 zero matrix, the only generator on
// one state.
func Build(x, mu, sigma []float64) (*mat.Tridiag, error) {
	n := len(x)
	if len(mu) != n || len(sigma) != n {
		return nil, fmt.Errorf("%w: x, mu, sigma must have equal length, got %d/%d/%d",
			diffusion.ErrInvalidArgument, n, len(mu), len(sigma))
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: empty grid", diffusion.ErrInvalidArgument)
	}
	if !grid.IsIncreasing(x) {
		return nil, fmt.Errorf("%w: grid must be finite and strictly increasing", diffusion.ErrInvalidArgument)
	}
	if n == 1 {
		return mat.NewTridiag(1, nil, []float64{0}, nil), nil
	}

	dl, d, du := assemble(x, mu, sigma)
	return mat.NewTridiag(n, dl, d, du), nil
}

// FromProcess builds the generator of p.
func FromProcess(p *diffusion.Process) (*mat.Tridiag, error) {
	return Build(p.X, p.Mu, p.Sigma)
}

// assemble returns the sub-, main and super-diagonal of the generator.
// Callers guarantee n >= 2 and a validated grid.
func assemble(x, mu, sigma []float64) (dl, d, du []float64) {
	n := len(x)
	dl = make([]float64, n-1)
	d = make([]float64, n)
	du = make([]float64, n-1)

	// Accumulate into the tridiagonal cell (i, j); clamped neighbor
	// indices fold boundary updates onto the diagonal.
	add := func(i, j int, v float64) {
		switch j {
		case i - 1:
			dl[i-1] += v
		case i:
			d[i] += v
		case i + 1:
			du[i] += v
		}
	}

	for i := 0; i < n; i++ {
		im, ip := i-1, i+1
		if im < 0 {
			im = 0
		}
		if ip > n-1 {
			ip = n - 1
		}

		var dxPlus, dxMinus float64
		if i == n-1 {
			dxPlus = x[n-1] - x[n-2]
		} else {
			dxPlus = x[i+1] - x[i]
		}
		if i == 0 {
			dxMinus = x[1] - x[0]
		} else {
			dxMinus = x[i] - x[i-1]
		}
		dx := (dxMinus + dxPlus) / 2

		// Drift, upwind: one-sided in the direction the flow comes from,
		// keeping off-diagonal contributions nonnegative.
		if mu[i] >= 0 || i == 0 {
			add(i, ip, mu[i]/dxPlus)
			add(i, i, -mu[i]/dxPlus)
		} else {
			add(i, i, mu[i]/dxMinus)
			add(i, im, -mu[i]/dxMinus)
		}

		// Diffusion, central.
		s2 := 0.5 * sigma[i] * sigma[i]
		add(i, im, s2/(dxMinus*dx))
		add(i, i, -2*s2/(dxMinus*dxPlus))
		add(i, ip, s2/(dxPlus*dx))
	}

	// Row-sum correction: fold each row's floating-point residual into the
	// diagonal so rows sum to zero at machine precision.
	for i := 0; i < n; i++ {
		sum := d[i]
		if i > 0 {
			sum += dl[i-1]
		}
		if i < n-1 {
			sum += du[i]
		}
		d[i] -= sum
	}

	return dl, d, du
}
