package diffusion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mathext"

	"github.com/san-kum/diffgrid/internal/grid"
)

// DefaultCIRSpacing concentrates grid points near the origin, where the
// CIR density varies fastest.
const DefaultCIRSpacing = 2.0

// CIRConfig configures the Cox-Ingersoll-Ross factory.
type CIRConfig struct {
	Target     float64     // long-run mean xbar, > 0
	Speed      float64     // mean-reversion speed kappa, > 0
	Volatility float64     // sigma, > 0
	GridLength int         // number of grid points, default 100
	Cutoff     float64     // tail probability left outside the grid, default 1e-4
	Spacing    float64     // grid spacing exponent, default 2 (cluster near the origin)
	Bounds     *[2]float64 // explicit grid bounds, overrides the quantile range
}

// CoxIngersollRoss builds dX = kappa*(xbar - X)dt + sigma*sqrt(X)dW on a
// power-spaced grid spanning the [cutoff, 1-cutoff] quantile range of its
// stationary law Gamma(2*kappa*xbar/sigma^2, rate 2*kappa/sigma^2).
//
// The Feller condition 2*kappa*xbar/sigma^2 > 1 is required so the origin
// is unreachable; violating it fails before any grid is built.
func CoxIngersollRoss(cfg CIRConfig) (*Process, error) {
	if cfg.Speed <= 0 {
		return nil, fmt.Errorf("%w: mean-reversion speed must be positive, got %g", ErrInvalidArgument, cfg.Speed)
	}
	if cfg.Volatility <= 0 {
		return nil, fmt.Errorf("%w: volatility must be positive, got %g", ErrInvalidArgument, cfg.Volatility)
	}
	if cfg.Target <= 0 {
		return nil, fmt.Errorf("%w: long-run mean must be positive, got %g", ErrInvalidArgument, cfg.Target)
	}
	shape := 2 * cfg.Speed * cfg.Target / (cfg.Volatility * cfg.Volatility)
	if shape <= 1 {
		return nil, fmt.Errorf("%w: Feller condition violated, 2*kappa*xbar/sigma^2 = %g <= 1",
			ErrInvalidArgument, shape)
	}
	n, cut, err := gridParams(cfg.GridLength, cfg.Cutoff)
	if err != nil {
		return nil, err
	}
	spacing := cfg.Spacing
	if spacing == 0 {
		spacing = DefaultCIRSpacing
	}
	if spacing < 0 {
		return nil, fmt.Errorf("%w: spacing exponent must be positive, got %g", ErrInvalidArgument, spacing)
	}

	rate := 2 * cfg.Speed / (cfg.Volatility * cfg.Volatility)
	lo := gammaQuantile(shape, rate, cut)
	hi := gammaQuantile(shape, rate, 1-cut)
	if cfg.Bounds != nil {
		lo, hi = cfg.Bounds[0], cfg.Bounds[1]
		if lo >= hi || lo < 0 {
			return nil, fmt.Errorf("%w: bounds [%g, %g] invalid for a nonnegative process", ErrInvalidArgument, lo, hi)
		}
	}

	x := grid.Power(lo, hi, n, spacing)
	mu := make([]float64, n)
	sigma := make([]float64, n)
	for i, xi := range x {
		mu[i] = cfg.Speed * (cfg.Target - xi)
		sigma[i] = cfg.Volatility * math.Sqrt(xi)
	}
	return New(x, mu, sigma)
}

// gammaQuantile inverts the Gamma(shape, rate) CDF via the regularized
// incomplete gamma inverse.
func gammaQuantile(shape, rate, p float64) float64 {
	return mathext.GammaIncRegInv(shape, p) / rate
}
