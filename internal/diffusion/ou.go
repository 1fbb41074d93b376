package diffusion

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"github.com/san-kum/diffgrid/internal/grid"
)

const (
	DefaultGridLength = 100
	DefaultCutoff     = 1e-4
)

// OUConfig configures the Ornstein-Uhlenbeck factory. Zero values fall
// back to defaults where a default exists; Speed and Volatility must be
// set explicitly.
type OUConfig struct {
	Target     float64     // long-run mean xbar
	Speed      float64     // mean-reversion speed kappa, > 0
	Volatility float64     // sigma, > 0
	GridLength int         // number of grid points, default 100
	Cutoff     float64     // tail probability left outside the grid, default 1e-4
	Bounds     *[2]float64 // explicit grid bounds, overrides the quantile range
}

// OrnsteinUhlenbeck builds the process dX = kappa*(xbar - X)dt + sigma*dW
// on a uniform grid spanning the [cutoff, 1-cutoff] quantile range of its
// stationary law N(xbar, sigma^2/(2*kappa)).
func OrnsteinUhlenbeck(cfg OUConfig) (*Process, error) {
	if cfg.Speed <= 0 {
		return nil, fmt.Errorf("%w: mean-reversion speed must be positive, got %g", ErrInvalidArgument, cfg.Speed)
	}
	if cfg.Volatility <= 0 {
		return nil, fmt.Errorf("%w: volatility must be positive, got %g", ErrInvalidArgument, cfg.Volatility)
	}
	n, cut, err := gridParams(cfg.GridLength, cfg.Cutoff)
	if err != nil {
		return nil, err
	}

	law := distuv.Normal{Mu: cfg.Target, Sigma: cfg.Volatility / math.Sqrt(2*cfg.Speed)}
	lo, hi := law.Quantile(cut), law.Quantile(1-cut)
	if cfg.Bounds != nil {
		lo, hi = cfg.Bounds[0], cfg.Bounds[1]
		if lo >= hi {
			return nil, fmt.Errorf("%w: bounds [%g, %g] are not increasing", ErrInvalidArgument, lo, hi)
		}
	}

	x := grid.Uniform(lo, hi, n)
	mu := make([]float64, n)
	sigma := make([]float64, n)
	for i, xi := range x {
		mu[i] = cfg.Speed * (cfg.Target - xi)
		sigma[i] = cfg.Volatility
	}
	return New(x, mu, sigma)
}

func gridParams(length int, cutoff float64) (int, float64, error) {
	if length == 0 {
		length = DefaultGridLength
	}
	if length < 2 {
		return 0, 0, fmt.Errorf("%w: grid length must be at least 2, got %d", ErrInvalidArgument, length)
	}
	if cutoff == 0 {
		cutoff = DefaultCutoff
	}
	if cutoff < 0 || cutoff >= 0.5 {
		return 0, 0, fmt.Errorf("%w: cutoff must lie in (0, 0.5), got %g", ErrInvalidArgument, cutoff)
	}
	return length, cutoff, nil
}
