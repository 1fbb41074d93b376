// Package diffusion defines one-dimensional diffusion processes sampled on
// a finite grid.
//
// A [Process] holds the grid together with the drift and volatility
// coefficients evaluated at each grid point:
//
//	dX_t = mu(X_t) dt + sigma(X_t) dW_t
//
// Named factories construct processes with grids spanning a quantile range
// of the known stationary law:
//
//   - [OrnsteinUhlenbeck]: mean-reverting Gaussian process
//   - [CoxIngersollRoss]: square-root process, strictly positive state
//
// The process itself is a plain value object; discretizing its generator
// and computing stationary distributions live in the operator and
// stationary packages.
package diffusion
