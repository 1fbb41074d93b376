// Package operator discretizes the infinitesimal generator of a 1-D
// diffusion on a non-uniform grid as a sparse tridiagonal matrix.
//
// The discretization uses upwind differencing for the drift term and
// central differencing for the diffusion term, followed by a row-sum
// correction that makes every row sum to exactly zero. The result is a
// valid generator of a finite-state Markov chain: off-diagonal entries
// are nonnegative and diagonal entries nonpositive.
//
//	gen, err := operator.Build(x, mu, sigma)
//
// Boundaries are reflecting: both ends use one-sided stencils obtained by
// clamping the neighbor indices, so probability flux cannot leave the grid.
package operator
