// Package analysis provides summary diagnostics for stationary densities
// and discretized generators.
//
//   - [DensityMoments]: weighted mean, variance and skewness of a density
//     sampled on a grid
//   - [Spectrum]: eigenvalues of the generator, sorted by real part
//   - [SpectralGap]: distance of the slowest non-trivial mode from zero
//   - [TotalVariation]: distance between two densities on the same grid
//
// # Mixing
//
// The spectral gap controls how fast the chain forgets its initial state;
// its reciprocal is the relaxation time:
//
//	gap, _ := analysis.SpectralGap(gen)
//	tau := analysis.RelaxationTime(gap)
package analysis
