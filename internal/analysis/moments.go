package analysis

import (
	"math"

	"gonum.org/v1/gonum/stat"
)

// Moments summarizes a probability density sampled on a grid.
type Moments struct {
	Mean     float64
	Variance float64
	StdDev   float64
	Skewness float64
}

// DensityMoments computes the weighted moments of the density w on the
// grid x. Weights need not be normalized.
func DensityMoments(x, w []float64) Moments {
	mean := stat.Mean(x, w)
	variance := stat.MomentAbout(2, x, mean, w)
	sd := math.Sqrt(variance)
	skew := 0.0
	if sd > 0 {
		skew = stat.MomentAbout(3, x, mean, w) / (sd * sd * sd)
	}
	return Moments{Mean: mean, Variance: variance, StdDev: sd, Skewness: skew}
}

// TotalVariation returns the total variation distance between two
// densities on the same grid: half the L1 distance.
func TotalVariation(p, q []float64) float64 {
	sum := 0.0
	for i := range p {
		sum += math.Abs(p[i] - q[i])
	}
	return sum / 2
}
