// Package grid builds the non-uniform state grids the generator
// discretization runs on.
package grid

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// Uniform returns n evenly spaced points from lo to hi inclusive.
func Uniform(lo, hi float64, n int) []float64 {
	return floats.Span(make([]float64, n), lo, hi)
}

// Power returns n points from lo to hi with spacing controlled by the
// exponent p: points cluster near lo for p > 1, near hi for p < 1, and
// p == 1 reduces to Uniform. Used by the CIR factory to concentrate
// resolution near the origin boundary.
func Power(lo, hi float64, n int, p float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		u := float64(i) / float64(n-1)
		x[i] = lo + (hi-lo)*math.Pow(u, p)
	}
	return x
}

// IsIncreasing reports whether x is finite and strictly increasing.
func IsIncreasing(x []float64) bool {
	for i, v := range x {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
		if i > 0 && v <= x[i-1] {
			return false
		}
	}
	return true
}
