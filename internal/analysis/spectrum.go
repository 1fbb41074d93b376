package analysis

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/diffgrid/internal/diffusion"
)

// Spectrum returns the eigenvalues of the generator sorted by descending
// real part. For a valid generator the leading eigenvalue is zero and all
// others have negative real part.
func Spectrum(gen *mat.Tridiag) ([]complex128, error) {
	n, _ := gen.Dims()
	dense := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			dense.Set(i, j, gen.At(i, j))
		}
	}

	var eig mat.Eigen
	if ok := eig.Factorize(dense, mat.EigenNone); !ok {
		return nil, fmt.Errorf("%w: eigendecomposition did not converge", diffusion.ErrNumericalFailure)
	}
	values := eig.Values(nil)
	sort.Slice(values, func(i, j int) bool {
		return real(values[i]) > real(values[j])
	})
	return values, nil
}

// SpectralGap returns the distance of the slowest non-trivial mode from
// zero: the negated real part of the second-largest eigenvalue.
func SpectralGap(gen *mat.Tridiag) (float64, error) {
	values, err := Spectrum(gen)
	if err != nil {
		return 0, err
	}
	if len(values) < 2 {
		return 0, fmt.Errorf("%w: spectral gap needs at least 2 states, got %d",
			diffusion.ErrInvalidArgument, len(values))
	}
	return -real(values[1]), nil
}

// RelaxationTime is the reciprocal of the spectral gap; +Inf when the gap
// vanishes.
func RelaxationTime(gap float64) float64 {
	if gap <= 0 {
		return math.Inf(1)
	}
	return 1 / gap
}
