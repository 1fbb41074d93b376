// Package experiment runs batched stationary-analysis studies: convergence
// of the discounted solver toward the eigenvector solution, and parameter
// sweeps over a family of processes.
package experiment

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/diffgrid/internal/analysis"
	"github.com/san-kum/diffgrid/internal/diffusion"
	"github.com/san-kum/diffgrid/internal/stationary"
)

// DeltaPoint records how far the resolvent solution at one discount rate
// sits from the delta == 0 eigenvector solution.
type DeltaPoint struct {
	Delta   float64
	TV      float64
	Warning string
}

// DeltaConvergence solves the stationary distribution of gen at each
// positive delta against a uniform reference measure and reports the total
// variation distance to the eigenvector solution at delta == 0.
func DeltaConvergence(gen *mat.Tridiag, deltas []float64) ([]DeltaPoint, error) {
	ref, err := stationary.Distribution(gen, 0, nil)
	if err != nil {
		return nil, err
	}

	n, _ := gen.Dims()
	psi := make([]float64, n)
	for i := range psi {
		psi[i] = 1 / float64(n)
	}

	points := make([]DeltaPoint, 0, len(deltas))
	for _, d := range deltas {
		if d <= 0 {
			return nil, fmt.Errorf("%w: convergence study needs positive deltas, got %g",
				diffusion.ErrInvalidArgument, d)
		}
		res, err := stationary.Distribution(gen, d, psi)
		if err != nil {
			return nil, err
		}
		points = append(points, DeltaPoint{
			Delta:   d,
			TV:      analysis.TotalVariation(res.Density, ref.Density),
			Warning: res.Warning,
		})
	}
	return points, nil
}

// SweepPoint records the stationary moments of one process in a family.
type SweepPoint struct {
	Value   float64
	Moments analysis.Moments
	Warning string
}

// ParamSweep builds one process per value, solves its stationary
// distribution at the given delta, and summarizes each density by its
// moments. The build closure maps the swept parameter value to a process.
func ParamSweep(build func(value float64) (*diffusion.Process, error), values []float64, delta float64) ([]SweepPoint, error) {
	points := make([]SweepPoint, 0, len(values))
	for _, v := range values {
		p, err := build(v)
		if err != nil {
			return nil, fmt.Errorf("building process at %g: %w", v, err)
		}
		var psi []float64
		if delta > 0 {
			psi = make([]float64, p.Len())
			for i := range psi {
				psi[i] = 1 / float64(p.Len())
			}
		}
		res, err := stationary.ForProcess(p, delta, psi)
		if err != nil {
			return nil, fmt.Errorf("solving at %g: %w", v, err)
		}
		points = append(points, SweepPoint{
			Value:   v,
			Moments: analysis.DensityMoments(p.X, res.Density),
			Warning: res.Warning,
		})
	}
	return points, nil
}
