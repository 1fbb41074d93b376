package stationary

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/diffgrid/internal/analysis"
	"github.com/san-kum/diffgrid/internal/diffusion"
	"github.com/san-kum/diffgrid/internal/operator"
)

func laplacian(t *testing.T) *mat.Tridiag {
	t.Helper()
	gen, err := operator.Build([]float64{0, 1, 2}, []float64{0, 0, 0}, []float64{1, 1, 1})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	return gen
}

func TestDistributionNegativeDelta(t *testing.T) {
	_, err := Distribution(laplacian(t), -0.1, nil)
	if !errors.Is(err, diffusion.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for negative delta, got %v", err)
	}
}

func TestDistributionPsiLengthMismatch(t *testing.T) {
	_, err := Distribution(laplacian(t), 0.5, []float64{1, 1})
	if !errors.Is(err, diffusion.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for short psi, got %v", err)
	}
}

// With delta > 0 and a zero reference measure the resolvent solution has
// no mass to normalize.
func TestDistributionZeroMass(t *testing.T) {
	_, err := Distribution(laplacian(t), 0.5, nil)
	if !errors.Is(err, diffusion.ErrNumericalFailure) {
		t.Errorf("expected ErrNumericalFailure for zero mass, got %v", err)
	}
}

// The symmetric Laplacian has the uniform distribution as its stationary
// law.
func TestDistributionLaplacianUniform(t *testing.T) {
	res, err := Distribution(laplacian(t), 0, nil)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	for i, v := range res.Density {
		if math.Abs(v-1.0/3.0) > 1e-8 {
			t.Errorf("density[%d] = %g, want 1/3", i, v)
		}
	}
	if math.Abs(res.Eigenvalue) > EigenvalueTol {
		t.Errorf("principal eigenvalue %g, want ~0", res.Eigenvalue)
	}
	if res.Warning != "" {
		t.Errorf("unexpected warning: %s", res.Warning)
	}
}

func TestDistributionNormalized(t *testing.T) {
	p, err := diffusion.OrnsteinUhlenbeck(diffusion.OUConfig{
		Target: 1.0, Speed: 0.5, Volatility: 0.8, GridLength: 80,
	})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}

	psi := make([]float64, p.Len())
	for i := range psi {
		psi[i] = 1 / float64(p.Len())
	}

	for _, delta := range []float64{0, 1e-4, 0.1, 1.0} {
		res, err := ForProcess(p, delta, psi)
		if err != nil {
			t.Fatalf("delta=%g: solve failed: %v", delta, err)
		}
		if got := floats.Sum(res.Density); math.Abs(got-1) > 1e-10 {
			t.Errorf("delta=%g: density sums to %g, want 1", delta, got)
		}
		for i, v := range res.Density {
			if v < 0 {
				t.Errorf("delta=%g: density[%d] = %g, want >= 0", delta, i, v)
			}
		}
	}
}

// The OU stationary law is N(xbar, sigma^2/(2*kappa)); the discretized
// distribution must reproduce its first two moments.
func TestDistributionOUStationaryMoments(t *testing.T) {
	p, err := diffusion.OrnsteinUhlenbeck(diffusion.OUConfig{
		Target: 0, Speed: 0.1, Volatility: 1, GridLength: 100,
	})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	res, err := ForProcess(p, 0, nil)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}

	m := analysis.DensityMoments(p.X, res.Density)
	wantVar := 1.0 / (2 * 0.1)
	if math.Abs(m.Mean) > 0.05 {
		t.Errorf("mean = %g, want ~0", m.Mean)
	}
	if math.Abs(m.Variance-wantVar)/wantVar > 0.05 {
		t.Errorf("variance = %g, want %g within 5%%", m.Variance, wantVar)
	}
}

// As delta shrinks toward zero with a uniform reference measure, the
// resolvent solution converges to the eigenvector solution.
func TestDistributionDeltaConvergence(t *testing.T) {
	p, err := diffusion.OrnsteinUhlenbeck(diffusion.OUConfig{
		Target: 0, Speed: 0.1, Volatility: 1, GridLength: 100,
	})
	if err != nil {
		t.Fatalf("process failed: %v", err)
	}
	gen, err := operator.FromProcess(p)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	ref, err := Distribution(gen, 0, nil)
	if err != nil {
		t.Fatalf("eigen solve failed: %v", err)
	}

	psi := make([]float64, p.Len())
	for i := range psi {
		psi[i] = 1 / float64(p.Len())
	}
	res, err := Distribution(gen, 1e-6, psi)
	if err != nil {
		t.Fatalf("resolvent solve failed: %v", err)
	}

	if tv := analysis.TotalVariation(res.Density, ref.Density); tv > 1e-3 {
		t.Errorf("TV(delta=1e-6, delta=0) = %g, want < 1e-3", tv)
	}
}

func TestDistributionSingleState(t *testing.T) {
	gen, err := operator.Build([]float64{1}, []float64{0}, []float64{1})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	res, err := Distribution(gen, 0, nil)
	if err != nil {
		t.Fatalf("solve failed: %v", err)
	}
	if len(res.Density) != 1 || math.Abs(res.Density[0]-1) > 1e-15 {
		t.Errorf("single-state density = %v, want [1]", res.Density)
	}
}
