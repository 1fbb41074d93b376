package operator

import (
	"errors"
	"math"
	"testing"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/diffgrid/internal/diffusion"
)

func testProcess(t *testing.T) *diffusion.Process {
	t.Helper()
	p, err := diffusion.OrnsteinUhlenbeck(diffusion.OUConfig{
		Target: 0.5, Speed: 0.3, Volatility: 1.2, GridLength: 60,
	})
	if err != nil {
		t.Fatalf("building process: %v", err)
	}
	return p
}

func TestBuildRowSumsZero(t *testing.T) {
	gen, err := FromProcess(testProcess(t))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	n, _ := gen.Dims()
	for i := 0; i < n; i++ {
		sum := 0.0
		for j := 0; j < n; j++ {
			sum += gen.At(i, j)
		}
		if math.Abs(sum) > 1e-12 {
			t.Errorf("row %d sums to %g, want 0", i, sum)
		}
	}
}

func TestBuildSignStructure(t *testing.T) {
	gen, err := FromProcess(testProcess(t))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	n, _ := gen.Dims()
	for i := 0; i < n; i++ {
		if gen.At(i, i) > 0 {
			t.Errorf("diagonal (%d,%d) = %g, want <= 0", i, i, gen.At(i, i))
		}
		if i > 0 && gen.At(i, i-1) < 0 {
			t.Errorf("subdiagonal (%d,%d) = %g, want >= 0", i, i-1, gen.At(i, i-1))
		}
		if i < n-1 && gen.At(i, i+1) < 0 {
			t.Errorf("superdiagonal (%d,%d) = %g, want >= 0", i, i+1, gen.At(i, i+1))
		}
	}
}

func TestBuildTridiagonal(t *testing.T) {
	gen, err := FromProcess(testProcess(t))
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	n, _ := gen.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if j >= i-1 && j <= i+1 {
				continue
			}
			if gen.At(i, j) != 0 {
				t.Errorf("entry (%d,%d) = %g outside the tridiagonal band", i, j, gen.At(i, j))
			}
		}
	}
}

// A driftless unit-volatility process on a uniform grid reduces to the
// symmetric discrete Laplacian.
func TestBuildLaplacian(t *testing.T) {
	x := []float64{0, 1, 2}
	mu := []float64{0, 0, 0}
	sigma := []float64{1, 1, 1}

	gen, err := Build(x, mu, sigma)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	want := [][]float64{
		{-0.5, 0.5, 0},
		{0.5, -1, 0.5},
		{0, 0.5, -0.5},
	}
	for i := range want {
		for j := range want[i] {
			if got := gen.At(i, j); math.Abs(got-want[i][j]) > 1e-14 {
				t.Errorf("entry (%d,%d) = %g, want %g", i, j, got, want[i][j])
			}
		}
	}
}

func TestBuildUpwindDirection(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	sigma := []float64{0, 0, 0, 0}

	// Positive drift: mass flows to the right neighbor.
	gen, err := Build(x, []float64{1, 1, 1, 1}, sigma)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if got := gen.At(1, 2); got != 1 {
		t.Errorf("forward difference entry (1,2) = %g, want 1", got)
	}
	if got := gen.At(1, 0); got != 0 {
		t.Errorf("entry (1,0) = %g, want 0 for positive drift", got)
	}

	// Negative drift: mass flows to the left neighbor, except at the first
	// point where the forward difference is forced.
	gen, err = Build(x, []float64{-1, -1, -1, -1}, sigma)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if got := gen.At(1, 0); got != 1 {
		t.Errorf("backward difference entry (1,0) = %g, want 1", got)
	}
	if got := gen.At(1, 2); got != 0 {
		t.Errorf("entry (1,2) = %g, want 0 for negative drift", got)
	}
	// The first row always uses the forward difference, even for negative
	// drift, keeping the stencil inside the grid.
	if got := gen.At(0, 1); got != -1 {
		t.Errorf("forced forward entry (0,1) = %g, want -1", got)
	}
}

// At the last grid point a positive drift has no right neighbor; the
// clamped stencil folds the flux onto the diagonal, leaving a zero row.
func TestBuildReflectingBoundary(t *testing.T) {
	x := []float64{0, 1, 2, 3}
	gen, err := Build(x, []float64{1, 1, 1, 1}, []float64{0, 0, 0, 0})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	n := len(x)
	for j := 0; j < n; j++ {
		if got := gen.At(n-1, j); got != 0 {
			t.Errorf("last row entry (%d,%d) = %g, want 0", n-1, j, got)
		}
	}
}

func TestBuildDeterministic(t *testing.T) {
	p := testProcess(t)
	a, err := FromProcess(p)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	b, err := FromProcess(p)
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}

	n, _ := a.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			if a.At(i, j) != b.At(i, j) {
				t.Fatalf("entry (%d,%d) differs between identical builds: %g vs %g",
					i, j, a.At(i, j), b.At(i, j))
			}
		}
	}
}

func TestBuildInvalidInput(t *testing.T) {
	tests := []struct {
		name  string
		x     []float64
		mu    []float64
		sigma []float64
	}{
		{"length mismatch", []float64{0, 1}, []float64{0}, []float64{1, 1}},
		{"empty", nil, nil, nil},
		{"non-increasing", []float64{0, 1, 1}, []float64{0, 0, 0}, []float64{1, 1, 1}},
		{"decreasing", []float64{2, 1, 0}, []float64{0, 0, 0}, []float64{1, 1, 1}},
		{"nan grid point", []float64{0, math.NaN(), 2}, []float64{0, 0, 0}, []float64{1, 1, 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.x, tt.mu, tt.sigma)
			if !errors.Is(err, diffusion.ErrInvalidArgument) {
				t.Errorf("expected ErrInvalidArgument, got %v", err)
			}
		})
	}
}

func TestBuildSinglePoint(t *testing.T) {
	gen, err := Build([]float64{1}, []float64{2}, []float64{3})
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	n, m := gen.Dims()
	if n != 1 || m != 1 {
		t.Fatalf("expected 1x1 matrix, got %dx%d", n, m)
	}
	if gen.At(0, 0) != 0 {
		t.Errorf("single-state generator = %g, want 0", gen.At(0, 0))
	}
}

// The derivative operator applied to the identity function is exactly one
// away from the degenerate boundary row.
func TestDerivativeOfIdentity(t *testing.T) {
	x := []float64{0, 0.5, 1.2, 2.0, 3.5}
	n := len(x)

	for _, drift := range []float64{1, -1} {
		mu := make([]float64, n)
		for i := range mu {
			mu[i] = drift
		}
		d, err := DerivativeRaw(x, mu)
		if err != nil {
			t.Fatalf("derivative failed: %v", err)
		}

		var y mat.VecDense
		y.MulVec(d, mat.NewVecDense(n, append([]float64(nil), x...)))

		for i := 0; i < n; i++ {
			// Positive drift folds the last row onto the diagonal, negative
			// drift is rescued at the first row by the forced forward rule.
			if drift > 0 && i == n-1 {
				continue
			}
			if got := y.AtVec(i); math.Abs(got-1) > 1e-12 {
				t.Errorf("drift %g: (Df)(x[%d]) = %g, want 1", drift, i, got)
			}
		}
	}
}

func TestDerivativeInvalid(t *testing.T) {
	if _, err := DerivativeRaw([]float64{0}, []float64{1}); !errors.Is(err, diffusion.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for single point, got %v", err)
	}
	if _, err := DerivativeRaw([]float64{0, 1}, []float64{1}); !errors.Is(err, diffusion.ErrInvalidArgument) {
		t.Errorf("expected ErrInvalidArgument for length mismatch, got %v", err)
	}
}
