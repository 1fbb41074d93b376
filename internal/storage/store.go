package storage

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/diffgrid/internal/analysis"
	"github.com/san-kum/diffgrid/internal/config"
	"github.com/san-kum/diffgrid/internal/diffusion"
	"github.com/san-kum/diffgrid/internal/stationary"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

type RunMetadata struct {
	ID         string             `json:"id"`
	Process    string             `json:"process"`
	Timestamp  time.Time          `json:"timestamp"`
	Target     float64            `json:"target"`
	Speed      float64            `json:"speed"`
	Volatility float64            `json:"volatility"`
	GridLength int                `json:"grid_length"`
	Delta      float64            `json:"delta"`
	Eigenvalue float64            `json:"eigenvalue"`
	Warning    string             `json:"warning,omitempty"`
	Moments    map[string]float64 `json:"moments"`
}

// Save writes one solved run as a directory: metadata.json, density.csv
// (grid point, density) and generator.csv (sub/main/super diagonals).
func (s *Store) Save(cfg *config.Config, p *diffusion.Process, gen *mat.Tridiag, res *stationary.Result) (string, error) {
	runID := fmt.Sprintf("%s_%d", cfg.Process, time.Now().Unix())
	runDir := filepath.Join(s.baseDir, runID)

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	m := analysis.DensityMoments(p.X, res.Density)
	meta := RunMetadata{
		ID:         runID,
		Process:    cfg.Process,
		Timestamp:  time.Now(),
		Target:     cfg.Target,
		Speed:      cfg.Speed,
		Volatility: cfg.Volatility,
		GridLength: p.Len(),
		Delta:      cfg.Delta,
		Eigenvalue: res.Eigenvalue,
		Warning:    res.Warning,
		Moments: map[string]float64{
			"mean":     m.Mean,
			"variance": m.Variance,
			"stddev":   m.StdDev,
			"skewness": m.Skewness,
		},
	}

	metaFile, err := os.Create(filepath.Join(runDir, "metadata.json"))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}

	if err := writeDensityCSV(filepath.Join(runDir, "density.csv"), p.X, res.Density); err != nil {
		return "", err
	}
	if gen != nil {
		if err := writeGeneratorCSV(filepath.Join(runDir, "generator.csv"), gen); err != nil {
			return "", err
		}
	}

	return runID, nil
}

func writeDensityCSV(path string, x, density []float64) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"x", "density"}); err != nil {
		return err
	}
	for i := range x {
		row := []string{
			strconv.FormatFloat(x[i], 'g', -1, 64),
			strconv.FormatFloat(density[i], 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func writeGeneratorCSV(path string, gen *mat.Tridiag) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	w := csv.NewWriter(file)
	defer w.Flush()

	if err := w.Write([]string{"sub", "main", "super"}); err != nil {
		return err
	}
	n, _ := gen.Dims()
	for i := 0; i < n; i++ {
		sub, sup := 0.0, 0.0
		if i > 0 {
			sub = gen.At(i, i-1)
		}
		if i < n-1 {
			sup = gen.At(i, i+1)
		}
		row := []string{
			strconv.FormatFloat(sub, 'g', -1, 64),
			strconv.FormatFloat(gen.At(i, i), 'g', -1, 64),
			strconv.FormatFloat(sup, 'g', -1, 64),
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name(), "metadata.json"))
		if err != nil {
			continue
		}
		var meta RunMetadata
		if err := json.Unmarshal(data, &meta); err != nil {
			continue
		}
		runs = append(runs, meta)
	}
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, "metadata.json"))
	if err != nil {
		return nil, err
	}
	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, err
	}
	return &meta, nil
}

// LoadDensity reads back the grid and density of a stored run.
func (s *Store) LoadDensity(runID string) ([]float64, []float64, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, "density.csv"))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	records, err := r.ReadAll()
	if err != nil {
		return nil, nil, err
	}
	if len(records) < 2 {
		return []float64{}, []float64{}, nil
	}

	x := make([]float64, 0, len(records)-1)
	density := make([]float64, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		if len(records[i]) < 2 {
			continue
		}
		xv, err := strconv.ParseFloat(records[i][0], 64)
		if err != nil {
			continue
		}
		dv, err := strconv.ParseFloat(records[i][1], 64)
		if err != nil {
			continue
		}
		x = append(x, xv)
		density = append(density, dv)
	}
	return x, density, nil
}

func (s *Store) Delete(runID string) error {
	return os.RemoveAll(filepath.Join(s.baseDir, runID))
}
