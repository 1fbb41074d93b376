package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/diffgrid/internal/diffusion"
)

const (
	DefaultTarget     = 0.0
	DefaultSpeed      = 0.1
	DefaultVolatility = 1.0
	DefaultGridLength = 100
	DefaultCutoff     = 1e-4
	DefaultDelta      = 0.0
)

type Config struct {
	Process    string        `yaml:"process"`
	Target     float64       `yaml:"target"`
	Speed      float64       `yaml:"speed"`
	Volatility float64       `yaml:"volatility"`
	GridLength int           `yaml:"grid_length"`
	Cutoff     float64       `yaml:"cutoff"`
	Spacing    float64       `yaml:"spacing"`
	Bounds     *BoundsConfig `yaml:"bounds,omitempty"`
	Delta      float64       `yaml:"delta"`
}

type BoundsConfig struct {
	Lo float64 `yaml:"lo"`
	Hi float64 `yaml:"hi"`
}

func DefaultConfig() *Config {
	return &Config{
		Process:    "ou",
		Target:     DefaultTarget,
		Speed:      DefaultSpeed,
		Volatility: DefaultVolatility,
		GridLength: DefaultGridLength,
		Cutoff:     DefaultCutoff,
		Delta:      DefaultDelta,
	}
}

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// BuildProcess constructs the configured diffusion process.
func (c *Config) BuildProcess() (*diffusion.Process, error) {
	var bounds *[2]float64
	if c.Bounds != nil {
		bounds = &[2]float64{c.Bounds.Lo, c.Bounds.Hi}
	}
	switch c.Process {
	case "ou":
		return diffusion.OrnsteinUhlenbeck(diffusion.OUConfig{
			Target:     c.Target,
			Speed:      c.Speed,
			Volatility: c.Volatility,
			GridLength: c.GridLength,
			Cutoff:     c.Cutoff,
			Bounds:     bounds,
		})
	case "cir":
		return diffusion.CoxIngersollRoss(diffusion.CIRConfig{
			Target:     c.Target,
			Speed:      c.Speed,
			Volatility: c.Volatility,
			GridLength: c.GridLength,
			Cutoff:     c.Cutoff,
			Spacing:    c.Spacing,
			Bounds:     bounds,
		})
	default:
		return nil, fmt.Errorf("%w: unknown process %q", diffusion.ErrInvalidArgument, c.Process)
	}
}
