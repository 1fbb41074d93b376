package config

var Presets = map[string]map[string]*Config{
	"ou": {
		"standard": {
			Process: "ou", Target: 0.0, Speed: 0.1, Volatility: 1.0,
			GridLength: 100, Cutoff: 1e-4,
		},
		"stiff": {
			Process: "ou", Target: 0.0, Speed: 5.0, Volatility: 0.5,
			GridLength: 200, Cutoff: 1e-5,
		},
		"wide": {
			Process: "ou", Target: 2.0, Speed: 0.05, Volatility: 2.0,
			GridLength: 150, Cutoff: 1e-3,
		},
	},
	"cir": {
		"standard": {
			Process: "cir", Target: 1.0, Speed: 1.0, Volatility: 0.8,
			GridLength: 100, Cutoff: 1e-4, Spacing: 2.0,
		},
		"near-boundary": {
			Process: "cir", Target: 0.5, Speed: 1.5, Volatility: 1.0,
			GridLength: 200, Cutoff: 1e-4, Spacing: 3.0,
		},
		"gentle": {
			Process: "cir", Target: 2.0, Speed: 0.5, Volatility: 0.6,
			GridLength: 100, Cutoff: 1e-4, Spacing: 1.5,
		},
	},
}

func GetPreset(process, name string) *Config {
	group, ok := Presets[process]
	if !ok {
		return nil
	}
	return group[name]
}

func ListPresets(process string) []string {
	group, ok := Presets[process]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(group))
	for name := range group {
		names = append(names, name)
	}
	return names
}
