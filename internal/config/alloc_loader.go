package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AllocConfig tunes the buy command. Weights default to 1.0 (equal weight)
// for any pair not listed. Exclude is a standing do-not-buy list, merged
// with the --do-not-buy flag at run time.
type AllocConfig struct {
	Weights map[string]float64 `yaml:"weights"`
	Exclude []string           `yaml:"exclude"`
}

func LoadAllocConfig(path string) (AllocConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return AllocConfig{}, fmt.Errorf("read alloc config: %w", err)
	}

	var ac AllocConfig
	if err := yaml.Unmarshal(data, &ac); err != nil {
		return AllocConfig{}, fmt.Errorf("parse alloc config: %w", err)
	}

	return ac, nil
}

// Weight returns the configured weight for pair, or 1.0 when absent.
func (ac AllocConfig) Weight(pair string) float64 {
	if w, ok := ac.Weights[pair]; ok && w > 0 {
		return w
	}
	return 1.0
}

// Excluded reports whether pair appears in the standing exclusion list.
func (ac AllocConfig) Excluded(pair string) bool {
	for _, p := range ac.Exclude {
		if p == pair {
			return true
		}
	}
	return false
}
