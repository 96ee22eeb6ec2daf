// Package config holds the user-facing configuration of a Bayesian
// analysis, loadable from YAML.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Bayesian configures how posterior samples are post-processed.
type Bayesian struct {
	// UseMedianFit selects the median of the posterior as the
	// representative point restored into the model after sampling;
	// when false the maximum a posteriori sample is used.
	UseMedianFit bool `yaml:"use_median_fit"`
}

// Config is the root configuration object.
type Config struct {
	Bayesian Bayesian `yaml:"bayesian"`
}

// Default returns the configuration used when no file is provided:
// MAP restore.
func Default() Config {
	return Config{}
}

// Load reads a YAML configuration, applying defaults for absent keys.
func Load(r io.Reader) (Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(r)
	if err := dec.Decode(&cfg); err != nil {
		if err == io.EOF {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: decoding YAML: %w", err)
	}
	return cfg, nil
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: %w", err)
	}
	defer f.Close()
	return Load(f)
}
