// Package config provides configuration loading and validation for the CLI and server.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/jonathan/roommate-matcher/internal/scoring"
	"github.com/jonathan/roommate-matcher/internal/types"
)

// Config represents the CLI configuration that can be loaded from a JSON or TOML file.
// All fields are optional; missing values use defaults or must be provided via CLI flags.
type Config struct {
	// Ranking
	MinScore   *int `json:"min_score,omitempty" toml:"min_score,omitempty"`     // Minimum overall score to keep (0-100)
	MaxResults int  `json:"max_results,omitempty" toml:"max_results,omitempty"` // Maximum matches returned
	Workers    int  `json:"workers,omitempty" toml:"workers,omitempty"`         // Concurrent candidate evaluations

	// Weights is the default weight preset used when no weights file is given.
	Weights types.WeightConfig `json:"weights,omitempty" toml:"weights,omitempty"`

	// Scoring overrides individual scoring constants; unset fields keep their defaults.
	Scoring scoring.Constants `json:"scoring" toml:"scoring"`

	// Behavior
	Verbose bool `json:"verbose,omitempty" toml:"verbose,omitempty"` // Print detailed debug information
}

// Default returns a Config carrying the default scoring constants.
func Default() *Config {
	return &Config{Scoring: scoring.DefaultConstants()}
}

// LoadConfig loads configuration from a JSON or TOML file, chosen by extension.
// Returns an error if the file cannot be read or parsed.
func LoadConfig(path string) (*Config, error) {
	data, path, err := readFile(path)
	if err != nil {
		return nil, err
	}

	cfg := Default()
	if isTOML(path) {
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config TOML: %w", err)
		}
		return cfg, nil
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}
	return cfg, nil
}

// LoadWeights loads a weight configuration from a JSON or TOML file.
func LoadWeights(path string) (types.WeightConfig, error) {
	data, path, err := readFile(path)
	if err != nil {
		return nil, err
	}

	var weights types.WeightConfig
	if isTOML(path) {
		if err := toml.Unmarshal(data, &weights); err != nil {
			return nil, fmt.Errorf("failed to parse weights TOML: %w", err)
		}
	} else if err := json.Unmarshal(data, &weights); err != nil {
		return nil, fmt.Errorf("failed to parse weights JSON: %w", err)
	}

	if len(weights) == 0 {
		return nil, fmt.Errorf("weights file %s defines no dimensions", path)
	}
	if err := weights.Validate(); err != nil {
		return nil, fmt.Errorf("invalid weights in %s: %w", path, err)
	}
	return weights, nil
}

func readFile(path string) ([]byte, string, error) {
	if path == "" {
		return nil, "", fmt.Errorf("config path is empty")
	}

	// Resolve path relative to current directory if not absolute
	if !filepath.IsAbs(path) {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, "", fmt.Errorf("failed to get current directory: %w", err)
		}
		path = filepath.Join(cwd, path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	return data, path, nil
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Validate checks that the configuration has valid values.
// Note: This doesn't check for required fields since those are handled
// by CLI flag validation after merging.
func (c *Config) Validate() error {
	if c.MinScore != nil && (*c.MinScore < 0 || *c.MinScore > 100) {
		return fmt.Errorf("config error: 'min_score' must be within [0, 100]")
	}
	if c.MaxResults < 0 {
		return fmt.Errorf("config error: 'max_results' must be non-negative")
	}
	if c.Workers < 0 {
		return fmt.Errorf("config error: 'workers' must be non-negative")
	}
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if err := c.Weights.Validate(); err != nil {
		return fmt.Errorf("config error: invalid 'weights': %w", err)
	}
	return nil
}

// MergeWithDefaults returns a new Config with unset fields filled from defaults.
// This is used to apply config file values as defaults for CLI flags.
func (c *Config) MergeWithDefaults(defaults Config) Config {
	result := *c

	if result.MinScore == nil {
		result.MinScore = defaults.MinScore
	}
	if result.MaxResults == 0 {
		result.MaxResults = defaults.MaxResults
	}
	if result.Workers == 0 {
		result.Workers = defaults.Workers
	}
	if len(result.Weights) == 0 {
		result.Weights = defaults.Weights
	}
	if result.Scoring == (scoring.Constants{}) {
		result.Scoring = defaults.Scoring
	}

	// Verbose is sticky: either side turning it on wins.
	result.Verbose = result.Verbose || defaults.Verbose

	return result
}
