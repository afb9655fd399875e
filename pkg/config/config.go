// Package config provides configuration loading and management for skeleton3d.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Input formats understood by the volume loader.
const (
	FormatAuto   = "auto"
	FormatRaw    = "raw"
	FormatBinvox = "binvox"
	FormatSlices = "slices"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Thinning parameters
	Thinning struct {
		// Threshold is the smallest voxel value treated as object
		Threshold int `yaml:"threshold"`

		// PreserveSheets keeps 2-D surfaces instead of reducing them to curves
		PreserveSheets bool `yaml:"preserveSheets"`

		// Workers specifies how many goroutines scan for deletion candidates
		Workers int `yaml:"workers"`
	} `yaml:"thinning"`

	// Input parameters
	Input struct {
		// Format is one of auto, raw, binvox or slices
		Format string `yaml:"format"`

		// Dims gives [nx, ny, nz] for headerless raw volumes
		Dims []int `yaml:"dims,omitempty"`
	} `yaml:"input"`

	// Output parameters
	Output struct {
		// SaveIntermediaryResults determines whether to save projections of the
		// input and the skeleton
		SaveIntermediaryResults bool `yaml:"saveIntermediaryResults"`

		// ExtractSlices writes every z slice of the skeleton as an image
		ExtractSlices bool `yaml:"extractSlices"`

		// Verbose prints the per-direction deletion table
		Verbose bool `yaml:"verbose"`

		// LogLevel is a zerolog level name
		LogLevel string `yaml:"logLevel"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	cfg.Thinning.Threshold = 1
	cfg.Thinning.PreserveSheets = false
	cfg.Thinning.Workers = runtime.NumCPU() // Use all available cores by default

	cfg.Input.Format = FormatAuto

	cfg.Output.SaveIntermediaryResults = false
	cfg.Output.ExtractSlices = false
	cfg.Output.Verbose = true
	cfg.Output.LogLevel = "info"

	return cfg
}

// Validate checks that every value is usable.
func (c *Config) Validate() error {
	var errs []error
	if c.Thinning.Threshold < 1 || c.Thinning.Threshold > 255 {
		errs = append(errs, fmt.Errorf("thinning.threshold must be in [1, 255], got %d", c.Thinning.Threshold))
	}
	if c.Thinning.Workers < 1 {
		errs = append(errs, fmt.Errorf("thinning.workers must be positive, got %d", c.Thinning.Workers))
	}
	switch c.Input.Format {
	case FormatAuto, FormatRaw, FormatBinvox, FormatSlices:
	default:
		errs = append(errs, fmt.Errorf("input.format %q is not one of auto, raw, binvox, slices", c.Input.Format))
	}
	if c.Input.Dims != nil {
		if len(c.Input.Dims) != 3 {
			errs = append(errs, fmt.Errorf("input.dims needs three values, got %d", len(c.Input.Dims)))
		} else {
			for _, d := range c.Input.Dims {
				if d < 1 {
					errs = append(errs, fmt.Errorf("input.dims must be positive, got %v", c.Input.Dims))
					break
				}
			}
		}
	}
	if c.Input.Format == FormatRaw && c.Input.Dims == nil {
		errs = append(errs, errors.New("input.dims is required for raw input"))
	}
	return errors.Join(errs...)
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
