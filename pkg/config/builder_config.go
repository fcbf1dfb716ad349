// Package config provides configuration loading for the builder API.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	defaultGridSize     = 20
	defaultHistoryLimit = 50
)

// BuilderConfig is the builder.yaml file: canvas and history tuning plus the
// collaborating service endpoints.
type BuilderConfig struct {
	// GridSize is the snap grid in canvas units. Zero disables snapping.
	GridSize int `yaml:"grid_size"`

	// HistoryLimit caps undo history per editing session.
	HistoryLimit int `yaml:"history_limit"`

	// MediaServiceURL is the base URL of the media upload service.
	MediaServiceURL string `yaml:"media_service_url"`

	// UserDirectoryURL is the base URL of the user directory service.
	UserDirectoryURL string `yaml:"user_directory_url"`
}

// DefaultBuilderConfig returns the configuration used when no file is given.
func DefaultBuilderConfig() BuilderConfig {
	return BuilderConfig{
		GridSize:     defaultGridSize,
		HistoryLimit: defaultHistoryLimit,
	}
}

// LoadBuilderConfig loads builder configuration from a YAML file.
func LoadBuilderConfig(filepath string) (BuilderConfig, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return BuilderConfig{}, fmt.Errorf("failed to read config file %s: %w", filepath, err)
	}

	config := DefaultBuilderConfig()
	if err := yaml.Unmarshal(data, &config); err != nil {
		return BuilderConfig{}, fmt.Errorf("failed to parse YAML config: %w", err)
	}

	if err := ValidateBuilderConfig(config); err != nil {
		return BuilderConfig{}, err
	}

	return config, nil
}

// LoadBuilderConfigOrDefault attempts to load builder config from a file,
// falling back to defaults if the file doesn't exist.
func LoadBuilderConfigOrDefault(filepath string) BuilderConfig {
	config, err := LoadBuilderConfig(filepath)
	if err != nil {
		return DefaultBuilderConfig()
	}

	return config
}

// ValidateBuilderConfig validates the builder configuration.
func ValidateBuilderConfig(config BuilderConfig) error {
	if config.GridSize < 0 {
		return fmt.Errorf("grid_size must not be negative, got %d", config.GridSize)
	}

	if config.HistoryLimit < 1 {
		return fmt.Errorf("history_limit must be at least 1, got %d", config.HistoryLimit)
	}

	return nil
}
