// Package config provides YAML-based configuration loading with environment
// variable expansion and an environment variable overlay.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a YAML file with environment variable expansion.
// Fields tagged with `env` are then overridden by the matching environment
// variables, and the result is validated when target implements Validator.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expandedData := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if err := env.Parse(target); err != nil {
		return fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	return validate(target)
}

// LoadOptional behaves like Load when filename exists. When it does not,
// target keeps its current values and only the environment overlay and
// validation are applied.
func LoadOptional[T any](filename string, target *T) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		if err := env.Parse(target); err != nil {
			return fmt.Errorf("failed to apply environment overrides: %w", err)
		}
		return validate(target)
	}
	return Load(filename, target)
}

func validate(target any) error {
	if validator, ok := target.(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}
	return nil
}
