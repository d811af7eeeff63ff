// Package config loads the optional mutor.yaml runtime configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/go-drift/mutor/pkg/telemetry"
)

// FileName is the configuration file looked up by LoadOptional.
const FileName = "mutor.yaml"

// DefaultMaxPasses bounds the number of notification passes in one flush.
const DefaultMaxPasses = 100

// Config represents the optional mutor.yaml configuration.
type Config struct {
	Logging   telemetry.LoggingConfig `yaml:"logging"`
	Metrics   telemetry.MetricsConfig `yaml:"metrics"`
	Scheduler SchedulerConfig         `yaml:"scheduler"`
	Errors    ErrorsConfig            `yaml:"errors"`
}

// SchedulerConfig tunes update batching.
type SchedulerConfig struct {
	// MaxPasses stops a flush whose writes keep re-triggering dependents.
	MaxPasses int `yaml:"max_passes,omitempty"`
}

// ErrorsConfig tunes error reporting.
type ErrorsConfig struct {
	// Verbose includes stack traces in logged reports.
	Verbose bool `yaml:"verbose,omitempty"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Logging: telemetry.LoggingConfig{
			Level:  "info",
			Format: "console",
			Output: "stderr",
		},
		Metrics: telemetry.MetricsConfig{
			Namespace: "mutor",
		},
		Scheduler: SchedulerConfig{
			MaxPasses: DefaultMaxPasses,
		},
	}
}

// LoadOptional reads mutor.yaml from dir if present.
func LoadOptional(dir string) (*Config, error) {
	cfg, err := LoadFile(filepath.Join(dir, FileName))
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// LoadFile reads the given file, filling unset fields with defaults.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, filling unset fields with defaults.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", FileName, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects values the runtime cannot honor.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Logging.Level) {
	case "", "trace", "debug", "info", "warn", "warning", "error", "disabled", "off":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}
	switch c.Logging.Format {
	case "", "console", "json":
	default:
		return fmt.Errorf("logging.format: must be console or json, got %q", c.Logging.Format)
	}
	if c.Scheduler.MaxPasses < 0 {
		return fmt.Errorf("scheduler.max_passes: must not be negative, got %d", c.Scheduler.MaxPasses)
	}
	if c.Scheduler.MaxPasses == 0 {
		c.Scheduler.MaxPasses = DefaultMaxPasses
	}
	return nil
}

// Marshal renders the configuration as YAML.
func (c *Config) Marshal() ([]byte, error) {
	return yaml.Marshal(c)
}
