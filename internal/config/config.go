// Package config loads benchmark settings from YAML files and named
// presets, with sane defaults for everything left unset.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultLength matches the classic benchmark size of 75 * 2^20
// elements.
const DefaultLength = 1024 * 1024 * 75

// Config is the full set of run settings. Zero values mean "use the
// default", so a partial YAML file overlays cleanly.
type Config struct {
	Backend    string `yaml:"backend"`
	DeviceType string `yaml:"device_type"`
	N          int    `yaml:"n"`
	MinValue   int32  `yaml:"min_value"`
	MaxValue   int32  `yaml:"max_value"`
	Seed       int64  `yaml:"seed"`
	Samples    int    `yaml:"samples"`
	Repeat     int    `yaml:"repeat"`
	LocalSize  int    `yaml:"local_size"`
}

// DefaultConfig covers 75 Mi elements with edge lengths in [1, 9],
// 100 printed samples and one launch.
func DefaultConfig() Config {
	return Config{
		Backend:    "auto",
		DeviceType: "gpu",
		N:          DefaultLength,
		MinValue:   1,
		MaxValue:   9,
		Seed:       1,
		Samples:    100,
		Repeat:     1,
		LocalSize:  0,
	}
}

// Load reads a YAML file and overlays it on the defaults.
func Load(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("config: parsing %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings the pipeline cannot run with.
func (c Config) Validate() error {
	if c.N <= 0 {
		return fmt.Errorf("config: n must be positive, got %d", c.N)
	}
	if c.MinValue < 1 {
		return fmt.Errorf("config: min_value must be at least 1, got %d", c.MinValue)
	}
	if c.MaxValue < c.MinValue {
		return fmt.Errorf("config: max_value %d is below min_value %d", c.MaxValue, c.MinValue)
	}
	if c.Samples < 0 {
		return fmt.Errorf("config: samples must not be negative, got %d", c.Samples)
	}
	if c.Repeat < 1 {
		return fmt.Errorf("config: repeat must be at least 1, got %d", c.Repeat)
	}
	if c.LocalSize < 0 {
		return fmt.Errorf("config: local_size must not be negative, got %d", c.LocalSize)
	}
	return nil
}
