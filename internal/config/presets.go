package config

import (
	"fmt"
	"sort"
)

// presets are named starting points for common runs.
var presets = map[string]func() Config{
	// full is the classic benchmark shape.
	"full": DefaultConfig,
	// smoke is small enough for CI and repeats the launch to get a
	// stable mean.
	"smoke": func() Config {
		cfg := DefaultConfig()
		cfg.N = 1 << 20
		cfg.Repeat = 5
		return cfg
	},
}

// Preset returns the named preset configuration.
func Preset(name string) (Config, error) {
	ctor, ok := presets[name]
	if !ok {
		return Config{}, fmt.Errorf("config: unknown preset %q (have %v)", name, PresetNames())
	}
	return ctor(), nil
}

// PresetNames lists the available presets in sorted order.
func PresetNames() []string {
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
