package config

import (
	"errors"
	"sort"
)

var ErrUnknownPreset = errors.New("config: unknown preset")

// Presets tweak the default config.
var Presets = map[string]func(*Config){
	"calm": func(c *Config) {
		c.Integrator.Amplitude = 6
		c.Integrator.Spin = 0.015
		c.Integrator.RepelStrength = 15
	},
	"storm": func(c *Config) {
		c.Integrator.Amplitude = 24
		c.Integrator.Spin = 0.12
		c.Integrator.RepelRadius = 160
		c.Integrator.RepelStrength = 60
		c.Integrator.SpringBlend = 0.015
	},
	"mobile": func(c *Config) {
		c.Viewport = ViewportConfig{Width: 390, Height: 844, FinePointer: false}
	},
	"core": func(c *Config) {
		c.Variant = "mesh"
		c.MeshDetail = 3
	},
}

// GetPreset returns the default config with the named preset applied.
func GetPreset(name string) (*Config, error) {
	apply, ok := Presets[name]
	if !ok {
		return nil, ErrUnknownPreset
	}
	cfg := DefaultConfig()
	apply(cfg)
	return cfg, nil
}

func ListPresets() []string {
	names := make([]string, 0, len(Presets))
	for name := range Presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
