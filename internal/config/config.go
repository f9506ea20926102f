// Package config loads and saves simulation configuration as YAML. All
// options carry documented defaults; a zero file is a valid configuration.
package config

import (
	"fmt"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	DefaultDt       = 0.01
	DefaultSteps    = 1000
	DefaultSoftening = 0.0
)

// Config is the full simulation configuration.
type Config struct {
	Scenario   string  `yaml:"scenario"`
	Integrator string  `yaml:"integrator"`
	Dt         float64 `yaml:"dt"`
	Steps      int     `yaml:"steps"`
	Seed       int64   `yaml:"seed"`
	Bodies     int     `yaml:"bodies"`
	Sequential bool    `yaml:"sequential"`

	Gravity GravityConfig `yaml:"gravity"`
	Forces  ForcesConfig  `yaml:"forces"`
	Pool    PoolConfig    `yaml:"pool"`

	// Backend forces a bulk-primitive backend ("scalar" for the reference
	// path); empty selects the widest available.
	Backend string `yaml:"backend"`
}

// GravityConfig configures the N-body gravity plugin.
type GravityConfig struct {
	// G is the gravitational constant. Zero selects the scenario's own
	// constant: 1 for the particle cloud, SI G for the solar system.
	G float64 `yaml:"g"`
	// Softening replaces 1/r^2 with 1/(r^2+eps^2).
	Softening float64 `yaml:"softening"`
}

// ForcesConfig mirrors the force registry's thresholds.
type ForcesConfig struct {
	MaxExpectedForce        float64 `yaml:"max_expected_force"`
	MaxForceMagnitude       float64 `yaml:"max_force_magnitude"`
	WarnOnHighForces        bool    `yaml:"warn_on_high_forces"`
	WarnOnMissingComponents bool    `yaml:"warn_on_missing_components"`
}

// PoolConfig sizes the integrator staging pools.
type PoolConfig struct {
	InitialCapacity int     `yaml:"initial_capacity"`
	MaxPoolSize     int     `yaml:"max_pool_size"`
	GrowthFactor    float64 `yaml:"growth_factor"`
	LogResize       bool    `yaml:"log_resize"`
}

func DefaultConfig() *Config {
	return &Config{
		Scenario:   "oscillator",
		Integrator: "verlet",
		Dt:         DefaultDt,
		Steps:      DefaultSteps,
		Bodies:     100,
		Gravity: GravityConfig{
			G:         1.0,
			Softening: DefaultSoftening,
		},
		Forces: ForcesConfig{
			MaxExpectedForce:        1e10,
			MaxForceMagnitude:       1e10,
			WarnOnHighForces:        true,
			WarnOnMissingComponents: true,
		},
		Pool: PoolConfig{
			InitialCapacity: 64,
			MaxPoolSize:     8,
			GrowthFactor:    2.0,
		},
	}
}

// Load reads a YAML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate rejects configurations the engine cannot construct from.
func (c *Config) Validate() error {
	if c.Dt <= 0 || math.IsNaN(c.Dt) || math.IsInf(c.Dt, 0) {
		return fmt.Errorf("config: dt must be positive and finite, got %v", c.Dt)
	}
	if c.Steps < 0 {
		return fmt.Errorf("config: steps must be non-negative, got %d", c.Steps)
	}
	if c.Gravity.G < 0 || c.Gravity.Softening < 0 {
		return fmt.Errorf("config: gravity parameters must be non-negative")
	}
	if c.Pool.MaxPoolSize <= 0 || c.Pool.GrowthFactor < 1.0 {
		return fmt.Errorf("config: invalid pool sizing")
	}
	return nil
}
