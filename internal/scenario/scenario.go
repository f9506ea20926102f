// Package scenario builds ready-to-run engines for the bundled example
// systems. Scenarios are external consumers of the core: they only touch
// its public surface.
package scenario

import (
	"fmt"
	"sort"

	"github.com/san-kum/physim/internal/config"
	"github.com/san-kum/physim/internal/ecs"
	"github.com/san-kum/physim/internal/engine"
	"github.com/san-kum/physim/internal/forces"
	"github.com/san-kum/physim/internal/integrators"
	"github.com/san-kum/physim/internal/pool"
)

// Builder constructs an engine from configuration.
type Builder func(cfg *config.Config) (*engine.Engine, error)

var builders = map[string]Builder{
	"oscillator": Oscillator,
	"solar":      SolarSystem,
	"cloud":      ParticleCloud,
}

// Get returns the named scenario builder.
func Get(name string) (Builder, error) {
	b, ok := builders[name]
	if !ok {
		return nil, fmt.Errorf("scenario: unknown scenario %q", name)
	}
	return b, nil
}

// Names lists the available scenarios.
func Names() []string {
	out := make([]string, 0, len(builders))
	for name := range builders {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// NewIntegrator builds the named integrator with the configured pools.
func NewIntegrator(cfg *config.Config) (integrators.Integrator, error) {
	switch cfg.Integrator {
	case "verlet", "":
		return integrators.NewVerlet(cfg.Dt)
	case "rk4":
		return integrators.NewRK4WithPool(cfg.Dt, pool.Config{
			InitialCapacity: cfg.Pool.InitialCapacity,
			MaxPoolSize:     cfg.Pool.MaxPoolSize,
			GrowthFactor:    cfg.Pool.GrowthFactor,
			LogResize:       cfg.Pool.LogResize,
		})
	default:
		return nil, fmt.Errorf("scenario: unknown integrator %q", cfg.Integrator)
	}
}

func newEngine(cfg *config.Config) (*engine.Engine, error) {
	integ, err := NewIntegrator(cfg)
	if err != nil {
		return nil, err
	}
	reg := forces.NewRegistryWithConfig(forces.Config{
		MaxForceMagnitude:       cfg.Forces.MaxForceMagnitude,
		MaxExpectedForce:        cfg.Forces.MaxExpectedForce,
		WarnOnHighForces:        cfg.Forces.WarnOnHighForces,
		WarnOnMissingComponents: cfg.Forces.WarnOnMissingComponents,
	})
	opts := engine.DefaultOptions()
	opts.WarnOnMissingComponents = cfg.Forces.WarnOnMissingComponents
	opts.Parallel = !cfg.Sequential
	return engine.New(ecs.NewWorld(), reg, integ, opts), nil
}

// Oscillator is a unit-mass body on a k=100 spring, displaced to x=1.
// Period T = 2*pi/sqrt(k/m), about 0.628; dt is taken from cfg.Dt as is.
func Oscillator(cfg *config.Config) (*engine.Engine, error) {
	eng, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}
	w := eng.World()
	w.SpawnBody(ecs.Vec3{X: 1}, ecs.Vec3{}, ecs.MustMass(1.0))
	eng.Forces().RegisterProvider(forces.NewSpring(100.0, 0, ecs.Vec3{}, w.Positions))
	return eng, nil
}
