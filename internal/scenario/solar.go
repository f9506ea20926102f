package scenario

import (
	"github.com/san-kum/physim/internal/config"
	"github.com/san-kum/physim/internal/ecs"
	"github.com/san-kum/physim/internal/engine"
	"github.com/san-kum/physim/internal/plugin"
)

// AU is the astronomical unit in meters.
const AU = 1.495978707e11

// Day in seconds.
const Day = 86400.0

type body struct {
	name     string
	mass     float64 // kg
	distance float64 // m, semi-major axis
	velocity float64 // m/s, circular orbit approximation
}

// Inner solar system, NASA planetary fact sheet values.
var solarBodies = []body{
	{"sun", 1.989e30, 0, 0},
	{"mercury", 3.301e23, 0.387 * AU, 47870},
	{"venus", 4.867e24, 0.723 * AU, 35020},
	{"earth", 5.972e24, 1.0 * AU, 29780},
	{"mars", 6.417e23, 1.524 * AU, 24070},
}

// SolarSystem builds the inner solar system under SI gravity. Bodies start
// on the x axis with tangential velocities for near-circular orbits. The
// configured dt is in seconds; one day is a reasonable default.
func SolarSystem(cfg *config.Config) (*engine.Engine, error) {
	scaled := *cfg
	if scaled.Forces.MaxForceMagnitude < 1e30 {
		// Sun-planet forces are ~1e22 N; keep the clamp out of the way.
		scaled.Forces.MaxForceMagnitude = 1e30
		scaled.Forces.MaxExpectedForce = 1e30
	}
	eng, err := newEngine(&scaled)
	if err != nil {
		return nil, err
	}
	w := eng.World()
	for _, b := range solarBodies {
		w.SpawnBody(
			ecs.Vec3{X: b.distance},
			ecs.Vec3{Y: b.velocity},
			ecs.MustMass(b.mass),
		)
	}

	g := cfg.Gravity.G
	if g == 0 || g == 1.0 {
		g = plugin.GravitationalConstant
	}
	if _, err := eng.UseGravity(g, cfg.Gravity.Softening); err != nil {
		return nil, err
	}
	if err := eng.InitializePlugins(); err != nil {
		return nil, err
	}
	return eng, nil
}
