package scenario

import (
	"math"
	"math/rand"

	"github.com/san-kum/physim/internal/config"
	"github.com/san-kum/physim/internal/ecs"
	"github.com/san-kum/physim/internal/engine"
)

// ParticleCloud scatters cfg.Bodies unit-scale particles in a sphere with
// small random velocities under self-gravity (G from config, default 1).
// Deterministic for a fixed seed.
func ParticleCloud(cfg *config.Config) (*engine.Engine, error) {
	eng, err := newEngine(cfg)
	if err != nil {
		return nil, err
	}
	w := eng.World()

	rng := rand.New(rand.NewSource(cfg.Seed))
	n := cfg.Bodies
	if n <= 0 {
		n = 100
	}
	for i := 0; i < n; i++ {
		// Uniform direction, cube-root radial density for a uniform ball.
		theta := rng.Float64() * 2 * math.Pi
		cosPhi := rng.Float64()*2 - 1
		sinPhi := math.Sqrt(1 - cosPhi*cosPhi)
		r := 10.0 * math.Cbrt(rng.Float64())

		pos := ecs.Vec3{
			X: r * sinPhi * math.Cos(theta),
			Y: r * sinPhi * math.Sin(theta),
			Z: r * cosPhi,
		}
		vel := ecs.Vec3{
			X: rng.NormFloat64() * 0.1,
			Y: rng.NormFloat64() * 0.1,
			Z: rng.NormFloat64() * 0.1,
		}
		w.SpawnBody(pos, vel, ecs.MustMass(1.0))
	}

	g := cfg.Gravity.G
	if g == 0 {
		g = 1.0
	}
	softening := cfg.Gravity.Softening
	if softening == 0 {
		// Close encounters at unit scale produce unbounded forces without
		// softening; default to a small epsilon for this scenario.
		softening = 0.05
	}
	if _, err := eng.UseGravity(g, softening); err != nil {
		return nil, err
	}
	if err := eng.InitializePlugins(); err != nil {
		return nil, err
	}
	return eng, nil
}
