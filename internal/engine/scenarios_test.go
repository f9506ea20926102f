package engine_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/physim/internal/config"
	"github.com/san-kum/physim/internal/ecs"
	"github.com/san-kum/physim/internal/engine"
	"github.com/san-kum/physim/internal/forces"
	"github.com/san-kum/physim/internal/integrators"
	"github.com/san-kum/physim/internal/metrics"
	"github.com/san-kum/physim/internal/scenario"
)

func sequentialOptions() engine.Options {
	opts := engine.DefaultOptions()
	opts.Parallel = false
	opts.WarnOnMissingComponents = false
	return opts
}

func newVerletEngine(dt float64) *engine.Engine {
	integ, err := integrators.NewVerlet(dt)
	Expect(err).NotTo(HaveOccurred())
	return engine.New(ecs.NewWorld(), forces.NewRegistry(), integ, sequentialOptions())
}

func newRK4Engine(dt float64) *engine.Engine {
	integ, err := integrators.NewRK4(dt)
	Expect(err).NotTo(HaveOccurred())
	return engine.New(ecs.NewWorld(), forces.NewRegistry(), integ, sequentialOptions())
}

var _ = Describe("end-to-end scenarios", func() {
	Describe("free particle at constant velocity", func() {
		It("travels exactly v*t with unchanged energy", func() {
			eng := newVerletEngine(0.01)
			e := eng.World().SpawnBody(ecs.Vec3{}, ecs.Vec3{X: 1}, ecs.MustMass(1))

			Expect(eng.Run(context.Background(), 1000)).To(Succeed())

			p, _ := eng.World().Positions.Get(e)
			Expect(p.X).To(BeNumerically("~", 10.0, 1e-9))
			Expect(p.Y).To(BeZero())
			Expect(p.Z).To(BeZero())

			ke := metrics.Kinetic(eng.World(), eng.World().Entities())
			Expect(ke).To(BeNumerically("~", 0.5, 1e-12))
		})
	})

	Describe("free fall under constant acceleration", func() {
		It("matches the analytic parabola", func() {
			eng := newVerletEngine(0.01)
			w := eng.World()
			e := w.SpawnBody(ecs.Vec3{}, ecs.Vec3{}, ecs.MustMass(1))
			eng.Forces().RegisterProvider(forces.NewUniformGravity(ecs.Vec3{Y: -9.81}, w.Masses))

			Expect(eng.Run(context.Background(), 100)).To(Succeed())

			p, _ := w.Positions.Get(e)
			Expect(p.Y).To(BeNumerically("~", -4.905, 1e-6))
			v, _ := w.Velocities.Get(e)
			Expect(v.Y).To(BeNumerically("~", -9.81, 1e-6))
		})
	})

	Describe("harmonic oscillator", func() {
		const k = 100.0
		omega := math.Sqrt(k)
		period := 2 * math.Pi / omega

		It("returns to its start with bounded energy variation", func() {
			cfg := config.DefaultConfig()
			cfg.Dt = period / 100
			cfg.Sequential = true
			eng, err := scenario.Oscillator(cfg)
			Expect(err).NotTo(HaveOccurred())

			w := eng.World()
			ents := w.Entities()
			drift := metrics.NewDriftTracker()
			eng.AddObserver(func(step int, t float64, w *ecs.World) {
				ke := metrics.Kinetic(w, ents)
				pe := metrics.SpringPotential(w, ents, k, 0, ecs.Vec3{})
				drift.Observe(ke + pe)
			})

			Expect(eng.Run(context.Background(), 100)).To(Succeed())

			p, _ := w.Positions.Get(ents[0])
			Expect(p.X).To(BeNumerically("~", 1.0, 1e-3))
			Expect(drift.MaxDrift()).To(BeNumerically("<", 1e-3))
		})
	})

	Describe("two-body circular orbit", func() {
		It("keeps the light body on its circle for one period", func() {
			// G=1, central mass 1, test mass 1e-6 at r=1 with v=sqrt(G*M/r).
			period := 2 * math.Pi
			steps := 2000
			eng := newVerletEngine(period / float64(steps))
			w := eng.World()

			heavy := w.SpawnBody(ecs.Vec3{}, ecs.Vec3{}, ecs.MustMass(1))
			light := w.SpawnBody(ecs.Vec3{X: 1}, ecs.Vec3{Y: 1}, ecs.MustMass(1e-6))

			_, err := eng.UseGravity(1.0, 0)
			Expect(err).NotTo(HaveOccurred())
			Expect(eng.InitializePlugins()).To(Succeed())

			drift := metrics.NewDriftTracker()
			eng.AddObserver(func(step int, t float64, w *ecs.World) {
				ents := w.Entities()
				e := metrics.Kinetic(w, ents) + metrics.GravitationalPotential(w, ents, 1.0, 0)
				drift.Observe(e)
			})

			Expect(eng.Run(context.Background(), steps)).To(Succeed())

			pH, _ := w.Positions.Get(heavy)
			pL, _ := w.Positions.Get(light)
			radius := pL.Sub(pH).Norm()
			Expect(radius).To(BeNumerically("~", 1.0, 0.01))
			Expect(drift.MaxDrift()).To(BeNumerically("<", 1e-4))
		})
	})

	Describe("RK4 versus Verlet", func() {
		const k = 100.0
		omega := math.Sqrt(k)
		period := 2 * math.Pi / omega
		dt := period / 50

		addOscillator := func(eng *engine.Engine) ecs.Entity {
			w := eng.World()
			e := w.SpawnBody(ecs.Vec3{X: 1}, ecs.Vec3{}, ecs.MustMass(1))
			eng.Forces().RegisterProvider(forces.NewSpring(k, 0, ecs.Vec3{}, w.Positions))
			return e
		}

		It("RK4 is the more accurate method at a coarse timestep", func() {
			rk := newRK4Engine(dt)
			eRK := addOscillator(rk)
			Expect(rk.Run(context.Background(), 50)).To(Succeed())
			pRK, _ := rk.World().Positions.Get(eRK)
			Expect(math.Abs(pRK.X - 1.0)).To(BeNumerically("<", 1e-4))

			vl := newVerletEngine(dt)
			eVL := addOscillator(vl)
			Expect(vl.Run(context.Background(), 50)).To(Succeed())
			pVL, _ := vl.World().Positions.Get(eVL)
			Expect(math.Abs(pVL.X - 1.0)).To(BeNumerically("<", 1e-2))
		})

		It("performs 4N force evaluations per step against Verlet's 2N", func() {
			const n = 3
			build := func(eng *engine.Engine) {
				w := eng.World()
				for i := 0; i < n; i++ {
					w.SpawnBody(ecs.Vec3{X: float64(i)}, ecs.Vec3{}, ecs.MustMass(1))
				}
				eng.Forces().RegisterProvider(forces.NewUniformGravity(ecs.Vec3{Y: -9.81}, w.Masses))
			}

			vl := newVerletEngine(dt)
			build(vl)
			vl.Forces().ResetEvaluations()
			Expect(vl.Step()).To(Succeed())
			Expect(vl.Forces().Evaluations()).To(Equal(2 * n))

			rk := newRK4Engine(dt)
			build(rk)
			rk.Forces().ResetEvaluations()
			Expect(rk.Step()).To(Succeed())
			Expect(rk.Forces().Evaluations()).To(Equal(4 * n))
		})
	})
})
