// Package engine wires the world, force registry, integrator, plugins and
// constraints into the five-stage step pipeline:
// force accumulation -> acceleration -> integration -> constraints ->
// post-process, with a barrier between adjacent stages.
package engine

import (
	"context"
	"runtime"
	"sort"

	"github.com/san-kum/physim/internal/ecs"
	"github.com/san-kum/physim/internal/forces"
	"github.com/san-kum/physim/internal/integrators"
	"github.com/san-kum/physim/internal/plugin"
	"github.com/san-kum/physim/internal/sched"
)

// Options tunes pipeline behavior.
type Options struct {
	// WarnOnMissingComponents enables per-entity skip warnings.
	WarnOnMissingComponents bool
	// Parallel runs stages with intra-stage parallelism; sequential mode is
	// bit-exact reproducible, parallel mode may differ in the last bit where
	// reductions reorder.
	Parallel bool
	// MinParallelChunk is the smallest per-worker slice of entities worth
	// spawning a goroutine for.
	MinParallelChunk int
}

func DefaultOptions() Options {
	return Options{WarnOnMissingComponents: true, MinParallelChunk: 64}
}

// Observer receives post-process notifications once per step.
type Observer func(step int, time float64, w *ecs.World)

// Engine owns one simulation and advances it step by step. A step is an
// external synchronous call; there is no mid-step cancellation.
type Engine struct {
	world      *ecs.World
	reg        *forces.Registry
	integrator integrators.Integrator
	scheduler  *sched.Scheduler
	plugins    *plugin.Registry

	constraints []plugin.Constraint
	observers   []Observer
	opts        Options

	// entities is the per-step snapshot shared by all stages.
	entities []ecs.Entity
	step     int
	time     float64
}

func New(w *ecs.World, reg *forces.Registry, integ integrators.Integrator, opts Options) *Engine {
	e := &Engine{
		world:      w,
		reg:        reg,
		integrator: integ,
		scheduler:  sched.NewScheduler(),
		plugins:    plugin.NewRegistry(),
		opts:       opts,
	}
	e.scheduler.Add(sched.SystemFunc{ID: "forces", Fn: e.runForceStage}, sched.StageForceAccumulation)
	e.scheduler.Add(sched.SystemFunc{ID: "accelerations", Fn: e.runAccelerationStage}, sched.StageAcceleration)
	e.scheduler.Add(sched.SystemFunc{ID: "integration", Fn: e.runIntegrationStage}, sched.StageIntegration)
	e.scheduler.Add(sched.SystemFunc{ID: "constraints", Fn: e.runConstraintStage}, sched.StageConstraints)
	e.scheduler.Add(sched.SystemFunc{ID: "post-process", Fn: e.runPostStage}, sched.StagePostProcess)
	return e
}

func (e *Engine) World() *ecs.World             { return e.world }
func (e *Engine) Forces() *forces.Registry      { return e.reg }
func (e *Engine) Integrator() integrators.Integrator { return e.integrator }
func (e *Engine) Plugins() *plugin.Registry     { return e.plugins }
func (e *Engine) Time() float64                 { return e.time }
func (e *Engine) Steps() int                    { return e.step }

// AddConstraint registers a constraint for the constraints stage.
func (e *Engine) AddConstraint(c plugin.Constraint) {
	e.constraints = append(e.constraints, c)
	sort.SliceStable(e.constraints, func(i, j int) bool {
		return e.constraints[i].Priority() < e.constraints[j].Priority()
	})
}

// AddObserver registers a post-process callback.
func (e *Engine) AddObserver(o Observer) {
	e.observers = append(e.observers, o)
}

// PluginContext builds the context handed to plugin lifecycle calls.
func (e *Engine) PluginContext() *plugin.Context {
	workers := 1
	if e.opts.Parallel {
		workers = runtime.GOMAXPROCS(0)
	}
	return plugin.NewContext(e.world, e.integrator.Name(), e.integrator.Timestep(), workers)
}

// InitializePlugins resolves and initializes the registered plugin set.
// Plugins that are force providers must be registered with the force
// registry separately; the gravity plugin's helper does both.
func (e *Engine) InitializePlugins() error {
	return e.plugins.InitializeAll(e.PluginContext())
}

// UseGravity registers the built-in N-body gravity plugin as both a plugin
// and a force provider.
func (e *Engine) UseGravity(g, softening float64) (*plugin.Gravity, error) {
	grav, err := plugin.NewGravity(g)
	if err != nil {
		return nil, err
	}
	if err := grav.SetSoftening(softening); err != nil {
		return nil, err
	}
	if err := e.plugins.Register(grav); err != nil {
		return nil, err
	}
	e.reg.RegisterProvider(grav)
	return grav, nil
}

// Step advances the simulation by one timestep through all five stages.
func (e *Engine) Step() error {
	e.entities = e.world.Entities()
	var err error
	if e.opts.Parallel {
		err = e.scheduler.RunParallel(e.world)
	} else {
		err = e.scheduler.RunSequential(e.world)
	}
	if err != nil {
		return err
	}
	e.step++
	e.time += e.integrator.Timestep()
	return nil
}

// Run advances the simulation for the given number of steps. Cancellation is
// checked between steps only; a long step runs to completion.
func (e *Engine) Run(ctx context.Context, steps int) error {
	for i := 0; i < steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if err := e.Step(); err != nil {
			return err
		}
	}
	return nil
}

// runForceStage rebuilds the per-entity totals from scratch. The registry's
// provider set persists across steps; the totals never do.
func (e *Engine) runForceStage(*ecs.World) error {
	e.reg.ClearForces()
	ents := e.entities
	if e.opts.Parallel {
		sched.ParallelFor(len(ents), e.opts.MinParallelChunk, func(start, end int) {
			for _, ent := range ents[start:end] {
				e.reg.AccumulateForEntity(ent)
			}
		})
		return nil
	}
	for _, ent := range ents {
		e.reg.AccumulateForEntity(ent)
	}
	return nil
}

func (e *Engine) runAccelerationStage(*ecs.World) error {
	forces.ApplyAccelerations(e.entities, e.reg, e.world.Masses, e.world.Accelerations, e.opts.WarnOnMissingComponents)
	return nil
}

func (e *Engine) runIntegrationStage(*ecs.World) error {
	e.integrator.Integrate(e.entities, e.world, e.reg, e.opts.WarnOnMissingComponents)
	return nil
}

func (e *Engine) runConstraintStage(w *ecs.World) error {
	for _, c := range e.constraints {
		if err := c.Apply(w); err != nil {
			return err
		}
	}
	return nil
}

func (e *Engine) runPostStage(w *ecs.World) error {
	if e.plugins.Initialized() {
		if err := e.plugins.UpdateAll(e.PluginContext()); err != nil {
			return err
		}
	}
	for _, o := range e.observers {
		o(e.step, e.time, w)
	}
	return nil
}
