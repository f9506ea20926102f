// Package plugin manages externally contributed extensions: object
// factories, force providers, and constraint systems. The registry resolves
// dependencies into a topological load order and gates registration on
// semantic API version compatibility.
package plugin

import (
	"github.com/san-kum/physim/internal/ecs"
)

// APIVersion is the engine's plugin API version. A plugin's required version
// is compatible when its major equals the engine major and its minor is at
// most the engine minor; patch is ignored.
const APIVersion = "0.1.0"

// Plugin is the lifecycle contract every extension implements.
type Plugin interface {
	// Name must be unique across registered plugins.
	Name() string
	// Version is the plugin's own version.
	Version() string
	// APIVersion is the core API version the plugin was built against.
	APIVersion() string
	// Dependencies lists plugin names that must initialize first.
	Dependencies() []string

	Initialize(ctx *Context) error
	Update(ctx *Context) error
	Shutdown() error
}

// Base provides default lifecycle and dependency implementations so plugins
// only declare what they need.
type Base struct{}

func (Base) APIVersion() string          { return APIVersion }
func (Base) Dependencies() []string      { return nil }
func (Base) Initialize(*Context) error   { return nil }
func (Base) Update(*Context) error       { return nil }
func (Base) Shutdown() error             { return nil }

// Context gives plugins scoped access to engine internals: an immutable view
// of the world, the active integrator, the timestep, and the worker count
// available for parallel work.
type Context struct {
	world          *ecs.World
	integratorName string
	timestep       float64
	workers        int
}

func NewContext(w *ecs.World, integratorName string, timestep float64, workers int) *Context {
	if workers < 1 {
		workers = 1
	}
	return &Context{world: w, integratorName: integratorName, timestep: timestep, workers: workers}
}

func (c *Context) World() *ecs.World      { return c.world }
func (c *Context) IntegratorName() string { return c.integratorName }
func (c *Context) Timestep() float64      { return c.timestep }
func (c *Context) Workers() int           { return c.workers }

// ObjectFactory plugins spawn pre-configured entities.
type ObjectFactory interface {
	Plugin
	CreateObject(w *ecs.World) (ecs.Entity, error)
}

// Constraint corrects positions or velocities during the constraints stage.
// Lower priority runs first.
type Constraint interface {
	Apply(w *ecs.World) error
	Priority() int
}
