// Package forces implements the per-step force accumulation pipeline:
// pluggable providers, a registry of per-entity accumulated totals, and the
// F=ma translation into accelerations.
package forces

import (
	"log"

	"github.com/san-kum/physim/internal/ecs"
)

// Warnf receives non-fatal diagnostics (invalid contributions, skipped
// entities, high-magnitude totals). Embedders may replace or silence it.
var Warnf = log.Printf

// Force is a 3-vector of Newtons.
type Force = ecs.Vec3

// Provider computes the force acting on one entity, or reports that it does
// not apply. Providers read entity data through stores captured at
// construction, must not mutate shared state, and must be safe for
// concurrent invocation.
type Provider interface {
	ComputeForce(e ecs.Entity, reg *Registry) (Force, bool)
	Name() string
}

// ProviderFunc adapts a function to the Provider interface.
type ProviderFunc struct {
	ID string
	Fn func(e ecs.Entity, reg *Registry) (Force, bool)
}

func (p ProviderFunc) ComputeForce(e ecs.Entity, reg *Registry) (Force, bool) {
	return p.Fn(e, reg)
}

func (p ProviderFunc) Name() string { return p.ID }
