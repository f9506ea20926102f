package forces

import (
	"sync"

	"github.com/san-kum/physim/internal/ecs"
)

// Config controls how the registry treats suspicious contributions.
type Config struct {
	// MaxForceMagnitude is the hard clamp for an entity's accumulated total.
	MaxForceMagnitude float64
	// MaxExpectedForce is the advisory threshold above which a warning is
	// emitted when WarnOnHighForces is set. Totals are not modified by it.
	MaxExpectedForce float64
	WarnOnHighForces bool
	// WarnOnMissingComponents also covers invalid provider contributions.
	WarnOnMissingComponents bool
}

func DefaultConfig() Config {
	return Config{
		MaxForceMagnitude:       1e10,
		MaxExpectedForce:        1e10,
		WarnOnHighForces:        true,
		WarnOnMissingComponents: true,
	}
}

// Registry holds the registered providers and the per-entity accumulated
// totals. Registering providers is additive: registering the same providers
// again every step without a Clear multiplies forces across steps. The
// engine registers providers once and clears the totals (ClearForces) at the
// top of every force stage, so each step's totals are rebuilt from scratch.
//
// Accumulation may run concurrently across entities; each entity is written
// by at most one worker at a time and the totals map itself is guarded.
type Registry struct {
	providers []Provider
	cfg       Config

	mu     sync.Mutex
	totals map[ecs.Entity]Force
	evals  int
}

func NewRegistry() *Registry {
	return NewRegistryWithConfig(DefaultConfig())
}

func NewRegistryWithConfig(cfg Config) *Registry {
	return &Registry{cfg: cfg, totals: make(map[ecs.Entity]Force)}
}

func (r *Registry) Config() Config { return r.cfg }

// RegisterProvider adds a provider; it stays registered until Clear.
func (r *Registry) RegisterProvider(p Provider) {
	r.providers = append(r.providers, p)
}

func (r *Registry) ProviderCount() int { return len(r.providers) }

// ClearForces drops the accumulated totals but keeps the providers.
func (r *Registry) ClearForces() {
	r.mu.Lock()
	clear(r.totals)
	r.mu.Unlock()
}

// Clear drops both providers and totals, resetting the registry for a fresh
// step.
func (r *Registry) Clear() {
	r.providers = r.providers[:0]
	r.ClearForces()
}

// AccumulateForEntity zeroes the entity's total and sums the finite
// contributions of every registered provider into it. Non-finite
// contributions are rejected with a warning; totals above MaxForceMagnitude
// are clamped; totals above MaxExpectedForce are warned about. Returns
// whether any provider applied.
func (r *Registry) AccumulateForEntity(e ecs.Entity) bool {
	var total Force
	applied := false

	for _, p := range r.providers {
		f, ok := p.ComputeForce(e, r)
		if !ok {
			continue
		}
		if !f.Valid() {
			if r.cfg.WarnOnMissingComponents {
				Warnf("forces: provider %q produced a non-finite force for %v, rejected", p.Name(), e)
			}
			continue
		}
		total = total.Add(f)
		applied = true
	}

	r.mu.Lock()
	r.evals++
	if !applied {
		delete(r.totals, e)
		r.mu.Unlock()
		return false
	}
	mag := total.Norm()
	if r.cfg.WarnOnHighForces && mag > r.cfg.MaxExpectedForce {
		Warnf("forces: total magnitude %.3e exceeds expected %.3e for %v", mag, r.cfg.MaxExpectedForce, e)
	}
	if mag > r.cfg.MaxForceMagnitude {
		total = total.Scale(r.cfg.MaxForceMagnitude / mag)
	}
	r.totals[e] = total
	r.mu.Unlock()
	return true
}

// ForceFor returns the accumulated total for an entity.
func (r *Registry) ForceFor(e ecs.Entity) (Force, bool) {
	r.mu.Lock()
	f, ok := r.totals[e]
	r.mu.Unlock()
	return f, ok
}

// Evaluations counts accumulation passes since the last reset, one per
// (entity, sweep). Verlet performs two sweeps per full step, RK4 four.
func (r *Registry) Evaluations() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.evals
}

func (r *Registry) ResetEvaluations() {
	r.mu.Lock()
	r.evals = 0
	r.mu.Unlock()
}

// ApplyAccelerations translates accumulated forces into accelerations via
// a = F/m. Immovable bodies keep zero acceleration; entities with no
// accumulated force are skipped, and entities missing a mass or an
// acceleration slot are skipped with an optional warning.
// Calling it twice on the same inputs writes the same accelerations.
// Returns the number of entities updated.
func ApplyAccelerations(entities []ecs.Entity, reg *Registry, masses ecs.Store[ecs.Mass], accels ecs.Store[ecs.Vec3], warn bool) int {
	updated := 0
	for _, e := range entities {
		f, ok := reg.ForceFor(e)
		if !ok {
			continue
		}
		m, ok := masses.Get(e)
		if !ok {
			if warn {
				Warnf("forces: %v has a force but no mass, skipped", e)
			}
			continue
		}
		if m.Immovable() {
			continue
		}
		a := f.Scale(m.Inverse())
		if !a.Valid() {
			if warn {
				Warnf("forces: computed non-finite acceleration for %v, skipped", e)
			}
			continue
		}
		p := accels.GetMut(e)
		if p == nil {
			if warn {
				Warnf("forces: %v has a force but no acceleration slot, skipped", e)
			}
			continue
		}
		*p = a
		updated++
	}
	return updated
}
