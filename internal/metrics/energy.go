// Package metrics computes energy diagnostics over the world's component
// stores. The drift tracker is the post-process consumer the engine's
// observer hook was made for.
package metrics

import (
	"math"

	"github.com/san-kum/physim/internal/ecs"
)

// Kinetic returns the total kinetic energy 0.5*m*v^2 of the entities.
// Immovable bodies contribute zero.
func Kinetic(w *ecs.World, entities []ecs.Entity) float64 {
	total := 0.0
	for _, e := range entities {
		m, okM := w.Masses.Get(e)
		v, okV := w.Velocities.Get(e)
		if !okM || !okV || m.Immovable() {
			continue
		}
		total += 0.5 * m.Value * v.Dot(v)
	}
	return total
}

// GravitationalPotential returns the pairwise potential
// -G*m1*m2/sqrt(r^2+eps^2), counted once per pair.
func GravitationalPotential(w *ecs.World, entities []ecs.Entity, g, softening float64) float64 {
	eps2 := softening * softening
	total := 0.0
	for i := 0; i < len(entities); i++ {
		mi, okM := w.Masses.Get(entities[i])
		pi, okP := w.Positions.Get(entities[i])
		if !okM || !okP {
			continue
		}
		for j := i + 1; j < len(entities); j++ {
			mj, okM := w.Masses.Get(entities[j])
			pj, okP := w.Positions.Get(entities[j])
			if !okM || !okP {
				continue
			}
			d := pj.Sub(pi)
			r := math.Sqrt(d.Dot(d) + eps2)
			if r == 0 {
				continue
			}
			total -= g * mi.Value * mj.Value / r
		}
	}
	return total
}

// SpringPotential returns 0.5*k*(|p-anchor|-rest)^2 summed over entities.
func SpringPotential(w *ecs.World, entities []ecs.Entity, k, rest float64, anchor ecs.Vec3) float64 {
	total := 0.0
	for _, e := range entities {
		p, ok := w.Positions.Get(e)
		if !ok {
			continue
		}
		x := p.Sub(anchor).Norm() - rest
		total += 0.5 * k * x * x
	}
	return total
}

// DriftTracker records the maximum relative deviation of an observed energy
// from its first observation.
type DriftTracker struct {
	initial  float64
	current  float64
	maxDrift float64
	samples  int
}

func NewDriftTracker() *DriftTracker { return &DriftTracker{} }

func (d *DriftTracker) Observe(energy float64) {
	if d.samples == 0 {
		d.initial = energy
	}
	d.current = energy
	d.samples++
	if d.initial != 0 {
		drift := math.Abs(energy-d.initial) / math.Abs(d.initial)
		if drift > d.maxDrift {
			d.maxDrift = drift
		}
	}
}

// MaxDrift returns max |E - E0| / |E0| over all observations.
func (d *DriftTracker) MaxDrift() float64 { return d.maxDrift }

func (d *DriftTracker) Initial() float64 { return d.initial }
func (d *DriftTracker) Current() float64 { return d.current }

func (d *DriftTracker) Reset() { *d = DriftTracker{} }
