package integrators

import (
	"github.com/san-kum/physim/internal/ecs"
	"github.com/san-kum/physim/internal/forces"
)

// Verlet is the velocity Verlet integrator: symplectic, time-reversible,
// second order, with bounded (non-secular) energy error for forces derived
// from a potential.
//
// Per step it drifts positions with the current accelerations, rebuilds the
// force registry at the drifted positions, and kicks velocities with the
// average of old and new accelerations. One force sweep happens here; the
// other is the pipeline's own force stage, for two per full step.
type Verlet struct {
	dt     float64
	oldAcc map[ecs.Entity]ecs.Vec3
}

func NewVerlet(dt float64) (*Verlet, error) {
	if err := checkTimestep(dt); err != nil {
		return nil, err
	}
	return &Verlet{dt: dt, oldAcc: make(map[ecs.Entity]ecs.Vec3)}, nil
}

func (v *Verlet) Name() string      { return "verlet" }
func (v *Verlet) Timestep() float64 { return v.dt }

func (v *Verlet) SetTimestep(dt float64) error {
	if err := checkTimestep(dt); err != nil {
		return err
	}
	v.dt = dt
	return nil
}

func (v *Verlet) ValidateTimestep() error { return validateTimestep(v.dt) }

func (v *Verlet) Integrate(entities []ecs.Entity, w *ecs.World, reg *forces.Registry, warn bool) int {
	dt := v.dt
	halfDtSq := 0.5 * dt * dt
	clear(v.oldAcc)

	// Drift: p' = p + v*dt + 0.5*a0*dt^2. Missing acceleration reads as
	// zero so force-free bodies stream exactly.
	for _, e := range entities {
		if !movable(e, w.Masses) {
			continue
		}
		pos := w.Positions.GetMut(e)
		if pos == nil {
			if warn {
				forces.Warnf("integrators: %v missing position, skipped", e)
			}
			continue
		}
		vel, ok := w.Velocities.Get(e)
		if !ok {
			if warn {
				forces.Warnf("integrators: %v missing velocity, skipped", e)
			}
			continue
		}
		a0, _ := w.Accelerations.Get(e)
		v.oldAcc[e] = a0
		*pos = pos.Add(vel.Scale(dt)).Add(a0.Scale(halfDtSq))
	}

	// Recompute forces at the drifted positions and translate to a1.
	reg.ClearForces()
	for _, e := range entities {
		reg.AccumulateForEntity(e)
	}
	forces.ApplyAccelerations(entities, reg, w.Masses, w.Accelerations, warn)

	// Kick: v' = v + 0.5*(a0 + a1)*dt.
	updated := 0
	for _, e := range entities {
		a0, tracked := v.oldAcc[e]
		if !tracked {
			continue
		}
		vel := w.Velocities.GetMut(e)
		if vel == nil {
			continue
		}
		a1, _ := w.Accelerations.Get(e)
		*vel = vel.Add(a0.Add(a1).Scale(0.5 * dt))
		updated++
	}
	return updated
}
