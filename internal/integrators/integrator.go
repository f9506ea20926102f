// Package integrators advances entity kinematics over a fixed timestep.
// Two methods are provided: symplectic Velocity Verlet and classical RK4.
// Both read the accelerations computed by the acceleration stage and drive
// the force registry themselves for the additional evaluations their
// schemes require.
package integrators

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/physim/internal/ecs"
	"github.com/san-kum/physim/internal/forces"
)

var (
	ErrInvalidTimestep = errors.New("integrators: timestep must be positive and finite")

	// Advisory bounds surfaced by ValidateTimestep. Integration proceeds
	// regardless; the validation is an observability hook.
	ErrTimestepBelowPrecisionFloor = errors.New("integrators: timestep below 1e-9 risks f64 precision loss")
	ErrTimestepAboveStabilityCeil  = errors.New("integrators: timestep above 1.0 risks instability")
)

// Integrator advances position and velocity for a set of entities using the
// world's component stores and the force registry.
type Integrator interface {
	Name() string
	Timestep() float64
	SetTimestep(dt float64) error
	// ValidateTimestep returns nil or a diagnostic naming the concern.
	ValidateTimestep() error
	// Integrate advances every movable entity by one timestep and returns
	// the number updated. Entities missing required components are skipped,
	// with a warning when warn is set.
	Integrate(entities []ecs.Entity, w *ecs.World, reg *forces.Registry, warn bool) int
}

func checkTimestep(dt float64) error {
	if dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return fmt.Errorf("%w: got %v", ErrInvalidTimestep, dt)
	}
	return nil
}

func validateTimestep(dt float64) error {
	if err := checkTimestep(dt); err != nil {
		return err
	}
	if dt < 1e-9 {
		return fmt.Errorf("%w: got %v", ErrTimestepBelowPrecisionFloor, dt)
	}
	if dt > 1.0 {
		return fmt.Errorf("%w: got %v", ErrTimestepAboveStabilityCeil, dt)
	}
	return nil
}

// movable reports whether the entity participates in integration.
func movable(e ecs.Entity, masses ecs.Store[ecs.Mass]) bool {
	m, ok := masses.Get(e)
	return ok && !m.Immovable()
}
