package forces

import (
	"math"
	"testing"

	"github.com/san-kum/physim/internal/ecs"
)

func constantProvider(name string, f Force) Provider {
	return ProviderFunc{ID: name, Fn: func(ecs.Entity, *Registry) (Force, bool) {
		return f, true
	}}
}

func init() {
	// Tests exercise warning paths on purpose; keep the output quiet.
	Warnf = func(string, ...any) {}
}

func TestAccumulateSumsProviders(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterProvider(constantProvider("fx", Force{X: 10}))
	reg.RegisterProvider(constantProvider("fy", Force{Y: 20}))

	e := ecs.NewEntity(1, 0)
	if !reg.AccumulateForEntity(e) {
		t.Fatal("accumulation should apply")
	}
	f, ok := reg.ForceFor(e)
	if !ok {
		t.Fatal("total should be recorded")
	}
	if f.X != 10 || f.Y != 20 || f.Z != 0 {
		t.Errorf("total should be the provider sum, got %v", f)
	}
}

func TestAccumulateRejectsNonFinite(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterProvider(constantProvider("bad", Force{X: math.NaN()}))
	reg.RegisterProvider(constantProvider("good", Force{X: 5}))

	e := ecs.NewEntity(1, 0)
	reg.AccumulateForEntity(e)
	f, _ := reg.ForceFor(e)
	if f.X != 5 {
		t.Errorf("non-finite contribution must never enter the total, got %v", f)
	}
}

func TestAccumulateZeroesPreviousTotal(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterProvider(constantProvider("f", Force{X: 1}))

	e := ecs.NewEntity(1, 0)
	reg.AccumulateForEntity(e)
	reg.AccumulateForEntity(e)
	f, _ := reg.ForceFor(e)
	if f.X != 1 {
		t.Errorf("re-accumulation must zero the entry first, got %v", f)
	}
}

func TestAccumulateClampsMagnitude(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxForceMagnitude = 100
	cfg.WarnOnHighForces = false
	reg := NewRegistryWithConfig(cfg)
	reg.RegisterProvider(constantProvider("big", Force{X: 1000}))

	e := ecs.NewEntity(1, 0)
	reg.AccumulateForEntity(e)
	f, _ := reg.ForceFor(e)
	if f.Norm() > 100+1e-9 {
		t.Errorf("total should be clamped to 100, got %v", f.Norm())
	}
}

func TestAccumulateNoProviders(t *testing.T) {
	reg := NewRegistry()
	e := ecs.NewEntity(1, 0)
	if reg.AccumulateForEntity(e) {
		t.Error("no providers means nothing applied")
	}
	if _, ok := reg.ForceFor(e); ok {
		t.Error("no total should be recorded")
	}
}

func TestClearSemantics(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterProvider(constantProvider("f", Force{X: 1}))
	e := ecs.NewEntity(1, 0)
	reg.AccumulateForEntity(e)

	reg.ClearForces()
	if _, ok := reg.ForceFor(e); ok {
		t.Error("ClearForces should drop totals")
	}
	if reg.ProviderCount() != 1 {
		t.Error("ClearForces should keep providers")
	}

	reg.Clear()
	if reg.ProviderCount() != 0 {
		t.Error("Clear should drop providers too")
	}
}

func TestEvaluationCounter(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterProvider(constantProvider("f", Force{X: 1}))

	for i := uint32(0); i < 5; i++ {
		reg.AccumulateForEntity(ecs.NewEntity(i, 0))
	}
	if reg.Evaluations() != 5 {
		t.Errorf("expected 5 evaluations, got %d", reg.Evaluations())
	}
	reg.ResetEvaluations()
	if reg.Evaluations() != 0 {
		t.Error("counter should reset")
	}
}

func TestApplyAccelerations(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterProvider(constantProvider("f", Force{X: 20}))

	masses := ecs.NewDenseStore[ecs.Mass]()
	accels := ecs.NewDenseStore[ecs.Vec3]()
	e := ecs.NewEntity(1, 0)
	masses.Insert(e, ecs.MustMass(10))
	accels.Insert(e, ecs.Vec3{})
	reg.AccumulateForEntity(e)

	n := ApplyAccelerations([]ecs.Entity{e}, reg, masses, accels, false)
	if n != 1 {
		t.Fatalf("expected 1 update, got %d", n)
	}
	a, _ := accels.Get(e)
	if math.Abs(a.X-2.0) > 1e-12 {
		t.Errorf("a = F/m = 2, got %v", a.X)
	}

	// Idempotence: same inputs, same output.
	ApplyAccelerations([]ecs.Entity{e}, reg, masses, accels, false)
	a2, _ := accels.Get(e)
	if a2 != a {
		t.Errorf("repeated application changed the result: %v vs %v", a2, a)
	}
}

func TestApplyAccelerationsImmovable(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterProvider(constantProvider("f", Force{X: 100}))

	masses := ecs.NewDenseStore[ecs.Mass]()
	accels := ecs.NewDenseStore[ecs.Vec3]()
	e := ecs.NewEntity(1, 0)
	masses.Insert(e, ecs.ImmovableMass())
	accels.Insert(e, ecs.Vec3{})
	reg.AccumulateForEntity(e)

	n := ApplyAccelerations([]ecs.Entity{e}, reg, masses, accels, false)
	if n != 0 {
		t.Errorf("immovable body should be skipped, got %d updates", n)
	}
	a, _ := accels.Get(e)
	if a != (ecs.Vec3{}) {
		t.Errorf("immovable body must keep zero acceleration, got %v", a)
	}
}

func TestApplyAccelerationsMissingMass(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterProvider(constantProvider("f", Force{X: 1}))

	masses := ecs.NewDenseStore[ecs.Mass]()
	accels := ecs.NewDenseStore[ecs.Vec3]()
	e := ecs.NewEntity(1, 0)
	reg.AccumulateForEntity(e)

	n := ApplyAccelerations([]ecs.Entity{e}, reg, masses, accels, true)
	if n != 0 {
		t.Error("missing mass should skip, not fail")
	}
}

func TestBuiltinProviders(t *testing.T) {
	positions := ecs.NewDenseStore[ecs.Vec3]()
	velocities := ecs.NewDenseStore[ecs.Vec3]()
	masses := ecs.NewDenseStore[ecs.Mass]()
	e := ecs.NewEntity(1, 0)
	positions.Insert(e, ecs.Vec3{X: 2})
	velocities.Insert(e, ecs.Vec3{X: 3})
	masses.Insert(e, ecs.MustMass(2))

	g := NewUniformGravity(ecs.Vec3{Y: -9.81}, masses)
	f, ok := g.ComputeForce(e, nil)
	if !ok || math.Abs(f.Y+19.62) > 1e-12 {
		t.Errorf("uniform gravity F=mg, got %v", f)
	}

	s := NewSpring(100, 0, ecs.Vec3{}, positions)
	f, ok = s.ComputeForce(e, nil)
	if !ok || math.Abs(f.X+200) > 1e-12 {
		t.Errorf("spring F=-kx, got %v", f)
	}

	d := NewDrag(0.5, velocities)
	f, ok = d.ComputeForce(e, nil)
	if !ok || math.Abs(f.X+1.5) > 1e-12 {
		t.Errorf("drag F=-cv, got %v", f)
	}

	// Providers that do not apply report absent.
	other := ecs.NewEntity(9, 0)
	if _, ok := g.ComputeForce(other, nil); ok {
		t.Error("gravity without a mass should not apply")
	}
}
