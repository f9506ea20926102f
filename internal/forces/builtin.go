package forces

import "github.com/san-kum/physim/internal/ecs"

// UniformGravity applies F = m*g to every entity with a movable mass.
type UniformGravity struct {
	G      ecs.Vec3
	masses ecs.Store[ecs.Mass]
}

func NewUniformGravity(g ecs.Vec3, masses ecs.Store[ecs.Mass]) *UniformGravity {
	return &UniformGravity{G: g, masses: masses}
}

func (u *UniformGravity) Name() string { return "uniform-gravity" }

func (u *UniformGravity) ComputeForce(e ecs.Entity, _ *Registry) (Force, bool) {
	m, ok := u.masses.Get(e)
	if !ok || m.Immovable() {
		return Force{}, false
	}
	return u.G.Scale(m.Value), true
}

// Spring pulls an entity toward an anchor with F = -k*(|d|-rest)*d̂. With
// rest length zero this is the plain Hooke restoring force.
type Spring struct {
	K, Rest   float64
	Anchor    ecs.Vec3
	positions ecs.Store[ecs.Vec3]
}

func NewSpring(k, rest float64, anchor ecs.Vec3, positions ecs.Store[ecs.Vec3]) *Spring {
	return &Spring{K: k, Rest: rest, Anchor: anchor, positions: positions}
}

func (s *Spring) Name() string { return "spring" }

func (s *Spring) ComputeForce(e ecs.Entity, _ *Registry) (Force, bool) {
	p, ok := s.positions.Get(e)
	if !ok {
		return Force{}, false
	}
	d := p.Sub(s.Anchor)
	if s.Rest == 0 {
		return d.Scale(-s.K), true
	}
	dist := d.Norm()
	if dist == 0 {
		return Force{}, true
	}
	return d.Scale(-s.K * (dist - s.Rest) / dist), true
}

// Drag applies linear viscous damping F = -c*v.
type Drag struct {
	Coeff      float64
	velocities ecs.Store[ecs.Vec3]
}

func NewDrag(coeff float64, velocities ecs.Store[ecs.Vec3]) *Drag {
	return &Drag{Coeff: coeff, velocities: velocities}
}

func (d *Drag) Name() string { return "drag" }

func (d *Drag) ComputeForce(e ecs.Entity, _ *Registry) (Force, bool) {
	v, ok := d.velocities.Get(e)
	if !ok {
		return Force{}, false
	}
	return v.Scale(-d.Coeff), true
}
