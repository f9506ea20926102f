package plugin

import (
	"fmt"
	"math"

	"github.com/san-kum/physim/internal/ecs"
	"github.com/san-kum/physim/internal/forces"
)

// GravitationalConstant is the CODATA value of G in SI units, m^3/(kg*s^2).
const GravitationalConstant = 6.67430e-11

// Gravity is the built-in N-body gravity plugin. As a force provider it
// sums the pairwise Newtonian attraction of every other body:
//
//	F = G * m1 * m2 * r_vec / (r^2 + eps^2)^(3/2)
//
// The softening eps replaces the 1/r^2 singularity with 1/(r^2+eps^2) so
// close encounters stay finite. With eps = 0 the force is exact Newtonian
// gravity, which small-separation scenarios must budget for in their force
// magnitude limits.
type Gravity struct {
	Base
	g         float64
	softening float64
	world     *ecs.World
}

// NewGravity builds the plugin with the given gravitational constant.
// Scenario-scale simulations pass G = 1 or similar; SI simulations pass
// GravitationalConstant.
func NewGravity(g float64) (*Gravity, error) {
	if g < 0 || math.IsNaN(g) || math.IsInf(g, 0) {
		return nil, fmt.Errorf("plugin: gravitational constant must be non-negative and finite, got %v", g)
	}
	return &Gravity{g: g}, nil
}

func (gr *Gravity) Name() string    { return "gravity" }
func (gr *Gravity) Version() string { return "0.1.0" }

func (gr *Gravity) SetSoftening(eps float64) error {
	if eps < 0 || math.IsNaN(eps) || math.IsInf(eps, 0) {
		return fmt.Errorf("plugin: softening must be non-negative and finite, got %v", eps)
	}
	gr.softening = eps
	return nil
}

func (gr *Gravity) Softening() float64 { return gr.softening }

func (gr *Gravity) Initialize(ctx *Context) error {
	gr.world = ctx.World()
	return nil
}

// ComputeForce implements forces.Provider.
func (gr *Gravity) ComputeForce(e ecs.Entity, _ *forces.Registry) (forces.Force, bool) {
	if gr.world == nil {
		return forces.Force{}, false
	}
	pos, okP := gr.world.Positions.Get(e)
	mass, okM := gr.world.Masses.Get(e)
	if !okP || !okM {
		return forces.Force{}, false
	}

	eps2 := gr.softening * gr.softening
	var total forces.Force
	applied := false
	for _, other := range gr.world.Entities() {
		if other == e {
			continue
		}
		oPos, okP := gr.world.Positions.Get(other)
		oMass, okM := gr.world.Masses.Get(other)
		if !okP || !okM {
			continue
		}
		d := oPos.Sub(pos)
		r2 := d.Dot(d) + eps2
		if r2 == 0 {
			continue
		}
		inv := 1.0 / (r2 * math.Sqrt(r2))
		total = total.Add(d.Scale(gr.g * mass.Value * oMass.Value * inv))
		applied = true
	}
	return total, applied
}

var _ forces.Provider = (*Gravity)(nil)
