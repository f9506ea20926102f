package ecs

import (
	"fmt"
	"math"
)

// Vec3 is the shared shape of position, velocity, acceleration and force
// components. Double precision throughout.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Valid reports whether all components are finite.
func (v Vec3) Valid() bool {
	return !math.IsNaN(v.X) && !math.IsInf(v.X, 0) &&
		!math.IsNaN(v.Y) && !math.IsInf(v.Y, 0) &&
		!math.IsNaN(v.Z) && !math.IsInf(v.Z, 0)
}

// ImmovableThreshold is the mass below which a body is treated as immovable.
const ImmovableThreshold = 1e-10

// Mass in kilograms. Zero (or near-zero) mass marks an immovable body; the
// inverse-mass convention keeps F=ma free of division by zero.
type Mass struct {
	Value float64
}

// NewMass validates the value: negative or non-finite masses are rejected.
func NewMass(v float64) (Mass, error) {
	if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return Mass{}, fmt.Errorf("ecs: mass must be non-negative and finite, got %v", v)
	}
	return Mass{Value: v}, nil
}

// MustMass is NewMass for literals known to be valid.
func MustMass(v float64) Mass {
	m, err := NewMass(v)
	if err != nil {
		panic(err)
	}
	return m
}

// ImmovableMass returns the zero-mass marker for bodies that never move.
func ImmovableMass() Mass { return Mass{Value: 0} }

func (m Mass) Immovable() bool { return m.Value < ImmovableThreshold }

// Inverse returns 1/m, or 0 for immovable bodies.
func (m Mass) Inverse() float64 {
	if m.Immovable() {
		return 0
	}
	return 1.0 / m.Value
}

func (m Mass) Valid() bool {
	return m.Value >= 0 && !math.IsNaN(m.Value) && !math.IsInf(m.Value, 0)
}
