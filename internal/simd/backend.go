// Package simd provides runtime-selected vectorized bulk primitives over
// parallel float64 field arrays. A backend is picked once from detected CPU
// features (widest lane first) and cached for the process lifetime; tests
// that override the backend must do so before the first use.
package simd

import (
	"sync"

	"golang.org/x/sys/cpu"
)

// Backend implements the three bulk primitives over equal-length slices.
// Passing slices of unequal length is a contract violation; the helpers in
// this package assert it.
type Backend interface {
	Name() string
	// Width is the number of lanes processed per unrolled iteration.
	Width() int
	Available() bool

	// UpdateVelocities performs v += a*dt element-wise.
	UpdateVelocities(v, a []float64, dt float64)
	// UpdatePositions performs p += v*dt + a*halfDtSq element-wise.
	UpdatePositions(p, v, a []float64, dt, halfDtSq float64)
	// AccumulateForces performs tot += f element-wise.
	AccumulateForces(tot, f []float64)
}

var (
	backendOnce sync.Once
	active      Backend
)

// Select returns the process-wide backend, choosing the widest available one
// on first use: 8 lanes with AVX-512F+DQ, 4 lanes with AVX2, else scalar.
func Select() Backend {
	backendOnce.Do(func() {
		if active == nil {
			active = autoSelect()
		}
	})
	return active
}

// SetBackend overrides the process-wide backend, e.g. to force the scalar
// path in tests. Must be called before the first Select to take effect
// deterministically.
func SetBackend(b Backend) {
	active = b
	backendOnce = sync.Once{}
}

func autoSelect() Backend {
	if w8 := (wide8Backend{}); w8.Available() {
		return w8
	}
	if w4 := (wide4Backend{}); w4.Available() {
		return w4
	}
	return scalarBackend{}
}

// HasAVX2 reports AVX2 support on this CPU.
func HasAVX2() bool { return cpu.X86.HasAVX2 }

// HasAVX512 reports AVX-512 F+DQ support on this CPU.
func HasAVX512() bool { return cpu.X86.HasAVX512F && cpu.X86.HasAVX512DQ }

func checkLen(lens ...int) {
	for _, n := range lens[1:] {
		if n != lens[0] {
			panic("simd: parallel slices have unequal length")
		}
	}
}
