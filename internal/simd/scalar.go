package simd

// scalarBackend processes one element at a time. Always available; also the
// reference implementation the wide backends must match within rounding.
type scalarBackend struct{}

func (scalarBackend) Name() string    { return "scalar" }
func (scalarBackend) Width() int      { return 1 }
func (scalarBackend) Available() bool { return true }

func (scalarBackend) UpdateVelocities(v, a []float64, dt float64) {
	checkLen(len(v), len(a))
	for i := range v {
		// The conversion rounds the product before the add so the compiler
		// cannot fuse it; wide backends do the same.
		v[i] += float64(a[i] * dt)
	}
}

func (scalarBackend) UpdatePositions(p, v, a []float64, dt, halfDtSq float64) {
	checkLen(len(p), len(v), len(a))
	for i := range p {
		p[i] += float64(v[i]*dt) + float64(a[i]*halfDtSq)
	}
}

func (scalarBackend) AccumulateForces(tot, f []float64) {
	checkLen(len(tot), len(f))
	for i := range tot {
		tot[i] += f[i]
	}
}

// Scalar returns the always-available scalar backend, e.g. for forcing the
// reference path under a config override.
func Scalar() Backend { return scalarBackend{} }
