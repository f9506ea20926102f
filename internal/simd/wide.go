package simd

// The wide backends unroll the bulk loops by the vector lane count so the
// compiler can keep the loads, multiplies and adds in vector registers on
// CPUs that have them. Products are forced through an explicit float64
// conversion: that rounds each intermediate and stops the compiler from
// fusing multiply-adds, keeping wide results bit-compatible with scalar.

// wide4Backend processes 4 lanes per iteration; gated on AVX2.
type wide4Backend struct{}

func (wide4Backend) Name() string    { return "wide4" }
func (wide4Backend) Width() int      { return 4 }
func (wide4Backend) Available() bool { return HasAVX2() }

func (wide4Backend) UpdateVelocities(v, a []float64, dt float64) {
	checkLen(len(v), len(a))
	n := len(v)
	i := 0
	for ; i+4 <= n; i += 4 {
		v[i+0] += float64(a[i+0] * dt)
		v[i+1] += float64(a[i+1] * dt)
		v[i+2] += float64(a[i+2] * dt)
		v[i+3] += float64(a[i+3] * dt)
	}
	for ; i < n; i++ {
		v[i] += float64(a[i] * dt)
	}
}

func (wide4Backend) UpdatePositions(p, v, a []float64, dt, halfDtSq float64) {
	checkLen(len(p), len(v), len(a))
	n := len(p)
	i := 0
	for ; i+4 <= n; i += 4 {
		p[i+0] += float64(v[i+0]*dt) + float64(a[i+0]*halfDtSq)
		p[i+1] += float64(v[i+1]*dt) + float64(a[i+1]*halfDtSq)
		p[i+2] += float64(v[i+2]*dt) + float64(a[i+2]*halfDtSq)
		p[i+3] += float64(v[i+3]*dt) + float64(a[i+3]*halfDtSq)
	}
	for ; i < n; i++ {
		p[i] += float64(v[i]*dt) + float64(a[i]*halfDtSq)
	}
}

func (wide4Backend) AccumulateForces(tot, f []float64) {
	checkLen(len(tot), len(f))
	n := len(tot)
	i := 0
	for ; i+4 <= n; i += 4 {
		tot[i+0] += f[i+0]
		tot[i+1] += f[i+1]
		tot[i+2] += f[i+2]
		tot[i+3] += f[i+3]
	}
	for ; i < n; i++ {
		tot[i] += f[i]
	}
}

// wide8Backend processes 8 lanes per iteration; gated on AVX-512 F+DQ.
type wide8Backend struct{}

func (wide8Backend) Name() string    { return "wide8" }
func (wide8Backend) Width() int      { return 8 }
func (wide8Backend) Available() bool { return HasAVX512() }

func (wide8Backend) UpdateVelocities(v, a []float64, dt float64) {
	checkLen(len(v), len(a))
	n := len(v)
	i := 0
	for ; i+8 <= n; i += 8 {
		v[i+0] += float64(a[i+0] * dt)
		v[i+1] += float64(a[i+1] * dt)
		v[i+2] += float64(a[i+2] * dt)
		v[i+3] += float64(a[i+3] * dt)
		v[i+4] += float64(a[i+4] * dt)
		v[i+5] += float64(a[i+5] * dt)
		v[i+6] += float64(a[i+6] * dt)
		v[i+7] += float64(a[i+7] * dt)
	}
	for ; i < n; i++ {
		v[i] += float64(a[i] * dt)
	}
}

func (wide8Backend) UpdatePositions(p, v, a []float64, dt, halfDtSq float64) {
	checkLen(len(p), len(v), len(a))
	n := len(p)
	i := 0
	for ; i+8 <= n; i += 8 {
		p[i+0] += float64(v[i+0]*dt) + float64(a[i+0]*halfDtSq)
		p[i+1] += float64(v[i+1]*dt) + float64(a[i+1]*halfDtSq)
		p[i+2] += float64(v[i+2]*dt) + float64(a[i+2]*halfDtSq)
		p[i+3] += float64(v[i+3]*dt) + float64(a[i+3]*halfDtSq)
		p[i+4] += float64(v[i+4]*dt) + float64(a[i+4]*halfDtSq)
		p[i+5] += float64(v[i+5]*dt) + float64(a[i+5]*halfDtSq)
		p[i+6] += float64(v[i+6]*dt) + float64(a[i+6]*halfDtSq)
		p[i+7] += float64(v[i+7]*dt) + float64(a[i+7]*halfDtSq)
	}
	for ; i < n; i++ {
		p[i] += float64(v[i]*dt) + float64(a[i]*halfDtSq)
	}
}

func (wide8Backend) AccumulateForces(tot, f []float64) {
	checkLen(len(tot), len(f))
	n := len(tot)
	i := 0
	for ; i+8 <= n; i += 8 {
		tot[i+0] += f[i+0]
		tot[i+1] += f[i+1]
		tot[i+2] += f[i+2]
		tot[i+3] += f[i+3]
		tot[i+4] += f[i+4]
		tot[i+5] += f[i+5]
		tot[i+6] += f[i+6]
		tot[i+7] += f[i+7]
	}
	for ; i < n; i++ {
		tot[i] += f[i]
	}
}
