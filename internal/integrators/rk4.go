package integrators

import (
	"github.com/san-kum/physim/internal/ecs"
	"github.com/san-kum/physim/internal/forces"
	"github.com/san-kum/physim/internal/pool"
)

// RK4 is the classical fourth-order Runge-Kutta integrator. Not symplectic;
// trades energy behavior for accuracy on smooth forces.
//
// The k-stage evaluations are globally staged: before forces are sampled for
// k2, k3 or k4, every body is advanced to its intermediate state. Sampling
// with only some bodies advanced silently demotes the order for coupled
// forces, so the per-entity loops here never touch the registry mid-stage.
//
// k1 reads the accelerations the pipeline's force and acceleration stages
// already produced; the three staged evaluations each rebuild the registry,
// for four force sweeps per full step. Intermediate state lives in pooled
// buffers whose contents are undefined between steps.
type RK4 struct {
	dt      float64
	vecPool *pool.Pool[ecs.Vec3]
}

// rk4BufferCount is the number of staging maps one step borrows: initial
// position/velocity plus position and velocity slopes for k1..k4.
const rk4BufferCount = 10

func NewRK4(dt float64) (*RK4, error) {
	cfg := pool.DefaultConfig()
	// Retain one slot per staging buffer so steady-state steps never allocate.
	cfg.MaxPoolSize = rk4BufferCount
	return NewRK4WithPool(dt, cfg)
}

func NewRK4WithPool(dt float64, cfg pool.Config) (*RK4, error) {
	if err := checkTimestep(dt); err != nil {
		return nil, err
	}
	p, err := pool.NewWithConfig[ecs.Vec3](cfg)
	if err != nil {
		return nil, err
	}
	return &RK4{dt: dt, vecPool: p}, nil
}

func (r *RK4) Name() string      { return "rk4" }
func (r *RK4) Timestep() float64 { return r.dt }

func (r *RK4) SetTimestep(dt float64) error {
	if err := checkTimestep(dt); err != nil {
		return err
	}
	r.dt = dt
	return nil
}

func (r *RK4) ValidateTimestep() error { return validateTimestep(r.dt) }

// PoolStats exposes the staging pool's counters for tuning.
func (r *RK4) PoolStats() pool.Stats { return r.vecPool.Stats() }

func (r *RK4) Integrate(entities []ecs.Entity, w *ecs.World, reg *forces.Registry, warn bool) int {
	dt := r.dt
	halfDt := dt * 0.5
	dt6 := dt / 6.0

	guards := make([]*pool.Guard[ecs.Vec3], 0, 10)
	acquire := func() map[ecs.Entity]ecs.Vec3 {
		g := r.vecPool.Acquire()
		guards = append(guards, g)
		return g.Buf
	}
	defer func() {
		for _, g := range guards {
			g.Release()
		}
	}()

	initPos := acquire()
	initVel := acquire()
	k1p, k1v := acquire(), acquire()
	k2p, k2v := acquire(), acquire()
	k3p, k3v := acquire(), acquire()
	k4p, k4v := acquire(), acquire()

	// Record the initial state of every participating body.
	for _, e := range entities {
		if !movable(e, w.Masses) {
			continue
		}
		p, okP := w.Positions.Get(e)
		v, okV := w.Velocities.Get(e)
		if !okP || !okV {
			if warn {
				forces.Warnf("integrators: %v missing position or velocity, skipped", e)
			}
			continue
		}
		initPos[e] = p
		initVel[e] = v
	}

	// k1 at the current state: dp/dt = v, dv/dt = a from the force stage.
	for e, v := range initVel {
		k1p[e] = v
		a, _ := w.Accelerations.Get(e)
		k1v[e] = a
	}

	// stage advances every body to init + prevK*factor, rebuilds forces at
	// that globally consistent state, and derives the next k.
	stage := func(prevP, prevV, outP, outV map[ecs.Entity]ecs.Vec3, factor float64) {
		for e, p0 := range initPos {
			kp := prevP[e]
			if ptr := w.Positions.GetMut(e); ptr != nil {
				*ptr = p0.Add(kp.Scale(factor))
			}
		}
		reg.ClearForces()
		for _, e := range entities {
			reg.AccumulateForEntity(e)
		}
		for e, v0 := range initVel {
			outP[e] = v0.Add(prevV[e].Scale(factor))
			m, _ := w.Masses.Get(e)
			var a ecs.Vec3
			if f, ok := reg.ForceFor(e); ok {
				a = f.Scale(m.Inverse())
			}
			outV[e] = a
		}
	}

	stage(k1p, k1v, k2p, k2v, halfDt)
	stage(k2p, k2v, k3p, k3v, halfDt)
	stage(k3p, k3v, k4p, k4v, dt)

	// Restore, then commit the weighted average
	// y' = y + (k1 + 2*k2 + 2*k3 + k4)*dt/6.
	updated := 0
	for e, p0 := range initPos {
		v0 := initVel[e]
		dp := k1p[e].Add(k2p[e].Scale(2)).Add(k3p[e].Scale(2)).Add(k4p[e]).Scale(dt6)
		dv := k1v[e].Add(k2v[e].Scale(2)).Add(k3v[e].Scale(2)).Add(k4v[e]).Scale(dt6)

		newP := p0.Add(dp)
		newV := v0.Add(dv)
		if !newP.Valid() || !newV.Valid() {
			if warn {
				forces.Warnf("integrators: non-finite state after rk4 update for %v, reverted", e)
			}
			if ptr := w.Positions.GetMut(e); ptr != nil {
				*ptr = p0
			}
			continue
		}
		if ptr := w.Positions.GetMut(e); ptr != nil {
			*ptr = newP
		}
		if ptr := w.Velocities.GetMut(e); ptr != nil {
			*ptr = newV
		}
		updated++
	}
	return updated
}
