package simd

// Convenience wrappers running one bulk primitive across the three axes of a
// structure-of-arrays component, the shape Vec3SoAStore.FieldArrays hands
// out. All slices of an axis triple must be equal length.

// UpdateVelocitiesSoA applies v += a*dt on each axis.
func UpdateVelocitiesSoA(vx, vy, vz, ax, ay, az []float64, dt float64) {
	b := Select()
	b.UpdateVelocities(vx, ax, dt)
	b.UpdateVelocities(vy, ay, dt)
	b.UpdateVelocities(vz, az, dt)
}

// UpdatePositionsSoA applies p += v*dt + 0.5*a*dt^2 on each axis.
func UpdatePositionsSoA(px, py, pz, vx, vy, vz, ax, ay, az []float64, dt float64) {
	halfDtSq := 0.5 * dt * dt
	b := Select()
	b.UpdatePositions(px, vx, ax, dt, halfDtSq)
	b.UpdatePositions(py, vy, ay, dt, halfDtSq)
	b.UpdatePositions(pz, vz, az, dt, halfDtSq)
}

// AccumulateForcesSoA applies tot += f on each axis.
func AccumulateForcesSoA(totX, totY, totZ, fx, fy, fz []float64) {
	b := Select()
	b.AccumulateForces(totX, fx)
	b.AccumulateForces(totY, fy)
	b.AccumulateForces(totZ, fz)
}
