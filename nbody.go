package orrery

// BodyState is the integrated kinematic state of one body: inertial position
// in km, velocity in km/s, and the accumulated axial spin angle in radians
// (signed, so retrograde bodies wind backwards).
type BodyState struct {
	R, V []float64
	Spin float64
}

// Copy returns a deep copy, since the position and velocity slices would
// otherwise alias the arena's.
func (s BodyState) Copy() BodyState {
	c := BodyState{R: make([]float64, 3), V: make([]float64, 3), Spin: s.Spin}
	copy(c.R, s.R)
	copy(c.V, s.V)
	return c
}

// Accelerations materializes the full pairwise gravitational acceleration
// array for one step, in km/s². Every body's acceleration is computed from
// the same pre-step snapshot of positions; nothing is updated in place
// mid-pass. Pairs closer than the sum of their radii contribute nothing, so
// an overlap degenerates to a coasting miss instead of a force spike.
func Accelerations(bodies []CelestialBody, states []BodyState) [][]float64 {
	accs := make([][]float64, len(states))
	for i := range accs {
		accs[i] = make([]float64, 3)
	}
	for i := range states {
		for j := range states {
			if i == j {
				continue
			}
			Δ := []float64{states[j].R[0] - states[i].R[0], states[j].R[1] - states[i].R[1], states[j].R[2] - states[i].R[2]}
			d := norm(Δ)
			if d < bodies[i].Radius+bodies[j].Radius {
				continue
			}
			mag := bodies[j].GM() / (d * d)
			for k := 0; k < 3; k++ {
				accs[i][k] += mag * Δ[k] / d
			}
		}
	}
	return accs
}

// applyRelativistic corrects one body's materialized acceleration for
// relativistic mass increase and, close to the central body, nudges the
// velocity direction by the perihelion advance accrued this step. Slow
// bodies are skipped outright, and so is anything past the Lorentz
// instability cap.
func applyRelativistic(acc []float64, state *BodyState, el OrbitalElements, centralR []float64, μ, dt float64) {
	speed := norm(state.V)
	if speed < relativisticFloor {
		return
	}
	γ := lorentzFactor(speed)
	if γ > lorentzCap {
		return
	}
	for k := 0; k < 3; k++ {
		acc[k] /= γ
	}
	if el.a <= 0 || centralR == nil {
		return
	}
	rel := []float64{state.R[0] - centralR[0], state.R[1] - centralR[1], state.R[2] - centralR[2]}
	if norm(rel) >= 1.5*el.a {
		return
	}
	normal := cross(rel, state.V)
	if norm(normal) == 0 {
		// Radial plunge: no orbital plane to precess in.
		return
	}
	θ := precessionPerOrbit(μ, el.a, el.e) * dt / (el.periodDays * secondsPerDay)
	state.V = rotateAboutAxis(state.V, unit(normal), θ)
}

// NBodyStep advances all body states by dt seconds of simulated time under
// their mutual gravity. The slices are parallel and indexed alike; central
// is the index of the central body for the relativistic velocity nudge, or
// -1 when there is none. The integration is semi-implicit Euler: velocity
// first, then position from the new velocity, which keeps orbits from
// spiraling the way explicit Euler does. Spin advances by each body's signed
// rate.
func NBodyStep(bodies []CelestialBody, els []OrbitalElements, states []BodyState, dt float64, relativistic bool, central int) {
	accs := Accelerations(bodies, states)
	if relativistic {
		var centralR []float64
		var μ float64
		if central >= 0 {
			centralR = states[central].R
			μ = bodies[central].GM()
		}
		for i := range states {
			if i == central {
				continue
			}
			applyRelativistic(accs[i], &states[i], els[i], centralR, μ, dt)
		}
	}
	for i := range states {
		for k := 0; k < 3; k++ {
			states[i].V[k] += accs[i][k] * dt
			states[i].R[k] += states[i].V[k] * dt
		}
		states[i].Spin = wrap2π(states[i].Spin + bodies[i].SpinRate()*dt)
	}
}
