package orrery

import (
	"math"
	"time"
)

const (
	// planStep is the planner's fixed timestep in seconds.
	planStep = 60.0
	// planMaxSteps caps the forward simulation regardless of progress.
	planMaxSteps = 2000
	// planCeiling caps the simulated flight time, about 28 hours.
	planCeiling = 1e5 // seconds
	// arrivalTolerance is the radius around the target that counts as there.
	arrivalTolerance = 10.0 // km
	// pathCap bounds the returned path length; the recording stride is
	// computed from it so longer searches just sample coarser.
	pathCap = 500
	// planMaxAccel is the vehicle's thrust authority in km/s².
	planMaxAccel = 0.05
	// planBurnBudget is the total burn time available, in seconds.
	planBurnBudget = 3600.0
	// planThrottleRange is the distance in km under which thrust eases off.
	planThrottleRange = 1e3
	// planFuelEfficiency converts burn impulse into abstract fuel units.
	planFuelEfficiency = 1e-3
)

// Plan is the outcome of one trajectory search: the sampled path, the flight
// time and fuel spent getting there, and whether the target was reached
// within the step and time budgets.
type Plan struct {
	Path          [][]float64
	EstimatedTime time.Duration
	Fuel          float64
	Steps         int
	Success       bool
}

// fieldAt sums the gravitational acceleration at a point from every body,
// with the same near-surface cutoff as the N-body step.
func fieldAt(p []float64, bodies []CelestialBody, positions [][]float64) []float64 {
	acc := make([]float64, 3)
	for i, b := range bodies {
		Δ := []float64{positions[i][0] - p[0], positions[i][1] - p[1], positions[i][2] - p[2]}
		d := norm(Δ)
		if d < b.Radius {
			continue
		}
		mag := b.GM() / (d * d)
		for k := 0; k < 3; k++ {
			acc[k] += mag * Δ[k] / d
		}
	}
	return acc
}

// thrustFrom evaluates the steering law and the throttle for one flight
// state. The magnitude is an acceleration in km/s²; it tapers linearly
// inside planThrottleRange of the target so arrivals do not overshoot.
func thrustFrom(law SteeringLaw, st FlightState) (dir []float64, mag float64) {
	dist := norm([]float64{st.Target[0] - st.R[0], st.Target[1] - st.R[1], st.Target[2] - st.R[2]})
	dir = law.Steer(st)
	mag = math.Min(1, dist/planThrottleRange) * planMaxAccel
	return dir, mag
}

// PlanTrajectory forward-simulates a burn-and-coast flight from start toward
// target through the gravity field of the given bodies and returns the
// sampled path with its cost. The body positions are a frozen snapshot: the
// planner is an open loop oracle, it neither moves the planets nor replans.
// All inputs are copied, so a failed search never leaks state back into the
// caller. Termination is guaranteed by the step cap and the time ceiling.
func PlanTrajectory(start, target, startV []float64, vehicleMass float64, bodies []CelestialBody, positions [][]float64, relativistic bool) Plan {
	r := append([]float64{}, start...)
	v := append([]float64{}, startV...)
	tgt := append([]float64{}, target...)
	frozen := make([][]float64, len(positions))
	for i := range positions {
		frozen[i] = append([]float64{}, positions[i]...)
	}

	law := NewApproachLaw()
	stride := planMaxSteps / pathCap
	if stride < 1 {
		stride = 1
	}
	plan := Plan{Path: [][]float64{append([]float64{}, r...)}}
	burnLeft := planBurnBudget
	elapsed := 0.0

	for step := 0; step < planMaxSteps; step++ {
		dist := norm([]float64{tgt[0] - r[0], tgt[1] - r[1], tgt[2] - r[2]})
		if dist < arrivalTolerance {
			plan.Success = true
			break
		}
		if elapsed > planCeiling {
			break
		}

		acc := fieldAt(r, bodies, frozen)
		if burnLeft > 0 {
			dir, mag := thrustFrom(law, FlightState{R: r, V: v, Target: tgt, Bodies: bodies, Positions: frozen})
			for k := 0; k < 3; k++ {
				acc[k] += mag * dir[k]
			}
			plan.Fuel += mag * vehicleMass * planStep * planFuelEfficiency
			burnLeft -= planStep
		}
		if relativistic {
			speed := norm(v)
			if γ := lorentzFactor(speed); speed >= relativisticFloor && γ <= lorentzCap {
				for k := 0; k < 3; k++ {
					acc[k] /= γ
				}
			}
		}
		for k := 0; k < 3; k++ {
			v[k] += acc[k] * planStep
			r[k] += v[k] * planStep
		}
		elapsed += planStep
		plan.Steps++
		if plan.Steps%stride == 0 && len(plan.Path) < pathCap {
			plan.Path = append(plan.Path, append([]float64{}, r...))
		}
	}

	if last := plan.Path[len(plan.Path)-1]; last[0] != r[0] || last[1] != r[1] || last[2] != r[2] {
		if len(plan.Path) == pathCap {
			plan.Path[pathCap-1] = append([]float64{}, r...)
		} else {
			plan.Path = append(plan.Path, append([]float64{}, r...))
		}
	}
	plan.EstimatedTime = time.Duration(elapsed * float64(time.Second))
	return plan
}
