package orrery

import "math"

// AdvanceOrbit moves a body along its orbit by elapsedSeconds of simulated
// time and returns the updated elements with the inertial position in km.
// The mean anomaly advances by the mean motion, Kepler's equation yields the
// eccentric anomaly, and the half angle form yields the true anomaly. With
// relativistic set, the perihelion advance for the elapsed fraction of an
// orbit is added directly to the true anomaly before the plane rotation.
// This position level correction is independent from the element level drift
// of ApplyPrecession: the two model distinct contributions and are kept
// additive.
func AdvanceOrbit(el OrbitalElements, elapsedSeconds, μ float64, relativistic bool) (OrbitalElements, []float64) {
	el.M = wrap2π(el.M + el.MeanMotion()*elapsedSeconds)
	E := SolveKepler(el.M, el.e)
	ν := TrueAnomalyFromE(E, el.e)
	if relativistic {
		orbitFraction := elapsedSeconds / (el.periodDays * secondsPerDay)
		ν += precessionPerOrbit(μ, el.a, el.e) * orbitFraction
	}
	r := el.a * (1 - el.e*math.Cos(E))
	sinν, cosν := math.Sincos(ν)
	R := PQW2ECI(Deg2rad(el.i), Deg2rad(el.ω), Deg2rad(el.Ω), []float64{r * cosν, r * sinν, 0})
	return el, R
}

// RVFromElements returns the inertial position and velocity vectors of a
// body at its current mean anomaly, for a central gravitational parameter μ.
// This is how a Keplerian body hands its state over to the integrator when
// the simulation switches modes.
func RVFromElements(el OrbitalElements, μ float64) (R, V []float64) {
	E := SolveKepler(el.M, el.e)
	ν := TrueAnomalyFromE(E, el.e)
	r := el.a * (1 - el.e*math.Cos(E))
	p := el.a * (1 - el.e*el.e)
	sinν, cosν := math.Sincos(ν)
	i, ω, Ω := Deg2rad(el.i), Deg2rad(el.ω), Deg2rad(el.Ω)
	R = PQW2ECI(i, ω, Ω, []float64{r * cosν, r * sinν, 0})
	V = PQW2ECI(i, ω, Ω, []float64{-math.Sqrt(μ/p) * sinν, math.Sqrt(μ/p) * (el.e + cosν), 0})
	return
}

// TrueAnomaly returns the true anomaly in radians for the current mean
// anomaly of the given elements.
func TrueAnomaly(el OrbitalElements) float64 {
	return TrueAnomalyFromE(SolveKepler(el.M, el.e), el.e)
}

// OrbitRadius returns the focal distance in km at the current mean anomaly.
func OrbitRadius(el OrbitalElements) float64 {
	E := SolveKepler(el.M, el.e)
	return el.a * (1 - el.e*math.Cos(E))
}
