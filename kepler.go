package orrery

import "math"

const (
	// keplerTolerance is the eccentric anomaly correction below which the
	// Newton iteration is considered converged.
	keplerTolerance = 1e-8
	// keplerMaxIter caps the Newton iteration. Kepler's equation converges in
	// a handful of steps for any elliptical orbit, so hitting this cap means
	// the caller fed a nearly parabolic orbit and gets the best estimate back.
	keplerMaxIter = 30
)

// SolveKepler returns the eccentric anomaly E in [0, 2π) for the given mean
// anomaly M (radians) and eccentricity e, by Newton iteration on Kepler's
// equation E - e*sin(E) = M. The mean anomaly itself is the seed, which is
// plenty for any elliptical orbit. Hyperbolic orbits are not supported.
func SolveKepler(M, e float64) float64 {
	M = wrap2π(M)
	E := M
	for i := 0; i < keplerMaxIter; i++ {
		ΔE := (E - e*math.Sin(E) - M) / (1 - e*math.Cos(E))
		E -= ΔE
		if math.Abs(ΔE) < keplerTolerance {
			break
		}
	}
	return wrap2π(E)
}

// TrueAnomalyFromE converts an eccentric anomaly to the true anomaly ν in
// [0, 2π) using the half angle form, which stays well conditioned near ν = π.
func TrueAnomalyFromE(E, e float64) float64 {
	sinν := math.Sqrt(1+e) * math.Sin(E/2)
	cosν := math.Sqrt(1-e) * math.Cos(E/2)
	return wrap2π(2 * math.Atan2(sinν, cosν))
}

// EccentricFromTrue is the inverse of TrueAnomalyFromE.
func EccentricFromTrue(ν, e float64) float64 {
	sinE := math.Sqrt(1-e) * math.Sin(ν/2)
	cosE := math.Sqrt(1+e) * math.Cos(ν/2)
	return wrap2π(2 * math.Atan2(sinE, cosE))
}
