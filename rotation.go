package orrery

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// PQW2ECI converts a given vector from the perifocal frame to the inertial frame.
func PQW2ECI(i, ω, Ω float64, vI []float64) []float64 {
	return Rot313Vec(-ω, -i, -Ω, vI)
}

// Rot313Vec rotates a given vector about a 3-1-3 Euler sequence.
func Rot313Vec(θ1, θ2, θ3 float64, vI []float64) []float64 {
	return MxV33(R3R1R3(θ1, θ2, θ3), vI)
}

// R3R1R3 performs a 3-1-3 Euler parameter rotation.
// From Schaub and Junkins (the one in Vallado is wrong... surprinsingly, right? =/)
func R3R1R3(θ1, θ2, θ3 float64) *mat.Dense {
	sθ1, cθ1 := math.Sincos(θ1)
	sθ2, cθ2 := math.Sincos(θ2)
	sθ3, cθ3 := math.Sincos(θ3)
	return mat.NewDense(3, 3, []float64{cθ3*cθ1 - sθ3*cθ2*sθ1, cθ3*sθ1 + sθ3*cθ2*cθ1, sθ3 * sθ2,
		-sθ3*cθ1 - cθ3*cθ2*sθ1, -sθ3*sθ1 + cθ3*cθ2*cθ1, cθ3 * sθ2,
		sθ2 * sθ1, -sθ2 * cθ1, cθ2})
}

// R1 rotation about the 1st axis.
func R1(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{1, 0, 0, 0, c, s, 0, -s, c})
}

// R2 rotation about the 2nd axis.
func R2(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, 0, -s, 0, 1, 0, s, 0, c})
}

// R3 rotation about the 3rd axis.
func R3(x float64) *mat.Dense {
	s, c := math.Sincos(x)
	return mat.NewDense(3, 3, []float64{c, s, 0, -s, c, 0, 0, 0, 1})
}

// MxV33 multiplies a matrix with a vector. Note that there is no dimension check!
func MxV33(m *mat.Dense, v []float64) (o []float64) {
	vVec := mat.NewVecDense(len(v), v)
	var rVec mat.VecDense
	rVec.MulVec(m, vVec)
	return []float64{rVec.AtVec(0), rVec.AtVec(1), rVec.AtVec(2)}
}

// AxialTilt returns the orientation matrix of a body whose spin axis is
// tilted by the provided obliquity (in degrees), along with whether the spin
// is retrograde. Obliquities beyond 90 degrees get an extra quarter turn
// about the spin axis to match the sideways/retrograde spin convention of
// bodies such as Uranus.
func AxialTilt(tilt float64) (*mat.Dense, bool) {
	dcm := R1(Deg2rad(tilt))
	if tilt > 90 {
		var m mat.Dense
		m.Mul(dcm, R3(math.Pi/2))
		return &m, true
	}
	return dcm, false
}

// SurfacePoint returns the body-fixed position of a point at the given
// altitude (km) above the surface of the body, at the given latitude and
// longitude (both in radians).
// Note that the first parameter is the altitude, not the radius from the center of the body!
func SurfacePoint(b CelestialBody, altitude, latitude, longitude float64) []float64 {
	sLong, cLong := math.Sincos(longitude)
	sLat, cLat := math.Sincos(latitude)
	r := altitude + b.Radius
	return []float64{r * cLat * cLong, r * cLat * sLong, r * sLat}
}

// Inertial2BodyFixed converts the provided inertial vector to the rotating
// body-fixed frame for the spin angle θ given in radians.
func Inertial2BodyFixed(R []float64, θ float64) []float64 {
	return MxV33(R3(θ), R)
}

// BodyFixed2Inertial converts the provided body-fixed vector to the inertial
// frame for the spin angle θ given in radians.
func BodyFixed2Inertial(R []float64, θ float64) []float64 {
	return Inertial2BodyFixed(R, -θ)
}
