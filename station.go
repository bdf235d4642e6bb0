package orrery

import (
	"fmt"
	"math"
	"strings"
	"time"

	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distmv"
)

var (
	σρ             = math.Pow(5e-3, 2) // 5 m of range noise, squared, in km.
	σρDot          = math.Pow(5e-6, 2) // 5 mm/s of range rate noise, squared, in km/s.
	DSS34Canberra  = NewStation("DSS34Canberra", 0.691750, 10, -35.398333, 148.981944, σρ, σρDot)
	DSS65Madrid    = NewStation("DSS65Madrid", 0.834939, 10, 40.427222, 4.250556, σρ, σρDot)
	DSS13Goldstone = NewStation("DSS13Goldstone", 1.07114904, 10, 35.247164, 243.205, σρ, σρDot)
)

// Station defines an observatory fixed to the surface of its host body.
type Station struct {
	Name                       string
	R, V                       []float64 // antenna position and spin velocity, body-fixed
	LatΦ, Longθ                float64   // these are stored in radians!
	Altitude, Elevation        float64
	RangeNoise, RangeRateNoise *distmv.Normal // Station noise
	Host                       CelestialBody
}

// PerformMeasurement observes a tracked point from this station. rRel and
// vRel are the target position and velocity relative to the host body
// center, in the inertial frame; dcm is the host's body-fixed to inertial
// orientation at that instant.
func (s Station) PerformMeasurement(target string, epoch time.Time, dcm *mat.Dense, rRel, vRel []float64) Measurement {
	// The antenna vectors are body-fixed, so bring the target down to that frame.
	var inv mat.Dense
	inv.CloneFrom(dcm.T())
	rBF := MxV33(&inv, rRel)
	vBF := MxV33(&inv, vRel)
	ρBF, ρ, el, az := s.RangeElAz(rBF)
	vDiff := make([]float64, 3)
	for i := 0; i < 3; i++ {
		vDiff[i] = (vBF[i] - s.V[i]) / ρ
	}
	ρDot := dot(ρBF, vDiff)
	ρNoisy := ρ + s.RangeNoise.Rand(nil)[0]
	ρDotNoisy := ρDot + s.RangeRateNoise.Rand(nil)[0]
	return Measurement{el >= s.Elevation, ρNoisy, ρDotNoisy, ρ, ρDot, el, az, epoch, target, s}
}

// RangeElAz returns the range vector (in the body-fixed frame), the range,
// and the elevation and azimuth (in degrees) of a given body-fixed position.
func (s Station) RangeElAz(rBF []float64) (ρBF []float64, ρ, el, az float64) {
	ρBF = make([]float64, 3)
	for i := 0; i < 3; i++ {
		ρBF[i] = rBF[i] - s.R[i]
	}
	ρ = norm(ρBF)
	rSEZ := MxV33(R3(s.Longθ), ρBF)
	rSEZ = MxV33(R2(math.Pi/2-s.LatΦ), rSEZ)
	// Elevation keeps its sign: below-horizon targets must not pass the mask.
	el = math.Asin(rSEZ[2]/ρ) / deg2rad
	az = wrapDeg(Rad2deg(math.Atan2(rSEZ[1], -rSEZ[0])))
	return
}

func (s Station) String() string {
	return fmt.Sprintf("%s on %s (%f,%f); alt = %f km; el = %f deg", s.Name, s.Host.Name, s.LatΦ/deg2rad, s.Longθ/deg2rad, s.Altitude, s.Elevation)
}

// NewStation returns a new station on Earth. Angles in degrees, noise
// variances in km² and (km/s)².
func NewStation(name string, altitude, elevation, latΦ, longθ, σρ, σρDot float64) Station {
	return NewStationOn(Earth, name, altitude, elevation, latΦ, longθ, σρ, σρDot)
}

// NewStationOn returns a new station on the surface of the given host body.
func NewStationOn(host CelestialBody, name string, altitude, elevation, latΦ, longθ, σρ, σρDot float64) Station {
	R := SurfacePoint(host, altitude, latΦ*deg2rad, longθ*deg2rad)
	V := cross([]float64{0, 0, host.SpinRate()}, R)
	seed := rand.New(rand.NewSource(uint64(time.Now().UnixNano())))
	ρNoise, ok := distmv.NewNormal([]float64{0}, mat.NewSymDense(1, []float64{σρ}), seed)
	if !ok {
		panic("NOK in Gaussian")
	}
	ρDotNoise, ok := distmv.NewNormal([]float64{0}, mat.NewSymDense(1, []float64{σρDot}), seed)
	if !ok {
		panic("NOK in Gaussian")
	}
	return Station{name, R, V, latΦ * deg2rad, longθ * deg2rad, altitude, elevation, ρNoise, ρDotNoise, host}
}

// Measurement stores one observation of a tracked point from a station.
type Measurement struct {
	Visible                  bool    // Stores whether the target was above the elevation mask.
	Range, RangeRate         float64 // Noisy observables, in km and km/s
	TrueRange, TrueRangeRate float64 // Noise-free observables
	Elevation, Azimuth       float64 // Pointing at the epoch, in degrees
	Epoch                    time.Time
	Target                   string
	Station                  Station
}

// CSV returns the data as CSV (does *not* include the new line)
func (m Measurement) CSV() string {
	return fmt.Sprintf("%f,%f,%f,%f,", m.TrueRange, m.TrueRangeRate, m.Range, m.RangeRate)
}

// ShortCSV returns the noisy data as CSV (does *not* include the new line)
func (m Measurement) ShortCSV() string {
	return fmt.Sprintf("%f,%f,", m.Range, m.RangeRate)
}

func (m Measurement) String() string {
	return fmt.Sprintf("%s->%s@%s", m.Station.Name, m.Target, m.Epoch)
}

// BuiltinStationFromName returns the builtin station of that name.
func BuiltinStationFromName(name string) Station {
	switch strings.ToLower(name) {
	case "dss13":
		return DSS13Goldstone
	case "dss34":
		return DSS34Canberra
	case "dss65":
		return DSS65Madrid
	default:
		panic(fmt.Errorf("unknown station `%s`", name))
	}
}
