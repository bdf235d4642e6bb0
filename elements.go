package orrery

import (
	"fmt"
	"math"
	"time"
)

const (
	eccentricityε = 5e-5                         // 0.00005
	angleε        = (5e-3 / 360) * (2 * math.Pi) // 0.005 degrees
	distanceε     = 2e1                          // 20 km
	velocityε     = 1e-6                         // in km/s
)

// OrbitalElements is the osculating Keplerian state of one body, stored by
// value in the simulation arena and never aliased: updater functions take a
// copy and return the updated copy. Angles i, Ω and ω are kept in degrees,
// matching the secular model tables, and converted to radians only at the
// rotation boundary. The mean anomaly M is kept in radians in [0, 2π).
type OrbitalElements struct {
	a          float64 // semi-major axis, km
	b          float64 // semi-minor axis, km, derived
	e          float64 // eccentricity
	i          float64 // inclination, degrees
	Ω          float64 // longitude of the ascending node, degrees
	ω          float64 // argument of perihelion, degrees
	M          float64 // mean anomaly, radians
	periodDays float64 // orbital period, days

	// Relativistic bookkeeping. The rate is derived on the first precession
	// call; ω0 is the perihelion before the relativistic overlay, refreshed
	// by every secular update so both drifts accumulate.
	precessionInit   bool
	precessionRate   float64 // arcsec per Julian century
	precessionArcsec float64 // cumulative, re-derived from absolute T
	ω0               float64 // argument of perihelion without the overlay, degrees
}

// NewOrbitalElements validates and returns the orbital elements of a body.
// The angles i, Ω and ω are in degrees, the mean anomaly M in radians, the
// period in days. This is the only gate where malformed seed data is
// rejected: everything downstream assumes a closed, well formed ellipse.
func NewOrbitalElements(a, e, i, Ω, ω, M, periodDays float64) (OrbitalElements, error) {
	if a <= 0 {
		return OrbitalElements{}, fmt.Errorf("semi-major axis must be strictly positive, got %f", a)
	}
	if e < 0 || e >= 1 {
		return OrbitalElements{}, fmt.Errorf("eccentricity must be in [0,1), got %f", e)
	}
	if periodDays <= 0 {
		return OrbitalElements{}, fmt.Errorf("orbital period must be strictly positive, got %f days", periodDays)
	}
	el := OrbitalElements{a: a, e: e, i: i, Ω: wrapDeg(Ω), ω: wrapDeg(ω), M: wrap2π(M), periodDays: periodDays}
	return InitializeElements(el), nil
}

// Getters. The arena owns the values, so there are no setters.

// SemiMajorAxis returns a in km.
func (el OrbitalElements) SemiMajorAxis() float64 { return el.a }

// SemiMinorAxis returns b in km.
func (el OrbitalElements) SemiMinorAxis() float64 { return el.b }

// Eccentricity returns e.
func (el OrbitalElements) Eccentricity() float64 { return el.e }

// Inclination returns i in degrees.
func (el OrbitalElements) Inclination() float64 { return el.i }

// Node returns the longitude of the ascending node Ω in degrees.
func (el OrbitalElements) Node() float64 { return el.Ω }

// Perihelion returns the argument of perihelion ω in degrees.
func (el OrbitalElements) Perihelion() float64 { return el.ω }

// MeanAnomaly returns M in radians, in [0, 2π).
func (el OrbitalElements) MeanAnomaly() float64 { return el.M }

// PeriodDays returns the orbital period in days.
func (el OrbitalElements) PeriodDays() float64 { return el.periodDays }

// Period returns the orbital period as a duration.
func (el OrbitalElements) Period() time.Duration {
	return time.Duration(el.periodDays * secondsPerDay * float64(time.Second))
}

// MeanMotion returns the mean motion in radians per second.
func (el OrbitalElements) MeanMotion() float64 {
	return twoπ / (el.periodDays * secondsPerDay)
}

// PrecessionRate returns the relativistic perihelion drift in arcsec per
// Julian century, or zero before the first precession call.
func (el OrbitalElements) PrecessionRate() float64 { return el.precessionRate }

// CumulativePrecession returns the accumulated perihelion drift in arcsec.
func (el OrbitalElements) CumulativePrecession() float64 { return el.precessionArcsec }

// String implements the Stringer interface.
func (el OrbitalElements) String() string {
	return fmt.Sprintf("a=%.1f e=%.6f i=%.4f Ω=%.4f ω=%.4f M=%.6f P=%.2fd", el.a, el.e, el.i, el.Ω, el.ω, el.M, el.periodDays)
}

// Equals returns whether two element sets are the same within the reasonable
// tolerances of each element, and if not, which element differs.
func (el OrbitalElements) Equals(o OrbitalElements) (bool, error) {
	if math.Abs(el.a-o.a) > distanceε {
		return false, fmt.Errorf("semi-major axes differ by %f km", math.Abs(el.a-o.a))
	}
	if math.Abs(el.e-o.e) > eccentricityε {
		return false, fmt.Errorf("eccentricities differ by %f", math.Abs(el.e-o.e))
	}
	for _, cmp := range []struct {
		name     string
		got, exp float64
	}{{"i", el.i, o.i}, {"Ω", el.Ω, o.Ω}, {"ω", el.ω, o.ω}} {
		if angleGapDeg(cmp.got, cmp.exp)*deg2rad > angleε {
			return false, fmt.Errorf("%s differs (%f != %f)", cmp.name, cmp.got, cmp.exp)
		}
	}
	if angleGapDeg(Rad2deg(el.M), Rad2deg(o.M))*deg2rad > angleε {
		return false, fmt.Errorf("mean anomalies differ (%f != %f)", el.M, o.M)
	}
	return true, nil
}

// angleGapDeg returns the separation of two angles in degrees, across the
// wrap seam.
func angleGapDeg(α, β float64) float64 {
	gap := math.Abs(wrapDeg(α) - wrapDeg(β))
	if gap > 180 {
		gap = 360 - gap
	}
	return gap
}

// InitializeElements fills the derived fields of a freshly registered body:
// the semi-minor axis, and normalized angles (absent angles default to zero
// through the zero value).
func InitializeElements(el OrbitalElements) OrbitalElements {
	el.b = el.a * math.Sqrt(1-el.e*el.e)
	el.i = wrapDeg(el.i)
	el.Ω = wrapDeg(el.Ω)
	el.ω = wrapDeg(el.ω)
	el.ω0 = el.ω
	el.M = wrap2π(el.M)
	return el
}

// SecularElements is one row of the secular variation model: the J2000 mean
// elements of a body and their linear rates per Julian century, after
// Standish. LongPeri is the longitude of perihelion ϖ = Ω + ω and L the mean
// longitude, both in degrees; A is in AU.
type SecularElements struct {
	A, E, I, L, LongPeri, LongNode       float64
	DA, DE, DI, DL, DLongPeri, DLongNode float64
	PeriodDays                           float64
}

// secularModel maps a body name to its secular variation row. Bodies absent
// from the table keep whatever elements they were registered with.
var secularModel = map[string]SecularElements{
	"Mercury": {0.38709843, 0.20563661, 7.00559432, 252.25166724, 77.45771895, 48.33961819,
		0.00000000, 0.00002123, -0.00590158, 149472.67486623, 0.15940013, -0.12214182, 87.969},
	"Venus": {0.72333566, 0.00677672, 3.39467605, 181.97970850, 131.76755713, 76.67984255,
		0.00000390, -0.00004107, -0.00078890, 58517.81538729, 0.05679648, -0.27769418, 224.701},
	"Earth": {1.00000261, 0.01671123, -0.00001531, 100.46457166, 102.93768193, 0.0,
		0.00000562, -0.00004392, -0.01294668, 35999.37306329, 0.32327364, 0.0, 365.256},
	"Mars": {1.52371034, 0.09339410, 1.84969142, -4.55343205, -23.94362959, 49.55953891,
		0.00001847, 0.00007882, -0.00813131, 19140.30268499, 0.44441088, -0.29257343, 686.98},
	"Jupiter": {5.20288700, 0.04838624, 1.30439695, 34.39644051, 14.72847983, 100.47390909,
		-0.00011607, -0.00013253, -0.00183714, 3034.74612775, 0.21252668, 0.20469106, 4332.59},
	"Saturn": {9.53667594, 0.05386179, 2.48599187, 49.95424423, 92.59887831, 113.66242448,
		-0.00125060, -0.00050991, 0.00193609, 1222.49362201, -0.41897216, -0.28867794, 10759.22},
	"Uranus": {19.18916464, 0.04725744, 0.77263783, 313.23810451, 170.95427630, 74.01692503,
		-0.00196176, -0.00004397, -0.00242939, 428.48202785, 0.40805281, 0.04240589, 30685.4},
	"Neptune": {30.06992276, 0.00859048, 1.77004347, -55.12002969, 44.96476227, 131.78422574,
		0.00026291, 0.00005105, 0.00035372, 218.45945325, -0.32241464, -0.00508664, 60189.0},
	"Pluto": {39.48211675, 0.24882730, 17.14001206, 238.92881780, 224.06891629, 110.30393684,
		-0.00031596, 0.00005170, 0.00004818, 145.20780515, -0.04062942, -0.01183482, 90560.0},
}

// SecularModel returns the secular variation row of a body, if it has one.
func SecularModel(name string) (SecularElements, bool) {
	row, found := secularModel[name]
	return row, found
}

// ElementsFromSecular builds J2000 epoch elements for a catalog body from its
// secular row: the mean anomaly comes from the mean longitude as M = L - ϖ.
func ElementsFromSecular(name string) (OrbitalElements, bool) {
	row, found := secularModel[name]
	if !found {
		return OrbitalElements{}, false
	}
	el, err := NewOrbitalElements(row.A*AU, row.E, row.I, row.LongNode,
		wrapDeg(row.LongPeri-row.LongNode), Deg2rad(wrapDeg(row.L-row.LongPeri)), row.PeriodDays)
	if err != nil {
		panic(fmt.Errorf("secular model row for %s is broken: %s", name, err))
	}
	return el, true
}

// UpdateSecular re-evaluates the slow drift of a body's elements at T Julian
// centuries since J2000 and returns the updated value. The mean anomaly is
// deliberately left alone: it advances through the position calculator, not
// through the secular model. Bodies without a model row are returned as is.
func UpdateSecular(name string, el OrbitalElements, T float64) OrbitalElements {
	row, found := secularModel[name]
	if !found {
		return el
	}
	el.a = (row.A + row.DA*T) * AU
	el.e = row.E + row.DE*T
	// The rates are tiny but a scenario may run for many centuries.
	if el.e < 0 {
		el.e = 0
	} else if el.e >= 1 {
		el.e = 1 - eccentricityε
	}
	el.i = wrapDeg(row.I + row.DI*T)
	el.Ω = wrapDeg(row.LongNode + row.DLongNode*T)
	ϖ := row.LongPeri + row.DLongPeri*T
	el.ω = wrapDeg(ϖ - (row.LongNode + row.DLongNode*T))
	// The relativistic overlay rides on top of the freshly drifted perihelion.
	el.ω0 = el.ω
	el.b = el.a * math.Sqrt(1-el.e*el.e)
	return el
}
