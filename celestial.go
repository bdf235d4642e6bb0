package orrery

import (
	"fmt"
	"math"
	"strings"
)

const (
	// AU is one astronomical unit in kilometers.
	AU = 1.49597870700e8
	// G is the gravitational constant in km^3/(kg.s^2).
	G = 6.67430e-20
)

// CelestialBody defines a celestial body by its physical constants.
// All fields are immutable after registration in a System: kinematic and
// orbital state live in the simulation arena, not here.
type CelestialBody struct {
	Name           string
	Radius         float64 // km
	Mass           float64 // kg
	μ              float64 // km^3/s^2, precise gravitational parameter when known
	Tilt           float64 // axial tilt (obliquity to orbit) in degrees
	RotationPeriod float64 // days; a negative value marks retrograde spin
	SOI            float64 // sphere of influence with respect to the Sun, in km
}

// GM returns the gravitational parameter μ, falling back to G times the mass
// when no precise value is set.
func (c CelestialBody) GM() float64 {
	if c.μ > 0 {
		return c.μ
	}
	return G * c.Mass
}

// Retrograde returns whether this body spins backwards, either from a
// negative rotation period or an obliquity beyond 90 degrees.
func (c CelestialBody) Retrograde() bool {
	return c.RotationPeriod < 0 || c.Tilt > 90
}

// SpinRate returns the signed axial rotation rate in radians per second.
// Bodies with no rotation period do not spin.
func (c CelestialBody) SpinRate() float64 {
	if c.RotationPeriod == 0 {
		return 0
	}
	rate := twoπ / (math.Abs(c.RotationPeriod) * secondsPerDay)
	if c.Retrograde() {
		return -rate
	}
	return rate
}

// String implements the Stringer interface.
func (c CelestialBody) String() string {
	return c.Name + " body"
}

// Equals returns whether the provided celestial body is the same.
func (c *CelestialBody) Equals(b CelestialBody) bool {
	return c.Name == b.Name && c.Radius == b.Radius && c.Mass == b.Mass && c.μ == b.μ && c.SOI == b.SOI
}

// validate returns an error when the body cannot serve as simulation seed data.
func (c CelestialBody) validate() error {
	if c.Name == "" {
		return fmt.Errorf("body has no name")
	}
	if c.Radius <= 0 {
		return fmt.Errorf("%s: radius must be strictly positive", c.Name)
	}
	if c.Mass <= 0 && c.μ <= 0 {
		return fmt.Errorf("%s: mass or gravitational parameter must be strictly positive", c.Name)
	}
	return nil
}

// BodyFromString returns the catalog body from its name.
func BodyFromString(name string) (CelestialBody, error) {
	switch strings.ToLower(name) {
	case "sun":
		return Sun, nil
	case "mercury":
		return Mercury, nil
	case "venus":
		return Venus, nil
	case "earth":
		return Earth, nil
	case "mars":
		return Mars, nil
	case "jupiter":
		return Jupiter, nil
	case "saturn":
		return Saturn, nil
	case "uranus":
		return Uranus, nil
	case "neptune":
		return Neptune, nil
	case "pluto":
		return Pluto, nil
	default:
		return CelestialBody{}, fmt.Errorf("undefined body '%s'", name)
	}
}

/* Definitions */

// Sun is our closest star.
var Sun = CelestialBody{"Sun", 695700, 1.98892e30, 1.32712440017987e11, 0.0, 25.05, -1}

// Mercury is the one that precesses noticeably.
var Mercury = CelestialBody{"Mercury", 2439.7, 3.3011e23, 2.2032e4, 0.034, 58.646, 0.112e6}

// Venus is poisonous.
var Venus = CelestialBody{"Venus", 6051.8, 4.8675e24, 3.24858599e5, 177.36, 243.025, 0.616e6}

// Earth is home.
var Earth = CelestialBody{"Earth", 6378.1363, 5.97237e24, 3.98600433e5, 23.44, 0.99726968, 924645.0}

// Mars is the vacation place.
var Mars = CelestialBody{"Mars", 3396.19, 6.4171e23, 4.28283100e4, 25.19, 1.02595675, 576000}

// Jupiter is big.
var Jupiter = CelestialBody{"Jupiter", 71492.0, 1.8982e27, 1.266865361e8, 3.13, 0.41354, 48.2e6}

// Saturn floats and that's really cool.
var Saturn = CelestialBody{"Saturn", 60268.0, 5.6834e26, 3.7931208e7, 26.73, 0.44401, 54.5e6}

// Uranus spins on its side.
var Uranus = CelestialBody{"Uranus", 25559.0, 8.6810e25, 5.7939513e6, 97.77, 0.71833, 51.9e6}

// Neptune is windy.
var Neptune = CelestialBody{"Neptune", 24764.0, 1.02413e26, 6.836529e6, 28.32, 0.6713, 86.8e6}

// Pluto is not a planet and had that down ranking coming. It should have stayed in its lane.
// WARNING: Pluto SOI is not defined.
var Pluto = CelestialBody{"Pluto", 1188.3, 1.303e22, 8.71e2, 122.53, 6.3872, 1}
