package orrery

import (
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

const (
	// J2000 is the Julian date of the J2000.0 reference epoch.
	J2000 = 2451545.0

	daysPerCentury = 36525.0
	secondsPerDay  = 86400.0
)

// Clock tracks the simulation epoch as a continuous Julian date and advances
// it from a wall clock time source, stretched by a time scale factor. The
// Julian date never moves backward through Advance; scenario setup uses
// SetDate or AdvanceByDays instead.
type Clock struct {
	jd         float64
	timeScale  float64
	lastMillis int64
	anchored   bool
}

// NewClock returns a clock set to the given date, running at real time.
func NewClock(date time.Time) *Clock {
	return &Clock{jd: julian.TimeToJD(date.UTC()), timeScale: 1}
}

// NewClockFromJD returns a clock set to the given Julian date, at real time.
func NewClockFromJD(jd float64) *Clock {
	return &Clock{jd: jd, timeScale: 1}
}

// JulianDate returns the current simulation epoch as a Julian date.
func (c *Clock) JulianDate() float64 {
	return c.jd
}

// Date returns the current simulation epoch as a calendar date in UTC.
func (c *Clock) Date() time.Time {
	return julian.JDToTime(c.jd)
}

// CenturiesJ2000 returns the Julian centuries elapsed since the J2000.0
// epoch, the polynomial parameter of the secular element model.
func (c *Clock) CenturiesJ2000() float64 {
	return (c.jd - J2000) / daysPerCentury
}

// TimeScale returns the current time stretch factor.
func (c *Clock) TimeScale() float64 {
	return c.timeScale
}

// SetTimeScale changes the time stretch factor. Negative factors clamp to
// zero: simulated time pauses but never reverses.
func (c *Clock) SetTimeScale(factor float64) {
	if factor < 0 {
		factor = 0
	}
	c.timeScale = factor
}

// Advance moves the simulation epoch forward from a wall clock reading in
// milliseconds and returns the elapsed simulated seconds. The first call
// after construction or a date reset only anchors the wall clock and returns
// zero, as does any call with a non increasing reading.
func (c *Clock) Advance(wallMillis int64) float64 {
	if !c.anchored || wallMillis <= c.lastMillis {
		c.lastMillis = wallMillis
		c.anchored = true
		return 0
	}
	elapsed := float64(wallMillis-c.lastMillis) / 1000 * c.timeScale
	c.jd += elapsed / secondsPerDay
	c.lastMillis = wallMillis
	return elapsed
}

// SetDate moves the epoch to the given date and drops the wall clock anchor.
func (c *Clock) SetDate(date time.Time) {
	c.jd = julian.TimeToJD(date.UTC())
	c.anchored = false
}

// AdvanceByDays shifts the epoch by a number of days and drops the wall
// clock anchor. Meant for scenario setup, so negative shifts are allowed.
func (c *Clock) AdvanceByDays(days float64) {
	c.jd += days
	c.anchored = false
}
