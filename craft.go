package orrery

import (
	"os"

	kitlog "github.com/go-kit/log"
)

// Spacecraft is a vehicle that can fly a planned trajectory. Fuel is a mass
// in kilograms and is drained by the flight integrator, never below zero.
type Spacecraft struct {
	Name     string
	DryMass  float64
	FuelMass float64
	logger   kitlog.Logger
}

// Mass returns the total wet mass of this spacecraft in kg.
func (sc *Spacecraft) Mass() float64 {
	return sc.DryMass + sc.FuelMass
}

// LogInfo logs the mass budget of this spacecraft.
func (sc *Spacecraft) LogInfo() {
	sc.logger.Log("level", "info", "dry(kg)", sc.DryMass, "fuel(kg)", sc.FuelMass, "total(kg)", sc.Mass())
}

// NewSpacecraft returns a spacecraft with the given mass budget and its own
// logger.
func NewSpacecraft(name string, dryMass, fuelMass float64) *Spacecraft {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "subsys", "craft", "craft", name)
	return &Spacecraft{name, dryMass, fuelMass, klog}
}
