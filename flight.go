package orrery

import (
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/ChristopherRabotin/ode"
)

const (
	// StepSize is the default integration step of a flight.
	StepSize = 10 * time.Second
)

var wg sync.WaitGroup

// FlightRecord is one integrated flight state, as streamed to the exporters.
type FlightRecord struct {
	DT       time.Time
	Craft    string
	R, V     []float64
	FuelMass float64
}

// Flight propagates a spacecraft from a start state toward a fixed target
// point through a frozen snapshot of the system, burning fuel under the
// approach steering law. The snapshot never moves: a flight is the committed
// open loop execution of what the planner searched for, just integrated
// precisely and with the fuel actually on board.
type Flight struct {
	Vehicle      *Spacecraft
	R, V         []float64
	target       []float64
	bodies       []CelestialBody
	positions    [][]float64
	law          SteeringLaw
	relativistic bool
	StartDT      time.Time
	CurrentDT    time.Time
	step         time.Duration
	stopChan     chan bool
	histChan     chan<- FlightRecord
	done         bool
	collided     bool
	arrived      bool
	fuelOut      bool
}

// NewFlight returns a flight with the default step size.
func NewFlight(sc *Spacecraft, start, startV, target []float64, bodies []CelestialBody, positions [][]float64, relativistic bool, startDT time.Time, conf ExportConfig) *Flight {
	return NewPreciseFlight(sc, start, startV, target, bodies, positions, relativistic, startDT, StepSize, conf)
}

// NewPreciseFlight returns a flight with a custom step size. The start state,
// target and snapshot are all deep copied, same discipline as the planner.
func NewPreciseFlight(sc *Spacecraft, start, startV, target []float64, bodies []CelestialBody, positions [][]float64, relativistic bool, startDT time.Time, step time.Duration, conf ExportConfig) *Flight {
	frozen := make([][]float64, len(positions))
	for i := range positions {
		frozen[i] = append([]float64{}, positions[i]...)
	}
	var histChan chan FlightRecord
	if !conf.IsUseless() {
		histChan = make(chan FlightRecord, 10)
		wg.Add(1)
		go func() {
			defer wg.Done()
			StreamStates(conf, histChan)
		}()
	}
	f := &Flight{Vehicle: sc,
		R:            append([]float64{}, start...),
		V:            append([]float64{}, startV...),
		target:       append([]float64{}, target...),
		bodies:       append([]CelestialBody{}, bodies...),
		positions:    frozen,
		law:          NewApproachLaw(),
		relativistic: relativistic,
		StartDT:      startDT.UTC(),
		CurrentDT:    startDT.UTC(),
		step:         step,
		stopChan:     make(chan bool, 1),
		histChan:     histChan,
	}
	sc.logger.Log("level", "info", "flight", "created", "start", f.StartDT,
		"range(km)", f.targetDistance(), "step", step)
	return f
}

func (f *Flight) targetDistance() float64 {
	return norm([]float64{f.target[0] - f.R[0], f.target[1] - f.R[1], f.target[2] - f.R[2]})
}

// Arrived returns whether the flight got within the arrival tolerance.
func (f *Flight) Arrived() bool {
	return f.arrived
}

// Collided returns whether the flight hit a body.
func (f *Flight) Collided() bool {
	return f.collided
}

// Propagate integrates until arrival, collision, fuel-less drift past the
// time ceiling, or a call to StopPropagation. Blocking.
func (f *Flight) Propagate() {
	f.Vehicle.LogInfo()
	ode.NewRK4(0, f.step.Seconds(), f).Solve() // Blocking.
	f.done = true
	status := "exhausted"
	if f.arrived {
		status = "arrived"
	} else if f.collided {
		status = "collided"
	}
	duration := f.CurrentDT.Sub(f.StartDT)
	f.Vehicle.logger.Log("level", "notice", "flight", status, "duration", duration,
		"fuel(kg)", f.Vehicle.FuelMass, "range(km)", f.targetDistance())
	wg.Wait() // Don't return until the exporters are done writing.
}

// StopPropagation stops the flight at the end of the current step.
func (f *Flight) StopPropagation() {
	f.stopChan <- true
}

// Stop implements the stopping condition of the integrator.
func (f *Flight) Stop(t float64) bool {
	select {
	case <-f.stopChan:
		if f.histChan != nil {
			close(f.histChan)
		}
		return true
	default:
		f.CurrentDT = f.CurrentDT.Add(f.step)
	}
	if f.arrived || f.collided || t >= planCeiling {
		if f.histChan != nil {
			close(f.histChan)
		}
		return true
	}
	return false
}

// GetState returns the state as [x y z vx vy vz fuel].
func (f *Flight) GetState() []float64 {
	s := make([]float64, 7)
	copy(s[:3], f.R)
	copy(s[3:6], f.V)
	s[6] = f.Vehicle.FuelMass
	return s
}

// SetState sets the propagated state and checks the flight conditions.
func (f *Flight) SetState(t float64, s []float64) {
	copy(f.R, s[:3])
	copy(f.V, s[3:6])
	f.Vehicle.FuelMass = s[6]
	if f.Vehicle.FuelMass <= 0 {
		f.Vehicle.FuelMass = 0
		if !f.fuelOut {
			f.fuelOut = true
			f.Vehicle.logger.Log("level", "notice", "flight", "fuel depleted", "date", f.CurrentDT)
		}
	}
	if f.targetDistance() < arrivalTolerance {
		f.arrived = true
	}
	for i, b := range f.bodies {
		Δ := []float64{f.R[0] - f.positions[i][0], f.R[1] - f.positions[i][1], f.R[2] - f.positions[i][2]}
		if norm(Δ) < b.Radius {
			f.collided = true
			f.Vehicle.logger.Log("level", "critical", "flight", "collided", "body", b.Name, "date", f.CurrentDT)
			break
		}
	}
	if f.histChan != nil {
		f.histChan <- FlightRecord{DT: f.CurrentDT, Craft: f.Vehicle.Name,
			R: append([]float64{}, f.R...), V: append([]float64{}, f.V...), FuelMass: f.Vehicle.FuelMass}
	}
}

// Func implements the differential equation of a powered flight.
func (f *Flight) Func(t float64, s []float64) []float64 {
	fDot := make([]float64, 7)
	r := s[:3]
	v := s[3:6]
	copy(fDot[:3], v)
	acc := fieldAt(r, f.bodies, f.positions)
	if s[6] > 0 && !f.arrived {
		dir, mag := thrustFrom(f.law, FlightState{R: r, V: v, Target: f.target, Bodies: f.bodies, Positions: f.positions})
		for k := 0; k < 3; k++ {
			acc[k] += mag * dir[k]
		}
		fDot[6] = -mag * f.Vehicle.Mass() * planFuelEfficiency
	}
	if f.relativistic {
		speed := norm(v)
		if γ := lorentzFactor(speed); speed >= relativisticFloor && γ <= lorentzCap {
			for k := 0; k < 3; k++ {
				acc[k] /= γ
			}
		}
	}
	copy(fDot[3:6], acc)
	for i := 0; i < 7; i++ {
		if math.IsNaN(fDot[i]) {
			panic(fmt.Errorf("fDot[%d]=NaN @ t=%f\tstate: %+v", i, t, s))
		}
	}
	return fDot
}
