package orrery

import (
	"math"
	"testing"
	"time"
)

func silentCraft(name string, dry, fuel float64) *Spacecraft {
	sc := NewSpacecraft(name, dry, fuel)
	sc.logger = nopLogger
	return sc
}

func TestFlightShortHop(t *testing.T) {
	sc := silentCraft("Hopper", 1e3, 100)
	start := []float64{0, 0, 0}
	target := []float64{100, 0, 0}
	f := NewFlight(sc, start, []float64{0, 0, 0}, target, nil, nil, false, time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), ExportConfig{})
	f.Propagate()
	if !f.Arrived() {
		t.Fatalf("flight did not arrive, still %f km out", f.targetDistance())
	}
	if f.Collided() {
		t.Fatal("flight collided in empty space")
	}
	if sc.FuelMass >= 100 {
		t.Fatalf("flight burned no fuel: %f kg left", sc.FuelMass)
	}
	duration := f.CurrentDT.Sub(f.StartDT)
	if duration <= 0 || duration > time.Hour {
		t.Fatalf("unexpected hop duration: %s", duration)
	}
	t.Logf("[OK] arrived in %s with %f kg fuel left", duration, sc.FuelMass)
}

func TestFlightRelativisticHop(t *testing.T) {
	sc := silentCraft("Swift", 1e3, 100)
	f := NewFlight(sc, []float64{0, 0, 0}, []float64{0, 0, 0}, []float64{100, 0, 0}, nil, nil, true, time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), ExportConfig{})
	f.Propagate()
	if !f.Arrived() {
		t.Fatalf("relativistic flight did not arrive, still %f km out", f.targetDistance())
	}
}

func TestFlightCollision(t *testing.T) {
	sc := silentCraft("Icarus", 1e3, 1e3)
	bodies := []CelestialBody{Earth}
	positions := [][]float64{{0, 0, 0}}
	// Aiming straight through the planet.
	f := NewFlight(sc, []float64{8000, 0, 0}, []float64{0, 0, 0}, []float64{-8000, 0, 0}, bodies, positions, false, time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), ExportConfig{})
	f.Propagate()
	if !f.Collided() {
		t.Fatalf("flight through Earth did not collide, %f km out", f.targetDistance())
	}
	if f.Arrived() {
		t.Fatal("flight arrived through solid rock")
	}
}

func TestFlightFuelDepletion(t *testing.T) {
	sc := silentCraft("Sputterer", 100, 0.01)
	f := NewFlight(sc, []float64{0, 0, 0}, []float64{0, 0, 0}, []float64{1e5, 0, 0}, nil, nil, false, time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), ExportConfig{})
	f.Propagate()
	if sc.FuelMass != 0 {
		t.Fatalf("fuel not fully drained: %f kg", sc.FuelMass)
	}
	if f.Arrived() {
		t.Fatal("flight arrived on a hundredth of a kilo of fuel")
	}
	if f.Collided() {
		t.Fatal("flight collided in empty space")
	}
	// The ceiling must have cut the coast off.
	if elapsed := f.CurrentDT.Sub(f.StartDT); elapsed.Seconds() < planCeiling {
		t.Fatalf("flight gave up %s in, before the ceiling", elapsed)
	}
}

func TestFlightStopPropagation(t *testing.T) {
	sc := silentCraft("Aborted", 1e3, 1e3)
	f := NewFlight(sc, []float64{0, 0, 0}, []float64{0, 0, 0}, []float64{1e6, 0, 0}, nil, nil, false, time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), ExportConfig{})
	f.StopPropagation()
	f.Propagate()
	if f.Arrived() {
		t.Fatal("aborted flight arrived")
	}
	if f.CurrentDT.Sub(f.StartDT) > f.step {
		t.Fatalf("aborted flight kept flying: %s", f.CurrentDT.Sub(f.StartDT))
	}
}

func TestFlightStateRoundTrip(t *testing.T) {
	sc := silentCraft("Probe", 500, 50)
	f := NewFlight(sc, []float64{1, 2, 3}, []float64{4, 5, 6}, []float64{1e4, 0, 0}, nil, nil, false, time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), ExportConfig{})
	s := f.GetState()
	want := []float64{1, 2, 3, 4, 5, 6, 50}
	for i := range want {
		if s[i] != want[i] {
			t.Fatalf("state[%d] = %f, expected %f", i, s[i], want[i])
		}
	}
	s[0], s[6] = 10, -1
	f.SetState(0, s)
	if f.R[0] != 10 {
		t.Fatal("SetState did not set the position")
	}
	if sc.FuelMass != 0 {
		t.Fatalf("negative fuel was not clamped: %f", sc.FuelMass)
	}
}

func TestFlightFuncNaN(t *testing.T) {
	sc := silentCraft("Broken", 500, 50)
	f := NewFlight(sc, []float64{0, 0, 0}, []float64{0, 0, 0}, []float64{1e4, 0, 0}, nil, nil, false, time.Date(2017, 1, 1, 0, 0, 0, 0, time.UTC), ExportConfig{})
	assertPanic(t, func() {
		f.Func(0, []float64{math.NaN(), 0, 0, 0, 0, 0, 50})
	})
}
