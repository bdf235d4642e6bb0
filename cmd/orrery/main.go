package main

import (
	"flag"
	"log"
	"time"

	"github.com/helioforge/orrery"
	"gonum.org/v1/gonum/mat"
)

// This code only reads the scenario file, ticks the system and optionally
// plans and flies a trajectory to a registered body.

const defaultScenario = "~~unset~~"

var (
	scenario string
	duration time.Duration
	interval time.Duration
	target   string
	station  string
	export   bool
	verbose  bool
)

func init() {
	// Read flags
	flag.StringVar(&scenario, "scenario", defaultScenario, "scenario TOML file")
	flag.DurationVar(&duration, "duration", 24*time.Hour, "wall clock time to simulate")
	flag.DurationVar(&interval, "interval", time.Second, "wall clock tick interval")
	flag.StringVar(&target, "target", "", "plan a trajectory to this body and fly it")
	flag.StringVar(&station, "station", "", "track the target body from this builtin station (dss13, dss34, dss65)")
	flag.BoolVar(&export, "export", false, "export the plan, flight records and observations")
	flag.BoolVar(&verbose, "verbose", false, "log the final snapshot of every body")
}

func main() {
	flag.Parse()
	// Load scenario
	if scenario == defaultScenario {
		log.Fatal("no scenario provided")
	}
	sys, err := orrery.LoadScenario(scenario)
	if err != nil {
		log.Fatalf("%s: %s", scenario, err)
	}

	if station != "" && target == "" {
		log.Fatal("-station needs a -target body to track")
	}

	ticks := int(duration / interval)
	wall := int64(0)
	simulated := 0.0
	// Track the target along the run, about a hundred observations in total.
	var observations []orrery.Measurement
	var tracker orrery.Station
	if station != "" {
		tracker = orrery.BuiltinStationFromName(station)
	}
	every := ticks / 100
	if every == 0 {
		every = 1
	}
	for i := 0; i <= ticks; i++ {
		simulated += sys.Tick(wall)
		wall += interval.Milliseconds()
		if station != "" && i%every == 0 {
			m, err := sys.Observe(tracker, target)
			if err != nil {
				log.Fatalf("observing %s: %s", target, err)
			}
			observations = append(observations, m)
		}
	}
	log.Printf("simulated %.0f s over %d ticks, now at %s", simulated, ticks, sys.Clock().Date())

	if len(observations) > 0 {
		last := observations[len(observations)-1]
		log.Printf("%s: visible=%v range=%.0f km rangeRate=%.3f km/s", last, last.Visible, last.Range, last.RangeRate)
		if export {
			if filename, err := orrery.ExportMeasurements(observations, target); err != nil {
				log.Fatalf("exporting observations: %s", err)
			} else {
				log.Printf("observations saved to %s", filename)
			}
		}
	}

	if verbose {
		for _, snap := range sys.Snapshot() {
			log.Printf("%s\tR=%+v km\tV=%+v km/s", snap.Name, snap.R, snap.V)
		}
	}

	if target == "" {
		return
	}

	// Classical baselines before the planner runs: the Hohmann estimate and
	// the Lambert solution between the current positions.
	if vDep, vArr, tof, err := sys.EstimateTransfer("Earth", target); err == nil {
		log.Printf("Hohmann baseline to %s: vDep=%.3f km/s vArr=%.3f km/s tof=%s", target, vDep, vArr, tof)
		if Vi, _, lerr := sys.TransferVelocities("Earth", target, tof, orrery.TTypeAuto); lerr == nil {
			log.Printf("Lambert departure velocity: %v km/s", mat.Formatted(Vi.T()))
		}
	}

	// Fly from a megameter ahead of Earth when it is registered, from one AU
	// out otherwise.
	start := []float64{orrery.AU, 0, 0}
	startV := []float64{0, 0, 0}
	if state, err := sys.State("Earth"); err == nil {
		start = []float64{state.R[0] + 1e6, state.R[1], state.R[2]}
		startV = state.V
	}
	sc := orrery.NewSpacecraft("probe", 2e3, 500)
	plan, err := sys.PlanTrajectoryTo(start, startV, sc.Mass(), target)
	if err != nil {
		log.Fatalf("planning to %s: %s", target, err)
	}
	log.Printf("plan to %s: success=%v steps=%d tof=%s fuel=%.3f", target, plan.Success, plan.Steps, plan.EstimatedTime, plan.Fuel)
	if export {
		if filename, err := orrery.ExportPlan(plan, target); err != nil {
			log.Fatalf("exporting plan: %s", err)
		} else {
			log.Printf("plan saved to %s", filename)
		}
	}
	if !plan.Success {
		log.Printf("not flying a failed plan")
		return
	}

	snaps := sys.Snapshot()
	bodies := make([]orrery.CelestialBody, len(snaps))
	positions := make([][]float64, len(snaps))
	for i, snap := range snaps {
		body, err := sys.Body(snap.Name)
		if err != nil {
			log.Fatalf("%s vanished from the system: %s", snap.Name, err)
		}
		bodies[i] = body
		positions[i] = snap.R
	}
	tgt, err := sys.State(target)
	if err != nil {
		log.Fatalf("%s vanished from the system: %s", target, err)
	}
	conf := orrery.ExportConfig{Filename: target, AsCSV: export, Cosmo: export}
	orrery.NewFlight(sc, start, startV, tgt.R, bodies, positions, sys.Relativistic(), sys.Clock().Date(), conf).Propagate()
}
