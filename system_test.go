package orrery

import (
	"math"
	"testing"

	kitlog "github.com/go-kit/log"
	"gonum.org/v1/gonum/floats/scalar"
)

func testSystem(t *testing.T) *System {
	t.Helper()
	sys := BuildSolarSystem(NewClockFromJD(J2000))
	sys.SetLogger(kitlog.NewNopLogger())
	return sys
}

func TestSystemRegistration(t *testing.T) {
	sys := NewSystem(NewClockFromJD(J2000))
	sys.SetLogger(kitlog.NewNopLogger())
	if err := sys.RegisterCentral(Sun); err != nil {
		t.Fatalf("registering the Sun failed: %s", err)
	}
	if err := sys.RegisterCentral(Earth); err == nil {
		t.Fatal("second central body did not fail")
	}
	els, _ := ElementsFromSecular("Earth")
	if err := sys.RegisterKeplerian(Earth, els); err != nil {
		t.Fatalf("registering Earth failed: %s", err)
	}
	if err := sys.RegisterKeplerian(Earth, els); err == nil {
		t.Fatal("duplicate registration did not fail")
	}
	if sys.Len() != 2 {
		t.Fatalf("expected 2 bodies, got %d", sys.Len())
	}
	names := sys.Names()
	if names[0] != "Sun" || names[1] != "Earth" {
		t.Fatalf("unexpected registration order: %+v", names)
	}
	t.Logf("[OK] %s", sys.Mode())
}

func TestSystemSeedRejection(t *testing.T) {
	sys := NewSystem(NewClockFromJD(J2000))
	sys.SetLogger(kitlog.NewNopLogger())
	hyperbolic := OrbitalElements{a: AU, e: 1.2, periodDays: 365}
	if err := sys.RegisterKeplerian(Earth, hyperbolic); err == nil {
		t.Fatal("hyperbolic seed did not fail")
	}
	parabolic := OrbitalElements{a: AU, e: 1.0, periodDays: 365}
	if err := sys.RegisterKeplerian(Earth, parabolic); err == nil {
		t.Fatal("parabolic seed did not fail")
	}
	static := OrbitalElements{a: AU, e: 0.1, periodDays: 0}
	if err := sys.RegisterKeplerian(Earth, static); err == nil {
		t.Fatal("zero period seed did not fail")
	}
	degenerate := OrbitalElements{a: 0, e: 0.1, periodDays: 365}
	if err := sys.RegisterKeplerian(Earth, degenerate); err == nil {
		t.Fatal("zero semi-major axis seed did not fail")
	}
	nameless := CelestialBody{Radius: 1, Mass: 1}
	els, _ := ElementsFromSecular("Earth")
	if err := sys.RegisterKeplerian(nameless, els); err == nil {
		t.Fatal("nameless body did not fail")
	}
	if sys.Len() != 0 {
		t.Fatalf("rejected seeds leaked into the arena: %d bodies", sys.Len())
	}
}

func TestSystemTickKeplerian(t *testing.T) {
	sys := testSystem(t)
	sys.Tick(0) // anchor only
	before, err := sys.State("Earth")
	if err != nil {
		t.Fatalf("could not read Earth: %s", err)
	}
	elapsed := sys.Tick(86400 * 1000) // one wall day at scale 1
	if !scalar.EqualWithinAbs(elapsed, 86400, 1e-9) {
		t.Fatalf("expected one simulated day, got %f s", elapsed)
	}
	after, err := sys.State("Earth")
	if err != nil {
		t.Fatalf("could not read Earth: %s", err)
	}
	moved := 0.0
	for i := 0; i < 3; i++ {
		moved += math.Abs(after.R[i] - before.R[i])
	}
	// Earth covers about 2.5 million km per day along its orbit.
	if moved < 1e6 {
		t.Fatalf("Earth barely moved over a day: %f km", moved)
	}
	sun, _ := sys.State("Sun")
	if norm(sun.R) != 0 {
		t.Fatalf("central body drifted in Keplerian mode: %+v", sun.R)
	}
	if after.Spin == before.Spin {
		t.Fatal("Earth spin did not advance")
	}
	els, _ := sys.Elements("Earth")
	seed, _ := ElementsFromSecular("Earth")
	wantM := wrap2π(seed.MeanAnomaly() + seed.MeanMotion()*86400)
	if !scalar.EqualWithinAbs(els.MeanAnomaly(), wantM, 1e-9) {
		t.Fatalf("mean anomaly after one day: %f, expected %f", els.MeanAnomaly(), wantM)
	}
	t.Logf("[OK] Earth moved %.0f km in one day", moved)
}

func TestSystemTickPaused(t *testing.T) {
	sys := testSystem(t)
	sys.Tick(0)
	sys.Tick(10_000)
	before, _ := sys.State("Mars")
	if elapsed := sys.Tick(10_000); elapsed != 0 {
		t.Fatalf("stalled wall clock advanced the simulation by %f s", elapsed)
	}
	if elapsed := sys.Tick(5_000); elapsed != 0 {
		t.Fatalf("rewound wall clock advanced the simulation by %f s", elapsed)
	}
	after, _ := sys.State("Mars")
	if ok := vectorsEqual(after.R, before.R); !ok {
		t.Fatalf("Mars moved while paused: %+v != %+v", after.R, before.R)
	}
	sys.Clock().SetTimeScale(0)
	if elapsed := sys.Tick(1_000_000); elapsed != 0 {
		t.Fatalf("zero time scale advanced the simulation by %f s", elapsed)
	}
}

func TestSystemTimeScale(t *testing.T) {
	sys := testSystem(t)
	sys.Clock().SetTimeScale(86400) // one day per wall second
	sys.Tick(0)
	elapsed := sys.Tick(1000)
	if !scalar.EqualWithinAbs(elapsed, 86400, 1e-9) {
		t.Fatalf("expected one simulated day from one scaled second, got %f s", elapsed)
	}
	if jd := sys.Clock().JulianDate(); !scalar.EqualWithinAbs(jd, J2000+1, 1e-9) {
		t.Fatalf("clock did not gain a day: %f", jd)
	}
}

func TestSystemModeSwitch(t *testing.T) {
	sys := testSystem(t)
	sys.Tick(0)
	sys.Tick(1000)
	kepler, _ := sys.State("Venus")
	sys.SetMode(NBody)
	if sys.Mode() != NBody {
		t.Fatal("mode did not switch")
	}
	seeded, _ := sys.State("Venus")
	// Entering N-body mode re-derives state from the elements, so the
	// position must agree with the closed-form one.
	if ok := vectorsEqual(seeded.R, kepler.R); !ok {
		t.Fatalf("N-body seed drifted from the Keplerian state: %+v != %+v", seeded.R, kepler.R)
	}
	if norm(seeded.V) < 30 || norm(seeded.V) > 40 {
		t.Fatalf("Venus orbital speed out of range: %f km/s", norm(seeded.V))
	}
	before := seeded
	sys.Tick(61_000) // one minute integrated
	after, _ := sys.State("Venus")
	if ok := vectorsEqual(after.R, before.R); ok {
		t.Fatal("Venus did not move under integration")
	}
	sys.SetMode(Keplerian)
	sys.SetMode(Keplerian) // no-op switch
	if sys.Mode() != Keplerian {
		t.Fatal("mode did not switch back")
	}
}

func TestSystemNBodyCentralPull(t *testing.T) {
	sys := testSystem(t)
	sys.SetMode(NBody)
	sys.Tick(0)
	earth0, _ := sys.State("Earth")
	r0 := norm(earth0.R)
	// A thousand one-minute ticks: Earth must stay bound near 1 AU.
	wall := int64(0)
	for i := 0; i < 1000; i++ {
		wall += 60_000
		sys.Tick(wall)
	}
	earth, _ := sys.State("Earth")
	r := norm(earth.R)
	if math.Abs(r-r0)/r0 > 0.01 {
		t.Fatalf("Earth radius drifted more than 1%% over 1000 minutes: %f -> %f km", r0, r)
	}
	t.Logf("[OK] Earth radius %f -> %f km", r0, r)
}

func TestSystemRelativisticToggle(t *testing.T) {
	classic := testSystem(t)
	curved := testSystem(t)
	curved.SetRelativistic(true)
	if !curved.Relativistic() || classic.Relativistic() {
		t.Fatal("relativity toggle state wrong")
	}
	classic.Tick(0)
	curved.Tick(0)
	wall := int64(0)
	for i := 0; i < 50; i++ {
		wall += 86400_000
		classic.Tick(wall)
		curved.Tick(wall)
	}
	a, _ := classic.Elements("Mercury")
	b, _ := curved.Elements("Mercury")
	if a.CumulativePrecession() != 0 {
		t.Fatalf("classic run accumulated precession: %f arcsec", a.CumulativePrecession())
	}
	if b.CumulativePrecession() == 0 {
		t.Fatal("relativistic run accumulated no precession")
	}
	if a.Perihelion() == b.Perihelion() {
		t.Fatal("perihelion identical with and without precession")
	}
}

func TestSystemSnapshotIsolation(t *testing.T) {
	sys := testSystem(t)
	sys.Tick(0)
	snaps := sys.Snapshot()
	if len(snaps) != sys.Len() {
		t.Fatalf("expected %d snapshots, got %d", sys.Len(), len(snaps))
	}
	var earth *BodySnapshot
	for i := range snaps {
		if snaps[i].Name == "Earth" {
			earth = &snaps[i]
		}
	}
	if earth == nil {
		t.Fatal("Earth missing from snapshot")
	}
	if speed := norm(earth.V); speed < 29 || speed > 31 {
		t.Fatalf("Earth snapshot speed out of range: %f km/s", speed)
	}
	earth.R[0] += 1e9
	earth.V[0] += 1e9
	state, _ := sys.State("Earth")
	if state.R[0] == earth.R[0] || state.V[0] == earth.V[0] {
		t.Fatal("snapshot mutation leaked into the arena")
	}
}

func TestSystemLookupErrors(t *testing.T) {
	sys := testSystem(t)
	if _, err := sys.Body("Vesta"); err == nil {
		t.Fatal("unknown body lookup did not fail")
	}
	if _, err := sys.Elements("Vesta"); err == nil {
		t.Fatal("unknown elements lookup did not fail")
	}
	if _, err := sys.State("Vesta"); err == nil {
		t.Fatal("unknown state lookup did not fail")
	}
	if _, err := sys.Orientation("Vesta"); err == nil {
		t.Fatal("unknown orientation lookup did not fail")
	}
	if _, err := sys.PlanTrajectoryTo([]float64{0, 0, 0}, []float64{0, 0, 0}, 1e3, "Vesta"); err == nil {
		t.Fatal("planning to an unknown body did not fail")
	}
}

func TestSystemOrientation(t *testing.T) {
	sys := testSystem(t)
	uranus, err := sys.Orientation("Uranus")
	if err != nil {
		t.Fatalf("could not read Uranus orientation: %s", err)
	}
	r, c := uranus.Dims()
	if r != 3 || c != 3 {
		t.Fatalf("orientation is not 3x3: %dx%d", r, c)
	}
	rotated := MxV33(uranus, []float64{1, 0, 0})
	if norm(rotated) < 0.999 || norm(rotated) > 1.001 {
		t.Fatalf("orientation does not preserve norms: %f", norm(rotated))
	}
	assertPanic(t, func() {
		_ = SimulationMode(99).String()
	})
	assertPanic(t, func() {
		_ = Propagation(99).String()
	})
	t.Logf("[OK] modes %s and %s", Keplerian, NBody)
}

func TestSystemPlanToBody(t *testing.T) {
	sys := testSystem(t)
	sys.Tick(0)
	earth, _ := sys.State("Earth")
	start := []float64{earth.R[0] + 50, earth.R[1], earth.R[2]}
	plan, err := sys.PlanTrajectoryTo(start, []float64{0, 0, 0}, 2e3, "Earth")
	if err != nil {
		t.Fatalf("planning to Earth failed: %s", err)
	}
	if !plan.Success {
		t.Fatalf("a 50 km hop to Earth failed after %d steps", plan.Steps)
	}
	t.Logf("[OK] reached Earth in %s with %f kg fuel", plan.EstimatedTime, plan.Fuel)
}
