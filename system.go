package orrery

import (
	"fmt"
	"os"
	"time"

	kitlog "github.com/go-kit/log"
	"gonum.org/v1/gonum/mat"
)

// SimulationMode defines an enum of tick dispatch modes.
type SimulationMode uint8

// Propagation defines an enum of per-body propagation capabilities, resolved
// once at registration.
type Propagation uint8

const (
	// Keplerian advances element-bearing bodies along closed-form orbits.
	Keplerian SimulationMode = iota + 1
	// NBody advances every body through pairwise gravity integration.
	NBody
)

const (
	// PropagationKeplerian marks a body registered with orbital elements.
	PropagationKeplerian Propagation = iota + 1
	// PropagationIntegrated marks a body registered with raw state only.
	PropagationIntegrated
)

func (m SimulationMode) String() string {
	switch m {
	case Keplerian:
		return "keplerian"
	case NBody:
		return "n-body"
	}
	panic("cannot stringify unknown simulation mode")
}

func (p Propagation) String() string {
	switch p {
	case PropagationKeplerian:
		return "keplerian"
	case PropagationIntegrated:
		return "integrated"
	}
	panic("cannot stringify unknown propagation capability")
}

// arenaEntry is one body's full simulation record: immutable constants,
// element value, integrated state, and its propagation capability.
type arenaEntry struct {
	body  CelestialBody
	els   OrbitalElements
	state BodyState
	prop  Propagation
}

// BodySnapshot is the read-only view handed to visualization callers.
type BodySnapshot struct {
	Name string
	R, V []float64
	Spin float64
}

// System owns the simulation arena: the clock, the per-body element values
// and integrated states, and the dispatch mode. All mutation happens through
// Tick and the setters; snapshots are deep copies. Single writer per tick is
// assumed throughout.
type System struct {
	clock        *Clock
	mode         SimulationMode
	relativistic bool
	entries      []*arenaEntry
	index        map[string]int
	central      int
	logger       kitlog.Logger
}

// NewSystem returns an empty system on the given clock, in Keplerian mode
// with relativistic corrections off.
func NewSystem(clock *Clock) *System {
	klog := kitlog.NewLogfmtLogger(kitlog.NewSyncWriter(os.Stdout))
	klog = kitlog.With(klog, "subsys", "system")
	return &System{clock: clock, mode: Keplerian, index: make(map[string]int), central: -1, logger: klog}
}

// BuildSolarSystem returns a system populated with the Sun and the nine
// catalog bodies seeded from the secular model at J2000.
func BuildSolarSystem(clock *Clock) *System {
	sys := NewSystem(clock)
	if err := sys.RegisterCentral(Sun); err != nil {
		panic(err)
	}
	for _, body := range []CelestialBody{Mercury, Venus, Earth, Mars, Jupiter, Saturn, Uranus, Neptune, Pluto} {
		els, found := ElementsFromSecular(body.Name)
		if !found {
			panic(fmt.Errorf("catalog body %s has no secular row", body.Name))
		}
		if err := sys.RegisterKeplerian(body, els); err != nil {
			panic(err)
		}
	}
	return sys
}

// SetLogger changes the system logger.
func (sys *System) SetLogger(logger kitlog.Logger) {
	sys.logger = logger
}

// Clock returns the system clock.
func (sys *System) Clock() *Clock {
	return sys.clock
}

// Mode returns the current dispatch mode.
func (sys *System) Mode() SimulationMode {
	return sys.mode
}

// Relativistic returns whether relativistic corrections are applied.
func (sys *System) Relativistic() bool {
	return sys.relativistic
}

// SetRelativistic toggles relativistic corrections for the next tick.
func (sys *System) SetRelativistic(on bool) {
	sys.relativistic = on
}

// Len returns the number of registered bodies.
func (sys *System) Len() int {
	return len(sys.entries)
}

// Names returns the registered body names in registration order.
func (sys *System) Names() []string {
	names := make([]string, len(sys.entries))
	for i, e := range sys.entries {
		names[i] = e.body.Name
	}
	return names
}

func (sys *System) register(e *arenaEntry) error {
	if err := e.body.validate(); err != nil {
		return err
	}
	if _, dup := sys.index[e.body.Name]; dup {
		return fmt.Errorf("body '%s' already registered", e.body.Name)
	}
	sys.index[e.body.Name] = len(sys.entries)
	sys.entries = append(sys.entries, e)
	sys.logger.Log("level", "info", "registered", e.body.Name, "propagation", e.prop, "bodies", len(sys.entries))
	return nil
}

// RegisterCentral registers the central body, pinned at the origin and
// integrated in N-body mode. The first central registration wins; a second
// one is rejected.
func (sys *System) RegisterCentral(body CelestialBody) error {
	if sys.central >= 0 {
		return fmt.Errorf("central body '%s' already registered", sys.entries[sys.central].body.Name)
	}
	e := &arenaEntry{body: body, prop: PropagationIntegrated,
		state: BodyState{R: make([]float64, 3), V: make([]float64, 3)}}
	if err := sys.register(e); err != nil {
		return err
	}
	sys.central = sys.index[body.Name]
	return nil
}

// RegisterKeplerian registers a body that advances along orbital elements.
// Malformed seed data is rejected here, never mid-simulation: beyond the
// body constants, the elements must describe a closed ellipse with a real
// period.
func (sys *System) RegisterKeplerian(body CelestialBody, els OrbitalElements) error {
	if els.a <= 0 {
		return fmt.Errorf("%s: semi-major axis must be strictly positive, got %f", body.Name, els.a)
	}
	if els.e < 0 || els.e >= 1 {
		return fmt.Errorf("%s: eccentricity must be in [0,1), got %f", body.Name, els.e)
	}
	if els.periodDays <= 0 {
		return fmt.Errorf("%s: orbital period must be strictly positive, got %f days", body.Name, els.periodDays)
	}
	els = InitializeElements(els)
	R, V := RVFromElements(els, sys.centralGM())
	e := &arenaEntry{body: body, els: els, prop: PropagationKeplerian, state: BodyState{R: R, V: V}}
	return sys.register(e)
}

// RegisterState registers a body with raw position and velocity only. It can
// never propagate in Keplerian mode; in N-body mode it integrates like any
// other.
func (sys *System) RegisterState(body CelestialBody, R, V []float64) error {
	state := BodyState{R: append([]float64{}, R...), V: append([]float64{}, V...)}
	return sys.register(&arenaEntry{body: body, prop: PropagationIntegrated, state: state})
}

// centralBody returns the central body, or the Sun when none is registered.
func (sys *System) centralBody() CelestialBody {
	if sys.central >= 0 {
		return sys.entries[sys.central].body
	}
	return Sun
}

// centralGM returns the gravitational parameter of the central body, or the
// solar default when none is registered.
func (sys *System) centralGM() float64 {
	return sys.centralBody().GM()
}

// SetMode switches the dispatch mode. Entering N-body mode materializes
// fresh integrated states from the current elements, so the integrator picks
// up exactly where the closed-form orbits left off. Switching back resumes
// the elements as they stand.
func (sys *System) SetMode(mode SimulationMode) {
	if mode == sys.mode {
		return
	}
	if mode == NBody {
		for _, e := range sys.entries {
			if e.prop != PropagationKeplerian {
				continue
			}
			e.state.R, e.state.V = RVFromElements(e.els, sys.centralGM())
		}
	}
	sys.logger.Log("level", "notice", "mode", mode, "was", sys.mode)
	sys.mode = mode
}

// Tick advances the whole system from a wall clock reading in milliseconds
// and returns the elapsed simulated seconds. A non-advancing reading is a
// no-op beyond re-anchoring the clock.
func (sys *System) Tick(wallMillis int64) float64 {
	elapsed := sys.clock.Advance(wallMillis)
	if elapsed == 0 {
		return 0
	}
	switch sys.mode {
	case Keplerian:
		sys.tickKeplerian(elapsed)
	case NBody:
		sys.tickNBody(elapsed)
	}
	return elapsed
}

func (sys *System) tickKeplerian(elapsed float64) {
	T := sys.clock.CenturiesJ2000()
	μ := sys.centralGM()
	for _, e := range sys.entries {
		if e.prop != PropagationKeplerian {
			// Integrated-only bodies hold still under closed-form dispatch;
			// the central body is pinned at the origin by definition.
			e.state.Spin = wrap2π(e.state.Spin + e.body.SpinRate()*elapsed)
			continue
		}
		e.els = UpdateSecular(e.body.Name, e.els, T)
		if sys.relativistic {
			e.els = ApplyPrecession(e.els, T)
		}
		e.els, e.state.R = AdvanceOrbit(e.els, elapsed, μ, sys.relativistic)
		e.state.Spin = wrap2π(e.state.Spin + e.body.SpinRate()*elapsed)
	}
}

func (sys *System) tickNBody(elapsed float64) {
	bodies := make([]CelestialBody, len(sys.entries))
	els := make([]OrbitalElements, len(sys.entries))
	states := make([]BodyState, len(sys.entries))
	for i, e := range sys.entries {
		bodies[i] = e.body
		els[i] = e.els
		states[i] = e.state
	}
	NBodyStep(bodies, els, states, elapsed, sys.relativistic, sys.central)
	for i, e := range sys.entries {
		e.state = states[i]
	}
}

// stateAt returns a kinematically consistent deep copy of the i-th entry.
// Closed-form dispatch only maintains positions, so in Keplerian mode the
// velocities are recovered from the elements.
func (sys *System) stateAt(i int) BodyState {
	e := sys.entries[i]
	state := e.state.Copy()
	if sys.mode == Keplerian && e.prop == PropagationKeplerian {
		state.R, state.V = RVFromElements(e.els, sys.centralGM())
	}
	return state
}

// Snapshot returns deep copies of every body state for visualization.
func (sys *System) Snapshot() []BodySnapshot {
	snaps := make([]BodySnapshot, len(sys.entries))
	for i, e := range sys.entries {
		state := sys.stateAt(i)
		snaps[i] = BodySnapshot{Name: e.body.Name, R: state.R, V: state.V, Spin: state.Spin}
	}
	return snaps
}

// Body returns the physical constants of a registered body.
func (sys *System) Body(name string) (CelestialBody, error) {
	i, found := sys.index[name]
	if !found {
		return CelestialBody{}, fmt.Errorf("body '%s' not registered", name)
	}
	return sys.entries[i].body, nil
}

// Elements returns the current orbital elements of a registered body.
func (sys *System) Elements(name string) (OrbitalElements, error) {
	i, found := sys.index[name]
	if !found {
		return OrbitalElements{}, fmt.Errorf("body '%s' not registered", name)
	}
	return sys.entries[i].els, nil
}

// State returns a deep copy of the current state of a registered body.
func (sys *System) State(name string) (BodyState, error) {
	i, found := sys.index[name]
	if !found {
		return BodyState{}, fmt.Errorf("body '%s' not registered", name)
	}
	return sys.stateAt(i), nil
}

// Orientation returns the body-fixed to inertial rotation of a registered
// body: its axial tilt composed with the accumulated spin.
func (sys *System) Orientation(name string) (*mat.Dense, error) {
	i, found := sys.index[name]
	if !found {
		return nil, fmt.Errorf("body '%s' not registered", name)
	}
	e := sys.entries[i]
	tilt, _ := AxialTilt(e.body.Tilt)
	spin := R3(-e.state.Spin)
	var orientation mat.Dense
	orientation.Mul(tilt, spin)
	return &orientation, nil
}

// Observe measures a registered body from the given station. The station's
// host body must be registered too, since the observation geometry follows
// its position and spin state.
func (sys *System) Observe(s Station, target string) (Measurement, error) {
	host, err := sys.State(s.Host.Name)
	if err != nil {
		return Measurement{}, err
	}
	tgt, err := sys.State(target)
	if err != nil {
		return Measurement{}, err
	}
	dcm, err := sys.Orientation(s.Host.Name)
	if err != nil {
		return Measurement{}, err
	}
	rRel := make([]float64, 3)
	vRel := make([]float64, 3)
	for i := 0; i < 3; i++ {
		rRel[i] = tgt.R[i] - host.R[i]
		vRel[i] = tgt.V[i] - host.V[i]
	}
	m := s.PerformMeasurement(target, sys.clock.Date(), dcm, rRel, vRel)
	sys.logger.Log("level", "info", "station", s.Name, "target", target, "visible", m.Visible,
		"range", m.Range, "rangeRate", m.RangeRate, "el", m.Elevation)
	return m, nil
}

// EstimateTransfer returns the two-body Hohmann estimate between the current
// orbit radii of two registered element-bearing bodies: departure and
// arrival speeds on the transfer ellipse and its time of flight.
func (sys *System) EstimateTransfer(from, to string) (vDep, vArr float64, tof time.Duration, err error) {
	fromEls, err := sys.Elements(from)
	if err != nil {
		return 0, 0, 0, err
	}
	toEls, err := sys.Elements(to)
	if err != nil {
		return 0, 0, 0, err
	}
	if fromEls.a == 0 || toEls.a == 0 {
		return 0, 0, 0, fmt.Errorf("both %s and %s need orbital elements for a transfer estimate", from, to)
	}
	vDep, vArr, tof = Hohmann(OrbitRadius(fromEls), OrbitRadius(toEls), sys.centralBody())
	return vDep, vArr, tof, nil
}

// TransferVelocities solves the Lambert problem between the current positions
// of two registered bodies for the given time of flight.
func (sys *System) TransferVelocities(from, to string, tof time.Duration, ttype TransferType) (Vi, Vf *mat.VecDense, err error) {
	fromState, err := sys.State(from)
	if err != nil {
		return nil, nil, err
	}
	toState, err := sys.State(to)
	if err != nil {
		return nil, nil, err
	}
	Vi, Vf, _, err = Lambert(mat.NewVecDense(3, fromState.R), mat.NewVecDense(3, toState.R), tof, ttype, sys.centralBody())
	return Vi, Vf, err
}

// PlanTrajectoryTo runs the trajectory planner from a ship state to the
// current position of a registered body, against a frozen snapshot of the
// arena.
func (sys *System) PlanTrajectoryTo(start, startV []float64, vehicleMass float64, targetBody string) (Plan, error) {
	i, found := sys.index[targetBody]
	if !found {
		return Plan{}, fmt.Errorf("body '%s' not registered", targetBody)
	}
	bodies := make([]CelestialBody, len(sys.entries))
	positions := make([][]float64, len(sys.entries))
	for j, e := range sys.entries {
		bodies[j] = e.body
		positions[j] = e.state.R
	}
	target := sys.entries[i].state.R
	plan := PlanTrajectory(start, target, startV, vehicleMass, bodies, positions, sys.relativistic)
	sys.logger.Log("level", "notice", "planned", targetBody, "success", plan.Success,
		"steps", plan.Steps, "tof", plan.EstimatedTime, "fuel", plan.Fuel)
	return plan, nil
}
