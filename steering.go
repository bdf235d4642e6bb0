package orrery

import "math"

// ControlLaw defines an enum of steering laws.
type ControlLaw uint8

const (
	coast ControlLaw = iota + 1
	directApproach
	swingByBlend
	inertiaBlend
	fullApproach
)

func (cl ControlLaw) String() string {
	switch cl {
	case coast:
		return "coast"
	case directApproach:
		return "direct"
	case swingByBlend:
		return "swing-by"
	case inertiaBlend:
		return "inertia"
	case fullApproach:
		return "approach"
	}
	panic("cannot stringify unknown control law")
}

const (
	// soiExpansion widens a body's sphere of influence for swing-by
	// opportunities: gravity shapes the path well before it dominates it.
	soiExpansion = 1.5
	// swingByGain converts dominant-body pull times ship speed into a blend
	// weight.
	swingByGain = 1e4
	// swingByCap keeps some target seeking even deep in a gravity well.
	swingByCap = 0.75
	// inertiaSpeedRef is the speed in km/s at which steering authority is
	// fully inertia limited.
	inertiaSpeedRef = 50.0
	inertiaCap      = 0.9
)

// FlightState is the snapshot a steering law sees at one planner step: the
// ship state, the target point, and the gravity field sources.
type FlightState struct {
	R, V      []float64
	Target    []float64
	Bodies    []CelestialBody
	Positions [][]float64
}

// SteeringLaw defines a steering law interface.
type SteeringLaw interface {
	Steer(st FlightState) []float64
	Type() ControlLaw
	Reason() string
}

// GenericLaw partially defines a SteeringLaw.
type GenericLaw struct {
	reason string
	cl     ControlLaw
}

// Reason implements the SteeringLaw interface.
func (cl GenericLaw) Reason() string {
	return cl.reason
}

// Type implements the SteeringLaw interface.
func (cl GenericLaw) Type() ControlLaw {
	return cl.cl
}

func newGenericLaw(cl ControlLaw) GenericLaw {
	return GenericLaw{cl.String(), cl}
}

/* Let's define the steering laws. */

// Coast is a steering law which does not steer.
type Coast struct {
	GenericLaw
}

// NewCoast returns a Coast law.
func NewCoast() Coast {
	return Coast{newGenericLaw(coast)}
}

// Steer implements the SteeringLaw interface.
func (cl Coast) Steer(st FlightState) []float64 {
	return []float64{0, 0, 0}
}

// DirectApproach points straight at the target.
type DirectApproach struct {
	GenericLaw
}

// NewDirectApproach returns a DirectApproach law.
func NewDirectApproach() DirectApproach {
	return DirectApproach{newGenericLaw(directApproach)}
}

// Steer implements the SteeringLaw interface.
func (cl DirectApproach) Steer(st FlightState) []float64 {
	return unit([]float64{st.Target[0] - st.R[0], st.Target[1] - st.R[1], st.Target[2] - st.R[2]})
}

// dominantSource returns the index of the strongest gravity source at the
// ship position and its pull in km/s², or -1 if there is none.
func dominantSource(st FlightState) (int, float64) {
	dominant, strongest := -1, 0.0
	for i, b := range st.Bodies {
		Δ := []float64{st.Positions[i][0] - st.R[0], st.Positions[i][1] - st.R[1], st.Positions[i][2] - st.R[2]}
		d := norm(Δ)
		if d < b.Radius {
			continue
		}
		if g := b.GM() / (d * d); g > strongest {
			dominant, strongest = i, g
		}
	}
	return dominant, strongest
}

// SwingBy bends a base direction toward the cross product of the target and
// dominant-source directions while inside the expanded sphere of influence,
// proportionally to the source's pull and the ship's speed. This trades a
// straight approach for an opportunistic gravity assist.
type SwingBy struct {
	base SteeringLaw
	GenericLaw
}

// NewSwingBy returns a SwingBy law wrapped around a base law.
func NewSwingBy(base SteeringLaw) SwingBy {
	return SwingBy{base, newGenericLaw(swingByBlend)}
}

// Steer implements the SteeringLaw interface.
func (cl SwingBy) Steer(st FlightState) []float64 {
	dir := cl.base.Steer(st)
	dominant, pull := dominantSource(st)
	if dominant < 0 {
		return dir
	}
	body := st.Bodies[dominant]
	Δ := []float64{st.Positions[dominant][0] - st.R[0], st.Positions[dominant][1] - st.R[1], st.Positions[dominant][2] - st.R[2]}
	if d := norm(Δ); body.SOI > 0 && d > soiExpansion*body.SOI {
		return dir
	}
	swing := unit(cross(dir, unit(Δ)))
	if norm(swing) == 0 {
		// Target dead ahead through the well: nothing to bend around.
		return dir
	}
	weight := math.Min(swingByCap, pull*norm(st.V)*swingByGain)
	blended := make([]float64, 3)
	for k := 0; k < 3; k++ {
		blended[k] = (1-weight)*dir[k] + weight*swing[k]
	}
	return unit(blended)
}

// Inertia drags a base direction toward the current velocity direction as
// speed builds: a fast ship cannot point anywhere it likes.
type Inertia struct {
	base SteeringLaw
	GenericLaw
}

// NewInertia returns an Inertia law wrapped around a base law.
func NewInertia(base SteeringLaw) Inertia {
	return Inertia{base, newGenericLaw(inertiaBlend)}
}

// Steer implements the SteeringLaw interface.
func (cl Inertia) Steer(st FlightState) []float64 {
	dir := cl.base.Steer(st)
	speed := norm(st.V)
	if speed == 0 {
		return dir
	}
	weight := math.Min(inertiaCap, speed/inertiaSpeedRef)
	vDir := unit(st.V)
	blended := make([]float64, 3)
	for k := 0; k < 3; k++ {
		blended[k] = (1-weight)*dir[k] + weight*vDir[k]
	}
	return unit(blended)
}

// NewApproachLaw returns the planner's full steering stack: direct to
// target, bent for swing-by opportunities, then inertia limited.
func NewApproachLaw() SteeringLaw {
	return approachLaw{NewInertia(NewSwingBy(NewDirectApproach())), newGenericLaw(fullApproach)}
}

type approachLaw struct {
	stack SteeringLaw
	GenericLaw
}

// Steer implements the SteeringLaw interface.
func (cl approachLaw) Steer(st FlightState) []float64 {
	return cl.stack.Steer(st)
}
