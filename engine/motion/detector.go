// Package motion classifies the camera as moving or still from per-frame transform deltas,
// with hysteresis so a noisy controller does not flap between the two.
package motion

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl32"
)

// State is the detector state.
type State int

const (
	// Moving means the camera moved recently and no stationary frames are pending.
	Moving State = iota
	// Settling means stationary frames are being counted towards Still.
	Settling
	// Still means the camera is considered settled.
	Still
)

func (s State) String() string {
	switch s {
	case Moving:
		return "moving"
	case Settling:
		return "settling"
	case Still:
		return "still"
	}
	return "unknown"
}

// Transition is the event produced by one observation.
type Transition int

const (
	// NoTransition means the moving/still classification did not change.
	NoTransition Transition = iota
	// MovementStarted means the detector left Still.
	MovementStarted
	// MovementStopped means the detector entered Still.
	MovementStopped
)

func (t Transition) String() string {
	switch t {
	case MovementStarted:
		return "movementStarted"
	case MovementStopped:
		return "movementStopped"
	}
	return "none"
}

// Sample is one frame of camera telemetry.
type Sample struct {
	Position    mgl32.Vec3
	Orientation mgl32.Quat
	// Radius is the controller's framing distance (the orbit radius).
	Radius float32
}

// Deltas are the per-frame changes between two samples.
type Deltas struct {
	Position float32
	Rotation float32
	Radius   float32
}

// Thresholds configure the stationary test and the hysteresis length.
type Thresholds struct {
	Position float32
	Rotation float32
	Radius   float32
	// Frames is the number of stationary frames required to enter Still.
	Frames int
}

// DefaultThresholds returns 1e-3 position, 1e-4 rotation (radians), 1e-4 radius and 3 frames.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Position: 1e-3,
		Rotation: 1e-4,
		Radius:   1e-4,
		Frames:   3,
	}
}

// Stationary reports whether d is below every threshold.
func (t Thresholds) Stationary(d Deltas) bool {
	return d.Position < t.Position && d.Rotation < t.Rotation && d.Radius < t.Radius
}

// Detector is the camera motion state machine.
//
// Each stationary frame observed while not Still increments a counter. A non-stationary
// frame decrements it (never below zero while settling). Reaching Thresholds.Frames enters
// Still and emits MovementStopped once. While Still, a non-stationary frame decrements the
// counter and the detector leaves Still, emitting MovementStarted, as soon as the counter
// drops below zero or the radius changed at all.
type Detector interface {
	// Observe computes the deltas against the previous sample and feeds them to ObserveDeltas.
	//
	// Parameters:
	//   - s: the current camera sample
	//
	// Returns:
	//   - Transition: the event produced by this frame
	Observe(s Sample) Transition

	// ObserveDeltas advances the state machine with precomputed deltas.
	//
	// Parameters:
	//   - d: the per-frame deltas
	//
	// Returns:
	//   - Transition: the event produced by this frame
	ObserveDeltas(d Deltas) Transition

	// State returns the current state.
	State() State

	// Still reports whether the camera is considered settled.
	Still() bool

	// StillCount returns the hysteresis counter.
	StillCount() int

	// Last returns the most recent sample passed to Observe.
	Last() Sample

	// LastDeltas returns the deltas of the most recent observation.
	LastDeltas() Deltas

	// Thresholds returns the configured thresholds.
	Thresholds() Thresholds

	// Reset returns to Moving with a zero counter and zero last sample. Subscribers are kept.
	Reset()

	// OnMovementStarted registers cb to run after every MovementStarted transition.
	OnMovementStarted(cb func())

	// OnMovementStopped registers cb to run after every MovementStopped transition.
	OnMovementStopped(cb func())
}

type detector struct {
	mu *sync.Mutex

	thresholds Thresholds
	state      State
	count      int
	last       Sample
	lastDeltas Deltas

	onStarted []func()
	onStopped []func()
}

var _ Detector = &detector{}

// NewDetector creates a detector in the Moving state. The previous sample starts at the
// origin with identity orientation and zero radius.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Detector: the detector
func NewDetector(options ...DetectorBuilderOption) Detector {
	d := &detector{
		mu:         &sync.Mutex{},
		thresholds: DefaultThresholds(),
		last:       zeroSample(),
	}
	for _, opt := range options {
		opt(d)
	}
	return d
}

func zeroSample() Sample {
	return Sample{Orientation: mgl32.QuatIdent()}
}

// Compare returns the deltas from prev to cur. The rotation delta is the angle of the
// relative rotation conj(prev)*cur, treating q and -q as equal. It is evaluated in float64
// with atan2 so identical orientations give exactly zero and sub-milliradian turns resolve.
//
// Parameters:
//   - prev, cur: the two samples
//
// Returns:
//   - Deltas: position distance, rotation angle in radians and absolute radius change
func Compare(prev, cur Sample) Deltas {
	return Deltas{
		Position: cur.Position.Sub(prev.Position).Len(),
		Rotation: float32(rotationAngle(prev.Orientation, cur.Orientation)),
		Radius:   float32(math.Abs(float64(cur.Radius - prev.Radius))),
	}
}

// rotationAngle returns 2*atan2(|r.V|, |r.W|) for r = conj(a)*b.
func rotationAngle(a, b mgl32.Quat) float64 {
	aw, ax, ay, az := float64(a.W), float64(a.V[0]), float64(a.V[1]), float64(a.V[2])
	bw, bx, by, bz := float64(b.W), float64(b.V[0]), float64(b.V[1]), float64(b.V[2])

	rw := aw*bw + ax*bx + ay*by + az*bz
	// aw*bv - bw*av - av x bv
	rx := aw*bx - bw*ax - (ay*bz - az*by)
	ry := aw*by - bw*ay - (az*bx - ax*bz)
	rz := aw*bz - bw*az - (ax*by - ay*bx)

	return 2 * math.Atan2(math.Sqrt(rx*rx+ry*ry+rz*rz), math.Abs(rw))
}

func (d *detector) Observe(s Sample) Transition {
	d.mu.Lock()
	deltas := Compare(d.last, s)
	d.last = s
	return d.commit(deltas)
}

func (d *detector) ObserveDeltas(deltas Deltas) Transition {
	d.mu.Lock()
	return d.commit(deltas)
}

// commit advances the state machine and runs the subscribers of the resulting transition.
// Caller must hold the mutex; commit releases it before running callbacks.
func (d *detector) commit(deltas Deltas) Transition {
	d.lastDeltas = deltas
	t := d.advance(deltas)
	var callbacks []func()
	switch t {
	case MovementStarted:
		callbacks = append(callbacks, d.onStarted...)
	case MovementStopped:
		callbacks = append(callbacks, d.onStopped...)
	}
	d.mu.Unlock()

	for _, cb := range callbacks {
		cb()
	}
	return t
}

// advance applies one frame to the state machine. Caller must hold the mutex.
func (d *detector) advance(deltas Deltas) Transition {
	if d.thresholds.Stationary(deltas) {
		if d.state != Still {
			d.count++
		}
	} else if d.state == Still {
		d.count--
		if d.count < 0 || deltas.Radius != 0 {
			d.state = Moving
			d.count = 0
			return MovementStarted
		}
	} else {
		d.count = max(d.count-1, 0)
	}

	if d.state != Still {
		if d.count >= d.thresholds.Frames {
			d.state = Still
			return MovementStopped
		}
		if d.count > 0 {
			d.state = Settling
		} else {
			d.state = Moving
		}
	}
	return NoTransition
}

func (d *detector) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

func (d *detector) Still() bool {
	return d.State() == Still
}

func (d *detector) StillCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.count
}

func (d *detector) Last() Sample {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last
}

func (d *detector) LastDeltas() Deltas {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.lastDeltas
}

func (d *detector) Thresholds() Thresholds {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.thresholds
}

func (d *detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = Moving
	d.count = 0
	d.last = zeroSample()
	d.lastDeltas = Deltas{}
}

func (d *detector) OnMovementStarted(cb func()) {
	if cb == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onStarted = append(d.onStarted, cb)
}

func (d *detector) OnMovementStopped(cb func()) {
	if cb == nil {
		return
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.onStopped = append(d.onStopped, cb)
}
