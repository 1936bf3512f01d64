package motion

import (
	"sync"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	still  = Deltas{}
	moving = Deltas{Position: 0.5}
	zoom   = Deltas{Radius: 0.01}
	nudge  = Deltas{Rotation: 0.001}
)

type recorder struct {
	started, stopped int
}

func newRecorded(options ...DetectorBuilderOption) (Detector, *recorder) {
	d := NewDetector(options...)
	rec := &recorder{}
	d.OnMovementStarted(func() { rec.started++ })
	d.OnMovementStopped(func() { rec.stopped++ })
	return d, rec
}

func TestThreeStationaryFramesStopOnce(t *testing.T) {
	d, rec := newRecorded()

	assert.Equal(t, NoTransition, d.ObserveDeltas(still))
	assert.Equal(t, Settling, d.State())
	assert.Equal(t, NoTransition, d.ObserveDeltas(still))
	assert.Equal(t, MovementStopped, d.ObserveDeltas(still))
	assert.Equal(t, Still, d.State())
	assert.Equal(t, 1, rec.stopped)

	for i := 0; i < 10; i++ {
		assert.Equal(t, NoTransition, d.ObserveDeltas(still))
	}
	assert.Equal(t, 1, rec.stopped, "stopped fires once per settle")
	assert.Equal(t, 3, d.StillCount(), "counter does not grow while still")
}

func TestInterruptedSettleDoesNotStop(t *testing.T) {
	d, rec := newRecorded()

	d.ObserveDeltas(still)
	d.ObserveDeltas(still)
	assert.Equal(t, NoTransition, d.ObserveDeltas(moving))
	assert.Equal(t, 0, rec.stopped)
	assert.Equal(t, 1, d.StillCount())
	assert.Equal(t, Settling, d.State())
}

func TestCounterClampsAtZeroWhileMoving(t *testing.T) {
	d, _ := newRecorded()
	for i := 0; i < 5; i++ {
		d.ObserveDeltas(moving)
	}
	assert.Zero(t, d.StillCount())
	assert.Equal(t, Moving, d.State())

	d.ObserveDeltas(still)
	d.ObserveDeltas(still)
	assert.Equal(t, MovementStopped, d.ObserveDeltas(still))
}

func TestRadiusChangeLeavesStillImmediately(t *testing.T) {
	d, rec := newRecorded()
	for i := 0; i < 3; i++ {
		d.ObserveDeltas(still)
	}
	require.True(t, d.Still())

	assert.Equal(t, MovementStarted, d.ObserveDeltas(zoom))
	assert.Equal(t, 1, rec.started)
	assert.Equal(t, Moving, d.State())
	assert.Zero(t, d.StillCount())
}

func TestSmallMotionWhileStillNeedsCounterToDrain(t *testing.T) {
	d, rec := newRecorded()
	for i := 0; i < 3; i++ {
		d.ObserveDeltas(still)
	}
	require.True(t, d.Still())

	// count goes 3 -> 2 -> 1 -> 0 -> -1
	for i := 0; i < 3; i++ {
		assert.Equal(t, NoTransition, d.ObserveDeltas(nudge))
		assert.True(t, d.Still())
	}
	assert.Equal(t, MovementStarted, d.ObserveDeltas(nudge))
	assert.Equal(t, 1, rec.started)
}

func TestThresholdsAreStrict(t *testing.T) {
	th := DefaultThresholds()
	assert.True(t, th.Stationary(Deltas{Position: 0.0009}))
	assert.False(t, th.Stationary(Deltas{Position: 0.001}))
	assert.False(t, th.Stationary(Deltas{Rotation: 0.0001}))
	assert.False(t, th.Stationary(Deltas{Radius: 0.0001}))
}

func TestCompare(t *testing.T) {
	a := Sample{Position: mgl32.Vec3{1, 2, 3}, Orientation: mgl32.QuatIdent(), Radius: 5}
	b := Sample{
		Position:    mgl32.Vec3{1, 2, 5},
		Orientation: mgl32.QuatRotate(0.5, mgl32.Vec3{0, 1, 0}),
		Radius:      4,
	}
	d := Compare(a, b)
	assert.InDelta(t, 2, d.Position, 1e-6)
	assert.InDelta(t, 0.5, d.Rotation, 1e-3)
	assert.InDelta(t, 1, d.Radius, 1e-6)

	// q and -q are the same rotation
	neg := Sample{Orientation: mgl32.QuatIdent().Scale(-1)}
	assert.InDelta(t, 0, Compare(Sample{Orientation: mgl32.QuatIdent()}, neg).Rotation, 1e-3)
}

func TestCompareIdenticalOrientationIsZero(t *testing.T) {
	yaw := mgl32.QuatRotate(0.62, mgl32.Vec3{0, 1, 0})
	pitch := mgl32.QuatRotate(-0.21, mgl32.Vec3{1, 0, 0})
	poses := []mgl32.Quat{
		yaw.Mul(pitch).Normalize(),
		// norm slightly off unit, as float32 normalisation leaves it
		yaw.Mul(pitch).Normalize().Scale(0.99999994),
		mgl32.QuatRotate(2.9, mgl32.Vec3{0.3, 0.8, -0.5}.Normalize()),
	}
	for _, q := range poses {
		s := Sample{Position: mgl32.Vec3{3, 1, -2}, Orientation: q, Radius: 10}
		d := Compare(s, s)
		assert.Zero(t, d.Rotation)
		assert.True(t, DefaultThresholds().Stationary(d))
	}
}

func TestCompareResolvesSmallRotations(t *testing.T) {
	ident := Sample{Orientation: mgl32.QuatIdent()}
	for _, angle := range []float32{2e-4, 5e-4, 3e-3} {
		turned := Sample{Orientation: mgl32.QuatRotate(angle, mgl32.Vec3{0, 1, 0})}
		d := Compare(ident, turned)
		assert.InDelta(t, angle, d.Rotation, float64(angle)*1e-2)
		assert.False(t, DefaultThresholds().Stationary(d))
	}

	tiny := Sample{Orientation: mgl32.QuatRotate(5e-5, mgl32.Vec3{1, 0, 0})}
	assert.True(t, DefaultThresholds().Stationary(Compare(ident, tiny)))
}

func TestConcurrentObserveOfOneSampleStopsOnce(t *testing.T) {
	d, rec := newRecorded()
	s := Sample{Position: mgl32.Vec3{0, 2, 8}, Orientation: mgl32.QuatRotate(0.4, mgl32.Vec3{0, 1, 0}), Radius: 8}
	require.Equal(t, NoTransition, d.Observe(s))

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.Observe(s)
		}()
	}
	wg.Wait()

	assert.True(t, d.Still())
	assert.Equal(t, 1, rec.stopped)
	assert.Zero(t, rec.started)
}

func TestObserveUsesPreviousSample(t *testing.T) {
	base := Sample{Position: mgl32.Vec3{0, 0, 10}, Orientation: mgl32.QuatIdent(), Radius: 10}
	d, rec := newRecorded(WithInitialSample(base))

	for i := 0; i < 3; i++ {
		d.Observe(base)
	}
	assert.Equal(t, 1, rec.stopped)
	assert.Equal(t, base, d.Last())

	zoomed := base
	zoomed.Radius = 9
	assert.Equal(t, MovementStarted, d.Observe(zoomed))
}

func TestResetAndCustomThresholds(t *testing.T) {
	d, rec := newRecorded(WithThresholds(Thresholds{Position: 1, Rotation: 1, Radius: 1, Frames: 0}))

	assert.Equal(t, MovementStopped, d.ObserveDeltas(moving), "a single frame is enough and 0.5 is below 1")
	d.Reset()
	assert.Equal(t, Moving, d.State())
	assert.Zero(t, d.StillCount())
	assert.Equal(t, mgl32.QuatIdent(), d.Last().Orientation)

	d.ObserveDeltas(still)
	assert.Equal(t, 2, rec.stopped, "subscribers survive Reset")
}

func TestStrings(t *testing.T) {
	assert.Equal(t, "settling", Settling.String())
	assert.Equal(t, "movementStopped", MovementStopped.String())
	assert.Equal(t, "none", NoTransition.String())
}
