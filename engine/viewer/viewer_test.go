package viewer

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/composer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/motion"
	"github.com/Carmen-Shannon/oxy-viewer/engine/pass"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const dt = float32(1.0 / 60)

func testScene() scene.Scene {
	return scene.NewScene("viewer test", scene.WithMeshes(
		scene.NewPlane("floor", mgl32.Vec3{0, -1, 0}, 12, 12, common.RGBHex(0x909090)),
		scene.NewBox("box", mgl32.Vec3{}, mgl32.Vec3{2, 2, 2}, common.RGBHex(0x3060c0)),
	))
}

func newTestViewer(t *testing.T, w, h int, options ...ViewerBuilderOption) Viewer {
	t.Helper()
	ctrl := camera.NewCameraController(
		camera.WithSmoothTime(0),
		camera.WithRadius(10),
		camera.WithAzimuth(0.5),
		camera.WithElevation(0.4),
	)
	cam := camera.NewCamera(camera.WithController(ctrl))
	opts := append([]ViewerBuilderOption{WithSize(w, h), WithWorkers(2), WithCamera(cam)}, options...)
	return NewViewer(testScene(), opts...)
}

// settle ticks until the viewer stops rendering, failing after limit ticks.
func settle(t *testing.T, v Viewer, limit int) int {
	t.Helper()
	for i := 0; i < limit; i++ {
		rendered, err := v.Tick(dt)
		require.NoError(t, err)
		if !rendered {
			return i
		}
	}
	t.Fatalf("viewer still rendering after %d ticks", limit)
	return limit
}

func TestInitialState(t *testing.T) {
	v := newTestViewer(t, 16, 12)
	chain := v.Composer().Chain()

	assert.Equal(t, composer.Interactive, v.Mode())
	assert.True(t, chain.AmbientOcclusion.Enabled())
	assert.False(t, chain.Jittered.Swap())
	assert.True(t, v.AllowTAA())
	assert.Zero(t, v.AccumulatedFrames())
	assert.Equal(t, 16, v.Output().Width())
}

func TestSettleAccumulateSuppressAndWake(t *testing.T) {
	v := newTestViewer(t, 24, 18)
	reproj := v.Composer().Chain().Reprojection

	// Two stationary frames settle; the third switches to accumulation.
	for i := 0; i < 2; i++ {
		rendered, err := v.Tick(dt)
		require.NoError(t, err)
		assert.True(t, rendered)
		assert.Equal(t, composer.Interactive, v.Mode())
	}
	rendered, err := v.Tick(dt)
	require.NoError(t, err)
	assert.True(t, rendered)
	assert.Equal(t, composer.Accumulating, v.Mode())
	assert.Equal(t, pass.Seeded, reproj.State())
	assert.Equal(t, 1, v.AccumulatedFrames())

	settle(t, v, 200)
	assert.Equal(t, DefaultSuppressAfter+1, v.AccumulatedFrames())
	assert.Equal(t, composer.Accumulating, v.Mode())

	before := v.Stats().Rendered
	for i := 0; i < 5; i++ {
		rendered, err := v.Tick(dt)
		require.NoError(t, err)
		assert.False(t, rendered)
	}
	assert.Equal(t, before, v.Stats().Rendered)

	v.RequestRender()
	rendered, err = v.Tick(dt)
	require.NoError(t, err)
	assert.True(t, rendered, "a requested render is honoured once")
	rendered, _ = v.Tick(dt)
	assert.False(t, rendered)

	// A zoom changes the framing radius and leaves Still at once.
	v.Camera().Controller().Zoom(0.1)
	rendered, err = v.Tick(dt)
	require.NoError(t, err)
	assert.True(t, rendered)
	assert.Equal(t, composer.Interactive, v.Mode())
	assert.Zero(t, v.AccumulatedFrames())
	assert.Equal(t, motion.Moving, v.Detector().State())
}

func TestStillCameraAccumulatesFromAnyPose(t *testing.T) {
	poses := [][2]float32{{0.62, -0.21}, {0, 0}, {3.1, 1.2}, {-2.4, -1.3}}
	for i := 0; i < 16; i++ {
		poses = append(poses, [2]float32{float32(i) * 0.41, float32(i%7-3) * 0.17})
	}
	for _, pose := range poses {
		ctrl := camera.NewCameraController(
			camera.WithSmoothTime(0),
			camera.WithOrbit(10, pose[0], pose[1]),
		)
		v := NewViewer(testScene(),
			WithSize(8, 6),
			WithWorkers(1),
			WithCamera(camera.NewCamera(camera.WithController(ctrl))),
		)
		for i := 0; i < 10; i++ {
			_, err := v.Tick(dt)
			require.NoError(t, err)
		}
		assert.Equal(t, composer.Accumulating, v.Mode(), "azimuth %v elevation %v", pose[0], pose[1])
	}
}

func TestDisallowedTAAIgnoresMotion(t *testing.T) {
	v := newTestViewer(t, 16, 12)
	v.SetAllowTAA(false)
	assert.False(t, v.AllowTAA())
	assert.False(t, v.Config().Current().TAAAllowed)

	for i := 0; i < 10; i++ {
		_, err := v.Tick(dt)
		require.NoError(t, err)
	}
	assert.True(t, v.Detector().Still())
	assert.Equal(t, composer.Interactive, v.Mode())

	v.SetAllowTAA(true)
	assert.Equal(t, composer.Accumulating, v.Mode(), "re-allowing while still accumulates")
}

func TestEnableSAOTogglesPassAndSwap(t *testing.T) {
	v := newTestViewer(t, 16, 12)
	chain := v.Composer().Chain()

	v.EnableSAO(false)
	assert.False(t, chain.AmbientOcclusion.Enabled())
	assert.True(t, chain.Jittered.Swap())
	assert.False(t, v.Config().Current().SAOEnabled)

	for i := 0; i < 6; i++ {
		_, err := v.Tick(dt)
		require.NoError(t, err)
	}
	require.Equal(t, composer.Accumulating, v.Mode())
	assert.True(t, chain.Reprojection.RenderToScreen())

	v.EnableSAO(true)
	assert.True(t, chain.AmbientOcclusion.Enabled())
	assert.False(t, chain.Jittered.Swap())
	assert.Zero(t, v.AccumulatedFrames())
	assert.Equal(t, pass.Uninitialized, chain.Reprojection.State())
}

func TestConfigChangeRestartsAccumulation(t *testing.T) {
	v := newTestViewer(t, 16, 12)
	for i := 0; i < 10; i++ {
		_, err := v.Tick(dt)
		require.NoError(t, err)
	}
	require.Equal(t, composer.Accumulating, v.Mode())
	require.NotZero(t, v.AccumulatedFrames())

	_, changed, err := v.Config().Update(func(c *config.PipelineConfig) { c.Intensity = 0.5 })
	require.NoError(t, err)
	require.True(t, changed)

	chain := v.Composer().Chain()
	assert.Zero(t, v.AccumulatedFrames())
	assert.Equal(t, pass.Uninitialized, chain.Reprojection.State())
	assert.Equal(t, float32(0.5), chain.AmbientOcclusion.Params().Intensity)
	assert.Equal(t, composer.Accumulating, v.Mode(), "tuning does not leave accumulation")

	require.NoError(t, v.SetExposure(2))
	assert.Equal(t, float32(2), v.Renderer().Exposure())
	assert.Error(t, v.SetExposure(0))
	assert.Equal(t, float32(2), v.Renderer().Exposure())
}

func TestCorrectionScalesOcclusionAndFarPlane(t *testing.T) {
	v := newTestViewer(t, 16, 12)
	_, err := v.Tick(dt)
	require.NoError(t, err)

	d := v.Scene().Bounds().MaxDistance(v.Camera().Position())
	assert.InDelta(t, d, v.Camera().Far(), 1e-4)
	assert.InDelta(t, d, v.Composer().Chain().AmbientOcclusion.Params().Scale, 1e-4)

	_, _, err = v.Config().Update(func(c *config.PipelineConfig) {
		c.Correction = false
		c.Scale = 50
	})
	require.NoError(t, err)
	_, err = v.Tick(dt)
	require.NoError(t, err)
	assert.Equal(t, float32(50), v.Composer().Chain().AmbientOcclusion.Params().Scale)
}

func TestResizePropagates(t *testing.T) {
	v := newTestViewer(t, 32, 24)
	for i := 0; i < 6; i++ {
		_, err := v.Tick(dt)
		require.NoError(t, err)
	}
	require.Equal(t, composer.Accumulating, v.Mode())

	v.Resize(40, 30)
	chain := v.Composer().Chain()
	w, h := v.Renderer().Size()
	assert.Equal(t, [2]int{40, 30}, [2]int{w, h})
	assert.Equal(t, 40, v.Output().Width())
	assert.Equal(t, 30, chain.Reprojection.Accumulated().Height())
	assert.Equal(t, 40, chain.AmbientOcclusion.Occlusion().Width())
	assert.InDelta(t, float32(40)/30, v.Camera().Aspect(), 1e-6)
	assert.Equal(t, pass.Uninitialized, chain.Reprojection.State())
	assert.Zero(t, v.AccumulatedFrames())

	rendered, err := v.Tick(dt)
	require.NoError(t, err)
	assert.True(t, rendered)
	assert.Equal(t, pass.Seeded, chain.Reprojection.State())
	assert.Zero(t, v.Stats().Deferred)

	v.Resize(0, 30)
	w, _ = v.Renderer().Size()
	assert.Equal(t, 40, w, "minimised sizes are ignored")
}

func TestPendingResizeDefersFrame(t *testing.T) {
	v := newTestViewer(t, 16, 12)
	v.Renderer().SetSize(20, 14)

	rendered, err := v.Tick(dt)
	require.NoError(t, err)
	assert.False(t, rendered)
	assert.Equal(t, uint64(1), v.Stats().Deferred)

	v.Resize(20, 14)
	rendered, err = v.Tick(dt)
	require.NoError(t, err)
	assert.True(t, rendered)
}

func TestLightChangeInvalidatesHistory(t *testing.T) {
	v := newTestViewer(t, 16, 12)
	for i := 0; i < 10; i++ {
		_, err := v.Tick(dt)
		require.NoError(t, err)
	}
	require.NotZero(t, v.AccumulatedFrames())

	v.SetLightDirection(mgl32.Vec3{-1, 1, 0})
	assert.Zero(t, v.AccumulatedFrames())
	assert.Equal(t, pass.Uninitialized, v.Composer().Chain().Reprojection.State())
	assert.InDelta(t, -0.7071, v.Scene().LightDirection().X(), 1e-3)

	rendered, err := v.Tick(dt)
	require.NoError(t, err)
	assert.True(t, rendered)
}

func TestEnableTAAOverridesMotion(t *testing.T) {
	v := newTestViewer(t, 16, 12)
	v.EnableTAA(true)
	assert.Equal(t, composer.Accumulating, v.Mode())
	v.InvalidateHistory()
	assert.Equal(t, pass.Uninitialized, v.Composer().Chain().Reprojection.State())
	v.EnableTAA(false)
	assert.Equal(t, composer.Interactive, v.Mode())
}

func TestSnapshotMatchesOutput(t *testing.T) {
	v := newTestViewer(t, 10, 6)
	_, err := v.Tick(dt)
	require.NoError(t, err)

	desc, staging := v.Snapshot()
	assert.Equal(t, uint32(10), desc.Size.Width)
	assert.Equal(t, uint32(6), staging.Height)
	assert.Equal(t, v.Output().Staging().Pixels, staging.Pixels)
}
