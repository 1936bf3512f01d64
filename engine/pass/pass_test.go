package pass

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingScene fills the target with a colour and remembers what it saw.
type recordingScene struct {
	color   common.Color
	targets []*renderer.RenderTarget
	offsets [][2]float32
}

func (s *recordingScene) Draw(target *renderer.RenderTarget, cam camera.Camera) error {
	s.targets = append(s.targets, target)
	p := cam.ProjectionMatrix()
	s.offsets = append(s.offsets, [2]float32{p[8], p[9]})
	for i := range target.Pixels() {
		target.Pixels()[i] = s.color
	}
	return nil
}

func testCamera() camera.Camera {
	ctrl := camera.NewCameraController(
		camera.WithSmoothTime(0),
		camera.WithRadius(10),
		camera.WithAzimuth(0),
		camera.WithElevation(0),
	)
	return camera.NewCamera(camera.WithController(ctrl), camera.WithAspect(1), camera.WithFar(100))
}

func newTestRenderer(w, h int) renderer.Renderer {
	return renderer.NewRenderer(renderer.WithSize(w, h), renderer.WithWorkers(2))
}

func TestGeometryPassRestoresRendererState(t *testing.T) {
	r := newTestRenderer(4, 4)
	r.SetClearColor(common.Color{G: 1})
	r.SetClearAlpha(0.5)
	before := r.SaveState()

	sc := &recordingScene{color: common.White}
	p := NewGeometryPass(sc, testCamera(), WithGeometryBackground(common.Black))
	write := renderer.NewRenderTarget("write", 4, 4, renderer.WithDepth())
	read := renderer.NewRenderTarget("read", 4, 4, renderer.WithDepth())

	require.NoError(t, p.Render(r, write, read))
	assert.Equal(t, before, r.SaveState())
	require.Len(t, sc.targets, 1)
	assert.Same(t, write, sc.targets[0])
	assert.True(t, p.NeedsSwap())
}

func TestGeometryPassRestoresStateOnError(t *testing.T) {
	r := newTestRenderer(4, 4)
	before := r.SaveState()
	p := NewGeometryPass(&recordingScene{}, testCamera())
	small := renderer.NewRenderTarget("small", 2, 2)

	err := p.Render(r, small, small)
	assert.ErrorIs(t, err, renderer.ErrTargetSizeMismatch)
	assert.Equal(t, before, r.SaveState())
}

func TestGeometryPassToScreenPresentsWithGamma(t *testing.T) {
	r := newTestRenderer(2, 2)
	p := NewGeometryPass(&recordingScene{color: common.Color{R: 0.5, A: 1}}, testCamera())
	p.SetRenderToScreen(true)
	write := renderer.NewRenderTarget("write", 2, 2)

	require.NoError(t, p.Render(r, write, write))
	assert.Equal(t, float32(0.5), write.At(0, 0).R)
	assert.InDelta(t, 0.7354, r.Screen().At(0, 0).R, 1e-3)
}

func TestJitteredPassAppliesAndRestoresOffset(t *testing.T) {
	const w, h = 8, 4
	r := newTestRenderer(w, h)
	cam := testCamera()
	unperturbed := cam.ProjectionMatrix()

	sc := &recordingScene{color: common.White}
	p := NewJitteredPass(sc, cam)
	write := renderer.NewRenderTarget("write", w, h)
	read := renderer.NewRenderTarget("read", w, h)
	offsets := p.Sequence().Offsets()

	for i := 0; i < p.Sequence().Len()+1; i++ {
		require.NoError(t, p.Render(r, write, read))
		assert.Equal(t, unperturbed, cam.ProjectionMatrix(), "projection restored after frame %d", i)
	}

	require.Len(t, sc.offsets, 17)
	for i, got := range sc.offsets {
		want := offsets[i%len(offsets)]
		assert.InDelta(t, want.X/w, got[0], 1e-7)
		assert.InDelta(t, want.Y/h, got[1], 1e-7)
	}
	assert.Equal(t, 1, p.Sequence().Cursor())
}

func TestJitteredPassSwapSelectsTarget(t *testing.T) {
	r := newTestRenderer(4, 4)
	sc := &recordingScene{color: common.White}
	write := renderer.NewRenderTarget("write", 4, 4)
	read := renderer.NewRenderTarget("read", 4, 4)

	p := NewJitteredPass(sc, testCamera())
	require.NoError(t, p.Render(r, write, read))
	assert.Same(t, write, sc.targets[0])
	assert.True(t, p.NeedsSwap())

	p.SetSwap(true)
	require.NoError(t, p.Render(r, write, read))
	assert.Same(t, read, sc.targets[1])
	assert.False(t, p.NeedsSwap())
}

func TestJitteredPassRestoresProjectionOnError(t *testing.T) {
	r := newTestRenderer(4, 4)
	cam := testCamera()
	unperturbed := cam.ProjectionMatrix()
	p := NewJitteredPass(&recordingScene{}, cam)
	small := renderer.NewRenderTarget("small", 2, 2)

	assert.ErrorIs(t, p.Render(r, small, small), renderer.ErrTargetSizeMismatch)
	assert.Equal(t, unperturbed, cam.ProjectionMatrix())
	assert.Equal(t, 1, p.Sequence().Cursor())
}

func TestReprojectionSeedsWithInputVerbatim(t *testing.T) {
	r := newTestRenderer(4, 4)
	p := NewReprojectionPass(4, 4)
	assert.Equal(t, Uninitialized, p.State())

	in := renderer.NewRenderTarget("in", 4, 4)
	for i := range in.Pixels() {
		in.Pixels()[i] = common.Color{R: float32(i) / 16, G: 0.3, B: 0.9, A: 1}
	}
	write := renderer.NewRenderTarget("write", 4, 4)

	require.NoError(t, p.Render(r, write, in))
	assert.Equal(t, Seeded, p.State())
	assert.Equal(t, in.Pixels(), p.Accumulated().Pixels())
}

func TestReprojectionConvergesToConstantInput(t *testing.T) {
	r := newTestRenderer(4, 4)
	p := NewReprojectionPass(4, 4)
	write := renderer.NewRenderTarget("write", 4, 4)

	seed := renderer.NewRenderTarget("seed", 4, 4)
	seed.Fill(common.Black)
	require.NoError(t, p.Render(r, write, seed))

	target := common.Color{R: 0.8, G: 0.6, B: 0.4, A: 1}
	in := renderer.NewRenderTarget("in", 4, 4)
	in.Fill(target)

	for i := 0; i < 400; i++ {
		require.NoError(t, p.Render(r, write, in))
	}
	got := p.Accumulated().At(2, 2)
	assert.InDelta(t, target.R, got.R, 1e-3)
	assert.InDelta(t, target.G, got.G, 1e-3)
	assert.InDelta(t, target.B, got.B, 1e-3)
	assert.InDelta(t, DefaultFeedbackMax, p.LastMeanFeedback(), 1e-3)
}

func TestReprojectionFirstBlendUsesLowFeedbackOnChange(t *testing.T) {
	r := newTestRenderer(1, 1)
	p := NewReprojectionPass(1, 1)
	write := renderer.NewRenderTarget("write", 1, 1)

	black := renderer.NewRenderTarget("black", 1, 1)
	black.Fill(common.Black)
	require.NoError(t, p.Render(r, write, black))

	white := renderer.NewRenderTarget("white", 1, 1)
	white.Fill(common.White)
	require.NoError(t, p.Render(r, write, white))

	// Full luminance change: history weight is kLow.
	assert.InDelta(t, 1-DefaultFeedbackMin, p.Accumulated().At(0, 0).R, 1e-5)
}

func TestReprojectionResizeResetsHistory(t *testing.T) {
	r := newTestRenderer(4, 4)
	p := NewReprojectionPass(4, 4)
	in := renderer.NewRenderTarget("in", 4, 4)
	require.NoError(t, p.Render(r, in, in))
	require.Equal(t, Seeded, p.State())

	p.SetSize(8, 8)
	assert.Equal(t, Uninitialized, p.State())
	assert.Equal(t, 8, p.Accumulated().Width())

	err := p.Render(r, in, in)
	assert.ErrorIs(t, err, renderer.ErrTargetSizeMismatch)
	assert.Equal(t, Uninitialized, p.State())
}

func TestReprojectionMismatchedOutputLeavesHistory(t *testing.T) {
	r := newTestRenderer(2, 2)
	p := NewReprojectionPass(2, 2)
	in := renderer.NewRenderTarget("in", 2, 2)
	in.Fill(common.White)
	small := renderer.NewRenderTarget("small", 1, 1)

	err := p.Render(r, small, in)
	assert.ErrorIs(t, err, renderer.ErrTargetSizeMismatch)
	assert.Equal(t, Uninitialized, p.State())

	black := renderer.NewRenderTarget("black", 2, 2)
	black.Fill(common.Black)
	write := renderer.NewRenderTarget("write", 2, 2)
	require.NoError(t, p.Render(r, write, black))
	before := append([]common.Color(nil), p.Accumulated().Pixels()...)

	err = p.Render(r, small, in)
	assert.ErrorIs(t, err, renderer.ErrTargetSizeMismatch)
	assert.Equal(t, before, p.Accumulated().Pixels())

	// screen still at the old size after the pass grew
	r.SetSize(1, 1)
	p.SetRenderToScreen(true)
	err = p.Render(r, write, in)
	assert.ErrorIs(t, err, renderer.ErrTargetSizeMismatch)
	assert.Equal(t, before, p.Accumulated().Pixels())
}

func TestReprojectionBlendBeforeSeedPanics(t *testing.T) {
	r := newTestRenderer(2, 2)
	p := NewReprojectionPass(2, 2).(*reprojectionPass)
	in := renderer.NewRenderTarget("in", 2, 2)
	assert.Panics(t, func() { p.blend(r, in) })
}

func TestReprojectionPresentsToScreenWithGamma(t *testing.T) {
	r := newTestRenderer(1, 1)
	p := NewReprojectionPass(1, 1)
	p.SetRenderToScreen(true)
	in := renderer.NewRenderTarget("in", 1, 1)
	in.Fill(common.Color{R: 0.5, G: 0.5, B: 0.5, A: 1})

	require.NoError(t, p.Render(r, renderer.NewRenderTarget("write", 1, 1), in))
	assert.InDelta(t, 0.7354, r.Screen().At(0, 0).R, 1e-3)
}

func TestWithFeedbackOrdersBounds(t *testing.T) {
	p := NewReprojectionPass(1, 1, WithFeedback(0.99, 0.5))
	lo, hi := p.Feedback()
	assert.Equal(t, float32(0.5), lo)
	assert.Equal(t, float32(0.99), hi)
}

func aoScene() scene.Scene {
	return scene.NewScene("ao", scene.WithAmbient(1), scene.WithMeshes(
		scene.NewPlane("floor", mgl32.Vec3{0, -1, 0}, 40, 40, common.White),
		scene.NewBox("box", mgl32.Vec3{}, mgl32.Vec3{2, 2, 2}, common.White),
	))
}

func elevatedCamera() camera.Camera {
	ctrl := camera.NewCameraController(
		camera.WithSmoothTime(0),
		camera.WithRadius(8),
		camera.WithAzimuth(0.6),
		camera.WithElevation(0.5),
	)
	return camera.NewCamera(camera.WithController(ctrl), camera.WithAspect(1), camera.WithFar(100))
}

func TestAmbientOcclusionFlatSurfaceIsUnoccluded(t *testing.T) {
	const size = 32
	r := newTestRenderer(size, size)
	sc := scene.NewScene("flat", scene.WithAmbient(1), scene.WithMeshes(
		scene.NewBox("wall", mgl32.Vec3{0, 0, -1}, mgl32.Vec3{40, 40, 0.5}, common.White),
	))
	params := DefaultSAOParams()
	params.Output = OutputSAO
	params.Scale = 10
	p := NewAmbientOcclusionPass(sc, testCamera(), size, size, WithSAOParams(params))

	read := renderer.NewRenderTarget("read", size, size)
	write := renderer.NewRenderTarget("write", size, size)
	require.NoError(t, p.Render(r, write, read))

	assert.InDelta(t, 1, write.At(size/2, size/2).R, 0.02)
	assert.InDelta(t, 1, write.At(3, 3).R, 0.02)
}

func TestAmbientOcclusionDarkensCreases(t *testing.T) {
	const size = 64
	r := newTestRenderer(size, size)
	params := DefaultSAOParams()
	params.Output = OutputSAO
	params.Scale = 10
	p := NewAmbientOcclusionPass(aoScene(), elevatedCamera(), size, size, WithSAOParams(params))

	read := renderer.NewRenderTarget("read", size, size)
	write := renderer.NewRenderTarget("write", size, size)
	require.NoError(t, p.Render(r, write, read))

	darkest := float32(1)
	for _, c := range write.Pixels() {
		darkest = min(darkest, c.R)
	}
	assert.Less(t, darkest, float32(0.9))
	assert.Equal(t, write.Pixels(), p.Occlusion().Pixels())
}

func TestAmbientOcclusionDefaultMultipliesInput(t *testing.T) {
	const size = 32
	r := newTestRenderer(size, size)
	p := NewAmbientOcclusionPass(aoScene(), elevatedCamera(), size, size)

	read := renderer.NewRenderTarget("read", size, size)
	read.Fill(common.Color{R: 0.5, G: 0.5, B: 0.5, A: 1})
	write := renderer.NewRenderTarget("write", size, size)
	require.NoError(t, p.Render(r, write, read))

	ao := p.Occlusion()
	for i, c := range write.Pixels() {
		assert.InDelta(t, 0.5*ao.Pixels()[i].R, c.R, 1e-6)
	}
}

func TestAmbientOcclusionBeautyPassesThrough(t *testing.T) {
	r := newTestRenderer(4, 4)
	params := DefaultSAOParams()
	params.Output = OutputBeauty
	p := NewAmbientOcclusionPass(aoScene(), elevatedCamera(), 4, 4, WithSAOParams(params))

	read := renderer.NewRenderTarget("read", 4, 4)
	read.Fill(common.Color{R: 0.25, A: 1})
	write := renderer.NewRenderTarget("write", 4, 4)
	require.NoError(t, p.Render(r, write, read))
	assert.Equal(t, read.Pixels(), write.Pixels())
}

func TestAmbientOcclusionSetScale(t *testing.T) {
	p := NewAmbientOcclusionPass(aoScene(), elevatedCamera(), 4, 4)
	p.SetScale(12)
	assert.Equal(t, float32(12), p.Params().Scale)
	assert.Equal(t, float32(1.5), p.Params().Intensity)
}

func TestGaussianWeightsDecrease(t *testing.T) {
	w := gaussianWeights(3, 4)
	require.Len(t, w, 4)
	for i := 1; i < len(w); i++ {
		assert.Less(t, w[i], w[i-1])
	}
}
