package renderer

import (
	"errors"
	"sync/atomic"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fillScene struct {
	color common.Color
	calls int
}

func (s *fillScene) Draw(target *RenderTarget, _ camera.Camera) error {
	s.calls++
	for i := range target.Pixels() {
		target.Pixels()[i] = s.color
	}
	return nil
}

type failingScene struct{}

var errDraw = errors.New("draw failed")

func (failingScene) Draw(*RenderTarget, camera.Camera) error { return errDraw }

func TestRenderTargetResizeInvalidates(t *testing.T) {
	rt := NewRenderTarget("rt", 4, 3, WithDepth())
	require.True(t, rt.HasDepth())
	assert.Len(t, rt.Pixels(), 12)
	assert.Equal(t, float32(1), rt.DepthAt(0, 0))

	gen := rt.Generation()
	rt.SetSize(8, 6)
	assert.Equal(t, 8, rt.Width())
	assert.Equal(t, 6, rt.Height())
	assert.Len(t, rt.Pixels(), 48)
	assert.Len(t, rt.DepthBuffer(), 48)
	assert.Greater(t, rt.Generation(), gen)
}

func TestRenderTargetAtClampsToEdges(t *testing.T) {
	rt := NewRenderTarget("rt", 2, 2)
	rt.Set(1, 1, common.White)
	rt.Set(5, 5, common.Black) // ignored
	assert.Equal(t, common.White, rt.At(10, 10))
	assert.Equal(t, common.White, rt.At(1, 1))
	assert.Equal(t, common.Color{}, rt.At(-3, 0))
}

func TestCopyFromRejectsMismatch(t *testing.T) {
	a := NewRenderTarget("a", 2, 2)
	b := NewRenderTarget("b", 3, 2)
	err := a.CopyFrom(b)
	assert.ErrorIs(t, err, ErrTargetSizeMismatch)

	b.SetSize(2, 2)
	b.Fill(common.White)
	require.NoError(t, a.CopyFrom(b))
	assert.Equal(t, common.White, a.At(0, 0))
}

func TestStagingQuantizes(t *testing.T) {
	rt := NewRenderTarget("rt", 1, 1)
	rt.Set(0, 0, common.Color{R: 1.5, G: 0.5, B: -1, A: 1})
	st := rt.Staging()
	assert.Equal(t, []byte{255, 128, 0, 255}, st.Pixels)
	assert.Equal(t, uint32(1), st.Width)

	desc := rt.Descriptor()
	assert.Equal(t, wgpu.TextureFormatRGBA8Unorm, desc.Format)
	assert.Equal(t, uint32(1), desc.Size.Height)
}

func TestRenderRejectsMismatchedTarget(t *testing.T) {
	r := NewRenderer(WithSize(4, 4), WithWorkers(1))
	rt := NewRenderTarget("small", 2, 2)
	r.SetRenderTarget(rt)

	scene := &fillScene{color: common.White}
	err := r.Render(scene, nil)
	assert.ErrorIs(t, err, ErrTargetSizeMismatch)
	assert.Zero(t, scene.calls)
}

func TestRenderAutoClearsAndDraws(t *testing.T) {
	r := NewRenderer(WithSize(2, 2), WithWorkers(1), WithClearColor(common.Color{R: 1, A: 1}))
	require.NoError(t, r.Render(nil, nil))
	assert.Equal(t, common.Color{R: 1, A: 1}, r.Screen().At(0, 0))

	scene := &fillScene{color: common.White}
	require.NoError(t, r.Render(scene, nil))
	assert.Equal(t, 1, scene.calls)
	assert.Equal(t, common.White, r.Screen().At(1, 1))
	assert.Equal(t, uint64(2), r.Stats().Frames)

	assert.ErrorIs(t, r.Render(failingScene{}, nil), errDraw)
}

func TestScopeRestoresStateAfterPanic(t *testing.T) {
	r := NewRenderer(WithSize(2, 2), WithWorkers(1))
	before := r.SaveState()
	rt := NewRenderTarget("rt", 2, 2)

	func() {
		defer func() { _ = recover() }()
		defer r.Scope()()
		r.SetClearColor(common.White)
		r.SetClearAlpha(1)
		r.SetAutoClear(false)
		r.SetRenderTarget(rt)
		panic("pass failed")
	}()

	assert.Equal(t, before, r.SaveState())
	assert.Same(t, r.Screen(), r.RenderTarget())
}

func TestSetRenderTargetNilBindsScreen(t *testing.T) {
	r := NewRenderer(WithSize(2, 2), WithWorkers(1))
	r.SetRenderTarget(NewRenderTarget("rt", 2, 2))
	r.SetRenderTarget(nil)
	assert.Same(t, r.Screen(), r.RenderTarget())
}

func TestDispatchVisitsEveryRowOnce(t *testing.T) {
	for _, workers := range []int{1, 4} {
		r := NewRenderer(WithSize(8, 8), WithWorkers(workers))
		const rows = 257
		var visits [rows]int32
		var total atomic.Int32
		r.Dispatch(rows, func(y int) {
			atomic.AddInt32(&visits[y], 1)
			total.Add(1)
		})
		assert.Equal(t, int32(rows), total.Load(), "workers=%d", workers)
		for y := range visits {
			assert.Equal(t, int32(1), visits[y], "row %d workers=%d", y, workers)
		}
	}
}
