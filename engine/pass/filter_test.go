package pass

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLuminance(t *testing.T) {
	tests := []struct {
		name string
		in   common.Color
		want float32
	}{
		{"black", common.Black, 0},
		{"white", common.White, 1},
		{"red", common.Color{R: 1}, 0.2126},
		{"green", common.Color{G: 1}, 0.7152},
		{"blue", common.Color{B: 1}, 0.0722},
		{"overbright clamps", common.Color{R: 3, G: 3, B: 3}, 1},
		{"negative clamps", common.Color{R: -1}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Luminance(tt.in), 1e-6)
		})
	}
}

func TestFeedbackWeight(t *testing.T) {
	tests := []struct {
		name      string
		cur, hist float32
		want      float32
	}{
		{"stable luminance trusts history", 0.5, 0.5, DefaultFeedbackMax},
		{"full change distrusts history", 1, 0, DefaultFeedbackMin},
		{"dark pixels use the floor", 0.1, 0, 0.88 + 0.09*0.25},
		{"symmetric", 0, 0.1, 0.88 + 0.09*0.25},
		{"both black", 0, 0, DefaultFeedbackMax},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FeedbackWeight(tt.cur, tt.hist, DefaultFeedbackMin, DefaultFeedbackMax)
			assert.InDelta(t, tt.want, got, 1e-6)
		})
	}
}

func TestNeighborhoodContrastUniformImage(t *testing.T) {
	rt := renderer.NewRenderTarget("rt", 4, 4)
	rt.Fill(common.Color{R: 0.5, G: 0.5, B: 0.5, A: 1})

	c := NeighborhoodContrast(rt, 0, 0)
	assert.InDelta(t, 0, c.Distance, 1e-6)
	assert.InDelta(t, 0, c.Weight(), 1e-6)
	assert.Equal(t, float32(0.5), c.Min.R)
	assert.Equal(t, float32(0.5), c.Max.R)
}

func TestNeighborhoodContrastBrightCentre(t *testing.T) {
	rt := renderer.NewRenderTarget("rt", 3, 3)
	rt.Fill(common.Black)
	rt.Set(1, 1, common.White)

	c := NeighborhoodContrast(rt, 1, 1)
	require.InDelta(t, 1.0/9.0, c.Average.R, 1e-6)
	assert.InDelta(t, 1, c.Average.A, 1e-6)
	want := math.Sqrt(3) * 8 / 9
	assert.InDelta(t, want, c.Distance, 1e-5)
	assert.InDelta(t, 0.05*want, c.Weight(), 1e-5)
	assert.Equal(t, common.Black, c.Min)
	assert.Equal(t, common.White, c.Max)
}

func TestPresentGammaEncodes(t *testing.T) {
	r := renderer.NewRenderer(renderer.WithSize(2, 1), renderer.WithWorkers(1))
	src := renderer.NewRenderTarget("src", 2, 1)
	dst := renderer.NewRenderTarget("dst", 2, 1)
	src.Set(0, 0, common.Color{R: 0.5, G: 0, B: 1, A: 0.25})
	src.Set(1, 0, common.Color{R: 0.001, G: 0.001, B: 0.001, A: 1})

	require.NoError(t, Present(r, src, dst, true))
	got := dst.At(0, 0)
	assert.InDelta(t, 0.7354, got.R, 1e-3)
	assert.InDelta(t, 0, got.G, 1e-6)
	assert.InDelta(t, 1, got.B, 1e-6)
	assert.Equal(t, float32(0.25), got.A)
	assert.InDelta(t, 0.01292, dst.At(1, 0).R, 1e-5)

	r.SetExposure(2)
	require.NoError(t, Present(r, src, dst, true))
	assert.InDelta(t, 1, dst.At(0, 0).R, 1e-6)
}

func TestPresentCopyIsVerbatim(t *testing.T) {
	r := renderer.NewRenderer(renderer.WithSize(2, 2), renderer.WithWorkers(1))
	src := renderer.NewRenderTarget("src", 2, 2)
	dst := renderer.NewRenderTarget("dst", 2, 2)
	src.Fill(common.Color{R: 0.3, G: 1.5, B: -0.2, A: 0.7})

	require.NoError(t, Present(r, src, dst, false))
	assert.Equal(t, src.Pixels(), dst.Pixels())

	assert.ErrorIs(t, Present(r, src, renderer.NewRenderTarget("small", 1, 1), false), renderer.ErrTargetSizeMismatch)
}
