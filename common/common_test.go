package common

import (
	"context"
	"log/slog"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/stretchr/testify/assert"
)

func TestBox3(t *testing.T) {
	empty := EmptyBox3()
	assert.True(t, empty.IsEmpty())
	assert.Equal(t, mgl32.Vec3{}, empty.Size())
	assert.Zero(t, empty.MaxDistance(mgl32.Vec3{1, 2, 3}))

	b := empty.Union(Box3{Min: mgl32.Vec3{-1, 0, -1}, Max: mgl32.Vec3{1, 2, 1}})
	assert.False(t, b.IsEmpty())
	assert.Equal(t, mgl32.Vec3{2, 2, 2}, b.Size())
	assert.Equal(t, b, b.Union(EmptyBox3()))

	corners := b.Corners()
	assert.Equal(t, b.Min, corners[0])
	assert.Equal(t, b.Max, corners[7])
	assert.Equal(t, mgl32.Vec3{-1, 0, 1}, corners[1])

	// Farthest corner from (1, 2, 1) is (-1, 0, -1).
	assert.InDelta(t, math.Sqrt(12), b.MaxDistance(mgl32.Vec3{1, 2, 1}), 1e-5)
}

func TestFrustumIntersectsBox(t *testing.T) {
	proj := make([]float32, 16)
	view := make([]float32, 16)
	vp := make([]float32, 16)
	Perspective(proj, float32(math.Pi/3), 1, 0.1, 100)
	LookAt(view, 0, 0, 10, 0, 0, 0, 0, 1, 0)
	Mul4(vp, proj, view)
	f := ExtractFrustumFromMatrix(vp)

	unit := Box3{Min: mgl32.Vec3{-1, -1, -1}, Max: mgl32.Vec3{1, 1, 1}}
	assert.True(t, f.IntersectsBox(unit))

	behind := Box3{Min: mgl32.Vec3{-1, -1, 20}, Max: mgl32.Vec3{1, 1, 22}}
	assert.False(t, f.IntersectsBox(behind))

	beyondFar := Box3{Min: mgl32.Vec3{-1, -1, -200}, Max: mgl32.Vec3{1, 1, -150}}
	assert.False(t, f.IntersectsBox(beyondFar))

	offside := Box3{Min: mgl32.Vec3{50, -1, -1}, Max: mgl32.Vec3{52, 1, 1}}
	assert.False(t, f.IntersectsBox(offside))
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
	assert.Equal(t, SamplerStagingData{MinFilter: 1}, Coalesce(SamplerStagingData{}, SamplerStagingData{MinFilter: 1}))
}

func TestStructToBytes(t *testing.T) {
	v := struct {
		A [2]float32
		B [2]float32
	}{A: [2]float32{1, 0}}
	b := StructToBytes(&v)
	assert.Len(t, b, 16)
	assert.Equal(t, []byte{0, 0, 0x80, 0x3f}, b[:4])
}

func TestColor(t *testing.T) {
	c := RGBHex(0xff8000)
	assert.Equal(t, Color{1, float32(0x80) / 255, 0, 1}, c)
	assert.Equal(t, Color{0.5, 0.5, 0.5, 1}, Black.Mix(White, 0.5))
	assert.Equal(t, float32(0), Clamp01(-1))
	assert.Equal(t, float32(1), Clamp01(3))
}

func TestLoggerDefaultsToNop(t *testing.T) {
	SetLogger(nil)
	assert.NotNil(t, Logger())
	assert.False(t, Logger().Enabled(context.Background(), slog.LevelError))
}

func TestValueOr(t *testing.T) {
	off := false
	assert.False(t, ValueOr(&off, true), "explicit zero wins")
	assert.True(t, ValueOr[bool](nil, true))

	zero := float32(0)
	assert.Equal(t, float32(0), ValueOr(&zero, 1.5))
}
