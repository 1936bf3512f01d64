package jitter

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHaltonKnownValues(t *testing.T) {
	cases := []struct {
		base, index int
		want        float64
	}{
		{2, 0, 0},
		{2, 1, 0.5},
		{2, 2, 0.25},
		{2, 3, 0.75},
		{2, 4, 0.125},
		{3, 1, 1.0 / 3},
		{3, 2, 2.0 / 3},
		{3, 3, 1.0 / 9},
		{3, 4, 4.0 / 9},
	}
	for _, c := range cases {
		assert.InDelta(t, c.want, Halton(c.base, c.index), 1e-12, "halton(%d,%d)", c.base, c.index)
	}
}

func TestHaltonIsDeterministic(t *testing.T) {
	for i := 0; i < 64; i++ {
		assert.Equal(t, Halton(2, i), Halton(2, i))
		assert.Equal(t, Halton(3, i), Halton(3, i))
	}
}

func TestHaltonRange(t *testing.T) {
	for i := 0; i < 1000; i++ {
		for _, b := range []int{2, 3, 5} {
			v := Halton(b, i)
			assert.GreaterOrEqual(t, v, 0.0)
			assert.Less(t, v, 1.0)
		}
	}
}

func TestHaltonPanicsOnBadInput(t *testing.T) {
	assert.Panics(t, func() { Halton(1, 3) })
	assert.Panics(t, func() { Halton(2, -1) })
}

func TestGenerateDistinctOffsetsInOpenInterval(t *testing.T) {
	offsets := Generate(16)
	require.Len(t, offsets, 16)

	seen := make(map[Offset]bool)
	for _, o := range offsets {
		assert.Greater(t, o.X, float32(-1))
		assert.Less(t, o.X, float32(1))
		assert.Greater(t, o.Y, float32(-1))
		assert.Less(t, o.Y, float32(1))
		assert.False(t, seen[o], "duplicate offset %v", o)
		seen[o] = true
	}

	assert.Equal(t, Offset{X: 0, Y: float32((1.0/3 - 0.5) * 2)}, offsets[0])
	assert.Equal(t, Offset{X: -0.5, Y: float32((2.0/3 - 0.5) * 2)}, offsets[1])
}

func TestSequenceCursorCycles(t *testing.T) {
	s := NewSequence()
	require.Equal(t, DefaultLength, s.Len())

	first := s.Current()
	for i := 0; i < s.Len(); i++ {
		assert.GreaterOrEqual(t, s.Cursor(), 0)
		assert.Less(t, s.Cursor(), s.Len())
		s.Advance()
	}
	assert.Equal(t, 0, s.Cursor())
	assert.Equal(t, first, s.Current())

	s.Advance()
	s.Advance()
	s.Reset()
	assert.Equal(t, 0, s.Cursor())
}

func TestSequenceOffsetsIsACopy(t *testing.T) {
	s := NewSequenceOfLength(4)
	o := s.Offsets()
	o[0] = Offset{X: 9, Y: 9}
	assert.NotEqual(t, o[0], s.Current())
}
