package config

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/Carmen-Shannon/oxy-viewer/engine/pass"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultsMatchControlPanel(t *testing.T) {
	c := DefaultPipelineConfig()
	assert.True(t, c.SAOEnabled)
	assert.True(t, c.TAAAllowed)
	assert.True(t, c.Correction)
	assert.Equal(t, float32(1), c.Exposure)
	assert.Equal(t, float32(1.5), c.Intensity)
	assert.Equal(t, float32(434), c.Scale)
	assert.Equal(t, float32(6.52), c.KernelRadius)
	assert.Equal(t, 2, c.BlurRadius)
	assert.Equal(t, float32(4), c.BlurStdDev)
	assert.Equal(t, float32(7e-5), c.BlurDepthCutoff)
	require.NoError(t, c.Validate())
	assert.Equal(t, pass.DefaultSAOParams(), c.SAOParams())
}

func TestValidateRejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*PipelineConfig)
	}{
		{"zero exposure", func(c *PipelineConfig) { c.Exposure = 0 }},
		{"negative intensity", func(c *PipelineConfig) { c.Intensity = -1 }},
		{"zero scale", func(c *PipelineConfig) { c.Scale = 0 }},
		{"negative blur radius", func(c *PipelineConfig) { c.BlurRadius = -1 }},
		{"blur without std-dev", func(c *PipelineConfig) { c.BlurStdDev = 0 }},
		{"nan bias", func(c *PipelineConfig) { c.Bias = float32(math.NaN()) }},
		{"infinite kernel", func(c *PipelineConfig) { c.KernelRadius = float32(math.Inf(1)) }},
		{"unknown output", func(c *PipelineConfig) { c.Output = pass.OutputMode(9) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultPipelineConfig()
			tt.mutate(&c)
			err := c.Validate()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidConfig))
		})
	}

	c := DefaultPipelineConfig()
	c.Blur = false
	c.BlurStdDev = 0
	assert.NoError(t, c.Validate(), "std-dev is irrelevant with blur off")
}

func TestStoreUpdateNotifiesOnChange(t *testing.T) {
	s := NewStore(DefaultPipelineConfig())
	var calls []PipelineConfig
	s.Subscribe(func(old, new PipelineConfig) {
		assert.Equal(t, float32(1.5), old.Intensity)
		calls = append(calls, new)
	})

	got, changed, err := s.Update(func(c *PipelineConfig) { c.Intensity = 2 })
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, float32(2), got.Intensity)
	require.Len(t, calls, 1)
	assert.Equal(t, float32(2), calls[0].Intensity)

	_, changed, err = s.Update(func(c *PipelineConfig) { c.Intensity = 2 })
	require.NoError(t, err)
	assert.False(t, changed, "an identical snapshot is not a change")
	assert.Len(t, calls, 1)
}

func TestStoreRejectsInvalidUpdate(t *testing.T) {
	s := NewStore(DefaultPipelineConfig())
	notified := false
	s.Subscribe(func(_, _ PipelineConfig) { notified = true })

	got, changed, err := s.Update(func(c *PipelineConfig) { c.Exposure = -1 })
	require.Error(t, err)
	assert.False(t, changed)
	assert.False(t, notified)
	assert.Equal(t, float32(1), got.Exposure)
	assert.Equal(t, float32(1), s.Current().Exposure)
}

func TestStoreUnsubscribe(t *testing.T) {
	s := NewStore(DefaultPipelineConfig())
	var a, b int
	unsubA := s.Subscribe(func(_, _ PipelineConfig) { a++ })
	s.Subscribe(func(_, _ PipelineConfig) { b++ })

	_, err := s.Replace(PipelineConfig{Exposure: 2, Scale: 1, BlurStdDev: 1})
	require.NoError(t, err)
	unsubA()
	_, _, err = s.Update(func(c *PipelineConfig) { c.SAOEnabled = true })
	require.NoError(t, err)

	assert.Equal(t, 1, a)
	assert.Equal(t, 2, b)
}

func TestNewStoreFallsBackToDefaults(t *testing.T) {
	s := NewStore(PipelineConfig{})
	assert.Equal(t, DefaultPipelineConfig(), s.Current())
}

func TestLoadMergesOverDefaults(t *testing.T) {
	c, err := Load(strings.NewReader(`{"saoEnabled": false, "bias": 0, "intensity": 0.5, "output": "SAO"}`))
	require.NoError(t, err)

	assert.False(t, c.SAOEnabled)
	assert.True(t, c.TAAAllowed)
	assert.Equal(t, float32(0.5), c.Intensity)
	assert.Equal(t, float32(434), c.Scale)
	assert.Equal(t, pass.OutputSAO, c.Output)
}

func TestLoadEmptyObjectIsDefaults(t *testing.T) {
	c, err := Load(strings.NewReader(`{}`))
	require.NoError(t, err)
	assert.Equal(t, DefaultPipelineConfig(), c)
}

func TestLoadErrors(t *testing.T) {
	_, err := Load(strings.NewReader(`{"unknown": 1}`))
	assert.Error(t, err)

	_, err = Load(strings.NewReader(`{"output": "fancy"}`))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = Load(strings.NewReader(`{"scale": -3}`))
	assert.True(t, errors.Is(err, ErrInvalidConfig))

	_, err = Load(strings.NewReader(`not json`))
	assert.Error(t, err)
}
