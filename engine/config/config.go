// Package config holds the pipeline tunables as an immutable snapshot and a store that
// validates updates and notifies subscribers.
package config

import (
	"errors"
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-viewer/engine/pass"
)

var (
	// ErrInvalidConfig is returned (wrapped) when a snapshot fails validation.
	ErrInvalidConfig = errors.New("invalid pipeline config")
)

// PipelineConfig is the flat set of values the control panel edits.
type PipelineConfig struct {
	SAOEnabled bool
	TAAAllowed bool
	// Correction rescales occlusion falloff and the camera far plane to the scene every frame.
	Correction bool
	Exposure   float32

	Output          pass.OutputMode
	Bias            float32
	Intensity       float32
	Scale           float32
	KernelRadius    float32
	MinResolution   float32
	Blur            bool
	BlurRadius      int
	BlurStdDev      float32
	BlurDepthCutoff float32
}

// DefaultPipelineConfig returns the control panel defaults.
func DefaultPipelineConfig() PipelineConfig {
	p := pass.DefaultSAOParams()
	return PipelineConfig{
		SAOEnabled:      true,
		TAAAllowed:      true,
		Correction:      true,
		Exposure:        1,
		Output:          p.Output,
		Bias:            p.Bias,
		Intensity:       p.Intensity,
		Scale:           p.Scale,
		KernelRadius:    p.KernelRadius,
		MinResolution:   p.MinResolution,
		Blur:            p.Blur,
		BlurRadius:      p.BlurRadius,
		BlurStdDev:      p.BlurStdDev,
		BlurDepthCutoff: p.BlurDepthCutoff,
	}
}

// SAOParams maps the occlusion fields onto the pass parameter set.
//
// Returns:
//   - pass.SAOParams: the occlusion parameters
func (c PipelineConfig) SAOParams() pass.SAOParams {
	return pass.SAOParams{
		Output:          c.Output,
		Bias:            c.Bias,
		Intensity:       c.Intensity,
		Scale:           c.Scale,
		KernelRadius:    c.KernelRadius,
		MinResolution:   c.MinResolution,
		Blur:            c.Blur,
		BlurRadius:      c.BlurRadius,
		BlurStdDev:      c.BlurStdDev,
		BlurDepthCutoff: c.BlurDepthCutoff,
	}
}

// Validate reports the first field that is out of range.
//
// Returns:
//   - error: a wrapped ErrInvalidConfig, or nil
func (c PipelineConfig) Validate() error {
	finite := map[string]float32{
		"exposure":        c.Exposure,
		"bias":            c.Bias,
		"intensity":       c.Intensity,
		"scale":           c.Scale,
		"kernelRadius":    c.KernelRadius,
		"minResolution":   c.MinResolution,
		"blurStdDev":      c.BlurStdDev,
		"blurDepthCutoff": c.BlurDepthCutoff,
	}
	for name, v := range finite {
		if math.IsNaN(float64(v)) || math.IsInf(float64(v), 0) {
			return fmt.Errorf("%w: %s is not finite", ErrInvalidConfig, name)
		}
	}

	switch {
	case c.Exposure <= 0:
		return fmt.Errorf("%w: exposure must be positive, got %v", ErrInvalidConfig, c.Exposure)
	case c.Intensity < 0:
		return fmt.Errorf("%w: intensity must not be negative, got %v", ErrInvalidConfig, c.Intensity)
	case c.Scale <= 0:
		return fmt.Errorf("%w: scale must be positive, got %v", ErrInvalidConfig, c.Scale)
	case c.KernelRadius < 0:
		return fmt.Errorf("%w: kernelRadius must not be negative, got %v", ErrInvalidConfig, c.KernelRadius)
	case c.MinResolution < 0:
		return fmt.Errorf("%w: minResolution must not be negative, got %v", ErrInvalidConfig, c.MinResolution)
	case c.BlurRadius < 0:
		return fmt.Errorf("%w: blurRadius must not be negative, got %d", ErrInvalidConfig, c.BlurRadius)
	case c.Blur && c.BlurStdDev <= 0:
		return fmt.Errorf("%w: blurStdDev must be positive when blur is on, got %v", ErrInvalidConfig, c.BlurStdDev)
	case c.BlurDepthCutoff < 0:
		return fmt.Errorf("%w: blurDepthCutoff must not be negative, got %v", ErrInvalidConfig, c.BlurDepthCutoff)
	case c.Output < pass.OutputDefault || c.Output > pass.OutputSAO:
		return fmt.Errorf("%w: unknown output mode %d", ErrInvalidConfig, c.Output)
	}
	return nil
}
