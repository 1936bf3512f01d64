package config

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/pass"
)

// document mirrors PipelineConfig with optional fields so absent keys keep their defaults.
type document struct {
	SAOEnabled      *bool    `json:"saoEnabled"`
	TAAAllowed      *bool    `json:"taaAllowed"`
	Correction      *bool    `json:"correction"`
	Exposure        *float32 `json:"exposure"`
	Output          string   `json:"output"`
	Bias            *float32 `json:"bias"`
	Intensity       *float32 `json:"intensity"`
	Scale           *float32 `json:"scale"`
	KernelRadius    *float32 `json:"kernelRadius"`
	MinResolution   *float32 `json:"minResolution"`
	Blur            *bool    `json:"blur"`
	BlurRadius      *int     `json:"blurRadius"`
	BlurStdDev      *float32 `json:"blurStdDev"`
	BlurDepthCutoff *float32 `json:"blurDepthCutoff"`
}

// Load reads a JSON object of pipeline values. Keys that are absent keep the value from
// DefaultPipelineConfig; unknown keys are rejected.
//
// Parameters:
//   - r: the JSON source
//
// Returns:
//   - PipelineConfig: the merged snapshot
//   - error: a decode error or a wrapped ErrInvalidConfig
func Load(r io.Reader) (PipelineConfig, error) {
	var doc document
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&doc); err != nil {
		return PipelineConfig{}, fmt.Errorf("decode pipeline config: %w", err)
	}

	def := DefaultPipelineConfig()
	output, err := ParseOutputMode(common.Coalesce(doc.Output, def.Output.String()))
	if err != nil {
		return PipelineConfig{}, err
	}

	c := PipelineConfig{
		SAOEnabled:      common.ValueOr(doc.SAOEnabled, def.SAOEnabled),
		TAAAllowed:      common.ValueOr(doc.TAAAllowed, def.TAAAllowed),
		Correction:      common.ValueOr(doc.Correction, def.Correction),
		Exposure:        common.ValueOr(doc.Exposure, def.Exposure),
		Output:          output,
		Bias:            common.ValueOr(doc.Bias, def.Bias),
		Intensity:       common.ValueOr(doc.Intensity, def.Intensity),
		Scale:           common.ValueOr(doc.Scale, def.Scale),
		KernelRadius:    common.ValueOr(doc.KernelRadius, def.KernelRadius),
		MinResolution:   common.ValueOr(doc.MinResolution, def.MinResolution),
		Blur:            common.ValueOr(doc.Blur, def.Blur),
		BlurRadius:      common.ValueOr(doc.BlurRadius, def.BlurRadius),
		BlurStdDev:      common.ValueOr(doc.BlurStdDev, def.BlurStdDev),
		BlurDepthCutoff: common.ValueOr(doc.BlurDepthCutoff, def.BlurDepthCutoff),
	}
	if err := c.Validate(); err != nil {
		return PipelineConfig{}, err
	}
	return c, nil
}

// ParseOutputMode maps "default", "beauty" or "sao" (case-insensitive) to its OutputMode.
//
// Parameters:
//   - s: the mode name
//
// Returns:
//   - pass.OutputMode: the mode
//   - error: a wrapped ErrInvalidConfig for unknown names
func ParseOutputMode(s string) (pass.OutputMode, error) {
	for _, m := range []pass.OutputMode{pass.OutputDefault, pass.OutputBeauty, pass.OutputSAO} {
		if strings.EqualFold(s, m.String()) {
			return m, nil
		}
	}
	return pass.OutputDefault, fmt.Errorf("%w: unknown output mode %q", ErrInvalidConfig, s)
}
