package pass

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/jitter"
)

// GeometryPassOption is a functional option applied to a geometry pass during NewGeometryPass.
type GeometryPassOption func(*geometryPass)

// WithGeometryBackground sets the clear colour of the geometry pass.
//
// Parameters:
//   - c: the background colour
//
// Returns:
//   - GeometryPassOption: option function to apply
func WithGeometryBackground(c common.Color) GeometryPassOption {
	return func(p *geometryPass) {
		p.background = c
	}
}

// JitteredPassOption is a functional option applied to a jittered pass during NewJitteredPass.
type JitteredPassOption func(*jitteredPass)

// WithSequence replaces the default 16-entry jitter sequence.
//
// Parameters:
//   - seq: the sequence to draw offsets from (ignored when nil)
//
// Returns:
//   - JitteredPassOption: option function to apply
func WithSequence(seq *jitter.Sequence) JitteredPassOption {
	return func(p *jitteredPass) {
		if seq != nil {
			p.seq = seq
		}
	}
}

// WithSwap sets the initial swap flag of the jittered pass.
//
// Parameters:
//   - swap: true to draw into the read buffer
//
// Returns:
//   - JitteredPassOption: option function to apply
func WithSwap(swap bool) JitteredPassOption {
	return func(p *jitteredPass) {
		p.swap = swap
	}
}

// WithJitteredBackground sets the clear colour of the jittered pass.
//
// Parameters:
//   - c: the background colour
//
// Returns:
//   - JitteredPassOption: option function to apply
func WithJitteredBackground(c common.Color) JitteredPassOption {
	return func(p *jitteredPass) {
		p.background = c
	}
}

// AmbientOcclusionPassOption is a functional option applied during NewAmbientOcclusionPass.
type AmbientOcclusionPassOption func(*ambientOcclusionPass)

// WithSAOParams sets the initial occlusion parameters.
//
// Parameters:
//   - params: the parameter set
//
// Returns:
//   - AmbientOcclusionPassOption: option function to apply
func WithSAOParams(params SAOParams) AmbientOcclusionPassOption {
	return func(p *ambientOcclusionPass) {
		p.params = params
	}
}

// ReprojectionPassOption is a functional option applied during NewReprojectionPass.
type ReprojectionPassOption func(*reprojectionPass)

// WithFeedback sets the history weight bounds of the reprojection filter.
// Values are clamped to [0, 1] and swapped when kLow > kHigh.
//
// Parameters:
//   - kLow: weight where luminance changed completely
//   - kHigh: weight where luminance is stable
//
// Returns:
//   - ReprojectionPassOption: option function to apply
func WithFeedback(kLow, kHigh float32) ReprojectionPassOption {
	return func(p *reprojectionPass) {
		kLow, kHigh = common.Clamp01(kLow), common.Clamp01(kHigh)
		if kLow > kHigh {
			kLow, kHigh = kHigh, kLow
		}
		p.kLow, p.kHigh = kLow, kHigh
	}
}
