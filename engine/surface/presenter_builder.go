package surface

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// PresenterBuilderOption is a functional option applied to a presenter during NewPresenter.
type PresenterBuilderOption func(*presenter)

// WithPresentMode sets the initial present mode. Defaults to vsync.
//
// Parameters:
//   - mode: the present mode
//
// Returns:
//   - PresenterBuilderOption: option function to apply
func WithPresentMode(mode PresentMode) PresenterBuilderOption {
	return func(p *presenter) {
		if mode == PresentModeUncapped {
			p.presentMode = wgpu.PresentModeImmediate
			return
		}
		p.presentMode = wgpu.PresentModeFifo
	}
}

// WithFallbackAdapter forces the software fallback adapter.
//
// Returns:
//   - PresenterBuilderOption: option function to apply
func WithFallbackAdapter() PresenterBuilderOption {
	return func(p *presenter) {
		p.forceFallbackAdapter = true
	}
}

// WithSampler overrides the frame sampler. Zero fields keep clamp-to-edge nearest sampling.
//
// Parameters:
//   - s: the sampler configuration
//
// Returns:
//   - PresenterBuilderOption: option function to apply
func WithSampler(s common.SamplerStagingData) PresenterBuilderOption {
	return func(p *presenter) {
		p.samplerConfig = s
	}
}
