package renderer

import (
	"runtime"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// minParallelRows is the row count below which Dispatch runs on the calling goroutine.
const minParallelRows = 32

func defaultWorkers() int {
	return max(runtime.NumCPU()-1, 1)
}

// RendererBuilderOption is a functional option applied to a renderer during construction via NewRenderer.
type RendererBuilderOption func(*renderer)

// WithSize sets the initial drawing-buffer size.
//
// Parameters:
//   - width, height: size in pixels
//
// Returns:
//   - RendererBuilderOption: a function that applies the size option to a renderer
func WithSize(width, height int) RendererBuilderOption {
	return func(r *renderer) {
		r.width, r.height = width, height
	}
}

// WithClearColor sets the initial clear colour and alpha.
//
// Parameters:
//   - c: the clear colour; its alpha becomes the clear alpha
//
// Returns:
//   - RendererBuilderOption: a function that applies the clear colour option to a renderer
func WithClearColor(c common.Color) RendererBuilderOption {
	return func(r *renderer) {
		r.clearColor = c
		r.clearAlpha = c.A
	}
}

// WithWorkers sets how many pool workers fullscreen dispatches use.
// Values below 2 run every dispatch on the calling goroutine.
//
// Parameters:
//   - n: worker count
//
// Returns:
//   - RendererBuilderOption: a function that applies the worker option to a renderer
func WithWorkers(n int) RendererBuilderOption {
	return func(r *renderer) {
		r.workers = max(n, 1)
	}
}
