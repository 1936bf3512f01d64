package viewer

import (
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/motion"
)

// ViewerBuilderOption is a functional option applied to a viewer during NewViewer.
type ViewerBuilderOption func(*viewer)

// WithSize sets the initial output size. Defaults to 1280x720.
//
// Parameters:
//   - width, height: the size in pixels
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithSize(width, height int) ViewerBuilderOption {
	return func(v *viewer) {
		if width > 0 && height > 0 {
			v.width, v.height = width, height
		}
	}
}

// WithWorkers sets the renderer's row-dispatch worker count.
//
// Parameters:
//   - n: number of workers, 1 renders on the calling goroutine
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithWorkers(n int) ViewerBuilderOption {
	return func(v *viewer) {
		v.workers = n
	}
}

// WithCamera uses cam instead of a default orbit camera. The camera needs a controller
// for Tick to move it.
//
// Parameters:
//   - cam: the camera
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithCamera(cam camera.Camera) ViewerBuilderOption {
	return func(v *viewer) {
		v.cam = cam
	}
}

// WithConfig sets the initial pipeline configuration.
//
// Parameters:
//   - c: the configuration
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithConfig(c config.PipelineConfig) ViewerBuilderOption {
	return func(v *viewer) {
		v.cfg = c
	}
}

// WithStore shares an existing configuration store. Takes precedence over WithConfig.
//
// Parameters:
//   - s: the store
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithStore(s config.Store) ViewerBuilderOption {
	return func(v *viewer) {
		v.store = s
	}
}

// WithThresholds sets the motion detector thresholds.
//
// Parameters:
//   - t: the thresholds
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithThresholds(t motion.Thresholds) ViewerBuilderOption {
	return func(v *viewer) {
		v.thresholds = t
	}
}

// WithSuppressAfter sets how many frames accumulate while still before rendering pauses.
//
// Parameters:
//   - n: the frame count
//
// Returns:
//   - ViewerBuilderOption: option function to apply
func WithSuppressAfter(n int) ViewerBuilderOption {
	return func(v *viewer) {
		v.suppressAfter = max(n, 0)
	}
}
