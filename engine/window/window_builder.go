package window

import "time"

// WindowBuilderOption is a functional option applied to a window during NewWindow.
type WindowBuilderOption func(*engineWindow)

// WithTitle sets the initial title bar text.
//
// Parameters:
//   - title: the window title
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithTitle(title string) WindowBuilderOption {
	return func(w *engineWindow) {
		w.title = title
	}
}

// WithSize sets the requested client area size in screen coordinates. The size is clamped
// into the size limits; the framebuffer may be larger on high-DPI displays.
//
// Parameters:
//   - width, height: the requested size (non-positive values keep the default)
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSize(width, height int) WindowBuilderOption {
	return func(w *engineWindow) {
		if width > 0 {
			w.width.Store(int32(width))
		}
		if height > 0 {
			w.height.Store(int32(height))
		}
	}
}

// WithSizeLimits bounds interactive resizing. A maximum below the minimum is raised to it.
//
// Parameters:
//   - minWidth, minHeight: the smallest allowed size (clamped to at least 1)
//   - maxWidth, maxHeight: the largest allowed size
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithSizeLimits(minWidth, minHeight, maxWidth, maxHeight int) WindowBuilderOption {
	return func(w *engineWindow) {
		w.minWidth = max(minWidth, 1)
		w.minHeight = max(minHeight, 1)
		w.maxWidth = maxWidth
		w.maxHeight = maxHeight
	}
}

// WithResizable sets whether the user can resize the window. Defaults to true.
//
// Parameters:
//   - resizable: whether interactive resize is allowed
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithResizable(resizable bool) WindowBuilderOption {
	return func(w *engineWindow) {
		w.resizable = resizable
	}
}

// WithWaitTimeout bounds how long the message loop sleeps while no events arrive.
// Zero polls without sleeping. Defaults to 8ms.
//
// Parameters:
//   - d: the maximum wait per iteration
//
// Returns:
//   - WindowBuilderOption: option function to apply
func WithWaitTimeout(d time.Duration) WindowBuilderOption {
	return func(w *engineWindow) {
		w.waitTimeout = max(d, 0)
	}
}
