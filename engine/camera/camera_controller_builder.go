package camera

// CameraControllerOption is a functional option for configuring a CameraController.
// Radius and elevation are clamped into their bounds after every option has been applied,
// so option order does not matter.
type CameraControllerOption func(*cameraControllerImpl)

// WithOrbit sets the initial spherical position around the target in one call.
//
// Parameters:
//   - radius: distance from the target (the framing radius the motion detector watches)
//   - azimuth: horizontal angle in radians (0 = +Z axis)
//   - elevation: vertical angle in radians (0 = horizontal)
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithOrbit(radius, azimuth, elevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.current = orbitState{radius: radius, azimuth: azimuth, elevation: elevation}
	}
}

// WithRadius sets the initial orbit radius.
//
// Parameters:
//   - radius: distance from the orbit target
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithRadius(radius float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.current.radius = radius
	}
}

// WithAzimuth sets the initial horizontal angle around the Y axis.
func WithAzimuth(azimuth float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.current.azimuth = azimuth
	}
}

// WithElevation sets the initial vertical angle from the horizontal plane.
func WithElevation(elevation float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.current.elevation = elevation
	}
}

// WithTarget sets the look-at/pivot point.
//
// Parameters:
//   - x, y, z: world-space coordinates of the target
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithTarget(x, y, z float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.target = [3]float32{x, y, z}
	}
}

// WithRadiusBounds limits zooming. Swapped bounds are reordered; the minimum is kept positive
// so the camera never reaches its target.
//
// Parameters:
//   - lo: minimum orbit radius
//   - hi: maximum orbit radius
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithRadiusBounds(lo, hi float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		lo, hi = min(lo, hi), max(lo, hi)
		if hi <= 0 {
			return
		}
		cc.minRadius = max(lo, 1e-3)
		cc.maxRadius = hi
	}
}

// WithElevationBounds limits vertical orbiting. Swapped bounds are reordered.
//
// Parameters:
//   - lo: minimum vertical angle in radians
//   - hi: maximum vertical angle in radians
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithElevationBounds(lo, hi float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.minElevation, cc.maxElevation = min(lo, hi), max(lo, hi)
	}
}

// WithOrbitSpeed sets the radians turned per arrow-key orbit step. Non-positive values are ignored.
func WithOrbitSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if speed > 0 {
			cc.orbitSpeed = speed
		}
	}
}

// WithMouseSensitivity sets the radians of orbit per dragged pixel. Non-positive values are ignored.
func WithMouseSensitivity(sensitivity float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if sensitivity > 0 {
			cc.mouseSensitivity = sensitivity
		}
	}
}

// WithZoomSpeed sets the radius change per scroll notch. Non-positive values are ignored.
func WithZoomSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if speed > 0 {
			cc.zoomSpeed = speed
		}
	}
}

// WithPanSpeed sets the pan speed multiplier. Non-positive values are ignored.
func WithPanSpeed(speed float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		if speed > 0 {
			cc.panSpeed = speed
		}
	}
}

// WithSmoothTime sets the exponential smoothing time constant used by Update.
// Zero disables smoothing so input applies immediately, which makes the camera settle on
// the very next tick.
//
// Parameters:
//   - seconds: smoothing time constant in seconds
//
// Returns:
//   - CameraControllerOption: option function to apply
func WithSmoothTime(seconds float32) CameraControllerOption {
	return func(cc *cameraControllerImpl) {
		cc.smoothTime = max(seconds, 0)
	}
}
