package camera

import "math"

// CameraBuilderOption is a functional option applied to a camera during NewCamera.
// Options that receive an out-of-range value leave the default in place.
type CameraBuilderOption func(*cameraImpl)

// WithUp sets the world up vector used to orient the view. A zero vector is ignored.
//
// Parameters:
//   - x, y, z: up vector components
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithUp(x, y, z float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if x == 0 && y == 0 && z == 0 {
			return
		}
		c.up = [3]float32{x, y, z}
	}
}

// WithFov sets the vertical field of view. Must lie in (0, pi).
//
// Parameters:
//   - fov: field of view in radians
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithFov(fov float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if fov > 0 && fov < math.Pi {
			c.fov = fov
		}
	}
}

// WithAspect sets the initial aspect ratio (width / height). The viewer overwrites it
// from the output size on construction and on every resize.
//
// Parameters:
//   - aspect: a positive aspect ratio
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithAspect(aspect float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if aspect > 0 {
			c.aspect = aspect
		}
	}
}

// WithNear sets the near clipping plane distance. Depth precision for occlusion
// reconstruction degrades quickly as near approaches zero.
//
// Parameters:
//   - near: a positive near plane distance
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithNear(near float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if near > 0 {
			c.near = near
		}
	}
}

// WithFar sets the initial far clipping plane distance. With auto-correction on, the
// viewer replaces it each tick with the farthest scene corner.
//
// Parameters:
//   - far: a positive far plane distance
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithFar(far float32) CameraBuilderOption {
	return func(c *cameraImpl) {
		if far > 0 {
			c.far = far
		}
	}
}

// WithController attaches the controller that owns the camera's position and target.
//
// Parameters:
//   - ctrl: the controller to attach
//
// Returns:
//   - CameraBuilderOption: option function to apply
func WithController(ctrl CameraController) CameraBuilderOption {
	return func(c *cameraImpl) {
		c.controller = ctrl
	}
}
