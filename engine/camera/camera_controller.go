package camera

import "github.com/Carmen-Shannon/oxy-viewer/common"

// CameraController drives the camera's position and target.
// Controllers own positional state; the Camera reads from the controller and computes
// view/projection matrices. The orbit controller keeps goal values for radius, azimuth
// and elevation and eases the current values toward them in Update, so the camera keeps
// moving for a few frames after input stops.
type CameraController interface {
	orbitCameraController

	// Position returns the camera's world-space position.
	//
	// Returns:
	//   - x, y, z: world-space camera position
	Position() (x, y, z float32)

	// Target returns the look-at point.
	//
	// Returns:
	//   - x, y, z: world-space target position
	Target() (x, y, z float32)

	// SetTarget sets the look-at/pivot point and recomputes position from spherical coordinates.
	//
	// Parameters:
	//   - x, y, z: world-space coordinates
	SetTarget(x, y, z float32)

	// Zoom changes the goal orbit radius. Positive delta zooms in (closer to target).
	//
	// Parameters:
	//   - delta: zoom amount scaled by ZoomSpeed
	Zoom(delta float32)

	// Pan translates the target and camera together along the camera's right and up axes.
	//
	// Parameters:
	//   - dx, dy: pan amounts in world units, scaled by PanSpeed
	Pan(dx, dy float32)

	// Frame moves the target to the centre of bounds and sets the goal radius so the whole
	// box fits inside a vertical field of view fov.
	//
	// Parameters:
	//   - bounds: the world-space box to frame
	//   - fov: vertical field of view in radians
	Frame(bounds common.Box3, fov float32)

	// Update eases the current orbit values toward their goals.
	//
	// Parameters:
	//   - dt: elapsed time in seconds since the previous update
	//
	// Returns:
	//   - bool: true if the camera position changed during this update
	Update(dt float32) bool
}

// orbitCameraController defines orbit-specific control methods.
// Provides orbit controls using spherical coordinates (radius, azimuth, elevation)
// relative to the target/pivot point.
type orbitCameraController interface {
	// OrbitLeft rotates the goal azimuth left by one orbit speed step.
	OrbitLeft()

	// OrbitRight rotates the goal azimuth right by one orbit speed step.
	OrbitRight()

	// OrbitUp tilts the goal elevation upward by one orbit speed step, clamped to max elevation.
	OrbitUp()

	// OrbitDown tilts the goal elevation downward by one orbit speed step, clamped to min elevation.
	OrbitDown()

	// Orbit applies a mouse drag of (dx, dy) pixels scaled by MouseSensitivity.
	Orbit(dx, dy float32)

	// Radius returns the current orbit radius. This is the framing radius the motion
	// detector watches: a change means the user zoomed.
	Radius() float32

	// SetRadius sets the goal orbit radius, clamped to min/max bounds.
	SetRadius(radius float32)

	// MinRadius returns the minimum allowed orbit radius.
	MinRadius() float32

	// MaxRadius returns the maximum allowed orbit radius.
	MaxRadius() float32

	// Azimuth returns the current horizontal angle around the Y axis in radians.
	Azimuth() float32

	// SetAzimuth sets the goal horizontal angle in radians.
	SetAzimuth(azimuth float32)

	// Elevation returns the current vertical angle from the horizontal plane in radians.
	Elevation() float32

	// SetElevation sets the goal vertical angle, clamped to min/max bounds.
	SetElevation(elevation float32)

	// OrbitSpeed returns the keyboard orbit speed in radians per step.
	OrbitSpeed() float32

	// MouseSensitivity returns the radians of orbit per dragged pixel.
	MouseSensitivity() float32

	// ZoomSpeed returns the zoom speed multiplier.
	ZoomSpeed() float32

	// PanSpeed returns the pan speed multiplier.
	PanSpeed() float32
}
