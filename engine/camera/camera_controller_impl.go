package camera

import (
	"math"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
)

// settleEpsilon is the distance below which a smoothed value snaps to its goal.
const settleEpsilon = 1e-5

// orbitState is one set of spherical coordinates.
type orbitState struct {
	radius    float32
	azimuth   float32
	elevation float32
}

// cameraControllerImpl is the single implementation of CameraController.
// Input methods modify the goal orbit; Update eases the current orbit toward it
// and recomputes the position.
type cameraControllerImpl struct {
	mu *sync.Mutex

	// Camera position (computed from target + current spherical coords)
	position [3]float32
	target   [3]float32

	current orbitState
	goal    orbitState

	// Orbit constraints
	minRadius    float32
	maxRadius    float32
	minElevation float32
	maxElevation float32

	// Speed settings
	orbitSpeed       float32
	mouseSensitivity float32
	zoomSpeed        float32
	panSpeed         float32

	// smoothTime is the exponential smoothing time constant in seconds; 0 snaps immediately.
	smoothTime float32
}

// Compile-time interface compliance check
var _ CameraController = &cameraControllerImpl{}

// NewCameraController creates a new orbit camera controller with sensible defaults.
//
// Parameters:
//   - options: functional options to configure the controller
//
// Returns:
//   - CameraController: the newly created controller
func NewCameraController(options ...CameraControllerOption) CameraController {
	cc := &cameraControllerImpl{
		mu:     &sync.Mutex{},
		target: [3]float32{0, 0, 0},

		current: orbitState{
			radius:    250.0,
			azimuth:   0.0,
			elevation: float32(math.Pi / 6),
		},

		minRadius:    1.0,
		maxRadius:    5000.0,
		minElevation: float32(-math.Pi/2 + 0.05),
		maxElevation: float32(math.Pi/2 - 0.05),

		orbitSpeed:       0.03,
		mouseSensitivity: 0.005,
		zoomSpeed:        15.0,
		panSpeed:         1.0,

		smoothTime: 0.1,
	}

	for _, option := range options {
		option(cc)
	}

	cc.current.radius = clamp(cc.current.radius, cc.minRadius, cc.maxRadius)
	cc.current.elevation = clamp(cc.current.elevation, cc.minElevation, cc.maxElevation)
	cc.goal = cc.current
	cc.updatePosition()
	return cc
}

// --- internal helpers ---

func clamp(v, lo, hi float32) float32 {
	return min(max(v, lo), hi)
}

// updatePosition recomputes the camera position from the current spherical coordinates.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) updatePosition() {
	cosElev := float32(math.Cos(float64(cc.current.elevation)))
	sinElev := float32(math.Sin(float64(cc.current.elevation)))
	cosAzim := float32(math.Cos(float64(cc.current.azimuth)))
	sinAzim := float32(math.Sin(float64(cc.current.azimuth)))

	cc.position[0] = cc.target[0] + cc.current.radius*cosElev*sinAzim
	cc.position[1] = cc.target[1] + cc.current.radius*sinElev
	cc.position[2] = cc.target[2] + cc.current.radius*cosElev*cosAzim
}

// snapIfNoSmoothing copies the goal to the current orbit when smoothing is disabled.
// Caller must hold the mutex.
func (cc *cameraControllerImpl) snapIfNoSmoothing() {
	if cc.smoothTime <= 0 {
		cc.current = cc.goal
		cc.updatePosition()
	}
}

// ease moves cur toward goal by the fraction alpha, snapping inside settleEpsilon.
func ease(cur, goal, alpha float32) float32 {
	if d := goal - cur; d > -settleEpsilon && d < settleEpsilon {
		return goal
	}
	return cur + (goal-cur)*alpha
}

// --- CameraController shared methods ---

func (cc *cameraControllerImpl) Position() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.position[0], cc.position[1], cc.position[2]
}

func (cc *cameraControllerImpl) Target() (x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.target[0], cc.target[1], cc.target[2]
}

func (cc *cameraControllerImpl) SetTarget(x, y, z float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = [3]float32{x, y, z}
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Zoom(delta float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.goal.radius = clamp(cc.goal.radius-delta*cc.zoomSpeed, cc.minRadius, cc.maxRadius)
	cc.snapIfNoSmoothing()
}

func (cc *cameraControllerImpl) Pan(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	// right = (cos az, 0, -sin az); up = world up keeps panning level with the ground.
	az := float64(cc.current.azimuth)
	rx := float32(math.Cos(az))
	rz := float32(-math.Sin(az))

	cc.target[0] += rx * dx * cc.panSpeed
	cc.target[1] += dy * cc.panSpeed
	cc.target[2] += rz * dx * cc.panSpeed
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Frame(bounds common.Box3, fov float32) {
	if bounds.IsEmpty() {
		return
	}
	center := bounds.Min.Add(bounds.Max).Mul(0.5)
	sphere := bounds.Size().Len() / 2
	dist := sphere / float32(math.Sin(float64(fov)/2))

	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.target = [3]float32{center[0], center[1], center[2]}
	cc.goal.radius = clamp(dist, cc.minRadius, cc.maxRadius)
	cc.snapIfNoSmoothing()
	cc.updatePosition()
}

func (cc *cameraControllerImpl) Update(dt float32) bool {
	cc.mu.Lock()
	defer cc.mu.Unlock()

	before := cc.position
	if cc.smoothTime <= 0 {
		cc.current = cc.goal
	} else {
		alpha := float32(1 - math.Exp(-float64(dt/cc.smoothTime)))
		cc.current.radius = ease(cc.current.radius, cc.goal.radius, alpha)
		cc.current.azimuth = ease(cc.current.azimuth, cc.goal.azimuth, alpha)
		cc.current.elevation = ease(cc.current.elevation, cc.goal.elevation, alpha)
	}
	cc.updatePosition()
	return before != cc.position
}

// --- orbitCameraController implementation ---

func (cc *cameraControllerImpl) OrbitLeft() {
	cc.Orbit(-cc.orbitSpeed/cc.mouseSensitivity, 0)
}

func (cc *cameraControllerImpl) OrbitRight() {
	cc.Orbit(cc.orbitSpeed/cc.mouseSensitivity, 0)
}

func (cc *cameraControllerImpl) OrbitUp() {
	cc.Orbit(0, cc.orbitSpeed/cc.mouseSensitivity)
}

func (cc *cameraControllerImpl) OrbitDown() {
	cc.Orbit(0, -cc.orbitSpeed/cc.mouseSensitivity)
}

func (cc *cameraControllerImpl) Orbit(dx, dy float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.goal.azimuth += dx * cc.mouseSensitivity
	cc.goal.elevation = clamp(cc.goal.elevation+dy*cc.mouseSensitivity, cc.minElevation, cc.maxElevation)
	cc.snapIfNoSmoothing()
}

func (cc *cameraControllerImpl) Radius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.current.radius
}

func (cc *cameraControllerImpl) SetRadius(radius float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.goal.radius = clamp(radius, cc.minRadius, cc.maxRadius)
	cc.snapIfNoSmoothing()
}

func (cc *cameraControllerImpl) MinRadius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.minRadius
}

func (cc *cameraControllerImpl) MaxRadius() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.maxRadius
}

func (cc *cameraControllerImpl) Azimuth() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.current.azimuth
}

func (cc *cameraControllerImpl) SetAzimuth(azimuth float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.goal.azimuth = azimuth
	cc.snapIfNoSmoothing()
}

func (cc *cameraControllerImpl) Elevation() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.current.elevation
}

func (cc *cameraControllerImpl) SetElevation(elevation float32) {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	cc.goal.elevation = clamp(elevation, cc.minElevation, cc.maxElevation)
	cc.snapIfNoSmoothing()
}

func (cc *cameraControllerImpl) OrbitSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.orbitSpeed
}

func (cc *cameraControllerImpl) MouseSensitivity() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.mouseSensitivity
}

func (cc *cameraControllerImpl) ZoomSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.zoomSpeed
}

func (cc *cameraControllerImpl) PanSpeed() float32 {
	cc.mu.Lock()
	defer cc.mu.Unlock()
	return cc.panSpeed
}
