// Package viewer is the adaptive render pipeline: it owns the renderer, the pass chain and
// its composer, the camera motion detector and the configuration store, and decides once per
// tick whether and how to render.
//
// While the camera moves, frames render through the plain geometry pass (Interactive).
// Once the camera has settled, the pipeline switches to jittered rendering with temporal
// accumulation (Accumulating) and stops re-rendering after enough frames have converged.
package viewer

import (
	"errors"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/composer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/config"
	"github.com/Carmen-Shannon/oxy-viewer/engine/motion"
	"github.com/Carmen-Shannon/oxy-viewer/engine/pass"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/scene"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/go-gl/mathgl/mgl32"
)

// DefaultSuppressAfter is the number of frames accumulated while still after which the
// viewer stops re-rendering until something changes.
const DefaultSuppressAfter = 64

// Stats counts viewer ticks.
type Stats struct {
	Ticks    uint64
	Rendered uint64
	Skipped  uint64
	Deferred uint64
}

// Viewer drives the pipeline. Every method is safe for concurrent use, but Tick is meant to
// be called from a single render loop.
type Viewer interface {
	// Tick advances the camera controller by dt, updates occlusion scaling and motion state,
	// and renders a frame when the controls moved or a render is pending.
	// A frame deferred by a pending resize is not an error.
	//
	// Parameters:
	//   - dt: elapsed time in seconds since the previous tick
	//
	// Returns:
	//   - bool: whether a frame was rendered
	//   - error: a pass error, if rendering failed
	Tick(dt float32) (bool, error)

	// EnableTAA switches between Accumulating (true) and Interactive (false) rendering.
	// Both directions restart accumulation and force a render.
	//
	// Parameters:
	//   - v: whether to accumulate
	EnableTAA(v bool)

	// EnableSAO turns the occlusion pass on or off through the config store.
	//
	// Parameters:
	//   - v: whether occlusion runs
	EnableSAO(v bool)

	// SetAllowTAA sets whether motion events switch modes, through the config store.
	// Disallowing also leaves Accumulating.
	//
	// Parameters:
	//   - v: whether accumulation is allowed
	SetAllowTAA(v bool)

	// SetExposure sets the output exposure through the config store.
	//
	// Parameters:
	//   - exposure: the new exposure, must be positive
	//
	// Returns:
	//   - error: a wrapped config.ErrInvalidConfig when rejected
	SetExposure(exposure float32) error

	// Resize propagates a new output size to the renderer, every target and the camera aspect.
	// Non-positive sizes (a minimised window) are ignored.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	Resize(width, height int)

	// RequestRender forces a render on the next tick.
	RequestRender()

	// InvalidateHistory restarts accumulation and forces a render.
	InvalidateHistory()

	// SetLightDirection changes the scene light and restarts accumulation.
	//
	// Parameters:
	//   - dir: direction towards the light
	SetLightDirection(dir mgl32.Vec3)

	// Output returns the target the last pass presents into.
	Output() *renderer.RenderTarget

	// Snapshot packs the output for upload while holding the viewer lock, so a concurrent
	// Resize cannot reallocate it mid-copy.
	//
	// Returns:
	//   - *wgpu.TextureDescriptor: the output texture descriptor
	//   - common.TextureStagingData: the RGBA8 pixels
	Snapshot() (*wgpu.TextureDescriptor, common.TextureStagingData)

	// Mode returns the current render mode.
	Mode() composer.RenderMode

	// AccumulatedFrames returns the frames rendered since the camera settled or history was
	// last invalidated.
	AccumulatedFrames() int

	// AllowTAA reports whether motion events switch modes.
	AllowTAA() bool

	Renderer() renderer.Renderer
	Camera() camera.Camera
	Scene() scene.Scene
	Composer() composer.Composer

	// Detector returns the motion detector. Its subscribers run on the tick goroutine while
	// the viewer is locked and must not call back into the viewer.
	Detector() motion.Detector

	Config() config.Store
	Stats() Stats
}

type viewer struct {
	mu *sync.Mutex

	r     renderer.Renderer
	cam   camera.Camera
	sc    scene.Scene
	chain composer.Chain
	comp  composer.Composer
	det   motion.Detector
	store config.Store

	width, height int
	workers       int
	cfg           config.PipelineConfig
	thresholds    motion.Thresholds
	suppressAfter int

	allowTAA    bool
	needsRender bool
	accumulated int
	stats       Stats
}

var _ Viewer = &viewer{}

// NewViewer builds the pipeline around sc. Without WithCamera, an orbit camera framing the
// scene bounds is created.
//
// Parameters:
//   - sc: the scene to render (must not be nil)
//   - options: functional options
//
// Returns:
//   - Viewer: the viewer
func NewViewer(sc scene.Scene, options ...ViewerBuilderOption) Viewer {
	if sc == nil {
		panic("viewer: NewViewer requires a non-nil Scene")
	}
	v := &viewer{
		mu:            &sync.Mutex{},
		sc:            sc,
		width:         1280,
		height:        720,
		cfg:           config.DefaultPipelineConfig(),
		thresholds:    motion.DefaultThresholds(),
		suppressAfter: DefaultSuppressAfter,
	}
	for _, opt := range options {
		opt(v)
	}

	rOpts := []renderer.RendererBuilderOption{renderer.WithSize(v.width, v.height)}
	if v.workers > 0 {
		rOpts = append(rOpts, renderer.WithWorkers(v.workers))
	}
	v.r = renderer.NewRenderer(rOpts...)

	if v.cam == nil {
		ctrl := camera.NewCameraController()
		v.cam = camera.NewCamera(camera.WithController(ctrl))
		ctrl.Frame(sc.Bounds(), v.cam.Fov())
	}
	v.cam.SetAspect(float32(v.width) / float32(v.height))
	v.cam.Update()

	v.chain = composer.Chain{
		Geometry:         pass.NewGeometryPass(sc, v.cam),
		Jittered:         pass.NewJitteredPass(sc, v.cam),
		AmbientOcclusion: pass.NewAmbientOcclusionPass(sc, v.cam, v.width, v.height),
		Reprojection:     pass.NewReprojectionPass(v.width, v.height),
	}
	v.comp = composer.NewComposer(v.r, v.chain)
	v.det = motion.NewDetector(motion.WithThresholds(v.thresholds), motion.WithInitialSample(v.sample()))

	if v.store == nil {
		v.store = config.NewStore(v.cfg)
	}
	v.cfg = v.store.Current()
	v.applyConfig(v.cfg)
	v.enableSAO(v.cfg.SAOEnabled)
	v.allowTAA = v.cfg.TAAAllowed
	v.enableTAA(false)
	v.store.Subscribe(v.onConfigChange)

	common.Logger().Info("viewer created", "width", v.width, "height", v.height, "meshes", sc.Count())
	return v
}

func (v *viewer) sample() motion.Sample {
	s := motion.Sample{
		Position:    v.cam.Position(),
		Orientation: v.cam.Orientation(),
	}
	if ctrl := v.cam.Controller(); ctrl != nil {
		s.Radius = ctrl.Radius()
	}
	return s
}

func (v *viewer) Tick(dt float32) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.stats.Ticks++
	controlsUpdated := false
	if ctrl := v.cam.Controller(); ctrl != nil {
		controlsUpdated = ctrl.Update(dt)
	}
	v.cam.Update()
	moved := v.updateCamera()

	if !controlsUpdated && !moved && !v.needsRender {
		v.stats.Skipped++
		return false, nil
	}
	v.needsRender = false

	if err := v.comp.Render(); err != nil {
		v.needsRender = true
		if errors.Is(err, composer.ErrResizePending) {
			v.stats.Deferred++
			return false, nil
		}
		common.Logger().Warn("render failed", "err", err)
		return false, err
	}

	v.stats.Rendered++
	if v.det.Still() {
		v.accumulated++
	}
	v.needsRender = !(v.accumulated > v.suppressAfter && v.det.Still())
	return true, nil
}

// updateCamera rescales occlusion to the scene, feeds the detector and acts on its
// transitions. It reports whether the camera moved this frame. Caller must hold the mutex.
func (v *viewer) updateCamera() bool {
	if bounds := v.sc.Bounds(); !bounds.IsEmpty() && v.cfg.Correction {
		d := bounds.MaxDistance(v.cam.Position())
		if d > v.cam.Near() {
			v.cam.SetFar(d)
			v.chain.AmbientOcclusion.SetScale(d)
		}
	}

	switch v.det.Observe(v.sample()) {
	case motion.MovementStarted:
		if v.allowTAA {
			common.Logger().Debug("movement started")
			v.enableTAA(false)
		}
	case motion.MovementStopped:
		if v.allowTAA {
			common.Logger().Debug("movement stopped")
			v.enableTAA(true)
		}
	}
	return !v.det.Thresholds().Stationary(v.det.LastDeltas())
}

func (v *viewer) EnableTAA(value bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.enableTAA(value)
}

// enableTAA switches the mode and restarts accumulation. Caller must hold the mutex.
func (v *viewer) enableTAA(value bool) {
	mode := composer.Interactive
	if value {
		mode = composer.Accumulating
	}
	v.comp.SetMode(mode)
	v.invalidate()
}

// enableSAO toggles the occlusion pass. With occlusion off, the jittered pass writes
// straight into the read buffer for the reprojection pass. Caller must hold the mutex.
func (v *viewer) enableSAO(value bool) {
	v.chain.AmbientOcclusion.SetEnabled(value)
	v.chain.Jittered.SetSwap(!value)
	v.invalidate()
}

// invalidate restarts accumulation. Caller must hold the mutex.
func (v *viewer) invalidate() {
	v.chain.Reprojection.Reset()
	v.accumulated = 0
	v.needsRender = true
}

func (v *viewer) EnableSAO(value bool) {
	v.update(func(c *config.PipelineConfig) { c.SAOEnabled = value })
}

func (v *viewer) SetAllowTAA(value bool) {
	v.update(func(c *config.PipelineConfig) { c.TAAAllowed = value })
}

func (v *viewer) SetExposure(exposure float32) error {
	_, _, err := v.store.Update(func(c *config.PipelineConfig) { c.Exposure = exposure })
	return err
}

// update applies fn through the store. Must not be called with the mutex held: the store
// notifies onConfigChange synchronously.
func (v *viewer) update(fn func(*config.PipelineConfig)) {
	if _, _, err := v.store.Update(fn); err != nil {
		common.Logger().Warn("config update rejected", "err", err)
	}
}

func (v *viewer) onConfigChange(prev, next config.PipelineConfig) {
	v.mu.Lock()
	defer v.mu.Unlock()

	v.cfg = next
	v.applyConfig(next)
	if prev.SAOEnabled != next.SAOEnabled {
		v.enableSAO(next.SAOEnabled)
	}
	if prev.TAAAllowed != next.TAAAllowed {
		v.allowTAA = next.TAAAllowed
		v.enableTAA(next.TAAAllowed && v.det.Still())
	}
	v.invalidate()
}

// applyConfig forwards the tunables to the passes and renderer. Caller must hold the mutex.
func (v *viewer) applyConfig(c config.PipelineConfig) {
	v.chain.AmbientOcclusion.SetParams(c.SAOParams())
	v.r.SetExposure(c.Exposure)
}

func (v *viewer) Resize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	v.mu.Lock()
	defer v.mu.Unlock()

	v.width, v.height = width, height
	v.comp.SetSize(width, height)
	v.cam.SetAspect(float32(width) / float32(height))
	v.invalidate()
}

func (v *viewer) RequestRender() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.needsRender = true
}

func (v *viewer) InvalidateHistory() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.invalidate()
}

func (v *viewer) SetLightDirection(dir mgl32.Vec3) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.sc.SetLightDirection(dir)
	v.invalidate()
}

func (v *viewer) Output() *renderer.RenderTarget {
	return v.r.Screen()
}

func (v *viewer) Snapshot() (*wgpu.TextureDescriptor, common.TextureStagingData) {
	v.mu.Lock()
	defer v.mu.Unlock()
	out := v.r.Screen()
	return out.Descriptor(), out.Staging()
}

func (v *viewer) Mode() composer.RenderMode {
	return v.comp.Mode()
}

func (v *viewer) AccumulatedFrames() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.accumulated
}

func (v *viewer) AllowTAA() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.allowTAA
}

func (v *viewer) Renderer() renderer.Renderer {
	return v.r
}

func (v *viewer) Camera() camera.Camera {
	return v.cam
}

func (v *viewer) Scene() scene.Scene {
	return v.sc
}

func (v *viewer) Composer() composer.Composer {
	return v.comp
}

func (v *viewer) Detector() motion.Detector {
	return v.det
}

func (v *viewer) Config() config.Store {
	return v.store
}

func (v *viewer) Stats() Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.stats
}
