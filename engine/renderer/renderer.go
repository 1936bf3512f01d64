package renderer

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
)

var (
	// ErrTargetSizeMismatch is returned when a render call targets a buffer whose size
	// differs from the renderer's current size, typically between a resize and the
	// propagation of that resize to every target.
	ErrTargetSizeMismatch = errors.New("render target size does not match renderer size")

	// ErrNoRenderTarget is returned when a render call is issued with no target bound.
	ErrNoRenderTarget = errors.New("no render target bound")
)

// Scene is anything the renderer can draw through a camera.
type Scene interface {
	// Draw rasterises the scene into target, depth-testing against its depth attachment
	// when present.
	//
	// Parameters:
	//   - target: the colour (+depth) target to draw into
	//   - cam: the camera providing the view-projection matrix
	//
	// Returns:
	//   - error: an error if drawing fails
	Draw(target *RenderTarget, cam camera.Camera) error
}

// State is a snapshot of the renderer's transient global settings.
type State struct {
	ClearColor common.Color
	ClearAlpha float32
	AutoClear  bool
	Target     *RenderTarget
}

// Stats counts renderer activity since creation.
type Stats struct {
	// Frames counts calls to Render that reached the scene.
	Frames uint64
	// Clears counts calls to Clear.
	Clears uint64
	// Dispatches counts fullscreen dispatches.
	Dispatches uint64
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	width, height int

	clearColor common.Color
	clearAlpha float32
	autoClear  bool
	target     *RenderTarget

	// exposure scales linear colour before sRGB encoding in the gamma present.
	exposure float32

	// screen is the presentable output; passes that render to screen write here.
	screen *RenderTarget

	workers int
	pool    worker.DynamicWorkerPool

	stats Stats
}

// Renderer defines the interface for the CPU raster backend.
//
// It mirrors the small slice of a GPU renderer the pass chain relies on: a current target,
// transient clear/auto-clear state shared by every pass, a scene draw call, and fullscreen
// dispatches. Passes save and restore the shared state around their work with Scope.
type Renderer interface {
	// Size returns the current drawing-buffer size in pixels.
	Size() (width, height int)

	// SetSize changes the drawing-buffer size and resizes the screen target.
	// Other targets must be resized by their owners before the next render.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	SetSize(width, height int)

	// ClearColor returns the colour used by Clear (alpha comes from ClearAlpha).
	ClearColor() common.Color

	// SetClearColor sets the colour used by Clear.
	SetClearColor(c common.Color)

	// ClearAlpha returns the alpha used by Clear.
	ClearAlpha() float32

	// SetClearAlpha sets the alpha used by Clear.
	SetClearAlpha(a float32)

	// AutoClear reports whether Render clears the target before drawing.
	AutoClear() bool

	// SetAutoClear toggles clearing inside Render.
	SetAutoClear(enabled bool)

	// Exposure returns the linear scale applied by gamma-correcting presents.
	Exposure() float32

	// SetExposure sets the linear scale applied by gamma-correcting presents.
	SetExposure(exposure float32)

	// RenderTarget returns the currently bound target (the screen when nothing else is bound).
	RenderTarget() *RenderTarget

	// SetRenderTarget binds rt for subsequent Clear and Render calls. nil binds the screen.
	SetRenderTarget(rt *RenderTarget)

	// Screen returns the presentable output target.
	Screen() *RenderTarget

	// Clear fills the bound target with the clear colour/alpha and resets its depth.
	Clear()

	// Render draws scene through cam into the bound target.
	//
	// Returns:
	//   - error: ErrTargetSizeMismatch when the bound target's size differs from Size,
	//     ErrNoRenderTarget when nothing is bound, or the scene's draw error
	Render(scene Scene, cam camera.Camera) error

	// SaveState captures the transient global settings.
	SaveState() State

	// RestoreState reinstates settings captured by SaveState.
	RestoreState(s State)

	// Scope captures the transient settings and returns a func restoring them.
	// Intended for `defer r.Scope()()` so state is restored even when a pass panics.
	Scope() func()

	// Dispatch runs fn once for every row index in [0, rows), spreading bands of rows
	// across the renderer's worker pool, and returns after every row has finished.
	//
	// Parameters:
	//   - rows: number of rows
	//   - fn: per-row work; must only write to data owned by that row
	Dispatch(rows int, fn func(y int))

	// Stats returns activity counters.
	Stats() Stats
}

var _ Renderer = &renderer{}

// NewRenderer creates a CPU renderer with its screen target allocated at the configured size.
//
// Parameters:
//   - options: functional options
//
// Returns:
//   - Renderer: the renderer
func NewRenderer(options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:         &sync.Mutex{},
		width:      1280,
		height:     720,
		clearColor: common.RGBHex(0xcccccc),
		clearAlpha: 0,
		autoClear:  true,
		exposure:   1,
		workers:    defaultWorkers(),
	}
	for _, opt := range options {
		opt(r)
	}

	r.screen = NewRenderTarget("screen", r.width, r.height)
	r.target = r.screen

	if r.workers > 1 {
		r.pool = worker.NewDynamicWorkerPool(r.workers, 256, 1*time.Second)
	}
	return r
}

func (r *renderer) Size() (width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.width, r.height
}

func (r *renderer) SetSize(width, height int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.width, r.height = width, height
	r.screen.SetSize(width, height)
}

func (r *renderer) ClearColor() common.Color {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearColor
}

func (r *renderer) SetClearColor(c common.Color) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearColor = c
}

func (r *renderer) ClearAlpha() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.clearAlpha
}

func (r *renderer) SetClearAlpha(a float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearAlpha = a
}

func (r *renderer) AutoClear() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.autoClear
}

func (r *renderer) SetAutoClear(enabled bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.autoClear = enabled
}

func (r *renderer) Exposure() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.exposure
}

func (r *renderer) SetExposure(exposure float32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.exposure = exposure
}

func (r *renderer) RenderTarget() *RenderTarget {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.target
}

func (r *renderer) SetRenderTarget(rt *RenderTarget) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if rt == nil {
		rt = r.screen
	}
	r.target = rt
}

func (r *renderer) Screen() *RenderTarget {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.screen
}

func (r *renderer) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearLocked()
}

// clearLocked fills the bound target. Caller must hold the mutex.
func (r *renderer) clearLocked() {
	if r.target == nil {
		return
	}
	c := r.clearColor
	c.A = r.clearAlpha
	r.target.Fill(c)
	r.stats.Clears++
}

func (r *renderer) Render(scene Scene, cam camera.Camera) error {
	r.mu.Lock()
	target := r.target
	if target == nil {
		r.mu.Unlock()
		return ErrNoRenderTarget
	}
	if target.Width() != r.width || target.Height() != r.height {
		w, h := r.width, r.height
		r.mu.Unlock()
		return fmt.Errorf("%s is %dx%d, renderer is %dx%d: %w",
			target.Label(), target.Width(), target.Height(), w, h, ErrTargetSizeMismatch)
	}
	if r.autoClear {
		r.clearLocked()
	}
	r.stats.Frames++
	r.mu.Unlock()

	if scene == nil {
		return nil
	}
	return scene.Draw(target, cam)
}

func (r *renderer) SaveState() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return State{
		ClearColor: r.clearColor,
		ClearAlpha: r.clearAlpha,
		AutoClear:  r.autoClear,
		Target:     r.target,
	}
}

func (r *renderer) RestoreState(s State) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clearColor = s.ClearColor
	r.clearAlpha = s.ClearAlpha
	r.autoClear = s.AutoClear
	r.target = s.Target
	if r.target == nil {
		r.target = r.screen
	}
}

func (r *renderer) Scope() func() {
	s := r.SaveState()
	return func() { r.RestoreState(s) }
}

func (r *renderer) Dispatch(rows int, fn func(y int)) {
	r.mu.Lock()
	r.stats.Dispatches++
	pool, workers := r.pool, r.workers
	r.mu.Unlock()

	if rows <= 0 {
		return
	}
	if pool == nil || rows < minParallelRows {
		for y := 0; y < rows; y++ {
			fn(y)
		}
		return
	}

	// Bands are joined with a WaitGroup barrier rather than pool.Wait, which blocks
	// until workers idle out.
	band := (rows + workers - 1) / workers
	var wg sync.WaitGroup
	id := 0
	for start := 0; start < rows; start += band {
		end := min(start+band, rows)
		wg.Add(1)
		s, e := start, end
		pool.SubmitTask(worker.Task{
			ID: id,
			Do: func() (any, error) {
				defer wg.Done()
				for y := s; y < e; y++ {
					fn(y)
				}
				return nil, nil
			},
		})
		id++
	}
	wg.Wait()
}

func (r *renderer) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}
