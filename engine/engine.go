package engine

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/composer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/profiler"
	"github.com/Carmen-Shannon/oxy-viewer/engine/surface"
	"github.com/Carmen-Shannon/oxy-viewer/engine/viewer"
	"github.com/Carmen-Shannon/oxy-viewer/engine/window"
)

// engine implements the Engine interface.
// Coordinates the tick, present, and window threads.
type engine struct {
	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window    window.Window
	viewer    viewer.Viewer
	presenter surface.Presenter

	// frames holds the latest rendered frame waiting to be presented. Older frames are dropped.
	frames chan surface.Frame

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped

	input inputState

	// baseTitle is the window title the status suffix is appended to.
	baseTitle string
}

// Engine is the main entry point for the viewer application.
// It runs the pipeline tick loop, the present loop, and window management.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance, or nil when running headless
	Window() window.Window

	// Viewer returns the render pipeline driven by the tick loop.
	Viewer() viewer.Viewer

	// Presenter returns the surface presenter, or nil when running headless.
	Presenter() surface.Presenter

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The viewer is ticked at this rate.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick, before the viewer ticks.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each presented frame.
	//
	// Parameters:
	//   - callback: function to call each presented frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetRenderFrameLimit sets an optional present rate cap in frames per second.
	// Pass 0 to uncap the present loop (default).
	//
	// Parameters:
	//   - fps: maximum presented frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// Run starts the engine. With a window it blocks until the window closes, otherwise until Quit.
	Run()

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

// NewEngine creates a new Engine instance with the provided options.
// Binds the window's resize and input callbacks to the viewer when both are provided.
//
// Parameters:
//   - options: functional options for engine configuration (viewer, window, profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		tickRateChannel:  make(chan time.Duration, 1),
		quitChannel:      make(chan struct{}),
		frames:           make(chan surface.Frame, 1),
		wg:               sync.WaitGroup{},
		profilingEnabled: false,
		engineTickRate:   time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.viewer == nil {
		panic("engine: NewEngine requires a Viewer (use WithViewer)")
	}

	if e.profiler == nil {
		e.profiler = profiler.NewProfiler()
	}
	e.profiler.SetAttributes(e.pipelineAttributes)

	if e.window != nil {
		e.baseTitle = e.window.Title()
		e.window.SetResizeCallback(e.onResize)
		e.window.SetUpdateCallback(e.updateTitle)
		e.bindInput(e.window)
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Viewer() viewer.Viewer {
	return e.viewer
}

func (e *engine) Presenter() surface.Presenter {
	return e.presenter
}

func (e *engine) Run() {
	if e.window != nil && e.presenter != nil {
		e.presenter.Configure(e.window.Width(), e.window.Height())
	}
	e.running.Store(true)
	e.viewer.RequestRender()
	e.handle()

	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()

	if e.window != nil {
		if err := e.window.Close(); err != nil {
			common.Logger().Warn("close window", "error", err)
		}
	}
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
		if e.window != nil {
			e.window.RequestClose()
		}
	})
}

// handle launches the engine, render, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate tick loop in its own goroutine.
// Fires the tick callback, then ticks the viewer, at the configured tick rate and listens for
// dynamic rate changes via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			if e.tickCallback != nil {
				e.tickCallback(dt)
			}
			e.step(dt)
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.engineTickRate = newRate
		}
	}
}

// step ticks the viewer once and queues the output when a frame was rendered.
//
// Parameters:
//   - dt: elapsed time in seconds since the previous tick
//
// Returns:
//   - bool: whether a frame was queued for presentation
func (e *engine) step(dt float32) bool {
	rendered, err := e.viewer.Tick(dt)
	if err != nil {
		common.Logger().Error("viewer tick failed", "error", err)
		return false
	}
	if !rendered {
		return false
	}

	desc, staging := e.viewer.Snapshot()
	e.publish(surface.Frame{Descriptor: desc, Staging: staging})
	return true
}

// publish replaces any frame still waiting to be presented with f.
func (e *engine) publish(f surface.Frame) {
	for {
		select {
		case e.frames <- f:
			return
		default:
			select {
			case <-e.frames:
			default:
			}
		}
	}
}

// handleRender presents queued frames in its own goroutine, optionally frame-limited.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			common.Logger().Error("render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case f := <-e.frames:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now

			if e.presenter != nil {
				if err := e.presenter.Present(f); err != nil {
					common.Logger().Warn("present failed", "error", err)
				}
			}

			if e.renderCallback != nil {
				e.renderCallback(dt)
			}

			if e.profilingEnabled && e.profiler != nil {
				e.profiler.Tick()
			}

			// Frame rate limiting
			if e.renderFrameLimit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := e.renderFrameLimit - elapsed; remaining > 0 {
					time.Sleep(remaining)
				}
			}
		}
	}
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// onResize propagates a window resize to the pipeline and the swapchain.
func (e *engine) onResize(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	e.viewer.Resize(width, height)
	if e.presenter != nil {
		e.presenter.Configure(width, height)
	}
}

// updateTitle shows the render mode and accumulation progress in the title bar.
// Runs on the window thread.
func (e *engine) updateTitle() {
	e.window.SetTitle(e.statusTitle())
}

func (e *engine) statusTitle() string {
	mode := e.viewer.Mode()
	if mode != composer.Accumulating {
		return fmt.Sprintf("%s | %s", e.baseTitle, mode)
	}
	return fmt.Sprintf("%s | %s %d", e.baseTitle, mode, e.viewer.AccumulatedFrames())
}

// pipelineAttributes reports viewer statistics alongside the profiler output.
func (e *engine) pipelineAttributes() []any {
	s := e.viewer.Stats()
	return []any{
		"mode", e.viewer.Mode().String(),
		"accumulated", e.viewer.AccumulatedFrames(),
		"rendered", s.Rendered,
		"skipped", s.Skipped,
		"deferred", s.Deferred,
	}
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Second / time.Duration(fps)

	if e.running.Load() {
		// Non-blocking send - if channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
	} else {
		e.engineTickRate = newRate
	}
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each presented frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.renderCallback = callback
}

// SetRenderFrameLimit sets an optional present rate cap.
// Pass 0 to uncap the present loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Second / time.Duration(fps)
}
