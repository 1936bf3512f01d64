// Package composer chains the render passes in their fixed order, owns the read/write
// buffer pair they ping-pong through, and maps the render mode onto pass enablement.
package composer

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/pass"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
)

// ErrResizePending is returned by Render when a target does not match the renderer size.
// The frame is skipped without side effects; the next tick after the resize completes renders.
var ErrResizePending = errors.New("resize pending, frame deferred")

// Chain is the fixed set of passes, run in field order.
type Chain struct {
	Geometry         pass.GeometryPass
	Jittered         pass.JitteredPass
	AmbientOcclusion pass.AmbientOcclusionPass
	Reprojection     pass.ReprojectionPass
}

// Passes returns the chain in execution order.
func (c Chain) Passes() []pass.Pass {
	return []pass.Pass{c.Geometry, c.Jittered, c.AmbientOcclusion, c.Reprojection}
}

// Stats counts composer activity.
type Stats struct {
	Rendered uint64
	Deferred uint64
}

type composer struct {
	mu *sync.Mutex

	r     renderer.Renderer
	chain Chain
	mode  RenderMode

	read  *renderer.RenderTarget
	write *renderer.RenderTarget

	stats Stats
}

// Composer runs the pass chain once per Render and owns the mode switch.
// It is the only component that enables or disables the mode-dependent passes.
type Composer interface {
	// Chain returns the passes.
	Chain() Chain

	// Mode returns the current render mode.
	Mode() RenderMode

	// SetMode enables the geometry pass (Interactive) or the jittered and reprojection
	// passes (Accumulating). Entering Accumulating from Interactive resets the reprojection
	// history. Setting the current mode again is a no-op.
	//
	// Parameters:
	//   - mode: the mode to switch to
	//
	// Returns:
	//   - bool: whether the mode changed
	SetMode(mode RenderMode) bool

	// Size returns the size of the buffer pair.
	Size() (width, height int)

	// SetSize resizes the renderer, both buffers and every pass in one step.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	SetSize(width, height int)

	// ReadBuffer returns the buffer the next pass reads from.
	ReadBuffer() *renderer.RenderTarget

	// WriteBuffer returns the buffer the next pass writes to.
	WriteBuffer() *renderer.RenderTarget

	// Render runs every enabled pass in order. The last enabled pass renders to the screen.
	//
	// Returns:
	//   - error: ErrResizePending (wrapped) when the frame was deferred, or a pass error
	Render() error

	// Stats returns activity counters.
	Stats() Stats
}

var _ Composer = &composer{}

// NewComposer creates a composer over the given renderer and chain. Buffers are allocated
// at the renderer's current size and the chain is put into the initial mode.
//
// Parameters:
//   - r: the renderer (must not be nil)
//   - chain: the passes (every field must be set)
//   - options: functional options
//
// Returns:
//   - Composer: the composer
func NewComposer(r renderer.Renderer, chain Chain, options ...ComposerBuilderOption) Composer {
	if r == nil {
		panic("composer: NewComposer requires a non-nil Renderer")
	}
	for _, p := range chain.Passes() {
		if p == nil {
			panic("composer: NewComposer requires every pass of the chain")
		}
	}

	w, h := r.Size()
	c := &composer{
		mu:    &sync.Mutex{},
		r:     r,
		chain: chain,
		mode:  Interactive,
		read:  renderer.NewRenderTarget("composer read", w, h, renderer.WithDepth()),
		write: renderer.NewRenderTarget("composer write", w, h, renderer.WithDepth()),
	}
	for _, opt := range options {
		opt(c)
	}
	c.applyMode()
	return c
}

func (c *composer) Chain() Chain {
	return c.chain
}

func (c *composer) Mode() RenderMode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

func (c *composer) SetMode(mode RenderMode) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if mode == c.mode {
		return false
	}
	c.mode = mode
	c.applyMode()
	common.Logger().Info("render mode changed", "mode", mode.String())
	return true
}

// applyMode maps the mode onto pass enablement. Caller must hold the mutex.
func (c *composer) applyMode() {
	accumulating := c.mode == Accumulating
	c.chain.Geometry.SetEnabled(!accumulating)
	c.chain.Jittered.SetEnabled(accumulating)
	c.chain.Reprojection.SetEnabled(accumulating)
	if accumulating {
		c.chain.Reprojection.Reset()
	}
}

func (c *composer) Size() (width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read.Width(), c.read.Height()
}

func (c *composer) SetSize(width, height int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.r.SetSize(width, height)
	c.read.SetSize(width, height)
	c.write.SetSize(width, height)
	for _, p := range c.chain.Passes() {
		p.SetSize(width, height)
	}
	common.Logger().Info("composer resized", "width", width, "height", height)
}

func (c *composer) ReadBuffer() *renderer.RenderTarget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.read
}

func (c *composer) WriteBuffer() *renderer.RenderTarget {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.write
}

func (c *composer) Render() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	rw, rh := c.r.Size()
	if c.read.Width() != rw || c.read.Height() != rh || !c.read.SameSize(c.write) {
		return c.deferFrame(fmt.Errorf("buffers %dx%d, renderer %dx%d: %w",
			c.read.Width(), c.read.Height(), rw, rh, ErrResizePending))
	}

	passes := c.chain.Passes()
	last := -1
	for i, p := range passes {
		if p.Enabled() {
			last = i
		}
	}

	for i, p := range passes {
		if !p.Enabled() {
			continue
		}
		p.SetRenderToScreen(i == last)
		common.Logger().Debug("pass", "name", p.Name(), "toScreen", i == last)
		if err := p.Render(c.r, c.write, c.read); err != nil {
			if errors.Is(err, renderer.ErrTargetSizeMismatch) {
				return c.deferFrame(fmt.Errorf("pass %s: %w: %w", p.Name(), ErrResizePending, err))
			}
			return fmt.Errorf("pass %s: %w", p.Name(), err)
		}
		if p.NeedsSwap() {
			c.read, c.write = c.write, c.read
		}
	}
	c.stats.Rendered++
	return nil
}

// deferFrame records a deferred frame. Caller must hold the mutex.
func (c *composer) deferFrame(err error) error {
	c.stats.Deferred++
	common.Logger().Debug("frame deferred", "err", err)
	return err
}

func (c *composer) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}
