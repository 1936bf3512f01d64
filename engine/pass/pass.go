// Package pass contains the fullscreen and scene passes chained by the composer:
// the opaque geometry pass, the jittered geometry pass, screen-space ambient occlusion
// and temporal reprojection, plus the shared present step.
package pass

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
)

// Pass is one stage of the composer chain.
//
// The composer calls Render with a write buffer and a read buffer. A pass reads its input
// from read and writes its output to write (or to the renderer's screen when
// RenderToScreen is set), after which the composer swaps the two when NeedsSwap reports true.
type Pass interface {
	// Name returns the pass name used in logs.
	Name() string

	// Enabled reports whether the composer runs this pass.
	Enabled() bool

	// SetEnabled toggles the pass.
	SetEnabled(enabled bool)

	// NeedsSwap reports whether the composer swaps read/write after this pass runs.
	NeedsSwap() bool

	// RenderToScreen reports whether the pass writes its output to the screen target.
	RenderToScreen() bool

	// SetRenderToScreen routes the pass output to the screen. The composer sets this on the
	// last enabled pass before every frame.
	SetRenderToScreen(toScreen bool)

	// Render runs the pass.
	//
	// Parameters:
	//   - r: the renderer whose transient state the pass may change and must restore
	//   - write: the composer's write buffer
	//   - read: the composer's read buffer, holding the previous pass output
	//
	// Returns:
	//   - error: a render error, including renderer.ErrTargetSizeMismatch during a resize race
	Render(r renderer.Renderer, write, read *renderer.RenderTarget) error

	// SetSize resizes every target the pass owns. Pass-private history becomes invalid.
	//
	// Parameters:
	//   - width, height: the new size in pixels
	SetSize(width, height int)
}

// basePass carries the flags every pass shares.
type basePass struct {
	mu *sync.Mutex

	name           string
	enabled        bool
	needsSwap      bool
	renderToScreen bool
}

func newBasePass(name string, needsSwap bool) basePass {
	return basePass{
		mu:        &sync.Mutex{},
		name:      name,
		enabled:   true,
		needsSwap: needsSwap,
	}
}

func (p *basePass) Name() string {
	return p.name
}

func (p *basePass) Enabled() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.enabled
}

func (p *basePass) SetEnabled(enabled bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.enabled = enabled
}

func (p *basePass) NeedsSwap() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.needsSwap
}

func (p *basePass) RenderToScreen() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renderToScreen
}

func (p *basePass) SetRenderToScreen(toScreen bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.renderToScreen = toScreen
}

// output returns the target a pass writes its final image to, and whether that target
// is the screen (in which case the image must go through the gamma present).
func (p *basePass) output(r renderer.Renderer, write *renderer.RenderTarget) (*renderer.RenderTarget, bool) {
	if p.RenderToScreen() {
		return r.Screen(), true
	}
	return write, false
}
