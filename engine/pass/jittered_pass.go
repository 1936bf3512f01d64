package pass

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/jitter"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
)

// JitteredPass renders the scene with a per-frame sub-pixel projection offset taken from
// a Halton jitter sequence. It feeds the reprojection pass in the accumulation mode.
//
// With Swap set the pass draws straight into the read buffer and needs no swap; otherwise
// it draws into the write buffer and asks the composer to swap. Either way the next pass
// finds the jittered image in its read buffer.
type JitteredPass interface {
	Pass

	// Swap reports whether the pass draws into the read buffer.
	Swap() bool

	// SetSwap selects the read buffer (true) or the write buffer (false) as draw target.
	SetSwap(swap bool)

	// Sequence returns the jitter sequence. Its cursor is advanced once per Render.
	Sequence() *jitter.Sequence

	// Background returns the clear colour used before drawing.
	Background() common.Color

	// SetBackground sets the clear colour used before drawing.
	SetBackground(c common.Color)
}

type jitteredPass struct {
	basePass

	scene      renderer.Scene
	cam        camera.Camera
	seq        *jitter.Sequence
	swap       bool
	background common.Color
}

var _ JitteredPass = &jitteredPass{}

// NewJitteredPass creates the jittered geometry pass with a 16-entry Halton(2, 3) sequence.
//
// Parameters:
//   - scene: the scene to draw
//   - cam: the camera whose projection is perturbed for the duration of each draw
//   - options: functional options
//
// Returns:
//   - JitteredPass: the pass
func NewJitteredPass(scene renderer.Scene, cam camera.Camera, options ...JitteredPassOption) JitteredPass {
	p := &jitteredPass{
		basePass:   newBasePass("jittered", true),
		scene:      scene,
		cam:        cam,
		seq:        jitter.NewSequence(),
		background: common.White,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *jitteredPass) Swap() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.swap
}

func (p *jitteredPass) SetSwap(swap bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.swap = swap
}

func (p *jitteredPass) NeedsSwap() bool {
	return !p.Swap()
}

func (p *jitteredPass) Sequence() *jitter.Sequence {
	return p.seq
}

func (p *jitteredPass) Background() common.Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.background
}

func (p *jitteredPass) SetBackground(c common.Color) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.background = c
}

func (p *jitteredPass) Render(r renderer.Renderer, write, read *renderer.RenderTarget) error {
	defer r.Scope()()

	target := write
	if p.Swap() {
		target = read
	}

	r.SetAutoClear(false)
	r.SetClearColor(p.Background())
	r.SetClearAlpha(1)
	r.SetRenderTarget(target)
	r.Clear()

	err := p.renderJittered(r, target)
	if err != nil {
		return err
	}

	if out, toScreen := p.output(r, write); toScreen {
		return Present(r, target, out, true)
	}
	return nil
}

// renderJittered draws with the current offset applied, then restores the projection and
// advances the sequence even when the draw fails.
func (p *jitteredPass) renderJittered(r renderer.Renderer, target *renderer.RenderTarget) error {
	off := p.seq.Current()
	p.cam.SetProjectionOffset(off.X/float32(target.Width()), off.Y/float32(target.Height()))
	defer func() {
		p.cam.UpdateProjectionMatrix()
		p.seq.Advance()
	}()
	return r.Render(p.scene, p.cam)
}

func (p *jitteredPass) SetSize(width, height int) {}
