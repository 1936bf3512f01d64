package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
)

// ReprojectionState is the history state of the reprojection pass.
type ReprojectionState int

const (
	// Uninitialized means the history holds no valid frame; the next render seeds it.
	Uninitialized ReprojectionState = iota
	// Seeded means the history holds the previous accumulated frame.
	Seeded
)

func (s ReprojectionState) String() string {
	if s == Seeded {
		return "seeded"
	}
	return "uninitialized"
}

// ReprojectionPass blends the incoming frame with an accumulated history using a
// luminance-aware feedback weight, then presents the result through the gamma step.
// The history lives in a ping-pong pair of targets owned by the pass.
type ReprojectionPass interface {
	Pass

	// State returns the history state.
	State() ReprojectionState

	// Reset discards the history; the next render copies its input verbatim.
	Reset()

	// Feedback returns the history weight bounds.
	Feedback() (kLow, kHigh float32)

	// Accumulated returns the most recent blended frame in linear light, before the present.
	Accumulated() *renderer.RenderTarget

	// LastMeanFeedback returns the average history weight of the most recent blend.
	LastMeanFeedback() float32
}

type reprojectionPass struct {
	basePass

	// history[0] receives the next blend, history[1] holds the last accumulated frame.
	history [2]*renderer.RenderTarget
	state   ReprojectionState

	kLow, kHigh  float32
	meanFeedback float32
	rowFeedback  []float32
}

var _ ReprojectionPass = &reprojectionPass{}

// NewReprojectionPass creates the reprojection pass with history targets of the given size.
//
// Parameters:
//   - width, height: the initial history size
//   - options: functional options
//
// Returns:
//   - ReprojectionPass: the pass, in the Uninitialized state
func NewReprojectionPass(width, height int, options ...ReprojectionPassOption) ReprojectionPass {
	p := &reprojectionPass{
		basePass: newBasePass("reprojection", true),
		history: [2]*renderer.RenderTarget{
			renderer.NewRenderTarget("reprojection 0", width, height),
			renderer.NewRenderTarget("reprojection 1", width, height),
		},
		kLow:  DefaultFeedbackMin,
		kHigh: DefaultFeedbackMax,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *reprojectionPass) State() ReprojectionState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

func (p *reprojectionPass) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.state = Uninitialized
}

func (p *reprojectionPass) Feedback() (kLow, kHigh float32) {
	return p.kLow, p.kHigh
}

func (p *reprojectionPass) Accumulated() *renderer.RenderTarget {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.history[1]
}

func (p *reprojectionPass) LastMeanFeedback() float32 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.meanFeedback
}

func (p *reprojectionPass) Render(r renderer.Renderer, write, read *renderer.RenderTarget) error {
	defer r.Scope()()

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.history[0].SameSize(read) {
		return fmt.Errorf("reprojection input %s: %w", read.Label(), renderer.ErrTargetSizeMismatch)
	}

	out := write
	if p.renderToScreen {
		out = r.Screen()
	}
	// history is untouched when the output cannot take the frame
	if !out.SameSize(read) {
		return fmt.Errorf("reprojection output %s: %w", out.Label(), renderer.ErrTargetSizeMismatch)
	}

	if p.state == Uninitialized {
		if err := p.history[1].CopyFrom(read); err != nil {
			return err
		}
		p.state = Seeded
	}

	p.blend(r, read)
	p.history[0], p.history[1] = p.history[1], p.history[0]

	return Present(r, p.history[1], out, true)
}

// blend writes lerp(current, history, feedback) into history[0]. Caller must hold the mutex.
func (p *reprojectionPass) blend(r renderer.Renderer, current *renderer.RenderTarget) {
	if p.state != Seeded {
		panic("pass: reprojection blend requested before the history was seeded")
	}
	w, h := current.Width(), current.Height()
	cur := current.Pixels()
	last := p.history[1].Pixels()
	next := p.history[0].Pixels()
	kLow, kHigh := p.kLow, p.kHigh

	if cap(p.rowFeedback) < h {
		p.rowFeedback = make([]float32, h)
	}
	rows := p.rowFeedback[:h]

	r.Dispatch(h, func(y int) {
		var acc float32
		for i := y * w; i < (y+1)*w; i++ {
			c, hist := cur[i], last[i]
			fb := FeedbackWeight(Luminance(c), Luminance(hist), kLow, kHigh)
			next[i] = c.Mix(hist, fb)
			acc += fb
		}
		rows[y] = acc
	})

	var total float32
	for _, v := range rows {
		total += v
	}
	p.meanFeedback = 0
	if n := w * h; n > 0 {
		p.meanFeedback = total / float32(n)
	}
}

func (p *reprojectionPass) SetSize(width, height int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.history[0].SetSize(width, height)
	p.history[1].SetSize(width, height)
	p.state = Uninitialized
}
