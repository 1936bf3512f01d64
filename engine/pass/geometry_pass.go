package pass

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
)

// GeometryPass renders the scene once with the unperturbed camera. It is the output path
// of the interactive mode.
type GeometryPass interface {
	Pass

	// Background returns the clear colour used before drawing.
	Background() common.Color

	// SetBackground sets the clear colour used before drawing.
	SetBackground(c common.Color)
}

type geometryPass struct {
	basePass

	scene      renderer.Scene
	cam        camera.Camera
	background common.Color
}

var _ GeometryPass = &geometryPass{}

// NewGeometryPass creates the opaque geometry pass.
//
// Parameters:
//   - scene: the scene to draw
//   - cam: the camera to draw through
//   - options: functional options
//
// Returns:
//   - GeometryPass: the pass
func NewGeometryPass(scene renderer.Scene, cam camera.Camera, options ...GeometryPassOption) GeometryPass {
	p := &geometryPass{
		basePass:   newBasePass("geometry", true),
		scene:      scene,
		cam:        cam,
		background: common.White,
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *geometryPass) Background() common.Color {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.background
}

func (p *geometryPass) SetBackground(c common.Color) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.background = c
}

func (p *geometryPass) Render(r renderer.Renderer, write, read *renderer.RenderTarget) error {
	defer r.Scope()()

	bg := p.Background()
	r.SetAutoClear(false)
	r.SetClearColor(bg)
	r.SetClearAlpha(1)
	r.SetRenderTarget(write)
	r.Clear()
	if err := r.Render(p.scene, p.cam); err != nil {
		return err
	}

	if out, toScreen := p.output(r, write); toScreen {
		return Present(r, write, out, true)
	}
	return nil
}

func (p *geometryPass) SetSize(width, height int) {}
