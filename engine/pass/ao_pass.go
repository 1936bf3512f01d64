package pass

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/camera"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
)

// AmbientOcclusionPass computes scalable ambient occlusion from its own depth render of
// the scene and composites it onto the incoming image.
type AmbientOcclusionPass interface {
	Pass

	// Params returns the current parameter set.
	Params() SAOParams

	// SetParams replaces the parameter set.
	SetParams(params SAOParams)

	// SetScale replaces only the falloff scale.
	SetScale(scale float32)

	// Occlusion returns the most recent (blurred) occlusion term, 1 meaning unoccluded.
	Occlusion() *renderer.RenderTarget
}

type ambientOcclusionPass struct {
	basePass

	scene  renderer.Scene
	cam    camera.Camera
	params SAOParams

	depthTarget *renderer.RenderTarget
	aoTarget    *renderer.RenderTarget
	blurTarget  *renderer.RenderTarget

	frame uint32
}

var _ AmbientOcclusionPass = &ambientOcclusionPass{}

// NewAmbientOcclusionPass creates the occlusion pass with targets of the given size.
//
// Parameters:
//   - scene: the scene whose depth is rendered
//   - cam: the camera; its unperturbed projection is used for reconstruction
//   - width, height: the initial target size
//   - options: functional options
//
// Returns:
//   - AmbientOcclusionPass: the pass
func NewAmbientOcclusionPass(scene renderer.Scene, cam camera.Camera, width, height int, options ...AmbientOcclusionPassOption) AmbientOcclusionPass {
	p := &ambientOcclusionPass{
		basePass:    newBasePass("sao", true),
		scene:       scene,
		cam:         cam,
		params:      DefaultSAOParams(),
		depthTarget: renderer.NewRenderTarget("sao depth", width, height, renderer.WithDepth()),
		aoTarget:    renderer.NewRenderTarget("sao", width, height),
		blurTarget:  renderer.NewRenderTarget("sao blur", width, height),
	}
	for _, opt := range options {
		opt(p)
	}
	return p
}

func (p *ambientOcclusionPass) Params() SAOParams {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.params
}

func (p *ambientOcclusionPass) SetParams(params SAOParams) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.params = params
}

func (p *ambientOcclusionPass) SetScale(scale float32) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.params.Scale = scale
}

func (p *ambientOcclusionPass) Occlusion() *renderer.RenderTarget {
	return p.aoTarget
}

func (p *ambientOcclusionPass) Render(r renderer.Renderer, write, read *renderer.RenderTarget) error {
	defer r.Scope()()

	params := p.Params()
	out, toScreen := p.output(r, write)

	if params.Output == OutputBeauty {
		if toScreen {
			return Present(r, read, out, true)
		}
		return Present(r, read, write, false)
	}

	if !p.depthTarget.SameSize(read) {
		return renderer.ErrTargetSizeMismatch
	}

	r.SetAutoClear(false)
	r.SetClearColor(common.Black)
	r.SetClearAlpha(1)
	r.SetRenderTarget(p.depthTarget)
	r.Clear()
	if err := r.Render(p.scene, p.cam); err != nil {
		return err
	}

	pr := projection{
		inverse: p.cam.InverseProjectionMatrix(),
		near:    p.cam.Near(),
		far:     p.cam.Far(),
	}
	p.frame++
	computeOcclusion(r, p.depthTarget, p.aoTarget, pr, params, p.frame)

	if params.Blur && params.BlurRadius > 0 && params.BlurStdDev > 0 {
		weights := gaussianWeights(params.BlurRadius, params.BlurStdDev)
		cutoff := params.BlurDepthCutoff * (pr.far - pr.near)
		depthLimitedBlur(r, p.aoTarget, p.blurTarget, p.depthTarget, pr, weights, cutoff, false)
		depthLimitedBlur(r, p.blurTarget, p.aoTarget, p.depthTarget, pr, weights, cutoff, true)
	}

	switch params.Output {
	case OutputSAO:
		if err := write.CopyFrom(p.aoTarget); err != nil {
			return err
		}
	default:
		p.multiply(r, read, write)
	}

	if toScreen {
		return Present(r, write, out, true)
	}
	return nil
}

// multiply writes read * occlusion into write.
func (p *ambientOcclusionPass) multiply(r renderer.Renderer, read, write *renderer.RenderTarget) {
	w := read.Width()
	in := read.Pixels()
	ao := p.aoTarget.Pixels()
	out := write.Pixels()
	r.Dispatch(read.Height(), func(y int) {
		for i := y * w; i < (y+1)*w; i++ {
			k := ao[i].R
			c := in[i]
			out[i] = common.Color{R: c.R * k, G: c.G * k, B: c.B * k, A: c.A}
		}
	})
}

func (p *ambientOcclusionPass) SetSize(width, height int) {
	p.depthTarget.SetSize(width, height)
	p.aoTarget.SetSize(width, height)
	p.blurTarget.SetSize(width, height)
}
