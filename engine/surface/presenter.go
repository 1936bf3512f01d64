// Package surface presents CPU-rendered frames on a WebGPU swapchain: each frame is uploaded
// to a texture and drawn with a single fullscreen triangle.
package surface

import (
	_ "embed"
	"errors"
	"fmt"
	"runtime"
	"sync"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/cogentcore/webgpu/wgpu"
)

//go:embed present.wgsl
var presentShader string

var (
	// ErrNotConfigured is returned by Present before the first Configure.
	ErrNotConfigured = errors.New("surface not configured")
	// ErrEmptyFrame is returned by Present for a frame without pixels.
	ErrEmptyFrame = errors.New("empty frame")
)

// PresentMode controls how frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	PresentModeUncapped
)

// Frame is one finished image ready for upload.
type Frame struct {
	// Descriptor describes the texture the frame is uploaded into.
	Descriptor *wgpu.TextureDescriptor
	// Staging holds the RGBA8 pixels, row 0 at the top.
	Staging common.TextureStagingData
}

// presentUniforms is mirrored by PresentUniforms in present.wgsl.
type presentUniforms struct {
	Scale [2]float32
	_     [2]float32
}

// Presenter owns the GPU device and swapchain.
type Presenter interface {
	// Configure (re)configures the swapchain for a framebuffer size.
	//
	// Parameters:
	//   - width, height: the framebuffer size in pixels
	Configure(width, height int)

	// SetPresentMode selects vsync or uncapped presentation. Takes effect on the next Configure.
	//
	// Parameters:
	//   - mode: the present mode
	SetPresentMode(mode PresentMode)

	// Present uploads f and draws it to the swapchain. A frame whose size differs from the
	// swapchain is drawn at 1:1 scale, centred.
	//
	// Parameters:
	//   - f: the frame
	//
	// Returns:
	//   - error: ErrNotConfigured, ErrEmptyFrame or a GPU error
	Present(f Frame) error

	// Release frees every GPU resource.
	Release()
}

type presenter struct {
	mu *sync.Mutex

	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue
	surface  *wgpu.Surface

	forceFallbackAdapter bool
	samplerConfig        common.SamplerStagingData
	presentMode          wgpu.PresentMode
	surfaceFormat        wgpu.TextureFormat
	width, height        int
	configured           bool

	layout   *wgpu.BindGroupLayout
	pipeline *wgpu.RenderPipeline
	sampler  *wgpu.Sampler
	uniforms *wgpu.Buffer

	frameTexture *wgpu.Texture
	frameView    *wgpu.TextureView
	frameWidth   uint32
	frameHeight  uint32
	bindGroup    *wgpu.BindGroup
}

var _ Presenter = &presenter{}

// NewPresenter creates the WebGPU instance, adapter, device and surface for a window.
//
// Parameters:
//   - surfaceDescriptor: the platform surface descriptor from the window
//   - options: functional options
//
// Returns:
//   - Presenter: the presenter, not yet configured
//   - error: error if no adapter or device could be obtained
func NewPresenter(surfaceDescriptor *wgpu.SurfaceDescriptor, options ...PresenterBuilderOption) (Presenter, error) {
	if surfaceDescriptor == nil {
		return nil, errors.New("surface descriptor is nil")
	}
	runtime.LockOSThread()

	p := &presenter{
		mu:          &sync.Mutex{},
		presentMode: wgpu.PresentModeFifo,
	}
	for _, opt := range options {
		opt(p)
	}

	p.instance = wgpu.CreateInstance(nil)
	p.surface = p.instance.CreateSurface(surfaceDescriptor)

	a, err := p.instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		ForceFallbackAdapter: p.forceFallbackAdapter,
		CompatibleSurface:    p.surface,
	})
	if err != nil {
		return nil, fmt.Errorf("request adapter: %w", err)
	}
	p.adapter = a

	d, err := a.RequestDevice(&wgpu.DeviceDescriptor{Label: "Present Device"})
	if err != nil {
		return nil, fmt.Errorf("request device: %w", err)
	}
	p.device = d
	p.queue = d.GetQueue()

	p.surfaceFormat = pickSurfaceFormat(p.surface.GetCapabilities(p.adapter).Formats)
	if err := p.createPipeline(); err != nil {
		return nil, err
	}
	return p, nil
}

// pickSurfaceFormat prefers a linear 8-bit format: frames arrive already gamma encoded,
// and an sRGB swapchain would encode them a second time.
func pickSurfaceFormat(formats []wgpu.TextureFormat) wgpu.TextureFormat {
	for _, f := range formats {
		if f == wgpu.TextureFormatBGRA8Unorm || f == wgpu.TextureFormatRGBA8Unorm {
			return f
		}
	}
	if len(formats) == 0 {
		return wgpu.TextureFormatBGRA8Unorm
	}
	return formats[0]
}

// letterbox returns the clip-space scale that draws a frame at 1:1 pixel size on a surface.
func letterbox(frameW, frameH uint32, surfaceW, surfaceH int) [2]float32 {
	if surfaceW <= 0 || surfaceH <= 0 {
		return [2]float32{1, 1}
	}
	return [2]float32{float32(frameW) / float32(surfaceW), float32(frameH) / float32(surfaceH)}
}

func (p *presenter) createPipeline() error {
	module, err := p.device.CreateShaderModule(&wgpu.ShaderModuleDescriptor{
		Label:          "present.wgsl",
		WGSLDescriptor: &wgpu.ShaderModuleWGSLDescriptor{Code: presentShader},
	})
	if err != nil {
		return fmt.Errorf("present shader: %w", err)
	}
	defer module.Release()

	p.layout, err = p.device.CreateBindGroupLayout(&wgpu.BindGroupLayoutDescriptor{
		Label: "Present Bind Group Layout",
		Entries: []wgpu.BindGroupLayoutEntry{
			{
				Binding:    0,
				Visibility: wgpu.ShaderStageFragment,
				Texture: wgpu.TextureBindingLayout{
					SampleType:    wgpu.TextureSampleTypeFloat,
					ViewDimension: wgpu.TextureViewDimension2D,
				},
			},
			{
				Binding:    1,
				Visibility: wgpu.ShaderStageFragment,
				Sampler:    wgpu.SamplerBindingLayout{Type: wgpu.SamplerBindingTypeFiltering},
			},
			{
				Binding:    2,
				Visibility: wgpu.ShaderStageVertex,
				Buffer:     wgpu.BufferBindingLayout{Type: wgpu.BufferBindingTypeUniform},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("present bind group layout: %w", err)
	}
	pipelineLayout, err := p.device.CreatePipelineLayout(&wgpu.PipelineLayoutDescriptor{
		Label:            "Present",
		BindGroupLayouts: []*wgpu.BindGroupLayout{p.layout},
	})
	if err != nil {
		return fmt.Errorf("present pipeline layout: %w", err)
	}

	p.pipeline, err = p.device.CreateRenderPipeline(&wgpu.RenderPipelineDescriptor{
		Label:  "Present Render Pipeline",
		Layout: pipelineLayout,
		Vertex: wgpu.VertexState{
			Module:     module,
			EntryPoint: "vs_main",
		},
		Fragment: &wgpu.FragmentState{
			Module:     module,
			EntryPoint: "fs_main",
			Targets: []wgpu.ColorTargetState{{
				Format:    p.surfaceFormat,
				WriteMask: wgpu.ColorWriteMaskAll,
			}},
		},
		Primitive: wgpu.PrimitiveState{
			Topology:  wgpu.PrimitiveTopologyTriangleList,
			FrontFace: wgpu.FrontFaceCCW,
			CullMode:  wgpu.CullModeNone,
		},
		Multisample: wgpu.MultisampleState{
			Count: 1,
			Mask:  0xFFFFFFFF,
		},
	})
	if err != nil {
		return fmt.Errorf("present pipeline: %w", err)
	}

	staging := p.samplerConfig
	p.sampler, err = p.device.CreateSampler(&wgpu.SamplerDescriptor{
		Label:         "Present Sampler",
		AddressModeU:  common.Coalesce(staging.AddressModeU, wgpu.AddressModeClampToEdge),
		AddressModeV:  common.Coalesce(staging.AddressModeV, wgpu.AddressModeClampToEdge),
		AddressModeW:  wgpu.AddressModeClampToEdge,
		MagFilter:     common.Coalesce(staging.MagFilter, wgpu.FilterModeNearest),
		MinFilter:     common.Coalesce(staging.MinFilter, wgpu.FilterModeNearest),
		MipmapFilter:  wgpu.MipmapFilterModeNearest,
		LodMaxClamp:   1,
		MaxAnisotropy: 1,
	})
	if err != nil {
		return fmt.Errorf("present sampler: %w", err)
	}

	p.uniforms, err = p.device.CreateBuffer(&wgpu.BufferDescriptor{
		Label: "Present Uniforms",
		Size:  uint64(len(common.StructToBytes(&presentUniforms{}))),
		Usage: wgpu.BufferUsageUniform | wgpu.BufferUsageCopyDst,
	})
	if err != nil {
		return fmt.Errorf("present uniforms: %w", err)
	}
	return nil
}

func (p *presenter) Configure(width, height int) {
	if width <= 0 || height <= 0 {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	capabilities := p.surface.GetCapabilities(p.adapter)
	p.surface.Configure(p.adapter, p.device, &wgpu.SurfaceConfiguration{
		Usage:       wgpu.TextureUsageRenderAttachment,
		Format:      p.surfaceFormat,
		Width:       uint32(width),
		Height:      uint32(height),
		PresentMode: p.presentMode,
		AlphaMode:   capabilities.AlphaModes[0],
	})
	p.width, p.height = width, height
	p.configured = true
	common.Logger().Info("surface configured", "width", width, "height", height, "format", p.surfaceFormat)
}

func (p *presenter) SetPresentMode(mode PresentMode) {
	p.mu.Lock()
	defer p.mu.Unlock()

	switch mode {
	case PresentModeVSync:
		p.presentMode = wgpu.PresentModeFifo
	case PresentModeUncapped:
		fallthrough
	default:
		p.presentMode = wgpu.PresentModeImmediate
	}
}

// ensureFrameTexture recreates the upload texture and its bind group when the frame size
// changes. Caller must hold the mutex.
func (p *presenter) ensureFrameTexture(f Frame) error {
	if p.frameTexture != nil && p.frameWidth == f.Staging.Width && p.frameHeight == f.Staging.Height {
		return nil
	}
	p.releaseFrameTexture()

	desc := *f.Descriptor
	desc.Usage |= wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst
	tex, err := p.device.CreateTexture(&desc)
	if err != nil {
		return err
	}
	view, err := tex.CreateView(nil)
	if err != nil {
		tex.Release()
		return err
	}
	bg, err := p.device.CreateBindGroup(&wgpu.BindGroupDescriptor{
		Label:  "Present Bind Group",
		Layout: p.layout,
		Entries: []wgpu.BindGroupEntry{
			{Binding: 0, TextureView: view},
			{Binding: 1, Sampler: p.sampler},
			{Binding: 2, Buffer: p.uniforms, Size: wgpu.WholeSize},
		},
	})
	if err != nil {
		view.Release()
		tex.Release()
		return err
	}

	p.frameTexture, p.frameView, p.bindGroup = tex, view, bg
	p.frameWidth, p.frameHeight = f.Staging.Width, f.Staging.Height
	return nil
}

func (p *presenter) releaseFrameTexture() {
	if p.bindGroup != nil {
		p.bindGroup.Release()
		p.bindGroup = nil
	}
	if p.frameView != nil {
		p.frameView.Release()
		p.frameView = nil
	}
	if p.frameTexture != nil {
		p.frameTexture.Release()
		p.frameTexture = nil
	}
}

func (p *presenter) Present(f Frame) error {
	if f.Descriptor == nil || f.Staging.Width == 0 || f.Staging.Height == 0 || len(f.Staging.Pixels) == 0 {
		return ErrEmptyFrame
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.configured {
		return ErrNotConfigured
	}

	if err := p.ensureFrameTexture(f); err != nil {
		return fmt.Errorf("frame texture: %w", err)
	}

	p.queue.WriteTexture(
		&wgpu.ImageCopyTexture{
			Texture:  p.frameTexture,
			MipLevel: 0,
			Origin:   wgpu.Origin3D{},
			Aspect:   wgpu.TextureAspectAll,
		},
		f.Staging.Pixels,
		&wgpu.TextureDataLayout{
			Offset:       0,
			BytesPerRow:  f.Staging.Width * 4,
			RowsPerImage: f.Staging.Height,
		},
		&wgpu.Extent3D{
			Width:              f.Staging.Width,
			Height:             f.Staging.Height,
			DepthOrArrayLayers: 1,
		},
	)
	u := presentUniforms{Scale: letterbox(f.Staging.Width, f.Staging.Height, p.width, p.height)}
	p.queue.WriteBuffer(p.uniforms, 0, common.StructToBytes(&u))

	surfaceTexture, err := p.surface.GetCurrentTexture()
	if err != nil {
		return err
	}
	defer surfaceTexture.Release()
	view, err := surfaceTexture.CreateView(nil)
	if err != nil {
		return err
	}
	defer view.Release()

	encoder, err := p.device.CreateCommandEncoder(nil)
	if err != nil {
		return err
	}
	defer encoder.Release()

	pass := encoder.BeginRenderPass(&wgpu.RenderPassDescriptor{
		ColorAttachments: []wgpu.RenderPassColorAttachment{{
			View:       view,
			LoadOp:     wgpu.LoadOpClear,
			StoreOp:    wgpu.StoreOpStore,
			ClearValue: wgpu.Color{R: 0, G: 0, B: 0, A: 1},
		}},
	})
	pass.SetPipeline(p.pipeline)
	pass.SetBindGroup(0, p.bindGroup, nil)
	pass.Draw(3, 1, 0, 0)
	pass.End()
	pass.Release()

	commandBuffer, err := encoder.Finish(nil)
	if err != nil {
		return err
	}
	defer commandBuffer.Release()
	p.queue.Submit(commandBuffer)
	p.surface.Present()
	return nil
}

func (p *presenter) Release() {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.releaseFrameTexture()
	if p.uniforms != nil {
		p.uniforms.Release()
	}
	if p.sampler != nil {
		p.sampler.Release()
	}
	if p.pipeline != nil {
		p.pipeline.Release()
	}
	if p.layout != nil {
		p.layout.Release()
	}
	if p.device != nil {
		p.device.Release()
	}
	if p.adapter != nil {
		p.adapter.Release()
	}
	if p.surface != nil {
		p.surface.Release()
	}
	if p.instance != nil {
		p.instance.Release()
	}
	p.configured = false
}
