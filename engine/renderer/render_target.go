package renderer

import (
	"fmt"
	"math"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/cogentcore/webgpu/wgpu"
)

// RenderTarget is an off-screen colour buffer with an optional depth attachment.
// Colour is stored as linear float RGBA in row-major order, depth as [0, 1] clip depth
// with 1 at the far plane. A RenderTarget is owned by whichever pass allocated it.
type RenderTarget struct {
	label  string
	width  int
	height int
	format wgpu.TextureFormat

	color []common.Color
	depth []float32

	// generation increments on every SetSize so readers can detect invalidated content.
	generation uint64
}

// RenderTargetOption configures a RenderTarget during NewRenderTarget.
type RenderTargetOption func(*RenderTarget)

// WithDepth attaches a depth buffer to the render target.
//
// Returns:
//   - RenderTargetOption: option enabling the depth attachment
func WithDepth() RenderTargetOption {
	return func(rt *RenderTarget) {
		rt.depth = []float32{}
	}
}

// WithFormat sets the colour format reported for GPU upload. The CPU storage is always
// float RGBA; the format governs Descriptor and Staging. Defaults to RGBA8Unorm.
//
// Parameters:
//   - format: the GPU texture format
//
// Returns:
//   - RenderTargetOption: option setting the colour format
func WithFormat(format wgpu.TextureFormat) RenderTargetOption {
	return func(rt *RenderTarget) {
		rt.format = format
	}
}

// NewRenderTarget allocates a render target of the given size.
//
// Parameters:
//   - label: debug label, also used for the GPU texture
//   - width, height: size in pixels; negative values are treated as 0
//   - options: functional options
//
// Returns:
//   - *RenderTarget: the allocated target, cleared to transparent black with depth at 1
func NewRenderTarget(label string, width, height int, options ...RenderTargetOption) *RenderTarget {
	rt := &RenderTarget{
		label:  label,
		format: wgpu.TextureFormatRGBA8Unorm,
	}
	for _, opt := range options {
		opt(rt)
	}
	rt.allocate(width, height)
	return rt
}

func (rt *RenderTarget) allocate(width, height int) {
	rt.width = max(width, 0)
	rt.height = max(height, 0)
	rt.color = make([]common.Color, rt.width*rt.height)
	if rt.depth != nil {
		rt.depth = make([]float32, rt.width*rt.height)
		for i := range rt.depth {
			rt.depth[i] = 1
		}
	}
}

// Label returns the debug label.
func (rt *RenderTarget) Label() string { return rt.label }

// Width returns the width in pixels.
func (rt *RenderTarget) Width() int { return rt.width }

// Height returns the height in pixels.
func (rt *RenderTarget) Height() int { return rt.height }

// Format returns the GPU texture format of the colour attachment.
func (rt *RenderTarget) Format() wgpu.TextureFormat { return rt.format }

// HasDepth reports whether a depth attachment is present.
func (rt *RenderTarget) HasDepth() bool { return rt.depth != nil }

// Generation returns a counter bumped by every SetSize.
func (rt *RenderTarget) Generation() uint64 { return rt.generation }

// SameSize reports whether o has the same dimensions as rt.
func (rt *RenderTarget) SameSize(o *RenderTarget) bool {
	return o != nil && rt.width == o.width && rt.height == o.height
}

// SetSize resizes the target in place. Content after a resize is undefined and must not
// be read before it is written; the generation counter is bumped either way.
//
// Parameters:
//   - width, height: the new size in pixels
func (rt *RenderTarget) SetSize(width, height int) {
	rt.generation++
	if width == rt.width && height == rt.height {
		return
	}
	rt.allocate(width, height)
}

// Pixels returns the colour storage. Index y*Width()+x addresses pixel (x, y).
func (rt *RenderTarget) Pixels() []common.Color { return rt.color }

// DepthBuffer returns the depth storage, or nil when no depth attachment exists.
func (rt *RenderTarget) DepthBuffer() []float32 { return rt.depth }

// At returns the colour at (x, y) with coordinates clamped to the target edges.
//
// Parameters:
//   - x, y: pixel coordinates
//
// Returns:
//   - common.Color: the stored colour
func (rt *RenderTarget) At(x, y int) common.Color {
	x = min(max(x, 0), rt.width-1)
	y = min(max(y, 0), rt.height-1)
	return rt.color[y*rt.width+x]
}

// Set stores c at (x, y). Out-of-range coordinates are ignored.
func (rt *RenderTarget) Set(x, y int, c common.Color) {
	if x < 0 || y < 0 || x >= rt.width || y >= rt.height {
		return
	}
	rt.color[y*rt.width+x] = c
}

// DepthAt returns the depth at (x, y) clamped to the edges, or 1 without a depth attachment.
func (rt *RenderTarget) DepthAt(x, y int) float32 {
	if rt.depth == nil {
		return 1
	}
	x = min(max(x, 0), rt.width-1)
	y = min(max(y, 0), rt.height-1)
	return rt.depth[y*rt.width+x]
}

// Fill sets every pixel to c and resets depth to the far plane.
func (rt *RenderTarget) Fill(c common.Color) {
	for i := range rt.color {
		rt.color[i] = c
	}
	for i := range rt.depth {
		rt.depth[i] = 1
	}
}

// CopyFrom copies colour, and depth when both targets carry it, from src.
//
// Parameters:
//   - src: the source target, which must match rt in size
//
// Returns:
//   - error: ErrTargetSizeMismatch when the sizes differ
func (rt *RenderTarget) CopyFrom(src *RenderTarget) error {
	if !rt.SameSize(src) {
		return fmt.Errorf("copy %s (%dx%d) into %s (%dx%d): %w",
			src.label, src.width, src.height, rt.label, rt.width, rt.height, ErrTargetSizeMismatch)
	}
	copy(rt.color, src.color)
	if rt.depth != nil && src.depth != nil {
		copy(rt.depth, src.depth)
	}
	return nil
}

// Descriptor returns the GPU texture descriptor matching this target, for uploading it as a
// sampled texture.
//
// Returns:
//   - *wgpu.TextureDescriptor: the descriptor
func (rt *RenderTarget) Descriptor() *wgpu.TextureDescriptor {
	return &wgpu.TextureDescriptor{
		Label:     rt.label + " Texture",
		Usage:     wgpu.TextureUsageTextureBinding | wgpu.TextureUsageCopyDst,
		Dimension: wgpu.TextureDimension2D,
		Size: wgpu.Extent3D{
			Width:              uint32(rt.width),
			Height:             uint32(rt.height),
			DepthOrArrayLayers: 1,
		},
		Format:        rt.format,
		MipLevelCount: 1,
		SampleCount:   1,
	}
}

// Staging quantises the colour buffer to RGBA8 for GPU upload. Channels are clamped to
// [0, 1] and rounded; no colour-space conversion is applied.
//
// Returns:
//   - common.TextureStagingData: the packed pixels and size
func (rt *RenderTarget) Staging() common.TextureStagingData {
	pix := make([]byte, len(rt.color)*4)
	for i, c := range rt.color {
		pix[i*4+0] = quantize(c.R)
		pix[i*4+1] = quantize(c.G)
		pix[i*4+2] = quantize(c.B)
		pix[i*4+3] = quantize(c.A)
	}
	return common.TextureStagingData{
		Pixels: pix,
		Width:  uint32(rt.width),
		Height: uint32(rt.height),
	}
}

func quantize(v float32) byte {
	return byte(math.Round(float64(common.Clamp01(v)) * 255))
}
