// package common contains common types that are used throughout this viewer. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"github.com/cogentcore/webgpu/wgpu"
)

// Color is a linear-light RGBA colour with float32 channels, nominally in [0, 1].
type Color struct {
	R, G, B, A float32
}

// Black is opaque black.
var Black = Color{0, 0, 0, 1}

// White is opaque white.
var White = Color{1, 1, 1, 1}

// RGBHex builds an opaque Color from a 0xRRGGBB value, interpreting each byte as a linear value.
//
// Parameters:
//   - hex: the packed colour
//
// Returns:
//   - Color: the colour with alpha 1
func RGBHex(hex uint32) Color {
	return Color{
		R: float32((hex>>16)&0xFF) / 255,
		G: float32((hex>>8)&0xFF) / 255,
		B: float32(hex&0xFF) / 255,
		A: 1,
	}
}

// Add returns the channel-wise sum c + o.
func (c Color) Add(o Color) Color {
	return Color{c.R + o.R, c.G + o.G, c.B + o.B, c.A + o.A}
}

// Sub returns the channel-wise difference c - o.
func (c Color) Sub(o Color) Color {
	return Color{c.R - o.R, c.G - o.G, c.B - o.B, c.A - o.A}
}

// Scale returns c with every channel multiplied by s.
func (c Color) Scale(s float32) Color {
	return Color{c.R * s, c.G * s, c.B * s, c.A * s}
}

// Min returns the channel-wise minimum of c and o.
func (c Color) Min(o Color) Color {
	return Color{min(c.R, o.R), min(c.G, o.G), min(c.B, o.B), min(c.A, o.A)}
}

// Max returns the channel-wise maximum of c and o.
func (c Color) Max(o Color) Color {
	return Color{max(c.R, o.R), max(c.G, o.G), max(c.B, o.B), max(c.A, o.A)}
}

// Mix linearly interpolates from c towards o by t in every channel.
func (c Color) Mix(o Color, t float32) Color {
	return Color{
		Lerp(c.R, o.R, t),
		Lerp(c.G, o.G, t),
		Lerp(c.B, o.B, t),
		Lerp(c.A, o.A, t),
	}
}

// TextureStagingData holds RGBA8 pixel data pending GPU upload.
// The presenter stages the final frame through it before writing the surface texture.
type TextureStagingData struct {
	// Pixels holds 4 bytes per pixel in row-major RGBA order.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// SamplerStagingData holds the configuration for a sampler pending GPU creation.
// Zero fields fall back to linear filtering and clamp-to-edge addressing.
type SamplerStagingData struct {
	// AddressModeU, AddressModeV specify the addressing mode outside the [0, 1] range.
	AddressModeU, AddressModeV wgpu.AddressMode
	// MagFilter and MinFilter specify the filtering mode for magnification and minification.
	MagFilter, MinFilter wgpu.FilterMode
}
