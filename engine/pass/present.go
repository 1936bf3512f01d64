package pass

import (
	"fmt"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/lucasb-eyer/go-colorful"
)

// Present copies src into dst. With gamma set, every pixel is scaled by the renderer's
// exposure and encoded from linear light to sRGB; otherwise the copy is verbatim.
// Alpha is copied unchanged.
//
// Parameters:
//   - r: the renderer providing the row dispatcher and exposure
//   - src: the image to present
//   - dst: the destination, which must match src in size
//   - gamma: whether to apply exposure and sRGB encoding
//
// Returns:
//   - error: renderer.ErrTargetSizeMismatch when src and dst differ in size
func Present(r renderer.Renderer, src, dst *renderer.RenderTarget, gamma bool) error {
	if !dst.SameSize(src) {
		return fmt.Errorf("present %s into %s: %w", src.Label(), dst.Label(), renderer.ErrTargetSizeMismatch)
	}
	if !gamma {
		return dst.CopyFrom(src)
	}

	exposure := float64(r.Exposure())
	w := src.Width()
	in := src.Pixels()
	out := dst.Pixels()
	r.Dispatch(src.Height(), func(y int) {
		row := y * w
		for x := 0; x < w; x++ {
			c := in[row+x]
			enc := colorful.LinearRgb(
				float64(c.R)*exposure,
				float64(c.G)*exposure,
				float64(c.B)*exposure,
			).Clamped()
			out[row+x] = common.Color{R: float32(enc.R), G: float32(enc.G), B: float32(enc.B), A: c.A}
		}
	})
	return nil
}
