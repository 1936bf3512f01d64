package pass

import (
	"math"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
)

// Feedback constants of the reprojection filter.
const (
	// DefaultFeedbackMin is the history weight used where luminance changed completely.
	DefaultFeedbackMin = 0.88
	// DefaultFeedbackMax is the history weight used where luminance is stable.
	DefaultFeedbackMax = 0.97
	// luminanceFloor bounds the denominator of the relative luminance difference.
	luminanceFloor = 0.2
	// contrastWeightScale scales the neighbourhood contrast into a blend weight.
	contrastWeightScale = 0.05
)

// Luminance returns the Rec. 709 relative luminance of c clamped to [0, 1].
//
// Parameters:
//   - c: a linear colour
//
// Returns:
//   - float32: 0.2126 R + 0.7152 G + 0.0722 B, clamped
func Luminance(c common.Color) float32 {
	return common.Clamp01(0.2126*c.R + 0.7152*c.G + 0.0722*c.B)
}

// FeedbackWeight returns the history weight of the reprojection blend for a pixel whose
// current luminance is lumCurrent and whose history luminance is lumHistory.
//
// The relative difference |l0 - l1| / max(l0, l1, 0.2) is mapped to a weight
// w = 1 - diff and the result is mix(kLow, kHigh, w*w).
//
// Parameters:
//   - lumCurrent, lumHistory: luminances in [0, 1]
//   - kLow, kHigh: feedback bounds
//
// Returns:
//   - float32: the history weight in [kLow, kHigh]
func FeedbackWeight(lumCurrent, lumHistory, kLow, kHigh float32) float32 {
	diff := float32(math.Abs(float64(lumCurrent-lumHistory))) / max(lumCurrent, lumHistory, luminanceFloor)
	w := 1 - diff
	return common.Lerp(kLow, kHigh, w*w)
}

// Contrast is the 3x3 neighbourhood statistics of one pixel.
type Contrast struct {
	Min     common.Color
	Max     common.Color
	Average common.Color
	// Distance is the RGBA euclidean distance between Average and the centre texel.
	Distance float32
}

// Weight returns the contrast-driven blend weight (0.05 * Distance).
// The reprojection blend does not consume it.
func (c Contrast) Weight() float32 {
	return contrastWeightScale * c.Distance
}

// NeighborhoodContrast samples the 3x3 neighbourhood around (x, y) with edge clamping
// and returns its min, max, average and the distance of the average from the centre.
// The min starts at opaque white and the max at opaque black, so alpha never leaves [0, 1].
//
// Parameters:
//   - src: the image to sample
//   - x, y: the centre pixel
//
// Returns:
//   - Contrast: the neighbourhood statistics
func NeighborhoodContrast(src *renderer.RenderTarget, x, y int) Contrast {
	lo := common.White
	hi := common.Black
	var avg common.Color
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			t := src.At(x+dx, y+dy)
			lo = lo.Min(t)
			hi = hi.Max(t)
			avg = avg.Add(t.Scale(1.0 / 9.0))
		}
	}
	d := avg.Sub(src.At(x, y))
	return Contrast{
		Min:      lo,
		Max:      hi,
		Average:  avg,
		Distance: float32(math.Sqrt(float64(d.R*d.R + d.G*d.G + d.B*d.B + d.A*d.A))),
	}
}
