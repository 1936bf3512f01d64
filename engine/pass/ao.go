package pass

import (
	"math"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
	"github.com/go-gl/mathgl/mgl32"
)

// OutputMode selects what the ambient occlusion pass writes.
type OutputMode int

const (
	// OutputDefault multiplies the occlusion term onto the incoming image.
	OutputDefault OutputMode = iota
	// OutputBeauty passes the incoming image through untouched.
	OutputBeauty
	// OutputSAO writes the occlusion term alone as greyscale.
	OutputSAO
)

func (m OutputMode) String() string {
	switch m {
	case OutputDefault:
		return "default"
	case OutputBeauty:
		return "beauty"
	case OutputSAO:
		return "sao"
	}
	return "unknown"
}

// SAOParams are the scalable ambient occlusion parameters.
type SAOParams struct {
	Output OutputMode
	// Bias is subtracted from the normalised occlusion of every sample.
	Bias float32
	// Intensity scales the averaged occlusion.
	Intensity float32
	// Scale is the world-space falloff distance, divided by the camera far plane.
	Scale float32
	// KernelRadius is the sampling radius in pixels.
	KernelRadius float32
	// MinResolution offsets the normal-aligned sample distance, multiplied by the far plane.
	MinResolution float32
	Blur          bool
	// BlurRadius is the half-width of the separable blur kernel in pixels.
	BlurRadius int
	// BlurStdDev is the gaussian standard deviation of the blur in pixels.
	BlurStdDev float32
	// BlurDepthCutoff stops the blur at view-depth discontinuities larger than
	// BlurDepthCutoff * (far - near).
	BlurDepthCutoff float32
}

// DefaultSAOParams returns the default occlusion parameters.
func DefaultSAOParams() SAOParams {
	return SAOParams{
		Output:          OutputDefault,
		Bias:            0,
		Intensity:       1.5,
		Scale:           434,
		KernelRadius:    6.52,
		MinResolution:   0,
		Blur:            true,
		BlurRadius:      2,
		BlurStdDev:      4,
		BlurDepthCutoff: 0.00007,
	}
}

const (
	aoSamples   = 7
	aoRings     = 4
	aoDepthEdge = 1 - 1e-6
)

// projection holds what the occlusion kernels need from the camera.
type projection struct {
	inverse   [16]float32
	near, far float32
}

// viewZ converts a [0, 1] perspective depth to a (negative) view-space z.
func (pr projection) viewZ(depth float32) float32 {
	return pr.near * pr.far / ((pr.far-pr.near)*depth - pr.far)
}

// viewPosition unprojects a pixel centre and its depth into view space.
func (pr projection) viewPosition(u, v, depth float32) mgl32.Vec3 {
	ndcX := u*2 - 1
	ndcY := 1 - v*2
	x, y, z, w := common.TransformPoint(pr.inverse[:], ndcX, ndcY, depth)
	return mgl32.Vec3{x / w, y / w, z / w}
}

// hash returns a deterministic pseudo-random value in [0, 1) for a pixel and frame seed.
func hash(x, y int, seed uint32) float32 {
	h := uint32(x)*0x8da6b343 ^ uint32(y)*0xd8163841 ^ seed*0xcb1ab31f
	h ^= h >> 15
	h *= 0x2c1b3c6d
	h ^= h >> 12
	h *= 0x297a2d39
	h ^= h >> 15
	return float32(h>>8) / float32(1<<24)
}

// computeOcclusion writes 1 - occlusion into every pixel of out, reading depth from src.
// Background pixels (depth at the far plane) receive 1.
func computeOcclusion(r renderer.Renderer, src, out *renderer.RenderTarget, pr projection, params SAOParams, seed uint32) {
	w, h := src.Width(), src.Height()
	depth := src.DepthBuffer()
	dst := out.Pixels()
	if depth == nil {
		out.Fill(common.White)
		return
	}

	scaleOverFar := params.Scale / pr.far
	minResTimesFar := params.MinResolution * pr.far
	angleStep := float32(2*math.Pi) * aoRings / aoSamples
	radiusStep := params.KernelRadius / aoSamples

	position := func(x, y int) (mgl32.Vec3, bool) {
		x = min(max(x, 0), w-1)
		y = min(max(y, 0), h-1)
		d := depth[y*w+x]
		if d >= aoDepthEdge {
			return mgl32.Vec3{}, false
		}
		return pr.viewPosition((float32(x)+0.5)/float32(w), (float32(y)+0.5)/float32(h), d), true
	}

	r.Dispatch(h, func(y int) {
		for x := 0; x < w; x++ {
			center, ok := position(x, y)
			if !ok {
				dst[y*w+x] = common.White
				continue
			}
			normal := viewNormal(position, center, x, y)

			angle := hash(x, y, seed) * 2 * math.Pi
			radius := radiusStep
			var sum, weights float32
			for i := 0; i < aoSamples; i++ {
				sx := x + int(math.Round(float64(radius*float32(math.Cos(float64(angle))))))
				sy := y + int(math.Round(float64(radius*float32(math.Sin(float64(angle))))))
				radius += radiusStep
				angle += angleStep

				sample, ok := position(sx, sy)
				if !ok {
					continue
				}
				delta := sample.Sub(center)
				dist := delta.Len()
				scaled := scaleOverFar * dist
				if scaled <= 0 {
					weights++
					continue
				}
				occ := max(0, (normal.Dot(delta)-minResTimesFar)/scaled-params.Bias) / (1 + scaled*scaled)
				sum += occ
				weights++
			}

			ao := float32(0)
			if weights > 0 {
				ao = sum * (params.Intensity / weights)
			}
			v := common.Clamp01(1 - ao)
			dst[y*w+x] = common.Color{R: v, G: v, B: v, A: 1}
		}
	})
}

// viewNormal estimates the view-space normal from neighbouring positions, preferring the
// smaller forward/backward difference on each axis to avoid bleeding across edges.
func viewNormal(position func(x, y int) (mgl32.Vec3, bool), center mgl32.Vec3, x, y int) mgl32.Vec3 {
	pick := func(a, b mgl32.Vec3, okA, okB bool) mgl32.Vec3 {
		da := a.Sub(center)
		db := center.Sub(b)
		switch {
		case okA && okB:
			if math.Abs(float64(da[2])) <= math.Abs(float64(db[2])) {
				return da
			}
			return db
		case okA:
			return da
		case okB:
			return db
		}
		return mgl32.Vec3{}
	}

	right, okR := position(x+1, y)
	left, okL := position(x-1, y)
	down, okD := position(x, y+1)
	up, okU := position(x, y-1)

	dx := pick(right, left, okR, okL)
	// Image rows grow downwards while view-space y grows upwards.
	dy := pick(up, down, okU, okD)
	n := dx.Cross(dy)
	if n.Len() == 0 {
		return mgl32.Vec3{0, 0, 1}
	}
	return n.Normalize()
}

// gaussianWeights returns the one-sided gaussian kernel weights for offsets 0..radius.
func gaussianWeights(radius int, stdDev float32) []float32 {
	weights := make([]float32, radius+1)
	for i := range weights {
		x := float64(i)
		s := float64(stdDev)
		weights[i] = float32(math.Exp(-(x*x)/(2*s*s)) / (math.Sqrt(2*math.Pi) * s))
	}
	return weights
}

// depthLimitedBlur blurs src into dst along one axis. Each side of the kernel stops at the
// first sample whose view depth differs from the centre by more than cutoff.
func depthLimitedBlur(r renderer.Renderer, src, dst, depthSrc *renderer.RenderTarget, pr projection, weights []float32, cutoff float32, horizontal bool) {
	w, h := src.Width(), src.Height()
	in := src.Pixels()
	out := dst.Pixels()
	depth := depthSrc.DepthBuffer()

	r.Dispatch(h, func(y int) {
		for x := 0; x < w; x++ {
			i := y*w + x
			d := depth[i]
			if d >= aoDepthEdge {
				out[i] = in[i]
				continue
			}
			centerZ := -pr.viewZ(d)
			weightSum := weights[0]
			sum := in[i].Scale(weights[0])
			lBreak, rBreak := false, false
			for k := 1; k < len(weights); k++ {
				for _, dir := range [2]int{1, -1} {
					sx, sy := x, y
					if horizontal {
						sx += dir * k
					} else {
						sy += dir * k
					}
					sx = min(max(sx, 0), w-1)
					sy = min(max(sy, 0), h-1)
					j := sy*w + sx
					broken := &rBreak
					if dir < 0 {
						broken = &lBreak
					}
					if float32(math.Abs(float64(-pr.viewZ(depth[j])-centerZ))) > cutoff {
						*broken = true
					}
					if !*broken {
						sum = sum.Add(in[j].Scale(weights[k]))
						weightSum += weights[k]
					}
				}
			}
			out[i] = sum.Scale(1 / weightSum)
		}
	})
}
