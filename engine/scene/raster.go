package scene

import (
	"math"

	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/Carmen-Shannon/oxy-viewer/engine/renderer"
)

// clipVertex is a homogeneous clip-space position.
type clipVertex struct {
	x, y, z, w float32
}

// screenVertex is a window-space position: pixels for x/y, [0, 1] depth for z.
type screenVertex struct {
	x, y, z float32
}

// lerpClip interpolates between two clip-space vertices.
func lerpClip(a, b clipVertex, t float32) clipVertex {
	return clipVertex{
		x: common.Lerp(a.x, b.x, t),
		y: common.Lerp(a.y, b.y, t),
		z: common.Lerp(a.z, b.z, t),
		w: common.Lerp(a.w, b.w, t),
	}
}

// clipNear clips a triangle against the z >= 0 near plane and returns the resulting
// convex polygon (0, 3 or 4 vertices).
func clipNear(tri [3]clipVertex, out []clipVertex) []clipVertex {
	out = out[:0]
	for i := 0; i < 3; i++ {
		a := tri[i]
		b := tri[(i+1)%3]
		aIn := a.z >= 0
		bIn := b.z >= 0
		if aIn {
			out = append(out, a)
		}
		if aIn != bIn {
			t := a.z / (a.z - b.z)
			out = append(out, lerpClip(a, b, t))
		}
	}
	return out
}

// toScreen performs the perspective divide and viewport transform. Row 0 is the top row.
func toScreen(v clipVertex, width, height int) screenVertex {
	inv := 1 / v.w
	return screenVertex{
		x: (v.x*inv*0.5 + 0.5) * float32(width),
		y: (0.5 - v.y*inv*0.5) * float32(height),
		z: v.z * inv,
	}
}

func edge(a, b screenVertex, px, py float32) float32 {
	return (b.x-a.x)*(py-a.y) - (b.y-a.y)*(px-a.x)
}

// rasterizeTriangle fills the pixels whose centres fall inside the triangle, depth-testing
// against the target's depth attachment when it has one.
func rasterizeTriangle(target *renderer.RenderTarget, v0, v1, v2 screenVertex, c common.Color) int {
	area := edge(v0, v1, v2.x, v2.y)
	if area == 0 || math.IsNaN(float64(area)) {
		return 0
	}
	w, h := target.Width(), target.Height()

	minX := max(int(math.Floor(float64(min(v0.x, v1.x, v2.x)))), 0)
	maxX := min(int(math.Ceil(float64(max(v0.x, v1.x, v2.x)))), w-1)
	minY := max(int(math.Floor(float64(min(v0.y, v1.y, v2.y)))), 0)
	maxY := min(int(math.Ceil(float64(max(v0.y, v1.y, v2.y)))), h-1)
	if minX > maxX || minY > maxY {
		return 0
	}

	invArea := 1 / area
	color := target.Pixels()
	depth := target.DepthBuffer()
	written := 0

	for y := minY; y <= maxY; y++ {
		py := float32(y) + 0.5
		for x := minX; x <= maxX; x++ {
			px := float32(x) + 0.5
			b0 := edge(v1, v2, px, py) * invArea
			b1 := edge(v2, v0, px, py) * invArea
			b2 := edge(v0, v1, px, py) * invArea
			if b0 < 0 || b1 < 0 || b2 < 0 {
				continue
			}
			z := b0*v0.z + b1*v1.z + b2*v2.z
			if z < 0 || z > 1 {
				continue
			}
			i := y*w + x
			if depth != nil {
				if z >= depth[i] {
					continue
				}
				depth[i] = z
			}
			color[i] = c
			written++
		}
	}
	return written
}
