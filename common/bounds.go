package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Box3 is an axis-aligned bounding box in world space.
// The zero value is not empty; use EmptyBox3 as the identity for Union.
type Box3 struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

// EmptyBox3 returns an inverted box that any Union will replace.
//
// Returns:
//   - Box3: a box with Min at +Inf and Max at -Inf
func EmptyBox3() Box3 {
	inf := float32(math.Inf(1))
	return Box3{
		Min: mgl32.Vec3{inf, inf, inf},
		Max: mgl32.Vec3{-inf, -inf, -inf},
	}
}

// IsEmpty reports whether the box contains no points.
func (b Box3) IsEmpty() bool {
	return b.Max[0] < b.Min[0] || b.Max[1] < b.Min[1] || b.Max[2] < b.Min[2]
}

// ExpandByPoint grows the box so that it contains p.
func (b Box3) ExpandByPoint(p mgl32.Vec3) Box3 {
	for i := 0; i < 3; i++ {
		b.Min[i] = min(b.Min[i], p[i])
		b.Max[i] = max(b.Max[i], p[i])
	}
	return b
}

// Union returns the smallest box containing both b and o.
func (b Box3) Union(o Box3) Box3 {
	if o.IsEmpty() {
		return b
	}
	return b.ExpandByPoint(o.Min).ExpandByPoint(o.Max)
}

// Size returns the extent of the box along each axis.
func (b Box3) Size() mgl32.Vec3 {
	if b.IsEmpty() {
		return mgl32.Vec3{}
	}
	return b.Max.Sub(b.Min)
}

// Corners returns the eight corners of the box, indexed by the bit pattern
// (x, y, z) where 0 selects Min and 1 selects Max for that axis.
//
// Returns:
//   - [8]mgl32.Vec3: the corners in 000, 001, 010, ... 111 order
func (b Box3) Corners() [8]mgl32.Vec3 {
	var out [8]mgl32.Vec3
	for i := 0; i < 8; i++ {
		c := b.Min
		if i&4 != 0 {
			c[0] = b.Max[0]
		}
		if i&2 != 0 {
			c[1] = b.Max[1]
		}
		if i&1 != 0 {
			c[2] = b.Max[2]
		}
		out[i] = c
	}
	return out
}

// MaxDistance returns the largest distance from p to any of the eight corners of the box.
// An empty box yields 0.
//
// Parameters:
//   - p: the point to measure from (typically the camera position)
//
// Returns:
//   - float32: the maximum corner distance
func (b Box3) MaxDistance(p mgl32.Vec3) float32 {
	if b.IsEmpty() {
		return 0
	}
	var d float32
	for _, c := range b.Corners() {
		d = max(d, c.Sub(p).Len())
	}
	return d
}
