package common

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Plane is a plane ax + by + cz + d = 0 with a unit-length normal (a, b, c).
type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

// SignedDistance returns the signed distance from p to the plane; positive is inside.
func (p Plane) SignedDistance(v mgl32.Vec3) float32 {
	return p.Normal.Dot(v) + p.Distance
}

// Frustum holds the six clip planes of a view-projection matrix, ordered
// left, right, bottom, top, near, far. Positive half-spaces face inward.
type Frustum struct {
	Planes [6]Plane
}

// ExtractFrustumFromMatrix extracts frustum planes from a column-major view-projection matrix
// using the Gribb/Hartmann method. The near plane uses the [0, 1] clip depth convention of Perspective.
//
// Reference: https://www8.cs.umu.se/kurser/5DV051/HT12/lab/plane_extraction.pdf
//
// Parameters:
//   - viewProj: 16 float32 values representing the view-projection matrix (column-major)
//
// Returns:
//   - Frustum: the extracted frustum with normalized planes
func ExtractFrustumFromMatrix(viewProj []float32) Frustum {
	// row(i) = (M[0][i], M[1][i], M[2][i], M[3][i]) with M[col][row] at col*4+row.
	row := func(i int) [4]float32 {
		return [4]float32{viewProj[i], viewProj[4+i], viewProj[8+i], viewProj[12+i]}
	}
	r0, r1, r2, r3 := row(0), row(1), row(2), row(3)

	combos := [6][4]float32{}
	for k := 0; k < 4; k++ {
		combos[0][k] = r3[k] + r0[k]
		combos[1][k] = r3[k] - r0[k]
		combos[2][k] = r3[k] + r1[k]
		combos[3][k] = r3[k] - r1[k]
		combos[4][k] = r2[k]
		combos[5][k] = r3[k] - r2[k]
	}

	var f Frustum
	for i, c := range combos {
		n := mgl32.Vec3{c[0], c[1], c[2]}
		l := float32(math.Sqrt(float64(n.Dot(n))))
		if l > 0 {
			f.Planes[i] = Plane{Normal: n.Mul(1 / l), Distance: c[3] / l}
			continue
		}
		f.Planes[i] = Plane{Normal: n, Distance: c[3]}
	}
	return f
}

// IntersectsBox reports whether any part of the box lies inside all six planes.
// Uses the positive-vertex test, which may report false positives near frustum corners.
//
// Parameters:
//   - b: the box to test
//
// Returns:
//   - bool: false only if the box is entirely outside at least one plane
func (f Frustum) IntersectsBox(b Box3) bool {
	if b.IsEmpty() {
		return false
	}
	for _, p := range f.Planes {
		v := b.Min
		for i := 0; i < 3; i++ {
			if p.Normal[i] >= 0 {
				v[i] = b.Max[i]
			}
		}
		if p.SignedDistance(v) < 0 {
			return false
		}
	}
	return true
}
