package scene

import (
	"github.com/Carmen-Shannon/oxy-viewer/common"
	"github.com/go-gl/mathgl/mgl32"
)

// Mesh is an indexed triangle list with a single flat colour.
// Positions are in model space and placed in the world by Transform.
type Mesh struct {
	Name      string
	Positions []mgl32.Vec3
	Indices   []uint32
	Color     common.Color
	Transform mgl32.Mat4
}

// TriangleCount returns the number of complete triangles in the index list.
func (m *Mesh) TriangleCount() int {
	return len(m.Indices) / 3
}

// WorldPositions returns the positions transformed by the mesh transform.
//
// Returns:
//   - []mgl32.Vec3: one world-space position per model-space position
func (m *Mesh) WorldPositions() []mgl32.Vec3 {
	out := make([]mgl32.Vec3, len(m.Positions))
	for i, p := range m.Positions {
		out[i] = mgl32.TransformCoordinate(p, m.Transform)
	}
	return out
}

// Bounds returns the world-space axis-aligned bounding box of the mesh.
//
// Returns:
//   - common.Box3: the bounds, empty when the mesh has no positions
func (m *Mesh) Bounds() common.Box3 {
	b := common.EmptyBox3()
	for _, p := range m.Positions {
		b = b.ExpandByPoint(mgl32.TransformCoordinate(p, m.Transform))
	}
	return b
}

// boxIndices lists the 12 triangles of a unit cube with corners ordered as in common.Box3.Corners.
var boxIndices = []uint32{
	0, 1, 3, 0, 3, 2, // -X
	4, 6, 7, 4, 7, 5, // +X
	0, 4, 5, 0, 5, 1, // -Y
	2, 3, 7, 2, 7, 6, // +Y
	0, 2, 6, 0, 6, 4, // -Z
	1, 5, 7, 1, 7, 3, // +Z
}

// NewBox builds an axis-aligned box mesh.
//
// Parameters:
//   - name: the mesh name
//   - center: the box centre in world space
//   - size: edge lengths along X, Y and Z
//   - color: the flat colour
//
// Returns:
//   - *Mesh: the box mesh with an identity model matrix baked into its transform
func NewBox(name string, center, size mgl32.Vec3, color common.Color) *Mesh {
	half := size.Mul(0.5)
	b := common.Box3{Min: center.Sub(half), Max: center.Add(half)}
	corners := b.Corners()
	idx := make([]uint32, len(boxIndices))
	copy(idx, boxIndices)
	return &Mesh{
		Name:      name,
		Positions: corners[:],
		Indices:   idx,
		Color:     color,
		Transform: mgl32.Ident4(),
	}
}

// NewPlane builds a horizontal rectangle facing +Y.
//
// Parameters:
//   - name: the mesh name
//   - center: the plane centre in world space
//   - width, depth: extents along X and Z
//   - color: the flat colour
//
// Returns:
//   - *Mesh: the two-triangle plane mesh
func NewPlane(name string, center mgl32.Vec3, width, depth float32, color common.Color) *Mesh {
	hw, hd := width/2, depth/2
	return &Mesh{
		Name: name,
		Positions: []mgl32.Vec3{
			center.Add(mgl32.Vec3{-hw, 0, -hd}),
			center.Add(mgl32.Vec3{hw, 0, -hd}),
			center.Add(mgl32.Vec3{hw, 0, hd}),
			center.Add(mgl32.Vec3{-hw, 0, hd}),
		},
		Indices:   []uint32{0, 2, 1, 0, 3, 2},
		Color:     color,
		Transform: mgl32.Ident4(),
	}
}
