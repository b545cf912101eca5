// Package geom provides the triangle-mesh geometry and ray intersection
// primitives the occlusion engine queries. All coordinates are meters in a
// right-handed world frame:
//
//	Z/up
//	|  Y/north
//	| /
//	|/____ X/east
package geom

import "gonum.org/v1/gonum/spatial/r3"

// Mesh is indexed triangle geometry in world coordinates.
type Mesh struct {
	Verts []r3.Vec
	Tris  [][3]int
}

// AABB is an axis-aligned bounding box.
type AABB struct {
	Min, Max r3.Vec
}

// Size returns the extent of the box along each axis.
func (b AABB) Size() r3.Vec {
	return r3.Sub(b.Max, b.Min)
}

// MaxDim returns the largest extent of the box across the three axes.
func (b AABB) MaxDim() float64 {
	s := b.Size()
	max := s.X
	if s.Y > max {
		max = s.Y
	}
	if s.Z > max {
		max = s.Z
	}
	return max
}

// Bounds returns the axis-aligned bounding box of the mesh. A mesh with no
// vertices has a zero bounds.
func (m *Mesh) Bounds() AABB {
	if len(m.Verts) == 0 {
		return AABB{}
	}
	b := AABB{Min: m.Verts[0], Max: m.Verts[0]}
	for _, v := range m.Verts[1:] {
		b.Min.X = min(b.Min.X, v.X)
		b.Min.Y = min(b.Min.Y, v.Y)
		b.Min.Z = min(b.Min.Z, v.Z)
		b.Max.X = max(b.Max.X, v.X)
		b.Max.Y = max(b.Max.Y, v.Y)
		b.Max.Z = max(b.Max.Z, v.Z)
	}
	return b
}

// boxTris is the triangulation shared by Box and OrientedBox. Vertex order:
// the four corners of the -Z face, then the four corners of the +Z face,
// each in (-X,-Y), (+X,-Y), (+X,+Y), (-X,+Y) order.
var boxTris = [][3]int{
	{0, 2, 1}, {0, 3, 2}, // bottom
	{4, 5, 6}, {4, 6, 7}, // top
	{0, 1, 5}, {0, 5, 4}, // -Y
	{2, 3, 7}, {2, 7, 6}, // +Y
	{0, 4, 7}, {0, 7, 3}, // -X
	{1, 2, 6}, {1, 6, 5}, // +X
}

// Box builds an axis-aligned box mesh spanning min..max.
func Box(bmin, bmax r3.Vec) *Mesh {
	return &Mesh{
		Verts: []r3.Vec{
			{X: bmin.X, Y: bmin.Y, Z: bmin.Z},
			{X: bmax.X, Y: bmin.Y, Z: bmin.Z},
			{X: bmax.X, Y: bmax.Y, Z: bmin.Z},
			{X: bmin.X, Y: bmax.Y, Z: bmin.Z},
			{X: bmin.X, Y: bmin.Y, Z: bmax.Z},
			{X: bmax.X, Y: bmin.Y, Z: bmax.Z},
			{X: bmax.X, Y: bmax.Y, Z: bmax.Z},
			{X: bmin.X, Y: bmax.Y, Z: bmax.Z},
		},
		Tris: boxTris,
	}
}

// OrientedBox builds a box mesh centered at c with orthonormal axes ax, ay,
// az and half-extents hx, hy, hz along them. Used for tilted panel slabs and
// connector bars, whose faces are not axis-aligned.
func OrientedBox(c, ax, ay, az r3.Vec, hx, hy, hz float64) *Mesh {
	ex := r3.Scale(hx, ax)
	ey := r3.Scale(hy, ay)
	ez := r3.Scale(hz, az)
	corner := func(sx, sy, sz float64) r3.Vec {
		return r3.Add(c, r3.Add(r3.Scale(sx, ex), r3.Add(r3.Scale(sy, ey), r3.Scale(sz, ez))))
	}
	return &Mesh{
		Verts: []r3.Vec{
			corner(-1, -1, -1), corner(1, -1, -1), corner(1, 1, -1), corner(-1, 1, -1),
			corner(-1, -1, 1), corner(1, -1, 1), corner(1, 1, 1), corner(-1, 1, 1),
		},
		Tris: boxTris,
	}
}
