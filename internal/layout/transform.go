package layout

import "gonum.org/v1/gonum/spatial/r3"

// Placement math in this package is expressed in edge coordinates: the
// distance from a fixed reference edge, which is how installers specify
// offsets on a roof. The renderer consumes center coordinates. These two
// functions are the single point of truth for that conversion; do not
// re-derive "edge + half dimension" inline anywhere else.

// EdgeToCenter converts an edge coordinate and the object's dimension along
// that axis to the object's center coordinate.
func EdgeToCenter(edge, dim float64) float64 {
	return edge + dim/2
}

// CenterToEdge is the inverse of EdgeToCenter.
func CenterToEdge(center, dim float64) float64 {
	return center - dim/2
}

// RotateYaw rotates v about the world Z axis by theta radians.
func RotateYaw(v r3.Vec, theta float64) r3.Vec {
	m := r3.NewRotation(theta, r3.Vec{Z: 1})
	return m.Rotate(v)
}
