package geom

import (
	"encoding/binary"
	"io"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// ReadSTL reads a binary STL stream into a Mesh, deduplicating shared
// vertices. scale converts the STL's native unit to meters (e.g. 0.0254 for
// a SketchUp export in inches); pass 1 for a mesh already in meters.
func ReadSTL(r io.Reader, scale float64) (*Mesh, error) {
	m := new(Mesh)

	var header struct {
		H    [80]byte
		NTri uint32
	}
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, err
	}

	vertMap := make(map[[3]float32]int)

	var vert [3]float32
	var tri [3]int
	triBuf := make([]byte, 4*3*4+2)
	for i := 0; i < int(header.NTri); i++ {
		// Read a triangle
		if _, err := io.ReadFull(r, triBuf); err != nil {
			return nil, err
		}
		// Read the vertexes.
		for v := range tri {
			// Read the coordinates of this vertex.
			for c := range vert {
				const start = 3 * 4 // Skip normal
				vert[c] = math.Float32frombits(binary.LittleEndian.Uint32(triBuf[start+12*v+4*c:]))
			}
			// Add the vertex to the vertex set.
			vertIndex, ok := vertMap[vert]
			if !ok {
				vertIndex = len(m.Verts)
				m.Verts = append(m.Verts, r3.Vec{
					X: float64(vert[0]) * scale,
					Y: float64(vert[1]) * scale,
					Z: float64(vert[2]) * scale,
				})
				vertMap[vert] = vertIndex
			}
			tri[v] = vertIndex
		}
		// Add the triangle.
		m.Tris = append(m.Tris, tri)
	}

	return m, nil
}
