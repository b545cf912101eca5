// Package scene maintains the occluder index the shadow engine queries:
// named opaque meshes for the house, chimneys, parapets, neighbors, and the
// placed panel slabs themselves (so rows shade each other). The index never
// changes under the engine's feet within a tick; geometry is added up front.
package scene

import (
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"rooftopshade/internal/geom"
	"rooftopshade/internal/layout"
	"rooftopshade/internal/shadow"
)

type occluder struct {
	id     string
	mesh   *geom.Mesh
	bounds geom.AABB
}

// Index is an ordered-hit ray query index over the scene's occluders. It
// implements shadow.Querier.
type Index struct {
	occluders []occluder
	log       *zap.Logger
}

func NewIndex(log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	return &Index{log: log}
}

func (x *Index) add(id string, m *geom.Mesh) {
	x.occluders = append(x.occluders, occluder{id: id, mesh: m, bounds: m.Bounds()})
}

// AddBox adds an axis-aligned box occluder (house body, chimney, parapet,
// neighbor massing).
func (x *Index) AddBox(id string, bmin, bmax r3.Vec) {
	x.add(id, geom.Box(bmin, bmax))
	x.log.Debug("occluder box added", zap.String("id", id))
}

// AddSTL loads a binary STL file as an occluder. scale converts the file's
// unit to meters.
func (x *Index) AddSTL(id, path string, scale float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	m, err := geom.ReadSTL(f, scale)
	if err != nil {
		return fmt.Errorf("reading STL %s: %w", path, err)
	}
	x.add(id, m)
	x.log.Debug("occluder mesh added", zap.String("id", id), zap.Int("triangles", len(m.Tris)))
	return nil
}

// PanelID returns the occluder ID for a placed panel, shared with the
// shadow cells built from the same plan so a cell never blocks itself.
func PanelID(installation string, panelIndex int) string {
	return fmt.Sprintf("panel/%s/%d", installation, panelIndex)
}

// AddPlan adds the plan's panel slabs and connector bars as occluders.
func (x *Index) AddPlan(plan *layout.Plan) {
	for _, p := range plan.Panels {
		m := geom.OrientedBox(p.Center, p.AxisRow, p.AxisTilt, p.Normal,
			p.Along/2, p.Across/2, p.Thickness/2)
		x.add(PanelID(plan.Installation, p.Index), m)
	}
	for i, c := range plan.Connectors {
		// Connector bars run along the local Y (depth) axis.
		ax := layout.RotateYaw(r3.Vec{X: 1}, c.YawRad)
		ay := layout.RotateYaw(r3.Vec{Y: 1}, c.YawRad)
		m := geom.OrientedBox(c.Center, ax, ay, r3.Vec{Z: 1},
			c.Width/2, c.Length/2, c.Height/2)
		x.add(fmt.Sprintf("connector/%s/%d", plan.Installation, i), m)
	}
}

// CastRay returns all intersections along the ray ordered by distance, with
// each hit carrying the intersected mesh's bounding extent. It returns
// shadow.ErrQueryUnavailable when the index holds no geometry yet.
func (x *Index) CastRay(origin, dir r3.Vec) ([]shadow.Hit, error) {
	if len(x.occluders) == 0 {
		return nil, shadow.ErrQueryUnavailable
	}
	ray := geom.Ray{Origin: origin, Dir: dir}
	var hits []shadow.Hit
	for _, o := range x.occluders {
		t, ok := ray.IntersectMesh(o.mesh)
		if !ok {
			continue
		}
		hits = append(hits, shadow.Hit{ID: o.id, Distance: t, Extent: o.bounds.Size()})
	}
	sort.Slice(hits, func(i, j int) bool { return hits[i].Distance < hits[j].Distance })
	return hits, nil
}

// Cells flattens the plan's per-panel cell grids into shadow cells, tagging
// each with its owning panel's occluder ID.
func Cells(plan *layout.Plan) []shadow.Cell {
	var cells []shadow.Cell
	for _, p := range plan.Panels {
		owner := PanelID(plan.Installation, p.Index)
		for _, c := range p.Cells {
			cells = append(cells, shadow.Cell{
				ID:       fmt.Sprintf("%s/cell/%d.%d", owner, c.Row, c.Col),
				Owner:    owner,
				Center:   c.Center,
				AxisRow:  c.AxisRow,
				AxisTilt: c.AxisTilt,
				Width:    c.Width,
				Depth:    c.Depth,
			})
		}
	}
	return cells
}
