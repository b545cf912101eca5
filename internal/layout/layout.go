// Package layout places tilted panel arrays, rows, and inter-row connectors
// from physical parameters. Everything here is pure geometry: the same
// inputs always produce the same placements.
package layout

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/spatial/r3"
)

// Orientation selects which panel dimension lies along the row.
type Orientation string

const (
	// Landscape mounts the panel long side along the row; the short side
	// is the tilt axis.
	Landscape Orientation = "landscape"
	// Portrait swaps them: the long side becomes the tilt axis.
	Portrait Orientation = "portrait"
)

// PanelSpec describes one panel model. Dimensions are meters.
type PanelSpec struct {
	Length    float64 // long side
	Width     float64 // short side
	Thickness float64

	CellColumns int // cell grid along the long side
	CellRows    int // cell grid along the short side
	Strings     int // internal electrical strings, presentation grouping only
}

// PlatformSpec describes the mounting platform carrying one panel.
type PlatformSpec struct {
	TiltDeg     float64 // must be in (0, 90)
	Length      float64
	Thickness   float64
	MountOffset float64 // panel leading-edge height above the mounting plane
	Orientation Orientation
}

// RowConfig is one row of an installation. Connector is the center-to-center
// pitch to the next row, in meters; nil marks the tail of a sub-run with no
// further connector.
type RowConfig struct {
	Columns   int
	Connector *float64
}

// Installation is one physically contiguous string of panel rows anchored to
// the roof.
type Installation struct {
	Name     string
	Panel    string // panel model name, resolved by the caller
	Rows     []RowConfig
	Platform PlatformSpec

	Origin r3.Vec  // world position of the installation's reference corner
	YawDeg float64 // rotation about the world Z axis
}

// Layout is a named rooftop configuration preset.
type Layout struct {
	Name          string
	Installations []Installation
}

// LayoutError reports a structurally invalid installation. Row is the index
// of the offending row, or -1 when the problem is not row-specific.
type LayoutError struct {
	Installation string
	Row          int
	Reason       string
}

func (e *LayoutError) Error() string {
	if e.Row < 0 {
		return fmt.Sprintf("installation %q: %s", e.Installation, e.Reason)
	}
	return fmt.Sprintf("installation %q: row %d: %s", e.Installation, e.Row, e.Reason)
}

// CellGeometry is one solar cell's world-space geometry on a placed panel's
// top surface.
type CellGeometry struct {
	Row, Col int
	String   int // electrical string index, 0..Strings-1

	Center   r3.Vec
	AxisRow  r3.Vec // unit vector along the row
	AxisTilt r3.Vec // unit vector up the tilted surface
	Width    float64
	Depth    float64
}

// PanelPlacement is one panel's world placement plus its cell grid.
type PanelPlacement struct {
	Index    int // position in the installation, row-major
	Row, Col int

	Center  r3.Vec  // slab center
	TiltRad float64 // rotation about the row axis
	YawRad  float64 // rotation about the world Z axis

	AxisRow  r3.Vec
	AxisTilt r3.Vec
	Normal   r3.Vec

	Along     float64 // slab dimension along the row
	Across    float64 // slab dimension along the tilt axis
	Thickness float64

	Cells []CellGeometry
}

// ConnectorPlacement is one structural connector bar centered in the air
// gap behind a row. Two are placed per gap, one on each side of the row.
type ConnectorPlacement struct {
	Row    int // the row this connector trails
	Side   int // 0 left, 1 right
	Center r3.Vec
	Length float64 // the air gap G
	Width  float64
	Height float64
	YawRad float64
}

// Plan is the placement output for one installation.
type Plan struct {
	Installation string
	Panels       []PanelPlacement
	Connectors   []ConnectorPlacement

	ProjectedDepth float64 // D = W·cos(β)
	RearHeight     float64 // H = W·sin(β)
}

// axisDims returns the panel dimension along the row and along the tilt
// axis for the platform's orientation, plus the matching cell-grid counts.
func axisDims(panel PanelSpec, platform PlatformSpec) (along, tiltAxis float64, alongCells, tiltCells int) {
	if platform.Orientation == Portrait {
		return panel.Width, panel.Length, panel.CellRows, panel.CellColumns
	}
	return panel.Length, panel.Width, panel.CellColumns, panel.CellRows
}

// PlanInstallation lays out one installation. It validates eagerly and
// never produces overlapping geometry: a zero-column row or an air gap below
// zero fails with a LayoutError naming the row.
func PlanInstallation(inst Installation, panel PanelSpec) (*Plan, error) {
	if panel.Length <= 0 || panel.Width <= 0 || panel.Thickness <= 0 {
		return nil, &LayoutError{inst.Name, -1, "panel dimensions must be positive"}
	}
	if panel.CellColumns <= 0 || panel.CellRows <= 0 {
		return nil, &LayoutError{inst.Name, -1, "panel cell grid must be positive"}
	}
	if panel.Strings <= 0 {
		return nil, &LayoutError{inst.Name, -1, "panel must have at least one string"}
	}
	if inst.Platform.TiltDeg <= 0 || inst.Platform.TiltDeg >= 90 {
		return nil, &LayoutError{inst.Name, -1,
			fmt.Sprintf("tilt angle %v° outside (0°, 90°)", inst.Platform.TiltDeg)}
	}
	if len(inst.Rows) == 0 {
		return nil, &LayoutError{inst.Name, -1, "installation has no rows"}
	}

	beta := inst.Platform.TiltDeg * math.Pi / 180
	along, tiltAxis, alongCells, tiltCells := axisDims(panel, inst.Platform)

	// The tilt-axis dimension projects onto the mounting plane and rises
	// above it.
	depth := tiltAxis * math.Cos(beta)  // D
	height := tiltAxis * math.Sin(beta) // H

	yaw := inst.YawDeg * math.Pi / 180
	world := func(local r3.Vec) r3.Vec {
		return r3.Add(inst.Origin, RotateYaw(local, yaw))
	}

	axisRow := RotateYaw(r3.Vec{X: 1}, yaw)
	axisTilt := RotateYaw(r3.Vec{Y: math.Cos(beta), Z: math.Sin(beta)}, yaw)
	normal := r3.Cross(axisRow, axisTilt)

	plan := &Plan{
		Installation:   inst.Name,
		ProjectedDepth: depth,
		RearHeight:     height,
	}

	cellW := along / float64(alongCells)
	cellD := tiltAxis / float64(tiltCells)

	// Rows advance along the installation's local Y axis. rowEdge is the
	// edge coordinate of the current row's leading edge.
	rowEdge := 0.0
	for ri, row := range inst.Rows {
		if row.Columns <= 0 {
			return nil, &LayoutError{inst.Name, ri,
				fmt.Sprintf("row must have at least one column, got %d", row.Columns)}
		}

		for ci := 0; ci < row.Columns; ci++ {
			p := PanelPlacement{
				Index:     len(plan.Panels),
				Row:       ri,
				Col:       ci,
				TiltRad:   beta,
				YawRad:    yaw,
				AxisRow:   axisRow,
				AxisTilt:  axisTilt,
				Normal:    normal,
				Along:     along,
				Across:    tiltAxis,
				Thickness: panel.Thickness,
			}
			// Columns repeat at fixed pitch along the row using the full
			// un-tilted panel dimension.
			colEdge := float64(ci) * along
			p.Center = world(r3.Vec{
				X: EdgeToCenter(colEdge, along),
				Y: EdgeToCenter(rowEdge, depth),
				Z: EdgeToCenter(inst.Platform.MountOffset, height),
			})

			// Cells sit on the top surface of the slab.
			surface := r3.Add(p.Center, r3.Scale(panel.Thickness/2, normal))
			p.Cells = make([]CellGeometry, 0, tiltCells*alongCells)
			for cr := 0; cr < tiltCells; cr++ {
				str := cr * panel.Strings / tiltCells
				for cc := 0; cc < alongCells; cc++ {
					dRow := EdgeToCenter(float64(cc)*cellW, cellW) - along/2
					dTilt := EdgeToCenter(float64(cr)*cellD, cellD) - tiltAxis/2
					center := r3.Add(surface,
						r3.Add(r3.Scale(dRow, axisRow), r3.Scale(dTilt, axisTilt)))
					p.Cells = append(p.Cells, CellGeometry{
						Row: cr, Col: cc, String: str,
						Center:   center,
						AxisRow:  axisRow,
						AxisTilt: axisTilt,
						Width:    cellW,
						Depth:    cellD,
					})
				}
			}
			plan.Panels = append(plan.Panels, p)
		}

		if row.Connector == nil {
			// Tail of a sub-run: the next row starts directly behind the
			// projected footprint.
			rowEdge += depth
			continue
		}

		pitch := *row.Connector
		gap := pitch - depth
		if gap < 0 {
			return nil, &LayoutError{inst.Name, ri,
				fmt.Sprintf("connector length %.3fm is shorter than the projected panel depth %.3fm", pitch, depth)}
		}

		// Connector bars are centered in the air gap, one per side of the
		// row. Their cross-section matches the platform thickness.
		bar := inst.Platform.Thickness
		rowWidth := float64(row.Columns) * along
		gapCenterY := EdgeToCenter(rowEdge+depth, gap)
		for side, xEdge := range []float64{0, rowWidth - bar} {
			plan.Connectors = append(plan.Connectors, ConnectorPlacement{
				Row:  ri,
				Side: side,
				Center: world(r3.Vec{
					X: EdgeToCenter(xEdge, bar),
					Y: gapCenterY,
					Z: EdgeToCenter(0, bar),
				}),
				Length: gap,
				Width:  bar,
				Height: bar,
				YawRad: yaw,
			})
		}

		rowEdge += pitch
	}

	return plan, nil
}

// Validate plans every installation of the layout against the given panel
// models, surfacing the first structural error. panels maps model names to
// specs.
func (l Layout) Validate(panels map[string]PanelSpec) error {
	for _, inst := range l.Installations {
		spec, ok := panels[inst.Panel]
		if !ok {
			return &LayoutError{inst.Name, -1, fmt.Sprintf("unknown panel model %q", inst.Panel)}
		}
		if _, err := PlanInstallation(inst, spec); err != nil {
			return err
		}
	}
	return nil
}
