package layout

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/spatial/r3"
)

func testPanel() PanelSpec {
	return PanelSpec{
		Length:      1.722,
		Width:       1.134,
		Thickness:   0.030,
		CellColumns: 12,
		CellRows:    6,
		Strings:     3,
	}
}

func testPlatform(tilt float64, o Orientation) PlatformSpec {
	return PlatformSpec{
		TiltDeg:     tilt,
		Length:      1.2,
		Thickness:   0.04,
		MountOffset: 0.05,
		Orientation: o,
	}
}

func fptr(v float64) *float64 { return &v }

func singleRow(columns int, tilt float64, o Orientation) Installation {
	return Installation{
		Name:     "test",
		Panel:    "p",
		Platform: testPlatform(tilt, o),
		Rows:     []RowConfig{{Columns: columns}},
	}
}

func TestEdgeToCenter(t *testing.T) {
	require.Equal(t, 1.5, EdgeToCenter(1, 1))
	require.Equal(t, 1.0, CenterToEdge(1.5, 1))
	require.Equal(t, 2.5, EdgeToCenter(CenterToEdge(2.5, 3), 3))
}

func TestProjectionPythagorean(t *testing.T) {
	// D² + H² = W² for any tilt.
	panel := testPanel()
	for _, tilt := range []float64{5, 13, 30, 45, 60, 89} {
		plan, err := PlanInstallation(singleRow(1, tilt, Landscape), panel)
		require.NoError(t, err)
		d, h := plan.ProjectedDepth, plan.RearHeight
		require.InDelta(t, panel.Width*panel.Width, d*d+h*h, 1e-9, "tilt %v", tilt)
	}
}

func TestOrientationSwapsTiltAxis(t *testing.T) {
	panel := testPanel()
	land, err := PlanInstallation(singleRow(1, 13, Landscape), panel)
	require.NoError(t, err)
	port, err := PlanInstallation(singleRow(1, 13, Portrait), panel)
	require.NoError(t, err)

	beta := 13 * math.Pi / 180
	require.InDelta(t, panel.Width*math.Cos(beta), land.ProjectedDepth, 1e-9)
	require.InDelta(t, panel.Length*math.Cos(beta), port.ProjectedDepth, 1e-9)
	require.InDelta(t, panel.Width*math.Sin(beta), land.RearHeight, 1e-9)
	require.InDelta(t, panel.Length*math.Sin(beta), port.RearHeight, 1e-9)

	// The cell grid swaps with the tilt axis: same cell count, transposed.
	require.Len(t, land.Panels[0].Cells, 72)
	require.Len(t, port.Panels[0].Cells, 72)
	landMaxCol := 0
	for _, c := range land.Panels[0].Cells {
		landMaxCol = max(landMaxCol, c.Col)
	}
	portMaxCol := 0
	for _, c := range port.Panels[0].Cells {
		portMaxCol = max(portMaxCol, c.Col)
	}
	require.Equal(t, 11, landMaxCol)
	require.Equal(t, 5, portMaxCol)
}

func TestRowAndColumnPlacement(t *testing.T) {
	panel := testPanel()
	inst := Installation{
		Name:     "test",
		Panel:    "p",
		Platform: testPlatform(13, Landscape),
		Rows: []RowConfig{
			{Columns: 2, Connector: fptr(1.4)},
			{Columns: 2},
		},
	}
	plan, err := PlanInstallation(inst, panel)
	require.NoError(t, err)
	require.Len(t, plan.Panels, 4)

	d := plan.ProjectedDepth
	h := plan.RearHeight

	// First panel center: half the projected footprint in, half the rear
	// height up from the mount offset.
	p0 := plan.Panels[0]
	require.InDelta(t, panel.Length/2, p0.Center.X, 1e-9)
	require.InDelta(t, d/2, p0.Center.Y, 1e-9)
	require.InDelta(t, 0.05+h/2, p0.Center.Z, 1e-9)

	// Columns repeat at the full un-tilted panel length.
	p1 := plan.Panels[1]
	require.InDelta(t, panel.Length*1.5, p1.Center.X, 1e-9)
	require.InDelta(t, p0.Center.Y, p1.Center.Y, 1e-9)

	// The second row's leading edge sits one pitch behind the first.
	p2 := plan.Panels[2]
	require.InDelta(t, EdgeToCenter(1.4, d), p2.Center.Y, 1e-9)
}

func TestRowWithoutConnectorAbuts(t *testing.T) {
	panel := testPanel()
	inst := Installation{
		Name:     "test",
		Panel:    "p",
		Platform: testPlatform(13, Landscape),
		Rows: []RowConfig{
			{Columns: 1}, // sub-run tail: no connector
			{Columns: 1},
		},
	}
	plan, err := PlanInstallation(inst, panel)
	require.NoError(t, err)
	d := plan.ProjectedDepth
	require.InDelta(t, EdgeToCenter(d, d), plan.Panels[1].Center.Y, 1e-9)
	require.Empty(t, plan.Connectors)
}

func TestConnectorsCenteredInAirGap(t *testing.T) {
	panel := testPanel()
	pitch := 1.4
	inst := Installation{
		Name:     "test",
		Panel:    "p",
		Platform: testPlatform(13, Landscape),
		Rows: []RowConfig{
			{Columns: 3, Connector: &pitch},
			{Columns: 3},
		},
	}
	plan, err := PlanInstallation(inst, panel)
	require.NoError(t, err)
	require.Len(t, plan.Connectors, 2)

	d := plan.ProjectedDepth
	gap := pitch - d
	for _, c := range plan.Connectors {
		require.InDelta(t, gap, c.Length, 1e-9)
		require.InDelta(t, EdgeToCenter(d, gap), c.Center.Y, 1e-9)
	}
	// One on each side of the row.
	require.Equal(t, 0, plan.Connectors[0].Side)
	require.Equal(t, 1, plan.Connectors[1].Side)
	require.Less(t, plan.Connectors[0].Center.X, plan.Connectors[1].Center.X)
}

func TestNegativeAirGapFails(t *testing.T) {
	panel := testPanel()
	inst := Installation{
		Name:     "test",
		Panel:    "p",
		Platform: testPlatform(13, Landscape),
		Rows: []RowConfig{
			{Columns: 1, Connector: fptr(1.0)}, // < D ≈ 1.105
			{Columns: 1},
		},
	}
	_, err := PlanInstallation(inst, panel)
	var lerr *LayoutError
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, 0, lerr.Row)
}

func TestZeroColumnsFails(t *testing.T) {
	panel := testPanel()
	inst := Installation{
		Name:     "test",
		Panel:    "p",
		Platform: testPlatform(13, Landscape),
		Rows: []RowConfig{
			{Columns: 2, Connector: fptr(1.4)},
			{Columns: 0},
		},
	}
	_, err := PlanInstallation(inst, panel)
	var lerr *LayoutError
	require.ErrorAs(t, err, &lerr)
	require.Equal(t, 1, lerr.Row)
}

func TestTiltRangeFails(t *testing.T) {
	panel := testPanel()
	for _, tilt := range []float64{0, -5, 90, 120} {
		_, err := PlanInstallation(singleRow(1, tilt, Landscape), panel)
		var lerr *LayoutError
		require.ErrorAs(t, err, &lerr, "tilt %v", tilt)
	}
}

func TestPlanIsIdempotent(t *testing.T) {
	panel := testPanel()
	inst := Installation{
		Name:     "test",
		Panel:    "p",
		Platform: testPlatform(25, Portrait),
		Origin:   r3.Vec{X: 2, Y: -1, Z: 0.3},
		YawDeg:   37,
		Rows: []RowConfig{
			{Columns: 2, Connector: fptr(2.0)},
			{Columns: 3},
		},
	}
	a, err := PlanInstallation(inst, panel)
	require.NoError(t, err)
	b, err := PlanInstallation(inst, panel)
	require.NoError(t, err)
	if diff := cmp.Diff(a, b); diff != "" {
		t.Errorf("plans differ (-first +second):\n%s", diff)
	}
}

func TestYawRotatesPlacement(t *testing.T) {
	panel := testPanel()
	inst := singleRow(1, 13, Landscape)
	inst.YawDeg = 90
	inst.Origin = r3.Vec{X: 10, Y: 20}
	plan, err := PlanInstallation(inst, panel)
	require.NoError(t, err)

	// Local +X maps to world +Y under a 90° yaw.
	p := plan.Panels[0]
	require.InDelta(t, 10-plan.ProjectedDepth/2, p.Center.X, 1e-9)
	require.InDelta(t, 20+panel.Length/2, p.Center.Y, 1e-9)

	// The surface axes stay orthonormal.
	require.InDelta(t, 0, r3.Dot(p.AxisRow, p.AxisTilt), 1e-9)
	require.InDelta(t, 1, r3.Norm(p.AxisRow), 1e-9)
	require.InDelta(t, 1, r3.Norm(p.AxisTilt), 1e-9)
	require.InDelta(t, 1, r3.Norm(p.Normal), 1e-9)
}

func TestCellStringsPartition(t *testing.T) {
	panel := testPanel() // 6 tilt rows, 3 strings → 2 rows per string
	plan, err := PlanInstallation(singleRow(1, 13, Landscape), panel)
	require.NoError(t, err)
	for _, c := range plan.Panels[0].Cells {
		require.Equal(t, c.Row/2, c.String)
	}
}

func TestLayoutValidate(t *testing.T) {
	panel := testPanel()
	specs := map[string]PanelSpec{"p": panel}

	good := Layout{Name: "ok", Installations: []Installation{singleRow(2, 13, Landscape)}}
	require.NoError(t, good.Validate(specs))

	bad := good
	bad.Installations = []Installation{{
		Name:     "broken",
		Panel:    "p",
		Platform: testPlatform(13, Landscape),
		Rows:     []RowConfig{{Columns: 1, Connector: fptr(0.5)}, {Columns: 1}},
	}}
	var lerr *LayoutError
	require.ErrorAs(t, bad.Validate(specs), &lerr)

	unknown := Layout{Name: "missing", Installations: []Installation{{Name: "x", Panel: "nope",
		Platform: testPlatform(13, Landscape), Rows: []RowConfig{{Columns: 1}}}}}
	require.Error(t, unknown.Validate(specs))
}
