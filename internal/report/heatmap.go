// Package report renders a year-at-a-glance exposure heatmap for a layout:
// day of year across, time of day up, color by the array-average solar flux
// actually reaching the cells after shading.
package report

import (
	"image/color"
	"time"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"rooftopshade/internal/sim"
)

// Options controls the sweep.
type Options struct {
	Year          int
	Increment     time.Duration // sampling step, default 30 minutes
	ElevationFeet float64
}

// ExposureYear sweeps the year and writes a heatmap PNG to outPath.
func ExposureYear(w *sim.World, opts Options, outPath string) error {
	inc := opts.Increment
	if inc <= 0 {
		inc = 30 * time.Minute
	}

	type sample struct {
		t    time.Time
		flux float64
	}
	var samples []sample

	zone := w.Location.Zone()
	t := time.Date(opts.Year, 1, 1, 0, 0, 0, 0, zone)
	for t.Year() == opts.Year {
		sun := w.Location.SunAt(t)
		flux := 0.0
		if sun.Up {
			intensities := w.Engine.SampleAll(sun)
			direct := 1.0
			if len(intensities) > 0 {
				sum := 0.0
				for _, v := range intensities {
					sum += 1 - v
				}
				direct = sum / float64(len(intensities))
			}
			flux = sun.Irradiance(opts.ElevationFeet, direct)
		}
		samples = append(samples, sample{t, flux})
		t = t.Add(inc)
	}

	// Compute the visual location of each sample and the bounds of the
	// grid. Columns start from day zero; the row range narrows to just the
	// daylight band.
	var cMax, rMin, rMax int
	startDay, _ := splitTime(samples[0].t)
	var startTOD time.Time
	type xy struct {
		col, row int
		flux     float64
	}
	xys := make([]xy, len(samples))
	for i, s := range samples {
		day, tod := splitTime(s.t)
		xys[i].col = int(day.Sub(startDay) / (24 * time.Hour))
		xys[i].row = int(tod.Sub(splitTimeDay) / inc)
		xys[i].flux = s.flux
		if xys[i].col > cMax {
			cMax = xys[i].col
		}
		if s.flux > 0 {
			first := startTOD.IsZero()
			if first || xys[i].row < rMin {
				rMin = xys[i].row
				startTOD = tod
			}
			if first || xys[i].row > rMax {
				rMax = xys[i].row
			}
		}
	}

	var flux [][]float64
	for i := range xys {
		xy := &xys[i]
		for xy.col >= len(flux) {
			flux = append(flux, make([]float64, rMax-rMin+1))
		}
		if xy.row < rMin || xy.row > rMax {
			continue
		}
		flux[xy.col][xy.row-rMin] = xy.flux
	}
	grid := &exposureGrid{flux, startDay, startTOD, inc}

	plt := newPlot()
	plt.Title.Text = w.Layout.Name
	pal := palette.Heat(256, 1)
	hm := plotter.NewHeatMap(grid, pal)
	hm.Underflow = color.Black
	hm.Rasterized = true
	plt.Add(hm)

	return plt.Save(20*vg.Centimeter, 15*vg.Centimeter, outPath)
}

func newPlot() *plot.Plot {
	plt := plot.New()
	xticks := plot.TimeTicks{Format: "01-02"}
	plt.X.Tick.Marker = xticks
	yticks := plot.TimeTicks{Format: "3:04PM"}
	plt.Y.Tick.Marker = yticks
	plt.BackgroundColor = color.Black
	for _, elt := range []*color.Color{
		&plt.Title.TextStyle.Color,
		&plt.X.Color,
		&plt.X.Tick.Color,
		&plt.X.Tick.Label.Color,
		&plt.X.Label.TextStyle.Color,
		&plt.Y.Color,
		&plt.Y.Tick.Color,
		&plt.Y.Tick.Label.Color,
		&plt.Y.Label.TextStyle.Color,
	} {
		*elt = color.White
	}
	return plt
}

var splitTimeDay = time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)

// splitTime splits t into day and time of day. For the day, we put it
// at noon to "center" it on that date. In all cases, we put the result
// in UTC since that's the time zone gonum will render it in and it
// avoids further complications with DST.
func splitTime(t time.Time) (day, tod time.Time) {
	day = time.Date(t.Year(), t.Month(), t.Day(), 12, 0, 0, 0, time.UTC)
	tod = time.Date(2000, 1, 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), time.UTC)
	return
}

type exposureGrid struct {
	flux               [][]float64
	startDay, startTOD time.Time
	increment          time.Duration
}

func (g *exposureGrid) Dims() (c, r int) {
	if len(g.flux) == 0 {
		return 0, 0
	}
	return len(g.flux), len(g.flux[0])
}

func (g *exposureGrid) Z(c, r int) float64 {
	return g.flux[c][r]
}

func (g *exposureGrid) X(c int) float64 {
	t := g.startDay.Add(time.Duration(c) * (24 * time.Hour))
	return float64(t.Unix())
}

func (g *exposureGrid) Y(r int) float64 {
	t := g.startTOD.Add(time.Duration(r) * g.increment)
	return float64(t.Unix())
}

func (g *exposureGrid) Min() float64 {
	// Return 1 rather than 0 so that the "0" value when the sun isn't
	// in the sky renders in the underflow color.
	return 1
}

func (g *exposureGrid) Max() float64 {
	// Solar radiation at sea level on the equator at noon.
	return 1042
}
