// Command panelshade simulates rooftop panel shading: sun position for a
// simulated moment, per-cell shadow sampling for a layout, a year-long
// exposure heatmap, or an HTTP/websocket feed for an interactive UI.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"go.uber.org/zap"

	"rooftopshade/internal/api"
	"rooftopshade/internal/config"
	"rooftopshade/internal/logger"
	"rooftopshade/internal/report"
	"rooftopshade/internal/shadow"
	"rooftopshade/internal/sim"
	"rooftopshade/internal/sunpos"
)

func main() {
	var (
		configPath = flag.String("config", "", "path to config.yaml (defaults to the built-in reference site)")
		mode       = flag.String("mode", "shadow", "sun | shadow | heatmap | serve")
		layoutName = flag.String("layout", "", "layout preset (default: first configured)")
		date       = flag.String("date", time.Now().Format("2006-01-02"), "simulated date, YYYY-MM-DD")
		hour       = flag.Float64("hour", 12, "simulated decimal hour of day, [0, 24)")
		year       = flag.Int("year", time.Now().Year(), "year for -mode heatmap")
		out        = flag.String("out", "exposure.png", "output path for -mode heatmap")
	)
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	log := logger.New(cfg.Logging.Level, cfg.Logging.File)
	defer log.Sync()

	if *layoutName == "" {
		names := cfg.LayoutNames()
		if len(names) > 0 {
			*layoutName = names[0]
		}
	}

	if err := run(cfg, log, *mode, *layoutName, *date, *hour, *year, *out); err != nil {
		log.Fatal("run failed", zap.Error(err))
	}
}

func run(cfg *config.Config, log *zap.Logger, mode, layoutName, date string, hour float64, year int, out string) error {
	loc, err := cfg.Location()
	if err != nil {
		return err
	}
	m, err := parseMoment(date, hour)
	if err != nil {
		return err
	}

	switch mode {
	case "sun":
		sun := loc.Sun(m)
		log.Info("sun position",
			zap.String("date", date),
			zap.Float64("hour", hour),
			zap.Float64("azimuth", sun.Azimuth),
			zap.Float64("elevation", sun.Elevation),
			zap.Bool("up", sun.Up))
		return nil

	case "shadow":
		w, err := sim.Build(cfg, layoutName, log)
		if err != nil {
			return err
		}
		sun := loc.Sun(m)
		intensities := w.Engine.SampleAll(sun)
		cells := w.Engine.Cells()
		counts := [6]int{}
		for _, v := range intensities {
			counts[shadow.Classify(v).Level]++
		}
		log.Info("shadow state",
			zap.String("layout", layoutName),
			zap.Float64("azimuth", sun.Azimuth),
			zap.Float64("elevation", sun.Elevation),
			zap.Int("cells", len(cells)),
			zap.Ints("by_level", counts[:]))
		for i, c := range cells {
			if intensities[i] > 0 {
				log.Debug("shaded cell", zap.String("cell", c.ID), zap.Float64("intensity", intensities[i]))
			}
		}
		return nil

	case "heatmap":
		w, err := sim.Build(cfg, layoutName, log)
		if err != nil {
			return err
		}
		opts := report.Options{Year: year, ElevationFeet: cfg.Site.ElevationFeet}
		if err := report.ExposureYear(w, opts, out); err != nil {
			return err
		}
		log.Info("heatmap written", zap.String("path", out))
		return nil

	case "serve":
		srv, err := api.NewServer(cfg, log)
		if err != nil {
			return err
		}
		return srv.Listen()

	default:
		return fmt.Errorf("unknown mode %q", mode)
	}
}

func parseMoment(date string, hour float64) (sunpos.Moment, error) {
	d, err := time.Parse("2006-01-02", date)
	if err != nil {
		return sunpos.Moment{}, fmt.Errorf("bad -date %q: want YYYY-MM-DD", date)
	}
	m := sunpos.Moment{Year: d.Year(), Month: d.Month(), Day: d.Day(), Hour: hour}
	if err := m.Validate(); err != nil {
		return sunpos.Moment{}, err
	}
	return m, nil
}
