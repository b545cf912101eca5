// Package config handles simulator configuration loading and validation.
package config

import (
	"fmt"

	"gonum.org/v1/gonum/spatial/r3"

	"rooftopshade/internal/layout"
	"rooftopshade/internal/shadow"
	"rooftopshade/internal/sunpos"
)

// Config holds all simulator settings.
type Config struct {
	Site      SiteConfig                `yaml:"site"`
	Panels    map[string]PanelConfig    `yaml:"panels"`
	Platforms map[string]PlatformConfig `yaml:"platforms"`
	Occluders []OccluderConfig          `yaml:"occluders"`
	Layouts   []LayoutConfig            `yaml:"layouts"`
	Sampling  SamplingConfig            `yaml:"sampling"`
	Logging   LoggingConfig             `yaml:"logging"`
	Listen    string                    `yaml:"listen"`
}

// SiteConfig anchors the model geographically.
type SiteConfig struct {
	Latitude      float64 `yaml:"latitude"`
	Longitude     float64 `yaml:"longitude"`
	Timezone      string  `yaml:"timezone"`
	ElevationFeet float64 `yaml:"elevation_feet"`
}

// PanelConfig describes one panel model. Dimensions are meters.
type PanelConfig struct {
	Length      float64 `yaml:"length"`
	Width       float64 `yaml:"width"`
	Thickness   float64 `yaml:"thickness"`
	CellColumns int     `yaml:"cell_columns"`
	CellRows    int     `yaml:"cell_rows"`
	Strings     int     `yaml:"strings"`
}

// PlatformConfig describes a mounting platform model.
type PlatformConfig struct {
	TiltDeg     float64 `yaml:"tilt_deg"`
	Length      float64 `yaml:"length"`
	Thickness   float64 `yaml:"thickness"`
	MountOffset float64 `yaml:"mount_offset"`
	Orientation string  `yaml:"orientation"`
}

// OccluderConfig is a named opaque scene element: either an axis-aligned
// box or a binary STL mesh, not both.
type OccluderConfig struct {
	Name string     `yaml:"name"`
	Box  *BoxConfig `yaml:"box,omitempty"`
	STL  *STLConfig `yaml:"stl,omitempty"`
}

type BoxConfig struct {
	Min [3]float64 `yaml:"min"`
	Max [3]float64 `yaml:"max"`
}

type STLConfig struct {
	Path  string  `yaml:"path"`
	Scale float64 `yaml:"scale"` // native unit → meters, default 1
}

// LayoutConfig is a named rooftop preset.
type LayoutConfig struct {
	Name          string               `yaml:"name"`
	Installations []InstallationConfig `yaml:"installations"`
}

// InstallationConfig anchors one contiguous string of panel rows.
type InstallationConfig struct {
	Name     string      `yaml:"name"`
	Panel    string      `yaml:"panel"`
	Platform string      `yaml:"platform"`
	Position [3]float64  `yaml:"position"`
	YawDeg   float64     `yaml:"yaw_deg"`
	Rows     []RowConfig `yaml:"rows"`
}

// RowConfig is one row: its column count and the optional center-to-center
// connector pitch to the next row, meters.
type RowConfig struct {
	Columns   int      `yaml:"columns"`
	Connector *float64 `yaml:"connector,omitempty"`
}

// SamplingConfig tunes the occlusion engine.
type SamplingConfig struct {
	IntervalTicks   int     `yaml:"interval_ticks"`
	Epsilon         float64 `yaml:"epsilon_m"`
	MaxRange        float64 `yaml:"max_range_m"`
	MinOccluderSize float64 `yaml:"min_occluder_size_m"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// Default returns a Config modeling the reference site: a Culemborg rooftop
// with one east-anchored installation and the chimney that shades it.
func Default() *Config {
	pitch := 1.12
	return &Config{
		Site: SiteConfig{
			Latitude:      51.9553,
			Longitude:     5.2256,
			Timezone:      "Europe/Amsterdam",
			ElevationFeet: 10,
		},
		Panels: map[string]PanelConfig{
			"glass-405": {
				Length:      1.722,
				Width:       1.134,
				Thickness:   0.030,
				CellColumns: 12,
				CellRows:    6,
				Strings:     3,
			},
		},
		Platforms: map[string]PlatformConfig{
			"flat-13": {
				TiltDeg:     13,
				Length:      1.20,
				Thickness:   0.04,
				MountOffset: 0.05,
				Orientation: string(layout.Landscape),
			},
		},
		Occluders: []OccluderConfig{
			{Name: "chimney", Box: &BoxConfig{
				Min: [3]float64{-1.1, 2.4, 0},
				Max: [3]float64{-0.5, 3.0, 1.8},
			}},
			{Name: "parapet-south", Box: &BoxConfig{
				Min: [3]float64{-1.5, -0.4, 0},
				Max: [3]float64{7.5, -0.1, 0.3},
			}},
		},
		Layouts: []LayoutConfig{
			{
				Name: "current",
				Installations: []InstallationConfig{
					{
						Name:     "main-run",
						Panel:    "glass-405",
						Platform: "flat-13",
						Position: [3]float64{0, 0, 0},
						Rows: []RowConfig{
							{Columns: 3, Connector: &pitch},
							{Columns: 3},
						},
					},
				},
			},
		},
		Sampling: SamplingConfig{
			IntervalTicks:   8,
			Epsilon:         0.02,
			MaxRange:        200,
			MinOccluderSize: 0.15,
		},
		Logging: LoggingConfig{Level: "info"},
		Listen:  ":8470",
	}
}

// Location builds the validated site location.
func (c *Config) Location() (sunpos.Location, error) {
	return sunpos.NewLocation(c.Site.Latitude, c.Site.Longitude, c.Site.Timezone)
}

// PanelSpecs converts the configured panel models.
func (c *Config) PanelSpecs() map[string]layout.PanelSpec {
	specs := make(map[string]layout.PanelSpec, len(c.Panels))
	for name, p := range c.Panels {
		specs[name] = layout.PanelSpec{
			Length:      p.Length,
			Width:       p.Width,
			Thickness:   p.Thickness,
			CellColumns: p.CellColumns,
			CellRows:    p.CellRows,
			Strings:     p.Strings,
		}
	}
	return specs
}

// Layout resolves a named layout preset into placement-engine types.
func (c *Config) Layout(name string) (layout.Layout, error) {
	for _, lc := range c.Layouts {
		if lc.Name != name {
			continue
		}
		l := layout.Layout{Name: lc.Name}
		for _, ic := range lc.Installations {
			pc, ok := c.Platforms[ic.Platform]
			if !ok {
				return layout.Layout{}, fmt.Errorf("layout %q: installation %q: unknown platform %q",
					lc.Name, ic.Name, ic.Platform)
			}
			inst := layout.Installation{
				Name:  ic.Name,
				Panel: ic.Panel,
				Platform: layout.PlatformSpec{
					TiltDeg:     pc.TiltDeg,
					Length:      pc.Length,
					Thickness:   pc.Thickness,
					MountOffset: pc.MountOffset,
					Orientation: layout.Orientation(pc.Orientation),
				},
				Origin: r3.Vec{X: ic.Position[0], Y: ic.Position[1], Z: ic.Position[2]},
				YawDeg: ic.YawDeg,
			}
			for _, rc := range ic.Rows {
				inst.Rows = append(inst.Rows, layout.RowConfig{
					Columns:   rc.Columns,
					Connector: rc.Connector,
				})
			}
			l.Installations = append(l.Installations, inst)
		}
		return l, nil
	}
	return layout.Layout{}, fmt.Errorf("unknown layout %q", name)
}

// LayoutNames lists the configured presets in order.
func (c *Config) LayoutNames() []string {
	names := make([]string, len(c.Layouts))
	for i, lc := range c.Layouts {
		names[i] = lc.Name
	}
	return names
}

// SamplingParams converts the sampling settings.
func (c *Config) SamplingParams() shadow.Params {
	p := shadow.DefaultParams()
	if c.Sampling.IntervalTicks > 0 {
		p.Interval = c.Sampling.IntervalTicks
	}
	if c.Sampling.Epsilon > 0 {
		p.Epsilon = c.Sampling.Epsilon
	}
	if c.Sampling.MaxRange > 0 {
		p.MaxRange = c.Sampling.MaxRange
	}
	if c.Sampling.MinOccluderSize > 0 {
		p.MinOccluderSize = c.Sampling.MinOccluderSize
	}
	return p
}

// Validate runs the eager structural checks: site ranges, occluder shape,
// and a dry-run plan of every layout. Layout problems surface here, at load
// time, never mid-render.
func (c *Config) Validate() error {
	if _, err := c.Location(); err != nil {
		return err
	}
	for i, oc := range c.Occluders {
		if (oc.Box == nil) == (oc.STL == nil) {
			return fmt.Errorf("occluder %d (%q): exactly one of box or stl required", i, oc.Name)
		}
	}
	specs := c.PanelSpecs()
	for _, lc := range c.Layouts {
		l, err := c.Layout(lc.Name)
		if err != nil {
			return err
		}
		if err := l.Validate(specs); err != nil {
			return fmt.Errorf("layout %q: %w", lc.Name, err)
		}
	}
	return nil
}
