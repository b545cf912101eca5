// Package sim assembles a runnable simulation from configuration: the site
// location, a planned layout, the occluder index over the scene and the
// placed panels, and a shadow engine over every cell.
package sim

import (
	"fmt"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"rooftopshade/internal/config"
	"rooftopshade/internal/layout"
	"rooftopshade/internal/scene"
	"rooftopshade/internal/shadow"
	"rooftopshade/internal/sunpos"
)

// World is one fully assembled layout ready to sample.
type World struct {
	Location sunpos.Location
	Layout   layout.Layout
	Plans    []*layout.Plan
	Index    *scene.Index
	Engine   *shadow.Engine
}

// Build plans the named layout, populates the occluder index with the
// configured scene elements plus the placed panel geometry, and wires the
// shadow engine. Structural errors surface here, before any sampling runs.
func Build(cfg *config.Config, layoutName string, log *zap.Logger) (*World, error) {
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}
	l, err := cfg.Layout(layoutName)
	if err != nil {
		return nil, err
	}

	idx := scene.NewIndex(log)
	for _, oc := range cfg.Occluders {
		switch {
		case oc.Box != nil:
			idx.AddBox(oc.Name,
				r3.Vec{X: oc.Box.Min[0], Y: oc.Box.Min[1], Z: oc.Box.Min[2]},
				r3.Vec{X: oc.Box.Max[0], Y: oc.Box.Max[1], Z: oc.Box.Max[2]})
		case oc.STL != nil:
			scale := oc.STL.Scale
			if scale == 0 {
				scale = 1
			}
			if err := idx.AddSTL(oc.Name, oc.STL.Path, scale); err != nil {
				return nil, err
			}
		}
	}

	specs := cfg.PanelSpecs()
	var plans []*layout.Plan
	var cells []shadow.Cell
	for _, inst := range l.Installations {
		spec, ok := specs[inst.Panel]
		if !ok {
			return nil, fmt.Errorf("installation %q: unknown panel model %q", inst.Name, inst.Panel)
		}
		plan, err := layout.PlanInstallation(inst, spec)
		if err != nil {
			return nil, err
		}
		plans = append(plans, plan)
		idx.AddPlan(plan)
		cells = append(cells, scene.Cells(plan)...)
	}

	log.Info("world built",
		zap.String("layout", l.Name),
		zap.Int("installations", len(plans)),
		zap.Int("cells", len(cells)))

	return &World{
		Location: loc,
		Layout:   l,
		Plans:    plans,
		Index:    idx,
		Engine:   shadow.New(idx, cells, cfg.SamplingParams(), log),
	}, nil
}
