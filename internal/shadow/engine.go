// Package shadow samples per-cell visibility of the sun against the scene's
// occluders and grades the result into a small set of stable display
// buckets.
package shadow

import (
	"errors"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/spatial/r3"

	"rooftopshade/internal/sunpos"
)

// ErrQueryUnavailable is returned by a Querier that cannot answer ray
// queries yet (for example, the scene has no geometry). The engine treats it
// as "no occlusion data this tick": the cell keeps its last intensity.
var ErrQueryUnavailable = errors.New("occlusion query unavailable")

// Hit is one ray intersection, ordered by distance from the ray origin.
type Hit struct {
	ID       string // mesh identifier; panels carry their panel ID
	Distance float64
	Extent   r3.Vec // axis-aligned bounding extent of the intersected mesh
}

// Querier is the ray-intersection capability the engine consumes. dir must
// be normalized. Implementations must not be mutated by the engine.
type Querier interface {
	CastRay(origin, dir r3.Vec) ([]Hit, error)
}

// Params bound the cost and noise of sampling.
type Params struct {
	// Interval throttles sampling: a cell is resampled once every Interval
	// ticks, staggered by cell index. Ray queries dominate frame cost, so
	// this is the main performance lever.
	Interval int

	// Epsilon is the minimum hit distance; closer hits are
	// self-intersection noise.
	Epsilon float64

	// MaxRange is the maximum hit distance; farther geometry is not
	// considered a plausible shadow caster.
	MaxRange float64

	// MinOccluderSize filters incidental thin geometry: a hit only blocks
	// if the mesh's bounding extent reaches this size in some dimension.
	MinOccluderSize float64
}

// DefaultParams returns sampling parameters tuned for rooftop scenes.
func DefaultParams() Params {
	return Params{
		Interval:        8,
		Epsilon:         0.02,
		MaxRange:        200,
		MinOccluderSize: 0.15,
	}
}

// Cell is one solar cell to sample. Owner is the mesh ID of the cell's own
// panel, excluded from blocking.
type Cell struct {
	ID    string
	Owner string

	Center   r3.Vec
	AxisRow  r3.Vec // unit vector along the row
	AxisTilt r3.Vec // unit vector up the tilted surface
	Width    float64
	Depth    float64
}

const sampleCount = 5

// samplePoints returns the cell's center and four corners. The corner pairs
// are deliberately separated along the tilt axis (near vs far depth) so the
// corner rays diverge meaningfully instead of being numerically degenerate.
func samplePoints(c Cell) [sampleCount]r3.Vec {
	hw := r3.Scale(c.Width/2, c.AxisRow)
	hd := r3.Scale(c.Depth/2, c.AxisTilt)
	return [sampleCount]r3.Vec{
		c.Center,
		r3.Sub(r3.Sub(c.Center, hw), hd), // near-left
		r3.Sub(r3.Add(c.Center, hw), hd), // near-right
		r3.Add(r3.Sub(c.Center, hw), hd), // far-left
		r3.Add(r3.Add(c.Center, hw), hd), // far-right
	}
}

// Engine evaluates shadow intensity for a fixed set of cells. Sampling is a
// fresh, independent evaluation each tick: no state carries between ticks
// beyond the last computed intensity, which is output only.
type Engine struct {
	querier Querier
	params  Params
	cells   []Cell

	intensity []float64
	log       *zap.Logger
}

// New returns an engine over the given cells. The querier is consumed
// read-only.
func New(q Querier, cells []Cell, params Params, log *zap.Logger) *Engine {
	if params.Interval < 1 {
		params.Interval = 1
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{
		querier:   q,
		params:    params,
		cells:     cells,
		intensity: make([]float64, len(cells)),
		log:       log,
	}
}

// Cells returns the engine's cell set.
func (e *Engine) Cells() []Cell { return e.cells }

// Intensities returns the last computed intensity per cell, in cell order.
// Values are in [0, 1].
func (e *Engine) Intensities() []float64 { return e.intensity }

// Step advances one scheduler tick. A cell is resampled when
// (tick+index) % Interval == 0, staggering query cost across ticks. When the
// sun's raw altitude is at or below the horizon, sampling is skipped
// entirely and every cell is forced to zero: no shadows without light.
func (e *Engine) Step(tick int, sun sunpos.SunVector) {
	if !sun.Up {
		for i := range e.intensity {
			e.intensity[i] = 0
		}
		return
	}
	sunWorld := sun.WorldPosition()
	for i := range e.cells {
		if (tick+i)%e.params.Interval != 0 {
			continue
		}
		v, err := e.sample(&e.cells[i], sunWorld)
		if err != nil {
			// Transient: keep the last intensity and move on. The render
			// loop must never be interrupted by a query failure.
			e.log.Debug("occlusion query failed, keeping last intensity",
				zap.String("cell", e.cells[i].ID), zap.Error(err))
			continue
		}
		e.intensity[i] = v
	}
}

// SampleAll performs a full, unthrottled sampling pass and returns the
// per-cell intensities. Used by the report and API paths, which evaluate
// single moments rather than a running render loop.
func (e *Engine) SampleAll(sun sunpos.SunVector) []float64 {
	out := make([]float64, len(e.cells))
	if !sun.Up {
		copy(e.intensity, out)
		return out
	}
	sunWorld := sun.WorldPosition()
	for i := range e.cells {
		v, err := e.sample(&e.cells[i], sunWorld)
		if err != nil {
			v = e.intensity[i]
		}
		out[i] = v
	}
	copy(e.intensity, out)
	return out
}

// sample casts one ray per sample point toward the sun and returns the
// blocked fraction.
func (e *Engine) sample(c *Cell, sunWorld r3.Vec) (float64, error) {
	blocked := 0
	for _, pt := range samplePoints(*c) {
		dir := r3.Unit(r3.Sub(sunWorld, pt))
		hits, err := e.querier.CastRay(pt, dir)
		if err != nil {
			return 0, err
		}
		if blocks(hits, c.Owner, e.params) {
			blocked++
		}
	}
	return float64(blocked) / sampleCount, nil
}

// blocks reports whether any hit qualifies as a shadow caster for a cell
// owned by owner.
func blocks(hits []Hit, owner string, p Params) bool {
	for _, h := range hits {
		if h.ID == owner {
			continue
		}
		if h.Distance <= p.Epsilon || h.Distance > p.MaxRange {
			continue
		}
		if h.Extent.X < p.MinOccluderSize && h.Extent.Y < p.MinOccluderSize && h.Extent.Z < p.MinOccluderSize {
			continue
		}
		return true
	}
	return false
}
