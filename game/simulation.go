package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/buffon/components"
	"github.com/pthm-cable/buffon/telemetry"
)

// Step runs a single tick: drop this frame's needles, prune the oldest,
// refresh the estimate and the picking index, then flush telemetry.
func (g *Game) Step() {
	g.perfCollector.StartStep()

	// 1. Drop
	g.perfCollector.StartPhase(telemetry.PhaseDrop)
	windows, err := g.drops.Drop(g.dropsPerFrame, g.tick)
	if err != nil {
		logError("dropping needles", err)
	}
	if g.dropsPerFrame > 0 {
		g.spatialDirty = true
	}

	// 2. Prune
	g.perfCollector.StartPhase(telemetry.PhasePrune)
	if g.drops.Prune() > 0 {
		g.spatialDirty = true
	}
	g.validateSelection()

	// 3. Estimate
	g.perfCollector.StartPhase(telemetry.PhaseEstimate)
	g.updateEstimate()

	// 4. Spatial index
	g.perfCollector.StartPhase(telemetry.PhaseSpatial)
	g.updateSpatialGrid()

	// 5. Telemetry
	g.perfCollector.StartPhase(telemetry.PhaseTelemetry)
	for _, stats := range windows {
		g.handleWindow(stats)
	}

	g.perfCollector.EndStep()
	g.tick++
}

// updateEstimate recomputes the running estimate from the tally.
func (g *Game) updateEstimate() {
	est, err := g.drops.Estimate(g.estimator)
	if err != nil {
		g.estimate = nan()
		return
	}
	g.estimate = est
}

// updateSpatialGrid rebuilds the picking index when needles changed.
func (g *Game) updateSpatialGrid() {
	if !g.spatialDirty {
		return
	}
	g.spatialGrid.Clear()

	g.drops.EachEntity(func(e ecs.Entity, seg *components.Segment, _ *components.Crossing) {
		g.spatialGrid.InsertSegment(e, seg)
	})
	g.spatialDirty = false
}
