package game

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/buffon/ui"
)

// pickRadius is how close, in screen pixels, a click must land to a needle.
const pickRadius = 8

// selectAt selects the needle nearest to a screen position, or clears the
// selection when none lies within pickRadius.
func (g *Game) selectAt(sx, sy float32) bool {
	wx, wy := g.camera.ScreenToWorld(sx, sy)
	radius := pickRadius / g.camera.Scale()
	halfLen := float32(g.drops.Params().NeedleLen / 2)

	e, ok := g.spatialGrid.Nearest(wx, wy, radius, halfLen, g.segMap)
	if !ok {
		g.clearSelection()
		return false
	}
	g.selected = e
	g.hasSelection = true
	return true
}

// Selected returns the selected needle, if it still exists.
func (g *Game) Selected() (ecs.Entity, bool) {
	if !g.hasSelection || !g.world.Alive(g.selected) {
		return ecs.Entity{}, false
	}
	return g.selected, true
}

// validateSelection drops a selection whose needle was pruned.
func (g *Game) validateSelection() {
	if g.hasSelection && !g.world.Alive(g.selected) {
		g.clearSelection()
	}
}

func (g *Game) clearSelection() {
	g.selected = ecs.Entity{}
	g.hasSelection = false
}

// selectedData gathers inspector data for the selected needle.
func (g *Game) selectedData() (ui.InspectorData, bool) {
	e, ok := g.Selected()
	if !ok {
		return ui.InspectorData{}, false
	}
	seg := g.segMap.Get(e)
	cross := g.crossMap.Get(e)
	drop := g.dropMap.Get(e)
	if seg == nil || cross == nil || drop == nil {
		return ui.InspectorData{}, false
	}
	return ui.NewInspectorData(*seg, *cross, *drop, g.drops.Params().Grid()), true
}
