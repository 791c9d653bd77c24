package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/buffon/components"
	"github.com/pthm-cable/buffon/ui"
)

// keyLegend lists the fixed key bindings; overlay keys are shown on the
// controls panel.
const keyLegend = "[Space] pause  [R] reset  [S] reseed  [</>] drop rate  [Tab] controls  [wheel/+/-] zoom  [arrows/right-drag] pan  [Home] recenter  [click] select"

// handleOverlayKeys checks for overlay toggle key presses.
func (g *Game) handleOverlayKeys() {
	for _, desc := range g.overlays.All() {
		if desc.Key != 0 && rl.IsKeyPressed(desc.Key) {
			newState := g.overlays.Toggle(desc.ID)

			if desc.ID == ui.OverlayGridLines {
				g.gridRenderer.ShowLines = newState
			}
		}
	}
}

// showNeedle reports whether the outcome filters let a needle through.
func (g *Game) showNeedle(c *components.Crossing) bool {
	if c.Crosses {
		return !g.overlays.IsEnabled(ui.OverlayMisses)
	}
	return !g.overlays.IsEnabled(ui.OverlayCrossingOnly)
}

// drawWorldOverlays renders overlays that live on the plane, under the UI.
func (g *Game) drawWorldOverlays() {
	data, ok := g.selectedData()
	if !ok {
		return
	}
	if g.overlays.IsEnabled(ui.OverlayNextLine) {
		g.gridRenderer.DrawMarker(g.camera, float32(data.NextLine), float32(g.cfg.Grid.HalfExtent))
	}
	g.needleRenderer.DrawHighlight(g.camera, &data.Segment)
}

// drawScreenOverlays renders overlays that sit on top of the UI.
func (g *Game) drawScreenOverlays() {
	if g.overlays.IsEnabled(ui.OverlayPerf) {
		g.perfPanel.Draw(g.perfPanelData())
	}
	if g.overlays.IsEnabled(ui.OverlayHelp) {
		g.hud.DrawControls(int32(g.screenWidth), int32(g.screenHeight), keyLegend)
	}
}
