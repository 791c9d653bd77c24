package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/buffon/components"
	"github.com/pthm-cable/buffon/needle"
	"github.com/pthm-cable/buffon/ui"
)

// Draw renders the plane, the needles and the UI. Controls panel actions
// are applied on the next Update.
func (g *Game) Draw() {
	g.perfCollector.RecordFrame()

	rl.BeginDrawing()

	// Plane and needles
	g.gridRenderer.Draw(g.camera, g.drops.Params().Grid(), float32(g.cfg.Grid.HalfExtent))
	g.drops.Each(func(seg *components.Segment, c *components.Crossing) {
		if g.showNeedle(c) {
			g.needleRenderer.Draw(g.camera, seg, c)
		}
	})
	g.drawWorldOverlays()

	// UI
	g.hud.Draw(g.hudData())
	if data, ok := g.selectedData(); ok {
		g.inspector.Draw(data)
	}
	action := g.controls.Draw(g.overlays, g.paused)
	g.mergePending(action)
	g.drawScreenOverlays()

	rl.EndDrawing()
}

// hudData gathers the estimator readout.
func (g *Game) hudData() ui.HUDData {
	t := g.drops.Tally()
	p := g.drops.Params()
	return ui.HUDData{
		Title:        Title,
		Trials:       t.Trials,
		Crossings:    t.Crossings,
		Rate:         t.Rate(),
		Theoretical:  needle.TheoreticalRate(p),
		Estimate:     g.estimate,
		NeedleLen:    p.NeedleLen,
		Spacing:      p.Spacing,
		Live:         g.drops.Count(),
		Seed:         g.seed,
		FPS:          rl.GetFPS(),
		Paused:       g.paused,
		ScreenWidth:  int32(g.screenWidth),
		ScreenHeight: int32(g.screenHeight),
	}
}

// mergePending folds a panel action into the one queued by the keyboard.
func (g *Game) mergePending(a ui.ControlsAction) {
	if a.ParamsChanged {
		g.pending.ParamsChanged = true
		g.pending.Params = a.Params
	}
	if a.DropsChanged {
		g.pending.DropsChanged = true
		g.pending.DropsPerFrame = a.DropsPerFrame
	}
	g.pending.TogglePause = g.pending.TogglePause != a.TogglePause
	g.pending.Reset = g.pending.Reset || a.Reset
	g.pending.Reseed = g.pending.Reseed || a.Reseed
}
