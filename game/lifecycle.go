package game

import (
	"github.com/pthm-cable/buffon/experiment"
	"github.com/pthm-cable/buffon/needle"
	"github.com/pthm-cable/buffon/systems"
	"github.com/pthm-cable/buffon/ui"
)

// applyPending runs the action taken on the controls panel last frame.
func (g *Game) applyPending() {
	a := g.pending
	g.pending = ui.ControlsAction{}
	if !a.Any() {
		return
	}

	if a.TogglePause {
		g.paused = !g.paused
	}
	if a.DropsChanged {
		g.SetDropsPerFrame(a.DropsPerFrame)
	}
	if a.ParamsChanged {
		if err := g.SetParams(a.Params); err != nil {
			logError("changing geometry", err)
			g.syncControls()
		}
	}
	if a.Reseed {
		g.Reseed()
	}
	if a.Reset {
		g.Reset()
	}
}

// Reset removes every needle and restarts the tally from the current seed.
func (g *Game) Reset() {
	g.restart("run reset", func() {
		g.drops.Reseed(g.seed)
	})
}

// Reseed restarts the sampler from the next derived seed.
func (g *Game) Reseed() {
	g.reseeds++
	g.restart("run reseeded", func() {
		g.seed = experiment.RunSeed(g.baseSeed, int(g.reseeds))
		g.drops.Reseed(g.seed)
	})
}

// SetParams switches needle length and line spacing. The tally is cleared
// because counts from different geometries cannot be combined.
func (g *Game) SetParams(p needle.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p == g.drops.Params() {
		return nil
	}

	var err error
	g.restart("geometry changed", func() {
		if err = g.drops.SetParams(p); err != nil {
			return
		}
		g.spatialGrid = systems.NewSpatialGrid(float32(g.cfg.Grid.HalfExtent), spatialCellSize(p))
	})
	return err
}

// SetDropsPerFrame changes how many needles fall each step.
func (g *Game) SetDropsPerFrame(n int) {
	g.dropsPerFrame = max(n, 0)
}

// DropsPerFrame returns how many needles fall each step.
func (g *Game) DropsPerFrame() int {
	return g.dropsPerFrame
}

// restart closes the current run, applies change and starts a fresh one.
func (g *Game) restart(event string, change func()) {
	g.flushPartialWindow()
	g.logRunEvent(event)

	change()

	g.clearSelection()
	g.estimate = nan()
	g.spatialDirty = true
	g.updateSpatialGrid()
	g.syncControls()
}

// syncControls puts the controls panel back in step with the game.
func (g *Game) syncControls() {
	g.controls.SetValues(ui.ControlValuesOf(g.drops.Params(), g.dropsPerFrame))
}
