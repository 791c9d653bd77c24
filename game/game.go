// Package game runs the interactive needle viewer: it drops needles into an
// ECS world every frame, keeps the running estimate and draws the plane.
package game

import (
	"fmt"
	"math"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/buffon/camera"
	"github.com/pthm-cable/buffon/components"
	"github.com/pthm-cable/buffon/config"
	"github.com/pthm-cable/buffon/needle"
	"github.com/pthm-cable/buffon/renderer"
	"github.com/pthm-cable/buffon/systems"
	"github.com/pthm-cable/buffon/telemetry"
	"github.com/pthm-cable/buffon/ui"
)

// Title is the window and HUD title.
const Title = "Buffon's Needle"

// Game holds the complete viewer state.
type Game struct {
	cfg   *config.Config
	world *ecs.World

	// Sampling
	baseSeed  int64
	seed      int64
	reseeds   uint64
	sampler   *needle.Sampler
	estimator needle.Estimator
	drops     *systems.DropSystem
	estimate  float64 // NaN when undefined

	// Component lookups
	segMap   *ecs.Map1[components.Segment]
	crossMap *ecs.Map1[components.Crossing]
	dropMap  *ecs.Map1[components.Drop]

	// Spatial index for picking
	spatialGrid  *systems.SpatialGrid
	spatialDirty bool

	// Rendering
	camera         *camera.Camera
	gridRenderer   *renderer.GridRenderer
	needleRenderer *renderer.NeedleRenderer

	// UI
	hud       *ui.HUD
	controls  *ui.ControlsPanel
	inspector *ui.Inspector
	perfPanel *ui.PerfPanel
	overlays  *ui.OverlayRegistry
	pending   ui.ControlsAction

	// Selection
	selected     ecs.Entity
	hasSelection bool

	// Telemetry
	collector     *telemetry.Collector
	perfCollector *telemetry.PerfCollector
	outputManager *telemetry.OutputManager
	logStats      bool
	statsCallback func(telemetry.WindowStats)
	windows       int // stats windows flushed since start

	// State
	tick          int32
	paused        bool
	dropsPerFrame int

	screenWidth, screenHeight float32
}

// NewGame creates a viewer for cfg. It does not open a window, so the
// simulation can also be stepped without graphics.
func NewGame(cfg *config.Config, opts Options) (*Game, error) {
	params := cfg.Derived.Params
	if err := params.Validate(); err != nil {
		return nil, err
	}

	seed := opts.Seed
	if seed == 0 {
		seed = cfg.Experiment.Seed
	}
	halfExtent := cfg.Grid.HalfExtent

	om, err := telemetry.NewOutputManager(opts.OutputDir)
	if err != nil {
		return nil, fmt.Errorf("creating output manager: %w", err)
	}
	if err := om.WriteConfig(cfg); err != nil {
		return nil, fmt.Errorf("writing config: %w", err)
	}

	world := ecs.NewWorld()
	sampler := needle.NewSeededSampler(seed, halfExtent)
	collector := telemetry.NewCollector(cfg.Telemetry.StatsWindow, params, cfg.Estimator)

	g := &Game{
		cfg:       cfg,
		world:     world,
		baseSeed:  seed,
		seed:      seed,
		sampler:   sampler,
		estimator: cfg.Estimator,
		drops:     systems.NewDropSystem(world, sampler, params, collector, cfg.Viewer.MaxNeedles),
		estimate:  math.NaN(),

		segMap:   ecs.NewMap1[components.Segment](world),
		crossMap: ecs.NewMap1[components.Crossing](world),
		dropMap:  ecs.NewMap1[components.Drop](world),

		spatialGrid: systems.NewSpatialGrid(float32(halfExtent), spatialCellSize(params)),

		camera:         camera.New(float32(cfg.Screen.Width), float32(cfg.Screen.Height), float32(halfExtent)),
		gridRenderer:   renderer.NewGridRenderer(),
		needleRenderer: renderer.NewNeedleRenderer(),

		hud:       ui.NewHUD(),
		controls:  ui.NewControlsPanel(int32(cfg.Screen.Width)-290, 10, 280, ui.ControlValuesOf(params, cfg.Viewer.DropsPerFrame)),
		inspector: ui.NewInspector(10, 300, 320),
		perfPanel: ui.NewPerfPanel(int32(cfg.Screen.Width)-290, 480),
		overlays:  ui.NewOverlayRegistry(),

		collector:     collector,
		perfCollector: telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
		outputManager: om,
		logStats:      opts.LogStats,
		statsCallback: opts.StatsCallback,

		dropsPerFrame: cfg.Viewer.DropsPerFrame,
		screenWidth:   float32(cfg.Screen.Width),
		screenHeight:  float32(cfg.Screen.Height),
	}
	return g, nil
}

// spatialCellSize sizes grid cells to about one needle, and never below a
// quarter of the line spacing.
func spatialCellSize(p needle.Params) float32 {
	return float32(max(p.NeedleLen, p.Spacing/4))
}

// Update handles input, applies the actions taken on the controls panel in
// the previous frame and advances the simulation unless paused.
func (g *Game) Update() {
	g.handleInput()
	g.applyPending()

	if g.paused {
		return
	}
	g.Step()
}

// Unload releases all resources.
func (g *Game) Unload() {
	g.flushPartialWindow()
	if err := g.outputManager.Close(); err != nil {
		logError("closing output", err)
	}
}

// Tick returns the number of simulation steps taken.
func (g *Game) Tick() int32 {
	return g.tick
}

// Paused reports whether dropping is paused.
func (g *Game) Paused() bool {
	return g.paused
}

// SetPaused pauses or resumes dropping.
func (g *Game) SetPaused(paused bool) {
	g.paused = paused
}

// Tally returns the counts since the last reset.
func (g *Game) Tally() needle.Tally {
	return g.drops.Tally()
}

// Estimate returns the running estimate of π, NaN when undefined.
func (g *Game) Estimate() float64 {
	return g.estimate
}

// Params returns the current needle geometry.
func (g *Game) Params() needle.Params {
	return g.drops.Params()
}

// Seed returns the seed the sampler was last started from.
func (g *Game) Seed() int64 {
	return g.seed
}

// Live returns the number of needles currently in the world.
func (g *Game) Live() int {
	return g.drops.Count()
}
