package ui

import (
	"fmt"
	"math"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/buffon/systems"
)

// HUDData holds all the data needed to render the main HUD.
type HUDData struct {
	Title        string
	Trials       int
	Crossings    int
	Rate         float64 // Observed crossing rate
	Theoretical  float64 // Expected crossing rate for the geometry
	Estimate     float64 // NaN when undefined
	NeedleLen    float64
	Spacing      float64
	Live         int // Needles currently drawn
	Seed         int64
	FPS          int32
	Paused       bool
	ScreenWidth  int32
	ScreenHeight int32
}

// AbsError returns |estimate - π|, or NaN when there is no estimate.
func (d HUDData) AbsError() float64 {
	return math.Abs(d.Estimate - math.Pi)
}

// hudSection lays out the estimator readout.
var hudSection = SectionDescriptor{
	ID: "estimator",
	Fields: []FieldDescriptor{
		{
			ID:    "geometry",
			Label: "Geometry",
			TextGetter: func(d any) string {
				h := d.(HUDData)
				return fmt.Sprintf("L = %.2f   S = %.2f", h.NeedleLen, h.Spacing)
			},
		},
		{
			ID:    "trials",
			Label: "Trials",
			TextGetter: func(d any) string {
				h := d.(HUDData)
				return fmt.Sprintf("%d (%d on screen)", h.Trials, h.Live)
			},
		},
		{
			ID:    "crossings",
			Label: "Crossings",
			TextGetter: func(d any) string {
				return fmt.Sprintf("%d", d.(HUDData).Crossings)
			},
		},
		{
			ID:     "rate",
			Label:  "Rate",
			Widget: WidgetBar,
			Getter: func(d any) float32 { return float32(d.(HUDData).Rate) },
		},
		{
			ID:    "theoretical",
			Label: "Expected",
			TextGetter: func(d any) string {
				return fmt.Sprintf("%.4f", d.(HUDData).Theoretical)
			},
		},
		{
			ID:    "estimate",
			Label: "Estimate",
			TextGetter: func(d any) string {
				h := d.(HUDData)
				if math.IsNaN(h.Estimate) {
					return "undefined"
				}
				return fmt.Sprintf("%.6f", h.Estimate)
			},
		},
		{
			ID:      "error",
			Label:   "Error",
			Widget:  WidgetCenteredBar,
			Range:   FieldRange{Min: -0.5, Max: 0.5},
			Visible: func(d any) bool { return !math.IsNaN(d.(HUDData).Estimate) },
			Getter:  func(d any) float32 { return float32(d.(HUDData).Estimate - math.Pi) },
		},
	},
}

// HUD renders the main heads-up display.
type HUD struct {
	renderer *Renderer
	width    int32
}

// NewHUD creates a new HUD renderer.
func NewHUD() *HUD {
	return &HUD{
		renderer: NewRenderer(),
		width:    320,
	}
}

// Draw renders the HUD.
func (h *HUD) Draw(data HUDData) {
	r := h.renderer
	padding := r.Theme.Padding

	rl.DrawText(data.Title, 10, 10, 20, rl.White)

	panelY := int32(38)
	height := r.SectionHeight(hudSection, data) + padding*2
	r.DrawPanel(10, panelY, h.width, height)
	r.DrawSection(10+padding, panelY+padding, hudSection, data, h.width-padding*2)

	status := fmt.Sprintf("Seed: %d | FPS: %d", data.Seed, data.FPS)
	rl.DrawText(status, 10, panelY+height+6, 14, rl.LightGray)
	if data.Paused {
		rl.DrawText("PAUSED", 10, panelY+height+24, 16, rl.Yellow)
	}
}

// DrawControls renders the control legend at the bottom of the screen.
func (h *HUD) DrawControls(screenWidth, screenHeight int32, controls string) {
	rl.DrawText(controls, 10, screenHeight-25, 14, rl.Gray)
}

// PerfPanelData holds the rolling step timings for display.
type PerfPanelData struct {
	PhaseAvg map[string]time.Duration
	Step     time.Duration // average total step time
	Frame    time.Duration // average frame time
	Phases   []string      // display order
}

// PerfPanel shows where a viewer step spends its time.
type PerfPanel struct {
	renderer *Renderer
	x, y     int32
}

func NewPerfPanel(x, y int32) *PerfPanel {
	return &PerfPanel{renderer: NewRenderer(), x: x, y: y}
}

func (p *PerfPanel) SetPosition(x, y int32) {
	p.x, p.y = x, y
}

// Draw lists each phase with its share of the step. Phases taking more
// than a fifth of the step are highlighted.
func (p *PerfPanel) Draw(data PerfPanelData) {
	th := p.renderer.Theme
	h := th.HeaderFontSize + 6 + int32(len(data.Phases)+2)*14 + 2*th.Padding
	p.renderer.DrawPanel(p.x, p.y, 280, h)

	x := p.x + th.Padding
	y := p.y + th.Padding
	rl.DrawText("Step timing", x, y, th.HeaderFontSize, th.SectionHeader)
	y += th.HeaderFontSize + 6

	rl.DrawText(fmt.Sprintf("step %s  frame %s",
		data.Step.Round(time.Microsecond), data.Frame.Round(time.Microsecond)), x, y, 12, rl.Yellow)
	y += 16

	for _, id := range data.Phases {
		avg := data.PhaseAvg[id]
		share := 0.0
		if data.Step > 0 {
			share = float64(avg) / float64(data.Step)
		}
		color := th.ValueColor
		if share > 0.2 {
			color = rl.Orange
		}
		rl.DrawText(fmt.Sprintf("%-10s %8s %5.1f%%", systems.PhaseLabel(id), avg.Round(time.Microsecond), share*100),
			x, y, 12, color)
		y += 14
	}
}
