package ui

import (
	"fmt"
	"math"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/buffon/needle"
)

// Slider bounds for the controls panel.
const (
	MinNeedleLen     = 0.05
	MaxNeedleLen     = 2.0
	MinSpacing       = 0.25
	MaxSpacing       = 3.0
	MaxDropsPerFrame = 200
)

// ControlValues holds the values the controls panel edits.
type ControlValues struct {
	NeedleLen     float32
	Spacing       float32
	DropsPerFrame float32
}

// ControlValuesOf builds slider values from run parameters.
func ControlValuesOf(p needle.Params, dropsPerFrame int) ControlValues {
	return ControlValues{
		NeedleLen:     float32(p.NeedleLen),
		Spacing:       float32(p.Spacing),
		DropsPerFrame: float32(dropsPerFrame),
	}
}

// Params returns the needle geometry, rounded to two decimals so that
// small slider jitter does not reset the run.
func (v ControlValues) Params() needle.Params {
	return needle.Params{
		NeedleLen: round2(float64(v.NeedleLen)),
		Spacing:   round2(float64(v.Spacing)),
	}
}

// Drops returns the whole number of needles dropped per frame.
func (v ControlValues) Drops() int {
	return int(math.Round(float64(v.DropsPerFrame)))
}

// ControlsAction reports what the user changed on the panel this frame.
type ControlsAction struct {
	ParamsChanged bool
	Params        needle.Params
	DropsChanged  bool
	DropsPerFrame int
	TogglePause   bool
	Reset         bool
	Reseed        bool
}

// Any reports whether the action requires the caller to do something.
func (a ControlsAction) Any() bool {
	return a.ParamsChanged || a.DropsChanged || a.TogglePause || a.Reset || a.Reseed
}

// Resolve compares slider values before and after a frame of input.
func Resolve(prev, next ControlValues) ControlsAction {
	var a ControlsAction
	if next.Params() != prev.Params() {
		a.ParamsChanged = true
		a.Params = next.Params()
	}
	if next.Drops() != prev.Drops() {
		a.DropsChanged = true
		a.DropsPerFrame = next.Drops()
	}
	return a
}

// ControlsPanel renders the side panel with raygui sliders, run buttons and
// overlay toggles.
type ControlsPanel struct {
	renderer *Renderer
	x, y     int32
	width    int32
	visible  bool

	values   ControlValues
	overlays *OverlayRegistry // last drawn toggles, for hit testing
}

// NewControlsPanel creates a new controls panel.
func NewControlsPanel(x, y, width int32, values ControlValues) *ControlsPanel {
	return &ControlsPanel{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
		visible:  true,
		values:   values,
	}
}

// SetVisible shows or hides the panel.
func (c *ControlsPanel) SetVisible(visible bool) {
	c.visible = visible
}

// IsVisible returns whether the panel is shown.
func (c *ControlsPanel) IsVisible() bool {
	return c.visible
}

// Toggle switches panel visibility.
func (c *ControlsPanel) Toggle() bool {
	c.visible = !c.visible
	return c.visible
}

// SetPosition updates the panel position.
func (c *ControlsPanel) SetPosition(x, y int32) {
	c.x = x
	c.y = y
}

// SetValues replaces the slider values, e.g. after a reset from the keyboard.
func (c *ControlsPanel) SetValues(v ControlValues) {
	c.values = v
}

// Values returns the current slider values.
func (c *ControlsPanel) Values() ControlValues {
	return c.values
}

// Contains reports whether a screen point falls on the panel.
func (c *ControlsPanel) Contains(px, py float32) bool {
	if !c.visible {
		return false
	}
	return px >= float32(c.x) && px <= float32(c.x+c.width) &&
		py >= float32(c.y) && py <= float32(c.y+c.height(c.overlays))
}

func (c *ControlsPanel) height(overlays *OverlayRegistry) int32 {
	lineHeight := c.renderer.Theme.LineHeight
	h := c.renderer.Theme.Padding*2 + lineHeight + 4 // title
	h += 3 * (18 + 30)                                // sliders
	h += 2 * 36                                       // button rows
	if overlays != nil {
		for _, cat := range overlays.Categories() {
			h += lineHeight*int32(len(overlays.ByCategory(cat))+1) + 4
		}
	} else {
		h += 10 * lineHeight
	}
	return h
}

// Draw renders the panel and returns the action the user took this frame.
func (c *ControlsPanel) Draw(overlays *OverlayRegistry, paused bool) ControlsAction {
	if !c.visible {
		return ControlsAction{}
	}

	c.overlays = overlays
	r := c.renderer
	padding := r.Theme.Padding
	lineHeight := r.Theme.LineHeight

	r.DrawPanel(c.x, c.y, c.width, c.height(overlays))

	x := float32(c.x + padding)
	y := float32(c.y + padding)
	sliderWidth := float32(c.width - padding*2 - 60)

	rl.DrawText("Controls", int32(x), int32(y), 16, rl.White)
	y += float32(lineHeight + 4)

	prev := c.values
	next := prev

	next.NeedleLen = c.slider(&y, x, sliderWidth, "Needle length L", prev.NeedleLen, MinNeedleLen, MaxNeedleLen, "%.2f")
	next.Spacing = c.slider(&y, x, sliderWidth, "Line spacing S", prev.Spacing, MinSpacing, MaxSpacing, "%.2f")
	next.DropsPerFrame = c.slider(&y, x, sliderWidth, "Drops per frame", prev.DropsPerFrame, 0, MaxDropsPerFrame, "%.0f")

	action := Resolve(prev, next)
	c.values = next

	buttonWidth := (float32(c.width) - float32(padding)*3) / 2
	pauseLabel := "Pause"
	if paused {
		pauseLabel = "Resume"
	}
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: buttonWidth, Height: 28}, pauseLabel) {
		action.TogglePause = true
	}
	if gui.Button(rl.Rectangle{X: x + buttonWidth + float32(padding), Y: y, Width: buttonWidth, Height: 28}, "Reset") {
		action.Reset = true
	}
	y += 36
	if gui.Button(rl.Rectangle{X: x, Y: y, Width: buttonWidth, Height: 28}, "Reseed") {
		action.Reseed = true
	}
	y += 36

	if overlays != nil {
		c.drawOverlays(int32(x), int32(y), overlays)
	}
	return action
}

// slider draws a labelled raygui slider and advances y past it.
func (c *ControlsPanel) slider(y *float32, x, width float32, label string, value, min, max float32, format string) float32 {
	r := c.renderer
	rl.DrawText(label, int32(x), int32(*y), r.Theme.FontSize, r.Theme.LabelColor)
	*y += 18
	next := gui.SliderBar(
		rl.Rectangle{X: x, Y: *y, Width: width, Height: 20},
		"", "",
		value, min, max,
	)
	rl.DrawText(fmt.Sprintf(format, next), int32(x+width+8), int32(*y+2), 14, rl.LightGray)
	*y += 30
	return next
}

// drawOverlays lists overlay toggles by category.
func (c *ControlsPanel) drawOverlays(x, y int32, overlays *OverlayRegistry) {
	r := c.renderer
	lineHeight := r.Theme.LineHeight
	width := c.width - r.Theme.Padding*2

	for _, category := range overlays.Categories() {
		rl.DrawText(categoryLabel(category), x, y, r.Theme.HeaderFontSize, r.Theme.SectionHeader)
		y += lineHeight

		for _, desc := range overlays.ByCategory(category) {
			c.drawToggle(x, y, desc, overlays.IsEnabled(desc.ID), width)
			y += lineHeight
		}

		y += 4 // Gap between categories
	}
}

// drawToggle draws a single overlay toggle line.
func (c *ControlsPanel) drawToggle(x, y int32, desc OverlayDescriptor, enabled bool, width int32) {
	r := c.renderer

	statusColor := rl.Color{R: 80, G: 80, B: 80, A: 255}
	if enabled {
		statusColor = rl.Color{R: 100, G: 200, B: 100, A: 255}
	}
	rl.DrawRectangle(x, y+2, 8, 8, statusColor)

	nameColor := r.Theme.LabelColor
	if enabled {
		nameColor = rl.White
	}
	rl.DrawText(desc.Name, x+14, y, r.Theme.FontSize, nameColor)

	if desc.KeyLabel != "" {
		keyText := fmt.Sprintf("[%s]", desc.KeyLabel)
		keyWidth := rl.MeasureText(keyText, r.Theme.FontSize)
		rl.DrawText(keyText, x+width-keyWidth, y, r.Theme.FontSize, rl.Color{R: 150, G: 150, B: 150, A: 255})
	}
}

// categoryLabel returns a display label for a category.
func categoryLabel(cat string) string {
	switch cat {
	case "view":
		return "View"
	case "debug":
		return "Debug"
	default:
		return cat
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
