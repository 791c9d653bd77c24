package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/buffon/camera"
	"github.com/pthm-cable/buffon/components"
)

// NeedleRenderer draws needles coloured by outcome: blue crosses a line,
// red does not.
type NeedleRenderer struct {
	CrossColor     rl.Color
	MissColor      rl.Color
	HighlightColor rl.Color
	Thickness      float32 // screen pixels
}

// NewNeedleRenderer creates a needle renderer with the default palette.
func NewNeedleRenderer() *NeedleRenderer {
	return &NeedleRenderer{
		CrossColor:     rl.Blue,
		MissColor:      rl.Red,
		HighlightColor: rl.Orange,
		Thickness:      1.5,
	}
}

// Draw renders one needle if it is on screen.
func (r *NeedleRenderer) Draw(cam *camera.Camera, seg *components.Segment, c *components.Crossing) {
	midX, midY := (seg.X+seg.EndX)/2, (seg.Y+seg.EndY)/2
	reach := max(abs32(seg.EndX-seg.X), abs32(seg.EndY-seg.Y))
	if !cam.IsVisible(midX, midY, reach) {
		return
	}

	color := r.MissColor
	if c.Crosses {
		color = r.CrossColor
	}
	r.line(cam, seg, r.Thickness, color)
}

// DrawHighlight renders a selected needle on top of the others.
func (r *NeedleRenderer) DrawHighlight(cam *camera.Camera, seg *components.Segment) {
	r.line(cam, seg, r.Thickness*3, r.HighlightColor)
	sx, sy := cam.WorldToScreen(seg.X, seg.Y)
	rl.DrawCircleV(rl.Vector2{X: sx, Y: sy}, r.Thickness*2, r.HighlightColor)
}

func (r *NeedleRenderer) line(cam *camera.Camera, seg *components.Segment, thick float32, color rl.Color) {
	x0, y0 := cam.WorldToScreen(seg.X, seg.Y)
	x1, y1 := cam.WorldToScreen(seg.EndX, seg.EndY)
	rl.DrawLineEx(rl.Vector2{X: x0, Y: y0}, rl.Vector2{X: x1, Y: y1}, thick, color)
}

func abs32(x float32) float32 {
	if x < 0 {
		return -x
	}
	return x
}
