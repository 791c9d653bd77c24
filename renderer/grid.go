// Package renderer draws the ruled plane and the needles with raylib.
package renderer

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/buffon/camera"
	"github.com/pthm-cable/buffon/needle"
)

// GridRenderer draws the parallel lines and the border of the drop region.
type GridRenderer struct {
	LineColor   rl.Color
	BorderColor rl.Color
	Background  rl.Color
	MarkerColor rl.Color
	ShowLines   bool
}

// NewGridRenderer creates a grid renderer with the default palette.
func NewGridRenderer() *GridRenderer {
	return &GridRenderer{
		LineColor:   rl.Color{R: 0, G: 0, B: 0, A: 77},
		BorderColor: rl.Color{R: 120, G: 120, B: 140, A: 255},
		Background:  rl.Color{R: 250, G: 250, B: 245, A: 255},
		MarkerColor: rl.Color{R: 0, G: 160, B: 80, A: 200},
		ShowLines:   true,
	}
}

// Draw renders the visible lines of g and the square [-h, h]².
func (r *GridRenderer) Draw(cam *camera.Camera, g needle.Grid, halfExtent float32) {
	rl.ClearBackground(r.Background)

	minX, minY, maxX, maxY := cam.VisibleWorldBounds()
	left, _ := cam.WorldToScreen(max(minX, -halfExtent), 0)
	right, _ := cam.WorldToScreen(min(maxX, halfExtent), 0)

	if r.ShowLines {
		for _, y := range g.Lines(float64(minY), float64(maxY)) {
			_, sy := cam.WorldToScreen(0, float32(y))
			rl.DrawLineEx(rl.Vector2{X: left, Y: sy}, rl.Vector2{X: right, Y: sy}, 1, r.LineColor)
		}
	}

	x0, y0 := cam.WorldToScreen(-halfExtent, halfExtent)
	x1, y1 := cam.WorldToScreen(halfExtent, -halfExtent)
	rl.DrawRectangleLinesEx(rl.Rectangle{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}, 1, r.BorderColor)
}

// DrawMarker highlights the line at height y across the drop region.
func (r *GridRenderer) DrawMarker(cam *camera.Camera, y, halfExtent float32) {
	x0, sy := cam.WorldToScreen(-halfExtent, y)
	x1, _ := cam.WorldToScreen(halfExtent, y)
	rl.DrawLineEx(rl.Vector2{X: x0, Y: sy}, rl.Vector2{X: x1, Y: sy}, 2, r.MarkerColor)
}
