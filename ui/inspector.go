package ui

import (
	"fmt"
	"math"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/buffon/components"
	"github.com/pthm-cable/buffon/needle"
)

// InspectorData describes the selected needle.
type InspectorData struct {
	Segment  components.Segment
	Crossing components.Crossing
	Drop     components.Drop
	NextLine float64 // First grid line strictly above the start point
}

// NewInspectorData builds inspector data for a needle on grid g.
func NewInspectorData(seg components.Segment, c components.Crossing, d components.Drop, g needle.Grid) InspectorData {
	return InspectorData{
		Segment:  seg,
		Crossing: c,
		Drop:     d,
		NextLine: g.NextLineAbove(float64(seg.Y)),
	}
}

// Gap returns how far the needle's end sits above (positive) or below the
// next line. Crossing needles have a non-negative gap.
func (d InspectorData) Gap() float64 {
	return float64(d.Segment.EndY) - d.NextLine
}

// inspectorSections lays out the needle inspector.
var inspectorSections = []SectionDescriptor{
	{
		ID:    "drop",
		Title: "Drop",
		Fields: []FieldDescriptor{
			{ID: "seq", Label: "Number", TextGetter: func(d any) string {
				return fmt.Sprintf("#%d", d.(InspectorData).Drop.Seq)
			}},
			{ID: "frame", Label: "Frame", TextGetter: func(d any) string {
				return fmt.Sprintf("%d", d.(InspectorData).Drop.Frame)
			}},
		},
	},
	{
		ID:    "geometry",
		Title: "Geometry",
		Fields: []FieldDescriptor{
			{ID: "start", Label: "Start", TextGetter: func(d any) string {
				s := d.(InspectorData).Segment
				return fmt.Sprintf("(%.3f, %.3f)", s.X, s.Y)
			}},
			{ID: "end", Label: "End", TextGetter: func(d any) string {
				s := d.(InspectorData).Segment
				return fmt.Sprintf("(%.3f, %.3f)", s.EndX, s.EndY)
			}},
			{ID: "angle", Label: "Angle", TextGetter: func(d any) string {
				a := float64(d.(InspectorData).Segment.Angle)
				return fmt.Sprintf("%.3f rad (%.1f deg)", a, a*180/math.Pi)
			}},
			{ID: "angle_bar", Label: "Angle / pi", Widget: WidgetBar, Getter: func(d any) float32 {
				return d.(InspectorData).Segment.Angle / math.Pi
			}},
		},
	},
	{
		ID:    "outcome",
		Title: "Outcome",
		Fields: []FieldDescriptor{
			{ID: "result", Label: "Result", Widget: WidgetColorSwatch, ColorGetter: func(d any) rl.Color {
				if d.(InspectorData).Crossing.Crosses {
					return rl.Blue
				}
				return rl.Red
			}},
			{ID: "result_text", Label: "Crosses", TextGetter: func(d any) string {
				if d.(InspectorData).Crossing.Crosses {
					return "yes"
				}
				return "no"
			}},
			{ID: "next_line", Label: "Next line", Format: "y = %.3f", Getter: func(d any) float32 {
				return float32(d.(InspectorData).NextLine)
			}},
			{ID: "gap", Label: "End - line", Format: "%+.3f", Getter: func(d any) float32 {
				return float32(d.(InspectorData).Gap())
			}},
		},
	},
}

// Inspector renders the selected-needle panel.
type Inspector struct {
	renderer *Renderer
	x, y     int32
	width    int32
}

// NewInspector creates a new inspector panel.
func NewInspector(x, y, width int32) *Inspector {
	return &Inspector{
		renderer: NewRenderer(),
		x:        x,
		y:        y,
		width:    width,
	}
}

// SetPosition updates the inspector position.
func (ins *Inspector) SetPosition(x, y int32) {
	ins.x = x
	ins.y = y
}

// Height returns the panel height for data.
func (ins *Inspector) Height(data InspectorData) int32 {
	r := ins.renderer
	h := r.Theme.Padding*2 + r.Theme.LineHeight + 6
	for _, sd := range inspectorSections {
		h += r.SectionHeight(sd, data)
	}
	return h
}

// Draw renders the inspector panel and returns the Y below it.
func (ins *Inspector) Draw(data InspectorData) int32 {
	r := ins.renderer
	padding := r.Theme.Padding
	contentWidth := ins.width - padding*2

	r.DrawPanel(ins.x, ins.y, ins.width, ins.Height(data))

	y := ins.y + padding
	rl.DrawText("Selected Needle", ins.x+padding, y, 16, rl.White)
	y += r.Theme.LineHeight + 6

	for _, sd := range inspectorSections {
		y = r.DrawSection(ins.x+padding, y, sd, data, contentWidth)
	}
	return y + padding
}
