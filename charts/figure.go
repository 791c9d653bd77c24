package charts

import (
	"fmt"
	"os"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// FigureTitle heads the composed figure.
const FigureTitle = "Estimating the value of π using Buffon's needle problem and a Monte Carlo method"

// Figure is the composed results figure: needles and convergence side by
// side on top, the grouped boxplot across the bottom.
type Figure struct {
	Needles     *plot.Plot
	Convergence *plot.Plot
	Groups      *plot.Plot

	WidthIn  float64
	HeightIn float64
}

// titleHeight is the band reserved for the figure title.
const titleHeight = vg.Length(0.6) * vg.Inch

// Draw renders the figure onto c. Missing plots leave their cell empty.
func (f Figure) Draw(c draw.Canvas) {
	size := c.Size()

	sty := plot.New().Title.TextStyle
	sty.Font.Size = vg.Points(18)
	sty.XAlign = draw.XCenter
	sty.YAlign = draw.YTop
	c.FillText(sty, vg.Point{X: c.Min.X + size.X/2, Y: c.Max.Y - vg.Points(8)}, FigureTitle)

	body := draw.Crop(c, 0, 0, 0, -titleHeight)
	half := (size.Y - titleHeight) / 2

	top := draw.Crop(body, 0, 0, half, 0)
	bottom := draw.Crop(body, 0, 0, 0, -half)

	if f.Needles != nil {
		f.Needles.Draw(draw.Crop(top, 0, -size.X/2, 0, 0))
	}
	if f.Convergence != nil {
		f.Convergence.Draw(draw.Crop(top, size.X/2, 0, 0, 0))
	}
	if f.Groups != nil {
		f.Groups.Draw(bottom)
	}
}

// Save writes the figure as a PNG.
func (f Figure) Save(file string) error {
	img := vgimg.New(vg.Length(f.WidthIn)*vg.Inch, vg.Length(f.HeightIn)*vg.Inch)
	dc := draw.New(img)
	dc.SetColor(plot.New().BackgroundColor)
	dc.Fill(dc.Rectangle.Path())
	f.Draw(dc)

	out, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("creating figure %s: %w", file, err)
	}
	png := vgimg.PngCanvas{Canvas: img}
	if _, err := png.WriteTo(out); err != nil {
		out.Close()
		return fmt.Errorf("writing figure %s: %w", file, err)
	}
	return out.Close()
}

// SaveFigure composes the three plots into one PNG.
func SaveFigure(needles, convergence, groups *plot.Plot, widthIn, heightIn float64, file string) error {
	return Figure{
		Needles:     needles,
		Convergence: convergence,
		Groups:      groups,
		WidthIn:     widthIn,
		HeightIn:    heightIn,
	}.Save(file)
}
