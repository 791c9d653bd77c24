// Package charts renders experiment results as PNG figures (gonum/plot) and
// an interactive HTML report (go-echarts).
package charts

import (
	"errors"
	"fmt"
	"image/color"
	"math"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"github.com/pthm-cable/buffon/needle"
)

// Colours shared by the PNG and HTML renderings.
var (
	CrossColor = color.RGBA{R: 0, G: 0, B: 255, A: 255} // blue
	MissColor  = color.RGBA{R: 255, G: 0, B: 0, A: 255} // red
	PiColor    = color.RGBA{R: 255, G: 0, B: 0, A: 255}
	GridColor  = color.NRGBA{R: 0, G: 0, B: 0, A: 77}
	MeanColor  = color.RGBA{R: 0, G: 128, B: 0, A: 255}
)

// ErrNoData is returned when a plot has nothing to draw.
var ErrNoData = errors.New("charts: no data")

// BoxGroup is one box of a grouped boxplot.
type BoxGroup struct {
	Label  string
	Values []float64
}

// segments draws needles as line segments coloured by outcome.
type segments struct {
	needles  []needle.Needle
	outcomes []needle.Outcome
	width    vg.Length
}

// Plot implements plot.Plotter.
func (s segments) Plot(c draw.Canvas, plt *plot.Plot) {
	trX, trY := plt.Transforms(&c)
	sty := draw.LineStyle{Width: s.width}
	for i, n := range s.needles {
		sty.Color = MissColor
		if s.outcomes[i] == needle.Cross {
			sty.Color = CrossColor
		}
		c.StrokeLine2(sty, trX(n.X), trY(n.Y), trX(n.EndX), trY(n.EndY))
	}
}

// DataRange implements plot.DataRanger.
func (s segments) DataRange() (xmin, xmax, ymin, ymax float64) {
	xmin, ymin = math.Inf(1), math.Inf(1)
	xmax, ymax = math.Inf(-1), math.Inf(-1)
	for _, n := range s.needles {
		xmin = math.Min(xmin, math.Min(n.X, n.EndX))
		xmax = math.Max(xmax, math.Max(n.X, n.EndX))
		ymin = math.Min(ymin, math.Min(n.Y, n.EndY))
		ymax = math.Max(ymax, math.Max(n.Y, n.EndY))
	}
	return xmin, xmax, ymin, ymax
}

// NeedlePlot draws the ruled plane over [-halfExtent, halfExtent] with every
// needle: crossing needles blue, misses red.
func NeedlePlot(needles []needle.Needle, outcomes []needle.Outcome, p needle.Params, halfExtent float64) (*plot.Plot, error) {
	if len(needles) != len(outcomes) {
		return nil, fmt.Errorf("charts: %d needles but %d outcomes", len(needles), len(outcomes))
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	pl := plot.New()
	pl.Title.Text = "Randomized Needles\nblue - crosses a line; red - otherwise"
	pl.X.Label.Text = "X"
	pl.Y.Label.Text = "Y"

	for _, y := range p.Grid().Lines(-halfExtent, halfExtent+p.NeedleLen) {
		line, err := plotter.NewLine(plotter.XYs{{X: -halfExtent - p.NeedleLen, Y: y}, {X: halfExtent + p.NeedleLen, Y: y}})
		if err != nil {
			return nil, err
		}
		line.Color = GridColor
		line.Width = vg.Points(1)
		pl.Add(line)
	}

	pl.Add(segments{needles: needles, outcomes: outcomes, width: vg.Points(1)})

	// Needles starting near the edge reach up to one length beyond it.
	pl.X.Min, pl.X.Max = -halfExtent-p.NeedleLen, halfExtent+p.NeedleLen
	pl.Y.Min, pl.Y.Max = -halfExtent, halfExtent+p.NeedleLen
	return pl, nil
}

// ConvergencePlot draws the cumulative estimate against the number of needles
// with a red reference line at π. estimates[i] is the estimate after i+1
// needles; NaN entries are left out.
func ConvergencePlot(estimates []float64, yMin, yMax float64) (*plot.Plot, error) {
	if len(estimates) == 0 {
		return nil, ErrNoData
	}
	n := float64(len(estimates))

	pl := plot.New()
	pl.Title.Text = fmt.Sprintf("Cumulative Estimation for N=%d", len(estimates))
	pl.X.Label.Text = "N"
	pl.Y.Label.Text = "π estimation"

	pts := make(plotter.XYs, 0, len(estimates))
	for i, est := range estimates {
		if math.IsNaN(est) || math.IsInf(est, 0) {
			continue
		}
		pts = append(pts, plotter.XY{X: float64(i + 1), Y: est})
	}
	if len(pts) > 0 {
		line, err := plotter.NewLine(pts)
		if err != nil {
			return nil, err
		}
		line.Width = vg.Points(1)
		line.Color = CrossColor
		pl.Add(line)
	}

	piLine, err := plotter.NewLine(plotter.XYs{{X: 0, Y: math.Pi}, {X: n, Y: math.Pi}})
	if err != nil {
		return nil, err
	}
	piLine.Color = PiColor
	piLine.Width = vg.Points(1)
	pl.Add(piLine)

	label, err := piLabel(n, fmt.Sprintf("π ≈ %.4f", math.Pi))
	if err != nil {
		return nil, err
	}
	pl.Add(label)

	pl.X.Min, pl.X.Max = 0, n
	if yMax > yMin {
		pl.Y.Min, pl.Y.Max = yMin, yMax
	}
	return pl, nil
}

// BoxPlot draws one box per group with its mean marked and a dashed line at
// π. Groups without finite values keep their slot on the axis.
func BoxPlot(groups []BoxGroup) (*plot.Plot, error) {
	if len(groups) == 0 {
		return nil, ErrNoData
	}

	pl := plot.New()
	pl.Title.Text = "Grouped Boxplots of Estimations of π"
	pl.X.Label.Text = "N × 10⁴"
	pl.Y.Label.Text = "Estimation of π"

	labels := make([]string, len(groups))
	width := vg.Points(20)
	for i, g := range groups {
		labels[i] = g.Label
		values := finite(g.Values)
		if len(values) == 0 {
			continue
		}
		box, err := plotter.NewBoxPlot(width, float64(i), plotter.Values(values))
		if err != nil {
			return nil, fmt.Errorf("box %q: %w", g.Label, err)
		}
		pl.Add(box)
	}

	if means := groupMeans(groups); len(means) > 0 {
		sc, err := plotter.NewScatter(means)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyle.Shape = draw.TriangleGlyph{}
		sc.GlyphStyle.Color = MeanColor
		sc.GlyphStyle.Radius = vg.Points(3)
		pl.Add(sc)
	}

	right := float64(len(groups)) - 0.5
	piLine, err := plotter.NewLine(plotter.XYs{{X: -0.5, Y: math.Pi}, {X: right, Y: math.Pi}})
	if err != nil {
		return nil, err
	}
	piLine.Color = PiColor
	piLine.Width = vg.Points(1)
	piLine.Dashes = []vg.Length{vg.Points(5), vg.Points(3)}
	pl.Add(piLine)

	label, err := piLabel(right, "π")
	if err != nil {
		return nil, err
	}
	pl.Add(label)

	pl.NominalX(labels...)
	pl.X.Min, pl.X.Max = -0.5, right
	return pl, nil
}

// SavePNG writes a single plot to file.
func SavePNG(pl *plot.Plot, widthIn, heightIn float64, file string) error {
	if err := pl.Save(vg.Length(widthIn)*vg.Inch, vg.Length(heightIn)*vg.Inch, file); err != nil {
		return fmt.Errorf("saving plot %s: %w", file, err)
	}
	return nil
}

// piLabel places text right-aligned just above (x, π).
func piLabel(x float64, text string) (*plotter.Labels, error) {
	labels, err := plotter.NewLabels(plotter.XYLabels{
		XYs:    []plotter.XY{{X: x, Y: math.Pi}},
		Labels: []string{text},
	})
	if err != nil {
		return nil, err
	}
	for i := range labels.TextStyle {
		labels.TextStyle[i].Color = PiColor
		labels.TextStyle[i].XAlign = draw.XRight
		labels.TextStyle[i].YAlign = draw.YBottom
	}
	return labels, nil
}

func finite(values []float64) []float64 {
	out := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	return out
}

// groupMeans places the mean of each group's finite values at the group's
// position. Groups with no finite value are skipped.
func groupMeans(groups []BoxGroup) plotter.XYs {
	var means plotter.XYs
	for i, g := range groups {
		if values := finite(g.Values); len(values) > 0 {
			means = append(means, plotter.XY{X: float64(i), Y: stat.Mean(values, nil)})
		}
	}
	return means
}
