package charts

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/pthm-cable/buffon/needle"
	"github.com/pthm-cable/buffon/telemetry"
)

// Report is the data shown on the HTML report page.
type Report struct {
	Subtitle    string
	Needles     []needle.Needle
	Outcomes    []needle.Outcome
	Convergence []float64 // Convergence[i] is the estimate after i+1 needles
	Groups      []BoxGroup
}

// WriteHTMLReport renders the report as a single HTML page.
func WriteHTMLReport(w io.Writer, r Report) error {
	if len(r.Needles) != len(r.Outcomes) {
		return fmt.Errorf("charts: %d needles but %d outcomes", len(r.Needles), len(r.Outcomes))
	}

	page := components.NewPage()
	page.PageTitle = "Buffon's needle"
	if len(r.Convergence) > 0 {
		page.AddCharts(convergenceChart(r))
	}
	if len(r.Groups) > 0 {
		page.AddCharts(boxChart(r))
	}
	if len(r.Needles) > 0 {
		page.AddCharts(midpointChart(r))
	}

	var buf bytes.Buffer
	if err := page.Render(&buf); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}
	_, err := w.Write(buf.Bytes())
	return err
}

// SaveHTMLReport writes the report page to file.
func SaveHTMLReport(file string, r Report) error {
	f, err := os.Create(file)
	if err != nil {
		return fmt.Errorf("creating report %s: %w", file, err)
	}
	if err := WriteHTMLReport(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func convergenceChart(r Report) *charts.Line {
	x := make([]int, len(r.Convergence))
	estimates := make([]opts.LineData, len(r.Convergence))
	for i, est := range r.Convergence {
		x[i] = i + 1
		estimates[i] = opts.LineData{Value: jsonValue(est)}
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: fmt.Sprintf("Cumulative Estimation for N=%d", len(r.Convergence)), Subtitle: r.Subtitle}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true), Trigger: "axis"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "N", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "π estimation", Scale: opts.Bool(true)}),
		charts.WithDataZoomOpts(opts.DataZoom{Type: "inside"}),
	)
	line.SetXAxis(x).
		AddSeries("estimate", estimates,
			charts.WithLineChartOpts(opts.LineChart{ShowSymbol: opts.Bool(false)}),
			charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{Name: "π", YAxis: math.Pi}),
		)
	return line
}

func boxChart(r Report) *charts.BoxPlot {
	labels := make([]string, len(r.Groups))
	boxes := make([]opts.BoxPlotData, len(r.Groups))
	means := make([]opts.ScatterData, len(r.Groups))
	for i, g := range r.Groups {
		labels[i] = g.Label
		b := telemetry.ComputeBoxStats(g.Values)
		if b.Count == 0 {
			boxes[i] = opts.BoxPlotData{Name: g.Label, Value: "-"}
			means[i] = opts.ScatterData{Value: "-"}
			continue
		}
		boxes[i] = opts.BoxPlotData{
			Name:  g.Label,
			Value: []float64{b.WhiskerLow, b.Q1, b.Median, b.Q3, b.WhiskerHigh},
		}
		means[i] = opts.ScatterData{Value: b.Mean, Symbol: "triangle"}
	}

	box := charts.NewBoxPlot()
	box.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "100%", Height: "480px"}),
		charts.WithTitleOpts(opts.Title{Title: "Grouped Boxplots of Estimations of π"}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "N × 10⁴", NameLocation: "middle", NameGap: 25}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Estimation of π", Scale: opts.Bool(true)}),
	)
	box.SetXAxis(labels).
		AddSeries("estimates", boxes,
			charts.WithMarkLineNameYAxisItemOpts(opts.MarkLineNameYAxisItem{Name: "π", YAxis: math.Pi}),
		)

	meanMarks := charts.NewScatter()
	meanMarks.SetXAxis(labels).
		AddSeries("mean", means,
			charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}),
			charts.WithItemStyleOpts(opts.ItemStyle{Color: "green"}),
		)
	box.Overlap(meanMarks)
	return box
}

func midpointChart(r Report) *charts.Scatter {
	var crosses, misses []opts.ScatterData
	for i, n := range r.Needles {
		x, y := n.Midpoint()
		pt := opts.ScatterData{Value: []interface{}{x, y}}
		if r.Outcomes[i] == needle.Cross {
			crosses = append(crosses, pt)
		} else {
			misses = append(misses, pt)
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{Width: "720px", Height: "720px"}),
		charts.WithTitleOpts(opts.Title{Title: "Needle midpoints", Subtitle: fmt.Sprintf("needles=%d", len(r.Needles))}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true), Right: "0"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "X", Type: "value"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Y", Type: "value"}),
	)
	scatter.AddSeries("crosses", crosses,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "blue"}),
	)
	scatter.AddSeries("misses", misses,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 4}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: "red"}),
	)
	return scatter
}

// jsonValue maps values JSON cannot encode to the ECharts gap marker.
func jsonValue(v float64) interface{} {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "-"
	}
	return v
}
