package charts

import (
	"bytes"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/buffon/needle"
)

var testParams = needle.Params{NeedleLen: 0.5, Spacing: 1}

func sampleRun(t *testing.T, n int) ([]needle.Needle, []needle.Outcome) {
	t.Helper()
	s := needle.NewSeededSampler(54654324, 10)
	needles, outcomes, err := s.SampleNeedles(n, testParams)
	require.NoError(t, err)
	return needles, outcomes
}

func TestNeedlePlot(t *testing.T) {
	needles, outcomes := sampleRun(t, 200)

	pl, err := NeedlePlot(needles, outcomes, testParams, 10)
	require.NoError(t, err)
	assert.Equal(t, -10.5, pl.X.Min)
	assert.Equal(t, 10.5, pl.X.Max)
	assert.True(t, strings.HasPrefix(pl.Title.Text, "Randomized Needles"))

	_, err = NeedlePlot(needles, outcomes[:10], testParams, 10)
	assert.Error(t, err)

	_, err = NeedlePlot(needles, outcomes, needle.Params{}, 10)
	assert.True(t, errors.Is(err, needle.ErrInvalidParams))
}

func TestSegmentsDataRange(t *testing.T) {
	s := segments{needles: []needle.Needle{
		needle.NewNeedle(0, 0, 0, 1),
		needle.NewNeedle(-2, 3, math.Pi/2, 1),
	}}
	xmin, xmax, ymin, ymax := s.DataRange()
	assert.Equal(t, -2.0, xmin)
	assert.Equal(t, 1.0, xmax)
	assert.Equal(t, 0.0, ymin)
	assert.InDelta(t, 4.0, ymax, 1e-12)
}

func TestConvergencePlot(t *testing.T) {
	estimates := []float64{math.NaN(), 4, 3.5, 3.2}

	pl, err := ConvergencePlot(estimates, 1.5, 5)
	require.NoError(t, err)
	assert.Equal(t, "Cumulative Estimation for N=4", pl.Title.Text)
	assert.Equal(t, 1.5, pl.Y.Min)
	assert.Equal(t, 5.0, pl.Y.Max)
	assert.Equal(t, 4.0, pl.X.Max)

	_, err = ConvergencePlot(nil, 1.5, 5)
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestBoxPlot(t *testing.T) {
	groups := []BoxGroup{
		{Label: "<1", Values: []float64{3.0, 3.1, 3.3, 2.9}},
		{Label: "1", Values: []float64{math.NaN()}},
		{Label: "2", Values: []float64{3.14, 3.15, 3.13}},
	}
	pl, err := BoxPlot(groups)
	require.NoError(t, err)
	assert.Equal(t, -0.5, pl.X.Min)
	assert.Equal(t, 2.5, pl.X.Max)

	_, err = BoxPlot(nil)
	assert.True(t, errors.Is(err, ErrNoData))
}

func TestSaveFigure(t *testing.T) {
	needles, outcomes := sampleRun(t, 100)
	estimates, err := needle.Cumulative(outcomes, testParams, needle.DefaultEstimator())
	require.NoError(t, err)

	np, err := NeedlePlot(needles, outcomes, testParams, 10)
	require.NoError(t, err)
	cp, err := ConvergencePlot(estimates, 1.5, 5)
	require.NoError(t, err)
	bp, err := BoxPlot([]BoxGroup{{Label: "<1", Values: estimates}})
	require.NoError(t, err)

	dir := t.TempDir()
	file := filepath.Join(dir, "figure.png")
	require.NoError(t, SaveFigure(np, cp, bp, 6, 6, file))

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("\x89PNG")))

	single := filepath.Join(dir, "needles.png")
	require.NoError(t, SavePNG(np, 4, 4, single))
	info, err := os.Stat(single)
	require.NoError(t, err)
	assert.Positive(t, info.Size())
}

func TestSaveFigureMissingPlots(t *testing.T) {
	file := filepath.Join(t.TempDir(), "figure.png")
	require.NoError(t, SaveFigure(nil, nil, nil, 3, 3, file))
}

func TestWriteHTMLReport(t *testing.T) {
	needles, outcomes := sampleRun(t, 50)
	estimates, err := needle.Cumulative(outcomes, testParams, needle.Estimator{Strict: true})
	require.NoError(t, err)

	var buf bytes.Buffer
	err = WriteHTMLReport(&buf, Report{
		Subtitle:    "seed=54654324",
		Needles:     needles,
		Outcomes:    outcomes,
		Convergence: estimates,
		Groups: []BoxGroup{
			{Label: "<1", Values: []float64{3.0, 3.2, 3.1}},
			{Label: "1", Values: nil},
		},
	})
	require.NoError(t, err)

	html := buf.String()
	assert.Contains(t, html, "<html")
	assert.Contains(t, html, "Cumulative Estimation for N=50")
	assert.Contains(t, html, "Grouped Boxplots")
	assert.Contains(t, html, "Needle midpoints")
}

func TestWriteHTMLReportMismatch(t *testing.T) {
	var buf bytes.Buffer
	err := WriteHTMLReport(&buf, Report{Needles: make([]needle.Needle, 2)})
	assert.Error(t, err)
}

func TestSaveHTMLReport(t *testing.T) {
	file := filepath.Join(t.TempDir(), "report.html")
	require.NoError(t, SaveHTMLReport(file, Report{Convergence: []float64{3, 3.1}}))

	data, err := os.ReadFile(file)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Cumulative Estimation for N=2")
}

func TestGroupMeans(t *testing.T) {
	means := groupMeans([]BoxGroup{
		{Label: "<1", Values: []float64{3.0, 3.2, math.NaN()}},
		{Label: "1", Values: []float64{math.Inf(1)}},
		{Label: "2", Values: []float64{3.14}},
	})
	require.Len(t, means, 2)
	assert.Equal(t, 0.0, means[0].X)
	assert.InDelta(t, 3.1, means[0].Y, 1e-12)
	assert.Equal(t, 2.0, means[1].X)
	assert.Equal(t, 3.14, means[1].Y)
}
