package telemetry

import (
	"log/slog"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// WindowStats holds aggregated statistics for a window of dropped needles.
type WindowStats struct {
	Window     int `csv:"window"`
	StartTrial int `csv:"-"`
	EndTrial   int `csv:"end_trial"`

	// Needles dropped within the window
	Trials    int     `csv:"trials"`
	Crossings int     `csv:"crossings"`
	Rate      float64 `csv:"rate"`

	// Running totals since the start of the run
	TotalTrials    int     `csv:"total_trials"`
	TotalCrossings int     `csv:"total_crossings"`
	RunningRate    float64 `csv:"running_rate"`
	Estimate       float64 `csv:"estimate"`
	AbsError       float64 `csv:"abs_error"`

	// Expected crossing rate for the run's geometry
	TheoreticalRate float64 `csv:"theoretical_rate"`
}

// LogValue implements slog.LogValuer for structured logging.
// Undefined estimates are left out, since JSON has no NaN.
func (s WindowStats) LogValue() slog.Value {
	attrs := []slog.Attr{
		slog.Int("window", s.Window),
		slog.Int("end_trial", s.EndTrial),
		slog.Int("trials", s.Trials),
		slog.Int("crossings", s.Crossings),
		slog.Float64("rate", s.Rate),
		slog.Int("total_trials", s.TotalTrials),
		slog.Int("total_crossings", s.TotalCrossings),
		slog.Float64("running_rate", s.RunningRate),
		slog.Float64("theoretical_rate", s.TheoreticalRate),
	}
	attrs = AppendFinite(attrs, "estimate", s.Estimate)
	attrs = AppendFinite(attrs, "abs_error", s.AbsError)
	return slog.GroupValue(attrs...)
}

// AppendFinite appends a float attribute unless v is NaN or infinite.
func AppendFinite(attrs []slog.Attr, key string, v float64) []slog.Attr {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return attrs
	}
	return append(attrs, slog.Float64(key, v))
}

// LogStats logs the window stats using slog.
func (s WindowStats) LogStats() {
	slog.Info("stats", "window", s)
}

// Percentile calculates the p-th percentile of a sorted slice.
// p should be in [0, 1]. Returns 0 if slice is empty.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	if p <= 0 {
		return sorted[0]
	}
	if p >= 1 {
		return sorted[n-1]
	}

	// Linear interpolation
	idx := p * float64(n-1)
	lo := int(idx)
	hi := lo + 1
	if hi >= n {
		return sorted[n-1]
	}

	frac := idx - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// BoxStats summarises a group of estimates the way a boxplot draws them.
type BoxStats struct {
	Count  int     `csv:"count"`
	Min    float64 `csv:"min"`
	Q1     float64 `csv:"q1"`
	Median float64 `csv:"median"`
	Q3     float64 `csv:"q3"`
	Max    float64 `csv:"max"`
	Mean   float64 `csv:"mean"`
	StdDev float64 `csv:"std"`

	// Whiskers reach the furthest values within 1.5 IQR of the quartiles.
	WhiskerLow  float64   `csv:"whisker_low"`
	WhiskerHigh float64   `csv:"whisker_high"`
	Outliers    []float64 `csv:"-"`
}

// IQR returns the interquartile range.
func (b BoxStats) IQR() float64 {
	return b.Q3 - b.Q1
}

// ComputeBoxStats calculates quartiles, whiskers, outliers, mean and sample
// standard deviation. NaN values are ignored.
func ComputeBoxStats(values []float64) BoxStats {
	sorted := make([]float64, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			sorted = append(sorted, v)
		}
	}
	if len(sorted) == 0 {
		return BoxStats{}
	}
	sort.Float64s(sorted)

	b := BoxStats{
		Count:  len(sorted),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
		Q1:     Percentile(sorted, 0.25),
		Median: Percentile(sorted, 0.50),
		Q3:     Percentile(sorted, 0.75),
	}
	if len(sorted) > 1 {
		b.Mean, b.StdDev = stat.MeanStdDev(sorted, nil)
	} else {
		b.Mean = sorted[0]
	}

	lowFence := b.Q1 - 1.5*b.IQR()
	highFence := b.Q3 + 1.5*b.IQR()
	b.WhiskerLow, b.WhiskerHigh = b.Q1, b.Q3
	for _, v := range sorted {
		if v >= lowFence {
			b.WhiskerLow = v
			break
		}
	}
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] <= highFence {
			b.WhiskerHigh = sorted[i]
			break
		}
	}
	for _, v := range sorted {
		if v < lowFence || v > highFence {
			b.Outliers = append(b.Outliers, v)
		}
	}
	return b
}
