package telemetry

import (
	"math"

	"github.com/pthm-cable/buffon/needle"
)

// Collector accumulates needle outcomes in fixed-size windows and produces
// WindowStats. It also keeps the running tally for the whole run.
type Collector struct {
	windowSize int
	params     needle.Params
	estimator  needle.Estimator

	window      int
	windowStart int
	current     needle.Tally
	total       needle.Tally
}

// NewCollector creates a collector that flushes every windowSize trials.
func NewCollector(windowSize int, params needle.Params, estimator needle.Estimator) *Collector {
	if windowSize < 1 {
		windowSize = 1
	}
	return &Collector{
		windowSize: windowSize,
		params:     params,
		estimator:  estimator,
	}
}

// Record records one needle outcome.
func (c *Collector) Record(o needle.Outcome) {
	c.current.Add(o)
	c.total.Add(o)
}

// ShouldFlush returns true once the current window is full.
func (c *Collector) ShouldFlush() bool {
	return c.current.Trials >= c.windowSize
}

// Pending returns the number of trials recorded since the last flush.
func (c *Collector) Pending() int {
	return c.current.Trials
}

// Total returns the running tally since the collector was created or reset.
func (c *Collector) Total() needle.Tally {
	return c.total
}

// Flush produces a WindowStats for the current window and starts a new one.
func (c *Collector) Flush() WindowStats {
	stats := WindowStats{
		Window:          c.window,
		StartTrial:      c.windowStart,
		EndTrial:        c.total.Trials,
		Trials:          c.current.Trials,
		Crossings:       c.current.Crossings,
		Rate:            c.current.Rate(),
		TotalTrials:     c.total.Trials,
		TotalCrossings:  c.total.Crossings,
		RunningRate:     c.total.Rate(),
		TheoreticalRate: needle.TheoreticalRate(c.params),
		Estimate:        math.NaN(),
		AbsError:        math.NaN(),
	}
	if est, err := c.total.Estimate(c.params, c.estimator); err == nil {
		stats.Estimate = est
		stats.AbsError = math.Abs(est - math.Pi)
	}

	c.window++
	c.windowStart = c.total.Trials
	c.current = needle.Tally{}
	return stats
}

// Reset discards all counts and switches to new geometry.
func (c *Collector) Reset(params needle.Params) {
	c.params = params
	c.window = 0
	c.windowStart = 0
	c.current = needle.Tally{}
	c.total = needle.Tally{}
}

// WindowSize returns the number of trials per window.
func (c *Collector) WindowSize() int {
	return c.windowSize
}
