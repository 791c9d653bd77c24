package game

import (
	"context"
	"log/slog"
	"math"

	"github.com/pthm-cable/buffon/telemetry"
)

// handleWindow reports a full stats window: callback, logs and CSV output.
func (g *Game) handleWindow(stats telemetry.WindowStats) {
	g.windows++
	perfStats := g.perfCollector.Stats()

	if g.statsCallback != nil {
		g.statsCallback(stats)
	}

	if g.logStats {
		stats.LogStats()
		perfStats.LogStats()
	}

	if err := g.outputManager.WriteTelemetry(stats); err != nil {
		logError("writing telemetry", err)
	}
	if err := g.outputManager.WritePerf(perfStats, int(g.tick)); err != nil {
		logError("writing perf", err)
	}
}

// flushPartialWindow reports the trials recorded since the last full
// window, so that a reset or shutdown does not lose them.
func (g *Game) flushPartialWindow() {
	if g.collector.Pending() == 0 {
		return
	}
	g.handleWindow(g.collector.Flush())
}

// logRunEvent records a change to the run with its final counts.
func (g *Game) logRunEvent(event string) {
	t := g.drops.Tally()
	p := g.drops.Params()
	attrs := []slog.Attr{
		slog.Int64("seed", g.seed),
		slog.Float64("needle_len", p.NeedleLen),
		slog.Float64("spacing", p.Spacing),
		slog.Int("trials", t.Trials),
		slog.Int("crossings", t.Crossings),
		slog.Int("tick", int(g.tick)),
	}
	attrs = telemetry.AppendFinite(attrs, "estimate", g.estimate)
	slog.LogAttrs(context.Background(), slog.LevelInfo, event, attrs...)
}

func logError(msg string, err error) {
	slog.Error(msg, "error", err)
}

func nan() float64 {
	return math.NaN()
}
