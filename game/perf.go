package game

import (
	"sort"

	"github.com/pthm-cable/buffon/systems"
	"github.com/pthm-cable/buffon/ui"
)

// perfPanelData converts the rolling perf window into panel data. Step
// phases come first in execution order, anything else after by name.
func (g *Game) perfPanelData() ui.PerfPanelData {
	stats := g.perfCollector.Stats()

	phases := make([]string, 0, len(stats.PhaseAvg))
	for id := range stats.PhaseAvg {
		phases = append(phases, id)
	}
	sort.Slice(phases, func(i, j int) bool {
		oi, oj := systems.PhaseOrder(phases[i]), systems.PhaseOrder(phases[j])
		switch {
		case oi >= 0 && oj >= 0:
			return oi < oj
		case oi >= 0 || oj >= 0:
			return oi >= 0
		}
		return phases[i] < phases[j]
	})

	return ui.PerfPanelData{
		PhaseAvg: stats.PhaseAvg,
		Step:     stats.AvgStepDuration,
		Frame:    stats.FrameDuration,
		Phases:   phases,
	}
}
