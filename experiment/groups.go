package experiment

import (
	"sort"
	"strconv"

	"github.com/pthm-cable/buffon/telemetry"
)

// Group collects the sweep runs whose sample size falls in the same band of
// width sample sizes.
type Group struct {
	Index     int
	Label     string
	Sizes     []int
	Estimates []float64
	Box       telemetry.BoxStats
}

// GroupRecord is the flat CSV form of a Group.
type GroupRecord struct {
	Group int    `csv:"group"`
	Label string `csv:"label"`
	Runs  int    `csv:"runs"`
	MinN  int    `csv:"min_n"`
	MaxN  int    `csv:"max_n"`
	telemetry.BoxStats
}

// Record flattens g for CSV output.
func (g Group) Record() GroupRecord {
	r := GroupRecord{
		Group:    g.Index,
		Label:    g.Label,
		Runs:     len(g.Sizes),
		BoxStats: g.Box,
	}
	for i, n := range g.Sizes {
		if i == 0 || n < r.MinN {
			r.MinN = n
		}
		if n > r.MaxN {
			r.MaxN = n
		}
	}
	return r
}

// GroupLabel returns the axis label of group index i: "<1" for the first
// band, the band number otherwise.
func GroupLabel(i int) string {
	if i == 0 {
		return "<1"
	}
	return strconv.Itoa(i)
}

// GroupSweep bands sweep points by N / width and summarises each band. Groups
// come back in ascending order; bands with no runs are omitted.
func GroupSweep(points []SweepPoint, width int) []Group {
	if width <= 0 || len(points) == 0 {
		return nil
	}

	byIndex := make(map[int]*Group)
	var order []int
	for _, pt := range points {
		idx := pt.N / width
		g, ok := byIndex[idx]
		if !ok {
			g = &Group{Index: idx, Label: GroupLabel(idx)}
			byIndex[idx] = g
			order = append(order, idx)
		}
		g.Sizes = append(g.Sizes, pt.N)
		g.Estimates = append(g.Estimates, pt.Estimate)
	}

	sort.Ints(order)
	groups := make([]Group, 0, len(order))
	for _, idx := range order {
		g := byIndex[idx]
		g.Box = telemetry.ComputeBoxStats(g.Estimates)
		groups = append(groups, *g)
	}
	return groups
}

// Records flattens groups for CSV output.
func Records(groups []Group) []GroupRecord {
	out := make([]GroupRecord, len(groups))
	for i, g := range groups {
		out[i] = g.Record()
	}
	return out
}
