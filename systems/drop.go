package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/buffon/components"
	"github.com/pthm-cable/buffon/needle"
	"github.com/pthm-cable/buffon/telemetry"
)

// DropSystem drops needles into the world, keeps the running tally and
// removes the oldest needles beyond a capacity. The tally counts every drop,
// including pruned needles.
type DropSystem struct {
	world  *ecs.World
	mapper *ecs.Map3[components.Segment, components.Crossing, components.Drop]
	filter *ecs.Filter2[components.Segment, components.Crossing]

	sampler   *needle.Sampler
	params    needle.Params
	collector *telemetry.Collector

	tally      needle.Tally
	order      []ecs.Entity // live needles, oldest first
	maxNeedles int          // 0 = unlimited
	seq        uint64
}

// NewDropSystem creates a drop system. collector may be nil.
func NewDropSystem(world *ecs.World, sampler *needle.Sampler, params needle.Params, collector *telemetry.Collector, maxNeedles int) *DropSystem {
	return &DropSystem{
		world:      world,
		mapper:     ecs.NewMap3[components.Segment, components.Crossing, components.Drop](world),
		filter:     ecs.NewFilter2[components.Segment, components.Crossing](world),
		sampler:    sampler,
		params:     params,
		collector:  collector,
		maxNeedles: maxNeedles,
	}
}

// Drop drops n needles on the given frame and returns the stats windows
// that filled up along the way.
func (s *DropSystem) Drop(n int, frame int32) ([]telemetry.WindowStats, error) {
	var flushed []telemetry.WindowStats
	err := s.sampler.Stream(n, s.params, func(nd needle.Needle, o needle.Outcome) {
		seg := components.SegmentOf(nd)
		cross := components.Crossing{Crosses: o == needle.Cross}
		drop := components.Drop{Seq: s.seq, Frame: frame}
		s.seq++

		e := s.mapper.NewEntity(&seg, &cross, &drop)
		s.order = append(s.order, e)
		s.tally.Add(o)

		if s.collector != nil {
			s.collector.Record(o)
			if s.collector.ShouldFlush() {
				flushed = append(flushed, s.collector.Flush())
			}
		}
	})
	return flushed, err
}

// Prune removes the oldest needles beyond capacity and returns how many
// were removed.
func (s *DropSystem) Prune() int {
	if s.maxNeedles <= 0 || len(s.order) <= s.maxNeedles {
		return 0
	}
	excess := len(s.order) - s.maxNeedles
	for _, e := range s.order[:excess] {
		if s.world.Alive(e) {
			s.world.RemoveEntity(e)
		}
	}
	s.order = append(s.order[:0], s.order[excess:]...)
	return excess
}

// Clear removes every needle and zeroes the tally and the collector.
func (s *DropSystem) Clear() {
	for _, e := range s.order {
		if s.world.Alive(e) {
			s.world.RemoveEntity(e)
		}
	}
	s.order = s.order[:0]
	s.tally = needle.Tally{}
	s.seq = 0
	if s.collector != nil {
		s.collector.Reset(s.params)
	}
}

// SetParams switches needle length and line spacing. Counts mixed across
// geometries estimate nothing, so a change clears the system.
func (s *DropSystem) SetParams(p needle.Params) error {
	if err := p.Validate(); err != nil {
		return err
	}
	if p == s.params {
		return nil
	}
	s.params = p
	s.Clear()
	return nil
}

// SetMaxNeedles changes the capacity; excess needles go on the next Prune.
func (s *DropSystem) SetMaxNeedles(n int) {
	s.maxNeedles = n
}

// Reseed restarts the sampler from seed and clears the system.
func (s *DropSystem) Reseed(seed int64) {
	s.sampler.Reseed(seed)
	s.Clear()
}

// Each calls fn for every live needle.
func (s *DropSystem) Each(fn func(seg *components.Segment, c *components.Crossing)) {
	query := s.filter.Query()
	for query.Next() {
		seg, c := query.Get()
		fn(seg, c)
	}
}

// EachEntity calls fn for every live needle along with its entity.
func (s *DropSystem) EachEntity(fn func(e ecs.Entity, seg *components.Segment, c *components.Crossing)) {
	query := s.filter.Query()
	for query.Next() {
		seg, c := query.Get()
		fn(query.Entity(), seg, c)
	}
}

// Params returns the current geometry.
func (s *DropSystem) Params() needle.Params {
	return s.params
}

// Tally returns the counts of every needle dropped since the last reset.
func (s *DropSystem) Tally() needle.Tally {
	return s.tally
}

// Count returns the number of needles currently in the world.
func (s *DropSystem) Count() int {
	return len(s.order)
}

// Estimate returns the running estimate of π.
func (s *DropSystem) Estimate(e needle.Estimator) (float64, error) {
	return s.tally.Estimate(s.params, e)
}
