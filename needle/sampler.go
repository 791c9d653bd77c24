package needle

import (
	"fmt"
	"math"
	"math/rand"
)

// DefaultHalfExtent bounds needle start points to [-10, 10) on each axis.
const DefaultHalfExtent = 10.0

// Sampler drops needles at random onto the plane. It owns its generator, so
// separate samplers never interfere; a Sampler itself is not safe for
// concurrent use.
type Sampler struct {
	rng        *rand.Rand
	halfExtent float64
}

// NewSampler creates a sampler drawing from rng. A non-positive halfExtent
// selects DefaultHalfExtent.
func NewSampler(rng *rand.Rand, halfExtent float64) *Sampler {
	if halfExtent <= 0 {
		halfExtent = DefaultHalfExtent
	}
	return &Sampler{rng: rng, halfExtent: halfExtent}
}

// NewSeededSampler creates a sampler with a fresh generator seeded with seed.
func NewSeededSampler(seed int64, halfExtent float64) *Sampler {
	return NewSampler(rand.New(rand.NewSource(seed)), halfExtent)
}

// Reseed resets the generator so that subsequent draws repeat from seed.
func (s *Sampler) Reseed(seed int64) {
	s.rng.Seed(seed)
}

// HalfExtent returns the bound of the start region.
func (s *Sampler) HalfExtent() float64 {
	return s.halfExtent
}

// Drop places one needle of the given length. The start point is uniform in
// the square region and the angle uniform in [0, π): a needle has no
// distinguishable ends, so half a turn covers every orientation.
func (s *Sampler) Drop(length float64) Needle {
	x := s.uniform(-s.halfExtent, s.halfExtent)
	y := s.uniform(-s.halfExtent, s.halfExtent)
	angle := s.rng.Float64() * math.Pi
	return NewNeedle(x, y, angle, length)
}

func (s *Sampler) uniform(lo, hi float64) float64 {
	return lo + (hi-lo)*s.rng.Float64()
}

// Stream drops n needles and hands each one with its outcome to fn, in
// generation order. It keeps nothing, so memory use does not grow with n.
func (s *Sampler) Stream(n int, p Params, fn func(Needle, Outcome)) error {
	if err := checkRun(n, p); err != nil {
		return err
	}
	g := p.Grid()
	for i := 0; i < n; i++ {
		nd := s.Drop(p.NeedleLen)
		fn(nd, Classify(nd, g))
	}
	return nil
}

// Sample drops n needles and returns their outcomes in generation order.
func (s *Sampler) Sample(n int, p Params) ([]Outcome, error) {
	if err := checkRun(n, p); err != nil {
		return nil, err
	}
	outcomes := make([]Outcome, 0, n)
	err := s.Stream(n, p, func(_ Needle, o Outcome) {
		outcomes = append(outcomes, o)
	})
	return outcomes, err
}

// SampleNeedles is like Sample but also returns the needles, for drawing.
func (s *Sampler) SampleNeedles(n int, p Params) ([]Needle, []Outcome, error) {
	if err := checkRun(n, p); err != nil {
		return nil, nil, err
	}
	needles := make([]Needle, 0, n)
	outcomes := make([]Outcome, 0, n)
	err := s.Stream(n, p, func(nd Needle, o Outcome) {
		needles = append(needles, nd)
		outcomes = append(outcomes, o)
	})
	return needles, outcomes, err
}

// SampleTally drops n needles and only counts them.
func (s *Sampler) SampleTally(n int, p Params) (Tally, error) {
	var t Tally
	err := s.Stream(n, p, func(_ Needle, o Outcome) {
		t.Add(o)
	})
	return t, err
}

func checkRun(n int, p Params) error {
	if n < 0 {
		return fmt.Errorf("%w: %d", ErrNegativeCount, n)
	}
	return p.Validate()
}
