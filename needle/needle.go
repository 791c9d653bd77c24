// Package needle implements the geometry and estimation of Buffon's needle
// experiment: needles dropped on a plane ruled with horizontal lines, and the
// estimate of π recovered from how often they cross a line.
package needle

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidParams is returned when needle length or line spacing is not a
	// finite positive number.
	ErrInvalidParams = errors.New("needle: invalid parameters")
	// ErrNegativeCount is returned when a negative number of needles is requested.
	ErrNegativeCount = errors.New("needle: negative sample count")
)

// Outcome records whether a single needle crossed a grid line.
type Outcome uint8

const (
	Miss  Outcome = 0
	Cross Outcome = 1
)

// String implements fmt.Stringer.
func (o Outcome) String() string {
	if o == Cross {
		return "cross"
	}
	return "miss"
}

// Params holds the fixed geometry of an experiment.
type Params struct {
	NeedleLen float64 `yaml:"needle_len"`
	Spacing   float64 `yaml:"spacing"`
}

// Validate reports whether both lengths are finite and positive.
func (p Params) Validate() error {
	if !(p.NeedleLen > 0) || math.IsInf(p.NeedleLen, 0) {
		return fmt.Errorf("%w: needle length must be positive and finite, got %v", ErrInvalidParams, p.NeedleLen)
	}
	if !(p.Spacing > 0) || math.IsInf(p.Spacing, 0) {
		return fmt.Errorf("%w: line spacing must be positive and finite, got %v", ErrInvalidParams, p.Spacing)
	}
	return nil
}

// Grid returns the ruled plane for these parameters.
func (p Params) Grid() Grid {
	return Grid{Spacing: p.Spacing}
}

// Scale returns p with both lengths multiplied by k.
func (p Params) Scale(k float64) Params {
	return Params{NeedleLen: p.NeedleLen * k, Spacing: p.Spacing * k}
}

// Needle is a single placed needle. Angle is in radians in [0, π).
type Needle struct {
	X, Y       float64
	Angle      float64
	Length     float64
	EndX, EndY float64
}

// NewNeedle places a needle at (x, y) and derives its endpoint.
func NewNeedle(x, y, angle, length float64) Needle {
	return Needle{
		X:      x,
		Y:      y,
		Angle:  angle,
		Length: length,
		EndX:   x + length*math.Cos(angle),
		EndY:   y + length*math.Sin(angle),
	}
}

// Midpoint returns the centre of the needle.
func (n Needle) Midpoint() (x, y float64) {
	return (n.X + n.EndX) / 2, (n.Y + n.EndY) / 2
}

// Grid is the infinite set of horizontal lines y = k*Spacing.
type Grid struct {
	Spacing float64
}

// NextLineAbove returns the first line strictly above y. A point lying exactly
// on a line maps to the line one spacing higher.
func (g Grid) NextLineAbove(y float64) float64 {
	return (math.Floor(y/g.Spacing) + 1) * g.Spacing
}

// Lines returns the line positions within [lo, hi], in ascending order.
func (g Grid) Lines(lo, hi float64) []float64 {
	if g.Spacing <= 0 || hi < lo {
		return nil
	}
	first := math.Ceil(lo / g.Spacing)
	last := math.Floor(hi / g.Spacing)
	if last < first {
		return nil
	}
	lines := make([]float64, 0, int(last-first)+1)
	for k := first; k <= last; k++ {
		lines = append(lines, k*g.Spacing)
	}
	return lines
}

// Classify reports whether n reaches the next line above its start point.
// Reaching the line exactly counts as a crossing.
func Classify(n Needle, g Grid) Outcome {
	if n.EndY >= g.NextLineAbove(n.Y) {
		return Cross
	}
	return Miss
}

// TheoreticalRate returns the probability that a needle crosses a line. For a
// short needle (L <= S) this is 2L/(πS); longer needles use the long-needle form.
func TheoreticalRate(p Params) float64 {
	l, s := p.NeedleLen, p.Spacing
	if l <= s {
		return 2 * l / (math.Pi * s)
	}
	x := l / s
	return 2 / math.Pi * (x - math.Sqrt(x*x-1) + math.Acos(1/x))
}
