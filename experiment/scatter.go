package experiment

import (
	"math"

	"github.com/pthm-cable/buffon/needle"
)

// ScatterResult holds one run with its needle geometry kept for drawing.
type ScatterResult struct {
	Params   needle.Params
	Needles  []needle.Needle
	Outcomes []needle.Outcome
	Tally    needle.Tally
	Estimate float64
}

// Scatter drops n needles and keeps them. With n == 0 the result is empty and
// Estimate is NaN.
func Scatter(s *needle.Sampler, n int, p needle.Params, e needle.Estimator) (ScatterResult, error) {
	needles, outcomes, err := s.SampleNeedles(n, p)
	if err != nil {
		return ScatterResult{}, err
	}

	res := ScatterResult{
		Params:   p,
		Needles:  needles,
		Outcomes: outcomes,
		Tally:    needle.TallyOf(outcomes),
		Estimate: math.NaN(),
	}
	if n > 0 {
		if est, err := res.Tally.Estimate(p, e); err == nil {
			res.Estimate = est
		}
	}
	return res, nil
}

// Head returns the first n needles and outcomes of the run, or all of them
// if the run is shorter.
func (r ScatterResult) Head(n int) ([]needle.Needle, []needle.Outcome) {
	if n > len(r.Needles) {
		n = len(r.Needles)
	}
	return r.Needles[:n], r.Outcomes[:n]
}
