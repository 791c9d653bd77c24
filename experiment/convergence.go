package experiment

import (
	"math"

	"github.com/pthm-cable/buffon/needle"
)

// ConvergencePoint is the estimate after the first N needles of a run.
type ConvergencePoint struct {
	N        int     `csv:"n"`
	Estimate float64 `csv:"estimate"`
	AbsError float64 `csv:"abs_error"`
}

// Convergence returns the cumulative estimate for every prefix of outcomes.
func Convergence(outcomes []needle.Outcome, p needle.Params, e needle.Estimator) ([]ConvergencePoint, error) {
	estimates, err := needle.Cumulative(outcomes, p, e)
	if err != nil {
		return nil, err
	}
	points := make([]ConvergencePoint, len(estimates))
	for i, est := range estimates {
		points[i] = ConvergencePoint{
			N:        i + 1,
			Estimate: est,
			AbsError: math.Abs(est - math.Pi),
		}
	}
	return points, nil
}

// Estimates returns the estimate column of points.
func Estimates(points []ConvergencePoint) []float64 {
	out := make([]float64, len(points))
	for i, p := range points {
		out[i] = p.Estimate
	}
	return out
}
