package needle

import (
	"errors"
	"fmt"
	"math"
)

// DefaultZeroRateFloor replaces a crossing rate of exactly zero so that the
// estimate stays finite.
const DefaultZeroRateFloor = 1e-6

var (
	// ErrNoOutcomes is returned when estimating from an empty run.
	ErrNoOutcomes = errors.New("needle: no outcomes to estimate from")
	// ErrZeroCrossings is returned by a strict Estimator when no needle crossed.
	ErrZeroCrossings = errors.New("needle: no crossings, estimate undefined")
)

// Estimator turns crossing counts into an estimate of π.
//
// With no crossings the rate is replaced by ZeroRateFloor, which yields a
// large finite estimate biased for small samples. Strict estimators return
// ErrZeroCrossings instead.
type Estimator struct {
	ZeroRateFloor float64 `yaml:"zero_rate_floor"`
	Strict        bool    `yaml:"strict"`
}

// DefaultEstimator returns the floor-substituting estimator.
func DefaultEstimator() Estimator {
	return Estimator{ZeroRateFloor: DefaultZeroRateFloor}
}

// EstimateCounts estimates π from crossings out of trials needles:
// 2L / (S * crossings/trials).
func (e Estimator) EstimateCounts(crossings, trials int, p Params) (float64, error) {
	if trials <= 0 {
		return 0, ErrNoOutcomes
	}
	if crossings < 0 || crossings > trials {
		return 0, fmt.Errorf("needle: %d crossings out of %d trials", crossings, trials)
	}
	if err := p.Validate(); err != nil {
		return 0, err
	}
	rate := float64(crossings) / float64(trials)
	if rate == 0 {
		if e.Strict {
			return 0, fmt.Errorf("%w after %d trials", ErrZeroCrossings, trials)
		}
		rate = e.floor()
	}
	return 2 * p.NeedleLen / (p.Spacing * rate), nil
}

// Estimate estimates π from a run of outcomes.
func (e Estimator) Estimate(outcomes []Outcome, p Params) (float64, error) {
	t := TallyOf(outcomes)
	return e.EstimateCounts(t.Crossings, t.Trials, p)
}

func (e Estimator) floor() float64 {
	if e.ZeroRateFloor > 0 {
		return e.ZeroRateFloor
	}
	return DefaultZeroRateFloor
}

// Estimate estimates π from outcomes with the default estimator.
func Estimate(outcomes []Outcome, p Params) (float64, error) {
	return DefaultEstimator().Estimate(outcomes, p)
}

// Tally is a running count of trials and crossings. It is the O(1) state an
// estimate needs.
type Tally struct {
	Trials    int
	Crossings int
}

// TallyOf counts a run of outcomes.
func TallyOf(outcomes []Outcome) Tally {
	var t Tally
	for _, o := range outcomes {
		t.Add(o)
	}
	return t
}

// Add records one outcome.
func (t *Tally) Add(o Outcome) {
	t.Trials++
	if o == Cross {
		t.Crossings++
	}
}

// Merge adds the counts of other to t.
func (t *Tally) Merge(other Tally) {
	t.Trials += other.Trials
	t.Crossings += other.Crossings
}

// Rate returns the observed crossing rate, or 0 for an empty tally.
func (t Tally) Rate() float64 {
	if t.Trials == 0 {
		return 0
	}
	return float64(t.Crossings) / float64(t.Trials)
}

// Estimate estimates π from the counts so far.
func (t Tally) Estimate(p Params, e Estimator) (float64, error) {
	return e.EstimateCounts(t.Crossings, t.Trials, p)
}

// Cumulative returns the estimate for every prefix of outcomes: element i is
// the estimate from outcomes[:i+1]. It runs in a single pass. With a strict
// estimator, prefixes without a crossing are NaN.
func Cumulative(outcomes []Outcome, p Params, e Estimator) ([]float64, error) {
	if len(outcomes) == 0 {
		return nil, ErrNoOutcomes
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	estimates := make([]float64, len(outcomes))
	var t Tally
	for i, o := range outcomes {
		t.Add(o)
		est, err := t.Estimate(p, e)
		if err != nil {
			if errors.Is(err, ErrZeroCrossings) {
				estimates[i] = math.NaN()
				continue
			}
			return nil, err
		}
		estimates[i] = est
	}
	return estimates, nil
}
