package main

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/optimize"
	"gonum.org/v1/gonum/stat"

	"github.com/pthm-cable/buffon/needle"
)

// Point is one independent run of a sweep.
type Point struct {
	N         int     `csv:"n"`
	Crossings int     `csv:"crossings"`
	Estimate  float64 `csv:"estimate"`
}

// EvalRecord is one objective evaluation, logged to fit_log.csv.
type EvalRecord struct {
	Eval      int     `csv:"eval"`
	Pi        float64 `csv:"pi"`
	Objective float64 `csv:"objective"`
}

// Result summarises a fit.
type Result struct {
	Source    string        `yaml:"source"`
	Params    needle.Params `yaml:"params"`
	Points    int           `yaml:"points"`
	Trials    int           `yaml:"trials"`
	Crossings int           `yaml:"crossings"`

	// Pooled is the estimate from all counts taken together.
	Pooled float64 `yaml:"pooled"`
	// Fitted minimises the weighted squared error of the crossing rates.
	Fitted      float64 `yaml:"fitted"`
	FittedError float64 `yaml:"fitted_abs_error"`
	Residual    float64 `yaml:"weighted_rms_residual"`

	// Spread of the per-run estimates
	MeanEstimate float64 `yaml:"mean_estimate"`
	StdEstimate  float64 `yaml:"std_estimate"`

	Evaluations int  `yaml:"evaluations"`
	Converged   bool `yaml:"converged"`
}

var errNoCrossings = errors.New("fit: no crossings in any run")

// objective is the weighted sum of squared rate errors for a candidate π.
// Each run is weighted by its trial count, the inverse of its rate variance
// up to a constant.
type objective struct {
	points []Point
	k      float64 // 2L/S, so that the expected rate is k/π
}

func (o objective) value(pi float64) float64 {
	if !(pi > 0) {
		return math.Inf(1)
	}
	want := o.k / pi
	var sum float64
	for _, p := range o.points {
		d := float64(p.Crossings)/float64(p.N) - want
		sum += float64(p.N) * d * d
	}
	return sum
}

// Fit estimates π from sweep points by weighted least squares on the
// crossing rates, minimised with Nelder-Mead from the pooled estimate.
// onEval, if set, sees every evaluation.
func Fit(points []Point, p needle.Params, maxEvals int, onEval func(EvalRecord)) (Result, error) {
	if err := p.Validate(); err != nil {
		return Result{}, err
	}

	var used []Point
	var res Result
	estimates := make([]float64, 0, len(points))
	for _, pt := range points {
		if pt.N <= 0 || pt.Crossings < 0 || pt.Crossings > pt.N {
			return Result{}, fmt.Errorf("fit: invalid point n=%d crossings=%d", pt.N, pt.Crossings)
		}
		used = append(used, pt)
		res.Trials += pt.N
		res.Crossings += pt.Crossings
		if !math.IsNaN(pt.Estimate) && !math.IsInf(pt.Estimate, 0) {
			estimates = append(estimates, pt.Estimate)
		}
	}
	if len(used) == 0 {
		return Result{}, needle.ErrNoOutcomes
	}
	if res.Crossings == 0 {
		return Result{}, errNoCrossings
	}

	res.Params = p
	res.Points = len(used)
	res.Pooled = 2 * p.NeedleLen * float64(res.Trials) / (p.Spacing * float64(res.Crossings))
	res.MeanEstimate, res.StdEstimate = math.NaN(), math.NaN()
	if len(estimates) > 0 {
		res.MeanEstimate = stat.Mean(estimates, nil)
	}
	if len(estimates) > 1 {
		res.StdEstimate = stat.StdDev(estimates, nil)
	}

	obj := objective{points: used, k: 2 * p.NeedleLen / p.Spacing}
	evals := 0
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			v := obj.value(x[0])
			evals++
			if onEval != nil {
				onEval(EvalRecord{Eval: evals, Pi: x[0], Objective: v})
			}
			return v
		},
	}
	settings := &optimize.Settings{
		FuncEvaluations: maxEvals,
		Converger: &optimize.FunctionConverge{
			Absolute:   1e-14,
			Relative:   1e-12,
			Iterations: 50,
		},
	}

	result, err := optimize.Minimize(problem, []float64{res.Pooled}, settings, &optimize.NelderMead{})
	if err != nil && result == nil {
		return Result{}, fmt.Errorf("fit: %w", err)
	}

	res.Fitted = result.X[0]
	res.FittedError = math.Abs(res.Fitted - math.Pi)
	res.Residual = math.Sqrt(result.F / float64(res.Trials))
	res.Evaluations = evals
	res.Converged = err == nil && result.Status != optimize.FunctionEvaluationLimit
	return res, nil
}
