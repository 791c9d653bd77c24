package experiment

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/buffon/needle"
)

var testParams = needle.Params{NeedleLen: 0.5, Spacing: 1}

func TestScatter(t *testing.T) {
	s := needle.NewSeededSampler(54654324, 10)
	res, err := Scatter(s, 500, testParams, needle.DefaultEstimator())
	require.NoError(t, err)

	assert.Len(t, res.Needles, 500)
	assert.Len(t, res.Outcomes, 500)
	assert.Equal(t, 500, res.Tally.Trials)

	crossings := 0
	for i, n := range res.Needles {
		assert.Equal(t, needle.Classify(n, testParams.Grid()), res.Outcomes[i])
		if res.Outcomes[i] == needle.Cross {
			crossings++
		}
	}
	assert.Equal(t, crossings, res.Tally.Crossings)

	want, err := needle.Estimate(res.Outcomes, testParams)
	require.NoError(t, err)
	assert.Equal(t, want, res.Estimate)
}

func TestScatterEmpty(t *testing.T) {
	s := needle.NewSeededSampler(1, 10)
	res, err := Scatter(s, 0, testParams, needle.DefaultEstimator())
	require.NoError(t, err)
	assert.Empty(t, res.Needles)
	assert.True(t, math.IsNaN(res.Estimate))
}

func TestScatterHead(t *testing.T) {
	s := needle.NewSeededSampler(1, 10)
	res, err := Scatter(s, 20, testParams, needle.DefaultEstimator())
	require.NoError(t, err)

	needles, outcomes := res.Head(5)
	assert.Len(t, needles, 5)
	assert.Len(t, outcomes, 5)

	needles, _ = res.Head(50)
	assert.Len(t, needles, 20)
}

func TestConvergence(t *testing.T) {
	s := needle.NewSeededSampler(42, 10)
	outcomes, err := s.Sample(1000, testParams)
	require.NoError(t, err)

	points, err := Convergence(outcomes, testParams, needle.DefaultEstimator())
	require.NoError(t, err)
	require.Len(t, points, 1000)

	for i, p := range points {
		assert.Equal(t, i+1, p.N)
	}

	last := points[len(points)-1]
	want, err := needle.Estimate(outcomes, testParams)
	require.NoError(t, err)
	assert.InDelta(t, want, last.Estimate, 1e-9)
	assert.InDelta(t, math.Abs(want-math.Pi), last.AbsError, 1e-9)

	assert.Equal(t, last.Estimate, Estimates(points)[999])
}

func TestConvergenceEmpty(t *testing.T) {
	_, err := Convergence(nil, testParams, needle.DefaultEstimator())
	assert.True(t, errors.Is(err, needle.ErrNoOutcomes))
}

func TestRunSeed(t *testing.T) {
	seen := make(map[int64]bool)
	for i := 0; i < 1000; i++ {
		s := RunSeed(54654324, i)
		assert.False(t, seen[s], "duplicate seed at run %d", i)
		seen[s] = true
	}
	assert.Equal(t, RunSeed(7, 3), RunSeed(7, 3))
	assert.NotEqual(t, RunSeed(7, 3), RunSeed(8, 3))
}

func sweepSizes(start, stop, step int) []int {
	var sizes []int
	for n := start; n < stop; n += step {
		sizes = append(sizes, n)
	}
	return sizes
}

func TestSweepWorkerCountInvariant(t *testing.T) {
	opts := SweepOptions{
		Sizes:      sweepSizes(100, 5000, 100),
		Params:     testParams,
		Estimator:  needle.DefaultEstimator(),
		Seed:       54654324,
		HalfExtent: 10,
	}

	opts.Workers = 1
	serial, err := Sweep(context.Background(), opts)
	require.NoError(t, err)

	opts.Workers = 4
	parallel, err := Sweep(context.Background(), opts)
	require.NoError(t, err)

	if diff := cmp.Diff(serial, parallel, cmpopts.EquateNaNs()); diff != "" {
		t.Errorf("sweep differs between worker counts (-serial +parallel):\n%s", diff)
	}
}

func TestSweepPoints(t *testing.T) {
	sizes := []int{100, 1000, 10000}
	points, err := Sweep(context.Background(), SweepOptions{
		Sizes:      sizes,
		Params:     testParams,
		Estimator:  needle.DefaultEstimator(),
		Seed:       1,
		HalfExtent: 10,
		Workers:    2,
	})
	require.NoError(t, err)
	require.Len(t, points, len(sizes))

	for i, p := range points {
		assert.Equal(t, sizes[i], p.N)
		assert.Equal(t, RunSeed(1, i), p.Seed)
		assert.InDelta(t, float64(p.Crossings)/float64(p.N), p.Rate, 1e-12)

		s := needle.NewSeededSampler(p.Seed, 10)
		tally, err := s.SampleTally(p.N, testParams)
		require.NoError(t, err)
		assert.Equal(t, tally.Crossings, p.Crossings)
	}
	assert.InDelta(t, math.Pi, points[2].Estimate, 0.3)
}

func TestSweepProgress(t *testing.T) {
	var calls atomic.Int32
	var maxDone atomic.Int32
	_, err := Sweep(context.Background(), SweepOptions{
		Sizes:      sweepSizes(100, 2100, 100),
		Params:     testParams,
		Estimator:  needle.DefaultEstimator(),
		HalfExtent: 10,
		Workers:    3,
		Progress: func(done, total int) {
			calls.Add(1)
			assert.Equal(t, 20, total)
			for {
				cur := maxDone.Load()
				if int32(done) <= cur || maxDone.CompareAndSwap(cur, int32(done)) {
					break
				}
			}
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int32(20), calls.Load())
	assert.Equal(t, int32(20), maxDone.Load())
}

func TestSweepEmpty(t *testing.T) {
	points, err := Sweep(context.Background(), SweepOptions{Params: testParams})
	require.NoError(t, err)
	assert.Empty(t, points)
}

func TestSweepRejectsBadInput(t *testing.T) {
	_, err := Sweep(context.Background(), SweepOptions{Sizes: []int{100, 0}, Params: testParams})
	assert.Error(t, err)

	_, err = Sweep(context.Background(), SweepOptions{Sizes: []int{100}, Params: needle.Params{NeedleLen: 1, Spacing: 0}})
	assert.True(t, errors.Is(err, needle.ErrInvalidParams))
}

func TestSweepCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Sweep(ctx, SweepOptions{
		Sizes:      sweepSizes(100, 100000, 100),
		Params:     testParams,
		Estimator:  needle.DefaultEstimator(),
		HalfExtent: 10,
		Workers:    2,
	})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestGroupLabel(t *testing.T) {
	assert.Equal(t, "<1", GroupLabel(0))
	assert.Equal(t, "1", GroupLabel(1))
	assert.Equal(t, "9", GroupLabel(9))
}

func TestGroupSweep(t *testing.T) {
	points := []SweepPoint{
		{N: 25000, Estimate: 3.2},
		{N: 100, Estimate: 3.0},
		{N: 9900, Estimate: 3.1},
		{N: 10000, Estimate: 3.14},
		{N: 10100, Estimate: 3.15},
	}

	groups := GroupSweep(points, 10000)
	require.Len(t, groups, 3)

	assert.Equal(t, "<1", groups[0].Label)
	assert.Equal(t, []int{100, 9900}, groups[0].Sizes)
	assert.Equal(t, []float64{3.0, 3.1}, groups[0].Estimates)
	assert.Equal(t, 2, groups[0].Box.Count)

	assert.Equal(t, "1", groups[1].Label)
	assert.Equal(t, []int{10000, 10100}, groups[1].Sizes)

	assert.Equal(t, 2, groups[2].Index)
	assert.Equal(t, "2", groups[2].Label)

	rec := groups[0].Record()
	assert.Equal(t, 2, rec.Runs)
	assert.Equal(t, 100, rec.MinN)
	assert.Equal(t, 9900, rec.MaxN)
	assert.InDelta(t, 3.05, rec.Mean, 1e-12)
}

func TestGroupSweepSkipsEmptyBands(t *testing.T) {
	groups := GroupSweep([]SweepPoint{{N: 100, Estimate: 3}, {N: 35000, Estimate: 3.1}}, 10000)
	require.Len(t, groups, 2)
	assert.Equal(t, 0, groups[0].Index)
	assert.Equal(t, 3, groups[1].Index)
	assert.Len(t, Records(groups), 2)
}

func TestGroupSweepDegenerate(t *testing.T) {
	assert.Nil(t, GroupSweep(nil, 10000))
	assert.Nil(t, GroupSweep([]SweepPoint{{N: 1}}, 0))
}

func TestDefaultSweepGroups(t *testing.T) {
	// Default sweep: 100..99900 step 100, bands of 10000.
	var points []SweepPoint
	for _, n := range sweepSizes(100, 100000, 100) {
		points = append(points, SweepPoint{N: n, Estimate: math.Pi})
	}
	groups := GroupSweep(points, 10000)
	require.Len(t, groups, 10)
	assert.Equal(t, "<1", groups[0].Label)
	assert.Len(t, groups[0].Sizes, 99)
	for _, g := range groups[1:] {
		assert.Len(t, g.Sizes, 100)
	}
	assert.Equal(t, "9", groups[9].Label)
}

func TestSweepCancelledAfterLastJobKeepsResults(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sizes := sweepSizes(100, 600, 100)
	points, err := Sweep(ctx, SweepOptions{
		Sizes:      sizes,
		Params:     testParams,
		Estimator:  needle.DefaultEstimator(),
		HalfExtent: 10,
		Workers:    1,
		Progress: func(done, total int) {
			// With one worker every job has been handed out once the last completes
			if done == total {
				cancel()
			}
		},
	})
	require.NoError(t, err)
	require.Len(t, points, len(sizes))
	for i, p := range points {
		assert.Equal(t, sizes[i], p.N)
	}
}
