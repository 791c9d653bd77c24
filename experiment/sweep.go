package experiment

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sync"

	"github.com/pthm-cable/buffon/needle"
)

// SweepPoint is the outcome of one independent run of N needles.
type SweepPoint struct {
	N         int     `csv:"n"`
	Seed      int64   `csv:"seed"`
	Crossings int     `csv:"crossings"`
	Rate      float64 `csv:"rate"`
	Estimate  float64 `csv:"estimate"`
}

// SweepOptions configures a sweep.
type SweepOptions struct {
	Sizes      []int
	Params     needle.Params
	Estimator  needle.Estimator
	Seed       int64
	HalfExtent float64
	Workers    int // 0 = GOMAXPROCS

	// Progress, if set, is called after each finished run with the number
	// of runs done so far. It may be called from several goroutines.
	Progress func(done, total int)
}

// RunSeed derives the seed of the i-th run of a sweep from the base seed.
// Runs get well separated streams whatever order they execute in.
func RunSeed(base int64, i int) int64 {
	z := uint64(base) + uint64(i+1)*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	z ^= z >> 31
	return int64(z)
}

// sweepJob is a single run for a worker.
type sweepJob struct {
	index int
	n     int
}

// Sweep runs one independent experiment per sample size. Each run owns a
// generator seeded with RunSeed(opts.Seed, i), so results are the same for
// any number of workers. Points are returned in the order of opts.Sizes.
func Sweep(ctx context.Context, opts SweepOptions) ([]SweepPoint, error) {
	if err := opts.Params.Validate(); err != nil {
		return nil, err
	}
	for _, n := range opts.Sizes {
		if n <= 0 {
			return nil, fmt.Errorf("experiment: sweep sample size must be positive, got %d", n)
		}
	}

	numWorkers := opts.Workers
	if numWorkers <= 0 {
		numWorkers = runtime.GOMAXPROCS(0)
	}
	if numWorkers > len(opts.Sizes) {
		numWorkers = len(opts.Sizes)
	}

	points := make([]SweepPoint, len(opts.Sizes))
	if len(opts.Sizes) == 0 {
		return points, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan sweepJob)
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
		done     int
	)

	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
		cancel()
	}

	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for job := range jobs {
				pt, err := runOne(opts, job)
				if err != nil {
					fail(err)
					continue
				}
				points[job.index] = pt

				if opts.Progress != nil {
					mu.Lock()
					done++
					d := done
					mu.Unlock()
					opts.Progress(d, len(opts.Sizes))
				}
			}
		}()
	}

	var interrupted error
feed:
	for i, n := range opts.Sizes {
		select {
		case jobs <- sweepJob{index: i, n: n}:
		case <-ctx.Done():
			interrupted = ctx.Err()
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if interrupted != nil {
		// Parent cancellation; our own cancel only runs on failure or return.
		return nil, fmt.Errorf("experiment: sweep interrupted: %w", interrupted)
	}
	return points, nil
}

func runOne(opts SweepOptions, job sweepJob) (SweepPoint, error) {
	seed := RunSeed(opts.Seed, job.index)
	sampler := needle.NewSeededSampler(seed, opts.HalfExtent)
	tally, err := sampler.SampleTally(job.n, opts.Params)
	if err != nil {
		return SweepPoint{}, err
	}
	pt := SweepPoint{
		N:         job.n,
		Seed:      seed,
		Crossings: tally.Crossings,
		Rate:      tally.Rate(),
		Estimate:  math.NaN(),
	}
	if est, err := tally.Estimate(opts.Params, opts.Estimator); err == nil {
		pt.Estimate = est
	}
	return pt, nil
}
