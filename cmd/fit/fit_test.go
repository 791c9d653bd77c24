package main

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pthm-cable/buffon/config"
	"github.com/pthm-cable/buffon/experiment"
	"github.com/pthm-cable/buffon/needle"
	"github.com/pthm-cable/buffon/store"
	"github.com/pthm-cable/buffon/telemetry"
)

var unitParams = needle.Params{NeedleLen: 1, Spacing: 2}

func TestFitMatchesPooledEstimate(t *testing.T) {
	points := []Point{
		{N: 100, Crossings: 30, Estimate: 100.0 / 30},
		{N: 200, Crossings: 66, Estimate: 200.0 / 66},
		{N: 300, Crossings: 97, Estimate: 300.0 / 97},
	}

	var evals []EvalRecord
	res, err := Fit(points, unitParams, 500, func(r EvalRecord) { evals = append(evals, r) })
	require.NoError(t, err)

	assert.Equal(t, 600, res.Trials)
	assert.Equal(t, 193, res.Crossings)
	assert.InDelta(t, 600.0/193, res.Pooled, 1e-12)
	// The trial-weighted minimiser of the rate error is the pooled rate
	assert.InDelta(t, res.Pooled, res.Fitted, 1e-4)
	assert.InDelta(t, math.Abs(res.Fitted-math.Pi), res.FittedError, 1e-12)
	assert.Equal(t, len(evals), res.Evaluations)
	assert.NotEmpty(t, evals)
	assert.InDelta(t, (100.0/30+200.0/66+300.0/97)/3, res.MeanEstimate, 1e-12)
	assert.Greater(t, res.StdEstimate, 0.0)
}

func TestFitSkipsUndefinedEstimatesInSpread(t *testing.T) {
	points := []Point{
		{N: 10, Crossings: 0, Estimate: math.NaN()},
		{N: 10, Crossings: 4, Estimate: 2.5},
	}
	res, err := Fit(points, unitParams, 200, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Points)
	assert.Equal(t, 2.5, res.MeanEstimate)
	assert.True(t, math.IsNaN(res.StdEstimate))
	assert.InDelta(t, 5.0, res.Pooled, 1e-12)
}

func TestFitErrors(t *testing.T) {
	_, err := Fit(nil, unitParams, 10, nil)
	assert.ErrorIs(t, err, needle.ErrNoOutcomes)

	_, err = Fit([]Point{{N: 10, Crossings: 0}}, unitParams, 10, nil)
	assert.ErrorIs(t, err, errNoCrossings)

	_, err = Fit([]Point{{N: 5, Crossings: 6}}, unitParams, 10, nil)
	assert.Error(t, err)

	_, err = Fit([]Point{{N: 10, Crossings: 3}}, needle.Params{NeedleLen: 0, Spacing: 1}, 10, nil)
	assert.Error(t, err)
}

func TestObjective(t *testing.T) {
	o := objective{points: []Point{{N: 4, Crossings: 2}}, k: 1}

	assert.Equal(t, 0.0, o.value(2))
	assert.InDelta(t, 4*0.25*0.25, o.value(4), 1e-12)
	assert.True(t, math.IsInf(o.value(0), 1))
	assert.True(t, math.IsInf(o.value(math.NaN()), 1))
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()

	cfg, err := config.Load("")
	require.NoError(t, err)
	cfg.Needle.Length = 0.75
	cfg.Grid.Spacing = 1.5
	require.NoError(t, cfg.WriteYAML(filepath.Join(dir, telemetry.ConfigFile)))

	sweep := []experiment.SweepPoint{
		{N: 10, Seed: 1, Crossings: 3, Rate: 0.3, Estimate: 2.0 * 0.75 / (1.5 * 0.3)},
		{N: 20, Seed: 2, Crossings: 0, Rate: 0, Estimate: math.NaN()},
	}
	f, err := os.Create(filepath.Join(dir, telemetry.SweepFile))
	require.NoError(t, err)
	require.NoError(t, gocsv.MarshalFile(&sweep, f))
	require.NoError(t, f.Close())

	points, params, err := loadDir(dir)
	require.NoError(t, err)
	assert.Equal(t, needle.Params{NeedleLen: 0.75, Spacing: 1.5}, params)
	require.Len(t, points, 2)
	assert.Equal(t, Point{N: 10, Crossings: 3, Estimate: sweep[0].Estimate}, points[0])
	assert.True(t, math.IsNaN(points[1].Estimate))
}

func TestLoadDirMissingSweep(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load("")
	require.NoError(t, err)
	require.NoError(t, cfg.WriteYAML(filepath.Join(dir, telemetry.ConfigFile)))

	_, _, err = loadDir(dir)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadRun(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "runs.db")

	st, err := store.Open(dbPath)
	require.NoError(t, err)
	run, err := st.SaveRun(ctx, store.Run{Seed: 9, NeedleLen: 1, Spacing: 2, Trials: 30, Crossings: 10, Estimate: 3})
	require.NoError(t, err)
	require.NoError(t, st.SaveSweep(ctx, run.ID, []store.SweepPoint{
		{N: 10, Seed: 1, Crossings: 3, Estimate: 10.0 / 3},
		{N: 20, Seed: 2, Crossings: 7, Estimate: 20.0 / 7},
	}))
	require.NoError(t, st.Close())

	points, params, id, err := loadRun(ctx, dbPath, "latest")
	require.NoError(t, err)
	assert.Equal(t, run.ID, id)
	assert.Equal(t, unitParams, params)
	assert.Equal(t, []Point{
		{N: 10, Crossings: 3, Estimate: 10.0 / 3},
		{N: 20, Crossings: 7, Estimate: 20.0 / 7},
	}, points)

	_, _, _, err = loadRun(ctx, dbPath, "missing")
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func TestFormatDuration(t *testing.T) {
	assert.Equal(t, "1m02.345s", formatDuration(62345*time.Millisecond))
	assert.Equal(t, "0m00.000s", formatDuration(0))
}
