package store

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "buffon.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestOpenAppliesMigrations(t *testing.T) {
	s := openTestStore(t)

	version, dirty, err := s.MigrateVersion()
	require.NoError(t, err)
	assert.Equal(t, uint(1), version)
	assert.False(t, dirty)

	// A second run is a no-op.
	require.NoError(t, s.MigrateUp())
}

func TestReopenKeepsData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buffon.db")
	ctx := context.Background()

	s, err := Open(path)
	require.NoError(t, err)
	run, err := s.SaveRun(ctx, Run{Seed: 7, NeedleLen: 0.5, Spacing: 1, Trials: 10, Crossings: 3, Estimate: 3.33})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()

	got, err := s.GetRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(7), got.Seed)
}

func TestSaveAndGetRun(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	created := time.Date(2024, 3, 14, 15, 9, 26, 0, time.UTC)

	saved, err := s.SaveRun(ctx, Run{
		Seed:      54654324,
		NeedleLen: 0.5,
		Spacing:   1,
		Trials:    1000,
		Crossings: 318,
		Estimate:  3.1446,
		CreatedAt: created,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, saved.ID)

	got, err := s.GetRun(ctx, saved.ID)
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, int64(54654324), got.Seed)
	assert.Equal(t, 0.5, got.NeedleLen)
	assert.Equal(t, 1.0, got.Spacing)
	assert.Equal(t, 1000, got.Trials)
	assert.Equal(t, 318, got.Crossings)
	assert.InDelta(t, 3.1446, got.Estimate, 1e-12)
	assert.True(t, created.Equal(got.CreatedAt))
}

func TestSaveRunNaNEstimate(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	saved, err := s.SaveRun(ctx, Run{Seed: 1, NeedleLen: 0.5, Spacing: 1, Estimate: math.NaN()})
	require.NoError(t, err)

	got, err := s.GetRun(ctx, saved.ID)
	require.NoError(t, err)
	assert.True(t, math.IsNaN(got.Estimate))
}

func TestGetRunNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.GetRun(context.Background(), "missing")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestListRunsNewestFirst(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		_, err := s.SaveRun(ctx, Run{Seed: int64(i), NeedleLen: 0.5, Spacing: 1, CreatedAt: base.Add(time.Duration(i) * time.Hour)})
		require.NoError(t, err)
	}

	runs, err := s.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 3)
	assert.Equal(t, []int64{2, 1, 0}, []int64{runs[0].Seed, runs[1].Seed, runs[2].Seed})
}

func TestSaveSweep(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, err := s.SaveRun(ctx, Run{Seed: 1, NeedleLen: 0.5, Spacing: 1})
	require.NoError(t, err)

	points := []SweepPoint{
		{N: 200, Seed: 11, Crossings: 60, Estimate: 3.33},
		{N: 100, Seed: 10, Crossings: 0, Estimate: math.NaN()},
	}
	require.NoError(t, s.SaveSweep(ctx, run.ID, points))

	got, err := s.SweepPoints(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, 100, got[0].N)
	assert.True(t, math.IsNaN(got[0].Estimate))
	assert.Equal(t, 200, got[1].N)
	assert.Equal(t, int64(11), got[1].Seed)
	assert.InDelta(t, 3.33, got[1].Estimate, 1e-12)
}

func TestSaveSweepDuplicateRollsBack(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	run, err := s.SaveRun(ctx, Run{Seed: 1, NeedleLen: 0.5, Spacing: 1})
	require.NoError(t, err)

	err = s.SaveSweep(ctx, run.ID, []SweepPoint{{N: 100}, {N: 100}})
	require.Error(t, err)

	got, err := s.SweepPoints(ctx, run.ID)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSaveSweepUnknownRun(t *testing.T) {
	s := openTestStore(t)

	err := s.SaveSweep(context.Background(), "nope", []SweepPoint{{N: 100}})
	assert.Error(t, err)
}
