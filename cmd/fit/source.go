package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/buffon/config"
	"github.com/pthm-cable/buffon/needle"
	"github.com/pthm-cable/buffon/store"
	"github.com/pthm-cable/buffon/telemetry"
)

// loadDir reads the sweep of a headless output directory along with the
// geometry from its config snapshot.
func loadDir(dir string) ([]Point, needle.Params, error) {
	cfg, err := config.Load(filepath.Join(dir, telemetry.ConfigFile))
	if err != nil {
		return nil, needle.Params{}, fmt.Errorf("loading config snapshot: %w", err)
	}

	f, err := os.Open(filepath.Join(dir, telemetry.SweepFile))
	if err != nil {
		return nil, needle.Params{}, err
	}
	defer f.Close()

	var points []Point
	if err := gocsv.UnmarshalFile(f, &points); err != nil {
		return nil, needle.Params{}, fmt.Errorf("reading %s: %w", telemetry.SweepFile, err)
	}
	return points, cfg.Derived.Params, nil
}

// loadRun reads a stored run's sweep. runID "latest" picks the newest run.
func loadRun(ctx context.Context, dbPath, runID string) ([]Point, needle.Params, string, error) {
	st, err := store.Open(dbPath)
	if err != nil {
		return nil, needle.Params{}, "", err
	}
	defer st.Close()

	var run store.Run
	if runID == "" || runID == "latest" {
		runs, err := st.ListRuns(ctx)
		if err != nil {
			return nil, needle.Params{}, "", err
		}
		if len(runs) == 0 {
			return nil, needle.Params{}, "", fmt.Errorf("%w: database has no runs", store.ErrNotFound)
		}
		run = runs[0]
	} else if run, err = st.GetRun(ctx, runID); err != nil {
		return nil, needle.Params{}, "", err
	}

	stored, err := st.SweepPoints(ctx, run.ID)
	if err != nil {
		return nil, needle.Params{}, "", err
	}
	points := make([]Point, len(stored))
	for i, sp := range stored {
		points[i] = Point{N: sp.N, Crossings: sp.Crossings, Estimate: sp.Estimate}
	}
	return points, needle.Params{NeedleLen: run.NeedleLen, Spacing: run.Spacing}, run.ID, nil
}
