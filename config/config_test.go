package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pthm-cable/buffon/needle"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}

	if cfg.Needle.Length != 0.5 || cfg.Grid.Spacing != 1.0 {
		t.Errorf("unexpected geometry: length=%v spacing=%v", cfg.Needle.Length, cfg.Grid.Spacing)
	}
	if cfg.Experiment.Seed != 54654324 {
		t.Errorf("seed = %d, want 54654324", cfg.Experiment.Seed)
	}
	if cfg.Estimator.ZeroRateFloor != needle.DefaultZeroRateFloor {
		t.Errorf("zero_rate_floor = %v, want %v", cfg.Estimator.ZeroRateFloor, needle.DefaultZeroRateFloor)
	}

	want := needle.Params{NeedleLen: 0.5, Spacing: 1.0}
	if cfg.Derived.Params != want {
		t.Errorf("Derived.Params = %+v, want %+v", cfg.Derived.Params, want)
	}

	sizes := cfg.Derived.SweepSizes
	if len(sizes) != 999 {
		t.Fatalf("len(SweepSizes) = %d, want 999", len(sizes))
	}
	if sizes[0] != 100 || sizes[len(sizes)-1] != 99900 {
		t.Errorf("sweep range = [%d, %d], want [100, 99900]", sizes[0], sizes[len(sizes)-1])
	}
}

func TestLoadOverridesOnlyGivenKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("needle:\n  length: 0.8\nexperiment:\n  sweep:\n    stop: 1000\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Needle.Length != 0.8 {
		t.Errorf("length = %v, want 0.8", cfg.Needle.Length)
	}
	if cfg.Grid.Spacing != 1.0 {
		t.Errorf("spacing = %v, want default 1.0", cfg.Grid.Spacing)
	}
	if cfg.Experiment.Sweep.Step != 100 {
		t.Errorf("step = %d, want default 100", cfg.Experiment.Sweep.Step)
	}
	if got := len(cfg.Derived.SweepSizes); got != 9 {
		t.Errorf("len(SweepSizes) = %d, want 9", got)
	}
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"zero spacing", "grid:\n  spacing: 0\n"},
		{"negative length", "needle:\n  length: -1\n"},
		{"zero step", "experiment:\n  sweep:\n    step: 0\n"},
		{"stop below start", "experiment:\n  sweep:\n    start: 500\n    stop: 100\n"},
		{"bad floor", "estimator:\n  zero_rate_floor: 2\n"},
		{"inverted y range", "plot:\n  convergence_y_min: 5\n  convergence_y_max: 1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.yaml), 0644); err != nil {
				t.Fatal(err)
			}
			if _, err := Load(path); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestWriteYAMLRoundTrip(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Needle.Length = 0.75
	cfg.Experiment.Seed = 7

	path := filepath.Join(t.TempDir(), "snapshot.yaml")
	if err := cfg.WriteYAML(path); err != nil {
		t.Fatalf("WriteYAML: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load snapshot: %v", err)
	}
	if loaded.Needle.Length != 0.75 || loaded.Experiment.Seed != 7 {
		t.Errorf("snapshot lost overrides: length=%v seed=%d", loaded.Needle.Length, loaded.Experiment.Seed)
	}
}

func TestRecompute(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	cfg.Grid.Spacing = 2
	if err := cfg.Recompute(); err != nil {
		t.Fatalf("Recompute: %v", err)
	}
	if cfg.Derived.Params.Spacing != 2 {
		t.Errorf("Derived spacing = %v, want 2", cfg.Derived.Params.Spacing)
	}

	cfg.Grid.Spacing = -1
	if err := cfg.Recompute(); err == nil {
		t.Error("expected error for negative spacing")
	}
}

func TestCfgPanicsBeforeInit(t *testing.T) {
	saved := global
	global = nil
	defer func() {
		global = saved
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	Cfg()
}

func TestRecomputeDoesNotReuseSweepSizes(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	old := cfg.Derived.SweepSizes
	want := append([]int(nil), old...)

	cfg.Experiment.Sweep.Start = 7
	cfg.Experiment.Sweep.Stop = 20
	cfg.Experiment.Sweep.Step = 5
	if err := cfg.Recompute(); err != nil {
		t.Fatalf("Recompute: %v", err)
	}

	for i := range want {
		if old[i] != want[i] {
			t.Fatalf("previous SweepSizes changed at %d: %d, want %d", i, old[i], want[i])
		}
	}
	got := cfg.Derived.SweepSizes
	if len(got) != 3 || got[0] != 7 || got[1] != 12 || got[2] != 17 {
		t.Errorf("SweepSizes = %v, want [7 12 17]", got)
	}
}
