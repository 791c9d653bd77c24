package game

import (
	"github.com/pthm-cable/buffon/config"
	"github.com/pthm-cable/buffon/telemetry"
)

// Options holds per-session settings that do not belong in the config file.
type Options struct {
	Seed          int64  // Sampler seed; 0 uses experiment.seed from the config
	LogStats      bool   // Log stats windows and perf via slog
	OutputDir     string // Directory for telemetry.csv and perf.csv (empty = disabled)
	StatsCallback func(telemetry.WindowStats)
}

// OptionsFromConfig builds options from the loaded configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Seed:      cfg.Experiment.Seed,
		OutputDir: cfg.Output.Dir,
	}
}
