// Package config provides configuration loading and access for the simulation.
package config

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/buffon/needle"
)

//go:embed defaults.yaml
var defaultsYAML []byte

// Config holds all simulation configuration parameters.
type Config struct {
	Screen     ScreenConfig     `yaml:"screen"`
	Grid       GridConfig       `yaml:"grid"`
	Needle     NeedleConfig     `yaml:"needle"`
	Estimator  needle.Estimator `yaml:"estimator"`
	Experiment ExperimentConfig `yaml:"experiment"`
	Viewer     ViewerConfig     `yaml:"viewer"`
	Telemetry  TelemetryConfig  `yaml:"telemetry"`
	Plot       PlotConfig       `yaml:"plot"`
	Output     OutputConfig     `yaml:"output"`

	// Derived values computed after loading
	Derived DerivedConfig `yaml:"-"`
}

// ScreenConfig holds display settings for the interactive viewer.
type ScreenConfig struct {
	Width     int `yaml:"width"`
	Height    int `yaml:"height"`
	TargetFPS int `yaml:"target_fps"`
}

// GridConfig describes the ruled plane.
type GridConfig struct {
	Spacing    float64 `yaml:"spacing"`     // Distance between adjacent lines
	HalfExtent float64 `yaml:"half_extent"` // Needle starts fall in [-h, h) on both axes
}

// NeedleConfig holds needle parameters.
type NeedleConfig struct {
	Length float64 `yaml:"length"`
}

// ExperimentConfig holds the headless experiment parameters.
type ExperimentConfig struct {
	Seed               int64       `yaml:"seed"`
	ScatterNeedles     int         `yaml:"scatter_needles"`     // Needles drawn in the scatter plot
	ConvergenceNeedles int         `yaml:"convergence_needles"` // Needles behind the cumulative estimate
	Sweep              SweepConfig `yaml:"sweep"`
}

// SweepConfig describes the range of sample sizes estimated independently.
type SweepConfig struct {
	Start      int `yaml:"start"`
	Stop       int `yaml:"stop"` // Exclusive
	Step       int `yaml:"step"`
	GroupWidth int `yaml:"group_width"` // Sample sizes per boxplot group
	Workers    int `yaml:"workers"`     // 0 = GOMAXPROCS
}

// ViewerConfig holds interactive viewer parameters.
type ViewerConfig struct {
	DropsPerFrame int `yaml:"drops_per_frame"`
	MaxNeedles    int `yaml:"max_needles"` // Oldest needles are removed beyond this
}

// TelemetryConfig holds telemetry parameters.
type TelemetryConfig struct {
	StatsWindow         int `yaml:"stats_window"` // Trials per stats window
	PerfCollectorWindow int `yaml:"perf_collector_window"`
}

// PlotConfig holds chart layout parameters.
type PlotConfig struct {
	WidthIn         float64 `yaml:"width_in"`
	HeightIn        float64 `yaml:"height_in"`
	ConvergenceYMin float64 `yaml:"convergence_y_min"`
	ConvergenceYMax float64 `yaml:"convergence_y_max"`
}

// OutputConfig holds output destinations. Empty values disable the output.
type OutputConfig struct {
	Dir    string `yaml:"dir"`
	DBPath string `yaml:"db_path"`
	HTML   bool   `yaml:"html"`
}

// DerivedConfig holds computed values derived from the loaded config.
type DerivedConfig struct {
	Params     needle.Params // Needle length and grid spacing
	SweepSizes []int         // Sample sizes of the sweep, ascending
}

// global holds the loaded configuration.
var global *Config

// Init loads configuration from the given path, or uses embedded defaults if path is empty.
// Must be called before Cfg().
func Init(path string) error {
	cfg, err := Load(path)
	if err != nil {
		return err
	}
	global = cfg
	return nil
}

// MustInit is like Init but panics on error.
func MustInit(path string) {
	if err := Init(path); err != nil {
		panic(fmt.Sprintf("config: failed to initialize: %v", err))
	}
}

// Cfg returns the global configuration. Panics if Init was not called.
func Cfg() *Config {
	if global == nil {
		panic("config: Cfg() called before Init()")
	}
	return global
}

// Load loads configuration from a YAML file, merging with embedded defaults.
// If path is empty, only embedded defaults are used.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if err := yaml.Unmarshal(defaultsYAML, cfg); err != nil {
		return nil, fmt.Errorf("parsing embedded defaults: %w", err)
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		// Unmarshal into same struct - only overwrites fields present in file
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	cfg.computeDerived()

	return cfg, nil
}

// Validate rejects configurations that cannot produce a meaningful run.
func (c *Config) Validate() error {
	params := needle.Params{NeedleLen: c.Needle.Length, Spacing: c.Grid.Spacing}
	if err := params.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.Grid.HalfExtent <= 0 {
		return fmt.Errorf("config: grid.half_extent must be positive, got %v", c.Grid.HalfExtent)
	}
	if c.Estimator.ZeroRateFloor < 0 || c.Estimator.ZeroRateFloor > 1 {
		return fmt.Errorf("config: estimator.zero_rate_floor must be in [0, 1], got %v", c.Estimator.ZeroRateFloor)
	}
	if c.Experiment.ScatterNeedles < 0 || c.Experiment.ConvergenceNeedles < 0 {
		return fmt.Errorf("config: experiment needle counts must not be negative")
	}

	sw := c.Experiment.Sweep
	if sw.Step <= 0 {
		return fmt.Errorf("config: experiment.sweep.step must be positive, got %d", sw.Step)
	}
	if sw.Start <= 0 {
		return fmt.Errorf("config: experiment.sweep.start must be positive, got %d", sw.Start)
	}
	if sw.Stop < sw.Start {
		return fmt.Errorf("config: experiment.sweep.stop (%d) is below start (%d)", sw.Stop, sw.Start)
	}
	if sw.GroupWidth <= 0 {
		return fmt.Errorf("config: experiment.sweep.group_width must be positive, got %d", sw.GroupWidth)
	}
	if sw.Workers < 0 {
		return fmt.Errorf("config: experiment.sweep.workers must not be negative, got %d", sw.Workers)
	}

	if c.Viewer.DropsPerFrame < 0 || c.Viewer.MaxNeedles < 0 {
		return fmt.Errorf("config: viewer values must not be negative")
	}
	if c.Plot.ConvergenceYMax <= c.Plot.ConvergenceYMin {
		return fmt.Errorf("config: plot.convergence_y_max must exceed convergence_y_min")
	}
	return nil
}

// computeDerived calculates values derived from loaded config.
func (c *Config) computeDerived() {
	c.Derived.Params = needle.Params{NeedleLen: c.Needle.Length, Spacing: c.Grid.Spacing}

	sw := c.Experiment.Sweep
	c.Derived.SweepSizes = make([]int, 0, max(0, (sw.Stop-sw.Start+sw.Step-1)/sw.Step))
	for n := sw.Start; n < sw.Stop; n += sw.Step {
		c.Derived.SweepSizes = append(c.Derived.SweepSizes, n)
	}

	if c.Telemetry.StatsWindow < 1 {
		c.Telemetry.StatsWindow = 1
	}
	if c.Telemetry.PerfCollectorWindow < 1 {
		c.Telemetry.PerfCollectorWindow = 60
	}
}

// Recompute refreshes derived values after fields were changed in code, such
// as CLI overrides.
func (c *Config) Recompute() error {
	if err := c.Validate(); err != nil {
		return err
	}
	c.computeDerived()
	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}
