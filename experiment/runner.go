package experiment

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"github.com/pthm-cable/buffon/charts"
	"github.com/pthm-cable/buffon/config"
	"github.com/pthm-cable/buffon/needle"
	"github.com/pthm-cable/buffon/store"
	"github.com/pthm-cable/buffon/telemetry"
)

// Chart file names written next to the CSV output.
const (
	FigureFile          = "figure.png"
	NeedlesPlotFile     = "needles.png"
	ConvergencePlotFile = "convergence.png"
	GroupsPlotFile      = "groups.png"
	ReportFile          = "report.html"
)

// RunStore persists finished runs. *store.Store implements it.
type RunStore interface {
	SaveRun(ctx context.Context, run store.Run) (store.Run, error)
	SaveSweep(ctx context.Context, runID string, points []store.SweepPoint) error
}

// Options configures a Runner.
type Options struct {
	LogStats bool // Log window and perf stats via slog
	HTML     bool // Write the go-echarts report alongside the PNGs

	// StatsCallback, if set, receives every flushed stats window.
	StatsCallback func(telemetry.WindowStats)
}

// Report is everything one headless run produced.
type Report struct {
	RunID       string
	Seed        int64
	Params      needle.Params
	Scatter     ScatterResult
	Convergence []ConvergencePoint
	Sweep       []SweepPoint
	Groups      []Group
	Duration    time.Duration
}

// Estimate returns the estimate of the scatter run.
func (r *Report) Estimate() float64 {
	return r.Scatter.Estimate
}

// Runner executes the scatter, convergence and sweep experiments described by
// a config and routes their results to telemetry, charts and the store.
type Runner struct {
	cfg   *config.Config
	opts  Options
	out   *telemetry.OutputManager
	store RunStore

	collector *telemetry.Collector
	perf      *telemetry.PerfCollector
}

// NewRunner creates a runner. out and st may be nil to disable file output
// and persistence.
func NewRunner(cfg *config.Config, out *telemetry.OutputManager, st RunStore, opts Options) *Runner {
	return &Runner{
		cfg:       cfg,
		opts:      opts,
		out:       out,
		store:     st,
		collector: telemetry.NewCollector(cfg.Telemetry.StatsWindow, cfg.Derived.Params, cfg.Estimator),
		perf:      telemetry.NewPerfCollector(cfg.Telemetry.PerfCollectorWindow),
	}
}

// Run executes all experiments once.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	cfg := r.cfg
	params := cfg.Derived.Params
	start := time.Now()

	report := &Report{Seed: cfg.Experiment.Seed, Params: params}

	r.perf.StartStep()

	// Scatter and convergence share one run from the base seed.
	r.perf.StartPhase(telemetry.PhaseDrop)
	sampler := needle.NewSeededSampler(cfg.Experiment.Seed, cfg.Grid.HalfExtent)
	n := max(cfg.Experiment.ScatterNeedles, cfg.Experiment.ConvergenceNeedles)
	scatter, err := Scatter(sampler, n, params, cfg.Estimator)
	if err != nil {
		return nil, fmt.Errorf("scatter: %w", err)
	}
	report.Scatter = scatter

	r.perf.StartPhase(telemetry.PhaseTelemetry)
	r.recordOutcomes(scatter.Outcomes)

	r.perf.StartPhase(telemetry.PhaseEstimate)
	if m := cfg.Experiment.ConvergenceNeedles; m > 0 {
		report.Convergence, err = Convergence(scatter.Outcomes[:m], params, cfg.Estimator)
		if err != nil {
			return nil, fmt.Errorf("convergence: %w", err)
		}
	}

	r.perf.StartPhase(telemetry.PhaseSweep)
	sizes := cfg.Derived.SweepSizes
	slog.Info("starting sweep", "runs", len(sizes), "workers", cfg.Experiment.Sweep.Workers)
	report.Sweep, err = Sweep(ctx, SweepOptions{
		Sizes:      sizes,
		Params:     params,
		Estimator:  cfg.Estimator,
		Seed:       cfg.Experiment.Seed,
		HalfExtent: cfg.Grid.HalfExtent,
		Workers:    cfg.Experiment.Sweep.Workers,
		Progress:   r.sweepProgress(),
	})
	if err != nil {
		return nil, fmt.Errorf("sweep: %w", err)
	}
	report.Groups = GroupSweep(report.Sweep, cfg.Experiment.Sweep.GroupWidth)

	r.perf.StartPhase(telemetry.PhaseStore)
	if err := r.save(ctx, report); err != nil {
		return nil, err
	}

	r.perf.StartPhase(telemetry.PhaseCharts)
	if err := r.writeCharts(report); err != nil {
		return nil, err
	}

	r.perf.EndStep()
	report.Duration = time.Since(start)

	if err := r.writeRecords(report); err != nil {
		return nil, err
	}

	perfStats := r.perf.Stats()
	if r.opts.LogStats {
		perfStats.LogStats()
	}
	if err := r.out.WritePerf(perfStats, 0); err != nil {
		slog.Error("failed to write perf", "error", err)
	}

	attrs := []slog.Attr{
		slog.String("run_id", report.RunID),
		slog.Int64("seed", report.Seed),
		slog.Int("needles", scatter.Tally.Trials),
		slog.Int("crossings", scatter.Tally.Crossings),
		slog.Int("sweep_runs", len(report.Sweep)),
		slog.Int("groups", len(report.Groups)),
		slog.Duration("duration", report.Duration.Round(time.Millisecond)),
	}
	attrs = telemetry.AppendFinite(attrs, "estimate", report.Estimate())
	attrs = telemetry.AppendFinite(attrs, "abs_error", math.Abs(report.Estimate()-math.Pi))
	slog.LogAttrs(ctx, slog.LevelInfo, "run complete", attrs...)
	return report, nil
}

// recordOutcomes feeds the collector and flushes full windows, then the
// partial last window.
func (r *Runner) recordOutcomes(outcomes []needle.Outcome) {
	for _, o := range outcomes {
		r.collector.Record(o)
		if r.collector.ShouldFlush() {
			r.flushTelemetry()
		}
	}
	if r.collector.Pending() > 0 {
		r.flushTelemetry()
	}
}

func (r *Runner) flushTelemetry() {
	stats := r.collector.Flush()

	if r.opts.StatsCallback != nil {
		r.opts.StatsCallback(stats)
	}
	if r.opts.LogStats {
		stats.LogStats()
	}
	if err := r.out.WriteTelemetry(stats); err != nil {
		slog.Error("failed to write telemetry", "error", err)
	}
}

// sweepProgress logs roughly every tenth of the sweep.
func (r *Runner) sweepProgress() func(done, total int) {
	if !r.opts.LogStats {
		return nil
	}
	return func(done, total int) {
		step := max(total/10, 1)
		if done%step == 0 || done == total {
			slog.Info("sweep progress", "done", done, "total", total)
		}
	}
}

func (r *Runner) save(ctx context.Context, report *Report) error {
	if r.store == nil {
		return nil
	}

	run, err := r.store.SaveRun(ctx, store.Run{
		Seed:      report.Seed,
		NeedleLen: report.Params.NeedleLen,
		Spacing:   report.Params.Spacing,
		Trials:    report.Scatter.Tally.Trials,
		Crossings: report.Scatter.Tally.Crossings,
		Estimate:  report.Scatter.Estimate,
	})
	if err != nil {
		return fmt.Errorf("saving run: %w", err)
	}
	report.RunID = run.ID

	points := make([]store.SweepPoint, len(report.Sweep))
	for i, p := range report.Sweep {
		points[i] = store.SweepPoint{N: p.N, Seed: p.Seed, Crossings: p.Crossings, Estimate: p.Estimate}
	}
	if err := r.store.SaveSweep(ctx, run.ID, points); err != nil {
		return fmt.Errorf("saving sweep: %w", err)
	}
	slog.Info("run stored", "run_id", run.ID, "sweep_points", len(points))
	return nil
}

func (r *Runner) writeRecords(report *Report) error {
	if r.out == nil {
		return nil
	}
	if err := r.out.WriteConfig(r.cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	if len(report.Convergence) > 0 {
		if err := r.out.WriteRecords(telemetry.ConvergenceFile, report.Convergence); err != nil {
			return err
		}
	}
	if len(report.Sweep) > 0 {
		if err := r.out.WriteRecords(telemetry.SweepFile, report.Sweep); err != nil {
			return err
		}
	}
	if len(report.Groups) > 0 {
		if err := r.out.WriteRecords(telemetry.GroupsFile, Records(report.Groups)); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) writeCharts(report *Report) error {
	if r.out == nil {
		return nil
	}
	cfg := r.cfg
	w, h := cfg.Plot.WidthIn, cfg.Plot.HeightIn
	needles, outcomes := report.Scatter.Head(cfg.Experiment.ScatterNeedles)
	estimates := Estimates(report.Convergence)
	groups := boxGroups(report.Groups)

	needlePlot, err := charts.NeedlePlot(needles, outcomes, report.Params, cfg.Grid.HalfExtent)
	if err != nil {
		return fmt.Errorf("needle plot: %w", err)
	}
	if err := charts.SavePNG(needlePlot, w/2, h/2, r.out.Path(NeedlesPlotFile)); err != nil {
		return err
	}

	convergencePlot, err := charts.ConvergencePlot(estimates, cfg.Plot.ConvergenceYMin, cfg.Plot.ConvergenceYMax)
	switch {
	case errors.Is(err, charts.ErrNoData):
	case err != nil:
		return fmt.Errorf("convergence plot: %w", err)
	default:
		if err := charts.SavePNG(convergencePlot, w/2, h/2, r.out.Path(ConvergencePlotFile)); err != nil {
			return err
		}
	}

	groupsPlot, err := charts.BoxPlot(groups)
	switch {
	case errors.Is(err, charts.ErrNoData):
	case err != nil:
		return fmt.Errorf("group plot: %w", err)
	default:
		if err := charts.SavePNG(groupsPlot, w, h/2, r.out.Path(GroupsPlotFile)); err != nil {
			return err
		}
	}

	if err := charts.SaveFigure(needlePlot, convergencePlot, groupsPlot, w, h, r.out.Path(FigureFile)); err != nil {
		return err
	}

	if r.opts.HTML {
		err := charts.SaveHTMLReport(r.out.Path(ReportFile), charts.Report{
			Subtitle:    fmt.Sprintf("seed=%d L=%g S=%g", report.Seed, report.Params.NeedleLen, report.Params.Spacing),
			Needles:     needles,
			Outcomes:    outcomes,
			Convergence: estimates,
			Groups:      groups,
		})
		if err != nil {
			return err
		}
	}
	slog.Info("charts written", "dir", r.out.Dir(), "html", r.opts.HTML)
	return nil
}

func boxGroups(groups []Group) []charts.BoxGroup {
	out := make([]charts.BoxGroup, len(groups))
	for i, g := range groups {
		out[i] = charts.BoxGroup{Label: g.Label, Values: g.Estimates}
	}
	return out
}
