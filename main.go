package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/buffon/config"
	"github.com/pthm-cable/buffon/experiment"
	"github.com/pthm-cable/buffon/game"
	"github.com/pthm-cable/buffon/store"
	"github.com/pthm-cable/buffon/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	headless := flag.Bool("headless", false, "Run the experiments without graphics and write charts")
	logStats := flag.Bool("log-stats", false, "Output stats via slog")
	seed := flag.Int64("seed", 0, "RNG seed (0 = use config)")
	outputDir := flag.String("output-dir", "", "Output directory for CSV logs, charts and config snapshot")
	dbPath := flag.String("db", "", "SQLite database for run history (empty = use config)")
	html := flag.Bool("html", true, "Write the interactive HTML report in headless mode")
	workers := flag.Int("workers", -1, "Sweep workers (0 = GOMAXPROCS, -1 = use config)")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	// Initialize config before anything else
	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *seed != 0 {
		cfg.Experiment.Seed = *seed
	}
	if *outputDir != "" {
		cfg.Output.Dir = *outputDir
	}
	if *dbPath != "" {
		cfg.Output.DBPath = *dbPath
	}
	if *workers >= 0 {
		cfg.Experiment.Sweep.Workers = *workers
	}
	flag.Visit(func(f *flag.Flag) {
		if f.Name == "html" {
			cfg.Output.HTML = *html
		}
	})
	if err := cfg.Recompute(); err != nil {
		slog.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	if *headless {
		if err := runHeadless(cfg, *logStats); err != nil {
			slog.Error("run failed", "error", err)
			os.Exit(1)
		}
		return
	}

	if err := runViewer(cfg, *logStats); err != nil {
		slog.Error("viewer failed", "error", err)
		os.Exit(1)
	}
}

// runHeadless runs the scatter, convergence and sweep experiments once.
func runHeadless(cfg *config.Config, logStats bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out, err := telemetry.NewOutputManager(cfg.Output.Dir)
	if err != nil {
		return err
	}
	defer func() {
		if err := out.Close(); err != nil {
			slog.Error("failed to close output", "error", err)
		}
	}()

	// A nil *store.Store inside the interface would not compare equal to nil
	var runStore experiment.RunStore
	if cfg.Output.DBPath != "" {
		st, err := store.Open(cfg.Output.DBPath)
		if err != nil {
			return err
		}
		defer st.Close()
		runStore = st
	}

	slog.Info("starting headless run",
		"seed", cfg.Experiment.Seed,
		"needle_len", cfg.Needle.Length,
		"spacing", cfg.Grid.Spacing,
		"output_dir", cfg.Output.Dir,
		"db", cfg.Output.DBPath,
	)

	runner := experiment.NewRunner(cfg, out, runStore, experiment.Options{
		LogStats: logStats,
		HTML:     cfg.Output.HTML,
	})
	_, err = runner.Run(ctx)
	return err
}

// runViewer opens the window and drops needles until it is closed.
func runViewer(cfg *config.Config, logStats bool) error {
	rl.SetConfigFlags(rl.FlagWindowResizable | rl.FlagMsaa4xHint)
	rl.InitWindow(int32(cfg.Screen.Width), int32(cfg.Screen.Height), game.Title)
	defer rl.CloseWindow()

	rl.SetTargetFPS(int32(cfg.Screen.TargetFPS))

	opts := game.OptionsFromConfig(cfg)
	opts.LogStats = logStats

	g, err := game.NewGame(cfg, opts)
	if err != nil {
		return err
	}
	defer g.Unload()

	slog.Info("starting viewer", "seed", g.Seed(), "drops_per_frame", g.DropsPerFrame())

	for !rl.WindowShouldClose() {
		g.Update()
		g.Draw()
	}
	return nil
}
