// Package main fits π to the sample-size sweep of a finished headless run.
// The sweep is read either from an output directory or from the run
// history database.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/gocarina/gocsv"
	"gopkg.in/yaml.v3"

	"github.com/pthm-cable/buffon/needle"
)

// formatDuration formats a duration as minutes and seconds, e.g. 1m02.345s.
func formatDuration(d time.Duration) string {
	m := d / time.Minute
	d -= m * time.Minute
	s := d.Seconds()
	return fmt.Sprintf("%dm%06.3fs", m, s)
}

func main() {
	// CLI flags
	dir := flag.String("dir", "", "Headless output directory holding sweep.csv and config.yaml")
	dbPath := flag.String("db", "", "Run history database (alternative to -dir)")
	runID := flag.String("run", "latest", "Run ID to fit when reading from -db")
	outputDir := flag.String("output", "", "Output directory for fit.yaml and fit_log.csv")
	maxEvals := flag.Int("max-evals", 500, "Maximum number of objective evaluations")
	flag.Parse()

	if (*dir == "") == (*dbPath == "") {
		log.Fatal("exactly one of --dir or --db is required")
	}
	if *outputDir == "" {
		*outputDir = *dir
	}
	if *outputDir == "" {
		log.Fatal("--output is required with --db")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}

	var (
		points []Point
		params needle.Params
		source string
		err    error
	)
	if *dir != "" {
		points, params, err = loadDir(*dir)
		source = *dir
	} else {
		var id string
		points, params, id, err = loadRun(context.Background(), *dbPath, *runID)
		source = *dbPath + "#" + id
	}
	if err != nil {
		log.Fatalf("failed to load sweep: %v", err)
	}

	// Open log file
	logPath := filepath.Join(*outputDir, "fit_log.csv")
	logFile, err := os.Create(logPath)
	if err != nil {
		log.Fatalf("failed to create log file: %v", err)
	}
	defer logFile.Close()

	var evals []EvalRecord
	fmt.Printf("Fitting %d sweep runs (L=%.3f, S=%.3f) from %s\n",
		len(points), params.NeedleLen, params.Spacing, source)

	start := time.Now()
	res, err := Fit(points, params, *maxEvals, func(r EvalRecord) {
		evals = append(evals, r)
	})
	if err != nil {
		log.Fatalf("fit failed: %v", err)
	}
	res.Source = source

	if err := gocsv.MarshalFile(&evals, logFile); err != nil {
		log.Printf("failed to write evaluation log: %v", err)
	}

	fmt.Printf("\nFit complete after %d evaluations in %s (converged=%t)\n",
		res.Evaluations, formatDuration(time.Since(start)), res.Converged)
	fmt.Printf("  trials:     %d\n", res.Trials)
	fmt.Printf("  crossings:  %d\n", res.Crossings)
	fmt.Printf("  pooled:     %.6f (error %.6f)\n", res.Pooled, math.Abs(res.Pooled-math.Pi))
	fmt.Printf("  fitted:     %.6f (error %.6f)\n", res.Fitted, res.FittedError)
	fmt.Printf("  per-run:    mean %.6f, std %.6f\n", res.MeanEstimate, res.StdEstimate)

	// yaml.v3 encodes NaN as .nan
	data, err := yaml.Marshal(res)
	if err != nil {
		log.Fatalf("failed to marshal fit: %v", err)
	}
	fitPath := filepath.Join(*outputDir, "fit.yaml")
	if err := os.WriteFile(fitPath, data, 0644); err != nil {
		log.Fatalf("failed to write fit: %v", err)
	}
	fmt.Printf("\nFit saved to: %s\n", fitPath)
}
