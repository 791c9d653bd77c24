package telemetry

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/buffon/config"
)

// CSV file names written by the output manager.
const (
	TelemetryFile   = "telemetry.csv"
	PerfFile        = "perf.csv"
	ConvergenceFile = "convergence.csv"
	SweepFile       = "sweep.csv"
	GroupsFile      = "groups.csv"
	ConfigFile      = "config.yaml"
)

// csvFile is an output file whose header is written with the first batch.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

// OutputManager handles structured experiment output with CSV logging.
// A nil *OutputManager is valid and discards everything.
type OutputManager struct {
	dir   string
	files map[string]*csvFile
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}
	return &OutputManager{dir: dir, files: make(map[string]*csvFile)}, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, ConfigFile))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	return om.WriteRecords(TelemetryFile, []WindowStats{stats})
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, step int) error {
	return om.WriteRecords(PerfFile, []PerfStatsCSV{stats.ToCSV(step)})
}

// WriteRecords appends records, a slice of csv-tagged structs, to the named
// file in the output directory. The file is created on first use and the
// header is written only once.
func (om *OutputManager) WriteRecords(name string, records any) error {
	if om == nil {
		return nil
	}

	cf, err := om.open(name)
	if err != nil {
		return err
	}

	if !cf.headerWritten {
		if err := gocsv.Marshal(records, cf.f); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
		cf.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, cf.f); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

func (om *OutputManager) open(name string) (*csvFile, error) {
	if cf, ok := om.files[name]; ok {
		return cf, nil
	}
	f, err := os.Create(filepath.Join(om.dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	cf := &csvFile{f: f}
	om.files[name] = cf
	return cf, nil
}

// Path returns the full path of a file in the output directory.
func (om *OutputManager) Path(name string) string {
	if om == nil {
		return ""
	}
	return filepath.Join(om.dir, name)
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	names := make([]string, 0, len(om.files))
	for name := range om.files {
		names = append(names, name)
	}
	sort.Strings(names)

	var firstErr error
	for _, name := range names {
		if err := om.files[name].f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	om.files = make(map[string]*csvFile)
	return firstErr
}
