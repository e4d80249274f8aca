package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
	"github.com/pthm-cable/warren/config"
)

// csvLog appends records of one type to a CSV file, writing the header once.
type csvLog[T any] struct {
	name          string
	file          *os.File
	headerWritten bool
}

func openCSVLog[T any](dir, name string) (*csvLog[T], error) {
	f, err := os.Create(filepath.Join(dir, name))
	if err != nil {
		return nil, fmt.Errorf("creating %s: %w", name, err)
	}
	return &csvLog[T]{name: name, file: f}, nil
}

func (l *csvLog[T]) write(rec T) error {
	records := []T{rec}
	if !l.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(records, l.file); err != nil {
			return fmt.Errorf("writing %s: %w", l.name, err)
		}
		l.headerWritten = true
		return nil
	}
	if err := gocsv.MarshalWithoutHeaders(records, l.file); err != nil {
		return fmt.Errorf("writing %s: %w", l.name, err)
	}
	return nil
}

func (l *csvLog[T]) close() error {
	if l == nil {
		return nil
	}
	return l.file.Close()
}

// OutputManager handles structured experiment output with CSV logging.
// A nil *OutputManager is valid and discards everything.
type OutputManager struct {
	dir       string
	telemetry *csvLog[WindowStats]
	perf      *csvLog[PerfStatsCSV]
	bookmarks *csvLog[Bookmark]
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(filepath.Join(dir, SnapshotDirName), 0o755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	var err error
	if om.telemetry, err = openCSVLog[WindowStats](dir, "telemetry.csv"); err != nil {
		return nil, err
	}
	if om.perf, err = openCSVLog[PerfStatsCSV](dir, "perf.csv"); err != nil {
		om.Close()
		return nil, err
	}
	if om.bookmarks, err = openCSVLog[Bookmark](dir, "bookmarks.csv"); err != nil {
		om.Close()
		return nil, err
	}
	return om, nil
}

// WriteConfig saves the run configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteTelemetry writes a window stats record to telemetry.csv.
func (om *OutputManager) WriteTelemetry(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.telemetry.write(stats)
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd uint64) error {
	if om == nil {
		return nil
	}
	return om.perf.write(stats.ToCSV(windowEnd))
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.write(b)
}

// SnapshotPath returns where the snapshot for a bookmark should be written,
// or "" when output is disabled.
func (om *OutputManager) SnapshotPath(b Bookmark) string {
	if om == nil {
		return ""
	}
	return filepath.Join(om.dir, SnapshotDirName, SnapshotName(b))
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

	var firstErr error
	for _, c := range []func() error{om.telemetry.close, om.perf.close, om.bookmarks.close} {
		if err := c(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
