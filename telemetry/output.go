package telemetry

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/warren/config"
)

// csvFile is one append-only CSV output whose header is written with the
// first batch of rows.
type csvFile struct {
	f             *os.File
	headerWritten bool
}

// write marshals rows (a slice of csv-tagged structs) to the file.
func (c *csvFile) write(rows any) error {
	if !c.headerWritten {
		// First write includes headers
		if err := gocsv.Marshal(rows, c.f); err != nil {
			return err
		}
		c.headerWritten = true
		return nil
	}
	// Subsequent writes skip headers
	return gocsv.MarshalWithoutHeaders(rows, c.f)
}

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir       string
	telemetry *csvFile
	alleles   *csvFile
	bookmarks *csvFile
	perf      *csvFile
	lifetimes *csvFile
}

// Output file names inside the output directory.
const (
	TelemetryFile = "telemetry.csv"
	AllelesFile   = "alleles.csv"
	BookmarksFile = "bookmarks.csv"
	PerfFile      = "perf.csv"
	LifetimesFile = "lifetimes.csv"
	ConfigFile    = "config.yaml"
)

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	om := &OutputManager{dir: dir}
	files := []struct {
		name string
		dst  **csvFile
	}{
		{TelemetryFile, &om.telemetry},
		{AllelesFile, &om.alleles},
		{BookmarksFile, &om.bookmarks},
		{PerfFile, &om.perf},
		{LifetimesFile, &om.lifetimes},
	}
	for _, spec := range files {
		f, err := os.Create(filepath.Join(dir, spec.name))
		if err != nil {
			om.Close()
			return nil, fmt.Errorf("creating %s: %w", spec.name, err)
		}
		*spec.dst = &csvFile{f: f}
	}

	return om, nil
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
	if om == nil {
		return nil
	}
	if err := om.telemetry.write([]WindowStats{stats}); err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// WriteAlleles appends allele frequency rows to alleles.csv.
func (om *OutputManager) WriteAlleles(records []AlleleRecord) error {
	if om == nil || len(records) == 0 {
		return nil
	}
	if err := om.alleles.write(records); err != nil {
		return fmt.Errorf("writing alleles: %w", err)
	}
	return nil
}

// WritePerf writes a performance stats record to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd int) error {
	if om == nil {
		return nil
	}
	if err := om.perf.write([]PerfStatsCSV{stats.ToCSV(windowEnd)}); err != nil {
		return fmt.Errorf("writing perf: %w", err)
	}
	return nil
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	if err := om.bookmarks.write([]Bookmark{b}); err != nil {
		return fmt.Errorf("writing bookmark: %w", err)
	}
	return nil
}

// WriteLifetime writes a finished agent's lifetime record to lifetimes.csv.
func (om *OutputManager) WriteLifetime(s *LifetimeStats) error {
	if om == nil || s == nil {
		return nil
	}
	if err := om.lifetimes.write([]*LifetimeStats{s}); err != nil {
		return fmt.Errorf("writing lifetime: %w", err)
	}
	return nil
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
	for _, c := range []*csvFile{om.telemetry, om.alleles, om.bookmarks, om.perf, om.lifetimes} {
		if c == nil || c.f == nil {
			continue
		}
		if err := c.f.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
