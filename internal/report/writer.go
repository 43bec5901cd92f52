// Package report persists migration results and renders the console summary.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jhnwsk/spotify2tidal/internal/domain"
)

// timestampLayout renders as YYYYMMDD_HHMMSS.
const timestampLayout = "20060102_150405"

// Writer saves each run's results as a pretty-printed JSON array in a fixed
// directory.
type Writer struct {
	dir string
	now func() time.Time
}

// NewWriter returns a writer that saves reports under dir.
func NewWriter(dir string) *Writer {
	return &Writer{dir: dir, now: time.Now}
}

// Dir is the directory reports are written to.
func (w *Writer) Dir() string { return w.dir }

// Write creates the directory if needed and writes
// migration_results_<timestamp>.json, replacing any file with the same name.
func (w *Writer) Write(results []domain.MigrationResult) (string, error) {
	if results == nil {
		results = []domain.MigrationResult{}
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return "", fmt.Errorf("create results directory: %w", err)
	}

	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode results: %w", err)
	}

	name := fmt.Sprintf("migration_results_%s.json", w.now().Local().Format(timestampLayout))
	path := filepath.Join(w.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", path, err)
	}
	return path, nil
}
