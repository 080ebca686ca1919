// Package resultlog appends benchmark measurements to the CSV file shared
// by every language variant of the benchmark. The file format is a fixed
// protocol: one 6-column header, then one unquoted comma-separated line
// per run, so that independently written Java, Python, C, and Go rows
// aggregate in a single file.
package resultlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Header is the exact first line of a fresh results file.
const Header = "language,matrix_size,run_index,elapsed_sec,memory_used_mb,timestamp_iso"

// PathEnv names the environment variable that overrides the results path.
const PathEnv = "RESULTS_CSV"

// DefaultPath is where results go when PathEnv is unset. It is relative
// to the working directory and identical across language variants so one
// file collects every implementation's rows.
var DefaultPath = filepath.Join("..", "data", "results.csv")

// Row is one benchmark measurement, persisted immediately after the run
// that produced it.
type Row struct {
	Language     string
	MatrixSize   int
	RunIndex     int
	ElapsedSec   float64
	MemoryUsedMB float64
	Timestamp    time.Time
}

// Line renders the row in the shared CSV format: elapsed with fixed
// 6-decimal precision, memory with 2, timestamp as local
// YYYY-MM-DDTHH:MM:SS with no zone and no fractional seconds. No field
// needs quoting.
func (r Row) Line() string {
	return fmt.Sprintf("%s,%d,%d,%.6f,%.2f,%s",
		r.Language,
		r.MatrixSize,
		r.RunIndex,
		r.ElapsedSec,
		r.MemoryUsedMB,
		r.Timestamp.Format("2006-01-02T15:04:05"),
	)
}

// ResolvePath returns the PathEnv override if set and non-empty,
// otherwise DefaultPath.
func ResolvePath() string {
	if p := os.Getenv(PathEnv); p != "" {
		return p
	}

	return DefaultPath
}

// EnsureHeader creates the results file with exactly the header line if
// it does not exist, creating parent directories as needed. An existing
// file is left untouched, so calling this any number of times yields one
// header. It never truncates.
func EnsureHeader(path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create results dir %s: %w", dir, err)
		}
	}

	// O_EXCL makes creation race-free against sibling variants starting
	// at the same moment: exactly one writer creates the header.
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if os.IsExist(err) {
			return nil
		}

		return fmt.Errorf("create results file %s: %w", path, err)
	}

	_, err = f.WriteString(Header + "\n")
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return fmt.Errorf("write header to %s: %w", path, err)
	}

	return nil
}

// Append writes one row to the file in a single scoped open/write/close.
// No handle is held across runs; each append is one small write.
func Append(path string, row Row) error {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open results file %s: %w", path, err)
	}

	_, err = f.WriteString(row.Line() + "\n")
	if cerr := f.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		return fmt.Errorf("append to %s: %w", path, err)
	}

	return nil
}
