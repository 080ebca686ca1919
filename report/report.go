// Package report tabulates the accumulated cross-language results file
// into per-language comparison tables.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
)

// Entry is one parsed row of the shared results file.
type Entry struct {
	Language     string  `json:"language"`
	MatrixSize   int     `json:"matrix_size"`
	RunIndex     int     `json:"run_index"`
	ElapsedSec   float64 `json:"elapsed_sec"`
	MemoryUsedMB float64 `json:"memory_used_mb"`
	Timestamp    string  `json:"timestamp_iso"`
}

// Summary aggregates a language's rows at one matrix size.
type Summary struct {
	Language      string  `json:"language"`
	MatrixSize    int     `json:"matrix_size"`
	Runs          int     `json:"runs"`
	MeanElapsed   float64 `json:"mean_elapsed_sec"`
	MeanMemoryMB  float64 `json:"mean_memory_mb"`
	LastTimestamp string  `json:"last_timestamp"`
}

// Parse reads the shared CSV, validating the header and field count.
func Parse(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = 6

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("results file is empty")
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	if header[0] != "language" || header[5] != "timestamp_iso" {
		return nil, fmt.Errorf("unexpected header %v", header)
	}

	var entries []Entry

	for line := 2; ; line++ {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read line %d: %w", line, err)
		}

		size, err := strconv.Atoi(record[1])
		if err != nil {
			return nil, fmt.Errorf("line %d: matrix_size %q: %w",
				line, record[1], err)
		}

		run, err := strconv.Atoi(record[2])
		if err != nil {
			return nil, fmt.Errorf("line %d: run_index %q: %w",
				line, record[2], err)
		}

		elapsed, err := strconv.ParseFloat(record[3], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: elapsed_sec %q: %w",
				line, record[3], err)
		}

		mem, err := strconv.ParseFloat(record[4], 64)
		if err != nil {
			return nil, fmt.Errorf("line %d: memory_used_mb %q: %w",
				line, record[4], err)
		}

		entries = append(entries, Entry{
			Language:     record[0],
			MatrixSize:   size,
			RunIndex:     run,
			ElapsedSec:   elapsed,
			MemoryUsedMB: mem,
			Timestamp:    record[5],
		})
	}

	return entries, nil
}

// Summarize groups entries by (language, matrix size) and computes the
// mean elapsed time and memory per group, sorted for stable output.
func Summarize(entries []Entry) []Summary {
	type key struct {
		lang string
		size int
	}

	groups := make(map[key]*Summary)

	for _, e := range entries {
		k := key{e.Language, e.MatrixSize}

		s, ok := groups[k]
		if !ok {
			s = &Summary{Language: e.Language, MatrixSize: e.MatrixSize}
			groups[k] = s
		}

		s.Runs++
		s.MeanElapsed += e.ElapsedSec
		s.MeanMemoryMB += e.MemoryUsedMB
		s.LastTimestamp = e.Timestamp
	}

	summaries := make([]Summary, 0, len(groups))

	for _, s := range groups {
		s.MeanElapsed /= float64(s.Runs)
		s.MeanMemoryMB /= float64(s.Runs)
		summaries = append(summaries, *s)
	}

	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].Language != summaries[j].Language {
			return summaries[i].Language < summaries[j].Language
		}

		return summaries[i].MatrixSize < summaries[j].MatrixSize
	})

	return summaries
}

// Generate writes a markdown comparison table for the given entries.
func Generate(w io.Writer, entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("no results to report")
	}

	summaries := Summarize(entries)

	fmt.Fprintln(w, "## Benchmark Results")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "| Language | Size | Runs | Mean Elapsed | Mean Memory | Last Run |")
	fmt.Fprintln(w, "|----------|------|------|--------------|-------------|----------|")

	for _, s := range summaries {
		fmt.Fprintf(w, "| %s | %d | %d | %.6f s | %.2f MB | %s |\n",
			s.Language,
			s.MatrixSize,
			s.Runs,
			s.MeanElapsed,
			s.MeanMemoryMB,
			s.LastTimestamp,
		)
	}

	return nil
}

// GenerateJSON writes the per-language summaries as JSON to w.
func GenerateJSON(w io.Writer, entries []Entry) error {
	if len(entries) == 0 {
		return fmt.Errorf("no results to report")
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(Summarize(entries))
}
