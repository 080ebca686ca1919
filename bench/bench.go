// Package bench orchestrates the matrix-multiplication benchmark: build
// the inputs once, run the timed kernel the requested number of times,
// and persist one CSV row per run.
package bench

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"time"

	"github.com/weiihann/matbench/matrix"
	"github.com/weiihann/matbench/probe"
	"github.com/weiihann/matbench/resultlog"
)

// Language is the tag identifying this implementation in the shared CSV.
const Language = "Go"

// Usage is the line printed when the benchmark is invoked with missing
// or malformed arguments.
const Usage = "Usage: matbench <matrix_size> <num_runs>"

// Config holds the two benchmark parameters.
type Config struct {
	Size int
	Runs int
}

// UsageError reports invalid command-line arguments. The caller prints
// Usage and exits cleanly instead of treating it as a failure.
type UsageError struct {
	Reason string
}

func (e *UsageError) Error() string {
	return e.Reason
}

// ParseArgs validates the two positional arguments: matrix size and run
// count, both positive integers.
func ParseArgs(args []string) (Config, error) {
	if len(args) < 2 {
		return Config{}, &UsageError{Reason: "expected 2 arguments"}
	}

	size, err := strconv.Atoi(args[0])
	if err != nil || size <= 0 {
		return Config{}, &UsageError{
			Reason: fmt.Sprintf("invalid matrix size %q", args[0]),
		}
	}

	runs, err := strconv.Atoi(args[1])
	if err != nil || runs <= 0 {
		return Config{}, &UsageError{
			Reason: fmt.Sprintf("invalid run count %q", args[1]),
		}
	}

	return Config{Size: size, Runs: runs}, nil
}

// Runner executes the benchmark loop.
type Runner struct {
	Factory *matrix.Factory
	Sampler probe.Sampler
	CSVPath string
	Out     io.Writer
	Logger  *slog.Logger
}

// NewRunner creates a Runner writing human-readable progress to out and
// rows to the CSV at csvPath.
func NewRunner(
	factory *matrix.Factory,
	sampler probe.Sampler,
	csvPath string,
	out io.Writer,
	logger *slog.Logger,
) *Runner {
	return &Runner{
		Factory: factory,
		Sampler: sampler,
		CSVPath: csvPath,
		Out:     out,
		Logger:  logger.With(slog.String("component", "bench")),
	}
}

// Run executes the full benchmark: generate A and B once, multiply them
// cfg.Runs times with a before/after probe pair around each run, append
// one row per run, and print the mean elapsed time.
//
// A failed CSV write is logged as a warning and the loop continues; the
// measurement itself is not sacrificed to a full disk. A failed
// measurement is fatal and returned.
func (r *Runner) Run(ctx context.Context, cfg Config) error {
	if cfg.Size <= 0 || cfg.Runs <= 0 {
		return fmt.Errorf("config must be positive, got size=%d runs=%d",
			cfg.Size, cfg.Runs)
	}

	csvOK := true
	if err := resultlog.EnsureHeader(r.CSVPath); err != nil {
		r.Logger.Warn("results file unavailable, continuing without persistence",
			slog.String("path", r.CSVPath),
			slog.String("error", err.Error()),
		)

		csvOK = false
	}

	a, err := r.Factory.Random(cfg.Size)
	if err != nil {
		return fmt.Errorf("generate matrix A: %w", err)
	}

	b, err := r.Factory.Random(cfg.Size)
	if err != nil {
		return fmt.Errorf("generate matrix B: %w", err)
	}

	r.Logger.InfoContext(ctx, "starting benchmark",
		slog.Int("matrix_size", cfg.Size),
		slog.Int("runs", cfg.Runs),
		slog.String("csv_path", r.CSVPath),
	)

	fmt.Fprintln(r.Out, "============ GO BENCHMARK ============")
	fmt.Fprintf(r.Out, "Matrix size: %dx%d | Runs: %d\n",
		cfg.Size, cfg.Size, cfg.Runs)
	fmt.Fprintln(r.Out, "--------------------------------------")

	var (
		total    float64
		checksum float64
	)

	for run := 1; run <= cfg.Runs; run++ {
		memBefore := r.Sampler.ResidentMemoryMB()
		start := probe.Now()

		c, err := matrix.Multiply(a, b)
		if err != nil {
			return fmt.Errorf("run %d: %w", run, err)
		}

		elapsed := time.Since(start).Seconds()
		memAfter := r.Sampler.ResidentMemoryMB()
		memUsed := probe.ClampDeltaMB(memBefore, memAfter)

		// Fold the product into a checksum so the timed call is never
		// dead from the compiler's point of view.
		checksum += c.At(0, 0)
		total += elapsed

		if csvOK {
			row := resultlog.Row{
				Language:     Language,
				MatrixSize:   cfg.Size,
				RunIndex:     run,
				ElapsedSec:   elapsed,
				MemoryUsedMB: memUsed,
				Timestamp:    time.Now(),
			}

			if err := resultlog.Append(r.CSVPath, row); err != nil {
				r.Logger.Warn("failed to append result row",
					slog.String("path", r.CSVPath),
					slog.Int("run", run),
					slog.String("error", err.Error()),
				)
			}
		}

		fmt.Fprintf(r.Out, "Run %d: %.6f s | Memory used: %.2f MB\n",
			run, elapsed, memUsed)
	}

	fmt.Fprintln(r.Out, "--------------------------------------")
	fmt.Fprintf(r.Out, "Average time: %.6f s\n", total/float64(cfg.Runs))
	fmt.Fprintln(r.Out, "======================================")

	r.Logger.InfoContext(ctx, "benchmark complete",
		slog.Float64("mean_elapsed_sec", total/float64(cfg.Runs)),
		slog.Float64("checksum", checksum),
	)

	return nil
}
