// Package main provides the CLI entry point for matbench, the Go variant
// of a cross-language matrix-multiplication micro-benchmark. Every
// variant appends to the same results CSV so their timings can be
// compared side by side.
package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/weiihann/matbench/bench"
	"github.com/weiihann/matbench/matrix"
	"github.com/weiihann/matbench/probe"
	"github.com/weiihann/matbench/report"
	"github.com/weiihann/matbench/resultlog"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	root := newRootCmd(logger)
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:   "matbench <matrix_size> <num_runs>",
		Short: "Naive matrix-multiplication micro-benchmark",
		Long: `Matbench multiplies two random square matrices with the naive
triple-loop algorithm and appends per-run wall-clock and memory
measurements to the CSV file shared with the sibling Java, Python,
and C benchmark variants.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBenchmark(cmd, logger, args)
		},
	}

	root.AddCommand(newReportCmd())

	return root
}

func runBenchmark(cmd *cobra.Command, logger *slog.Logger, args []string) error {
	cfg, err := bench.ParseArgs(args)

	var usageErr *bench.UsageError
	if errors.As(err, &usageErr) {
		// Insufficient or malformed arguments are not a failure: print
		// the usage line and return cleanly, matching the sibling
		// variants. No CSV is touched on this path.
		fmt.Fprintln(cmd.OutOrStdout(), bench.Usage)

		return nil
	}

	if err != nil {
		return err
	}

	runner := bench.NewRunner(
		matrix.NewFactory(time.Now().UnixNano()),
		probe.NewProber(),
		resultlog.ResolvePath(),
		cmd.OutOrStdout(),
		logger,
	)

	return runner.Run(cmd.Context(), cfg)
}

func newReportCmd() *cobra.Command {
	var outputJSON bool

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Tabulate the accumulated cross-language results",
		Long: `Read the shared results CSV (RESULTS_CSV or the default path)
and print a per-language comparison table.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := resultlog.ResolvePath()

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("open results file %s: %w", path, err)
			}
			defer f.Close()

			entries, err := report.Parse(f)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}

			if outputJSON {
				return report.GenerateJSON(cmd.OutOrStdout(), entries)
			}

			return report.Generate(cmd.OutOrStdout(), entries)
		},
	}

	cmd.Flags().BoolVar(&outputJSON, "json", false,
		"Output summaries as JSON instead of a table")

	return cmd
}
