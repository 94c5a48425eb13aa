package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/discochess/gamereview"
)

var batchCmd = &cobra.Command{
	Use:   "batch [file]",
	Short: "Analyze every game in a multi-game file",
	Long: `Analyze all games in a file concurrently, one engine session per
worker, and print aggregate statistics.

The file may be plain, gzip or zstd compressed; use "-" for stdin.

Examples:
  gamereview batch --engine /usr/bin/stockfish --workers 4 games.pgn.zst

  # Per-game JSON results on stdout
  gamereview batch -e /usr/bin/stockfish --json games.pgn`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

var (
	batchJSON    bool
	batchWorkers int
)

func init() {
	batchCmd.Flags().BoolVar(&batchJSON, "json", false, "output results as JSON")
	batchCmd.Flags().IntVarP(&batchWorkers, "workers", "w", 0, "concurrent engine sessions (default CPU count)")
	rootCmd.AddCommand(batchCmd)
}

func runBatch(cmd *cobra.Command, args []string) error {
	in, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	var opts []gamereview.Option
	if batchWorkers > 0 {
		opts = append(opts, gamereview.WithWorkers(batchWorkers))
	}
	if !batchJSON {
		opts = append(opts, gamereview.WithProgress(func(done, total int) {
			fmt.Fprintf(os.Stderr, "\r%d/%d games", done, total)
		}))
	}

	analyzer, err := newAnalyzer(opts...)
	if err != nil {
		return err
	}
	defer analyzer.Close()

	result, err := analyzer.AnalyzeBatchPGN(context.Background(), in)
	if err != nil {
		return fmt.Errorf("batch failed: %w", err)
	}
	if !batchJSON {
		fmt.Fprintln(os.Stderr)
	}

	if batchJSON {
		return json.NewEncoder(os.Stdout).Encode(result)
	}
	printBatch(result)
	return nil
}

func printBatch(r *gamereview.BatchResult) {
	s := r.Summary
	fmt.Printf("Batch %s: %d games in %s\n", r.ID, s.Games, r.Elapsed.Round(10*time.Millisecond))
	fmt.Printf("  analyzed %d, failed %d, degraded %d\n", s.Analyzed, s.Failed, s.Degraded)
	if s.Analyzed > 0 {
		fmt.Printf("  mean accuracy %.1f, mean ACPL %.1f (median %.1f, stddev %.1f)\n",
			s.MeanAccuracy, s.MeanACPL, s.MedianACPL, s.StdDevACPL)
		fmt.Printf("  inaccuracies %d, mistakes %d, blunders %d\n",
			s.Judgments[gamereview.JudgmentInaccuracy],
			s.Judgments[gamereview.JudgmentMistake],
			s.Judgments[gamereview.JudgmentBlunder])
	}

	for _, gr := range r.Results {
		if gr.Err != nil {
			fmt.Printf("  game %d failed: %v\n", gr.Index, gr.Err)
		}
	}
}
