package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/discochess/gamereview"
	"github.com/discochess/gamereview/internal/codec"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Analyze a single game",
	Long: `Analyze one game and print a move-by-move report.

The file may be plain, gzip or zstd compressed; use "-" for stdin.

Examples:
  gamereview analyze --engine /usr/bin/stockfish game.pgn

  # Deeper search with an opening book
  gamereview analyze -e /usr/bin/stockfish --depth 20 --book book.tsv game.pgn`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

var analyzeJSON bool

func init() {
	analyzeCmd.Flags().BoolVar(&analyzeJSON, "json", false, "output result as JSON")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	in, err := openInput(args[0])
	if err != nil {
		return err
	}
	defer in.Close()

	analyzer, err := newAnalyzer()
	if err != nil {
		return err
	}
	defer analyzer.Close()

	analysis, err := analyzer.AnalyzePGN(context.Background(), in)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeJSON {
		return json.NewEncoder(os.Stdout).Encode(analysis)
	}
	printAnalysis(analysis)
	return nil
}

func printAnalysis(a *gamereview.GameAnalysis) {
	g := a.Game
	fmt.Printf("%s (%d) vs %s (%d)  %s\n", g.White, g.WhiteElo, g.Black, g.BlackElo, g.Result)
	if g.TimeControl.Raw != "" {
		fmt.Printf("Time control: %s (%s)\n", g.TimeControl.Raw, g.TimeControl.Class)
	}
	fmt.Println()

	moveNo := 1
	for _, m := range a.Moves {
		prefix := fmt.Sprintf("%d.", moveNo)
		if m.Ply.Color == gamereview.Black {
			prefix = fmt.Sprintf("%d...", moveNo)
			moveNo++
		}
		line := fmt.Sprintf("%-7s %-8s %-12s", prefix, m.Ply.SAN, m.Judgment)
		if m.Evaluated {
			line += fmt.Sprintf(" loss %4d  eval %+.2f", m.Loss, float64(m.EvalAfter)/100)
			if !m.IsBest && m.BestMove != "" && m.Judgment != gamereview.JudgmentGood {
				line += fmt.Sprintf("  best %s", m.BestMove)
			}
		}
		fmt.Println(line)
	}

	fmt.Println()
	printPlayer("White", g.White, a.White)
	printPlayer("Black", g.Black, a.Black)
	if a.Degraded {
		fmt.Println("\nwarning: engine became unavailable; some moves are unevaluated")
	}
}

func printPlayer(side, name string, s gamereview.PlayerSummary) {
	fmt.Printf("%s (%s): accuracy %.1f, ACPL %.1f\n", side, name, s.Accuracy, s.ACPL)
	fmt.Printf("  inaccuracies %d, mistakes %d, blunders %d, missed tactics %d, best moves %d/%d\n",
		s.Judgments[gamereview.JudgmentInaccuracy],
		s.Judgments[gamereview.JudgmentMistake],
		s.Judgments[gamereview.JudgmentBlunder],
		s.MissedTactics,
		s.BestMoves, s.EvaluatedMoves)
}

// openInput opens a possibly compressed game file; "-" reads stdin.
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := codec.NewReader(path, f)
	if err != nil {
		f.Close()
		return nil, err
	}
	return &fileReader{ReadCloser: r, f: f}, nil
}

// fileReader closes the underlying file after the decompressor.
type fileReader struct {
	io.ReadCloser
	f *os.File
}

func (r *fileReader) Close() error {
	err := r.ReadCloser.Close()
	if cerr := r.f.Close(); err == nil {
		err = cerr
	}
	return err
}
