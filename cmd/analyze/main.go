package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"math"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/nnaakkaaii/game2048/internal/domain"
	"github.com/nnaakkaaii/game2048/internal/usecase"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: error loading .env file: %v", err)
	}

	cmd := &cli.Command{
		Name:      "analyze",
		Usage:     "recommend the next move for a board",
		ArgsUsage: "CELL... (side*side values in row-major order, 0 for empty)",
		Flags: []cli.Flag{
			&cli.IntFlag{Name: "depth", Value: 5, Usage: "search depth", Sources: cli.EnvVars("GAME2048_DEPTH")},
			&cli.IntFlag{Name: "samples", Value: 4, Usage: "max empty cells sampled per spawn"},
			&cli.StringFlag{Name: "evaluator", Value: string(domain.EvaluatorLargest), Usage: "largest, snake, weighted, empty, monotonicity, smoothness, corner, maxtile or mergeable", Sources: cli.EnvVars("GAME2048_EVALUATOR")},
			&cli.Float64Flag{Name: "two-prob", Value: domain.DefaultTwoProbability, Usage: "probability that a spawned tile is 2"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(_ context.Context, cmd *cli.Command) error {
	grid, err := parseGrid(cmd.Args().Slice())
	if err != nil {
		return err
	}

	opts := domain.DefaultSearchOptions()
	opts.MaxDepth = cmd.Int("depth")
	opts.SampleCells = cmd.Int("samples")
	opts.TwoProbability = cmd.Float64("two-prob")
	if opts.MaxDepth < 1 || opts.MaxDepth > domain.MaxSearchDepth {
		return fmt.Errorf("invalid depth %d (must be 1-%d)", opts.MaxDepth, domain.MaxSearchDepth)
	}
	evaluator, err := newEvaluator(cmd.String("evaluator"))
	if err != nil {
		return err
	}

	if grid.IsGameOver() {
		fmt.Println("Game Over!")
		return nil
	}

	solver := domain.NewSolver(evaluator, opts)
	usecase.WriteAnalysis(os.Stdout, usecase.Analyze(grid, solver))
	return nil
}

// newEvaluator は名前から評価関数を作る（weightedはデフォルトの係数を使う）
func newEvaluator(name string) (domain.Evaluator, error) {
	kind, err := domain.ParseEvaluatorKind(name)
	if err != nil {
		return nil, err
	}
	return domain.NewEvaluator(kind, nil)
}

// parseGrid は行優先のセル値の並びから盤面を作る（要素数は平方数）
func parseGrid(args []string) (domain.Grid, error) {
	side := int(math.Round(math.Sqrt(float64(len(args)))))
	if side < 2 || side*side != len(args) {
		return domain.Grid{}, fmt.Errorf("need side*side numbers (e.g. 16 for 4x4), got %d", len(args))
	}

	cells := make([]int, len(args))
	for i, arg := range args {
		v, err := strconv.Atoi(arg)
		if err != nil {
			return domain.Grid{}, fmt.Errorf("error parsing number %q: %w", arg, err)
		}
		cells[i] = v
	}
	return domain.NewGrid(side, cells)
}
