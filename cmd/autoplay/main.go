package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"github.com/nnaakkaaii/game2048/internal/config"
	"github.com/nnaakkaaii/game2048/internal/domain"
	"github.com/nnaakkaaii/game2048/internal/usecase"
)

func main() {
	// .envがあれば読み込む（なくてもよい）
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Warning: error loading .env file: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newCommand().Run(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newCommand() *cli.Command {
	return &cli.Command{
		Name:  "autoplay",
		Usage: "play 2048 games with a search-based solver",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "YAML config file", Sources: cli.EnvVars("GAME2048_CONFIG")},
			&cli.IntFlag{Name: "side", Usage: "board side length", Sources: cli.EnvVars("GAME2048_SIDE")},
			&cli.Float64Flag{Name: "two-prob", Usage: "probability that a spawned tile is 2"},
			&cli.Int64Flag{Name: "seed", Usage: "random seed (0 = current time)", Sources: cli.EnvVars("GAME2048_SEED")},
			&cli.StringFlag{Name: "solver", Usage: "expectimax, astar or parallel"},
			&cli.StringFlag{Name: "evaluator", Usage: "largest, snake, weighted, empty, monotonicity, smoothness, corner, maxtile or mergeable", Sources: cli.EnvVars("GAME2048_EVALUATOR")},
			&cli.IntFlag{Name: "depth", Usage: "search depth"},
			&cli.IntFlag{Name: "search-workers", Usage: "goroutines per search for the parallel solver (0 = NumCPU)"},
			&cli.IntFlag{Name: "games", Usage: "number of games"},
			&cli.IntFlag{Name: "workers", Usage: "games played concurrently (0 = NumCPU)"},
			&cli.IntFlag{Name: "max-moves", Usage: "stop each game after this many moves (0 = unlimited)"},
			&cli.DurationFlag{Name: "delay", Usage: "delay between moves"},
			&cli.BoolFlag{Name: "verbose", Usage: "print every move"},
		},
		Action: run,
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	kind, err := domain.ParseSolverKind(cfg.Solver.Kind)
	if err != nil {
		return err
	}
	evaluatorKind, weights, err := cfg.EvaluatorKind()
	if err != nil {
		return err
	}

	log.Printf("Playing %d game(s) on %dx%d, solver=%s evaluator=%s depth=%d",
		cfg.AutoPlay.Games, cfg.Board.Side, cfg.Board.Side, kind, evaluatorKind, cfg.Solver.Depth)

	summary, err := usecase.RunBatch(ctx, os.Stdout, usecase.BatchConfig{
		Games:      cfg.AutoPlay.Games,
		Workers:    cfg.AutoPlay.Workers,
		Seed:       cfg.Board.Seed,
		Board:      cfg.DomainBoard(),
		SolverKind: kind,
		Evaluator:  evaluatorKind,
		Weights:    weights,
		Search:     cfg.SearchOptions(),
		AutoPlay: usecase.AutoPlayConfig{
			MaxMoves: cfg.AutoPlay.MaxMoves,
			Delay:    cfg.AutoPlay.Delay,
			Verbose:  cfg.AutoPlay.Verbose,
		},
	})
	if err != nil {
		return err
	}

	fmt.Println("=== Summary ===")
	fmt.Printf("Games: %d\n", len(summary.Results))
	fmt.Printf("Best Score: %d\n", summary.BestScore)
	fmt.Printf("Min Score: %d\n", summary.MinScore)
	fmt.Printf("Mean Score: %.1f\n", summary.MeanScore)
	fmt.Printf("Max Tile: %d\n", summary.MaxTile)
	fmt.Printf("Total Moves: %d\n", summary.Moves)
	return nil
}

// loadConfig は設定ファイル、環境変数、フラグの順に重ねた設定を検証して返す
func loadConfig(cmd *cli.Command) (*config.Config, error) {
	cfg := config.Default()
	if path := cmd.String("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
		log.Printf("Configuration loaded from %s", path)
	}
	applyFlags(cmd, cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyFlags は明示的に指定されたフラグで設定を上書きする
func applyFlags(cmd *cli.Command, cfg *config.Config) {
	if cmd.IsSet("side") {
		cfg.Board.Side = cmd.Int("side")
	}
	if cmd.IsSet("two-prob") {
		cfg.Board.TwoProbability = cmd.Float64("two-prob")
	}
	if cmd.IsSet("seed") {
		cfg.Board.Seed = cmd.Int64("seed")
	}
	if cmd.IsSet("solver") {
		cfg.Solver.Kind = cmd.String("solver")
	}
	if cmd.IsSet("evaluator") {
		cfg.Solver.Evaluator = cmd.String("evaluator")
	}
	if cmd.IsSet("depth") {
		cfg.Solver.Depth = cmd.Int("depth")
	}
	if cmd.IsSet("search-workers") {
		cfg.Solver.Workers = cmd.Int("search-workers")
	}
	if cmd.IsSet("games") {
		cfg.AutoPlay.Games = cmd.Int("games")
	}
	if cmd.IsSet("workers") {
		cfg.AutoPlay.Workers = cmd.Int("workers")
	}
	if cmd.IsSet("max-moves") {
		cfg.AutoPlay.MaxMoves = cmd.Int("max-moves")
	}
	if cmd.IsSet("delay") {
		cfg.AutoPlay.Delay = cmd.Duration("delay")
	}
	if cmd.IsSet("verbose") {
		cfg.AutoPlay.Verbose = cmd.Bool("verbose")
	}
}
