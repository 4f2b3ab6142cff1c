package usecase

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/nnaakkaaii/game2048/internal/domain"
)

// AutoPlayConfig は自動プレイの設定
type AutoPlayConfig struct {
	MaxMoves int // 0なら終了状態まで
	Delay    time.Duration
	Verbose  bool
}

// DefaultAutoPlayConfig はデフォルトの設定を返す
func DefaultAutoPlayConfig() AutoPlayConfig {
	return AutoPlayConfig{
		MaxMoves: 0,
		Delay:    0,
		Verbose:  false,
	}
}

// Result は1ゲーム分の結果
type Result struct {
	ID       string
	Score    int
	Moves    int
	MaxTile  int
	Terminal bool
}

// AutoPlay はboardをResetし、solverの選んだ手で終了状態になるまでプレイする
// boardは公開された操作のみを通じて使う
func AutoPlay(ctx context.Context, w io.Writer, board *domain.Board, solver domain.MoveSolver, config AutoPlayConfig) (Result, error) {
	board.Reset()
	moves := 0

	for !board.IsTerminal() {
		if err := ctx.Err(); err != nil {
			return result(board, moves), err
		}
		if config.MaxMoves > 0 && moves >= config.MaxMoves {
			break
		}

		dir, err := bestMove(ctx, solver, board.Grid())
		if err != nil {
			return result(board, moves), err
		}
		if dir == domain.None {
			break
		}

		before := board.Score()
		if !board.Move(dir) {
			return result(board, moves), fmt.Errorf("solver chose %s, which does not change the board", dir)
		}
		moves++

		if config.Verbose {
			fmt.Fprintf(w, "move %d: %s (+%d) score=%d\n", moves, dir, board.Score()-before, board.Score())
		}

		if config.Delay > 0 {
			select {
			case <-ctx.Done():
				return result(board, moves), ctx.Err()
			case <-time.After(config.Delay):
			}
		}
	}

	return result(board, moves), nil
}

// bestMove はsolverがキャンセルに対応していればctxを渡して探索する
func bestMove(ctx context.Context, solver domain.MoveSolver, g domain.Grid) (domain.Direction, error) {
	if cs, ok := solver.(domain.ContextSolver); ok {
		return cs.BestMoveContext(ctx, g)
	}
	return solver.BestMove(g), nil
}

func result(board *domain.Board, moves int) Result {
	return Result{
		Score:    board.Score(),
		Moves:    moves,
		MaxTile:  board.Grid().MaxTile(),
		Terminal: board.IsTerminal(),
	}
}
