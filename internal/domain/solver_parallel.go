package domain

import (
	"context"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// ParallelSolver はトップレベルの手を並列に評価するExpectimaxソルバー
type ParallelSolver struct {
	solver  *Solver
	workers int
}

var _ ContextSolver = (*ParallelSolver)(nil)

// NewParallelSolver は新しいParallelSolverを生成する
func NewParallelSolver(evaluator Evaluator, opts SearchOptions) *ParallelSolver {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &ParallelSolver{
		solver:  NewSolver(evaluator, opts),
		workers: workers,
	}
}

// BestMove は現在の盤面から最良の手を返す
func (s *ParallelSolver) BestMove(g Grid) Direction {
	dir, err := s.BestMoveContext(context.Background(), g)
	if err != nil {
		return None
	}
	return dir
}

// BestMoveContext はctxがキャンセルされると探索を打ち切ってエラーを返す
func (s *ParallelSolver) BestMoveContext(ctx context.Context, g Grid) (Direction, error) {
	// 有効な手を事前にフィルタリング
	validMoves := make([]Direction, 0, len(Directions))
	for _, dir := range Directions {
		if g.CanMove(dir) {
			validMoves = append(validMoves, dir)
		}
	}

	switch len(validMoves) {
	case 0:
		return None, nil
	case 1:
		return validMoves[0], nil
	}

	scores := make([]float64, len(validMoves))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(s.workers)

	for i, dir := range validMoves {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			next, _, _ := g.Swipe(dir)
			scores[i] = s.solver.expectedScore(next, s.solver.opts.MaxDepth-1)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return None, err
	}

	bestDir := None
	bestScore := math.Inf(-1)
	for i, dir := range validMoves {
		if scores[i] > bestScore {
			bestScore = scores[i]
			bestDir = dir
		}
	}
	return bestDir, nil
}
