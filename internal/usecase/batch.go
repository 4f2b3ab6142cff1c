package usecase

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/nnaakkaaii/game2048/internal/domain"
)

// BatchConfig は複数ゲームの自動プレイ設定
type BatchConfig struct {
	Games      int
	Workers    int   // 0ならNumCPU
	Seed       int64 // 0なら現在時刻。i番目のゲームはSeed+iでシードする
	Board      domain.BoardConfig
	SolverKind domain.SolverKind
	Evaluator  domain.EvaluatorKind // 空ならlargest
	Weights    map[domain.EvaluatorKind]float64
	Search     domain.SearchOptions
	AutoPlay   AutoPlayConfig
}

// Summary は複数ゲームの集計結果
type Summary struct {
	Results   []Result
	BestScore int
	MinScore  int
	MeanScore float64
	MaxTile   int
	Moves     int
}

// RunBatch はGames個のゲームをWorkers並列で自動プレイし、集計結果を返す
// 各ゲームは専用のBoardと乱数源を持つ
func RunBatch(ctx context.Context, w io.Writer, config BatchConfig) (Summary, error) {
	if config.Games < 1 {
		return Summary{}, fmt.Errorf("games must be positive, got %d", config.Games)
	}
	if _, err := domain.NewBoard(config.Board, nil); err != nil {
		return Summary{}, err
	}
	evaluatorKind := config.Evaluator
	if evaluatorKind == "" {
		evaluatorKind = domain.EvaluatorLargest
	}
	if _, err := domain.NewEvaluator(evaluatorKind, config.Weights); err != nil {
		return Summary{}, err
	}

	seed := config.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	workers := config.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	out := &lockedWriter{w: w}
	results := make([]Result, config.Games)

	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i := 0; i < config.Games; i++ {
		eg.Go(func() error {
			board, err := domain.NewBoard(config.Board, rand.New(rand.NewSource(seed+int64(i))))
			if err != nil {
				return err
			}
			evaluator, err := domain.NewEvaluator(evaluatorKind, config.Weights)
			if err != nil {
				return err
			}
			solver, err := domain.NewMoveSolver(config.SolverKind, evaluator, config.Search)
			if err != nil {
				return err
			}

			id := uuid.NewString()
			res, err := AutoPlay(ctx, prefixWriter{w: out, prefix: id[:8] + " "}, board, solver, config.AutoPlay)
			res.ID = id
			results[i] = res
			if err != nil {
				return fmt.Errorf("game %s: %w", id, err)
			}

			fmt.Fprintf(out, "game %s finished: score=%d moves=%d max_tile=%d\n", id, res.Score, res.Moves, res.MaxTile)
			return nil
		})
	}

	if err := eg.Wait(); err != nil {
		return summarize(results), err
	}
	return summarize(results), nil
}

func summarize(results []Result) Summary {
	s := Summary{Results: results}
	if len(results) == 0 {
		return s
	}

	total := 0
	s.MinScore = results[0].Score
	for _, r := range results {
		total += r.Score
		s.Moves += r.Moves
		if r.Score > s.BestScore {
			s.BestScore = r.Score
		}
		if r.Score < s.MinScore {
			s.MinScore = r.Score
		}
		if r.MaxTile > s.MaxTile {
			s.MaxTile = r.MaxTile
		}
	}
	s.MeanScore = float64(total) / float64(len(results))
	return s
}

// lockedWriter は複数のgoroutineからの書き込みを直列化する
type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (l *lockedWriter) Write(p []byte) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.w.Write(p)
}

// prefixWriter は各書き込みの先頭にprefixを付ける（1回の書き込みが1行である前提）
type prefixWriter struct {
	w      io.Writer
	prefix string
}

func (p prefixWriter) Write(b []byte) (int, error) {
	if _, err := p.w.Write(append([]byte(p.prefix), b...)); err != nil {
		return 0, err
	}
	return len(b), nil
}
