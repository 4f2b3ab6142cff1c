package usecase

import (
	"fmt"
	"io"
	"math"

	"github.com/nnaakkaaii/game2048/internal/domain"
)

// Analysis は盤面の解析結果
type Analysis struct {
	Best   domain.Direction
	Scores map[domain.Direction]float64 // 動かせる方向のみ
}

// Analyze は各方向のspawn後の期待値と推奨手を計算する
// 探索はMoveScoresの1回だけで、推奨手はその最大値から選ぶ
func Analyze(grid domain.Grid, solver *domain.Solver) Analysis {
	scores := solver.MoveScores(grid)

	best := domain.None
	bestScore := math.Inf(-1)
	for _, dir := range domain.Directions {
		if score, ok := scores[dir]; ok && score > bestScore {
			bestScore = score
			best = dir
		}
	}

	return Analysis{Best: best, Scores: scores}
}

// WriteAnalysis は解析結果を書き出す
func WriteAnalysis(w io.Writer, a Analysis) {
	if a.Best == domain.None {
		fmt.Fprintln(w, "No valid moves available!")
		return
	}

	fmt.Fprintf(w, "Recommended move: %s\n", a.Best)
	fmt.Fprintln(w, "Move scores:")
	for _, dir := range domain.Directions {
		score, ok := a.Scores[dir]
		if !ok {
			fmt.Fprintf(w, "  %s: -\n", dir)
			continue
		}
		fmt.Fprintf(w, "  %s: %.2f", dir, score)
		if dir == a.Best {
			fmt.Fprint(w, " <- BEST")
		}
		fmt.Fprintln(w)
	}
}
