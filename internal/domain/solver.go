package domain

import (
	"container/heap"
	"context"
	"fmt"
	"math"
	"strings"
)

// MoveSolver は盤面から次の一手を選ぶ
// 有効な手がない場合はNoneを返す
type MoveSolver interface {
	BestMove(g Grid) Direction
}

// ContextSolver はキャンセル可能な探索をサポートするソルバー
type ContextSolver interface {
	MoveSolver
	BestMoveContext(ctx context.Context, g Grid) (Direction, error)
}

// MaxSearchDepth は探索深さの上限
const MaxSearchDepth = 10

// SolverKind はソルバーの種類
type SolverKind string

const (
	SolverExpectimax SolverKind = "expectimax"
	SolverAStar      SolverKind = "astar"
	SolverParallel   SolverKind = "parallel"
)

// ParseSolverKind は文字列をSolverKindに変換する
func ParseSolverKind(s string) (SolverKind, error) {
	switch kind := SolverKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case SolverExpectimax, SolverAStar, SolverParallel:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown solver kind %q", s)
	}
}

// SearchOptions は探索の設定
type SearchOptions struct {
	MaxDepth       int
	SampleCells    int     // spawn位置のサンプリング上限
	TwoProbability float64 // 期待値計算に使う2の出現確率
	MaxExplore     int     // A*で展開するノード数の上限
	Workers        int     // ParallelSolverの並列数（0ならNumCPU）
}

// DefaultSearchOptions はデフォルトの探索設定を返す
func DefaultSearchOptions() SearchOptions {
	return SearchOptions{
		MaxDepth:       3,
		SampleCells:    6,
		TwoProbability: DefaultTwoProbability,
		MaxExplore:     500,
	}
}

// NewMoveSolver は種類に応じたソルバーを生成する
func NewMoveSolver(kind SolverKind, evaluator Evaluator, opts SearchOptions) (MoveSolver, error) {
	switch kind {
	case SolverExpectimax:
		return NewSolver(evaluator, opts), nil
	case SolverAStar:
		return NewAStarSolver(evaluator, opts), nil
	case SolverParallel:
		return NewParallelSolver(evaluator, opts), nil
	default:
		return nil, fmt.Errorf("unknown solver kind %q", kind)
	}
}

// Solver はExpectimaxアルゴリズムで最良の手を探索する
type Solver struct {
	evaluator Evaluator
	opts      SearchOptions
}

// NewSolver は新しいSolverを生成する
func NewSolver(evaluator Evaluator, opts SearchOptions) *Solver {
	return &Solver{
		evaluator: evaluator,
		opts:      opts,
	}
}

// BestMove は現在の盤面から最良の手を返す
func (s *Solver) BestMove(g Grid) Direction {
	bestDir := None
	bestScore := math.Inf(-1)

	scores := s.MoveScores(g)
	for _, dir := range Directions {
		score, ok := scores[dir]
		if ok && score > bestScore {
			bestScore = score
			bestDir = dir
		}
	}

	return bestDir
}

// MoveScores は動かせる各方向について、spawn後の期待値を返す
// 動かせない方向はマップに含まれない
func (s *Solver) MoveScores(g Grid) map[Direction]float64 {
	scores := make(map[Direction]float64, len(Directions))
	for _, dir := range Directions {
		next, _, changed := g.Swipe(dir)
		if !changed {
			continue
		}
		scores[dir] = s.expectedScore(next, s.opts.MaxDepth-1)
	}
	return scores
}

// expectedScore はスポーンの期待値を計算する
func (s *Solver) expectedScore(g Grid, depth int) float64 {
	emptyCells := g.EmptyCells()
	if len(emptyCells) == 0 || depth <= 0 {
		return s.evaluator.Evaluate(g)
	}

	sampleCells := sampleEmptyCells(emptyCells, s.opts.SampleCells)

	totalScore := 0.0
	for _, pos := range sampleCells {
		score2 := s.searchMax(g.Set(pos[0], pos[1], 2), depth)
		score4 := s.searchMax(g.Set(pos[0], pos[1], 4), depth)
		totalScore += s.opts.TwoProbability*score2 + (1-s.opts.TwoProbability)*score4
	}

	return totalScore / float64(len(sampleCells))
}

// searchMax はプレイヤーの最善手を探索
func (s *Solver) searchMax(g Grid, depth int) float64 {
	if depth <= 0 {
		return s.evaluator.Evaluate(g)
	}

	bestScore := math.Inf(-1)
	hasMoved := false

	for _, dir := range Directions {
		next, _, changed := g.Swipe(dir)
		if !changed {
			continue
		}
		hasMoved = true

		if score := s.expectedScore(next, depth-1); score > bestScore {
			bestScore = score
		}
	}

	if !hasMoved {
		return s.evaluator.Evaluate(g)
	}

	return bestScore
}

// sampleEmptyCells は空きマスが多い場合に均等な間隔で最大limit個を選ぶ
func sampleEmptyCells(emptyCells [][2]int, limit int) [][2]int {
	if limit <= 0 || len(emptyCells) <= limit {
		return emptyCells
	}
	sampled := make([][2]int, 0, limit)
	step := len(emptyCells) / limit
	if step == 0 {
		step = 1
	}
	for i := 0; i < len(emptyCells) && len(sampled) < limit; i += step {
		sampled = append(sampled, emptyCells[i])
	}
	return sampled
}

// AStarSolver はA*アルゴリズムで探索する（優先度付きキュー使用）
type AStarSolver struct {
	evaluator Evaluator
	opts      SearchOptions
}

// NewAStarSolver は新しいAStarSolverを生成する
func NewAStarSolver(evaluator Evaluator, opts SearchOptions) *AStarSolver {
	return &AStarSolver{
		evaluator: evaluator,
		opts:      opts,
	}
}

// searchNode はA*探索のノード
type searchNode struct {
	grid     Grid
	depth    int
	g        float64 // コスト（手数）
	h        float64 // ヒューリスティック（評価値の負）
	firstDir Direction
	index    int
}

func (n *searchNode) f() float64 {
	return n.g + n.h
}

// priorityQueue は優先度付きキュー
type priorityQueue []*searchNode

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	return pq[i].f() < pq[j].f()
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x any) {
	node := x.(*searchNode)
	node.index = len(*pq)
	*pq = append(*pq, node)
}

func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*pq = old[:n-1]
	return node
}

// BestMove はA*アルゴリズムで最良の手を返す
func (s *AStarSolver) BestMove(g Grid) Direction {
	pq := make(priorityQueue, 0)
	heap.Init(&pq)

	// 初期ノード（各方向、スポーンなし）
	for _, dir := range Directions {
		next, _, changed := g.Swipe(dir)
		if !changed {
			continue
		}
		heap.Push(&pq, &searchNode{
			grid:     next,
			depth:    1,
			g:        1.0,
			h:        -s.evaluator.Evaluate(next),
			firstDir: dir,
		})
	}

	if pq.Len() == 0 {
		return None
	}

	bestDir := None
	bestScore := math.Inf(1)
	explored := 0

	for pq.Len() > 0 && explored < s.opts.MaxExplore {
		node := heap.Pop(&pq).(*searchNode)
		explored++

		if node.depth >= s.opts.MaxDepth {
			if node.f() < bestScore {
				bestScore = node.f()
				bestDir = node.firstDir
			}
			continue
		}

		expanded := false
		for _, dir := range Directions {
			next, _, changed := node.grid.Swipe(dir)
			if !changed {
				continue
			}
			expanded = true
			heap.Push(&pq, &searchNode{
				grid:     next,
				depth:    node.depth + 1,
				g:        node.g + 1.0,
				h:        -s.evaluator.Evaluate(next),
				firstDir: node.firstDir,
			})
		}

		// 行き止まりのノードもその時点の評価で候補にする
		if !expanded && node.f() < bestScore {
			bestScore = node.f()
			bestDir = node.firstDir
		}
	}

	// 探索上限で葉に届かなかった場合は最初に展開した手を使う
	if bestDir == None {
		for _, dir := range Directions {
			if g.CanMove(dir) {
				return dir
			}
		}
	}

	return bestDir
}
