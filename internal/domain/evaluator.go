package domain

import (
	"fmt"
	"math"
	"strings"
)

// Evaluator はGridを評価してスコアを返すインターフェース
type Evaluator interface {
	Evaluate(g Grid) float64
}

// EvaluatorKind は評価関数の種類
type EvaluatorKind string

const (
	EvaluatorLargest      EvaluatorKind = "largest"
	EvaluatorSnake        EvaluatorKind = "snake"
	EvaluatorWeighted     EvaluatorKind = "weighted"
	EvaluatorEmpty        EvaluatorKind = "empty"
	EvaluatorMonotonicity EvaluatorKind = "monotonicity"
	EvaluatorSmoothness   EvaluatorKind = "smoothness"
	EvaluatorCorner       EvaluatorKind = "corner"
	EvaluatorMaxTile      EvaluatorKind = "maxtile"
	EvaluatorMergeable    EvaluatorKind = "mergeable"
)

// weightableKinds はweightedで合成できる評価関数（この順で合成する）
var weightableKinds = []EvaluatorKind{
	EvaluatorEmpty,
	EvaluatorMonotonicity,
	EvaluatorSmoothness,
	EvaluatorCorner,
	EvaluatorMaxTile,
	EvaluatorMergeable,
	EvaluatorSnake,
	EvaluatorLargest,
}

// DefaultWeights はweightedで係数が指定されなかったときの係数を返す
func DefaultWeights() map[EvaluatorKind]float64 {
	return map[EvaluatorKind]float64{
		EvaluatorEmpty:        2.7,
		EvaluatorMonotonicity: 1.0,
		EvaluatorSmoothness:   0.1,
		EvaluatorCorner:       1.0,
		EvaluatorMergeable:    1.0,
	}
}

// ParseEvaluatorKind は文字列をEvaluatorKindに変換する
func ParseEvaluatorKind(s string) (EvaluatorKind, error) {
	kind := EvaluatorKind(strings.ToLower(strings.TrimSpace(s)))
	if kind == EvaluatorWeighted {
		return kind, nil
	}
	for _, k := range weightableKinds {
		if k == kind {
			return kind, nil
		}
	}
	return "", fmt.Errorf("unknown evaluator kind %q", s)
}

// NewEvaluator は種類に応じたEvaluatorを生成する
// weightsはweightedのときだけ使い、空ならDefaultWeightsを使う
func NewEvaluator(kind EvaluatorKind, weights map[EvaluatorKind]float64) (Evaluator, error) {
	switch kind {
	case EvaluatorLargest:
		return &LargestTilePotentialEvaluator{}, nil
	case EvaluatorSnake:
		return &SnakePatternEvaluator{}, nil
	case EvaluatorEmpty:
		return &EmptyCellsEvaluator{}, nil
	case EvaluatorMonotonicity:
		return &MonotonicityEvaluator{}, nil
	case EvaluatorSmoothness:
		return &SmoothnessEvaluator{}, nil
	case EvaluatorCorner:
		return &CornerBonusEvaluator{}, nil
	case EvaluatorMaxTile:
		return &MaxTileEvaluator{}, nil
	case EvaluatorMergeable:
		return &MergeableEvaluator{}, nil
	case EvaluatorWeighted:
		return newWeightedFromKinds(weights)
	default:
		return nil, fmt.Errorf("unknown evaluator kind %q", kind)
	}
}

func newWeightedFromKinds(weights map[EvaluatorKind]float64) (*WeightedEvaluator, error) {
	if len(weights) == 0 {
		weights = DefaultWeights()
	}
	for k := range weights {
		if k == EvaluatorWeighted {
			return nil, fmt.Errorf("weighted evaluator cannot contain itself")
		}
		if _, err := ParseEvaluatorKind(string(k)); err != nil {
			return nil, err
		}
	}

	var evaluators []Evaluator
	var ws []float64
	for _, k := range weightableKinds {
		w, ok := weights[k]
		if !ok || w == 0 {
			continue
		}
		ev, err := NewEvaluator(k, nil)
		if err != nil {
			return nil, err
		}
		evaluators = append(evaluators, ev)
		ws = append(ws, w)
	}
	if len(evaluators) == 0 {
		return nil, fmt.Errorf("weighted evaluator needs at least one non-zero weight")
	}
	return NewWeightedEvaluator(evaluators, ws), nil
}

// WeightedEvaluator は複数のEvaluatorを係数付きで組み合わせる
type WeightedEvaluator struct {
	evaluators []Evaluator
	weights    []float64
}

// NewWeightedEvaluator は係数付きEvaluatorを生成する
func NewWeightedEvaluator(evaluators []Evaluator, weights []float64) *WeightedEvaluator {
	return &WeightedEvaluator{
		evaluators: evaluators,
		weights:    weights,
	}
}

// Evaluate は全てのEvaluatorの重み付き和を返す
func (w *WeightedEvaluator) Evaluate(g Grid) float64 {
	score := 0.0
	for i, ev := range w.evaluators {
		score += w.weights[i] * ev.Evaluate(g)
	}
	return score
}

// EmptyCellsEvaluator は空きマス数で評価する
type EmptyCellsEvaluator struct{}

func (e *EmptyCellsEvaluator) Evaluate(g Grid) float64 {
	return float64(len(g.EmptyCells()))
}

// MonotonicityEvaluator は単調性で評価する（角から降順に並ぶほど高評価）
type MonotonicityEvaluator struct{}

func (e *MonotonicityEvaluator) Evaluate(g Grid) float64 {
	// 4つの角それぞれを基準にした単調性を計算し、最大を返す
	scores := []float64{
		monotonicity(g, true, true),   // 左上基準
		monotonicity(g, true, false),  // 右上基準
		monotonicity(g, false, true),  // 左下基準
		monotonicity(g, false, false), // 右下基準
	}
	maxScore := scores[0]
	for _, s := range scores[1:] {
		if s > maxScore {
			maxScore = s
		}
	}
	return maxScore
}

// monotonicity は指定した角から見て降順になっている隣接ペアの数を返す
func monotonicity(g Grid, fromTop, fromLeft bool) float64 {
	n := g.Side()
	score := 0.0

	// 行方向
	for r := 0; r < n; r++ {
		for c := 0; c < n-1; c++ {
			c1, c2 := c, c+1
			if !fromLeft {
				c1, c2 = n-1-c, n-2-c
			}
			if g.Get(r, c1) >= g.Get(r, c2) {
				score++
			}
		}
	}

	// 列方向
	for c := 0; c < n; c++ {
		for r := 0; r < n-1; r++ {
			r1, r2 := r, r+1
			if !fromTop {
				r1, r2 = n-1-r, n-2-r
			}
			if g.Get(r1, c) >= g.Get(r2, c) {
				score++
			}
		}
	}

	return score
}

// SmoothnessEvaluator は隣接タイルの値の差で評価する（差が小さいほど高評価）
type SmoothnessEvaluator struct{}

func (e *SmoothnessEvaluator) Evaluate(g Grid) float64 {
	n := g.Side()
	penalty := 0.0

	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			v := g.Get(r, c)
			if v == 0 {
				continue
			}
			logV := math.Log2(float64(v))

			// 右隣
			if c < n-1 {
				if right := g.Get(r, c+1); right != 0 {
					penalty += math.Abs(logV - math.Log2(float64(right)))
				}
			}
			// 下隣
			if r < n-1 {
				if down := g.Get(r+1, c); down != 0 {
					penalty += math.Abs(logV - math.Log2(float64(down)))
				}
			}
		}
	}

	// ペナルティなので負の値を返す
	return -penalty
}

// CornerBonusEvaluator は最大タイルが角にあると高評価
type CornerBonusEvaluator struct{}

func (e *CornerBonusEvaluator) Evaluate(g Grid) float64 {
	_, maxRow, maxCol := maxTilePosition(g)
	if isCorner(g.Side(), maxRow, maxCol) {
		return 1.0
	}
	return 0.0
}

// SnakePatternEvaluator はスネークパターンに沿った配置を高評価
type SnakePatternEvaluator struct{}

func (e *SnakePatternEvaluator) Evaluate(g Grid) float64 {
	base := snakeWeights(g.Side())

	// 4つの回転と、それぞれの水平反転を試して最大を返す
	patterns := [][][]float64{base}
	for i := 0; i < 3; i++ {
		patterns = append(patterns, rotateWeights(patterns[i]))
	}
	for i := 0; i < 4; i++ {
		patterns = append(patterns, flipHorizontal(patterns[i]))
	}

	maxScore := math.Inf(-1)
	for _, pattern := range patterns {
		score := 0.0
		for r := range pattern {
			for c := range pattern[r] {
				if v := g.Get(r, c); v > 0 {
					score += pattern[r][c] * math.Log2(float64(v))
				}
			}
		}
		if score > maxScore {
			maxScore = score
		}
	}
	return maxScore
}

// snakeWeights は左上から蛇状に降順となる重みを返す
// 4x4では {15,14,13,12},{8,9,10,11},{7,6,5,4},{0,1,2,3}
func snakeWeights(n int) [][]float64 {
	w := make([][]float64, n)
	for r := 0; r < n; r++ {
		w[r] = make([]float64, n)
		for c := 0; c < n; c++ {
			rank := r*n + c
			if r%2 == 1 {
				rank = r*n + (n - 1 - c)
			}
			w[r][c] = float64(n*n - 1 - rank)
		}
	}
	return w
}

func rotateWeights(w [][]float64) [][]float64 {
	n := len(w)
	result := make([][]float64, n)
	for r := range result {
		result[r] = make([]float64, n)
	}
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			result[c][n-1-r] = w[r][c]
		}
	}
	return result
}

func flipHorizontal(w [][]float64) [][]float64 {
	n := len(w)
	result := make([][]float64, n)
	for r := 0; r < n; r++ {
		result[r] = make([]float64, n)
		for c := 0; c < n; c++ {
			result[r][n-1-c] = w[r][c]
		}
	}
	return result
}

// MaxTileEvaluator は最大タイルの値（log2）で評価する
type MaxTileEvaluator struct{}

func (e *MaxTileEvaluator) Evaluate(g Grid) float64 {
	maxVal := g.MaxTile()
	if maxVal == 0 {
		return 0
	}
	return math.Log2(float64(maxVal))
}

// MergeableEvaluator は隣接する同じ値のペア数で評価する
type MergeableEvaluator struct{}

func (e *MergeableEvaluator) Evaluate(g Grid) float64 {
	n := g.Side()
	count := 0.0
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			v := g.Get(r, c)
			if v == 0 {
				continue
			}
			if c < n-1 && g.Get(r, c+1) == v {
				count++
			}
			if r < n-1 && g.Get(r+1, c) == v {
				count++
			}
		}
	}
	return count
}

// LargestTilePotentialEvaluator は最大タイルを作る可能性で評価する
// 単一の最大タイルの価値を最大化することに特化
type LargestTilePotentialEvaluator struct{}

func (e *LargestTilePotentialEvaluator) Evaluate(g Grid) float64 {
	n := g.Side()
	score := 0.0

	maxVal, maxRow, maxCol := maxTilePosition(g)
	if maxVal == 0 {
		return 0
	}

	// 最大タイルの価値
	score += float64(maxVal) * 10.0

	// 最大タイルが角にあるとボーナス
	if isCorner(n, maxRow, maxCol) {
		score += float64(maxVal) * 5.0
	}

	// 空きマス数（機動力確保）
	score += float64(len(g.EmptyCells())) * float64(maxVal) * 0.1

	secondMax := 0
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if v := g.Get(r, c); v > secondMax && v < maxVal {
				secondMax = v
			}
		}
	}

	// 最大タイルと同じ値が隣接していればマージ可能で大ボーナス
	neighbors := [][2]int{{-1, 0}, {1, 0}, {0, -1}, {0, 1}}
	for _, d := range neighbors {
		nr, nc := maxRow+d[0], maxCol+d[1]
		if nr < 0 || nr >= n || nc < 0 || nc >= n {
			continue
		}
		v := g.Get(nr, nc)
		if v == maxVal {
			score += float64(maxVal) * 20.0
		} else if v == secondMax && secondMax > 0 {
			score += float64(secondMax) * 2.0
		}
	}

	// 最大タイルに近い角を基準にした単調性（0〜1に正規化）
	fromTop := maxRow <= (n-1)/2
	fromLeft := maxCol <= (n-1)/2
	pairs := float64(2 * n * (n - 1))
	score += monotonicity(g, fromTop, fromLeft) / pairs * float64(maxVal) * 0.5

	return score
}

// maxTilePosition は最大タイルの値と位置を返す（同値なら行優先で最初のもの）
func maxTilePosition(g Grid) (int, int, int) {
	n := g.Side()
	maxVal, maxRow, maxCol := 0, 0, 0
	for r := 0; r < n; r++ {
		for c := 0; c < n; c++ {
			if v := g.Get(r, c); v > maxVal {
				maxVal = v
				maxRow, maxCol = r, c
			}
		}
	}
	return maxVal, maxRow, maxCol
}

func isCorner(n, row, col int) bool {
	return (row == 0 || row == n-1) && (col == 0 || col == n-1)
}
