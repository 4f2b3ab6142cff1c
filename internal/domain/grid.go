package domain

import "fmt"

// Grid はside×sideの盤面の値を表す（immutable）
// ソルバーや評価関数が実盤面を変更せずに手をシミュレートするために使う
type Grid struct {
	side  int
	cells []int
}

// NewGrid は行優先のセル列からGridを生成する
func NewGrid(side int, cells []int) (Grid, error) {
	if err := validateCells(side, cells); err != nil {
		return Grid{}, err
	}
	copied := make([]int, len(cells))
	copy(copied, cells)
	return Grid{side: side, cells: copied}, nil
}

// NewGridFromRows は行ごとの値からGridを生成する
func NewGridFromRows(rows [][]int) (Grid, error) {
	side := len(rows)
	cells := make([]int, 0, side*side)
	for r, row := range rows {
		if len(row) != side {
			return Grid{}, fmt.Errorf("%w: row %d has %d cells, want %d", ErrGridSize, r, len(row), side)
		}
		cells = append(cells, row...)
	}
	return NewGrid(side, cells)
}

// Side は一辺の長さを返す
func (g Grid) Side() int {
	return g.side
}

// Get は指定した位置のセル値を取得する
func (g Grid) Get(row, col int) int {
	return g.cells[g.index(row, col)]
}

// Set は指定した位置に値を設定した新しいGridを返す
func (g Grid) Set(row, col, value int) Grid {
	next := g.Cells()
	next[g.index(row, col)] = value
	return Grid{side: g.side, cells: next}
}

// Cells は行優先のセル列のコピーを返す
func (g Grid) Cells() []int {
	copied := make([]int, len(g.cells))
	copy(copied, g.cells)
	return copied
}

// EmptyCells は空のセルの座標一覧を返す
func (g Grid) EmptyCells() [][2]int {
	var empty [][2]int
	for i, v := range g.cells {
		if v == 0 {
			empty = append(empty, [2]int{i / g.side, i % g.side})
		}
	}
	return empty
}

// Swipe は指定した方向にスワイプした結果・獲得スコア・変化の有無を返す（spawnなし）
// 無効な方向の場合は自身をそのまま返す
func (g Grid) Swipe(dir Direction) (Grid, int, bool) {
	if !dir.Valid() {
		return g, 0, false
	}
	next, score, changed := slideCells(g.side, g.cells, dir)
	if !changed {
		return g, 0, false
	}
	return Grid{side: g.side, cells: next}, score, true
}

// CanMove は指定した方向にスワイプすると盤面が変化するかを返す
func (g Grid) CanMove(dir Direction) bool {
	if !dir.Valid() {
		return false
	}
	return canSlide(g.side, g.cells, dir)
}

// IsGameOver は全方向にスワイプできない（ゲームオーバー）かどうかを返す
func (g Grid) IsGameOver() bool {
	return !hasAnyLegalMove(g.side, g.cells)
}

// Equal は2つのGridが等しいかどうかを返す
func (g Grid) Equal(other Grid) bool {
	if g.side != other.side || len(g.cells) != len(other.cells) {
		return false
	}
	for i := range g.cells {
		if g.cells[i] != other.cells[i] {
			return false
		}
	}
	return true
}

// MaxTile は最大タイルの値を返す
func (g Grid) MaxTile() int {
	max := 0
	for _, v := range g.cells {
		if v > max {
			max = v
		}
	}
	return max
}

func (g Grid) index(row, col int) int {
	if row < 0 || row >= g.side || col < 0 || col >= g.side {
		panic(fmt.Sprintf("domain: position (%d,%d) out of range for side %d", row, col, g.side))
	}
	return row*g.side + col
}
