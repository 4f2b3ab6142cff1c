package domain

import (
	"fmt"
	"math/rand"
	"time"
)

// DefaultTwoProbability はspawnで2が出る確率（残りは4）
const DefaultTwoProbability = 0.9

// BoardConfig はBoardの生成パラメータ
type BoardConfig struct {
	Side           int
	TwoProbability float64
}

// DefaultBoardConfig はデフォルトの設定（4x4、2が90%）を返す
func DefaultBoardConfig() BoardConfig {
	return BoardConfig{
		Side:           4,
		TwoProbability: DefaultTwoProbability,
	}
}

// Validate は設定値を検証する
func (c BoardConfig) Validate() error {
	if c.Side < 2 {
		return fmt.Errorf("%w: got %d", ErrInvalidSide, c.Side)
	}
	if c.TwoProbability < 0 || c.TwoProbability > 1 {
		return fmt.Errorf("%w: got %v", ErrInvalidProbability, c.TwoProbability)
	}
	return nil
}

// State はBoardの状態のスナップショット
type State struct {
	Side     int
	Cells    []int
	Score    int
	Terminal bool
}

// Board は2048ゲームの盤面・スコア・終了フラグ・乱数源を所有する
// 盤面を変更できるのはResetとMoveのみ
// 内部でロックを取らないため、同じBoardを複数のgoroutineから同時に操作してはならない
type Board struct {
	side     int
	cells    []int
	score    int
	terminal bool
	twoProb  float64
	rng      *rand.Rand
}

// NewBoard は空のBoardを生成する
// rngがnilの場合は現在時刻でシードした乱数源を使う
// 空の盤面はどの方向にも動かせないため、Resetするまでは終了状態として扱う
func NewBoard(cfg BoardConfig, rng *rand.Rand) (*Board, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Board{
		side:     cfg.Side,
		cells:    make([]int, cfg.Side*cfg.Side),
		terminal: true,
		twoProb:  cfg.TwoProbability,
		rng:      rng,
	}, nil
}

// Reset は盤面とスコアをクリアし、初期配置として2つのタイルを配置する
func (b *Board) Reset() {
	for i := range b.cells {
		b.cells[i] = 0
	}
	b.score = 0
	b.terminal = false

	b.spawnTile()
	b.spawnTile()
}

// Move は指定した方向にスワイプを実行する
// 盤面が変化した場合はtrueを返す。終了状態や無効な方向の場合は何もせずfalseを返す
func (b *Board) Move(dir Direction) bool {
	if b.terminal || !dir.Valid() {
		return false
	}

	next, score, changed := slideCells(b.side, b.cells, dir)
	if !changed {
		return false
	}

	b.cells = next
	b.score += score

	// spawnと終了判定は独立に行う
	if b.hasEmptyCell() {
		b.spawnTile()
	}
	b.terminal = !hasAnyLegalMove(b.side, b.cells)
	return true
}

// Score は現在のスコアを返す
func (b *Board) Score() int {
	return b.score
}

// IsTerminal はどの方向にも動かせない状態かどうかを返す
func (b *Board) IsTerminal() bool {
	return b.terminal
}

// Side は一辺の長さを返す
func (b *Board) Side() int {
	return b.side
}

// TileAt は指定した位置のタイル値を返す（0は空）
func (b *Board) TileAt(row, col int) int {
	if row < 0 || row >= b.side || col < 0 || col >= b.side {
		panic(fmt.Sprintf("domain: position (%d,%d) out of range for side %d", row, col, b.side))
	}
	return b.cells[row*b.side+col]
}

// FullGrid は行優先の全セル値のコピーを返す
func (b *Board) FullGrid() []int {
	cells := make([]int, len(b.cells))
	copy(cells, b.cells)
	return cells
}

// Grid は現在の盤面をGridとして返す
func (b *Board) Grid() Grid {
	return Grid{side: b.side, cells: b.FullGrid()}
}

// Snapshot は現在の状態を返す
func (b *Board) Snapshot() State {
	return State{
		Side:     b.side,
		Cells:    b.FullGrid(),
		Score:    b.score,
		Terminal: b.terminal,
	}
}

// Restore は保存された状態を復元する
// 一辺の長さは変更できない。Terminalは入力値を使わず盤面から再計算する
func (b *Board) Restore(s State) error {
	if s.Side != b.side {
		return fmt.Errorf("%w: state side %d, board side %d", ErrGridSize, s.Side, b.side)
	}
	if err := validateCells(b.side, s.Cells); err != nil {
		return err
	}
	if s.Score < 0 {
		return fmt.Errorf("%w: got %d", ErrNegativeScore, s.Score)
	}

	copy(b.cells, s.Cells)
	b.score = s.Score
	b.terminal = !hasAnyLegalMove(b.side, b.cells)
	return nil
}

func (b *Board) hasEmptyCell() bool {
	for _, v := range b.cells {
		if v == 0 {
			return true
		}
	}
	return false
}

// spawnTile は空きマスから一様に1つ選び、2または4を配置する
// 空きマスがない状態で呼ぶのはBoard自身のバグ
func (b *Board) spawnTile() {
	empty := make([]int, 0, len(b.cells))
	for i, v := range b.cells {
		if v == 0 {
			empty = append(empty, i)
		}
	}
	if len(empty) == 0 {
		panic("domain: spawnTile called on a full grid")
	}

	pos := empty[b.rng.Intn(len(empty))]
	val := 4
	if b.rng.Float64() < b.twoProb {
		val = 2
	}
	b.cells[pos] = val
}
