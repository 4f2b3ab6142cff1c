package domain

import "fmt"

// lineIndex は方向dirにおけるn番目のラインについて、
// 寄せる側の端からk番目にあたるセルの行優先インデックスを返す
func lineIndex(dir Direction, side, n, k int) int {
	switch dir {
	case Left:
		return n*side + k
	case Right:
		return n*side + (side - 1 - k)
	case Up:
		return k*side + n
	case Down:
		return (side-1-k)*side + n
	default:
		panic(fmt.Sprintf("domain: lineIndex called with %v", dir))
	}
}

// slideLine は1ラインを先頭側に詰めてマージし、結果・獲得スコア・変化の有無を返す
// 入力のスライスは変更しない
func slideLine(line []int) ([]int, int, bool) {
	score := 0

	// 0を除去して詰める
	nonZero := make([]int, 0, len(line))
	for _, v := range line {
		if v != 0 {
			nonZero = append(nonZero, v)
		}
	}

	// 先頭から順に隣接する同じ値をマージ（マージ済みのタイルは再マージしない）
	result := make([]int, len(line))
	w := 0
	for i := 0; i < len(nonZero); i++ {
		if i+1 < len(nonZero) && nonZero[i] == nonZero[i+1] {
			result[w] = nonZero[i] * 2
			score += result[w]
			i++
		} else {
			result[w] = nonZero[i]
		}
		w++
	}

	changed := false
	for i := range line {
		if line[i] != result[i] {
			changed = true
			break
		}
	}
	return result, score, changed
}

// slideCells は盤面全体を方向dirにスライドした新しいセル列を返す
// cellsは変更しない
func slideCells(side int, cells []int, dir Direction) ([]int, int, bool) {
	next := make([]int, len(cells))
	line := make([]int, side)
	total := 0
	changed := false

	for n := 0; n < side; n++ {
		for k := 0; k < side; k++ {
			line[k] = cells[lineIndex(dir, side, n, k)]
		}
		slid, score, lineChanged := slideLine(line)
		for k := 0; k < side; k++ {
			next[lineIndex(dir, side, n, k)] = slid[k]
		}
		total += score
		changed = changed || lineChanged
	}

	return next, total, changed
}

// canSlide は方向dirのスライドで盤面が変化するかを返す
func canSlide(side int, cells []int, dir Direction) bool {
	line := make([]int, side)
	for n := 0; n < side; n++ {
		for k := 0; k < side; k++ {
			line[k] = cells[lineIndex(dir, side, n, k)]
		}
		if _, _, changed := slideLine(line); changed {
			return true
		}
	}
	return false
}

// hasAnyLegalMove はいずれかの方向に動かせればtrueを返す
func hasAnyLegalMove(side int, cells []int) bool {
	for _, dir := range Directions {
		if canSlide(side, cells, dir) {
			return true
		}
	}
	return false
}

func isPowerOfTwo(v int) bool {
	return v >= 2 && v&(v-1) == 0
}

// validateCells はセル数とタイル値を検証する
func validateCells(side int, cells []int) error {
	if side < 2 {
		return ErrInvalidSide
	}
	if len(cells) != side*side {
		return fmt.Errorf("%w: got %d cells for side %d", ErrGridSize, len(cells), side)
	}
	for i, v := range cells {
		if v != 0 && !isPowerOfTwo(v) {
			return fmt.Errorf("%w: %d at index %d", ErrInvalidTile, v, i)
		}
	}
	return nil
}
