package domain

import "strings"

// Direction はスワイプの方向を表す
// ゼロ値のNoneは何もしない方向として扱う
type Direction int

const (
	None Direction = iota
	Up
	Down
	Left
	Right
)

// Directions は有効な4方向
var Directions = []Direction{Up, Down, Left, Right}

// Valid は上下左右のいずれかであればtrueを返す
func (d Direction) Valid() bool {
	return d >= Up && d <= Right
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "Up"
	case Down:
		return "Down"
	case Left:
		return "Left"
	case Right:
		return "Right"
	default:
		return "None"
	}
}

// ParseDirection は文字列を方向に変換する（"up"/"u" 形式、大文字小文字は区別しない）
func ParseDirection(s string) (Direction, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "up", "u":
		return Up, true
	case "down", "d":
		return Down, true
	case "left", "l":
		return Left, true
	case "right", "r":
		return Right, true
	default:
		return None, false
	}
}
