package domain

import "errors"

var (
	ErrInvalidSide        = errors.New("side length must be at least 2")
	ErrInvalidProbability = errors.New("spawn probability must be within [0, 1]")
	ErrGridSize           = errors.New("cell count does not match side length")
	ErrInvalidTile        = errors.New("tile must be 0 or a power of two >= 2")
	ErrNegativeScore      = errors.New("score must not be negative")
)
