package game

import "errors"

var (
	// ErrInvalidMove is returned when a coordinate is out of range or the target cell is taken.
	ErrInvalidMove = errors.New("invalid move")
	// ErrNoMovesAvailable is returned when a move is requested for a full board.
	ErrNoMovesAvailable = errors.New("no moves available")
	// ErrInvariantViolation marks a board where both sides hold a winning line.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrInvalidBoard is returned when a board read from outside cannot be parsed.
	ErrInvalidBoard = errors.New("invalid board")
)
