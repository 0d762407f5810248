package bot

import (
	"fmt"

	"ctchen222/tictactoe/internal/game"
)

// Scores returned by Evaluate, from O's (the maximizing side's) point of view.
const (
	ScoreOWins = 1
	ScoreXWins = -1
	ScoreDraw  = 0
)

// Evaluate scores a terminal board for the maximizing side O: +1 when O holds a
// line, -1 when X does, 0 for a full board without a winner. decided is false
// while the game is still open.
//
// A board where both sides hold a line cannot be reached by legal play; Evaluate
// panics with game.ErrInvariantViolation if it sees one.
func Evaluate(board game.Board) (score int, decided bool) {
	xWins := board.IsWinner(game.PlayerX)
	oWins := board.IsWinner(game.PlayerO)

	switch {
	case xWins && oWins:
		panic(fmt.Errorf("%w: both sides hold a line on %s", game.ErrInvariantViolation, board))
	case oWins:
		return ScoreOWins, true
	case xWins:
		return ScoreXWins, true
	case board.IsFull():
		return ScoreDraw, true
	default:
		return 0, false
	}
}
