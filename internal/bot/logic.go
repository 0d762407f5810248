package bot

import (
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"

	"ctchen222/tictactoe/internal/game"
)

// Difficulty selects the move strategy the computer uses.
type Difficulty string

const (
	Easy       Difficulty = "easy"
	Medium     Difficulty = "medium"
	Impossible Difficulty = "impossible"
)

// ParseDifficulty accepts a difficulty name in any case.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Impossible:
		return d, nil
	default:
		return "", fmt.Errorf("unknown difficulty %q", s)
	}
}

// BotMoveCalculator implements session.MoveCalculator.
type BotMoveCalculator struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewBotMoveCalculator returns a calculator drawing its random choices from src.
// A nil src uses the global generator.
func NewBotMoveCalculator(src rand.Source) *BotMoveCalculator {
	c := &BotMoveCalculator{}
	if src != nil {
		c.rng = rand.New(src)
	}
	return c
}

// CalculateNextMove picks the move for mark on board at the given difficulty.
// Unknown difficulties play Impossible.
func (c *BotMoveCalculator) CalculateNextMove(board game.Board, mark game.PlayerMark, difficulty Difficulty) (game.Move, error) {
	if len(board.EmptyCells()) == 0 {
		return game.Move{}, game.ErrNoMovesAvailable
	}
	if !mark.IsSide() {
		return game.Move{}, fmt.Errorf("cannot move for mark %q", mark)
	}

	switch difficulty {
	case Easy:
		return c.easyMove(board), nil
	case Medium:
		return c.mediumMove(board, mark), nil
	default:
		return bestMove(board, mark), nil
	}
}

func (c *BotMoveCalculator) intN(n int) int {
	if c.rng == nil {
		return rand.IntN(n)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.rng.IntN(n)
}

// easyMove makes a completely random move.
func (c *BotMoveCalculator) easyMove(board game.Board) game.Move {
	available := board.EmptyCells()
	return available[c.intN(len(available))]
}

// mediumMove will win if it can, block if it must, otherwise move randomly.
func (c *BotMoveCalculator) mediumMove(board game.Board, botMark game.PlayerMark) game.Move {
	for _, side := range []game.PlayerMark{botMark, botMark.Opponent()} {
		if move, found := findWinningMove(board, side); found {
			return move
		}
	}
	return c.easyMove(board)
}

// findWinningMove returns the first empty cell, in row-major order, that completes
// a line for mark. Each candidate is tried on a throwaway copy of the board.
func findWinningMove(board game.Board, mark game.PlayerMark) (game.Move, bool) {
	for _, move := range board.EmptyCells() {
		trial := board.Clone()
		if err := trial.Place(move.Row, move.Col, mark); err != nil {
			continue
		}
		if trial.IsWinner(mark) {
			return move, true
		}
	}
	return game.Move{}, false
}

// bestMove runs a full minimax search for mark. O maximizes and X minimizes the
// Evaluate score. Root moves are scanned in row-major order and only a strictly
// better score replaces the current choice, so ties go to the lowest index.
func bestMove(board game.Board, mark game.PlayerMark) game.Move {
	maximizing := mark == game.PlayerO

	var best game.Move
	bestScore := 0
	found := false
	for _, move := range board.EmptyCells() {
		child := board.Clone()
		child[move.Row][move.Col] = mark
		score := minimax(child, !maximizing)

		if !found || (maximizing && score > bestScore) || (!maximizing && score < bestScore) {
			best, bestScore, found = move, score, true
		}
	}
	return best
}

// minimax returns the value of board under perfect play with the given side to move.
func minimax(board game.Board, maximizing bool) int {
	if score, decided := Evaluate(board); decided {
		return score
	}

	mark := game.PlayerX
	if maximizing {
		mark = game.PlayerO
	}

	best := ScoreOWins + 1
	if maximizing {
		best = ScoreXWins - 1
	}
	for _, move := range board.EmptyCells() {
		child := board.Clone()
		child[move.Row][move.Col] = mark
		score := minimax(child, !maximizing)
		if maximizing && score > best {
			best = score
		}
		if !maximizing && score < best {
			best = score
		}
	}
	return best
}
