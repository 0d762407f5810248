package bot

import (
	"errors"
	"testing"

	"ctchen222/tictactoe/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name        string
		board       game.Board
		wantScore   int
		wantDecided bool
	}{
		{
			name:  "Empty board is open",
			board: game.Board{},
		},
		{
			name: "O line scores +1",
			board: game.Board{
				{O, O, O},
				{X, X, E},
				{X, E, E},
			},
			wantScore: ScoreOWins, wantDecided: true,
		},
		{
			name: "X line scores -1",
			board: game.Board{
				{X, O, O},
				{E, X, E},
				{E, E, X},
			},
			wantScore: ScoreXWins, wantDecided: true,
		},
		{
			name: "Full board without a line scores 0",
			board: game.Board{
				{X, O, X},
				{X, O, O},
				{O, X, X},
			},
			wantScore: ScoreDraw, wantDecided: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score, decided := Evaluate(tt.board)
			assert.Equal(t, tt.wantDecided, decided)
			if tt.wantDecided {
				assert.Equal(t, tt.wantScore, score)
			}
		})
	}
}

func TestEvaluate_BothSidesWinningPanics(t *testing.T) {
	board := game.Board{
		{X, X, X},
		{O, O, O},
		{E, E, E},
	}

	defer func() {
		r := recover()
		require.NotNil(t, r, "Evaluate should panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value should be an error, got %T", r)
		assert.True(t, errors.Is(err, game.ErrInvariantViolation))
	}()
	Evaluate(board)
}

// TestEvaluate_AgreesWithIsWinner walks every board reachable by legal play.
func TestEvaluate_AgreesWithIsWinner(t *testing.T) {
	seen := make(map[game.Board]bool)
	var walk func(board game.Board, turn game.PlayerMark)
	walk = func(board game.Board, turn game.PlayerMark) {
		if seen[board] {
			return
		}
		seen[board] = true

		score, decided := Evaluate(board)
		require.Equal(t, decided && score == ScoreOWins, board.IsWinner(O), "O disagreement on %s", board)
		require.Equal(t, decided && score == ScoreXWins, board.IsWinner(X), "X disagreement on %s", board)
		if decided {
			return
		}

		for _, move := range board.EmptyCells() {
			next := board.Clone()
			next[move.Row][move.Col] = turn
			walk(next, turn.Opponent())
		}
	}

	walk(game.Board{}, X)
	assert.Equal(t, 5478, len(seen), "number of reachable boards")
}
