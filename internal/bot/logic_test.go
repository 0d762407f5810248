package bot

import (
	"math/rand/v2"
	"testing"

	"ctchen222/tictactoe/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	X = game.PlayerX
	O = game.PlayerO
	E = game.None
)

func newTestCalculator() *BotMoveCalculator {
	return NewBotMoveCalculator(rand.NewPCG(1, 2))
}

// moveIn is a helper function to check if a move is in a list of expected moves.
func moveIn(move game.Move, list []game.Move) bool {
	for _, item := range list {
		if item == move {
			return true
		}
	}
	return false
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		in      string
		want    Difficulty
		wantErr bool
	}{
		{in: "easy", want: Easy},
		{in: "Medium", want: Medium},
		{in: " IMPOSSIBLE ", want: Impossible},
		{in: "hard", wantErr: true},
		{in: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDifficulty(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFindWinningMove(t *testing.T) {
	tests := []struct {
		name      string
		board     game.Board
		mark      game.PlayerMark
		want      game.Move
		wantFound bool
	}{
		{
			name:  "No winning move - empty board",
			board: game.Board{},
			mark:  X,
		},
		{
			name: "X can win - first row",
			board: game.Board{
				{X, X, E},
				{O, O, E},
				{E, E, E},
			},
			mark: X,
			want: game.Move{Row: 0, Col: 2}, wantFound: true,
		},
		{
			name: "O can win - second column",
			board: game.Board{
				{X, O, E},
				{X, O, E},
				{E, E, E},
			},
			mark: O,
			want: game.Move{Row: 2, Col: 1}, wantFound: true,
		},
		{
			name: "X can win - main diagonal",
			board: game.Board{
				{X, E, E},
				{E, X, E},
				{E, E, E},
			},
			mark: X,
			want: game.Move{Row: 2, Col: 2}, wantFound: true,
		},
		{
			name: "O can win - anti-diagonal",
			board: game.Board{
				{E, E, O},
				{E, O, E},
				{E, E, E},
			},
			mark: O,
			want: game.Move{Row: 2, Col: 0}, wantFound: true,
		},
		{
			name: "Two winning cells - lowest row-major index first",
			board: game.Board{
				{X, E, X},
				{E, E, E},
				{X, E, E},
			},
			mark: X,
			want: game.Move{Row: 0, Col: 1}, wantFound: true,
		},
		{
			name: "Full board, no win possible",
			board: game.Board{
				{X, O, X},
				{O, X, O},
				{O, X, O},
			},
			mark: X,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			before := tt.board
			move, found := findWinningMove(tt.board, tt.mark)
			assert.Equal(t, tt.wantFound, found)
			if tt.wantFound {
				assert.Equal(t, tt.want, move)
			}
			assert.Equal(t, before, tt.board, "speculative placements must not leak into the board")
		})
	}
}

func TestEasyMove(t *testing.T) {
	c := newTestCalculator()

	t.Run("Only one spot left", func(t *testing.T) {
		board := game.Board{
			{X, O, X},
			{O, X, O},
			{O, E, O},
		}
		move, err := c.CalculateNextMove(board, X, Easy)
		require.NoError(t, err)
		assert.Equal(t, game.Move{Row: 2, Col: 1}, move)
	})

	t.Run("Multiple spots left - every pick is an empty cell", func(t *testing.T) {
		board := game.Board{
			{X, E, E},
			{E, O, E},
			{E, E, E},
		}
		available := board.EmptyCells()
		seen := make(map[game.Move]bool)
		for i := 0; i < 200; i++ {
			move, err := c.CalculateNextMove(board, O, Easy)
			require.NoError(t, err)
			require.True(t, moveIn(move, available), "easy move %v is not an empty cell", move)
			seen[move] = true
		}
		assert.Greater(t, len(seen), 1, "easy moves should not always be the same cell")
	})

	t.Run("Full board", func(t *testing.T) {
		board := game.Board{
			{X, O, X},
			{O, X, O},
			{X, O, X},
		}
		_, err := c.CalculateNextMove(board, O, Easy)
		assert.ErrorIs(t, err, game.ErrNoMovesAvailable)
	})
}

func TestMediumMove(t *testing.T) {
	c := newTestCalculator()

	tests := []struct {
		name    string
		board   game.Board
		botMark game.PlayerMark
		want    game.Move
		random  bool
	}{
		{
			name: "Bot can win",
			board: game.Board{
				{O, O, E},
				{X, E, E},
				{X, E, X},
			},
			botMark: O,
			want:    game.Move{Row: 0, Col: 2},
		},
		{
			name: "Bot must block opponent",
			board: game.Board{
				{X, X, E},
				{O, E, E},
				{E, E, E},
			},
			botMark: O,
			want:    game.Move{Row: 0, Col: 2},
		},
		{
			name: "Winning beats blocking",
			board: game.Board{
				{X, X, E},
				{O, O, E},
				{X, E, E},
			},
			botMark: O,
			want:    game.Move{Row: 1, Col: 2},
		},
		{
			name: "No immediate win or block, random move",
			board: game.Board{
				{X, E, E},
				{E, O, E},
				{E, E, E},
			},
			botMark: O,
			random:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			move, err := c.CalculateNextMove(tt.board, tt.botMark, Medium)
			require.NoError(t, err)
			if tt.random {
				assert.True(t, moveIn(move, tt.board.EmptyCells()), "medium move %v is not an empty cell", move)
				return
			}
			assert.Equal(t, tt.want, move)
		})
	}
}

func TestImpossibleMove(t *testing.T) {
	c := newTestCalculator()

	tests := []struct {
		name    string
		board   game.Board
		botMark game.PlayerMark
		want    game.Move
	}{
		{
			name:    "Empty board opens at the first row-major cell",
			board:   game.Board{},
			botMark: O,
			want:    game.Move{Row: 0, Col: 0},
		},
		{
			name:    "Empty board as X opens at the first row-major cell",
			board:   game.Board{},
			botMark: X,
			want:    game.Move{Row: 0, Col: 0},
		},
		{
			name: "Takes the immediate win",
			board: game.Board{
				{O, O, E},
				{X, X, E},
				{X, E, E},
			},
			botMark: O,
			want:    game.Move{Row: 0, Col: 2},
		},
		{
			name: "Earlier forced win beats a later immediate win",
			board: game.Board{
				{X, O, X},
				{E, O, E},
				{X, E, E},
			},
			botMark: O,
			want:    game.Move{Row: 1, Col: 0},
		},
		{
			name: "Blocks the opponent's immediate win",
			board: game.Board{
				{X, X, E},
				{E, O, E},
				{E, E, E},
			},
			botMark: O,
			want:    game.Move{Row: 0, Col: 2},
		},
		{
			name: "X blocks O's immediate win",
			board: game.Board{
				{X, E, E},
				{O, O, E},
				{X, E, E},
			},
			botMark: X,
			want:    game.Move{Row: 1, Col: 2},
		},
		{
			name: "Answers a corner opening with the centre",
			board: game.Board{
				{X, E, E},
				{E, E, E},
				{E, E, E},
			},
			botMark: O,
			want:    game.Move{Row: 1, Col: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			move, err := c.CalculateNextMove(tt.board, tt.botMark, Impossible)
			require.NoError(t, err)
			assert.Equal(t, tt.want, move)
		})
	}
}

func TestCalculateNextMove_UnknownDifficultyPlaysImpossible(t *testing.T) {
	c := newTestCalculator()
	board := game.Board{
		{X, X, E},
		{E, O, E},
		{E, E, E},
	}
	move, err := c.CalculateNextMove(board, O, Difficulty("nightmare"))
	require.NoError(t, err)
	assert.Equal(t, game.Move{Row: 0, Col: 2}, move)
}

func TestCalculateNextMove_Errors(t *testing.T) {
	c := newTestCalculator()
	full := game.Board{
		{X, O, X},
		{O, X, O},
		{O, X, O},
	}
	for _, d := range []Difficulty{Easy, Medium, Impossible} {
		_, err := c.CalculateNextMove(full, O, d)
		assert.ErrorIs(t, err, game.ErrNoMovesAvailable, "difficulty %s", d)
	}

	_, err := c.CalculateNextMove(game.Board{}, E, Easy)
	assert.Error(t, err)
}

func TestImpossible_SelfPlayDraws(t *testing.T) {
	c := newTestCalculator()
	var board game.Board
	turn := X

	for !board.Outcome().IsTerminal() {
		move, err := c.CalculateNextMove(board, turn, Impossible)
		require.NoError(t, err)
		require.NoError(t, board.Place(move.Row, move.Col, turn))
		turn = turn.Opponent()
	}

	assert.Equal(t, game.Outcome{Status: game.Draw}, board.Outcome(), "final board %s", board)
}

// TestImpossible_NeverLoses plays every possible X line against the O search.
func TestImpossible_NeverLoses(t *testing.T) {
	var explore func(board game.Board)
	games := 0
	explore = func(board game.Board) {
		for _, move := range board.EmptyCells() {
			next := board.Clone()
			require.NoError(t, next.Place(move.Row, move.Col, X))
			if next.Outcome().IsTerminal() {
				games++
				require.NotEqual(t, X, next.Outcome().Winner, "X won against the search: %s", next)
				continue
			}

			reply := bestMove(next, O)
			require.NoError(t, next.Place(reply.Row, reply.Col, O))
			if next.Outcome().IsTerminal() {
				games++
				continue
			}
			explore(next)
		}
	}

	explore(game.Board{})
	assert.Positive(t, games)
}
