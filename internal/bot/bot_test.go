package bot

import (
	"context"
	"testing"
	"time"

	"ctchen222/tictactoe/internal/game"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorker_Think_DeliversResult(t *testing.T) {
	w := NewWorker(newTestCalculator(), 10*time.Millisecond)

	board := game.Board{
		{X, X, E},
		{E, O, E},
		{E, E, E},
	}
	w.Think(context.Background(), Request{Generation: 7, Board: board, Mark: O, Difficulty: Impossible})

	select {
	case res := <-w.Results():
		require.NoError(t, res.Err)
		assert.Equal(t, uint64(7), res.Generation)
		assert.Equal(t, game.Move{Row: 0, Col: 2}, res.Move)
	case <-time.After(2 * time.Second):
		t.Fatal("Bot did not make a move within the expected time")
	}
}

func TestWorker_Think_ReportsCalculatorError(t *testing.T) {
	w := NewWorker(newTestCalculator(), 0)

	full := game.Board{
		{X, O, X},
		{O, X, O},
		{O, X, O},
	}
	w.Think(context.Background(), Request{Generation: 1, Board: full, Mark: O, Difficulty: Easy})

	select {
	case res := <-w.Results():
		assert.ErrorIs(t, res.Err, game.ErrNoMovesAvailable)
	case <-time.After(2 * time.Second):
		t.Fatal("Bot did not report within the expected time")
	}
}

func TestWorker_Think_CancelledDuringDelay(t *testing.T) {
	w := NewWorker(newTestCalculator(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	w.Think(ctx, Request{Generation: 1, Board: game.Board{}, Mark: O, Difficulty: Easy})
	cancel()

	select {
	case res := <-w.Results():
		t.Errorf("Bot produced a move after cancellation: %+v", res)
	case <-time.After(100 * time.Millisecond):
		// Expected behavior: no result
	}
}
