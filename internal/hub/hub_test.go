package hub

import (
	"context"
	"testing"
	"time"

	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/room"
	"ctchen222/tictactoe/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoom(t *testing.T, id string) *room.Room {
	t.Helper()
	calc := bot.NewBotMoveCalculator(nil)
	s := session.New(false, bot.Easy, session.WithAsyncComputer(), session.WithCalculator(calc))
	r := room.NewRoom(id, s, bot.NewWorker(calc, 0), 0)
	r.Start(context.Background())
	return r
}

func TestHub_RegisterAndUnregister(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub()
	go h.Run(ctx)

	a, b := newRoom(t, "a"), newRoom(t, "b")
	defer a.Stop()
	defer b.Stop()

	require.True(t, h.Register(a))
	require.True(t, h.Register(b))
	assert.Equal(t, 2, h.Count())

	h.Unregister("a")
	h.Unregister("missing")
	assert.Equal(t, 1, h.Count())
}

func TestHub_ShutdownStopsRooms(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	h := NewHub()
	go h.Run(ctx)

	r := newRoom(t, "a")
	require.True(t, h.Register(r))

	cancel()

	select {
	case <-r.Done():
	case <-time.After(time.Second):
		t.Fatal("room was not stopped when the hub shut down")
	}

	late := newRoom(t, "late")
	defer late.Stop()
	assert.False(t, h.Register(late))
	assert.Equal(t, 0, h.Count())
	h.Unregister("a")
}
