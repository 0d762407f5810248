package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/events"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/pkg/proto"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, opts Options) *httptest.Server {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	ts := httptest.NewServer(NewServer(ctx, opts).Engine())
	t.Cleanup(func() {
		ts.Close()
		cancel()
	})
	return ts
}

func dial(t *testing.T, ts *httptest.Server, query string) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws" + query
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

// readUntil reads messages until one of the wanted type arrives.
func readUntil(t *testing.T, conn *websocket.Conn, msgType string) proto.ServerToClientMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(3*time.Second)))
	for {
		var msg proto.ServerToClientMessage
		require.NoError(t, conn.ReadJSON(&msg), "waiting for %q", msgType)
		if msg.Type == msgType {
			return msg
		}
	}
}

func TestHealthz(t *testing.T) {
	ts := newTestServer(t, Options{Difficulty: bot.Impossible})

	res, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestWebSocket_TwoHumansPlayToWin(t *testing.T) {
	ts := newTestServer(t, Options{Difficulty: bot.Impossible})
	conn := dial(t, ts, "?mode=human")

	state := readUntil(t, conn, proto.TypeState)
	assert.Equal(t, game.PlayerX, state.Next)
	require.NotNil(t, state.VsComputer)
	assert.False(t, *state.VsComputer)

	moves := [][]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}, {0, 2}}
	for _, m := range moves {
		require.NoError(t, conn.WriteJSON(proto.ClientToServerMessage{Type: proto.TypeMove, Position: m}))
		ev := readUntil(t, conn, events.TypeMove)
		assert.Equal(t, m, ev.Position)
	}

	win := readUntil(t, conn, events.TypeWin)
	assert.Equal(t, game.PlayerX, win.Winner)
	assert.Equal(t, "Player 1", win.Name)

	score := readUntil(t, conn, events.TypeScore)
	require.NotNil(t, score.Scores)
	assert.Equal(t, proto.Scores{X: 1}, *score.Scores)
}

func TestWebSocket_DisplayNames(t *testing.T) {
	ts := newTestServer(t, Options{Difficulty: bot.Impossible})
	conn := dial(t, ts, "?mode=human&x=Alice&o=Bob")
	readUntil(t, conn, proto.TypeState)

	for _, m := range [][]int{{1, 0}, {0, 0}, {2, 2}, {0, 1}, {2, 0}, {0, 2}} {
		require.NoError(t, conn.WriteJSON(proto.ClientToServerMessage{Type: proto.TypeMove, Position: m}))
		readUntil(t, conn, events.TypeMove)
	}

	win := readUntil(t, conn, events.TypeWin)
	assert.Equal(t, game.PlayerO, win.Winner)
	assert.Equal(t, "Bob", win.Name)
}

func TestWebSocket_ComputerReplies(t *testing.T) {
	ts := newTestServer(t, Options{Difficulty: bot.Impossible, ComputerDelay: 10 * time.Millisecond})
	conn := dial(t, ts, "?mode=bot&difficulty=impossible")
	readUntil(t, conn, proto.TypeState)

	require.NoError(t, conn.WriteJSON(proto.ClientToServerMessage{Type: proto.TypeMove, Position: []int{0, 0}}))

	human := readUntil(t, conn, events.TypeMove)
	assert.Equal(t, game.PlayerX, human.Mark)

	computer := readUntil(t, conn, events.TypeMove)
	assert.Equal(t, game.PlayerO, computer.Mark)
	assert.Equal(t, []int{1, 1}, computer.Position, "centre is the only reply to a corner opening that draws")
	assert.Equal(t, game.PlayerX, computer.Next)
}

func TestWebSocket_RejectsInvalidMessages(t *testing.T) {
	ts := newTestServer(t, Options{Difficulty: bot.Impossible})
	conn := dial(t, ts, "?mode=human")
	readUntil(t, conn, proto.TypeState)

	tests := []struct {
		name string
		msg  string
	}{
		{name: "Malformed JSON", msg: `{"type":`},
		{name: "Unknown type", msg: `{"type":"undo"}`},
		{name: "Move without position", msg: `{"type":"move"}`},
		{name: "Position out of range", msg: `{"type":"move","position":[3,0]}`},
		{name: "Unknown difficulty", msg: `{"type":"difficulty","difficulty":"hard"}`},
		{name: "Mode without flag", msg: `{"type":"mode"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(tt.msg)))
			msg := readUntil(t, conn, proto.TypeError)
			assert.NotEmpty(t, msg.Reason)
		})
	}

	// The game is untouched by the rejected messages.
	require.NoError(t, conn.WriteJSON(proto.ClientToServerMessage{Type: proto.TypeState}))
	state := readUntil(t, conn, proto.TypeState)
	assert.Equal(t, game.PlayerX, state.Next)
}

func TestWebSocket_OccupiedCell(t *testing.T) {
	ts := newTestServer(t, Options{Difficulty: bot.Impossible})
	conn := dial(t, ts, "?mode=human")
	readUntil(t, conn, proto.TypeState)

	require.NoError(t, conn.WriteJSON(proto.ClientToServerMessage{Type: proto.TypeMove, Position: []int{1, 1}}))
	readUntil(t, conn, events.TypeMove)
	require.NoError(t, conn.WriteJSON(proto.ClientToServerMessage{Type: proto.TypeMove, Position: []int{1, 1}}))

	msg := readUntil(t, conn, proto.TypeError)
	assert.Contains(t, msg.Reason, game.ErrInvalidMove.Error())
}

func TestWebSocket_ModeAndReset(t *testing.T) {
	ts := newTestServer(t, Options{Difficulty: bot.Impossible})
	conn := dial(t, ts, "?mode=human")
	readUntil(t, conn, proto.TypeState)

	vsComputer := true
	require.NoError(t, conn.WriteJSON(proto.ClientToServerMessage{Type: proto.TypeMode, VsComputer: &vsComputer}))
	reset := readUntil(t, conn, events.TypeReset)
	require.NotNil(t, reset.VsComputer)
	assert.True(t, *reset.VsComputer)

	require.NoError(t, conn.WriteJSON(proto.ClientToServerMessage{Type: proto.TypeDifficulty, Difficulty: "easy"}))
	reset = readUntil(t, conn, events.TypeReset)
	assert.Equal(t, "easy", reset.Difficulty)
}

func TestWebSocket_BadDifficultyQuery(t *testing.T) {
	ts := newTestServer(t, Options{Difficulty: bot.Impossible})

	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws?difficulty=hard"
	_, res, err := websocket.DefaultDialer.Dial(url, nil)
	require.Error(t, err)
	require.NotNil(t, res)
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}

func TestServer_TracksRooms(t *testing.T) {
	gin.SetMode(gin.TestMode)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	srv := NewServer(ctx, Options{Difficulty: bot.Impossible})
	ts := httptest.NewServer(srv.Engine())
	defer ts.Close()

	conn := dial(t, ts, "?mode=human")
	readUntil(t, conn, proto.TypeState)
	assert.Equal(t, 1, srv.Rooms())

	require.NoError(t, conn.Close())
	assert.Eventually(t, func() bool { return srv.Rooms() == 0 }, 2*time.Second, 10*time.Millisecond)
}
