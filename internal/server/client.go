package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/events"
	"ctchen222/tictactoe/internal/room"
	"ctchen222/tictactoe/internal/validator"
	"ctchen222/tictactoe/pkg/proto"

	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	writeWait    = 10 * time.Second
	pingInterval = 30 * time.Second
)

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// client pumps one connection: client messages into the room, room events and
// direct replies back out.
type client struct {
	roomID string
	conn   Connection
	room   *room.Room
	bus    *events.Bus
	direct chan proto.ServerToClientMessage
}

func newClient(roomID string, conn Connection, rm *room.Room, bus *events.Bus) *client {
	return &client{
		roomID: roomID,
		conn:   conn,
		room:   rm,
		bus:    bus,
		direct: make(chan proto.ServerToClientMessage, 8),
	}
}

// serve blocks until the connection drops, then tears the room down.
func (c *client) serve(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	sub, unsubscribe := c.bus.Subscribe()

	defer func() {
		cancel()
		c.room.Stop()
		unsubscribe()
		c.bus.Close()
		if err := c.conn.Close(); err != nil {
			slog.Debug("Failed to close connection", "room.id", c.roomID, "error", err)
		}
		slog.Info("Connection closed", "room.id", c.roomID)
	}()

	go c.writePump(ctx, sub)

	if state, err := c.room.State(ctx); err == nil {
		c.reply(stateMessage(proto.TypeState, state))
	}
	c.readPump(ctx)
}

func (c *client) readPump(ctx context.Context) {
	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(ctx, "Player connection error", "room.id", c.roomID, "error", err)
			}
			return
		}
		c.handleMessage(ctx, data)
	}
}

func (c *client) writePump(ctx context.Context, sub <-chan events.Event) {
	pingTicker := time.NewTicker(pingInterval)
	defer pingTicker.Stop()
	// Closing unblocks readPump when the writer gives up first.
	defer c.conn.Close()

	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-sub:
			if !ok {
				return
			}
			msg, err := eventMessage(ev)
			if err != nil {
				slog.ErrorContext(ctx, "Failed to convert event", "room.id", c.roomID, "event", ev.Type, "error", err)
				continue
			}
			c.write(ctx, msg)

		case msg := <-c.direct:
			c.write(ctx, msg)

		case <-pingTicker.C:
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.WarnContext(ctx, "Failed to send ping, assuming disconnect", "room.id", c.roomID, "error", err)
				return
			}
		}
	}
}

func (c *client) write(ctx context.Context, msg proto.ServerToClientMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to marshal message", "room.id", c.roomID, "error", err)
		return
	}
	if wc, ok := c.conn.(interface{ SetWriteDeadline(time.Time) error }); ok {
		_ = wc.SetWriteDeadline(time.Now().Add(writeWait))
	}
	if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
		slog.WarnContext(ctx, "Failed to write message", "room.id", c.roomID, "error", err)
	}
}

// reply queues a message for this connection only.
func (c *client) reply(msg proto.ServerToClientMessage) {
	select {
	case c.direct <- msg:
	default:
		slog.Warn("Dropping reply for slow connection", "room.id", c.roomID, "type", msg.Type)
	}
}

func (c *client) replyError(err error) {
	c.reply(proto.ServerToClientMessage{Type: proto.TypeError, Reason: err.Error()})
}

// handleMessage validates a client message and runs it against the room.
func (c *client) handleMessage(ctx context.Context, data []byte) {
	ctx, span := tracer.Start(ctx, "server.handleMessage", trace.WithAttributes(
		attribute.String("room.id", c.roomID),
	))
	defer span.End()

	var msg proto.ClientToServerMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Malformed message")
		c.replyError(errors.New("malformed message"))
		return
	}
	if err := validator.Struct(&msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid message")
		c.replyError(err)
		return
	}
	span.SetAttributes(attribute.String("message.type", msg.Type))

	var err error
	switch msg.Type {
	case proto.TypeMove:
		_, err = c.room.SubmitMove(ctx, msg.Position[0], msg.Position[1])
	case proto.TypeReset:
		err = c.room.Reset(ctx)
	case proto.TypeDifficulty:
		err = c.room.SetDifficulty(ctx, bot.Difficulty(msg.Difficulty))
	case proto.TypeMode:
		err = c.room.SetMode(ctx, *msg.VsComputer)
	case proto.TypeResetScores:
		err = c.room.ResetScores(ctx)
	case proto.TypeState:
		state, stateErr := c.room.State(ctx)
		if stateErr == nil {
			c.reply(stateMessage(proto.TypeState, state))
		}
		err = stateErr
	}

	if err != nil {
		slog.InfoContext(ctx, "Message rejected", "room.id", c.roomID, "message.type", msg.Type, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Message rejected")
		c.replyError(err)
	}
}
