package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"ctchen222/tictactoe/internal/api/controller"
	"ctchen222/tictactoe/internal/api/response"
	"ctchen222/tictactoe/internal/api/service"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/events"
	"ctchen222/tictactoe/internal/hub"
	"ctchen222/tictactoe/internal/room"
	"ctchen222/tictactoe/internal/session"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("server")

// Options are the game defaults for new connections and the optional event
// sink shared by every room.
type Options struct {
	VsComputer    bool
	Difficulty    bot.Difficulty
	MoveTimeout   time.Duration
	ComputerDelay time.Duration
	// Publisher receives every room's events in addition to the connection
	// itself, for example a RedisPublisher. Nil means none.
	Publisher events.Publisher
}

type Server struct {
	hub      *hub.Hub
	engine   *gin.Engine
	upgrader websocket.Upgrader
	opts     Options
	ctx      context.Context
}

// NewServer builds the gin engine. Rooms started by the server stop when ctx is
// cancelled.
func NewServer(ctx context.Context, opts Options) *Server {
	s := &Server{
		hub:    hub.NewHub(),
		engine: gin.New(),
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		opts: opts,
		ctx:  ctx,
	}
	s.engine.Use(gin.Recovery())
	s.registerHandlers()
	go s.hub.Run(ctx)
	return s
}

// Rooms returns the number of live games.
func (s *Server) Rooms() int {
	return s.hub.Count()
}

// Engine returns the HTTP handler.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

func (s *Server) registerHandlers() {
	moveController := controller.NewMoveController(service.NewMoveService(bot.NewBotMoveCalculator(nil)))

	s.engine.GET("/healthz", func(c *gin.Context) {
		response.SuccessResponse(c, gin.H{"status": "ok", "rooms": s.Rooms()})
	})
	s.engine.GET("/ws", s.handleWebSocket)
	s.engine.POST("/api/move", moveController.Move)
}

// handleWebSocket upgrades the connection and gives it a game of its own. The
// query parameters mode (human|bot) and difficulty override the defaults; x and
// o set display names.
func (s *Server) handleWebSocket(c *gin.Context) {
	ctx, span := tracer.Start(c.Request.Context(), "server.handleWebSocket", trace.WithAttributes(
		attribute.String("http.url", c.Request.URL.String()),
		attribute.String("http.method", c.Request.Method),
	))

	vsComputer := s.opts.VsComputer
	switch c.Query("mode") {
	case "bot":
		vsComputer = true
	case "human":
		vsComputer = false
	}
	difficulty := s.opts.Difficulty
	if q := c.Query("difficulty"); q != "" {
		d, err := bot.ParseDifficulty(q)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Invalid difficulty")
			span.End()
			response.ErrorResponse(c, http.StatusBadRequest, err.Error())
			return
		}
		difficulty = d
	}

	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to upgrade connection", "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to upgrade connection")
		span.End()
		return
	}

	roomID := uuid.New().String()
	span.SetAttributes(
		attribute.String("room.id", roomID),
		attribute.Bool("game.vs_computer", vsComputer),
		attribute.String("game.difficulty", string(difficulty)),
	)
	slog.InfoContext(ctx, "Connection opened", "room.id", roomID, "game.vs_computer", vsComputer, "game.difficulty", difficulty)
	span.End()

	bus := events.NewBus()
	calculator := bot.NewBotMoveCalculator(nil)
	sess := session.New(vsComputer, difficulty,
		session.WithAsyncComputer(),
		session.WithCalculator(calculator),
		session.WithPublisher(events.NewMultiPublisher(bus, s.opts.Publisher)),
		session.WithRoomID(roomID),
		session.WithNames(c.Query("x"), c.Query("o")),
	)
	rm := room.NewRoom(roomID, sess, bot.NewWorker(calculator, s.opts.ComputerDelay), s.opts.MoveTimeout)
	rm.Start(s.ctx)
	if !s.hub.Register(rm) {
		rm.Stop()
		_ = conn.Close()
		return
	}
	defer s.hub.Unregister(roomID)

	cl := newClient(roomID, conn, rm, bus)
	cl.serve(s.ctx)
}
