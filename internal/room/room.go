package room

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/session"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("room")

// ErrRoomClosed is returned for requests made after the room stopped.
var ErrRoomClosed = errors.New("room is closed")

// Room drives one session. A single goroutine owns the session and serializes
// human moves, turn-timer expiry, computer results and reset/mode/difficulty
// requests, so the session needs no locking.
type Room struct {
	ID          string
	session     *session.Session
	worker      *bot.Worker
	commands    chan *command
	moveTimeout time.Duration
	done        chan struct{}
	stopped     chan struct{}
	stopOnce    sync.Once
	startOnce   sync.Once

	// Owned by the run goroutine.
	moveTimer   *time.Timer
	thinking    bool
	thinkCancel context.CancelFunc
}

// NewRoom creates a room for s. The session must be built with
// session.WithAsyncComputer; the room hands computer moves to worker and feeds
// the results back. A moveTimeout of zero disables the turn timer.
func NewRoom(id string, s *session.Session, worker *bot.Worker, moveTimeout time.Duration) *Room {
	return &Room{
		ID:          id,
		session:     s,
		worker:      worker,
		commands:    make(chan *command),
		moveTimeout: moveTimeout,
		done:        make(chan struct{}),
		stopped:     make(chan struct{}),
	}
}

// Start launches the room's loop. It runs until ctx is cancelled or Stop is called.
func (r *Room) Start(ctx context.Context) {
	r.startOnce.Do(func() {
		go r.run(ctx)
	})
}

// Stop ends the room's loop and abandons any computer move in progress.
func (r *Room) Stop() {
	r.stopOnce.Do(func() {
		close(r.done)
	})
}

// Done is closed once the room's loop has exited.
func (r *Room) Done() <-chan struct{} {
	return r.stopped
}

// run is the main game loop for the room.
func (r *Room) run(ctx context.Context) {
	r.moveTimer = time.NewTimer(time.Hour)
	r.stopTimer()

	defer func() {
		r.stopTimer()
		r.cancelThinking()
		close(r.stopped)
		slog.Info("Room run goroutine stopping.", "room.id", r.ID)
	}()

	r.settle(ctx)

	for {
		select {
		case <-ctx.Done():
			return

		case <-r.done:
			return

		case cmd := <-r.commands:
			r.handle(ctx, cmd)

		case <-r.moveTimer.C:
			r.handleTimeout(ctx)

		case res := <-r.worker.Results():
			r.handleComputerMove(ctx, res)
		}
	}
}

// settle arms whatever the new state needs: the turn timer for a human, the
// worker for the computer, nothing once the game is over.
func (r *Room) settle(ctx context.Context) {
	r.stopTimer()

	state := r.session.State()
	if state.Outcome.IsTerminal() {
		return
	}

	if r.session.ComputerToMove() {
		if !r.thinking {
			r.think(ctx, state)
		}
		return
	}

	if r.moveTimeout > 0 {
		r.moveTimer.Reset(r.moveTimeout)
	}
}

func (r *Room) think(ctx context.Context, state session.Snapshot) {
	thinkCtx, cancel := context.WithCancel(ctx)
	r.thinking = true
	r.thinkCancel = cancel
	r.worker.Think(thinkCtx, bot.Request{
		Generation: state.Generation,
		Board:      state.Board,
		Mark:       session.ComputerMark,
		Difficulty: state.Difficulty,
	})
}

func (r *Room) cancelThinking() {
	if r.thinkCancel != nil {
		r.thinkCancel()
		r.thinkCancel = nil
	}
	r.thinking = false
}

func (r *Room) stopTimer() {
	if !r.moveTimer.Stop() {
		select {
		case <-r.moveTimer.C:
		default:
		}
	}
}

func (r *Room) handleTimeout(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "room.handleTimeout", trace.WithAttributes(
		attribute.String("room.id", r.ID),
	))
	defer span.End()

	if r.session.State().Outcome.IsTerminal() || r.session.ComputerToMove() {
		return
	}

	if _, err := r.session.Timeout(ctx); err != nil {
		slog.WarnContext(ctx, "timeout rejected", "room.id", r.ID, "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Timeout rejected")
		return
	}
	r.settle(ctx)
}

func (r *Room) handleComputerMove(ctx context.Context, res bot.Result) {
	ctx, span := tracer.Start(ctx, "room.handleComputerMove", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.Int64("result.generation", int64(res.Generation)),
	))
	defer span.End()

	if res.Generation != r.session.Generation() {
		slog.DebugContext(ctx, "ignoring computer move from before a reset", "room.id", r.ID, "result.generation", res.Generation)
		span.SetStatus(codes.Error, "Stale computer move")
		return
	}
	r.cancelThinking()

	if res.Err != nil {
		slog.ErrorContext(ctx, "computer could not pick a move", "room.id", r.ID, "error", res.Err)
		span.RecordError(res.Err)
		span.SetStatus(codes.Error, "Computer move failed")
		return
	}

	if _, err := r.session.ApplyComputerMove(ctx, res.Generation, res.Move); err != nil {
		slog.ErrorContext(ctx, "computer move rejected", "room.id", r.ID, "move", res.Move.String(), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Computer move rejected")
		return
	}
	r.settle(ctx)
}
