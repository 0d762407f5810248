package bot

import (
	"context"
	"log/slog"
	"time"

	"ctchen222/tictactoe/internal/game"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("bot")
	meter  = otel.Meter("bot")
)

// Request asks the worker for a move on a snapshot of the board.
type Request struct {
	Generation uint64
	Board      game.Board
	Mark       game.PlayerMark
	Difficulty Difficulty
}

// Result carries a computed move back to the requester. Generation echoes the
// request so the receiver can drop results that arrive after a reset.
type Result struct {
	Generation uint64
	Move       game.Move
	Err        error
}

// Calculator is the move-selection contract the worker runs.
type Calculator interface {
	CalculateNextMove(board game.Board, mark game.PlayerMark, difficulty Difficulty) (game.Move, error)
}

// Worker computes computer moves off the caller's goroutine. Results are delivered
// on the channel returned by Results.
type Worker struct {
	calculator Calculator
	delay      time.Duration
	results    chan Result
	thinkTime  metric.Float64Histogram
}

// NewWorker creates a worker that waits delay before answering, the computer's
// "thinking" pause.
func NewWorker(calculator Calculator, delay time.Duration) *Worker {
	thinkTime, err := meter.Float64Histogram("bot.think.duration",
		metric.WithDescription("Time spent computing a computer move"),
		metric.WithUnit("ms"),
	)
	if err != nil {
		slog.Warn("failed to create bot think-time histogram", "error", err)
	}

	return &Worker{
		calculator: calculator,
		delay:      delay,
		results:    make(chan Result, 1),
		thinkTime:  thinkTime,
	}
}

// Results returns the channel computed moves are sent on.
func (w *Worker) Results() <-chan Result {
	return w.results
}

// Think starts computing a move for req. Cancelling ctx abandons the computation;
// nothing is sent in that case. The caller must not start a second computation
// before it has received the result of the first or cancelled it.
func (w *Worker) Think(ctx context.Context, req Request) {
	go w.think(ctx, req)
}

func (w *Worker) think(ctx context.Context, req Request) {
	ctx, span := tracer.Start(ctx, "bot.Think", trace.WithAttributes(
		attribute.Int64("room.generation", int64(req.Generation)),
		attribute.String("bot.difficulty", string(req.Difficulty)),
		attribute.String("player.mark", string(req.Mark)),
	))
	defer span.End()

	if w.delay > 0 {
		timer := time.NewTimer(w.delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			span.SetStatus(codes.Error, "Computation cancelled")
			return
		case <-timer.C:
		}
	}

	slog.DebugContext(ctx, "Bot is thinking...", "player.mark", req.Mark, "bot.difficulty", req.Difficulty)
	start := time.Now()
	move, err := w.calculator.CalculateNextMove(req.Board, req.Mark, req.Difficulty)
	if w.thinkTime != nil {
		w.thinkTime.Record(ctx, float64(time.Since(start).Microseconds())/1000,
			metric.WithAttributes(attribute.String("bot.difficulty", string(req.Difficulty))))
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to calculate move")
	} else {
		span.SetAttributes(attribute.Int("move.row", move.Row), attribute.Int("move.col", move.Col))
	}

	select {
	case w.results <- Result{Generation: req.Generation, Move: move, Err: err}:
	case <-ctx.Done():
		span.SetStatus(codes.Error, "Result discarded after cancellation")
	}
}
