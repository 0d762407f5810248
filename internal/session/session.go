package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/events"
	"ctchen222/tictactoe/internal/game"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	tracer = otel.Tracer("session")
	meter  = otel.Meter("session")
)

var (
	ErrGameOver    = errors.New("game is already finished")
	ErrNotYourTurn = errors.New("it's not your turn")
	ErrStaleResult = errors.New("stale computer move")
)

// ComputerMark is the side the computer plays in human-vs-computer mode. The
// human is X and always moves first.
const ComputerMark = game.PlayerO

//go:generate mockgen -destination=mocks/mock_calculator.go -package=mocks ctchen222/tictactoe/internal/session MoveCalculator

// MoveCalculator defines an interface for an agent that can calculate a game move.
type MoveCalculator interface {
	CalculateNextMove(board game.Board, mark game.PlayerMark, difficulty bot.Difficulty) (game.Move, error)
}

// Tally counts finished games per result. Only ResetScores clears it.
type Tally struct {
	X    int `json:"x"`
	O    int `json:"o"`
	Draw int `json:"draw"`
}

// Snapshot is a copy of the session state for rendering.
type Snapshot struct {
	// Turn is the side to move, None once the game is over.
	Turn       game.PlayerMark
	Board      game.Board
	Outcome    game.Outcome
	VsComputer bool
	Difficulty bot.Difficulty
	Generation uint64
	Scores     Tally
}

// Session owns one game: the board, whose turn it is, mode, difficulty and the
// score tally. It is not safe for concurrent use; callers serialize access, as
// room.Room does.
type Session struct {
	roomID        string
	board         game.Board
	turn          game.PlayerMark
	vsComputer    bool
	difficulty    bot.Difficulty
	generation    uint64
	scores        Tally
	names         map[game.PlayerMark]string
	calculator    MoveCalculator
	publisher     events.Publisher
	timeoutPolicy TimeoutPolicy
	async         bool
	finished      metric.Int64Counter
}

// New creates a session with an empty board and X to move.
func New(vsComputer bool, difficulty bot.Difficulty, opts ...Option) *Session {
	finished, err := meter.Int64Counter("session.games.finished",
		metric.WithDescription("Number of finished games by outcome"),
	)
	if err != nil {
		slog.Warn("failed to create finished-games counter", "error", err)
	}

	s := &Session{
		turn:          game.PlayerX,
		vsComputer:    vsComputer,
		difficulty:    difficulty,
		names:         make(map[game.PlayerMark]string),
		calculator:    bot.NewBotMoveCalculator(nil),
		publisher:     events.Discard,
		timeoutPolicy: PassTurn,
		finished:      finished,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SubmitMove plays a human move for the side to move. A rejected move leaves the
// session untouched. In a synchronous session the computer's reply, if due, is
// played before SubmitMove returns.
func (s *Session) SubmitMove(ctx context.Context, row, col int) (game.Outcome, error) {
	ctx, span := tracer.Start(ctx, "session.SubmitMove", trace.WithAttributes(
		attribute.String("room.id", s.roomID),
		attribute.String("player.mark", string(s.turn)),
		attribute.Int("move.row", row),
		attribute.Int("move.col", col),
	))
	defer span.End()

	if s.board.Outcome().IsTerminal() {
		span.SetStatus(codes.Error, "Move after game over")
		return s.board.Outcome(), ErrGameOver
	}
	if s.ComputerToMove() {
		span.SetStatus(codes.Error, "Human move on the computer's turn")
		return s.board.Outcome(), ErrNotYourTurn
	}

	outcome, err := s.apply(ctx, game.Move{Row: row, Col: col}, s.turn)
	if err != nil {
		slog.WarnContext(ctx, "invalid move from player", "player.mark", s.turn, "move.row", row, "move.col", col, "error", err)
		span.SetAttributes(attribute.Bool("move.valid", false))
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid move")
		return outcome, err
	}
	span.SetAttributes(attribute.Bool("move.valid", true))

	if !outcome.IsTerminal() && s.ComputerToMove() && !s.async {
		return s.playComputer(ctx)
	}
	return outcome, nil
}

// ApplyComputerMove plays a move computed off the session's goroutine. Results
// computed for an earlier generation, or arriving when the computer is not to
// move, are rejected with ErrStaleResult.
func (s *Session) ApplyComputerMove(ctx context.Context, generation uint64, move game.Move) (game.Outcome, error) {
	ctx, span := tracer.Start(ctx, "session.ApplyComputerMove", trace.WithAttributes(
		attribute.String("room.id", s.roomID),
		attribute.Int64("session.generation", int64(s.generation)),
		attribute.Int64("result.generation", int64(generation)),
	))
	defer span.End()

	if generation != s.generation || !s.ComputerToMove() {
		slog.DebugContext(ctx, "discarding stale computer move", "room.id", s.roomID, "result.generation", generation, "session.generation", s.generation)
		span.SetStatus(codes.Error, "Stale computer move")
		return s.board.Outcome(), ErrStaleResult
	}

	outcome, err := s.apply(ctx, move, ComputerMark)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid computer move")
	}
	return outcome, err
}

// Timeout is the timer's transition out of AwaitingMove: the timeout policy picks
// the side to move next. Scores are never touched.
func (s *Session) Timeout(ctx context.Context) (game.Outcome, error) {
	ctx, span := tracer.Start(ctx, "session.Timeout", trace.WithAttributes(
		attribute.String("room.id", s.roomID),
		attribute.String("player.mark", string(s.turn)),
	))
	defer span.End()

	if s.board.Outcome().IsTerminal() {
		span.SetStatus(codes.Error, "Timeout after game over")
		return s.board.Outcome(), ErrGameOver
	}

	timedOut := s.turn
	next := s.timeoutPolicy(timedOut, s.vsComputer)
	if !next.IsSide() {
		next = timedOut
	}
	s.turn = next
	slog.InfoContext(ctx, "Player timed out", "room.id", s.roomID, "player.mark", timedOut, "player.name", s.Name(timedOut), "next", next)
	s.publish(ctx, events.TypeTimeout, events.TimeoutPayload{Mark: timedOut, Name: s.Name(timedOut), Next: next})

	if next != timedOut && s.ComputerToMove() && !s.async {
		return s.playComputer(ctx)
	}
	return s.board.Outcome(), nil
}

func (s *Session) playComputer(ctx context.Context) (game.Outcome, error) {
	ctx, span := tracer.Start(ctx, "session.playComputer", trace.WithAttributes(
		attribute.String("room.id", s.roomID),
		attribute.String("bot.difficulty", string(s.difficulty)),
	))
	defer span.End()

	move, err := s.calculator.CalculateNextMove(s.board, ComputerMark, s.difficulty)
	if err != nil {
		slog.ErrorContext(ctx, "computer could not pick a move", "room.id", s.roomID, "board", s.board.String(), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to calculate computer move")
		return s.board.Outcome(), fmt.Errorf("computer move: %w", err)
	}

	outcome, err := s.apply(ctx, move, ComputerMark)
	if err != nil {
		slog.ErrorContext(ctx, "computer picked an invalid move", "room.id", s.roomID, "move", move.String(), "error", err)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid computer move")
		return outcome, fmt.Errorf("computer move: %w", err)
	}
	return outcome, nil
}

// apply places side's mark, settles the outcome and publishes the notifications.
func (s *Session) apply(ctx context.Context, move game.Move, side game.PlayerMark) (game.Outcome, error) {
	if err := s.board.Place(move.Row, move.Col, side); err != nil {
		return s.board.Outcome(), err
	}

	outcome := s.board.Outcome()
	if !outcome.IsTerminal() {
		s.turn = side.Opponent()
	}
	s.publish(ctx, events.TypeMove, events.MovePayload{
		Mark:  side,
		Row:   move.Row,
		Col:   move.Col,
		Board: s.board.Rows(),
		Next:  s.State().Turn,
	})

	switch outcome.Status {
	case game.Win:
		if outcome.Winner == game.PlayerX {
			s.scores.X++
		} else {
			s.scores.O++
		}
		slog.InfoContext(ctx, "Game won", "room.id", s.roomID, "player.mark", outcome.Winner, "player.name", s.Name(outcome.Winner), "board", s.board.String())
		s.publish(ctx, events.TypeWin, events.OutcomePayload{Winner: outcome.Winner, Name: s.Name(outcome.Winner), Board: s.board.Rows()})
		s.recordFinished(ctx, outcome)
	case game.Draw:
		s.scores.Draw++
		slog.InfoContext(ctx, "Game drawn", "room.id", s.roomID, "board", s.board.String())
		s.publish(ctx, events.TypeDraw, events.OutcomePayload{Board: s.board.Rows()})
		s.recordFinished(ctx, outcome)
	}
	return outcome, nil
}

func (s *Session) recordFinished(ctx context.Context, outcome game.Outcome) {
	s.publishScores(ctx)
	if s.finished != nil {
		s.finished.Add(ctx, 1, metric.WithAttributes(
			attribute.String("outcome", outcome.String()),
			attribute.Bool("vs_computer", s.vsComputer),
		))
	}
}

// Reset clears the board and gives the move to X. Scores are kept. Any computer
// move computed before the reset becomes stale.
func (s *Session) Reset(ctx context.Context) {
	_, span := tracer.Start(ctx, "session.Reset", trace.WithAttributes(
		attribute.String("room.id", s.roomID),
	))
	defer span.End()

	s.board = game.Board{}
	s.turn = game.PlayerX
	s.generation++
	slog.DebugContext(ctx, "Session reset", "room.id", s.roomID, "session.generation", s.generation)
	s.publish(ctx, events.TypeReset, s.statePayload())
}

// SetDifficulty changes the computer's strategy and resets the board.
func (s *Session) SetDifficulty(ctx context.Context, difficulty bot.Difficulty) {
	slog.InfoContext(ctx, "Difficulty changed", "room.id", s.roomID, "bot.difficulty", difficulty)
	s.difficulty = difficulty
	s.Reset(ctx)
}

// SetMode switches between human-vs-human and human-vs-computer and resets the board.
func (s *Session) SetMode(ctx context.Context, vsComputer bool) {
	slog.InfoContext(ctx, "Mode changed", "room.id", s.roomID, "vs_computer", vsComputer)
	s.vsComputer = vsComputer
	s.Reset(ctx)
}

// ResetScores clears the tally.
func (s *Session) ResetScores(ctx context.Context) {
	s.scores = Tally{}
	s.publishScores(ctx)
}

// ComputerToMove reports whether the computer is due to move next.
func (s *Session) ComputerToMove() bool {
	return s.vsComputer && s.turn == ComputerMark && !s.board.Outcome().IsTerminal()
}

// State returns a snapshot of the session.
func (s *Session) State() Snapshot {
	outcome := s.board.Outcome()
	turn := s.turn
	if outcome.IsTerminal() {
		turn = game.None
	}
	return Snapshot{
		Turn:       turn,
		Board:      s.board,
		Outcome:    outcome,
		VsComputer: s.vsComputer,
		Difficulty: s.difficulty,
		Generation: s.generation,
		Scores:     s.scores,
	}
}

// Scores returns the tally.
func (s *Session) Scores() Tally {
	return s.scores
}

// Generation returns the reset counter used to spot stale computer moves.
func (s *Session) Generation() uint64 {
	return s.generation
}

// Difficulty returns the current computer strategy.
func (s *Session) Difficulty() bot.Difficulty {
	return s.difficulty
}

// Name returns the display name for mark.
func (s *Session) Name(mark game.PlayerMark) string {
	if name := s.names[mark]; name != "" {
		return name
	}
	switch {
	case mark == game.PlayerX:
		return "Player 1"
	case mark == game.PlayerO && s.vsComputer:
		return "Computer"
	case mark == game.PlayerO:
		return "Player 2"
	default:
		return ""
	}
}

func (s *Session) statePayload() events.StatePayload {
	state := s.State()
	return events.StatePayload{
		Board:      state.Board.Rows(),
		Next:       state.Turn,
		VsComputer: state.VsComputer,
		Difficulty: string(state.Difficulty),
	}
}

func (s *Session) publishScores(ctx context.Context) {
	s.publish(ctx, events.TypeScore, events.ScorePayload{X: s.scores.X, O: s.scores.O, Draw: s.scores.Draw})
}

func (s *Session) publish(ctx context.Context, eventType string, payload any) {
	event, err := events.New(eventType, payload)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build event", "event.type", eventType, "error", err)
		return
	}
	event.RoomID = s.roomID
	if err := s.publisher.Publish(ctx, event); err != nil {
		slog.WarnContext(ctx, "failed to publish event", "room.id", s.roomID, "event.type", eventType, "error", err)
	}
}
