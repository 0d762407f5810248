package room

import (
	"context"
	"log/slog"

	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"
	"ctchen222/tictactoe/internal/session"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type commandKind int

const (
	cmdMove commandKind = iota
	cmdReset
	cmdDifficulty
	cmdMode
	cmdResetScores
	cmdState
)

func (k commandKind) String() string {
	switch k {
	case cmdMove:
		return "move"
	case cmdReset:
		return "reset"
	case cmdDifficulty:
		return "difficulty"
	case cmdMode:
		return "mode"
	case cmdResetScores:
		return "reset_scores"
	case cmdState:
		return "state"
	default:
		return "unknown"
	}
}

type command struct {
	ctx        context.Context
	kind       commandKind
	row, col   int
	difficulty bot.Difficulty
	vsComputer bool
	reply      chan reply
}

type reply struct {
	outcome game.Outcome
	state   session.Snapshot
	err     error
}

// SubmitMove plays a human move. It returns the outcome right after the move;
// the computer's reply, if any, arrives later as events.
func (r *Room) SubmitMove(ctx context.Context, row, col int) (game.Outcome, error) {
	rep, err := r.do(ctx, &command{kind: cmdMove, row: row, col: col})
	if err != nil {
		return game.Outcome{}, err
	}
	return rep.outcome, rep.err
}

// Reset starts a rematch. A computer move still being computed is dropped.
func (r *Room) Reset(ctx context.Context) error {
	_, err := r.do(ctx, &command{kind: cmdReset})
	return err
}

// SetDifficulty changes the computer's strategy; the board is reset.
func (r *Room) SetDifficulty(ctx context.Context, difficulty bot.Difficulty) error {
	_, err := r.do(ctx, &command{kind: cmdDifficulty, difficulty: difficulty})
	return err
}

// SetMode switches between human-vs-human and human-vs-computer; the board is reset.
func (r *Room) SetMode(ctx context.Context, vsComputer bool) error {
	_, err := r.do(ctx, &command{kind: cmdMode, vsComputer: vsComputer})
	return err
}

// ResetScores clears the score tally.
func (r *Room) ResetScores(ctx context.Context) error {
	_, err := r.do(ctx, &command{kind: cmdResetScores})
	return err
}

// State returns a snapshot of the room's session.
func (r *Room) State(ctx context.Context) (session.Snapshot, error) {
	rep, err := r.do(ctx, &command{kind: cmdState})
	if err != nil {
		return session.Snapshot{}, err
	}
	return rep.state, nil
}

// Scores returns the session's tally.
func (r *Room) Scores(ctx context.Context) (session.Tally, error) {
	state, err := r.State(ctx)
	if err != nil {
		return session.Tally{}, err
	}
	return state.Scores, nil
}

func (r *Room) do(ctx context.Context, cmd *command) (reply, error) {
	cmd.ctx = ctx
	cmd.reply = make(chan reply, 1)

	select {
	case r.commands <- cmd:
	case <-r.stopped:
		return reply{}, ErrRoomClosed
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}

	select {
	case rep := <-cmd.reply:
		return rep, nil
	case <-r.stopped:
		return reply{}, ErrRoomClosed
	case <-ctx.Done():
		return reply{}, ctx.Err()
	}
}

// handle runs a command on the room's goroutine.
func (r *Room) handle(loopCtx context.Context, cmd *command) {
	ctx, span := tracer.Start(cmd.ctx, "room.handle", trace.WithAttributes(
		attribute.String("room.id", r.ID),
		attribute.String("command", cmd.kind.String()),
	))
	defer span.End()

	var rep reply
	switch cmd.kind {
	case cmdMove:
		rep.outcome, rep.err = r.session.SubmitMove(ctx, cmd.row, cmd.col)
		if rep.err != nil {
			span.RecordError(rep.err)
			span.SetStatus(codes.Error, "Move rejected")
			break
		}
		// A landed move wins the race with the timer.
		r.settle(loopCtx)

	case cmdReset:
		r.cancelThinking()
		r.session.Reset(ctx)
		r.settle(loopCtx)

	case cmdDifficulty:
		r.cancelThinking()
		r.session.SetDifficulty(ctx, cmd.difficulty)
		r.settle(loopCtx)

	case cmdMode:
		r.cancelThinking()
		r.session.SetMode(ctx, cmd.vsComputer)
		r.settle(loopCtx)

	case cmdResetScores:
		r.session.ResetScores(ctx)

	case cmdState:
	}

	rep.state = r.session.State()
	slog.DebugContext(ctx, "room command handled", "room.id", r.ID, "command", cmd.kind.String(), "error", rep.err)
	cmd.reply <- rep
}
