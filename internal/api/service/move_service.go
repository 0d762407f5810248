package service

import (
	"context"
	"errors"
	"fmt"

	"ctchen222/tictactoe/internal/api/models"
	"ctchen222/tictactoe/internal/bot"
	"ctchen222/tictactoe/internal/game"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("api.service")

var (
	// ErrGameDecided is returned for a position that is already won or drawn.
	ErrGameDecided = errors.New("game is already decided")
	// ErrWrongSide is returned when the requested mark is not the side to move.
	ErrWrongSide = errors.New("mark is not the side to move")
)

// MoveService defines the interface for stateless move computation.
type MoveService interface {
	NextMove(ctx context.Context, req *models.MoveRequest) (*models.MoveResponse, error)
}

type moveService struct {
	calculator bot.Calculator
}

// NewMoveService creates a new MoveService.
func NewMoveService(calculator bot.Calculator) MoveService {
	return &moveService{calculator: calculator}
}

// NextMove parses the request board and returns the computer's move on it. The
// side to move is inferred from the mark counts; a requested mark must match it.
func (s *moveService) NextMove(ctx context.Context, req *models.MoveRequest) (*models.MoveResponse, error) {
	_, span := tracer.Start(ctx, "service.NextMove", trace.WithAttributes(
		attribute.String("game.difficulty", req.Difficulty),
	))
	defer span.End()

	board, err := game.ParseBoard(req.Board)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid board")
		return nil, err
	}

	x, o := board.Counts()
	if x-o != 0 && x-o != 1 {
		err := fmt.Errorf("%w: %d X and %d O marks", game.ErrInvalidBoard, x, o)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid board")
		return nil, err
	}
	if board.IsWinner(game.PlayerX) && board.IsWinner(game.PlayerO) {
		err := fmt.Errorf("%w: both sides hold a line", game.ErrInvalidBoard)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Invalid board")
		return nil, err
	}
	if board.Outcome().IsTerminal() {
		span.SetStatus(codes.Error, "Game decided")
		return nil, ErrGameDecided
	}

	mark := game.PlayerX
	if x > o {
		mark = game.PlayerO
	}
	if req.Mark != "" && game.PlayerMark(req.Mark) != mark {
		err := fmt.Errorf("%w: %s asked, %s to move", ErrWrongSide, req.Mark, mark)
		span.RecordError(err)
		span.SetStatus(codes.Error, "Wrong side")
		return nil, err
	}

	difficulty := bot.Impossible
	if req.Difficulty != "" {
		difficulty, err = bot.ParseDifficulty(req.Difficulty)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "Invalid difficulty")
			return nil, err
		}
	}
	span.SetAttributes(attribute.String("player.mark", string(mark)))

	move, err := s.calculator.CalculateNextMove(board, mark, difficulty)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Failed to calculate move")
		return nil, fmt.Errorf("calculate move: %w", err)
	}

	after := board.Clone()
	if err := after.Place(move.Row, move.Col, mark); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "Calculator returned an illegal move")
		return nil, fmt.Errorf("calculate move: %w", err)
	}

	return &models.MoveResponse{
		Mark:       mark,
		Move:       move,
		Difficulty: string(difficulty),
		Board:      after.Rows(),
		Outcome:    after.Outcome(),
	}, nil
}
