package controller

import (
	"errors"
	"log/slog"
	"net/http"

	"ctchen222/tictactoe/internal/api/models"
	"ctchen222/tictactoe/internal/api/response"
	"ctchen222/tictactoe/internal/api/service"
	"ctchen222/tictactoe/internal/game"

	"github.com/gin-gonic/gin"
)

// MoveController handles the stateless move endpoint.
type MoveController struct {
	moveService service.MoveService
}

// NewMoveController creates a new MoveController.
func NewMoveController(moveService service.MoveService) *MoveController {
	return &MoveController{
		moveService: moveService,
	}
}

// Move answers a board with the computer's move on it.
func (mc *MoveController) Move(c *gin.Context) {
	var req models.MoveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	res, err := mc.moveService.NextMove(c.Request.Context(), &req)
	switch {
	case err == nil:
		response.SuccessResponse(c, res)
	case errors.Is(err, game.ErrInvalidBoard):
		response.ErrorResponse(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrGameDecided), errors.Is(err, service.ErrWrongSide):
		response.ErrorResponse(c, http.StatusUnprocessableEntity, err.Error())
	default:
		slog.ErrorContext(c.Request.Context(), "move computation failed", "error", err)
		response.ErrorResponse(c, http.StatusInternalServerError, err.Error())
	}
}
