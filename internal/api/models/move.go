package models

import "ctchen222/tictactoe/internal/game"

// MoveRequest asks for the computer's move on an arbitrary position. Board rows
// use the String notation of game.Board, for example ["X.O", ".X.", "..."].
type MoveRequest struct {
	Board      []string `json:"board" binding:"required,len=3,dive,len=3"`
	Mark       string   `json:"mark" binding:"omitempty,oneof=X O"`
	Difficulty string   `json:"difficulty" binding:"omitempty,oneof=easy medium impossible"`
}

// MoveResponse defines the structure for a computed move.
type MoveResponse struct {
	Mark       game.PlayerMark     `json:"mark"`
	Move       game.Move           `json:"move"`
	Difficulty string              `json:"difficulty"`
	Board      [][]game.PlayerMark `json:"board"`
	Outcome    game.Outcome        `json:"outcome"`
}
