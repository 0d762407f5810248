package proto

import "ctchen222/tictactoe/internal/game"

// Client message types.
const (
	TypeMove        = "move"
	TypeReset       = "reset"
	TypeDifficulty  = "difficulty"
	TypeMode        = "mode"
	TypeState       = "state"
	TypeResetScores = "reset_scores"
)

// Server-only message types. Event messages reuse the event names.
const (
	TypeError = "error"
)

// ClientToServerMessage represents a message from the client to the server.
type ClientToServerMessage struct {
	Type       string `json:"type" validate:"required,oneof=move reset difficulty mode state reset_scores"`
	Position   []int  `json:"position,omitempty" validate:"required_if=Type move,omitempty,len=2,dive,min=0,max=2"`
	Difficulty string `json:"difficulty,omitempty" validate:"required_if=Type difficulty,omitempty,oneof=easy medium impossible"`
	VsComputer *bool  `json:"vs_computer,omitempty" validate:"required_if=Type mode"`
}

// Scores is the tally as sent to clients.
type Scores struct {
	X    int `json:"x"`
	O    int `json:"o"`
	Draw int `json:"draw"`
}

// ServerToClientMessage represents a message from the server to the client.
type ServerToClientMessage struct {
	Type       string              `json:"type" validate:"required"`
	Reason     string              `json:"reason,omitempty"`
	Board      [][]game.PlayerMark `json:"board,omitempty"`
	Next       game.PlayerMark     `json:"next,omitempty"`
	Winner     game.PlayerMark     `json:"winner,omitempty"`
	Name       string              `json:"name,omitempty"`
	Mark       game.PlayerMark     `json:"mark,omitempty"`
	Position   []int               `json:"position,omitempty"`
	Scores     *Scores             `json:"scores,omitempty"`
	VsComputer *bool               `json:"vs_computer,omitempty"`
	Difficulty string              `json:"difficulty,omitempty"`
}
