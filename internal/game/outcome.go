package game

// Status is the state of a game derived from its board.
type Status int

const (
	InProgress Status = iota
	Win
	Draw
)

func (s Status) String() string {
	switch s {
	case InProgress:
		return "in_progress"
	case Win:
		return "win"
	case Draw:
		return "draw"
	default:
		return "unknown"
	}
}

// Outcome is InProgress, Win(Winner) or Draw. It is never stored; callers
// recompute it from the board after every placement.
type Outcome struct {
	Status Status     `json:"status"`
	Winner PlayerMark `json:"winner,omitempty"`
}

// IsTerminal reports whether the game is over.
func (o Outcome) IsTerminal() bool {
	return o.Status != InProgress
}

func (o Outcome) String() string {
	if o.Status == Win {
		return string(o.Winner) + " wins"
	}
	return o.Status.String()
}

// MarshalText encodes the status by name.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
