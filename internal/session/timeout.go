package session

import "ctchen222/tictactoe/internal/game"

// TimeoutPolicy returns the side to move after timedOut ran out of time.
type TimeoutPolicy func(timedOut game.PlayerMark, vsComputer bool) game.PlayerMark

// PassTurn hands the move to the other side without scoring anything. Against the
// computer only the human's clock passes the turn; the computer keeps its own move.
func PassTurn(timedOut game.PlayerMark, vsComputer bool) game.PlayerMark {
	if vsComputer && timedOut == ComputerMark {
		return timedOut
	}
	return timedOut.Opponent()
}

// KeepTurn ignores the timeout and leaves the move with the same side.
func KeepTurn(timedOut game.PlayerMark, _ bool) game.PlayerMark {
	return timedOut
}
