package session

import (
	"ctchen222/tictactoe/internal/events"
	"ctchen222/tictactoe/internal/game"
)

// Option configures a Session.
type Option func(*Session)

// WithCalculator sets the computer's move calculator.
func WithCalculator(calculator MoveCalculator) Option {
	return func(s *Session) {
		if calculator != nil {
			s.calculator = calculator
		}
	}
}

// WithPublisher sets where notifications go.
func WithPublisher(publisher events.Publisher) Option {
	return func(s *Session) {
		if publisher != nil {
			s.publisher = publisher
		}
	}
}

// WithTimeoutPolicy replaces PassTurn.
func WithTimeoutPolicy(policy TimeoutPolicy) Option {
	return func(s *Session) {
		if policy != nil {
			s.timeoutPolicy = policy
		}
	}
}

// WithAsyncComputer stops the session from playing the computer's reply inline.
// The caller computes it elsewhere and hands it back through ApplyComputerMove.
func WithAsyncComputer() Option {
	return func(s *Session) {
		s.async = true
	}
}

// WithRoomID tags logs, spans and events with id.
func WithRoomID(id string) Option {
	return func(s *Session) {
		s.roomID = id
	}
}

// WithNames sets display names. Empty names keep the defaults.
func WithNames(x, o string) Option {
	return func(s *Session) {
		s.names[game.PlayerX] = x
		s.names[game.PlayerO] = o
	}
}
