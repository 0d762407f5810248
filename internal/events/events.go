package events

import (
	"context"
	"encoding/json"
	"fmt"

	"ctchen222/tictactoe/internal/game"
)

// Pub/Sub channel constants
const (
	EventsChannel = "channel:events"
)

// Event types. Move, win and draw double as the audio cues.
const (
	TypeMove    = "move"
	TypeWin     = "win"
	TypeDraw    = "draw"
	TypeScore   = "score"
	TypeReset   = "reset"
	TypeTimeout = "timeout"
	TypeState   = "state"
)

// Event represents a notification for the UI collaborators.
type Event struct {
	Type    string          `json:"event"`
	RoomID  string          `json:"room_id,omitempty"`
	Payload json.RawMessage `json:"payload"`
}

// MovePayload is the payload for the "move" event.
type MovePayload struct {
	Mark  game.PlayerMark     `json:"mark"`
	Row   int                 `json:"row"`
	Col   int                 `json:"col"`
	Board [][]game.PlayerMark `json:"board"`
	Next  game.PlayerMark     `json:"next,omitempty"`
}

// OutcomePayload is the payload for the "win" and "draw" events.
type OutcomePayload struct {
	Winner game.PlayerMark     `json:"winner,omitempty"`
	Name   string              `json:"name,omitempty"`
	Board  [][]game.PlayerMark `json:"board"`
}

// ScorePayload is the payload for the "score" event.
type ScorePayload struct {
	X    int `json:"x"`
	O    int `json:"o"`
	Draw int `json:"draw"`
}

// TimeoutPayload is the payload for the "timeout" event.
type TimeoutPayload struct {
	Mark game.PlayerMark `json:"mark"`
	Name string          `json:"name,omitempty"`
	Next game.PlayerMark `json:"next"`
}

// StatePayload is the payload for the "reset" and "state" events.
type StatePayload struct {
	Board      [][]game.PlayerMark `json:"board"`
	Next       game.PlayerMark     `json:"next"`
	VsComputer bool                `json:"vs_computer"`
	Difficulty string              `json:"difficulty"`
}

// New builds an event with a JSON-encoded payload.
func New(eventType string, payload any) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("failed to marshal %s payload: %w", eventType, err)
	}
	return Event{Type: eventType, Payload: data}, nil
}

//go:generate mockgen -destination=mocks/mock_publisher.go -package=mocks ctchen222/tictactoe/internal/events Publisher

// Publisher delivers events to whoever renders or plays them.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// PublisherFunc adapts a function to Publisher.
type PublisherFunc func(ctx context.Context, event Event) error

// Publish calls f.
func (f PublisherFunc) Publish(ctx context.Context, event Event) error {
	return f(ctx, event)
}

// Discard drops every event.
var Discard Publisher = PublisherFunc(func(context.Context, Event) error { return nil })

// MultiPublisher publishes each event to all of its publishers.
type MultiPublisher struct {
	publishers []Publisher
}

// NewMultiPublisher creates a new MultiPublisher. Nil publishers are skipped.
func NewMultiPublisher(publishers ...Publisher) *MultiPublisher {
	m := &MultiPublisher{}
	for _, p := range publishers {
		if p != nil {
			m.publishers = append(m.publishers, p)
		}
	}
	return m
}

// Publish publishes to every publisher and returns the first error, after
// trying all of them.
func (m *MultiPublisher) Publish(ctx context.Context, event Event) error {
	var firstErr error
	for _, p := range m.publishers {
		if err := p.Publish(ctx, event); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
