package server

import (
	"encoding/json"
	"fmt"

	"ctchen222/tictactoe/internal/events"
	"ctchen222/tictactoe/internal/session"
	"ctchen222/tictactoe/pkg/proto"
)

func stateMessage(msgType string, state session.Snapshot) proto.ServerToClientMessage {
	vsComputer := state.VsComputer
	return proto.ServerToClientMessage{
		Type:       msgType,
		Board:      state.Board.Rows(),
		Next:       state.Turn,
		Winner:     state.Outcome.Winner,
		Scores:     &proto.Scores{X: state.Scores.X, O: state.Scores.O, Draw: state.Scores.Draw},
		VsComputer: &vsComputer,
		Difficulty: string(state.Difficulty),
	}
}

// eventMessage converts a room event to the message sent to the client.
func eventMessage(ev events.Event) (proto.ServerToClientMessage, error) {
	msg := proto.ServerToClientMessage{Type: ev.Type}

	switch ev.Type {
	case events.TypeMove:
		var p events.MovePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return msg, fmt.Errorf("decode %s payload: %w", ev.Type, err)
		}
		msg.Mark = p.Mark
		msg.Position = []int{p.Row, p.Col}
		msg.Board = p.Board
		msg.Next = p.Next

	case events.TypeWin, events.TypeDraw:
		var p events.OutcomePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return msg, fmt.Errorf("decode %s payload: %w", ev.Type, err)
		}
		msg.Winner = p.Winner
		msg.Name = p.Name
		msg.Board = p.Board

	case events.TypeScore:
		var p events.ScorePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return msg, fmt.Errorf("decode %s payload: %w", ev.Type, err)
		}
		msg.Scores = &proto.Scores{X: p.X, O: p.O, Draw: p.Draw}

	case events.TypeTimeout:
		var p events.TimeoutPayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return msg, fmt.Errorf("decode %s payload: %w", ev.Type, err)
		}
		msg.Mark = p.Mark
		msg.Name = p.Name
		msg.Next = p.Next
		msg.Reason = "move timer expired"

	case events.TypeReset, events.TypeState:
		var p events.StatePayload
		if err := json.Unmarshal(ev.Payload, &p); err != nil {
			return msg, fmt.Errorf("decode %s payload: %w", ev.Type, err)
		}
		vsComputer := p.VsComputer
		msg.Board = p.Board
		msg.Next = p.Next
		msg.VsComputer = &vsComputer
		msg.Difficulty = p.Difficulty

	default:
		return msg, fmt.Errorf("unknown event type %q", ev.Type)
	}
	return msg, nil
}
