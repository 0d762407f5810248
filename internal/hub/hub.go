package hub

import (
	"context"
	"log/slog"

	"ctchen222/tictactoe/internal/room"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("hub")

// Hub keeps track of the live rooms, one per connection, and stops whatever is
// left when it shuts down.
type Hub struct {
	rooms      map[string]*room.Room
	register   chan *room.Room
	unregister chan string
	count      chan chan int
	done       chan struct{}
	active     metric.Int64UpDownCounter
}

// NewHub creates a new hub.
func NewHub() *Hub {
	active, err := meter.Int64UpDownCounter("hub.rooms.active",
		metric.WithDescription("Number of rooms with a connected client"),
	)
	if err != nil {
		slog.Warn("failed to create active-rooms counter", "error", err)
	}

	return &Hub{
		rooms:      make(map[string]*room.Room),
		register:   make(chan *room.Room),
		unregister: make(chan string),
		count:      make(chan chan int),
		done:       make(chan struct{}),
		active:     active,
	}
}

// Run serves registrations until ctx is cancelled, then stops every room still
// registered.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for id, r := range h.rooms {
				r.Stop()
				delete(h.rooms, id)
			}
			slog.Info("Hub stopped")
			return

		case r := <-h.register:
			h.rooms[r.ID] = r
			h.add(ctx, 1)
			slog.DebugContext(ctx, "Room registered", "room.id", r.ID, "rooms", len(h.rooms))

		case id := <-h.unregister:
			if _, ok := h.rooms[id]; ok {
				delete(h.rooms, id)
				h.add(ctx, -1)
				slog.DebugContext(ctx, "Room unregistered", "room.id", id, "rooms", len(h.rooms))
			}

		case reply := <-h.count:
			reply <- len(h.rooms)
		}
	}
}

func (h *Hub) add(ctx context.Context, n int64) {
	if h.active != nil {
		h.active.Add(ctx, n)
	}
}

// Register adds r to the hub. It returns false once the hub has stopped, in
// which case the caller owns stopping r.
func (h *Hub) Register(r *room.Room) bool {
	select {
	case h.register <- r:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes the room with the given id.
func (h *Hub) Unregister(id string) {
	select {
	case h.unregister <- id:
	case <-h.done:
	}
}

// Count returns the number of live rooms, 0 once the hub has stopped.
func (h *Hub) Count() int {
	reply := make(chan int, 1)
	select {
	case h.count <- reply:
		return <-reply
	case <-h.done:
		return 0
	}
}
