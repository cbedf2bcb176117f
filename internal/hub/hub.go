package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"ctchen222/tictactoe-history/pkg/proto"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("hub")

type broadcastRequest struct {
	sessionID string
	data      []byte
}

type countRequest struct {
	sessionID string
	reply     chan int
}

// Hub tracks the open websocket clients of every session and fans renders
// out to all tabs of the session that changed. All map access happens on the
// Run goroutine.
type Hub struct {
	sessions   map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	broadcast  chan broadcastRequest
	count      chan countRequest
	done       chan struct{}
}

// NewHub creates a new hub. Call Run before using it.
func NewHub() *Hub {
	return &Hub{
		sessions:   make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan broadcastRequest),
		count:      make(chan countRequest),
		done:       make(chan struct{}),
	}
}

// Run serves the hub until ctx is done, then closes every client queue.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)

	for {
		select {
		case <-ctx.Done():
			for _, clients := range h.sessions {
				for c := range clients {
					close(c.send)
				}
			}
			h.sessions = make(map[string]map[*Client]struct{})
			return

		case c := <-h.register:
			clients, ok := h.sessions[c.SessionID]
			if !ok {
				clients = make(map[*Client]struct{})
				h.sessions[c.SessionID] = clients
			}
			clients[c] = struct{}{}
			slog.DebugContext(ctx, "client registered", "client.id", c.ID, "session.id", c.SessionID, "session.clients", len(clients))

		case c := <-h.unregister:
			h.remove(c)
			slog.DebugContext(ctx, "client unregistered", "client.id", c.ID, "session.id", c.SessionID)

		case req := <-h.broadcast:
			for c := range h.sessions[req.sessionID] {
				select {
				case c.send <- req.data:
				default:
					slog.WarnContext(ctx, "client too slow, dropping it", "client.id", c.ID, "session.id", c.SessionID)
					h.remove(c)
				}
			}

		case q := <-h.count:
			q.reply <- len(h.sessions[q.sessionID])
		}
	}
}

// remove must only be called from Run.
func (h *Hub) remove(c *Client) {
	clients, ok := h.sessions[c.SessionID]
	if !ok {
		return
	}
	if _, ok := clients[c]; !ok {
		return
	}
	delete(clients, c)
	close(c.send)
	if len(clients) == 0 {
		delete(h.sessions, c.SessionID)
	}
}

// Register adds c to its session. On a stopped hub the client's queue is
// closed right away so its write pump exits.
func (h *Hub) Register(c *Client) {
	select {
	case h.register <- c:
	case <-h.done:
		close(c.send)
	}
}

// Unregister removes c and closes its queue. Unknown clients are ignored.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Broadcast sends msg to every client of the session.
func (h *Hub) Broadcast(ctx context.Context, sessionID string, msg *proto.ServerToClientMessage) error {
	_, span := tracer.Start(ctx, "hub.Broadcast", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("message.type", msg.Type),
	))
	defer span.End()

	data, err := json.Marshal(msg)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to marshal message: %w", err)
	}

	select {
	case h.broadcast <- broadcastRequest{sessionID: sessionID, data: data}:
		return nil
	case <-h.done:
		return fmt.Errorf("hub stopped")
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ClientCount returns how many clients the session has open.
func (h *Hub) ClientCount(sessionID string) int {
	reply := make(chan int, 1)
	select {
	case h.count <- countRequest{sessionID: sessionID, reply: reply}:
		return <-reply
	case <-h.done:
		return 0
	}
}
