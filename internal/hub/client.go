package hub

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"ctchen222/tictactoe-history/pkg/proto"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	heartbeatInterval = 10 * time.Second
	sendBufferSize    = 8
)

// Connection is an interface that abstracts the websocket connection.
type Connection interface {
	WriteMessage(messageType int, data []byte) error
	ReadMessage() (int, []byte, error)
	Close() error
}

// Client is one open browser tab of a session.
type Client struct {
	ID        string
	SessionID string
	Conn      Connection
	send      chan []byte
}

// NewClient wraps conn for the given session.
func NewClient(sessionID string, conn Connection) *Client {
	return &Client{
		ID:        uuid.New().String(),
		SessionID: sessionID,
		Conn:      conn,
		send:      make(chan []byte, sendBufferSize),
	}
}

// Send queues msg for this client only. It must be called before the client
// is registered with a hub; afterwards only the hub writes to the queue.
func (c *Client) Send(msg *proto.ServerToClientMessage) error {
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal message: %w", err)
	}
	select {
	case c.send <- data:
		return nil
	default:
		return fmt.Errorf("send buffer full for client %s", c.ID)
	}
}

// ReadPump feeds every inbound message to handle until the connection fails,
// then unregisters the client from h.
func (c *Client) ReadPump(ctx context.Context, h *Hub, handle func(ctx context.Context, raw []byte)) {
	defer func() {
		h.Unregister(c)
		c.Conn.Close()
	}()

	for {
		_, msg, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				slog.WarnContext(ctx, "client connection error", "client.id", c.ID, "session.id", c.SessionID, "error", err)
			}
			return
		}
		handle(ctx, msg)
	}
}

// WritePump writes queued messages and heartbeats until the hub closes the queue.
func (c *Client) WritePump(ctx context.Context) {
	pingTicker := time.NewTicker(heartbeatInterval)
	defer func() {
		pingTicker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case data, ok := <-c.send:
			if !ok {
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, data); err != nil {
				slog.WarnContext(ctx, "failed to write to client", "client.id", c.ID, "session.id", c.SessionID, "error", err)
				return
			}

		case <-pingTicker.C:
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				slog.WarnContext(ctx, "failed to send ping to client, assuming disconnect", "client.id", c.ID, "error", err)
				return
			}
		}
	}
}
