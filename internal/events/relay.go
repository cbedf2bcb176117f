package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"ctchen222/tictactoe-history/pkg/proto"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("events")

// Broadcaster delivers a message to the connections held by this instance.
type Broadcaster interface {
	Broadcast(ctx context.Context, sessionID string, msg *proto.ServerToClientMessage) error
}

// Relay broadcasts locally and publishes every message for the other
// instances. Run delivers what the others publish.
type Relay struct {
	rdb    *redis.Client
	local  Broadcaster
	origin string
}

// NewRelay creates a Relay publishing on rdb for the given local broadcaster.
func NewRelay(rdb *redis.Client, local Broadcaster) *Relay {
	return &Relay{
		rdb:    rdb,
		local:  local,
		origin: uuid.New().String(),
	}
}

// Broadcast sends msg to local connections, then publishes it.
func (r *Relay) Broadcast(ctx context.Context, sessionID string, msg *proto.ServerToClientMessage) error {
	ctx, span := tracer.Start(ctx, "Relay.Broadcast", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("relay.origin", r.origin),
	))
	defer span.End()

	if err := r.local.Broadcast(ctx, sessionID, msg); err != nil {
		slog.WarnContext(ctx, "local broadcast failed", "session.id", sessionID, "error", err)
	}

	data, err := r.encode(sessionID, msg)
	if err != nil {
		span.RecordError(err)
		return err
	}
	if err := r.rdb.Publish(ctx, EventsChannel, data).Err(); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to publish event")
		return fmt.Errorf("failed to publish session event: %w", err)
	}
	return nil
}

func (r *Relay) encode(sessionID string, msg *proto.ServerToClientMessage) ([]byte, error) {
	message, err := json.Marshal(msg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal message: %w", err)
	}
	payload, err := json.Marshal(SessionChangedPayload{SessionID: sessionID, Message: message})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}
	data, err := json.Marshal(Event{Type: TypeSessionChanged, Origin: r.origin, Payload: payload})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal event: %w", err)
	}
	return data, nil
}

// Start subscribes to the events channel and, until ctx is done, hands
// messages published by other instances to the local broadcaster. It returns
// once the subscription is live.
func (r *Relay) Start(ctx context.Context) error {
	pubsub := r.rdb.Subscribe(ctx, EventsChannel)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return fmt.Errorf("failed to subscribe to %s: %w", EventsChannel, err)
	}

	go func() {
		defer pubsub.Close()
		slog.InfoContext(ctx, "event relay started", "relay.origin", r.origin, "channel", EventsChannel)

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				slog.InfoContext(ctx, "event relay stopped", "relay.origin", r.origin)
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				r.handle(ctx, msg.Payload)
			}
		}
	}()
	return nil
}

func (r *Relay) handle(ctx context.Context, raw string) {
	var event Event
	if err := json.Unmarshal([]byte(raw), &event); err != nil {
		slog.WarnContext(ctx, "dropping malformed event", "error", err)
		return
	}
	if event.Origin == r.origin || event.Type != TypeSessionChanged {
		return
	}

	var payload SessionChangedPayload
	if err := json.Unmarshal(event.Payload, &payload); err != nil {
		slog.WarnContext(ctx, "dropping malformed session event", "error", err)
		return
	}
	var msg proto.ServerToClientMessage
	if err := json.Unmarshal(payload.Message, &msg); err != nil {
		slog.WarnContext(ctx, "dropping malformed relayed message", "session.id", payload.SessionID, "error", err)
		return
	}

	ctx, span := tracer.Start(ctx, "Relay.handle", trace.WithAttributes(
		attribute.String("session.id", payload.SessionID),
		attribute.String("relay.from", event.Origin),
	))
	defer span.End()

	if err := r.local.Broadcast(ctx, payload.SessionID, &msg); err != nil {
		span.RecordError(err)
		slog.WarnContext(ctx, "failed to deliver relayed message", "session.id", payload.SessionID, "error", err)
	}
}
