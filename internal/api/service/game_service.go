package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"ctchen222/tictactoe-history/internal/game"
	"ctchen222/tictactoe-history/internal/session"
	"ctchen222/tictactoe-history/internal/telemetry"
	"ctchen222/tictactoe-history/internal/view"
	"ctchen222/tictactoe-history/pkg/proto"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("service")

// Broadcaster pushes a message to every open connection of a session.
type Broadcaster interface {
	Broadcast(ctx context.Context, sessionID string, msg *proto.ServerToClientMessage) error
}

// GameService defines the operations every surface performs on a session's game.
type GameService interface {
	// State returns the session's game, starting one if the session has none.
	State(ctx context.Context, sessionID string) (view.Game, error)
	// Apply dispatches e to the session's game and returns the resulting view.
	Apply(ctx context.Context, sessionID string, e game.Event) (view.Game, error)
	// Reset throws the session's game away and starts a new one.
	Reset(ctx context.Context, sessionID string) (view.Game, error)
}

type gameService struct {
	store       session.Store
	broadcaster Broadcaster
	metrics     *telemetry.Metrics
}

// NewGameService creates a new GameService. broadcaster may be nil.
func NewGameService(store session.Store, broadcaster Broadcaster, metrics *telemetry.Metrics) GameService {
	return &gameService{
		store:       store,
		broadcaster: broadcaster,
		metrics:     metrics,
	}
}

func (s *gameService) State(ctx context.Context, sessionID string) (view.Game, error) {
	ctx, span := tracer.Start(ctx, "service.State", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	g, err := s.load(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to load game")
		return view.Game{}, err
	}
	return view.Derive(g), nil
}

func (s *gameService) load(ctx context.Context, sessionID string) (*game.Game, error) {
	g, err := s.store.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		g, err = s.store.Create(ctx, sessionID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load game for session %s: %w", sessionID, err)
	}
	return g, nil
}

func (s *gameService) Apply(ctx context.Context, sessionID string, e game.Event) (view.Game, error) {
	ctx, span := tracer.Start(ctx, "service.Apply", trace.WithAttributes(
		attribute.String("session.id", sessionID),
		attribute.String("event.kind", string(e.Kind)),
		attribute.Int("event.value", e.Value),
	))
	defer span.End()

	var (
		changed bool
		result  game.MoveResult
	)
	apply := func(g *game.Game) error {
		if e.Kind == game.EventPlay {
			result = g.PlayMove(e.Value)
			changed = result == game.MoveApplied
			return nil
		}
		changed = g.Dispatch(e)
		return nil
	}

	g, err := s.store.Update(ctx, sessionID, apply)
	if errors.Is(err, session.ErrNotFound) {
		if _, err = s.store.Create(ctx, sessionID); err == nil {
			g, err = s.store.Update(ctx, sessionID, apply)
		}
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to apply event")
		return view.Game{}, fmt.Errorf("failed to apply %s event for session %s: %w", e.Kind, sessionID, err)
	}

	switch e.Kind {
	case game.EventPlay:
		s.metrics.RecordMove(ctx, result, g.Outcome())
		span.SetAttributes(attribute.String("move.result", result.String()))
		if !changed {
			slog.DebugContext(ctx, "move ignored", "session.id", sessionID, "move.index", e.Value, "move.result", result.String())
		}
	case game.EventJump:
		if changed {
			s.metrics.RecordJump(ctx)
		}
	}

	v := view.Derive(g)
	if changed {
		s.publish(ctx, sessionID, v)
	}
	return v, nil
}

func (s *gameService) Reset(ctx context.Context, sessionID string) (view.Game, error) {
	ctx, span := tracer.Start(ctx, "service.Reset", trace.WithAttributes(attribute.String("session.id", sessionID)))
	defer span.End()

	if err := s.store.Delete(ctx, sessionID); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to delete game")
		return view.Game{}, fmt.Errorf("failed to reset session %s: %w", sessionID, err)
	}
	g, err := s.store.Create(ctx, sessionID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "failed to create game")
		return view.Game{}, fmt.Errorf("failed to reset session %s: %w", sessionID, err)
	}

	v := view.Derive(g)
	s.publish(ctx, sessionID, v)
	return v, nil
}

// publish sends v to the session's open connections. Failures only cost the
// live update; the stored game is already saved.
func (s *gameService) publish(ctx context.Context, sessionID string, v view.Game) {
	if s.broadcaster == nil {
		return
	}
	msg, err := proto.NewRender(v)
	if err != nil {
		slog.ErrorContext(ctx, "failed to render game", "session.id", sessionID, "error", err)
		return
	}
	if err := s.broadcaster.Broadcast(ctx, sessionID, msg); err != nil {
		slog.WarnContext(ctx, "failed to broadcast render", "session.id", sessionID, "error", err)
	}
}
