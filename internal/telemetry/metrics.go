package telemetry

import (
	"context"
	"fmt"

	"ctchen222/tictactoe-history/internal/game"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "ctchen222/tictactoe-history"

// Metrics counts what players do with their games.
type Metrics struct {
	movesApplied metric.Int64Counter
	movesIgnored metric.Int64Counter
	jumps        metric.Int64Counter
	finished     metric.Int64Counter
}

// NewMetrics registers the game counters on meter. A nil meter uses the global provider.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	if meter == nil {
		meter = otel.Meter(meterName)
	}

	var (
		m   Metrics
		err error
	)
	if m.movesApplied, err = meter.Int64Counter("game.moves.applied",
		metric.WithDescription("Moves that placed a mark")); err != nil {
		return nil, fmt.Errorf("failed to create moves.applied counter: %w", err)
	}
	if m.movesIgnored, err = meter.Int64Counter("game.moves.ignored",
		metric.WithDescription("Clicks that left the board unchanged, by reason")); err != nil {
		return nil, fmt.Errorf("failed to create moves.ignored counter: %w", err)
	}
	if m.jumps, err = meter.Int64Counter("game.jumps",
		metric.WithDescription("Time-travel jumps through the move history")); err != nil {
		return nil, fmt.Errorf("failed to create jumps counter: %w", err)
	}
	if m.finished, err = meter.Int64Counter("game.finished",
		metric.WithDescription("Moves that ended a game, by outcome")); err != nil {
		return nil, fmt.Errorf("failed to create finished counter: %w", err)
	}
	return &m, nil
}

// RecordMove counts a PlayMove result. outcome is the game's outcome after the move.
func (m *Metrics) RecordMove(ctx context.Context, result game.MoveResult, outcome game.Outcome) {
	if result != game.MoveApplied {
		m.movesIgnored.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", result.String())))
		return
	}
	m.movesApplied.Add(ctx, 1)
	if outcome != game.InProgress {
		m.finished.Add(ctx, 1, metric.WithAttributes(attribute.String("outcome", string(outcome))))
	}
}

// RecordJump counts a history jump that changed the viewed step.
func (m *Metrics) RecordJump(ctx context.Context) {
	m.jumps.Add(ctx, 1)
}
