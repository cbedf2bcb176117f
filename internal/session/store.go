// Package session keeps one game per browser session. A session lives as long
// as its cookie and its store entry; nothing outlives the TTL.
package session

import (
	"context"
	"errors"

	"ctchen222/tictactoe-history/internal/game"
)

//go:generate mockgen -source=store.go -destination=mock_store.go -package=session

// ErrNotFound is returned when a session has no game, or its game expired.
var ErrNotFound = errors.New("session not found")

// Store holds the game of each session.
type Store interface {
	// Create starts a fresh game for id, replacing any existing one.
	Create(ctx context.Context, id string) (*game.Game, error)
	// Get returns a copy of the session's game.
	Get(ctx context.Context, id string) (*game.Game, error)
	// Update loads the game, applies fn and saves the result atomically with
	// respect to other updates of the same session. An error from fn aborts
	// the update and is returned unchanged. The returned game is a copy.
	Update(ctx context.Context, id string, fn func(*game.Game) error) (*game.Game, error)
	// Delete forgets the session.
	Delete(ctx context.Context, id string) error
}
