package session

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"ctchen222/tictactoe-history/internal/game"
)

type memoryEntry struct {
	record  game.Record
	expires time.Time
}

// MemoryStore keeps games in process memory. Entries expire ttl after their
// last write; Sweep drops them.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*memoryEntry
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*memoryEntry),
	}
}

// Create starts a fresh game for id.
func (s *MemoryStore) Create(ctx context.Context, id string) (*game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := game.NewGame()
	s.sessions[id] = &memoryEntry{record: g.Record(), expires: s.now().Add(s.ttl)}
	return g, nil
}

// Get returns a copy of the session's game.
func (s *MemoryStore) Get(ctx context.Context, id string) (*game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	return game.Restore(entry.record)
}

// Update applies fn to the session's game under the store lock.
func (s *MemoryStore) Update(ctx context.Context, id string, fn func(*game.Game) error) (*game.Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, err := s.lookup(id)
	if err != nil {
		return nil, err
	}
	g, err := game.Restore(entry.record)
	if err != nil {
		return nil, fmt.Errorf("failed to load game for session %s: %w", id, err)
	}
	if err := fn(g); err != nil {
		return nil, err
	}

	entry.record = g.Record()
	entry.expires = s.now().Add(s.ttl)
	return g, nil
}

// Delete forgets the session.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// Len returns the number of stored sessions, expired or not.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	dropped := 0
	for id, entry := range s.sessions {
		if !now.Before(entry.expires) {
			delete(s.sessions, id)
			dropped++
		}
	}
	return dropped
}

// RunSweeper calls Sweep every interval until ctx is done.
func (s *MemoryStore) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				slog.DebugContext(ctx, "expired sessions swept", "sessions.dropped", n)
			}
		}
	}
}

// lookup must be called with s.mu held.
func (s *MemoryStore) lookup(id string) (*memoryEntry, error) {
	entry, ok := s.sessions[id]
	if !ok || !s.now().Before(entry.expires) {
		return nil, ErrNotFound
	}
	return entry, nil
}
