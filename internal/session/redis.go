package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ctchen222/tictactoe-history/internal/game"

	"github.com/go-redis/redis/v8"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("session")

// maxUpdateRetries bounds optimistic-lock retries when two requests of the
// same session race.
const maxUpdateRetries = 5

// NewRedisClient creates a client for addr and pings it.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	// Ping the server to ensure the connection is established.
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to ping redis at %s: %w", addr, err)
	}

	return client, nil
}

// RedisStore keeps each session's game as a JSON record under "session:{id}",
// expiring ttl after the last write.
type RedisStore struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisStore creates a Redis-based Store.
func NewRedisStore(rdb *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{rdb: rdb, ttl: ttl}
}

// getter is satisfied by both *redis.Client and *redis.Tx.
type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func sessionKey(id string) string {
	return fmt.Sprintf("session:%s", id)
}

// Create stores a fresh game for id.
func (s *RedisStore) Create(ctx context.Context, id string) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "RedisStore.Create", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	g := game.NewGame()
	data, err := json.Marshal(g.Record())
	if err != nil {
		return nil, fmt.Errorf("failed to marshal initial game: %w", err)
	}
	if err := s.rdb.Set(ctx, sessionKey(id), data, s.ttl).Err(); err != nil {
		return nil, fmt.Errorf("failed to create game in redis: %w", err)
	}
	return g, nil
}

// Get loads the session's game.
func (s *RedisStore) Get(ctx context.Context, id string) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "RedisStore.Get", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	return s.load(ctx, s.rdb, id)
}

// Update applies fn inside a WATCH transaction, retrying when another writer
// changed the session first.
func (s *RedisStore) Update(ctx context.Context, id string, fn func(*game.Game) error) (*game.Game, error) {
	ctx, span := tracer.Start(ctx, "RedisStore.Update", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	key := sessionKey(id)
	var updated *game.Game

	txf := func(tx *redis.Tx) error {
		g, err := s.load(ctx, tx, id)
		if err != nil {
			return err
		}
		if err := fn(g); err != nil {
			return err
		}

		data, err := json.Marshal(g.Record())
		if err != nil {
			return fmt.Errorf("failed to marshal updated game: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, data, s.ttl)
			return nil
		})
		if err != nil {
			return err
		}
		updated = g
		return nil
	}

	for attempt := 0; attempt < maxUpdateRetries; attempt++ {
		err := s.rdb.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			span.SetAttributes(attribute.Int("update.retries", attempt+1))
			continue
		}
		if err != nil {
			return nil, err
		}
		return updated, nil
	}
	return nil, fmt.Errorf("failed to update session %s: too much contention", id)
}

// Delete removes the session's game.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	ctx, span := tracer.Start(ctx, "RedisStore.Delete", trace.WithAttributes(attribute.String("session.id", id)))
	defer span.End()

	if err := s.rdb.Del(ctx, sessionKey(id)).Err(); err != nil {
		return fmt.Errorf("failed to delete session from redis: %w", err)
	}
	return nil
}

func (s *RedisStore) load(ctx context.Context, c getter, id string) (*game.Game, error) {
	data, err := c.Get(ctx, sessionKey(id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game from redis: %w", err)
	}

	var rec game.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal game: %w", err)
	}
	g, err := game.Restore(rec)
	if err != nil {
		return nil, fmt.Errorf("failed to restore game for session %s: %w", id, err)
	}
	return g, nil
}
