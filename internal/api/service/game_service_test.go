package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"ctchen222/tictactoe-history/internal/game"
	"ctchen222/tictactoe-history/internal/session"
	"ctchen222/tictactoe-history/internal/telemetry"
	"ctchen222/tictactoe-history/pkg/proto"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type recordingBroadcaster struct {
	mu   sync.Mutex
	msgs map[string][]*proto.ServerToClientMessage
}

func (b *recordingBroadcaster) Broadcast(_ context.Context, sessionID string, msg *proto.ServerToClientMessage) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.msgs == nil {
		b.msgs = make(map[string][]*proto.ServerToClientMessage)
	}
	b.msgs[sessionID] = append(b.msgs[sessionID], msg)
	return nil
}

func (b *recordingBroadcaster) count(sessionID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.msgs[sessionID])
}

func newService(t *testing.T, store session.Store, b Broadcaster) GameService {
	t.Helper()
	metrics, err := telemetry.NewMetrics(nil)
	require.NoError(t, err)
	return NewGameService(store, b, metrics)
}

func TestGameService_StateStartsGame(t *testing.T) {
	svc := newService(t, session.NewMemoryStore(time.Hour), nil)

	v, err := svc.State(context.Background(), "s1")

	require.NoError(t, err)
	assert.Equal(t, "Next player: X", v.Status)
	assert.Equal(t, 0, v.Step)
	require.Len(t, v.Moves, 1)
	assert.Equal(t, "Go to game start", v.Moves[0].Label)
}

func TestGameService_Apply(t *testing.T) {
	ctx := context.Background()
	b := &recordingBroadcaster{}
	svc := newService(t, session.NewMemoryStore(time.Hour), b)

	for _, i := range []int{0, 3, 1, 4, 2} {
		_, err := svc.Apply(ctx, "s1", game.Play(i))
		require.NoError(t, err)
	}
	v, err := svc.State(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "Winner: X", v.Status)
	assert.Equal(t, 5, b.count("s1"))

	// a click after the win changes nothing and is not broadcast
	v, err = svc.Apply(ctx, "s1", game.Play(8))
	require.NoError(t, err)
	assert.Equal(t, 5, v.Step)
	assert.Equal(t, 5, b.count("s1"))

	v, err = svc.Apply(ctx, "s1", game.Jump(2))
	require.NoError(t, err)
	assert.Equal(t, "Next player: X", v.Status)
	assert.Len(t, v.Moves, 6)
	assert.Equal(t, 6, b.count("s1"))

	v, err = svc.Apply(ctx, "s1", game.Play(8))
	require.NoError(t, err)
	assert.Equal(t, 3, v.Step)
	assert.Len(t, v.Moves, 4, "future history is discarded")
	assert.Equal(t, "X", v.Board.Rows[2][2].Value)
}

func TestGameService_ApplyStartsMissingSession(t *testing.T) {
	svc := newService(t, session.NewMemoryStore(time.Hour), nil)

	v, err := svc.Apply(context.Background(), "fresh", game.Play(4))

	require.NoError(t, err)
	assert.Equal(t, 1, v.Step)
	assert.Equal(t, "X", v.Board.Rows[1][1].Value)
}

func TestGameService_Reset(t *testing.T) {
	ctx := context.Background()
	b := &recordingBroadcaster{}
	svc := newService(t, session.NewMemoryStore(time.Hour), b)
	_, err := svc.Apply(ctx, "s1", game.Play(0))
	require.NoError(t, err)

	v, err := svc.Reset(ctx, "s1")

	require.NoError(t, err)
	assert.Equal(t, 0, v.Step)
	assert.Len(t, v.Moves, 1)
	assert.Equal(t, 2, b.count("s1"))
}

func TestGameService_StoreErrors(t *testing.T) {
	boom := errors.New("connection refused")

	t.Run("state", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := session.NewMockStore(ctrl)
		store.EXPECT().Get(gomock.Any(), "s1").Return(nil, boom)

		_, err := newService(t, store, nil).State(context.Background(), "s1")

		assert.ErrorIs(t, err, boom)
	})

	t.Run("apply", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := session.NewMockStore(ctrl)
		store.EXPECT().Update(gomock.Any(), "s1", gomock.Any()).Return(nil, boom)

		_, err := newService(t, store, nil).Apply(context.Background(), "s1", game.Play(0))

		assert.ErrorIs(t, err, boom)
	})

	t.Run("apply after create fails", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := session.NewMockStore(ctrl)
		store.EXPECT().Update(gomock.Any(), "s1", gomock.Any()).Return(nil, session.ErrNotFound)
		store.EXPECT().Create(gomock.Any(), "s1").Return(nil, boom)

		_, err := newService(t, store, nil).Apply(context.Background(), "s1", game.Play(0))

		assert.ErrorIs(t, err, boom)
	})

	t.Run("reset", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		store := session.NewMockStore(ctrl)
		store.EXPECT().Delete(gomock.Any(), "s1").Return(boom)

		_, err := newService(t, store, nil).Reset(context.Background(), "s1")

		assert.ErrorIs(t, err, boom)
	})
}
