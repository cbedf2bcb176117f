package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func play(t *testing.T, g *Game, moves ...int) {
	t.Helper()
	for _, m := range moves {
		require.Equal(t, MoveApplied, g.PlayMove(m), "move %d", m)
	}
}

func TestNewGame(t *testing.T) {
	g := NewGame()

	assert.Equal(t, 1, g.Len())
	assert.Equal(t, 0, g.Step())
	assert.Equal(t, Snapshot{}, g.Current())
	assert.True(t, g.XIsNext())
	assert.Equal(t, PlayerX, g.ActivePlayer())
	assert.Equal(t, None, g.Winner())
	assert.Equal(t, InProgress, g.Outcome())
}

func TestGame_PlayMove(t *testing.T) {
	t.Run("appends one snapshot and advances the step", func(t *testing.T) {
		g := NewGame()

		result := g.PlayMove(0)

		require.Equal(t, MoveApplied, result)
		assert.Equal(t, 2, g.Len())
		assert.Equal(t, 1, g.Step())
		assert.Equal(t, PlayerX, g.Current()[0])
		assert.Equal(t, Snapshot{}, g.History()[0], "earlier snapshots are never modified")
	})

	t.Run("occupied cell is a no-op", func(t *testing.T) {
		g := NewGame()
		play(t, g, 4)
		before := g.Record()

		result := g.PlayMove(4)

		assert.Equal(t, MoveCellOccupied, result)
		assert.Equal(t, before, g.Record())
		assert.Equal(t, PlayerX, g.Current()[4])
	})

	t.Run("out of range is a no-op", func(t *testing.T) {
		g := NewGame()

		assert.Equal(t, MoveOutOfRange, g.PlayMove(-1))
		assert.Equal(t, MoveOutOfRange, g.PlayMove(9))
		assert.Equal(t, 1, g.Len())
	})

	t.Run("decided game is a no-op", func(t *testing.T) {
		g := NewGame()
		play(t, g, 0, 4, 1, 3, 2)
		require.Equal(t, PlayerX, g.Winner())
		before := g.Record()

		result := g.PlayMove(5)

		assert.Equal(t, MoveGameDecided, result)
		assert.Equal(t, before, g.Record())
	})
}

func TestGame_Alternation(t *testing.T) {
	g := NewGame()
	moves := []int{4, 0, 8, 2, 1, 7, 6, 3, 5}

	for n, m := range moves {
		if n%2 == 0 {
			assert.Equal(t, PlayerX, g.ActivePlayer(), "after %d moves", n)
		} else {
			assert.Equal(t, PlayerO, g.ActivePlayer(), "after %d moves", n)
		}
		play(t, g, m)
	}

	assert.Equal(t, Draw, g.Outcome())
	assert.Equal(t, None, g.Winner())
	assert.Equal(t, MoveGameDecided.String(), "game_decided")
}

func TestGame_JumpTo(t *testing.T) {
	t.Run("moves the view without touching history", func(t *testing.T) {
		g := NewGame()
		play(t, g, 0, 4, 1)

		require.True(t, g.JumpTo(1))

		assert.Equal(t, 1, g.Step())
		assert.Equal(t, 4, g.Len())
		assert.Equal(t, PlayerO, g.ActivePlayer())
		assert.Equal(t, Snapshot{PlayerX}, g.Current())
	})

	t.Run("out of range steps are ignored", func(t *testing.T) {
		g := NewGame()
		play(t, g, 0)

		assert.False(t, g.JumpTo(-1))
		assert.False(t, g.JumpTo(2))
		assert.Equal(t, 1, g.Step())
	})

	t.Run("playing after a jump truncates the future", func(t *testing.T) {
		g := NewGame()
		play(t, g, 0, 4, 1, 3)
		require.True(t, g.JumpTo(1))

		play(t, g, 8)

		assert.Equal(t, 3, g.Len(), "k+2 snapshots after jumping to k=1")
		assert.Equal(t, 2, g.Step())
		assert.Equal(t, Snapshot{PlayerX, None, None, None, None, None, None, None, PlayerO}, g.Current())
	})

	t.Run("jumping back from a won game allows play again", func(t *testing.T) {
		g := NewGame()
		play(t, g, 0, 4, 1, 3, 2)
		require.Equal(t, Won, g.Outcome())

		require.True(t, g.JumpTo(4))

		assert.Equal(t, InProgress, g.Outcome())
		assert.Equal(t, MoveApplied, g.PlayMove(5))
		assert.Equal(t, 6, g.Len())
	})
}

func TestGame_Scenario(t *testing.T) {
	g := NewGame()

	play(t, g, 0)
	assert.Equal(t, PlayerX, g.Current()[0])
	assert.Equal(t, PlayerO, g.ActivePlayer())

	play(t, g, 4)
	assert.Equal(t, PlayerO, g.Current()[4])
	assert.Equal(t, PlayerX, g.ActivePlayer())

	play(t, g, 1, 3, 2)
	assert.Equal(t, Snapshot{PlayerX, PlayerX, PlayerX, PlayerO, PlayerO}, g.Current())
	assert.Equal(t, PlayerX, g.Winner())

	assert.Equal(t, MoveGameDecided, g.PlayMove(5))
	assert.Equal(t, None, g.Current()[5])
}

func TestGame_Dispatch(t *testing.T) {
	g := NewGame()

	assert.True(t, g.Dispatch(Play(0)))
	assert.False(t, g.Dispatch(Play(0)))
	assert.True(t, g.Dispatch(Jump(0)))
	assert.False(t, g.Dispatch(Jump(0)), "jumping to the current step changes nothing")
	assert.False(t, g.Dispatch(Jump(5)))
	assert.False(t, g.Dispatch(Event{Kind: "reset"}))
	assert.Equal(t, 0, g.Step())
	assert.Equal(t, 2, g.Len())
}
