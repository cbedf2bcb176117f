package proto

import (
	"encoding/json"
	"testing"

	"ctchen222/tictactoe-history/internal/game"
	"ctchen222/tictactoe-history/internal/validator"
	"ctchen222/tictactoe-history/internal/view"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientToServerMessage_Validation(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
		want    game.Event
	}{
		{name: "play", raw: `{"type":"play","index":4}`, want: game.Play(4)},
		{name: "jump", raw: `{"type":"jump","step":2}`, want: game.Jump(2)},
		{name: "jump to start", raw: `{"type":"jump","step":0}`, want: game.Jump(0)},
		{name: "missing type", raw: `{"index":4}`, wantErr: true},
		{name: "unknown type", raw: `{"type":"rematch"}`, wantErr: true},
		{name: "index too large", raw: `{"type":"play","index":9}`, wantErr: true},
		{name: "negative step", raw: `{"type":"jump","step":-1}`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var msg ClientToServerMessage
			require.NoError(t, json.Unmarshal([]byte(tt.raw), &msg))

			err := validator.GetValidator().Struct(msg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, msg.Event())
		})
	}
}

func TestNewRender(t *testing.T) {
	g := game.NewGame()
	g.PlayMove(0)

	msg, err := NewRender(view.Derive(g))

	require.NoError(t, err)
	assert.Equal(t, TypeRender, msg.Type)
	assert.Contains(t, msg.HTML, "Next player: O")
	require.NotNil(t, msg.State)
	assert.Equal(t, 1, msg.State.Step)
}
