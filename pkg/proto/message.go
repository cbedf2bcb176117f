package proto

import (
	"ctchen222/tictactoe-history/internal/game"
	"ctchen222/tictactoe-history/internal/view"
)

// Message types.
const (
	TypePlay   = "play"
	TypeJump   = "jump"
	TypeRender = "render"
)

// ClientToServerMessage is a click forwarded by the browser.
// "play" carries Index, "jump" carries Step.
type ClientToServerMessage struct {
	Type  string `json:"type" validate:"required,oneof=play jump"`
	Index int    `json:"index" validate:"gte=0,lte=8"`
	Step  int    `json:"step" validate:"gte=0"`
}

// Event converts the message into a controller event.
func (m ClientToServerMessage) Event() game.Event {
	if m.Type == TypeJump {
		return game.Jump(m.Step)
	}
	return game.Play(m.Index)
}

// ServerToClientMessage carries a fresh rendering of the session's game.
type ServerToClientMessage struct {
	Type  string     `json:"type" validate:"required"`
	HTML  string     `json:"html,omitempty"`
	State *view.Game `json:"state,omitempty"`
}

// NewRender builds the render message for v.
func NewRender(v view.Game) (*ServerToClientMessage, error) {
	html, err := view.GameHTML(v)
	if err != nil {
		return nil, err
	}
	return &ServerToClientMessage{
		Type:  TypeRender,
		HTML:  html,
		State: &v,
	}, nil
}
