// Package view derives everything a surface needs to draw a game: the board
// cells, the status line and the move list. It holds no state of its own.
package view

import (
	"fmt"

	"ctchen222/tictactoe-history/internal/game"
)

// Cell is what a single square shows.
type Cell struct {
	Index int    `json:"index"`
	Value string `json:"value"`
}

// Board lays out nine cells as three rows.
type Board struct {
	Rows [3][3]Cell `json:"rows"`
}

// Move is one entry of the move list.
type Move struct {
	Step    int    `json:"step"`
	Label   string `json:"label"`
	Current bool   `json:"current"`
}

// Game is the full projection of a game at its current step.
type Game struct {
	Board   Board        `json:"board"`
	Status  string       `json:"status"`
	Winner  string       `json:"winner,omitempty"`
	Next    string       `json:"next,omitempty"`
	Outcome game.Outcome `json:"outcome"`
	Step    int          `json:"step"`
	Moves   []Move       `json:"moves"`
}

// Derive projects g into what should be displayed.
func Derive(g *game.Game) Game {
	current := g.Current()
	winner := game.CalculateWinner(current)

	v := Game{
		Board:   NewBoard(current),
		Status:  Status(winner, g.ActivePlayer()),
		Winner:  string(winner),
		Outcome: game.OutcomeOf(current),
		Step:    g.Step(),
		Moves:   make([]Move, g.Len()),
	}
	if winner == game.None {
		v.Next = string(g.ActivePlayer())
	}
	for move := range v.Moves {
		v.Moves[move] = Move{
			Step:    move,
			Label:   MoveLabel(move),
			Current: move == g.Step(),
		}
	}
	return v
}

// NewBoard arranges a snapshot row-major into three rows of cells.
func NewBoard(s game.Snapshot) Board {
	var b Board
	for i, mark := range s {
		b.Rows[i/3][i%3] = Cell{Index: i, Value: string(mark)}
	}
	return b
}

// Status is the line shown above the move list.
func Status(winner, next game.PlayerMark) string {
	if winner != game.None {
		return "Winner: " + string(winner)
	}
	return "Next player: " + string(next)
}

// MoveLabel is the caption of the move-list button for step.
func MoveLabel(step int) string {
	if step == 0 {
		return "Go to game start"
	}
	return fmt.Sprintf("Go to move #%d", step)
}
