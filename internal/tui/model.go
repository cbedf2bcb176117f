// Package tui plays a game in the terminal.
package tui

import (
	"strings"

	"ctchen222/tictactoe-history/internal/game"
	"ctchen222/tictactoe-history/internal/view"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	cellStyle = lipgloss.NewStyle().
			Width(5).
			Align(lipgloss.Center).
			Border(lipgloss.NormalBorder())
	cursorStyle = cellStyle.
			BorderForeground(lipgloss.Color("205")).
			Bold(true)
	statusStyle  = lipgloss.NewStyle().Bold(true).MarginBottom(1)
	currentStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	movesStyle   = lipgloss.NewStyle().MarginLeft(4)
)

// Model is the bubbletea model of a single game.
type Model struct {
	game     *game.Game
	cursor   int
	keys     keyMap
	help     help.Model
	quitting bool
}

// NewModel starts a new game with the cursor on the centre cell.
func NewModel() Model {
	return Model{
		game:   game.NewGame(),
		cursor: 4,
		keys:   defaultKeyMap(),
		help:   help.New(),
	}
}

// Game returns the controller behind the model.
func (m Model) Game() *game.Game {
	return m.game
}

// Cursor returns the index of the selected cell.
func (m Model) Cursor() int {
	return m.cursor
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Up):
			if m.cursor >= 3 {
				m.cursor -= 3
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < 6 {
				m.cursor += 3
			}
		case key.Matches(msg, m.keys.Left):
			if m.cursor%3 > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Right):
			if m.cursor%3 < 2 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Play):
			m.game.Dispatch(game.Play(m.cursor))
		case key.Matches(msg, m.keys.Cell):
			m.cursor = int(msg.Runes[0] - '1')
			m.game.Dispatch(game.Play(m.cursor))
		case key.Matches(msg, m.keys.Back):
			m.game.Dispatch(game.Jump(m.game.Step() - 1))
		case key.Matches(msg, m.keys.Forward):
			m.game.Dispatch(game.Jump(m.game.Step() + 1))
		case key.Matches(msg, m.keys.Start):
			m.game.Dispatch(game.Jump(0))
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}
	v := view.Derive(m.game)

	left := lipgloss.JoinVertical(lipgloss.Left,
		statusStyle.Render(v.Status),
		m.renderBoard(v.Board),
	)
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, movesStyle.Render(renderMoves(v.Moves)))
	return body + "\n\n" + m.help.View(m.keys) + "\n"
}

func (m Model) renderBoard(b view.Board) string {
	rows := make([]string, 0, len(b.Rows))
	for _, row := range b.Rows {
		cells := make([]string, 0, len(row))
		for _, c := range row {
			value := c.Value
			if value == "" {
				value = " "
			}
			style := cellStyle
			if c.Index == m.cursor {
				style = cursorStyle
			}
			cells = append(cells, style.Render(value))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func renderMoves(moves []view.Move) string {
	var b strings.Builder
	for i, mv := range moves {
		if i > 0 {
			b.WriteString("\n")
		}
		if mv.Current {
			b.WriteString(currentStyle.Render("> " + mv.Label))
			continue
		}
		b.WriteString("  " + mv.Label)
	}
	return b.String()
}
