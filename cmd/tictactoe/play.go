package main

import (
	"fmt"

	"ctchen222/tictactoe-history/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

func runPlay(cmd *cobra.Command, _ []string) error {
	p := tea.NewProgram(tui.NewModel(), tea.WithContext(cmd.Context()))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run terminal game: %w", err)
	}
	return nil
}
