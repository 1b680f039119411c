package app

import (
	"context"
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"dclinabox/internal/ui"
)

// Start runs the terminal UI until it quits or ctx is cancelled.
func Start(ctx context.Context, o ui.Options) error {
	// Initialize global bubblezone manager for clickable status bar buttons.
	zone.NewGlobal()
	m := ui.New(o)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			m.Session().Unload()
			return nil
		}
		return err
	}
	return nil
}
