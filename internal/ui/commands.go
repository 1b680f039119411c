package ui

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"dclinabox/internal/session"
	"dclinabox/internal/term"
	"dclinabox/internal/window"
)

const flashDuration = 120 * time.Millisecond

// Commands

// waitEventCmd blocks for the next transport event. Only one is ever
// outstanding, so events reach the session in order.
func waitEventCmd(ch <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		return eventMsg{ev: <-ch}
	}
}

func waitResponseCmd(ch <-chan string) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		data, ok := <-ch
		return responseMsg{data: data, ok: ok}
	}
}

func undingCmd() tea.Cmd {
	return tea.Tick(term.BellDuration, func(time.Time) tea.Msg { return undingMsg{} })
}

func flashOffCmd() tea.Cmd {
	return tea.Tick(flashDuration, func(time.Time) tea.Msg { return flashOffMsg{} })
}

func selectorIdleCmd(gen int) tea.Cmd {
	return tea.Tick(term.SelectorIdle, func(time.Time) tea.Msg { return selectorIdleMsg{gen: gen} })
}

func settleCmd(gen int) tea.Cmd {
	return tea.Tick(window.Debounce, func(time.Time) tea.Msg { return settleMsg{gen: gen} })
}

func launchCmd(l *window.Launcher) tea.Cmd {
	return func() tea.Msg {
		_, err := l.Open("")
		return launchedMsg{err: err}
	}
}
