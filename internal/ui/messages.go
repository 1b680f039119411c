package ui

import "dclinabox/internal/session"

// Bubble Tea messages

// eventMsg carries one transport event to the loop.
type eventMsg struct{ ev session.Event }

// responseMsg is emulator output for the peer; ok is false once the
// emulator has shut down.
type responseMsg struct {
	data string
	ok   bool
}

// bell indicator expiry
type undingMsg struct{}

// visual bell end
type flashOffMsg struct{}

// size selector idle timeout for a generation
type selectorIdleMsg struct{ gen int }

// popup convergence after window-size events settle
type settleMsg struct{ gen int }

// launch result of another instance
type launchedMsg struct{ err error }
