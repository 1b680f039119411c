// Package window fits the terminal's surroundings to its geometry: the
// host terminal window of a standalone instance, or the tmux pane an
// embedded instance lives in. It also launches further standalone
// instances.
package window

import (
	"dclinabox/internal/config"
	"dclinabox/internal/params"
)

// Environment variables linking an instance to its opener or parent.
const (
	EnvOpener = "DCLINABOX_OPENER"
	EnvParent = "DCLINABOX_PARENT"
	EnvPane   = "TMUX_PANE"
)

// Mode is how an instance is hosted.
type Mode int

const (
	// Inline runs in whatever terminal started it; nothing is resized.
	Inline Mode = iota
	// Standalone was started by a launcher and owns its terminal window.
	Standalone
	// Embedded lives in a tmux pane its parent lets it resize.
	Embedded
)

func (m Mode) String() string {
	switch m {
	case Standalone:
		return "standalone"
	case Embedded:
		return "embedded"
	default:
		return "inline"
	}
}

// Detect picks the mode from the environment. An opener wins over a
// parent; a parent only counts when a pane is available to resize.
func Detect(getenv func(string) string) Mode {
	if getenv(EnvOpener) != "" {
		return Standalone
	}
	if getenv(EnvParent) != "" && getenv(EnvPane) != "" {
		return Embedded
	}
	return Inline
}

// Prime adjusts the local scope for the mode. A standalone instance
// connects immediately and may open further instances.
func Prime(m Mode, local *params.Scope) {
	if m != Standalone {
		return
	}
	local.Set(config.OptImmediate, true)
	local.Set(config.OptAnother, true)
}
