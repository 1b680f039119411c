package window

import (
	"strings"

	"dclinabox/internal/version"
)

// Title returns the window title to show. An empty title, or one starting
// with '?', names the host instead.
func Title(title, host string) string {
	if title == "" || strings.HasPrefix(title, "?") {
		return version.Product + ": " + host
	}
	return title
}
