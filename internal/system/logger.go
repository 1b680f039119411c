package system

import (
	"io"
	"os"
	"path/filepath"

	clog "github.com/charmbracelet/log"
)

// Logger is the shared application logger.
// It prints to stderr with timestamps enabled; the terminal UI redirects it
// to a file while it owns the screen.
var Logger = clog.NewWithOptions(os.Stderr, clog.Options{
	ReportTimestamp: true,
	Prefix:          "dclinabox",
})

// LogToFile redirects Logger to path (appending) and returns a func that
// restores stderr output and closes the file.
func LogToFile(path string) (func(), error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, err
	}
	Logger.SetOutput(f)
	return func() {
		Logger.SetOutput(os.Stderr)
		_ = f.Close()
	}, nil
}

// SetVerbose switches Logger to debug level.
func SetVerbose(on bool) {
	if on {
		Logger.SetLevel(clog.DebugLevel)
		return
	}
	Logger.SetLevel(clog.InfoLevel)
}

// Discard silences Logger, for tests.
func Discard() { Logger.SetOutput(io.Discard) }
