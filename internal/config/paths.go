package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// Dir returns the dclinabox config directory under the user config base.
// On Linux, this typically resolves to $XDG_CONFIG_HOME/dclinabox; on macOS
// to ~/Library/Application Support/dclinabox; and on Windows to %AppData%/dclinabox.
// Falls back to HOME when UserConfigDir is unavailable.
func Dir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil || strings.TrimSpace(base) == "" {
		if home, herr := os.UserHomeDir(); herr == nil {
			base = home
		} else {
			return "", errors.New("cannot determine config directory")
		}
	}
	return filepath.Join(base, "dclinabox"), nil
}

// DotDir returns ~/.dclinabox, where the local configuration file, the log
// and opener files live.
func DotDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil || strings.TrimSpace(home) == "" {
		return Dir()
	}
	return filepath.Join(home, ".dclinabox"), nil
}

// File returns the default local configuration file path.
func File() (string, error) {
	dir, err := DotDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// LogFile returns the log file used while the terminal UI is running.
func LogFile() (string, error) {
	dir, err := DotDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "dclinabox.log"), nil
}

// OpenerDir returns the directory holding opener files written for
// instances spawned by a launcher.
func OpenerDir() (string, error) {
	dir, err := DotDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "openers"), nil
}
