package window

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"dclinabox/internal/config"
	"dclinabox/internal/geom"
	"dclinabox/internal/params"
	"dclinabox/internal/system"
)

// Cascade offsets for successive standalone instances.
const (
	cascadeStart = 999
	cascadeReset = 200
	cascadeLimit = 500
	cascadeStep  = 20
)

// Launcher opens standalone instances. Each one gets an opener file holding
// the launching scope, so it inherits its configuration, and a screen
// offset that cascades from the previous one.
type Launcher struct {
	// Command is the terminal emulator command line; {top} and {left}
	// are replaced by the offsets.
	Command string
	// Exe is the dclinabox binary the new terminal runs.
	Exe string
	// Dir receives opener files.
	Dir string
	// Scope is inherited by every instance.
	Scope *params.Scope
	// Host is the default host to connect to.
	Host string
	// WxH, when set, is the opening geometry for the next instance.
	WxH string
	// Start runs the prepared command; nil uses cmd.Start.
	Start func(cmd *exec.Cmd) error

	mu        sync.Mutex
	top, left int
	saved     string
	swapped   bool
	seq       int
}

// NewLauncher returns a launcher whose first instance opens at the reset
// offset.
func NewLauncher(command, exe, dir string, scope *params.Scope) *Launcher {
	if command == "" {
		command = config.DefaultTerminalCommand
	}
	if scope == nil {
		scope = params.NewScope(nil)
	}
	return &Launcher{
		Command: command,
		Exe:     exe,
		Dir:     dir,
		Scope:   scope,
		top:     cascadeStart,
		left:    cascadeStart,
	}
}

// Next advances and returns the cascade offset.
func (l *Launcher) Next() (top, left int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.next()
}

func (l *Launcher) next() (int, int) {
	l.top = cascade(l.top)
	l.left = cascade(l.left)
	return l.top, l.left
}

func cascade(v int) int {
	if v > cascadeLimit {
		return cascadeReset
	}
	return v + cascadeStep
}

// swapHost selects host for this launch. A named host replaces the default
// until a launch without one restores it.
func (l *Launcher) swapHost(host string) string {
	if host != "" {
		if !l.swapped {
			l.saved = l.Host
			l.swapped = true
		}
		l.Host = host
	} else if l.swapped {
		l.Host = l.saved
		l.saved = ""
		l.swapped = false
	}
	return l.Host
}

// Open starts a standalone instance connected to host, or the default host
// when host is empty.
func (l *Launcher) Open(host string) (*exec.Cmd, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	host = l.swapHost(host)
	top, left := l.next()

	vals := l.Scope.Snapshot()
	if host != "" {
		vals[config.OptHost] = host
	}
	if g, err := geom.Parse(l.WxH); err == nil {
		vals[config.OptWxH] = g.String()
		vals[config.OptWidth] = g.Cols
		vals[config.OptHeight] = g.Rows
	}
	l.seq++
	path := filepath.Join(l.Dir, fmt.Sprintf("opener-%d-%d.yaml", os.Getpid(), l.seq))
	if err := params.WriteFile(path, vals); err != nil {
		return nil, fmt.Errorf("write opener file: %w", err)
	}

	argv, err := l.argv(top, left)
	if err != nil {
		return nil, err
	}
	cmd := exec.Command(argv[0], argv[1:]...)
	cmd.Env = append(os.Environ(), EnvOpener+"="+path)
	start := l.Start
	if start == nil {
		start = (*exec.Cmd).Start
	}
	if err := start(cmd); err != nil {
		return nil, fmt.Errorf("start %s: %w", argv[0], err)
	}
	system.Logger.Info("opened instance", "host", host, "top", top, "left", left, "opener", path)
	return cmd, nil
}

func (l *Launcher) argv(top, left int) ([]string, error) {
	r := strings.NewReplacer("{top}", strconv.Itoa(top), "{left}", strconv.Itoa(left))
	argv := strings.Fields(r.Replace(l.Command))
	if len(argv) == 0 {
		return nil, fmt.Errorf("empty terminal command")
	}
	exe := l.Exe
	if exe == "" {
		exe = "dclinabox"
	}
	return append(argv, exe, "connect"), nil
}
