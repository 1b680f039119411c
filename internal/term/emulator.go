package term

import (
	"strings"
	"sync"

	"github.com/charmbracelet/x/vt"

	"dclinabox/internal/geom"
)

// Emulator is the terminal-emulation collaborator. It parses and renders
// terminal output; the controller only feeds it, resizes it and reads it
// back.
type Emulator interface {
	// Feed writes terminal output into the emulator.
	Feed(data string)
	// Reflow resizes the emulator's buffers to g.
	Reflow(g geom.Geometry)
	// Reset clears the screen and modes.
	Reset()
	// SetVisualBell selects a screen flash instead of an audible bell.
	SetVisualBell(on bool)
	VisualBell() bool
	// Focus marks the emulator as holding input focus.
	Focus()
	// Render returns the screen with styling.
	Render() string
	// Text returns the screen as plain text.
	Text() string
	// Cursor returns the cursor cell.
	Cursor() (x, y int)
	// Responses carries replies the emulator generates for the peer
	// (device attributes, cursor reports).
	Responses() <-chan string
	// Close stops the emulator and closes Responses.
	Close() error
}

// VT adapts a charmbracelet/x/vt emulator.
//
// The emulator writes replies into a synchronous pipe, so Feed only
// returns once they are read. pump reads them into an unbounded queue and
// forward hands them to Responses; a Feed never waits on the consumer.
type VT struct {
	emu     *vt.Emulator
	resp    chan string
	onBell  func()
	visual  bool
	focused bool

	mu    sync.Mutex
	queue []string
	eof   bool
	wake  chan struct{}
	done  chan struct{}
	once  sync.Once
}

// NewVT returns an emulator of size g. onBell runs on every BEL, on the
// goroutine calling Feed.
func NewVT(g geom.Geometry, onBell func()) *VT {
	v := &VT{
		emu:    vt.NewEmulator(g.Cols, g.Rows),
		resp:   make(chan string),
		onBell: onBell,
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
	}
	v.emu.SetCallbacks(vt.Callbacks{Bell: v.bell})
	go v.pump()
	go v.forward()
	return v
}

func (v *VT) bell() {
	if v.onBell != nil {
		v.onBell()
	}
}

func (v *VT) pump() {
	buf := make([]byte, 1024)
	for {
		n, err := v.emu.Read(buf)
		v.mu.Lock()
		if n > 0 {
			v.queue = append(v.queue, string(buf[:n]))
		}
		if err != nil {
			v.eof = true
		}
		v.mu.Unlock()
		select {
		case v.wake <- struct{}{}:
		default:
		}
		if err != nil {
			return
		}
	}
}

// forward delivers queued replies, batched per wakeup.
func (v *VT) forward() {
	defer close(v.resp)
	for {
		select {
		case <-v.wake:
		case <-v.done:
			return
		}
		v.mu.Lock()
		q, eof := v.queue, v.eof
		v.queue = nil
		v.mu.Unlock()
		if len(q) > 0 {
			select {
			case v.resp <- strings.Join(q, ""):
			case <-v.done:
				return
			}
		}
		if eof {
			return
		}
	}
}

func (v *VT) Feed(data string)         { _, _ = v.emu.Write([]byte(data)) }
func (v *VT) Reflow(g geom.Geometry)   { v.emu.Resize(g.Cols, g.Rows) }
func (v *VT) Reset()                   { v.Feed("\x1bc") }
func (v *VT) SetVisualBell(on bool)    { v.visual = on }
func (v *VT) VisualBell() bool         { return v.visual }
func (v *VT) Focus()                   { v.focused = true }
func (v *VT) Focused() bool            { return v.focused }
func (v *VT) Render() string           { return v.emu.Render() }
func (v *VT) Text() string             { return v.emu.String() }
func (v *VT) Responses() <-chan string { return v.resp }

func (v *VT) Cursor() (int, int) {
	pos := v.emu.CursorPosition()
	return pos.X, pos.Y
}

// Close stops the emulator. Replies not yet delivered are dropped.
func (v *VT) Close() error {
	v.once.Do(func() { close(v.done) })
	return v.emu.Close()
}
