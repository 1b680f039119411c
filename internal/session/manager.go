// Package session owns the WebSocket connection of one terminal instance:
// connect, send, inbound dispatch, close and status classification.
//
// A Manager is not safe for concurrent use. Transports post Events to the
// channel returned by Events; the owner's event loop hands each one to
// Handle, so every state change happens on that loop.
package session

import (
	"errors"
	"fmt"
	"time"

	clog "github.com/charmbracelet/log"

	"dclinabox/internal/config"
	"dclinabox/internal/escape"
	"dclinabox/internal/geom"
	"dclinabox/internal/params"
	"dclinabox/internal/system"
	"dclinabox/internal/version"
	"dclinabox/internal/window"
)

// EscKey alone connects a disconnected terminal.
const EscKey = "\x1b"

// UnknownEscapeMsg is alerted for a marked frame with an unknown opcode.
const UnknownEscapeMsg = "Unknown DCLinabox escape!"

// ErrUnsupported reports a transport without the required capabilities.
var ErrUnsupported = errors.New("websocket not supported")

// EventKind distinguishes transport events.
type EventKind int

const (
	EventOpen EventKind = iota
	EventMessage
	EventClose
)

// Event is posted by a Transport.
type Event struct {
	Kind      EventKind
	Data      string // EventMessage
	Code      int    // EventClose
	Reason    string // EventClose
	Transport Transport
}

// Transport is one live connection.
type Transport interface {
	Send(data string) error
	Close() error
	// Capable reports whether the transport supports what the session
	// needs (whole text messages with close codes).
	Capable() bool
}

// Dialer constructs transports. Open must return without waiting for the
// handshake; the outcome arrives as EventOpen or EventClose on events.
type Dialer interface {
	Open(url string, events chan<- Event) (Transport, error)
}

// Host is the presentation side a Manager drives.
type Host interface {
	// Feed passes ordinary terminal output to the emulator.
	Feed(data string)
	// Alert shows msg and blocks further event delivery until dismissed.
	Alert(msg string)
	// Status refreshes the status bar; msg may be empty.
	Status(msg string)
	// Title applies a window title.
	Title(title string)
	// Resize applies a geometry requested by the peer.
	Resize(g geom.Geometry)
	// CloseWindow closes the terminal instance.
	CloseWindow()
	// Opened and Closed bracket a live connection.
	Opened()
	Closed()
}

// Manager is the session state machine.
type Manager struct {
	res    *params.Resolver
	cfg    *config.Settings
	dialer Dialer
	host   Host
	events chan Event
	log    *clog.Logger

	// Now is used for close timestamps.
	Now func() time.Time

	status      Status
	tr          Transport
	compatAlert bool
	unloadArmed bool
}

// New returns a Manager in the Unconnected state.
func New(res *params.Resolver, cfg *config.Settings, dialer Dialer, host Host) *Manager {
	return &Manager{
		res:         res,
		cfg:         cfg,
		dialer:      dialer,
		host:        host,
		events:      make(chan Event, 64),
		log:         system.Logger.With("component", "session"),
		Now:         time.Now,
		compatAlert: true,
	}
}

// Events is the channel transports post to.
func (m *Manager) Events() <-chan Event { return m.events }

// Status returns the current connection status.
func (m *Manager) Status() Status { return m.status }

// Live reports whether a transport exists.
func (m *Manager) Live() bool { return m.tr != nil }

// CompatibilityAlert reports whether the one-time incompatibility warning
// is still pending.
func (m *Manager) CompatibilityAlert() bool { return m.compatAlert }

// Connect starts a connection attempt. It is a no-op while a transport is
// live.
func (m *Manager) Connect() error {
	if m.tr != nil {
		return nil
	}
	m.cfg.Host = config.ResolveHost(m.res, m.cfg.Origin)
	m.host.Title(m.titleFor(m.cfg.Title))

	page, err := config.ParseOrigin(m.cfg.Origin)
	if err != nil {
		m.host.Alert(err.Error())
		return err
	}
	url, err := BuildURL(Endpoint{
		Host:         m.cfg.Host,
		ScriptName:   m.cfg.ScriptName,
		SecureAlways: m.cfg.SecureAlways,
		Page:         page,
	})
	if err != nil {
		m.host.Alert(err.Error())
		return err
	}

	m.status = Connecting
	m.log.Info("connecting", "url", url)
	tr, err := m.dialer.Open(url, m.events)
	if err != nil {
		m.status = Unconnected
		m.log.Error("open transport", "url", url, "err", err)
		m.host.Alert(err.Error())
		m.host.Status("")
		return fmt.Errorf("open %s: %w", url, err)
	}
	if !tr.Capable() {
		_ = tr.Close()
		m.status = Unconnected
		m.host.Status(m.cfg.Messages.Get(config.MsgNotSupported))
		return ErrUnsupported
	}
	m.tr = tr
	m.host.Status("")
	return nil
}

// Keys forwards keystrokes or emulator responses. With no transport, a
// lone ESC starts a connection and anything else is dropped.
func (m *Manager) Keys(data string) {
	if m.tr == nil {
		if data == EscKey {
			_ = m.Connect()
		}
		return
	}
	m.send(data)
}

// Respond echoes an emulator response to the peer.
func (m *Manager) Respond(data string) {
	if m.tr != nil && data != "" {
		m.send(data)
	}
}

// SendSize asks the peer to switch to g.
func (m *Manager) SendSize(g geom.Geometry) {
	if m.tr != nil {
		m.send(escape.Encode(escape.SizeFrame(g)))
	}
}

func (m *Manager) send(data string) {
	if !m.status.Open() {
		return
	}
	if err := m.tr.Send(data); err != nil {
		m.log.Warn("send", "err", err)
	}
}

// DisconnectPrompt is the confirmation text to show before Disconnect.
func (m *Manager) DisconnectPrompt() string {
	return m.cfg.Messages.Get(config.MsgDisconnectOK)
}

// Disconnect ends the session on the user's (confirmed) request.
func (m *Manager) Disconnect() {
	if m.tr == nil {
		return
	}
	m.status = UserDisconnected
	m.closeTransport()
}

// Unload closes the transport when the instance goes away. Armed once a
// connection opens; a session already ending is left to finish.
func (m *Manager) Unload() {
	if m.unloadArmed && m.tr != nil && !m.status.Ended() {
		_ = m.tr.Close()
	}
}

func (m *Manager) closeTransport() {
	if err := m.tr.Close(); err != nil {
		m.log.Warn("close transport", "err", err)
	}
}

// Handle applies one transport event. Events from a transport other than
// the live one are ignored.
func (m *Manager) Handle(ev Event) {
	if m.tr == nil || ev.Transport != m.tr {
		m.log.Debug("stale transport event", "kind", ev.Kind)
		return
	}
	switch ev.Kind {
	case EventOpen:
		m.opened()
	case EventMessage:
		m.message(ev.Data)
	case EventClose:
		m.closed(ev.Code, ev.Reason)
	}
}

func (m *Manager) opened() {
	m.status = Connected
	// instances opened from this one connect straight away
	m.cfg.Immediate = true
	m.res.Local.Set(config.OptImmediate, true)
	m.unloadArmed = true
	m.log.Info("connected")
	m.host.Opened()
	m.host.Status("")
}

func (m *Manager) message(data string) {
	f, ok, err := escape.Decode(data)
	if !ok {
		if m.compatAlert {
			m.compatAlert = false
			m.host.Alert(m.cfg.Messages.Get(config.MsgCompat))
		}
		m.bump()
		m.host.Feed(data)
		return
	}
	if err != nil {
		m.log.Warn("sideband", "err", err)
		m.host.Alert(UnknownEscapeMsg)
		return
	}
	m.log.Debug("sideband", "op", f.Op, "payload", f.Payload)
	switch f.Op {
	case escape.Logout:
		m.status = LoggedOut
		if m.cfg.Another && m.cfg.LogoutClose {
			m.host.CloseWindow()
		}
		m.closeTransport()
	case escape.Terminate:
		m.status = Terminated
		m.closeTransport()
	case escape.Alert:
		m.bump()
		m.host.Alert(f.Payload)
	case escape.Size:
		m.bump()
		g, err := f.Geometry()
		if err != nil {
			m.log.Debug("ignoring terminal-size", "err", err)
			return
		}
		m.host.Resize(g)
	case escape.Title:
		m.bump()
		if m.cfg.Title == "" {
			m.host.Title(m.titleFor(f.Payload))
		}
	case escape.Version:
		m.bump()
		if version.IsCompatible(f.Payload) {
			m.compatAlert = false
		}
	}
}

func (m *Manager) bump() {
	if m.status.Open() {
		m.status++
	}
}

func (m *Manager) closed(code int, reason string) {
	var why string
	if code != 0 {
		why = fmt.Sprintf(" (%d", code)
		if reason != "" {
			why += " " + reason
		}
		why += ")"
	}
	at := " " + m.Now().Format("Mon Jan 02 2006 15:04:05")
	msgs := m.cfg.Messages
	var msg string
	switch s := m.status; {
	case s == Terminated:
		msg = msgs.Get(config.MsgTerminated) + at
	case s == LoggedOut:
		msg = msgs.Get(config.MsgLogout) + at
	case s == UserDisconnected:
		msg = msgs.Get(config.MsgDisconnected) + at
	case s == Unconnected:
		msg = "?"
	case s == Connecting:
		msg = msgs.Get(config.MsgFailed) + why
	case s == Connected:
		msg = msgs.Get(config.MsgNoResponse) + why
	default:
		msg = msgs.Get(config.MsgBroken) + at + why
	}
	m.log.Info("closed", "status", m.status, "code", code, "reason", reason)
	m.status = Unconnected
	m.tr = nil
	m.unloadArmed = false
	m.host.Closed()
	m.host.Status(msg)
}

// titleFor substitutes the default title for an empty or '?'-prefixed one.
func (m *Manager) titleFor(title string) string {
	return window.Title(title, m.cfg.Host)
}
