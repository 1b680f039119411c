// Package ui is the event loop of a terminal instance: a Bubble Tea
// program that forwards keys to the session, pulls transport events one
// at a time and draws the emulator above the status bar.
package ui

import (
	"io"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	clog "github.com/charmbracelet/log"

	"dclinabox/internal/config"
	"dclinabox/internal/geom"
	"dclinabox/internal/params"
	"dclinabox/internal/session"
	"dclinabox/internal/system"
	"dclinabox/internal/term"
	"dclinabox/internal/window"
)

// Options wire a Model.
type Options struct {
	Settings *config.Settings
	Resolver *params.Resolver
	Dialer   session.Dialer
	Mode     window.Mode
	Metrics  term.Metrics
	// Popup fits a standalone window; Embed fits a parent frame.
	Popup *window.Popup
	Embed *window.Embed
	// Launcher opens another instance; nil hides the control.
	Launcher *window.Launcher
	// Emulator defaults to an x/vt emulator.
	Emulator term.Emulator
	// Bell receives BEL for an audible bell; nil discards it.
	Bell io.Writer
	Now  func() time.Time
}

type modalKind int

const (
	modalAlert modalKind = iota
	modalConfirm
	modalMenu
	modalHelp
)

// modal is an overlay. Blocking modals suspend transport event delivery
// until dismissed.
type modal struct {
	kind     modalKind
	text     string
	blocking bool
	yes      bool
	onYes    func() tea.Cmd
}

// Model is the Bubble Tea model of one terminal instance. It implements
// session.Host; the session calls back into it from within Update.
type Model struct {
	opts Options
	cfg  *config.Settings
	mgr  *session.Manager
	ctl  *term.Controller
	emu  term.Emulator
	log  *clog.Logger

	width, height int
	title         string

	modals   []*modal
	pulling  bool
	pending  []tea.Cmd
	flash    bool
	quitting bool

	keys keyMap
	help help.Model
	spin spinner.Model
}

// New builds the model, its session and its presentation controller.
func New(o Options) *Model {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Resolver == nil {
		o.Resolver = params.New(nil, nil, params.NewScope(nil))
	}
	if o.Settings == nil {
		s := config.Resolve(o.Resolver)
		o.Settings = &s
	}
	m := &Model{
		opts: o,
		cfg:  o.Settings,
		log:  system.Logger.With("component", "ui"),
		keys: defaultKeys(),
		help: help.New(),
		spin: spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
	m.emu = o.Emulator
	if m.emu == nil {
		m.emu = term.NewVT(o.Settings.Geometry, m.ring)
	}
	m.emu.SetVisualBell(o.Settings.VisualBell)

	var fit term.Fitter
	switch {
	case o.Mode == window.Standalone && o.Popup != nil:
		fit = o.Popup
	case o.Mode == window.Embedded && o.Embed != nil:
		fit = o.Embed
	}
	m.ctl = term.NewController(term.Options{
		Geometry:       o.Settings.Geometry,
		Metrics:        o.Metrics,
		Scroll:         o.Settings.Scroll,
		ResizeOptions:  o.Settings.ResizeOptions,
		Another:        o.Settings.Another && o.Launcher != nil,
		ResizeEmbedded: o.Settings.ResizeEmbedded,
		Messages:       o.Settings.Messages,
		PrintFile:      o.Settings.PrintFile,
	}, m.emu, fit)
	m.mgr = session.New(o.Resolver, o.Settings, o.Dialer, m)
	m.mgr.Now = o.Now
	return m
}

// Session returns the session manager.
func (m *Model) Session() *session.Manager { return m.mgr }

// Controller returns the presentation controller.
func (m *Model) Controller() *term.Controller { return m.ctl }

func (m *Model) Init() tea.Cmd {
	m.ctl.Init()
	m.title = window.Title(m.cfg.Title, m.cfg.Host)
	cmds := []tea.Cmd{tea.SetWindowTitle(m.title), waitResponseCmd(m.emu.Responses())}
	if m.cfg.Immediate {
		m.connect()
	}
	cmds = append(cmds, m.flush(), m.resume())
	return tea.Batch(cmds...)
}

// connect resets the screen and starts a connection attempt.
func (m *Model) connect() {
	if m.mgr.Live() {
		return
	}
	m.ctl.Reset()
	if err := m.mgr.Connect(); err != nil {
		m.log.Warn("connect", "err", err)
		return
	}
	m.pending = append(m.pending, m.spin.Tick)
}

// ring handles BEL from the emulator.
func (m *Model) ring() {
	if m.ctl != nil && m.ctl.Ding() {
		m.pending = append(m.pending, undingCmd())
	}
	if m.emu != nil && m.emu.VisualBell() {
		m.flash = true
		m.pending = append(m.pending, flashOffCmd())
		return
	}
	if m.opts.Bell != nil {
		_, _ = io.WriteString(m.opts.Bell, "\a")
	}
}

// flush returns the commands queued by session callbacks.
func (m *Model) flush() tea.Cmd {
	if len(m.pending) == 0 {
		return nil
	}
	cmds := m.pending
	m.pending = nil
	return tea.Batch(cmds...)
}

// resume re-arms the event pull unless one is outstanding or a blocking
// modal is up.
func (m *Model) resume() tea.Cmd {
	if m.pulling || m.quitting || m.blocked() {
		return nil
	}
	m.pulling = true
	return waitEventCmd(m.mgr.Events())
}

func (m *Model) blocked() bool {
	for _, md := range m.modals {
		if md.blocking {
			return true
		}
	}
	return false
}

func (m *Model) top() *modal {
	if len(m.modals) == 0 {
		return nil
	}
	return m.modals[len(m.modals)-1]
}

func (m *Model) push(md *modal) { m.modals = append(m.modals, md) }

func (m *Model) pop() {
	if len(m.modals) > 0 {
		m.modals = m.modals[:len(m.modals)-1]
	}
}

// quit closes the session and ends the program.
func (m *Model) quit() tea.Cmd {
	if m.quitting {
		return nil
	}
	m.quitting = true
	m.mgr.Unload()
	if err := m.emu.Close(); err != nil {
		m.log.Debug("emulator close", "err", err)
	}
	return tea.Quit
}

// session.Host

func (m *Model) Feed(data string) { m.emu.Feed(data) }

func (m *Model) Alert(msg string) {
	m.push(&modal{kind: modalAlert, text: msg, blocking: true})
}

func (m *Model) Status(msg string) { m.ctl.SetMessage(msg) }

func (m *Model) Title(title string) {
	m.title = title
	m.pending = append(m.pending, tea.SetWindowTitle(title))
}

func (m *Model) Resize(g geom.Geometry) { m.ctl.Resize(g) }

func (m *Model) CloseWindow() { m.pending = append(m.pending, m.quit()) }

func (m *Model) Opened() { m.emu.Focus() }

func (m *Model) Closed() { m.ctl.CloseSelector() }
