package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	zone "github.com/lrstanley/bubblezone"

	"dclinabox/internal/config"
	"dclinabox/internal/session"
	"dclinabox/internal/term"
	"dclinabox/internal/window"
)

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch msg := msg.(type) {
	case eventMsg:
		m.pulling = false
		m.mgr.Handle(msg.ev)
	case responseMsg:
		if !msg.ok {
			return m, m.flush()
		}
		m.mgr.Respond(msg.data)
		cmd = waitResponseCmd(m.emu.Responses())
	case tea.KeyMsg:
		cmd = m.handleKey(msg)
	case tea.MouseMsg:
		if msg.Action == tea.MouseActionRelease && msg.Button == tea.MouseButtonLeft {
			cmd = m.handleClick(msg)
		}
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		if m.opts.Mode == window.Standalone && m.opts.Popup != nil {
			gen := m.opts.Popup.Observe(window.Size{Cols: msg.Width, Rows: msg.Height})
			cmd = settleCmd(gen)
		}
	case settleMsg:
		if m.opts.Popup != nil {
			m.opts.Popup.Settle(msg.gen)
		}
	case undingMsg:
		m.ctl.Undings()
	case flashOffMsg:
		m.flash = false
	case selectorIdleMsg:
		m.ctl.HideSelector(msg.gen)
	case launchedMsg:
		if msg.err != nil {
			m.log.Error("open another instance", "err", msg.err)
			m.Alert(msg.err.Error())
		}
	case spinner.TickMsg:
		if m.mgr.Status() == session.Connecting {
			m.spin, cmd = m.spin.Update(msg)
		}
	}
	return m, tea.Batch(cmd, m.flush(), m.resume())
}

func (m *Model) handleKey(k tea.KeyMsg) tea.Cmd {
	if md := m.top(); md != nil {
		return m.modalKey(md, k)
	}
	if m.ctl.Selector() != nil {
		return m.selectorKey(k)
	}
	if key.Matches(k, m.keys.Menu) {
		m.push(&modal{kind: modalMenu})
		return nil
	}
	data := keyBytes(k)
	if data == "" {
		return nil
	}
	if data == session.EscKey && !m.mgr.Live() {
		m.connect()
		return nil
	}
	m.mgr.Keys(data)
	return nil
}

func (m *Model) modalKey(md *modal, k tea.KeyMsg) tea.Cmd {
	switch md.kind {
	case modalAlert:
		switch k.Type {
		case tea.KeyEnter, tea.KeyEsc, tea.KeySpace:
			m.pop()
		}
	case modalConfirm:
		switch k.String() {
		case "left", "right", "tab", "shift+tab":
			md.yes = !md.yes
		case "y":
			m.pop()
			return md.onYes()
		case "n", "esc":
			m.pop()
		case "enter":
			m.pop()
			if md.yes {
				return md.onYes()
			}
		}
	case modalHelp:
		switch k.String() {
		case "esc", "q", "enter", "ctrl+]":
			m.pop()
		}
	case modalMenu:
		m.pop()
		switch {
		case key.Matches(k, m.keys.Toggle):
			return m.toggle()
		case key.Matches(k, m.keys.Another):
			return m.another()
		case key.Matches(k, m.keys.Size):
			return m.openSelector()
		case key.Matches(k, m.keys.Print):
			m.print()
		case key.Matches(k, m.keys.Help):
			m.push(&modal{kind: modalHelp})
		case key.Matches(k, m.keys.Quit):
			return m.quit()
		}
	}
	return nil
}

func (m *Model) selectorKey(k tea.KeyMsg) tea.Cmd {
	s := m.ctl.Selector()
	switch k.Type {
	case tea.KeyEsc:
		m.ctl.CloseSelector()
		return nil
	case tea.KeyEnter:
		if g, ok := m.ctl.ChooseSize(); ok {
			m.mgr.SendSize(g)
		}
		return nil
	case tea.KeyUp:
		s.Move(-1)
	case tea.KeyDown:
		s.Move(1)
	case tea.KeyBackspace:
		s.Backspace()
	case tea.KeyRunes:
		for _, r := range k.Runes {
			s.Type(r)
		}
	default:
		return nil
	}
	return selectorIdleCmd(m.ctl.TouchSelector())
}

func (m *Model) handleClick(msg tea.MouseMsg) tea.Cmd {
	if m.top() != nil {
		return nil
	}
	switch {
	case zone.Get(term.BtnToggle).InBounds(msg):
		return m.toggle()
	case zone.Get(term.BtnAnother).InBounds(msg):
		return m.another()
	case zone.Get(term.BtnSize).InBounds(msg):
		if m.ctl.Selector() != nil {
			m.ctl.CloseSelector()
			return nil
		}
		return m.openSelector()
	case zone.Get(term.BtnPrint).InBounds(msg):
		m.print()
	}
	return nil
}

// toggle connects, or asks before disconnecting.
func (m *Model) toggle() tea.Cmd {
	if !m.mgr.Live() {
		m.connect()
		return nil
	}
	m.push(&modal{
		kind:     modalConfirm,
		text:     m.mgr.DisconnectPrompt(),
		blocking: true,
		onYes: func() tea.Cmd {
			m.mgr.Disconnect()
			return nil
		},
	})
	return nil
}

func (m *Model) another() tea.Cmd {
	if m.opts.Launcher == nil || !m.cfg.Another {
		return nil
	}
	return launchCmd(m.opts.Launcher)
}

func (m *Model) openSelector() tea.Cmd {
	gen, ok := m.ctl.OpenSelector(m.mgr.Status().Open())
	if !ok {
		return nil
	}
	return selectorIdleCmd(gen)
}

func (m *Model) print() {
	path, err := m.ctl.Print(m.opts.Now())
	if err != nil {
		m.log.Error("print", "err", err)
		m.Alert(err.Error())
		return
	}
	m.ctl.SetMessage(fmt.Sprintf("%s: %s", m.cfg.Messages.Get(config.MsgPrint), path))
}
