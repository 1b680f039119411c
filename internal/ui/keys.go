package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// keyMap holds the local bindings. Everything else goes to the peer.
type keyMap struct {
	Menu    key.Binding
	Toggle  key.Binding
	Another key.Binding
	Size    key.Binding
	Print   key.Binding
	Help    key.Binding
	Quit    key.Binding
	Close   key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Menu:    key.NewBinding(key.WithKeys("ctrl+]"), key.WithHelp("ctrl+]", "local menu")),
		Toggle:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "connect/disconnect")),
		Another: key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "another")),
		Size:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "size")),
		Print:   key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "print")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		Close:   key.NewBinding(key.WithKeys("esc", "ctrl+]"), key.WithHelp("esc", "back")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Another, k.Size, k.Print, k.Help, k.Quit, k.Close}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Menu}, k.ShortHelp()}
}

// keyBytes encodes a key press the way a VT100-class terminal sends it.
func keyBytes(k tea.KeyMsg) string {
	var s string
	switch {
	case k.Type == tea.KeyRunes:
		s = string(k.Runes)
	case k.Type == tea.KeySpace:
		s = " "
	case k.Type >= 0 && k.Type <= 31, k.Type == tea.KeyBackspace:
		// control characters, including CR, HT, ESC and DEL
		s = string(rune(k.Type))
	default:
		s = namedKeys[k.Type]
	}
	if s != "" && k.Alt {
		s = "\x1b" + s
	}
	return s
}

var namedKeys = map[tea.KeyType]string{
	tea.KeyUp:       "\x1b[A",
	tea.KeyDown:     "\x1b[B",
	tea.KeyRight:    "\x1b[C",
	tea.KeyLeft:     "\x1b[D",
	tea.KeyShiftTab: "\x1b[Z",
	tea.KeyHome:     "\x1b[H",
	tea.KeyEnd:      "\x1b[F",
	tea.KeyInsert:   "\x1b[2~",
	tea.KeyDelete:   "\x1b[3~",
	tea.KeyPgUp:     "\x1b[5~",
	tea.KeyPgDown:   "\x1b[6~",
	tea.KeyF1:       "\x1bOP",
	tea.KeyF2:       "\x1bOQ",
	tea.KeyF3:       "\x1bOR",
	tea.KeyF4:       "\x1bOS",
	tea.KeyF5:       "\x1b[15~",
	tea.KeyF6:       "\x1b[17~",
	tea.KeyF7:       "\x1b[18~",
	tea.KeyF8:       "\x1b[19~",
	tea.KeyF9:       "\x1b[20~",
	tea.KeyF10:      "\x1b[21~",
	tea.KeyF11:      "\x1b[23~",
	tea.KeyF12:      "\x1b[24~",
}
