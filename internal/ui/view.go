package ui

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
	zone "github.com/lrstanley/bubblezone"
	"github.com/mattn/go-runewidth"

	"dclinabox/internal/session"
	"dclinabox/internal/term"
)

func (m *Model) View() string {
	if m.quitting {
		return ""
	}
	g := m.ctl.Geometry()
	width := g.Cols + m.ctl.Metrics().ScrollWidth/max(1, m.ctl.Metrics().CellWidth)
	lines := m.screenLines(g.Rows)

	if s := m.ctl.Selector(); s != nil {
		box := strings.Split(term.RenderSelector(s, g.Rows-2), "\n")
		lines = overlay(lines, box, g.Rows-len(box), width-lipgloss.Width(box[0]))
	}
	if md := m.top(); md != nil {
		box := strings.Split(m.renderModal(md, width), "\n")
		lines = overlay(lines, box, (g.Rows-len(box))/2, (width-lipgloss.Width(box[0]))/2)
	}

	bar := term.RenderBar(m.ctl.Bar(m.mgr.Live()), width, zone.Mark)
	if m.mgr.Status() == session.Connecting {
		bar = xansi.Truncate(m.spin.View()+" "+bar, width, "")
	}
	return zone.Scan(strings.Join(lines, "\n") + "\n" + bar)
}

// screenLines returns exactly rows lines of emulator output with the
// cursor drawn in.
func (m *Model) screenLines(rows int) []string {
	var out string
	if m.flash {
		out = lipgloss.NewStyle().Reverse(true).Render(m.emu.Text())
	} else {
		out = stripOSC(m.emu.Render())
	}
	out = strings.ReplaceAll(out, "\r\n", "\n")
	lines := strings.Split(out, "\n")
	if len(lines) > rows {
		lines = lines[:rows]
	}
	for len(lines) < rows {
		lines = append(lines, "")
	}
	if m.top() == nil && m.ctl.Selector() == nil {
		cx, cy := m.emu.Cursor()
		if cy >= 0 && cy < rows {
			lines[cy] = overlayCursorOnAnsiLine(lines[cy], cx)
		}
	}
	return lines
}

func (m *Model) renderModal(md *modal, width int) string {
	inner := width - 8
	if inner < 20 {
		inner = 20
	}
	st := boxStyle()
	switch md.kind {
	case modalConfirm:
		buttons := Button("OK", md.yes) + " " + Button("Cancel", !md.yes)
		return st.Render(lipgloss.NewStyle().Width(inner).Render(md.text) + "\n\n" + buttons)
	case modalMenu:
		m.help.Width = inner
		title := lipgloss.NewStyle().Bold(true).Foreground(Vitesse.Primary).Render("DCLinabox")
		return st.Render(title + "\n\n" + m.help.View(m.keys))
	case modalHelp:
		return st.Render(renderHelp(inner))
	default:
		return st.Render(lipgloss.NewStyle().Width(inner).Render(md.text) + "\n\n" + Button("OK", true))
	}
}

// overlay draws box over base starting at row, col.
func overlay(base, box []string, row, col int) []string {
	if row < 0 {
		row = 0
	}
	if col < 0 {
		col = 0
	}
	out := append([]string(nil), base...)
	for i, b := range box {
		r := row + i
		if r >= len(out) {
			break
		}
		line := out[r]
		left := xansi.Truncate(line, col, "")
		if w := xansi.StringWidth(left); w < col {
			left += strings.Repeat(" ", col-w)
		}
		right := xansi.TruncateLeft(line, col+xansi.StringWidth(b), "")
		out[r] = left + "\x1b[0m" + b + "\x1b[0m" + right
	}
	return out
}

// overlayCursorOnAnsiLine returns the line with an inverse-video cursor at
// the given column. It preserves existing ANSI SGR sequences and counts
// display width across runes. Past the end it pads with spaces.
func overlayCursorOnAnsiLine(line string, col int) string {
	if col < 0 {
		col = 0
	}
	var b strings.Builder
	b.Grow(len(line) + 16)
	visible := 0
	i := 0
	for i < len(line) {
		if line[i] == 0x1b {
			j := i + 1
			if j < len(line) && (line[j] == '[' || line[j] == ']' || line[j] == '(' || line[j] == ')' || line[j] == 'P') {
				j++
				for j < len(line) {
					ch := line[j]
					// OSC ends with BEL or ST
					if line[i+1] == ']' {
						if ch == 0x07 {
							j++
							break
						}
						if ch == '\\' && line[j-1] == 0x1b {
							j++
							break
						}
						j++
						continue
					}
					// final byte in 0x40..0x7E
					if ch >= 0x40 && ch <= 0x7e {
						j++
						break
					}
					j++
				}
			}
			b.WriteString(line[i:j])
			i = j
			continue
		}
		r, sz := utf8.DecodeRuneInString(line[i:])
		w := 1
		if !(r == utf8.RuneError && sz == 1) {
			if w = runewidth.RuneWidth(r); w <= 0 {
				w = 1
			}
		}
		if visible == col {
			b.WriteString("\x1b[7m")
			b.WriteString(line[i : i+sz])
			b.WriteString("\x1b[27m")
		} else {
			b.WriteString(line[i : i+sz])
		}
		visible += w
		i += sz
	}
	if col >= visible {
		if pad := col - visible; pad > 0 {
			b.WriteString(strings.Repeat(" ", pad))
		}
		b.WriteString("\x1b[7m \x1b[27m")
	}
	return b.String()
}

// stripOSC removes OSC sequences (ESC ] ... BEL or ESC \) so the peer
// cannot retitle or recolor the host terminal behind our back.
func stripOSC(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	i := 0
	for i < len(s) {
		if s[i] == 0x1b && i+1 < len(s) && s[i+1] == ']' {
			j := i + 2
			for j < len(s) {
				if s[j] == 0x07 {
					j++
					break
				}
				if s[j] == '\\' && s[j-1] == 0x1b {
					j++
					break
				}
				j++
			}
			i = j
			continue
		}
		b.WriteByte(s[i])
		i++
	}
	return b.String()
}
