package ui

import (
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/lipgloss"
)

const helpText = `# DCLinabox

Keys go straight to the remote process. With no connection, **Esc**
connects.

| Key | Action |
|-----|--------|
| ctrl+] | local menu |
| ctrl+] c | connect, or disconnect after confirming |
| ctrl+] a | open another instance |
| ctrl+] s | choose a terminal size |
| ctrl+] p | print the screen to the print file |
| ctrl+] q | quit |

The status bar buttons can also be clicked. The size selector filters
as you type and hides itself after a while.
`

// renderHelp renders the help overlay with glamour, falling back to the
// raw markdown.
func renderHelp(width int) string {
	const glamourGutter = 2
	wrap := width - glamourGutter
	if wrap < 10 {
		wrap = 10
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithStyles(vitesseGlamour()),
		glamour.WithWordWrap(wrap),
	)
	if err != nil {
		return helpText
	}
	out, err := r.Render(helpText)
	if err != nil {
		return helpText
	}
	return strings.Trim(out, "\n")
}

// vitesseGlamour returns a glamour style config matching the overlay theme.
func vitesseGlamour() ansi.StyleConfig {
	// lipgloss.Color -> hex without alpha
	hex := func(c lipgloss.Color) string {
		s := string(c)
		if strings.HasPrefix(s, "#") && len(s) == 9 {
			return s[:7]
		}
		return s
	}
	sp := func(s string) *string { return &s }
	bp := func(b bool) *bool { return &b }

	text := hex(Vitesse.Text)
	secondary := hex(Vitesse.Secondary)
	blue := hex(Vitesse.Blue)
	yellow := hex(Vitesse.Yellow)
	bgSoft := hex(Vitesse.BgSoft)

	return ansi.StyleConfig{
		Document:  ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Color: sp(text)}},
		Paragraph: ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Color: sp(text)}},
		Heading:   ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Color: sp(blue), Bold: bp(true)}},
		H1:        ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Color: sp(blue), Bold: bp(true)}},
		Text:      ansi.StylePrimitive{Color: sp(text)},
		Emph:      ansi.StylePrimitive{Italic: bp(true)},
		Strong:    ansi.StylePrimitive{Bold: bp(true), Color: sp(yellow)},
		Code: ansi.StyleBlock{
			StylePrimitive: ansi.StylePrimitive{Color: sp(yellow), BackgroundColor: sp(bgSoft)},
		},
		Table: ansi.StyleTable{
			StyleBlock:      ansi.StyleBlock{StylePrimitive: ansi.StylePrimitive{Color: sp(text)}},
			CenterSeparator: sp("│"),
			ColumnSeparator: sp("│"),
			RowSeparator:    sp("─"),
		},
		HorizontalRule: ansi.StylePrimitive{Color: sp(secondary)},
	}
}
