package term

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// BellGlyph is drawn once per active bell indicator.
const BellGlyph = "⍾"

// Palette is the status bar color scheme.
var Palette = struct {
	BarFG, BarBG     lipgloss.AdaptiveColor
	Button, OnButton lipgloss.Color
	Message          lipgloss.Color
	Bell             lipgloss.Color
	Vanity           lipgloss.Color
	Dim              lipgloss.Color
}{
	BarFG:    lipgloss.AdaptiveColor{Light: "#343433", Dark: "#bfbaaa"},
	BarBG:    lipgloss.AdaptiveColor{Light: "#D9DCCF", Dark: "#222"},
	Button:   lipgloss.Color("#4d9375"),
	OnButton: lipgloss.Color("#222"),
	Message:  lipgloss.Color("#e6cc77"),
	Bell:     lipgloss.Color("#cb7676"),
	Vanity:   lipgloss.Color("#6394bf"),
	Dim:      lipgloss.Color("#dedcd590"),
}

// Mark wraps a rendered button so clicks on it can be located.
type Mark func(id, s string) string

// RenderBar draws b into one line of the given width. Items on the left are
// dropped from the message backwards when space runs out; the vanity label
// stays on the right.
func RenderBar(b Bar, width int, mark Mark) string {
	if width <= 0 {
		width = 80
	}
	if mark == nil {
		mark = func(_, s string) string { return s }
	}
	base := lipgloss.NewStyle().Foreground(Palette.BarFG).Background(Palette.BarBG)
	btn := lipgloss.NewStyle().Bold(true).Foreground(Palette.OnButton).Background(Palette.Button).Padding(0, 1).MarginRight(1)

	var left []string
	for _, bt := range b.Buttons {
		left = append(left, mark(bt.ID, btn.Render(bt.Label)))
	}
	if b.Message != "" {
		msg := strings.ReplaceAll(b.Message, "\n", " ")
		left = append(left, base.Foreground(Palette.Message).Render(msg))
	}
	if b.Bells > 0 {
		left = append(left, base.Foreground(Palette.Bell).Render(" "+strings.Repeat(BellGlyph, b.Bells)))
	}
	right := base.Foreground(Palette.Vanity).Bold(true).Render(b.Vanity) +
		base.Foreground(Palette.Dim).Render(" "+b.Version+" ")

	leftStr := strings.Join(left, "")
	rw := xansi.StringWidth(right)
	if lw := xansi.StringWidth(leftStr); lw+rw > width {
		avail := width - rw
		if avail < 0 {
			avail = 0
		}
		leftStr = xansi.Truncate(leftStr, avail, "…")
	}
	gap := width - xansi.StringWidth(leftStr) - rw
	if gap < 0 {
		gap = 0
	}
	return base.Width(width).Render(leftStr + base.Render(strings.Repeat(" ", gap)) + right)
}

// RenderSelector draws the size dropdown as a bordered list.
func RenderSelector(s *Selector, maxRows int) string {
	if s == nil {
		return ""
	}
	item := lipgloss.NewStyle().Padding(0, 1)
	hl := item.Foreground(Palette.OnButton).Background(Palette.Button)
	opts := s.Options()
	start := 0
	if maxRows > 0 && len(opts) > maxRows {
		start = s.Cursor() - maxRows/2
		if start < 0 {
			start = 0
		}
		if start+maxRows > len(opts) {
			start = len(opts) - maxRows
		}
		opts = opts[start : start+maxRows]
	}
	lines := make([]string, 0, len(opts)+1)
	if q := s.Query(); q != "" {
		lines = append(lines, item.Foreground(Palette.Message).Render("/"+q))
	}
	for i, o := range opts {
		if start+i == s.Cursor() {
			lines = append(lines, hl.Render(o))
			continue
		}
		lines = append(lines, item.Render(o))
	}
	if len(opts) == 0 {
		lines = append(lines, item.Foreground(Palette.Dim).Render("no match"))
	}
	return lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(Palette.Button).
		Render(strings.Join(lines, "\n"))
}
