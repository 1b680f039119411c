package ui

import "github.com/charmbracelet/lipgloss"

// Design centralizes the TUI color palette and common styles.
//
// Palette is based on Vitesse Dark Soft:
// https://github.com/antfu/vscode-theme-vitesse/blob/main/themes/vitesse-dark-soft.json
type designTheme struct {
	Primary lipgloss.Color // #4d9375
	Blue    lipgloss.Color // #6394bf
	Yellow  lipgloss.Color // #e6cc77
	Magenta lipgloss.Color // #d9739f
	Red     lipgloss.Color // #cb7676

	Text      lipgloss.Color // #dbd7caee
	Secondary lipgloss.Color // #bfbaaa
	Muted     lipgloss.Color // #dedcd590

	Bg     lipgloss.Color // #222
	BgSoft lipgloss.Color // #292929
	Border lipgloss.Color

	// Text on accent backgrounds (buttons)
	OnAccent lipgloss.Color // #222
}

// Vitesse is the theme for overlays drawn over the terminal.
var Vitesse = designTheme{
	Primary: lipgloss.Color("#4d9375"),
	Blue:    lipgloss.Color("#6394bf"),
	Yellow:  lipgloss.Color("#e6cc77"),
	Magenta: lipgloss.Color("#d9739f"),
	Red:     lipgloss.Color("#cb7676"),

	Text:      lipgloss.Color("#dbd7caee"),
	Secondary: lipgloss.Color("#bfbaaa"),
	Muted:     lipgloss.Color("#dedcd590"),

	Bg:     lipgloss.Color("#181818"),
	BgSoft: lipgloss.Color("#292929"),
	Border: lipgloss.Color("#4d9375"),

	OnAccent: lipgloss.Color("#222"),
}

// boxStyle frames a modal overlay.
func boxStyle() lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(Vitesse.Border).
		Foreground(Vitesse.Text).
		Background(Vitesse.Bg).
		Padding(0, 2)
}

// Button renders a small accent button label with consistent styling.
func Button(s string, selected bool) string {
	st := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	if selected {
		return st.Foreground(Vitesse.OnAccent).Background(Vitesse.Primary).Render(s)
	}
	return st.Foreground(Vitesse.Secondary).Background(Vitesse.BgSoft).Render(s)
}
