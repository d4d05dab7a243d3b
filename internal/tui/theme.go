package tui

import "github.com/charmbracelet/lipgloss"

// Colors adapt to light and dark terminal backgrounds; faint text is only
// applied on dark backgrounds where it stays legible.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorAccent     lipgloss.TerminalColor = ac("26", "75")
	colorError      lipgloss.TerminalColor = ac("160", "203")
)

var (
	styleTitle    = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	styleMuted    = faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
	styleSelected = lipgloss.NewStyle().Background(colorSelectedBg).Foreground(colorSelectedFg).Bold(true)
	styleGroup    = lipgloss.NewStyle().Bold(true)
	styleError    = lipgloss.NewStyle().Foreground(colorError).Bold(true)
)
