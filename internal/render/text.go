package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"
)

var (
	styleTitle   = lipgloss.NewStyle().Bold(true)
	styleMuted   = lipgloss.NewStyle().Faint(true)
	styleError   = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#a94442", Dark: "#ff6b6b"})
	styleBadge   = lipgloss.NewStyle().Padding(0, 1)
	statusColors = map[string]lipgloss.AdaptiveColor{
		"start":     {Light: "#8a6d3b", Dark: "#f5d76e"},
		"scheduled": {Light: "#31708f", Dark: "#7fb3d5"},
		"running":   {Light: "#0e5d8f", Dark: "#58a6ff"},
		"success":   {Light: "#3c763d", Dark: "#56d364"},
		"failed":    {Light: "#a94442", Dark: "#ff6b6b"},
		"disabled":  {Light: "#777777", Dark: "#8b949e"},
	}
)

// StatusStyle colors a status class; unknown classes render unstyled.
func StatusStyle(class string) lipgloss.Style {
	if c, ok := statusColors[class]; ok {
		return lipgloss.NewStyle().Foreground(c)
	}
	return lipgloss.NewStyle()
}

// BadgeText is the plain "label (count)" form shared by the terminal views.
func BadgeText(b Badge) string {
	return fmt.Sprintf("%s (%d)", SafeLine(b.Label), b.Count)
}

func renderBadges(bs []Badge) string {
	parts := make([]string, 0, len(bs))
	for _, b := range bs {
		parts = append(parts, StatusStyle(b.Class).Render(BadgeText(b)))
	}
	return strings.Join(parts, " ")
}

// Text renders p for a terminal of the given width. Collapsed groups show
// only their header line.
func Text(p Page, width int) string {
	if width < 40 {
		width = 40
	}
	var lines []string
	lines = append(lines, styleTitle.Render(p.CountText))
	if len(p.Cards) > 0 {
		cards := make([]string, 0, len(p.Cards))
		for _, c := range p.Cards {
			cards = append(cards, styleBadge.Inherit(StatusStyle(c.Class)).Render(BadgeText(c)))
		}
		lines = append(lines, strings.Join(cards, " "))
	}
	lines = append(lines, "")
	if p.Failed() {
		lines = append(lines, styleError.Render(p.Error))
		return strings.Join(lines, "\n")
	}
	if len(p.Groups) == 0 {
		lines = append(lines, styleMuted.Render("No tasks."))
	}
	for _, g := range p.Groups {
		head := g.Glyph + " " + styleTitle.Render(SafeLine(g.Name)) + "  " + renderBadges(g.Badges)
		lines = append(lines, ansi.Truncate(head, width, "…"))
		for _, r := range g.Rows {
			if r.Hidden {
				continue
			}
			lines = append(lines, RowLines(r, width)...)
		}
	}
	return strings.Join(lines, "\n")
}

// RowLines renders one task row as a summary line, an optional message line
// and the indented payload.
func RowLines(r Row, width int) []string {
	line := fmt.Sprintf("    %-14s %s  %s  runs=%d",
		SafeLine(r.Type),
		StatusStyle(r.StatusClass).Render(SafeLine(r.StatusLabel)),
		styleMuted.Render(SafeLine(r.LastRun)),
		r.ExecutionCount,
	)
	out := []string{ansi.Truncate(line, width, "…")}
	if r.Message != "" {
		out = append(out, ansi.Truncate("      "+styleError.Render("⚠️ "+SafeLine(r.Message)), width, "…"))
	}
	for _, pl := range strings.Split(SafeText(r.Payload), "\n") {
		out = append(out, ansi.Truncate("      "+styleMuted.Render(pl), width, "…"))
	}
	return out
}
