package tui

import (
	"fmt"
	"strings"

	"jobdash/internal/render"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

func (m *appModel) resizeDetail() {
	w := m.width - 2
	if w < 20 {
		w = 20
	}
	h := m.height - 3
	if h < 5 {
		h = 5
	}
	m.detail.Width = w
	m.detail.Height = h
}

// refreshDetail re-renders the selected row into the detail viewport.
// It reports false when the cursor is not on a task row.
func (m *appModel) refreshDetail() bool {
	sel, ok := m.selected()
	if !ok || sel.kind != lineRow {
		return false
	}
	g := m.page.Groups[sel.group]
	m.detail.SetContent(renderMarkdown(detailMarkdown(g.Name, g.Rows[sel.row]), m.detail.Width))
	return true
}

func (m appModel) View() string {
	if m.showDetail {
		return m.viewDetail()
	}
	var b strings.Builder
	b.WriteString(m.viewHeader())
	b.WriteByte('\n')
	b.WriteString(m.filter.View())
	b.WriteByte('\n')
	if cards := m.viewCards(); cards != "" {
		b.WriteString(cards)
		b.WriteByte('\n')
	}
	b.WriteByte('\n')
	b.WriteString(m.viewList())
	b.WriteByte('\n')
	b.WriteString(m.viewFooter())
	return b.String()
}

func (m appModel) viewHeader() string {
	parts := []string{styleTitle.Render("jobdash"), m.server, m.page.CountText}
	if !m.page.RefreshedAt.IsZero() {
		parts = append(parts, "updated "+m.page.RefreshedAt.Format("15:04:05"))
	}
	if m.inFlight > 0 {
		parts = append(parts, "refreshing…")
	}
	line := strings.Join(parts, " "+glyphSeparator()+" ")
	return xansi.Truncate(line, m.width, "…")
}

func (m appModel) viewCards() string {
	if len(m.page.Cards) == 0 {
		return ""
	}
	out := make([]string, 0, len(m.page.Cards))
	for _, c := range m.page.Cards {
		out = append(out, render.StatusStyle(c.Class).Render(render.BadgeText(c)))
	}
	return xansi.Truncate(strings.Join(out, "  "), m.width, "…")
}

func (m appModel) viewList() string {
	h := m.listHeight()
	if m.page.Failed() {
		return styleError.Render(m.page.Error)
	}
	if len(m.lines) == 0 {
		if m.page.RefreshedAt.IsZero() {
			return styleMuted.Render("Loading…")
		}
		return styleMuted.Render("No tasks match.")
	}

	end := m.offset + h
	if end > len(m.lines) {
		end = len(m.lines)
	}
	rows := make([]string, 0, end-m.offset)
	for i := m.offset; i < end; i++ {
		s := m.renderLine(m.lines[i])
		s = xansi.Truncate(s, m.width, "…")
		if i == m.cursor {
			s = styleSelected.Render(xansi.Strip(s))
		}
		rows = append(rows, s)
	}
	return strings.Join(rows, "\n")
}

func (m appModel) renderLine(l line) string {
	g := m.page.Groups[l.group]
	if l.kind == lineGroup {
		badges := make([]string, 0, len(g.Badges))
		for _, b := range g.Badges {
			badges = append(badges, render.StatusStyle(b.Class).Render(render.BadgeText(b)))
		}
		return fmt.Sprintf("%s %s  %s", glyphTwisty(g.Expanded), styleGroup.Render(render.SafeLine(g.Name)), strings.Join(badges, " "))
	}
	r := g.Rows[l.row]
	status := render.StatusStyle(r.StatusClass).Render(render.SafeLine(r.StatusLabel))
	cols := []string{"   " + render.SafeLine(r.Type), status, render.SafeLine(r.LastRun), fmt.Sprintf("runs %d", r.ExecutionCount)}
	if r.Message != "" {
		cols = append(cols, "⚠ "+render.SafeLine(r.Message))
	}
	return strings.Join(cols, "  ")
}

func (m appModel) viewFooter() string {
	var help string
	switch {
	case m.filtering:
		help = "type to filter · enter/esc done"
	default:
		help = "↑/↓ move · enter expand/details · / filter · r refresh · q quit"
	}
	return styleMuted.Render(xansi.Truncate(help, m.width, "…"))
}

func (m appModel) viewDetail() string {
	title := styleTitle.Render("task detail")
	footer := styleMuted.Render("esc back · ↑/↓ scroll")
	return lipgloss.JoinVertical(lipgloss.Left, title, m.detail.View(), footer)
}
