package tui

import (
	"jobdash/internal/dashboard"
	"jobdash/internal/render"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resizeDetail()
		m.clampCursor()
		return m, nil

	case refreshTickMsg:
		cmd := m.startRefresh()
		return m, tea.Batch(cmd, m.tick())

	case cycleMsg:
		return m.applyCycle(msg.cycle)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.filtering {
			return m.updateFilter(msg)
		}
		if m.showDetail {
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m appModel) applyCycle(c dashboard.Cycle) (tea.Model, tea.Cmd) {
	if m.inFlight > 0 {
		m.inFlight--
	}
	out := m.dash.Apply(c)
	if out.Stale {
		m.log.Logf("tui refresh seq=%d outcome=stale duration=%s", out.Seq, c.Duration)
		return m, nil
	}
	if out.Redirect != nil {
		m.log.Logf("tui refresh seq=%d outcome=redirect url=%s reason=%q", out.Seq, out.Redirect.URL, out.Redirect.Reason)
		m.redirect = out.Redirect
		return m, tea.Quit
	}
	if out.Err != nil {
		m.log.Logf("tui refresh seq=%d outcome=error duration=%s err=%q", out.Seq, c.Duration, out.Err.Error())
	} else {
		m.log.Logf("tui refresh seq=%d outcome=ok duration=%s tasks=%d", out.Seq, c.Duration, len(c.Tasks))
	}
	m.setPage(out.Page)
	return m, nil
}

func (m *appModel) setPage(p render.Page) {
	m.page = p
	same := m.rebuildLines()
	if m.showDetail {
		// Close rather than show a different task when the open one is gone.
		if !same || !m.refreshDetail() {
			m.showDetail = false
		}
	}
}

func (m appModel) updateFilter(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyEnter:
		m.filtering = false
		m.filter.Blur()
		return m, nil
	}
	before := m.filter.Value()
	var cmd tea.Cmd
	m.filter, cmd = m.filter.Update(msg)
	if m.filter.Value() == before {
		return m, cmd
	}
	m.dash.SetFilter(m.filter.Value())
	m.cursor = 0
	m.offset = 0
	refresh := m.startRefresh()
	return m, tea.Batch(cmd, refresh)
}

func (m appModel) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back), msg.String() == "q":
		m.showDetail = false
		return m, nil
	}
	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Up):
		m.cursor--
		m.clampCursor()
	case key.Matches(msg, m.keys.Down):
		m.cursor++
		m.clampCursor()
	case key.Matches(msg, m.keys.Filter):
		m.filtering = true
		cmd := m.filter.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.Refresh):
		cmd := m.startRefresh()
		return m, cmd
	case key.Matches(msg, m.keys.Toggle):
		return m.activate()
	}
	return m, nil
}

// activate toggles the selected group, or opens the detail pane for a task row.
func (m appModel) activate() (tea.Model, tea.Cmd) {
	sel, ok := m.selected()
	if !ok {
		return m, nil
	}
	if sel.kind == lineGroup {
		m.dash.Toggle(sel.key)
		m.page = m.dash.Page()
		m.rebuildLines()
		return m, nil
	}
	m.showDetail = true
	m.resizeDetail()
	if !m.refreshDetail() {
		m.showDetail = false
	}
	m.detail.GotoTop()
	return m, nil
}
