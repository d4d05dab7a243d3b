package tui

import (
	"context"
	"time"

	"jobdash/internal/authguard"
	"jobdash/internal/dashboard"
	"jobdash/internal/debuglog"
	"jobdash/internal/poller"
	"jobdash/internal/render"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

type appModel struct {
	dash     *dashboard.Dashboard
	server   string
	interval time.Duration
	log      *debuglog.Logger
	keys     keyMap

	width  int
	height int

	filter    textinput.Model
	filtering bool

	page   render.Page
	lines  []line
	cursor int
	offset int

	showDetail bool
	detail     viewport.Model

	inFlight int
	// initSeq is the first refresh, issued up front because Init can't mutate the model.
	initSeq uint64

	// redirect is set when the session was rejected; the program quits and the caller navigates.
	redirect *authguard.RedirectError
}

type Options struct {
	Dashboard *dashboard.Dashboard
	Server    string
	Interval  time.Duration
	Log       *debuglog.Logger
	Filter    string
}

func newAppModel(opts Options) appModel {
	ti := textinput.New()
	ti.Prompt = "/ "
	ti.Placeholder = "Filter by name or type..."
	ti.CharLimit = 200
	ti.SetValue(opts.Filter)
	opts.Dashboard.SetFilter(opts.Filter)

	m := appModel{
		dash:     opts.Dashboard,
		server:   opts.Server,
		interval: poller.ClampInterval(opts.Interval),
		log:      opts.Log,
		keys:     defaultKeyMap(),
		filter:   ti,
		page:     opts.Dashboard.Page(),
		detail:   viewport.New(80, 20),
		width:    80,
		height:   24,
	}
	m.initSeq = m.dash.Begin()
	m.inFlight = 1
	m.rebuildLines()
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.fetch(m.initSeq), m.tick())
}

func (m appModel) tick() tea.Cmd {
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return refreshTickMsg{} })
}

// startRefresh issues a new sequence number and fetches off the update loop.
func (m *appModel) startRefresh() tea.Cmd {
	seq := m.dash.Begin()
	m.inFlight++
	return m.fetch(seq)
}

func (m appModel) fetch(seq uint64) tea.Cmd {
	dash := m.dash
	return func() tea.Msg {
		return cycleMsg{cycle: dash.Fetch(context.Background(), seq)}
	}
}

// rebuildLines flattens the page into selectable lines: every group header,
// plus the rows of expanded groups. The cursor follows the same group or task
// across re-renders; it reports false when that task is gone and the cursor
// fell back to its group header (or the top).
func (m *appModel) rebuildLines() bool {
	var cur line
	hadCur := m.cursor >= 0 && m.cursor < len(m.lines)
	if hadCur {
		cur = m.lines[m.cursor]
	}

	m.lines = m.lines[:0]
	for gi, g := range m.page.Groups {
		m.lines = append(m.lines, line{kind: lineGroup, group: gi, row: -1, key: g.Key})
		if !g.Expanded {
			continue
		}
		for ri, r := range g.Rows {
			m.lines = append(m.lines, line{kind: lineRow, group: gi, row: ri, key: g.Key, id: rowIdentity(r)})
		}
	}

	m.cursor = 0
	found := !hadCur
	if hadCur {
		header := -1
		for i, l := range m.lines {
			if l.key != cur.key {
				continue
			}
			if l.kind == lineGroup && header < 0 {
				header = i
			}
			if l.kind == cur.kind && l.id == cur.id {
				m.cursor = i
				found = true
				break
			}
		}
		if !found && header >= 0 {
			m.cursor = header
		}
	}
	m.clampCursor()
	return found
}

// rowIdentity tells task rows apart across refreshes, which may reorder them.
func rowIdentity(r render.Row) string {
	if r.ID != "" {
		return "id:" + r.ID
	}
	return "run:" + r.Type + "\x00" + r.LastRun + "\x00" + r.Cron
}

func (m *appModel) clampCursor() {
	if m.cursor >= len(m.lines) {
		m.cursor = len(m.lines) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	h := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+h {
		m.offset = m.cursor - h + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

func (m appModel) selected() (line, bool) {
	if m.cursor < 0 || m.cursor >= len(m.lines) {
		return line{}, false
	}
	return m.lines[m.cursor], true
}

func (m appModel) listHeight() int {
	// header, filter, cards, blank, footer
	h := m.height - 6
	if h < 3 {
		h = 3
	}
	return h
}
