// Package dashboard owns one viewer's session state and runs the
// fetch → aggregate → render pipeline for it.
package dashboard

import (
	"context"
	"sync"
	"time"

	"jobdash/internal/aggregate"
	"jobdash/internal/authguard"
	"jobdash/internal/model"
	"jobdash/internal/poller"
	"jobdash/internal/render"
	"jobdash/internal/session"
	"jobdash/internal/viewstate"
)

// Fetcher is the network side of a refresh cycle.
type Fetcher interface {
	Jobs(ctx context.Context) ([]model.TaskRecord, error)
}

type Config struct {
	Fetcher Fetcher
	Guard   authguard.Guard
	// Session is read for the pre-flight login check.
	Session func() (session.Session, error)
	Render  render.Options
	// Now is used to stamp refreshed pages; defaults to time.Now.
	Now func() time.Time
}

// Cycle is the result of one fetch, tagged with its sequence number.
type Cycle struct {
	Seq      uint64
	Tasks    []model.TaskRecord
	Err      error
	Duration time.Duration
}

// Outcome describes what Apply did with a cycle.
type Outcome struct {
	Seq      uint64
	Stale    bool
	Decision authguard.Decision
	Redirect *authguard.RedirectError
	Err      error
	Page     render.Page
}

type Dashboard struct {
	cfg Config
	seq poller.Sequencer

	mu     sync.RWMutex
	filter string
	state  *viewstate.Set
	tasks  []model.TaskRecord
	loaded bool
	page   render.Page
}

func New(cfg Config) *Dashboard {
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Dashboard{
		cfg:   cfg,
		state: viewstate.New(),
		page:  render.Page{CountText: render.CountText(0)},
	}
}

// Preflight runs the login check that must pass before the first fetch.
func (d *Dashboard) Preflight() error {
	if d.cfg.Session == nil {
		return nil
	}
	s, err := d.cfg.Session()
	if err != nil {
		return err
	}
	return d.cfg.Guard.Preflight(s)
}

// Begin issues the sequence number for a new refresh.
func (d *Dashboard) Begin() uint64 { return d.seq.Next() }

// Fetch performs the network half of refresh seq. It touches no shared state.
func (d *Dashboard) Fetch(ctx context.Context, seq uint64) Cycle {
	start := d.cfg.Now()
	tasks, err := d.cfg.Fetcher.Jobs(ctx)
	return Cycle{Seq: seq, Tasks: tasks, Err: err, Duration: d.cfg.Now().Sub(start)}
}

// Apply renders a completed cycle unless a newer one has already been applied.
//
// On an auth failure nothing is re-rendered; the caller must redirect.
func (d *Dashboard) Apply(c Cycle) Outcome {
	out := Outcome{Seq: c.Seq, Err: c.Err, Decision: d.cfg.Guard.Decide(c.Err)}

	// Accept under the lock so two results can't interleave their writes.
	d.mu.Lock()
	defer d.mu.Unlock()
	if !d.seq.Accept(c.Seq) {
		out.Stale = true
		out.Page = d.page
		return out
	}
	switch out.Decision {
	case authguard.Redirect:
		out.Redirect = d.cfg.Guard.RedirectFor(c.Err)
	case authguard.InlineError:
		d.tasks = nil
		d.loaded = false
		d.page = render.ErrorPage(d.page)
		d.page.RefreshedAt = d.cfg.Now()
	default:
		d.tasks = c.Tasks
		d.loaded = true
		d.rebuildLocked()
		d.page.RefreshedAt = d.cfg.Now()
	}
	out.Page = d.page
	return out
}

// Refresh runs one full cycle synchronously.
func (d *Dashboard) Refresh(ctx context.Context) Outcome {
	return d.Apply(d.Fetch(ctx, d.Begin()))
}

func (d *Dashboard) SetFilter(s string) {
	d.mu.Lock()
	d.filter = s
	d.mu.Unlock()
}

func (d *Dashboard) Filter() string {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.filter
}

// Toggle flips a group's expansion and re-renders from the last applied tasks.
func (d *Dashboard) Toggle(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	expanded := d.state.Toggle(key)
	if d.loaded {
		at := d.page.RefreshedAt
		d.rebuildLocked()
		d.page.RefreshedAt = at
	}
	return expanded
}

func (d *Dashboard) Expanded(key string) bool { return d.state.Has(key) }

func (d *Dashboard) Page() render.Page {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.page
}

// Result aggregates the last applied tasks with the current filter.
func (d *Dashboard) Result() aggregate.Result {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return aggregate.Aggregate(d.tasks, d.filter)
}

func (d *Dashboard) rebuildLocked() {
	d.page = render.Build(aggregate.Aggregate(d.tasks, d.filter), d.state, d.cfg.Render)
}
