// Package render turns an aggregate result plus expansion state into a page.
//
// Build is pure; WriteHTML and Text are thin writers over its output, so every
// surface renders the same thing from the same inputs.
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"jobdash/internal/aggregate"
	"jobdash/internal/model"
	"jobdash/internal/statusutil"
	"jobdash/internal/viewstate"
)

const (
	GlyphExpanded  = "▼"
	GlyphCollapsed = "▶"

	LoadFailedText = "Failed to load tasks."
)

type Options struct {
	// Summary enables the overview cards region.
	Summary bool
}

type Badge struct {
	Status string `json:"status"`
	Label  string `json:"label"`
	Class  string `json:"class"`
	Count  int    `json:"count"`
}

type Row struct {
	Type           string `json:"type"`
	Status         string `json:"status"`
	StatusLabel    string `json:"statusLabel"`
	StatusClass    string `json:"statusClass"`
	LastRun        string `json:"lastRun"`
	Payload        string `json:"payload"`
	Message        string `json:"message,omitempty"`
	ExecutionCount int64  `json:"executionCount"`
	Hidden         bool   `json:"hidden"`

	ID   string `json:"id,omitempty"`
	Cron string `json:"cron,omitempty"`
}

type GroupView struct {
	Key      string  `json:"key"`
	Name     string  `json:"name"`
	Badges   []Badge `json:"badges"`
	Expanded bool    `json:"expanded"`
	Glyph    string  `json:"glyph"`
	Rows     []Row   `json:"rows"`
}

type Page struct {
	CountText   string      `json:"countText"`
	Total       int         `json:"total"`
	Cards       []Badge     `json:"cards,omitempty"`
	Groups      []GroupView `json:"groups"`
	Error       string      `json:"error,omitempty"`
	RefreshedAt time.Time   `json:"refreshedAt"`
}

func (p Page) Failed() bool { return p.Error != "" }

// Build materializes a page from res and the current expansion state.
func Build(res aggregate.Result, state *viewstate.Set, opts Options) Page {
	p := Page{
		CountText: CountText(res.FilteredCount()),
		Total:     res.FilteredCount(),
		Groups:    make([]GroupView, 0, len(res.Groups)),
	}
	if opts.Summary {
		p.Cards = badges(res.Summary)
	}
	for _, g := range res.Groups {
		expanded := state.Has(g.Key)
		gv := GroupView{
			Key:      g.Key,
			Name:     g.Name,
			Badges:   badges(g.Counts),
			Expanded: expanded,
			Glyph:    GlyphCollapsed,
			Rows:     make([]Row, 0, len(g.Tasks)),
		}
		if expanded {
			gv.Glyph = GlyphExpanded
		}
		for _, t := range g.Tasks {
			r := buildRow(t)
			r.Hidden = !expanded
			gv.Rows = append(gv.Rows, r)
		}
		p.Groups = append(p.Groups, gv)
	}
	return p
}

// ErrorPage replaces the table with the inline load failure; the count text
// from prev is kept.
func ErrorPage(prev Page) Page {
	return Page{
		CountText:   prev.CountText,
		Total:       prev.Total,
		Error:       LoadFailedText,
		RefreshedAt: prev.RefreshedAt,
	}
}

func CountText(n int) string {
	return fmt.Sprintf("%d tasks", n)
}

func badges(counts []aggregate.StatusCount) []Badge {
	out := make([]Badge, 0, len(counts))
	for _, c := range counts {
		label, class := statusutil.Label(c.Status)
		out = append(out, Badge{Status: c.Status, Label: label, Class: class, Count: c.Count})
	}
	return out
}

func buildRow(t model.TaskRecord) Row {
	status := statusutil.NormalizeStatus(t.Status)
	label, class := statusutil.Label(status)
	lastRun := t.LastRun
	if strings.TrimSpace(lastRun) == "" {
		lastRun = "-"
	}
	return Row{
		Type:           t.TaskType,
		Status:         status,
		StatusLabel:    label,
		StatusClass:    class,
		LastRun:        lastRun,
		Payload:        PrettyPayload(t.Payload),
		Message:        t.VisibleMessage(),
		ExecutionCount: t.Executions(),
		ID:             t.ID,
		Cron:           t.Cron,
	}
}

// PrettyPayload re-indents a raw JSON payload with two spaces.
// An absent payload renders as null; invalid JSON is returned as-is.
func PrettyPayload(raw json.RawMessage) string {
	if len(bytes.TrimSpace(raw)) == 0 {
		return "null"
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return string(raw)
	}
	return buf.String()
}
