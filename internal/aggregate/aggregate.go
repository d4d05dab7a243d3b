// Package aggregate filters task records and groups them by job name.
package aggregate

import (
	"sort"
	"strings"
	"time"

	"jobdash/internal/model"
	"jobdash/internal/statusutil"
	"jobdash/internal/viewstate"
)

// StatusCount is one bucket of a status tally.
type StatusCount struct {
	Status string `json:"status"`
	Count  int    `json:"count"`
}

// Group is every filtered record sharing one name, newest run first.
type Group struct {
	Key    string             `json:"key"`
	Name   string             `json:"name"`
	Tasks  []model.TaskRecord `json:"tasks"`
	Counts []StatusCount      `json:"counts"`
}

type Result struct {
	Groups []Group `json:"groups"`
	// Filtered holds the records that passed the filter, in input order.
	Filtered []model.TaskRecord `json:"-"`
	// Summary tallies statuses across all filtered records.
	Summary []StatusCount `json:"summary"`
}

func (r Result) FilteredCount() int { return len(r.Filtered) }

// Aggregate filters tasks by filterText and groups the survivors by name.
//
// Groups appear in order of first occurrence; status tallies likewise. The input
// slice is not modified.
func Aggregate(tasks []model.TaskRecord, filterText string) Result {
	filtered := Filter(tasks, filterText)

	var res Result
	res.Filtered = filtered
	index := map[string]int{}
	for _, t := range filtered {
		i, ok := index[t.Name]
		if !ok {
			i = len(res.Groups)
			index[t.Name] = i
			res.Groups = append(res.Groups, Group{Key: viewstate.Key(t.Name), Name: t.Name})
		}
		res.Groups[i].Tasks = append(res.Groups[i].Tasks, t)
	}
	for i := range res.Groups {
		g := &res.Groups[i]
		g.Counts = Tally(g.Tasks)
		SortByLastRun(g.Tasks)
	}
	res.Summary = Tally(filtered)
	return res
}

// Filter keeps records whose name or task type contains filterText, case-insensitively.
func Filter(tasks []model.TaskRecord, filterText string) []model.TaskRecord {
	needle := strings.ToLower(filterText)
	out := make([]model.TaskRecord, 0, len(tasks))
	for _, t := range tasks {
		if needle == "" ||
			strings.Contains(strings.ToLower(t.Name), needle) ||
			strings.Contains(strings.ToLower(t.TaskType), needle) {
			out = append(out, t)
		}
	}
	return out
}

// Tally counts normalized statuses in first-occurrence order.
func Tally(tasks []model.TaskRecord) []StatusCount {
	var out []StatusCount
	index := map[string]int{}
	for _, t := range tasks {
		s := statusutil.NormalizeStatus(t.Status)
		if i, ok := index[s]; ok {
			out[i].Count++
			continue
		}
		index[s] = len(out)
		out = append(out, StatusCount{Status: s, Count: 1})
	}
	return out
}

// SortByLastRun orders tasks newest first. Missing or unparseable timestamps
// count as the Unix epoch; ties keep their input order.
func SortByLastRun(tasks []model.TaskRecord) {
	sort.SliceStable(tasks, func(i, j int) bool {
		return ParseLastRun(tasks[i].LastRun).After(ParseLastRun(tasks[j].LastRun))
	})
}

var lastRunLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02",
}

var epoch = time.Unix(0, 0).UTC()

// ParseLastRun parses a last_run value; zone-less layouts are read as UTC.
func ParseLastRun(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return epoch
	}
	for _, layout := range lastRunLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return epoch
}
