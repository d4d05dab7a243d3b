package tui

import (
	"jobdash/internal/dashboard"

	"github.com/charmbracelet/bubbles/key"
)

type refreshTickMsg struct{}

// cycleMsg carries a finished fetch back onto the update loop.
type cycleMsg struct {
	cycle dashboard.Cycle
}

type lineKind int

const (
	lineGroup lineKind = iota
	lineRow
)

// line is one selectable entry in the grouped list.
type line struct {
	kind  lineKind
	group int
	row   int
	key   string
	// id identifies the task on row lines; see rowIdentity.
	id string
}

type keyMap struct {
	Up      key.Binding
	Down    key.Binding
	Toggle  key.Binding
	Filter  key.Binding
	Refresh key.Binding
	Back    key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "expand/details")),
		Filter:  key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
		Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
		Back:    key.NewBinding(key.WithKeys("esc", "backspace"), key.WithHelp("esc", "back")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}
