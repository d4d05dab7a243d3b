package tui

import (
	"jobdash/internal/authguard"

	tea "github.com/charmbracelet/bubbletea"
)

// Run drives the interactive dashboard until the user quits. A non-nil redirect
// means the session was rejected and the caller should send the user to log in.
func Run(opts Options) (*authguard.RedirectError, error) {
	applyGlyphPreference()
	m := newAppModel(opts)
	final, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	if err != nil {
		return nil, err
	}
	if fm, ok := final.(appModel); ok {
		return fm.redirect, nil
	}
	return nil, nil
}
