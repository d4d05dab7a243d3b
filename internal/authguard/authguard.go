// Package authguard decides what happens when the session is missing or rejected.
//
// The policy is a single immediate redirect to the login entry point, applied the same
// way on page load and on any 401 during a refresh. Other failures are rendered inline.
package authguard

import (
	"errors"
	"fmt"

	"jobdash/internal/client"
	"jobdash/internal/session"
)

const DefaultLoginPath = "/auth/login"

type Decision int

const (
	Render Decision = iota
	InlineError
	Redirect
)

func (d Decision) String() string {
	switch d {
	case Render:
		return "render"
	case InlineError:
		return "inline-error"
	case Redirect:
		return "redirect"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// RedirectError carries the login URL the caller must navigate to.
type RedirectError struct {
	URL    string
	Reason string
}

func (e *RedirectError) Error() string {
	return fmt.Sprintf("%s: login required at %s", e.Reason, e.URL)
}

func AsRedirect(err error) (*RedirectError, bool) {
	var re *RedirectError
	if errors.As(err, &re) {
		return re, true
	}
	return nil, false
}

type Guard struct {
	LoginURL string
}

// Preflight fails with a RedirectError when the session has no logged_in flag.
// Callers run it before the first fetch.
func (g Guard) Preflight(s session.Session) error {
	if s.LoggedIn() {
		return nil
	}
	return &RedirectError{URL: g.LoginURL, Reason: "not logged in"}
}

// Decide classifies the error from a refresh cycle.
func (g Guard) Decide(err error) Decision {
	switch {
	case err == nil:
		return Render
	case client.IsUnauthorized(err):
		return Redirect
	default:
		if _, ok := AsRedirect(err); ok {
			return Redirect
		}
		return InlineError
	}
}

// RedirectFor wraps a refresh error into the RedirectError for the login page.
func (g Guard) RedirectFor(err error) *RedirectError {
	if re, ok := AsRedirect(err); ok {
		return re
	}
	return &RedirectError{URL: g.LoginURL, Reason: "session rejected"}
}
