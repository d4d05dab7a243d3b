package cli

import (
	"errors"
	"fmt"

	"jobdash/internal/authguard"
)

// loginRequiredError is returned when the scheduler session is missing or rejected.
type loginRequiredError struct {
	url    string
	reason string
}

func (e loginRequiredError) Error() string {
	return fmt.Sprintf("login required (%s): open %s", e.reason, e.url)
}

func errLoginRequired(re *authguard.RedirectError) error {
	return loginRequiredError{url: re.URL, reason: re.Reason}
}

// IsLoginRequired reports whether err came from the auth redirect policy.
func IsLoginRequired(err error) bool {
	var le loginRequiredError
	return errors.As(err, &le)
}

type loadFailedError struct {
	err error
}

func (e loadFailedError) Error() string {
	return fmt.Sprintf("failed to load tasks: %v", e.err)
}

func (e loadFailedError) Unwrap() error { return e.err }

type invalidFlagError struct {
	flag  string
	value string
	want  string
}

func (e invalidFlagError) Error() string {
	return fmt.Sprintf("invalid --%s %q (expected %s)", e.flag, e.value, e.want)
}
