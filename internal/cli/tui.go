package cli

import (
	"fmt"

	"jobdash/internal/authguard"
	"jobdash/internal/render"
	"jobdash/internal/tui"

	"github.com/spf13/cobra"
)

func newTUICmd(app *App) *cobra.Command {
	var filter string

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal dashboard (default)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd, app, filter)
		},
	}
	cmd.Flags().StringVar(&filter, "filter", "", "Initial filter (case-insensitive substring of name or type)")
	return cmd
}

func runTUI(cmd *cobra.Command, app *App, filter string) error {
	s, err := loadSettings(app)
	if err != nil {
		return writeErr(cmd, err)
	}
	dash := newDashboard(s, render.Options{Summary: true})
	if err := dash.Preflight(); err != nil {
		if re, ok := authguard.AsRedirect(err); ok {
			return redirectToLogin(cmd, re, true)
		}
		return writeErr(cmd, err)
	}

	re, err := tui.Run(tui.Options{
		Dashboard: dash,
		Server:    s.Server,
		Interval:  s.Interval,
		Log:       newLogger(s),
		Filter:    filter,
	})
	if err != nil {
		return writeErr(cmd, err)
	}
	if re != nil {
		return redirectToLogin(cmd, re, true)
	}
	return nil
}

// redirectToLogin is the terminal side of the auth policy: leave the dashboard
// and send the user to the login page (in the browser when open is set).
func redirectToLogin(cmd *cobra.Command, re *authguard.RedirectError, open bool) error {
	if open {
		if err := openURL(re.URL); err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "Failed to open browser: %s\n", err)
		}
	}
	return writeErr(cmd, errLoginRequired(re))
}
