package cli

import (
	"jobdash/internal/config"
	"jobdash/internal/format"
	"jobdash/internal/session"

	"github.com/spf13/cobra"
)

func newConfigCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			path, err := config.Path()
			if err != nil {
				return writeErr(cmd, err)
			}

			// Cookie values are credentials: report only what is present.
			cookies := 0
			loggedIn := false
			hasToken := false
			hints := []string{}
			if sess, err := session.Load(s.Cookie, s.CookieFile); err != nil {
				hints = append(hints, "cookie file: "+err.Error())
			} else {
				cookies = sess.Len()
				loggedIn = sess.LoggedIn()
				_, hasToken = sess.AccessToken()
			}
			if !loggedIn {
				hints = append(hints, "not logged in: log in at "+s.LoginURL()+" and pass the cookies with --cookie or --cookie-file")
			}

			return writeOut(cmd, app, format.Envelope{
				Data: map[string]any{
					"server":         s.Server,
					"loginPath":      s.LoginPath,
					"loginUrl":       s.LoginURL(),
					"interval":       s.IntervalString(),
					"cookieFile":     s.CookieFile,
					"cookies":        cookies,
					"loggedIn":       loggedIn,
					"hasAccessToken": hasToken,
					"debugLog":       s.DebugLog,
				},
				Meta:  map[string]any{"configPath": path},
				Hints: hints,
			})
		},
	}
}
