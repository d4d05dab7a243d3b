package cli

import (
	"fmt"
	"os"
	"strings"

	"jobdash/internal/authguard"
	"jobdash/internal/client"
	"jobdash/internal/config"
	"jobdash/internal/dashboard"
	"jobdash/internal/debuglog"
	"jobdash/internal/format"
	"jobdash/internal/render"
	"jobdash/internal/session"

	"github.com/spf13/cobra"
)

type App struct {
	Server     string
	Cookie     string
	CookieFile string
	Interval   string
	LoginPath  string
	PrettyJSON bool
	Format     string
}

func NewRootCmd() *cobra.Command {
	app := &App{}

	cmd := &cobra.Command{
		Use:          "jobdash",
		Short:        "Live dashboard for scheduler jobs (TUI, browser, snapshots)",
		SilenceUsage: true,
		Example: strings.TrimSpace(`
  # Start the interactive TUI against a local scheduler
  jobdash

  # Point at another scheduler (shortcut for: jobdash --server URL)
  jobdash https://sched.example.com

  # One-off snapshot of failing backups
  jobdash snapshot --filter backup --output text

  # Serve a live dashboard in the browser
  jobdash web --open
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			// No subcommand => interactive TUI.
			if len(args) == 0 {
				return runTUI(cmd, app, "")
			}
			return cmd.Help()
		},
	}

	cmd.PersistentFlags().StringVar(&app.Server, "server", "", "Scheduler base URL (env "+config.EnvServer+", default "+config.DefaultServer+")")
	cmd.PersistentFlags().StringVar(&app.Cookie, "cookie", "", "Cookie header value, e.g. 'logged_in=true; access_token=...' (env "+config.EnvCookie+")")
	cmd.PersistentFlags().StringVar(&app.CookieFile, "cookie-file", "", "File with one name=value cookie per line (env "+config.EnvCookieFile+")")
	cmd.PersistentFlags().StringVar(&app.Interval, "interval", "", "Refresh interval, e.g. 10s (env "+config.EnvInterval+")")
	cmd.PersistentFlags().StringVar(&app.LoginPath, "login-path", "", "Login path on the server (env "+config.EnvLoginPath+", default "+authguard.DefaultLoginPath+")")
	cmd.PersistentFlags().BoolVar(&app.PrettyJSON, "pretty", false, "Pretty-print JSON output")
	cmd.PersistentFlags().StringVar(&app.Format, "format", envOr("JOBDASH_FORMAT", "json"), "Output format for scriptable commands (json)")

	cmd.AddCommand(newTUICmd(app))
	cmd.AddCommand(newSnapshotCmd(app))
	cmd.AddCommand(newWebCmd(app))
	cmd.AddCommand(newConfigCmd(app))

	return cmd
}

func (app *App) overrides() config.Overrides {
	return config.Overrides{
		Server:     app.Server,
		Cookie:     app.Cookie,
		CookieFile: app.CookieFile,
		LoginPath:  app.LoginPath,
		Interval:   app.Interval,
	}
}

func loadSettings(app *App) (config.Settings, error) {
	f, err := config.LoadFile()
	if err != nil {
		return config.Settings{}, err
	}
	return config.Resolve(app.overrides(), f)
}

// newDashboard wires the fetch pipeline for one surface. Cookies are re-read
// on every request so a refreshed cookie file is picked up without a restart.
func newDashboard(s config.Settings, opts render.Options) *dashboard.Dashboard {
	loadSession := func() (session.Session, error) {
		return session.Load(s.Cookie, s.CookieFile)
	}
	return dashboard.New(dashboard.Config{
		Fetcher: client.New(s.Server, loadSession),
		Guard:   authguard.Guard{LoginURL: s.LoginURL()},
		Session: loadSession,
		Render:  opts,
	})
}

func newLogger(s config.Settings) *debuglog.Logger {
	return debuglog.New(s.DebugLog)
}

func envOr(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func writeOut(cmd *cobra.Command, app *App, v any) error {
	return format.Write(cmd.OutOrStdout(), v, app.Format, app.PrettyJSON)
}

func writeErr(cmd *cobra.Command, err error) error {
	fmt.Fprintln(cmd.ErrOrStderr(), err.Error())
	return err
}
