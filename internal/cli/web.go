package cli

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"jobdash/internal/format"
	"jobdash/internal/render"
	"jobdash/internal/web"

	"github.com/spf13/cobra"
)

func newWebCmd(app *App) *cobra.Command {
	var addr string
	var open bool

	cmd := &cobra.Command{
		Use:   "web",
		Short: "Serve a live dashboard to the browser",
		Long: strings.TrimSpace(`
Serve the dashboard from a local HTTP server.

The page refreshes itself over server-sent events (datastar): the server polls
the scheduler on the configured interval and pushes the re-rendered table to
every open tab. Filter and group expansion are shared by all tabs.
`),
		Example: strings.TrimSpace(`
# Serve on localhost and open the browser
jobdash web --addr 127.0.0.1:3335 --open

# Watch a remote scheduler
jobdash --server https://sched.example.com web
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := loadSettings(app)
			if err != nil {
				return writeErr(cmd, err)
			}

			listenAddr := strings.TrimSpace(addr)
			if listenAddr == "" {
				return writeErr(cmd, errors.New("web: missing --addr"))
			}

			srv, err := web.NewServer(web.ServerConfig{
				Dashboard: newDashboard(s, render.Options{Summary: true}),
				Interval:  s.Interval,
				Log:       newLogger(s),
			})
			if err != nil {
				return writeErr(cmd, err)
			}

			ln, err := net.Listen("tcp", listenAddr)
			if err != nil {
				return writeErr(cmd, err)
			}

			actualAddr := ln.Addr().String()
			url := "http://" + actualAddr + "/"

			opened := false
			openErr := ""
			if open {
				if err := openURL(url); err != nil {
					openErr = err.Error()
				} else {
					opened = true
				}
			}

			hints := []string{}
			if !opened {
				hints = append(hints, "open "+url)
			}

			_ = writeOut(cmd, app, format.Envelope{
				Data: map[string]any{
					"addr":      actualAddr,
					"url":       url,
					"server":    s.Server,
					"interval":  s.IntervalString(),
					"opened":    opened,
					"openError": openErr,
					"startedAt": time.Now().UTC().Format(time.RFC3339Nano),
				},
				Hints: hints,
			})

			fmt.Fprintf(cmd.ErrOrStderr(), "jobdash web running at %s (server=%s)\n", url, s.Server)
			if openErr != "" {
				fmt.Fprintf(cmd.ErrOrStderr(), "Failed to open browser: %s\n", openErr)
			}

			if err := srv.Serve(cmd.Context(), ln); err != nil {
				return writeErr(cmd, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:3335", "Bind address (host:port or :port)")
	cmd.Flags().BoolVar(&open, "open", false, "Open the dashboard in your default browser")
	return cmd
}
