package cli

import (
	"strings"

	"jobdash/internal/authguard"
	"jobdash/internal/format"
	"jobdash/internal/model"
	"jobdash/internal/render"
	"jobdash/internal/statusutil"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

func newSnapshotCmd(app *App) *cobra.Command {
	var filter string
	var output string
	var expandAll bool
	var noColor bool
	var summary bool
	var width int

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Fetch once and print the dashboard",
		Long: strings.TrimSpace(`
Fetch the job list once, apply the filter and print the rendered dashboard.

Output modes:
- text: grouped view for the terminal (collapsed groups unless --expand-all)
- html: a standalone HTML page
- json: the page view model in the standard envelope

Exits non-zero when the session is missing/rejected or the fetch fails.
`),
		Example: strings.TrimSpace(`
jobdash snapshot --output text --expand-all
jobdash snapshot --filter backup --output json --pretty
jobdash snapshot --output html > jobs.html
`),
		RunE: func(cmd *cobra.Command, args []string) error {
			output = strings.ToLower(strings.TrimSpace(output))
			switch output {
			case "text", "html", "json":
			default:
				return writeErr(cmd, invalidFlagError{flag: "output", value: output, want: "text|html|json"})
			}
			if noColor {
				lipgloss.SetColorProfile(termenv.Ascii)
			}

			s, err := loadSettings(app)
			if err != nil {
				return writeErr(cmd, err)
			}
			dash := newDashboard(s, render.Options{Summary: summary})
			if err := dash.Preflight(); err != nil {
				if re, ok := authguard.AsRedirect(err); ok {
					return redirectToLogin(cmd, re, false)
				}
				return writeErr(cmd, err)
			}

			dash.SetFilter(filter)
			out := dash.Refresh(cmd.Context())
			if out.Redirect != nil {
				return redirectToLogin(cmd, out.Redirect, false)
			}
			if expandAll {
				for _, g := range out.Page.Groups {
					if !g.Expanded {
						dash.Toggle(g.Key)
					}
				}
			}
			page := dash.Page()

			switch output {
			case "text":
				_, err = cmd.OutOrStdout().Write([]byte(render.Text(page, width) + "\n"))
			case "html":
				err = render.WriteHTML(cmd.OutOrStdout(), page)
			default:
				err = writeOut(cmd, app, format.Envelope{
					Data: page,
					Meta: map[string]any{
						"server": s.Server,
						"filter": filter,
						"seq":    out.Seq,
						"failed": countFailed(dash.Result().Filtered),
					},
				})
			}
			if err != nil {
				return writeErr(cmd, err)
			}
			if out.Err != nil {
				return writeErr(cmd, loadFailedError{err: out.Err})
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&filter, "filter", "", "Case-insensitive substring of name or type")
	cmd.Flags().StringVar(&output, "output", "text", "Output mode (text|html|json)")
	cmd.Flags().BoolVar(&expandAll, "expand-all", false, "Expand every group")
	cmd.Flags().BoolVar(&noColor, "no-color", false, "Disable colors in text output")
	cmd.Flags().BoolVar(&summary, "summary", true, "Include the overall status summary")
	cmd.Flags().IntVar(&width, "width", 100, "Line width for text output")
	return cmd
}

// countFailed counts the filtered tasks whose last execution failed.
func countFailed(tasks []model.TaskRecord) int {
	n := 0
	for _, t := range tasks {
		if statusutil.IsFailure(t.Status) {
			n++
		}
	}
	return n
}
