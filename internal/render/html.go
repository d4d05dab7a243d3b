package render

import (
	"html/template"
	"io"
	"strings"
	"time"
)

// DatastarURL is the client bundle loaded by live pages.
const DatastarURL = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"

var funcMap = template.FuncMap{
	"fmtTime": func(t time.Time) string {
		if t.IsZero() {
			return "-"
		}
		return t.Local().Format("Jan 2 15:04:05")
	},
}

var htmlTemplates = template.Must(template.New("render").Funcs(funcMap).Parse(tmplMain + tmplDocument))

// DocumentVM is the data for a full HTML document.
type DocumentVM struct {
	Title string
	Page  Page
	// Live adds the datastar client, filter input and toggle buttons.
	Live        bool
	DatastarURL string
	// Signals is the initial datastar signal object (JSON).
	Signals string
}

// WriteHTML writes a complete, static HTML document for p.
func WriteHTML(w io.Writer, p Page) error {
	return WriteDocument(w, DocumentVM{Title: "Jobs", Page: p})
}

func WriteDocument(w io.Writer, vm DocumentVM) error {
	if strings.TrimSpace(vm.Title) == "" {
		vm.Title = "Jobs"
	}
	if vm.Live && vm.DatastarURL == "" {
		vm.DatastarURL = DatastarURL
	}
	return htmlTemplates.ExecuteTemplate(w, "document", vm)
}

// Fragment renders the #jobdash-main element alone, for live patching.
func Fragment(p Page, live bool) (string, error) {
	var b strings.Builder
	if err := htmlTemplates.ExecuteTemplate(&b, "main", DocumentVM{Page: p, Live: live}); err != nil {
		return "", err
	}
	return b.String(), nil
}
