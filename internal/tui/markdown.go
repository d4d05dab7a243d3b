package tui

import (
	"os"
	"strconv"
	"strings"
	"sync"

	"jobdash/internal/render"

	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/glamour/ansi"
	"github.com/charmbracelet/glamour/styles"
)

var (
	mdRendererMu sync.Mutex
	// Cache renderers by wrap width + style. Creating a renderer with WithAutoStyle can trigger
	// terminal capability/background queries that may block on some terminals.
	mdRenderers = map[string]*glamour.TermRenderer{}
)

// renderMarkdown renders md for the detail pane; on any renderer error the source is returned.
func renderMarkdown(md string, width int) string {
	md = strings.TrimSpace(md)
	if md == "" {
		return ""
	}
	if width < 10 {
		width = 10
	}

	mdRendererMu.Lock()
	defer mdRendererMu.Unlock()
	style := markdownStyle()
	key := style + ":" + strconv.Itoa(width)
	r := mdRenderers[key]
	if r == nil {
		cfg := markdownStyleConfig(style)
		zero := uint(0)
		cfg.Document.Margin = &zero
		cfg.CodeBlock.Margin = &zero
		rr, err := glamour.NewTermRenderer(
			glamour.WithStyles(cfg),
			glamour.WithWordWrap(width),
		)
		if err != nil {
			return md
		}
		mdRenderers[key] = rr
		r = rr
	}

	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return strings.TrimRight(out, "\n")
}

func markdownStyleConfig(styleName string) ansi.StyleConfig {
	switch styleName {
	case "light":
		return styles.LightStyleConfig
	case "ascii":
		return styles.ASCIIStyleConfig
	default:
		return styles.DarkStyleConfig
	}
}

func markdownStyle() string {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("JOBDASH_TUI_MD_STYLE"))) {
	case "light":
		return "light"
	case "ascii", "notty":
		return "ascii"
	}
	return "dark"
}

// detailMarkdown describes one task row for the detail pane. Server text is
// sanitized before it reaches the markdown source.
func detailMarkdown(group string, r render.Row) string {
	var b strings.Builder
	b.WriteString("## " + inlineText(group) + "\n\n")
	b.WriteString("- **Type:** " + inlineText(r.Type) + "\n")
	b.WriteString("- **Status:** " + inlineText(r.StatusLabel) + "\n")
	b.WriteString("- **Last run:** " + inlineText(r.LastRun) + "\n")
	b.WriteString("- **Runs:** " + strconv.FormatInt(r.ExecutionCount, 10) + "\n")
	if r.ID != "" {
		b.WriteString("- **ID:** " + inlineCode(r.ID) + "\n")
	}
	if r.Cron != "" {
		b.WriteString("- **Schedule:** " + inlineCode(r.Cron) + "\n")
	}
	if r.Message != "" {
		b.WriteString("\n> ⚠️ " + inlineText(r.Message) + "\n")
	}
	b.WriteString("\n```json\n" + strings.ReplaceAll(render.SafeText(r.Payload), "```", "` ` `") + "\n```\n")
	return b.String()
}

func inlineText(s string) string {
	return escapeMarkdownInline(render.SafeLine(s))
}

func inlineCode(s string) string {
	return "`" + strings.ReplaceAll(render.SafeLine(s), "`", "'") + "`"
}

var markdownInlineEscaper = strings.NewReplacer(
	`\`, `\\`,
	"*", `\*`,
	"_", `\_`,
	"`", "\\`",
	"[", `\[`,
	"]", `\]`,
	"<", `\<`,
	"#", `\#`,
)

func escapeMarkdownInline(s string) string {
	return markdownInlineEscaper.Replace(s)
}
