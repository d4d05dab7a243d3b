package render

import (
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"
)

// SafeText prepares server-supplied text for a terminal: escape sequences are
// stripped and any remaining control characters dropped. Newlines and tabs
// are kept.
func SafeText(s string) string {
	if s == "" {
		return s
	}
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		switch {
		case r == '\n' || r == '\t':
			return r
		case unicode.IsControl(r):
			return -1
		}
		return r
	}, s)
}

var lineFolder = strings.NewReplacer("\n", " ", "\t", " ")

// SafeLine is SafeText folded onto one line.
func SafeLine(s string) string {
	return lineFolder.Replace(SafeText(s))
}
