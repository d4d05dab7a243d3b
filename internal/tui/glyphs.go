package tui

import (
	"os"
	"strings"
	"sync"
)

// Some terminals/fonts render the triangle twisties poorly; JOBDASH_TUI_GLYPHS=ascii
// swaps in plain ASCII affordances.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

func applyGlyphPreference() {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("JOBDASH_TUI_GLYPHS")))
	switch v {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	default:
		// Unknown value: ignore.
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

func glyphTwisty(expanded bool) string {
	if glyphs() == glyphSetASCII {
		if expanded {
			return "v"
		}
		return ">"
	}
	if expanded {
		return "▼"
	}
	return "▶"
}

func glyphSeparator() string {
	if glyphs() == glyphSetASCII {
		return "|"
	}
	return "·"
}
