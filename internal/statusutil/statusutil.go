package statusutil

import (
	"strings"

	"jobdash/internal/model"
)

// GenericClass is the display class for statuses outside the known set.
const GenericClass = "other"

var labels = map[string]string{
	model.StatusStart:     "🟡 Start",
	model.StatusScheduled: "📅 Scheduled",
	model.StatusRunning:   "🔄 Running",
	model.StatusSuccess:   "✅ Success",
	model.StatusFailed:    "❌ Failed",
	model.StatusDisabled:  "🚫 Disabled",
}

// NormalizeStatus lower-cases s and substitutes "unknown" for an empty status.
func NormalizeStatus(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return model.StatusUnknown
	}
	return s
}

// Label returns the display label and class for a status.
// Unmapped statuses are shown verbatim (lower-cased) with GenericClass.
func Label(status string) (label string, class string) {
	key := NormalizeStatus(status)
	if l, ok := labels[key]; ok {
		return l, key
	}
	return key, GenericClass
}

// IsFailure reports whether the status denotes a failed execution.
func IsFailure(status string) bool {
	return NormalizeStatus(status) == model.StatusFailed
}
