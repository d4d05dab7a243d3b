// Package debuglog appends diagnostic lines to an opt-in file (JOBDASH_DEBUG_LOG).
package debuglog

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger is a no-op when Path is empty. Write failures are ignored.
type Logger struct {
	Path string

	mu sync.Mutex
}

func New(path string) *Logger {
	return &Logger{Path: strings.TrimSpace(path)}
}

func (l *Logger) Enabled() bool {
	return l != nil && l.Path != ""
}

// Logf writes one line: an RFC 3339 timestamp followed by the formatted message.
func (l *Logger) Logf(format string, args ...any) {
	if !l.Enabled() {
		return
	}
	line := time.Now().UTC().Format(time.RFC3339Nano) + " " + strings.TrimRight(fmt.Sprintf(format, args...), "\n") + "\n"

	l.mu.Lock()
	defer l.mu.Unlock()
	f, err := os.OpenFile(l.Path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return
	}
	_, _ = f.WriteString(line)
	_ = f.Close()
}
