package main

import (
	"context"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"jobdash/internal/cli"
)

func isServerURL(s string) bool {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Host != ""
}

func rewriteServerURLArgs(argv []string) []string {
	// Convenience: `jobdash <url> [subcommand]` works like `jobdash --server <url> [subcommand]`.
	//
	// Cobra treats the first non-flag token as a subcommand, so we rewrite argv before parsing.
	// Persistent flags may come first, so look for the first positional token, not argv[1].
	if len(argv) < 2 {
		return argv
	}

	valueFlags := map[string]bool{
		"--server":      true,
		"--cookie":      true,
		"--cookie-file": true,
		"--interval":    true,
		"--login-path":  true,
		"--format":      true,
	}

	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		if a == "" {
			continue
		}
		if a == "--" {
			return argv
		}
		if strings.HasPrefix(a, "-") {
			if !strings.Contains(a, "=") && valueFlags[a] {
				i++ // skip value if present
			}
			continue
		}

		// First positional token.
		if isServerURL(a) {
			out := make([]string, 0, len(argv)+1)
			out = append(out, argv[:i]...)
			out = append(out, "--server", a)
			out = append(out, argv[i+1:]...)
			return out
		}
		return argv
	}

	return argv
}

func main() {
	os.Args = rewriteServerURLArgs(os.Args)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := cli.NewRootCmd()
	if err := cmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
