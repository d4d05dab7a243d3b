// Package config resolves jobdash settings from flags, environment and ~/.jobdash/config.json.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"jobdash/internal/authguard"
	"jobdash/internal/poller"
)

const (
	DefaultServer = "http://127.0.0.1:8080"

	EnvConfigDir  = "JOBDASH_CONFIG_DIR"
	EnvServer     = "JOBDASH_SERVER"
	EnvCookie     = "JOBDASH_COOKIE"
	EnvCookieFile = "JOBDASH_COOKIE_FILE"
	EnvInterval   = "JOBDASH_INTERVAL"
	EnvLoginPath  = "JOBDASH_LOGIN_PATH"
	EnvDebugLog   = "JOBDASH_DEBUG_LOG"
)

// File is the on-disk config. Every field is optional.
type File struct {
	Server     string `json:"server,omitempty"`
	CookieFile string `json:"cookieFile,omitempty"`
	LoginPath  string `json:"loginPath,omitempty"`
	// Interval is a Go duration string, e.g. "10s".
	Interval string `json:"interval,omitempty"`
}

// Settings is the effective configuration.
type Settings struct {
	Server     string        `json:"server"`
	Cookie     string        `json:"-"`
	CookieFile string        `json:"cookieFile,omitempty"`
	LoginPath  string        `json:"loginPath"`
	Interval   time.Duration `json:"-"`
	DebugLog   string        `json:"debugLog,omitempty"`
}

func (s Settings) IntervalString() string { return s.Interval.String() }

// LoginURL is the absolute login entry point on the configured server.
func (s Settings) LoginURL() string {
	base, err := url.Parse(strings.TrimSpace(s.Server))
	if err != nil || base.Host == "" {
		return s.LoginPath
	}
	rel, err := url.Parse(s.LoginPath)
	if err != nil {
		return s.LoginPath
	}
	return base.ResolveReference(rel).String()
}

func Dir() (string, error) {
	// Test/advanced override (keeps unit tests from touching ~/.jobdash).
	if v := strings.TrimSpace(os.Getenv(EnvConfigDir)); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".jobdash"), nil
}

func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile reads the config file; a missing file is an empty config.
func LoadFile() (*File, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &File{}, nil
		}
		return nil, err
	}
	var f File
	if err := json.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &f, nil
}

// Overrides holds values given explicitly on the command line; empty means unset.
type Overrides struct {
	Server     string
	Cookie     string
	CookieFile string
	LoginPath  string
	Interval   string
}

// Resolve merges flag > env > file > default.
func Resolve(o Overrides, f *File) (Settings, error) {
	if f == nil {
		f = &File{}
	}
	s := Settings{
		Server:     first(o.Server, os.Getenv(EnvServer), f.Server, DefaultServer),
		Cookie:     first(o.Cookie, os.Getenv(EnvCookie)),
		CookieFile: first(o.CookieFile, os.Getenv(EnvCookieFile), f.CookieFile),
		LoginPath:  first(o.LoginPath, os.Getenv(EnvLoginPath), f.LoginPath, authguard.DefaultLoginPath),
		DebugLog:   strings.TrimSpace(os.Getenv(EnvDebugLog)),
	}
	raw := first(o.Interval, os.Getenv(EnvInterval), f.Interval)
	if raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid interval %q: %w", raw, err)
		}
		s.Interval = d
	}
	s.Interval = poller.ClampInterval(s.Interval)

	u, err := url.Parse(s.Server)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return Settings{}, fmt.Errorf("invalid server url %q (expected http(s)://host[:port])", s.Server)
	}
	if !strings.HasPrefix(s.LoginPath, "/") && !strings.Contains(s.LoginPath, "://") {
		s.LoginPath = "/" + s.LoginPath
	}
	return s, nil
}

func first(vals ...string) string {
	for _, v := range vals {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
