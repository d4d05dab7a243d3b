// Package session reads the login flag and bearer token set by the external login flow.
package session

import (
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strings"
)

const (
	LoggedInCookie    = "logged_in"
	AccessTokenCookie = "access_token"
)

type pair struct {
	key   string
	value string
}

// Session is a parsed, read-only view of a cookie store.
type Session struct {
	pairs []pair
}

// Parse reads semicolon-separated key=value pairs (the document.cookie / Cookie header form).
// Pairs without '=' are ignored; the first occurrence of a key wins.
func Parse(raw string) Session {
	var s Session
	seen := map[string]bool{}
	for _, part := range strings.Split(raw, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		k, v, ok := strings.Cut(part, "=")
		if !ok {
			continue
		}
		k = strings.TrimSpace(k)
		if k == "" || seen[k] {
			continue
		}
		seen[k] = true
		s.pairs = append(s.pairs, pair{key: k, value: strings.TrimSpace(v)})
	}
	return s
}

// Load combines a raw cookie string with the contents of a cookie file.
// Pairs from raw take precedence. The file is read on every call so an
// external login flow can rewrite it while jobdash is running.
func Load(raw, file string) (Session, error) {
	file = strings.TrimSpace(file)
	if file == "" {
		return Parse(raw), nil
	}
	b, err := os.ReadFile(file)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Parse(raw), nil
		}
		return Session{}, fmt.Errorf("read cookie file: %w", err)
	}
	// Cookie files may hold one pair per line.
	fromFile := strings.ReplaceAll(strings.TrimSpace(string(b)), "\n", ";")
	if strings.TrimSpace(raw) == "" {
		return Parse(fromFile), nil
	}
	return Parse(raw + ";" + fromFile), nil
}

func (s Session) get(key string) (string, bool) {
	for _, p := range s.pairs {
		if p.key == key {
			return p.value, true
		}
	}
	return "", false
}

// LoggedIn reports whether the logged_in flag is present and exactly "true".
func (s Session) LoggedIn() bool {
	v, ok := s.get(LoggedInCookie)
	return ok && v == "true"
}

// AccessToken returns the URL-decoded access_token value.
func (s Session) AccessToken() (string, bool) {
	v, ok := s.get(AccessTokenCookie)
	if !ok || v == "" {
		return "", false
	}
	if dec, err := url.PathUnescape(v); err == nil {
		v = dec
	}
	if v == "" {
		return "", false
	}
	return v, true
}

// Cookies returns the pairs as request cookies, values kept in their encoded form.
func (s Session) Cookies() []*http.Cookie {
	out := make([]*http.Cookie, 0, len(s.pairs))
	for _, p := range s.pairs {
		out = append(out, &http.Cookie{Name: p.key, Value: p.value})
	}
	return out
}

func (s Session) Len() int { return len(s.pairs) }
