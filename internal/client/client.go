// Package client fetches task data from the scheduler API with session credentials attached.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"jobdash/internal/model"
	"jobdash/internal/session"

	"github.com/google/uuid"
)

const JobsPath = "/api/jobs"

// authExemptPrefix marks routes served to anonymous users (login and its callback).
const authExemptPrefix = "/auth/"

var ErrUnauthorized = errors.New("unauthorized")

// StatusError is returned for non-2xx responses other than 401.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := strings.TrimSpace(e.Body)
	if body == "" {
		return fmt.Sprintf("http %d", e.StatusCode)
	}
	if len(body) > 200 {
		body = body[:200] + "…"
	}
	return fmt.Sprintf("http %d: %s", e.StatusCode, body)
}

// DecodeError is returned when a 2xx body is not the expected JSON.
type DecodeError struct {
	Path string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("decode %s: %v", e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

func IsUnauthorized(err error) bool { return errors.Is(err, ErrUnauthorized) }

// Client talks to the scheduler API.
type Client struct {
	BaseURL string
	// Session is consulted on every request so credential changes are picked up
	// without restarting.
	Session func() (session.Session, error)
	HTTP    *http.Client
}

// New constructs a client with a 30s request timeout.
func New(baseURL string, sess func() (session.Session, error)) *Client {
	return &Client{
		BaseURL: baseURL,
		Session: sess,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

// Jobs calls GET /api/jobs.
func (c *Client) Jobs(ctx context.Context) ([]model.TaskRecord, error) {
	var out []model.TaskRecord
	if err := c.Fetch(ctx, JobsPath, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Fetch performs a GET on path and decodes the JSON body into out.
func (c *Client) Fetch(ctx context.Context, path string, out any) error {
	endpoint, err := c.Resolve(path)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if !isAuthExempt(path) {
		if err := c.applyCredentials(req); err != nil {
			return err
		}
	}

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", path, err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return &StatusError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return &DecodeError{Path: path, Err: err}
	}
	return nil
}

// Resolve joins path onto the configured base URL.
func (c *Client) Resolve(path string) (string, error) {
	base, err := url.Parse(strings.TrimSpace(c.BaseURL))
	if err != nil {
		return "", fmt.Errorf("invalid server url: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return "", fmt.Errorf("invalid server url: %q", c.BaseURL)
	}
	rel, err := url.Parse(path)
	if err != nil {
		return "", err
	}
	return base.ResolveReference(rel).String(), nil
}

func (c *Client) applyCredentials(req *http.Request) error {
	if c.Session == nil {
		return nil
	}
	sess, err := c.Session()
	if err != nil {
		return err
	}
	if tok, ok := sess.AccessToken(); ok {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	// Same-origin credential inclusion: the session cookies only ever go to BaseURL.
	for _, ck := range sess.Cookies() {
		req.AddCookie(ck)
	}
	return nil
}

func (c *Client) httpClient() *http.Client {
	if c.HTTP != nil {
		return c.HTTP
	}
	return http.DefaultClient
}

func isAuthExempt(path string) bool {
	p := path
	if u, err := url.Parse(path); err == nil && u.Path != "" {
		p = u.Path
	}
	return strings.HasPrefix(p, authExemptPrefix)
}
