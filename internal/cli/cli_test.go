package cli

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"jobdash/internal/config"
)

func runCLI(t *testing.T, args []string) (stdout []byte, stderr []byte, err error) {
	t.Helper()

	cmd := NewRootCmd()

	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.SetOut(&outBuf)
	cmd.SetErr(&errBuf)
	cmd.SetArgs(args)

	e := cmd.Execute()
	return outBuf.Bytes(), errBuf.Bytes(), e
}

// isolate keeps tests away from the developer's ~/.jobdash and environment.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(config.EnvConfigDir, dir)
	for _, k := range []string{config.EnvServer, config.EnvCookie, config.EnvCookieFile, config.EnvInterval, config.EnvLoginPath, config.EnvDebugLog, "JOBDASH_FORMAT"} {
		t.Setenv(k, "")
	}
	openURL = func(string) error { return nil }
	t.Cleanup(func() { openURL = openPath })
	return dir
}

const jobsJSON = `[
  {"name":"backup","task_type":"sync","status":"failed","last_run":"2024-06-01T10:00:00Z","payload":{"path":"/srv"},"message":"timeout","execution_count":3},
  {"name":"backup","task_type":"print","status":"success","last_run":"2024-05-01T10:00:00Z","payload":null},
  {"name":"report","task_type":"mail","status":"running","payload":"<script>alert(1)</script>"}
]`

type scheduler struct {
	*httptest.Server
	hits       atomic.Int32
	lastCookie atomic.Value
	lastAuth   atomic.Value
}

func newScheduler(t *testing.T, status int, body string) *scheduler {
	t.Helper()
	s := &scheduler{}
	s.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/jobs" {
			http.NotFound(w, r)
			return
		}
		s.hits.Add(1)
		s.lastCookie.Store(r.Header.Get("Cookie"))
		s.lastAuth.Store(r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(s.Close)
	return s
}

func TestSnapshotJSON(t *testing.T) {
	isolate(t)
	srv := newScheduler(t, http.StatusOK, jobsJSON)

	out, errOut, err := runCLI(t, []string{"--server", srv.URL, "--cookie", "logged_in=true; access_token=abc%3D", "snapshot", "--output", "json"})
	if err != nil {
		t.Fatalf("snapshot: %v (stderr=%s)", err, errOut)
	}
	var env struct {
		Data struct {
			CountText string `json:"countText"`
			Groups    []struct {
				Name   string `json:"name"`
				Badges []struct {
					Label string `json:"label"`
					Count int    `json:"count"`
				} `json:"badges"`
			} `json:"groups"`
		} `json:"data"`
		Meta struct {
			Server string `json:"server"`
			Failed int    `json:"failed"`
		} `json:"meta"`
	}
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if env.Data.CountText != "3 tasks" {
		t.Fatalf("expected 3 tasks; got %q", env.Data.CountText)
	}
	if len(env.Data.Groups) != 2 || env.Data.Groups[0].Name != "backup" {
		t.Fatalf("unexpected groups: %+v", env.Data.Groups)
	}
	if env.Meta.Server != srv.URL {
		t.Fatalf("expected meta.server %q; got %q", srv.URL, env.Meta.Server)
	}
	if env.Meta.Failed != 1 {
		t.Fatalf("expected one failed task in meta; got %d", env.Meta.Failed)
	}
	if got := srv.lastAuth.Load(); got != "Bearer abc=" {
		t.Fatalf("expected decoded bearer token; got %v", got)
	}
	if got, _ := srv.lastCookie.Load().(string); !strings.Contains(got, "logged_in=true") {
		t.Fatalf("expected cookies to be forwarded; got %q", got)
	}
}

func TestSnapshotTextFilterAndExpand(t *testing.T) {
	isolate(t)
	srv := newScheduler(t, http.StatusOK, jobsJSON)

	out, _, err := runCLI(t, []string{"--server", srv.URL, "--cookie", "logged_in=true", "snapshot", "--no-color", "--filter", "SYNC", "--expand-all"})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	s := string(out)
	for _, want := range []string{"1 tasks", "backup", "Failed (1)", "timeout"} {
		if !strings.Contains(s, want) {
			t.Fatalf("expected output to contain %q; got:\n%s", want, s)
		}
	}
	if strings.Contains(s, "report") {
		t.Fatalf("expected report to be filtered out; got:\n%s", s)
	}
}

func TestSnapshotHTMLEscapesPayload(t *testing.T) {
	isolate(t)
	srv := newScheduler(t, http.StatusOK, jobsJSON)

	out, _, err := runCLI(t, []string{"--server", srv.URL, "--cookie", "logged_in=true", "snapshot", "--output", "html", "--expand-all"})
	if err != nil {
		t.Fatalf("snapshot: %v", err)
	}
	s := string(out)
	if strings.Contains(s, "<script>alert(1)</script>") {
		t.Fatalf("expected payload to be escaped; got:\n%s", s)
	}
	if !strings.Contains(s, `id="task-body"`) {
		t.Fatalf("expected task table; got:\n%s", s)
	}
}

func TestSnapshotNotLoggedInSkipsFetch(t *testing.T) {
	isolate(t)
	srv := newScheduler(t, http.StatusOK, jobsJSON)

	out, errOut, err := runCLI(t, []string{"--server", srv.URL, "snapshot"})
	if err == nil || !IsLoginRequired(err) {
		t.Fatalf("expected login required; got %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected nothing on stdout; got %s", out)
	}
	if !strings.Contains(string(errOut), srv.URL+"/auth/login") {
		t.Fatalf("expected login URL on stderr; got %s", errOut)
	}
	if n := srv.hits.Load(); n != 0 {
		t.Fatalf("expected no fetch; got %d", n)
	}
}

func TestSnapshotUnauthorizedRedirects(t *testing.T) {
	isolate(t)
	srv := newScheduler(t, http.StatusUnauthorized, `{"error":"expired"}`)

	out, errOut, err := runCLI(t, []string{"--server", srv.URL, "--cookie", "logged_in=true", "--login-path", "signin", "snapshot"})
	if !IsLoginRequired(err) {
		t.Fatalf("expected login required; got %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no render after 401; got %s", out)
	}
	if !strings.Contains(string(errOut), srv.URL+"/signin") {
		t.Fatalf("expected custom login path; got %s", errOut)
	}
}

func TestSnapshotServerErrorRendersInlineError(t *testing.T) {
	isolate(t)
	srv := newScheduler(t, http.StatusInternalServerError, "boom")

	out, _, err := runCLI(t, []string{"--server", srv.URL, "--cookie", "logged_in=true", "snapshot"})
	if err == nil || IsLoginRequired(err) {
		t.Fatalf("expected a load failure; got %v", err)
	}
	if !strings.Contains(string(out), "Failed to load tasks.") {
		t.Fatalf("expected inline error row; got:\n%s", out)
	}
}

func TestSnapshotRejectsUnknownOutput(t *testing.T) {
	isolate(t)
	_, _, err := runCLI(t, []string{"--cookie", "logged_in=true", "snapshot", "--output", "yaml"})
	if err == nil || !strings.Contains(err.Error(), "text|html|json") {
		t.Fatalf("expected invalid output error; got %v", err)
	}
}

func TestCookieFileIsRead(t *testing.T) {
	dir := isolate(t)
	srv := newScheduler(t, http.StatusOK, jobsJSON)
	path := filepath.Join(dir, "cookies.txt")
	if err := os.WriteFile(path, []byte("logged_in=true\naccess_token=xyz\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, errOut, err := runCLI(t, []string{"--server", srv.URL, "--cookie-file", path, "snapshot", "--output", "json"})
	if err != nil {
		t.Fatalf("snapshot: %v (stderr=%s)", err, errOut)
	}
	if got := srv.lastAuth.Load(); got != "Bearer xyz" {
		t.Fatalf("expected token from cookie file; got %v", got)
	}
}

func TestConfigPrecedence(t *testing.T) {
	dir := isolate(t)
	if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"server":"http://file.test","interval":"30s","loginPath":"/login"}`), 0o644); err != nil {
		t.Fatal(err)
	}
	t.Setenv(config.EnvServer, "http://env.test")

	out, _, err := runCLI(t, []string{"--interval", "5s", "config"})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	var env struct {
		Data map[string]any `json:"data"`
		Meta map[string]any `json:"meta"`
	}
	if err := json.Unmarshal(out, &env); err != nil {
		t.Fatalf("decode: %v\n%s", err, out)
	}
	if env.Data["server"] != "http://env.test" {
		t.Fatalf("expected env to beat file; got %v", env.Data["server"])
	}
	if env.Data["interval"] != "5s" {
		t.Fatalf("expected flag to beat file; got %v", env.Data["interval"])
	}
	if env.Data["loginUrl"] != "http://env.test/login" {
		t.Fatalf("expected login URL from file path; got %v", env.Data["loginUrl"])
	}
	if env.Data["loggedIn"] != false {
		t.Fatalf("expected loggedIn=false without cookies; got %v", env.Data["loggedIn"])
	}
	if env.Meta["configPath"] != filepath.Join(dir, "config.json") {
		t.Fatalf("unexpected config path: %v", env.Meta["configPath"])
	}
}

func TestInvalidServerIsRejected(t *testing.T) {
	isolate(t)
	_, errOut, err := runCLI(t, []string{"--server", "ftp://nope", "config"})
	if err == nil {
		t.Fatalf("expected error for non-http server")
	}
	if !strings.Contains(string(errOut), "invalid server url") {
		t.Fatalf("expected message on stderr; got %s", errOut)
	}
}
