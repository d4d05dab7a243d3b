package web

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"jobdash/internal/authguard"
	"jobdash/internal/client"
	"jobdash/internal/dashboard"
	"jobdash/internal/model"
	"jobdash/internal/session"
	"jobdash/internal/viewstate"
)

const loginURL = "http://sched.test/auth/login"

type stubFetcher struct {
	mu    sync.Mutex
	tasks []model.TaskRecord
	err   error
	calls int
}

func (f *stubFetcher) Jobs(ctx context.Context) ([]model.TaskRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.tasks, f.err
}

func (f *stubFetcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func newTestServer(t *testing.T, f *stubFetcher, cookies string) *Server {
	t.Helper()
	d := dashboard.New(dashboard.Config{
		Fetcher: f,
		Guard:   authguard.Guard{LoginURL: loginURL},
		Session: func() (session.Session, error) { return session.Parse(cookies), nil },
	})
	s, err := NewServer(ServerConfig{Dashboard: d, Interval: time.Second})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	return s
}

func sampleTasks() []model.TaskRecord {
	return []model.TaskRecord{
		{Name: "backup", TaskType: "sync", Status: "failed", Message: "timeout"},
		{Name: "report", TaskType: "mail", Status: "success"},
	}
}

// stream reads an SSE response until the handler gives up at the deadline.
func stream(t *testing.T, s *Server, path string, d time.Duration) string {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), d)
	defer cancel()
	req := httptest.NewRequest(http.MethodGet, path, nil).WithContext(ctx)
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec.Body.String()
}

func TestNewServerRequiresDashboard(t *testing.T) {
	if _, err := NewServer(ServerConfig{}); err == nil {
		t.Fatalf("expected error without a dashboard")
	}
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, &stubFetcher{}, "logged_in=true")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	if rec.Code != http.StatusOK || strings.TrimSpace(rec.Body.String()) != "ok" {
		t.Fatalf("expected 200 ok; got %d %q", rec.Code, rec.Body.String())
	}
}

func TestHomeRedirectsWhenNotLoggedIn(t *testing.T) {
	f := &stubFetcher{tasks: sampleTasks()}
	s := newTestServer(t, f, "")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302; got %d", rec.Code)
	}
	if got := rec.Header().Get("Location"); got != loginURL {
		t.Fatalf("expected Location %q; got %q", loginURL, got)
	}
	if f.callCount() != 0 {
		t.Fatalf("expected no fetch before login; got %d", f.callCount())
	}
}

func TestHomeRendersLivePage(t *testing.T) {
	s := newTestServer(t, &stubFetcher{tasks: sampleTasks()}, "logged_in=true")
	s.refresh(context.Background())

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200; got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{`id="jobdash-main"`, `id="filter-input"`, `id="task-count"`, "2 tasks", "@get('/events')", "data-signals"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected page to contain %q; got:\n%s", want, body)
		}
	}
}

func TestUnknownPathIs404(t *testing.T) {
	s := newTestServer(t, &stubFetcher{}, "logged_in=true")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404; got %d", rec.Code)
	}
}

func TestFilterSetsDashboardFilter(t *testing.T) {
	s := newTestServer(t, &stubFetcher{tasks: sampleTasks()}, "logged_in=true")
	req := httptest.NewRequest(http.MethodPost, "/filter", strings.NewReader(`{"filter":"MAIL"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204; got %d: %s", rec.Code, rec.Body.String())
	}
	if got := s.dash.Filter(); got != "MAIL" {
		t.Fatalf("expected filter %q; got %q", "MAIL", got)
	}

	s.refresh(context.Background())
	if p := s.dash.Page(); p.CountText != "1 tasks" {
		t.Fatalf("expected filtered count; got %q", p.CountText)
	}
}

func TestFilterRejectsBadSignals(t *testing.T) {
	s := newTestServer(t, &stubFetcher{}, "logged_in=true")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/filter", strings.NewReader(`{not json`)))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400; got %d", rec.Code)
	}
}

func TestToggleFlipsExpansionAndBroadcasts(t *testing.T) {
	s := newTestServer(t, &stubFetcher{tasks: sampleTasks()}, "logged_in=true")
	s.refresh(context.Background())

	ch, cancel := s.hub.subscribe()
	defer cancel()

	key := viewstate.Key("backup")
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/groups/"+key+"/toggle", nil))
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204; got %d", rec.Code)
	}
	if !s.dash.Expanded(key) {
		t.Fatalf("expected %s to be expanded", key)
	}
	select {
	case <-ch:
	default:
		t.Fatalf("expected a broadcast after toggle")
	}
	if !s.dash.Page().Groups[0].Expanded {
		t.Fatalf("expected page to re-render with the group expanded")
	}
}

func TestEventsPatchesMainFragment(t *testing.T) {
	s := newTestServer(t, &stubFetcher{tasks: sampleTasks()}, "logged_in=true")
	s.refresh(context.Background())

	body := stream(t, s, "/events", 100*time.Millisecond)
	for _, want := range []string{"datastar-patch-elements", "#jobdash-main", "2 tasks", "backup"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected stream to contain %q; got:\n%s", want, body)
		}
	}
	if n := s.hub.count(); n != 0 {
		t.Fatalf("expected stream to unsubscribe on close; got %d subscribers", n)
	}
}

func TestEventsRedirectOnUnauthorized(t *testing.T) {
	s := newTestServer(t, &stubFetcher{err: client.ErrUnauthorized}, "logged_in=true")
	s.refresh(context.Background())

	body := stream(t, s, "/events", time.Second)
	if !strings.Contains(body, loginURL) {
		t.Fatalf("expected redirect to %s; got:\n%s", loginURL, body)
	}

	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusFound {
		t.Fatalf("expected page load to redirect after a 401; got %d", rec.Code)
	}
}

func TestServePollsUntilCancelled(t *testing.T) {
	f := &stubFetcher{tasks: sampleTasks()}
	s := newTestServer(t, f, "logged_in=true")

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Serve(ctx, ln) }()

	deadline := time.Now().Add(2 * time.Second)
	for f.callCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if f.callCount() == 0 {
		t.Fatalf("expected an immediate refresh on start")
	}

	resp, err := http.Get("http://" + ln.Addr().String() + "/health")
	if err != nil {
		t.Fatalf("GET /health: %v", err)
	}
	_ = resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("expected clean shutdown; got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("Serve did not return after cancel")
	}
}

func TestPollerSkipsFetchWithoutLoginFlag(t *testing.T) {
	f := &stubFetcher{tasks: sampleTasks()}
	s := newTestServer(t, f, "access_token=abc")

	ch, cancel := s.hub.subscribe()
	defer cancel()
	s.refresh(context.Background())
	select {
	case <-ch:
	default:
		t.Fatalf("expected open streams to be told about the redirect")
	}

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	ctx, stop := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer stop()
	if err := s.Serve(ctx, ln); err != nil {
		t.Fatalf("Serve: %v", err)
	}

	if n := f.callCount(); n != 0 {
		t.Fatalf("expected no fetch while not logged in; got %d", n)
	}
	if re := s.pendingRedirect(); re == nil || re.URL != loginURL {
		t.Fatalf("expected pending redirect to %s; got %+v", loginURL, re)
	}
}
