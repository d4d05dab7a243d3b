// Package web serves the dashboard to a browser and keeps it live over datastar SSE.
package web

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"jobdash/internal/authguard"
	"jobdash/internal/dashboard"
	"jobdash/internal/debuglog"
	"jobdash/internal/poller"
	"jobdash/internal/render"

	"github.com/starfederation/datastar-go/datastar"
)

const mainSelector = "#jobdash-main"

type ServerConfig struct {
	Dashboard *dashboard.Dashboard
	Interval  time.Duration
	Title     string
	Log       *debuglog.Logger
}

// Server holds one shared dashboard; every connected browser sees the same
// filter and expansion state.
type Server struct {
	cfg    ServerConfig
	dash   *dashboard.Dashboard
	poller *poller.Poller
	hub    *resourceHub
	log    *debuglog.Logger

	mu       sync.RWMutex
	redirect *authguard.RedirectError
}

func NewServer(cfg ServerConfig) (*Server, error) {
	if cfg.Dashboard == nil {
		return nil, errors.New("web: dashboard is nil")
	}
	cfg.Title = strings.TrimSpace(cfg.Title)
	if cfg.Title == "" {
		cfg.Title = "Jobs"
	}
	s := &Server{
		cfg:  cfg,
		dash: cfg.Dashboard,
		hub:  newResourceHub(),
		log:  cfg.Log,
	}
	s.poller = poller.New(cfg.Interval, s.refresh)
	return s, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", s.handleHealth)
	mux.HandleFunc("GET /events", s.handleEvents)
	mux.HandleFunc("POST /filter", s.handleFilter)
	mux.HandleFunc("POST /groups/{key}/toggle", s.handleToggle)
	mux.HandleFunc("GET /{$}", s.handleHome)
	return mux
}

// Serve runs the poller and serves HTTP on ln until ctx is cancelled.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		// Streams end when ctx does, so Shutdown isn't held open by SSE clients.
		BaseContext: func(net.Listener) context.Context { return ctx },
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		s.poller.Run(ctx)
	}()

	errCh := make(chan error, 1)
	go func() { errCh <- srv.Serve(ln) }()

	var err error
	select {
	case <-ctx.Done():
		shutdownCtx, done := context.WithTimeout(context.Background(), 5*time.Second)
		defer done()
		err = srv.Shutdown(shutdownCtx)
	case err = <-errCh:
	}
	cancel()
	wg.Wait()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// refresh is the poller callback: one full cycle, then a broadcast to all streams.
func (s *Server) refresh(ctx context.Context) {
	// No fetch without the login flag; open streams are sent to the login page.
	if err := s.dash.Preflight(); err != nil {
		if re, ok := authguard.AsRedirect(err); ok {
			s.log.Logf("web refresh outcome=redirect url=%s reason=%q", re.URL, re.Reason)
			s.setRedirect(re)
			s.hub.broadcast()
			return
		}
		s.log.Logf("web refresh outcome=error err=%q", err.Error())
		return
	}
	seq := s.dash.Begin()
	c := s.dash.Fetch(ctx, seq)
	out := s.dash.Apply(c)
	switch {
	case out.Stale:
		s.log.Logf("web refresh seq=%d outcome=stale duration=%s", out.Seq, c.Duration)
		return
	case out.Redirect != nil:
		s.log.Logf("web refresh seq=%d outcome=redirect url=%s", out.Seq, out.Redirect.URL)
		s.setRedirect(out.Redirect)
	case out.Err != nil:
		s.log.Logf("web refresh seq=%d outcome=error duration=%s err=%q", out.Seq, c.Duration, out.Err.Error())
		s.setRedirect(nil)
	default:
		s.log.Logf("web refresh seq=%d outcome=ok duration=%s tasks=%d", out.Seq, c.Duration, len(c.Tasks))
		s.setRedirect(nil)
	}
	s.hub.broadcast()
}

func (s *Server) setRedirect(re *authguard.RedirectError) {
	s.mu.Lock()
	s.redirect = re
	s.mu.Unlock()
}

// pendingRedirect reports where a browser must go instead of the dashboard.
func (s *Server) pendingRedirect() *authguard.RedirectError {
	if err := s.dash.Preflight(); err != nil {
		if re, ok := authguard.AsRedirect(err); ok {
			return re
		}
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.redirect
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok\n"))
}

type signalsVM struct {
	Filter string `json:"filter"`
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	if re := s.pendingRedirect(); re != nil {
		http.Redirect(w, r, re.URL, http.StatusFound)
		return
	}
	sig, err := json.Marshal(signalsVM{Filter: s.dash.Filter()})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	var b strings.Builder
	err = render.WriteDocument(&b, render.DocumentVM{
		Title:   s.cfg.Title,
		Page:    s.dash.Page(),
		Live:    true,
		Signals: string(sig),
	})
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(b.String()))
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	s.serveDatastarElementsStream(w, r, mainSelector, datastar.ElementPatchModeOuter, func() (string, error) {
		return render.Fragment(s.dash.Page(), true)
	})
}

func (s *Server) serveDatastarElementsStream(w http.ResponseWriter, r *http.Request, selector string, mode datastar.ElementPatchMode, renderFn func() (string, error)) {
	// Subscribe before the first patch so a refresh landing in between isn't missed.
	ch, cancel := s.hub.subscribe()
	defer cancel()

	sse := datastar.NewSSE(w, r)

	patch := func() bool {
		if re := s.pendingRedirect(); re != nil {
			_ = sse.Redirect(re.URL)
			return false
		}
		html, err := renderFn()
		if err != nil {
			_ = sse.ExecuteScript(fmt.Sprintf(`console.error(%q)`, err.Error()))
			return true
		}
		_ = sse.PatchElements(html, datastar.WithSelector(selector), datastar.WithMode(mode))
		return true
	}
	if !patch() {
		return
	}

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	for {
		select {
		case <-sse.Context().Done():
			return
		case <-keepAlive.C:
			_ = sse.PatchSignals([]byte(`{}`))
		case <-ch:
			if !patch() {
				return
			}
		}
	}
}

func (s *Server) handleFilter(w http.ResponseWriter, r *http.Request) {
	var sig signalsVM
	if err := datastar.ReadSignals(r, &sig); err != nil {
		http.Error(w, "invalid signals", http.StatusBadRequest)
		return
	}
	s.dash.SetFilter(sig.Filter)
	s.poller.Trigger()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	key := strings.TrimSpace(r.PathValue("key"))
	if key == "" {
		http.NotFound(w, r)
		return
	}
	expanded := s.dash.Toggle(key)
	s.log.Logf("web toggle key=%s expanded=%t", key, expanded)
	s.hub.broadcast()
	w.WriteHeader(http.StatusNoContent)
}
