// Package poller drives refresh cycles on a fixed interval and orders their results.
package poller

import (
	"context"
	"sync"
	"time"
)

const (
	DefaultInterval = 10 * time.Second
	MinInterval     = time.Second
)

// Sequencer hands out monotonic refresh ids and decides which results may be applied.
//
// Refreshes may overlap. A result is accepted only if no newer refresh has been
// applied yet, so a slow response can never overwrite a newer render.
type Sequencer struct {
	mu      sync.Mutex
	issued  uint64
	applied uint64
}

func (s *Sequencer) Next() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

// Accept reports whether the result of refresh seq should be applied, and records it if so.
func (s *Sequencer) Accept(seq uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq <= s.applied || seq > s.issued {
		return false
	}
	s.applied = seq
	return true
}

func (s *Sequencer) Applied() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applied
}

// Poller calls Refresh once immediately, then every Interval, plus whenever Trigger is called.
type Poller struct {
	Interval time.Duration
	Refresh  func(ctx context.Context)

	once    sync.Once
	trigger chan struct{}
	wg      sync.WaitGroup
}

func New(interval time.Duration, refresh func(ctx context.Context)) *Poller {
	return &Poller{Interval: interval, Refresh: refresh}
}

func (p *Poller) init() {
	p.once.Do(func() {
		p.trigger = make(chan struct{}, 1)
	})
}

// Trigger requests an immediate refresh. Requests made while one is pending coalesce.
func (p *Poller) Trigger() {
	p.init()
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

// Run blocks until ctx is done. Each refresh runs on its own goroutine so a hung
// request never delays the next tick. Run waits for in-flight refreshes before returning.
func (p *Poller) Run(ctx context.Context) {
	p.init()
	interval := ClampInterval(p.Interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	defer p.wg.Wait()

	p.spawn(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.spawn(ctx)
		case <-p.trigger:
			p.spawn(ctx)
		}
	}
}

func (p *Poller) spawn(ctx context.Context) {
	if p.Refresh == nil {
		return
	}
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.Refresh(ctx)
	}()
}

// ClampInterval applies the default and the lower bound.
func ClampInterval(d time.Duration) time.Duration {
	if d <= 0 {
		return DefaultInterval
	}
	if d < MinInterval {
		return MinInterval
	}
	return d
}
