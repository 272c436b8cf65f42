// Package ratelimit provides a fixed-window, in-process request limiter
// for the scan/redirect path. It is deliberately not distributed: entries
// live in process memory and do not survive restarts.
package ratelimit

import (
	"sync"
	"time"
)

// Result is the outcome of a limit check. There is no error path; a check
// always returns a decision.
type Result struct {
	Allowed   bool
	Remaining int
}

type entry struct {
	count   int
	resetAt time.Time
}

// Limiter counts requests per key over a fixed window. A burst that
// straddles a window boundary can admit up to twice the limit in a short
// span; that is inherent to fixed windows and accepted here.
type Limiter struct {
	window time.Duration
	max    int
	now    func() time.Time

	mu      sync.Mutex
	entries map[string]*entry

	stopOnce sync.Once
	stop     chan struct{}
}

// New constructs a limiter and starts its sweep goroutine, which drops
// expired entries every window. Expired entries are also replaced lazily
// on access, so the sweep only bounds memory.
func New(window time.Duration, max int) *Limiter {
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 30
	}
	l := &Limiter{
		window:  window,
		max:     max,
		now:     time.Now,
		entries: make(map[string]*entry),
		stop:    make(chan struct{}),
	}
	go l.sweep()
	return l
}

// Check records one request for key and reports whether it is admitted.
func (l *Limiter) Check(key string) Result {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	e, ok := l.entries[key]
	if !ok || now.After(e.resetAt) {
		l.entries[key] = &entry{count: 1, resetAt: now.Add(l.window)}
		return Result{Allowed: true, Remaining: l.max - 1}
	}

	if e.count >= l.max {
		return Result{Allowed: false, Remaining: 0}
	}

	e.count++
	return Result{Allowed: true, Remaining: l.max - e.count}
}

// Stop terminates the sweep goroutine. Safe to call more than once.
func (l *Limiter) Stop() {
	l.stopOnce.Do(func() { close(l.stop) })
}

func (l *Limiter) sweep() {
	ticker := time.NewTicker(l.window)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			now := l.now()
			l.mu.Lock()
			for key, e := range l.entries {
				if now.After(e.resetAt) {
					delete(l.entries, key)
				}
			}
			l.mu.Unlock()
		}
	}
}
