package ratelimit

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Defaults for Config.
const (
	DefaultLimit  = 10
	DefaultWindow = time.Second
)

// Limiter admits outbound requests. Implementations must be safe for
// concurrent use.
type Limiter interface {
	// Wait blocks until one more request may be issued without
	// exceeding the ceiling, records the admission, and returns.
	// It returns early with ctx.Err() if the context is cancelled.
	Wait(ctx context.Context) error
}

// Config holds the sliding window configuration.
type Config struct {
	// Limit is the maximum number of admissions per window.
	// Zero means DefaultLimit.
	Limit int

	// Window is the trailing window duration. Zero means DefaultWindow.
	Window time.Duration
}

// Validate checks if the configuration is valid.
func (c Config) Validate() error {
	if c.Limit < 0 {
		return fmt.Errorf("limit must be positive, got %d", c.Limit)
	}
	if c.Window < 0 {
		return fmt.Errorf("window must be positive, got %v", c.Window)
	}
	return nil
}

// SlidingWindow implements Limiter with a sliding window log.
//
// It stores the timestamp of every admission inside the trailing
// window. Timestamps are appended in monotonically non-decreasing
// order, so only the head of the log can be stale and eviction is a
// single scan from the front. The log never grows past Limit entries.
type SlidingWindow struct {
	limit  int
	window time.Duration

	mu     sync.Mutex
	stamps []time.Time

	now   func() time.Time
	after func(time.Duration) <-chan time.Time
}

// Option customizes a SlidingWindow.
type Option func(*SlidingWindow)

// WithClock replaces the time source and timer, so tests can run on
// virtual time.
func WithClock(now func() time.Time, after func(time.Duration) <-chan time.Time) Option {
	return func(l *SlidingWindow) {
		l.now = now
		l.after = after
	}
}

// NewSlidingWindow creates a sliding window limiter.
func NewSlidingWindow(cfg Config, opts ...Option) (*SlidingWindow, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid rate limit config: %w", err)
	}
	if cfg.Limit == 0 {
		cfg.Limit = DefaultLimit
	}
	if cfg.Window == 0 {
		cfg.Window = DefaultWindow
	}

	l := &SlidingWindow{
		limit:  cfg.Limit,
		window: cfg.Window,
		stamps: make([]time.Time, 0, cfg.Limit),
		now:    time.Now,
		after:  time.After,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Wait blocks until admission is safe, records the admission
// timestamp, and returns.
//
// When the log is full, the wait is exactly the time until the oldest
// in-window admission slides out. A zero or negative computed wait
// admits immediately without suspending.
func (l *SlidingWindow) Wait(ctx context.Context) error {
	for {
		l.mu.Lock()
		now := l.now()
		l.evict(now.Add(-l.window))

		if len(l.stamps) < l.limit {
			l.stamps = append(l.stamps, now)
			l.mu.Unlock()
			return nil
		}

		wait := l.stamps[0].Sub(now.Add(-l.window))
		l.mu.Unlock()

		if wait <= 0 {
			continue
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.after(wait):
			// Re-check under the lock: another waiter may have taken
			// the slot that just opened.
		}
	}
}

// evict drops timestamps at or before windowStart. An admission that
// has reached the window boundary no longer counts against the
// ceiling. Caller must hold the mutex.
func (l *SlidingWindow) evict(windowStart time.Time) {
	i := 0
	for i < len(l.stamps) && !l.stamps[i].After(windowStart) {
		i++
	}
	if i > 0 {
		l.stamps = append(l.stamps[:0], l.stamps[i:]...)
	}
}

// inWindow reports how many admissions are currently logged. Caller
// visibility is test-only; the count is already evicted on each Wait.
func (l *SlidingWindow) inWindow() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.stamps)
}

// Ensure interface compliance at compile time.
var _ Limiter = (*SlidingWindow)(nil)
