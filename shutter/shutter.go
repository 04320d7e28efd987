// Package shutter drives the self-timer: three one-second ticks, then a
// capture.
package shutter

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"
)

var ErrCounting = errors.New("countdown already running")

const (
	DefaultCount    = 3
	DefaultInterval = time.Second
)

type Status struct {
	Counting  bool `json:"counting"`
	Remaining int  `json:"remaining"`
}

// Shutter has no cancel of its own. A countdown ends when it fires or when
// the context given to Start is done.
type Shutter struct {
	capture  func()
	count    int
	interval time.Duration

	mu        sync.Mutex
	remaining int
	done      chan struct{}
}

type Option func(*Shutter)

func WithInterval(d time.Duration) Option {
	return func(s *Shutter) { s.interval = d }
}

func WithCount(n int) Option {
	return func(s *Shutter) { s.count = n }
}

func New(capture func(), opts ...Option) *Shutter {
	s := &Shutter{capture: capture, count: DefaultCount, interval: DefaultInterval}
	for _, opt := range opts {
		opt(s)
	}
	if s.count < 1 {
		s.count = 1
	}
	return s
}

// Shoot captures immediately.
func (s *Shutter) Shoot() {
	s.capture()
}

// Start begins a countdown and returns at once.
func (s *Shutter) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.remaining > 0 {
		return ErrCounting
	}
	s.remaining = s.count
	s.done = make(chan struct{})
	go s.run(ctx, s.done)
	return nil
}

func (s *Shutter) run(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.mu.Lock()
			s.remaining = 0
			s.mu.Unlock()
			slog.Debug("countdown abandoned", "err", ctx.Err())
			return
		case <-ticker.C:
		}

		s.mu.Lock()
		s.remaining--
		fire := s.remaining == 0
		s.mu.Unlock()
		if fire {
			s.capture()
			return
		}
	}
}

func (s *Shutter) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Status{Counting: s.remaining > 0, Remaining: s.remaining}
}

// Wait blocks until the current countdown, if any, has finished.
func (s *Shutter) Wait() {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done != nil {
		<-done
	}
}
