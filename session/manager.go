// Package session keeps the live studio sessions of connected clients.
package session

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/chaos-io/photobooth/camera"
	"github.com/chaos-io/photobooth/compose"
	"github.com/chaos-io/photobooth/drag"
	"github.com/chaos-io/photobooth/shutter"
	"github.com/chaos-io/photobooth/studio"
)

const (
	DefaultTTL        = 30 * time.Minute
	DefaultReaperSpec = "@every 1m"
)

type Manager struct {
	device     camera.Device
	compositor *compose.Compositor
	ttl        time.Duration
	countdown  time.Duration
	now        func() time.Time
	onCapture  func(studio.Photo)

	mu       sync.RWMutex
	sessions map[string]*Session

	cron *cron.Cron
}

type Option func(*Manager)

func WithTTL(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.ttl = d
		}
	}
}

func WithCountdownInterval(d time.Duration) Option {
	return func(m *Manager) {
		if d > 0 {
			m.countdown = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// WithCaptureHook is called after every stored photo, timed or not.
func WithCaptureHook(fn func(studio.Photo)) Option {
	return func(m *Manager) { m.onCapture = fn }
}

func NewManager(device camera.Device, compositor *compose.Compositor, opts ...Option) *Manager {
	m := &Manager{
		device:     device,
		compositor: compositor,
		ttl:        DefaultTTL,
		countdown:  shutter.DefaultInterval,
		now:        time.Now,
		sessions:   map[string]*Session{},
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Open creates a session and acquires its camera. A camera failure does not
// fail the session; it is kept as the session's CameraError.
func (m *Manager) Open(ctx context.Context) *Session {
	sctx, cancel := context.WithCancel(context.Background())
	s := &Session{
		ID:         uuid.NewString(),
		Studio:     studio.New(m.now),
		Surface:    drag.NewSurface(),
		Layout:     NewLayout(),
		compositor: m.compositor,
		onCapture:  m.onCapture,
		ctx:        sctx,
		cancel:     cancel,
		handles:    map[string]handle{},
	}
	s.Shutter = shutter.New(s.shoot, shutter.WithInterval(m.countdown))
	s.touch(m.now())

	stream, err := m.device.Open(ctx)
	if err != nil {
		slog.Warn("camera unavailable", "session", s.ID, "err", err)
		s.cameraErr = err
	} else {
		s.stream = stream
	}

	m.mu.Lock()
	m.sessions[s.ID] = s
	m.mu.Unlock()

	slog.Info("session opened", "session", s.ID, "camera", err == nil)
	return s
}

// Get returns a live session and marks it as recently used.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}
	s.touch(m.now())
	return s, nil
}

func (m *Manager) Close(id string) error {
	m.mu.Lock()
	s, ok := m.sessions[id]
	delete(m.sessions, id)
	m.mu.Unlock()
	if !ok {
		return ErrNotFound
	}
	slog.Info("session closed", "session", id)
	return s.Close()
}

func (m *Manager) CloseAll() {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = map[string]*Session{}
	m.mu.Unlock()

	for id, s := range sessions {
		if err := s.Close(); err != nil {
			slog.Warn("close session", "session", id, "err", err)
		}
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// Reap closes the sessions idle for longer than the TTL and returns how many
// were closed.
func (m *Manager) Reap() int {
	deadline := m.now().Add(-m.ttl)

	var idle []*Session
	m.mu.Lock()
	for id, s := range m.sessions {
		if s.LastSeen().Before(deadline) {
			idle = append(idle, s)
			delete(m.sessions, id)
		}
	}
	m.mu.Unlock()

	for _, s := range idle {
		if err := s.Close(); err != nil {
			slog.Warn("close idle session", "session", s.ID, "err", err)
		}
	}
	if len(idle) > 0 {
		slog.Info("reaped idle sessions", "count", len(idle))
	}
	return len(idle)
}

// StartReaper schedules Reap on spec, a cron expression such as "@every 1m".
func (m *Manager) StartReaper(spec string) error {
	if spec == "" {
		spec = DefaultReaperSpec
	}
	c := cron.New()
	if _, err := c.AddFunc(spec, func() { m.Reap() }); err != nil {
		return err
	}
	c.Start()
	m.cron = c
	return nil
}

// Stop halts the reaper, waits for a running reap and closes every session.
func (m *Manager) Stop() {
	if m.cron != nil {
		<-m.cron.Stop().Done()
	}
	m.CloseAll()
}
