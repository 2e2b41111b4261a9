package server

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/weft-dev/weft/pkg/middleware"
	"github.com/weft-dev/weft/pkg/persist"
	"github.com/weft-dev/weft/pkg/session"
)

// ErrManagerClosed is returned when a request arrives after the
// manager shut down.
var ErrManagerClosed = errors.New("server: session manager is closed")

// SessionFactory creates the session for a new browser, keyed by its
// session id. The factory builds the root component tree and page
// store; the manager handles lifecycle around it.
type SessionFactory func(id string) (*session.Session, error)

// Manager owns the live sessions of one server process. It creates
// them on demand, sweeps the idle ones, and round-trips continuity
// records through an optional persist store.
type Manager struct {
	factory    SessionFactory
	logger     *slog.Logger
	ttl        time.Duration
	stateStore persist.Store
	metrics    *middleware.Metrics

	mu       sync.Mutex
	sessions map[string]*session.Session
	closed   bool
	done     chan struct{}
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerConfig)

type managerConfig struct {
	logger        *slog.Logger
	ttl           time.Duration
	sweepInterval time.Duration
	stateStore    persist.Store
	metrics       *middleware.Metrics
}

// WithSessionTTL sets how long an idle session survives before the
// sweeper drops it. Default: 30 minutes.
func WithSessionTTL(d time.Duration) ManagerOption {
	return func(c *managerConfig) {
		c.ttl = d
	}
}

// WithSweepInterval sets how often idle sessions are swept.
// Default: 1 minute.
func WithSweepInterval(d time.Duration) ManagerOption {
	return func(c *managerConfig) {
		c.sweepInterval = d
	}
}

// WithStateStore persists session continuity records, so a restarted
// server resumes page id sequences instead of reissuing ids.
func WithStateStore(store persist.Store) ManagerOption {
	return func(c *managerConfig) {
		c.stateStore = store
	}
}

// WithManagerLogger sets the logger. Default: slog.Default().
func WithManagerLogger(logger *slog.Logger) ManagerOption {
	return func(c *managerConfig) {
		c.logger = logger
	}
}

// WithMetrics wires the active-session gauge of a metrics handle.
func WithMetrics(m *middleware.Metrics) ManagerOption {
	return func(c *managerConfig) {
		c.metrics = m
	}
}

// NewManager creates a session manager around the given factory.
func NewManager(factory SessionFactory, opts ...ManagerOption) *Manager {
	cfg := &managerConfig{
		logger:        slog.Default(),
		ttl:           30 * time.Minute,
		sweepInterval: 1 * time.Minute,
	}
	for _, opt := range opts {
		opt(cfg)
	}

	m := &Manager{
		factory:    factory,
		logger:     cfg.logger,
		ttl:        cfg.ttl,
		stateStore: cfg.stateStore,
		metrics:    cfg.metrics,
		sessions:   make(map[string]*session.Session),
		done:       make(chan struct{}),
	}

	go m.sweepLoop(cfg.sweepInterval)
	return m
}

// GetOrCreate returns the session for id, creating it on first use.
// A freshly created session resumes from its continuity record when
// the state store holds one.
func (m *Manager) GetOrCreate(ctx context.Context, id string) (*session.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, ErrManagerClosed
	}

	if s, ok := m.sessions[id]; ok {
		return s, nil
	}

	s, err := m.factory(id)
	if err != nil {
		return nil, err
	}

	if m.stateStore != nil {
		data, err := m.stateStore.Load(ctx, id)
		if err != nil {
			m.logger.Warn("continuity load failed", "session", id, "error", err)
		} else if data != nil {
			state, err := persist.UnmarshalState(data)
			if err != nil {
				m.logger.Warn("continuity record unreadable", "session", id, "error", err)
			} else {
				s.RestoreContinuity(state)
				m.logger.Debug("session resumed", "session", id)
			}
		}
	}

	m.sessions[id] = s
	if m.metrics != nil {
		m.metrics.SessionStarted()
	}
	m.logger.Debug("session created", "session", id)
	return s, nil
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// Close stops the sweeper and saves every session's continuity record.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.done)

	records := make(map[string]persist.StateData, len(m.sessions))
	if m.stateStore != nil {
		expiresAt := time.Now().Add(m.ttl)
		for id, s := range m.sessions {
			data, err := s.ContinuityState().Marshal()
			if err != nil {
				m.logger.Warn("continuity marshal failed", "session", id, "error", err)
				continue
			}
			records[id] = persist.StateData{Data: data, ExpiresAt: expiresAt}
		}
	}
	m.sessions = nil
	m.mu.Unlock()

	if m.stateStore != nil && len(records) > 0 {
		if err := m.stateStore.SaveAll(ctx, records); err != nil {
			return err
		}
	}
	return nil
}

// sweepLoop periodically drops idle sessions.
func (m *Manager) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.done:
			return
		}
	}
}

// sweep removes sessions idle past the TTL, saving their continuity
// records first.
func (m *Manager) sweep() {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return
	}

	cutoff := time.Now().Add(-m.ttl)
	var idle []string
	for id, s := range m.sessions {
		if s.LastActive().Before(cutoff) {
			idle = append(idle, id)
		}
	}

	dropped := make(map[string]*session.Session, len(idle))
	for _, id := range idle {
		dropped[id] = m.sessions[id]
		delete(m.sessions, id)
		if m.metrics != nil {
			m.metrics.SessionEnded()
		}
	}
	m.mu.Unlock()

	if m.stateStore == nil || len(dropped) == 0 {
		if len(dropped) > 0 {
			m.logger.Debug("swept idle sessions", "count", len(dropped))
		}
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	expiresAt := time.Now().Add(m.ttl)
	for id, s := range dropped {
		data, err := s.ContinuityState().Marshal()
		if err != nil {
			continue
		}
		if err := m.stateStore.Save(ctx, id, data, expiresAt); err != nil {
			m.logger.Warn("continuity save failed", "session", id, "error", err)
		}
	}
	m.logger.Debug("swept idle sessions", "count", len(dropped))
}
