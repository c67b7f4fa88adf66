package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wricardo/mcp-training/connectfour/game/engine"
	"github.com/wricardo/mcp-training/connectfour/game/service"
)

var (
	ErrUnknownSession       = service.ErrUnknownSession
	ErrSessionAlreadyExists = service.ErrSessionAlreadyExists
	ErrSessionAlreadyBound  = service.ErrSessionAlreadyBound
	ErrSelfJoin             = service.ErrSelfJoin
	ErrInvalidKey           = errors.New("invalid session key")
)

var _ service.SessionRegistry = (*Manager)(nil)

// entry pairs a session with the lock serializing every operation on it
type entry struct {
	mu      sync.Mutex
	session *service.Session
}

// Manager handles game session lifecycle
type Manager struct {
	sessions map[string]*entry
	mu       sync.RWMutex
	logger   *zap.Logger
	now      func() time.Time
}

// Option configures a Manager
type Option func(*Manager)

// WithLogger sets the logger used for lifecycle messages
func WithLogger(logger *zap.Logger) Option {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger.Named("session")
		}
	}
}

// WithClock replaces time.Now
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*entry),
		logger:   zap.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// CreateWaiting opens a session holding only its first player. An empty key
// gets a generated one.
func (m *Manager) CreateWaiting(key string, player engine.PlayerID) (*service.Snapshot, error) {
	if player == "" {
		return nil, engine.ErrEmptyPlayer
	}
	if key == "" {
		key = m.generateKey()
	}
	if strings.TrimSpace(key) != key {
		return nil, fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[normalize(key)]; exists {
		return nil, ErrSessionAlreadyExists
	}

	sess := service.NewWaitingSession(key, player, m.now())
	m.sessions[normalize(key)] = &entry{session: sess}

	m.logger.Debug("session created", zap.String("game", key), zap.String("player", string(player)))

	// the entry is unreachable until m.mu is released
	return service.NewSnapshot(sess), nil
}

// BindOpponent attaches the second player to a waiting session and starts
// its game
func (m *Manager) BindOpponent(key string, player engine.PlayerID) (*service.Snapshot, error) {
	var snap *service.Snapshot
	err := m.WithSession(key, func(sess *service.Session) error {
		if err := sess.Bind(player, m.now()); err != nil {
			return err
		}
		snap = service.NewSnapshot(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}

	m.logger.Debug("session bound", zap.String("game", snap.Key), zap.String("player", string(player)))
	return snap, nil
}

// Lookup returns a snapshot of a session (case-insensitive)
func (m *Manager) Lookup(key string) (*service.Snapshot, error) {
	var snap *service.Snapshot
	err := m.WithSession(key, func(sess *service.Session) error {
		snap = service.NewSnapshot(sess)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}

// WithSession runs fn while holding the session's own lock. Sessions removed
// while fn waited for the lock report ErrUnknownSession. The registry lock is
// not held while fn runs, so fn may call Remove.
func (m *Manager) WithSession(key string, fn func(*service.Session) error) error {
	e, err := m.get(key)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if !m.holds(key, e) {
		return ErrUnknownSession
	}
	return fn(e.session)
}

// Remove deletes a session
func (m *Manager) Remove(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, exists := m.sessions[normalize(key)]; !exists {
		return ErrUnknownSession
	}
	delete(m.sessions, normalize(key))

	m.logger.Debug("session removed", zap.String("game", key))
	return nil
}

// List returns all active sessions, oldest first
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, e := range m.sessions {
		result = append(result, e.session)
	}

	// CreatedAt and Key never change after creation
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].Key < result[j].Key
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// CleanupStaleWaiting removes sessions still waiting for an opponent that
// have not been touched in the given duration
func (m *Manager) CleanupStaleWaiting(maxAge time.Duration) int {
	return m.cleanup(maxAge, func(sess *service.Session) bool {
		return sess.Status == service.StatusWaiting
	})
}

// CleanupIdle removes sessions of any status that have not been touched in
// the given duration
func (m *Manager) CleanupIdle(maxAge time.Duration) int {
	return m.cleanup(maxAge, func(*service.Session) bool { return true })
}

func (m *Manager) cleanup(maxAge time.Duration, match func(*service.Session) bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxAge)
	removed := 0

	for id, e := range m.sessions {
		// a session in use is not stale
		if !e.mu.TryLock() {
			continue
		}
		if match(e.session) && e.session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, id)
			removed++
			m.logger.Info("expired session removed",
				zap.String("game", e.session.Key),
				zap.String("status", string(e.session.Status)))
		}
		e.mu.Unlock()
	}

	return removed
}

func (m *Manager) get(key string) (*entry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	e, exists := m.sessions[normalize(key)]
	if !exists {
		return nil, ErrUnknownSession
	}
	return e, nil
}

// holds reports whether e is still the live entry for key
func (m *Manager) holds(key string, e *entry) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sessions[normalize(key)] == e
}

// generateKey generates a random session key
func (m *Manager) generateKey() string {
	return uuid.NewString()
}

// normalize makes lookups case-insensitive
func normalize(key string) string {
	return strings.ToLower(key)
}
