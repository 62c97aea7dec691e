package session

import (
	"errors"
	"sync"

	"github.com/google/uuid"

	"github.com/frfrance/pong-arena/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrPlayerBusy      = errors.New("player already has an active session")
)

// Manager is the in-memory directory of active game sessions. It owns every
// session from creation until its terminal state, after which Remove evicts
// it. Durable match records live elsewhere; the directory is rebuilt empty
// each process lifetime.
//
// The directory lock is short-lived and distinct from any per-session lock:
// lookups and insert/remove never wait on an in-flight session mutation.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*engine.Session
	byUser   map[string]string // user id -> room id
	byWatch  map[string]string // spectator-group id -> room id
}

// NewManager creates an empty session directory.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*engine.Session),
		byUser:   make(map[string]string),
		byWatch:  make(map[string]string),
	}
}

// Create registers a new session for the two players. At most one active
// session may reference a given player; a second one is refused with
// ErrPlayerBusy.
func (m *Manager) Create(initiator, challenged engine.Player) (*engine.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, busy := m.byUser[initiator.UserID]; busy {
		return nil, ErrPlayerBusy
	}
	if _, busy := m.byUser[challenged.UserID]; busy {
		return nil, ErrPlayerBusy
	}

	sess := engine.NewSession(uuid.NewString(), initiator, challenged)
	m.sessions[sess.ID()] = sess
	m.byUser[initiator.UserID] = sess.ID()
	m.byUser[challenged.UserID] = sess.ID()
	return sess, nil
}

// Get retrieves a session by room id.
func (m *Manager) Get(roomID string) (*engine.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	sess, ok := m.sessions[roomID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// GetByWatch retrieves a session by its spectator-group id.
func (m *Manager) GetByWatch(watchID string) (*engine.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	roomID, ok := m.byWatch[watchID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	sess, ok := m.sessions[roomID]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// ForUser returns the active session referencing the given player, if any.
func (m *Manager) ForUser(userID string) (*engine.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	roomID, ok := m.byUser[userID]
	if !ok {
		return nil, false
	}
	sess, ok := m.sessions[roomID]
	return sess, ok
}

// RegisterWatch indexes the session under its spectator-group id so watchers
// can find it. Safe to call more than once with the same id.
func (m *Manager) RegisterWatch(roomID, watchID string) error {
	if watchID == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[roomID]; !ok {
		return ErrSessionNotFound
	}
	m.byWatch[watchID] = roomID
	return nil
}

// List returns all active sessions.
func (m *Manager) List() []*engine.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*engine.Session, 0, len(m.sessions))
	for _, sess := range m.sessions {
		result = append(result, sess)
	}
	return result
}

// Remove evicts a session and all its indexes from the directory. The
// session object itself stays valid for handles still holding it; its
// terminal state stops any further use.
func (m *Manager) Remove(roomID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	sess, ok := m.sessions[roomID]
	if !ok {
		return ErrSessionNotFound
	}

	delete(m.sessions, roomID)
	for _, p := range sess.Players() {
		if m.byUser[p.UserID] == roomID {
			delete(m.byUser, p.UserID)
		}
	}
	if watch := sess.WatchID(); watch != "" {
		delete(m.byWatch, watch)
	}
	return nil
}

// Count returns the number of active sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
