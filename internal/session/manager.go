package session

import (
	"sync"

	"github.com/dfuchss/deltabot/internal/logging"
)

// Manager maps user ids to their sessions, creating each lazily on first
// contact. The mutex covers only the lookup-or-insert step; turn processing
// on the returned session happens outside the lock.
type Manager struct {
	mu      sync.Mutex
	byUser  map[string]*Session
	factory func() *Session
	log     *logging.Logger
}

// NewManager creates a session manager. The factory builds a fresh session
// (including its dialog registry) for each new user.
func NewManager(factory func() *Session, log *logging.Logger) *Manager {
	return &Manager{
		byUser:  make(map[string]*Session),
		factory: factory,
		log:     log.Sub("sessions"),
	}
}

// GetOrCreate returns the user's session, constructing it on first contact.
func (m *Manager) GetOrCreate(userID string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.byUser[userID]; ok {
		return s
	}

	s := m.factory()
	m.byUser[userID] = s
	m.log.Debug().Str("user", userID).Msg("session created")
	return s
}

// HasActiveDialog reports whether the user's session is awaiting input.
// Users without a session never have an active dialog; none is created.
func (m *Manager) HasActiveDialog(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.byUser[userID]
	return ok && s.HasActiveDialog()
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byUser)
}
