package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/nairv/dailycollect/pkg/models"
)

// Session is the per-login context handed to every authorized operation.
// It exists from a successful login until logout or expiry.
type Session struct {
	Token     string
	Username  string
	Name      string
	ExpiresAt time.Time
}

// SessionManager holds active sessions in memory, keyed by token.
type SessionManager struct {
	ttl time.Duration

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewSessionManager creates a manager whose sessions live for ttl.
func NewSessionManager(ttl time.Duration) *SessionManager {
	return &SessionManager{
		ttl:      ttl,
		sessions: make(map[string]*Session),
	}
}

// Create opens a session for a verified user and returns it.
func (m *SessionManager) Create(user *models.User) *Session {
	session := &Session{
		Token:     uuid.NewString(),
		Username:  user.Username,
		Name:      user.Name,
		ExpiresAt: time.Now().Add(m.ttl),
	}
	m.mu.Lock()
	m.sessions[session.Token] = session
	m.mu.Unlock()
	return session
}

// Get looks up a session by token, dropping it when expired.
func (m *SessionManager) Get(token string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	session, ok := m.sessions[token]
	if !ok {
		return nil, false
	}
	if time.Now().After(session.ExpiresAt) {
		delete(m.sessions, token)
		return nil, false
	}
	return session, true
}

// Delete tears down a session on logout. Unknown tokens are a no-op.
func (m *SessionManager) Delete(token string) {
	m.mu.Lock()
	delete(m.sessions, token)
	m.mu.Unlock()
}
