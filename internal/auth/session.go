// Package auth implements GitHub OAuth login and the server-side session
// store that holds access tokens between requests.
package auth

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"template-api/internal/models"
)

// Session is one logged-in browser. The access token never leaves the server;
// the cookie carries only the session id.
type Session struct {
	ID        string
	Token     string
	User      *models.GitHubUser
	CreatedAt time.Time
	ExpiresAt time.Time
}

// SessionStore keeps sessions in memory, keyed by id. Expired sessions are
// dropped lazily on lookup.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
}

func NewSessionStore(ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
	}
}

// Create registers a new session for token and user and returns it.
func (s *SessionStore) Create(token string, user *models.GitHubUser) *Session {
	now := time.Now()
	sess := &Session{
		ID:        uuid.NewString(),
		Token:     token,
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}

	s.mu.Lock()
	s.sessions[sess.ID] = sess
	s.mu.Unlock()
	return sess
}

// Get returns the session with the given id, or nil if unknown or expired.
func (s *SessionStore) Get(id string) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		return nil
	}
	if time.Now().After(sess.ExpiresAt) {
		delete(s.sessions, id)
		return nil
	}
	return sess
}

// Delete removes the session with the given id, if present.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
