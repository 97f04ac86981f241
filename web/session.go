package web

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session ties an opaque bearer token to a player, or to the admin
// capability when the admin password was exchanged.
type Session struct {
	Token     string
	UserID    int64
	IsAdmin   bool
	CreatedAt time.Time
}

// SessionStore is an in-memory token store. Sessions live for the
// duration of the game night; a restart logs everyone out.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty session store
func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
	}
}

// CreateUser creates a session for a player and returns its token
func (s *SessionStore) CreateUser(userID int64) *Session {
	return s.create(&Session{UserID: userID})
}

// CreateAdmin creates a session carrying the admin capability
func (s *SessionStore) CreateAdmin() *Session {
	return s.create(&Session{IsAdmin: true})
}

func (s *SessionStore) create(session *Session) *Session {
	session.Token = uuid.NewString()
	session.CreatedAt = time.Now()

	s.mu.Lock()
	s.sessions[session.Token] = session
	s.mu.Unlock()

	return session
}

// Get looks up a session by token
func (s *SessionStore) Get(token string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sessions[token]
}

// DeleteForUser removes every session belonging to a user
func (s *SessionStore) DeleteForUser(userID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.sessions {
		if !session.IsAdmin && session.UserID == userID {
			delete(s.sessions, token)
		}
	}
}

// sessionFromRequest resolves the bearer token on a request
func (s *SessionStore) sessionFromRequest(r *http.Request) *Session {
	header := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return nil
	}
	return s.Get(token)
}
