package auth

import (
	"sync"

	"github.com/google/uuid"
)

// SessionManager maps opaque session tokens to usernames. Tokens are
// random UUIDs handed out at sign-in and carried in a cookie; they encode
// nothing, all meaning lives in this table. Sessions live as long as the
// process, same as the rest of the application state.
type SessionManager struct {
	mu       sync.Mutex
	sessions map[string]string
}

// NewSessionManager returns an empty SessionManager.
func NewSessionManager() *SessionManager {
	return &SessionManager{
		sessions: make(map[string]string),
	}
}

// Create opens a session for the user and returns its token.
func (sm *SessionManager) Create(username string) string {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	token := uuid.NewString()
	sm.sessions[token] = username
	return token
}

// Username resolves a token to the signed-in username.
func (sm *SessionManager) Username(token string) (string, bool) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	name, ok := sm.sessions[token]
	return name, ok
}

// Destroy ends the session behind the token.
func (sm *SessionManager) Destroy(token string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	delete(sm.sessions, token)
}

// Rename rewrites the username on every session of the user, so a rename
// doesn't sign the user out of their other devices.
func (sm *SessionManager) Rename(oldName, newName string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for token, name := range sm.sessions {
		if name == oldName {
			sm.sessions[token] = newName
		}
	}
}

// DestroyUser ends every session of the user. Used when the account is
// deleted.
func (sm *SessionManager) DestroyUser(username string) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	for token, name := range sm.sessions {
		if name == username {
			delete(sm.sessions, token)
		}
	}
}
