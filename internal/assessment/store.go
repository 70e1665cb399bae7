package assessment

import (
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrSessionNotFound reports an unknown or expired session id.
var ErrSessionNotFound = errors.New("assessment session not found")

// SessionStore keeps in-flight sessions keyed by id. The lock guards the
// map only; events within one session are assumed serialized by the host.
// Nothing survives a process restart.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[uuid.UUID]*Session
}

// NewSessionStore creates an empty session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[uuid.UUID]*Session)}
}

// Create registers a fresh session and returns it.
func (st *SessionStore) Create() *Session {
	sess := NewSession()
	st.mu.Lock()
	st.sessions[sess.ID] = sess
	st.mu.Unlock()
	return sess
}

// Get returns the session for an id.
func (st *SessionStore) Get(id uuid.UUID) (*Session, error) {
	st.mu.RLock()
	sess, ok := st.sessions[id]
	st.mu.RUnlock()
	if !ok {
		return nil, ErrSessionNotFound
	}
	return sess, nil
}

// Delete discards a session.
func (st *SessionStore) Delete(id uuid.UUID) {
	st.mu.Lock()
	delete(st.sessions, id)
	st.mu.Unlock()
}
