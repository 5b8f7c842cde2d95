package quiz

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/abhisek/mandela/internal/catalog"
)

// ErrSessionNotFound is returned for an unknown session id.
var ErrSessionNotFound = errors.New("session not found")

// Registry holds live sessions keyed by id.
type Registry struct {
	cat *catalog.Catalog

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates a registry whose sessions all use cat.
func NewRegistry(cat *catalog.Catalog) *Registry {
	return &Registry{
		cat:      cat,
		sessions: make(map[string]*Session),
	}
}

// Catalog returns the catalog shared by the registry's sessions.
func (r *Registry) Catalog() *catalog.Catalog { return r.cat }

// Create starts a session with a fresh UUID.
func (r *Registry) Create() *Session {
	s := NewSession(uuid.New().String(), r.cat)
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get looks up a session.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return s, nil
}

// GetOrCreate returns the session for id, creating it when absent. The
// bool reports whether a new session was created.
func (r *Registry) GetOrCreate(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.sessions[id]; ok {
		return s, false
	}
	s := NewSession(id, r.cat)
	r.sessions[id] = s
	return s, true
}

// Delete drops a session. Deleting an unknown id is a no-op.
func (r *Registry) Delete(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
