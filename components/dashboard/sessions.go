package dashboard

import (
	"context"
	"sync"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// Session is one viewer's page of dashboards.
type Session struct {
	ID       string
	Page     *Page
	Created  time.Time
	LastSeen time.Time
}

// SessionStore keeps viewer sessions.
type SessionStore interface {
	Get(ctx context.Context, id string) (*Session, bool)
	Put(ctx context.Context, session *Session) error
	Delete(ctx context.Context, id string)
	Prune(ctx context.Context, idle time.Duration) int
}

// InMemorySessionStore provides a concurrency-safe default store.
type InMemorySessionStore struct {
	mu   sync.RWMutex
	data map[string]*Session
	now  func() time.Time
}

// NewInMemorySessionStore creates an empty session store.
func NewInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		data: make(map[string]*Session),
		now:  time.Now,
	}
}

// Get returns the session and marks it as seen.
func (s *InMemorySessionStore) Get(_ context.Context, id string) (*Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.data[id]
	if ok {
		session.LastSeen = s.now()
	}
	return session, ok
}

// Put stores a session, assigning an id when it has none.
func (s *InMemorySessionStore) Put(_ context.Context, session *Session) error {
	if session == nil || session.Page == nil {
		return goerrors.New("dashboard: session requires a page", goerrors.CategoryBadInput)
	}
	if session.ID == "" {
		session.ID = newSessionID()
	}
	now := s.now()
	if session.Created.IsZero() {
		session.Created = now
	}
	session.LastSeen = now
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[session.ID] = session
	return nil
}

// Delete drops a session.
func (s *InMemorySessionStore) Delete(_ context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, id)
}

// Prune drops sessions idle for longer than idle and returns how many were dropped.
func (s *InMemorySessionStore) Prune(_ context.Context, idle time.Duration) int {
	if idle <= 0 {
		return 0
	}
	cutoff := s.now().Add(-idle)
	s.mu.Lock()
	defer s.mu.Unlock()
	dropped := 0
	for id, session := range s.data {
		if session.LastSeen.Before(cutoff) {
			delete(s.data, id)
			dropped++
		}
	}
	return dropped
}

// Len returns the number of sessions.
func (s *InMemorySessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

func newSessionID() string {
	return uuid.NewString()
}

// ErrSessionNotFound is returned for unknown or expired session ids.
var ErrSessionNotFound = goerrors.New("dashboard: session not found", goerrors.CategoryNotFound).
	WithTextCode("SESSION_NOT_FOUND")
