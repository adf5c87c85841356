// Package web provides the HTTP server and dashboard UI for the music cluster explorer.
package web

import (
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/go-music-cluster-explorer/internal/dataset"
	"github.com/justestif/go-music-cluster-explorer/internal/explorer"
)

const (
	sessionCookieName = "session_id"

	// DefaultSessionTTL is used when no TTL is configured.
	DefaultSessionTTL = 24 * time.Hour
)

// DatasetLoader loads a fresh copy of the songs dataset for a new session.
type DatasetLoader func() (*dataset.Dataset, error)

// Session is one visitor's dashboard state. Handlers must hold mu while reading
// or changing Dataset and State.
type Session struct {
	ID        string
	CreatedAt time.Time

	mu         sync.Mutex
	Dataset    *dataset.Dataset
	DatasetErr error
	State      explorer.State
}

// Lock serialises requests within the session.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// SessionStore manages sessions in memory.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	ttl      time.Duration
	load     DatasetLoader
	now      func() time.Time
}

// NewSessionStore creates a new in-memory session store. Each new session loads
// its own dataset through load.
func NewSessionStore(ttl time.Duration, load DatasetLoader) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		load:     load,
		now:      time.Now,
	}
}

// Create starts a new session and loads its dataset. A load failure is kept on
// the session so that every page can report it.
func (s *SessionStore) Create() *Session {
	session := &Session{
		ID:        uuid.NewString(),
		CreatedAt: s.now(),
	}
	session.Dataset, session.DatasetErr = s.load()

	s.mu.Lock()
	s.pruneLocked()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	return session
}

// Get retrieves a live session by ID.
func (s *SessionStore) Get(id string) *Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, ok := s.sessions[id]
	if !ok || s.expired(session) {
		return nil
	}
	return session
}

// Delete removes a session by ID.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of stored sessions, expired ones included.
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) expired(session *Session) bool {
	return s.now().Sub(session.CreatedAt) > s.ttl
}

// pruneLocked drops expired sessions. Caller holds s.mu.
func (s *SessionStore) pruneLocked() {
	for id, session := range s.sessions {
		if s.expired(session) {
			delete(s.sessions, id)
		}
	}
}

// GetFromRequest extracts the session from the request cookie.
func (s *SessionStore) GetFromRequest(r *http.Request) *Session {
	cookie, err := r.Cookie(sessionCookieName)
	if err != nil {
		return nil
	}
	return s.Get(cookie.Value)
}

// Ensure returns the request's session, creating one and setting its cookie
// when there is none.
func (s *SessionStore) Ensure(w http.ResponseWriter, r *http.Request) *Session {
	if session := s.GetFromRequest(r); session != nil {
		return session
	}
	session := s.Create()
	s.SetCookie(w, session)
	return session
}

// SetCookie sets the session cookie on the response.
func (s *SessionStore) SetCookie(w http.ResponseWriter, session *Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookieName,
		Value:    session.ID,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		MaxAge:   int(s.ttl.Seconds()),
	})
}
