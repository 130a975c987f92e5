// store.go - In-memory per-session state for the interactive review flow

package session

import (
	"sync"
	"time"

	"github.com/bosocmputer/guarantee_letter_gemini/internal/ai"
	"github.com/bosocmputer/guarantee_letter_gemini/internal/fingerprint"
	"github.com/google/uuid"
)

// State is everything one review session carries between requests: the last
// accepted field set (AI-extracted or manually edited) and the fingerprint
// of the upload it came from. Nothing here survives the process.
type State struct {
	Fields          ai.GuaranteeFields
	GuaranteeType   ai.GuaranteeType
	LastFingerprint fingerprint.Fingerprint
	UpdatedAt       time.Time
}

// Store is a mutex-guarded map of session ID to state, with TTL cleanup so
// abandoned sessions don't accumulate.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]State
	ttl      time.Duration
}

// NewStore creates a store whose entries expire after ttl.
func NewStore(ttl time.Duration) *Store {
	s := &Store{
		sessions: make(map[string]State),
		ttl:      ttl,
	}
	go s.cleanupLoop()
	return s
}

// NewSessionID issues an identifier for a fresh review session.
func NewSessionID() string {
	return uuid.New().String()
}

// Get returns a copy of the session state, if present.
func (s *Store) Get(sessionID string) (State, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	state, ok := s.sessions[sessionID]
	return state, ok
}

// Put replaces the session state wholesale. Field sets are never merged
// across extractions or edits.
func (s *Store) Put(sessionID string, state State) {
	state.UpdatedAt = time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sessionID] = state
}

// Delete removes a session.
func (s *Store) Delete(sessionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

func (s *Store) cleanupLoop() {
	ticker := time.NewTicker(s.ttl / 2)
	defer ticker.Stop()
	for range ticker.C {
		s.cleanup()
	}
}

func (s *Store) cleanup() {
	cutoff := time.Now().Add(-s.ttl)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, state := range s.sessions {
		if state.UpdatedAt.Before(cutoff) {
			delete(s.sessions, id)
		}
	}
}
