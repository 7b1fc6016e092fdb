package repository

import (
	"fmt"
	"sync"
	"time"

	"github.com/webwhiz/webwhiz/internal/domain"
)

// SessionStore holds per-session state in memory: session metadata,
// bounded chat history and wiki credentials. Nothing survives a
// restart; the vector store is the only durable collaborator.
//
// All methods are safe for concurrent use. History appends are
// last-write-wins under the store lock: two concurrent questions for
// one session may interleave their turn order, but the maps never
// corrupt.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
	history  map[string][]domain.ChatTurn
	creds    map[string]domain.WikiCredentials

	historyLimit int
}

func NewSessionStore(historyLimit int) *SessionStore {
	if historyLimit <= 0 {
		historyLimit = 20
	}
	return &SessionStore{
		sessions:     make(map[string]*domain.Session),
		history:      make(map[string][]domain.ChatTurn),
		creds:        make(map[string]domain.WikiCredentials),
		historyLimit: historyLimit,
	}
}

// Create registers a new session for id. A second create for the same
// id fails with ErrSessionExists and changes nothing.
func (s *SessionStore) Create(id, link string) (*domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.sessions[id]; ok {
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrSessionExists)
	}

	session := &domain.Session{
		ID:        id,
		Stage:     domain.SessionStageUpload,
		State:     domain.SessionStateReading,
		Link:      link,
		CreatedAt: time.Now(),
	}
	s.sessions[id] = session
	return session, nil
}

// Get returns the session metadata for id, if any.
func (s *SessionStore) Get(id string) (*domain.Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	return session, ok
}

// History returns a copy of the session's chat turns, oldest first.
// Unknown sessions yield an empty history.
func (s *SessionStore) History(id string) []domain.ChatTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := s.history[id]
	out := make([]domain.ChatTurn, len(turns))
	copy(out, turns)
	return out
}

// AppendTurn records a completed question/answer exchange. Only the
// most recent historyLimit turns are retained.
func (s *SessionStore) AppendTurn(id string, turn domain.ChatTurn) {
	s.mu.Lock()
	defer s.mu.Unlock()
	turns := append(s.history[id], turn)
	if len(turns) > s.historyLimit {
		turns = turns[len(turns)-s.historyLimit:]
	}
	s.history[id] = turns
}

// SetCredentials stores the wiki access tuple for a session,
// overwriting any previous one.
func (s *SessionStore) SetCredentials(id string, creds domain.WikiCredentials) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.creds[id] = creds
}

// Credentials returns the stored wiki credentials for a session, or
// ErrCredentialsNotFound if none were ever stored.
func (s *SessionStore) Credentials(id string) (domain.WikiCredentials, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	creds, ok := s.creds[id]
	if !ok {
		return domain.WikiCredentials{}, fmt.Errorf("session %q: %w", id, domain.ErrCredentialsNotFound)
	}
	return creds, nil
}

// PurgeAll drops the session's metadata, history and credentials.
// Vector store entries are the caller's responsibility.
func (s *SessionStore) PurgeAll(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	delete(s.history, id)
	delete(s.creds, id)
}
