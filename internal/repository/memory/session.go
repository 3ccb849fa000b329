package memory

import (
	"context"
	"sync"
	"time"

	"alyabot/internal/domain"
)

// SessionStore is an in-memory implementation of repository.SessionRepository.
// Entries idle for longer than ttl are dropped on the next access.
type SessionStore struct {
	ttl   time.Duration
	clock func() time.Time

	mu       sync.RWMutex
	sessions map[int64]*domain.Conversation
}

// NewSessionStore creates an in-memory session store; ttl <= 0 disables expiry
func NewSessionStore(ttl time.Duration) *SessionStore {
	return NewSessionStoreWithClock(ttl, time.Now)
}

// NewSessionStoreWithClock allows deterministic expiry in tests
func NewSessionStoreWithClock(ttl time.Duration, clock func() time.Time) *SessionStore {
	return &SessionStore{
		ttl:      ttl,
		clock:    clock,
		sessions: make(map[int64]*domain.Conversation),
	}
}

func (s *SessionStore) Get(_ context.Context, sessionID int64) (*domain.Conversation, bool, error) {
	s.mu.RLock()
	conv, ok := s.sessions[sessionID]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}

	if s.expired(conv) {
		s.mu.Lock()
		if current, ok := s.sessions[sessionID]; ok && s.expired(current) {
			delete(s.sessions, sessionID)
		}
		s.mu.Unlock()
		return nil, false, nil
	}
	return conv.Clone(), true, nil
}

func (s *SessionStore) Save(_ context.Context, conv *domain.Conversation) error {
	stored := conv.Clone()
	stored.UpdatedAt = s.clock()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[conv.SessionID] = stored
	return nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}

// Len returns the number of stored sessions, expired ones included
func (s *SessionStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *SessionStore) expired(conv *domain.Conversation) bool {
	if s.ttl <= 0 {
		return false
	}
	return s.clock().Sub(conv.UpdatedAt) > s.ttl
}
