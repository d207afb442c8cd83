package session

import (
	"context"
	"errors"
	"sync"
	"time"
)

// MemoryStore keeps sessions in a process-local map. Suitable for a single
// instance; a restart drops every session, which the reply-based channel
// tolerates (the user just texts again).
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates an in-memory store with the given TTL.
// A non-positive ttl falls back to DefaultTTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		sessions: make(map[string]*Session),
		ttl:      ttl,
		now:      time.Now,
	}
}

var _ Store = (*MemoryStore)(nil)

// Get returns the live session for phone, or nil. Expired entries are
// purged on read.
func (s *MemoryStore) Get(_ context.Context, phone string) (*Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[phone]
	if !ok {
		return nil, nil
	}
	if s.expired(sess) {
		delete(s.sessions, phone)
		return nil, nil
	}
	copied := *sess
	return &copied, nil
}

// Save upserts the session and bumps its activity timestamp.
func (s *MemoryStore) Save(_ context.Context, sess *Session) error {
	if sess == nil || sess.Phone == "" {
		return errors.New("session: phone required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *sess
	copied.LastActivity = s.now()
	s.sessions[sess.Phone] = &copied
	return nil
}

// Delete removes the session for phone. Deleting a missing session is a no-op.
func (s *MemoryStore) Delete(_ context.Context, phone string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, phone)
	return nil
}

// All returns every live session, sweeping expired entries along the way.
func (s *MemoryStore) All(_ context.Context) ([]Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]Session, 0, len(s.sessions))
	for phone, sess := range s.sessions {
		if s.expired(sess) {
			delete(s.sessions, phone)
			continue
		}
		out = append(out, *sess)
	}
	return out, nil
}

func (s *MemoryStore) expired(sess *Session) bool {
	return s.now().Sub(sess.LastActivity) > s.ttl
}
