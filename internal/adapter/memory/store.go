// Package memory is a single-process session store. Sessions are kept as JSON documents so
// callers never share mutable state with the store; expiry is enforced on read and by Sweep.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/affinity/internal/domain"
)

type entry struct {
	data    []byte
	version int64
	expires time.Time
}

// Store implements domain.SessionStore and domain.SessionSweeper.
type Store struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu       sync.RWMutex
	sessions map[uuid.UUID]entry
}

var (
	_ domain.SessionStore   = (*Store)(nil)
	_ domain.SessionSweeper = (*Store)(nil)
)

func NewStore(clock clockwork.Clock, ttl time.Duration) *Store {
	return &Store{
		clock:    clock,
		ttl:      ttl,
		sessions: make(map[uuid.UUID]entry),
	}
}

func (s *Store) Get(_ context.Context, id uuid.UUID) (*domain.Session, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || s.expired(e) {
		return nil, domain.ErrSessionNotFound
	}

	var session domain.Session
	if err := json.Unmarshal(e.data, &session); err != nil {
		return nil, fmt.Errorf("decode session failed: %w", err)
	}
	return &session, nil
}

func (s *Store) Save(_ context.Context, session *domain.Session) error {
	next := *session
	next.Version++
	data, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("encode session failed: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current, exists := s.sessions[session.ID]
	exists = exists && !s.expired(current)
	switch {
	case !exists && session.Version > 0:
		return domain.ErrSessionNotFound
	case exists && current.version != session.Version:
		return domain.ErrSessionConflict
	}

	s.sessions[session.ID] = entry{data: data, version: next.Version, expires: s.clock.Now().Add(s.ttl)}
	session.Version = next.Version
	return nil
}

func (s *Store) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.sessions[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	delete(s.sessions, id)
	if s.expired(e) {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (s *Store) Ping(context.Context) error {
	return nil
}

// Sweep drops expired sessions and returns how many were removed.
func (s *Store) Sweep(ctx context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.sessions {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if s.expired(e) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) expired(e entry) bool {
	return s.ttl > 0 && !s.clock.Now().Before(e.expires)
}
