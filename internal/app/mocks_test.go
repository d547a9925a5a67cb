package app

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/google/uuid"
	"github.com/pscheid92/affinity/internal/domain"
)

// mockStore keeps JSON copies so callers never share memory with the stored session, and
// checks versions the way the real stores do.
type mockStore struct {
	mu         sync.Mutex
	sessions   map[uuid.UUID][]byte
	versions   map[uuid.UUID]int64
	gets       int
	saveErr    error
	getFn      func(ctx context.Context, id uuid.UUID) (*domain.Session, error)
	saveFn     func(s *domain.Session) error
	beforeSave func()
}

func newMockStore() *mockStore {
	return &mockStore{
		sessions: make(map[uuid.UUID][]byte),
		versions: make(map[uuid.UUID]int64),
	}
}

func (m *mockStore) Get(ctx context.Context, id uuid.UUID) (*domain.Session, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	data, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	var s domain.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// Save runs beforeSave once, outside the lock, so a test can slip in a concurrent write.
func (m *mockStore) Save(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	hook := m.beforeSave
	m.beforeSave = nil
	m.mu.Unlock()
	if hook != nil {
		hook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.saveErr != nil {
		return m.saveErr
	}
	if m.saveFn != nil {
		return m.saveFn(s)
	}

	stored, exists := m.versions[s.ID]
	switch {
	case !exists && s.Version > 0:
		return domain.ErrSessionNotFound
	case exists && stored != s.Version:
		return domain.ErrSessionConflict
	}

	next := *s
	next.Version++
	data, err := json.Marshal(&next)
	if err != nil {
		return err
	}
	m.sessions[s.ID] = data
	m.versions[s.ID] = next.Version
	s.Version = next.Version
	return nil
}

func (m *mockStore) Delete(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.sessions[id]; !ok {
		return domain.ErrSessionNotFound
	}
	delete(m.sessions, id)
	delete(m.versions, id)
	return nil
}

func (m *mockStore) Ping(context.Context) error { return nil }

type mockSweeper struct {
	calls chan struct{}
	err   error
}

func (m *mockSweeper) Sweep(context.Context) (int, error) {
	m.calls <- struct{}{}
	return 1, m.err
}
