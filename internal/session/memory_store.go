package session

import (
	"context"
	"sync"
	"time"
)

type memoryKey struct {
	scope Scope
	id    string
}

// MemoryStore keeps sessions in process memory. It backs tests and
// single-instance deployments without Redis.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[memoryKey]*Session
	locks    map[memoryKey]struct{}
	now      func() time.Time
}

// NewMemoryStore returns an empty in-memory Store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[memoryKey]*Session),
		locks:    make(map[memoryKey]struct{}),
		now:      time.Now,
	}
}

// WithClock replaces the store clock, for tests.
func (m *MemoryStore) WithClock(now func() time.Time) *MemoryStore {
	m.now = now
	return m
}

func (m *MemoryStore) Create(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[memoryKey{s.Scope, s.ID}] = clone(s)
	return nil
}

func (m *MemoryStore) Get(_ context.Context, scope Scope, id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[memoryKey{scope, id}]
	if !ok || s.Expired(m.now()) {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey{s.Scope, s.ID}
	if _, ok := m.sessions[key]; !ok {
		return ErrNotFound
	}
	m.sessions[key] = clone(s)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, scope Scope, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey{scope, id}
	if _, ok := m.sessions[key]; !ok {
		return ErrNotFound
	}
	delete(m.sessions, key)
	return nil
}

func (m *MemoryStore) Lock(_ context.Context, scope Scope, id string) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := memoryKey{scope, id}
	if _, held := m.locks[key]; held {
		return nil, ErrLocked
	}
	m.locks[key] = struct{}{}

	return func() {
		m.mu.Lock()
		delete(m.locks, key)
		m.mu.Unlock()
	}, nil
}

func (m *MemoryStore) List(context.Context) ([]*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]*Session, 0, len(m.sessions))
	for _, s := range m.sessions {
		out = append(out, clone(s))
	}
	return out, nil
}

func clone(s *Session) *Session {
	c := *s
	c.Data = append([]byte(nil), s.Data...)
	return &c
}
