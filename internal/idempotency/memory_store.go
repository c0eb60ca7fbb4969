package idempotency

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	record   *Record
	lockedAt time.Time
	lockTTL  time.Duration
	expires  time.Time
}

// MemoryStore keeps records in process for single-instance deployments and tests.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{entries: make(map[string]*memoryEntry), now: time.Now}
}

func (s *MemoryStore) entry(key string) *memoryEntry {
	e, ok := s.entries[key]
	if !ok {
		e = &memoryEntry{}
		s.entries[key] = e
	}
	return e
}

func (s *MemoryStore) Lock(_ context.Context, key string, lockTTL time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e := s.entry(key)
	if !e.lockedAt.IsZero() && now.Sub(e.lockedAt) < e.lockTTL {
		return false, nil
	}
	e.lockedAt = now
	e.lockTTL = lockTTL
	return true, nil
}

func (s *MemoryStore) Get(_ context.Context, key string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok || e.record == nil {
		return nil, nil
	}
	if s.now().After(e.expires) {
		e.record = nil
		return nil, nil
	}
	copied := *e.record
	return &copied, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, record *Record, ttl time.Duration) error {
	if record == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *record
	e := s.entry(key)
	e.record = &copied
	e.expires = s.now().Add(ttl)
	return nil
}

func (s *MemoryStore) ReleaseLock(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		e.lockedAt = time.Time{}
	}
	return nil
}

// Prune drops expired records and returns how many were removed.
func (s *MemoryStore) Prune() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	removed := 0
	for key, e := range s.entries {
		lockLive := !e.lockedAt.IsZero() && now.Sub(e.lockedAt) < e.lockTTL
		if lockLive {
			continue
		}
		if e.record == nil || now.After(e.expires) {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}
