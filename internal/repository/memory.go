package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Proton-105/econ-bot/internal/domain"
)

// MemoryProfileStore keeps profiles in process memory. A single mutex
// serializes all writers, which is enough for tests and local runs.
type MemoryProfileStore struct {
	mu       sync.Mutex
	profiles map[domain.Key]*domain.Profile
	now      func() time.Time
}

// NewMemoryProfileStore returns an empty store.
func NewMemoryProfileStore() *MemoryProfileStore {
	return &MemoryProfileStore{
		profiles: make(map[domain.Key]*domain.Profile),
		now:      time.Now,
	}
}

func (m *MemoryProfileStore) Get(_ context.Context, key domain.Key) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.profiles[key]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

func (m *MemoryProfileStore) GetOrCreate(_ context.Context, key domain.Key) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.ensure(key).Clone(), nil
}

func (m *MemoryProfileStore) Save(_ context.Context, p *domain.Profile) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	current, ok := m.profiles[p.Key()]
	switch {
	case !ok && p.Version != 0, ok && current.Version != p.Version:
		return ErrVersionConflict
	}

	m.commit(p)
	return nil
}

func (m *MemoryProfileStore) Update(_ context.Context, key domain.Key, fn MutateFunc) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.ensure(key).Clone()
	if err := fn(p); err != nil {
		return nil, err
	}

	m.commit(p)
	return p.Clone(), nil
}

func (m *MemoryProfileStore) UpdatePair(_ context.Context, first, second domain.Key, opts PairOptions, fn PairFunc) (*domain.Profile, *domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.profiles[second]; !ok && !opts.CreateSecond {
		return nil, nil, ErrNotFound
	}

	a := m.ensure(first).Clone()
	b := m.ensure(second).Clone()
	if err := fn(a, b); err != nil {
		return nil, nil, err
	}

	m.commit(a)
	m.commit(b)
	return a.Clone(), b.Clone(), nil
}

func (m *MemoryProfileStore) Top(_ context.Context, guildID string, limit int) ([]*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Profile
	for _, p := range m.profiles {
		if p.GuildID == guildID {
			out = append(out, p.Clone())
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].NetWorth() != out[j].NetWorth() {
			return out[i].NetWorth() > out[j].NetWorth()
		}
		return out[i].UserID < out[j].UserID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MemoryProfileStore) LoansDue(_ context.Context, before time.Time) ([]*domain.Profile, error) {
	return m.filter(func(p *domain.Profile) bool {
		return p.Loan.DueDate != nil && !p.Loan.DueDate.After(before)
	}), nil
}

func (m *MemoryProfileStore) ActiveLoans(context.Context) ([]*domain.Profile, error) {
	return m.filter(func(p *domain.Profile) bool { return p.Loan.DueDate != nil }), nil
}

func (m *MemoryProfileStore) filter(keep func(*domain.Profile) bool) []*domain.Profile {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*domain.Profile
	for _, p := range m.profiles {
		if p.HasActiveLoan() && keep(p) {
			out = append(out, p.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out
}

func (m *MemoryProfileStore) ensure(key domain.Key) *domain.Profile {
	p, ok := m.profiles[key]
	if !ok {
		p = domain.NewProfile(key, m.now())
		p.Version = 1
		m.profiles[key] = p
	}
	return p
}

func (m *MemoryProfileStore) commit(p *domain.Profile) {
	p.Version++
	p.UpdatedAt = m.now()
	m.profiles[p.Key()] = p.Clone()
}

// MemoryGuildStore keeps guild configuration in process memory.
type MemoryGuildStore struct {
	mu     sync.RWMutex
	guilds map[string]domain.GuildConfig
}

// NewMemoryGuildStore returns an empty store.
func NewMemoryGuildStore() *MemoryGuildStore {
	return &MemoryGuildStore{guilds: make(map[string]domain.GuildConfig)}
}

func (m *MemoryGuildStore) Get(_ context.Context, guildID string) (*domain.GuildConfig, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	cfg, ok := m.guilds[guildID]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

func (m *MemoryGuildStore) Save(_ context.Context, cfg *domain.GuildConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.guilds[cfg.GuildID] = *cfg
	return nil
}
