package economy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/Proton-105/econ-bot/internal/domain"
	apperrors "github.com/Proton-105/econ-bot/internal/errors"
	"github.com/Proton-105/econ-bot/internal/repository"
	"github.com/Proton-105/econ-bot/internal/session"
)

const guildID = "g1"

var (
	alice = domain.Key{UserID: "alice", GuildID: guildID}
	bob   = domain.Key{UserID: "bob", GuildID: guildID}
	scope = Scope{GuildID: guildID, ChannelID: "c1"}
)

// seqRandom replays values in order and then repeats the last one.
type seqRandom struct {
	mu     sync.Mutex
	values []float64
}

func rolls(values ...float64) *seqRandom { return &seqRandom{values: values} }

func (r *seqRandom) Float64() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.values) == 0 {
		return 0
	}
	v := r.values[0]
	if len(r.values) > 1 {
		r.values = r.values[1:]
	}
	return v
}

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type recordedReminder struct {
	key domain.Key
	due time.Time
}

type fakeReminder struct {
	mu    sync.Mutex
	calls []recordedReminder
	err   error
}

func (f *fakeReminder) ScheduleLoanReminder(_ context.Context, key domain.Key, due time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, recordedReminder{key: key, due: due})
	return f.err
}

type fixture struct {
	svc      *Service
	profiles *repository.MemoryProfileStore
	guilds   *repository.MemoryGuildStore
	sessions *session.MemoryStore
	rnd      *seqRandom
	clock    *clock
	reminder *fakeReminder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	f := &fixture{
		profiles: repository.NewMemoryProfileStore(),
		guilds:   repository.NewMemoryGuildStore(),
		rnd:      rolls(0.5),
		clock:    &clock{now: time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)},
		reminder: &fakeReminder{},
	}
	f.sessions = session.NewMemoryStore().WithClock(f.clock.Now)
	f.svc = NewService(f.profiles, f.guilds, f.sessions,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithRandom(f.rnd),
		WithClock(f.clock.Now),
		WithReminder(f.reminder),
	)
	return f
}

func (f *fixture) seed(t *testing.T, key domain.Key, mutate func(p *domain.Profile)) {
	t.Helper()
	_, err := f.profiles.Update(context.Background(), key, func(p *domain.Profile) error {
		mutate(p)
		return nil
	})
	require.NoError(t, err)
}

func (f *fixture) wallet(t *testing.T, key domain.Key, balance int64) {
	t.Helper()
	f.seed(t, key, func(p *domain.Profile) { p.Balance = balance })
}

func (f *fixture) profile(t *testing.T, key domain.Key) *domain.Profile {
	t.Helper()
	p, err := f.profiles.Get(context.Background(), key)
	require.NoError(t, err)
	return p
}

func (f *fixture) setRolls(values ...float64) {
	f.rnd.mu.Lock()
	f.rnd.values = values
	f.rnd.mu.Unlock()
}

func requireAppError(t *testing.T, err error, kind apperrors.Kind, key string) {
	t.Helper()

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	require.Equal(t, kind, appErr.Kind)
	require.Equal(t, key, appErr.Key)
}
