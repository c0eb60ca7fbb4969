package guildcache

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/econ-bot/internal/domain"
	pkgredis "github.com/Proton-105/econ-bot/pkg/redis"
	"github.com/Proton-105/econ-bot/pkg/config"
)

type mockGuildStore struct {
	mock.Mock
}

func (m *mockGuildStore) Get(ctx context.Context, guildID string) (*domain.GuildConfig, error) {
	args := m.Called(ctx, guildID)
	cfg, _ := args.Get(0).(*domain.GuildConfig)
	return cfg, args.Error(1)
}

func (m *mockGuildStore) Save(ctx context.Context, cfg *domain.GuildConfig) error {
	return m.Called(ctx, cfg).Error(0)
}

func newKV(t *testing.T) (*pkgredis.MetricsClient, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := pkgredis.New(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return pkgredis.NewMetricsClient(client), mr
}

func TestStore_ReadThrough(t *testing.T) {
	ctx := context.Background()
	kv, _ := newKV(t)
	inner := &mockGuildStore{}
	cfg := &domain.GuildConfig{GuildID: "g1", Locale: "ru"}
	inner.On("Get", mock.Anything, "g1").Return(cfg, nil).Once()

	s := New(inner, kv, time.Minute, nil)

	for i := 0; i < 3; i++ {
		got, err := s.Get(ctx, "g1")
		require.NoError(t, err)
		assert.Equal(t, "ru", got.Locale)
	}
	inner.AssertExpectations(t)
}

func TestStore_CachesAbsentGuilds(t *testing.T) {
	ctx := context.Background()
	kv, mr := newKV(t)
	inner := &mockGuildStore{}
	inner.On("Get", mock.Anything, "g2").Return(nil, nil).Once()

	s := New(inner, kv, time.Minute, nil)

	for i := 0; i < 2; i++ {
		got, err := s.Get(ctx, "g2")
		require.NoError(t, err)
		assert.Nil(t, got)
	}
	inner.AssertExpectations(t)

	mr.FastForward(2 * time.Minute)
	inner.On("Get", mock.Anything, "g2").Return(&domain.GuildConfig{GuildID: "g2"}, nil).Once()
	got, err := s.Get(ctx, "g2")
	require.NoError(t, err)
	assert.NotNil(t, got)
}

func TestStore_SaveInvalidates(t *testing.T) {
	ctx := context.Background()
	kv, mr := newKV(t)
	inner := &mockGuildStore{}
	old := &domain.GuildConfig{GuildID: "g1"}
	updated := &domain.GuildConfig{GuildID: "g1", Channels: domain.Channels{Games: "casino"}}

	inner.On("Get", mock.Anything, "g1").Return(old, nil).Once()
	inner.On("Save", mock.Anything, updated).Return(nil).Once()
	inner.On("Get", mock.Anything, "g1").Return(updated, nil).Once()

	s := New(inner, kv, time.Minute, nil)

	_, err := s.Get(ctx, "g1")
	require.NoError(t, err)
	require.NoError(t, s.Save(ctx, updated))
	assert.False(t, mr.Exists("guild:config:g1"))

	got, err := s.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "casino", got.Channels.Games)
	inner.AssertExpectations(t)
}

func TestStore_CorruptEntryFallsThrough(t *testing.T) {
	ctx := context.Background()
	kv, mr := newKV(t)
	require.NoError(t, mr.Set("guild:config:g1", "{broken"))

	inner := &mockGuildStore{}
	inner.On("Get", mock.Anything, "g1").Return(&domain.GuildConfig{GuildID: "g1"}, nil).Once()

	got, err := New(inner, kv, time.Minute, nil).Get(ctx, "g1")
	require.NoError(t, err)
	assert.Equal(t, "g1", got.GuildID)
}
