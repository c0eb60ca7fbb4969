package user

import (
	"context"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/econ-bot/internal/bot/handlers"
	"github.com/Proton-105/econ-bot/pkg/config"
	pkgredis "github.com/Proton-105/econ-bot/pkg/redis"
)

func newDirectory(t *testing.T) (*Directory, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client, err := pkgredis.New(context.Background(), config.RedisConfig{Addr: mr.Addr()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	return NewDirectory(pkgredis.NewMetricsClient(client), nil), mr
}

func TestDirectory_RememberAndLookup(t *testing.T) {
	ctx := context.Background()
	d, mr := newDirectory(t)

	alice := handlers.User{ID: "tg:42", Name: "Alice"}
	require.NoError(t, d.Remember(ctx, handlers.PlatformTelegram, "Alice_W", alice))
	assert.True(t, mr.Exists("user:telegram:alice_w"))
	assert.Equal(t, DefaultTTL, mr.TTL("user:telegram:alice_w"))

	for _, typed := range []string{"@alice_w", "ALICE_W", " @Alice_W "} {
		got, err := d.Lookup(ctx, handlers.PlatformTelegram, typed)
		require.NoError(t, err, typed)
		assert.Equal(t, alice, got)
	}

	_, err := d.Lookup(ctx, handlers.PlatformDiscord, "alice_w")
	assert.ErrorIs(t, err, ErrUnknown)
}

func TestDirectory_SkipsAnonymous(t *testing.T) {
	ctx := context.Background()
	d, mr := newDirectory(t)

	require.NoError(t, d.Remember(ctx, handlers.PlatformTelegram, "", handlers.User{ID: "tg:1"}))
	require.NoError(t, d.Remember(ctx, handlers.PlatformTelegram, "bob", handlers.User{}))
	assert.Empty(t, mr.Keys())

	_, err := d.Lookup(ctx, handlers.PlatformTelegram, "@")
	assert.ErrorIs(t, err, ErrUnknown)
}
