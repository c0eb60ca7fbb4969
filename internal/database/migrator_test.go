package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proton-105/econ-bot/migrations"
)

func TestListMigrations(t *testing.T) {
	fsys := fstest.MapFS{
		"sql/0002_b.up.sql":   {Data: []byte("SELECT 2")},
		"sql/0001_a.up.sql":   {Data: []byte("SELECT 1")},
		"sql/0001_a.down.sql": {Data: []byte("SELECT 0")},
		"sql/README.md":       {Data: []byte("docs")},
		"sql/nested/x.up.sql": {Data: []byte("SELECT 3")},
	}

	names, err := ListMigrations(fsys, "sql")
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_a.up.sql", "0002_b.up.sql"}, names)

	_, err = ListMigrations(fsys, "missing")
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	names, err := ListMigrations(migrations.FS, ".")
	require.NoError(t, err)
	require.Equal(t, []string{"0001_profiles.up.sql", "0002_guild_configs.up.sql"}, names)

	profiles, err := migrations.FS.ReadFile("0001_profiles.up.sql")
	require.NoError(t, err)
	for _, column := range []string{"doc", "version", "loan_due_at", "net_worth"} {
		assert.Contains(t, string(profiles), column)
	}
}
