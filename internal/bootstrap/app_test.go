package bootstrap

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chemsite/internal/config"
	"chemsite/internal/i18n"
	"chemsite/internal/notify"
	"chemsite/internal/repository"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	cfg, err := config.Load()
	require.NoError(t, err)
	return cfg
}

func TestBuildDefaultsToInProcessResources(t *testing.T) {
	a, err := Build(context.Background(), testConfig(t), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	assert.IsType(t, &repository.MemoryContactStore{}, a.Store)
	assert.IsType(t, &i18n.MemoryPreferenceStore{}, a.Preferences)
	assert.IsType(t, &notify.Direct{}, a.Publisher)
	assert.Nil(t, a.Redis)
	assert.Nil(t, a.MQConn)
	assert.Nil(t, a.NotifyWorker)
	assert.Equal(t, "en", a.Bundle.Fallback())
	assert.NotEmpty(t, a.Catalog.Categories())
}

func TestBuildOpensSQLiteStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Contact.Store = config.StoreSQLite
	cfg.SQLite.Path = filepath.Join(t.TempDir(), "contacts.db")

	a, err := Build(context.Background(), cfg, nil)
	require.NoError(t, err)
	assert.IsType(t, &repository.SQLiteContactStore{}, a.Store)
	assert.NoError(t, a.Store.Ping(context.Background()))
	assert.NoError(t, a.Close())
}

func TestBuildFailsOnUnknownDefaultLanguage(t *testing.T) {
	cfg := testConfig(t)
	cfg.I18n.DefaultLanguage = "tlh"

	_, err := Build(context.Background(), cfg, nil)
	assert.Error(t, err)
}
