package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("LLM_API_KEY", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "chemsite", cfg.App.Name)
	assert.Equal(t, StoreMemory, cfg.Contact.Store)
	assert.Equal(t, "", cfg.LLM.APIKey)
	assert.Equal(t, 3, cfg.LLM.MaxAttempts)
	assert.Equal(t, "en", cfg.I18n.DefaultLanguage)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTPAddr())
}

func TestLoadFileThenEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[app]
port = 9090

[llm]
model = "file-model"
temperature = 0.2

[contact]
store = "sqlite"

[sqlite]
path = "/tmp/contacts.db"

[redis]
enabled = true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("LLM_MODEL", "env-model")
	t.Setenv("LLM_API_KEY", "sk-test")
	t.Setenv("RABBITMQ_ENABLED", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, "env-model", cfg.LLM.Model)
	assert.InDelta(t, 0.2, cfg.LLM.Temperature, 1e-9)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
	assert.Equal(t, StoreSQLite, cfg.Contact.Store)
	assert.Equal(t, "/tmp/contacts.db", cfg.SQLite.Path)
	assert.True(t, cfg.Redis.Enabled)
	assert.True(t, cfg.RabbitMQ.Enabled)
}

func TestLoadRejectsUnknownStore(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("CONTACT_STORE", "postgres")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "postgres")
}

func TestInvalidEnvFallsBack(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("APP_PORT", "not-a-number")
	t.Setenv("LLM_TEMPERATURE", "warm")
	t.Setenv("REDIS_ENABLED", "maybe")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.InDelta(t, 0.7, cfg.LLM.Temperature, 1e-9)
	assert.False(t, cfg.Redis.Enabled)
}

func TestMySQLDSN(t *testing.T) {
	cfg := defaultConfig()
	cfg.MySQL.Password = "secret"
	assert.Equal(t, "root:secret@tcp(127.0.0.1:3306)/chemsite?parseTime=true&loc=UTC&charset=utf8mb4", cfg.MySQLDSN())
}

func TestShippedConfigKeepsMessagesInMemory(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join("..", "..", "configs", "config.toml"))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, StoreMemory, cfg.Contact.Store)
	assert.False(t, cfg.AdminEnabled())
}

func TestAdminRequiresOwnJWTSecret(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.toml"))
	t.Setenv("ADMIN_PASSWORD_HASH", "$2a$10$abcdefghijklmnopqrstuv")

	for _, secret := range []string{DefaultJWTSecret, "  "} {
		t.Setenv("JWT_SECRET", secret)
		_, err := Load()
		require.Error(t, err, "secret %q", secret)
		assert.Contains(t, err.Error(), "jwt_secret")
	}

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.AdminEnabled())
}

func TestAdminDisabledAcceptsDefaultSecret(t *testing.T) {
	cfg := defaultConfig()
	require.NoError(t, cfg.Validate())
	assert.False(t, cfg.AdminEnabled())
}
