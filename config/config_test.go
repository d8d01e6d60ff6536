package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// unsetenv clears keys for the duration of the test.
func unsetenv(t *testing.T, keys ...string) {
	t.Helper()
	for _, k := range keys {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
}

func TestLoadDefaults(t *testing.T) {
	unsetenv(t, "PORT", "DB_DRIVER", "ACCESS_TOKEN_TTL", "TRANSACTION_LIST_LIMIT", "CORS_ORIGINS")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "5000", cfg.Port)
	assert.Equal(t, "sqlite", cfg.DBDriver)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 10, cfg.TransactionListLimit)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("TRANSACTION_LIST_LIMIT", "5")
	t.Setenv("CORS_ORIGINS", "http://localhost:3000,https://waysfood.app")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 5, cfg.TransactionListLimit)
	assert.Equal(t, []string{"http://localhost:3000", "https://waysfood.app"}, cfg.CORSOrigins)
}

func TestOpenDBMigrate(t *testing.T) {
	db, err := OpenDB("sqlite", filepath.Join(t.TempDir(), "waysfood.db"))
	require.NoError(t, err)
	require.NoError(t, Migrate(db))

	assert.True(t, db.Migrator().HasTable("transactions"))
	assert.True(t, db.Migrator().HasTable("orders"))
	assert.True(t, db.Migrator().HasTable("transaction_histories"))
}

func TestOpenDBUnknownDriver(t *testing.T) {
	_, err := OpenDB("oracle", "x")
	assert.ErrorContains(t, err, "unsupported DB_DRIVER")
}

func TestNewLoggerFallsBackToInfo(t *testing.T) {
	logger, err := NewLogger("not-a-level")
	require.NoError(t, err)
	assert.True(t, logger.Core().Enabled(0))
	assert.False(t, logger.Core().Enabled(-1))
}
