package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Env)
	assert.Equal(t, 8080, cfg.HTTPPort)
	assert.Equal(t, BackendMemory, cfg.DataBackend)
	assert.Equal(t, 24*time.Hour, cfg.JWTExpiry)
	assert.Equal(t, "https://kapi.kakao.com", cfg.Kakao.APIBaseURL)
	assert.False(t, cfg.Kakao.Enabled())
	assert.True(t, cfg.MetricsEnabled)
	assert.False(t, cfg.TrustProxyHeaders)
	assert.Empty(t, cfg.DatabaseDriver())
}

func TestLoadRequiresStrongSecret(t *testing.T) {
	chdir(t, t.TempDir())

	t.Setenv("JWT_SECRET", "")
	_, err := Load()
	require.Error(t, err)

	t.Setenv("JWT_SECRET", "too-short")
	_, err = Load()
	require.ErrorContains(t, err, "at least 32 bytes")
}

func TestLoadBackends(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("JWT_SECRET", testSecret)

	t.Setenv("DATA_BACKEND", "sqlite")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file:gift.db?_fk=1", cfg.DatabaseURL)
	assert.Equal(t, "sqlite3", cfg.DatabaseDriver())

	t.Setenv("DATA_BACKEND", "mysql")
	_, err = Load()
	require.ErrorContains(t, err, "DATABASE_URL")

	t.Setenv("DATABASE_URL", "gift:gift@tcp(localhost:3306)/gift")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Equal(t, "mysql", cfg.DatabaseDriver())

	t.Setenv("DATA_BACKEND", "postgres")
	_, err = Load()
	require.Error(t, err)
}

func TestLoadReadsDotEnvWithoutOverridingEnvironment(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	dotenv := "JWT_SECRET=" + testSecret + "\nHTTP_PORT=9090\nAPP_ENV=staging\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte(dotenv), 0o600))

	t.Setenv("APP_ENV", "production")
	// godotenv sets variables for the process; clear what the file adds
	t.Cleanup(func() {
		os.Unsetenv("JWT_SECRET")
		os.Unsetenv("HTTP_PORT")
	})

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.HTTPPort)
	assert.Equal(t, "production", cfg.Env)
}
