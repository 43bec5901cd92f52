package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhnwsk/spotify2tidal/internal/domain"
)

var envKeys = []string{
	"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "SPOTIFY_REDIRECT_URI", "SPOTIFY_ACCESS_TOKEN", "SPOTIFY_REFRESH_TOKEN",
	"TIDAL_CLIENT_ID", "TIDAL_CLIENT_SECRET", "TIDAL_ACCESS_TOKEN", "TIDAL_REFRESH_TOKEN", "TIDAL_USER_ID",
	"TIDAL_COUNTRY_CODE", "TIDAL_REQUESTS_PER_SECOND", "RESULTS_DIR", "MIGRATION_WORKERS", "LOG_LEVEL", "LOG_FILE", "PORT",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range envKeys {
		t.Setenv(key, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, "migration_results", cfg.ResultsDir)
	assert.Equal(t, 1, cfg.MigrationWorkers)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "me", cfg.Tidal.UserID)
	assert.Equal(t, "US", cfg.Tidal.CountryCode)
	assert.Equal(t, 4.0, cfg.Tidal.RequestsPerSecond)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
results_dir = "out"
migration_workers = 3

[spotify]
client_id = "file-id"
client_secret = "file-secret"

[tidal]
country_code = "DE"
`), 0o600))
	t.Setenv("SPOTIFY_CLIENT_ID", "env-id")
	t.Setenv("TIDAL_REQUESTS_PER_SECOND", "2.5")

	cfg, err := Load(path)

	require.NoError(t, err)
	assert.Equal(t, "env-id", cfg.Spotify.ClientID)
	assert.Equal(t, "file-secret", cfg.Spotify.ClientSecret)
	assert.Equal(t, "out", cfg.ResultsDir)
	assert.Equal(t, 3, cfg.MigrationWorkers)
	assert.Equal(t, "DE", cfg.Tidal.CountryCode)
	assert.Equal(t, 2.5, cfg.Tidal.RequestsPerSecond)
	// Keys absent from the file keep their defaults.
	assert.Equal(t, "me", cfg.Tidal.UserID)
}

func TestLoad_InvalidNumbers(t *testing.T) {
	clearEnv(t)
	t.Setenv("MIGRATION_WORKERS", "many")

	_, err := Load("")

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestLoad_WorkersFloor(t *testing.T) {
	clearEnv(t)
	t.Setenv("MIGRATION_WORKERS", "0")

	cfg, err := Load("")

	require.NoError(t, err)
	assert.Equal(t, 1, cfg.MigrationWorkers)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "nope.toml"))

	assert.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestValidate(t *testing.T) {
	clearEnv(t)
	cfg, err := Load("")
	require.NoError(t, err)

	err = cfg.Validate()
	require.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Equal(t, []string{"SPOTIFY_CLIENT_ID", "SPOTIFY_CLIENT_SECRET", "TIDAL_CLIENT_ID", "TIDAL_ACCESS_TOKEN"}, cfg.Missing())

	cfg.Spotify.ClientID = "id"
	cfg.Spotify.ClientSecret = "secret"
	cfg.Tidal.ClientID = "tidal"
	cfg.Tidal.RefreshToken = "refresh"
	assert.NoError(t, cfg.Validate())
	assert.False(t, cfg.Spotify.HasUserToken())
}

func TestCreateConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, CreateConfigFile(path))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Example(), data)

	assert.Error(t, CreateConfigFile(path))
}
