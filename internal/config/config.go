package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/jhnwsk/spotify2tidal/internal/domain"
)

//go:embed config.example.toml
var exampleConf []byte

// Config holds all application configuration. Values come from the embedded
// defaults, then an optional TOML file, then the environment.
type Config struct {
	Spotify          SpotifyConfig `toml:"spotify"`
	Tidal            TidalConfig   `toml:"tidal"`
	ResultsDir       string        `toml:"results_dir"`
	MigrationWorkers int           `toml:"migration_workers"`
	LogLevel         string        `toml:"log_level"`
	LogFile          string        `toml:"log_file"`
	Port             string        `toml:"port"`
}

// SpotifyConfig contains source catalog credentials.
type SpotifyConfig struct {
	ClientID     string `toml:"client_id"`
	ClientSecret string `toml:"client_secret"`
	RedirectURI  string `toml:"redirect_uri"`
	AccessToken  string `toml:"access_token"`
	RefreshToken string `toml:"refresh_token"`
}

// HasUserToken reports whether a user-authorized token was supplied.
func (c SpotifyConfig) HasUserToken() bool {
	return c.AccessToken != "" || c.RefreshToken != ""
}

// TidalConfig contains target catalog credentials and request settings.
type TidalConfig struct {
	ClientID          string  `toml:"client_id"`
	ClientSecret      string  `toml:"client_secret"`
	AccessToken       string  `toml:"access_token"`
	RefreshToken      string  `toml:"refresh_token"`
	UserID            string  `toml:"user_id"`
	CountryCode       string  `toml:"country_code"`
	RequestsPerSecond float64 `toml:"requests_per_second"`
}

// Default returns the embedded defaults.
func Default() *Config {
	var cfg Config
	if err := toml.Unmarshal(exampleConf, &cfg); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &cfg
}

// Load builds the configuration. path may be empty; a .env file in the
// working directory is honored but never overrides the process environment.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("%w: failed to read config file: %v", domain.ErrConfiguration, err)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("%w: failed to parse config: %v", domain.ErrConfiguration, err)
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: failed to load .env: %v", domain.ErrConfiguration, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if cfg.MigrationWorkers < 1 {
		cfg.MigrationWorkers = 1
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	setString(&c.Spotify.ClientID, "SPOTIFY_CLIENT_ID")
	setString(&c.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET")
	setString(&c.Spotify.RedirectURI, "SPOTIFY_REDIRECT_URI")
	setString(&c.Spotify.AccessToken, "SPOTIFY_ACCESS_TOKEN")
	setString(&c.Spotify.RefreshToken, "SPOTIFY_REFRESH_TOKEN")

	setString(&c.Tidal.ClientID, "TIDAL_CLIENT_ID")
	setString(&c.Tidal.ClientSecret, "TIDAL_CLIENT_SECRET")
	setString(&c.Tidal.AccessToken, "TIDAL_ACCESS_TOKEN")
	setString(&c.Tidal.RefreshToken, "TIDAL_REFRESH_TOKEN")
	setString(&c.Tidal.UserID, "TIDAL_USER_ID")
	setString(&c.Tidal.CountryCode, "TIDAL_COUNTRY_CODE")

	setString(&c.ResultsDir, "RESULTS_DIR")
	setString(&c.LogLevel, "LOG_LEVEL")
	setString(&c.LogFile, "LOG_FILE")
	setString(&c.Port, "PORT")

	if v, ok := lookup("MIGRATION_WORKERS"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: MIGRATION_WORKERS must be an integer, got %q", domain.ErrConfiguration, v)
		}
		c.MigrationWorkers = n
	}
	if v, ok := lookup("TIDAL_REQUESTS_PER_SECOND"); ok {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%w: TIDAL_REQUESTS_PER_SECOND must be a number, got %q", domain.ErrConfiguration, v)
		}
		c.Tidal.RequestsPerSecond = f
	}
	return nil
}

// Missing lists the environment keys of required settings that are unset.
// A Spotify user token is only needed for the owned-playlist commands and is
// not reported here.
func (c *Config) Missing() []string {
	var missing []string
	check := func(value, key string) {
		if value == "" {
			missing = append(missing, key)
		}
	}

	check(c.Spotify.ClientID, "SPOTIFY_CLIENT_ID")
	check(c.Spotify.ClientSecret, "SPOTIFY_CLIENT_SECRET")
	check(c.Tidal.ClientID, "TIDAL_CLIENT_ID")
	if c.Tidal.AccessToken == "" && c.Tidal.RefreshToken == "" {
		missing = append(missing, "TIDAL_ACCESS_TOKEN")
	}
	return missing
}

// Validate fails with domain.ErrConfiguration when required settings are missing.
func (c *Config) Validate() error {
	if missing := c.Missing(); len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", domain.ErrConfiguration, strings.Join(missing, ", "))
	}
	return nil
}

// Example returns the commented example configuration file.
func Example() []byte {
	return exampleConf
}

// CreateConfigFile writes the example configuration to path unless a file
// already exists there.
func CreateConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}
	if err := os.WriteFile(path, exampleConf, 0o600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func setString(dst *string, key string) {
	if v, ok := lookup(key); ok {
		*dst = v
	}
}

// lookup treats an empty variable as unset.
func lookup(key string) (string, bool) {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		return "", false
	}
	return v, true
}
