package main

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/jhnwsk/spotify2tidal/internal/config"
	"github.com/jhnwsk/spotify2tidal/internal/domain"
	"github.com/jhnwsk/spotify2tidal/internal/ports"
)

type fakeService struct {
	playlists []domain.SourcePlaylist
	results   []domain.MigrationResult
	err       error

	dryRun    bool
	selected  []string
	importReq domain.ImportRequest
}

func (f *fakeService) ListPlaylists(context.Context) ([]domain.SourcePlaylist, error) {
	return f.playlists, f.err
}

func (f *fakeService) MigrateAll(_ context.Context, dryRun bool) ([]domain.MigrationResult, error) {
	f.dryRun = dryRun
	return f.results, f.err
}

func (f *fakeService) MigrateSelected(_ context.Context, names []string, dryRun bool) ([]domain.MigrationResult, error) {
	f.selected = names
	f.dryRun = dryRun
	return f.results, f.err
}

func (f *fakeService) ImportPlaylist(_ context.Context, req domain.ImportRequest) (*domain.MigrationResult, error) {
	f.importReq = req
	if f.err != nil {
		return nil, f.err
	}
	return &f.results[0], nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Spotify.ClientID = "id"
	cfg.Spotify.ClientSecret = "secret"
	cfg.Tidal.ClientID = "tidal"
	cfg.Tidal.AccessToken = "token"
	cfg.ResultsDir = "out"
	return cfg
}

func newTestRunner(svc *fakeService, out *bytes.Buffer) (*Runner, *string) {
	var configPath string
	r := NewRunner(RunnerOpts{
		Output: out,
		Logger: zap.NewNop(),
		LoadConfig: func(path string) (*config.Config, error) {
			configPath = path
			return testConfig(), nil
		},
		NewService: func(context.Context, *config.Config, *zap.Logger) (ports.MigrationService, error) {
			return svc, nil
		},
	})
	return r, &configPath
}

func run(t *testing.T, r *Runner, args ...string) error {
	t.Helper()
	return newApp(r).Run(context.Background(), append([]string{"spotify2tidal"}, args...))
}

func sampleResults() []domain.MigrationResult {
	return []domain.MigrationResult{
		{PlaylistName: "Road Trip", TotalTracks: 10, SuccessfulMatches: 7, FailedMatches: 3, SuccessRate: 70},
	}
}

func TestNewRunner_Defaults(t *testing.T) {
	r := NewRunner(RunnerOpts{})

	assert.NotNil(t, r.output)
	assert.NotNil(t, r.loadConfig)
	assert.NotNil(t, r.newService)
	assert.Nil(t, r.logger)
}

func TestMigrateAll_PrintsSummary(t *testing.T) {
	out := &bytes.Buffer{}
	svc := &fakeService{results: sampleResults()}
	r, configPath := newTestRunner(svc, out)

	err := run(t, r, "--config", "my.toml", "migrate-all", "--dry-run")

	require.NoError(t, err)
	assert.True(t, svc.dryRun)
	assert.Equal(t, "my.toml", *configPath)
	assert.Contains(t, out.String(), "DRY RUN MODE")
	assert.Contains(t, out.String(), "MIGRATION SUMMARY")
	assert.Contains(t, out.String(), "Road Trip: 7/10")
	assert.Contains(t, out.String(), "saved to out/")
	assert.Contains(t, out.String(), "Dry run completed")
}

func TestMigrateAll_ServiceError(t *testing.T) {
	out := &bytes.Buffer{}
	svc := &fakeService{err: fmt.Errorf("%w: token expired", domain.ErrAuthentication)}
	r, _ := newTestRunner(svc, out)

	err := run(t, r, "migrate-all")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrAuthentication)
	assert.NotContains(t, out.String(), "MIGRATION SUMMARY")
}

func TestMigrate_PassesNames(t *testing.T) {
	out := &bytes.Buffer{}
	svc := &fakeService{results: sampleResults()}
	r, _ := newTestRunner(svc, out)

	err := run(t, r, "migrate", "road trip", "Chill")

	require.NoError(t, err)
	assert.Equal(t, []string{"road trip", "Chill"}, svc.selected)
	assert.False(t, svc.dryRun)
	assert.Contains(t, out.String(), "Target playlists: road trip, Chill")
	assert.Contains(t, out.String(), "Migration completed!")
}

func TestMigrate_RequiresNames(t *testing.T) {
	r, _ := newTestRunner(&fakeService{}, &bytes.Buffer{})

	err := run(t, r, "migrate")

	assert.ErrorIs(t, err, ErrMissingArgument)
}

func TestMigrate_NothingFound(t *testing.T) {
	out := &bytes.Buffer{}
	r, _ := newTestRunner(&fakeService{}, out)

	err := run(t, r, "migrate", "nope")

	require.NoError(t, err)
	assert.Contains(t, out.String(), "No matching playlists found")
	assert.NotContains(t, out.String(), "MIGRATION SUMMARY")
}

func TestListPlaylists(t *testing.T) {
	out := &bytes.Buffer{}
	svc := &fakeService{playlists: []domain.SourcePlaylist{
		{Name: "Road Trip", TotalTracks: 12, Description: "for the car"},
		{Name: "Chill", TotalTracks: 3},
	}}
	r, _ := newTestRunner(svc, out)

	err := run(t, r, "list-playlists")

	require.NoError(t, err)
	assert.Contains(t, out.String(), "Road Trip")
	assert.Contains(t, out.String(), "(12 tracks)")
	assert.Contains(t, out.String(), "for the car")
	assert.Contains(t, out.String(), "Total: 2 playlists")
}

func TestImportURL(t *testing.T) {
	out := &bytes.Buffer{}
	svc := &fakeService{results: sampleResults()}
	r, _ := newTestRunner(svc, out)

	err := run(t, r, "import-url", "--name", "Mix", "--dry-run", "https://open.spotify.com/playlist/abc")

	require.NoError(t, err)
	assert.Equal(t, domain.ImportRequest{
		URL:    "https://open.spotify.com/playlist/abc",
		Name:   "Mix",
		DryRun: true,
	}, svc.importReq)
	assert.Contains(t, out.String(), "MIGRATION SUMMARY")
}

func TestImportURL_RequiresURL(t *testing.T) {
	r, _ := newTestRunner(&fakeService{}, &bytes.Buffer{})

	err := run(t, r, "import-url")

	assert.ErrorIs(t, err, ErrMissingArgument)
}

func TestSession_ReportsMissingConfiguration(t *testing.T) {
	out := &bytes.Buffer{}
	r := NewRunner(RunnerOpts{
		Output: out,
		Logger: zap.NewNop(),
		LoadConfig: func(string) (*config.Config, error) {
			return config.Default(), nil
		},
		NewService: func(_ context.Context, cfg *config.Config, _ *zap.Logger) (ports.MigrationService, error) {
			return nil, cfg.Validate()
		},
	})

	err := run(t, r, "migrate-all")

	assert.ErrorIs(t, err, domain.ErrConfiguration)
	assert.Contains(t, out.String(), "Missing configuration:")
	assert.Contains(t, out.String(), "SPOTIFY_CLIENT_ID")
}

func TestSetup_PrintsGuide(t *testing.T) {
	out := &bytes.Buffer{}
	r, _ := newTestRunner(&fakeService{}, out)

	err := run(t, r, "setup")

	require.NoError(t, err)
	assert.Contains(t, out.String(), "developer.spotify.com")
	assert.Contains(t, out.String(), "migrate-all --dry-run")
}

func TestSetup_WritesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	out := &bytes.Buffer{}
	r, _ := newTestRunner(&fakeService{}, out)

	err := run(t, r, "--config", path, "setup", "--write")

	require.NoError(t, err)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, config.Example(), data)

	err = run(t, r, "--config", path, "setup", "--write")
	assert.Error(t, err)
}
