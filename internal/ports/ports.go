package ports

import (
	"context"

	"github.com/jhnwsk/spotify2tidal/internal/domain"
)

// SourceCatalogClient is the read-only side of a migration: the catalog the
// playlists are copied from.
type SourceCatalogClient interface {
	// Name is the display label used in synthesized playlist descriptions.
	Name() string

	// ListOwnedPlaylists returns every playlist owned by the authenticated
	// user, each with its full track list. Playlists whose tracks cannot be
	// fetched are skipped.
	ListOwnedPlaylists(ctx context.Context) ([]domain.SourcePlaylist, error)

	// GetPlaylist returns a single playlist with its tracks.
	GetPlaylist(ctx context.Context, playlistID string) (*domain.SourcePlaylist, error)
}

// TargetCatalogClient is the catalog playlists are migrated into.
type TargetCatalogClient interface {
	// Search returns at most limit candidates for a free-text query.
	Search(ctx context.Context, query string, limit int) ([]domain.TargetTrack, error)

	// CreatePlaylist creates an empty playlist owned by the configured user.
	CreatePlaylist(ctx context.Context, name string, description string) (*domain.TargetPlaylist, error)

	// AddTracks appends up to 100 track ids to a playlist, in order.
	AddTracks(ctx context.Context, playlistID string, trackIDs []string) error
}

// ReportWriter persists the results of a run.
type ReportWriter interface {
	Write(results []domain.MigrationResult) (string, error)
}

// MigrationService is the driving port used by the CLI and the HTTP API.
type MigrationService interface {
	// ListPlaylists returns the playlists owned by the authorized source user.
	ListPlaylists(ctx context.Context) ([]domain.SourcePlaylist, error)

	// MigrateAll migrates every owned playlist.
	MigrateAll(ctx context.Context, dryRun bool) ([]domain.MigrationResult, error)

	// MigrateSelected migrates the owned playlists whose names match,
	// case-insensitively. Unknown names are dropped.
	MigrateSelected(ctx context.Context, names []string, dryRun bool) ([]domain.MigrationResult, error)

	// ImportPlaylist migrates a public playlist referenced by URL.
	ImportPlaylist(ctx context.Context, req domain.ImportRequest) (*domain.MigrationResult, error)
}
