package spotify

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"

	"github.com/zmb3/spotify/v2"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/jhnwsk/spotify2tidal/internal/domain"
)

const (
	// DisplayName labels the source catalog in synthesized descriptions.
	DisplayName = "Spotify"

	playlistPageSize = 50
	trackPageSize    = 100
)

// catalog holds the read operations shared by both access modes.
type catalog struct {
	api    *spotify.Client
	logger *zap.Logger
}

func newCatalog(httpClient *http.Client, logger *zap.Logger) catalog {
	if logger == nil {
		logger = zap.NewNop()
	}
	return catalog{
		api:    spotify.New(httpClient, spotify.WithRetry(true)),
		logger: logger,
	}
}

func (c catalog) Name() string { return DisplayName }

// GetPlaylist returns a playlist and all of its tracks.
func (c catalog) GetPlaylist(ctx context.Context, playlistID string) (*domain.SourcePlaylist, error) {
	full, err := c.api.GetPlaylist(ctx, spotify.ID(playlistID))
	if err != nil {
		return nil, classify(err)
	}

	tracks, err := c.playlistTracks(ctx, full.ID)
	if err != nil {
		return nil, err
	}

	return &domain.SourcePlaylist{
		ID:          full.ID.String(),
		Name:        full.Name,
		Description: full.Description,
		Tracks:      tracks,
		TotalTracks: int(full.Tracks.Total),
		Public:      full.IsPublic,
		Owner:       ownerName(full.Owner),
	}, nil
}

// playlistTracks pages through a playlist's items. Local files and
// episodes have no catalog track id and are skipped.
func (c catalog) playlistTracks(ctx context.Context, playlistID spotify.ID) ([]domain.SourceTrack, error) {
	page, err := c.api.GetPlaylistItems(ctx, playlistID, spotify.Limit(trackPageSize))
	if err != nil {
		return nil, classify(err)
	}

	var tracks []domain.SourceTrack
	for {
		for _, item := range page.Items {
			if item.IsLocal || item.Track.Track == nil || item.Track.Track.ID == "" {
				continue
			}
			tracks = append(tracks, convertTrack(item.Track.Track))
		}

		err := c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, classify(err)
		}
	}
	return tracks, nil
}

// UserClient reads the playlists of the user who authorized the token.
type UserClient struct {
	catalog
	userID string
}

// NewUserClient verifies the token behind httpClient by fetching the current
// user. Any failure is reported as domain.ErrAuthentication.
func NewUserClient(ctx context.Context, httpClient *http.Client, logger *zap.Logger) (*UserClient, error) {
	c := newCatalog(httpClient, logger)

	user, err := c.api.CurrentUser(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: spotify: %v", domain.ErrAuthentication, err)
	}

	c.logger.Info("authenticated with spotify", zap.String("user", user.ID))
	return &UserClient{catalog: c, userID: user.ID}, nil
}

// UserID is the id of the authenticated user.
func (c *UserClient) UserID() string { return c.userID }

// ListOwnedPlaylists returns the playlists the user owns, each with tracks.
// Playlists followed but owned by someone else are left out.
func (c *UserClient) ListOwnedPlaylists(ctx context.Context) ([]domain.SourcePlaylist, error) {
	page, err := c.api.CurrentUsersPlaylists(ctx, spotify.Limit(playlistPageSize))
	if err != nil {
		return nil, classify(err)
	}

	var playlists []domain.SourcePlaylist
	for {
		for _, p := range page.Playlists {
			if p.Owner.ID != c.userID {
				continue
			}

			tracks, err := c.playlistTracks(ctx, p.ID)
			if err != nil {
				if ctx.Err() != nil {
					return nil, ctx.Err()
				}
				c.logger.Warn("skipping playlist, could not fetch tracks",
					zap.String("playlist", p.Name),
					zap.Error(err),
				)
				continue
			}

			playlists = append(playlists, domain.SourcePlaylist{
				ID:          p.ID.String(),
				Name:        p.Name,
				Description: p.Description,
				Tracks:      tracks,
				TotalTracks: int(p.Tracks.Total),
				Public:      p.IsPublic,
				Owner:       ownerName(p.Owner),
			})
		}

		err := c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, classify(err)
		}
	}

	c.logger.Debug("fetched owned playlists", zap.Int("count", len(playlists)))
	return playlists, nil
}

// PublicClient reads public playlists with application credentials only.
type PublicClient struct {
	catalog
}

// NewPublicClient wraps an http.Client carrying client-credentials tokens.
func NewPublicClient(httpClient *http.Client, logger *zap.Logger) *PublicClient {
	return &PublicClient{catalog: newCatalog(httpClient, logger)}
}

// ListOwnedPlaylists always fails: application credentials have no user.
func (c *PublicClient) ListOwnedPlaylists(_ context.Context) ([]domain.SourcePlaylist, error) {
	return nil, fmt.Errorf("%w: listing owned playlists requires user authorization", domain.ErrAuthentication)
}

var playlistIDPattern = regexp.MustCompile(`^[A-Za-z0-9]+$`)

// ParsePlaylistURL extracts the playlist id from an open.spotify.com link
// or a spotify:playlist: URI.
func ParsePlaylistURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	if rest, ok := strings.CutPrefix(raw, "spotify:playlist:"); ok {
		return validID(raw, rest)
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host != "open.spotify.com" {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidPlaylistURL, raw)
	}

	// Localized links carry a prefix such as /intl-de/.
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(segments); i++ {
		if segments[i] == "playlist" {
			return validID(raw, segments[i+1])
		}
	}
	return "", fmt.Errorf("%w: %q", domain.ErrInvalidPlaylistURL, raw)
}

func validID(raw, id string) (string, error) {
	if !playlistIDPattern.MatchString(id) {
		return "", fmt.Errorf("%w: %q", domain.ErrInvalidPlaylistURL, raw)
	}
	return id, nil
}

func convertTrack(t *spotify.FullTrack) domain.SourceTrack {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}
	return domain.SourceTrack{
		ID:         t.ID.String(),
		Name:       t.Name,
		Artists:    artists,
		Album:      t.Album.Name,
		DurationMs: int(t.Duration),
		ISRC:       t.ExternalIDs["isrc"],
		Popularity: int(t.Popularity),
	}
}

func ownerName(u spotify.User) string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.ID
}

// classify maps client errors onto the domain error kinds.
func classify(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var retrieveErr *oauth2.RetrieveError
	if errors.As(err, &retrieveErr) {
		return fmt.Errorf("%w: %w", domain.ErrAuthentication, err)
	}

	var apiErr spotify.Error
	if errors.As(err, &apiErr) {
		switch apiErr.Status {
		case http.StatusUnauthorized, http.StatusForbidden:
			return fmt.Errorf("%w: %w", domain.ErrAuthentication, err)
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", domain.ErrNotFound, err)
		}
	}
	return fmt.Errorf("%w: %w", domain.ErrTransientAPI, err)
}
