package tidal

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/jhnwsk/spotify2tidal/internal/domain"
)

const (
	DefaultBaseURL     = "https://openapi.tidal.com/v2"
	DefaultUserID      = "me"
	DefaultCountryCode = "US"

	maxSearchLimit = 20
	maxBatch       = 100
)

// Options configures the target catalog client.
type Options struct {
	BaseURL     string
	UserID      string
	CountryCode string
	// RequestsPerSecond caps outgoing requests. Zero or less disables the cap.
	RequestsPerSecond float64
}

// Client implements ports.TargetCatalogClient against the TIDAL open API.
// The http.Client is expected to attach credentials.
type Client struct {
	client  *http.Client
	opts    Options
	limiter *rate.Limiter
	logger  *zap.Logger
}

// NewClient creates a client. Empty options fall back to the defaults.
func NewClient(httpClient *http.Client, opts Options, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserID == "" {
		opts.UserID = DefaultUserID
	}
	if opts.CountryCode == "" {
		opts.CountryCode = DefaultCountryCode
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	if opts.RequestsPerSecond > 0 {
		limit = rate.Limit(opts.RequestsPerSecond)
	}

	return &Client{
		client:  httpClient,
		opts:    opts,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
}

// -- API payloads (internal) -------------------------------------------------

type searchResponse struct {
	Tracks []apiTrack `json:"tracks"`
}

type apiTrack struct {
	ID       json.Number `json:"id"`
	Title    string      `json:"title"`
	Artists  []apiArtist `json:"artists"`
	Album    *apiAlbum   `json:"album"`
	Duration int         `json:"duration"`
	ISRC     string      `json:"isrc"`
}

type apiArtist struct {
	Name string `json:"name"`
}

type apiAlbum struct {
	Title string `json:"title"`
}

type createPlaylistRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type apiPlaylist struct {
	UUID        string `json:"uuid"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type resourceRef struct {
	ID   string `json:"id"`
	Type string `json:"type"`
}

type addTracksRequest struct {
	Data []resourceRef `json:"data"`
}

// -- TargetCatalogClient implementation --------------------------------------

// Search queries the catalog's track index. limit is clamped to 1..20.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]domain.TargetTrack, error) {
	limit = max(1, min(limit, maxSearchLimit))

	params := url.Values{}
	params.Set("countryCode", c.opts.CountryCode)
	params.Set("limit", strconv.Itoa(limit))
	endpoint := fmt.Sprintf("%s/searchresults/%s/relationships/tracks?%s",
		c.opts.BaseURL, url.PathEscape(query), params.Encode())

	body, err := c.doGet(ctx, endpoint)
	if err != nil {
		return nil, fmt.Errorf("tidal: search failed: %w", err)
	}

	var resp searchResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: tidal: failed to parse search response: %v", domain.ErrTransientAPI, err)
	}

	tracks := make([]domain.TargetTrack, 0, len(resp.Tracks))
	for _, t := range resp.Tracks {
		tracks = append(tracks, toTrack(t))
	}
	return tracks, nil
}

// CreatePlaylist creates a playlist owned by the configured user.
func (c *Client) CreatePlaylist(ctx context.Context, name string, description string) (*domain.TargetPlaylist, error) {
	payload, err := json.Marshal(createPlaylistRequest{Name: name, Description: description})
	if err != nil {
		return nil, err
	}

	endpoint := fmt.Sprintf("%s/users/%s/playlists", c.opts.BaseURL, url.PathEscape(c.opts.UserID))
	body, err := c.doPost(ctx, endpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("tidal: failed to create playlist: %w", err)
	}

	var resp apiPlaylist
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: tidal: failed to parse create playlist response: %v", domain.ErrTransientAPI, err)
	}

	c.logger.Info("created tidal playlist", zap.String("name", resp.Name), zap.String("id", resp.UUID))
	return &domain.TargetPlaylist{ID: resp.UUID, Name: resp.Name, Description: resp.Description}, nil
}

// AddTracks appends up to 100 tracks to a playlist. Any non-success
// response means the batch was not applied.
func (c *Client) AddTracks(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}
	if len(trackIDs) > maxBatch {
		return fmt.Errorf("%w: %d tracks exceeds the batch limit of %d", domain.ErrBatchRejected, len(trackIDs), maxBatch)
	}

	req := addTracksRequest{Data: make([]resourceRef, 0, len(trackIDs))}
	for _, id := range trackIDs {
		req.Data = append(req.Data, resourceRef{ID: id, Type: "tracks"})
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}

	endpoint := fmt.Sprintf("%s/playlists/%s/relationships/tracks", c.opts.BaseURL, url.PathEscape(playlistID))
	if _, err := c.doPost(ctx, endpoint, payload); err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return err
		}
		return fmt.Errorf("%w: %w", domain.ErrBatchRejected, err)
	}

	c.logger.Debug("added tracks to playlist", zap.String("playlist", playlistID), zap.Int("count", len(trackIDs)))
	return nil
}

// -- HTTP helpers ------------------------------------------------------------

// statusError carries a non-success response.
type statusError struct {
	status int
	body   string
}

func (e *statusError) Error() string {
	return fmt.Sprintf("tidal API returned status %d: %s", e.status, e.body)
}

func (c *Client) doGet(ctx context.Context, endpoint string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *Client) doPost(ctx context.Context, endpoint string, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	ctx := req.Context()
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return nil, fmt.Errorf("%w: %w", domain.ErrAuthentication, err)
		}
		return nil, fmt.Errorf("%w: %w", domain.ErrTransientAPI, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrTransientAPI, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.logger.Debug("tidal request failed",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, fmt.Errorf("%w: %w", domain.ErrTransientAPI, &statusError{status: resp.StatusCode, body: string(body)})
	}

	return body, nil
}

// -- Helpers -----------------------------------------------------------------

func toTrack(t apiTrack) domain.TargetTrack {
	artists := make([]string, 0, len(t.Artists))
	for _, a := range t.Artists {
		artists = append(artists, a.Name)
	}

	var album string
	if t.Album != nil {
		album = t.Album.Title
	}

	return domain.TargetTrack{
		ID:              t.ID.String(),
		Name:            t.Title,
		Artists:         artists,
		Album:           album,
		DurationSeconds: t.Duration,
		ISRC:            t.ISRC,
	}
}
