// Package auth turns configured credentials into token sources for both
// catalogs. Interactive authorization flows are not handled here; tokens
// obtained elsewhere are refreshed automatically.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"time"

	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/jhnwsk/spotify2tidal/internal/domain"
)

// Endpoints can be replaced in tests.
var (
	SpotifyEndpoint = oauth2.Endpoint{
		AuthURL:  spotifyauth.AuthURL,
		TokenURL: spotifyauth.TokenURL,
	}
	TidalEndpoint = oauth2.Endpoint{
		AuthURL:  "https://login.tidal.com/authorize",
		TokenURL: "https://auth.tidal.com/v1/oauth2/token",
	}
)

// SpotifyScopes are the scopes the user token must carry.
var SpotifyScopes = []string{
	spotifyauth.ScopePlaylistReadPrivate,
	spotifyauth.ScopePlaylistReadCollaborative,
	spotifyauth.ScopeUserReadPrivate,
}

// Credentials are the OAuth settings for one catalog.
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	AccessToken  string
	RefreshToken string
}

// SpotifyUser returns a refreshing token source for a user-authorized token.
func SpotifyUser(ctx context.Context, c Credentials) (oauth2.TokenSource, error) {
	if err := requireClient(c, "SPOTIFY"); err != nil {
		return nil, err
	}
	conf := &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Endpoint:     SpotifyEndpoint,
		Scopes:       SpotifyScopes,
	}
	return userTokenSource(ctx, conf, c, "SPOTIFY")
}

// SpotifyApp returns a client-credentials token source, sufficient for
// reading public playlists.
func SpotifyApp(ctx context.Context, c Credentials) (oauth2.TokenSource, error) {
	if err := requireClient(c, "SPOTIFY"); err != nil {
		return nil, err
	}
	conf := &clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     SpotifyEndpoint.TokenURL,
	}
	return conf.TokenSource(ctx), nil
}

// Tidal returns a refreshing token source for the target catalog.
func Tidal(ctx context.Context, c Credentials) (oauth2.TokenSource, error) {
	if c.ClientID == "" {
		return nil, fmt.Errorf("%w: TIDAL_CLIENT_ID is not set", domain.ErrConfiguration)
	}
	conf := &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		Endpoint:     TidalEndpoint,
	}
	return userTokenSource(ctx, conf, c, "TIDAL")
}

// HTTPClient returns a client that authorizes every request with ts.
func HTTPClient(ctx context.Context, ts oauth2.TokenSource) *http.Client {
	return oauth2.NewClient(ctx, ts)
}

// Verify fetches a token once so credential problems surface before any
// catalog call.
func Verify(ts oauth2.TokenSource) error {
	if _, err := ts.Token(); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrAuthentication, err)
	}
	return nil
}

func userTokenSource(ctx context.Context, conf *oauth2.Config, c Credentials, prefix string) (oauth2.TokenSource, error) {
	if c.AccessToken == "" && c.RefreshToken == "" {
		return nil, fmt.Errorf("%w: %s_ACCESS_TOKEN or %s_REFRESH_TOKEN is required", domain.ErrConfiguration, prefix, prefix)
	}

	token := &oauth2.Token{
		AccessToken:  c.AccessToken,
		RefreshToken: c.RefreshToken,
		TokenType:    "Bearer",
	}
	if c.AccessToken != "" && c.RefreshToken != "" {
		// Unknown expiry: trust the access token for a while, then refresh.
		token.Expiry = time.Now().Add(30 * time.Minute)
	}
	return conf.TokenSource(ctx, token), nil
}

func requireClient(c Credentials, prefix string) error {
	var missing []string
	if c.ClientID == "" {
		missing = append(missing, prefix+"_CLIENT_ID")
	}
	if c.ClientSecret == "" {
		missing = append(missing, prefix+"_CLIENT_SECRET")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %v", domain.ErrConfiguration, missing)
	}
	return nil
}
