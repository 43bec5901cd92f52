// Package bootstrap wires configuration, credentials and catalog clients
// into a ready migration service.
package bootstrap

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/jhnwsk/spotify2tidal/internal/adapters"
	"github.com/jhnwsk/spotify2tidal/internal/adapters/spotify"
	"github.com/jhnwsk/spotify2tidal/internal/adapters/tidal"
	"github.com/jhnwsk/spotify2tidal/internal/app"
	"github.com/jhnwsk/spotify2tidal/internal/auth"
	"github.com/jhnwsk/spotify2tidal/internal/config"
	"github.com/jhnwsk/spotify2tidal/internal/report"
)

// App is the assembled application.
type App struct {
	Config  *config.Config
	Sources *adapters.SourceRegistry
	Target  *tidal.Client
	Reports *report.Writer
	Service *app.Service
}

// New validates cfg and builds every collaborator. Configuration and
// authentication problems are returned before any migration starts.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*App, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	spotifyCreds := auth.Credentials{
		ClientID:     cfg.Spotify.ClientID,
		ClientSecret: cfg.Spotify.ClientSecret,
		RedirectURL:  cfg.Spotify.RedirectURI,
		AccessToken:  cfg.Spotify.AccessToken,
		RefreshToken: cfg.Spotify.RefreshToken,
	}

	sources := adapters.NewSourceRegistry()

	appTokens, err := auth.SpotifyApp(ctx, spotifyCreds)
	if err != nil {
		return nil, err
	}
	sources.Register(adapters.SourcePublic,
		spotify.NewPublicClient(auth.HTTPClient(ctx, appTokens), log.Named("spotify")))

	if cfg.Spotify.HasUserToken() {
		userTokens, err := auth.SpotifyUser(ctx, spotifyCreds)
		if err != nil {
			return nil, err
		}
		user, err := spotify.NewUserClient(ctx, auth.HTTPClient(ctx, userTokens), log.Named("spotify"))
		if err != nil {
			return nil, err
		}
		sources.Register(adapters.SourceUser, user)
	} else {
		log.Info("no spotify user token configured, owned playlists are unavailable")
	}

	tidalTokens, err := auth.Tidal(ctx, auth.Credentials{
		ClientID:     cfg.Tidal.ClientID,
		ClientSecret: cfg.Tidal.ClientSecret,
		AccessToken:  cfg.Tidal.AccessToken,
		RefreshToken: cfg.Tidal.RefreshToken,
	})
	if err != nil {
		return nil, err
	}
	if err := auth.Verify(tidalTokens); err != nil {
		return nil, fmt.Errorf("tidal: %w", err)
	}

	target := tidal.NewClient(auth.HTTPClient(ctx, tidalTokens), tidal.Options{
		UserID:            cfg.Tidal.UserID,
		CountryCode:       cfg.Tidal.CountryCode,
		RequestsPerSecond: cfg.Tidal.RequestsPerSecond,
	}, log.Named("tidal"))

	reports := report.NewWriter(cfg.ResultsDir)
	service := app.NewService(sources, target, reports, log, cfg.MigrationWorkers)

	log.Debug("application wired",
		zap.Strings("sources", sources.Available()),
		zap.Int("workers", cfg.MigrationWorkers),
		zap.String("results_dir", cfg.ResultsDir),
	)

	return &App{
		Config:  cfg,
		Sources: sources,
		Target:  target,
		Reports: reports,
		Service: service,
	}, nil
}
