package main

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/jhnwsk/spotify2tidal/internal/config"
	"github.com/jhnwsk/spotify2tidal/internal/domain"
	"github.com/jhnwsk/spotify2tidal/internal/report"
)

// ErrMissingArgument is returned when a required positional argument is absent.
var ErrMissingArgument = errors.New("missing argument")

func dryRunFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:  "dry-run",
		Usage: "Match tracks and write the report without creating playlists",
	}
}

func migrateAllCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "migrate-all",
		Usage:  "Migrate every playlist you own",
		Flags:  []cli.Flag{dryRunFlag()},
		Action: r.MigrateAll,
	}
}

func migrateCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "migrate",
		Usage:     "Migrate the named playlists (names are case-insensitive)",
		ArgsUsage: "<playlist name>...",
		Flags:     []cli.Flag{dryRunFlag()},
		Action:    r.Migrate,
	}
}

func listPlaylistsCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "list-playlists",
		Usage:  "List the playlists you own",
		Action: r.ListPlaylists,
	}
}

func importURLCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "import-url",
		Usage:     "Migrate a public playlist by link",
		ArgsUsage: "<playlist url>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "name",
				Usage: "Name for the new playlist instead of the original",
			},
			dryRunFlag(),
		},
		Action: r.ImportURL,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Print the setup guide",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "write",
				Usage: "Also write an example configuration file to --config",
			},
		},
		Action: r.Setup,
	}
}

// MigrateAll migrates every owned playlist.
func (r *Runner) MigrateAll(ctx context.Context, cmd *cli.Command) error {
	dryRun := cmd.Bool("dry-run")
	r.writeBanner(dryRun)

	cfg, svc, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}

	results, err := svc.MigrateAll(ctx, dryRun)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	report.PrintSummary(r.output, results, cfg.ResultsDir)
	r.writeDone(dryRun)
	return nil
}

// Migrate migrates the playlists named on the command line.
func (r *Runner) Migrate(ctx context.Context, cmd *cli.Command) error {
	names := cmd.Args().Slice()
	if len(names) == 0 {
		return fmt.Errorf("%w: at least one playlist name is required", ErrMissingArgument)
	}

	dryRun := cmd.Bool("dry-run")
	r.writeBanner(dryRun)
	r.writePlain("Target playlists: %s\n", strings.Join(names, ", "))

	cfg, svc, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}

	results, err := svc.MigrateSelected(ctx, names, dryRun)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	if len(results) == 0 {
		r.writePlain("\n%s\n", warnStyle.Render("No matching playlists found"))
		return nil
	}

	report.PrintSummary(r.output, results, cfg.ResultsDir)
	r.writeDone(dryRun)
	return nil
}

// ListPlaylists prints the owned playlists with their track counts.
func (r *Runner) ListPlaylists(ctx context.Context, cmd *cli.Command) error {
	r.writePlain("%s\n", titleStyle.Render("Your Spotify Playlists"))
	r.writePlain("==================================================\n")

	_, svc, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}

	playlists, err := svc.ListPlaylists(ctx)
	if err != nil {
		return fmt.Errorf("failed to list playlists: %w", err)
	}
	if len(playlists) == 0 {
		r.writePlain("%s\n", warnStyle.Render("No playlists found"))
		return nil
	}

	for i, p := range playlists {
		r.writePlain("%2d. %s (%d tracks)\n", i+1, okStyle.Render(p.Name), p.TotalTracks)
		if p.Description != "" {
			r.writePlain("     %s\n", noteStyle.Render(p.Description))
		}
	}
	r.writePlain("\nTotal: %d playlists\n", len(playlists))
	return nil
}

// ImportURL migrates a public playlist given by link.
func (r *Runner) ImportURL(ctx context.Context, cmd *cli.Command) error {
	link := cmd.Args().First()
	if link == "" {
		return fmt.Errorf("%w: a playlist url is required", ErrMissingArgument)
	}

	dryRun := cmd.Bool("dry-run")
	r.writeBanner(dryRun)
	r.writePlain("Importing: %s\n", link)

	cfg, svc, err := r.session(ctx, cmd)
	if err != nil {
		return err
	}

	result, err := svc.ImportPlaylist(ctx, domain.ImportRequest{
		URL:    link,
		Name:   cmd.String("name"),
		DryRun: dryRun,
	})
	if err != nil {
		return fmt.Errorf("import failed: %w", err)
	}

	report.PrintSummary(r.output, []domain.MigrationResult{*result}, cfg.ResultsDir)
	r.writeDone(dryRun)
	return nil
}

// Setup prints the configuration guide and optionally writes an example file.
func (r *Runner) Setup(ctx context.Context, cmd *cli.Command) error {
	r.writePlain("%s\n", titleStyle.Render("spotify2tidal Setup Guide"))
	r.writePlain("==================================================\n")

	r.writePlain("\n%s\n", warnStyle.Render("1. Spotify API"))
	r.writePlain("   - Go to https://developer.spotify.com/dashboard/ and create an app\n")
	r.writePlain("   - Copy the Client ID and Client Secret\n")
	r.writePlain("   - Add %s as a redirect URI\n", config.Default().Spotify.RedirectURI)
	r.writePlain("   - To list or migrate your own playlists, obtain a user access or refresh token\n")

	r.writePlain("\n%s\n", warnStyle.Render("2. TIDAL API"))
	r.writePlain("   - Register an app at https://developer.tidal.com/\n")
	r.writePlain("   - Copy the Client ID and an access or refresh token\n")

	r.writePlain("\n%s\n", warnStyle.Render("3. Configuration"))
	r.writePlain("   - Put credentials in a TOML file, a .env file or the environment\n")
	r.writePlain("   - Keys: SPOTIFY_CLIENT_ID, SPOTIFY_CLIENT_SECRET, SPOTIFY_ACCESS_TOKEN,\n")
	r.writePlain("     SPOTIFY_REFRESH_TOKEN, TIDAL_CLIENT_ID, TIDAL_ACCESS_TOKEN, TIDAL_REFRESH_TOKEN\n")

	r.writePlain("\n%s\n", warnStyle.Render("4. Usage"))
	r.writePlain("   - spotify2tidal list-playlists\n")
	r.writePlain("   - spotify2tidal migrate-all --dry-run\n")
	r.writePlain("   - spotify2tidal migrate-all\n")
	r.writePlain("   - spotify2tidal import-url https://open.spotify.com/playlist/<id>\n")

	if cmd.Bool("write") {
		path := cmd.String("config")
		if path == "" {
			path = "config.toml"
		}
		if err := config.CreateConfigFile(path); err != nil {
			return err
		}
		r.writePlain("\n%s %s\n", okStyle.Render("Wrote example configuration to"), path)
	}

	r.writePlain("\n%s\n", okStyle.Render("Ready to start migrating!"))
	return nil
}
