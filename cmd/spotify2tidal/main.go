package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v3"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := NewRunner(RunnerOpts{})
	app := newApp(runner)

	err := app.Run(ctx, os.Args)
	if runner.logger != nil {
		_ = runner.logger.Sync()
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", warnStyle.Render("error:"), err)
		os.Exit(1)
	}
}

func newApp(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "spotify2tidal",
		Usage:   "Migrate Spotify playlists to TIDAL",
		Version: "0.1.0",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML configuration file",
				Sources: cli.EnvVars("SPOTIFY2TIDAL_CONFIG"),
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "Enable debug logging",
			},
		},
		Commands: r.register(),
	}
}
