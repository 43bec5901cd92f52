package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/jhnwsk/spotify2tidal/internal/bootstrap"
	"github.com/jhnwsk/spotify2tidal/internal/config"
	"github.com/jhnwsk/spotify2tidal/internal/logger"
	"github.com/jhnwsk/spotify2tidal/internal/ports"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	warnStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	noteStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#6B7280"))
)

// ServiceFactory builds the migration service for a loaded configuration.
type ServiceFactory func(ctx context.Context, cfg *config.Config, log *zap.Logger) (ports.MigrationService, error)

// Runner holds the dependencies shared by every command action.
type Runner struct {
	output     io.Writer
	logger     *zap.Logger
	loadConfig func(path string) (*config.Config, error)
	newService ServiceFactory
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Output     io.Writer
	Logger     *zap.Logger
	LoadConfig func(path string) (*config.Config, error)
	NewService ServiceFactory
}

// NewRunner creates a Runner. Unset options use the real implementations.
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.LoadConfig == nil {
		opts.LoadConfig = config.Load
	}
	if opts.NewService == nil {
		opts.NewService = defaultService
	}

	return &Runner{
		output:     opts.Output,
		logger:     opts.Logger,
		loadConfig: opts.LoadConfig,
		newService: opts.NewService,
	}
}

func defaultService(ctx context.Context, cfg *config.Config, log *zap.Logger) (ports.MigrationService, error) {
	application, err := bootstrap.New(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return application.Service, nil
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		migrateAllCommand, migrateCommand, listPlaylistsCommand, importURLCommand, setupCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// session loads configuration and wires the service for one command.
func (r *Runner) session(ctx context.Context, cmd *cli.Command) (*config.Config, ports.MigrationService, error) {
	cfg, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return nil, nil, err
	}

	if r.logger == nil {
		level := cfg.LogLevel
		if cmd.Bool("verbose") {
			level = "debug"
		}
		log, err := logger.New(logger.Options{Level: level, File: cfg.LogFile})
		if err != nil {
			return nil, nil, err
		}
		r.logger = log
	}

	if missing := cfg.Missing(); len(missing) > 0 {
		r.writePlain("%s\n", warnStyle.Render("Missing configuration:"))
		for _, item := range missing {
			r.writePlain("   - %s\n", item)
		}
		r.writePlain("\n%s\n", noteStyle.Render("Run `spotify2tidal setup` for a configuration guide."))
	}

	svc, err := r.newService(ctx, cfg, r.logger)
	if err != nil {
		return nil, nil, err
	}
	return cfg, svc, nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writeBanner(dryRun bool) {
	r.writePlain("%s\n", titleStyle.Render("Spotify to TIDAL Playlist Migrator"))
	r.writePlain("==================================================\n")
	if dryRun {
		r.writePlain("%s\n", warnStyle.Render("DRY RUN MODE - no playlists will be created"))
	}
}

func (r *Runner) writeDone(dryRun bool) {
	if dryRun {
		r.writePlain("\n%s\n", warnStyle.Render("Dry run completed - no changes made"))
		return
	}
	r.writePlain("\n%s\n", okStyle.Render("Migration completed!"))
}
