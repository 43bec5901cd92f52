package app

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/samber/lo"
	"go.uber.org/zap"

	"github.com/jhnwsk/spotify2tidal/internal/adapters"
	"github.com/jhnwsk/spotify2tidal/internal/adapters/spotify"
	"github.com/jhnwsk/spotify2tidal/internal/domain"
	"github.com/jhnwsk/spotify2tidal/internal/ports"
)

// BatchSize is the maximum number of track ids submitted per add request.
const BatchSize = 100

// Service implements ports.MigrationService. Playlists are migrated one at a
// time; within a playlist, tracks are matched sequentially unless more than
// one worker is configured.
type Service struct {
	sources *adapters.SourceRegistry
	target  ports.TargetCatalogClient
	search  *CandidateSearch
	reports ports.ReportWriter
	logger  *zap.Logger
	workers int
}

// NewService creates a migration service. A nil logger disables logging.
func NewService(
	sources *adapters.SourceRegistry,
	target ports.TargetCatalogClient,
	reports ports.ReportWriter,
	logger *zap.Logger,
	workers int,
) *Service {
	if workers < 1 {
		workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		sources: sources,
		target:  target,
		search:  NewCandidateSearch(target, logger),
		reports: reports,
		logger:  logger,
		workers: workers,
	}
}

func (s *Service) ListPlaylists(ctx context.Context) ([]domain.SourcePlaylist, error) {
	source, err := s.sources.Get(adapters.SourceUser)
	if err != nil {
		return nil, err
	}
	return source.ListOwnedPlaylists(ctx)
}

func (s *Service) MigrateAll(ctx context.Context, dryRun bool) ([]domain.MigrationResult, error) {
	log := s.runLogger(dryRun)

	source, err := s.sources.Get(adapters.SourceUser)
	if err != nil {
		return nil, err
	}

	playlists, err := source.ListOwnedPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list source playlists: %w", err)
	}
	log.Info("migrating all playlists", zap.Int("playlists", len(playlists)))

	return s.run(ctx, log, source, playlists, dryRun)
}

func (s *Service) MigrateSelected(ctx context.Context, names []string, dryRun bool) ([]domain.MigrationResult, error) {
	log := s.runLogger(dryRun)

	source, err := s.sources.Get(adapters.SourceUser)
	if err != nil {
		return nil, err
	}

	playlists, err := source.ListOwnedPlaylists(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list source playlists: %w", err)
	}

	// Results follow the requested order; each name takes its first match.
	selected := lo.FilterMap(names, func(name string, _ int) (domain.SourcePlaylist, bool) {
		return lo.Find(playlists, func(p domain.SourcePlaylist) bool {
			return strings.EqualFold(p.Name, name)
		})
	})

	if len(selected) == 0 {
		log.Info("no playlists matched the requested names", zap.Strings("names", names))
		return []domain.MigrationResult{}, nil
	}
	log.Info("migrating selected playlists",
		zap.Int("requested", len(names)),
		zap.Int("found", len(selected)),
	)

	return s.run(ctx, log, source, selected, dryRun)
}

func (s *Service) ImportPlaylist(ctx context.Context, req domain.ImportRequest) (*domain.MigrationResult, error) {
	log := s.runLogger(req.DryRun)

	playlistID, err := spotify.ParsePlaylistURL(req.URL)
	if err != nil {
		return nil, err
	}

	source, err := s.sources.Get(adapters.SourcePublic)
	if err != nil {
		return nil, err
	}

	playlist, err := source.GetPlaylist(ctx, playlistID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch playlist %s: %w", playlistID, err)
	}
	if req.Name != "" {
		playlist.Name = req.Name
	}

	log.Info("importing playlist", zap.String("playlist_id", playlistID), zap.String("playlist", playlist.Name))

	result, err := s.migratePlaylist(ctx, log, source, *playlist, req.DryRun, "Imported from")
	if err != nil {
		return nil, err
	}

	if err := s.persist(log, []domain.MigrationResult{result}); err != nil {
		return &result, err
	}
	return &result, nil
}

// run migrates playlists in order and persists whatever finalized. On
// cancellation the in-progress playlist is discarded.
func (s *Service) run(
	ctx context.Context,
	log *zap.Logger,
	source ports.SourceCatalogClient,
	playlists []domain.SourcePlaylist,
	dryRun bool,
) ([]domain.MigrationResult, error) {
	results := make([]domain.MigrationResult, 0, len(playlists))

	var runErr error
	for _, playlist := range playlists {
		result, err := s.migratePlaylist(ctx, log, source, playlist, dryRun, "Migrated from")
		if err != nil {
			log.Warn("migration interrupted", zap.String("playlist", playlist.Name), zap.Error(err))
			runErr = err
			break
		}
		results = append(results, result)
	}

	if err := s.persist(log, results); err != nil && runErr == nil {
		runErr = err
	}
	return results, runErr
}

// migratePlaylist drives one playlist through matching, optional target
// creation and batched insertion. The only error it returns is cancellation.
func (s *Service) migratePlaylist(
	ctx context.Context,
	log *zap.Logger,
	source ports.SourceCatalogClient,
	playlist domain.SourcePlaylist,
	dryRun bool,
	verb string,
) (domain.MigrationResult, error) {
	log = log.With(zap.String("playlist", playlist.Name))
	log.Info("matching tracks", zap.Int("tracks", len(playlist.Tracks)))

	outcomes, err := s.matchTracks(ctx, playlist.Tracks)
	if err != nil {
		return domain.MigrationResult{}, err
	}
	// Search failures read as misses, so a cancelled search only shows here.
	if err := ctx.Err(); err != nil {
		return domain.MigrationResult{}, err
	}

	builder := domain.NewResultBuilder(playlist.Name, len(playlist.Tracks))
	for i, outcome := range outcomes {
		if outcome.Tier.Matched() && outcome.Track != nil {
			builder.RecordMatch(*outcome.Track, outcome.Tier)
		} else {
			builder.RecordFailure(playlist.Tracks[i])
		}
	}

	matchedIDs := builder.MatchedIDs()
	if !dryRun && len(matchedIDs) > 0 {
		description := fmt.Sprintf("%s %s. %s", verb, source.Name(), playlist.Description)
		created, err := s.target.CreatePlaylist(ctx, playlist.Name, description)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return domain.MigrationResult{}, ctxErr
			}
			log.Warn("failed to create target playlist", zap.Error(err))
		} else {
			builder.SetTargetPlaylist(created.ID)
			log.Info("created target playlist", zap.String("target_playlist_id", created.ID))
			if err := s.addInBatches(ctx, log, created.ID, matchedIDs); err != nil {
				return domain.MigrationResult{}, err
			}
		}
	}

	result := builder.Finalize()
	log.Info("playlist finalized",
		zap.Int("matched", result.SuccessfulMatches),
		zap.Int("failed", result.FailedMatches),
		zap.Int("isrc", builder.TierCount(domain.TierISRC)),
		zap.Int("exact", builder.TierCount(domain.TierExact)),
		zap.Int("fuzzy", builder.TierCount(domain.TierFuzzy)),
		zap.Float64("success_rate", result.SuccessRate),
	)
	return result, nil
}

// addInBatches submits ids sequentially in chunks of BatchSize. A rejected
// batch is logged and skipped.
func (s *Service) addInBatches(ctx context.Context, log *zap.Logger, playlistID string, ids []string) error {
	for i, batch := range lo.Chunk(ids, BatchSize) {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.target.AddTracks(ctx, playlistID, batch); err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return ctxErr
			}
			log.Warn("failed to add track batch",
				zap.Int("batch", i+1),
				zap.Int("size", len(batch)),
				zap.Error(err),
			)
			continue
		}
		log.Debug("added track batch", zap.Int("batch", i+1), zap.Int("size", len(batch)))
	}
	return ctx.Err()
}

// matchTracks returns one outcome per source track, in source order.
func (s *Service) matchTracks(ctx context.Context, tracks []domain.SourceTrack) ([]domain.MatchOutcome, error) {
	if s.workers == 1 {
		outcomes := make([]domain.MatchOutcome, 0, len(tracks))
		for _, track := range tracks {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			outcomes = append(outcomes, s.search.Find(ctx, track))
		}
		return outcomes, nil
	}
	return s.matchTracksParallel(ctx, tracks)
}

// matchTracksParallel fans tracks out to a bounded worker pool and collects
// outcomes back into source order.
func (s *Service) matchTracksParallel(ctx context.Context, tracks []domain.SourceTrack) ([]domain.MatchOutcome, error) {
	type indexedTrack struct {
		index int
		track domain.SourceTrack
	}
	type indexedOutcome struct {
		index   int
		outcome domain.MatchOutcome
	}

	trackCh := make(chan indexedTrack, len(tracks))
	resultCh := make(chan indexedOutcome, len(tracks))

	var wg sync.WaitGroup
	for i := 0; i < s.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range trackCh {
				if ctx.Err() != nil {
					continue
				}
				resultCh <- indexedOutcome{index: item.index, outcome: s.search.Find(ctx, item.track)}
			}
		}()
	}

	for i, track := range tracks {
		trackCh <- indexedTrack{index: i, track: track}
	}
	close(trackCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	outcomes := make([]domain.MatchOutcome, len(tracks))
	for r := range resultCh {
		outcomes[r.index] = r.outcome
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func (s *Service) persist(log *zap.Logger, results []domain.MigrationResult) error {
	if s.reports == nil {
		return nil
	}
	path, err := s.reports.Write(results)
	if err != nil {
		log.Error("failed to write report", zap.Error(err))
		return fmt.Errorf("failed to write report: %w", err)
	}
	log.Info("report written", zap.String("path", path), zap.Int("playlists", len(results)))
	return nil
}

func (s *Service) runLogger(dryRun bool) *zap.Logger {
	return s.logger.With(zap.String("run_id", uuid.NewString()), zap.Bool("dry_run", dryRun))
}
