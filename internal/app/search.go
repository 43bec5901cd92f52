package app

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/jhnwsk/spotify2tidal/internal/domain"
	"github.com/jhnwsk/spotify2tidal/internal/matcher"
	"github.com/jhnwsk/spotify2tidal/internal/ports"
)

const (
	// searchLimit is the page size requested from the target catalog.
	searchLimit = 20
	// fuzzyWindow bounds how many results the fuzzy pass scores.
	fuzzyWindow = 10
)

// CandidateSearch resolves a source track to at most one target track using
// the target catalog's text search. It never writes to the target catalog.
type CandidateSearch struct {
	target ports.TargetCatalogClient
	logger *zap.Logger
}

// NewCandidateSearch creates a search bound to the given target catalog.
func NewCandidateSearch(target ports.TargetCatalogClient, logger *zap.Logger) *CandidateSearch {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CandidateSearch{target: target, logger: logger}
}

// Find runs the ISRC, exact and fuzzy passes in order and returns the first
// acceptable outcome. An unmatched track yields TierNoMatch.
func (s *CandidateSearch) Find(ctx context.Context, track domain.SourceTrack) domain.MatchOutcome {
	if track.ISRC != "" {
		results, _ := s.search(ctx, track.ISRC)
		for _, candidate := range results {
			if matcher.IsISRCMatch(track, candidate) {
				return domain.MatchOutcome{Score: 1, Tier: domain.TierISRC, Track: &candidate}
			}
		}
	}

	// The exact and fuzzy passes issue the same query, so one result set
	// serves both unless the first attempt failed.
	query := textQuery(track)
	candidates, ok := s.search(ctx, query)

	for _, candidate := range candidates {
		if matcher.IsExactMatch(track, candidate) {
			return domain.MatchOutcome{Score: 1, Tier: domain.TierExact, Track: &candidate}
		}
	}

	if !ok && ctx.Err() == nil {
		candidates, _ = s.search(ctx, query)
	}

	best := domain.MatchOutcome{Tier: domain.TierNoMatch}
	if len(candidates) > fuzzyWindow {
		candidates = candidates[:fuzzyWindow]
	}
	for i := range candidates {
		score := matcher.Similarity(track, candidates[i])
		if matcher.IsFuzzyMatch(score) && score > best.Score {
			best = domain.MatchOutcome{Score: score, Tier: domain.TierFuzzy, Track: &candidates[i]}
		}
	}

	if best.Track != nil {
		s.logger.Debug("fuzzy match",
			zap.String("track", track.Name),
			zap.String("candidate", best.Track.ID),
			zap.Float64("score", best.Score),
		)
	}
	return best
}

// search treats every failure as an empty result set. ok is false only when
// the catalog call failed.
func (s *CandidateSearch) search(ctx context.Context, query string) (results []domain.TargetTrack, ok bool) {
	if query == "" {
		return nil, true
	}
	results, err := s.target.Search(ctx, query, searchLimit)
	if err != nil {
		s.logger.Debug("search failed", zap.String("query", query), zap.Error(err))
		return nil, false
	}
	return results, true
}

func textQuery(track domain.SourceTrack) string {
	return strings.TrimSpace(track.PrimaryArtist() + " " + track.Name)
}
