package domain

// FailedTrack records a source track that found no acceptable target match.
type FailedTrack struct {
	Name   string `json:"name"`
	Artist string `json:"artist"`
	Album  string `json:"album"`
}

// MigrationResult summarizes the outcome of migrating one playlist. It is the
// persisted report schema.
type MigrationResult struct {
	PlaylistName      string        `json:"playlist_name"`
	TotalTracks       int           `json:"total_tracks"`
	SuccessfulMatches int           `json:"successful_matches"`
	FailedMatches     int           `json:"failed_matches"`
	SuccessRate       float64       `json:"success_rate"`
	FailedTracks      []FailedTrack `json:"failed_tracks"`
	TidalPlaylistID   *string       `json:"tidal_playlist_id"`
}

// SuccessRate returns successful/total as a percentage, or 0 when total is 0.
func SuccessRate(successful, total int) float64 {
	if total <= 0 {
		return 0
	}
	return float64(successful) / float64(total) * 100
}

// ResultBuilder accumulates the outcome of a single playlist migration.
// It is owned by exactly one migration call and finalized once.
type ResultBuilder struct {
	result    MigrationResult
	matched   []TargetTrack
	tiers     map[MatchTier]int
	finalized bool
}

// NewResultBuilder starts an empty result for the named playlist.
func NewResultBuilder(playlistName string, totalTracks int) *ResultBuilder {
	return &ResultBuilder{
		result: MigrationResult{
			PlaylistName: playlistName,
			TotalTracks:  totalTracks,
			FailedTracks: []FailedTrack{},
		},
		tiers: make(map[MatchTier]int),
	}
}

// RecordMatch counts a matched track and remembers the target for insertion.
func (b *ResultBuilder) RecordMatch(target TargetTrack, tier MatchTier) {
	b.mustBeOpen()
	b.result.SuccessfulMatches++
	b.matched = append(b.matched, target)
	b.tiers[tier]++
}

// RecordFailure counts an unmatched track.
func (b *ResultBuilder) RecordFailure(source SourceTrack) {
	b.mustBeOpen()
	b.result.FailedMatches++
	b.result.FailedTracks = append(b.result.FailedTracks, FailedTrack{
		Name:   source.Name,
		Artist: source.PrimaryArtist(),
		Album:  source.Album,
	})
}

// SetTargetPlaylist records the id of the playlist created in the target catalog.
func (b *ResultBuilder) SetTargetPlaylist(id string) {
	b.mustBeOpen()
	b.result.TidalPlaylistID = &id
}

// MatchedIDs returns target track ids in the order they were matched.
func (b *ResultBuilder) MatchedIDs() []string {
	ids := make([]string, 0, len(b.matched))
	for _, t := range b.matched {
		ids = append(ids, t.ID)
	}
	return ids
}

// TierCount returns how many tracks were matched through the given tier.
func (b *ResultBuilder) TierCount(tier MatchTier) int {
	return b.tiers[tier]
}

// Finalize computes the success rate and returns the finished result.
// The builder rejects further mutation afterwards.
func (b *ResultBuilder) Finalize() MigrationResult {
	if !b.finalized {
		b.result.SuccessRate = SuccessRate(b.result.SuccessfulMatches, b.result.TotalTracks)
		b.finalized = true
	}
	out := b.result
	out.FailedTracks = append([]FailedTrack(nil), b.result.FailedTracks...)
	if out.FailedTracks == nil {
		out.FailedTracks = []FailedTrack{}
	}
	return out
}

func (b *ResultBuilder) mustBeOpen() {
	if b.finalized {
		panic("domain: migration result mutated after finalize")
	}
}
