package domain

// SourceTrack is a single recording as it appears in the source catalog.
type SourceTrack struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	Artists    []string `json:"artists"`
	Album      string   `json:"album"`
	DurationMs int      `json:"duration_ms"`
	ISRC       string   `json:"isrc,omitempty"`
	Popularity int      `json:"popularity"`
}

// PrimaryArtist returns the first credited artist, or "" when none is credited.
func (t SourceTrack) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// DurationSeconds truncates the duration to whole seconds.
func (t SourceTrack) DurationSeconds() int {
	return t.DurationMs / 1000
}

// TargetTrack is a single recording as it appears in the target catalog.
type TargetTrack struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Artists         []string `json:"artists"`
	Album           string   `json:"album"`
	DurationSeconds int      `json:"duration_secs"`
	ISRC            string   `json:"isrc,omitempty"`
}

// PrimaryArtist returns the first credited artist, or "" when none is credited.
func (t TargetTrack) PrimaryArtist() string {
	if len(t.Artists) == 0 {
		return ""
	}
	return t.Artists[0]
}

// SourcePlaylist is a read-only snapshot of a source playlist and its tracks.
type SourcePlaylist struct {
	ID          string        `json:"id"`
	Name        string        `json:"name"`
	Description string        `json:"description,omitempty"`
	Tracks      []SourceTrack `json:"tracks,omitempty"`
	TotalTracks int           `json:"total_tracks"`
	Public      bool          `json:"public"`
	Owner       string        `json:"owner"`
}

// TargetPlaylist is a playlist created in the target catalog.
type TargetPlaylist struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// MatchTier describes how a source/target pair was matched, in
// descending order of confidence.
type MatchTier string

const (
	TierISRC    MatchTier = "ISRC"
	TierExact   MatchTier = "Exact"
	TierFuzzy   MatchTier = "Fuzzy"
	TierNoMatch MatchTier = "NoMatch"
)

// Matched reports whether the tier represents an accepted match.
func (t MatchTier) Matched() bool {
	return t != TierNoMatch && t != ""
}

// MatchOutcome is the result of comparing a source track with a candidate.
type MatchOutcome struct {
	Score float64      `json:"score"`
	Tier  MatchTier    `json:"tier"`
	Track *TargetTrack `json:"track,omitempty"`
}

// ImportRequest describes a one-off import of a public source playlist.
type ImportRequest struct {
	URL    string `json:"url" binding:"required"`
	Name   string `json:"name,omitempty"`
	DryRun bool   `json:"dry_run"`
}

// MigrateRequest selects which owned playlists to migrate. An empty
// Playlists list means every owned playlist.
type MigrateRequest struct {
	Playlists []string `json:"playlists,omitempty"`
	DryRun    bool     `json:"dry_run"`
}
