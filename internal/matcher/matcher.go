// Package matcher decides whether a source track and a target candidate refer
// to the same recording. Every function here is pure.
package matcher

import (
	"strings"

	"github.com/adrg/strutil/metrics"

	"github.com/jhnwsk/spotify2tidal/internal/domain"
)

// FuzzyThreshold is the minimum similarity accepted as a fuzzy match.
const FuzzyThreshold = 0.85

const (
	nameWeight     = 0.4
	artistWeight   = 0.4
	albumWeight    = 0.1
	durationWeight = 0.1

	// Jaro-Winkler prefix boost parameters.
	boostThreshold = 0.7
	prefixSize     = 4

	// Exact matches require a duration difference strictly below this.
	exactDurationWindow = 5
)

// Similarity blends name, primary artist, album and duration proximity into
// a score in [0,1].
func Similarity(source domain.SourceTrack, candidate domain.TargetTrack) float64 {
	name := closeness(source.Name, candidate.Name)

	artist := 0.0
	if len(source.Artists) > 0 && len(candidate.Artists) > 0 {
		artist = closeness(source.Artists[0], candidate.Artists[0])
	}

	album := closeness(source.Album, candidate.Album)
	duration := durationScore(durationDiff(source, candidate))

	return name*nameWeight + artist*artistWeight + album*albumWeight + duration*durationWeight
}

// IsFuzzyMatch reports whether score clears FuzzyThreshold.
func IsFuzzyMatch(score float64) bool {
	return score >= FuzzyThreshold
}

// IsExactMatch requires equal names and primary artists (case and surrounding
// whitespace ignored) and a duration difference under five seconds.
func IsExactMatch(source domain.SourceTrack, candidate domain.TargetTrack) bool {
	return normalize(source.Name) == normalize(candidate.Name) &&
		normalize(source.PrimaryArtist()) == normalize(candidate.PrimaryArtist()) &&
		durationDiff(source, candidate) < exactDurationWindow
}

// IsISRCMatch reports whether both tracks carry the same ISRC.
func IsISRCMatch(source domain.SourceTrack, candidate domain.TargetTrack) bool {
	return source.ISRC != "" && candidate.ISRC != "" && source.ISRC == candidate.ISRC
}

// Classify returns the first tier the pair satisfies, cheapest check first.
func Classify(source domain.SourceTrack, candidate domain.TargetTrack) domain.MatchTier {
	return Evaluate(source, candidate).Tier
}

// Evaluate classifies the pair and attaches the candidate when it matched.
// The similarity score is only computed when neither identifier nor exact
// text agreement settles the match.
func Evaluate(source domain.SourceTrack, candidate domain.TargetTrack) domain.MatchOutcome {
	if IsISRCMatch(source, candidate) {
		return domain.MatchOutcome{Score: 1, Tier: domain.TierISRC, Track: &candidate}
	}
	if IsExactMatch(source, candidate) {
		return domain.MatchOutcome{Score: 1, Tier: domain.TierExact, Track: &candidate}
	}

	score := Similarity(source, candidate)
	if IsFuzzyMatch(score) {
		return domain.MatchOutcome{Score: score, Tier: domain.TierFuzzy, Track: &candidate}
	}
	return domain.MatchOutcome{Score: score, Tier: domain.TierNoMatch}
}

// closeness is a case-insensitive Jaro-Winkler similarity over runes.
func closeness(a, b string) float64 {
	a, b = strings.ToLower(a), strings.ToLower(b)
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	ra, rb := []rune(a), []rune(b)
	sim := metrics.NewJaro().Compare(a, b)
	if sim <= boostThreshold {
		return sim
	}
	prefix := 0
	for prefix < prefixSize && prefix < len(ra) && prefix < len(rb) && ra[prefix] == rb[prefix] {
		prefix++
	}
	return sim + 0.1*float64(prefix)*(1-sim)
}

func durationScore(diff int) float64 {
	switch {
	case diff <= 5:
		return 1.0
	case diff <= 15:
		return 0.8
	default:
		return 0.5
	}
}

func durationDiff(source domain.SourceTrack, candidate domain.TargetTrack) int {
	diff := source.DurationSeconds() - candidate.DurationSeconds
	if diff < 0 {
		return -diff
	}
	return diff
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
