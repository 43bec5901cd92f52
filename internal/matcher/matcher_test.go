package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhnwsk/spotify2tidal/internal/domain"
)

func source(name, artist, album string, durationMs int, isrc string) domain.SourceTrack {
	var artists []string
	if artist != "" {
		artists = []string{artist}
	}
	return domain.SourceTrack{ID: "sp-1", Name: name, Artists: artists, Album: album, DurationMs: durationMs, ISRC: isrc}
}

func target(name, artist, album string, durationSecs int, isrc string) domain.TargetTrack {
	var artists []string
	if artist != "" {
		artists = []string{artist}
	}
	return domain.TargetTrack{ID: "td-1", Name: name, Artists: artists, Album: album, DurationSeconds: durationSecs, ISRC: isrc}
}

func TestIsFuzzyMatch_Threshold(t *testing.T) {
	for _, tc := range []struct {
		score float64
		want  bool
	}{
		{0, false},
		{0.5, false},
		{0.8499999, false},
		{0.85, true},
		{0.9, true},
		{1, true},
	} {
		assert.Equal(t, tc.want, IsFuzzyMatch(tc.score), "score %v", tc.score)
	}
}

func TestIsISRCMatch(t *testing.T) {
	s := source("Bohemian Rhapsody", "Queen", "A Night at the Opera", 354000, "GBUM71029604")
	same := target("Bohemian Rhapsody", "Queen", "A Night at the Opera", 354, "GBUM71029604")
	other := target("Bohemian Rhapsody", "Queen", "A Night at the Opera", 354, "GBUM71029605")
	missing := target("Bohemian Rhapsody", "Queen", "A Night at the Opera", 354, "")

	assert.True(t, IsISRCMatch(s, same))
	assert.False(t, IsISRCMatch(s, other))
	assert.False(t, IsISRCMatch(s, missing))
	assert.False(t, IsISRCMatch(source("x", "y", "z", 0, ""), missing))
}

func TestIsISRCMatch_CaseSensitive(t *testing.T) {
	s := source("a", "b", "c", 0, "gbum71029604")
	c := target("a", "b", "c", 0, "GBUM71029604")

	assert.False(t, IsISRCMatch(s, c))
}

func TestIsISRCMatch_Symmetric(t *testing.T) {
	a := source("a", "b", "c", 0, "USAT20700634")
	b := target("x", "y", "z", 10, "USAT20700634")
	flippedA := source(b.Name, "y", b.Album, b.DurationSeconds*1000, b.ISRC)
	flippedB := target(a.Name, "b", a.Album, 0, a.ISRC)

	assert.Equal(t, IsISRCMatch(a, b), IsISRCMatch(flippedA, flippedB))
}

func TestClassify_ISRCWinsRegardlessOfText(t *testing.T) {
	s := source("Bohemian Rhapsody", "Queen", "A Night at the Opera", 354000, "GBUM71029604")
	c := target("BOHEMIAN RHAPSODY (2011 Remaster)", "Someone Else", "Greatest Hits", 120, "GBUM71029604")

	assert.Equal(t, domain.TierISRC, Classify(s, c))
}

func TestIsExactMatch_CaseAndWhitespace(t *testing.T) {
	s := source("Don't Stop Me Now", "Queen", "Jazz", 209000, "")
	c := target("  don't stop me now ", "QUEEN ", "Jazz", 209, "")

	assert.True(t, IsExactMatch(s, c))
	assert.Equal(t, domain.TierExact, Classify(s, c))
}

func TestIsExactMatch_DurationWindow(t *testing.T) {
	s := source("Test Song", "Test Artist", "Test Album", 180000, "")

	assert.True(t, IsExactMatch(s, target("Test Song", "Test Artist", "Test Album", 183, "")))
	assert.True(t, IsExactMatch(s, target("Test Song", "Test Artist", "Test Album", 184, "")))
	assert.False(t, IsExactMatch(s, target("Test Song", "Test Artist", "Test Album", 185, "")))
	assert.False(t, IsExactMatch(s, target("Test Song", "Test Artist", "Test Album", 175, "")))
	assert.False(t, IsExactMatch(s, target("Test Song", "Test Artist", "Test Album", 190, "")))
}

func TestIsExactMatch_MillisecondsTruncate(t *testing.T) {
	// 184999ms is 184 whole seconds: 4s away from 180.
	s := source("Test Song", "Test Artist", "", 184999, "")

	assert.True(t, IsExactMatch(s, target("Test Song", "Test Artist", "", 180, "")))
}

func TestIsExactMatch_MissingArtists(t *testing.T) {
	s := source("Intro", "", "", 60000, "")

	assert.True(t, IsExactMatch(s, target("Intro", "", "", 60, "")))
	assert.False(t, IsExactMatch(s, target("Intro", "Somebody", "", 60, "")))
}

func TestSimilarity_Identical(t *testing.T) {
	s := source("Hotel California", "Eagles", "Hotel California", 391000, "")
	c := target("Hotel California", "Eagles", "Hotel California", 391, "")

	assert.InDelta(t, 1.0, Similarity(s, c), 1e-9)
}

func TestSimilarity_DurationSteps(t *testing.T) {
	s := source("Song", "Artist", "Album", 200000, "")

	// Name, artist and album agree, so only the duration term varies.
	assert.InDelta(t, 0.9+1.0*0.1, Similarity(s, target("Song", "Artist", "Album", 205, "")), 1e-9)
	assert.InDelta(t, 0.9+0.8*0.1, Similarity(s, target("Song", "Artist", "Album", 206, "")), 1e-9)
	assert.InDelta(t, 0.9+0.8*0.1, Similarity(s, target("Song", "Artist", "Album", 215, "")), 1e-9)
	assert.InDelta(t, 0.9+0.5*0.1, Similarity(s, target("Song", "Artist", "Album", 216, "")), 1e-9)
	assert.InDelta(t, 0.9+0.5*0.1, Similarity(s, target("Song", "Artist", "Album", 184, "")), 1e-9)
}

func TestSimilarity_MissingArtistContributesNothing(t *testing.T) {
	s := source("Song", "", "Album", 200000, "")
	c := target("Song", "Artist", "Album", 200, "")

	assert.InDelta(t, 0.6, Similarity(s, c), 1e-9)
}

func TestSimilarity_Deterministic(t *testing.T) {
	s := source("Paranoid Android", "Radiohead", "OK Computer", 383000, "")
	c := target("Paranoid Android - Remastered", "Radiohead", "OK Computer OKNOTOK", 387, "")

	first := Similarity(s, c)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, Similarity(s, c))
	}
	assert.GreaterOrEqual(t, first, 0.0)
	assert.LessOrEqual(t, first, 1.0)
}

func TestEvaluate_ISRCIgnoresTextCasing(t *testing.T) {
	s := source("Bohemian Rhapsody", "Queen", "A Night at the Opera", 354000, "GBUM71029604")
	c := target("bohemian rhapsody", "queen", "A Night at the Opera", 354, "GBUM71029604")

	outcome := Evaluate(s, c)
	assert.Equal(t, domain.TierISRC, outcome.Tier)
	assert.NotNil(t, outcome.Track)
}

func TestClassify_DroppedApostropheIsFuzzy(t *testing.T) {
	s := source("Don't Stop Me Now", "Queen", "Jazz", 209000, "")
	c := target("dont stop me now", "queen", "Jazz", 209, "")

	score := Similarity(s, c)
	assert.Greater(t, score, 0.85)
	assert.False(t, IsExactMatch(s, c))
	assert.Equal(t, domain.TierFuzzy, Classify(s, c))
}

func TestEvaluate_UnrelatedTracksDoNotMatch(t *testing.T) {
	s := source("Bohemian Rhapsody", "Queen", "A Night at the Opera", 354000, "")
	c := target("Stairway to Heaven", "Led Zeppelin", "Led Zeppelin IV", 482, "")

	score := Similarity(s, c)
	assert.Less(t, score, 0.85)

	outcome := Evaluate(s, c)
	assert.Equal(t, domain.TierNoMatch, outcome.Tier)
	assert.Nil(t, outcome.Track)
}

func TestCloseness_ComparesCharactersNotBytes(t *testing.T) {
	// Every kana here shares its UTF-8 lead bytes with the others.
	assert.Equal(t, 0.0, closeness("さくら", "かえで"))
	assert.Equal(t, 1.0, closeness("Ünïcödé", "ünïcödé"))
	assert.InDelta(t, closeness("martha", "marhta"), closeness("мартха", "мархта"), 1e-9)
}

func TestClassify_DifferentNonLatinTitlesDoNotMatch(t *testing.T) {
	s := source("さくら", "森山直太朗", "夏蝉", 300000, "")
	c := target("かえで", "森山直太朗", "夏蝉", 300, "")

	assert.InDelta(t, 0.6, Similarity(s, c), 1e-9)
	assert.Equal(t, domain.TierNoMatch, Classify(s, c))
}

func TestClassify_NonLatinTitleVariantIsFuzzy(t *testing.T) {
	s := source("さくら（独唱）", "森山直太朗", "夏蝉", 300000, "")
	c := target("さくら", "森山直太朗", "夏蝉", 301, "")

	assert.Equal(t, domain.TierFuzzy, Classify(s, c))
}

func TestMatchTier_Matched(t *testing.T) {
	assert.True(t, domain.TierISRC.Matched())
	assert.True(t, domain.TierExact.Matched())
	assert.True(t, domain.TierFuzzy.Matched())
	assert.False(t, domain.TierNoMatch.Matched())
}
