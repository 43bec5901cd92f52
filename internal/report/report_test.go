package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhnwsk/spotify2tidal/internal/domain"
)

func fixedWriter(dir string) *Writer {
	w := NewWriter(dir)
	w.now = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.Local) }
	return w
}

func sampleResults() []domain.MigrationResult {
	id := "uuid-1"
	return []domain.MigrationResult{
		{
			PlaylistName: "Road Trip", TotalTracks: 10, SuccessfulMatches: 7, FailedMatches: 3, SuccessRate: 70,
			FailedTracks:    []domain.FailedTrack{{Name: "Lost", Artist: "Nobody", Album: "Void"}},
			TidalPlaylistID: &id,
		},
		{PlaylistName: "Empty", FailedTracks: []domain.FailedTrack{}},
	}
}

func TestWriter_WritesTimestampedPrettyJSON(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "migration_results")

	path, err := fixedWriter(dir).Write(sampleResults())

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "migration_results_20240309_140507.json"), path)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(raw), "\n  {\n    \"playlist_name\": \"Road Trip\"")

	var decoded []domain.MigrationResult
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, sampleResults(), decoded)
}

func TestWriter_EmptyResultsWriteEmptyArray(t *testing.T) {
	dir := t.TempDir()

	path, err := fixedWriter(dir).Write(nil)

	require.NoError(t, err)
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))
}

func TestWriter_OverwritesExistingFile(t *testing.T) {
	dir := t.TempDir()
	w := fixedWriter(dir)

	_, err := w.Write(sampleResults())
	require.NoError(t, err)
	path, err := w.Write(nil)
	require.NoError(t, err)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]", string(raw))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriter_DirectoryIsAFile(t *testing.T) {
	blocker := filepath.Join(t.TempDir(), "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	_, err := NewWriter(blocker).Write(nil)

	assert.Error(t, err)
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleResults())

	assert.Equal(t, Summary{Playlists: 2, TotalTracks: 10, Matched: 7, Failed: 3, SuccessRate: 70}, s)
	assert.Equal(t, 0.0, Summarize(nil).SuccessRate)
}

func TestPrintSummary(t *testing.T) {
	var buf bytes.Buffer

	PrintSummary(&buf, sampleResults(), "migration_results")

	out := buf.String()
	assert.Contains(t, out, "MIGRATION SUMMARY")
	assert.Contains(t, out, "Total playlists processed: 2")
	assert.Contains(t, out, "Successfully matched: 7")
	assert.Contains(t, out, "70.0%")
	assert.Contains(t, out, "Road Trip: 7/10")
	assert.Contains(t, out, "migration_results/")
}

func TestRateStyle(t *testing.T) {
	assert.Equal(t, goodStyle.GetForeground(), rateStyle(90).GetForeground())
	assert.Equal(t, fairStyle.GetForeground(), rateStyle(70).GetForeground())
	assert.Equal(t, fairStyle.GetForeground(), rateStyle(89.9).GetForeground())
	assert.Equal(t, poorStyle.GetForeground(), rateStyle(69.9).GetForeground())
}
