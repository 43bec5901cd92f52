package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/jhnwsk/spotify2tidal/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#7D56F4"))
	goodStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#04B575"))
	fairStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFA500"))
	poorStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FF0000"))
	hintStyle  = lipgloss.NewStyle().Italic(true).Foreground(lipgloss.Color("#626262"))
)

// Summary aggregates a run across playlists.
type Summary struct {
	Playlists   int
	TotalTracks int
	Matched     int
	Failed      int
	SuccessRate float64
}

// Summarize totals results. The rate is 0 when no tracks were processed.
func Summarize(results []domain.MigrationResult) Summary {
	s := Summary{
		Playlists:   len(results),
		TotalTracks: lo.SumBy(results, func(r domain.MigrationResult) int { return r.TotalTracks }),
		Matched:     lo.SumBy(results, func(r domain.MigrationResult) int { return r.SuccessfulMatches }),
		Failed:      lo.SumBy(results, func(r domain.MigrationResult) int { return r.FailedMatches }),
	}
	s.SuccessRate = domain.SuccessRate(s.Matched, s.TotalTracks)
	return s
}

// PrintSummary writes the run totals and a per-playlist breakdown to w.
// resultsDir, when set, is mentioned in the hint shown for failed tracks.
func PrintSummary(w io.Writer, results []domain.MigrationResult, resultsDir string) {
	s := Summarize(results)
	rule := strings.Repeat("=", 60)

	fmt.Fprintln(w)
	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, titleStyle.Render("MIGRATION SUMMARY"))
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total playlists processed: %d\n", s.Playlists)
	fmt.Fprintf(w, "Total tracks processed: %d\n", s.TotalTracks)
	fmt.Fprintf(w, "Successfully matched: %d\n", s.Matched)
	fmt.Fprintf(w, "Failed to match: %d\n", s.Failed)
	fmt.Fprintf(w, "Overall success rate: %s\n", rateStyle(s.SuccessRate).Render(fmt.Sprintf("%.1f%%", s.SuccessRate)))
	fmt.Fprintln(w, rule)

	if len(results) > 0 {
		fmt.Fprintln(w, "\nPlaylist breakdown:")
		for _, r := range results {
			fmt.Fprintf(w, "  %s: %d/%d (%s)\n", r.PlaylistName, r.SuccessfulMatches, r.TotalTracks,
				rateStyle(r.SuccessRate).Render(fmt.Sprintf("%.1f%%", r.SuccessRate)))
		}
	}

	if s.Failed > 0 && resultsDir != "" {
		fmt.Fprintln(w, hintStyle.Render(fmt.Sprintf("\nFailed tracks have been logged and saved to %s/", resultsDir)))
	}
}

func rateStyle(rate float64) lipgloss.Style {
	switch {
	case rate >= 90:
		return goodStyle
	case rate >= 70:
		return fairStyle
	default:
		return poorStyle
	}
}
