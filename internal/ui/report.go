// Package ui provides terminal styling for CLI report output.
//
// Reconciliation results are rendered as a plain-text report colored with
// [lipgloss] styles; progress updates stream through the same palette.
package ui

import (
	"fmt"
	"strings"

	"plexsync/internal/tasks"
)

// RunSummary renders one playlist's reconciliation result as a styled report.
func RunSummary(result *tasks.PlaylistRunResult) string {
	var b strings.Builder

	b.WriteString(Title(fmt.Sprintf("Playlist: %s", result.Playlist.Name)))
	b.WriteString("\n")

	fmt.Fprintf(&b, "  %s %d already present\n", OK("✓"), len(result.Reconciled.AlreadyPresent))
	fmt.Fprintf(&b, "  %s %d added\n", OK("✓"), len(result.Added))
	if n := len(result.Declined); n > 0 {
		fmt.Fprintf(&b, "  %s %d declined\n", Warn("•"), n)
	}
	if n := len(result.Failures); n > 0 {
		fmt.Fprintf(&b, "  %s %d failed to add\n", Err("✗"), n)
	}
	if n := len(result.Reconciled.Unmatched); n > 0 {
		fmt.Fprintf(&b, "  %s %d unmatched\n", Warn("?"), n)
	}
	fmt.Fprintf(&b, "  %d remain in the backlog\n", len(result.Remaining))

	if len(result.Reconciled.Unmatched) > 0 {
		b.WriteString("\n")
		b.WriteString(Warn("Unmatched tracks:"))
		b.WriteString("\n")
		for _, req := range result.Reconciled.Unmatched {
			fmt.Fprintf(&b, "  %s - %s\n", req.Artist, req.Title)
		}
	}

	if len(result.Failures) > 0 {
		b.WriteString("\n")
		b.WriteString(Err("Failed additions:"))
		b.WriteString("\n")
		for _, f := range result.Failures {
			fmt.Fprintf(&b, "  %s - %s: %v\n", f.Candidate.Artist, f.Candidate.Title, f.Err)
		}
	}

	return b.String()
}

// MatchLine renders one matched candidate for preview output.
func MatchLine(m tasks.Match) string {
	return fmt.Sprintf("%s %s - %s %s",
		OK("→"), m.Candidate.Artist, m.Candidate.Title,
		Help(fmt.Sprintf("(score %.2f)", m.Score)))
}
