// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/jonathan/roommate-matcher/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stderr; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintWeights outputs the weight configuration, required dimensions first.
func (p *Printer) PrintWeights(weights types.WeightConfig) {
	if len(weights) == 0 {
		return
	}

	names := make([]string, 0, len(weights))
	for name := range weights {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		ri, rj := weights[names[i]].IsRequired(), weights[names[j]].IsRequired()
		if ri != rj {
			return ri
		}
		return names[i] < names[j]
	})

	var sb strings.Builder
	for _, name := range names {
		entry := weights[name]
		if entry.IsRequired() {
			sb.WriteString(fmt.Sprintf("%-20s required\n", name))
			continue
		}
		sb.WriteString(fmt.Sprintf("%-20s weight %g\n", name, entry.Weight))
	}

	p.printBox("WEIGHTS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintRankStats outputs what happened to the candidate pool.
func (p *Printer) PrintRankStats(stats types.RankStats, elapsed time.Duration) {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Evaluated:        %d\n", stats.Evaluated))
	sb.WriteString(fmt.Sprintf("Excluded (gate):  %d\n", stats.Excluded))
	sb.WriteString(fmt.Sprintf("Dropped (errors): %d\n", stats.Dropped))
	sb.WriteString(fmt.Sprintf("Below threshold:  %d\n", stats.BelowThreshold))
	sb.WriteString(fmt.Sprintf("Returned:         %d\n", stats.Returned))
	sb.WriteString(fmt.Sprintf("Elapsed:          %s", elapsed.Round(time.Millisecond)))

	p.printBox("RANKING SUMMARY", sb.String())
}

// PrintTopMatches outputs the top matches with their strongest dimensions.
func (p *Printer) PrintTopMatches(matches []types.MatchResult) {
	if len(matches) == 0 {
		return
	}

	var sb strings.Builder
	count := min(len(matches), maxItemsToShow)
	for i := 0; i < count; i++ {
		m := matches[i]
		sb.WriteString(fmt.Sprintf("#%d  %s  (%d)\n", i+1, m.CandidateID, m.OverallScore))
		for _, reason := range m.Reasons {
			sb.WriteString(fmt.Sprintf("    • %s\n", reason))
		}
		if i < count-1 {
			sb.WriteString("\n")
		}
	}

	if len(matches) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more matches", len(matches)-maxItemsToShow))
	}

	p.printBox("TOP MATCHES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExcluded outputs candidates that failed a required dimension.
func (p *Printer) PrintExcluded(excluded []types.MatchResult) {
	if len(excluded) == 0 {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Excluded %d candidates:\n\n", len(excluded)))

	count := min(len(excluded), maxItemsToShow)
	for i := 0; i < count; i++ {
		e := excluded[i]
		sb.WriteString(fmt.Sprintf("✗ %s\n", e.CandidateID))
		for _, failure := range e.FailedRequirements {
			sb.WriteString(fmt.Sprintf("  %s\n", failure))
		}
	}

	if len(excluded) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("\n... and %d more", len(excluded)-maxItemsToShow))
	}

	p.printBox("EXCLUDED BY REQUIREMENTS", strings.TrimSuffix(sb.String(), "\n"))
}

// truncate shortens s to at most n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
