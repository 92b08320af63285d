// Package output writes ranking results as JSON or as a terminal table.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"

	"github.com/jonathan/roommate-matcher/internal/types"
)

// Format selects how results are written.
type Format string

// Supported formats.
const (
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// maxReasonsInTable keeps table rows readable; JSON carries every reason.
const maxReasonsInTable = 2

// ParseFormat parses a --format flag value.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatTable:
		return FormatTable, nil
	}
	return "", fmt.Errorf("unknown output format %q (want json or table)", s)
}

// Write writes resp to w in the given format.
func Write(w io.Writer, format Format, resp types.RankResponse) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, resp)
	case FormatTable:
		return WriteTable(w, resp.Matches)
	}
	return fmt.Errorf("unknown output format %q", format)
}

// WriteJSON writes resp as indented JSON.
func WriteJSON(w io.Writer, resp types.RankResponse) error {
	if resp.Matches == nil {
		resp.Matches = []types.MatchResult{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(resp); err != nil {
		return fmt.Errorf("failed to write JSON output: %w", err)
	}
	return nil
}

// WriteTable writes one row per match: rank, candidate, score and leading reasons.
func WriteTable(w io.Writer, matches []types.MatchResult) error {
	if len(matches) == 0 {
		_, err := fmt.Fprintln(w, "No matches found.")
		return err
	}

	table := tablewriter.NewWriter(w)
	table.Header("#", "Candidate", "Score", "Why")
	for i, m := range matches {
		row := []string{
			strconv.Itoa(i + 1),
			m.CandidateID,
			strconv.Itoa(m.OverallScore),
			summarizeReasons(m.Reasons),
		}
		if err := table.Append(row); err != nil {
			return fmt.Errorf("failed to add table row: %w", err)
		}
	}
	if err := table.Render(); err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}

func summarizeReasons(reasons []string) string {
	if len(reasons) <= maxReasonsInTable {
		return strings.Join(reasons, "; ")
	}
	return fmt.Sprintf("%s (+%d more)", strings.Join(reasons[:maxReasonsInTable], "; "), len(reasons)-maxReasonsInTable)
}
