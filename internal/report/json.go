package report

import (
	"encoding/json"
	"io"

	"github.com/secret-squirrel/ssq/internal/types"
)

// Summary is the JSON report envelope.
type Summary struct {
	Matches          []types.Match `json:"matches"`
	FilesScanned     int           `json:"files_scanned"`
	FilesWithMatches int           `json:"files_with_matches"`
	DurationMS       int64         `json:"duration_ms"`
	Cancelled        bool          `json:"cancelled"`
	Suppressed       int           `json:"baselined,omitempty"`
}

// WriteJSON writes the matches and scan statistics as indented JSON.
func WriteJSON(w io.Writer, matches []types.Match, opts PrintOptions) error {
	if matches == nil {
		matches = []types.Match{}
	}
	SortMatches(matches)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(Summary{
		Matches:          matches,
		FilesScanned:     opts.FilesScanned,
		FilesWithMatches: opts.FilesWithMatches,
		DurationMS:       opts.Duration.Milliseconds(),
		Cancelled:        opts.Cancelled,
		Suppressed:       opts.Suppressed,
	})
}
