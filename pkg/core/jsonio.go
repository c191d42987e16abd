package core

import (
	"bytes"
	"encoding/json"
	"io"

	"github.com/secret-squirrel/ssq/internal/report"
)

// Report is the document written by WriteResult and `ssq --json`.
type Report = report.Summary

// WriteResult encodes res in the same JSON envelope the CLI prints. Matches
// are sorted in place.
func WriteResult(w io.Writer, res *Result) error {
	return report.WriteJSON(w, res.Matches, report.PrintOptions{
		Duration:         res.Duration,
		FilesScanned:     res.FilesScanned(),
		FilesWithMatches: len(res.FilesWithMatches()),
		Cancelled:        res.Cancelled,
	})
}

// ReadMatches decodes either a report envelope or a bare array of matches.
func ReadMatches(r io.Reader) ([]Match, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if t := bytes.TrimSpace(b); len(t) > 0 && t[0] == '[' {
		var ms []Match
		if err := json.Unmarshal(t, &ms); err != nil {
			return nil, err
		}
		return ms, nil
	}
	var rep Report
	if err := json.Unmarshal(b, &rep); err != nil {
		return nil, err
	}
	return rep.Matches, nil
}
