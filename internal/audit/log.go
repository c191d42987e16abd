// Package audit appends one JSON line per scan to a repository-local log
// and reads the history back.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/secret-squirrel/ssq/internal/report"
	"github.com/secret-squirrel/ssq/internal/types"
)

const (
	gitLogName   = "ssq_audit.jsonl"
	plainLogName = ".ssq_audit.jsonl"
	topN         = 10
)

// ScanRecord summarizes one scan. Matched line text is never stored; each
// match is identified by its baseline fingerprint instead.
type ScanRecord struct {
	Timestamp      time.Time      `json:"timestamp"`
	ScanID         string         `json:"scan_id"`
	Root           string         `json:"root"`
	TotalMatches   int            `json:"total_matches"`
	NewMatches     int            `json:"new_matches"`
	BaselinedCount int            `json:"baselined_count"`
	SeverityCounts map[string]int `json:"severity_counts"`
	FilesScanned   int            `json:"files_scanned"`
	Duration       string         `json:"duration"`
	Cancelled      bool           `json:"cancelled,omitempty"`
	BaselineFile   string         `json:"baseline_file,omitempty"`
	TopMatches     []MatchSummary `json:"top_matches,omitempty"`
}

// MatchSummary locates a match without its content.
type MatchSummary struct {
	Path        string `json:"path"`
	Rule        string `json:"rule"`
	Severity    string `json:"severity"`
	Line        int    `json:"line"`
	Fingerprint string `json:"fingerprint"`
}

// Log is an append-only JSONL file.
type Log struct {
	path string
}

// NewLog places the log inside .git when root is a git checkout, otherwise
// next to the scanned files.
func NewLog(root string) *Log {
	p := filepath.Join(root, plainLogName)
	if st, err := os.Stat(filepath.Join(root, ".git")); err == nil && st.IsDir() {
		p = filepath.Join(root, ".git", gitLogName)
	}
	return &Log{path: p}
}

// Path returns the log file location.
func (l *Log) Path() string { return l.path }

// LoadHistory returns every readable record, newest first. Corrupt lines are
// skipped.
func (l *Log) LoadHistory() ([]ScanRecord, error) {
	f, err := os.Open(l.path)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	var records []ScanRecord
	dec := json.NewDecoder(f)
	for dec.More() {
		var rec ScanRecord
		if err := dec.Decode(&rec); err != nil {
			break
		}
		records = append(records, rec)
	}
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}
	return records, nil
}

// Append writes rec as one line, creating the log owner-readable only.
func (l *Log) Append(rec ScanRecord) error {
	if rec.ScanID == "" {
		rec.ScanID = fmt.Sprintf("scan_%d", rec.Timestamp.UnixNano())
	}
	f, err := os.OpenFile(l.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if err := json.NewEncoder(f).Encode(rec); err != nil {
		return fmt.Errorf("failed to write audit record: %w", err)
	}
	return nil
}

// NewRecord builds a record from all matches and the subset not covered by
// the baseline.
func NewRecord(root string, all, fresh []types.Match, filesScanned int, d time.Duration, cancelled bool, baselineFile string) ScanRecord {
	counts := map[string]int{}
	for _, m := range all {
		counts[m.Severity.String()]++
	}
	top := make([]MatchSummary, 0, topN)
	for _, m := range fresh {
		if len(top) == topN {
			break
		}
		top = append(top, MatchSummary{
			Path:        m.Path,
			Rule:        m.Rule,
			Severity:    m.Severity.String(),
			Line:        m.Line,
			Fingerprint: report.Fingerprint(m),
		})
	}
	return ScanRecord{
		Timestamp:      time.Now(),
		Root:           root,
		TotalMatches:   len(all),
		NewMatches:     len(fresh),
		BaselinedCount: len(all) - len(fresh),
		SeverityCounts: counts,
		FilesScanned:   filesScanned,
		Duration:       d.Round(time.Millisecond).String(),
		Cancelled:      cancelled,
		BaselineFile:   baselineFile,
		TopMatches:     top,
	}
}
