package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/cespare/xxhash/v2"
	"github.com/secret-squirrel/ssq/internal/types"
)

// BaselineFile is the default baseline name, relative to the scan root.
const BaselineFile = "ssq.baseline.json"

// BaselineItem records where an accepted match was first seen.
type BaselineItem struct {
	Rule string `json:"rule"`
	Path string `json:"path"`
}

// Baseline is a set of accepted matches keyed by Fingerprint. Line numbers
// are not part of the key, so a baselined secret stays accepted when code
// above it moves.
type Baseline struct {
	Version int                     `json:"version"`
	Items   map[string]BaselineItem `json:"items"`
}

// Fingerprint identifies a match by rule, path and trimmed line text.
func Fingerprint(m types.Match) string {
	h := xxhash.New()
	_, _ = h.WriteString(m.Rule)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(m.Path)
	_, _ = h.WriteString("\x00")
	_, _ = h.WriteString(strings.TrimSpace(m.Text))
	return fmt.Sprintf("%016x", h.Sum64())
}

// NewBaseline builds a baseline accepting every match.
func NewBaseline(matches []types.Match) Baseline {
	b := Baseline{Version: 1, Items: map[string]BaselineItem{}}
	for _, m := range matches {
		b.Items[Fingerprint(m)] = BaselineItem{Rule: m.Rule, Path: m.Path}
	}
	return b
}

// LoadBaseline reads path. A missing file yields an empty baseline and no
// error.
func LoadBaseline(path string) (Baseline, error) {
	b := Baseline{Version: 1, Items: map[string]BaselineItem{}}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return b, nil
	}
	if err != nil {
		return b, err
	}
	if err := json.Unmarshal(raw, &b); err != nil {
		return b, fmt.Errorf("%s: %w", path, err)
	}
	if b.Items == nil {
		b.Items = map[string]BaselineItem{}
	}
	return b, nil
}

// SaveBaseline writes a baseline accepting every match.
func SaveBaseline(path string, matches []types.Match) error {
	buf, err := json.MarshalIndent(NewBaseline(matches), "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(buf, '\n'), 0o644)
}

// Contains reports whether m is accepted.
func (b Baseline) Contains(m types.Match) bool {
	_, ok := b.Items[Fingerprint(m)]
	return ok
}

// FilterNew drops accepted matches and returns the rest plus how many were
// dropped.
func FilterNew(matches []types.Match, base Baseline) ([]types.Match, int) {
	var out []types.Match
	for _, m := range matches {
		if !base.Contains(m) {
			out = append(out, m)
		}
	}
	return out, len(matches) - len(out)
}

// ShouldFail reports whether any match is at or above failOn.
func ShouldFail(matches []types.Match, failOn types.Severity) bool {
	for _, m := range matches {
		if m.Severity.AtLeast(failOn) {
			return true
		}
	}
	return false
}
