package engine

import (
	"sort"
	"sync"
	"time"

	"github.com/secret-squirrel/ssq/internal/types"
)

// Result is the outcome of one scan. Matches carry no ordering guarantee;
// call Sort for a stable presentation order.
type Result struct {
	Matches []types.Match
	// Scanned lists each file that was fully scanned, sorted.
	Scanned   []string
	Duration  time.Duration
	Cancelled bool
}

// FilesScanned is the number of distinct files that were scanned.
func (r *Result) FilesScanned() int { return len(r.Scanned) }

// FilesWithMatches returns the sorted distinct paths having at least one match.
func (r *Result) FilesWithMatches() []string {
	seen := map[string]bool{}
	var out []string
	for _, m := range r.Matches {
		if !seen[m.Path] {
			seen[m.Path] = true
			out = append(out, m.Path)
		}
	}
	sort.Strings(out)
	return out
}

// Sort orders matches by path, line, then rule.
func (r *Result) Sort() {
	sort.SliceStable(r.Matches, func(i, j int) bool {
		a, b := r.Matches[i], r.Matches[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})
}

// collector is the only structure workers write to concurrently. A file's
// matches and its scanned mark are committed together under one lock, so a
// reader never sees matches for a file that is not marked scanned.
type collector struct {
	mu      sync.Mutex
	matches []types.Match
	scanned map[string]struct{}
}

func newCollector() *collector {
	return &collector{scanned: map[string]struct{}{}}
}

func (c *collector) commit(path string, ms []types.Match) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.matches = append(c.matches, ms...)
	c.scanned[path] = struct{}{}
}

func (c *collector) result() *Result {
	c.mu.Lock()
	defer c.mu.Unlock()
	res := &Result{
		Matches: make([]types.Match, len(c.matches)),
		Scanned: make([]string, 0, len(c.scanned)),
	}
	copy(res.Matches, c.matches)
	for p := range c.scanned {
		res.Scanned = append(res.Scanned, p)
	}
	sort.Strings(res.Scanned)
	return res
}
