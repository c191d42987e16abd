// Package progress defines the narrow event interface the scan engine
// reports into. Implementations own all rendering; the engine never waits
// on them for anything but the call itself.
package progress

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

// Sink receives scan progress. Methods are called concurrently from scan
// workers and must be safe for concurrent use and cheap.
type Sink interface {
	// FileStarted is sent once a file has been classified as scannable.
	FileStarted(path string, totalRules int)
	// RuleChecked is sent after a rule has been run over the whole file.
	RuleChecked(path, rule string, done, total int)
	// MatchFound is sent once per file, when its first match is recorded.
	MatchFound(path string)
	// FileCompleted is sent for every started file, after its matches are
	// committed to the result.
	FileCompleted(path string, hadMatch bool)
}

// Nop discards every event.
type Nop struct{}

func (Nop) FileStarted(string, int)              {}
func (Nop) RuleChecked(string, string, int, int) {}
func (Nop) MatchFound(string)                    {}
func (Nop) FileCompleted(string, bool)           {}

// Kind identifies a recorded event.
type Kind int

const (
	KindFileStarted Kind = iota
	KindRuleChecked
	KindMatchFound
	KindFileCompleted
)

func (k Kind) String() string {
	switch k {
	case KindFileStarted:
		return "file_started"
	case KindRuleChecked:
		return "rule_checked"
	case KindMatchFound:
		return "match_found"
	case KindFileCompleted:
		return "file_completed"
	}
	return "unknown"
}

// Event is a single recorded call.
type Event struct {
	Kind     Kind
	Path     string
	Rule     string
	Done     int
	Total    int
	HadMatch bool
}

// Recorder keeps every event in arrival order. Useful in tests and for
// replaying a scan.
type Recorder struct {
	mu     sync.Mutex
	events []Event
}

func (r *Recorder) add(e Event) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *Recorder) FileStarted(path string, totalRules int) {
	r.add(Event{Kind: KindFileStarted, Path: path, Total: totalRules})
}

func (r *Recorder) RuleChecked(path, rule string, done, total int) {
	r.add(Event{Kind: KindRuleChecked, Path: path, Rule: rule, Done: done, Total: total})
}

func (r *Recorder) MatchFound(path string) {
	r.add(Event{Kind: KindMatchFound, Path: path})
}

func (r *Recorder) FileCompleted(path string, hadMatch bool) {
	r.add(Event{Kind: KindFileCompleted, Path: path, HadMatch: hadMatch})
}

// Events returns a copy of everything recorded so far.
func (r *Recorder) Events() []Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Event, len(r.events))
	copy(out, r.events)
	return out
}

// ForPath returns the recorded events for one file, in order.
func (r *Recorder) ForPath(path string) []Event {
	var out []Event
	for _, e := range r.Events() {
		if e.Path == path {
			out = append(out, e)
		}
	}
	return out
}

// Counter prints a single-line "[done/total] pct%" indicator, refreshed
// every tenth file and on the last one. It is meant for non-interactive
// terminals where a full UI would be noise.
type Counter struct {
	w       io.Writer
	total   int
	done    atomic.Int64
	flagged atomic.Int64
	mu      sync.Mutex
	printed int
}

// NewCounter returns a Counter writing to w. total may be zero when unknown.
func NewCounter(w io.Writer, total int) *Counter {
	return &Counter{w: w, total: total}
}

func (c *Counter) FileStarted(string, int)              {}
func (c *Counter) RuleChecked(string, string, int, int) {}

func (c *Counter) MatchFound(string) { c.flagged.Add(1) }

func (c *Counter) FileCompleted(string, bool) {
	n := int(c.done.Add(1))
	if n%10 != 0 && n != c.total {
		return
	}
	c.report(n)
}

func (c *Counter) report(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	// Workers race to the lock; never print a value older than the last one.
	if n <= c.printed {
		return
	}
	c.printed = n
	if c.total > 0 {
		pct := float64(n) / float64(c.total) * 100
		_, _ = fmt.Fprintf(c.w, "\r[%d/%d] %.0f%%", n, c.total, pct)
		return
	}
	_, _ = fmt.Fprintf(c.w, "\r[%d]", n)
}

// Finish terminates the progress line.
func (c *Counter) Finish() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.done.Load() > 0 {
		_, _ = fmt.Fprintln(c.w)
	}
}

// Flagged returns how many files reported at least one match.
func (c *Counter) Flagged() int { return int(c.flagged.Load()) }
