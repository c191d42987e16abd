package types

import (
	"fmt"
	"strings"
)

// Severity is the ordered risk level of a rule. The zero value is SevLow.
type Severity int

const (
	SevLow Severity = iota
	SevMedium
	SevHigh
	SevCritical
)

// Severities lists every level in ascending order.
var Severities = []Severity{SevLow, SevMedium, SevHigh, SevCritical}

// ParseSeverity maps a case-insensitive name to a Severity. Unknown names
// map to SevLow, matching how config files have always been read.
func ParseSeverity(s string) Severity {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "critical":
		return SevCritical
	case "high":
		return SevHigh
	case "medium":
		return SevMedium
	default:
		return SevLow
	}
}

// LookupSeverity is the strict variant of ParseSeverity used for user flags.
func LookupSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return SevLow, nil
	case "medium":
		return SevMedium, nil
	case "high":
		return SevHigh, nil
	case "critical":
		return SevCritical, nil
	}
	return SevLow, fmt.Errorf("unknown severity %q (want low|medium|high|critical)", s)
}

func (s Severity) String() string {
	switch s {
	case SevCritical:
		return "critical"
	case SevHigh:
		return "high"
	case SevMedium:
		return "medium"
	default:
		return "low"
	}
}

// AtLeast reports whether s meets the floor.
func (s Severity) AtLeast(floor Severity) bool { return s >= floor }

func (s Severity) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Severity) UnmarshalText(b []byte) error {
	*s = ParseSeverity(string(b))
	return nil
}

// Match is one line flagged by one rule. Several rules matching the same
// line produce several Matches.
type Match struct {
	Rule        string   `json:"rule"`
	Path        string   `json:"path"`
	Line        int      `json:"line"`
	Text        string   `json:"text"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description,omitempty"`
}
