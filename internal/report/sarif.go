package report

import (
	"encoding/json"
	"io"
	"sort"

	"github.com/secret-squirrel/ssq/internal/types"
)

type sarif struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool       sarifTool      `json:"tool"`
	Results    []sarifResult  `json:"results"`
	Properties map[string]any `json:"properties,omitempty"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name           string      `json:"name"`
	Version        string      `json:"version,omitempty"`
	InformationURI string      `json:"informationUri,omitempty"`
	Rules          []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID               string         `json:"id"`
	ShortDescription sarifMessage   `json:"shortDescription"`
	Properties       sarifRuleProps `json:"properties"`
}

type sarifRuleProps struct {
	Severity string `json:"severity"`
}

type sarifResult struct {
	RuleID    string       `json:"ruleId"`
	RuleIndex int          `json:"ruleIndex"`
	Level     string       `json:"level"`
	Message   sarifMessage `json:"message"`
	Locations []sarifLoc   `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLoc struct {
	PhysicalLocation sarifPhys `json:"physicalLocation"`
}

type sarifPhys struct {
	ArtifactLocation sarifArt    `json:"artifactLocation"`
	Region           sarifRegion `json:"region"`
}

type sarifArt struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	StartLine int `json:"startLine"`
}

func sevToLevel(s types.Severity) string {
	switch s {
	case types.SevCritical, types.SevHigh:
		return "error"
	case types.SevMedium:
		return "warning"
	default:
		return "note"
	}
}

// SARIFOptions fills the tool section of a SARIF log.
type SARIFOptions struct {
	Version string
	Stats   map[string]int
}

// WriteSARIF writes matches as SARIF 2.1.0. Every rule that produced a
// match is listed in the driver and referenced by index.
func WriteSARIF(w io.Writer, matches []types.Match, opts SARIFOptions) error {
	SortMatches(matches)
	index := map[string]int{}
	var ids []string
	byID := map[string]types.Match{}
	for _, m := range matches {
		if _, ok := byID[m.Rule]; !ok {
			byID[m.Rule] = m
			ids = append(ids, m.Rule)
		}
	}
	sort.Strings(ids)

	driver := sarifDriver{Name: "ssq", Version: opts.Version, Rules: []sarifRule{}}
	for i, id := range ids {
		index[id] = i
		m := byID[id]
		desc := m.Description
		if desc == "" {
			desc = id
		}
		driver.Rules = append(driver.Rules, sarifRule{
			ID:               id,
			ShortDescription: sarifMessage{Text: desc},
			Properties:       sarifRuleProps{Severity: m.Severity.String()},
		})
	}

	run := sarifRun{Tool: sarifTool{Driver: driver}, Results: []sarifResult{}}
	for _, m := range matches {
		run.Results = append(run.Results, sarifResult{
			RuleID:    m.Rule,
			RuleIndex: index[m.Rule],
			Level:     sevToLevel(m.Severity),
			Message:   sarifMessage{Text: m.Rule + " detected"},
			Locations: []sarifLoc{{
				PhysicalLocation: sarifPhys{
					ArtifactLocation: sarifArt{URI: m.Path},
					Region:           sarifRegion{StartLine: m.Line},
				},
			}},
		})
	}
	if len(opts.Stats) > 0 {
		run.Properties = map[string]any{"scanStats": opts.Stats}
	}
	doc := sarif{
		Schema:  "https://json.schemastore.org/sarif-2.1.0.json",
		Version: "2.1.0",
		Runs:    []sarifRun{run},
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(doc)
}
