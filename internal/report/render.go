package report

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/olekukonko/tablewriter"
	"github.com/secret-squirrel/ssq/internal/types"
)

// PrintOptions controls the human readable reports.
type PrintOptions struct {
	NoColor          bool
	Duration         time.Duration
	FilesScanned     int
	FilesWithMatches int
	Cancelled        bool
	// Suppressed counts matches hidden by a baseline.
	Suppressed int
}

var (
	boldStyle     = lipgloss.NewStyle().Bold(true)
	headerStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	okStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	pathStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	lineNumStyle  = pathStyle.Bold(true)
	dimStyle      = lipgloss.NewStyle().Faint(true)
	sevCritStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	sevHighStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sevMedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	sevLowStyle   = dimStyle
	warnLabel     = headerStyle
)

const tableMaxMatch = 60

type painter struct{ plain bool }

func (p painter) paint(s lipgloss.Style, text string) string {
	if p.plain {
		return text
	}
	return s.Render(text)
}

func (p painter) severity(s types.Severity) string {
	return p.paint(severityStyle(s), s.String())
}

func severityStyle(s types.Severity) lipgloss.Style {
	switch s {
	case types.SevCritical:
		return sevCritStyle
	case types.SevHigh:
		return sevHighStyle
	case types.SevMedium:
		return sevMedStyle
	}
	return sevLowStyle
}

// SortMatches orders matches by path, line, then rule, in place.
func SortMatches(ms []types.Match) {
	sort.SliceStable(ms, func(i, j int) bool {
		a, b := ms[i], ms[j]
		if a.Path != b.Path {
			return a.Path < b.Path
		}
		if a.Line != b.Line {
			return a.Line < b.Line
		}
		return a.Rule < b.Rule
	})
}

// PrintText writes one block per match followed by a summary.
func PrintText(w io.Writer, matches []types.Match, opts PrintOptions) {
	p := painter{plain: opts.NoColor}
	SortMatches(matches)
	if len(matches) == 0 {
		fmt.Fprintf(w, "\n%s\n", p.paint(okStyle, "No matches found."))
	} else {
		fmt.Fprintf(w, "\n%s\n", p.paint(headerStyle, "Matches found:"))
		fmt.Fprintln(w, p.paint(headerStyle, strings.Repeat("═", 14)))
		for _, m := range matches {
			fmt.Fprintf(w, "\n%s %s (%s)\n", p.paint(boldStyle, "Pattern:"), m.Rule, p.severity(m.Severity))
			if m.Description != "" {
				fmt.Fprintf(w, "%s %s\n", p.paint(boldStyle, "Description:"), m.Description)
			}
			fmt.Fprintf(w, "%s %s:%s\n", p.paint(boldStyle, "Location:"), p.paint(pathStyle, m.Path), p.paint(lineNumStyle, strconv.Itoa(m.Line)))
			fmt.Fprintf(w, "%s %s\n", p.paint(boldStyle, "Match:"), p.paint(dimStyle, strings.TrimSpace(m.Text)))
		}
		fmt.Fprintf(w, "\n%s %d potential secrets found\n", p.paint(warnLabel, "WARNING:"), len(matches))
	}
	printFooter(w, matches, opts)
}

// PrintTable writes matches as a bordered table followed by a summary.
func PrintTable(w io.Writer, matches []types.Match, opts PrintOptions) {
	p := painter{plain: opts.NoColor}
	SortMatches(matches)
	if len(matches) == 0 {
		fmt.Fprintln(w, p.paint(okStyle, "No secrets found ✅"))
	} else {
		table := tablewriter.NewWriter(w)
		table.Header("SEVERITY", "RULE", "LOCATION", "MATCH")
		for _, m := range matches {
			_ = table.Append([]string{
				m.Severity.String(),
				m.Rule,
				m.Path + ":" + strconv.Itoa(m.Line),
				clip(strings.TrimSpace(m.Text), tableMaxMatch),
			})
		}
		_ = table.Render()
	}
	printFooter(w, matches, opts)
}

func printFooter(w io.Writer, matches []types.Match, opts PrintOptions) {
	if opts.Duration <= 0 && opts.FilesScanned <= 0 && !opts.Cancelled {
		return
	}
	counts := map[types.Severity]int{}
	for _, m := range matches {
		counts[m.Severity]++
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Findings: %d (critical: %d, high: %d, medium: %d, low: %d)\n", len(matches),
		counts[types.SevCritical], counts[types.SevHigh], counts[types.SevMedium], counts[types.SevLow])
	if opts.Suppressed > 0 {
		fmt.Fprintf(w, "Baselined: %d\n", opts.Suppressed)
	}
	if opts.Duration > 0 {
		fmt.Fprintf(w, "Scan duration: %.2fs\n", opts.Duration.Seconds())
	}
	fmt.Fprintf(w, "Files scanned: %d\n", opts.FilesScanned)
	if opts.FilesWithMatches > 0 {
		fmt.Fprintf(w, "Files with potential secrets: %d\n", opts.FilesWithMatches)
	}
	if opts.Cancelled {
		fmt.Fprintln(w, "Scan cancelled, results are partial")
	}
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// RuleRow is one line of the rule listing.
type RuleRow struct {
	Name        string
	Severity    types.Severity
	Description string
	Pattern     string
}

// PrintRules lists rules as a table, most severe first.
func PrintRules(w io.Writer, rows []RuleRow, noColor bool) {
	p := painter{plain: noColor}
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Severity != rows[j].Severity {
			return rows[i].Severity > rows[j].Severity
		}
		return rows[i].Name < rows[j].Name
	})
	table := tablewriter.NewWriter(w)
	table.Header("RULE", "SEVERITY", "DESCRIPTION", "PATTERN")
	for _, r := range rows {
		_ = table.Append([]string{r.Name, r.Severity.String(), r.Description, clip(r.Pattern, tableMaxMatch)})
	}
	_ = table.Render()
	fmt.Fprintf(w, "%s %d rules\n", p.paint(boldStyle, "Active:"), len(rows))
}
