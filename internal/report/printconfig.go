package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/secret-squirrel/ssq/internal/types"
	"gopkg.in/yaml.v3"
)

var (
	titleStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("6")).Bold(true)
	ruleLineStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	floorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
)

// PrintConfig renders v as YAML under a heading, coloring severity values.
func PrintConfig(w io.Writer, v any, noColor bool) error {
	out, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	p := painter{plain: noColor}
	fmt.Fprintln(w, p.paint(titleStyle, "Current Configuration:"))
	fmt.Fprintln(w, p.paint(ruleLineStyle, strings.Repeat("=", 22)))
	fmt.Fprintln(w)
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		idx := strings.Index(line, "severity: ")
		switch {
		case idx == 0:
			fmt.Fprintf(w, "severity: %s\n", p.paint(floorStyle, line[len("severity: "):]))
		case idx > 0:
			val := line[idx+len("severity: "):]
			sev, err := types.LookupSeverity(val)
			if err != nil {
				fmt.Fprintln(w, line)
				continue
			}
			fmt.Fprintf(w, "%sseverity: %s\n", line[:idx], p.paint(severityStyle(sev), val))
		default:
			fmt.Fprintln(w, line)
		}
	}
	return nil
}
