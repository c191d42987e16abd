package tui

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	minPathWidth = 20
	barWidth     = 10
)

var (
	problemBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("9")).
			Padding(0, 1)

	activeBoxStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 1)

	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)

	problemTitleStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("9")).
				Bold(true)

	bulletStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	pathStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

type fileStartedMsg struct {
	path  string
	rules int
}

type ruleCheckedMsg struct {
	path        string
	rule        string
	done, total int
}

type matchFoundMsg struct{ path string }

type fileCompletedMsg struct {
	path     string
	hadMatch bool
}

type scanDoneMsg struct{ err error }

type activeScan struct {
	status  string
	percent float64
}

// Model is the live view of a running scan: files flagged so far, files
// being scanned right now and overall progress.
type Model struct {
	total     int
	processed int
	problems  []string
	flagged   map[string]bool
	active    map[string]*activeScan

	spinner spinner.Model
	bar     progress.Model
	width   int
	height  int

	cancel     context.CancelFunc
	cancelling bool
	done       bool
	err        error
}

// NewModel returns a model expecting total files. cancel is called when
// the user interrupts.
func NewModel(total int, cancel context.CancelFunc) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Line
	sp.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))

	return Model{
		total:   total,
		flagged: map[string]bool{},
		active:  map[string]*activeScan{},
		spinner: sp,
		bar:     progress.New(progress.WithDefaultGradient(), progress.WithWidth(barWidth), progress.WithoutPercentage()),
		cancel:  cancel,
		width:   80,
		height:  24,
	}
}

func (m Model) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			if !m.cancelling && m.cancel != nil {
				m.cancel()
			}
			m.cancelling = true
		}
		return m, nil

	case fileStartedMsg:
		m.active[msg.path] = &activeScan{status: fmt.Sprintf("0/%d rules", msg.rules)}
		return m, nil

	case ruleCheckedMsg:
		a, ok := m.active[msg.path]
		if !ok {
			a = &activeScan{}
			m.active[msg.path] = a
		}
		a.status = fmt.Sprintf("%d/%d rules", msg.done, msg.total)
		if msg.total > 0 {
			a.percent = float64(msg.done) / float64(msg.total)
		}
		return m, nil

	case matchFoundMsg:
		if !m.flagged[msg.path] {
			m.flagged[msg.path] = true
			m.problems = append(m.problems, msg.path)
		}
		return m, nil

	case fileCompletedMsg:
		delete(m.active, msg.path)
		m.processed++
		return m, nil

	case scanDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) View() string {
	if m.done {
		return ""
	}
	var b strings.Builder
	inner := max(m.width-4, minPathWidth)

	if len(m.problems) > 0 {
		limit := max(m.height/2-3, 3)
		var lines []string
		lines = append(lines, problemTitleStyle.Render("Files with potential secrets:"))
		shown := m.problems
		if len(shown) > limit {
			shown = shown[len(shown)-limit:]
			lines = append(lines, statusStyle.Render(fmt.Sprintf("… %d more", len(m.problems)-limit)))
		}
		for _, p := range shown {
			lines = append(lines, bulletStyle.Render("● ")+truncatePath(p, inner-2))
		}
		b.WriteString(problemBoxStyle.Width(inner).Render(strings.Join(lines, "\n")))
		b.WriteString("\n")
	}

	paths := make([]string, 0, len(m.active))
	msgWidth := 0
	for p, a := range m.active {
		paths = append(paths, p)
		msgWidth = max(msgWidth, len(a.status))
	}
	sort.Strings(paths)
	pathWidth := max(minPathWidth, inner-2-barWidth-msgWidth-2)

	header := titleStyle.Render("Active Scans")
	counter := fmt.Sprintf("Progress: %d/%d", m.processed, m.total)
	gap := max(inner-lipgloss.Width(header)-lipgloss.Width(counter), 1)
	lines := []string{header + strings.Repeat(" ", gap) + counter}
	for _, p := range paths {
		a := m.active[p]
		lines = append(lines, fmt.Sprintf("%s %s %-*s %s",
			m.spinner.View(),
			pathStyle.Render(fmt.Sprintf("%-*s", pathWidth, truncatePath(p, pathWidth))),
			msgWidth, a.status,
			m.bar.ViewAs(a.percent)))
	}
	b.WriteString(activeBoxStyle.Width(inner).Render(strings.Join(lines, "\n")))
	b.WriteString("\n")

	hint := "ctrl+c: cancel"
	if m.cancelling {
		hint = "cancelling, finishing files in flight…"
	}
	b.WriteString(statusStyle.Render(hint))
	return b.String()
}

// Flagged returns the files reported to have matches, in report order.
func (m Model) Flagged() []string { return append([]string(nil), m.problems...) }

// truncatePath shortens p to at most n runes, keeping the file name when
// the path has several segments.
func truncatePath(p string, n int) string {
	r := []rune(p)
	if len(r) <= n {
		return p
	}
	var out string
	if parts := strings.Split(p, "/"); len(parts) > 2 {
		out = ".../" + parts[len(parts)-1]
	} else {
		out = "..." + string(r[len(r)-max(n-3, 0):])
	}
	if o := []rune(out); len(o) > n {
		out = string(o[:n])
	}
	return out
}
