package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func update(t *testing.T, m Model, msgs ...tea.Msg) Model {
	t.Helper()
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		var ok bool
		m, ok = next.(Model)
		require.True(t, ok)
	}
	return m
}

func TestModel_TracksProgress(t *testing.T) {
	m := NewModel(3, nil)
	m = update(t, m,
		tea.WindowSizeMsg{Width: 100, Height: 30},
		fileStartedMsg{path: "config.txt", rules: 2},
		ruleCheckedMsg{path: "config.txt", rule: "password", done: 1, total: 2},
		matchFoundMsg{path: "config.txt"},
		matchFoundMsg{path: "config.txt"},
		fileStartedMsg{path: "clean.txt", rules: 2},
	)

	assert.Equal(t, []string{"config.txt"}, m.Flagged())
	assert.InDelta(t, 0.5, m.active["config.txt"].percent, 0.001)

	view := m.View()
	assert.Contains(t, view, "Files with potential secrets:")
	assert.Contains(t, view, "Active Scans")
	assert.Contains(t, view, "Progress: 0/3")
	assert.Contains(t, view, "1/2 rules")
	assert.Contains(t, view, "clean.txt")

	m = update(t, m, fileCompletedMsg{path: "config.txt", hadMatch: true})
	assert.Equal(t, 1, m.processed)
	assert.NotContains(t, m.active, "config.txt")
	assert.Contains(t, m.View(), "Progress: 1/3")
}

func TestModel_CancelOnce(t *testing.T) {
	calls := 0
	m := NewModel(1, func() { calls++ })
	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC}, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Equal(t, 1, calls)
	assert.True(t, m.cancelling)
	assert.Contains(t, m.View(), "cancelling")
}

func TestModel_QuitsWhenScanDone(t *testing.T) {
	m := NewModel(1, nil)
	next, cmd := m.Update(scanDoneMsg{})
	require.NotNil(t, cmd)
	_, isQuit := cmd().(tea.QuitMsg)
	assert.True(t, isQuit)
	assert.Empty(t, next.View())
}

func TestTruncatePath(t *testing.T) {
	assert.Equal(t, "short.txt", truncatePath("short.txt", 20))
	assert.Equal(t, ".../file.txt", truncatePath("very/deep/nested/dir/file.txt", 20))
	got := truncatePath("a-very-long-directory-name/file.txt", 20)
	assert.True(t, strings.HasPrefix(got, "..."))
	assert.LessOrEqual(t, len([]rune(got)), 20)
}

func TestSink_SendsMessages(t *testing.T) {
	var got []tea.Msg
	s := NewSink(func(m tea.Msg) { got = append(got, m) })
	s.FileStarted("a", 2)
	s.RuleChecked("a", "r", 1, 2)
	s.MatchFound("a")
	s.FileCompleted("a", true)

	require.Len(t, got, 4)
	assert.Equal(t, fileStartedMsg{path: "a", rules: 2}, got[0])
	assert.Equal(t, ruleCheckedMsg{path: "a", rule: "r", done: 1, total: 2}, got[1])
	assert.Equal(t, matchFoundMsg{path: "a"}, got[2])
	assert.Equal(t, fileCompletedMsg{path: "a", hadMatch: true}, got[3])
}
