package tui

import tea "github.com/charmbracelet/bubbletea"

// Sink forwards engine progress events to a running program. Send is safe
// to call from many goroutines.
type Sink struct {
	send func(tea.Msg)
}

// NewSink wraps a send function, usually (*tea.Program).Send.
func NewSink(send func(tea.Msg)) *Sink { return &Sink{send: send} }

func (s *Sink) FileStarted(path string, totalRules int) {
	s.send(fileStartedMsg{path: path, rules: totalRules})
}

func (s *Sink) RuleChecked(path, rule string, done, total int) {
	s.send(ruleCheckedMsg{path: path, rule: rule, done: done, total: total})
}

func (s *Sink) MatchFound(path string) { s.send(matchFoundMsg{path: path}) }

func (s *Sink) FileCompleted(path string, hadMatch bool) {
	s.send(fileCompletedMsg{path: path, hadMatch: hadMatch})
}
