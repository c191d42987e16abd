package tui

import (
	"context"
	"errors"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/secret-squirrel/ssq/internal/progress"
)

// ScanFunc runs a scan reporting to sink. It must return once ctx is done.
type ScanFunc func(ctx context.Context, sink progress.Sink) error

// Run shows live progress for scan on out until it returns. Interrupting
// the program cancels the scan's context; Run still waits for scan so the
// caller gets the partial result it collected.
func Run(parent context.Context, out io.Writer, total int, scan ScanFunc) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	p := tea.NewProgram(NewModel(total, cancel), tea.WithOutput(out), tea.WithAltScreen(), tea.WithContext(parent))
	scanErr := make(chan error, 1)
	go func() {
		err := scan(ctx, NewSink(p.Send))
		scanErr <- err
		p.Send(scanDoneMsg{err: err})
	}()

	if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		cancel()
		<-scanErr
		return fmt.Errorf("error running TUI: %w", err)
	}
	return <-scanErr
}

var _ progress.Sink = (*Sink)(nil)
