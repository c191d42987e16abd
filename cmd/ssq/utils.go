package ssq

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/secret-squirrel/ssq/internal/config"
	"github.com/secret-squirrel/ssq/internal/engine"
	"github.com/secret-squirrel/ssq/internal/types"
	"github.com/sirupsen/logrus"
	"golang.org/x/term"
)

// reservedRows is how many terminal rows the progress view needs besides
// one row per file in flight.
const reservedRows = 6

// setup is everything resolved before a scan starts.
type setup struct {
	root    string
	file    config.FileConfig
	sources []string
	floor   types.Severity
	engine  engine.Config
}

// prepare validates the target path and flags and merges configuration.
// It does not open any file under the target.
func prepare(args []string) (*setup, error) {
	target := "."
	if len(args) > 0 {
		target = args[0]
	}
	abs, err := filepath.Abs(target)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, fmt.Errorf("cannot scan %s: %w", target, err)
	}
	if flagSeverity != "" {
		if _, err := types.LookupSeverity(flagSeverity); err != nil {
			return nil, fmt.Errorf("--severity: %w", err)
		}
	}

	fc, sources, err := config.Load(flagConfig, abs)
	if err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	logrus.WithField("sources", sources).Debug("config loaded")

	floor := fc.EffectiveSeverity(flagSeverity)
	return &setup{
		root:    abs,
		file:    fc,
		sources: sources,
		floor:   floor,
		engine: engine.Config{
			Root:        abs,
			Rules:       fc.RuleSpecs(),
			MinSeverity: floor,
			Ignore:      fc.IgnoreConfig(),
			Concurrency: concurrency(),
		},
	}, nil
}

// concurrency honors --concurrency, otherwise fits one progress row per file
// into the terminal, capped at engine.DefaultConcurrency.
func concurrency() int {
	if flagConcurrency > 0 {
		return flagConcurrency
	}
	_, rows, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || rows <= 0 {
		return engine.DefaultConcurrency
	}
	return max(min(rows-reservedRows, engine.DefaultConcurrency), 1)
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// rootDir is the directory that holds per-tree files such as the baseline
// and the audit log.
func rootDir(root string) string {
	if st, err := os.Stat(root); err == nil && !st.IsDir() {
		return filepath.Dir(root)
	}
	return root
}

// scanQuiet runs a scan without any progress output.
func scanQuiet(ctx context.Context, s *setup) (*engine.Result, error) {
	res, err := engine.Scan(ctx, s.engine)
	if err != nil {
		return nil, err
	}
	res.Sort()
	return res, nil
}
