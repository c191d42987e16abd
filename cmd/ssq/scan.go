package ssq

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/secret-squirrel/ssq/internal/audit"
	"github.com/secret-squirrel/ssq/internal/engine"
	"github.com/secret-squirrel/ssq/internal/progress"
	"github.com/secret-squirrel/ssq/internal/report"
	"github.com/secret-squirrel/ssq/internal/tui"
	"github.com/secret-squirrel/ssq/internal/types"
	"github.com/spf13/cobra"
)

var (
	flagPrintConfig bool
	flagJSON        bool
	flagSARIF       bool
	flagTable       bool
	flagNoProgress  bool
	flagFailOn      string
	flagBaseline    string
	flagAudit       bool
)

func init() {
	f := rootCmd.Flags()
	f.BoolVar(&flagPrintConfig, "print-config", false, "print the effective configuration and exit")
	f.BoolVar(&flagJSON, "json", false, "emit JSON")
	f.BoolVar(&flagSARIF, "sarif", false, "emit SARIF 2.1.0")
	f.BoolVar(&flagTable, "table", false, "print matches as a table")
	f.BoolVar(&flagNoProgress, "no-progress", false, "do not show scan progress")
	f.StringVar(&flagFailOn, "fail-on", "low", "exit 1 when a match is at least low|medium|high|critical, or none")
	f.StringVar(&flagBaseline, "baseline", "", "baseline file of accepted matches (default <root>/"+report.BaselineFile+")")
	f.BoolVar(&flagAudit, "audit", false, "append a record of this scan to the audit log")
}

func parseFailOn(s string) (types.Severity, bool, error) {
	if strings.EqualFold(strings.TrimSpace(s), "none") {
		return 0, false, nil
	}
	sev, err := types.LookupSeverity(s)
	if err != nil {
		return 0, false, fmt.Errorf("--fail-on: %w", err)
	}
	return sev, true, nil
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := cmd.OutOrStdout()

	failOn, failEnabled, err := parseFailOn(flagFailOn)
	if err != nil {
		return err
	}
	s, err := prepare(args)
	if err != nil {
		return err
	}
	if flagPrintConfig {
		return report.PrintConfig(out, s.file.Effective(s.floor), flagNoColor)
	}

	machine := flagJSON || flagSARIF
	if !machine {
		fmt.Fprintf(cmd.ErrOrStderr(), "Scanning path: %s\n", s.root)
	}

	res, err := scanWithProgress(ctx, s, machine)
	if err != nil {
		return err
	}

	baselinePath := flagBaseline
	if baselinePath == "" {
		baselinePath = filepath.Join(rootDir(s.root), report.BaselineFile)
	}
	base, err := report.LoadBaseline(baselinePath)
	if err != nil {
		return fmt.Errorf("baseline: %w", err)
	}
	fresh, suppressed := report.FilterNew(res.Matches, base)

	opts := report.PrintOptions{
		NoColor:          flagNoColor || !isTerminal(os.Stdout),
		Duration:         res.Duration,
		FilesScanned:     res.FilesScanned(),
		FilesWithMatches: len(res.FilesWithMatches()),
		Cancelled:        res.Cancelled,
		Suppressed:       suppressed,
	}
	switch {
	case flagSARIF:
		err = report.WriteSARIF(out, fresh, report.SARIFOptions{Version: version, Stats: map[string]int{
			"filesScanned": opts.FilesScanned,
			"baselined":    suppressed,
		}})
	case flagJSON:
		err = report.WriteJSON(out, fresh, opts)
	case flagTable:
		report.PrintTable(out, fresh, opts)
	default:
		report.PrintText(out, fresh, opts)
	}
	if err != nil {
		return err
	}

	if flagAudit {
		l := audit.NewLog(rootDir(s.root))
		rec := audit.NewRecord(s.root, res.Matches, fresh, res.FilesScanned(), res.Duration, res.Cancelled, baselinePath)
		if err := l.Append(rec); err != nil {
			fmt.Fprintln(cmd.ErrOrStderr(), "audit warning:", err)
		}
	}

	switch {
	case res.Cancelled:
		return exitError{code: 130}
	case failEnabled && report.ShouldFail(fresh, failOn):
		return exitError{code: 1}
	}
	return nil
}

// scanWithProgress picks the live view on a terminal, a one-line counter
// otherwise, and nothing for machine-readable output.
func scanWithProgress(ctx context.Context, s *setup, machine bool) (*engine.Result, error) {
	if machine || flagNoProgress {
		return scanQuiet(ctx, s)
	}
	total, err := engine.CountTargets(ctx, s.engine)
	if err != nil {
		return nil, err
	}

	if !isTerminal(os.Stderr) {
		counter := progress.NewCounter(os.Stderr, total)
		cfg := *s
		cfg.engine.Sink = counter
		res, err := scanQuiet(ctx, &cfg)
		counter.Finish()
		return res, err
	}

	var res *engine.Result
	err = tui.Run(ctx, os.Stderr, total, func(ctx context.Context, sink progress.Sink) error {
		cfg := *s
		cfg.engine.Sink = sink
		r, err := scanQuiet(ctx, &cfg)
		res = r
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}
