package ssq

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/secret-squirrel/ssq/internal/logging"
	"github.com/spf13/cobra"
)

var (
	flagConfig      string
	flagSeverity    string
	flagNoColor     bool
	flagDebug       bool
	flagLogFile     string
	flagConcurrency int

	version = "0.1.0"

	closeLog = func() {}
)

// exitError carries a process exit code out of a command without printing
// anything more.
type exitError struct{ code int }

func (e exitError) Error() string { return fmt.Sprintf("exit status %d", e.code) }

// rootCmd is the base Cobra command. Run without a subcommand it scans.
var rootCmd = &cobra.Command{
	Use:           "ssq [path]",
	Short:         "Secret Squirrel - Find potential secrets in your code",
	Long:          "ssq scans a directory tree line by line against a configurable set of regex rules and reports potential secrets.",
	Version:       version,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runScan,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		closeLog = logging.Init(logging.Options{Debug: flagDebug, File: flagLogFile})
	},
	PersistentPostRun: func(_ *cobra.Command, _ []string) {
		closeLog()
	},
}

// Execute runs the CLI. Fatal errors exit 2, a failing scan exits 1 and an
// interrupted scan exits 130 after reporting what it found.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	os.Exit(run(ctx))
}

func run(ctx context.Context) int {
	err := rootCmd.ExecuteContext(ctx)
	var ee exitError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &ee):
		return ee.code
	default:
		fmt.Fprintln(os.Stderr, "error:", err)
		return 2
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "use this config file instead of the base config")
	rootCmd.PersistentFlags().StringVar(&flagSeverity, "severity", "", "only use rules of this severity or higher: low|medium|high|critical")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable colorized output")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "log debug details to stderr (also DEBUG=1)")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "append logs to this file instead of stderr")
	rootCmd.PersistentFlags().IntVar(&flagConcurrency, "concurrency", 0, "files scanned at once (0 = fit the terminal, at most 6)")
}
