package ssq

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"

	"github.com/secret-squirrel/ssq/internal/audit"
	"github.com/spf13/cobra"
)

var flagHistoryLimit int

func init() {
	cmd := &cobra.Command{
		Use:   "history [path]",
		Short: "Show scans recorded with --audit, newest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := "."
			if len(args) > 0 {
				target = args[0]
			}
			abs, err := filepath.Abs(target)
			if err != nil {
				return err
			}
			l := audit.NewLog(rootDir(abs))
			recs, err := l.LoadHistory()
			if errors.Is(err, fs.ErrNotExist) {
				fmt.Fprintln(cmd.OutOrStdout(), "No scans recorded yet.")
				return nil
			}
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			for i, r := range recs {
				if flagHistoryLimit > 0 && i == flagHistoryLimit {
					break
				}
				status := ""
				if r.Cancelled {
					status = " (cancelled)"
				}
				fmt.Fprintf(w, "%s  %d matches (%d new, %d baselined)  %d files  %s%s\n",
					r.Timestamp.Format("2006-01-02 15:04:05"), r.TotalMatches, r.NewMatches, r.BaselinedCount,
					r.FilesScanned, r.Duration, status)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&flagHistoryLimit, "limit", "n", 10, "show at most this many scans (0 = all)")
	rootCmd.AddCommand(cmd)
}
