package ssq

import (
	"fmt"
	"path/filepath"

	"github.com/secret-squirrel/ssq/internal/report"
	"github.com/spf13/cobra"
)

var flagBaselineOut string

func init() {
	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Manage baselines",
	}

	update := &cobra.Command{
		Use:   "update [path]",
		Short: "Accept every current match by writing them to the baseline",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := prepare(args)
			if err != nil {
				return err
			}
			res, err := scanQuiet(cmd.Context(), s)
			if err != nil {
				return err
			}
			if res.Cancelled {
				return fmt.Errorf("scan interrupted, baseline not written")
			}
			out := flagBaselineOut
			if out == "" {
				out = filepath.Join(rootDir(s.root), report.BaselineFile)
			}
			if err := report.SaveBaseline(out, res.Matches); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Baseline updated: %d matches in %s\n", len(res.Matches), out)
			return nil
		},
	}
	update.Flags().StringVarP(&flagBaselineOut, "output", "o", "", "baseline file to write (default <root>/"+report.BaselineFile+")")

	rootCmd.AddCommand(cmd)
	cmd.AddCommand(update)
}
