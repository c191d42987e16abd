package ssq

import (
	"github.com/secret-squirrel/ssq/internal/report"
	"github.com/secret-squirrel/ssq/internal/rules"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "rules [path]",
		Short: "List the rules a scan of path would use",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := prepare(args)
			if err != nil {
				return err
			}
			set, err := rules.Compile(s.engine.Rules, s.floor)
			if err != nil {
				return err
			}
			rows := make([]report.RuleRow, 0, set.Len())
			for _, r := range set.Rules() {
				rows = append(rows, report.RuleRow{
					Name:        r.Name,
					Severity:    r.Severity,
					Description: r.Description,
					Pattern:     r.Pattern(),
				})
			}
			report.PrintRules(cmd.OutOrStdout(), rows, flagNoColor)
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}
