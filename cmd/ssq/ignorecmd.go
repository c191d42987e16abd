package ssq

import (
	"fmt"

	"github.com/secret-squirrel/ssq/internal/config"
	"github.com/spf13/cobra"
)

func init() {
	cmd := &cobra.Command{
		Use:   "ignore <pattern>",
		Short: "Add a path glob to ignore_paths in the local .ssq.yml",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changed, p, err := config.AppendIgnorePath(".", args[0])
			if err != nil {
				return err
			}
			if !changed {
				fmt.Fprintf(cmd.OutOrStdout(), "%s already ignores %s\n", p, args[0])
				return nil
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Added %s to %s\n", args[0], p)
			return nil
		},
	}
	rootCmd.AddCommand(cmd)
}
