package ssq

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/secret-squirrel/ssq/internal/config"
	"github.com/spf13/cobra"
)

var (
	cfgLocal bool
	cfgForce bool
)

func init() {
	cfgCmd := &cobra.Command{Use: "config", Short: "Configuration helpers"}
	rootCmd.AddCommand(cfgCmd)

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Write the built-in configuration to the base config path, or to .ssq.yml with --local",
		Args:  cobra.NoArgs,
		RunE:  runConfigInit,
	}
	initCmd.Flags().BoolVar(&cfgLocal, "local", false, "write .ssq.yml in the current directory instead")
	initCmd.Flags().BoolVar(&cfgForce, "force", false, "overwrite an existing file")
	cfgCmd.AddCommand(initCmd)

	pathCmd := &cobra.Command{
		Use:   "path",
		Short: "Print where the base config is read from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			p, err := config.BasePath()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), p)
			return nil
		},
	}
	cfgCmd.AddCommand(pathCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	var target string
	if cfgLocal {
		target = config.LocalNames[0]
	} else {
		p, err := config.BasePath()
		if err != nil {
			return err
		}
		target = p
	}
	if _, err := os.Stat(target); err == nil && !cfgForce {
		return fmt.Errorf("%s already exists (use --force to overwrite)", target)
	}
	if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(target, config.DefaultYAML(), 0o644); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Wrote", target)
	return nil
}
