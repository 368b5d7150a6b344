package cmd

import (
	"fmt"

	"github.com/adrianmross/region-select/pkg/config"
	"github.com/spf13/cobra"
)

func newClearCmd() *cobra.Command {
	var cfgPath string
	var useGlobal bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Forget the saved selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, cfg, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			if err := cfg.ClearSelection(); err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Selection cleared")
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	cmd.Flags().BoolVarP(&useGlobal, "global", "g", false, "Use global config (~/.region-select/config.yml)")
	return cmd
}
