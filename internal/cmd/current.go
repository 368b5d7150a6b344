package cmd

import (
	"fmt"

	"github.com/adrianmross/region-select/pkg/config"
	"github.com/spf13/cobra"
)

func newCurrentCmd() *cobra.Command {
	var cfgPath string
	var useGlobal bool

	cmd := &cobra.Command{
		Use:   "current",
		Short: "Show the saved selection",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			if cfg.Selection.Region == "" {
				return config.ErrNoSelection
			}
			fmt.Fprintln(cmd.OutOrStdout(), formatSelection(cfg.Selection))
			return nil
		},
	}
	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	cmd.Flags().BoolVarP(&useGlobal, "global", "g", false, "Use global config (~/.region-select/config.yml)")
	return cmd
}
