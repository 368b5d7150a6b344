package cmd

import (
	"fmt"

	"github.com/adrianmross/region-select/pkg/config"
	"github.com/spf13/cobra"
)

func newUseCmd() *cobra.Command {
	var cfgPath string
	var useGlobal bool

	cmd := &cobra.Command{
		Use:   "use <region> [sub-region]",
		Short: "Save a region and optional sub-region as the selection",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, cfg, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			ds, err := datasetLoader(cfg)(cmd.Context())
			if err != nil {
				return err
			}
			sub := ""
			if len(args) == 2 {
				sub = args[1]
			}
			if err := cfg.SetSelection(ds, args[0], sub); err != nil {
				return err
			}
			if err := config.Save(path, cfg); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Selected %s\n", formatSelection(cfg.Selection))
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	cmd.Flags().BoolVarP(&useGlobal, "global", "g", false, "Use global config (~/.region-select/config.yml)")
	return cmd
}
