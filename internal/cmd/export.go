package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adrianmross/region-select/internal/daemon"
	"github.com/adrianmross/region-select/pkg/config"
	"github.com/spf13/cobra"
)

func newExportCmd() *cobra.Command {
	var cfgPath string
	var useGlobal bool
	var format string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export the saved selection as env or json",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			sel := cfg.Selection
			if sel.Region == "" {
				return config.ErrNoSelection
			}

			switch format {
			case "env", "":
				lines := []string{fmt.Sprintf("export REGION=%s", daemon.ShellQuote(sel.Region))}
				if sel.SubRegion != "" {
					lines = append(lines, fmt.Sprintf("export SUB_REGION=%s", daemon.ShellQuote(sel.SubRegion)))
				}
				fmt.Fprintln(cmd.OutOrStdout(), strings.Join(lines, "\n"))
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				if err := enc.Encode(sel); err != nil {
					return err
				}
			default:
				return fmt.Errorf("unsupported format: %s", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	cmd.Flags().BoolVarP(&useGlobal, "global", "g", false, "Use global config (~/.region-select/config.yml)")
	cmd.Flags().StringVarP(&format, "format", "f", "env", "Output format: env|json")
	return cmd
}
