package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/adrianmross/region-select/pkg/config"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newListCmd() *cobra.Command {
	var cfgPath string
	var useGlobal bool
	var output string
	var verbose bool

	cmd := &cobra.Command{
		Use:   "list [region]",
		Short: "List regions, or the sub-regions of one region",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			ds, err := datasetLoader(cfg)(cmd.Context())
			if err != nil {
				return err
			}

			// names are regions, or sub-regions when a region is given;
			// marked is the saved value at that level
			names := ds.Regions()
			marked := cfg.Selection.Region
			level := "region"
			if len(args) == 1 {
				subs, ok := ds.SubRegions(args[0])
				if !ok {
					return fmt.Errorf("%w: %s", config.ErrRegionNotFound, args[0])
				}
				names = subs
				marked = ""
				if cfg.Selection.Region == args[0] {
					marked = cfg.Selection.SubRegion
				}
				level = "sub_region"
			}

			out := cmd.OutOrStdout()
			switch strings.ToLower(output) {
			case "":
				for _, name := range names {
					marker := " "
					if name == marked {
						marker = "*"
					}
					if verbose && level == "region" {
						subs, _ := ds.SubRegions(name)
						fmt.Fprintf(out, "%s %s (%d): %s\n", marker, name, len(subs), strings.Join(subs, ", "))
						continue
					}
					if level == "region" {
						subs, _ := ds.SubRegions(name)
						fmt.Fprintf(out, "%s %s (%d)\n", marker, name, len(subs))
						continue
					}
					fmt.Fprintf(out, "%s %s\n", marker, name)
				}
				return nil
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(names)
			case "yaml", "yml":
				enc := yaml.NewEncoder(out)
				defer enc.Close()
				return enc.Encode(names)
			case "plain":
				for _, name := range names {
					marker := ""
					if name == marked {
						marker = "*"
					}
					fmt.Fprintf(out, "%s=%s%s\n", level, name, marker)
				}
				return nil
			default:
				return fmt.Errorf("unsupported output format: %s", output)
			}
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	cmd.Flags().BoolVarP(&useGlobal, "global", "g", false, "Use global config (~/.region-select/config.yml)")
	cmd.Flags().StringVarP(&output, "out", "o", "", "Output format: json|yaml|plain (default: human-readable)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show sub-regions in human-readable region output")
	return cmd
}
