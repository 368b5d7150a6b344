package cmd

import (
	"fmt"
	"path/filepath"

	"github.com/adrianmross/region-select/pkg/config"
	"github.com/adrianmross/region-select/pkg/regions"
	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var cfgPath string
	var useGlobal bool
	var outPath string
	var keepSource bool

	cmd := &cobra.Command{
		Use:   "import <source>",
		Short: "Copy a dataset from a file, URL or oci:// object into a local file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, cfg, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			source := args[0]
			opts := cfg.Options.LoadOptions()
			opts.Lenient = true
			ds, err := loadDataset(cmd.Context(), source, opts)
			if err != nil {
				return err
			}

			if outPath == "" {
				outPath = filepath.Join(filepath.Dir(path), "regions.json")
			}
			if abs, err := filepath.Abs(outPath); err == nil {
				outPath = abs
			}
			if err := config.WriteDataset(outPath, ds); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "import: %d regions from %s\n", ds.Len(), regions.DisplaySource(source))

			if !keepSource {
				// a saved selection may not exist in the new dataset
				if cfg.Selection.Region != "" {
					if err := cfg.SetSelection(ds, cfg.Selection.Region, cfg.Selection.SubRegion); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "skip: saved selection %s (%v)\n", formatSelection(cfg.Selection), err)
						cfg.Selection = config.Selection{}
					}
				}
				cfg.Options.DatasetSource = outPath
				if err := config.Save(path, cfg); err != nil {
					return err
				}
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d regions to %s\n", ds.Len(), outPath)
			return nil
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to region-select config file")
	cmd.Flags().BoolVarP(&useGlobal, "global", "g", false, "Use global config (~/.region-select/config.yml)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "Where to write the dataset (default regions.json next to the config)")
	cmd.Flags().BoolVarP(&keepSource, "keep-source", "k", false, "Do not point dataset_source at the imported file")
	return cmd
}
