package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/adrianmross/region-select/pkg/config"
	"github.com/adrianmross/region-select/pkg/regions"
	"github.com/adrianmross/region-select/pkg/selector"
	"github.com/spf13/cobra"
)

// loadDataset is swapped in tests.
var loadDataset = regions.Load

// resolveConfigPath returns the config path based on flags and project discovery.
// Priority:
//  1. explicit --config
//  2. if global flag set -> ~/.region-select/config.yml
//  3. project-local configs (in order):
//     ./.region-select.yml, ./.region-select.json,
//     ./.region-select/config.yml, ./.region-select/config.json,
//     ./region-select.yml, ./region-select.json,
//     ./region-select/config.yml, ./region-select/config.json
//  4. fallback to ~/.region-select/config.yml
func resolveConfigPath(cfg string, global bool) (string, error) {
	if cfg != "" {
		return cfg, nil
	}

	if global {
		return globalConfigPath()
	}

	if wd, err := os.Getwd(); err == nil {
		candidates := []string{
			".region-select.yml",
			".region-select.json",
			filepath.Join(".region-select", "config.yml"),
			filepath.Join(".region-select", "config.json"),
			"region-select.yml",
			"region-select.json",
			filepath.Join("region-select", "config.yml"),
			filepath.Join("region-select", "config.json"),
		}
		for _, rel := range candidates {
			p := filepath.Join(wd, rel)
			if fi, err := os.Stat(p); err == nil && !fi.IsDir() {
				return p, nil
			}
		}
	}

	return globalConfigPath()
}

func globalConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".region-select", "config.yml"), nil
}

// loadConfig resolves the config path from the command's flags and reads it,
// falling back to defaults when the file does not exist.
func loadConfig(cmd *cobra.Command, cfgPath string) (string, config.Config, error) {
	useGlobal, err := cmd.Flags().GetBool("global")
	if err != nil {
		return "", config.Config{}, err
	}
	path, err := resolveConfigPath(cfgPath, useGlobal)
	if err != nil {
		return "", config.Config{}, err
	}
	cfg, err := config.LoadOrDefault(path)
	if err != nil {
		return "", config.Config{}, err
	}
	return path, cfg, nil
}

// datasetLoader returns a loader for the dataset named in cfg.
func datasetLoader(cfg config.Config) selector.LoaderFunc {
	return func(ctx context.Context) (*regions.Dataset, error) {
		return loadDataset(ctx, cfg.Options.DatasetSource, cfg.Options.LoadOptions())
	}
}

func formatSelection(sel config.Selection) string {
	if sel.SubRegion == "" {
		return sel.Region
	}
	return fmt.Sprintf("%s / %s", sel.Region, sel.SubRegion)
}
