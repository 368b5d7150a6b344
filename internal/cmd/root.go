package cmd

import (
	"fmt"
	"os"

	"github.com/adrianmross/region-select/internal/logger"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "region-select",
		Short:         "Pick a Nigerian state and local government area",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.Setup(cmd.ErrOrStderr())
		},
	}

	pf := cmd.PersistentFlags()
	pf.String("config", "", "Path to config file (default project .region-select.yml else $HOME/.region-select/config.yml)")
	pf.BoolP("global", "g", false, "Force use of global config (~/.region-select/config.yml)")

	cmd.AddCommand(
		newInitCmd(),
		newListCmd(),
		newCurrentCmd(),
		newUseCmd(),
		newClearCmd(),
		newExportCmd(),
		newImportCmd(),
		newServeCmd(),
		newDaemonCmd(),
		newTuiCmd(),
	)

	return cmd
}

// Execute runs the CLI.
func Execute() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// ExecuteDaemon runs the daemon entrypoint.
func ExecuteDaemon() {
	if err := newDaemonServeCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
