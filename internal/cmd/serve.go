package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/adrianmross/region-select/internal/logger"
	"github.com/adrianmross/region-select/internal/web"
	"github.com/spf13/cobra"
)

func newServeCmd() *cobra.Command {
	var cfgPath string
	var useGlobal bool
	var addr string
	var quiet bool

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the selector page and JSON API over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			log := logger.L()

			// a failed load still serves the page, which then carries the alert
			ds, loadErr := datasetLoader(cfg)(cmd.Context())
			if loadErr != nil {
				log.Warn("serving without dataset", "error", loadErr)
			}
			srv := web.New(ds, loadErr, cfg.Options.Settings(), log)

			if addr == "" {
				addr = cfg.Options.ListenAddr
			}
			access := cmd.ErrOrStderr()
			if quiet {
				access = nil
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return web.ListenAndServe(ctx, addr, srv.Handler(access), log)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	cmd.Flags().BoolVarP(&useGlobal, "global", "g", false, "Use global config (~/.region-select/config.yml)")
	cmd.Flags().StringVarP(&addr, "addr", "a", "", "Listen address (default listen_addr from config)")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Disable the access log")
	return cmd
}
