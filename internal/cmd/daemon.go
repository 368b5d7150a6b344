package cmd

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/adrianmross/region-select/internal/daemon"
	"github.com/adrianmross/region-select/internal/logger"
	ipcmsg "github.com/adrianmross/region-select/pkg/ipc"
	"github.com/spf13/cobra"
)

func newDaemonCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "daemon",
		Short: "Manage the region-select daemon",
	}
	cmd.AddCommand(newDaemonServeCmd(), newDaemonQueryCmd())
	return cmd
}

func newDaemonServeCmd() *cobra.Command {
	var cfgPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the region-select daemon",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := daemon.EnsureConfig(cfgPath)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			svc, err := daemon.NewService(ctx, path, logger.L())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Starting daemon with config %s\n", path)
			return svc.Serve(ctx, nil)
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	return cmd
}

func newDaemonQueryCmd() *cobra.Command {
	var cfgPath string
	var useGlobal bool
	var format string

	cmd := &cobra.Command{
		Use:   "query <method> [region] [sub-region]",
		Short: "Send one request to a running daemon",
		Long:  "Methods: regions, sub_regions, options, current, use, clear, export.",
		Args:  cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, cfg, err := loadConfig(cmd, cfgPath)
			if err != nil {
				return err
			}
			req := ipcmsg.Request{Method: args[0], Format: format}
			if len(args) > 1 {
				req.Region = args[1]
			}
			if len(args) > 2 {
				req.SubRegion = args[2]
			}

			conn, err := ipcmsg.Dial(cfg.Options.SocketPath)
			if err != nil {
				return fmt.Errorf("connect to daemon at %s: %w", cfg.Options.SocketPath, err)
			}
			defer conn.Close()
			data, err := conn.Call(req)
			if err != nil {
				return err
			}
			var buf bytes.Buffer
			if err := json.Indent(&buf, data, "", "  "); err != nil {
				return err
			}
			buf.WriteByte('\n')
			_, err = buf.WriteTo(cmd.OutOrStdout())
			return err
		},
	}

	cmd.Flags().StringVarP(&cfgPath, "config", "c", "", "Path to config file")
	cmd.Flags().BoolVarP(&useGlobal, "global", "g", false, "Use global config (~/.region-select/config.yml)")
	cmd.Flags().StringVarP(&format, "format", "f", "", "Export format for the export method: env|json")
	return cmd
}
