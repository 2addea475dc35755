/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ssargent/axlframe/pkg/api"
	"github.com/ssargent/axlframe/pkg/storage"
)

func newServeCmd() *cobra.Command {
	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the packet archive over HTTP",
		Long: `Start the archive REST API. Collections uploaded to /api/v1/collections are
decoded and archived; archived packets are served under /api/v1/packets.
Prometheus metrics are available at /metrics.

Examples:
  axl serve --addr :9200
  axl serve --addr 127.0.0.1:9200 --api-key mysecretkey --archive ./archive`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := appFrom(cmd)
			if err != nil {
				return err
			}
			flags := cmd.Flags()
			cfg := a.config.Server
			if flags.Changed("addr") {
				cfg.Addr, _ = flags.GetString("addr")
			}
			if flags.Changed("api-key") {
				cfg.APIKey, _ = flags.GetString("api-key")
			}
			dir, _ := flags.GetString("archive")
			if dir == "" {
				dir = a.config.Archive.Dir
			}
			maxUpload, _ := flags.GetInt64("max-upload")

			arch, err := storage.Open(dir)
			a.metrics.RecordArchiveOperation("open", err == nil)
			if err != nil {
				return err
			}
			defer arch.Close()

			server := api.NewServer(arch, a.builder(), api.ServerConfig{
				Addr:           cfg.Addr,
				APIKey:         cfg.APIKey,
				MaxUploadBytes: maxUpload,
			}, api.NewHTTPMetrics(a.metrics.Registry()), a.metrics)

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			if cfg.APIKey == "" {
				a.logger.Warnf("serving without authentication")
			}
			a.logger.Infof("serving archive %s on %s", dir, cfg.Addr)
			return api.ListenAndServe(ctx, cfg.Addr, api.NewRouter(server, a.metrics.Handler()))
		},
	}

	serveCmd.Flags().String("addr", "", "Listen address (defaults to server.addr from config)")
	serveCmd.Flags().String("api-key", "", "Require this X-API-Key on API routes")
	serveCmd.Flags().String("archive", "", "Archive directory (defaults to archive.dir from config)")
	serveCmd.Flags().Int64("max-upload", 64<<20, "Largest accepted collection upload in bytes")
	return serveCmd
}
