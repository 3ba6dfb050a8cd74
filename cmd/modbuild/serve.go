package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/neuxs/modbuild/internal/config"
	"github.com/neuxs/modbuild/internal/server"
)

func serveCmd() *cobra.Command {
	var (
		addr    string
		verbose bool
		dir     string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Browse the build archive over HTTP",
		Long: `Serve the build archive read-only.

Endpoints:
  GET /api/versions            index of archived versions
  GET /api/versions/{version}  one version
  GET /files/...               archived files
  GET /ws                      archive change notifications
  GET /metrics                 Prometheus metrics

Examples:
  modbuild serve
  modbuild serve --addr :8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := filepath.Abs(dir)
			if err != nil {
				return err
			}
			logger := newLogger(os.Stderr, verbose)
			cfg := config.Load(root, logger)

			if addr == "" {
				addr = cfg.ListenAddress()
			}

			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			info("Serving %s on http://%s", cfg.ArchivePath(), addr)
			srv := server.New(server.Config{
				ArchiveRoot: cfg.ArchivePath(),
				Address:     addr,
				Logger:      logger,
			})
			if err := srv.Run(ctx); err != nil {
				return err
			}
			success("Server stopped")
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from build_config.json)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	cmd.Flags().StringVar(&dir, "dir", ".", "Project root directory")

	return cmd
}
