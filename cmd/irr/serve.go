package main

import (
	"fmt"
	"net"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/banshee-data/medevac-irr/internal/api"
	"github.com/banshee-data/medevac-irr/internal/config"
	"github.com/banshee-data/medevac-irr/internal/db"
	"github.com/banshee-data/medevac-irr/internal/monitoring"
	"github.com/banshee-data/medevac-irr/internal/timeutil"
)

func newServeCmd(opts *options) *cobra.Command {
	var assetsHost string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the run archive over HTTP",
		Long: `Serves archived runs as JSON under /api/runs, an HTML chart page per run
under /charts/{id}, and a read-only SQL console under /debug/tailsql/.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withArchive(cmd, opts, func(cfg *config.RunConfig, archive *db.DB) error {
				return serve(cmd, cfg, archive, assetsHost)
			})
		},
	}
	cmd.Flags().StringVar(&opts.listen, "listen", config.DefaultListenAddr, "Listen address")
	cmd.Flags().StringVar(&assetsHost, "assets-host", "", "Override the echarts asset host for chart pages")
	return cmd
}

func serve(cmd *cobra.Command, cfg *config.RunConfig, archive *db.DB, assetsHost string) error {
	mux := api.NewServer(archive, assetsHost).ServeMux()
	if err := archive.AttachAdminRoutes(mux); err != nil {
		return fmt.Errorf("failed to attach admin routes: %w", err)
	}

	addr := cfg.GetListenAddr()
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	monitoring.Logf("serving %s on http://%s", archive.Path(), ln.Addr())
	if err := api.Serve(ctx, ln, api.LoggingMiddleware(timeutil.RealClock{}, mux), cfg.GetReadHeaderTimeout()); err != nil {
		return err
	}
	monitoring.Logf("server stopped")
	return nil
}
