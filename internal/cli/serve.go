package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/wgomg/aura/internal/api"
	"github.com/wgomg/aura/internal/geo"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP command service",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().String("port", "", "listen port")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info(nil, "Starting Aura command service")
	logger.Info(nil, "Environment: %s", cfg.App.Env)
	logger.Info(nil, "Log level: %s", cfg.App.LogLevel)
	logger.Info(nil, "Semantic provider: %s", cfg.Semantic.Provider)

	a, err := newApp(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	resolver := geo.NewResolver(geo.NewCoordinate(cfg.Geo.CommandCenterLat, cfg.Geo.CommandCenterLon))
	handler := api.NewHandler(logger, a.service, resolver)

	logger.Info(nil, "Endpoints:")
	logger.Info(nil, "  GET  /healthz")
	logger.Info(nil, "  POST /process_command")
	logger.Info(nil, "  GET  /get_examples")
	logger.Info(nil, "  POST /api/match")
	logger.Info(nil, "  GET  /api/examples")
	logger.Info(nil, "  GET  /api/commands/:id")
	logger.Info(nil, "  GET  /api/commands/:id/location")

	return api.NewServer(logger, &cfg.App, handler).Run(ctx)
}
