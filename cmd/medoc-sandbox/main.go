// Command medoc-sandbox serves the clinic REST API the medoc client talks to.
// It keeps records in memory unless SANDBOX_DATABASE_URL points at Postgres.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vitemonmedoc/medoc/internal/config"
	"github.com/vitemonmedoc/medoc/internal/server"
	"github.com/vitemonmedoc/medoc/pkg/logger"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	lg := logger.NewLogger(&logger.Config{
		Level:      logger.ParseLevel(cfg.LogLevel),
		TimeFormat: time.RFC3339,
		Output:     os.Stderr,
		JSON:       cfg.LogJSON,
	})

	if err := run(cfg, lg); err != nil {
		lg.ZL.Fatal().Err(err).Msg("server stopped")
	}
}

func run(cfg *config.Config, lg *logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv, err := server.New(ctx, cfg, lg)
	if err != nil {
		return err
	}
	defer srv.Close()

	return srv.Run(ctx)
}
