// migrate applies the embedded schema migrations; run with go run ./cmd/migrate.
package main

import (
	"errors"
	"flag"
	"os"

	"github.com/rs/zerolog"

	"task-tracker/server/internal/config"
	"task-tracker/server/internal/db/migrate"
)

func main() {
	direction := flag.String("direction", "up", "Migration direction: up or down")
	flag.Parse()

	logger := zerolog.New(os.Stderr).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config")
	}
	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	if err := migrate.Run(cfg.DatabaseURL, *direction); err != nil {
		if errors.Is(err, migrate.ErrNoChange) {
			logger.Info().Str("direction", *direction).Msg("schema already at target version")
			return
		}
		logger.Fatal().Err(err).Str("direction", *direction).Msg("migrate")
	}
	logger.Info().Str("direction", *direction).Msg("migrations applied")
}
