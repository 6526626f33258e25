package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	auditrepo "task-tracker/server/internal/audit/repository"
	authservice "task-tracker/server/internal/auth/service"
	"task-tracker/server/internal/config"
	"task-tracker/server/internal/db"
	"task-tracker/server/internal/db/migrate"
	"task-tracker/server/internal/security"
	"task-tracker/server/internal/server"
	"task-tracker/server/internal/session/ledger"
	sessionrepo "task-tracker/server/internal/session/repository"
	taskrepo "task-tracker/server/internal/task/repository"
	"task-tracker/server/internal/task/service"
	"task-tracker/server/internal/telemetry"
	"task-tracker/server/internal/telemetry/otel"
	userrepo "task-tracker/server/internal/user/repository"
)

const serviceName = "task-tracker"

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.Env == "development" {
		logger = logger.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}
	log.Logger = logger

	if cfg.DatabaseURL == "" {
		logger.Fatal().Msg("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}

	if err := migrate.Run(cfg.DatabaseURL, "up"); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		logger.Fatal().Err(err).Msg("migrate")
	}

	pool, err := db.Open(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("db open")
	}
	defer pool.Close()

	ctx := context.Background()
	providers, err := otel.NewProviders(ctx, cfg.OTLPEndpoint, serviceName, cfg.OTLPInsecure)
	if err != nil {
		logger.Fatal().Err(err).Msg("otel setup")
	}
	providers.SetGlobal()

	users := userrepo.NewPostgresRepository(pool)
	sessions := sessionrepo.NewPostgresRepository(pool)
	tasks := taskrepo.NewPostgresRepository(pool)
	audits := auditrepo.NewPostgresRepository(pool)

	codec := security.NewTokenCodec([]byte(cfg.JWTSigningKey), cfg.JWTIssuer)
	hasher := security.NewHasher(cfg.BcryptCost)
	sessionLedger := ledger.New(sessions, cfg.RefreshTTL())

	authSvc := authservice.NewAuthService(users, sessionLedger, hasher, codec, cfg.AccessTTL())
	taskSvc := service.NewTaskService(tasks)

	router := server.NewRouter(server.Deps{
		Auth:           authSvc,
		Tasks:          taskSvc,
		AuditRepo:      audits,
		HealthPinger:   pool,
		Emitter:        otel.NewEventEmitter(providers.LoggerProvider),
		Logger:         logger,
		AllowedOrigins: cfg.AllowedOriginsList(),
		CookieSecure:   cfg.CookieSecure,
		RefreshTTL:     cfg.RefreshTTL(),
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logger.Info().Str("addr", cfg.HTTPAddr).Msg("HTTP server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("serve")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("server shutdown")
	}

	// Let in-flight async telemetry emits finish before the exporters stop.
	time.Sleep(telemetry.ShutdownDrainDuration)
	if err := providers.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("otel shutdown")
	}
	logger.Info().Msg("HTTP server stopped")
}
