// Command server runs the queue booking API: it loads configuration, opens
// the database, starts the websocket hub and the optional pending-token
// sweep, registers the HTTP routes, and serves until interrupted.
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/janseva/go-queue-backend/internal/config"
	"github.com/janseva/go-queue-backend/internal/events"
	httpapi "github.com/janseva/go-queue-backend/internal/http"
	"github.com/janseva/go-queue-backend/internal/observability"
	"github.com/janseva/go-queue-backend/internal/repo"
	"github.com/janseva/go-queue-backend/internal/services"
	"github.com/janseva/go-queue-backend/internal/ws"
)

// version is stamped at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// .env is a dev convenience; absence is not an error.
	_ = godotenv.Load()

	cfg := config.MustLoad()
	setupLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	db, err := repo.Open(cfg.DBDriver, cfg.DBPath, cfg.DBDSN)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.DBDriver).Msg("open database failed")
	}
	if err := repo.AutoMigrate(db); err != nil {
		log.Fatal().Err(err).Msg("migration failed")
	}

	hub := ws.NewHub()
	go hub.Run()

	if cfg.Queue.SweepEnabled {
		sweeper := services.NewSweeper(db, cfg.Queue.PendingTTL)
		sweeper.Publisher = events.Counted(hub)
		if err := sweeper.Start(cfg.Queue.SweepCron); err != nil {
			log.Fatal().Err(err).Str("cron", cfg.Queue.SweepCron).Msg("sweep schedule failed")
		}
		defer sweeper.Stop()
		log.Info().Str("cron", cfg.Queue.SweepCron).Dur("ttl", cfg.Queue.PendingTTL).Msg("pending-token sweep enabled")
	}

	gin.SetMode(cfg.GinMode)
	r := gin.New()
	httpapi.RegisterRoutes(r, db, hub, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Str("version", version).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
}

// setupLogger configures the global zerolog logger from LOG_LEVEL/LOG_PRETTY.
func setupLogger(cfg config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}
