// Command server runs the contact onboarding HTTP API.
//
// Bootstrap order: env file → config → logging → tracing → storage and
// session backend → lookup client → service → router → HTTP server with
// graceful shutdown.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-contact-backend/internal/config"
	httpapi "github.com/tbourn/go-contact-backend/internal/http"
	"github.com/tbourn/go-contact-backend/internal/lookup"
	"github.com/tbourn/go-contact-backend/internal/observability"
	"github.com/tbourn/go-contact-backend/internal/services"
	"github.com/tbourn/go-contact-backend/internal/session"
	"github.com/tbourn/go-contact-backend/internal/store"
	"github.com/tbourn/go-contact-backend/internal/sysutil"
)

const version = "1.0.0"

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfg := config.MustLoad()

	sysutil.SetLogLevel(cfg.LogLevel)
	if cfg.LogPretty {
		sysutil.UsePrettyLogs()
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownOTel, err := observability.SetupOTel(ctx, cfg.OTEL, version)
	if err != nil {
		log.Fatal().Err(err).Msg("otel setup failed")
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownOTel(ctx); err != nil {
			log.Warn().Err(err).Msg("otel shutdown")
		}
	}()

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		log.Fatal().Err(err).Str("timezone", cfg.Timezone).Msg("invalid timezone")
	}

	st, err := store.New(cfg.StorePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.StorePath).Msg("contact store init failed")
	}

	var sessions session.Store
	switch cfg.SessionBackend {
	case "redis":
		rs, err := session.NewRedis(ctx, cfg.RedisURL, cfg.SessionTTL)
		if err != nil {
			log.Fatal().Err(err).Msg("redis session store init failed")
		}
		defer func() {
			if err := rs.Close(); err != nil {
				log.Warn().Err(err).Msg("redis close")
			}
		}()
		sessions = rs
	default:
		sessions = session.NewMemory(cfg.SessionTTL)
	}

	lk := lookup.New(cfg.Lookup.BaseURL, cfg.Lookup.APIKey, cfg.Lookup.Timeout)
	svc := services.NewContactService(st, sessions, lk, loc)

	gin.SetMode(cfg.GinMode)
	engine := gin.New()
	httpapi.RegisterRoutes(engine, svc, cfg)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           engine,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: cfg.ReadHeaderTimeout,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
		MaxHeaderBytes:    cfg.MaxHeaderBytes,
	}

	go func() {
		log.Info().
			Str("addr", srv.Addr).
			Str("session_backend", cfg.SessionBackend).
			Str("store", cfg.StorePath).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("server stopped")
}
