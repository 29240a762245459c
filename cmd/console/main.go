package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/printwatch/fleet-console/internal/api"
	"github.com/printwatch/fleet-console/internal/core/session"
	"github.com/printwatch/fleet-console/internal/infrastructure/config"
	redisdb "github.com/printwatch/fleet-console/internal/infrastructure/db/redis"
	"github.com/printwatch/fleet-console/internal/infrastructure/fleetapi"
	"github.com/printwatch/fleet-console/pkg/logger"
)

func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx := context.Background()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("connect redis")
	}
	defer rdb.Close()

	fleet := fleetapi.New(cfg.FleetAPIURL, log)
	tokens := redisdb.NewTokenStore(rdb, cfg.Session.TTL)
	store := session.NewStore(tokens, fleet, log)
	codec := session.NewCookieCodec(cfg.Session.Secret, cfg.Session.TTL)

	e, err := api.NewRouter(fleet, store, codec, rdb, log)
	if err != nil {
		log.Fatal().Err(err).Msg("build router")
	}

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Str("fleet_api", cfg.FleetAPIURL).Msg("console starting")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	log.Info().Msg("console shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
	log.Info().Msg("shutdown complete")
}
