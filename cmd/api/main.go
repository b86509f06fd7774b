package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/moverly/leadgate/config"
	"github.com/moverly/leadgate/internal/http/chi"
	"github.com/moverly/leadgate/metrics"
	"github.com/moverly/leadgate/provider"
	"github.com/moverly/leadgate/webhook"
	"github.com/moverly/leadgate/webhook/redis"
	"github.com/moverly/leadgate/webhook/sqlite"
	"github.com/rs/zerolog"
)

const TIMEOUT = 30 * time.Second

/* Wiring happens here and only here: the api binary imports the
 * business layer, which imports the storage layer. Imports flow in
 * one direction, downwards.
 */

func main() {
	cfg, err := config.GetConfig()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	logger := newLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGHUP, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT,
	)
	defer stop()

	providers := provider.NewLoader()
	if err := providers.Load(cfg.ProvidersFile); err != nil {
		logger.Fatal().Err(err).Str("file", cfg.ProvidersFile).Msg("loading providers")
	}
	logger.Info().Int("providers", len(providers.List())).Msg("providers loaded")

	failures, err := sqlite.NewRepository(cfg.SQLitePath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.SQLitePath).Msg("opening failure store")
	}
	defer failures.Close(ctx)

	queue, err := redis.NewQueue(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("connecting to redis")
	}
	defer queue.Close(ctx)

	service := webhook.NewService(providers, failures, queue, logger)

	collector := metrics.NewGatewayCollector(queue, failures, providers)
	exporter, err := metrics.NewOTelExporter(collector)
	if err != nil {
		logger.Fatal().Err(err).Msg("setting up metrics exporter")
	}
	defer exporter.Shutdown(ctx)

	r := chi.Handlers(ctx, service, cfg.FailedListLimit, exporter.ServeHTTP())
	srv := &http.Server{
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		Addr:         ":" + cfg.Port,
		Handler:      r,
	}

	errShutdown := make(chan error, 1)
	go shutdown(srv, ctx, errShutdown)
	logger.Info().Str("port", cfg.Port).Msg("listening")
	err = srv.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		logger.Fatal().Err(err).Msg("serving http")
	}
	if err := <-errShutdown; err != nil {
		logger.Error().Err(err).Msg("shutting down")
	}
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}

func shutdown(server *http.Server, ctxShutdown context.Context, errShutdown chan error) {
	<-ctxShutdown.Done()

	ctxTimeout, stop := context.WithTimeout(context.Background(), TIMEOUT)
	defer stop()

	err := server.Shutdown(ctxTimeout)
	switch err {
	case nil:
		errShutdown <- nil
	default:
		errShutdown <- fmt.Errorf("forcing server close: %w", err)
	}
}
