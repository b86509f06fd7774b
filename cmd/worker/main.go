package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/moverly/leadgate/config"
	"github.com/moverly/leadgate/processing"
	"github.com/moverly/leadgate/provider"
	"github.com/moverly/leadgate/webhook/redis"
	"github.com/rs/zerolog"
)

/* worker - consumes verified lead jobs from the provider streams and
 * hands them to the processor. Run one or more instances alongside the
 * api binary; the consumer groups share work between instances.
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

	queue, err := redis.NewQueue(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("connecting to redis")
	}
	defer queue.Close(ctx)

	processor := processing.NewLogProcessor(logger)
	runner := processing.NewRunner(queue, processor, logger)

	configured := make([]provider.Provider, 0, len(providers.List()))
	for _, c := range providers.List() {
		configured = append(configured, c.Provider)
	}

	logger.Info().Int("providers", len(configured)).Msg("worker started")
	runner.Run(ctx, configured)
	logger.Info().Msg("worker stopped")
}

func newLogger(level string) zerolog.Logger {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil {
		lvl = zerolog.InfoLevel
	}
	return zerolog.New(os.Stdout).Level(lvl).With().Timestamp().Logger()
}
