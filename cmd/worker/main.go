package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/Nikocoro/prubas123/internal/cache"
	"github.com/Nikocoro/prubas123/internal/config"
	"github.com/Nikocoro/prubas123/internal/database"
	"github.com/Nikocoro/prubas123/internal/log"
	"github.com/Nikocoro/prubas123/internal/queue"
	"github.com/Nikocoro/prubas123/internal/repository"
	"github.com/Nikocoro/prubas123/internal/storage"
	"github.com/Nikocoro/prubas123/internal/tasks"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level).With().Str("component", "worker").Logger()

	if err := cfg.Validate(); err != nil {
		logger.Fatal().Err(err).Msg("configuration incomplete")
	}
	if !cfg.Storage.Enabled {
		logger.Fatal().Msg("photo storage is disabled, nothing to do")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	usage, closeUsage, err := photoUsage(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("photo usage unavailable")
	}
	defer closeUsage()

	objectStore, err := storage.NewObjectStore(cfg.Storage)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to init object store")
	}

	client, err := cache.NewRedisClient(ctx, cfg.Redis)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection failed")
	}
	defer client.Close()

	processor := tasks.NewProcessor(objectStore, usage, cfg.Worker.SweepGrace, logger)
	consumer := queue.NewConsumer(
		client,
		cfg.Worker.Stream,
		cfg.Worker.Group,
		cfg.Worker.Consumer,
		cfg.Worker.ClaimInterval,
		logger,
		processor,
	)

	done := make(chan struct{})
	go func() {
		defer close(done)
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("consumer stopped unexpectedly")
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		logger.Warn().Msg("consumer did not stop in time")
	}
}

var errMemoryDriver = errors.New("worker cannot use the memory database driver: photo usage lives in the api process")

// photoUsage opens the store that tells the worker which photos profiles
// still reference. Without it every stored photo would look unreferenced.
func photoUsage(ctx context.Context, cfg *config.AppConfig) (tasks.PhotoUsage, func(), error) {
	if cfg.Database.Driver == "memory" {
		return nil, nil, errMemoryDriver
	}
	pool, err := database.NewPostgresPool(ctx, cfg.Postgres)
	if err != nil {
		return nil, nil, fmt.Errorf("connect postgres: %w", err)
	}
	return repository.NewProfileRepository(pool), pool.Close, nil
}
