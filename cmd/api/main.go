package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/Nikocoro/prubas123/internal/bootstrap"
	"github.com/Nikocoro/prubas123/internal/cache"
	"github.com/Nikocoro/prubas123/internal/config"
	"github.com/Nikocoro/prubas123/internal/database"
	"github.com/Nikocoro/prubas123/internal/handlers"
	"github.com/Nikocoro/prubas123/internal/jobs"
	"github.com/Nikocoro/prubas123/internal/log"
	"github.com/Nikocoro/prubas123/internal/queue"
	"github.com/Nikocoro/prubas123/internal/repository"
	"github.com/Nikocoro/prubas123/internal/server"
	"github.com/Nikocoro/prubas123/internal/service"
	"github.com/Nikocoro/prubas123/internal/storage"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	logger := log.New(cfg.Environment, cfg.Logging.Level)

	ctx := context.Background()

	// A misconfigured process keeps running so that callers get a clear
	// configuration error instead of a connection refusal.
	configErr := cfg.Validate()
	if configErr != nil {
		logger.Error().Err(configErr).Msg("configuration incomplete, serving configuration errors")
	}

	var (
		dbPool   *pgxpool.Pool
		users    service.UserStore
		profiles service.ProfileStore
	)
	if cfg.Database.Driver == "memory" || configErr != nil {
		users = repository.NewMemoryUserRepository()
		profiles = repository.NewMemoryProfileRepository()
	} else {
		dbPool, err = database.NewPostgresPool(ctx, cfg.Postgres)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect postgres")
		}
		if cfg.Postgres.Migrate {
			if err := database.Migrate(ctx, dbPool); err != nil {
				logger.Fatal().Err(err).Msg("database migration failed")
			}
		}
		users = repository.NewUserRepository(dbPool)
		profiles = repository.NewProfileRepository(dbPool)
	}

	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient, err = cache.NewRedisClient(ctx, cfg.Redis)
		if err != nil {
			logger.Warn().Err(err).Msg("redis unavailable, running without cache and task queue")
			redisClient = nil
		}
	}
	profileCache := cache.NewProfileCache(redisClient, cfg.Cache.ProfilesTTL)
	publisher := queue.NewPublisher(redisClient, cfg.Worker.Stream)

	var uploader service.PhotoUploader
	if cfg.Storage.Enabled {
		objectStore, err := storage.NewObjectStore(cfg.Storage)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to init object store")
		}
		if err := objectStore.EnsureBucket(ctx); err != nil {
			logger.Warn().Err(err).Msg("ensure bucket failed")
		}
		uploader = objectStore
	}

	authService := service.NewAuthService(users, cfg.Security, logger)
	services := handlers.Services{
		Auth:     authService,
		Profiles: service.NewProfileService(profiles, profileCache, publisher, logger),
		Photos:   service.NewPhotoService(uploader, cfg.HTTP.MaxUploadMB<<20, logger),
	}

	if configErr == nil {
		if err := bootstrap.Run(ctx, cfg.Bootstrap.UsersFile, authService, logger); err != nil {
			logger.Fatal().Err(err).Msg("bootstrap users failed")
		}
	}

	handlerSet := handlers.NewHandlerSet(logger, cfg, configErr, services, dbPool, redisClient)
	httpServer := server.NewHTTPServer(cfg, logger, handlerSet)

	scheduler := jobs.NewScheduler(publisher, cfg.Worker.SweepSchedule, logger)
	if err := scheduler.Start(); err != nil {
		logger.Error().Err(err).Msg("scheduler start failed")
	}

	go func() {
		if err := httpServer.Start(); err != nil {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(logger, httpServer, scheduler, dbPool, redisClient)
}

func waitForShutdown(logger zerolog.Logger, srv *server.HTTPServer, scheduler *jobs.Scheduler, db *pgxpool.Pool, redisClient *redis.Client) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	logger.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	scheduler.Stop()

	if db != nil {
		db.Close()
	}
	if redisClient != nil {
		if err := redisClient.Close(); err != nil {
			logger.Error().Err(err).Msg("redis close error")
		}
	}

	logger.Info().Msg("server exited cleanly")
}
