package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/oksasatya/user-lifecycle-api/config"
	"github.com/oksasatya/user-lifecycle-api/internal/container"
	"github.com/oksasatya/user-lifecycle-api/internal/events"
	"github.com/oksasatya/user-lifecycle-api/internal/infrastructure/memory"
	pginfra "github.com/oksasatya/user-lifecycle-api/internal/infrastructure/postgres"
	"github.com/oksasatya/user-lifecycle-api/internal/router"
	"github.com/oksasatya/user-lifecycle-api/pkg/helpers"
)

func main() {
	_ = godotenv.Load() // load .env if present

	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName, cfg.Env, cfg.LogLevel)
	gin.SetMode(cfg.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	container.SetConfig(cfg)
	container.SetLogger(logger)

	// Storage
	switch cfg.StorageDriver {
	case "memory":
		logger.Warn("using in-memory storage; records are lost on restart")
		container.SetUserRepository(memory.NewUserRepository())
	case "postgres":
		if err := pginfra.RunMigrations(cfg.PostgresDSN(), cfg.MigrationsDir, logger); err != nil {
			log.Fatalf("migration failed: %v", err)
		}
		pool, err := pginfra.NewPool(ctx, cfg.PostgresDSN(), pginfra.PoolOptions{
			MaxConns:    cfg.DBMaxConns,
			MinConns:    cfg.DBMinConns,
			MaxConnLife: cfg.DBMaxConnLife,
		})
		if err != nil {
			log.Fatalf("failed to connect to postgres: %v", err)
		}
		defer pool.Close()
		container.SetPGPool(pool)
		container.SetUserRepository(pginfra.NewUserRepository(pool))
	default:
		log.Fatalf("unknown STORAGE_DRIVER %q", cfg.StorageDriver)
	}

	// Redis (rate limiting), optional
	if cfg.RedisAddr != "" {
		rdb, err := helpers.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			logger.WithError(err).Warn("redis unavailable; rate limiting disabled")
		} else {
			defer func() { _ = rdb.Close() }()
			container.SetRedis(rdb)
		}
	}

	// Events
	publisher, err := events.NewPublisher(events.BrokerConfig{
		Broker:       cfg.EventBroker,
		Topic:        cfg.EventTopic,
		KafkaBrokers: cfg.KafkaBrokerList(),
		RabbitMQURL:  cfg.RabbitMQURL,
	}, logger)
	if err != nil {
		log.Fatalf("failed to init event publisher: %v", err)
	}
	defer func() { _ = publisher.Close() }()

	dispatcher := events.NewDispatcher(publisher, logger, events.DispatcherConfig{
		Topic:          cfg.EventTopic,
		QueueSize:      cfg.EventQueueSize,
		Workers:        cfg.EventWorkers,
		MaxAttempts:    cfg.EventMaxAttempts,
		Backoff:        cfg.EventRetryBackoff,
		PublishTimeout: cfg.EventPublishTimeout,
	})
	dispatcher.Start(ctx)
	defer dispatcher.Close()
	container.SetEmitter(dispatcher)

	r := router.NewEngine()
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		logger.WithField("broker", cfg.EventBroker).Infof("server starting on :%s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("listen: %s", err)
			stop()
		}
	}()

	// Graceful shutdown
	<-ctx.Done()
	logger.Info("shutting down server")

	ctxShutdown, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctxShutdown); err != nil {
		logger.WithError(err).Error("server forced to shutdown")
	}
	// deferred: dispatcher drains, then the publisher and pools close
	logger.Info("server exited properly")
}
