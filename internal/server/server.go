// Package server boots every storefront dependency and runs the HTTP and
// gRPC servers until SIGINT or SIGTERM.
package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	catalog "github.com/shashiranjanraj/storefront/app/graphql"
	"github.com/shashiranjanraj/storefront/app/listeners"
	"github.com/shashiranjanraj/storefront/app/services"
	"github.com/shashiranjanraj/storefront/config"
	"github.com/shashiranjanraj/storefront/internal/kernel"
	"github.com/shashiranjanraj/storefront/pkg/broker"
	"github.com/shashiranjanraj/storefront/pkg/cache"
	"github.com/shashiranjanraj/storefront/pkg/database"
	"github.com/shashiranjanraj/storefront/pkg/event"
	grpcserver "github.com/shashiranjanraj/storefront/pkg/grpc"
	"github.com/shashiranjanraj/storefront/pkg/lock"
	"github.com/shashiranjanraj/storefront/pkg/logger"
	"github.com/shashiranjanraj/storefront/pkg/storage"
	"github.com/shashiranjanraj/storefront/pkg/tracing"
	"github.com/shashiranjanraj/storefront/pkg/workerpool"
	"github.com/shashiranjanraj/storefront/pkg/ws"
)

const shutdownTimeout = 15 * time.Second

// Start runs the server until the process is signalled.
func Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return Run(ctx)
}

// Run boots the dependencies and serves until ctx is done.
func Run(ctx context.Context) error {
	if err := config.Load(); err != nil {
		return fmt.Errorf("config: %w", err)
	}

	if uri := config.LogMongoURI(); uri != "" {
		mh, err := logger.AttachMongo(uri, config.LogMongoDatabase(), config.LogMongoCollection())
		if err != nil {
			logger.Warn("mongo log sink disabled", "error", err)
		} else {
			defer mh.Close()
		}
	}

	shutdownTracing, err := tracing.Init(ctx, config.ServiceName(), config.JaegerEndpoint())
	if err != nil {
		return err
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			logger.Warn("tracing: shutdown", "error", err)
		}
	}()

	if err := database.Connect(); err != nil {
		return err
	}
	defer database.Close()

	if err := cache.Connect(ctx); err != nil {
		logger.Warn("redis unavailable, using in-process placement lock", "error", err)
	}
	var locker lock.Locker = lock.NewLocal()
	if cache.Enabled() {
		locker = lock.New(cache.RDB)
		defer cache.RDB.Close()
	}

	storage.Connect(ctx)

	pool := workerpool.New(config.WorkerPoolSize())
	defer pool.Shutdown()
	bus := event.NewBus(pool)

	hub := ws.NewHub()
	go hub.Run(ctx)

	var pub listeners.Publisher
	if brokers := config.KafkaBrokers(); len(brokers) > 0 {
		p, err := broker.NewPublisher(brokers)
		if err != nil {
			logger.Warn("kafka publishing disabled", "error", err)
		} else {
			defer p.Close()
			pub = p
		}
	}
	listeners.Register(bus, hub, pub, config.KafkaOrderTopic())

	svc := services.New(database.DB, locker, bus, config.PlacementLockTTL())
	schema, err := catalog.New(svc)
	if err != nil {
		return fmt.Errorf("graphql: %w", err)
	}

	grpcSrv, err := grpcserver.Start(config.GRPCPort(), database.Ping)
	if err != nil {
		return err
	}
	defer grpcserver.Stop(grpcSrv)

	k := kernel.NewHTTPKernel(kernel.Options{
		Services: svc,
		Hub:      hub,
		Schema:   &schema,
		Health:   database.Ping,
	})

	srv := &http.Server{
		Addr:              ":" + config.AppPort(),
		Handler:           k.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("storefront listening", "addr", srv.Addr, "env", config.AppEnv())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http: shutdown: %w", err)
	}
	return nil
}
