package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/fjod/go_bookstore/internal/catalog"
	"github.com/fjod/go_bookstore/internal/checkout/domain"
	"github.com/fjod/go_bookstore/internal/checkout/service"
	"github.com/fjod/go_bookstore/internal/config"
	h "github.com/fjod/go_bookstore/internal/http"
	"github.com/fjod/go_bookstore/internal/idempotency"
	"github.com/fjod/go_bookstore/internal/publisher"
	"github.com/fjod/go_bookstore/internal/session"
	"github.com/fjod/go_bookstore/pkg/logger"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "storefront: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := config.Load()

	log, err := logger.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	defer redisClient.Close()

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	err = redisClient.Ping(pingCtx).Err()
	cancel()
	if err != nil {
		return fmt.Errorf("redis connection failed: %w", err)
	}
	log.Info("redis ping succeeded", zap.String("addr", cfg.RedisAddr))

	upstream, err := catalog.NewOpenLibraryClient(&http.Client{
		Timeout:   cfg.RequestTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, cfg.CatalogURL)
	if err != nil {
		return err
	}
	books := catalog.NewService(upstream, catalog.NewRedisCache(redisClient), log.Named("catalog"))

	assembler := service.NewOrderAssembler(&domain.IDGenerator{}, time.Now)
	sessions := session.NewMemoryStore(cfg.SessionTTL, assembler, log.Named("session"))
	defer sessions.Close()

	deps := h.Deps{
		Sessions:           sessions,
		Catalog:            books,
		Claims:             idempotency.NewStore(redisClient, cfg.IdempotencyTTL),
		Metrics:            h.NewServerMetrics("storefront"),
		Log:                log.Named("http"),
		RequestTimeout:     cfg.RequestTimeout,
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}

	var wg sync.WaitGroup
	pollCtx, stopPoller := context.WithCancel(context.Background())
	defer stopPoller()

	if len(cfg.KafkaBrokers) > 0 {
		orders := publisher.NewOrderPublisher(publisher.NewKafkaWriter(cfg.OrdersTopic, cfg.KafkaBrokers...))
		defer orders.Close()

		poller := publisher.NewOutboxPoller(orders, log.Named("publisher"))
		deps.Orders = poller

		wg.Add(1)
		go func() {
			defer wg.Done()
			poller.Run(pollCtx)
		}()
		log.Info("order publication enabled",
			zap.Strings("brokers", cfg.KafkaBrokers),
			zap.String("topic", cfg.OrdersTopic))
	}

	srv := &http.Server{
		Addr:         ":" + cfg.HTTPPort,
		Handler:      otelhttp.NewHandler(h.NewRouter(deps), "storefront"),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 5*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("storefront starting", zap.String("port", cfg.HTTPPort))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	var runErr error
	select {
	case err := <-serverErr:
		if err != nil {
			runErr = fmt.Errorf("server error: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("shutting down server...")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancelShutdown()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("server forced to shutdown", zap.Error(err))
	}

	// orders accepted before shutdown still get published
	stopPoller()
	wg.Wait()

	log.Info("server exited")
	return runErr
}
