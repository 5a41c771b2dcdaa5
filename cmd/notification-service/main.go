// Сервис уведомлений: потребляет события OrderMessage из шины
// и фиксирует уведомления пользователям в PostgreSQL.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/akriventsev/orderhub/internal/config"
	"github.com/akriventsev/orderhub/internal/messagebus"
	"github.com/akriventsev/orderhub/internal/metrics"
	"github.com/akriventsev/orderhub/internal/notification"
	"github.com/akriventsev/orderhub/internal/postgres"
	"github.com/akriventsev/orderhub/internal/schema"
	"github.com/akriventsev/orderhub/internal/transport"
	"github.com/akriventsev/orderhub/migrations"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("notification service failed", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg := config.LoadNotificationService()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := postgres.Migrate(cfg.Postgres, migrations.Notifications, "notifications"); err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	bus, err := messagebus.Open(cfg.Bus, logger)
	if err != nil {
		return err
	}
	defer bus.Close()

	registry := schema.NewRegistry()
	if err := notification.RegisterSchema(registry); err != nil {
		return err
	}

	m := metrics.NewRegistry()

	repo := notification.NewPostgresRepository(pool)
	listener := notification.NewListener(repo, logger)

	policy := &transport.FixedBackoffRetryPolicy{
		Delay:       cfg.Bus.RetryDelay,
		MaxAttempts: cfg.Bus.RetryAttempts,
	}
	consumer := messagebus.NewRetryingConsumer(registry, listener.HandleEvent, policy, bus, logger, m)

	if err := bus.Subscribe(ctx, config.OrdersTopic, consumer.Handler()); err != nil {
		return err
	}
	logger.Info("notification service consuming",
		zap.String("topic", config.OrdersTopic),
		zap.String("group", cfg.Bus.GroupID))

	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: m.Handler()}

	errCh := make(chan error, 1)
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		return err
	}

	if err := bus.Unsubscribe(config.OrdersTopic); err != nil {
		logger.Warn("unsubscribe failed", zap.Error(err))
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown failed", zap.Error(err))
	}

	return nil
}
