// Сервис заказов: принимает заказы по HTTP, проверяет товар в каталоге,
// сохраняет заказ в PostgreSQL и публикует событие OrderMessage в шину.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akriventsev/orderhub/internal/config"
	"github.com/akriventsev/orderhub/internal/messagebus"
	"github.com/akriventsev/orderhub/internal/metrics"
	"github.com/akriventsev/orderhub/internal/order"
	"github.com/akriventsev/orderhub/internal/postgres"
	"github.com/akriventsev/orderhub/internal/schema"
	"github.com/akriventsev/orderhub/migrations"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("order service failed", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg := config.LoadOrderService()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := postgres.Migrate(cfg.Postgres, migrations.Orders, "orders"); err != nil {
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
	if err := order.RegisterSchema(registry); err != nil {
		return err
	}

	m := metrics.NewRegistry()

	repo := order.NewPostgresRepository(pool)
	validator := order.NewHTTPProductValidator(cfg.ProductBaseURL, cfg.ValidatorTimeout)
	producer := order.NewProducer(bus, registry, logger, m)
	service := order.NewService(repo, validator, producer, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	order.NewHandler(service, logger).Register(router)

	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: m.Handler()}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("order service listening", zap.String("addr", cfg.HTTPAddr))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("http server shutdown failed", zap.Error(err))
	}
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("metrics server shutdown failed", zap.Error(err))
	}

	return nil
}
