// Сервис каталога: CRUD по товарам с read-through кешем в Redis
// и хранением изображений в MinIO.
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
	"github.com/akriventsev/orderhub/internal/metrics"
	"github.com/akriventsev/orderhub/internal/objectstore"
	"github.com/akriventsev/orderhub/internal/postgres"
	"github.com/akriventsev/orderhub/internal/product"
	"github.com/akriventsev/orderhub/migrations"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if err := run(logger); err != nil {
		logger.Fatal("product service failed", zap.Error(err))
	}
}

func run(logger *zap.Logger) error {
	cfg := config.LoadProductService()
	if err := cfg.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := postgres.Migrate(cfg.Postgres, migrations.Products, "products"); err != nil {
		return err
	}

	pool, err := postgres.NewPool(ctx, cfg.Postgres)
	if err != nil {
		return err
	}
	defer pool.Close()

	cache, err := product.NewRedisCache(cfg.Cache.RedisAddr, cfg.Cache.TTL, logger)
	if err != nil {
		return err
	}
	defer cache.Close()

	store, err := objectstore.NewMinioStore(ctx, objectstore.MinioConfig{
		Endpoint:  cfg.Minio.Endpoint,
		AccessKey: cfg.Minio.AccessKey,
		SecretKey: cfg.Minio.SecretKey,
		Bucket:    cfg.Minio.Bucket,
		UseSSL:    cfg.Minio.UseSSL,
	}, logger)
	if err != nil {
		return err
	}

	m := metrics.NewRegistry()

	repo := product.NewPostgresRepository(pool)
	service := product.NewService(repo, cache, store, logger, m)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	product.NewHandler(service, logger).Register(router)

	httpServer := &http.Server{Addr: cfg.HTTPAddr, Handler: router}
	metricsServer := &http.Server{Addr: cfg.MetricsAddr, Handler: m.Handler()}

	errCh := make(chan error, 2)
	go func() {
		logger.Info("product service listening", zap.String("addr", cfg.HTTPAddr))
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
