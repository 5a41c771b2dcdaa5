package product

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akriventsev/orderhub/internal/core"
	"github.com/akriventsev/orderhub/internal/metrics"
	"github.com/akriventsev/orderhub/internal/objectstore"
)

// Ограничения загружаемых изображений
const (
	MaxImageSize = 5 * 1024 * 1024 // 5MB
	presignTTL   = 24 * time.Hour
)

var allowedImageTypes = map[string]bool{
	"image/jpeg": true,
	"image/jpg":  true,
	"image/png":  true,
	"image/gif":  true,
	"image/webp": true,
}

// ImageUpload входные данные загрузки изображения
type ImageUpload struct {
	FileName    string
	ContentType string
	Size        int64
	Reader      io.Reader
}

// Service сервис каталога товаров
type Service struct {
	repo    Repository
	cache   Cache
	store   objectstore.Store
	logger  *zap.Logger
	metrics *metrics.Registry
}

// NewService создает сервис каталога
func NewService(repo Repository, cache Cache, store objectstore.Store, logger *zap.Logger, m *metrics.Registry) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:    repo,
		cache:   cache,
		store:   store,
		logger:  logger,
		metrics: m,
	}
}

// Create сохраняет новый товар
func (s *Service) Create(ctx context.Context, req UpsertRequest) (*Product, error) {
	p, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.logger.Info("product created", zap.Int64("product_id", p.ID))
	return p, nil
}

// Get возвращает активный товар через сквозной кеш.
// Промах дочитывается из хранилища и кешируется с TTL;
// отрицательный результат не кешируется, каждый следующий запрос
// снова идет в хранилище.
func (s *Service) Get(ctx context.Context, id int64) (*Product, error) {
	if p, ok := s.cache.Get(ctx, id); ok {
		if s.metrics != nil {
			s.metrics.CacheHits.Inc()
		}
		return p, nil
	}
	if s.metrics != nil {
		s.metrics.CacheMisses.Inc()
	}

	p, err := s.repo.GetActive(ctx, id)
	if err != nil {
		return nil, err
	}

	s.cache.Set(ctx, id, p)
	return p, nil
}

// List возвращает страницу активных товаров
func (s *Service) List(ctx context.Context, page, size int, sortBy, direction string) ([]Product, int64, error) {
	return s.repo.List(ctx, page, size, sortBy, direction)
}

// ListByCategory возвращает страницу активных товаров категории
func (s *Service) ListByCategory(ctx context.Context, category string, page, size int) ([]Product, int64, error) {
	return s.repo.ListByCategory(ctx, category, page, size)
}

// Update обновляет товар и синхронно инвалидирует кеш до возврата
func (s *Service) Update(ctx context.Context, id int64, req UpsertRequest) (*Product, error) {
	p, err := s.repo.Update(ctx, id, req)
	if err != nil {
		return nil, err
	}

	s.cache.Evict(ctx, id)
	s.logger.Info("product updated", zap.Int64("product_id", id))
	return p, nil
}

// Delete помечает товар неактивным и синхронно инвалидирует кеш
func (s *Service) Delete(ctx context.Context, id int64) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}

	s.cache.Evict(ctx, id)
	s.logger.Info("product deleted", zap.Int64("product_id", id))
	return nil
}

// UploadImage загружает изображение товара в объектное хранилище,
// заменяя прежнее, и инвалидирует кеш
func (s *Service) UploadImage(ctx context.Context, id int64, upload ImageUpload) (*Product, error) {
	p, err := s.repo.GetActive(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := validateImage(upload); err != nil {
		return nil, err
	}

	// Старое изображение удаляется по возможности
	if p.ImageName != "" {
		if err := s.store.Delete(ctx, p.ImageName); err != nil {
			s.logger.Warn("failed to delete old image",
				zap.String("object", p.ImageName), zap.Error(err))
		}
	}

	ext := filepath.Ext(upload.FileName)
	if ext == "" {
		ext = ".jpg"
	}
	objectName := fmt.Sprintf("products/%d/%s%s", id, uuid.New().String(), ext)

	if err := s.store.Upload(ctx, objectName, upload.Reader, upload.Size, upload.ContentType); err != nil {
		return nil, core.Wrap(err, core.ErrStorageFailed, "failed to upload image")
	}

	imageURL, err := s.store.PresignedURL(ctx, objectName, presignTTL)
	if err != nil {
		s.logger.Warn("failed to presign image url", zap.String("object", objectName), zap.Error(err))
	}

	updated, err := s.repo.UpdateImage(ctx, id, objectName, imageURL, upload.ContentType)
	if err != nil {
		return nil, err
	}

	s.cache.Evict(ctx, id)
	s.logger.Info("product image uploaded",
		zap.Int64("product_id", id), zap.String("object", objectName))
	return updated, nil
}

// GetImage возвращает поток изображения товара
func (s *Service) GetImage(ctx context.Context, id int64) (io.ReadCloser, string, error) {
	p, err := s.repo.GetActive(ctx, id)
	if err != nil {
		return nil, "", err
	}
	if p.ImageName == "" {
		return nil, "", core.NewError(core.ErrNotFound, "product has no image")
	}

	reader, err := s.store.Get(ctx, p.ImageName)
	if err != nil {
		return nil, "", core.Wrap(err, core.ErrStorageFailed, "failed to get image")
	}
	return reader, p.ImageContentType, nil
}

// DeleteImage удаляет изображение товара и инвалидирует кеш
func (s *Service) DeleteImage(ctx context.Context, id int64) error {
	p, err := s.repo.GetActive(ctx, id)
	if err != nil {
		return err
	}
	if p.ImageName == "" {
		return core.NewError(core.ErrNotFound, "product has no image")
	}

	if err := s.store.Delete(ctx, p.ImageName); err != nil {
		return core.Wrap(err, core.ErrStorageFailed, "failed to delete image")
	}

	if _, err := s.repo.UpdateImage(ctx, id, "", "", ""); err != nil {
		return err
	}

	s.cache.Evict(ctx, id)
	s.logger.Info("product image deleted", zap.Int64("product_id", id))
	return nil
}

// validateImage проверяет размер и тип изображения
func validateImage(upload ImageUpload) error {
	if upload.Size == 0 {
		return core.NewError(core.ErrValidationFailed, "file is empty")
	}
	if upload.Size > MaxImageSize {
		return core.NewError(core.ErrValidationFailed, "file size exceeds 5MB limit")
	}
	if !allowedImageTypes[upload.ContentType] {
		return core.NewError(core.ErrValidationFailed,
			"invalid file type, only JPEG, PNG, GIF and WebP images are allowed")
	}
	return nil
}
