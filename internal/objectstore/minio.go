// Package objectstore предоставляет доступ к объектному хранилищу изображений.
package objectstore

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"
)

// Store интерфейс объектного хранилища
type Store interface {
	// Upload загружает объект
	Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error
	// Get возвращает поток содержимого объекта
	Get(ctx context.Context, objectName string) (io.ReadCloser, error)
	// Delete удаляет объект
	Delete(ctx context.Context, objectName string) error
	// PresignedURL возвращает временную ссылку на объект
	PresignedURL(ctx context.Context, objectName string, ttl time.Duration) (string, error)
}

// MinioConfig конфигурация MinIO хранилища
type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Validate проверяет корректность конфигурации
func (c MinioConfig) Validate() error {
	if c.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}
	if c.Bucket == "" {
		return fmt.Errorf("bucket cannot be empty")
	}
	return nil
}

// MinioStore реализация Store через MinIO
type MinioStore struct {
	client *minio.Client
	bucket string
	logger *zap.Logger
}

// NewMinioStore создает хранилище и при необходимости bucket
func NewMinioStore(ctx context.Context, config MinioConfig, logger *zap.Logger) (*MinioStore, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid minio config: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	client, err := minio.New(config.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(config.AccessKey, config.SecretKey, ""),
		Secure: config.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	exists, err := client.BucketExists(ctx, config.Bucket)
	if err != nil {
		return nil, fmt.Errorf("failed to check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, config.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("failed to create bucket: %w", err)
		}
		logger.Info("bucket created", zap.String("bucket", config.Bucket))
	}

	return &MinioStore{
		client: client,
		bucket: config.Bucket,
		logger: logger,
	}, nil
}

// Upload загружает объект в bucket
func (s *MinioStore) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, objectName, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", objectName, err)
	}
	return nil
}

// Get возвращает поток содержимого объекта
func (s *MinioStore) Get(ctx context.Context, objectName string) (io.ReadCloser, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, objectName, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get object %s: %w", objectName, err)
	}
	return obj, nil
}

// Delete удаляет объект из bucket
func (s *MinioStore) Delete(ctx context.Context, objectName string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, objectName, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", objectName, err)
	}
	return nil
}

// PresignedURL возвращает временную ссылку на объект
func (s *MinioStore) PresignedURL(ctx context.Context, objectName string, ttl time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, objectName, ttl, url.Values{})
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", objectName, err)
	}
	return u.String(), nil
}
