package order

import (
	"context"

	"go.uber.org/zap"
)

// Service конвейер создания заказов
type Service struct {
	repo      Repository
	validator ProductValidator
	producer  *Producer
	logger    *zap.Logger
}

// NewService создает сервис заказов
func NewService(repo Repository, validator ProductValidator, producer *Producer, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:      repo,
		validator: validator,
		producer:  producer,
		logger:    logger,
	}
}

// Create проводит заказ через конвейер: проверка товара, durable запись,
// best-effort публикация события.
//
// Шаги 1 и 2 образуют одну логическую единицу: при любой ошибке заказ
// не сохраняется и событие не публикуется. Шаг 3 выполняется после
// фиксации записи; его ошибка логируется и НЕ откатывает заказ -
// осознанный выбор доступности в ущерб согласованности, заказ может
// существовать без downstream-уведомления.
func (s *Service) Create(ctx context.Context, req CreateRequest) (*Order, error) {
	if err := s.validator.ValidateProduct(ctx, req.ProductID); err != nil {
		s.logger.Warn("product validation failed",
			zap.Int64("product_id", req.ProductID),
			zap.Error(err))
		return nil, err
	}

	o, err := s.repo.Create(ctx, req.UserID, req.ProductID, req.Quantity, req.TotalPrice)
	if err != nil {
		s.logger.Error("order persist failed",
			zap.Int64("user_id", req.UserID),
			zap.Error(err))
		return nil, err
	}
	s.logger.Info("order created", zap.Int64("order_id", o.ID))

	if err := s.producer.PublishCreated(ctx, NewCreatedEvent(o)); err != nil {
		s.logger.Error("order event publish failed, order is kept",
			zap.Int64("order_id", o.ID),
			zap.Error(err))
	}

	return o, nil
}

// List возвращает страницу заказов
func (s *Service) List(ctx context.Context, page, size int, sortBy, direction string) ([]Order, int64, error) {
	return s.repo.List(ctx, page, size, sortBy, direction)
}

// ListByUser возвращает страницу заказов пользователя
func (s *Service) ListByUser(ctx context.Context, userID int64, page, size int) ([]Order, int64, error) {
	return s.repo.ListByUser(ctx, userID, page, size)
}
