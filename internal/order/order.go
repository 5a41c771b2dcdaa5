// Package order реализует конвейер создания заказов: синхронная проверка
// товара, durable запись и best-effort публикация события в шину.
package order

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/akriventsev/orderhub/internal/config"
	"github.com/akriventsev/orderhub/internal/schema"
)

// Order заказ пользователя
type Order struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"userId"`
	ProductID  int64           `json:"productId"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// CreateRequest запрос на создание заказа.
// Quantity > 0 и TotalPrice >= 0 проверяются на границе HTTP.
type CreateRequest struct {
	UserID     int64           `json:"userId" binding:"required"`
	ProductID  int64           `json:"productId" binding:"required"`
	Quantity   int             `json:"quantity" binding:"required,gt=0"`
	TotalPrice decimal.Decimal `json:"totalPrice" binding:"required"`
}

// CreatedEvent событие о созданном заказе.
//
// Значение копируется из сохраненного заказа и существует только
// в пути через шину; схемный тег OrderMessage позволяет потребителю
// с независимо определенным, но совместимым по полям типом декодировать
// payload без общей иерархии типов.
type CreatedEvent struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"userId"`
	ProductID  int64           `json:"productId"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// NewCreatedEvent строит событие из сохраненного заказа
func NewCreatedEvent(o *Order) *CreatedEvent {
	return &CreatedEvent{
		ID:         o.ID,
		UserID:     o.UserID,
		ProductID:  o.ProductID,
		Quantity:   o.Quantity,
		TotalPrice: o.TotalPrice,
		CreatedAt:  o.CreatedAt,
		UpdatedAt:  o.UpdatedAt,
	}
}

// RegisterSchema регистрирует типы сообщений сервиса заказов в таблице тегов
func RegisterSchema(registry *schema.Registry) error {
	return registry.Register(config.OrderMessageTag, func() interface{} {
		return &CreatedEvent{}
	})
}
