// Package notification реализует потребителя событий о заказах:
// каждое успешно обработанное событие записывается строкой уведомления.
//
// Доставка at-least-once: повторная доставка после сбоя между записью
// и подтверждением дает дубликат строки, это ожидаемое поведение,
// ключ идемпотентности не применяется.
package notification

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/akriventsev/orderhub/internal/config"
	"github.com/akriventsev/orderhub/internal/schema"
)

// Notification уведомление о созданном заказе
type Notification struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"userId"`
	OrderID   int64     `json:"orderId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// OrderMessage событие о созданном заказе, как его видит сервис уведомлений.
//
// Тип определен независимо от производителя: общей иерархии типов между
// сервисами нет, совместимость обеспечивается схемным тегом OrderMessage
// и совпадением имен полей в JSON.
type OrderMessage struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"userId"`
	ProductID  int64           `json:"productId"`
	Quantity   int             `json:"quantity"`
	TotalPrice decimal.Decimal `json:"totalPrice"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

// RegisterSchema регистрирует типы сообщений сервиса уведомлений в таблице тегов
func RegisterSchema(registry *schema.Registry) error {
	return registry.Register(config.OrderMessageTag, func() interface{} {
		return &OrderMessage{}
	})
}
