// Package product реализует каталог товаров: CRUD с мягким удалением,
// сквозной кеш на пути чтения и хранение изображений в объектном хранилище.
package product

import (
	"time"

	"github.com/shopspring/decimal"
)

// Product товар каталога
type Product struct {
	ID               int64           `json:"id"`
	Name             string          `json:"name"`
	Price            decimal.Decimal `json:"price"`
	Category         string          `json:"category"`
	Description      string          `json:"description"`
	IsActive         bool            `json:"isActive"`
	ImageName        string          `json:"imageName,omitempty"`
	ImageURL         string          `json:"imageUrl,omitempty"`
	ImageContentType string          `json:"imageContentType,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// UpsertRequest запрос на создание или обновление товара
type UpsertRequest struct {
	Name        string          `json:"name" binding:"required"`
	Price       decimal.Decimal `json:"price" binding:"required"`
	Category    string          `json:"category" binding:"required"`
	Description string          `json:"description"`
}
