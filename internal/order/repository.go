package order

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/akriventsev/orderhub/internal/core"
)

// Допустимые поля сортировки списка заказов
var sortColumns = map[string]string{
	"id":        "id",
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"userId":    "user_id",
}

// Repository хранилище заказов
type Repository interface {
	// Create сохраняет заказ и возвращает его с присвоенным ID и метками времени
	Create(ctx context.Context, userID, productID int64, quantity int, totalPrice decimal.Decimal) (*Order, error)
	// List возвращает страницу заказов с сортировкой
	List(ctx context.Context, page, size int, sortBy, direction string) ([]Order, int64, error)
	// ListByUser возвращает страницу заказов пользователя
	ListByUser(ctx context.Context, userID int64, page, size int) ([]Order, int64, error)
}

// PostgresRepository реализация Repository через pgxpool
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создает новый PostgreSQL репозиторий заказов
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create сохраняет заказ; метки времени присваивает сервер БД
func (r *PostgresRepository) Create(ctx context.Context, userID, productID int64, quantity int, totalPrice decimal.Decimal) (*Order, error) {
	const query = `
		INSERT INTO orders (user_id, product_id, quantity, total_price, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		RETURNING id, user_id, product_id, quantity, total_price::text, created_at, updated_at`

	o := &Order{}
	var price string
	err := r.pool.QueryRow(ctx, query, userID, productID, quantity, totalPrice.String()).
		Scan(&o.ID, &o.UserID, &o.ProductID, &o.Quantity, &price, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return nil, core.Wrap(err, core.ErrStorageFailed, "failed to insert order")
	}

	o.TotalPrice, err = decimal.NewFromString(price)
	if err != nil {
		return nil, core.Wrap(err, core.ErrStorageFailed, "failed to parse total price")
	}

	return o, nil
}

// List возвращает страницу заказов
func (r *PostgresRepository) List(ctx context.Context, page, size int, sortBy, direction string) ([]Order, int64, error) {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = "created_at"
	}
	if direction != "ASC" && direction != "asc" {
		direction = "DESC"
	}

	query := fmt.Sprintf(`
		SELECT id, user_id, product_id, quantity, total_price::text, created_at, updated_at
		FROM orders
		ORDER BY %s %s
		LIMIT $1 OFFSET $2`, column, direction)

	rows, err := r.pool.Query(ctx, query, size, page*size)
	if err != nil {
		return nil, 0, core.Wrap(err, core.ErrStorageFailed, "failed to list orders")
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders`).Scan(&total); err != nil {
		return nil, 0, core.Wrap(err, core.ErrStorageFailed, "failed to count orders")
	}

	return orders, total, nil
}

// ListByUser возвращает страницу заказов пользователя, новые первыми
func (r *PostgresRepository) ListByUser(ctx context.Context, userID int64, page, size int) ([]Order, int64, error) {
	const query = `
		SELECT id, user_id, product_id, quantity, total_price::text, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, size, page*size)
	if err != nil {
		return nil, 0, core.Wrap(err, core.ErrStorageFailed, "failed to list user orders")
	}
	defer rows.Close()

	orders, err := scanOrders(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM orders WHERE user_id = $1`, userID).Scan(&total); err != nil {
		return nil, 0, core.Wrap(err, core.ErrStorageFailed, "failed to count user orders")
	}

	return orders, total, nil
}

type rowScanner interface {
	Next() bool
	Scan(dest ...any) error
	Err() error
}

func scanOrders(rows rowScanner) ([]Order, error) {
	var orders []Order
	for rows.Next() {
		var o Order
		var price string
		if err := rows.Scan(&o.ID, &o.UserID, &o.ProductID, &o.Quantity, &price, &o.CreatedAt, &o.UpdatedAt); err != nil {
			return nil, core.Wrap(err, core.ErrStorageFailed, "failed to scan order row")
		}
		var err error
		o.TotalPrice, err = decimal.NewFromString(price)
		if err != nil {
			return nil, core.Wrap(err, core.ErrStorageFailed, "failed to parse total price")
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Wrap(err, core.ErrStorageFailed, "failed to iterate order rows")
	}
	return orders, nil
}
