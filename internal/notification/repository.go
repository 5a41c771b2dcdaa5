package notification

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akriventsev/orderhub/internal/core"
)

// Repository хранилище уведомлений
type Repository interface {
	// Create сохраняет уведомление и возвращает его с присвоенным ID
	Create(ctx context.Context, userID, orderID int64) (*Notification, error)
	// CountByOrder возвращает количество уведомлений по заказу
	CountByOrder(ctx context.Context, orderID int64) (int64, error)
}

// PostgresRepository реализация Repository через pgxpool
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создает новый PostgreSQL репозиторий уведомлений
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create сохраняет уведомление
func (r *PostgresRepository) Create(ctx context.Context, userID, orderID int64) (*Notification, error) {
	const query = `
		INSERT INTO notifications (user_id, order_id, created_at, updated_at)
		VALUES ($1, $2, now(), now())
		RETURNING id, user_id, order_id, created_at, updated_at`

	n := &Notification{}
	err := r.pool.QueryRow(ctx, query, userID, orderID).
		Scan(&n.ID, &n.UserID, &n.OrderID, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, core.Wrap(err, core.ErrStorageFailed, "failed to insert notification")
	}

	return n, nil
}

// CountByOrder возвращает количество уведомлений по заказу
func (r *PostgresRepository) CountByOrder(ctx context.Context, orderID int64) (int64, error) {
	var count int64
	err := r.pool.QueryRow(ctx, `SELECT count(*) FROM notifications WHERE order_id = $1`, orderID).Scan(&count)
	if err != nil {
		return 0, core.Wrap(err, core.ErrStorageFailed, "failed to count notifications")
	}
	return count, nil
}
