package product

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/akriventsev/orderhub/internal/core"
)

const productColumns = `id, name, price::text, category, description, is_active,
	coalesce(image_name, ''), coalesce(image_url, ''), coalesce(image_content_type, ''),
	created_at, updated_at`

// Repository хранилище товаров.
// Операции чтения возвращают только активные товары; деактивированный
// товар остается в таблице ради исторических заказов.
type Repository interface {
	Create(ctx context.Context, req UpsertRequest) (*Product, error)
	// GetActive возвращает активный товар, либо ошибку с кодом ErrNotFound
	GetActive(ctx context.Context, id int64) (*Product, error)
	List(ctx context.Context, page, size int, sortBy, direction string) ([]Product, int64, error)
	ListByCategory(ctx context.Context, category string, page, size int) ([]Product, int64, error)
	Update(ctx context.Context, id int64, req UpsertRequest) (*Product, error)
	// SoftDelete помечает товар неактивным
	SoftDelete(ctx context.Context, id int64) error
	// UpdateImage сохраняет метаданные изображения товара
	UpdateImage(ctx context.Context, id int64, name, url, contentType string) (*Product, error)
}

// Допустимые поля сортировки каталога
var sortColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"price":     "price",
	"category":  "category",
	"createdAt": "created_at",
}

// PostgresRepository реализация Repository через pgxpool
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository создает новый PostgreSQL репозиторий товаров
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// Create сохраняет новый товар, сразу активный
func (r *PostgresRepository) Create(ctx context.Context, req UpsertRequest) (*Product, error) {
	query := `
		INSERT INTO products (name, price, category, description, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, true, now(), now())
		RETURNING ` + productColumns

	row := r.pool.QueryRow(ctx, query, req.Name, req.Price.String(), req.Category, req.Description)
	p, err := scanProduct(row)
	if err != nil {
		return nil, core.Wrap(err, core.ErrStorageFailed, "failed to insert product")
	}
	return p, nil
}

// GetActive возвращает активный товар по ID
func (r *PostgresRepository) GetActive(ctx context.Context, id int64) (*Product, error) {
	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1 AND is_active = true`

	row := r.pool.QueryRow(ctx, query, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.NewError(core.ErrNotFound, "product not found")
		}
		return nil, core.Wrap(err, core.ErrStorageFailed, "failed to get product")
	}
	return p, nil
}

// List возвращает страницу активных товаров
func (r *PostgresRepository) List(ctx context.Context, page, size int, sortBy, direction string) ([]Product, int64, error) {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = "id"
	}
	if direction != "DESC" && direction != "desc" {
		direction = "ASC"
	}

	query := `SELECT ` + productColumns + ` FROM products WHERE is_active = true ORDER BY ` +
		column + ` ` + direction + ` LIMIT $1 OFFSET $2`

	rows, err := r.pool.Query(ctx, query, size, page*size)
	if err != nil {
		return nil, 0, core.Wrap(err, core.ErrStorageFailed, "failed to list products")
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	if err := r.pool.QueryRow(ctx, `SELECT count(*) FROM products WHERE is_active = true`).Scan(&total); err != nil {
		return nil, 0, core.Wrap(err, core.ErrStorageFailed, "failed to count products")
	}

	return products, total, nil
}

// ListByCategory возвращает страницу активных товаров категории
func (r *PostgresRepository) ListByCategory(ctx context.Context, category string, page, size int) ([]Product, int64, error) {
	query := `SELECT ` + productColumns + ` FROM products
		WHERE is_active = true AND category = $1
		ORDER BY id LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, category, size, page*size)
	if err != nil {
		return nil, 0, core.Wrap(err, core.ErrStorageFailed, "failed to list products by category")
	}
	defer rows.Close()

	products, err := scanProducts(rows)
	if err != nil {
		return nil, 0, err
	}

	var total int64
	err = r.pool.QueryRow(ctx,
		`SELECT count(*) FROM products WHERE is_active = true AND category = $1`, category).Scan(&total)
	if err != nil {
		return nil, 0, core.Wrap(err, core.ErrStorageFailed, "failed to count products by category")
	}

	return products, total, nil
}

// Update обновляет поля активного товара
func (r *PostgresRepository) Update(ctx context.Context, id int64, req UpsertRequest) (*Product, error) {
	query := `
		UPDATE products
		SET name = $2, price = $3, category = $4, description = $5, updated_at = now()
		WHERE id = $1 AND is_active = true
		RETURNING ` + productColumns

	row := r.pool.QueryRow(ctx, query, id, req.Name, req.Price.String(), req.Category, req.Description)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.NewError(core.ErrNotFound, "product not found")
		}
		return nil, core.Wrap(err, core.ErrStorageFailed, "failed to update product")
	}
	return p, nil
}

// SoftDelete помечает товар неактивным
func (r *PostgresRepository) SoftDelete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`UPDATE products SET is_active = false, updated_at = now() WHERE id = $1 AND is_active = true`, id)
	if err != nil {
		return core.Wrap(err, core.ErrStorageFailed, "failed to delete product")
	}
	if tag.RowsAffected() == 0 {
		return core.NewError(core.ErrNotFound, "product not found")
	}
	return nil
}

// UpdateImage сохраняет метаданные изображения; пустые значения очищают их
func (r *PostgresRepository) UpdateImage(ctx context.Context, id int64, name, url, contentType string) (*Product, error) {
	query := `
		UPDATE products
		SET image_name = nullif($2, ''), image_url = nullif($3, ''),
			image_content_type = nullif($4, ''), updated_at = now()
		WHERE id = $1 AND is_active = true
		RETURNING ` + productColumns

	row := r.pool.QueryRow(ctx, query, id, name, url, contentType)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, core.NewError(core.ErrNotFound, "product not found")
		}
		return nil, core.Wrap(err, core.ErrStorageFailed, "failed to update product image")
	}
	return p, nil
}

func scanProduct(row pgx.Row) (*Product, error) {
	p := &Product{}
	var price string
	err := row.Scan(&p.ID, &p.Name, &price, &p.Category, &p.Description, &p.IsActive,
		&p.ImageName, &p.ImageURL, &p.ImageContentType, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if err := p.Price.Scan(price); err != nil {
		return nil, err
	}
	return p, nil
}

func scanProducts(rows pgx.Rows) ([]Product, error) {
	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, core.Wrap(err, core.ErrStorageFailed, "failed to scan product row")
		}
		products = append(products, *p)
	}
	if err := rows.Err(); err != nil {
		return nil, core.Wrap(err, core.ErrStorageFailed, "failed to iterate product rows")
	}
	return products, nil
}
