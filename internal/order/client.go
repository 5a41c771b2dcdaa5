package order

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/akriventsev/orderhub/internal/core"
)

// ProductValidator подтверждает существование товара перед созданием заказа
type ProductValidator interface {
	// ValidateProduct проверяет, что товар существует и активен.
	// Любая ошибка (сеть, таймаут, не-2xx ответ) означает ValidationFailure.
	ValidateProduct(ctx context.Context, productID int64) error
}

// HTTPProductValidator клиент сервиса каталога поверх HTTP
type HTTPProductValidator struct {
	baseURL string
	client  *http.Client
}

// NewHTTPProductValidator создает клиент каталога.
// Таймаут ограничивает весь вызов, включая установление соединения.
func NewHTTPProductValidator(baseURL string, timeout time.Duration) *HTTPProductValidator {
	return &HTTPProductValidator{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: timeout,
		},
	}
}

// ValidateProduct запрашивает товар у сервиса каталога
func (v *HTTPProductValidator) ValidateProduct(ctx context.Context, productID int64) error {
	url := fmt.Sprintf("%s/api/products/%d", v.baseURL, productID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return core.Wrap(err, core.ErrValidationFailed, "failed to build product request")
	}

	resp, err := v.client.Do(req)
	if err != nil {
		return core.Wrap(err, core.ErrValidationFailed, fmt.Sprintf("product %d lookup failed", productID))
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return core.NewError(core.ErrValidationFailed,
			fmt.Sprintf("product %d lookup returned status %d", productID, resp.StatusCode))
	}

	return nil
}
