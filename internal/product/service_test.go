package product

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/akriventsev/orderhub/internal/core"
)

// mockProductRepo для тестирования
type mockProductRepo struct {
	products map[int64]*Product
	getCalls int
	nextID   int64
}

func newMockProductRepo() *mockProductRepo {
	return &mockProductRepo{products: make(map[int64]*Product)}
}

func (m *mockProductRepo) Create(ctx context.Context, req UpsertRequest) (*Product, error) {
	m.nextID++
	p := &Product{
		ID:       m.nextID,
		Name:     req.Name,
		Price:    req.Price,
		Category: req.Category,
		IsActive: true,
	}
	m.products[p.ID] = p
	return p, nil
}

func (m *mockProductRepo) GetActive(ctx context.Context, id int64) (*Product, error) {
	m.getCalls++
	p, exists := m.products[id]
	if !exists || !p.IsActive {
		return nil, core.NewError(core.ErrNotFound, "product not found")
	}
	snapshot := *p
	return &snapshot, nil
}

func (m *mockProductRepo) List(ctx context.Context, page, size int, sortBy, direction string) ([]Product, int64, error) {
	var result []Product
	for _, p := range m.products {
		if p.IsActive {
			result = append(result, *p)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockProductRepo) ListByCategory(ctx context.Context, category string, page, size int) ([]Product, int64, error) {
	var result []Product
	for _, p := range m.products {
		if p.IsActive && p.Category == category {
			result = append(result, *p)
		}
	}
	return result, int64(len(result)), nil
}

func (m *mockProductRepo) Update(ctx context.Context, id int64, req UpsertRequest) (*Product, error) {
	p, exists := m.products[id]
	if !exists || !p.IsActive {
		return nil, core.NewError(core.ErrNotFound, "product not found")
	}
	p.Name = req.Name
	p.Price = req.Price
	p.Category = req.Category
	p.Description = req.Description
	snapshot := *p
	return &snapshot, nil
}

func (m *mockProductRepo) SoftDelete(ctx context.Context, id int64) error {
	p, exists := m.products[id]
	if !exists || !p.IsActive {
		return core.NewError(core.ErrNotFound, "product not found")
	}
	p.IsActive = false
	return nil
}

func (m *mockProductRepo) UpdateImage(ctx context.Context, id int64, name, url, contentType string) (*Product, error) {
	p, exists := m.products[id]
	if !exists || !p.IsActive {
		return nil, core.NewError(core.ErrNotFound, "product not found")
	}
	p.ImageName = name
	p.ImageURL = url
	p.ImageContentType = contentType
	snapshot := *p
	return &snapshot, nil
}

// mockStore для тестирования
type mockStore struct {
	objects map[string][]byte
}

func newMockStore() *mockStore {
	return &mockStore{objects: make(map[string][]byte)}
}

func (m *mockStore) Upload(ctx context.Context, objectName string, reader io.Reader, size int64, contentType string) error {
	data, err := io.ReadAll(reader)
	if err != nil {
		return err
	}
	m.objects[objectName] = data
	return nil
}

func (m *mockStore) Get(ctx context.Context, objectName string) (io.ReadCloser, error) {
	data, exists := m.objects[objectName]
	if !exists {
		return nil, core.NewError(core.ErrNotFound, "object not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockStore) Delete(ctx context.Context, objectName string) error {
	delete(m.objects, objectName)
	return nil
}

func (m *mockStore) PresignedURL(ctx context.Context, objectName string, ttl time.Duration) (string, error) {
	return "http://minio.local/" + objectName, nil
}

func newCatalog(t *testing.T) (*Service, *mockProductRepo, *MemoryCache, *fakeClock) {
	t.Helper()
	repo := newMockProductRepo()
	clock := &fakeClock{now: time.Now()}
	cache := NewMemoryCache(time.Hour, clock)
	service := NewService(repo, cache, newMockStore(), nil, nil)
	return service, repo, cache, clock
}

func upsertRequest(name string) UpsertRequest {
	p := testProduct(0)
	return UpsertRequest{Name: name, Price: p.Price, Category: p.Category}
}

func TestService_Get_ReadThrough(t *testing.T) {
	service, repo, _, _ := newCatalog(t)
	ctx := context.Background()

	created, err := service.Create(ctx, upsertRequest("pen"))
	require.NoError(t, err)

	// Первое чтение идет в хранилище и наполняет кеш
	p, err := service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "pen", p.Name)
	assert.Equal(t, 1, repo.getCalls)

	// Повторное чтение обслуживается кешем
	_, err = service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.getCalls)
}

func TestService_Get_TTLExpiryRefetches(t *testing.T) {
	service, repo, _, clock := newCatalog(t)
	ctx := context.Background()

	created, err := service.Create(ctx, upsertRequest("pen"))
	require.NoError(t, err)

	_, err = service.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, repo.getCalls)

	clock.Advance(61 * time.Minute)

	_, err = service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.getCalls)
}

func TestService_Get_NoNegativeCaching(t *testing.T) {
	service, repo, _, _ := newCatalog(t)
	ctx := context.Background()

	// Каждый запрос несуществующего товара идет в хранилище заново
	_, err := service.Get(ctx, 404)
	assert.True(t, core.IsCode(err, core.ErrNotFound))

	_, err = service.Get(ctx, 404)
	assert.True(t, core.IsCode(err, core.ErrNotFound))
	assert.Equal(t, 2, repo.getCalls)
}

func TestService_Update_InvalidatesCache(t *testing.T) {
	service, repo, _, _ := newCatalog(t)
	ctx := context.Background()

	created, err := service.Create(ctx, upsertRequest("pen"))
	require.NoError(t, err)

	_, err = service.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, repo.getCalls)

	_, err = service.Update(ctx, created.ID, upsertRequest("marker"))
	require.NoError(t, err)

	// Инвалидация синхронная: следующее чтение видит новое значение
	p, err := service.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "marker", p.Name)
	assert.Equal(t, 2, repo.getCalls)
}

func TestService_Delete_InvalidatesCache(t *testing.T) {
	service, _, _, _ := newCatalog(t)
	ctx := context.Background()

	created, err := service.Create(ctx, upsertRequest("pen"))
	require.NoError(t, err)

	_, err = service.Get(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, service.Delete(ctx, created.ID))

	// Деактивированный товар не виден даже после кешированного чтения
	_, err = service.Get(ctx, created.ID)
	assert.True(t, core.IsCode(err, core.ErrNotFound))
}

func TestService_UploadImage(t *testing.T) {
	service, _, _, _ := newCatalog(t)
	ctx := context.Background()

	created, err := service.Create(ctx, upsertRequest("pen"))
	require.NoError(t, err)

	content := "fake image bytes"
	p, err := service.UploadImage(ctx, created.ID, ImageUpload{
		FileName:    "photo.png",
		ContentType: "image/png",
		Size:        int64(len(content)),
		Reader:      strings.NewReader(content),
	})
	require.NoError(t, err)

	assert.NotEmpty(t, p.ImageName)
	assert.Contains(t, p.ImageURL, p.ImageName)

	reader, contentType, err := service.GetImage(ctx, created.ID)
	require.NoError(t, err)
	defer reader.Close()

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, string(data))
	assert.Equal(t, "image/png", contentType)
}

func TestService_UploadImage_InvalidType(t *testing.T) {
	service, _, _, _ := newCatalog(t)
	ctx := context.Background()

	created, err := service.Create(ctx, upsertRequest("pen"))
	require.NoError(t, err)

	_, err = service.UploadImage(ctx, created.ID, ImageUpload{
		FileName:    "malware.exe",
		ContentType: "application/octet-stream",
		Size:        10,
		Reader:      strings.NewReader("0123456789"),
	})
	assert.True(t, core.IsCode(err, core.ErrValidationFailed))
}

func TestService_UploadImage_TooLarge(t *testing.T) {
	service, _, _, _ := newCatalog(t)
	ctx := context.Background()

	created, err := service.Create(ctx, upsertRequest("pen"))
	require.NoError(t, err)

	_, err = service.UploadImage(ctx, created.ID, ImageUpload{
		FileName:    "huge.jpg",
		ContentType: "image/jpeg",
		Size:        MaxImageSize + 1,
		Reader:      strings.NewReader(""),
	})
	assert.True(t, core.IsCode(err, core.ErrValidationFailed))
}

func TestService_DeleteImage(t *testing.T) {
	service, _, _, _ := newCatalog(t)
	ctx := context.Background()

	created, err := service.Create(ctx, upsertRequest("pen"))
	require.NoError(t, err)

	content := "img"
	_, err = service.UploadImage(ctx, created.ID, ImageUpload{
		FileName:    "a.jpg",
		ContentType: "image/jpeg",
		Size:        int64(len(content)),
		Reader:      strings.NewReader(content),
	})
	require.NoError(t, err)

	require.NoError(t, service.DeleteImage(ctx, created.ID))

	_, _, err = service.GetImage(ctx, created.ID)
	assert.True(t, core.IsCode(err, core.ErrNotFound))
}

func TestService_GetImage_NoImage(t *testing.T) {
	service, _, _, _ := newCatalog(t)
	ctx := context.Background()

	created, err := service.Create(ctx, upsertRequest("pen"))
	require.NoError(t, err)

	_, _, err = service.GetImage(ctx, created.ID)
	assert.True(t, core.IsCode(err, core.ErrNotFound))
}
