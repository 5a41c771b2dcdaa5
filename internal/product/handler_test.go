package product

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) (*gin.Engine, *Service) {
	t.Helper()
	service, _, _, _ := newCatalog(t)
	gin.SetMode(gin.TestMode)
	router := gin.New()
	NewHandler(service, nil).Register(router)
	return router, service
}

func postJSON(router *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(method, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func productBody(name string) map[string]interface{} {
	return map[string]interface{}{
		"name":     name,
		"price":    "49.90",
		"category": "stationery",
	}
}

func TestHandler_CreateProduct(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(router, http.MethodPost, "/api/products", productBody("pen"))
	require.Equal(t, http.StatusCreated, w.Code)

	var p Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, "pen", p.Name)
	assert.True(t, p.IsActive)
}

func TestHandler_CreateProduct_MissingName(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(router, http.MethodPost, "/api/products", map[string]interface{}{
		"price":    "49.90",
		"category": "stationery",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_GetProduct(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(router, http.MethodPost, "/api/products", productBody("pen"))
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodGet, "/api/products/1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var p Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.Equal(t, int64(1), p.ID)
}

func TestHandler_GetProduct_NotFound(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products/404", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_DeleteProduct_HidesFromReads(t *testing.T) {
	router, _ := newTestRouter(t)

	w := postJSON(router, http.MethodPost, "/api/products", productBody("pen"))
	require.Equal(t, http.StatusCreated, w.Code)

	req := httptest.NewRequest(http.MethodDelete, "/api/products/1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)

	req = httptest.NewRequest(http.MethodGet, "/api/products/1", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandler_ListByCategory(t *testing.T) {
	router, _ := newTestRouter(t)

	require.Equal(t, http.StatusCreated,
		postJSON(router, http.MethodPost, "/api/products", productBody("pen")).Code)

	body := productBody("keyboard")
	body["category"] = "electronics"
	require.Equal(t, http.StatusCreated,
		postJSON(router, http.MethodPost, "/api/products", body).Code)

	req := httptest.NewRequest(http.MethodGet, "/api/products/category/electronics", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var page PageResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Equal(t, int64(1), page.TotalElements)
}

func TestHandler_UploadImage(t *testing.T) {
	router, _ := newTestRouter(t)

	require.Equal(t, http.StatusCreated,
		postJSON(router, http.MethodPost, "/api/products", productBody("pen")).Code)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="photo.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write([]byte("fake image bytes"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/products/1/image", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)

	var p Product
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &p))
	assert.NotEmpty(t, p.ImageName)

	req = httptest.NewRequest(http.MethodGet, "/api/products/1/image", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
}

func TestHandler_InvalidID(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/products/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
