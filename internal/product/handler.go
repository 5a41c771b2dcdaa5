package product

import (
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/akriventsev/orderhub/internal/core"
)

// PageResponse страница результатов листинга
type PageResponse struct {
	Content       interface{} `json:"content"`
	Page          int         `json:"page"`
	Size          int         `json:"size"`
	TotalElements int64       `json:"totalElements"`
}

// Handler REST API сервиса каталога
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler создает REST handler каталога
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// Register регистрирует маршруты на gin router
func (h *Handler) Register(router *gin.Engine) {
	api := router.Group("/api/products")
	api.POST("", h.createProduct)
	api.GET("/:id", h.getProduct)
	api.GET("", h.listProducts)
	api.GET("/category/:category", h.listByCategory)
	api.PUT("/:id", h.updateProduct)
	api.DELETE("/:id", h.deleteProduct)
	api.POST("/:id/image", h.uploadImage)
	api.GET("/:id/image", h.getImage)
	api.DELETE("/:id/image", h.deleteImage)
}

func (h *Handler) createProduct(c *gin.Context) {
	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) getProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	p, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) listProducts(c *gin.Context) {
	page := intQuery(c, "page", 0)
	size := intQuery(c, "size", 10)
	sortBy := c.DefaultQuery("sortBy", "id")
	direction := c.DefaultQuery("direction", "ASC")

	products, total, err := h.service.List(c.Request.Context(), page, size, sortBy, direction)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, PageResponse{
		Content:       products,
		Page:          page,
		Size:          size,
		TotalElements: total,
	})
}

func (h *Handler) listByCategory(c *gin.Context) {
	category := c.Param("category")
	page := intQuery(c, "page", 0)
	size := intQuery(c, "size", 10)

	products, total, err := h.service.ListByCategory(c.Request.Context(), category, page, size)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, PageResponse{
		Content:       products,
		Page:          page,
		Size:          size,
		TotalElements: total,
	})
}

func (h *Handler) updateProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	var req UpsertRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	p, err := h.service.Update(c.Request.Context(), id, req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) deleteProduct(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) uploadImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	src, err := file.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read file"})
		return
	}
	defer func() {
		_ = src.Close()
	}()

	p, err := h.service.UploadImage(c.Request.Context(), id, ImageUpload{
		FileName:    file.Filename,
		ContentType: strings.ToLower(file.Header.Get("Content-Type")),
		Size:        file.Size,
		Reader:      src,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) getImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	reader, contentType, err := h.service.GetImage(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	defer func() {
		_ = reader.Close()
	}()

	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Type", contentType)
	c.Status(http.StatusOK)
	_, _ = io.Copy(c.Writer, reader)
}

func (h *Handler) deleteImage(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		return
	}

	if err := h.service.DeleteImage(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// writeError отображает коды доменных ошибок на HTTP статусы
func (h *Handler) writeError(c *gin.Context, err error) {
	switch core.CodeOf(err) {
	case core.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case core.ErrValidationFailed:
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		h.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid product id"})
		return 0, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(def)))
	if err != nil || v < 0 {
		return def
	}
	return v
}
