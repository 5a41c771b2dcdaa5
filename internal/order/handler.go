package order

import (
	"net/http"
	"strconv"

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

// Handler REST API сервиса заказов
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler создает REST handler заказов
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Handler{service: service, logger: logger}
}

// Register регистрирует маршруты на gin router
func (h *Handler) Register(router *gin.Engine) {
	api := router.Group("/api/orders")
	api.POST("", h.createOrder)
	api.GET("", h.listOrders)
	api.GET("/user/:userId", h.listByUser)
}

// createOrder обрабатывает POST /api/orders
func (h *Handler) createOrder(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.TotalPrice.IsNegative() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "totalPrice must not be negative"})
		return
	}

	o, err := h.service.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, o)
}

// listOrders обрабатывает GET /api/orders
func (h *Handler) listOrders(c *gin.Context) {
	page := intQuery(c, "page", 0)
	size := intQuery(c, "size", 10)
	sortBy := c.DefaultQuery("sortBy", "createdAt")
	direction := c.DefaultQuery("direction", "DESC")

	orders, total, err := h.service.List(c.Request.Context(), page, size, sortBy, direction)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, PageResponse{
		Content:       orders,
		Page:          page,
		Size:          size,
		TotalElements: total,
	})
}

// listByUser обрабатывает GET /api/orders/user/:userId
func (h *Handler) listByUser(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}
	page := intQuery(c, "page", 0)
	size := intQuery(c, "size", 10)

	orders, total, err := h.service.ListByUser(c.Request.Context(), userID, page, size)
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, PageResponse{
		Content:       orders,
		Page:          page,
		Size:          size,
		TotalElements: total,
	})
}

// writeError отображает коды доменных ошибок на HTTP статусы
func (h *Handler) writeError(c *gin.Context, err error) {
	switch core.CodeOf(err) {
	case core.ErrValidationFailed:
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "product validation failed"})
	case core.ErrNotFound:
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	default:
		h.logger.Error("request failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func intQuery(c *gin.Context, name string, def int) int {
	v, err := strconv.Atoi(c.DefaultQuery(name, strconv.Itoa(def)))
	if err != nil || v < 0 {
		return def
	}
	return v
}
