package order

import (
	"errors"
	"net/http"
	"strings"

	"empanadas/internal/catalog"
	"empanadas/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
	case errors.Is(err, catalog.ErrNotFound), errors.Is(err, catalog.ErrStoreInactive):
		c.JSON(http.StatusNotFound, gin.H{"error": "store not found"})
	case errors.Is(err, ErrEmptyCart),
		errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidStatus):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidTransition), errors.Is(err, ErrStatusChanged):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		zap.S().Errorw("order request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func orderID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid order id"})
		return uuid.Nil, false
	}
	return id, true
}

// --------------------------------------------------
// POST /orders
// --------------------------------------------------
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	o, err := h.service.Create(c.Request.Context(), middleware.SessionID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

// --------------------------------------------------
// GET /admin/orders?store_id=&status=
// --------------------------------------------------
func (h *Handler) List(c *gin.Context) {
	var f Filter
	if raw := c.Query("store_id"); raw != "" {
		id, err := cast.ToIntE(raw)
		if err != nil || id <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid store_id"})
			return
		}
		f.StoreID = id
	}
	f.Status = Status(strings.ToUpper(c.Query("status")))

	orders, err := h.service.List(c.Request.Context(), f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, orders)
}

// --------------------------------------------------
// GET /admin/orders/:id
// --------------------------------------------------
func (h *Handler) Get(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	o, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

// --------------------------------------------------
// PATCH /admin/orders/:id/status
// --------------------------------------------------
func (h *Handler) UpdateStatus(c *gin.Context) {
	id, ok := orderID(c)
	if !ok {
		return
	}

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "status is required"})
		return
	}

	o, err := h.service.UpdateStatus(c.Request.Context(), id, Status(strings.ToUpper(req.Status)))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}
