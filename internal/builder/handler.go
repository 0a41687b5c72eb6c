package builder

import (
	"errors"
	"fmt"
	"net/http"

	"empanadas/internal/catalog"
	"empanadas/internal/combo"
	"empanadas/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the wizard under /stores/:id/combos/:comboId/builder.
func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.POST("/stores/:id/combos/:comboId/builder", h.Start)
	r.GET("/stores/:id/combos/:comboId/builder", h.Get)
	r.DELETE("/stores/:id/combos/:comboId/builder", h.Discard)
	r.POST("/stores/:id/combos/:comboId/builder/add", h.Add)
	r.POST("/stores/:id/combos/:comboId/builder/remove", h.Remove)
	r.POST("/stores/:id/combos/:comboId/builder/advance", h.Advance)
	r.POST("/stores/:id/combos/:comboId/builder/retreat", h.Retreat)
	r.POST("/stores/:id/combos/:comboId/builder/commit", h.Commit)
}

type target struct {
	sessionID string
	storeID   int
	comboID   int
}

func parseTarget(c *gin.Context) (target, bool) {
	var t target
	if _, err := fmt.Sscanf(c.Param("id"), "%d", &t.storeID); err != nil || t.storeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid store id"})
		return t, false
	}
	if _, err := fmt.Sscanf(c.Param("comboId"), "%d", &t.comboID); err != nil || t.comboID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid combo id"})
		return t, false
	}
	t.sessionID = middleware.SessionID(c)
	return t, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, catalog.ErrNotFound),
		errors.Is(err, catalog.ErrStoreInactive),
		errors.Is(err, catalog.ErrComboInactive):
		c.JSON(http.StatusNotFound, gin.H{"error": "combo or store not found"})
	case errors.Is(err, combo.ErrNoSteps):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	case errors.Is(err, combo.ErrUnknownProduct),
		errors.Is(err, combo.ErrProductNotInStep):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, combo.ErrStepIncomplete),
		errors.Is(err, combo.ErrNoNextStep),
		errors.Is(err, ErrComboIncomplete):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		zap.S().Errorw("builder request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

func productID(c *gin.Context) (int, bool) {
	var req struct {
		ProductID int `json:"productId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "productId is required"})
		return 0, false
	}
	return req.ProductID, true
}

// POST /stores/:id/combos/:comboId/builder
func (h *Handler) Start(c *gin.Context) {
	t, ok := parseTarget(c)
	if !ok {
		return
	}
	view, err := h.service.Start(c.Request.Context(), t.sessionID, t.storeID, t.comboID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// GET /stores/:id/combos/:comboId/builder
func (h *Handler) Get(c *gin.Context) {
	t, ok := parseTarget(c)
	if !ok {
		return
	}
	view, err := h.service.Get(c.Request.Context(), t.sessionID, t.storeID, t.comboID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// DELETE /stores/:id/combos/:comboId/builder
func (h *Handler) Discard(c *gin.Context) {
	t, ok := parseTarget(c)
	if !ok {
		return
	}
	h.service.Discard(c.Request.Context(), t.sessionID, t.comboID)
	c.Status(http.StatusNoContent)
}

// POST /stores/:id/combos/:comboId/builder/add
func (h *Handler) Add(c *gin.Context) {
	t, ok := parseTarget(c)
	if !ok {
		return
	}
	pid, ok := productID(c)
	if !ok {
		return
	}
	view, err := h.service.Add(c.Request.Context(), t.sessionID, t.storeID, t.comboID, pid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /stores/:id/combos/:comboId/builder/remove
func (h *Handler) Remove(c *gin.Context) {
	t, ok := parseTarget(c)
	if !ok {
		return
	}
	pid, ok := productID(c)
	if !ok {
		return
	}
	view, err := h.service.Remove(c.Request.Context(), t.sessionID, t.storeID, t.comboID, pid)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /stores/:id/combos/:comboId/builder/advance
func (h *Handler) Advance(c *gin.Context) {
	t, ok := parseTarget(c)
	if !ok {
		return
	}
	view, err := h.service.Advance(c.Request.Context(), t.sessionID, t.storeID, t.comboID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /stores/:id/combos/:comboId/builder/retreat
func (h *Handler) Retreat(c *gin.Context) {
	t, ok := parseTarget(c)
	if !ok {
		return
	}
	view, err := h.service.Retreat(c.Request.Context(), t.sessionID, t.storeID, t.comboID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, view)
}

// POST /stores/:id/combos/:comboId/builder/commit
func (h *Handler) Commit(c *gin.Context) {
	t, ok := parseTarget(c)
	if !ok {
		return
	}
	cart, err := h.service.Commit(c.Request.Context(), t.sessionID, t.storeID, t.comboID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cart)
}
