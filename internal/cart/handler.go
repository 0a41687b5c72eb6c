package cart

import (
	"errors"
	"net/http"

	"empanadas/internal/catalog"
	"empanadas/internal/core"
	"empanadas/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	catalog core.CatalogReader
}

func NewHandler(service *Service, reader core.CatalogReader) *Handler {
	return &Handler{service: service, catalog: reader}
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrInvalidQuantity):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrLineNotFound), errors.Is(err, catalog.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrMissingSession):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		zap.S().Errorw("cart request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// GET /cart
func (h *Handler) Get(c *gin.Context) {
	cart, err := h.service.Get(c.Request.Context(), middleware.SessionID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// POST /cart/items
//
// Prices come from the catalog, never from the client. Combos are added
// through the builder commit.
func (h *Handler) AddItem(c *gin.Context) {
	var req struct {
		ProductID int `json:"productId"`
		Quantity  int `json:"quantity"`
		StoreID   int `json:"storeId"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.ProductID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if req.Quantity == 0 {
		req.Quantity = 1
	}

	ctx := c.Request.Context()

	product, err := h.catalog.GetProduct(ctx, req.ProductID)
	if err != nil {
		writeError(c, err)
		return
	}

	if req.StoreID > 0 {
		available, err := h.catalog.AvailableProducts(ctx, req.StoreID)
		if err != nil {
			writeError(c, err)
			return
		}
		inStock := false
		for _, p := range available {
			if p.ID == product.ID {
				inStock = true
				break
			}
		}
		if !inStock {
			c.JSON(http.StatusConflict, gin.H{"error": "product is not available at this store"})
			return
		}
	}

	cart, err := h.service.AddItem(
		ctx,
		middleware.SessionID(c),
		Line{ID: product.ID, Name: product.Name, Price: product.Price},
		req.Quantity,
		Options{},
		false,
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// PATCH /cart/items/:lineId
func (h *Handler) UpdateQuantity(c *gin.Context) {
	var req struct {
		Quantity *int `json:"quantity"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Quantity == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "quantity is required"})
		return
	}

	cart, err := h.service.UpdateQuantity(
		c.Request.Context(),
		middleware.SessionID(c),
		c.Param("lineId"),
		*req.Quantity,
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// DELETE /cart/items/:lineId
func (h *Handler) RemoveItem(c *gin.Context) {
	cart, err := h.service.RemoveItem(
		c.Request.Context(),
		middleware.SessionID(c),
		c.Param("lineId"),
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cart)
}

// DELETE /cart
func (h *Handler) Clear(c *gin.Context) {
	if err := h.service.Clear(c.Request.Context(), middleware.SessionID(c)); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
