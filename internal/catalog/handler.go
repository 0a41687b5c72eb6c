package catalog

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func paramID(c *gin.Context, name string) (int, bool) {
	var id int
	if _, err := fmt.Sscanf(c.Param(name), "%d", &id); err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return id, true
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, ErrStoreInactive), errors.Is(err, ErrComboInactive):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, ErrStorageUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
	default:
		zap.S().Errorw("catalog request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// --------------------------------------------------
// GET /stores
// --------------------------------------------------
func (h *Handler) ListStores(c *gin.Context) {
	stores, err := h.service.ListStores(c.Request.Context(), true)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stores)
}

// --------------------------------------------------
// GET /stores/:id/catalog
// --------------------------------------------------
func (h *Handler) StoreCatalog(c *gin.Context) {
	storeID, ok := paramID(c, "id")
	if !ok {
		return
	}

	data, err := h.service.StoreCatalog(c.Request.Context(), storeID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// --------------------------------------------------
// ADMIN: stores
// --------------------------------------------------

func (h *Handler) AdminListStores(c *gin.Context) {
	stores, err := h.service.ListStores(c.Request.Context(), false)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stores)
}

func (h *Handler) CreateStore(c *gin.Context) {
	var store Store
	if err := c.ShouldBindJSON(&store); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.service.CreateStore(c.Request.Context(), &store); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, store)
}

func (h *Handler) UpdateStore(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var store Store
	if err := c.ShouldBindJSON(&store); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	store.ID = id
	if err := h.service.UpdateStore(c.Request.Context(), &store); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, store)
}

func (h *Handler) DeleteStore(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteStore(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PATCH /admin/stores/:id/products/:productId/availability
func (h *Handler) SetAvailability(c *gin.Context) {
	storeID, ok := paramID(c, "id")
	if !ok {
		return
	}
	productID, ok := paramID(c, "productId")
	if !ok {
		return
	}

	var req struct {
		Available *bool `json:"available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil || req.Available == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "available is required"})
		return
	}

	if err := h.service.SetAvailability(c.Request.Context(), storeID, productID, *req.Available); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"storeId":   storeID,
		"productId": productID,
		"available": *req.Available,
	})
}

// --------------------------------------------------
// ADMIN: categories
// --------------------------------------------------

func (h *Handler) ListCategories(c *gin.Context) {
	cats, err := h.service.ListCategories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if cats == nil {
		cats = []Category{}
	}
	c.JSON(http.StatusOK, cats)
}

func (h *Handler) CreateCategory(c *gin.Context) {
	var cat Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.service.CreateCategory(c.Request.Context(), &cat); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (h *Handler) UpdateCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var cat Category
	if err := c.ShouldBindJSON(&cat); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	cat.ID = id
	if err := h.service.UpdateCategory(c.Request.Context(), &cat); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (h *Handler) DeleteCategory(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteCategory(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// --------------------------------------------------
// ADMIN: products
// --------------------------------------------------

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.service.ListProducts(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if products == nil {
		products = []Product{}
	}
	c.JSON(http.StatusOK, products)
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var p Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.service.CreateProduct(c.Request.Context(), &p); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var p Product
	if err := c.ShouldBindJSON(&p); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	p.ID = id
	if err := h.service.UpdateProduct(c.Request.Context(), &p); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteProduct(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /admin/products/:id/image
func (h *Handler) UploadProductImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}
	defer file.Close()

	url, err := h.service.UploadProductImage(
		c.Request.Context(),
		id,
		file,
		header.Filename,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"image": url})
}

// --------------------------------------------------
// ADMIN: combos
// --------------------------------------------------

func (h *Handler) ListCombos(c *gin.Context) {
	combos, err := h.service.ListCombos(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	if combos == nil {
		combos = []Combo{}
	}
	c.JSON(http.StatusOK, combos)
}

func (h *Handler) CreateCombo(c *gin.Context) {
	var combo Combo
	if err := c.ShouldBindJSON(&combo); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	if err := h.service.CreateCombo(c.Request.Context(), &combo); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, combo)
}

func (h *Handler) UpdateCombo(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	var combo Combo
	if err := c.ShouldBindJSON(&combo); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	combo.ID = id
	if err := h.service.UpdateCombo(c.Request.Context(), &combo); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, combo)
}

func (h *Handler) DeleteCombo(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteCombo(c.Request.Context(), id); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// POST /admin/combos/:id/image
func (h *Handler) UploadComboImage(c *gin.Context) {
	id, ok := paramID(c, "id")
	if !ok {
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "image is required"})
		return
	}
	defer file.Close()

	url, err := h.service.UploadComboImage(
		c.Request.Context(),
		id,
		file,
		header.Filename,
		header.Header.Get("Content-Type"),
	)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"image": url})
}
