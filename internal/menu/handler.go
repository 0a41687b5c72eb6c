package menu

import (
	"errors"
	"net/http"

	"empanadas/internal/catalog"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cast"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// --------------------------------------------------
// POST /admin/menu/import?dry_run=true
// --------------------------------------------------
func (h *Handler) Import(c *gin.Context) {
	file, header, err := c.Request.FormFile("menu_file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "menu_file is required"})
		return
	}
	defer file.Close()

	if err := ValidateFileExtension(header.Filename); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	dryRun := cast.ToBool(c.Query("dry_run"))

	report, err := h.service.ImportFile(
		c.Request.Context(),
		file,
		header.Filename,
		header.Header.Get("Content-Type"),
		dryRun,
	)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidFile), errors.Is(err, catalog.ErrInvalidInput):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			zap.S().Errorw("menu import failed", "file", header.Filename, "error", err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
		}
		return
	}

	status := http.StatusCreated
	if dryRun {
		status = http.StatusOK
	}
	c.JSON(status, report)
}
