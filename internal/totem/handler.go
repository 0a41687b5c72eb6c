package totem

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	config *Config
	events *EventLog
}

func NewHandler(config *Config, events *EventLog) *Handler {
	return &Handler{config: config, events: events}
}

// GET /totem/config
func (h *Handler) Config(c *gin.Context) {
	c.JSON(http.StatusOK, h.config)
}

// POST /totem/events
func (h *Handler) RecordEvent(c *gin.Context) {
	var e Event
	if err := c.ShouldBindJSON(&e); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}

	saved, err := h.events.Append(e)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	zap.S().Debugw("totem event", "device_id", saved.DeviceID, "type", saved.Type)
	c.JSON(http.StatusCreated, saved)
}

// GET /admin/totem/events?device_id=
// Without device_id it lists the known devices and their event counts.
func (h *Handler) ListEvents(c *gin.Context) {
	deviceID := c.Query("device_id")
	if deviceID == "" {
		c.JSON(http.StatusOK, gin.H{"devices": h.events.Devices()})
		return
	}
	c.JSON(http.StatusOK, h.events.List(deviceID))
}
