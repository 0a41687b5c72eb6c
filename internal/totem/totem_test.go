package totem

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	assert.Equal(t, DefaultInactivityTimeout, cfg.InactivityTimeoutSeconds)
	assert.Equal(t, DefaultWarning, cfg.WarningSeconds)
	assert.Equal(t, MaxEventLog, cfg.EventLogLimit)
}

func TestLoadConfig_FillsMissingTimeouts(t *testing.T) {
	path := filepath.Join(t.TempDir(), "totem-config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"storeId": 3, "inactivityTimeoutSeconds": 60, "eventLogLimit": 500}`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.StoreID)
	assert.Equal(t, 60, cfg.InactivityTimeoutSeconds)
	assert.Equal(t, DefaultWarning, cfg.WarningSeconds)
	assert.Equal(t, MaxEventLog, cfg.EventLogLimit)
}

func TestLoadConfig_WarningShorterThanTimeout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "totem-config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"inactivityTimeoutSeconds": 10, "warningSeconds": 30}`), 0o644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.Less(t, cfg.WarningSeconds, cfg.InactivityTimeoutSeconds)
}

func TestLoadConfig_ShortTimeoutsKeepAWarning(t *testing.T) {
	tests := []struct {
		timeout     int
		wantTimeout int
		wantWarning int
	}{
		{timeout: 1, wantTimeout: 2, wantWarning: 1},
		{timeout: 2, wantTimeout: 2, wantWarning: 1},
		{timeout: 3, wantTimeout: 3, wantWarning: 1},
		{timeout: 15, wantTimeout: 15, wantWarning: 7},
		{timeout: 20, wantTimeout: 20, wantWarning: 15},
	}

	for _, tt := range tests {
		cfg := &Config{InactivityTimeoutSeconds: tt.timeout}
		cfg.applyDefaults()

		assert.Equal(t, tt.wantTimeout, cfg.InactivityTimeoutSeconds, "timeout %d", tt.timeout)
		assert.Equal(t, tt.wantWarning, cfg.WarningSeconds, "timeout %d", tt.timeout)
		assert.Less(t, cfg.WarningSeconds, cfg.InactivityTimeoutSeconds)
	}
}

func TestLoadConfig_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "totem-config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"storeId":`), 0o644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestEventLog_CapsPerDevice(t *testing.T) {
	log := NewEventLog(0)

	for i := 0; i < 130; i++ {
		_, err := log.Append(Event{DeviceID: "kiosk-1", Type: fmt.Sprintf("tap-%d", i)})
		require.NoError(t, err)
	}
	_, err := log.Append(Event{DeviceID: "kiosk-2", Type: "boot"})
	require.NoError(t, err)

	events := log.List("kiosk-1")
	require.Len(t, events, MaxEventLog)
	assert.Equal(t, "tap-30", events[0].Type)
	assert.Equal(t, "tap-129", events[len(events)-1].Type)

	assert.Equal(t, map[string]int{"kiosk-1": 100, "kiosk-2": 1}, log.Devices())
}

func TestEventLog_RejectsIncompleteEvents(t *testing.T) {
	log := NewEventLog(10)

	_, err := log.Append(Event{Type: "tap"})
	assert.ErrorIs(t, err, ErrInvalidEvent)
	_, err = log.Append(Event{DeviceID: "kiosk-1", Type: "  "})
	assert.ErrorIs(t, err, ErrInvalidEvent)
}

func TestEventLog_ConcurrentAppends(t *testing.T) {
	log := NewEventLog(50)

	var wg sync.WaitGroup
	for i := 0; i < 200; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = log.Append(Event{DeviceID: "kiosk-1", Type: "tap"})
		}()
	}
	wg.Wait()

	assert.Len(t, log.List("kiosk-1"), 50)
}

func TestHandler(t *testing.T) {
	gin.SetMode(gin.TestMode)

	h := NewHandler(&Config{StoreID: 1, InactivityTimeoutSeconds: 90, WarningSeconds: 15, EventLogLimit: 100}, NewEventLog(100))
	r := gin.New()
	r.GET("/totem/config", h.Config)
	r.POST("/totem/events", h.RecordEvent)
	r.GET("/admin/totem/events", h.ListEvents)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/totem/config", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"inactivityTimeoutSeconds":90`)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/totem/events", bytes.NewBufferString(`{"deviceId":"kiosk-1","type":"idle_reset","payload":{"step":2}}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/totem/events", bytes.NewBufferString(`{"type":"idle_reset"}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin/totem/events?device_id=kiosk-1", nil))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"payload":{"step":2}`)
}
