package order

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"empanadas/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(f fixture) *gin.Engine {
	gin.SetMode(gin.TestMode)

	h := NewHandler(f.svc)
	r := gin.New()
	r.Use(middleware.SessionMiddleware())
	r.POST("/orders", h.Create)
	r.GET("/admin/orders", h.List)
	r.GET("/admin/orders/:id", h.Get)
	r.PATCH("/admin/orders/:id/status", h.UpdateStatus)
	return r
}

func request(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SessionHeader, testSession)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandler_CreateFromEmptyCart(t *testing.T) {
	r := setupRouter(newFixture(t))

	w := request(r, http.MethodPost, "/orders", `{"storeId":1,"customerName":"Ana"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_OrderLifecycle(t *testing.T) {
	f := newFixture(t)
	f.fillCart(t)
	r := setupRouter(f)

	w := request(r, http.MethodPost, "/orders", `{"storeId":1,"customerName":"Ana","source":"totem"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var created Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, SourceTotem, created.Source)
	assert.Equal(t, "9500.3", created.Total.String())

	w = request(r, http.MethodGet, "/admin/orders/"+created.ID.String(), "")
	require.Equal(t, http.StatusOK, w.Code)

	w = request(r, http.MethodPatch, "/admin/orders/"+created.ID.String()+"/status", `{"status":"delivered"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = request(r, http.MethodPatch, "/admin/orders/"+created.ID.String()+"/status", `{"status":"confirmed"}`)
	require.Equal(t, http.StatusOK, w.Code)

	w = request(r, http.MethodGet, "/admin/orders?store_id=1&status=confirmed", "")
	require.Equal(t, http.StatusOK, w.Code)
	var list []Order
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &list))
	assert.Len(t, list, 1)
}

func TestHandler_BadInput(t *testing.T) {
	r := setupRouter(newFixture(t))

	tests := []struct {
		name, method, path, body string
		want                     int
	}{
		{"malformed body", http.MethodPost, "/orders", `{`, http.StatusBadRequest},
		{"bad order id", http.MethodGet, "/admin/orders/42", "", http.StatusBadRequest},
		{"unknown order", http.MethodGet, "/admin/orders/6f1c2d3e-4b5a-4c6d-8e7f-9a0b1c2d3e4f", "", http.StatusNotFound},
		{"bad store filter", http.MethodGet, "/admin/orders?store_id=x", "", http.StatusBadRequest},
		{"bad status filter", http.MethodGet, "/admin/orders?status=lost", "", http.StatusBadRequest},
		{"missing status", http.MethodPatch, "/admin/orders/6f1c2d3e-4b5a-4c6d-8e7f-9a0b1c2d3e4f/status", `{}`, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := request(r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}
