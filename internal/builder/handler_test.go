package builder

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"empanadas/internal/cart"
	"empanadas/internal/draft"
	"empanadas/internal/middleware"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	svc := NewService(seedCatalog(t), draft.NewInMemoryRepository(time.Hour), cart.NewService(time.Hour))
	r := gin.New()
	r.Use(middleware.SessionMiddleware())
	NewHandler(svc).RegisterRoutes(r)
	return r
}

func do(r *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(middleware.SessionHeader, testSession)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func builderPath(comboID int, action string) string {
	p := fmt.Sprintf("/stores/%d/combos/%d/builder", storeID, comboID)
	if action != "" {
		p += "/" + action
	}
	return p
}

func TestHandler_StartReturnsView(t *testing.T) {
	r := setupRouter(t)

	w := do(r, http.MethodPost, builderPath(promoID, ""), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testSession, w.Header().Get(middleware.SessionHeader))

	var view View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Len(t, view.Steps, 2)
	assert.Equal(t, 1, view.Summary.CurrentStep)
}

func TestHandler_InvalidIDs(t *testing.T) {
	r := setupRouter(t)

	w := do(r, http.MethodGet, "/stores/abc/combos/10/builder", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(r, http.MethodGet, "/stores/1/combos/0/builder", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_ErrorMapping(t *testing.T) {
	r := setupRouter(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   any
		want   int
	}{
		{"unknown combo", http.MethodGet, builderPath(999, ""), nil, http.StatusNotFound},
		{"no stocked steps", http.MethodGet, builderPath(noStepsID, ""), nil, http.StatusUnprocessableEntity},
		{"missing product", http.MethodPost, builderPath(dozenID, "add"), map[string]int{}, http.StatusBadRequest},
		{"product outside step", http.MethodPost, builderPath(promoID, "add"), map[string]int{"productId": cocaID}, http.StatusBadRequest},
		{"advance incomplete", http.MethodPost, builderPath(dozenID, "advance"), nil, http.StatusConflict},
		{"commit incomplete", http.MethodPost, builderPath(dozenID, "commit"), nil, http.StatusConflict},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(r, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestHandler_FullDozenFlow(t *testing.T) {
	r := setupRouter(t)

	for i := 0; i < 12; i++ {
		w := do(r, http.MethodPost, builderPath(dozenID, "add"), map[string]int{"productId": carneID})
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := do(r, http.MethodPost, builderPath(dozenID, "commit"), nil)
	require.Equal(t, http.StatusCreated, w.Code)

	var body struct {
		Items []struct {
			IsCombo  bool `json:"isCombo"`
			Quantity int  `json:"quantity"`
		} `json:"items"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Items, 1)
	assert.True(t, body.Items[0].IsCombo)

	w = do(r, http.MethodGet, builderPath(dozenID, ""), nil)
	require.Equal(t, http.StatusOK, w.Code)
	var view View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, 0, view.Summary.Steps[0].Selected)
}

func TestHandler_RetreatFromFirstStepExits(t *testing.T) {
	r := setupRouter(t)

	w := do(r, http.MethodPost, builderPath(dozenID, "retreat"), nil)
	require.Equal(t, http.StatusOK, w.Code)

	var view View
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.True(t, view.Exited)
}
