package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	svc       *Service
	store     Store
	closed    Store
	empanadas Category
	bebidas   Category
	carne     Product
	coca      Product
	docena    Combo
	retirado  Combo
}

func newFixture(t *testing.T, storage Storage) *fixture {
	t.Helper()
	ctx := context.Background()
	f := &fixture{svc: NewService(NewInMemoryRepository(), storage)}

	f.store = Store{Name: "Palermo", Active: true}
	f.closed = Store{Name: "Belgrano"}
	require.NoError(t, f.svc.CreateStore(ctx, &f.store))
	require.NoError(t, f.svc.CreateStore(ctx, &f.closed))

	f.empanadas = Category{Name: "Tradicionales", Icon: "🥟"}
	f.bebidas = Category{Name: "Bebidas"}
	require.NoError(t, f.svc.CreateCategory(ctx, &f.empanadas))
	require.NoError(t, f.svc.CreateCategory(ctx, &f.bebidas))

	f.carne = Product{Name: "Carne", CategoryID: f.empanadas.ID, Price: 900}
	f.coca = Product{Name: "Coca", CategoryID: f.bebidas.ID, Price: 1200}
	require.NoError(t, f.svc.CreateProduct(ctx, &f.carne))
	require.NoError(t, f.svc.CreateProduct(ctx, &f.coca))
	require.NoError(t, f.svc.SetAvailability(ctx, f.store.ID, f.coca.ID, false))

	f.docena = Combo{
		Name:   "Docena",
		Price:  9500,
		Active: true,
		SelectionSpec: &SelectionSpec{
			Rules:         []Rule{{CategoryID: f.empanadas.ID, Units: 12}},
			CategoryIDs:   []int{f.empanadas.ID},
			CategoryNames: []string{"Empanadas"},
		},
	}
	f.retirado = Combo{
		Name:          "Retirado",
		Price:         1,
		SelectionSpec: &SelectionSpec{Rules: []Rule{{CategoryID: f.bebidas.ID, Units: 1}}},
	}
	require.NoError(t, f.svc.CreateCombo(ctx, &f.docena))
	require.NoError(t, f.svc.CreateCombo(ctx, &f.retirado))
	return f
}

func TestStoreCatalog_FiltersStockAndInactiveCombos(t *testing.T) {
	f := newFixture(t, nil)

	data, err := f.svc.StoreCatalog(context.Background(), f.store.ID)
	require.NoError(t, err)

	assert.Equal(t, "Palermo", data.Store.Name)
	assert.Len(t, data.Categories, 2)
	require.Len(t, data.Products, 1)
	assert.Equal(t, "Carne", data.Products[0].Name)
	require.Len(t, data.Combos, 1)
	assert.Equal(t, "Docena", data.Combos[0].Name)
	assert.Equal(t, "Empanadas", data.Combos[0].SelectionSpec.Categories[f.empanadas.ID].Name)
	assert.Nil(t, data.Combos[0].SelectionSpec.CategoryIDs)
}

func TestStoreCatalog_StoreErrors(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	_, err := f.svc.StoreCatalog(ctx, f.closed.ID)
	assert.ErrorIs(t, err, ErrStoreInactive)

	_, err = f.svc.StoreCatalog(ctx, 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGetCombo_Inactive(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.svc.GetCombo(context.Background(), f.retirado.ID)
	assert.ErrorIs(t, err, ErrComboInactive)

	c, err := f.svc.GetCombo(context.Background(), f.docena.ID)
	require.NoError(t, err)
	assert.Equal(t, 9500.0, c.Price)
}

func TestSelectionSpec_Normalize(t *testing.T) {
	spec := &SelectionSpec{
		Categories:    map[int]CategoryRef{2: {Name: "Bebidas", Icon: "🥤"}},
		CategoryIDs:   []int{1, 2, 3},
		CategoryNames: []string{"Tradicionales", "ignored"},
	}
	spec.Normalize()

	assert.Equal(t, map[int]CategoryRef{
		1: {Name: "Tradicionales"},
		2: {Name: "Bebidas", Icon: "🥤"},
		3: {},
	}, spec.Categories)
	assert.Nil(t, spec.CategoryIDs)
	assert.Nil(t, spec.CategoryNames)

	var nilSpec *SelectionSpec
	assert.NotPanics(t, nilSpec.Normalize)
}

func TestSelectionSpec_CategoryNameFallback(t *testing.T) {
	cats := []Category{{ID: 1, Name: "Tradicionales", Icon: "🥟"}, {ID: 4, Name: "Postres"}}
	spec := &SelectionSpec{Categories: map[int]CategoryRef{1: {Name: "Empanadas"}}}

	assert.Equal(t, "Empanadas", spec.CategoryName(1, cats))
	assert.Equal(t, "🥟", spec.CategoryIcon(1, cats))
	assert.Equal(t, "Postres", spec.CategoryName(4, cats))
	assert.Equal(t, "", spec.CategoryName(9, cats))

	var nilSpec *SelectionSpec
	assert.Equal(t, "Postres", nilSpec.CategoryName(4, cats))
}

func TestValidateCombo(t *testing.T) {
	tests := []struct {
		name  string
		combo Combo
		ok    bool
	}{
		{"valid", Combo{Name: "Docena", Price: 9500, SelectionSpec: &SelectionSpec{Rules: []Rule{{1, 12}}}}, true},
		{"missing name", Combo{Name: " ", SelectionSpec: &SelectionSpec{Rules: []Rule{{1, 12}}}}, false},
		{"negative price", Combo{Name: "x", Price: -1, SelectionSpec: &SelectionSpec{Rules: []Rule{{1, 12}}}}, false},
		{"no spec", Combo{Name: "x"}, false},
		{"no rules", Combo{Name: "x", SelectionSpec: &SelectionSpec{}}, false},
		{"zero units", Combo{Name: "x", SelectionSpec: &SelectionSpec{Rules: []Rule{{1, 0}}}}, false},
		{"no category", Combo{Name: "x", SelectionSpec: &SelectionSpec{Rules: []Rule{{0, 1}}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCombo(&tt.combo)
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidInput)
			}
		})
	}
}

func TestProductValidation(t *testing.T) {
	f := newFixture(t, nil)
	ctx := context.Background()

	assert.ErrorIs(t, f.svc.CreateProduct(ctx, &Product{Name: "", CategoryID: 1}), ErrInvalidInput)
	assert.ErrorIs(t, f.svc.CreateProduct(ctx, &Product{Name: "x"}), ErrInvalidInput)
	assert.ErrorIs(t, f.svc.CreateProduct(ctx, &Product{Name: "x", CategoryID: 1, Price: -5}), ErrInvalidInput)
	assert.ErrorIs(t, f.svc.UpdateProduct(ctx, &Product{ID: 999, Name: "x", CategoryID: 1}), ErrNotFound)
}

// ───────────────────────── images ─────────────────────────

type memFile struct{ *bytes.Reader }

func (memFile) Close() error { return nil }

type recordingStorage struct {
	keys []string
}

func (s *recordingStorage) Upload(ctx context.Context, key string, file multipart.File, contentType string) (string, error) {
	s.keys = append(s.keys, key)
	return "https://cdn.example.com/" + key, nil
}

func TestUploadProductImage(t *testing.T) {
	store := &recordingStorage{}
	f := newFixture(t, store)
	ctx := context.Background()
	file := memFile{bytes.NewReader([]byte("png"))}

	url, err := f.svc.UploadProductImage(ctx, f.carne.ID, file, "Carne.PNG", "image/png")
	require.NoError(t, err)
	require.Len(t, store.keys, 1)
	assert.True(t, strings.HasPrefix(store.keys[0], "products/"))
	assert.True(t, strings.HasSuffix(store.keys[0], ".png"))

	p, err := f.svc.GetProduct(ctx, f.carne.ID)
	require.NoError(t, err)
	assert.Equal(t, url, p.Image)

	_, err = f.svc.UploadProductImage(ctx, f.carne.ID, file, "carne.gif", "image/gif")
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.svc.UploadComboImage(ctx, 999, file, "x.png", "image/png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUploadImage_NoStorage(t *testing.T) {
	f := newFixture(t, nil)
	file := memFile{bytes.NewReader(nil)}

	_, err := f.svc.UploadComboImage(context.Background(), f.docena.ID, file, "x.png", "image/png")
	assert.ErrorIs(t, err, ErrStorageUnavailable)
}

// ───────────────────────── handlers ─────────────────────────

func setupRouter(f *fixture) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	h := NewHandler(f.svc)

	r.GET("/stores", h.ListStores)
	r.GET("/stores/:id/catalog", h.StoreCatalog)
	r.POST("/admin/combos", h.CreateCombo)
	r.PATCH("/admin/stores/:id/products/:productId/availability", h.SetAvailability)
	r.DELETE("/admin/categories/:id", h.DeleteCategory)
	return r
}

func TestHandler_PublicCatalog(t *testing.T) {
	f := newFixture(t, nil)
	r := setupRouter(f)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/stores", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var stores []Store
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &stores))
	require.Len(t, stores, 1)
	assert.Equal(t, "Palermo", stores[0].Name)

	tests := []struct {
		path string
		want int
	}{
		{"/stores/" + strconv.Itoa(f.store.ID) + "/catalog", http.StatusOK},
		{"/stores/" + strconv.Itoa(f.closed.ID) + "/catalog", http.StatusNotFound},
		{"/stores/999/catalog", http.StatusNotFound},
		{"/stores/abc/catalog", http.StatusBadRequest},
		{"/stores/0/catalog", http.StatusBadRequest},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.path, nil))
		assert.Equal(t, tt.want, w.Code, tt.path)
	}
}

func TestHandler_CreateComboLegacyArrays(t *testing.T) {
	f := newFixture(t, nil)
	r := setupRouter(f)

	body := `{"name":"Promo","price":6000,"active":true,"selectionSpec":{
		"categoryIds":[1,2],"categoryNames":["Empanadas","Bebidas"],
		"rules":[{"categoryId":1,"units":6},{"categoryId":2,"units":1}]}}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/admin/combos", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var got Combo
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
	assert.Equal(t, "Bebidas", got.SelectionSpec.Categories[2].Name)
	assert.Empty(t, got.SelectionSpec.CategoryIDs)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/admin/combos", strings.NewReader(`{"name":"x","selectionSpec":{"rules":[]}}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandler_SetAvailability(t *testing.T) {
	f := newFixture(t, nil)
	r := setupRouter(f)
	path := "/admin/stores/" + strconv.Itoa(f.store.ID) + "/products/" + strconv.Itoa(f.coca.ID) + "/availability"

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPatch, path, strings.NewReader(`{"available":true}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	products, err := f.svc.AvailableProducts(context.Background(), f.store.ID)
	require.NoError(t, err)
	assert.Len(t, products, 2)

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPatch, path, strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodDelete, "/admin/categories/999", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
