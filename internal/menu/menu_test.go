package menu

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"empanadas/internal/catalog"

	"github.com/360EntSecGroup-Skylar/excelize"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleCSV = `name,category,price,description
Carne,Tradicionales,900,Carne cortada a cuchillo
Pollo,Tradicionales,850,
Coca,Bebidas,1200,
`

func TestParse_Formats(t *testing.T) {
	book := excelize.NewFile()
	book.SetCellValue("Sheet1", "A1", "Name")
	book.SetCellValue("Sheet1", "B1", "Category")
	book.SetCellValue("Sheet1", "C1", "Price")
	book.SetCellValue("Sheet1", "A2", "Humita")
	book.SetCellValue("Sheet1", "B2", "Especiales")
	book.SetCellValue("Sheet1", "C2", 1100)
	var xlsx bytes.Buffer
	require.NoError(t, book.Write(&xlsx))

	tests := []struct {
		name     string
		filename string
		body     []byte
		want     []Item
	}{
		{
			name:     "csv",
			filename: "menu.csv",
			body:     []byte(sampleCSV),
			want: []Item{
				{Name: "Carne", Category: "Tradicionales", Price: 900, Description: "Carne cortada a cuchillo"},
				{Name: "Pollo", Category: "Tradicionales", Price: 850},
				{Name: "Coca", Category: "Bebidas", Price: 1200},
			},
		},
		{
			name:     "json document",
			filename: "menu.json",
			body:     []byte(`{"items":[{"name":"Flan","category":"Postres","price":1500}]}`),
			want:     []Item{{Name: "Flan", Category: "Postres", Price: 1500}},
		},
		{
			name:     "json array",
			filename: "MENU.JSON",
			body:     []byte(` [{"name":"Flan","category":"Postres","price":1500}]`),
			want:     []Item{{Name: "Flan", Category: "Postres", Price: 1500}},
		},
		{
			name:     "xlsx",
			filename: "menu.xlsx",
			body:     xlsx.Bytes(),
			want:     []Item{{Name: "Humita", Category: "Especiales", Price: 1100}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := Parse(tt.filename, bytes.NewReader(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, parsed.Items)
		})
	}
}

func TestParse_Rejects(t *testing.T) {
	_, err := Parse("menu.pdf", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidFile)

	_, err = Parse("menu", strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrInvalidFile)

	_, err = Parse("menu.json", strings.NewReader(`{"items":`))
	assert.ErrorIs(t, err, ErrInvalidFile)

	_, err = Parse("menu.json", strings.NewReader(`[]`))
	assert.ErrorIs(t, err, ErrInvalidFile)
}

func TestValidateItems(t *testing.T) {
	valid, skipped := validateItems([]Item{
		{Name: " Carne ", Category: "Tradicionales", Price: 900},
		{Name: "", Category: "Tradicionales", Price: 900},
		{Name: "Pollo", Category: "", Price: 900},
		{Name: "Queso", Category: "Tradicionales", Price: -1},
		{Name: "carne", Category: "TRADICIONALES", Price: 950},
	})

	require.Len(t, valid, 1)
	assert.Equal(t, "Carne", valid[0].Name)
	assert.Equal(t, []string{
		"row 2: name is required",
		"row 3: category is required",
		"row 4: price must not be negative",
		"row 5: duplicate of row 1",
	}, skipped)
}

func seededCatalog(t *testing.T) *catalog.Service {
	t.Helper()
	ctx := context.Background()
	repo := catalog.NewInMemoryRepository()
	svc := catalog.NewService(repo, nil)

	cat := &catalog.Category{Name: "Tradicionales"}
	require.NoError(t, svc.CreateCategory(ctx, cat))
	require.NoError(t, svc.CreateProduct(ctx, &catalog.Product{
		Name: "Carne", CategoryID: cat.ID, Price: 800, Image: "https://cdn.example.com/carne.webp",
	}))
	return svc
}

func TestApply_UpsertsProductsAndCreatesCategories(t *testing.T) {
	ctx := context.Background()
	cat := seededCatalog(t)
	svc := NewService(cat, nil)

	parsed, err := Parse("menu.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	report, err := svc.Apply(ctx, parsed, false)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Rows)
	assert.Equal(t, []string{"Bebidas"}, report.CategoriesCreated)
	assert.Equal(t, 2, report.ProductsCreated)
	assert.Equal(t, 1, report.ProductsUpdated)
	assert.Empty(t, report.Skipped)

	products, err := cat.ListProducts(ctx)
	require.NoError(t, err)
	require.Len(t, products, 3)
	for _, p := range products {
		if p.Name == "Carne" {
			assert.Equal(t, 900.0, p.Price)
			assert.Equal(t, "https://cdn.example.com/carne.webp", p.Image)
		}
	}

	again, err := svc.Apply(ctx, parsed, false)
	require.NoError(t, err)
	assert.Empty(t, again.CategoriesCreated)
	assert.Equal(t, 0, again.ProductsCreated)
	assert.Equal(t, 3, again.ProductsUpdated)
}

func TestApply_DryRunChangesNothing(t *testing.T) {
	ctx := context.Background()
	cat := seededCatalog(t)
	svc := NewService(cat, nil)

	parsed, err := Parse("menu.csv", strings.NewReader(sampleCSV+"Jugo,Bebidas,900,\n"))
	require.NoError(t, err)

	report, err := svc.Apply(ctx, parsed, true)
	require.NoError(t, err)
	assert.True(t, report.DryRun)
	assert.Equal(t, []string{"Bebidas"}, report.CategoriesCreated)
	assert.Equal(t, 3, report.ProductsCreated)
	assert.Equal(t, 1, report.ProductsUpdated)

	cats, err := cat.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 1)
	products, err := cat.ListProducts(ctx)
	require.NoError(t, err)
	assert.Len(t, products, 1)
}

func TestHandler_Import(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/admin/menu/import", NewHandler(NewService(seededCatalog(t), nil)).Import)

	upload := func(filename, content, query string) *httptest.ResponseRecorder {
		body := &bytes.Buffer{}
		form := multipart.NewWriter(body)
		part, err := form.CreateFormFile("menu_file", filename)
		require.NoError(t, err)
		_, _ = part.Write([]byte(content))
		require.NoError(t, form.Close())

		req := httptest.NewRequest(http.MethodPost, "/admin/menu/import"+query, body)
		req.Header.Set("Content-Type", form.FormDataContentType())
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	w := upload("menu.csv", sampleCSV, "?dry_run=true")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = upload("menu.csv", sampleCSV, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var report ImportReport
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &report))
	assert.Equal(t, 2, report.ProductsCreated)

	w = upload("menu.pdf", "x", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	req := httptest.NewRequest(http.MethodPost, "/admin/menu/import", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
