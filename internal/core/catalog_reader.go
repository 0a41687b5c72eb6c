package core

import (
	"context"

	"empanadas/internal/catalog"
)

// CatalogReader is the read side of the catalog other packages depend on.
// Satisfied by *catalog.Service.
type CatalogReader interface {
	GetStore(ctx context.Context, id int) (*catalog.Store, error)
	GetCombo(ctx context.Context, id int) (*catalog.Combo, error)
	GetProduct(ctx context.Context, id int) (*catalog.Product, error)
	AvailableProducts(ctx context.Context, storeID int) ([]catalog.Product, error)
	ListCategories(ctx context.Context) ([]catalog.Category, error)
}
