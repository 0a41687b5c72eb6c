package catalog

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("not found")

// Repository defines the data-access contract for the catalog.
// Service depends ONLY on this interface.
type Repository interface {
	ListStores(ctx context.Context, activeOnly bool) ([]Store, error)
	GetStore(ctx context.Context, id int) (*Store, error)
	CreateStore(ctx context.Context, store *Store) error
	UpdateStore(ctx context.Context, store *Store) error
	DeleteStore(ctx context.Context, id int) error

	ListCategories(ctx context.Context) ([]Category, error)
	CreateCategory(ctx context.Context, category *Category) error
	UpdateCategory(ctx context.Context, category *Category) error
	DeleteCategory(ctx context.Context, id int) error

	// ListProducts returns every product with Available resolved for
	// storeID. storeID 0 marks all products available.
	ListProducts(ctx context.Context, storeID int) ([]Product, error)
	GetProduct(ctx context.Context, id int) (*Product, error)
	CreateProduct(ctx context.Context, product *Product) error
	UpdateProduct(ctx context.Context, product *Product) error
	DeleteProduct(ctx context.Context, id int) error
	SetProductImage(ctx context.Context, id int, url string) error
	SetAvailability(ctx context.Context, storeID, productID int, available bool) error

	ListCombos(ctx context.Context, activeOnly bool) ([]Combo, error)
	GetCombo(ctx context.Context, id int) (*Combo, error)
	CreateCombo(ctx context.Context, combo *Combo) error
	UpdateCombo(ctx context.Context, combo *Combo) error
	DeleteCombo(ctx context.Context, id int) error
	SetComboImage(ctx context.Context, id int, url string) error
}
