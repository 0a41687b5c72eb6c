package catalog

import (
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

var (
	ErrInvalidInput       = errors.New("invalid input")
	ErrStoreInactive      = errors.New("store is not active")
	ErrComboInactive      = errors.New("combo is not active")
	ErrStorageUnavailable = errors.New("image storage not configured")
)

// Storage is the object store used for product and combo images.
type Storage interface {
	Upload(ctx context.Context, key string, file multipart.File, contentType string) (string, error)
}

type Service struct {
	repo    Repository
	storage Storage
}

func NewService(repo Repository, storage Storage) *Service {
	return &Service{repo: repo, storage: storage}
}

// --------------------------------------------------
// Public catalog
// --------------------------------------------------

// StoreCatalog returns the categories, available products and active combos
// for one active store.
func (s *Service) StoreCatalog(ctx context.Context, storeID int) (*StoreCatalog, error) {
	store, err := s.repo.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !store.Active {
		return nil, ErrStoreInactive
	}

	var (
		cats     []Category
		products []Product
		combos   []Combo
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		cats, err = s.repo.ListCategories(gctx)
		return err
	})
	g.Go(func() (err error) {
		products, err = s.AvailableProducts(gctx, storeID)
		return err
	})
	g.Go(func() (err error) {
		combos, err = s.repo.ListCombos(gctx, true)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	for i := range combos {
		combos[i].SelectionSpec.Normalize()
	}

	if cats == nil {
		cats = []Category{}
	}
	if combos == nil {
		combos = []Combo{}
	}

	return &StoreCatalog{
		Store:      store,
		Categories: cats,
		Products:   products,
		Combos:     combos,
	}, nil
}

func (s *Service) ListStores(ctx context.Context, activeOnly bool) ([]Store, error) {
	stores, err := s.repo.ListStores(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if stores == nil {
		stores = []Store{}
	}
	return stores, nil
}

func (s *Service) GetStore(ctx context.Context, id int) (*Store, error) {
	return s.repo.GetStore(ctx, id)
}

// AvailableProducts lists the products a store can sell right now.
func (s *Service) AvailableProducts(ctx context.Context, storeID int) ([]Product, error) {
	all, err := s.repo.ListProducts(ctx, storeID)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(all))
	for _, p := range all {
		if p.Available {
			out = append(out, p)
		}
	}
	return out, nil
}

// ListProducts returns the whole product table, ignoring store stock.
func (s *Service) ListProducts(ctx context.Context) ([]Product, error) {
	return s.repo.ListProducts(ctx, 0)
}

func (s *Service) ListCategories(ctx context.Context) ([]Category, error) {
	return s.repo.ListCategories(ctx)
}

// GetCombo returns an active combo with its selection spec normalized.
func (s *Service) GetCombo(ctx context.Context, id int) (*Combo, error) {
	c, err := s.repo.GetCombo(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.Active {
		return nil, ErrComboInactive
	}
	c.SelectionSpec.Normalize()
	return c, nil
}

func (s *Service) GetProduct(ctx context.Context, id int) (*Product, error) {
	return s.repo.GetProduct(ctx, id)
}

// --------------------------------------------------
// Admin: stores
// --------------------------------------------------

func (s *Service) CreateStore(ctx context.Context, store *Store) error {
	if strings.TrimSpace(store.Name) == "" {
		return fmt.Errorf("%w: store name is required", ErrInvalidInput)
	}
	return s.repo.CreateStore(ctx, store)
}

func (s *Service) UpdateStore(ctx context.Context, store *Store) error {
	if strings.TrimSpace(store.Name) == "" {
		return fmt.Errorf("%w: store name is required", ErrInvalidInput)
	}
	return s.repo.UpdateStore(ctx, store)
}

func (s *Service) DeleteStore(ctx context.Context, id int) error {
	return s.repo.DeleteStore(ctx, id)
}

// SetAvailability toggles one product's stock at one store.
func (s *Service) SetAvailability(ctx context.Context, storeID, productID int, available bool) error {
	return s.repo.SetAvailability(ctx, storeID, productID, available)
}

// --------------------------------------------------
// Admin: categories
// --------------------------------------------------

func (s *Service) CreateCategory(ctx context.Context, category *Category) error {
	if strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	return s.repo.CreateCategory(ctx, category)
}

func (s *Service) UpdateCategory(ctx context.Context, category *Category) error {
	if strings.TrimSpace(category.Name) == "" {
		return fmt.Errorf("%w: category name is required", ErrInvalidInput)
	}
	return s.repo.UpdateCategory(ctx, category)
}

func (s *Service) DeleteCategory(ctx context.Context, id int) error {
	return s.repo.DeleteCategory(ctx, id)
}

// --------------------------------------------------
// Admin: products
// --------------------------------------------------

func validateProduct(p *Product) error {
	switch {
	case strings.TrimSpace(p.Name) == "":
		return fmt.Errorf("%w: product name is required", ErrInvalidInput)
	case p.CategoryID <= 0:
		return fmt.Errorf("%w: product category is required", ErrInvalidInput)
	case p.Price < 0:
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	return nil
}

func (s *Service) CreateProduct(ctx context.Context, product *Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	return s.repo.CreateProduct(ctx, product)
}

func (s *Service) UpdateProduct(ctx context.Context, product *Product) error {
	if err := validateProduct(product); err != nil {
		return err
	}
	return s.repo.UpdateProduct(ctx, product)
}

func (s *Service) DeleteProduct(ctx context.Context, id int) error {
	return s.repo.DeleteProduct(ctx, id)
}

// --------------------------------------------------
// Admin: combos
// --------------------------------------------------

// ValidateCombo normalizes the selection spec and checks its rules.
func ValidateCombo(c *Combo) error {
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("%w: combo name is required", ErrInvalidInput)
	}
	if c.Price < 0 {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidInput)
	}
	if c.SelectionSpec == nil || len(c.SelectionSpec.Rules) == 0 {
		return fmt.Errorf("%w: selectionSpec.rules is required", ErrInvalidInput)
	}
	c.SelectionSpec.Normalize()
	for _, rule := range c.SelectionSpec.Rules {
		if rule.CategoryID <= 0 || rule.Units < 1 {
			return fmt.Errorf("%w: every rule needs a categoryId and units >= 1", ErrInvalidInput)
		}
	}
	return nil
}

func (s *Service) ListCombos(ctx context.Context) ([]Combo, error) {
	combos, err := s.repo.ListCombos(ctx, false)
	if err != nil {
		return nil, err
	}
	for i := range combos {
		combos[i].SelectionSpec.Normalize()
	}
	return combos, nil
}

func (s *Service) CreateCombo(ctx context.Context, combo *Combo) error {
	if err := ValidateCombo(combo); err != nil {
		return err
	}
	return s.repo.CreateCombo(ctx, combo)
}

func (s *Service) UpdateCombo(ctx context.Context, combo *Combo) error {
	if err := ValidateCombo(combo); err != nil {
		return err
	}
	return s.repo.UpdateCombo(ctx, combo)
}

func (s *Service) DeleteCombo(ctx context.Context, id int) error {
	return s.repo.DeleteCombo(ctx, id)
}

// --------------------------------------------------
// Admin: images
// --------------------------------------------------

var allowedImageExt = map[string]bool{
	".jpg":  true,
	".jpeg": true,
	".png":  true,
	".webp": true,
}

func ValidateImageExtension(filename string) error {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return fmt.Errorf("%w: file extension missing", ErrInvalidInput)
	}
	if !allowedImageExt[ext] {
		return fmt.Errorf("%w: file type not allowed", ErrInvalidInput)
	}
	return nil
}

func (s *Service) uploadImage(
	ctx context.Context,
	prefix string,
	id int,
	file multipart.File,
	filename string,
	contentType string,
) (string, error) {
	if s.storage == nil {
		return "", ErrStorageUnavailable
	}
	if err := ValidateImageExtension(filename); err != nil {
		return "", err
	}

	key := fmt.Sprintf(
		"%s/%d/%s%s",
		prefix,
		id,
		uuid.New().String(),
		strings.ToLower(filepath.Ext(filename)),
	)
	return s.storage.Upload(ctx, key, file, contentType)
}

// UploadProductImage stores the file and points the product at its URL.
func (s *Service) UploadProductImage(
	ctx context.Context,
	productID int,
	file multipart.File,
	filename string,
	contentType string,
) (string, error) {
	if _, err := s.repo.GetProduct(ctx, productID); err != nil {
		return "", err
	}
	url, err := s.uploadImage(ctx, "products", productID, file, filename, contentType)
	if err != nil {
		return "", err
	}
	return url, s.repo.SetProductImage(ctx, productID, url)
}

func (s *Service) UploadComboImage(
	ctx context.Context,
	comboID int,
	file multipart.File,
	filename string,
	contentType string,
) (string, error) {
	if _, err := s.repo.GetCombo(ctx, comboID); err != nil {
		return "", err
	}
	url, err := s.uploadImage(ctx, "combos", comboID, file, filename, contentType)
	if err != nil {
		return "", err
	}
	return url, s.repo.SetComboImage(ctx, comboID, url)
}
