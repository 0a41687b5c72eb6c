package catalog

import (
	"context"
	"sort"
	"sync"
)

type availabilityKey struct {
	storeID   int
	productID int
}

// InMemoryRepository backs tests and STORAGE_BACKEND=memory.
type InMemoryRepository struct {
	mu sync.RWMutex

	nextID       int
	stores       map[int]Store
	categories   map[int]Category
	products     map[int]Product
	combos       map[int]Combo
	availability map[availabilityKey]bool
}

func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{
		nextID:       1,
		stores:       make(map[int]Store),
		categories:   make(map[int]Category),
		products:     make(map[int]Product),
		combos:       make(map[int]Combo),
		availability: make(map[availabilityKey]bool),
	}
}

func (r *InMemoryRepository) id() int {
	id := r.nextID
	r.nextID++
	return id
}

// --------------------------------------------------
// Stores
// --------------------------------------------------

func (r *InMemoryRepository) ListStores(ctx context.Context, activeOnly bool) ([]Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Store, 0, len(r.stores))
	for _, s := range r.stores {
		if activeOnly && !s.Active {
			continue
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) GetStore(ctx context.Context, id int) (*Store, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.stores[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

func (r *InMemoryRepository) CreateStore(ctx context.Context, store *Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if store.ID == 0 {
		store.ID = r.id()
	}
	r.stores[store.ID] = *store
	return nil
}

func (r *InMemoryRepository) UpdateStore(ctx context.Context, store *Store) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stores[store.ID]; !ok {
		return ErrNotFound
	}
	r.stores[store.ID] = *store
	return nil
}

func (r *InMemoryRepository) DeleteStore(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stores[id]; !ok {
		return ErrNotFound
	}
	delete(r.stores, id)
	return nil
}

// --------------------------------------------------
// Categories
// --------------------------------------------------

func (r *InMemoryRepository) ListCategories(ctx context.Context) ([]Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Category, 0, len(r.categories))
	for _, c := range r.categories {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) CreateCategory(ctx context.Context, category *Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if category.ID == 0 {
		category.ID = r.id()
	}
	r.categories[category.ID] = *category
	return nil
}

func (r *InMemoryRepository) UpdateCategory(ctx context.Context, category *Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[category.ID]; !ok {
		return ErrNotFound
	}
	r.categories[category.ID] = *category
	return nil
}

func (r *InMemoryRepository) DeleteCategory(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.categories[id]; !ok {
		return ErrNotFound
	}
	delete(r.categories, id)
	return nil
}

// --------------------------------------------------
// Products
// --------------------------------------------------

func (r *InMemoryRepository) ListProducts(ctx context.Context, storeID int) ([]Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Product, 0, len(r.products))
	for _, p := range r.products {
		p.Available = true
		if storeID != 0 {
			if avail, ok := r.availability[availabilityKey{storeID, p.ID}]; ok {
				p.Available = avail
			}
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) GetProduct(ctx context.Context, id int) (*Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.products[id]
	if !ok {
		return nil, ErrNotFound
	}
	p.Available = true
	return &p, nil
}

func (r *InMemoryRepository) CreateProduct(ctx context.Context, product *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == 0 {
		product.ID = r.id()
	}
	r.products[product.ID] = *product
	return nil
}

func (r *InMemoryRepository) UpdateProduct(ctx context.Context, product *Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[product.ID]; !ok {
		return ErrNotFound
	}
	r.products[product.ID] = *product
	return nil
}

func (r *InMemoryRepository) DeleteProduct(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.products[id]; !ok {
		return ErrNotFound
	}
	delete(r.products, id)
	return nil
}

func (r *InMemoryRepository) SetProductImage(ctx context.Context, id int, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	p, ok := r.products[id]
	if !ok {
		return ErrNotFound
	}
	p.Image = url
	r.products[id] = p
	return nil
}

func (r *InMemoryRepository) SetAvailability(ctx context.Context, storeID, productID int, available bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.stores[storeID]; !ok {
		return ErrNotFound
	}
	if _, ok := r.products[productID]; !ok {
		return ErrNotFound
	}
	r.availability[availabilityKey{storeID, productID}] = available
	return nil
}

// --------------------------------------------------
// Combos
// --------------------------------------------------

func (r *InMemoryRepository) ListCombos(ctx context.Context, activeOnly bool) ([]Combo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Combo, 0, len(r.combos))
	for _, c := range r.combos {
		if activeOnly && !c.Active {
			continue
		}
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *InMemoryRepository) GetCombo(ctx context.Context, id int) (*Combo, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.combos[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &c, nil
}

func (r *InMemoryRepository) CreateCombo(ctx context.Context, combo *Combo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if combo.ID == 0 {
		combo.ID = r.id()
	}
	r.combos[combo.ID] = *combo
	return nil
}

func (r *InMemoryRepository) UpdateCombo(ctx context.Context, combo *Combo) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.combos[combo.ID]; !ok {
		return ErrNotFound
	}
	r.combos[combo.ID] = *combo
	return nil
}

func (r *InMemoryRepository) DeleteCombo(ctx context.Context, id int) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.combos[id]; !ok {
		return ErrNotFound
	}
	delete(r.combos, id)
	return nil
}

func (r *InMemoryRepository) SetComboImage(ctx context.Context, id int, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.combos[id]
	if !ok {
		return ErrNotFound
	}
	c.Image = url
	r.combos[id] = c
	return nil
}
