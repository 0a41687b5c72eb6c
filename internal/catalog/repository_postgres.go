package catalog

import (
	"context"
	"encoding/json"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func notFound(err error, msg string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return errors.Wrap(err, msg)
}

func affected(tag interface{ RowsAffected() int64 }, err error, msg string) error {
	if err != nil {
		return errors.Wrap(err, msg)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// --------------------------------------------------
// STORES
// --------------------------------------------------

func (r *PostgresRepository) ListStores(ctx context.Context, activeOnly bool) ([]Store, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, address, phone, active, created_at
		FROM stores
		WHERE ($1 = false OR active = true)
		ORDER BY id
	`, activeOnly)
	if err != nil {
		return nil, errors.Wrap(err, "list stores")
	}
	defer rows.Close()

	var stores []Store
	for rows.Next() {
		var s Store
		if err := rows.Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.Active, &s.CreatedAt); err != nil {
			return nil, errors.Wrap(err, "scan store")
		}
		stores = append(stores, s)
	}
	return stores, rows.Err()
}

func (r *PostgresRepository) GetStore(ctx context.Context, id int) (*Store, error) {
	var s Store
	err := r.db.QueryRow(ctx, `
		SELECT id, name, address, phone, active, created_at
		FROM stores
		WHERE id = $1
	`, id).Scan(&s.ID, &s.Name, &s.Address, &s.Phone, &s.Active, &s.CreatedAt)
	if err != nil {
		return nil, notFound(err, "get store")
	}
	return &s, nil
}

func (r *PostgresRepository) CreateStore(ctx context.Context, store *Store) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO stores (name, address, phone, active)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, store.Name, store.Address, store.Phone, store.Active).Scan(&store.ID, &store.CreatedAt)
	return errors.Wrap(err, "create store")
}

func (r *PostgresRepository) UpdateStore(ctx context.Context, store *Store) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE stores
		SET name = $1, address = $2, phone = $3, active = $4
		WHERE id = $5
	`, store.Name, store.Address, store.Phone, store.Active, store.ID)
	return affected(tag, err, "update store")
}

func (r *PostgresRepository) DeleteStore(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM stores WHERE id = $1`, id)
	return affected(tag, err, "delete store")
}

// --------------------------------------------------
// CATEGORIES
// --------------------------------------------------

func (r *PostgresRepository) ListCategories(ctx context.Context) ([]Category, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, icon FROM categories ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "list categories")
	}
	defer rows.Close()

	var cats []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Icon); err != nil {
			return nil, errors.Wrap(err, "scan category")
		}
		cats = append(cats, c)
	}
	return cats, rows.Err()
}

func (r *PostgresRepository) CreateCategory(ctx context.Context, category *Category) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO categories (name, icon)
		VALUES ($1, $2)
		RETURNING id
	`, category.Name, category.Icon).Scan(&category.ID)
	return errors.Wrap(err, "create category")
}

func (r *PostgresRepository) UpdateCategory(ctx context.Context, category *Category) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE categories SET name = $1, icon = $2 WHERE id = $3
	`, category.Name, category.Icon, category.ID)
	return affected(tag, err, "update category")
}

func (r *PostgresRepository) DeleteCategory(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
	return affected(tag, err, "delete category")
}

// --------------------------------------------------
// PRODUCTS
// --------------------------------------------------

// A missing store_products row means the product is available.
func (r *PostgresRepository) ListProducts(ctx context.Context, storeID int) ([]Product, error) {
	rows, err := r.db.Query(ctx, `
		SELECT
			p.id,
			p.name,
			p.category_id,
			p.price,
			p.image,
			p.description,
			COALESCE(sp.available, true)
		FROM products p
		LEFT JOIN store_products sp
		  ON sp.product_id = p.id
		 AND sp.store_id = $1
		ORDER BY p.id
	`, storeID)
	if err != nil {
		return nil, errors.Wrap(err, "list products")
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		var p Product
		if err := rows.Scan(
			&p.ID,
			&p.Name,
			&p.CategoryID,
			&p.Price,
			&p.Image,
			&p.Description,
			&p.Available,
		); err != nil {
			return nil, errors.Wrap(err, "scan product")
		}
		products = append(products, p)
	}
	return products, rows.Err()
}

func (r *PostgresRepository) GetProduct(ctx context.Context, id int) (*Product, error) {
	p := Product{Available: true}
	err := r.db.QueryRow(ctx, `
		SELECT id, name, category_id, price, image, description
		FROM products
		WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.CategoryID, &p.Price, &p.Image, &p.Description)
	if err != nil {
		return nil, notFound(err, "get product")
	}
	return &p, nil
}

func (r *PostgresRepository) CreateProduct(ctx context.Context, product *Product) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO products (name, category_id, price, image, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id
	`,
		product.Name,
		product.CategoryID,
		product.Price,
		product.Image,
		product.Description,
	).Scan(&product.ID)
	return errors.Wrap(err, "create product")
}

func (r *PostgresRepository) UpdateProduct(ctx context.Context, product *Product) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE products
		SET name = $1,
		    category_id = $2,
		    price = $3,
		    description = $4
		WHERE id = $5
	`,
		product.Name,
		product.CategoryID,
		product.Price,
		product.Description,
		product.ID,
	)
	return affected(tag, err, "update product")
}

func (r *PostgresRepository) DeleteProduct(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM products WHERE id = $1`, id)
	return affected(tag, err, "delete product")
}

func (r *PostgresRepository) SetProductImage(ctx context.Context, id int, url string) error {
	tag, err := r.db.Exec(ctx, `UPDATE products SET image = $1 WHERE id = $2`, url, id)
	return affected(tag, err, "set product image")
}

func (r *PostgresRepository) SetAvailability(
	ctx context.Context,
	storeID int,
	productID int,
	available bool,
) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO store_products (store_id, product_id, available, updated_at)
		VALUES ($1, $2, $3, now())
		ON CONFLICT (store_id, product_id)
		DO UPDATE SET
			available = EXCLUDED.available,
			updated_at = now()
	`, storeID, productID, available)
	if err != nil {
		// FK violation on either side
		return ErrNotFound
	}
	return nil
}

// --------------------------------------------------
// COMBOS
// --------------------------------------------------

func scanCombo(row pgx.Row) (*Combo, error) {
	var (
		c    Combo
		spec []byte
	)
	if err := row.Scan(
		&c.ID,
		&c.Name,
		&c.Description,
		&c.Price,
		&c.Image,
		&c.Active,
		&spec,
	); err != nil {
		return nil, err
	}
	if len(spec) > 0 {
		c.SelectionSpec = &SelectionSpec{}
		if err := json.Unmarshal(spec, c.SelectionSpec); err != nil {
			return nil, errors.Wrapf(err, "decode selection spec of combo %d", c.ID)
		}
	}
	return &c, nil
}

func (r *PostgresRepository) ListCombos(ctx context.Context, activeOnly bool) ([]Combo, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, name, description, price, image, active, selection_spec
		FROM combos
		WHERE ($1 = false OR active = true)
		ORDER BY id
	`, activeOnly)
	if err != nil {
		return nil, errors.Wrap(err, "list combos")
	}
	defer rows.Close()

	var combos []Combo
	for rows.Next() {
		c, err := scanCombo(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan combo")
		}
		combos = append(combos, *c)
	}
	return combos, rows.Err()
}

func (r *PostgresRepository) GetCombo(ctx context.Context, id int) (*Combo, error) {
	c, err := scanCombo(r.db.QueryRow(ctx, `
		SELECT id, name, description, price, image, active, selection_spec
		FROM combos
		WHERE id = $1
	`, id))
	if err != nil {
		return nil, notFound(err, "get combo")
	}
	return c, nil
}

func (r *PostgresRepository) CreateCombo(ctx context.Context, combo *Combo) error {
	spec, err := json.Marshal(combo.SelectionSpec)
	if err != nil {
		return err
	}

	err = r.db.QueryRow(ctx, `
		INSERT INTO combos (name, description, price, image, active, selection_spec)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`,
		combo.Name,
		combo.Description,
		combo.Price,
		combo.Image,
		combo.Active,
		spec,
	).Scan(&combo.ID)
	return errors.Wrap(err, "create combo")
}

func (r *PostgresRepository) UpdateCombo(ctx context.Context, combo *Combo) error {
	spec, err := json.Marshal(combo.SelectionSpec)
	if err != nil {
		return err
	}

	tag, err := r.db.Exec(ctx, `
		UPDATE combos
		SET name = $1,
		    description = $2,
		    price = $3,
		    active = $4,
		    selection_spec = $5
		WHERE id = $6
	`,
		combo.Name,
		combo.Description,
		combo.Price,
		combo.Active,
		spec,
		combo.ID,
	)
	return affected(tag, err, "update combo")
}

func (r *PostgresRepository) DeleteCombo(ctx context.Context, id int) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM combos WHERE id = $1`, id)
	return affected(tag, err, "delete combo")
}

func (r *PostgresRepository) SetComboImage(ctx context.Context, id int, url string) error {
	tag, err := r.db.Exec(ctx, `UPDATE combos SET image = $1 WHERE id = $2`, url, id)
	return affected(tag, err, "set combo image")
}
