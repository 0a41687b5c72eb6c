package order

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

type PostgresRepository struct {
	db *pgxpool.Pool
}

func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

const orderColumns = `
	id, store_id, customer_name, customer_phone, notes,
	source, status, total::text, created_at, updated_at
`

// Create writes the order and its items in one transaction.
func (r *PostgresRepository) Create(ctx context.Context, o *Order) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return errors.Wrap(err, "begin order tx")
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO orders (
			id, store_id, customer_name, customer_phone, notes,
			source, status, total, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::numeric, $9, $10)
	`,
		o.ID.String(), o.StoreID, o.CustomerName, o.CustomerPhone, o.Notes,
		string(o.Source), string(o.Status), o.Total.String(), o.CreatedAt, o.UpdatedAt,
	)
	if err != nil {
		return errors.Wrap(err, "insert order")
	}

	batch := &pgx.Batch{}
	for _, it := range o.Items {
		details, err := json.Marshal(it.ComboDetails)
		if err != nil {
			return errors.Wrap(err, "encode combo details")
		}
		batch.Queue(`
			INSERT INTO order_items (
				order_id, product_id, name, price, quantity, is_combo, combo_details
			)
			VALUES ($1, $2, $3, $4::numeric, $5, $6, $7)
		`, o.ID.String(), it.ProductID, it.Name, it.Price.String(), it.Quantity, it.IsCombo, details)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return errors.Wrap(err, "insert order items")
	}

	return errors.Wrap(tx.Commit(ctx), "commit order")
}

func scanOrder(row pgx.Row) (*Order, error) {
	var (
		o             Order
		id            string
		source, state string
		total         string
	)
	err := row.Scan(
		&id, &o.StoreID, &o.CustomerName, &o.CustomerPhone, &o.Notes,
		&source, &state, &total, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if o.ID, err = uuid.Parse(id); err != nil {
		return nil, errors.Wrap(err, "parse order id")
	}
	if o.Total, err = decimal.NewFromString(total); err != nil {
		return nil, errors.Wrap(err, "parse order total")
	}
	o.Source = Source(source)
	o.Status = Status(state)
	o.Items = []Item{}
	return &o, nil
}

// loadItems fills the items of the given orders with a single query.
func (r *PostgresRepository) loadItems(ctx context.Context, orders []*Order) error {
	if len(orders) == 0 {
		return nil
	}

	byID := make(map[string]*Order, len(orders))
	ids := make([]string, 0, len(orders))
	for _, o := range orders {
		byID[o.ID.String()] = o
		ids = append(ids, o.ID.String())
	}

	rows, err := r.db.Query(ctx, `
		SELECT order_id::text, product_id, name, price::text, quantity, is_combo, combo_details
		FROM order_items
		WHERE order_id = ANY($1::uuid[])
		ORDER BY id
	`, ids)
	if err != nil {
		return errors.Wrap(err, "list order items")
	}
	defer rows.Close()

	for rows.Next() {
		var (
			it      Item
			orderID string
			price   string
			details []byte
		)
		if err := rows.Scan(&orderID, &it.ProductID, &it.Name, &price, &it.Quantity, &it.IsCombo, &details); err != nil {
			return errors.Wrap(err, "scan order item")
		}
		if it.Price, err = decimal.NewFromString(price); err != nil {
			return errors.Wrap(err, "parse item price")
		}
		if len(details) > 0 {
			if err := json.Unmarshal(details, &it.ComboDetails); err != nil {
				return errors.Wrap(err, "decode combo details")
			}
		}
		it.Subtotal = it.Price.Mul(decimal.NewFromInt(int64(it.Quantity)))

		if o, ok := byID[strings.ToLower(orderID)]; ok {
			o.Items = append(o.Items, it)
		}
	}
	return rows.Err()
}

func (r *PostgresRepository) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	o, err := scanOrder(r.db.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE id = $1
	`, id.String()))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "get order")
	}

	if err := r.loadItems(ctx, []*Order{o}); err != nil {
		return nil, err
	}
	return o, nil
}

func (r *PostgresRepository) List(ctx context.Context, f Filter) ([]Order, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE ($1 = 0 OR store_id = $1)
		  AND ($2 = '' OR status = $2)
		ORDER BY created_at DESC
	`, f.StoreID, string(f.Status))
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	defer rows.Close()

	var ptrs []*Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, errors.Wrap(err, "scan order")
		}
		ptrs = append(ptrs, o)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrap(err, "list orders")
	}

	if err := r.loadItems(ctx, ptrs); err != nil {
		return nil, err
	}

	out := make([]Order, 0, len(ptrs))
	for _, o := range ptrs {
		out = append(out, *o)
	}
	return out, nil
}

// UpdateStatus only applies when the row still holds the status the
// transition was checked against.
func (r *PostgresRepository) UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Order, error) {
	tag, err := r.db.Exec(ctx, `
		UPDATE orders
		SET status = $3, updated_at = $4
		WHERE id = $1 AND status = $2
	`, id.String(), string(from), string(to), time.Now().UTC())
	if err != nil {
		return nil, errors.Wrap(err, "update order status")
	}
	if tag.RowsAffected() == 0 {
		if _, err := r.Get(ctx, id); err != nil {
			return nil, err
		}
		return nil, ErrStatusChanged
	}
	return r.Get(ctx, id)
}
