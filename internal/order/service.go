package order

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"empanadas/internal/cart"
	"empanadas/internal/catalog"
	"empanadas/internal/core"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidInput      = errors.New("invalid order input")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidTransition = errors.New("status transition not allowed")
)

// CartSource is the slice of the cart service an order needs.
// Satisfied by *cart.Service.
type CartSource interface {
	Checkout(ctx context.Context, sessionID string, save func(*cart.Cart) error) error
}

type Service struct {
	repo    Repository
	catalog core.CatalogReader
	carts   CartSource
}

func NewService(repo Repository, reader core.CatalogReader, carts CartSource) *Service {
	return &Service{repo: repo, catalog: reader, carts: carts}
}

type CreateRequest struct {
	StoreID       int    `json:"storeId"`
	CustomerName  string `json:"customerName"`
	CustomerPhone string `json:"customerPhone"`
	Notes         string `json:"notes"`
	Source        Source `json:"source"`
}

func (r *CreateRequest) normalize() error {
	r.CustomerName = strings.TrimSpace(r.CustomerName)
	r.CustomerPhone = strings.TrimSpace(r.CustomerPhone)
	r.Notes = strings.TrimSpace(r.Notes)

	if r.StoreID <= 0 {
		return fmt.Errorf("%w: storeId is required", ErrInvalidInput)
	}
	if r.CustomerName == "" {
		return fmt.Errorf("%w: customerName is required", ErrInvalidInput)
	}
	switch r.Source {
	case "":
		r.Source = SourceWeb
	case SourceWeb, SourceTotem:
	default:
		return fmt.Errorf("%w: unknown source %q", ErrInvalidInput, r.Source)
	}
	return nil
}

// Create turns the session cart into a PENDING order for the store. The
// cart is emptied in the same step the order is stored, so a line added
// meanwhile is either in the order or still in the cart.
func (s *Service) Create(ctx context.Context, sessionID string, req CreateRequest) (*Order, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}

	store, err := s.catalog.GetStore(ctx, req.StoreID)
	if err != nil {
		return nil, err
	}
	if !store.Active {
		return nil, catalog.ErrStoreInactive
	}

	var o *Order
	err = s.carts.Checkout(ctx, sessionID, func(c *cart.Cart) error {
		if len(c.Items) == 0 {
			return ErrEmptyCart
		}
		o = newOrder(req, c)
		return s.repo.Create(ctx, o)
	})
	if err != nil {
		return nil, err
	}

	zap.S().Infow("order created",
		"order_id", o.ID,
		"store_id", o.StoreID,
		"source", o.Source,
		"total", o.Total.String(),
	)
	return o, nil
}

func newOrder(req CreateRequest, c *cart.Cart) *Order {
	now := time.Now().UTC()
	o := &Order{
		ID:            uuid.New(),
		StoreID:       req.StoreID,
		CustomerName:  req.CustomerName,
		CustomerPhone: req.CustomerPhone,
		Notes:         req.Notes,
		Source:        req.Source,
		Status:        StatusPending,
		Items:         make([]Item, 0, len(c.Items)),
		Total:         decimal.Zero,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	for _, line := range c.Items {
		it := Item{
			ProductID:    line.ProductID,
			Name:         line.Name,
			Price:        decimal.NewFromFloat(line.Price),
			Quantity:     line.Quantity,
			IsCombo:      line.IsCombo,
			ComboDetails: line.ComboDetails,
			Subtotal:     line.Subtotal(),
		}
		o.Items = append(o.Items, it)
		o.Total = o.Total.Add(it.Subtotal)
	}
	return o
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Order, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context, f Filter) ([]Order, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, ErrInvalidStatus
	}
	return s.repo.List(ctx, f)
}

// UpdateStatus moves an order along the status table.
func (s *Service) UpdateStatus(ctx context.Context, id uuid.UUID, next Status) (*Order, error) {
	if !next.Valid() {
		return nil, ErrInvalidStatus
	}

	current, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanMoveTo(next) {
		return nil, fmt.Errorf("%w: %s to %s", ErrInvalidTransition, current.Status, next)
	}

	updated, err := s.repo.UpdateStatus(ctx, id, current.Status, next)
	if err != nil {
		return nil, err
	}

	zap.S().Infow("order status changed",
		"order_id", id,
		"from", current.Status,
		"to", next,
	)
	return updated, nil
}
