package order

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrNotFound = errors.New("order not found")
	// ErrStatusChanged is returned when the stored status no longer matches
	// the one a transition was validated against.
	ErrStatusChanged = errors.New("order status changed, please retry")
)

type Repository interface {
	Create(ctx context.Context, o *Order) error
	Get(ctx context.Context, id uuid.UUID) (*Order, error)
	List(ctx context.Context, f Filter) ([]Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, from, to Status) (*Order, error)
}
