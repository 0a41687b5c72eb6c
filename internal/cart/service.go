package cart

import (
	"context"
	"errors"
	"time"

	"empanadas/internal/core"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

var (
	ErrInvalidQuantity = errors.New("quantity must be at least 1")
	ErrLineNotFound    = errors.New("cart line not found")
	ErrMissingSession  = errors.New("missing session")
)

// Service keeps one cart per session in a go-cache whose TTL slides on
// every write.
type Service struct {
	carts *cache.Cache
	locks core.KeyLock
}

func NewService(ttl time.Duration) *Service {
	return &Service{carts: cache.New(ttl, ttl/2)}
}

func (s *Service) load(sessionID string) *Cart {
	if v, ok := s.carts.Get(sessionID); ok {
		return v.(*Cart).clone()
	}
	return &Cart{SessionID: sessionID, Items: []Item{}}
}

func (s *Service) store(c *Cart) {
	c.recompute()
	s.carts.SetDefault(c.SessionID, c.clone())
}

// Get returns the session cart, empty when none exists.
func (s *Service) Get(ctx context.Context, sessionID string) (*Cart, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	c := s.load(sessionID)
	c.recompute()
	return c, nil
}

// AddItem appends quantity units of line. Plain products merge into an
// existing line of the same product; every combo gets its own line.
func (s *Service) AddItem(
	ctx context.Context,
	sessionID string,
	line Line,
	quantity int,
	opts Options,
	isCombo bool,
) (*Cart, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}
	if quantity < 1 {
		return nil, ErrInvalidQuantity
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	c := s.load(sessionID)

	if !isCombo {
		for i := range c.Items {
			if !c.Items[i].IsCombo && c.Items[i].ProductID == line.ID {
				c.Items[i].Quantity += quantity
				s.store(c)
				return c, nil
			}
		}
	}

	item := Item{
		LineID:    uuid.New().String(),
		ProductID: line.ID,
		Name:      line.Name,
		Price:     line.Price,
		Quantity:  quantity,
		IsCombo:   isCombo,
	}
	if isCombo {
		item.ComboDetails = opts.ComboDetails
	}
	c.Items = append(c.Items, item)

	s.store(c)
	return c, nil
}

// UpdateQuantity sets a line's quantity; zero or less removes the line.
func (s *Service) UpdateQuantity(ctx context.Context, sessionID, lineID string, quantity int) (*Cart, error) {
	if sessionID == "" {
		return nil, ErrMissingSession
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	c := s.load(sessionID)
	for i := range c.Items {
		if c.Items[i].LineID != lineID {
			continue
		}
		if quantity <= 0 {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
		} else {
			c.Items[i].Quantity = quantity
		}
		s.store(c)
		return c, nil
	}
	return nil, ErrLineNotFound
}

func (s *Service) RemoveItem(ctx context.Context, sessionID, lineID string) (*Cart, error) {
	return s.UpdateQuantity(ctx, sessionID, lineID, 0)
}

func (s *Service) Clear(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrMissingSession
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	s.carts.Delete(sessionID)
	return nil
}

// Checkout hands a snapshot of the session cart to save while holding the
// session lock, and empties the cart only when save succeeds. Lines added
// concurrently wait for the checkout and land in the next cart.
func (s *Service) Checkout(ctx context.Context, sessionID string, save func(*Cart) error) error {
	if sessionID == "" {
		return ErrMissingSession
	}
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	c := s.load(sessionID)
	c.recompute()
	if err := save(c); err != nil {
		return err
	}
	s.carts.Delete(sessionID)
	return nil
}
