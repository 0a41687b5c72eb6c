package builder

import (
	"context"
	"errors"

	"empanadas/internal/cart"
	"empanadas/internal/catalog"
	"empanadas/internal/combo"
	"empanadas/internal/core"
	"empanadas/internal/draft"

	"go.uber.org/zap"
)

var ErrComboIncomplete = errors.New("combo selection is not complete")

// CartAdder is the cart collaborator a commit hands the combo to.
// Satisfied by *cart.Service.
type CartAdder interface {
	AddItem(
		ctx context.Context,
		sessionID string,
		line cart.Line,
		quantity int,
		opts cart.Options,
		isCombo bool,
	) (*cart.Cart, error)
}

// View is what a client renders for the wizard: the sequenced steps, the
// summary panel and the products selectable in the current step.
type View struct {
	StoreID      int               `json:"storeId"`
	Steps        []combo.Step      `json:"steps"`
	Summary      combo.Summary     `json:"summary"`
	StepProducts []catalog.Product `json:"stepProducts"`
	Exited       bool              `json:"exited,omitempty"`
}

// Service runs builder sessions. Each call rebuilds the state machine from
// the catalog and the (session, combo) draft, applies one transition and
// writes the draft back. Calls for the same session are serialized.
type Service struct {
	catalog core.CatalogReader
	drafts  draft.Repository
	cart    CartAdder
	locks   core.KeyLock
}

func NewService(reader core.CatalogReader, drafts draft.Repository, carts CartAdder) *Service {
	return &Service{catalog: reader, drafts: drafts, cart: carts}
}

type session struct {
	id      string
	storeID int
	builder *combo.Builder
}

func (s *Service) open(ctx context.Context, sessionID string, storeID, comboID int) (*session, error) {
	store, err := s.catalog.GetStore(ctx, storeID)
	if err != nil {
		return nil, err
	}
	if !store.Active {
		return nil, catalog.ErrStoreInactive
	}

	c, err := s.catalog.GetCombo(ctx, comboID)
	if err != nil {
		return nil, err
	}

	products, err := s.catalog.AvailableProducts(ctx, storeID)
	if err != nil {
		return nil, err
	}

	cats, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, err
	}

	b, err := combo.NewBuilder(c, products, cats)
	if err != nil {
		zap.S().Warnw("combo cannot be built",
			"combo_id", comboID,
			"store_id", storeID,
			"error", err,
		)
		return nil, err
	}

	d, err := s.drafts.Get(ctx, sessionID, comboID)
	switch {
	case err == nil:
		b.Restore(d)
	case !errors.Is(err, draft.ErrNotFound):
		zap.S().Warnw("draft read failed, starting empty", "combo_id", comboID, "error", err)
	}

	return &session{id: sessionID, storeID: storeID, builder: b}, nil
}

// persist is best effort: the builder state in hand stays authoritative.
func (s *Service) persist(ctx context.Context, sess *session) {
	if err := s.drafts.Save(ctx, sess.builder.Draft(sess.id)); err != nil {
		zap.S().Warnw("draft write failed", "combo_id", sess.builder.Combo().ID, "error", err)
	}
}

func (s *Service) discard(ctx context.Context, sessionID string, comboID int) {
	if err := s.drafts.Delete(ctx, sessionID, comboID); err != nil {
		zap.S().Warnw("draft delete failed", "combo_id", comboID, "error", err)
	}
}

func (sess *session) view() *View {
	b := sess.builder
	current := b.CurrentStep().CategoryID

	var stepProducts []catalog.Product
	for _, p := range b.Products() {
		if p.CategoryID == current {
			stepProducts = append(stepProducts, p)
		}
	}

	return &View{
		StoreID:      sess.storeID,
		Steps:        b.Steps(),
		Summary:      b.Summary(),
		StepProducts: stepProducts,
	}
}

// --------------------------------------------------
// Operations
// --------------------------------------------------

// Start opens (or resumes) the builder for a combo and saves the draft.
func (s *Service) Start(ctx context.Context, sessionID string, storeID, comboID int) (*View, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, err := s.open(ctx, sessionID, storeID, comboID)
	if err != nil {
		return nil, err
	}
	s.persist(ctx, sess)
	return sess.view(), nil
}

// Get renders the current state without writing anything.
func (s *Service) Get(ctx context.Context, sessionID string, storeID, comboID int) (*View, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, err := s.open(ctx, sessionID, storeID, comboID)
	if err != nil {
		return nil, err
	}
	return sess.view(), nil
}

func (s *Service) mutate(
	ctx context.Context,
	sessionID string,
	storeID, comboID int,
	apply func(b *combo.Builder) error,
) (*View, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, err := s.open(ctx, sessionID, storeID, comboID)
	if err != nil {
		return nil, err
	}
	if err := apply(sess.builder); err != nil {
		return nil, err
	}
	s.persist(ctx, sess)
	return sess.view(), nil
}

func (s *Service) Add(ctx context.Context, sessionID string, storeID, comboID, productID int) (*View, error) {
	return s.mutate(ctx, sessionID, storeID, comboID, func(b *combo.Builder) error {
		return b.Add(productID)
	})
}

func (s *Service) Remove(ctx context.Context, sessionID string, storeID, comboID, productID int) (*View, error) {
	return s.mutate(ctx, sessionID, storeID, comboID, func(b *combo.Builder) error {
		b.Remove(productID)
		return nil
	})
}

func (s *Service) Advance(ctx context.Context, sessionID string, storeID, comboID int) (*View, error) {
	return s.mutate(ctx, sessionID, storeID, comboID, func(b *combo.Builder) error {
		return b.Advance()
	})
}

// Retreat goes one step back. From the first step it leaves the wizard:
// the draft is deleted and the returned view has Exited set.
func (s *Service) Retreat(ctx context.Context, sessionID string, storeID, comboID int) (*View, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, err := s.open(ctx, sessionID, storeID, comboID)
	if err != nil {
		return nil, err
	}

	if sess.builder.Retreat() {
		s.discard(ctx, sessionID, comboID)
		return &View{StoreID: storeID, Exited: true}, nil
	}

	s.persist(ctx, sess)
	return sess.view(), nil
}

// Discard drops the draft of one combo for the session.
func (s *Service) Discard(ctx context.Context, sessionID string, comboID int) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	s.discard(ctx, sessionID, comboID)
}

// Commit hands a complete combo to the cart as one line priced at the
// combo price and deletes the draft. When the cart refuses, the draft is
// kept so the customer can retry.
func (s *Service) Commit(ctx context.Context, sessionID string, storeID, comboID int) (*cart.Cart, error) {
	unlock := s.locks.Lock(sessionID)
	defer unlock()

	sess, err := s.open(ctx, sessionID, storeID, comboID)
	if err != nil {
		return nil, err
	}

	b := sess.builder
	if !b.IsComboComplete() {
		return nil, ErrComboIncomplete
	}

	c := b.Combo()
	result, err := s.cart.AddItem(
		ctx,
		sessionID,
		cart.Line{ID: c.ID, Name: c.Name, Price: c.Price},
		1,
		cart.Options{ComboDetails: b.Details()},
		true,
	)
	if err != nil {
		zap.S().Errorw("combo commit failed", "combo_id", c.ID, "error", err)
		return nil, err
	}

	s.discard(ctx, sessionID, comboID)
	zap.S().Infow("combo added to cart", "combo_id", c.ID, "store_id", storeID)
	return result, nil
}
